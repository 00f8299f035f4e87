package steam

import "math"

var sat = [...]float64{
	0.11670521452767e4, -0.72421316703206e6, -0.17073846940092e2,
	0.12020824702470e5, -0.32325550322333e7, 0.14915108613530e2,
	-0.48232657361591e4, 0.40511340542057e6, -0.23855557567849,
	0.65017534844798e3,
}

var b23 = [...]float64{
	0.34805185628969e3, -0.11671859879975e1, 0.10192970039326e-2,
	0.57254459862746e3, 0.13918839778870e2,
}

const (
	// CriticalPressure in MPa.
	CriticalPressure = 22.064
	// Pressure at which the saturation line meets the B23 boundary (623.15 K).
	boundaryPressure = 16.5292
	MaxPressure      = 100.0
	MaxTemperature   = 1073.15
	// ZeroCelsius in K.
	ZeroCelsius = 273.15
)

// SaturationTemperature returns Tsat(p) in K for 611.213 Pa <= p <= 22.064 MPa.
func SaturationTemperature(p float64) float64 {
	n := sat
	beta := math.Pow(p, 0.25)
	e := beta*beta + n[2]*beta + n[5]
	f := n[0]*beta*beta + n[3]*beta + n[6]
	g := n[1]*beta*beta + n[4]*beta + n[7]
	d := 2 * g / (-f - math.Sqrt(f*f-4*e*g))
	s := n[9] + d
	return (s - math.Sqrt(s*s-4*(n[8]+n[9]*d))) / 2
}

// B23Pressure is the pressure in MPa on the region 2/3 boundary at t (K).
func B23Pressure(t float64) float64 {
	return b23[0] + b23[1]*t + b23[2]*t*t
}

// B23Temperature is the inverse of B23Pressure.
func B23Temperature(p float64) float64 {
	return b23[3] + math.Sqrt((p-b23[4])/b23[2])
}

// lowTemperature is the lower bound of region 2 at pressure p.
func lowTemperature(p float64) float64 {
	if p <= boundaryPressure {
		return SaturationTemperature(p)
	}
	return B23Temperature(p)
}
