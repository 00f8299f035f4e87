package steam

import "math"

const (
	refTemperature = 647.096
	refDensity     = 322.0
	refViscosity   = 1e-6
)

var visc0 = [...]float64{1.67752, 2.20462, 0.6366564, -0.241605}

var visc1 = [6][7]float64{
	{5.20094e-1, 2.22531e-1, -2.81378e-1, 1.61913e-1, -3.25372e-2, 0, 0},
	{8.50895e-2, 9.99115e-1, -9.06851e-1, 2.57399e-1, 0, 0, 0},
	{-1.08374, 1.88797, -7.72479e-1, 0, 0, 0, 0},
	{-2.89555e-1, 1.26613, -4.89837e-1, 0, 6.98452e-2, 0, -4.35673e-3},
	{0, 0, -2.57040e-1, 0, 0, 8.72102e-3, 0},
	{0, 1.20573e-1, 0, 0, 0, 0, -5.93264e-4},
}

// Viscosity returns the dynamic viscosity in Pa·s for t in K and rho in kg/m³.
// The critical enhancement is taken as 1, which is exact outside the
// near-critical region.
func Viscosity(t, rho float64) float64 {
	tr := t / refTemperature
	dr := rho / refDensity

	var sum0 float64
	for i, h := range visc0 {
		sum0 += h / math.Pow(tr, float64(i))
	}
	mu0 := 100 * math.Sqrt(tr) / sum0

	a := 1/tr - 1
	b := dr - 1
	var sum1 float64
	ai := 1.0
	for i := range visc1 {
		bj := 1.0
		for j := range visc1[i] {
			sum1 += visc1[i][j] * ai * bj
			bj *= b
		}
		ai *= a
	}
	mu1 := math.Exp(dr * sum1)

	return mu0 * mu1 * refViscosity
}
