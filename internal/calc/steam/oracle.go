package steam

import (
	"fmt"
	"math"
)

// Property selects the quantity returned by IF97.PropertyFromPH.
type Property int

const (
	Temperature Property = iota + 1
	SpecificVolume
	DynamicViscosity
)

func (p Property) String() string {
	switch p {
	case Temperature:
		return "temperature"
	case SpecificVolume:
		return "specific volume"
	case DynamicViscosity:
		return "dynamic viscosity"
	}
	return fmt.Sprintf("Property(%d)", int(p))
}

// PropertyLookupError reports a request outside the range of the tables.
type PropertyLookupError struct {
	Property Property
	P        float64 // MPa
	H        float64 // kJ/kg, NaN when the lookup was by temperature
	T        float64 // °C, NaN when the lookup was by enthalpy
	Reason   string
}

func (e *PropertyLookupError) Error() string {
	if math.IsNaN(e.H) {
		return fmt.Sprintf("steam: %s at p=%g MPa, t=%g °C: %s", e.Property, e.P, e.T, e.Reason)
	}
	return fmt.Sprintf("steam: %s at p=%g MPa, h=%g kJ/kg: %s", e.Property, e.P, e.H, e.Reason)
}

// IF97 is the superheated steam oracle. The zero value is ready to use and
// safe for concurrent use.
type IF97 struct{}

func New() IF97 { return IF97{} }

// EnthalpyFromPT returns h in kJ/kg for p in MPa and t in °C.
func (IF97) EnthalpyFromPT(p, t float64) (float64, error) {
	tk := t + ZeroCelsius
	if err := checkPT(p, tk); err != nil {
		err.Property = Temperature
		return 0, err
	}
	return Region2(p, tk).H, nil
}

// TemperatureFromPH returns t in °C. Enthalpies below the saturated vapour
// line map to the saturation temperature.
func (o IF97) TemperatureFromPH(p, h float64) (float64, error) {
	return o.PropertyFromPH(p, h, Temperature)
}

// PropertyFromPH returns the requested property at p (MPa) and h (kJ/kg):
// temperature in °C, specific volume in m³/kg, dynamic viscosity in Pa·s.
func (IF97) PropertyFromPH(p, h float64, prop Property) (float64, error) {
	switch prop {
	case Temperature, SpecificVolume, DynamicViscosity:
	default:
		return 0, &PropertyLookupError{Property: prop, P: p, H: h, T: math.NaN(), Reason: "unknown property"}
	}
	st, wet, err := solvePH(p, h)
	if err != nil {
		err.Property = prop
		return 0, err
	}
	if wet {
		if prop == Temperature {
			return st.T - ZeroCelsius, nil
		}
		return 0, &PropertyLookupError{Property: prop, P: p, H: h, T: math.NaN(), Reason: "wet steam"}
	}
	switch prop {
	case SpecificVolume:
		return st.V, nil
	case DynamicViscosity:
		return Viscosity(st.T, st.Density()), nil
	}
	return st.T - ZeroCelsius, nil
}

func checkPT(p, tk float64) *PropertyLookupError {
	e := &PropertyLookupError{P: p, H: math.NaN(), T: tk - ZeroCelsius}
	switch {
	case !(p > 0) || p > MaxPressure:
		e.Reason = fmt.Sprintf("pressure outside (0, %g] MPa", MaxPressure)
	case math.IsNaN(tk) || tk > MaxTemperature:
		e.Reason = fmt.Sprintf("temperature above %g °C", MaxTemperature-ZeroCelsius)
	case tk < lowTemperature(p)-1e-9:
		e.Reason = "not superheated steam"
	default:
		return nil
	}
	return e
}

// solvePH inverts h(p, T) by Newton steps kept inside the region 2 bracket.
// wet is set when h lies below the saturated vapour enthalpy.
func solvePH(p, h float64) (State, bool, *PropertyLookupError) {
	fail := func(reason string) *PropertyLookupError {
		return &PropertyLookupError{P: p, H: h, T: math.NaN(), Reason: reason}
	}
	if !(p > 0) || p > MaxPressure {
		return State{}, false, fail(fmt.Sprintf("pressure outside (0, %g] MPa", MaxPressure))
	}
	if math.IsNaN(h) || math.IsInf(h, 0) {
		return State{}, false, fail("enthalpy is not finite")
	}

	lo, hi := lowTemperature(p), MaxTemperature
	low, high := Region2(p, lo), Region2(p, hi)
	switch {
	case h < low.H:
		if p <= boundaryPressure {
			return low, true, nil
		}
		return State{}, false, fail("below region 2")
	case h > high.H:
		return State{}, false, fail("above region 2")
	}

	t := lo + (hi-lo)*(h-low.H)/(high.H-low.H)
	var st State
	for range 100 {
		st = Region2(p, t)
		d := st.H - h
		if math.Abs(d) < 1e-9 {
			return st, false, nil
		}
		if d > 0 {
			hi = t
		} else {
			lo = t
		}
		next := t - d/st.Cp
		if !(next > lo && next < hi) {
			next = (lo + hi) / 2
		}
		if math.Abs(next-t) < 1e-10 {
			return Region2(p, next), false, nil
		}
		t = next
	}
	return st, false, nil
}
