package valve

import "math"

// Boundary holds the operating conditions. Pressures in MPa, temperatures in °C.
type Boundary struct {
	SteamTemperature float64
	AirTemperature   float64
	Valves           int
	Pressures        []float64 // inlet pressure of each section, Pressures[0] is P₀
	Ejectors         []float64 // suction pressure of each ejector draw
}

// EjectorDraws is the number of ejector extractions of an n-section valve.
func EjectorDraws(n int) int {
	if n <= 3 {
		return 1
	}
	return n - 2
}

func (b Boundary) validate(n int) error {
	if n < MinSections || n > MaxSections {
		return inputError("invalid section count %d", n)
	}
	if b.Valves < 1 {
		return inputError("valve count must be at least 1")
	}
	if math.IsNaN(b.SteamTemperature) || math.IsNaN(b.AirTemperature) {
		return inputError("temperatures must be numbers")
	}
	if len(b.Pressures) < n {
		return &CalculationError{Kind: KindInput, Section: len(b.Pressures), Msg: "missing pressure"}
	}
	for i, p := range b.Pressures[:n] {
		if !(p > 0) || math.IsInf(p, 0) {
			return &CalculationError{Kind: KindInput, Section: i, Msg: "pressure must be positive"}
		}
	}
	k := EjectorDraws(n)
	if len(b.Ejectors) < k {
		return inputError("missing ejector pressure %d", len(b.Ejectors)+1)
	}
	for i, p := range b.Ejectors[:k] {
		if !(p > 0) || math.IsInf(p, 0) {
			return inputError("ejector pressure %d must be positive", i+1)
		}
	}
	return nil
}
