package valve

import (
	"math"

	"Rodcalc/internal/calc/friction"
)

const (
	MinSections = 2
	MaxSections = 5
)

// Geometry of the stem clearance, all lengths in metres.
type Geometry struct {
	Clearance float64   // radial clearance δ
	Diameter  float64   // stem diameter D
	Radius    float64   // inlet rounding radius r
	Lengths   []float64 // section lengths along the leak path
}

// Constants derived once from a Geometry.
type Constants struct {
	ProportionalCoef float64 // r/(2δ)
	Area             float64 // δ·π·D
	KSI              float64 // inlet loss for ProportionalCoef
}

// NewGeometry validates the dimensions and copies the section lengths.
func NewGeometry(clearance, diameter, radius float64, lengths []float64) (Geometry, error) {
	switch {
	case !(clearance > 0):
		return Geometry{}, inputError("clearance must be positive")
	case !(diameter > 0):
		return Geometry{}, inputError("diameter must be positive")
	case !(radius > 0):
		return Geometry{}, inputError("rounding radius must be positive")
	}
	if n := len(lengths); n < MinSections || n > MaxSections {
		return Geometry{}, inputError("invalid section count %d", n)
	}
	for i, l := range lengths {
		if !(l > 0) || math.IsInf(l, 0) {
			return Geometry{}, &CalculationError{Kind: KindInput, Section: i, Msg: "length must be positive"}
		}
	}
	return Geometry{
		Clearance: clearance,
		Diameter:  diameter,
		Radius:    radius,
		Lengths:   append([]float64(nil), lengths...),
	}, nil
}

func (g Geometry) Sections() int { return len(g.Lengths) }

func (g Geometry) Constants() Constants {
	ratio := g.Radius / (2 * g.Clearance)
	return Constants{
		ProportionalCoef: ratio,
		Area:             g.Clearance * math.Pi * g.Diameter,
		KSI:              friction.InletLoss(ratio),
	}
}
