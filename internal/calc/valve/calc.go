package valve

import (
	"Rodcalc/internal/calc/units"
)

// Input is the request body of a calculation. Lengths are in mm, pressures
// in PressureUnit (bar when omitted), temperatures in °C.
type Input struct {
	ClearanceMM      float64    `json:"clearance_mm"`
	DiameterMM       float64    `json:"diameter_mm"`
	RadiusMM         float64    `json:"radius_mm"`
	LengthsMM        []*float64 `json:"lengths_mm"` // up to five, unused ones null at the end
	SteamTemperature float64    `json:"steam_temperature_c"`
	AirTemperature   float64    `json:"air_temperature_c"`
	Valves           int        `json:"valves"`
	Pressures        []float64  `json:"pressures"`
	Ejectors         []float64  `json:"ejector_pressures"`
	PressureUnit     units.Unit `json:"pressure_unit,omitempty"`
}

type SectionOutput struct {
	Index  int     `json:"index"`
	Medium Medium  `json:"medium"`
	G      float64 `json:"g"`
	P      float64 `json:"p_mpa"`
	T      float64 `json:"t"`
	H      float64 `json:"h"`
	W      float64 `json:"w"`
}

type Output struct {
	SteamEnthalpy float64         `json:"steam_enthalpy"`
	Sections      []SectionOutput `json:"sections"`
	Deaerator     *Draw           `json:"deaerator"`
	Ejectors      []Draw          `json:"ejectors"`
}

var defaultNetwork = NewNetwork(nil)

// Calculate runs in on the IF97 steam oracle with default solver settings.
func Calculate(in Input) (Output, error) {
	return defaultNetwork.Calculate(in)
}

func (n *Network) Calculate(in Input) (Output, error) {
	g, b, err := in.Resolve()
	if err != nil {
		return Output{}, err
	}
	res, err := n.Run(g, b)
	if err != nil {
		return Output{}, err
	}
	return NewOutput(res), nil
}

// Lengths returns the section lengths in mm. Nulls may only close the list.
func (in Input) Lengths() ([]float64, error) {
	var out []float64
	ended := false
	for i, l := range in.LengthsMM {
		if l == nil {
			ended = true
			continue
		}
		if ended {
			return nil, &CalculationError{Kind: KindInput, Section: i, Msg: "length follows an empty section"}
		}
		out = append(out, *l)
	}
	return out, nil
}

// Resolve converts the request into SI geometry and MPa boundary conditions.
func (in Input) Resolve() (Geometry, Boundary, error) {
	lengths, err := in.Lengths()
	if err != nil {
		return Geometry{}, Boundary{}, err
	}
	for i := range lengths {
		lengths[i] *= 1e-3
	}
	g, err := NewGeometry(in.ClearanceMM*1e-3, in.DiameterMM*1e-3, in.RadiusMM*1e-3, lengths)
	if err != nil {
		return Geometry{}, Boundary{}, err
	}

	unit := in.PressureUnit
	if unit == 0 {
		unit = units.Bar
	}
	toMPa := func(ps []float64) ([]float64, error) {
		out := make([]float64, len(ps))
		for i, p := range ps {
			v, err := units.ToMPa(p, unit)
			if err != nil {
				return nil, &CalculationError{Kind: KindInput, Section: -1, Msg: "pressure unit", Err: err}
			}
			out[i] = v
		}
		return out, nil
	}
	pressures, err := toMPa(in.Pressures)
	if err != nil {
		return Geometry{}, Boundary{}, err
	}
	ejectors, err := toMPa(in.Ejectors)
	if err != nil {
		return Geometry{}, Boundary{}, err
	}
	return g, Boundary{
		SteamTemperature: in.SteamTemperature,
		AirTemperature:   in.AirTemperature,
		Valves:           in.Valves,
		Pressures:        pressures,
		Ejectors:         ejectors,
	}, nil
}

func NewOutput(res Result) Output {
	out := Output{
		SteamEnthalpy: res.SteamEnthalpy,
		Sections:      make([]SectionOutput, len(res.Sections)),
		Deaerator:     res.Extraction.Deaerator,
		Ejectors:      res.Extraction.Ejectors,
	}
	for i, s := range res.Sections {
		out.Sections[i] = SectionOutput{
			Index:  s.Index,
			Medium: s.Medium,
			G:      s.G,
			P:      s.Pin,
			T:      s.T,
			H:      s.H,
			W:      s.Flow.W,
		}
	}
	return out
}
