package valve

import "math"

// Draw is one extraction: flow for all valves, temperature °C, enthalpy
// kJ/kg and pressure MPa.
type Draw struct {
	G float64 `json:"g"`
	T float64 `json:"t"`
	H float64 `json:"h"`
	P float64 `json:"p"`
}

type Extraction struct {
	Deaerator *Draw  `json:"deaerator,omitempty"`
	Ejectors  []Draw `json:"ejectors"`
}

// mix is the enthalpy of two merged flows. Two empty flows give the mean.
func mix(a, b SectionState) float64 {
	if a.G+b.G == 0 {
		return (a.H + b.H) / 2
	}
	return (a.H*a.G + b.H*b.G) / (a.G + b.G)
}

type ejectorRule struct {
	flow func(g []float64) float64
	a, b int // sections mixed into the draw
}

// Per valve flows; the caller multiplies by the valve count.
var deaeratorRules = map[int]func(g []float64) float64{
	3: func(g []float64) float64 { return g[0] - g[1] },
	4: func(g []float64) float64 { return g[0] - g[1] - g[2] },
	5: func(g []float64) float64 { return g[0] - g[1] - g[2] - g[3] },
}

var ejectorRules = map[int][]ejectorRule{
	2: {
		{func(g []float64) float64 { return g[0] + g[1] }, 0, 1},
	},
	3: {
		{func(g []float64) float64 { return g[1] + g[2] }, 1, 2},
	},
	4: {
		{func(g []float64) float64 { return math.Abs(g[3] - g[2] - g[1]) }, 1, 2},
		{func(g []float64) float64 { return math.Abs(g[2] - g[3]) }, 2, 3},
	},
	5: {
		{func(g []float64) float64 { return math.Abs(g[1] - g[2] - g[3]) }, 1, 2},
		{func(g []float64) float64 { return math.Abs(g[2] - g[3]) }, 2, 3},
		{func(g []float64) float64 { return g[3] + g[4] }, 3, 4},
	},
}

// Aggregate derives the deaerator and ejector draws from the solved sections.
func Aggregate(oracle PropertyOracle, sections []SectionState, b Boundary) (Extraction, error) {
	n := len(sections)
	rules, ok := ejectorRules[n]
	if !ok {
		return Extraction{}, inputError("invalid section count %d", n)
	}
	if b.Valves < 1 {
		return Extraction{}, inputError("valve count must be at least 1")
	}
	if len(b.Ejectors) < len(rules) {
		return Extraction{}, inputError("missing ejector pressure %d", len(b.Ejectors)+1)
	}
	z := float64(b.Valves)
	g := make([]float64, n)
	for i, s := range sections {
		g[i] = s.G
	}

	var ex Extraction
	if rule, ok := deaeratorRules[n]; ok {
		if len(b.Pressures) < 2 {
			return Extraction{}, &CalculationError{Kind: KindInput, Section: 1, Msg: "missing pressure"}
		}
		d := Draw{G: rule(g) * z, H: sections[1].H, P: b.Pressures[1]}
		t, err := temperatureFromPH(oracle, d.P, d.H)
		if err != nil {
			return Extraction{}, propertyError(-1, "deaerator temperature", err)
		}
		d.T = t
		ex.Deaerator = &d
	}

	ex.Ejectors = make([]Draw, len(rules))
	for k, rule := range rules {
		d := Draw{
			G: rule.flow(g) * z,
			H: mix(sections[rule.a], sections[rule.b]),
			P: b.Ejectors[k],
		}
		t, err := temperatureFromPH(oracle, d.P, d.H)
		if err != nil {
			return Extraction{}, propertyError(-1, "ejector temperature", err)
		}
		d.T = t
		ex.Ejectors[k] = d
	}
	return ex, nil
}
