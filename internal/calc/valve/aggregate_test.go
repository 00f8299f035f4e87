package valve

import (
	"errors"
	"math"
	"testing"

	"Rodcalc/internal/calc/steam"
)

// linearOracle maps h to t = h/10 so draws can be checked by hand.
type linearOracle struct{ fail bool }

func (o linearOracle) EnthalpyFromPT(p, t float64) (float64, error) { return t * 10, nil }

func (o linearOracle) PropertyFromPH(p, h float64, prop steam.Property) (float64, error) {
	if o.fail {
		return 0, &steam.PropertyLookupError{Property: prop, P: p, H: h, T: math.NaN(), Reason: "test"}
	}
	return h / 10, nil
}

func states(gs ...float64) []SectionState {
	out := make([]SectionState, len(gs))
	for i, g := range gs {
		out[i] = SectionState{Index: i, G: g, H: float64(1000 * (i + 1))}
	}
	return out
}

func boundary(n int) Boundary {
	return Boundary{Valves: 2, Pressures: make([]float64, n), Ejectors: []float64{0.3, 0.2, 0.1}}
}

func TestAggregateDispatch(t *testing.T) {
	cases := []struct {
		gs        []float64
		deaerator float64
		ejectors  []float64
	}{
		{[]float64{0.5, 0.01}, -1, []float64{(0.5 + 0.01) * 2}},
		{[]float64{0.5, 0.04, 0.005}, (0.5 - 0.04) * 2, []float64{(0.04 + 0.005) * 2}},
		{[]float64{0.5, 0.04, 0.02, 0.005}, (0.5 - 0.04 - 0.02) * 2, []float64{math.Abs(0.005-0.02-0.04) * 2, math.Abs(0.02-0.005) * 2}},
		{[]float64{0.7, 0.1, 0.04, 0.02, 0.005}, (0.7 - 0.1 - 0.04 - 0.02) * 2, []float64{math.Abs(0.1-0.04-0.02) * 2, math.Abs(0.04-0.02) * 2, (0.02 + 0.005) * 2}},
	}
	for _, c := range cases {
		n := len(c.gs)
		b := boundary(n)
		b.Pressures[1] = 0.6
		ex, err := Aggregate(linearOracle{}, states(c.gs...), b)
		if err != nil {
			t.Fatalf("%d sections: %v", n, err)
		}
		if c.deaerator < 0 {
			if ex.Deaerator != nil {
				t.Errorf("%d sections: unexpected deaerator %+v", n, ex.Deaerator)
			}
		} else {
			d := ex.Deaerator
			if d == nil {
				t.Fatalf("%d sections: missing deaerator", n)
			}
			if math.Abs(d.G-c.deaerator) > 1e-12 || d.H != 2000 || d.P != 0.6 || d.T != 200 {
				t.Errorf("%d sections: deaerator %+v", n, *d)
			}
		}
		if len(ex.Ejectors) != len(c.ejectors) {
			t.Fatalf("%d sections: expected %d ejector draws, got %d", n, len(c.ejectors), len(ex.Ejectors))
		}
		for k, want := range c.ejectors {
			e := ex.Ejectors[k]
			if math.Abs(e.G-want) > 1e-12 {
				t.Errorf("%d sections, ejector %d: expected G %g, got %g", n, k+1, want, e.G)
			}
			if e.P != b.Ejectors[k] || math.Abs(e.T-e.H/10) > 1e-9 {
				t.Errorf("%d sections, ejector %d: %+v", n, k+1, e)
			}
		}
	}
}

func TestAggregateMixing(t *testing.T) {
	ex, err := Aggregate(linearOracle{}, states(0.5, 0.03, 0.01), boundary(3))
	if err != nil {
		t.Fatal(err)
	}
	want := (2000*0.03 + 3000*0.01) / 0.04
	if got := ex.Ejectors[0].H; math.Abs(got-want) > 1e-9 {
		t.Errorf("expected mixed enthalpy %g, got %g", want, got)
	}
}

func TestAggregateZeroFlowMix(t *testing.T) {
	ex, err := Aggregate(linearOracle{}, states(0.5, 0, 0), boundary(3))
	if err != nil {
		t.Fatal(err)
	}
	e := ex.Ejectors[0]
	if e.H != 2500 || e.G != 0 {
		t.Errorf("expected mean enthalpy 2500 at zero flow, got %+v", e)
	}
}

func TestAggregateDeaeratorNonNegative(t *testing.T) {
	for _, gs := range [][]float64{{0.5, 0.04, 0.005}, {0.04, 0.04, 0.005}, {1, 0, 0.001}} {
		ex, err := Aggregate(linearOracle{}, states(gs...), boundary(3))
		if err != nil {
			t.Fatal(err)
		}
		if ex.Deaerator.G < 0 {
			t.Errorf("G=%v: negative deaerator flow %g", gs, ex.Deaerator.G)
		}
	}
}

func TestAggregateInvalidCount(t *testing.T) {
	for _, n := range []int{0, 1, 6} {
		_, err := Aggregate(linearOracle{}, make([]SectionState, n), boundary(n))
		var ce *CalculationError
		if !errors.As(err, &ce) || ce.Kind != KindInput {
			t.Errorf("%d sections: expected input CalculationError, got %v", n, err)
		}
	}
}

func TestAggregatePropertyFailure(t *testing.T) {
	_, err := Aggregate(linearOracle{fail: true}, states(0.5, 0.04, 0.005), boundary(3))
	var ce *CalculationError
	if !errors.As(err, &ce) || ce.Kind != KindProperty {
		t.Fatalf("expected property CalculationError, got %v", err)
	}
	var le *steam.PropertyLookupError
	if !errors.As(err, &le) {
		t.Error("expected the lookup error to be wrapped")
	}
}
