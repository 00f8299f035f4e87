package steam

import (
	"math"
	"testing"
)

func near(got, want, rel float64) bool {
	return math.Abs(got-want) <= rel*math.Abs(want)
}

func TestRegion2(t *testing.T) {
	cases := []struct {
		t, p     float64
		v, h, cp float64
	}{
		{300, 0.0035, 39.4913866, 2549.91145, 1.91300162},
		{700, 0.0035, 92.3015898, 3335.68375, 2.08141274},
		{700, 30, 0.00542946619, 2631.49474, 10.3505092},
	}
	for _, c := range cases {
		st := Region2(c.p, c.t)
		if !near(st.V, c.v, 1e-8) {
			t.Errorf("v(%g K, %g MPa): expected %.9g, got %.9g", c.t, c.p, c.v, st.V)
		}
		if !near(st.H, c.h, 1e-8) {
			t.Errorf("h(%g K, %g MPa): expected %.9g, got %.9g", c.t, c.p, c.h, st.H)
		}
		if !near(st.Cp, c.cp, 1e-7) {
			t.Errorf("cp(%g K, %g MPa): expected %.9g, got %.9g", c.t, c.p, c.cp, st.Cp)
		}
	}
}

func TestSaturationTemperature(t *testing.T) {
	cases := []struct{ p, t float64 }{
		{0.1, 372.755919},
		{1, 453.035632},
		{10, 584.149488},
	}
	for _, c := range cases {
		if got := SaturationTemperature(c.p); math.Abs(got-c.t) > 1e-5 {
			t.Errorf("Tsat(%g): expected %.9g, got %.9g", c.p, c.t, got)
		}
	}
}

func TestB23(t *testing.T) {
	if got := B23Pressure(623.15); math.Abs(got-16.5291643) > 1e-6 {
		t.Errorf("B23 p(623.15): got %.9g", got)
	}
	if got := B23Temperature(16.5291643); math.Abs(got-623.15) > 1e-4 {
		t.Errorf("B23 T(16.529): got %.9g", got)
	}
}

func TestViscosity(t *testing.T) {
	cases := []struct{ t, rho, mu float64 }{
		{433.15, 1, 14.538324},
		{873.15, 1, 32.619287},
		{1173.15, 100, 47.640433},
	}
	for _, c := range cases {
		got := Viscosity(c.t, c.rho) * 1e6
		if math.Abs(got-c.mu) > 1e-4 {
			t.Errorf("mu(%g K, %g kg/m3): expected %.8g µPa·s, got %.8g", c.t, c.rho, c.mu, got)
		}
	}
}
