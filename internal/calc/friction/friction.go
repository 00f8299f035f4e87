package friction

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/interp"
)

// Reynolds number -> friction coefficient of the annular clearance.
var (
	reynolds = []float64{
		100, 200, 300, 400, 500, 600, 700, 800, 900, 1000, 1100, 1200,
		1300, 1400, 1500, 1600, 1700, 1800, 1900, 2000, 2500, 3000,
		4000, 5000, 6000, 8000, 10000, 15000, 20000, 30000, 40000,
		50000, 60000, 80000, 100000, 150000, 200000, 300000, 400000,
		500000, 600000, 800000, 1000000, 1500000, 2000000, 3000000,
		4000000, 5000000, 8000000, 10000000, 15000000, 20000000,
		30000000, 60000000, 80000000, 100000000,
	}
	lambdas = []float64{
		0.640, 0.320, 0.213, 0.160, 0.128, 0.107, 0.092, 0.080, 0.071,
		0.064, 0.058, 0.053, 0.049, 0.046, 0.043, 0.040, 0.038, 0.036,
		0.034, 0.032, 0.034, 0.040, 0.040, 0.038, 0.036, 0.033, 0.032,
		0.028, 0.026, 0.024, 0.022, 0.021, 0.020, 0.019, 0.018, 0.017,
		0.016, 0.015, 0.014, 0.013, 0.013, 0.012, 0.012, 0.011, 0.011,
		0.010, 0.010, 0.009, 0.009, 0.008, 0.008, 0.008, 0.007, 0.007,
		0.006, 0.006,
	}
)

// Rounding radius / (2*clearance) -> inlet loss coefficient.
var (
	ratios = []float64{0.00, 0.01, 0.02, 0.03, 0.04, 0.05, 0.06, 0.08, 0.12, 0.16, 0.20, 10.0}
	ksis   = []float64{0.50, 0.43, 0.36, 0.31, 0.26, 0.22, 0.20, 0.15, 0.09, 0.06, 0.03, 0.03}
)

var (
	lambdaCurve = mustCurve(reynolds, lambdas)
	ksiCurve    = mustCurve(ratios, ksis)
)

// Curve is a tabulated function evaluated by piecewise-linear interpolation.
// Outside the table it continues the first or last segment, it never clamps.
type Curve struct {
	xs, ys []float64
	pl     interp.PiecewiseLinear
}

func NewCurve(xs, ys []float64) (*Curve, error) {
	if len(xs) != len(ys) {
		return nil, fmt.Errorf("table has %d abscissae and %d ordinates", len(xs), len(ys))
	}
	if len(xs) < 2 {
		return nil, errors.New("table needs at least two points")
	}
	for i := 1; i < len(xs); i++ {
		if !(xs[i] > xs[i-1]) {
			return nil, fmt.Errorf("abscissae not strictly increasing at index %d", i)
		}
	}
	c := &Curve{
		xs: append([]float64(nil), xs...),
		ys: append([]float64(nil), ys...),
	}
	if err := c.pl.Fit(c.xs, c.ys); err != nil {
		return nil, err
	}
	return c, nil
}

func mustCurve(xs, ys []float64) *Curve {
	c, err := NewCurve(xs, ys)
	if err != nil {
		panic(err)
	}
	return c
}

func (c *Curve) At(x float64) float64 {
	n := len(c.xs)
	switch {
	case x < c.xs[0]:
		return extrapolate(c.xs[0], c.ys[0], c.xs[1], c.ys[1], x)
	case x > c.xs[n-1]:
		return extrapolate(c.xs[n-2], c.ys[n-2], c.xs[n-1], c.ys[n-1], x)
	}
	return c.pl.Predict(x)
}

func extrapolate(x0, y0, x1, y1, x float64) float64 {
	return y0 + (x-x0)*(y1-y0)/(x1-x0)
}

// FrictionFactor returns the friction coefficient λ for a Reynolds number.
// Non-physical (zero or negative) numbers are extrapolated like any other.
func FrictionFactor(re float64) float64 {
	return lambdaCurve.At(re)
}

// InletLoss returns the inlet softening coefficient ξ for the ratio r/(2δ).
func InletLoss(ratio float64) float64 {
	return ksiCurve.At(ratio)
}
