// Package section solves the leak-off flow through one annular clearance
// section of a valve stem.
package section

import (
	"math"

	"github.com/sirupsen/logrus"

	"Rodcalc/internal/calc/friction"
)

// Options tune the velocity search. Velocities in m/s, pressures in MPa,
// flows in the same units as Flow.G.
type Options struct {
	MinVelocity       float64
	MaxVelocity       float64
	StartVelocity     float64
	Tolerance         float64
	MaxIterations     int
	EqualPressureBump float64
	TerminalMinFlow   float64
}

func DefaultOptions() Options {
	return Options{
		MinVelocity:       1,
		MaxVelocity:       1000,
		StartVelocity:     50,
		Tolerance:         0.001,
		MaxIterations:     200,
		EqualPressureBump: 0.003,
		TerminalMinFlow:   0.001,
	}
}

// withDefaults fills zero fields so a partially configured Options stays usable.
func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.MinVelocity <= 0 {
		o.MinVelocity = d.MinVelocity
	}
	if o.MaxVelocity <= o.MinVelocity {
		o.MaxVelocity = math.Max(d.MaxVelocity, o.MinVelocity*2)
	}
	if o.StartVelocity <= 0 {
		o.StartVelocity = d.StartVelocity
	}
	if o.Tolerance <= 0 {
		o.Tolerance = d.Tolerance
	}
	if o.MaxIterations <= 0 {
		o.MaxIterations = d.MaxIterations
	}
	if o.EqualPressureBump <= 0 {
		o.EqualPressureBump = d.EqualPressureBump
	}
	if o.TerminalMinFlow <= 0 {
		o.TerminalMinFlow = d.TerminalMinFlow
	}
	return o
}

// Params describe one section. Clearance and Length in m, Area in m².
type Params struct {
	Pin       float64 // MPa
	Pout      float64 // MPa
	V         float64 // specific volume, m³/kg
	Mu        float64 // dynamic viscosity, Pa·s
	Length    float64
	Clearance float64
	Area      float64
	KSI       float64
	Terminal  bool
}

// Flow is the solved state of a section.
type Flow struct {
	G          float64 `json:"g"`
	W          float64 `json:"w"`
	Re         float64 `json:"re"`
	Alpha      float64 `json:"alpha"`
	Iterations int     `json:"iterations"`
	Converged  bool    `json:"converged"`
}

type Solver struct {
	Options Options
	Log     logrus.FieldLogger
}

func NewSolver(opts Options, log logrus.FieldLogger) *Solver {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Solver{Options: opts.withDefaults(), Log: log}
}

// Solve finds the velocity W for which the flow through the clearance
// carries exactly W, i.e. W = v·G(W)/(3.6·S).
func (s *Solver) Solve(p Params) Flow {
	opt := s.Options.withDefaults()
	log := s.Log
	if log == nil {
		log = logrus.StandardLogger()
	}

	if p.Pin == p.Pout {
		p.Pin += opt.EqualPressureBump
	}

	nu := p.V * p.Mu
	if !(nu > 0) || math.IsInf(nu, 0) {
		log.WithFields(logrus.Fields{"v": p.V, "mu": p.Mu}).Warn("non-positive kinematic viscosity, flow set to zero")
		return Flow{}
	}
	radicand := drive(p)
	if !(radicand >= 0) || math.IsInf(radicand, 0) {
		log.WithFields(logrus.Fields{"pin": p.Pin, "pout": p.Pout}).Warn("inverted pressure drop, flow set to zero")
		return Flow{}
	}
	if !(p.Area > 0) || !(p.Clearance > 0) {
		log.WithFields(logrus.Fields{"area": p.Area, "clearance": p.Clearance}).Warn("degenerate clearance, flow set to zero")
		return Flow{}
	}
	root := math.Sqrt(radicand)

	lo, hi := opt.MinVelocity, opt.MaxVelocity
	w := math.Min(math.Max(opt.StartVelocity, lo), hi)
	var (
		last      float64
		converged bool
		iter      int
		// lo is a real lower bracket only once an iterate fell short
		bracketed bool
	)
	for iter < opt.MaxIterations {
		iter++
		last = w
		g, _, _ := flowAt(p, opt, nu, root, w)
		delta := w - p.V*g/(3.6*p.Area)
		if math.Abs(delta) < opt.Tolerance {
			converged = true
			break
		}
		var next float64
		if delta <= opt.Tolerance {
			lo, bracketed = w, true
			next = w + math.Max(0.001, w)
		} else {
			hi = w
			next = w - math.Max(0.001, 0.9*w)
		}
		// below MinVelocity the root may still lie anywhere above zero
		if !bracketed && next <= lo && next > 0 {
			lo = 0
		}
		if !(next > lo && next < hi) {
			next = (lo + hi) / 2
		}
		w = next
	}
	if !converged {
		log.WithFields(logrus.Fields{"w": last, "iterations": iter}).Warn("velocity search did not converge")
	}

	g, re, alpha := flowAt(p, opt, nu, root, last)
	return Flow{G: g, W: last, Re: re, Alpha: alpha, Iterations: iter, Converged: converged}
}

// drive is (Pin²−Pout²)/(Pin·v) with the pressures in Pa.
func drive(p Params) float64 {
	pin, pout := p.Pin*1e6, p.Pout*1e6
	return (pin*pin - pout*pout) / (pin * p.V)
}

func flowAt(p Params, opt Options, nu, root, w float64) (g, re, alpha float64) {
	re = w * 2 * p.Clearance / nu
	alpha = 1 / math.Sqrt(1+p.KSI+0.5*friction.FrictionFactor(re)*p.Length/p.Clearance)
	g = alpha * p.Area * root * 3.6
	if math.IsNaN(g) {
		g = 0
	}
	if p.Terminal {
		g = math.Max(opt.TerminalMinFlow, g)
	}
	return g, re, alpha
}
