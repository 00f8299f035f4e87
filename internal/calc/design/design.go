// Package design answers sizing questions on top of the leak-off calculation.
package design

import (
	"fmt"

	"Rodcalc/internal/calc/valve"
)

// EnvelopeInput is a calculation with the diametral tolerances of the stem
// and the bushing, mm.
type EnvelopeInput struct {
	Calc              valve.Input `json:"calc"`
	RodAccuracyMM     float64     `json:"rod_accuracy_mm"`
	BushingAccuracyMM float64     `json:"bushing_accuracy_mm"`
}

type EnvelopeResult struct {
	ClearanceMM [3]float64   `json:"clearance_mm"` // tight, nominal, loose
	Tight       valve.Output `json:"tight"`
	Nominal     valve.Output `json:"nominal"`
	Loose       valve.Output `json:"loose"`
	Notes       string       `json:"notes"`
}

// Envelope computes the leak-off at the nominal clearance and at both ends of
// the tolerance field. The radial clearance moves by half the sum of the
// diametral tolerances.
func Envelope(n *valve.Network, in EnvelopeInput) (EnvelopeResult, error) {
	if in.RodAccuracyMM < 0 || in.BushingAccuracyMM < 0 {
		return EnvelopeResult{}, &valve.CalculationError{Kind: valve.KindInput, Section: -1, Msg: "tolerances must not be negative"}
	}
	calc := calculator(n)
	nominal := in.Calc.ClearanceMM
	spread := (in.RodAccuracyMM + in.BushingAccuracyMM) / 2
	if nominal-spread <= 0 {
		return EnvelopeResult{}, &valve.CalculationError{Kind: valve.KindInput, Section: -1,
			Msg: fmt.Sprintf("tolerance field %.3f mm closes the clearance %.3f mm", spread, nominal)}
	}

	res := EnvelopeResult{ClearanceMM: [3]float64{nominal - spread, nominal, nominal + spread}}
	outs := []*valve.Output{&res.Tight, &res.Nominal, &res.Loose}
	for i, c := range res.ClearanceMM {
		run := in.Calc
		run.ClearanceMM = c
		out, err := calc(run)
		if err != nil {
			return EnvelopeResult{}, err
		}
		*outs[i] = out
	}
	res.Notes = "Leak-off over the clearance tolerance field."
	return res, nil
}

// SizingInput asks for the loosest clearance whose total leak-off through the
// first section stays within LimitKgH.
type SizingInput struct {
	Calc     valve.Input `json:"calc"`
	LimitKgH float64     `json:"limit_kg_h"`
}

type SizingResult struct {
	ClearanceMM float64      `json:"clearance_mm"`
	LeakKgH     float64      `json:"leak_kg_h"`
	Output      valve.Output `json:"output"`
	Notes       string       `json:"notes"`
}

const (
	minClearanceMM = 0.01
	maxClearanceMM = 2.0
	clearanceTolMM = 1e-4
)

func leak(out valve.Output, valves int) float64 {
	return out.Sections[0].G * float64(valves)
}

// MaxClearance bisects on the clearance; the leak-off grows with it.
func MaxClearance(n *valve.Network, in SizingInput) (SizingResult, error) {
	if !(in.LimitKgH > 0) {
		return SizingResult{}, &valve.CalculationError{Kind: valve.KindInput, Section: -1, Msg: "leak-off limit must be positive"}
	}
	calc := calculator(n)
	at := func(c float64) (valve.Output, float64, error) {
		run := in.Calc
		run.ClearanceMM = c
		out, err := calc(run)
		if err != nil {
			return valve.Output{}, 0, err
		}
		return out, leak(out, in.Calc.Valves), nil
	}

	lo, hi := minClearanceMM, maxClearanceMM
	best, g, err := at(lo)
	if err != nil {
		return SizingResult{}, err
	}
	if g > in.LimitKgH {
		return SizingResult{}, &valve.CalculationError{Kind: valve.KindInput, Section: -1,
			Msg: fmt.Sprintf("limit %.4g kg/h is below the leak-off at %.2f mm", in.LimitKgH, lo)}
	}
	if out, gHi, err := at(hi); err != nil {
		return SizingResult{}, err
	} else if gHi <= in.LimitKgH {
		return SizingResult{ClearanceMM: hi, LeakKgH: gHi, Output: out, Notes: "Limit not reached in the clearance range."}, nil
	}

	for hi-lo > clearanceTolMM {
		mid := (lo + hi) / 2
		out, gm, err := at(mid)
		if err != nil {
			return SizingResult{}, err
		}
		if gm <= in.LimitKgH {
			lo, best, g = mid, out, gm
		} else {
			hi = mid
		}
	}
	return SizingResult{ClearanceMM: lo, LeakKgH: g, Output: best, Notes: "Largest clearance within the leak-off limit."}, nil
}

func calculator(n *valve.Network) func(valve.Input) (valve.Output, error) {
	if n == nil {
		return valve.Calculate
	}
	return n.Calculate
}
