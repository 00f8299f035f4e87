// Package valve computes the steam and air leak-off along a valve stem and
// the flows drawn off to the deaerator and the ejectors.
package valve

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"Rodcalc/internal/calc/air"
	"Rodcalc/internal/calc/section"
	"Rodcalc/internal/calc/steam"
	"Rodcalc/internal/calc/units"
)

// PropertyOracle looks up steam properties. Pressures in MPa, enthalpy in
// kJ/kg, temperature in °C.
type PropertyOracle interface {
	EnthalpyFromPT(p, t float64) (float64, error)
	PropertyFromPH(p, h float64, prop steam.Property) (float64, error)
}

func temperatureFromPH(o PropertyOracle, p, h float64) (float64, error) {
	return o.PropertyFromPH(p, h, steam.Temperature)
}

type Medium int

const (
	Steam Medium = iota
	Air
)

func (m Medium) String() string {
	if m == Air {
		return "air"
	}
	return "steam"
}

func (m Medium) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

func (m *Medium) UnmarshalText(b []byte) error {
	switch string(b) {
	case "steam":
		*m = Steam
	case "air":
		*m = Air
	default:
		return fmt.Errorf("unknown medium %q", b)
	}
	return nil
}

// SectionState is the resolved state of one section.
type SectionState struct {
	Index  int          `json:"index"`
	Medium Medium       `json:"medium"`
	Pin    float64      `json:"pin"`  // MPa
	Pout   float64      `json:"pout"` // MPa
	H      float64      `json:"h"`    // kJ/kg
	V      float64      `json:"v"`    // m³/kg
	Mu     float64      `json:"mu"`   // Pa·s
	T      float64      `json:"t"`    // °C
	G      float64      `json:"g"`    // per valve
	Flow   section.Flow `json:"flow"`
}

type Result struct {
	SteamEnthalpy float64        `json:"steam_enthalpy"`
	Sections      []SectionState `json:"sections"`
	Extraction    Extraction     `json:"extraction"`
}

// Network runs the section solver along the leak path. It holds only
// read-only configuration and may be shared between goroutines.
type Network struct {
	oracle     PropertyOracle
	solverOpts section.Options
	solver     *section.Solver
	log        logrus.FieldLogger
	atmosphere float64
}

type Option func(*Network)

func WithLogger(log logrus.FieldLogger) Option {
	return func(n *Network) {
		if log != nil {
			n.log = log
		}
	}
}

func WithSolverOptions(opts section.Options) Option {
	return func(n *Network) { n.solverOpts = opts }
}

// WithAtmosphere sets the inlet pressure of the air section, MPa.
func WithAtmosphere(p float64) Option {
	return func(n *Network) {
		if p > 0 {
			n.atmosphere = p
		}
	}
}

func NewNetwork(oracle PropertyOracle, opts ...Option) *Network {
	if oracle == nil {
		oracle = steam.New()
	}
	n := &Network{
		oracle:     oracle,
		solverOpts: section.DefaultOptions(),
		log:        logrus.StandardLogger(),
		atmosphere: units.StandardAtmosphere,
	}
	for _, opt := range opts {
		opt(n)
	}
	n.solver = section.NewSolver(n.solverOpts, n.log)
	return n
}

func (n *Network) Oracle() PropertyOracle { return n.oracle }

// Run resolves every section and the extraction summary. It returns either a
// complete Result or a *CalculationError.
func (n *Network) Run(g Geometry, b Boundary) (Result, error) {
	count := g.Sections()
	if count < MinSections || count > MaxSections {
		return Result{}, inputError("invalid section count %d", count)
	}
	if err := b.validate(count); err != nil {
		return Result{}, err
	}
	c := g.Constants()

	hSteam, err := n.oracle.EnthalpyFromPT(b.Pressures[0], b.SteamTemperature)
	if err != nil {
		return Result{}, propertyError(0, "steam enthalpy", err)
	}

	states := make([]SectionState, count)
	for i := range count {
		st := SectionState{Index: i}
		terminal := i == count-1
		if terminal {
			props := air.At(b.AirTemperature)
			st.Medium = Air
			st.Pin = n.atmosphere
			st.Pout = b.Ejectors[EjectorDraws(count)-1]
			st.H = props.Enthalpy
			st.V = props.SpecificVolume
			st.Mu = props.DynamicViscosity
			st.T = b.AirTemperature
		} else {
			st.Medium = Steam
			st.Pin = b.Pressures[i]
			st.Pout = b.Pressures[i+1]
			st.H = hSteam
			if st.V, err = n.oracle.PropertyFromPH(st.Pin, hSteam, steam.SpecificVolume); err != nil {
				return Result{}, propertyError(i, "specific volume", err)
			}
			if st.T, err = temperatureFromPH(n.oracle, st.Pin, hSteam); err != nil {
				return Result{}, propertyError(i, "temperature", err)
			}
			if st.Mu, err = n.oracle.PropertyFromPH(st.Pin, hSteam, steam.DynamicViscosity); err != nil {
				return Result{}, propertyError(i, "viscosity", err)
			}
		}

		st.Flow = n.solver.Solve(section.Params{
			Pin:       st.Pin,
			Pout:      st.Pout,
			V:         st.V,
			Mu:        st.Mu,
			Length:    g.Lengths[i],
			Clearance: g.Clearance,
			Area:      c.Area,
			KSI:       c.KSI,
			Terminal:  terminal,
		})
		st.G = st.Flow.G
		n.log.WithFields(logrus.Fields{
			"section":    i + 1,
			"medium":     st.Medium.String(),
			"g":          st.G,
			"w":          st.Flow.W,
			"iterations": st.Flow.Iterations,
		}).Debug("section solved")
		states[i] = st
	}

	ex, err := Aggregate(n.oracle, states, b)
	if err != nil {
		return Result{}, err
	}
	return Result{SteamEnthalpy: hSteam, Sections: states, Extraction: ex}, nil
}
