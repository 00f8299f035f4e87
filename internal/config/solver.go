package config

import (
	"errors"
	"io/fs"

	log "github.com/sirupsen/logrus"
	"gopkg.in/ini.v1"

	"Rodcalc/internal/calc/section"
	"Rodcalc/internal/calc/units"
	"Rodcalc/internal/calc/valve"
)

// Solver holds the numeric settings read from the [solver] and [network]
// sections of the ini file.
type Solver struct {
	Section    section.Options
	Atmosphere float64 // MPa
}

func DefaultSolver() Solver {
	return Solver{Section: section.DefaultOptions(), Atmosphere: units.StandardAtmosphere}
}

// LoadSolver reads path. A missing file gives the defaults.
func LoadSolver(path string, logger log.FieldLogger) (Solver, error) {
	file, err := ini.Load(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			if logger != nil {
				logger.WithField("path", path).Warn("solver config not found, using defaults")
			}
			return DefaultSolver(), nil
		}
		return Solver{}, err
	}
	return ParseSolver(file), nil
}

func ParseSolver(file *ini.File) Solver {
	d := DefaultSolver()
	s := file.Section("solver")
	n := file.Section("network")
	return Solver{
		Section: section.Options{
			MinVelocity:       s.Key("min_velocity").MustFloat64(d.Section.MinVelocity),
			MaxVelocity:       s.Key("max_velocity").MustFloat64(d.Section.MaxVelocity),
			StartVelocity:     s.Key("start_velocity").MustFloat64(d.Section.StartVelocity),
			Tolerance:         s.Key("tolerance").MustFloat64(d.Section.Tolerance),
			MaxIterations:     s.Key("max_iterations").MustInt(d.Section.MaxIterations),
			EqualPressureBump: s.Key("equal_pressure_bump").MustFloat64(d.Section.EqualPressureBump),
			TerminalMinFlow:   s.Key("terminal_min_flow").MustFloat64(d.Section.TerminalMinFlow),
		},
		Atmosphere: n.Key("atmosphere").MustFloat64(d.Atmosphere),
	}
}

// Network builds a calculation network with these settings.
func (s Solver) Network(oracle valve.PropertyOracle, logger log.FieldLogger) *valve.Network {
	return valve.NewNetwork(oracle,
		valve.WithLogger(logger),
		valve.WithSolverOptions(s.Section),
		valve.WithAtmosphere(s.Atmosphere),
	)
}
