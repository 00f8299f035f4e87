package units

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Unit is a pressure unit. The numeric codes are the ones stored by the
// valve catalogue and accepted by the API.
type Unit int

const (
	Pascal Unit = iota + 1
	KiloPascal
	KgfPerCm2
	TechnicalAtm
	Bar
	PhysicalAtm
)

// StandardAtmosphere is 1 atm in MPa.
const StandardAtmosphere = 0.101325

var toMPa = map[Unit]float64{
	Pascal:       1e-6,
	KiloPascal:   1e-3,
	KgfPerCm2:    0.0980665,
	TechnicalAtm: 0.101325,
	Bar:          0.1,
	PhysicalAtm:  0.101325,
}

var names = map[Unit]string{
	Pascal:       "Pa",
	KiloPascal:   "kPa",
	KgfPerCm2:    "kgf/cm2",
	TechnicalAtm: "at",
	Bar:          "bar",
	PhysicalAtm:  "atm",
}

// All lists the supported units in code order.
func All() []Unit {
	return []Unit{Pascal, KiloPascal, KgfPerCm2, TechnicalAtm, Bar, PhysicalAtm}
}

func (u Unit) Valid() bool {
	_, ok := toMPa[u]
	return ok
}

func (u Unit) String() string {
	if n, ok := names[u]; ok {
		return n
	}
	return fmt.Sprintf("Unit(%d)", int(u))
}

// ParseUnit accepts either the unit name or its numeric code.
func ParseUnit(s string) (Unit, error) {
	s = strings.TrimSpace(s)
	for u, n := range names {
		if strings.EqualFold(n, s) {
			return u, nil
		}
	}
	var code int
	if _, err := fmt.Sscanf(s, "%d", &code); err == nil && Unit(code).Valid() {
		return Unit(code), nil
	}
	return 0, fmt.Errorf("unknown pressure unit %q", s)
}

// UnmarshalJSON takes a code (5) or a name ("bar").
func (u *Unit) UnmarshalJSON(b []byte) error {
	var code int
	if err := json.Unmarshal(b, &code); err == nil {
		if !Unit(code).Valid() {
			return fmt.Errorf("unknown pressure unit %d", code)
		}
		*u = Unit(code)
		return nil
	}
	var name string
	if err := json.Unmarshal(b, &name); err != nil {
		return err
	}
	parsed, err := ParseUnit(name)
	if err != nil {
		return err
	}
	*u = parsed
	return nil
}

func ToMPa(p float64, u Unit) (float64, error) {
	f, ok := toMPa[u]
	if !ok {
		return 0, fmt.Errorf("unknown pressure unit %d", int(u))
	}
	return p * f, nil
}

func FromMPa(p float64, u Unit) (float64, error) {
	f, ok := toMPa[u]
	if !ok {
		return 0, fmt.Errorf("unknown pressure unit %d", int(u))
	}
	return p / f, nil
}

// BarToMPa is the conversion used at the API boundary.
func BarToMPa(p float64) float64 {
	return p * toMPa[Bar]
}

func MPaToBar(p float64) float64 {
	return p / toMPa[Bar]
}
