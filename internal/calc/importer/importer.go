// Package importer reads calculation requests from xlsx workbooks and writes
// results back into them.
package importer

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"Rodcalc/internal/calc/batch"
	"Rodcalc/internal/calc/units"
	"Rodcalc/internal/calc/valve"
)

// Header of the request sheet. Lengths in mm, temperatures in °C, pressures
// in bar. Unused lengths, pressures and ejectors are left empty.
var Header = []string{
	"Drawing", "Clearance, mm", "Diameter, mm", "Radius, mm",
	"L1, mm", "L2, mm", "L3, mm", "L4, mm", "L5, mm",
	"T0, °C", "t air, °C", "Valves",
	"P1, bar", "P2, bar", "P3, bar", "P4, bar", "P5, bar",
	"Ej1, bar", "Ej2, bar", "Ej3, bar",
}

const (
	colDrawing = iota
	colClearance
	colDiameter
	colRadius
	colLengths
	colSteamT  = colLengths + valve.MaxSections
	colAirT    = colSteamT + 1
	colValves  = colAirT + 1
	colPress   = colValves + 1
	colEjector = colPress + valve.MaxSections
	maxEjector = 3
)

var ErrEmptySheet = errors.New("empty sheet")

// RowError reports a row that could not be parsed. Row is 1-based as in the
// spreadsheet.
type RowError struct {
	Row int
	Err error
}

func (e RowError) Error() string { return fmt.Sprintf("row %d: %v", e.Row, e.Err) }

func cell(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// toFloat accepts both decimal separators.
func toFloat(s string) (float64, error) {
	return strconv.ParseFloat(strings.Replace(s, ",", ".", 1), 64)
}

func required(row []string, i int) (float64, error) {
	s := cell(row, i)
	if s == "" {
		return 0, fmt.Errorf("%s is empty", Header[i])
	}
	v, err := toFloat(s)
	if err != nil {
		return 0, fmt.Errorf("%s: %q is not a number", Header[i], s)
	}
	return v, nil
}

// optional reads count cells starting at from until the first empty one.
func optional(row []string, from, count int) ([]float64, error) {
	var out []float64
	for i := from; i < from+count; i++ {
		s := cell(row, i)
		if s == "" {
			break
		}
		v, err := toFloat(s)
		if err != nil {
			return nil, fmt.Errorf("%s: %q is not a number", Header[i], s)
		}
		out = append(out, v)
	}
	return out, nil
}

// ParseRow turns a request row into a batch item.
func ParseRow(row []string) (batch.Item, error) {
	item := batch.Item{Name: cell(row, colDrawing)}
	in := &item.Input
	in.PressureUnit = units.Bar

	var err error
	if in.ClearanceMM, err = required(row, colClearance); err != nil {
		return item, err
	}
	if in.DiameterMM, err = required(row, colDiameter); err != nil {
		return item, err
	}
	if in.RadiusMM, err = required(row, colRadius); err != nil {
		return item, err
	}
	lengths, err := optional(row, colLengths, valve.MaxSections)
	if err != nil {
		return item, err
	}
	for i := range lengths {
		in.LengthsMM = append(in.LengthsMM, &lengths[i])
	}
	if in.SteamTemperature, err = required(row, colSteamT); err != nil {
		return item, err
	}
	if in.AirTemperature, err = required(row, colAirT); err != nil {
		return item, err
	}
	valves, err := required(row, colValves)
	if err != nil {
		return item, err
	}
	if valves != math.Trunc(valves) {
		return item, fmt.Errorf("%s: %g is not a whole number", Header[colValves], valves)
	}
	in.Valves = int(valves)
	if in.Pressures, err = optional(row, colPress, valve.MaxSections); err != nil {
		return item, err
	}
	if in.Ejectors, err = optional(row, colEjector, maxEjector); err != nil {
		return item, err
	}
	if item.Name == "" {
		item.Name = fmt.Sprintf("%.3f mm", in.ClearanceMM)
	}
	return item, nil
}

// Read parses the first sheet of the workbook. Rows that fail to parse are
// returned as RowErrors, the rest as items.
func Read(r io.Reader) ([]batch.Item, []RowError, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, nil, err
	}
	if len(rows) < 2 {
		return nil, nil, ErrEmptySheet
	}

	var (
		items []batch.Item
		bad   []RowError
	)
	for i := 1; i < len(rows); i++ {
		if blank(rows[i]) {
			continue
		}
		item, err := ParseRow(rows[i])
		if err != nil {
			bad = append(bad, RowError{Row: i + 1, Err: err})
			continue
		}
		items = append(items, item)
	}
	return items, bad, nil
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
