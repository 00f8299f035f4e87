package importer

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"Rodcalc/internal/calc/batch"
)

const (
	SheetRequests   = "Requests"
	SheetSections   = "Sections"
	SheetExtraction = "Extraction"
)

var (
	sectionHeader    = []any{"Name", "Section", "Medium", "G, kg/h", "P, MPa", "T, °C", "H, kJ/kg", "W, m/s", "Error"}
	extractionHeader = []any{"Name", "Draw", "G, kg/h", "P, MPa", "T, °C", "H, kJ/kg"}
)

func header(f *excelize.File, sheet string, values []any) error {
	if err := f.SetSheetRow(sheet, "A1", &values); err != nil {
		return err
	}
	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(values), 1)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, "A1", last, style)
}

func row(f *excelize.File, sheet string, n int, values []any) error {
	axis, err := excelize.CoordinatesToCellName(1, n)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, axis, &values)
}

// Export writes the results as a workbook with a sheet of sections and a
// sheet of extraction draws. A failed item gets one section row carrying
// the error.
func Export(w io.Writer, results []batch.Result) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetSections); err != nil {
		return err
	}
	if _, err := f.NewSheet(SheetExtraction); err != nil {
		return err
	}
	if err := header(f, SheetSections, sectionHeader); err != nil {
		return err
	}
	if err := header(f, SheetExtraction, extractionHeader); err != nil {
		return err
	}

	sr, er := 2, 2
	for _, res := range results {
		if res.Output == nil {
			if err := row(f, SheetSections, sr, []any{res.Name, "", "", "", "", "", "", "", res.Error}); err != nil {
				return err
			}
			sr++
			continue
		}
		for _, s := range res.Output.Sections {
			if err := row(f, SheetSections, sr, []any{res.Name, s.Index + 1, s.Medium.String(), s.G, s.P, s.T, s.H, s.W}); err != nil {
				return err
			}
			sr++
		}
		if d := res.Output.Deaerator; d != nil {
			if err := row(f, SheetExtraction, er, []any{res.Name, "Deaerator", d.G, d.P, d.T, d.H}); err != nil {
				return err
			}
			er++
		}
		for i, d := range res.Output.Ejectors {
			if err := row(f, SheetExtraction, er, []any{res.Name, fmt.Sprintf("Ejector %d", i+1), d.G, d.P, d.T, d.H}); err != nil {
				return err
			}
			er++
		}
	}
	if err := f.SetColWidth(SheetSections, "A", "I", 14); err != nil {
		return err
	}
	return f.Write(w)
}

// Template writes an empty request workbook with the header row.
func Template(w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetRequests); err != nil {
		return err
	}
	values := make([]any, len(Header))
	for i, h := range Header {
		values[i] = h
	}
	if err := header(f, SheetRequests, values); err != nil {
		return err
	}
	last, _ := excelize.ColumnNumberToName(len(Header))
	if err := f.SetColWidth(SheetRequests, "A", last, 12); err != nil {
		return err
	}
	return f.Write(w)
}
