package report

import (
	"fmt"
	"io"
	"time"

	"github.com/phpdave11/gofpdf"

	"Rodcalc/internal/calc/units"
	"Rodcalc/internal/calc/valve"
)

// Meta is the title block of a report.
type Meta struct {
	Project string `json:"project"`
	Author  string `json:"author"`
	Title   string `json:"title"`
	Drawing string `json:"drawing"`
	Notes   string `json:"notes"`
}

// Write renders the calculation of in as an A4 PDF.
func Write(w io.Writer, meta Meta, in valve.Input, out valve.Output) error {
	if meta.Title == "" {
		meta.Title = "Valve stem leak-off calculation"
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(meta.Title, true)
	pdf.SetAuthor(meta.Author, true)
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, meta.Title)
	pdf.Ln(12)
	pdf.SetFont("Helvetica", "", 11)
	for _, line := range []string{
		"Project: " + meta.Project,
		"Valve drawing: " + meta.Drawing,
		"Author: " + meta.Author,
		"Date: " + time.Now().Format("2006-01-02"),
	} {
		pdf.Cell(0, 6, line)
		pdf.Ln(6)
	}
	pdf.Ln(4)

	heading(pdf, "Input")
	lengths, err := in.Lengths()
	if err != nil {
		return err
	}
	unit := in.PressureUnit
	if unit == 0 {
		unit = units.Bar
	}
	for _, line := range []string{
		fmt.Sprintf("Clearance %.3f mm, stem diameter %.1f mm, rounding radius %.2f mm", in.ClearanceMM, in.DiameterMM, in.RadiusMM),
		fmt.Sprintf("Section lengths, mm: %v", lengths),
		fmt.Sprintf("Steam %.1f C, air %.1f C, valves %d", in.SteamTemperature, in.AirTemperature, in.Valves),
		fmt.Sprintf("Pressures, %s: %v", unit, in.Pressures),
		fmt.Sprintf("Ejector suction, %s: %v", unit, in.Ejectors),
	} {
		pdf.Cell(0, 6, line)
		pdf.Ln(6)
	}
	pdf.Ln(4)

	heading(pdf, "Sections")
	table(pdf,
		[]string{"#", "Medium", "P, MPa", "T, C", "H, kJ/kg", "W, m/s", "G, kg/h"},
		[]float64{10, 25, 28, 28, 30, 28, 30},
		func(row func(...string)) {
			for _, s := range out.Sections {
				row(fmt.Sprint(s.Index+1), s.Medium.String(),
					fmt.Sprintf("%.4f", s.P), fmt.Sprintf("%.1f", s.T), fmt.Sprintf("%.1f", s.H),
					fmt.Sprintf("%.2f", s.W), fmt.Sprintf("%.5f", s.G))
			}
		})
	pdf.Ln(4)

	heading(pdf, "Extraction")
	table(pdf,
		[]string{"Consumer", "P, MPa", "T, C", "H, kJ/kg", "G, kg/h"},
		[]float64{45, 30, 30, 35, 35},
		func(row func(...string)) {
			draw := func(name string, d valve.Draw) {
				row(name, fmt.Sprintf("%.4f", d.P), fmt.Sprintf("%.1f", d.T), fmt.Sprintf("%.1f", d.H), fmt.Sprintf("%.4f", d.G))
			}
			if out.Deaerator != nil {
				draw("Deaerator", *out.Deaerator)
			}
			for k, d := range out.Ejectors {
				draw(fmt.Sprintf("Ejector %d", k+1), d)
			}
		})

	if meta.Notes != "" {
		pdf.Ln(6)
		pdf.MultiCell(0, 6, meta.Notes, "", "L", false)
	}
	return pdf.Output(w)
}

func heading(pdf *gofpdf.Fpdf, s string) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, s)
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 10)
}

func table(pdf *gofpdf.Fpdf, header []string, widths []float64, body func(row func(...string))) {
	pdf.SetFont("Helvetica", "B", 10)
	for i, h := range header {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetFont("Helvetica", "", 10)
	body(func(cells ...string) {
		for i, c := range cells {
			pdf.CellFormat(widths[i], 6, c, "1", 0, "R", false, 0, "")
		}
		pdf.Ln(-1)
	})
}
