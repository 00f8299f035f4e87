package importer

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/xuri/excelize/v2"

	"Rodcalc/internal/calc/batch"
	"Rodcalc/internal/calc/units"
	"Rodcalc/internal/calc/valve"
)

var referenceRow = []any{
	"RK-1", 0.271, 36, 2, 513, 89, 68, nil, nil,
	555, 40, 2, 130, 6, 1.03, nil, nil, 0.97,
}

func workbook(t *testing.T, rows ...[]any) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	values := make([]any, len(Header))
	for i, h := range Header {
		values[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &values); err != nil {
		t.Fatal(err)
	}
	for i, r := range rows {
		axis, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(sheet, axis, &r); err != nil {
			t.Fatal(err)
		}
	}
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatal(err)
	}
	return &buf
}

func TestParseRow(t *testing.T) {
	row := []string{"RK-1", "0,271", "36", "2", "513", "89", "68", "", "", "555", "40", "2", "130", "6", "1.03", "", "", "0.97"}
	item, err := ParseRow(row)
	if err != nil {
		t.Fatal(err)
	}
	in := item.Input
	if item.Name != "RK-1" || in.ClearanceMM != 0.271 || in.Valves != 2 {
		t.Errorf("unexpected item %+v", item)
	}
	if len(in.LengthsMM) != 3 || *in.LengthsMM[2] != 68 {
		t.Errorf("expected three lengths, got %d", len(in.LengthsMM))
	}
	if len(in.Pressures) != 3 || len(in.Ejectors) != 1 || in.PressureUnit != units.Bar {
		t.Errorf("unexpected pressures %v %v %v", in.Pressures, in.Ejectors, in.PressureUnit)
	}
}

func TestParseRowErrors(t *testing.T) {
	if _, err := ParseRow([]string{"RK-1", ""}); err == nil {
		t.Error("expected error for missing clearance")
	}
	if _, err := ParseRow([]string{"RK-1", "0.2", "36", "2", "abc"}); err == nil {
		t.Error("expected error for a non-numeric length")
	}
	fractional := []string{"RK-1", "0.271", "36", "2", "513", "89", "68", "", "", "555", "40", "2.7", "130", "6", "1.03", "", "", "0.97"}
	if _, err := ParseRow(fractional); err == nil {
		t.Error("expected error for a fractional valve count")
	}
}

func TestReadWorkbook(t *testing.T) {
	bad := []any{"broken", "x"}
	items, skipped, err := Read(workbook(t, referenceRow, []any{}, bad))
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 1 || items[0].Name != "RK-1" {
		t.Fatalf("expected one item, got %+v", items)
	}
	if len(skipped) != 1 || skipped[0].Row != 4 {
		t.Errorf("expected row 4 skipped, got %v", skipped)
	}

	out, err := valve.Calculate(items[0].Input)
	if err != nil {
		t.Fatal(err)
	}
	if len(out.Sections) != 3 {
		t.Errorf("expected 3 sections, got %d", len(out.Sections))
	}
}

func TestReadEmptySheet(t *testing.T) {
	if _, _, err := Read(workbook(t)); err != ErrEmptySheet {
		t.Errorf("expected ErrEmptySheet, got %v", err)
	}
	if _, _, err := Read(bytes.NewBufferString("not a workbook")); err == nil {
		t.Error("expected error for garbage input")
	}
}

func TestExport(t *testing.T) {
	items, _, err := Read(workbook(t, referenceRow))
	if err != nil {
		t.Fatal(err)
	}
	out, err := valve.Calculate(items[0].Input)
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	err = Export(&buf, []batch.Result{{Name: "RK-1", Output: &out}, {Name: "bad", Error: "boom"}})
	if err != nil {
		t.Fatal(err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	rows, err := f.GetRows(SheetSections)
	if err != nil {
		t.Fatal(err)
	}
	// header, three sections, one failed item
	if len(rows) != 5 {
		t.Fatalf("expected 5 rows, got %d", len(rows))
	}
	if rows[3][2] != "air" || rows[4][8] != "boom" {
		t.Errorf("unexpected rows %v", rows[3:])
	}
	draws, err := f.GetRows(SheetExtraction)
	if err != nil {
		t.Fatal(err)
	}
	if len(draws) != 3 || draws[1][1] != "Deaerator" || draws[2][1] != "Ejector 1" {
		t.Errorf("unexpected extraction rows %v", draws)
	}
}

func TestTemplate(t *testing.T) {
	var buf bytes.Buffer
	if err := Template(&buf); err != nil {
		t.Fatal(err)
	}
	if _, _, err := Read(&buf); err != ErrEmptySheet {
		t.Errorf("expected the template to read as empty, got %v", err)
	}
}

func TestImportHandler(t *testing.T) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "book.xlsx")
	if err != nil {
		t.Fatal(err)
	}
	part.Write(workbook(t, referenceRow, []any{"bad", "0.2"}).Bytes())
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/user/tools/valve/import", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	(&Handler{Workers: 2}).Import(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var res ImportResult
	if err := json.NewDecoder(rec.Body).Decode(&res); err != nil {
		t.Fatal(err)
	}
	if res.Count != 1 || res.Failed != 0 || len(res.Skipped) != 1 {
		t.Errorf("unexpected result %+v", res)
	}
}

func TestImportHandlerRequiresFile(t *testing.T) {
	rec := httptest.NewRecorder()
	(&Handler{}).Import(rec, httptest.NewRequest(http.MethodPost, "/", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestExportHandler(t *testing.T) {
	items, _, err := Read(workbook(t, referenceRow))
	if err != nil {
		t.Fatal(err)
	}
	body, _ := json.Marshal(items[0])
	rec := httptest.NewRecorder()
	(&Handler{}).Export(rec, httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(body)))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != xlsxType {
		t.Errorf("unexpected content type %q", ct)
	}
}
