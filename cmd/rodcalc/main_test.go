package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"

	"Rodcalc/internal/calc/batch"
)

const request = `{
  "clearance_mm": 0.271,
  "diameter_mm": 36,
  "radius_mm": 2,
  "lengths_mm": [513, 89, 68, null, null],
  "steam_temperature_c": 555,
  "air_temperature_c": 40,
  "valves": 2,
  "pressures": [130, 6, 1.03],
  "ejector_pressures": [0.97]
}`

func TestDecodeItems(t *testing.T) {
	items, err := decodeItems([]byte(request), "rk-1.json")
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 1 || items[0].Name != "rk-1" {
		t.Errorf("unexpected items %+v", items)
	}

	items, err = decodeItems([]byte(`{"items": [{"name": "a", "input": `+request+`}, {"name": "b"}]}`), "x.json")
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 2 || items[1].Name != "b" {
		t.Errorf("unexpected batch %+v", items)
	}

	if _, err := decodeItems([]byte(`{}`), "x.json"); err == nil {
		t.Error("expected error for an empty request")
	}
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "rk-1.json")
	if err := os.WriteFile(in, []byte(request), 0o644); err != nil {
		t.Fatal(err)
	}
	opt := options{
		in:     in,
		pdf:    filepath.Join(dir, "rk-1.pdf"),
		xlsx:   filepath.Join(dir, "rk-1.xlsx"),
		solver: filepath.Join(dir, "missing.ini"),
	}
	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{})

	var out bytes.Buffer
	if err := run(context.Background(), opt, &out, logger); err != nil {
		t.Fatal(err)
	}
	var results []batch.Result
	if err := json.Unmarshal(out.Bytes(), &results); err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 || results[0].Output == nil || len(results[0].Output.Sections) != 3 {
		t.Fatalf("unexpected results %+v", results)
	}

	pdf, err := os.ReadFile(opt.pdf)
	if err != nil || !bytes.HasPrefix(pdf, []byte("%PDF")) {
		t.Errorf("expected a PDF report, err %v", err)
	}

	// the exported workbook is not a request sheet, every row is skipped
	items, err := readItems(opt.xlsx, logger)
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 0 {
		t.Errorf("expected no requests in the results workbook, got %d", len(items))
	}
}
