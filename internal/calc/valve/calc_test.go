package valve

import (
	"bytes"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"

	"Rodcalc/internal/calc/steam"
	"Rodcalc/internal/calc/units"
)

func mm(vs ...float64) []*float64 {
	out := make([]*float64, len(vs))
	for i := range vs {
		out[i] = &vs[i]
	}
	return out
}

func referenceInput() Input {
	return Input{
		ClearanceMM:      0.271,
		DiameterMM:       36,
		RadiusMM:         2,
		LengthsMM:        append(mm(513, 89, 68), nil, nil),
		SteamTemperature: 555,
		AirTemperature:   40,
		Valves:           2,
		Pressures:        []float64{130, 6, 1.03},
		Ejectors:         []float64{0.97},
	}
}

func TestCalculateReference(t *testing.T) {
	out, err := Calculate(referenceInput())
	if err != nil {
		t.Fatal(err)
	}
	if len(out.Sections) != 3 {
		t.Fatalf("expected 3 sections, got %d", len(out.Sections))
	}
	if math.Abs(out.Sections[1].P-0.6) > 1e-12 {
		t.Errorf("expected section 2 inlet 0.6 MPa, got %g", out.Sections[1].P)
	}
	if !within(out.Sections[0].G, 0.559, 0.03) {
		t.Errorf("expected G about 0.559, got %g", out.Sections[0].G)
	}
	if out.Deaerator == nil || len(out.Ejectors) != 1 {
		t.Fatalf("unexpected extraction %+v", out)
	}
}

func TestCalculatePressureUnit(t *testing.T) {
	in := referenceInput()
	in.PressureUnit = units.KiloPascal
	in.Pressures = []float64{13000, 600, 103}
	in.Ejectors = []float64{97}
	kpa, err := Calculate(in)
	if err != nil {
		t.Fatal(err)
	}
	bar, err := Calculate(referenceInput())
	if err != nil {
		t.Fatal(err)
	}
	for i := range bar.Sections {
		if !within(kpa.Sections[i].G, bar.Sections[i].G, 1e-9) {
			t.Errorf("section %d: %g kPa-based vs %g bar-based", i+1, kpa.Sections[i].G, bar.Sections[i].G)
		}
	}
}

func TestLengthsTrailingNulls(t *testing.T) {
	in := referenceInput()
	in.LengthsMM = []*float64{in.LengthsMM[0], nil, in.LengthsMM[1]}
	if _, err := in.Lengths(); !IsCalculationError(err) {
		t.Errorf("expected a gap in lengths to fail, got %v", err)
	}
	in.LengthsMM = append(mm(100, 50), nil)
	got, err := in.Lengths()
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Errorf("expected 2 lengths, got %v", got)
	}
}

func TestCalculateRejectsBadGeometry(t *testing.T) {
	in := referenceInput()
	in.ClearanceMM = 0
	if _, err := Calculate(in); !IsCalculationError(err) {
		t.Errorf("expected CalculationError, got %v", err)
	}
	in = referenceInput()
	in.LengthsMM = mm(513)
	if _, err := Calculate(in); !IsCalculationError(err) {
		t.Errorf("expected CalculationError, got %v", err)
	}
}

func newTestHandler() *Handler {
	log, _ := test.NewNullLogger()
	return &Handler{Network: NewNetwork(steam.New(), WithLogger(log)), Log: log}
}

func TestHandlerCalc(t *testing.T) {
	body, _ := json.Marshal(referenceInput())
	rec := httptest.NewRecorder()
	newTestHandler().Calc(rec, httptest.NewRequest(http.MethodPost, "/api/user/tools/valve/calc", bytes.NewReader(body)))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var out Output
	if err := json.NewDecoder(rec.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	if len(out.Sections) != 3 || out.Sections[2].Medium != Air {
		t.Errorf("unexpected output %+v", out)
	}
}

func TestHandlerErrors(t *testing.T) {
	h := newTestHandler()

	rec := httptest.NewRecorder()
	h.Calc(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{")))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad json: expected 400, got %d", rec.Code)
	}

	in := referenceInput()
	in.Valves = 0
	body, _ := json.Marshal(in)
	rec = httptest.NewRecorder()
	h.Calc(rec, httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(body)))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("zero valves: expected 400, got %d", rec.Code)
	}
}
