// Package catalog serves the turbine and valve catalogue and runs
// calculations on catalogued valves.
package catalog

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"Rodcalc/internal/auth"
	"Rodcalc/internal/calc/units"
	"Rodcalc/internal/calc/valve"
	"Rodcalc/internal/repo"
)

type Handler struct {
	Repo    repo.Repository
	Network *valve.Network
	Log     logrus.FieldLogger
}

func (h *Handler) log() logrus.FieldLogger {
	if h.Log == nil {
		return logrus.StandardLogger()
	}
	return h.Log
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// storeError answers a failed repository call.
func (h *Handler) storeError(w http.ResponseWriter, err error, what string) {
	if errors.Is(err, repo.ErrNotFound) {
		http.Error(w, what+" not found", http.StatusNotFound)
		return
	}
	h.log().WithError(err).Error("repository error")
	http.Error(w, "DB error", http.StatusInternalServerError)
}

func pathID(r *http.Request) (int, error) {
	return strconv.Atoi(mux.Vars(r)["id"])
}

type turbineRequest struct {
	Name string `json:"name"`
}

func (h *Handler) ListTurbines(w http.ResponseWriter, r *http.Request) {
	ts, err := h.Repo.ListTurbines(r.Context())
	if err != nil {
		h.storeError(w, err, "Turbine")
		return
	}
	writeJSON(w, http.StatusOK, ts)
}

func (h *Handler) CreateTurbine(w http.ResponseWriter, r *http.Request) {
	var req turbineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		http.Error(w, "Turbine name required", http.StatusBadRequest)
		return
	}
	t, err := h.Repo.CreateTurbine(r.Context(), req.Name)
	if err != nil {
		h.log().WithError(err).WithField("turbine", req.Name).Warn("turbine not created")
		http.Error(w, "Turbine already exists", http.StatusConflict)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

func (h *Handler) DeleteTurbine(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		http.Error(w, "Invalid id", http.StatusBadRequest)
		return
	}
	if err := h.Repo.DeleteTurbine(r.Context(), id); err != nil {
		h.storeError(w, err, "Turbine")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) TurbineValves(w http.ResponseWriter, r *http.Request) {
	vs, err := h.Repo.ValvesByTurbine(r.Context(), mux.Vars(r)["name"])
	if err != nil {
		h.storeError(w, err, "Turbine")
		return
	}
	if vs == nil {
		vs = []repo.Valve{}
	}
	writeJSON(w, http.StatusOK, vs)
}

func (h *Handler) ListValves(w http.ResponseWriter, r *http.Request) {
	vs, err := h.Repo.ListValves(r.Context())
	if err != nil {
		h.storeError(w, err, "Valve")
		return
	}
	if vs == nil {
		vs = []repo.Valve{}
	}
	writeJSON(w, http.StatusOK, vs)
}

// checkValve validates the dimensions that a calculation needs.
func checkValve(v repo.Valve) error {
	if strings.TrimSpace(v.Drawing) == "" {
		return errors.New("drawing required")
	}
	_, err := valve.NewGeometry(v.Clearance/1000, v.RodDiameter/1000, v.RoundingRadius/1000, mmToM(v.SectionLengths))
	return err
}

func mmToM(mm []float64) []float64 {
	out := make([]float64, len(mm))
	for i, l := range mm {
		out[i] = l / 1000
	}
	return out
}

func decodeValve(w http.ResponseWriter, r *http.Request) (repo.Valve, bool) {
	var v repo.Valve
	if err := json.NewDecoder(r.Body).Decode(&v); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return v, false
	}
	if err := checkValve(v); err != nil {
		http.Error(w, "Invalid valve: "+err.Error(), http.StatusBadRequest)
		return v, false
	}
	return v, true
}

func (h *Handler) CreateValve(w http.ResponseWriter, r *http.Request) {
	v, ok := decodeValve(w, r)
	if !ok {
		return
	}
	created, err := h.Repo.CreateValve(r.Context(), v)
	if err != nil {
		h.log().WithError(err).WithField("drawing", v.Drawing).Warn("valve not created")
		http.Error(w, "Valve not saved", http.StatusConflict)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *Handler) UpdateValve(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		http.Error(w, "Invalid id", http.StatusBadRequest)
		return
	}
	v, ok := decodeValve(w, r)
	if !ok {
		return
	}
	v.ID = id
	updated, err := h.Repo.UpdateValve(r.Context(), v)
	if errors.Is(err, repo.ErrNotFound) {
		http.Error(w, "Valve not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.log().WithError(err).WithField("drawing", v.Drawing).Warn("valve not updated")
		http.Error(w, "Valve not saved", http.StatusConflict)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *Handler) DeleteValve(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		http.Error(w, "Invalid id", http.StatusBadRequest)
		return
	}
	if err := h.Repo.DeleteValve(r.Context(), id); err != nil {
		h.storeError(w, err, "Valve")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ValveTurbine(w http.ResponseWriter, r *http.Request) {
	t, err := h.Repo.TurbineByValve(r.Context(), mux.Vars(r)["drawing"])
	if err != nil {
		h.storeError(w, err, "Turbine")
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// Conditions are the operating conditions of a catalogued valve. Clearance
// overrides the catalogue clearance when set (a worn bushing).
type Conditions struct {
	SteamTemperature float64    `json:"steam_temperature_c"`
	AirTemperature   float64    `json:"air_temperature_c"`
	Valves           int        `json:"valves"`
	Pressures        []float64  `json:"pressures"`
	Ejectors         []float64  `json:"ejector_pressures"`
	PressureUnit     units.Unit `json:"pressure_unit,omitempty"`
	ClearanceMM      *float64   `json:"clearance_mm,omitempty"`
}

// InputFor combines the catalogue geometry with the operating conditions.
func InputFor(v repo.Valve, c Conditions) valve.Input {
	in := valve.Input{
		ClearanceMM:      v.Clearance,
		DiameterMM:       v.RodDiameter,
		RadiusMM:         v.RoundingRadius,
		SteamTemperature: c.SteamTemperature,
		AirTemperature:   c.AirTemperature,
		Valves:           c.Valves,
		Pressures:        c.Pressures,
		Ejectors:         c.Ejectors,
		PressureUnit:     c.PressureUnit,
	}
	if c.ClearanceMM != nil {
		in.ClearanceMM = *c.ClearanceMM
	}
	for i := range v.SectionLengths {
		in.LengthsMM = append(in.LengthsMM, &v.SectionLengths[i])
	}
	return in
}

type CalcResponse struct {
	ResultID int          `json:"result_id"`
	PublicID string       `json:"public_id"`
	Output   valve.Output `json:"output"`
}

// CalcValve calculates a catalogued valve and stores the result for the
// current user.
func (h *Handler) CalcValve(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	var c Conditions
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	v, err := h.Repo.ValveByDrawing(r.Context(), mux.Vars(r)["drawing"])
	if err != nil {
		h.storeError(w, err, "Valve")
		return
	}

	in := InputFor(v, c)
	calc := valve.Calculate
	if h.Network != nil {
		calc = h.Network.Calculate
	}
	out, err := calc(in)
	if err != nil {
		valve.WriteError(w, h.log(), err)
		return
	}

	params, err := json.Marshal(in)
	if err != nil {
		h.storeError(w, err, "Result")
		return
	}
	output, err := json.Marshal(out)
	if err != nil {
		h.storeError(w, err, "Result")
		return
	}
	saved, err := h.Repo.SaveResult(r.Context(), repo.Result{
		UserID:       userID,
		ValveDrawing: v.Drawing,
		Parameters:   params,
		Output:       output,
	})
	if err != nil {
		h.storeError(w, err, "Result")
		return
	}
	h.log().WithFields(logrus.Fields{"drawing": v.Drawing, "result": saved.PublicID}).Info("valve calculated")
	writeJSON(w, http.StatusOK, CalcResponse{ResultID: saved.ID, PublicID: saved.PublicID, Output: out})
}

func (h *Handler) ValveResults(w http.ResponseWriter, r *http.Request) {
	rs, err := h.Repo.ResultsByValve(r.Context(), mux.Vars(r)["drawing"])
	if err != nil {
		h.storeError(w, err, "Result")
		return
	}
	if rs == nil {
		rs = []repo.Result{}
	}
	writeJSON(w, http.StatusOK, rs)
}

// DeleteResult removes one of the current user's results.
func (h *Handler) DeleteResult(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	id, err := pathID(r)
	if err != nil {
		http.Error(w, "Invalid id", http.StatusBadRequest)
		return
	}
	if err := h.Repo.DeleteResult(r.Context(), id, userID); err != nil {
		h.storeError(w, err, "Result")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Routes registers the catalogue on an authenticated subrouter.
func (h *Handler) Routes(r *mux.Router) {
	r.HandleFunc("/turbines", h.ListTurbines).Methods("GET")
	r.HandleFunc("/turbines", h.CreateTurbine).Methods("POST")
	r.HandleFunc("/turbines/{id:[0-9]+}", h.DeleteTurbine).Methods("DELETE")
	r.HandleFunc("/turbines/{name}/valves", h.TurbineValves).Methods("GET")

	r.HandleFunc("/valves", h.ListValves).Methods("GET")
	r.HandleFunc("/valves", h.CreateValve).Methods("POST")
	r.HandleFunc("/valves/{id:[0-9]+}", h.UpdateValve).Methods("PUT")
	r.HandleFunc("/valves/{id:[0-9]+}", h.DeleteValve).Methods("DELETE")
	r.HandleFunc("/valves/{drawing}/turbine", h.ValveTurbine).Methods("GET")
	r.HandleFunc("/valves/{drawing}/calc", h.CalcValve).Methods("POST")
	r.HandleFunc("/valves/{drawing}/results", h.ValveResults).Methods("GET")

	r.HandleFunc("/results/{id:[0-9]+}", h.DeleteResult).Methods("DELETE")
}
