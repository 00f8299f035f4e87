package design

import (
	"encoding/json"
	"net/http"

	"github.com/sirupsen/logrus"

	"Rodcalc/internal/calc/valve"
)

type Handler struct {
	Network *valve.Network
	Log     logrus.FieldLogger
}

func (h *Handler) Envelope(w http.ResponseWriter, r *http.Request) {
	var input EnvelopeInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	res, err := Envelope(h.Network, input)
	if err != nil {
		valve.WriteError(w, h.Log, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(res)
}

func (h *Handler) Sizing(w http.ResponseWriter, r *http.Request) {
	var input SizingInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	res, err := MaxClearance(h.Network, input)
	if err != nil {
		valve.WriteError(w, h.Log, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(res)
}
