package batch

import (
	"encoding/json"
	"errors"
	"net/http"

	"Rodcalc/internal/calc/valve"
)

type Handler struct {
	Network *valve.Network
	Workers int
}

type Response struct {
	Count   int      `json:"count"`
	Failed  int      `json:"failed"`
	Results []Result `json:"results"`
}

func (h *Handler) Calc(w http.ResponseWriter, r *http.Request) {
	var input Input
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	res, err := Run(r.Context(), h.Network, input.Items, h.Workers)
	if errors.Is(err, ErrNoItems) {
		http.Error(w, "Calculation error: no items", http.StatusBadRequest)
		return
	}
	if err != nil {
		http.Error(w, "Request cancelled", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(Response{Count: len(res), Failed: Failed(res), Results: res})
}
