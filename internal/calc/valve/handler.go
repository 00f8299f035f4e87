package valve

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"
)

type Handler struct {
	Network *Network
	Log     logrus.FieldLogger
}

func (h *Handler) network() *Network {
	if h.Network == nil {
		return defaultNetwork
	}
	return h.Network
}

func (h *Handler) Calc(w http.ResponseWriter, r *http.Request) {
	var input Input
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	res, err := h.network().Calculate(input)
	if err != nil {
		WriteError(w, h.Log, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(res)
}

// WriteError maps calculation errors to 400 and everything else to 500.
func WriteError(w http.ResponseWriter, log logrus.FieldLogger, err error) {
	var ce *CalculationError
	if errors.As(err, &ce) {
		http.Error(w, "Calculation error: "+ce.Error(), http.StatusBadRequest)
		return
	}
	if log != nil {
		log.WithError(err).Error("calculation failed")
	}
	http.Error(w, "Internal server error", http.StatusInternalServerError)
}
