package report

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/sirupsen/logrus"

	"Rodcalc/internal/calc/valve"
)

// Request is a calculation together with the report title block.
type Request struct {
	Meta
	Input valve.Input `json:"input"`
}

type Handler struct {
	Network *valve.Network
	Log     logrus.FieldLogger
}

func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	calc := valve.Calculate
	if h.Network != nil {
		calc = h.Network.Calculate
	}
	out, err := calc(req.Input)
	if err != nil {
		valve.WriteError(w, h.Log, err)
		return
	}

	var buf bytes.Buffer
	if err := Write(&buf, req.Meta, req.Input, out); err != nil {
		if h.Log != nil {
			h.Log.WithError(err).Error("pdf report")
		}
		http.Error(w, "Report generation error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "attachment; filename=\"report.pdf\"")
	w.Write(buf.Bytes())
}
