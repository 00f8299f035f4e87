package importer

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"Rodcalc/internal/calc/batch"
	"Rodcalc/internal/calc/valve"
)

const xlsxType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type Handler struct {
	Network *valve.Network
	Workers int
	Log     logrus.FieldLogger
}

type ImportResult struct {
	Count   int            `json:"count"`
	Failed  int            `json:"failed"`
	Results []batch.Result `json:"results"`
	Skipped []string       `json:"skipped,omitempty"`
}

// Import calculates every row of the uploaded workbook.
func (h *Handler) Import(w http.ResponseWriter, r *http.Request) {
	file, _, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "File required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	items, bad, err := Read(file)
	if errors.Is(err, ErrEmptySheet) {
		http.Error(w, "Empty sheet", http.StatusBadRequest)
		return
	}
	if err != nil {
		http.Error(w, "Invalid file", http.StatusBadRequest)
		return
	}

	res := ImportResult{Results: []batch.Result{}}
	for _, b := range bad {
		res.Skipped = append(res.Skipped, b.Error())
	}
	if len(items) > 0 {
		out, err := batch.Run(r.Context(), h.Network, items, h.Workers)
		if err != nil {
			http.Error(w, "Request cancelled", http.StatusServiceUnavailable)
			return
		}
		res.Results = out
	}
	res.Count = len(res.Results)
	res.Failed = batch.Failed(res.Results)
	if h.Log != nil {
		h.Log.WithFields(logrus.Fields{"rows": res.Count, "failed": res.Failed, "skipped": len(bad)}).Info("workbook imported")
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(res)
}

// Export calculates a single request and returns the result workbook.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	var item batch.Item
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	calc := valve.Calculate
	if h.Network != nil {
		calc = h.Network.Calculate
	}
	out, err := calc(item.Input)
	if err != nil {
		valve.WriteError(w, h.Log, err)
		return
	}
	if item.Name == "" {
		item.Name = "valve"
	}
	w.Header().Set("Content-Type", xlsxType)
	w.Header().Set("Content-Disposition", `attachment; filename="leakoff.xlsx"`)
	if err := Export(w, []batch.Result{{Name: item.Name, Output: &out}}); err != nil && h.Log != nil {
		h.Log.WithError(err).Error("workbook export failed")
	}
}

func (h *Handler) Template(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", xlsxType)
	w.Header().Set("Content-Disposition", `attachment; filename="leakoff-template.xlsx"`)
	if err := Template(w); err != nil && h.Log != nil {
		h.Log.WithError(err).Error("template export failed")
	}
}
