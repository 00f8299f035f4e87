package account

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"Rodcalc/internal/auth"
	"Rodcalc/internal/repo"
)

type Handler struct {
	Repo repo.Repository
	Log  logrus.FieldLogger
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok || userID == 0 {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	u, err := h.Repo.GetUserByID(r.Context(), userID)
	if errors.Is(err, repo.ErrNotFound) {
		http.Error(w, "Пользователь не найден", http.StatusNotFound)
		return
	}
	if err != nil {
		h.Log.WithError(err).Error("user lookup failed")
		http.Error(w, "DB error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(u)
}

// Results lists the calculations of the current user, newest first.
func (h *Handler) Results(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok || userID == 0 {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	rs, err := h.Repo.ResultsByUser(r.Context(), userID)
	if err != nil {
		h.Log.WithError(err).Error("results lookup failed")
		http.Error(w, "DB error", http.StatusInternalServerError)
		return
	}
	if rs == nil {
		rs = []repo.Result{}
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(rs)
}
