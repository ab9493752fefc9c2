package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ashwinrao/auction-arena/internal/archive"
)

type HistoryHandler struct {
	archive archive.Repository
}

func NewHistoryHandler(repo archive.Repository) *HistoryHandler {
	return &HistoryHandler{archive: repo}
}

func (h *HistoryHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	offset := 0
	if raw := r.URL.Query().Get("offset"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed >= 0 {
			offset = parsed
		}
	}

	recs, err := h.archive.List(r.Context(), limit, offset)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, recs)
}

func (h *HistoryHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	rec, err := h.archive.GetByCode(r.Context(), code)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=auction_results_%s.csv", code))
	if err := archive.WriteCSV(w, rec); err != nil {
		writeError(w, err)
	}
}
