package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/ashwinrao/auction-arena/internal/archive"
	"github.com/ashwinrao/auction-arena/internal/domain"
	"github.com/ashwinrao/auction-arena/internal/store"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps domain errors onto HTTP statuses. Precondition rejections are
// 409s: expected outcomes the client recovers from, not server faults.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrRoomNotFound),
		errors.Is(err, domain.ErrUnknownParticipant),
		errors.Is(err, store.ErrNotFound),
		errors.Is(err, archive.ErrNotArchived):
		http.Error(w, err.Error(), http.StatusNotFound)

	case errors.Is(err, domain.ErrEmptyMatchName),
		errors.Is(err, domain.ErrEmptyLotList),
		errors.Is(err, domain.ErrInvalidConfig),
		errors.Is(err, domain.ErrInvalidIncrement):
		http.Error(w, err.Error(), http.StatusBadRequest)

	case errors.Is(err, domain.ErrNotAdmin):
		http.Error(w, err.Error(), http.StatusForbidden)

	case domain.IsPrecondition(err):
		http.Error(w, err.Error(), http.StatusConflict)

	case errors.Is(err, store.ErrTooMuchContention):
		http.Error(w, err.Error(), http.StatusServiceUnavailable)

	default:
		logrus.WithError(err).Error("unhandled request error")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}
