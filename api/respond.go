package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"food-delivery/logger"
	"food-delivery/models"

	"github.com/gorilla/mux"
)

type errorBody struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps domain errors to HTTP statuses. Unknown errors are logged
// and reported as 500 without detail.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var ve *models.ValidationError
	var te *models.ThrottledError
	switch {
	case errors.As(err, &ve):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: ve.Message, Field: ve.Field})
	case errors.As(err, &te):
		w.Header().Set("Retry-After", strconv.Itoa(te.WaitSeconds))
		writeJSON(w, http.StatusTooManyRequests, errorBody{Error: te.Error()})
	case errors.Is(err, models.ErrInvalidCredential):
		writeJSON(w, http.StatusUnauthorized, errorBody{Error: err.Error()})
	case errors.Is(err, models.ErrForbidden):
		writeJSON(w, http.StatusForbidden, errorBody{Error: err.Error()})
	case errors.Is(err, models.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody{Error: err.Error()})
	case errors.Is(err, models.ErrUsernameTaken),
		errors.Is(err, models.ErrNotCancellable),
		errors.Is(err, models.ErrInvalidTransition),
		errors.Is(err, models.ErrStatusConflict),
		errors.Is(err, models.ErrOrderLocked),
		errors.Is(err, models.ErrAlreadyAssigned),
		errors.Is(err, models.ErrAlreadyPaid),
		errors.Is(err, models.ErrOrderClosed):
		writeJSON(w, http.StatusConflict, errorBody{Error: err.Error()})
	case errors.Is(err, models.ErrEmptyOrder),
		errors.Is(err, models.ErrMixedRestaurants),
		errors.Is(err, models.ErrItemUnavailable),
		errors.Is(err, models.ErrUnknownTier):
		writeJSON(w, http.StatusUnprocessableEntity, errorBody{Error: err.Error()})
	default:
		logger.FromContext(r.Context(), h.Log).Error("request failed",
			slog.String("path", r.URL.Path),
			slog.Any("error", err),
		)
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal error"})
	}
}

func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return models.NewValidationError("body", "invalid JSON")
	}
	return nil
}

func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(mux.Vars(r)[name], 10, 64)
	if err != nil || id <= 0 {
		return 0, models.NewValidationError(name, "must be a positive integer")
	}
	return id, nil
}
