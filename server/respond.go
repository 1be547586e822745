package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dmcconeghy/CL-backend-assessment/apperr"
	"github.com/dmcconeghy/CL-backend-assessment/logger"
)

// respondJSON writes payload wrapped in the success envelope.
func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(map[string]interface{}{
		"success": true,
		"data":    payload,
	}); err != nil {
		logger.Error("failed to encode response", logger.ErrorField(err))
	}
}

// respondError maps an error to its HTTP status and writes the failure
// envelope. Validation and lookup failures carry their own message; anything
// unclassified is logged and reported as a generic server error.
func respondError(w http.ResponseWriter, err error) {
	status := statusForError(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		logger.Error("request failed", logger.ErrorField(err))
		message = "internal server error"
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if encErr := json.NewEncoder(w).Encode(map[string]interface{}{
		"success": false,
		"error":   message,
	}); encErr != nil {
		logger.Error("failed to encode error response", logger.ErrorField(encErr))
	}
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperr.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, apperr.ErrMissingField),
		errors.Is(err, apperr.ErrOutOfRange),
		errors.Is(err, apperr.ErrWrongCardinality),
		errors.Is(err, apperr.ErrInvalidValue):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
