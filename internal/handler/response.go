package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mkarpenko/campushub/internal/auth"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// errorBody is the JSON error surface: a stable machine-readable kind plus a
// human-readable message.
type errorBody struct {
	Kind  string `json:"kind"`
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, kind, msg string) {
	writeJSON(w, status, errorBody{Kind: kind, Error: msg})
}

// writeAuthError maps session manager errors onto the error taxonomy. Unknown
// errors are reported as the store being unavailable — all manager failures
// outside the taxonomy are persistence failures.
func writeAuthError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, auth.ErrValidation):
		writeError(w, http.StatusBadRequest, "validation_error", err.Error())
	case errors.Is(err, auth.ErrDuplicateAccount):
		writeError(w, http.StatusBadRequest, "duplicate_account", err.Error())
	case errors.Is(err, auth.ErrInvalidCredentials):
		writeError(w, http.StatusBadRequest, "invalid_credentials", err.Error())
	case errors.Is(err, auth.ErrUnauthenticated):
		writeError(w, http.StatusUnauthorized, "unauthenticated", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "store_unavailable", "persistence layer unavailable")
	}
}
