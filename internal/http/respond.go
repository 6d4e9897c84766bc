package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"contas/internal/core"
	"contas/internal/remote"
	"contas/internal/store"
)

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := errorStatus(err)
	if status >= 500 {
		slog.ErrorContext(r.Context(), "request failed", "error", err, "path", r.URL.Path)
	}
	writeJSON(w, status, errorBody{Error: err.Error()})
}

// errorStatus maps the error taxonomy to HTTP statuses. Failures of
// external collaborators surface as 502: the collaborator misbehaved,
// not this service.
func errorStatus(err error) int {
	if errors.Is(err, store.ErrNotFound) {
		return http.StatusNotFound
	}

	var re *remote.Error
	if errors.As(err, &re) {
		switch re.Kind {
		case remote.KindUnauthenticated:
			return http.StatusUnauthorized
		case remote.KindValidation:
			return http.StatusBadRequest
		default:
			return http.StatusBadGateway
		}
	}

	if isValidationErr(err) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func isValidationErr(err error) bool {
	for _, sentinel := range []error{
		core.ErrEmptyTitle,
		core.ErrInvalidMonth,
		core.ErrInvalidYear,
		core.ErrInvalidAmount,
		core.ErrNegativeAmount,
		core.ErrInvalidStatus,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}
