package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"rafters/internal/depgraph"
	"rafters/internal/rule"
	"rafters/internal/token"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps the core error taxonomy onto HTTP statuses: unknown
// token 404, malformed edges and inputs 400, unsupported rule kinds 422,
// anything else 500.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, token.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, depgraph.ErrValidation),
		errors.Is(err, depgraph.ErrCycle),
		errors.Is(err, rule.ErrBadInput),
		errors.Is(err, token.ErrInvalidToken):
		status = http.StatusBadRequest
	case errors.Is(err, rule.ErrUnsupported):
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
