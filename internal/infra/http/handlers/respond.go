package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/nicl-mu/renewal-portal/internal/usecase"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeErrorMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeError maps the use-case error taxonomy to HTTP statuses. Unauthorized
// identities get 403 (the caller is authenticated enough to be told), other
// domain errors 400, technical errors 500 with details.
func writeError(w http.ResponseWriter, err error) {
	var domainErr *usecase.DomainError
	if errors.As(err, &domainErr) {
		status := http.StatusBadRequest
		if domainErr.Code == usecase.CodeUnauthorized {
			status = http.StatusForbidden
		}
		writeErrorMessage(w, status, domainErr.Message)
		return
	}

	var techErr *usecase.TechnicalError
	if errors.As(err, &techErr) {
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error":   techErr.Message,
			"details": techErr.Details,
		})
		return
	}

	writeErrorMessage(w, http.StatusInternalServerError, err.Error())
}
