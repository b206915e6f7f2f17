package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"parcel-delivery-service/internal/api/dto"
)

// Error codes in the response envelope.
const (
	codeValidation  = "VALIDATION_ERROR"
	codeForbidden   = "FORBIDDEN"
	codeNotFound    = "NOT_FOUND"
	codeInternal    = "INTERNAL_SERVER_ERROR"
	codeUnavailable = "SOURCE_UNAVAILABLE"
)

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response failed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()))
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, code, msg string) {
	writeJSON(w, r, status, dto.ErrorResponse{Error: code, Message: msg})
}

func writeValidationError(w http.ResponseWriter, r *http.Request, problems map[string]string) {
	details := make(map[string]any, len(problems))
	for field, msg := range problems {
		details[field] = msg
	}
	writeJSON(w, r, http.StatusUnprocessableEntity, dto.ErrorResponse{
		Error:   codeValidation,
		Message: "request validation failed",
		Details: details,
	})
}
