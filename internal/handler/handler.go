// Package handler provides HTTP request handlers.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/murmur/murmur/internal/handler/dto"
	"github.com/murmur/murmur/internal/middleware"
	"github.com/murmur/murmur/internal/service"
	"github.com/murmur/murmur/internal/transcribe"
)

// Version is reported by the root endpoint.
const Version = "1.0.0"

// Handler serves the root, 404 and 405 responses.
type Handler struct{}

// New creates a new Handler instance.
func New() *Handler {
	return &Handler{}
}

// Hello reports the service name and version.
// GET /
func (h *Handler) Hello(w http.ResponseWriter, r *http.Request) {
	response := map[string]string{
		"message": "murmur transcription API",
		"version": Version,
	}
	writeJSON(w, http.StatusOK, response)
}

// NotFound handles 404 responses.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, "NOT_FOUND", "resource not found")
}

// MethodNotAllowed handles 405 responses.
func (h *Handler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed")
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, dto.ErrorResponse{
		Error: message,
		Code:  code,
	})
}

// handleServiceError maps service and gateway errors to HTTP responses.
// Upstream and storage detail is logged, never returned.
func handleServiceError(logger *slog.Logger, w http.ResponseWriter, r *http.Request, err error) {
	requestID := middleware.GetRequestID(r.Context())

	var maxBytes *http.MaxBytesError
	switch {
	case errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, service.ErrEmailExists),
		errors.Is(err, service.ErrInvalidCredentials):
		// One response for every credential failure so signup and login
		// never reveal whether an email is registered.
		logger.Info("credentials_rejected", "request_id", requestID, "reason", err)
		writeError(w, http.StatusForbidden, "INVALID_CREDENTIALS", "Invalid email or password")
	case errors.Is(err, service.ErrUnauthenticated):
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
	case errors.Is(err, transcribe.ErrTooLarge), errors.As(err, &maxBytes):
		writeError(w, http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE", "Audio file too large")
	case errors.Is(err, transcribe.ErrEmpty):
		writeError(w, http.StatusBadRequest, "EMPTY_AUDIO", "Audio file is empty")
	case errors.Is(err, transcribe.ErrTimeout):
		logger.Error("transcription_timeout", "request_id", requestID, "error", err)
		writeError(w, http.StatusInternalServerError, "TRANSCRIPTION_TIMEOUT", "Transcription service timed out")
	case errors.Is(err, transcribe.ErrUpstream):
		logger.Error("transcription_failed", "request_id", requestID, "error", err)
		writeError(w, http.StatusInternalServerError, "TRANSCRIPTION_FAILED", "Transcription service failed")
	default:
		logger.Error("internal_error", "request_id", requestID, "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
	}
}
