package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/murmur/murmur/internal/handler/dto"
	"github.com/murmur/murmur/internal/service"
)

// AccountService is the account logic the handler needs.
type AccountService interface {
	Signup(ctx context.Context, in service.Credentials) (*service.Session, error)
	Login(ctx context.Context, in service.Credentials) (*service.Session, error)
}

// AccountHandler handles signup and login.
type AccountHandler struct {
	svc    AccountService
	logger *slog.Logger
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(svc AccountService, logger *slog.Logger) *AccountHandler {
	return &AccountHandler{
		svc:    svc,
		logger: logger,
	}
}

// Signup handles POST /api/signup.
func (h *AccountHandler) Signup(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeCredentials(w, r)
	if !ok {
		return
	}

	session, err := h.svc.Signup(r.Context(), service.Credentials{Email: req.Email, Password: req.Password})
	if err != nil {
		handleServiceError(h.logger, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.TokenResponse{Token: session.Token})
}

// Login handles POST /api/login.
func (h *AccountHandler) Login(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeCredentials(w, r)
	if !ok {
		return
	}

	session, err := h.svc.Login(r.Context(), service.Credentials{Email: req.Email, Password: req.Password})
	if err != nil {
		handleServiceError(h.logger, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.TokenResponse{Token: session.Token})
}

func (h *AccountHandler) decodeCredentials(w http.ResponseWriter, r *http.Request) (dto.CredentialsRequest, bool) {
	var req dto.CredentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) {
			writeError(w, http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE", "Request body too large")
			return req, false
		}
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return req, false
	}
	return req, true
}
