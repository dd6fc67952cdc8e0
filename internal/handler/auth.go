package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/businessguru/crm/internal/handler/dto"
	"github.com/businessguru/crm/internal/repository"
	"github.com/businessguru/crm/internal/service"
)

// AuthHandler handles the password-reset endpoints.
type AuthHandler struct {
	svc    *service.AuthService
	logger *slog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(svc *service.AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		svc:    svc,
		logger: logger,
	}
}

// ForgotPassword handles POST /api/auth/forgot-password.
// The response is the same whether or not the account exists.
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req dto.ForgotPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	if err := h.svc.ForgotPassword(r.Context(), req.Email); err != nil {
		if errors.Is(err, service.ErrMissingEmail) {
			writeError(w, http.StatusBadRequest, "MISSING_EMAIL", "Email is required")
			return
		}
		h.logger.Error("forgot_password_failed", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
		return
	}

	writeJSON(w, http.StatusOK, dto.MessageResponse{
		Message: "If the account exists, a reset link has been sent",
	})
}

// ResetPassword handles POST /api/auth/reset-password.
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req dto.ResetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	if err := h.svc.ResetPassword(r.Context(), req.Token, req.NewPassword); err != nil {
		switch {
		case errors.Is(err, service.ErrPasswordTooShort):
			writeError(w, http.StatusBadRequest, "PASSWORD_TOO_SHORT", "Password must be at least 8 characters")
		case errors.Is(err, repository.ErrTokenExpired):
			writeError(w, http.StatusBadRequest, "INVALID_TOKEN", "Reset token is invalid or expired")
		default:
			h.logger.Error("reset_password_failed", "error", err)
			writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
		}
		return
	}

	writeJSON(w, http.StatusOK, dto.MessageResponse{Message: "Password has been reset"})
}
