package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/businessguru/crm/internal/auth"
	"github.com/businessguru/crm/internal/repository"
)

// AuthService handles the password-reset flow.
type AuthService struct {
	users           UserStore
	mailer          Mailer
	frontendBaseURL string
	logger          *slog.Logger
}

// NewAuthService creates a new AuthService.
func NewAuthService(users UserStore, mailer Mailer, frontendBaseURL string, logger *slog.Logger) *AuthService {
	return &AuthService{
		users:           users,
		mailer:          mailer,
		frontendBaseURL: frontendBaseURL,
		logger:          logger,
	}
}

// ForgotPassword issues a reset token and emails the link. An unknown
// email returns nil so the endpoint cannot be used to probe accounts.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	if email == "" {
		return ErrMissingEmail
	}

	user, err := s.users.FindUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			s.logger.Info("password reset requested for unknown email")
			return nil
		}
		return fmt.Errorf("find user: %w", err)
	}

	token, tokenHash, err := auth.GenerateResetToken()
	if err != nil {
		return err
	}

	expiry := time.Now().UTC().Add(auth.ResetTokenTTL)
	if err := s.users.SetResetToken(ctx, user.Email, tokenHash, expiry); err != nil {
		return fmt.Errorf("store reset token: %w", err)
	}

	if err := s.mailer.SendPasswordReset(user.Email, s.frontendBaseURL, token); err != nil {
		return fmt.Errorf("send reset email: %w", err)
	}

	s.logger.Info("password reset email sent", "user_id", user.ID.Hex())
	return nil
}

// ResetPassword consumes a reset token and sets the new password.
// Expired or unknown tokens surface as repository.ErrTokenExpired.
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if len(newPassword) < 8 {
		return ErrPasswordTooShort
	}

	passwordHash, err := auth.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if err := s.users.ResetPassword(ctx, auth.HashToken(token), passwordHash); err != nil {
		return err
	}

	s.logger.Info("password reset completed")
	return nil
}
