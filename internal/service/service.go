// Package service provides business logic for the application.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/businessguru/crm/internal/greenapi"
	"github.com/businessguru/crm/internal/model"
	"github.com/businessguru/crm/internal/repository"
)

// Validation errors.
var (
	ErrMissingName         = errors.New("name is required")
	ErrMissingMobileNumber = errors.New("mobile number is required")
	ErrInvalidMobileNumber = errors.New("mobile number is not usable")
	ErrMissingEmail        = errors.New("email is required")
	ErrInvalidStatus       = errors.New("invalid status value")
	ErrPasswordTooShort    = errors.New("password must be at least 8 characters")
)

// Outbound send outcomes reported alongside CRUD results. The write
// succeeds regardless; callers surface the outcome without failing.
const (
	SendOutcomeSent      = "sent"
	SendOutcomeFailed    = "failed"
	SendOutcomeQuota     = "quota_exceeded"
	SendOutcomeSkipped   = "skipped"
	SendOutcomeNoGateway = "not_configured"
)

// EnquiryStore is the persistence surface for enquiry operations.
type EnquiryStore interface {
	CreateEnquiry(ctx context.Context, enquiry *model.Enquiry) error
	GetEnquiry(ctx context.Context, id string) (*model.Enquiry, error)
	ListEnquiries(ctx context.Context, filter repository.EnquiryFilter) ([]*model.Enquiry, error)
	UpdateEnquiry(ctx context.Context, id string, update repository.EnquiryUpdate) (*model.Enquiry, error)
	MarkEnquiryMessageSent(ctx context.Context, id, messageID string) error
	DeleteEnquiry(ctx context.Context, id string) error
	EnquiryStats(ctx context.Context) (*model.EnquiryStats, error)
}

// ClientStore is the persistence surface for client operations.
type ClientStore interface {
	CreateClient(ctx context.Context, client *model.Client) error
	GetClient(ctx context.Context, id string) (*model.Client, error)
	ListClients(ctx context.Context, filter repository.ClientFilter) ([]*model.Client, error)
	UpdateClient(ctx context.Context, id string, update repository.ClientUpdate) (*model.Client, error)
	UpdateClientStatus(ctx context.Context, id string, status model.EnquiryStatus, feedback string) (*model.Client, error)
	DeleteClient(ctx context.Context, id string) error
}

// UserStore is the persistence surface for the password-reset flow and
// team address lookups.
type UserStore interface {
	FindUserByEmail(ctx context.Context, email string) (*model.User, error)
	SetResetToken(ctx context.Context, email, tokenHash string, expiry time.Time) error
	ResetPassword(ctx context.Context, tokenHash, passwordHash string) error
	ListTeamEmails(ctx context.Context) ([]string, error)
}

// MessageSender sends outbound WhatsApp messages.
type MessageSender interface {
	SendMessage(ctx context.Context, phone, text string) (string, error)
	SendTemplate(ctx context.Context, phone, templateName string, data greenapi.TemplateData) (string, error)
	SendStaffAssignment(ctx context.Context, phone, staffName string) (int, error)
}

// Mailer delivers notification and password-reset email.
type Mailer interface {
	SendPasswordReset(to, frontendBaseURL, token string) error
	SendTeamNotification(recipients []string, subject, body string) error
}

// sendOutcome maps a gateway error to the outcome string for responses.
func sendOutcome(err error) string {
	switch {
	case err == nil:
		return SendOutcomeSent
	case errors.Is(err, greenapi.ErrNotConfigured):
		return SendOutcomeNoGateway
	case greenapi.IsQuotaExceeded(err):
		return SendOutcomeQuota
	default:
		return SendOutcomeFailed
	}
}
