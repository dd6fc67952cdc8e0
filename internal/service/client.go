package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/businessguru/crm/internal/greenapi"
	"github.com/businessguru/crm/internal/model"
	"github.com/businessguru/crm/internal/repository"
)

// ClientService handles client records: CRUD plus the WhatsApp and team
// email notifications that updates and status changes trigger.
type ClientService struct {
	store  ClientStore
	users  UserStore
	sender MessageSender
	mailer Mailer
	logger *slog.Logger
}

// NewClientService creates a new ClientService.
func NewClientService(store ClientStore, users UserStore, sender MessageSender, mailer Mailer, logger *slog.Logger) *ClientService {
	return &ClientService{
		store:  store,
		users:  users,
		sender: sender,
		mailer: mailer,
		logger: logger,
	}
}

// CreateClient validates and stores a client record.
func (s *ClientService) CreateClient(ctx context.Context, client *model.Client) error {
	if client.UserName == "" {
		return ErrMissingName
	}
	client.MobileNumber = greenapi.DigitsOnly(client.MobileNumber)
	if client.MobileNumber == "" {
		return ErrMissingMobileNumber
	}
	if client.Status != "" && !client.Status.IsValid() {
		return ErrInvalidStatus
	}
	return s.store.CreateClient(ctx, client)
}

// GetClient fetches one client by ID.
func (s *ClientService) GetClient(ctx context.Context, id string) (*model.Client, error) {
	return s.store.GetClient(ctx, id)
}

// ListClients lists clients newest-first.
func (s *ClientService) ListClients(ctx context.Context, filter repository.ClientFilter) ([]*model.Client, error) {
	return s.store.ListClients(ctx, filter)
}

// DeleteClient removes a client record.
func (s *ClientService) DeleteClient(ctx context.Context, id string) error {
	return s.store.DeleteClient(ctx, id)
}

// UpdateClient applies the update, then notifies the client over WhatsApp
// and the team over email about which fields changed. Notification
// failures are logged, never returned.
func (s *ClientService) UpdateClient(ctx context.Context, id string, update repository.ClientUpdate) (*model.Client, error) {
	client, err := s.store.UpdateClient(ctx, id, update)
	if err != nil {
		return nil, err
	}

	changed := update.ChangedFields()
	if len(changed) == 0 {
		return client, nil
	}

	s.notifyClientUpdate(ctx, client, changed)
	s.notifyTeam(ctx,
		fmt.Sprintf("Client Updated: %s", client.UserName),
		fmt.Sprintf("Client %s (%s) was updated.\r\n\r\nChanged fields: %s\r\n",
			client.UserName, client.MobileNumber, strings.Join(changed, ", ")),
	)
	return client, nil
}

// UpdateStatus validates and applies a status change, then notifies the
// team. Feedback is stored alongside the status.
func (s *ClientService) UpdateStatus(ctx context.Context, id string, status model.EnquiryStatus, feedback string) (*model.Client, error) {
	if !status.IsValid() {
		return nil, ErrInvalidStatus
	}

	client, err := s.store.UpdateClientStatus(ctx, id, status, feedback)
	if err != nil {
		return nil, err
	}

	body := fmt.Sprintf("Client %s (%s) status changed to %s.\r\n",
		client.UserName, client.MobileNumber, status)
	if feedback != "" {
		body += fmt.Sprintf("\r\nFeedback: %s\r\n", feedback)
	}
	s.notifyTeam(ctx, fmt.Sprintf("Client Status: %s is now %s", client.UserName, status), body)

	s.logger.Info("client status updated",
		"client_id", client.ID.Hex(),
		"status", string(status),
	)
	return client, nil
}

func (s *ClientService) notifyClientUpdate(ctx context.Context, client *model.Client, changed []string) {
	if client.MobileNumber == "" {
		return
	}
	text := fmt.Sprintf(
		"Hello %s, your profile with Business Guru has been updated (%s). "+
			"Reply to this message if anything looks wrong.",
		client.UserName, strings.Join(changed, ", "))
	if _, err := s.sender.SendMessage(ctx, client.MobileNumber, text); err != nil {
		s.logger.Warn("client update notification not sent",
			"client_id", client.ID.Hex(),
			"outcome", sendOutcome(err),
			"error", err,
		)
	}
}

func (s *ClientService) notifyTeam(ctx context.Context, subject, body string) {
	emails, err := s.users.ListTeamEmails(ctx)
	if err != nil {
		s.logger.Warn("failed to list team emails", "error", err)
		return
	}
	if err := s.mailer.SendTeamNotification(emails, subject, body); err != nil {
		s.logger.Warn("team notification not sent", "subject", subject, "error", err)
	}
}
