package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/businessguru/crm/internal/greenapi"
	"github.com/businessguru/crm/internal/metrics"
	"github.com/businessguru/crm/internal/model"
	"github.com/businessguru/crm/internal/repository"
)

// EnquiryService handles enquiry business logic: CRUD plus the WhatsApp
// follow-ups that comment and staff changes trigger.
type EnquiryService struct {
	store  EnquiryStore
	sender MessageSender
	rec    metrics.Recorder
	logger *slog.Logger
}

// NewEnquiryService creates a new EnquiryService. rec may be nil.
func NewEnquiryService(store EnquiryStore, sender MessageSender, rec metrics.Recorder, logger *slog.Logger) *EnquiryService {
	if rec == nil {
		rec = metrics.NewNoop()
	}
	return &EnquiryService{
		store:  store,
		sender: sender,
		rec:    rec,
		logger: logger,
	}
}

// CreateEnquiryInput carries the fields accepted when creating an enquiry.
type CreateEnquiryInput struct {
	WatiName              string
	UserName              string
	MobileNumber          string
	SecondaryMobileNumber string
	GST                   string
	GSTStatus             string
	BusinessType          string
	BusinessNature        string
	Staff                 string
	Comments              string
	AdditionalComments    string
	Source                string
}

// CreateResult pairs the stored enquiry with the outcome of the welcome
// message, which is reported but never fails the create.
type CreateResult struct {
	Enquiry     *model.Enquiry
	SendOutcome string
}

// CreateEnquiry validates and stores an enquiry. When sendWelcome is set
// the comment-mapped WhatsApp template goes out to the enquirer.
func (s *EnquiryService) CreateEnquiry(ctx context.Context, input CreateEnquiryInput, sendWelcome bool) (*CreateResult, error) {
	name := input.WatiName
	if name == "" {
		name = input.UserName
	}
	if name == "" {
		return nil, ErrMissingName
	}

	mobile := greenapi.DigitsOnly(input.MobileNumber)
	if mobile == "" {
		return nil, ErrMissingMobileNumber
	}

	source := input.Source
	if source == "" {
		source = model.SourceManual
	}

	enquiry := &model.Enquiry{
		WatiName:              name,
		UserName:              input.UserName,
		MobileNumber:          mobile,
		SecondaryMobileNumber: greenapi.DigitsOnly(input.SecondaryMobileNumber),
		GST:                   input.GST,
		GSTStatus:             input.GSTStatus,
		BusinessType:          input.BusinessType,
		BusinessNature:        input.BusinessNature,
		Staff:                 input.Staff,
		Comments:              input.Comments,
		AdditionalComments:    input.AdditionalComments,
		Source:                source,
	}

	if err := s.store.CreateEnquiry(ctx, enquiry); err != nil {
		return nil, fmt.Errorf("create enquiry: %w", err)
	}
	s.rec.IncEnquiryCreated(source)

	result := &CreateResult{Enquiry: enquiry, SendOutcome: SendOutcomeSkipped}
	if sendWelcome {
		result.SendOutcome = s.sendCommentTemplate(ctx, enquiry, enquiry.Comments)
	}

	s.logger.Info("enquiry created",
		"enquiry_id", enquiry.ID.Hex(),
		"source", source,
		"send_outcome", result.SendOutcome,
	)
	return result, nil
}

// GetEnquiry fetches one enquiry by ID.
func (s *EnquiryService) GetEnquiry(ctx context.Context, id string) (*model.Enquiry, error) {
	return s.store.GetEnquiry(ctx, id)
}

// ListEnquiries lists enquiries newest-first.
func (s *EnquiryService) ListEnquiries(ctx context.Context, filter repository.EnquiryFilter) ([]*model.Enquiry, error) {
	return s.store.ListEnquiries(ctx, filter)
}

// Stats aggregates enquiry counts.
func (s *EnquiryService) Stats(ctx context.Context) (*model.EnquiryStats, error) {
	return s.store.EnquiryStats(ctx)
}

// DeleteEnquiry removes an enquiry.
func (s *EnquiryService) DeleteEnquiry(ctx context.Context, id string) error {
	return s.store.DeleteEnquiry(ctx, id)
}

// UpdateResult pairs the updated enquiry with the outcomes of any
// follow-up messages the change triggered.
type UpdateResult struct {
	Enquiry        *model.Enquiry
	CommentOutcome string
	StaffOutcome   string
}

// UpdateEnquiry applies the update and sends the follow-ups a comment or
// staff change calls for. Send failures never roll back the update.
func (s *EnquiryService) UpdateEnquiry(ctx context.Context, id string, update repository.EnquiryUpdate) (*UpdateResult, error) {
	before, err := s.store.GetEnquiry(ctx, id)
	if err != nil {
		return nil, err
	}

	after, err := s.store.UpdateEnquiry(ctx, id, update)
	if err != nil {
		return nil, err
	}

	result := &UpdateResult{
		Enquiry:        after,
		CommentOutcome: SendOutcomeSkipped,
		StaffOutcome:   SendOutcomeSkipped,
	}

	if update.Comments != nil && *update.Comments != before.Comments {
		result.CommentOutcome = s.sendCommentTemplate(ctx, after, *update.Comments)
	}
	if update.Staff != nil && *update.Staff != before.Staff && *update.Staff != "" && *update.Staff != model.WebhookStaffName {
		result.StaffOutcome = s.sendStaffAssignment(ctx, after, *update.Staff)
	}

	return result, nil
}

// sendCommentTemplate sends the template mapped to the comment text.
func (s *EnquiryService) sendCommentTemplate(ctx context.Context, enquiry *model.Enquiry, comment string) string {
	template := greenapi.TemplateForComment(comment)
	data := greenapi.TemplateData{
		WatiName:       enquiry.DisplayName(),
		BusinessNature: enquiry.BusinessNature,
	}

	messageID, err := s.sender.SendTemplate(ctx, enquiry.MobileNumber, template, data)
	outcome := sendOutcome(err)
	if outcome != SendOutcomeNoGateway {
		s.rec.IncMessageSent(metricsStatus(outcome))
	}
	if err != nil {
		s.logger.Warn("comment template not sent",
			"enquiry_id", enquiry.ID.Hex(),
			"template", template,
			"outcome", outcome,
			"error", err,
		)
		return outcome
	}

	if err := s.store.MarkEnquiryMessageSent(ctx, enquiry.ID.Hex(), messageID); err != nil {
		s.logger.Warn("failed to mark enquiry message sent", "enquiry_id", enquiry.ID.Hex(), "error", err)
	}
	s.logger.Info("comment template sent",
		"enquiry_id", enquiry.ID.Hex(),
		"template", template,
	)
	return outcome
}

// sendStaffAssignment sends the staff introduction sequence.
func (s *EnquiryService) sendStaffAssignment(ctx context.Context, enquiry *model.Enquiry, staffName string) string {
	sent, err := s.sender.SendStaffAssignment(ctx, enquiry.MobileNumber, staffName)
	outcome := sendOutcome(err)
	if outcome != SendOutcomeNoGateway {
		s.rec.IncMessageSent(metricsStatus(outcome))
	}
	if err != nil {
		s.logger.Warn("staff assignment messages incomplete",
			"enquiry_id", enquiry.ID.Hex(),
			"staff", staffName,
			"sent", sent,
			"outcome", outcome,
			"error", err,
		)
		return outcome
	}
	s.logger.Info("staff assignment messages sent",
		"enquiry_id", enquiry.ID.Hex(),
		"staff", staffName,
		"sent", sent,
	)
	return outcome
}

// metricsStatus converts a send outcome to the metrics status label.
func metricsStatus(outcome string) string {
	switch outcome {
	case SendOutcomeSent:
		return metrics.SendStatusSuccess
	case SendOutcomeQuota:
		return metrics.SendStatusQuota
	default:
		return metrics.SendStatusFailed
	}
}
