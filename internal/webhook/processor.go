package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/businessguru/crm/internal/greenapi"
	"github.com/businessguru/crm/internal/metrics"
	"github.com/businessguru/crm/internal/model"
	"github.com/businessguru/crm/internal/repository"
)

// EnquiryStore is the persistence surface the processor needs.
type EnquiryStore interface {
	CreateEnquiry(ctx context.Context, enquiry *model.Enquiry) error
	FindEnquiryByMessageID(ctx context.Context, mobileNumber, messageID string) (*model.Enquiry, error)
	MarkEnquiryMessageSent(ctx context.Context, id, messageID string) error
}

// MessageSender sends outbound WhatsApp messages.
type MessageSender interface {
	SendMessage(ctx context.Context, phone, text string) (string, error)
	SendTemplate(ctx context.Context, phone, templateName string, data greenapi.TemplateData) (string, error)
}

// Deduper is the optional fast-path check for already-processed messages.
// The store's unique index remains the durable guard.
type Deduper interface {
	SeenMessage(ctx context.Context, chatID, messageID string) (bool, error)
	MarkMessageProcessed(ctx context.Context, chatID, messageID string) error
}

// Result is the envelope returned to the gateway. Success is true for
// every outcome except internal faults; the gateway retries on anything
// else, and retries of unprocessable payloads help nobody.
type Result struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	EnquiryID string `json:"enquiry_id,omitempty"`
}

// Processor turns raw webhook bodies into enquiries and replies.
type Processor struct {
	store   EnquiryStore
	sender  MessageSender
	dedup   Deduper
	monitor *Monitor
	rec     metrics.Recorder
	logger  *slog.Logger
}

// NewProcessor creates a Processor. dedup may be nil, in which case only
// the database guards against duplicates. rec may be nil.
func NewProcessor(store EnquiryStore, sender MessageSender, dedup Deduper, monitor *Monitor, rec metrics.Recorder, logger *slog.Logger) *Processor {
	if rec == nil {
		rec = metrics.NewNoop()
	}
	return &Processor{
		store:   store,
		sender:  sender,
		dedup:   dedup,
		monitor: monitor,
		rec:     rec,
		logger:  logger,
	}
}

// Process handles one webhook delivery. It never fails on payload
// problems: the body is untrusted gateway input and a non-2xx response
// would only trigger redelivery of the same payload.
func (p *Processor) Process(ctx context.Context, body []byte) Result {
	p.rec.IncWebhookReceived()
	start := time.Now()
	defer func() { p.rec.ObserveWebhookDuration(time.Since(start)) }()

	if len(bytes.TrimSpace(body)) == 0 {
		p.logger.Warn("empty webhook body received")
		return Result{Success: true, Message: "Empty data received"}
	}

	var payload Payload
	if err := json.Unmarshal(body, &payload); err != nil {
		p.logger.Warn("malformed webhook body", "error", err)
		p.monitor.Record("webhook", StatusWarning, "Malformed webhook payload ignored", map[string]string{
			"error": err.Error(),
		})
		p.rec.IncWebhookIgnored()
		return Result{Success: true, Message: "Malformed payload ignored"}
	}

	if t := payload.TypeWebhook; t != "" && t != TypeIncomingMessage && t != TypeOutgoingMessage {
		p.logger.Info("non-message webhook event", "type", t)
		p.monitor.Record("webhook", StatusInfo, "Non-message event received", map[string]string{
			"webhook_type": t,
		})
		p.rec.IncWebhookIgnored()
		return Result{Success: true, Message: fmt.Sprintf("Webhook event %s received and ignored", t)}
	}

	msg, ok := ExtractMessage(&payload)
	if !ok {
		p.logger.Info("webhook without message data", "type", payload.TypeWebhook)
		p.monitor.Record("webhook", StatusInfo, "No message data found", map[string]string{
			"webhook_type": payload.TypeWebhook,
		})
		p.rec.IncWebhookIgnored()
		return Result{Success: true, Message: "No message data found"}
	}

	if msg.SelfSent {
		p.logger.Info("outgoing message ignored",
			"chat_id", msg.ChatID,
			"message_id", msg.MessageID,
		)
		p.monitor.Record("webhook", StatusInfo, "Outgoing message ignored", map[string]string{
			"chat_id": msg.ChatID,
		})
		p.rec.IncWebhookIgnored()
		return Result{Success: true, Message: "Outgoing message ignored"}
	}

	switch Classify(msg.Text) {
	case KindReplyOption:
		response, _ := ReplyResponse(msg.Text)
		p.sendReply(ctx, msg, response)
		return Result{Success: true, Message: "Reply option processed"}

	case KindInterested:
		return p.createEnquiry(ctx, msg)

	default:
		p.logger.Info("message not an enquiry",
			"chat_id", msg.ChatID,
			"text_length", len(msg.Text),
		)
		p.rec.IncWebhookIgnored()
		return Result{Success: true, Message: "Message received but not processed as enquiry"}
	}
}

// sendReply answers a menu option. Failures are logged and swallowed:
// the inbound message was handled even if the outbound leg failed.
func (p *Processor) sendReply(ctx context.Context, msg Message, response string) {
	if _, err := p.sender.SendMessage(ctx, msg.ChatID, response); err != nil {
		p.logSendFailure(msg.ChatID, "reply option", err)
		return
	}
	p.rec.IncMessageSent(metrics.SendStatusSuccess)
	p.logger.Info("reply option answered",
		"chat_id", msg.ChatID,
		"option", normalize(msg.Text),
	)
}

func (p *Processor) logSendFailure(chatID, what string, err error) {
	if greenapi.IsQuotaExceeded(err) {
		p.rec.IncMessageSent(metrics.SendStatusQuota)
		p.logger.Warn("gateway quota exceeded, message not sent",
			"chat_id", chatID,
			"kind", what,
		)
		p.monitor.Record("send", StatusWarning, "Gateway monthly quota exceeded", map[string]string{
			"chat_id": chatID,
			"kind":    what,
		})
		return
	}
	if errors.Is(err, greenapi.ErrNotConfigured) {
		p.logger.Warn("gateway not configured, message not sent", "kind", what)
		return
	}
	p.rec.IncMessageSent(metrics.SendStatusFailed)
	p.logger.Error("failed to send message",
		"chat_id", chatID,
		"kind", what,
		"error", err,
	)
	p.monitor.Record("send", StatusError, "Failed to send WhatsApp message", map[string]string{
		"chat_id": chatID,
		"kind":    what,
		"error":   err.Error(),
	})
}

// createEnquiry stores an enquiry for an interested message and sends the
// welcome template. Duplicate deliveries of the same message resolve to
// the existing enquiry.
func (p *Processor) createEnquiry(ctx context.Context, msg Message) Result {
	mobile := greenapi.ChatIDToMobile(msg.ChatID)
	if mobile == "" {
		p.logger.Warn("interested message without usable sender number", "chat_id", msg.ChatID)
		p.monitor.Record("enquiry", StatusWarning, "Interested message had no sender number", nil)
		return Result{Success: true, Message: "No sender number found"}
	}

	// Fast path: recently processed message IDs live in Redis. A cache
	// miss or cache error falls through to the database lookup.
	if p.dedup != nil && msg.MessageID != "" {
		seen, err := p.dedup.SeenMessage(ctx, msg.ChatID, msg.MessageID)
		if err != nil {
			p.logger.Warn("dedup cache unavailable", "error", err)
		} else if seen {
			p.logger.Info("duplicate delivery skipped via cache",
				"chat_id", msg.ChatID,
				"message_id", msg.MessageID,
			)
			p.rec.IncEnquiryDuplicate()
			return Result{Success: true, Message: "Enquiry already exists"}
		}
	}

	if msg.MessageID != "" {
		existing, err := p.store.FindEnquiryByMessageID(ctx, mobile, msg.MessageID)
		if err == nil {
			p.logger.Info("enquiry already exists for message",
				"enquiry_id", existing.ID.Hex(),
				"message_id", msg.MessageID,
			)
			p.rec.IncEnquiryDuplicate()
			return Result{Success: true, Message: "Enquiry already exists", EnquiryID: existing.ID.Hex()}
		}
		if !errors.Is(err, repository.ErrEnquiryNotFound) {
			p.logger.Error("dedup lookup failed", "error", err)
			p.monitor.Record("enquiry", StatusError, "Failed to check for existing enquiry", map[string]string{
				"error": err.Error(),
			})
			return Result{Success: false, Message: "Error processing webhook"}
		}
	}

	displayName := msg.SenderName
	if displayName == "" || displayName == "null" {
		// Free gateway plans omit sender names
		displayName = "WhatsApp User " + mobile
	}
	senderName := msg.SenderName
	if senderName == "" || senderName == "null" {
		senderName = "Not available (Free plan)"
	}

	enquiry := &model.Enquiry{
		WatiName:            displayName,
		UserName:            msg.SenderName,
		MobileNumber:        mobile,
		Staff:               model.WebhookStaffName,
		Comments:            "New Enquiry - Interested",
		AdditionalComments:  fmt.Sprintf("Received via WhatsApp: %q", msg.Text),
		Source:              model.SourceWhatsAppWebhook,
		WhatsAppStatus:      "received",
		WhatsAppMessageID:   msg.MessageID,
		WhatsAppChatID:      msg.ChatID,
		WhatsAppSenderName:  senderName,
		WhatsAppMessageText: msg.Text,
	}

	if err := p.store.CreateEnquiry(ctx, enquiry); err != nil {
		if errors.Is(err, repository.ErrDuplicateEnquiry) {
			// Lost a race with a concurrent delivery of the same message
			p.logger.Info("duplicate enquiry rejected by index", "message_id", msg.MessageID)
			p.rec.IncEnquiryDuplicate()
			return Result{Success: true, Message: "Enquiry already exists"}
		}
		p.logger.Error("failed to create enquiry", "error", err)
		p.monitor.Record("enquiry", StatusError, "Failed to create enquiry", map[string]string{
			"error": err.Error(),
		})
		return Result{Success: false, Message: "Error processing webhook"}
	}

	p.rec.IncEnquiryCreated(model.SourceWhatsAppWebhook)
	enquiryID := enquiry.ID.Hex()
	p.logger.Info("enquiry created from webhook",
		"enquiry_id", enquiryID,
		"mobile_number", mobile,
		"sender_name", msg.SenderName,
	)
	p.monitor.Record("enquiry", StatusSuccess, "WhatsApp enquiry created", map[string]string{
		"enquiry_id":    enquiryID,
		"mobile_number": mobile,
		"customer":      displayName,
	})

	if p.dedup != nil && msg.MessageID != "" {
		if err := p.dedup.MarkMessageProcessed(ctx, msg.ChatID, msg.MessageID); err != nil {
			p.logger.Warn("failed to mark message in dedup cache", "error", err)
		}
	}

	p.sendWelcome(ctx, enquiry)

	return Result{Success: true, Message: "Enquiry created successfully", EnquiryID: enquiryID}
}

// sendWelcome delivers the welcome template to a new enquiry. Quota
// exhaustion and other send failures never fail the webhook.
func (p *Processor) sendWelcome(ctx context.Context, enquiry *model.Enquiry) {
	data := greenapi.TemplateData{WatiName: enquiry.DisplayName()}

	messageID, err := p.sender.SendTemplate(ctx, enquiry.MobileNumber, greenapi.TemplateNewEnquiry, data)
	if err != nil {
		p.logSendFailure(enquiry.WhatsAppChatID, "welcome message", err)
		return
	}

	if err := p.store.MarkEnquiryMessageSent(ctx, enquiry.ID.Hex(), messageID); err != nil {
		p.logger.Warn("failed to record welcome message", "enquiry_id", enquiry.ID.Hex(), "error", err)
	}
	p.logger.Info("welcome message sent",
		"enquiry_id", enquiry.ID.Hex(),
		"message_id", messageID,
	)
}
