package webhook

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/businessguru/crm/internal/greenapi"
	"github.com/businessguru/crm/internal/model"
	"github.com/businessguru/crm/internal/repository"
)

// fakeStore is an in-memory EnquiryStore.
type fakeStore struct {
	created   []*model.Enquiry
	existing  *model.Enquiry
	createErr error
	sentIDs   []string
}

func (f *fakeStore) CreateEnquiry(ctx context.Context, e *model.Enquiry) error {
	if f.createErr != nil {
		return f.createErr
	}
	e.ID = primitive.NewObjectID()
	f.created = append(f.created, e)
	return nil
}

func (f *fakeStore) FindEnquiryByMessageID(ctx context.Context, mobile, messageID string) (*model.Enquiry, error) {
	if f.existing != nil && f.existing.MobileNumber == mobile && f.existing.WhatsAppMessageID == messageID {
		return f.existing, nil
	}
	return nil, repository.ErrEnquiryNotFound
}

func (f *fakeStore) MarkEnquiryMessageSent(ctx context.Context, id, messageID string) error {
	f.sentIDs = append(f.sentIDs, id)
	return nil
}

type sentMessage struct {
	phone    string
	text     string
	template string
}

// fakeSender records outbound messages.
type fakeSender struct {
	sent    []sentMessage
	sendErr error
}

func (f *fakeSender) SendMessage(ctx context.Context, phone, text string) (string, error) {
	if f.sendErr != nil {
		return "", f.sendErr
	}
	f.sent = append(f.sent, sentMessage{phone: phone, text: text})
	return "OUT01", nil
}

func (f *fakeSender) SendTemplate(ctx context.Context, phone, templateName string, data greenapi.TemplateData) (string, error) {
	if f.sendErr != nil {
		return "", f.sendErr
	}
	f.sent = append(f.sent, sentMessage{phone: phone, template: templateName})
	return "OUT02", nil
}

// fakeDeduper is an in-memory Deduper.
type fakeDeduper struct {
	seen     map[string]bool
	checkErr error
}

func (f *fakeDeduper) key(chatID, messageID string) string { return chatID + ":" + messageID }

func (f *fakeDeduper) SeenMessage(ctx context.Context, chatID, messageID string) (bool, error) {
	if f.checkErr != nil {
		return false, f.checkErr
	}
	return f.seen[f.key(chatID, messageID)], nil
}

func (f *fakeDeduper) MarkMessageProcessed(ctx context.Context, chatID, messageID string) error {
	if f.seen == nil {
		f.seen = make(map[string]bool)
	}
	f.seen[f.key(chatID, messageID)] = true
	return nil
}

func newTestProcessor(store *fakeStore, sender *fakeSender, dedup Deduper) (*Processor, *Monitor) {
	monitor := NewMonitor()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewProcessor(store, sender, dedup, monitor, nil, logger), monitor
}

const interestedPayload = `{
	"typeWebhook": "incomingMessageReceived",
	"idMessage": "MSG100",
	"senderData": {"chatId": "919876543210@c.us", "senderName": "Priya Traders"},
	"messageData": {"typeMessage": "textMessage", "textMessage": {"text": "I am interested"}}
}`

func TestProcessor_InterestedCreatesExactlyOneEnquiry(t *testing.T) {
	store := &fakeStore{}
	sender := &fakeSender{}
	p, monitor := newTestProcessor(store, sender, &fakeDeduper{})

	result := p.Process(context.Background(), []byte(interestedPayload))

	if !result.Success {
		t.Fatalf("expected success, got %+v", result)
	}
	if len(store.created) != 1 {
		t.Fatalf("expected exactly one enquiry, got %d", len(store.created))
	}
	if result.EnquiryID == "" {
		t.Error("expected enquiry ID in result")
	}

	e := store.created[0]
	if e.MobileNumber != "919876543210" {
		t.Errorf("mobile number = %q", e.MobileNumber)
	}
	if e.Staff != model.WebhookStaffName {
		t.Errorf("staff = %q", e.Staff)
	}
	if e.Comments != "New Enquiry - Interested" {
		t.Errorf("comments = %q", e.Comments)
	}
	if e.Source != model.SourceWhatsAppWebhook {
		t.Errorf("source = %q", e.Source)
	}
	if e.WatiName != "Priya Traders" {
		t.Errorf("wati name = %q", e.WatiName)
	}

	// Welcome template goes out
	if len(sender.sent) != 1 || sender.sent[0].template != greenapi.TemplateNewEnquiry {
		t.Errorf("expected one welcome template, got %+v", sender.sent)
	}
	if len(store.sentIDs) != 1 {
		t.Errorf("expected welcome send to be recorded, got %v", store.sentIDs)
	}

	// Monitor saw the enquiry
	events := monitor.Events(0)
	if len(events) == 0 || events[0].Status != StatusSuccess {
		t.Errorf("expected success event in monitor, got %+v", events)
	}
}

func TestProcessor_DuplicateDeliveryCreatesNoSecondEnquiry(t *testing.T) {
	store := &fakeStore{}
	sender := &fakeSender{}
	p, _ := newTestProcessor(store, sender, &fakeDeduper{})

	first := p.Process(context.Background(), []byte(interestedPayload))
	if len(store.created) != 1 {
		t.Fatalf("expected one enquiry after first delivery, got %d", len(store.created))
	}

	// Redelivery of the same payload
	second := p.Process(context.Background(), []byte(interestedPayload))
	if !second.Success {
		t.Fatalf("redelivery must succeed, got %+v", second)
	}
	if len(store.created) != 1 {
		t.Fatalf("redelivery created a second enquiry")
	}
	_ = first
}

func TestProcessor_DuplicateFoundInStoreWithoutCache(t *testing.T) {
	existing := &model.Enquiry{
		ID:                primitive.NewObjectID(),
		MobileNumber:      "919876543210",
		WhatsAppMessageID: "MSG100",
	}
	store := &fakeStore{existing: existing}
	sender := &fakeSender{}
	p, _ := newTestProcessor(store, sender, nil)

	result := p.Process(context.Background(), []byte(interestedPayload))

	if !result.Success {
		t.Fatalf("expected success, got %+v", result)
	}
	if result.EnquiryID != existing.ID.Hex() {
		t.Errorf("expected existing enquiry ID, got %q", result.EnquiryID)
	}
	if len(store.created) != 0 {
		t.Error("existing enquiry must not be recreated")
	}
}

func TestProcessor_ReplyOptionSendsCannedResponse(t *testing.T) {
	store := &fakeStore{}
	sender := &fakeSender{}
	p, _ := newTestProcessor(store, sender, nil)

	payload := `{
		"typeWebhook": "incomingMessageReceived",
		"idMessage": "MSG200",
		"senderData": {"chatId": "919876543210@c.us"},
		"messageData": {"textMessage": {"text": "Get Loan"}}
	}`

	result := p.Process(context.Background(), []byte(payload))

	if !result.Success || result.Message != "Reply option processed" {
		t.Fatalf("unexpected result: %+v", result)
	}
	if len(store.created) != 0 {
		t.Error("reply options must not create enquiries")
	}
	if len(sender.sent) != 1 {
		t.Fatalf("expected one outbound message, got %d", len(sender.sent))
	}
	if !strings.Contains(sender.sent[0].text, "collateral free loans") {
		t.Errorf("unexpected reply text: %s", sender.sent[0].text)
	}
}

func TestProcessor_StateChangeNeverCreatesEnquiry(t *testing.T) {
	store := &fakeStore{}
	sender := &fakeSender{}
	p, _ := newTestProcessor(store, sender, nil)

	payload := `{"typeWebhook": "stateInstanceChanged", "stateInstance": "notAuthorized"}`

	result := p.Process(context.Background(), []byte(payload))

	if !result.Success {
		t.Fatalf("state change must return success, got %+v", result)
	}
	if len(store.created) != 0 {
		t.Error("state change created an enquiry")
	}
	if len(sender.sent) != 0 {
		t.Error("state change triggered an outbound message")
	}
}

func TestProcessor_OutgoingMessageNeverCreatesEnquiry(t *testing.T) {
	store := &fakeStore{}
	sender := &fakeSender{}
	p, _ := newTestProcessor(store, sender, nil)

	payload := `{
		"typeWebhook": "outgoingMessageReceived",
		"idMessage": "MSG300",
		"senderData": {"chatId": "918106811285@c.us", "sender": "918106811285@c.us"},
		"messageData": {"textMessageData": {"textMessage": "Hi I am interested!"}}
	}`

	result := p.Process(context.Background(), []byte(payload))

	if !result.Success {
		t.Fatalf("outgoing message must return success, got %+v", result)
	}
	if len(store.created) != 0 {
		t.Error("self-sent message created an enquiry")
	}
	if len(sender.sent) != 0 {
		t.Error("self-sent message triggered a reply")
	}
}

func TestProcessor_QuotaExceededStillSucceeds(t *testing.T) {
	store := &fakeStore{}
	sender := &fakeSender{sendErr: &greenapi.SendError{
		StatusCode:  greenapi.StatusQuotaExceeded,
		Description: "Monthly quota has been exceeded",
	}}
	p, monitor := newTestProcessor(store, sender, nil)

	result := p.Process(context.Background(), []byte(interestedPayload))

	if !result.Success {
		t.Fatalf("quota exhaustion must not fail the webhook, got %+v", result)
	}
	if len(store.created) != 1 {
		t.Fatalf("enquiry must still be stored, got %d", len(store.created))
	}

	var sawQuotaWarning bool
	for _, e := range monitor.Events(0) {
		if e.Status == StatusWarning && strings.Contains(e.Message, "quota") {
			sawQuotaWarning = true
		}
	}
	if !sawQuotaWarning {
		t.Error("expected quota warning in monitor")
	}
}

func TestProcessor_MalformedBodySucceedsWithoutRecord(t *testing.T) {
	store := &fakeStore{}
	sender := &fakeSender{}
	p, _ := newTestProcessor(store, sender, nil)

	for _, body := range []string{"", "   ", "{not json", `"just a string"`} {
		result := p.Process(context.Background(), []byte(body))
		if !result.Success {
			t.Errorf("body %q: expected success, got %+v", body, result)
		}
	}
	if len(store.created) != 0 {
		t.Error("malformed bodies created enquiries")
	}
}

func TestProcessor_NonInterestedMessageIgnored(t *testing.T) {
	store := &fakeStore{}
	sender := &fakeSender{}
	p, _ := newTestProcessor(store, sender, nil)

	payload := `{
		"typeWebhook": "incomingMessageReceived",
		"senderData": {"chatId": "919876543210@c.us"},
		"messageData": {"textMessage": {"text": "hello there"}}
	}`

	result := p.Process(context.Background(), []byte(payload))

	if !result.Success || result.Message != "Message received but not processed as enquiry" {
		t.Fatalf("unexpected result: %+v", result)
	}
	if len(store.created) != 0 || len(sender.sent) != 0 {
		t.Error("plain message must not create enquiries or replies")
	}
}

func TestProcessor_DedupCacheErrorFallsThrough(t *testing.T) {
	store := &fakeStore{}
	sender := &fakeSender{}
	dedup := &fakeDeduper{checkErr: errors.New("redis down")}
	p, _ := newTestProcessor(store, sender, dedup)

	result := p.Process(context.Background(), []byte(interestedPayload))

	if !result.Success {
		t.Fatalf("cache failure must not block processing, got %+v", result)
	}
	if len(store.created) != 1 {
		t.Fatalf("expected enquiry despite cache failure, got %d", len(store.created))
	}
}
