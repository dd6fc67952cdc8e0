package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/businessguru/crm/internal/greenapi"
	"github.com/businessguru/crm/internal/handler/dto"
	"github.com/businessguru/crm/internal/model"
	"github.com/businessguru/crm/internal/repository"
	"github.com/businessguru/crm/internal/service"
)

type enquiryStoreStub struct {
	enquiries map[string]*model.Enquiry
}

func newEnquiryStoreStub() *enquiryStoreStub {
	return &enquiryStoreStub{enquiries: make(map[string]*model.Enquiry)}
}

func (s *enquiryStoreStub) CreateEnquiry(ctx context.Context, enquiry *model.Enquiry) error {
	enquiry.ID = primitive.NewObjectID()
	s.enquiries[enquiry.ID.Hex()] = enquiry
	return nil
}

func (s *enquiryStoreStub) GetEnquiry(ctx context.Context, id string) (*model.Enquiry, error) {
	e, ok := s.enquiries[id]
	if !ok {
		return nil, repository.ErrEnquiryNotFound
	}
	copied := *e
	return &copied, nil
}

func (s *enquiryStoreStub) ListEnquiries(ctx context.Context, filter repository.EnquiryFilter) ([]*model.Enquiry, error) {
	out := make([]*model.Enquiry, 0, len(s.enquiries))
	for _, e := range s.enquiries {
		out = append(out, e)
	}
	return out, nil
}

func (s *enquiryStoreStub) UpdateEnquiry(ctx context.Context, id string, update repository.EnquiryUpdate) (*model.Enquiry, error) {
	e, ok := s.enquiries[id]
	if !ok {
		return nil, repository.ErrEnquiryNotFound
	}
	if update.Comments != nil {
		e.Comments = *update.Comments
	}
	if update.Staff != nil {
		e.Staff = *update.Staff
	}
	return e, nil
}

func (s *enquiryStoreStub) MarkEnquiryMessageSent(ctx context.Context, id, messageID string) error {
	return nil
}

func (s *enquiryStoreStub) DeleteEnquiry(ctx context.Context, id string) error {
	if _, ok := s.enquiries[id]; !ok {
		return repository.ErrEnquiryNotFound
	}
	delete(s.enquiries, id)
	return nil
}

func (s *enquiryStoreStub) EnquiryStats(ctx context.Context) (*model.EnquiryStats, error) {
	return &model.EnquiryStats{Total: int64(len(s.enquiries))}, nil
}

type senderStub struct {
	templates []string
	staff     []string
}

func (s *senderStub) SendMessage(ctx context.Context, phone, text string) (string, error) {
	return "OUT01", nil
}

func (s *senderStub) SendTemplate(ctx context.Context, phone, templateName string, data greenapi.TemplateData) (string, error) {
	s.templates = append(s.templates, templateName)
	return "OUT02", nil
}

func (s *senderStub) SendStaffAssignment(ctx context.Context, phone, staffName string) (int, error) {
	s.staff = append(s.staff, staffName)
	return 3, nil
}

func newTestEnquiryRouter() (chi.Router, *enquiryStoreStub, *senderStub) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := newEnquiryStoreStub()
	sender := &senderStub{}
	svc := service.NewEnquiryService(store, sender, nil, logger)
	h := NewEnquiryHandler(svc, logger)

	r := chi.NewRouter()
	r.Get("/api/enquiries", h.List)
	r.Post("/api/enquiries", h.Create)
	r.Post("/api/enquiries/public", h.CreatePublic)
	r.Get("/api/enquiries/stats", h.Stats)
	r.Get("/api/enquiries/{id}", h.Get)
	r.Put("/api/enquiries/{id}", h.Update)
	r.Delete("/api/enquiries/{id}", h.Delete)
	return r, store, sender
}

func TestEnquiryCreate(t *testing.T) {
	r, store, sender := newTestEnquiryRouter()

	body := `{"wati_name": "Ravi", "mobile_number": "+91 98765 43210", "comments": "Interested"}`
	req := httptest.NewRequest(http.MethodPost, "/api/enquiries", strings.NewReader(body))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var response dto.EnquiryWriteResponse
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if response.Enquiry.MobileNumber != "919876543210" {
		t.Errorf("mobile not normalized: %q", response.Enquiry.MobileNumber)
	}
	if response.WhatsApp != service.SendOutcomeSkipped {
		t.Errorf("manual create must not send WhatsApp, got %q", response.WhatsApp)
	}
	if len(store.enquiries) != 1 || len(sender.templates) != 0 {
		t.Errorf("unexpected store/sender state: %d enquiries, %d sends", len(store.enquiries), len(sender.templates))
	}
}

func TestEnquiryCreate_MissingFields(t *testing.T) {
	r, _, _ := newTestEnquiryRouter()

	req := httptest.NewRequest(http.MethodPost, "/api/enquiries", strings.NewReader(`{"comments": "hi"}`))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestEnquiryCreatePublic_SendsWelcome(t *testing.T) {
	r, _, sender := newTestEnquiryRouter()

	body := `{"user_name": "Ravi", "mobile_number": "919876543210", "comments": "No GST"}`
	req := httptest.NewRequest(http.MethodPost, "/api/enquiries/public", strings.NewReader(body))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var response dto.EnquiryWriteResponse
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if response.WhatsApp != service.SendOutcomeSent {
		t.Errorf("expected outcome %q, got %q", service.SendOutcomeSent, response.WhatsApp)
	}
	if response.Enquiry.Source != model.SourcePublicForm {
		t.Errorf("expected public_form source, got %q", response.Enquiry.Source)
	}
	if len(sender.templates) != 1 || sender.templates[0] != greenapi.TemplateNoGST {
		t.Errorf("expected no_gst template, got %v", sender.templates)
	}
}

func TestEnquiryGet_NotFound(t *testing.T) {
	r, _, _ := newTestEnquiryRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/enquiries/"+primitive.NewObjectID().Hex(), nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	var response dto.ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if response.Code != "ENQUIRY_NOT_FOUND" {
		t.Errorf("unexpected error code %q", response.Code)
	}
}

func TestEnquiryUpdate_StaffAssignmentReported(t *testing.T) {
	r, store, sender := newTestEnquiryRouter()

	enquiry := &model.Enquiry{WatiName: "Ravi", MobileNumber: "919876543210", Staff: model.WebhookStaffName}
	if err := store.CreateEnquiry(context.Background(), enquiry); err != nil {
		t.Fatalf("seed: %v", err)
	}

	body := `{"staff": "Priya"}`
	req := httptest.NewRequest(http.MethodPut, "/api/enquiries/"+enquiry.ID.Hex(), strings.NewReader(body))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var response dto.EnquiryWriteResponse
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if response.StaffMessage != service.SendOutcomeSent {
		t.Errorf("expected staff outcome %q, got %q", service.SendOutcomeSent, response.StaffMessage)
	}
	if len(sender.staff) != 1 || sender.staff[0] != "Priya" {
		t.Errorf("expected staff assignment for Priya, got %v", sender.staff)
	}
}

func TestEnquiryDelete(t *testing.T) {
	r, store, _ := newTestEnquiryRouter()

	enquiry := &model.Enquiry{WatiName: "Ravi", MobileNumber: "919876543210"}
	if err := store.CreateEnquiry(context.Background(), enquiry); err != nil {
		t.Fatalf("seed: %v", err)
	}

	req := httptest.NewRequest(http.MethodDelete, "/api/enquiries/"+enquiry.ID.Hex(), nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if len(store.enquiries) != 0 {
		t.Errorf("enquiry not deleted")
	}
}
