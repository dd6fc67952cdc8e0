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
	"time"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/businessguru/crm/internal/handler/dto"
	"github.com/businessguru/crm/internal/model"
	"github.com/businessguru/crm/internal/repository"
	"github.com/businessguru/crm/internal/service"
)

type clientStoreStub struct {
	clients map[string]*model.Client
}

func newClientStoreStub() *clientStoreStub {
	return &clientStoreStub{clients: make(map[string]*model.Client)}
}

func (s *clientStoreStub) CreateClient(ctx context.Context, client *model.Client) error {
	client.ID = primitive.NewObjectID()
	s.clients[client.ID.Hex()] = client
	return nil
}

func (s *clientStoreStub) GetClient(ctx context.Context, id string) (*model.Client, error) {
	c, ok := s.clients[id]
	if !ok {
		return nil, repository.ErrClientNotFound
	}
	copied := *c
	return &copied, nil
}

func (s *clientStoreStub) ListClients(ctx context.Context, filter repository.ClientFilter) ([]*model.Client, error) {
	out := make([]*model.Client, 0, len(s.clients))
	for _, c := range s.clients {
		out = append(out, c)
	}
	return out, nil
}

func (s *clientStoreStub) UpdateClient(ctx context.Context, id string, update repository.ClientUpdate) (*model.Client, error) {
	c, ok := s.clients[id]
	if !ok {
		return nil, repository.ErrClientNotFound
	}
	if update.District != nil {
		c.District = *update.District
	}
	copied := *c
	return &copied, nil
}

func (s *clientStoreStub) UpdateClientStatus(ctx context.Context, id string, status model.EnquiryStatus, feedback string) (*model.Client, error) {
	c, ok := s.clients[id]
	if !ok {
		return nil, repository.ErrClientNotFound
	}
	c.Status = status
	c.Feedback = feedback
	copied := *c
	return &copied, nil
}

func (s *clientStoreStub) DeleteClient(ctx context.Context, id string) error {
	delete(s.clients, id)
	return nil
}

type userStoreStub struct {
	teamEmails []string
	tokenHash  string
	user       *model.User
	resetErr   error
}

func (s *userStoreStub) FindUserByEmail(ctx context.Context, email string) (*model.User, error) {
	if s.user == nil || s.user.Email != email {
		return nil, repository.ErrUserNotFound
	}
	return s.user, nil
}

func (s *userStoreStub) SetResetToken(ctx context.Context, email, tokenHash string, expiry time.Time) error {
	s.tokenHash = tokenHash
	return nil
}

func (s *userStoreStub) ResetPassword(ctx context.Context, tokenHash, passwordHash string) error {
	return s.resetErr
}

func (s *userStoreStub) ListTeamEmails(ctx context.Context) ([]string, error) {
	return s.teamEmails, nil
}

type mailerStub struct {
	resets []string
	mails  []string
}

func (m *mailerStub) SendPasswordReset(to, frontendBaseURL, token string) error {
	m.resets = append(m.resets, to)
	return nil
}

func (m *mailerStub) SendTeamNotification(recipients []string, subject, body string) error {
	m.mails = append(m.mails, subject)
	return nil
}

func newTestClientRouter() (chi.Router, *clientStoreStub, *mailerStub) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := newClientStoreStub()
	users := &userStoreStub{teamEmails: []string{"tmis.priya@example.com"}}
	mailer := &mailerStub{}
	svc := service.NewClientService(store, users, &senderStub{}, mailer, logger)
	h := NewClientHandler(svc, logger)

	r := chi.NewRouter()
	r.Get("/api/clients", h.List)
	r.Post("/api/clients", h.Create)
	r.Get("/api/clients/{id}", h.Get)
	r.Put("/api/clients/{id}", h.Update)
	r.Patch("/api/clients/{id}/status", h.UpdateStatus)
	r.Delete("/api/clients/{id}", h.Delete)
	return r, store, mailer
}

func TestClientCreate(t *testing.T) {
	r, store, _ := newTestClientRouter()

	body := `{"user_name": "Ravi", "mobile_number": "919876543210", "district": "Chennai"}`
	req := httptest.NewRequest(http.MethodPost, "/api/clients", strings.NewReader(body))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if len(store.clients) != 1 {
		t.Errorf("expected 1 client, got %d", len(store.clients))
	}
}

func TestClientCreate_MissingMobile(t *testing.T) {
	r, _, _ := newTestClientRouter()

	req := httptest.NewRequest(http.MethodPost, "/api/clients", strings.NewReader(`{"user_name": "Ravi"}`))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestClientUpdateStatus(t *testing.T) {
	r, store, mailer := newTestClientRouter()

	client := &model.Client{UserName: "Ravi", MobileNumber: "919876543210", Status: model.EnquiryStatusPending}
	if err := store.CreateClient(context.Background(), client); err != nil {
		t.Fatalf("seed: %v", err)
	}

	body := `{"status": "interested", "feedback": "good turnover"}`
	req := httptest.NewRequest(http.MethodPatch, "/api/clients/"+client.ID.Hex()+"/status", strings.NewReader(body))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var response dto.ClientResponse
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if response.Status != "interested" {
		t.Errorf("status not applied: %q", response.Status)
	}
	if len(mailer.mails) != 1 {
		t.Errorf("expected one team email, got %d", len(mailer.mails))
	}
}

func TestClientUpdateStatus_InvalidValue(t *testing.T) {
	r, store, _ := newTestClientRouter()

	client := &model.Client{UserName: "Ravi", MobileNumber: "919876543210"}
	if err := store.CreateClient(context.Background(), client); err != nil {
		t.Fatalf("seed: %v", err)
	}

	body := `{"status": "archived"}`
	req := httptest.NewRequest(http.MethodPatch, "/api/clients/"+client.ID.Hex()+"/status", strings.NewReader(body))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	var response dto.ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if response.Code != "INVALID_STATUS" {
		t.Errorf("unexpected error code %q", response.Code)
	}
}

func TestClientGet_NotFound(t *testing.T) {
	r, _, _ := newTestClientRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/clients/"+primitive.NewObjectID().Hex(), nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
