package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/businessguru/crm/internal/handler/dto"
	"github.com/businessguru/crm/internal/model"
	"github.com/businessguru/crm/internal/repository"
	"github.com/businessguru/crm/internal/service"
)

// ClientHandler handles HTTP requests for client operations.
type ClientHandler struct {
	svc    *service.ClientService
	logger *slog.Logger
}

// NewClientHandler creates a new ClientHandler.
func NewClientHandler(svc *service.ClientService, logger *slog.Logger) *ClientHandler {
	return &ClientHandler{
		svc:    svc,
		logger: logger,
	}
}

// Create handles POST /api/clients.
func (h *ClientHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateClientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	client := req.ToClientModel()
	if err := h.svc.CreateClient(r.Context(), client); err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("client_created", "client_id", client.ID.Hex())

	writeJSON(w, http.StatusCreated, dto.ToClientResponse(client))
}

// Get handles GET /api/clients/{id}.
func (h *ClientHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "MISSING_ID", "Client ID is required")
		return
	}

	client, err := h.svc.GetClient(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToClientResponse(client))
}

// List handles GET /api/clients.
func (h *ClientHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	filter := repository.ClientFilter{
		Status: model.EnquiryStatus(query.Get("status")),
		Staff:  query.Get("staff"),
	}
	if l := query.Get("limit"); l != "" {
		if parsed, err := strconv.ParseInt(l, 10, 64); err == nil && parsed > 0 && parsed <= 500 {
			filter.Limit = parsed
		}
	}

	clients, err := h.svc.ListClients(r.Context(), filter)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToClientListResponse(clients))
}

// Update handles PUT /api/clients/{id}.
func (h *ClientHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "MISSING_ID", "Client ID is required")
		return
	}

	var req dto.UpdateClientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	update := repository.ClientUpdate{
		UserName:                req.UserName,
		MobileNumber:            req.MobileNumber,
		Email:                   req.Email,
		BusinessName:            req.BusinessName,
		District:                req.District,
		BusinessPAN:             req.BusinessPAN,
		IECode:                  req.IECode,
		NewCurrentAccount:       req.NewCurrentAccount,
		Website:                 req.Website,
		Gateway:                 req.Gateway,
		TransactionDoneByClient: req.TransactionDoneByClient,
		RequiredLoanAmount:      req.RequiredLoanAmount,
		BankAccount:             req.BankAccount,
		StaffID:                 req.StaffID,
		BankType:                req.BankType,
		GSTStatus:               req.GSTStatus,
		BusinessNature:          req.BusinessNature,
		Feedback:                req.Feedback,
	}

	client, err := h.svc.UpdateClient(r.Context(), id, update)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("client_updated", "client_id", id)

	writeJSON(w, http.StatusOK, dto.ToClientResponse(client))
}

// UpdateStatus handles PATCH /api/clients/{id}/status.
func (h *ClientHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "MISSING_ID", "Client ID is required")
		return
	}

	var req dto.UpdateClientStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	client, err := h.svc.UpdateStatus(r.Context(), id, model.EnquiryStatus(req.Status), req.Feedback)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("client_status_updated",
		"client_id", id,
		"status", req.Status,
	)

	writeJSON(w, http.StatusOK, dto.ToClientResponse(client))
}

// Delete handles DELETE /api/clients/{id}.
func (h *ClientHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "MISSING_ID", "Client ID is required")
		return
	}

	if err := h.svc.DeleteClient(r.Context(), id); err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("client_deleted", "client_id", id)

	w.WriteHeader(http.StatusNoContent)
}

// handleServiceError maps service errors to HTTP responses.
func (h *ClientHandler) handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, repository.ErrClientNotFound):
		writeError(w, http.StatusNotFound, "CLIENT_NOT_FOUND", "Client not found")
	case errors.Is(err, repository.ErrInvalidID):
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid client ID")
	case errors.Is(err, service.ErrMissingName):
		writeError(w, http.StatusBadRequest, "MISSING_NAME", "Name is required")
	case errors.Is(err, service.ErrMissingMobileNumber):
		writeError(w, http.StatusBadRequest, "MISSING_MOBILE_NUMBER", "Mobile number is required")
	case errors.Is(err, service.ErrInvalidStatus):
		writeError(w, http.StatusBadRequest, "INVALID_STATUS", "Status must be pending, interested, not_interested or hold")
	default:
		h.logger.Error("internal_error", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
	}
}
