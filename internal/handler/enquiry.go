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

// EnquiryHandler handles HTTP requests for enquiry operations.
type EnquiryHandler struct {
	svc    *service.EnquiryService
	logger *slog.Logger
}

// NewEnquiryHandler creates a new EnquiryHandler.
func NewEnquiryHandler(svc *service.EnquiryService, logger *slog.Logger) *EnquiryHandler {
	return &EnquiryHandler{
		svc:    svc,
		logger: logger,
	}
}

// Create handles POST /api/enquiries.
func (h *EnquiryHandler) Create(w http.ResponseWriter, r *http.Request) {
	h.create(w, r, model.SourceManual, false)
}

// CreatePublic handles POST /api/enquiries/public, the website enquiry
// form. The welcome WhatsApp message goes out immediately; a failed send
// is reported in the response but the enquiry is kept.
func (h *EnquiryHandler) CreatePublic(w http.ResponseWriter, r *http.Request) {
	h.create(w, r, model.SourcePublicForm, true)
}

func (h *EnquiryHandler) create(w http.ResponseWriter, r *http.Request, source string, sendWelcome bool) {
	var req dto.CreateEnquiryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	input := service.CreateEnquiryInput{
		WatiName:              req.WatiName,
		UserName:              req.UserName,
		MobileNumber:          req.MobileNumber,
		SecondaryMobileNumber: req.SecondaryMobileNumber,
		GST:                   req.GST,
		GSTStatus:             req.GSTStatus,
		BusinessType:          req.BusinessType,
		BusinessNature:        req.BusinessNature,
		Staff:                 req.Staff,
		Comments:              req.Comments,
		AdditionalComments:    req.AdditionalComments,
		Source:                source,
	}

	result, err := h.svc.CreateEnquiry(r.Context(), input, sendWelcome)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("enquiry_created",
		"enquiry_id", result.Enquiry.ID.Hex(),
		"source", source,
	)

	writeJSON(w, http.StatusCreated, dto.EnquiryWriteResponse{
		Enquiry:  dto.ToEnquiryResponse(result.Enquiry),
		WhatsApp: result.SendOutcome,
	})
}

// Get handles GET /api/enquiries/{id}.
func (h *EnquiryHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "MISSING_ID", "Enquiry ID is required")
		return
	}

	enquiry, err := h.svc.GetEnquiry(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToEnquiryResponse(enquiry))
}

// List handles GET /api/enquiries.
func (h *EnquiryHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	filter := repository.EnquiryFilter{
		Staff:  query.Get("staff"),
		Source: query.Get("source"),
	}
	if l := query.Get("limit"); l != "" {
		if parsed, err := strconv.ParseInt(l, 10, 64); err == nil && parsed > 0 && parsed <= 500 {
			filter.Limit = parsed
		}
	}

	enquiries, err := h.svc.ListEnquiries(r.Context(), filter)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToEnquiryListResponse(enquiries))
}

// Stats handles GET /api/enquiries/stats.
func (h *EnquiryHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Stats(r.Context())
	if err != nil {
		h.handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// Update handles PUT /api/enquiries/{id}.
func (h *EnquiryHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "MISSING_ID", "Enquiry ID is required")
		return
	}

	var req dto.UpdateEnquiryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	update := repository.EnquiryUpdate{
		WatiName:              req.WatiName,
		MobileNumber:          req.MobileNumber,
		SecondaryMobileNumber: req.SecondaryMobileNumber,
		GST:                   req.GST,
		GSTStatus:             req.GSTStatus,
		BusinessType:          req.BusinessType,
		BusinessNature:        req.BusinessNature,
		Staff:                 req.Staff,
		Comments:              req.Comments,
		AdditionalComments:    req.AdditionalComments,
	}

	result, err := h.svc.UpdateEnquiry(r.Context(), id, update)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("enquiry_updated",
		"enquiry_id", id,
		"comment_message", result.CommentOutcome,
		"staff_message", result.StaffOutcome,
	)

	writeJSON(w, http.StatusOK, dto.EnquiryWriteResponse{
		Enquiry:      dto.ToEnquiryResponse(result.Enquiry),
		WhatsApp:     result.CommentOutcome,
		StaffMessage: result.StaffOutcome,
	})
}

// Delete handles DELETE /api/enquiries/{id}.
func (h *EnquiryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "MISSING_ID", "Enquiry ID is required")
		return
	}

	if err := h.svc.DeleteEnquiry(r.Context(), id); err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("enquiry_deleted", "enquiry_id", id)

	w.WriteHeader(http.StatusNoContent)
}

// handleServiceError maps service errors to HTTP responses.
func (h *EnquiryHandler) handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, repository.ErrEnquiryNotFound):
		writeError(w, http.StatusNotFound, "ENQUIRY_NOT_FOUND", "Enquiry not found")
	case errors.Is(err, repository.ErrInvalidID):
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid enquiry ID")
	case errors.Is(err, repository.ErrDuplicateEnquiry):
		writeError(w, http.StatusConflict, "DUPLICATE_ENQUIRY", "Enquiry already exists for this message")
	case errors.Is(err, service.ErrMissingName):
		writeError(w, http.StatusBadRequest, "MISSING_NAME", "Name is required")
	case errors.Is(err, service.ErrMissingMobileNumber):
		writeError(w, http.StatusBadRequest, "MISSING_MOBILE_NUMBER", "Mobile number is required")
	default:
		h.logger.Error("internal_error", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
	}
}
