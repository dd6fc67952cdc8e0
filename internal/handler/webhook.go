package handler

import (
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/businessguru/crm/internal/webhook"
)

// WebhookHandler receives WhatsApp gateway callbacks.
type WebhookHandler struct {
	processor   *webhook.Processor
	monitor     *webhook.Monitor
	maxBodySize int64
	logger      *slog.Logger
}

// NewWebhookHandler creates a new WebhookHandler.
func NewWebhookHandler(processor *webhook.Processor, monitor *webhook.Monitor, maxBodySize int64, logger *slog.Logger) *WebhookHandler {
	return &WebhookHandler{
		processor:   processor,
		monitor:     monitor,
		maxBodySize: maxBodySize,
		logger:      logger,
	}
}

// Receive handles POST /api/enquiries/whatsapp/webhook.
// The gateway redelivers on any non-2xx status, so this endpoint answers
// 200 for everything, even a body it could not read.
func (h *WebhookHandler) Receive(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, h.maxBodySize))
	if err != nil {
		h.logger.Warn("failed to read webhook body", "error", err)
		writeJSON(w, http.StatusOK, webhook.Result{Success: true, Message: "Could not read request body"})
		return
	}

	result := h.processor.Process(r.Context(), body)
	writeJSON(w, http.StatusOK, result)
}

// Probe handles GET /api/enquiries/whatsapp/webhook. Gateways and uptime
// checks hit the URL with GET to confirm it is reachable.
func (h *WebhookHandler) Probe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "webhook_endpoint_active",
		"message": "WhatsApp webhook endpoint is reachable",
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

// statusResponse is the monitor view returned by the status endpoint.
type statusResponse struct {
	Status string          `json:"status"`
	Total  int             `json:"total_events"`
	Events []webhook.Event `json:"events"`
}

// Status handles GET /api/webhook-status. It returns the last 10
// recorded pipeline events.
func (h *WebhookHandler) Status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, statusResponse{
		Status: "ok",
		Total:  h.monitor.Len(),
		Events: h.monitor.Events(10),
	})
}

// ClearStatus handles POST /api/webhook-status/clear.
func (h *WebhookHandler) ClearStatus(w http.ResponseWriter, r *http.Request) {
	h.monitor.Clear()
	h.logger.Info("webhook monitor cleared")
	writeJSON(w, http.StatusOK, map[string]string{"message": "Webhook events cleared"})
}
