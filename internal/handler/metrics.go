package handler

import (
	"fmt"
	"net/http"

	"github.com/businessguru/crm/internal/metrics"
)

// MetricsHandler exposes in-memory metrics.
type MetricsHandler struct {
	snapshotter metrics.Snapshotter
}

// NewMetricsHandler creates a new MetricsHandler.
func NewMetricsHandler(snapshotter metrics.Snapshotter) *MetricsHandler {
	return &MetricsHandler{snapshotter: snapshotter}
}

// Metrics returns metrics in Prometheus exposition format.
func (h *MetricsHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	if h.snapshotter == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	snap := h.snapshotter.Snapshot()

	w.Header().Set("Content-Type", "text/plain; version=0.0.4")

	writeMetric(w, "crm_webhooks_received_total %d\n", snap.WebhooksReceived)
	writeMetric(w, "crm_webhooks_ignored_total %d\n", snap.WebhooksIgnored)
	writeMetric(w, "crm_webhook_duration_seconds_count %d\n", snap.WebhookDurationCount)
	writeMetric(w, "crm_webhook_duration_seconds_sum %.6f\n", float64(snap.WebhookDurationTotalNs)/1e9)

	writeMetric(w, "crm_enquiries_created_total{source=\"whatsapp_webhook\"} %d\n", snap.EnquiriesFromWebhook)
	writeMetric(w, "crm_enquiries_created_total{source=\"public_form\"} %d\n", snap.EnquiriesFromPublicForm)
	writeMetric(w, "crm_enquiries_created_total{source=\"manual\"} %d\n", snap.EnquiriesFromAPI)
	writeMetric(w, "crm_enquiries_duplicate_total %d\n", snap.EnquiriesDuplicate)

	writeMetric(w, "crm_messages_sent_total{status=\"success\"} %d\n", snap.MessagesSent)
	writeMetric(w, "crm_messages_sent_total{status=\"failed\"} %d\n", snap.MessagesFailed)
	writeMetric(w, "crm_messages_sent_total{status=\"quota\"} %d\n", snap.MessagesQuotaDrops)
}

func writeMetric(w http.ResponseWriter, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
