package metrics

import (
	"sync/atomic"
	"time"

	"github.com/businessguru/crm/internal/model"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	WebhooksReceived       uint64
	WebhooksIgnored        uint64
	WebhookDurationCount   uint64
	WebhookDurationTotalNs int64

	EnquiriesFromWebhook    uint64
	EnquiriesFromPublicForm uint64
	EnquiriesFromAPI        uint64
	EnquiriesDuplicate      uint64

	MessagesSent       uint64
	MessagesFailed     uint64
	MessagesQuotaDrops uint64
}

// InMemoryRecorder stores metrics in memory for tests and the
// /api/metrics endpoint.
type InMemoryRecorder struct {
	webhooksReceived       uint64
	webhooksIgnored        uint64
	webhookDurationCount   uint64
	webhookDurationTotalNs int64

	enquiriesFromWebhook    uint64
	enquiriesFromPublicForm uint64
	enquiriesFromAPI        uint64
	enquiriesDuplicate      uint64

	messagesSent       uint64
	messagesFailed     uint64
	messagesQuotaDrops uint64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	return Snapshot{
		WebhooksReceived:       atomic.LoadUint64(&m.webhooksReceived),
		WebhooksIgnored:        atomic.LoadUint64(&m.webhooksIgnored),
		WebhookDurationCount:   atomic.LoadUint64(&m.webhookDurationCount),
		WebhookDurationTotalNs: atomic.LoadInt64(&m.webhookDurationTotalNs),

		EnquiriesFromWebhook:    atomic.LoadUint64(&m.enquiriesFromWebhook),
		EnquiriesFromPublicForm: atomic.LoadUint64(&m.enquiriesFromPublicForm),
		EnquiriesFromAPI:        atomic.LoadUint64(&m.enquiriesFromAPI),
		EnquiriesDuplicate:      atomic.LoadUint64(&m.enquiriesDuplicate),

		MessagesSent:       atomic.LoadUint64(&m.messagesSent),
		MessagesFailed:     atomic.LoadUint64(&m.messagesFailed),
		MessagesQuotaDrops: atomic.LoadUint64(&m.messagesQuotaDrops),
	}
}

// IncWebhookReceived increments the received-webhook counter.
func (m *InMemoryRecorder) IncWebhookReceived() {
	atomic.AddUint64(&m.webhooksReceived, 1)
}

// IncWebhookIgnored increments the ignored-webhook counter.
func (m *InMemoryRecorder) IncWebhookIgnored() {
	atomic.AddUint64(&m.webhooksIgnored, 1)
}

// ObserveWebhookDuration records webhook processing time.
func (m *InMemoryRecorder) ObserveWebhookDuration(duration time.Duration) {
	atomic.AddUint64(&m.webhookDurationCount, 1)
	atomic.AddInt64(&m.webhookDurationTotalNs, duration.Nanoseconds())
}

// IncEnquiryCreated increments the per-source enquiry counter.
func (m *InMemoryRecorder) IncEnquiryCreated(source string) {
	switch source {
	case model.SourceWhatsAppWebhook:
		atomic.AddUint64(&m.enquiriesFromWebhook, 1)
	case model.SourcePublicForm:
		atomic.AddUint64(&m.enquiriesFromPublicForm, 1)
	default:
		atomic.AddUint64(&m.enquiriesFromAPI, 1)
	}
}

// IncEnquiryDuplicate increments the duplicate-enquiry counter.
func (m *InMemoryRecorder) IncEnquiryDuplicate() {
	atomic.AddUint64(&m.enquiriesDuplicate, 1)
}

// IncMessageSent increments the per-status outbound message counter.
func (m *InMemoryRecorder) IncMessageSent(status string) {
	switch status {
	case SendStatusSuccess:
		atomic.AddUint64(&m.messagesSent, 1)
	case SendStatusQuota:
		atomic.AddUint64(&m.messagesQuotaDrops, 1)
	default:
		atomic.AddUint64(&m.messagesFailed, 1)
	}
}
