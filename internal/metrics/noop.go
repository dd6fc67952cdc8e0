package metrics

import "time"

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

// IncWebhookReceived is a no-op.
func (n *NoopRecorder) IncWebhookReceived() {}

// IncWebhookIgnored is a no-op.
func (n *NoopRecorder) IncWebhookIgnored() {}

// ObserveWebhookDuration is a no-op.
func (n *NoopRecorder) ObserveWebhookDuration(duration time.Duration) {}

// IncEnquiryCreated is a no-op.
func (n *NoopRecorder) IncEnquiryCreated(source string) {}

// IncEnquiryDuplicate is a no-op.
func (n *NoopRecorder) IncEnquiryDuplicate() {}

// IncMessageSent is a no-op.
func (n *NoopRecorder) IncMessageSent(status string) {}
