// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Message send statuses recorded by the gateway instrumentation.
const (
	SendStatusSuccess = "success"
	SendStatusFailed  = "failed"
	SendStatusQuota   = "quota"
)

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus, StatsD, etc.
type Recorder interface {
	// Webhook pipeline metrics
	IncWebhookReceived()
	IncWebhookIgnored()
	ObserveWebhookDuration(duration time.Duration)

	// Enquiry metrics
	IncEnquiryCreated(source string) // model.Source* values
	IncEnquiryDuplicate()

	// Outbound message metrics
	IncMessageSent(status string) // SendStatus* values
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
