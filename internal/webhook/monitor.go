package webhook

import (
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// MonitorCapacity bounds the in-memory event history.
const MonitorCapacity = 50

// Event statuses.
const (
	StatusSuccess = "success"
	StatusWarning = "warning"
	StatusError   = "error"
	StatusInfo    = "info"
)

// Event is one entry in the webhook activity feed.
type Event struct {
	ID        string            `json:"id"`
	Type      string            `json:"type"`
	Status    string            `json:"status"`
	Message   string            `json:"message"`
	Details   map[string]string `json:"details,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
}

// Monitor keeps a bounded, newest-first history of webhook events for the
// dashboard. It is safe for concurrent use.
type Monitor struct {
	mu     sync.Mutex
	events []Event
}

// NewMonitor creates an empty Monitor.
func NewMonitor() *Monitor {
	return &Monitor{events: make([]Event, 0, MonitorCapacity)}
}

// Record adds an event to the front of the history, evicting the oldest
// entry once the capacity is reached.
func (m *Monitor) Record(eventType, status, message string, details map[string]string) Event {
	event := Event{
		ID:        ulid.Make().String(),
		Type:      eventType,
		Status:    status,
		Message:   message,
		Details:   details,
		Timestamp: time.Now().UTC(),
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.events = append([]Event{event}, m.events...)
	if len(m.events) > MonitorCapacity {
		m.events = m.events[:MonitorCapacity]
	}
	return event
}

// Events returns up to limit events, newest first. limit <= 0 returns
// everything retained.
func (m *Monitor) Events(limit int) []Event {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := len(m.events)
	if limit > 0 && limit < n {
		n = limit
	}

	out := make([]Event, n)
	copy(out, m.events[:n])
	return out
}

// Len returns the number of retained events.
func (m *Monitor) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.events)
}

// Clear drops the entire history.
func (m *Monitor) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = m.events[:0]
}
