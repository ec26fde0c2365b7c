package storage

import "time"

// Outcome of one export run.
type Outcome string

const (
	OutcomePersisted Outcome = "persisted"
	OutcomeTransient Outcome = "transient"
	OutcomeFailed    Outcome = "failed"
)

// Event is one export attempt. Events are appended in chronological order.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Trigger   string    `json:"trigger"`
	Actor     string    `json:"actor,omitempty"`
	Outcome   Outcome   `json:"outcome"`
	Title     string    `json:"title"`
	Records   int       `json:"records"`
	URL       string    `json:"url,omitempty"`
	Warning   string    `json:"warning,omitempty"`
	Error     string    `json:"error,omitempty"`
}

// Recorder persists export events. Implementations must be safe for concurrent use.
type Recorder interface {
	AppendExport(event Event) error
	LoadExports() ([]Event, error)
}
