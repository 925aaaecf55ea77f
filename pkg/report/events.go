package report

// EventType defines the type of event being broadcast.
type EventType string

const (
	EventReportLoaded EventType = "report_loaded"
	EventReportFailed EventType = "report_failed"
)

// Event is published once per Dispatch or FetchAndNotify.
type Event struct {
	Type    EventType `json:"type"`
	Seq     uint64    `json:"seq"`
	Request Request   `json:"request"`
	Report  Report    `json:"report"`
	Err     error     `json:"-"`
	Error   string    `json:"error,omitempty"`
}

// Subscriber is a channel that receives events.
type Subscriber chan Event
