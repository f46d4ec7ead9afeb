package models

import "time"

type EventType string

const (
	EventTypeSnapshotRecorded  EventType = "snapshot_recorded"
	EventTypeAlertRaised       EventType = "alert_raised"
	EventTypeSamplingFailed    EventType = "sampling_failed"
	EventTypePersistenceFailed EventType = "persistence_failed"
)

// Event represents an internal system event
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Severity  Severity    `json:"severity"`
	Host      string      `json:"host,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Message   string      `json:"message"`
	Data      interface{} `json:"data,omitempty"`
	TraceID   string      `json:"trace_id,omitempty"`
}

func NewEvent(eventType EventType, host, message string) *Event {
	return &Event{
		ID:        NewUUID(),
		Type:      eventType,
		Severity:  SeverityInfo,
		Host:      host,
		Timestamp: time.Now(),
		Message:   message,
	}
}

func (e *Event) WithSeverity(severity Severity) *Event {
	e.Severity = severity
	return e
}

func (e *Event) WithData(data interface{}) *Event {
	e.Data = data
	return e
}

func (e *Event) WithTraceID(traceID string) *Event {
	e.TraceID = traceID
	return e
}
