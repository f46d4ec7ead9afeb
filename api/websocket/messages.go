package websocket

import (
	"encoding/json"
	"time"

	"github.com/OldStager01/hostmon/pkg/models"
)

type MessageType string

const (
	MessageTypeSnapshot MessageType = "snapshot"
	MessageTypeAlert    MessageType = "alert"
	MessageTypeError    MessageType = "error"

	messageTypeSubscription MessageType = "subscription_update"
)

type OutgoingMessage struct {
	Type      MessageType `json:"type"`
	Host      string      `json:"host"`
	Timestamp time.Time   `json:"timestamp"`
	Severity  string      `json:"severity,omitempty"`
	Message   string      `json:"message,omitempty"`
	Data      interface{} `json:"data,omitempty"`
}

func NewMessage(msgType MessageType, host string, data interface{}) *OutgoingMessage {
	return &OutgoingMessage{
		Type:      msgType,
		Host:      host,
		Timestamp: time.Now(),
		Data:      data,
	}
}

func (m *OutgoingMessage) JSON() []byte {
	data, _ := json.Marshal(m)
	return data
}

// FromEvent maps a bus event to the message clients see. Events with no
// client-facing type return nil.
func FromEvent(event *models.Event) *OutgoingMessage {
	msgType := mapEventType(event.Type)
	if msgType == "" {
		return nil
	}

	return &OutgoingMessage{
		Type:      msgType,
		Host:      event.Host,
		Timestamp: event.Timestamp,
		Severity:  string(event.Severity),
		Message:   event.Message,
		Data:      event.Data,
	}
}

func mapEventType(eventType models.EventType) MessageType {
	switch eventType {
	case models.EventTypeSnapshotRecorded:
		return MessageTypeSnapshot
	case models.EventTypeAlertRaised:
		return MessageTypeAlert
	case models.EventTypeSamplingFailed, models.EventTypePersistenceFailed:
		return MessageTypeError
	default:
		return ""
	}
}

type IncomingMessage struct {
	Type   string        `json:"type"`
	Topics []MessageType `json:"topics,omitempty"`
}
