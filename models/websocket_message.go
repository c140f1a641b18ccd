package models

import (
	"time"

	"github.com/google/uuid"
)

type WebSocketMessageType string

const (
	EventMessage        WebSocketMessageType = "event"
	SubscriptionMessage WebSocketMessageType = "subscription"
	ErrorMessage        WebSocketMessageType = "error"
)

// WebSocketMessage is the envelope pushed to websocket clients.
type WebSocketMessage struct {
	ID         string                 `json:"id"`
	Type       WebSocketMessageType   `json:"type"`
	Event      string                 `json:"event,omitempty"`
	Timestamp  time.Time              `json:"timestamp"`
	Payload    map[string]interface{} `json:"payload"`
	ResourceID string                 `json:"resource_id,omitempty"`
}

func NewWebSocketMessage(msgType WebSocketMessageType, event string, payload map[string]interface{}) *WebSocketMessage {
	return &WebSocketMessage{
		ID:        uuid.New().String(),
		Type:      msgType,
		Event:     event,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}

// WithResource tags the message with the task it concerns.
func (m *WebSocketMessage) WithResource(resourceID string) *WebSocketMessage {
	m.ResourceID = resourceID
	return m
}
