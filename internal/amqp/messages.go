package amqp

import (
	"encoding/json"
	"fmt"
	"time"
)

// Entities and actions carried by record events.
const (
	EntityTask   = "task"
	EntityIncome = "income"

	ActionCreated       = "created"
	ActionUpdated       = "updated"
	ActionStatusChanged = "status_changed"
	ActionDeleted       = "deleted"
)

// RecordEventMessage announces a committed record mutation. Consumers
// fetch whatever else they need from the record store; the message
// carries only identity and period.
type RecordEventMessage struct {
	Entity    string    `json:"entity"`
	Action    string    `json:"action"`
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Month     int       `json:"month"`
	Year      int       `json:"year"`
	Timestamp time.Time `json:"timestamp"`
}

func NewRecordEventMessage(entity, action, id, userID string, month, year int) *RecordEventMessage {
	return &RecordEventMessage{
		Entity:    entity,
		Action:    action,
		ID:        id,
		UserID:    userID,
		Month:     month,
		Year:      year,
		Timestamp: time.Now().UTC(),
	}
}

func (m *RecordEventMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func RecordEventMessageFromJSON(data []byte) (*RecordEventMessage, error) {
	var m RecordEventMessage
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("unmarshal record event: %w", err)
	}
	if m.Entity == "" || m.Action == "" {
		return nil, fmt.Errorf("record event missing entity or action")
	}
	return &m, nil
}
