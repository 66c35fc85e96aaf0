package amqp

import (
	"encoding/json"
	"errors"
	"time"
)

var ErrInvalidMessage = errors.New("invalid change message")

// ChangeMessage announces that the collection stored under Key was replaced.
// It carries no data; consumers reload from the store.
type ChangeMessage struct {
	Key       string    `json:"key"`
	Timestamp time.Time `json:"timestamp"`
}

func NewChangeMessage(key string) *ChangeMessage {
	return &ChangeMessage{
		Key:       key,
		Timestamp: time.Now().UTC(),
	}
}

func (m *ChangeMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ChangeMessageFromJSON decodes a message; a message without a key is invalid.
func ChangeMessageFromJSON(data []byte) (*ChangeMessage, error) {
	var msg ChangeMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, errors.Join(ErrInvalidMessage, err)
	}
	if msg.Key == "" {
		return nil, ErrInvalidMessage
	}
	return &msg, nil
}
