package notifier

import (
	"encoding/json"
	"fmt"
)

// Message is the wire envelope shared by every sink
type Message struct {
	Topic   string          `json:"topic"`
	Payload json.RawMessage `json:"payload"`
}

func encode(topic string, payload interface{}) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", topic, err)
	}
	return json.Marshal(Message{Topic: topic, Payload: raw})
}
