package amqp

import (
	"errors"
	"testing"
)

func TestChangeMessageFromJSON(t *testing.T) {
	msg, err := ChangeMessageFromJSON([]byte(`{"key":"@gofinances:transactions","timestamp":"2021-01-10T12:00:00Z"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if msg.Key != "@gofinances:transactions" || msg.Timestamp.Day() != 10 {
		t.Fatalf("unexpected message: %+v", msg)
	}

	for _, in := range []string{`{`, `{"timestamp":"2021-01-10T12:00:00Z"}`, `[]`} {
		if _, err := ChangeMessageFromJSON([]byte(in)); !errors.Is(err, ErrInvalidMessage) {
			t.Errorf("ChangeMessageFromJSON(%s) error = %v, want ErrInvalidMessage", in, err)
		}
	}
}

func TestNewChangeMessage(t *testing.T) {
	m := NewChangeMessage("k")
	if m.Key != "k" || m.Timestamp.IsZero() {
		t.Fatalf("unexpected message: %+v", m)
	}
	b, err := m.ToJSON()
	if err != nil {
		t.Fatal(err)
	}
	back, err := ChangeMessageFromJSON(b)
	if err != nil || back.Key != "k" {
		t.Fatalf("decode = %+v, %v", back, err)
	}
}
