package kafka

import (
	"encoding/json"
	"time"
)

const (
	EventReservationCreated   = "reservation.created"
	EventReservationCancelled = "reservation.cancelled"
)

// Message is the transport-level unit handed to the producer. Key selects
// the partition, so events for one table stay ordered.
type Message struct {
	Key       string
	Value     []byte
	Headers   map[string]string
	Timestamp time.Time
}

// ReservationEvent is the payload published for every accepted state change
// of a reservation. Consumers are external; the write path never depends on
// a publish succeeding.
type ReservationEvent struct {
	Type          string    `json:"type"`
	ReservationID string    `json:"reservation_id"`
	TableID       string    `json:"table_id"`
	StartAt       time.Time `json:"start_at"`
	EndAt         time.Time `json:"end_at"`
	RequesterID   string    `json:"requester_id"`
	OccurredAt    time.Time `json:"occurred_at"`
}

func NewReservationMessage(event ReservationEvent) (Message, error) {
	value, err := json.Marshal(event)
	if err != nil {
		return Message{}, err
	}

	return Message{
		Key:       event.TableID,
		Value:     value,
		Headers:   map[string]string{"event_type": event.Type},
		Timestamp: event.OccurredAt,
	}, nil
}
