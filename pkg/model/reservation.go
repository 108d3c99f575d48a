package model

import (
	"time"
)

const (
	StatusActive    = "active"
	StatusCancelled = "cancelled"
)

// Reservation is a claim on one table for a half-open interval
// [start_at, end_at). Both instants are stored UTC-normalized; two active
// reservations on the same table never intersect.
type Reservation struct {
	ID             string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	TableID        string    `json:"table_id" bson:"table_id" validate:"required,mongodb"`
	StartAt        time.Time `json:"start_at" bson:"start_at" validate:"required"`
	EndAt          time.Time `json:"end_at" bson:"end_at" validate:"required,gtfield=StartAt"`
	CustomerName   string    `json:"customer_name" bson:"customer_name" validate:"required,min=2,max=100"`
	RequesterID    string    `json:"requester_id" bson:"requester_id" validate:"required,min=1,max=100"`
	Status         string    `json:"status" bson:"status" validate:"required,oneof=active cancelled"`
	IdempotencyKey string    `json:"idempotency_key,omitempty" bson:"idempotency_key,omitempty" validate:"omitempty,min=8,max=200"`
	CreatedAt      time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
}

// Active reports whether the reservation still blocks its interval.
// A cancelled reservation never blocks a new one.
func (r *Reservation) Active() bool {
	return r.Status == StatusActive
}
