package model

import "time"

// Slot is a free half-open window [Start, End) a caller may reserve.
type Slot struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// TableAvailability lists the free slots of one table for a single day.
type TableAvailability struct {
	TableID string `json:"table_id"`
	Name    string `json:"name"`
	Seats   int    `json:"seats"`
	Slots   []Slot `json:"slots"`
}
