// Package queue defines message payloads exchanged over the message
// broker.
package queue

// ReservationSubmittedEvent is published when a reservation is created
// or updated through the wizard.  It carries enough for downstream
// consumers (notifications, analytics) to act without querying the
// primary database.
type ReservationSubmittedEvent struct {
	ReservationID   uint64   `json:"reservation_id"`
	UserID          uint64   `json:"user_id"`
	WorkID          uint64   `json:"work_id"`
	ReservationDate string   `json:"reservation_date"`
	Postcode        string   `json:"postcode"`
	ItemKeys        []string `json:"item_keys"`
	TotalPrice      float64  `json:"total_price"`
	Status          string   `json:"status"`
	Updated         bool     `json:"updated"` // false on first create, true on continuation
	SubmittedAt     string   `json:"submitted_at"`
}
