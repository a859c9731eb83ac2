package model

import "time"

// Work is a curated decoration package: a themed bundle of catalog
// items offered as a starting point for a reservation.  A work carries
// a required item list and an optional item list; the optional lines
// are suggestions the customer may drop.
//
// WorkID 0 is reserved as the sentinel for custom packages assembled
// from scratch in the reservation wizard.
type Work struct {
	ID            uint64     // works.id
	Title         string     // works.title
	ImageURL      string     // works.image_url
	Notes         *string    // works.notes (nullable)
	Categories    []string   // category names via work_categories
	Items         []WorkLine // required lines via work_items
	OptionalItems []WorkLine // optional lines via work_optional_items
	CreatedAt     time.Time  // works.created_at
	UpdatedAt     time.Time  // works.updated_at
}

// WorkLine is one item line inside a work definition.  Unlike
// reservation line items, work lines always reflect the live catalog
// price; nothing is locked until a reservation is submitted.
type WorkLine struct {
	Key      string  `json:"key"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

// CustomWorkID is the sentinel work id recorded on reservations that
// were assembled in the wizard rather than started from a curated work.
const CustomWorkID uint64 = 0
