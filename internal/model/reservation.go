package model

import "time"

// Reservation statuses.  A reservation starts PENDING and is moved to
// CONFIRMED or CANCELLED manually through the admin surface; no
// automated transition exists.
const (
	ReservationStatusPending   = "PENDING"
	ReservationStatusConfirmed = "CONFIRMED"
	ReservationStatusCancelled = "CANCELLED"
)

// LineItem is the persisted {key, quantity, priceAtBooking} triple
// recorded against a reservation.  PriceAtBooking is captured at
// submission time and is never re-derived from the live catalog
// afterwards; later catalog price changes must not move historical
// totals.
type LineItem struct {
	Key            string  `json:"key"`
	Quantity       int     `json:"quantity"`
	PriceAtBooking float64 `json:"priceAtBooking"`
}

// ReservationExtra is the nested extras blob stored alongside the main
// item lists: the distance-tiered delivery fee and any Step 3 add-ons.
// It is persisted as a single JSON column, not flattened into
// top-level columns.
type ReservationExtra struct {
	DeliveryFee float64    `json:"deliveryFee"`
	AddOns      []LineItem `json:"addOns"`
}

// Reservation is the persisted booking record.  It is created once per
// successful wizard submission and mutated only through the update path
// while its status is not terminal.  Items, OptionalItems and Extra are
// stored as JSON columns; TotalPrice is computed and stored at write
// time rather than derived on read.
//
// Fields:
//  ID              – primary key identifier.
//  WorkID          – originating curated work, or CustomWorkID.
//  UserID          – owning user, nil for guest-era rows.
//  CustomerName/Email/Phone – contact details collected in Step 2.
//  Notes           – free-text message from Step 1.
//  TotalPrice      – locked total: items + optional + add-ons + fee.
//  Items           – required/base line items.
//  OptionalItems   – optional-category line items.
//  ReservationDate – event date, nil until chosen.
//  Postcode        – delivery postcode (4 digits).
//  Extra           – delivery fee and add-ons.
//  Status          – PENDING, CONFIRMED or CANCELLED.
//  IdempotencyKey  – per-session dedup token for the create path.
type Reservation struct {
	ID              uint64           // reservations.id
	WorkID          uint64           // reservations.work_id
	UserID          *uint64          // reservations.user_id (nullable)
	CustomerName    *string          // reservations.customer_name (nullable)
	CustomerEmail   *string          // reservations.customer_email (nullable)
	CustomerPhone   *string          // reservations.customer_phone (nullable)
	Notes           *string          // reservations.notes (nullable)
	TotalPrice      float64          // reservations.total_price
	Items           []LineItem       // reservations.items (JSON)
	OptionalItems   []LineItem       // reservations.optional_items (JSON)
	ReservationDate *time.Time       // reservations.reservation_date (nullable)
	Postcode        *string          // reservations.postcode (nullable)
	Extra           ReservationExtra // reservations.extra (JSON)
	Status          string           // reservations.status
	IdempotencyKey  *string          // reservations.idempotency_key (nullable, unique)
	CreatedAt       time.Time        // reservations.created_at
	UpdatedAt       time.Time        // reservations.updated_at
}
