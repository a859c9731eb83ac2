package model

import "time"

// Item is a single rentable catalog entry.  The key is the stable
// public identifier used everywhere outside the database: reservation
// line items, work compositions and wizard selections all reference
// items by key, never by numeric id, so renaming an item does not
// orphan historical data.
//
// Fields:
//  ID         – primary key identifier.
//  Key        – unique catalog key (e.g. "roundArch").
//  Name       – display name shown to customers.
//  BasePrice  – current rental price; reservations copy it into
//               priceAtBooking at submission time.
//  Unit       – pricing unit, normally "pcs".
//  ImageURL   – product photo, may be empty.
//  CategoryID – owning item category.
//  CreatedAt  – creation timestamp.
//  UpdatedAt  – last update timestamp.
type Item struct {
	ID         uint64    // items.id
	Key        string    // items.key
	Name       string    // items.name
	BasePrice  float64   // items.base_price
	Unit       string    // items.unit
	ImageURL   string    // items.image_url
	CategoryID uint64    // items.category_id
	CreatedAt  time.Time // items.created_at
	UpdatedAt  time.Time // items.updated_at
}

// ItemCategory groups catalog items for browsing and for the wizard's
// selection slots ("Backdrop", "Decoration", "Theme", ...).  SlotMode
// drives how the wizard renders the category: "single", "multi" or
// "text".  Category order defines the slot order, which in turn fixes
// the order of flattened reservation line items.
type ItemCategory struct {
	ID       uint64 // item_categories.id
	Name     string // item_categories.name
	SlotMode string // item_categories.slot_mode
}

// SelectionItem is an item as presented to the reservation wizard's
// selectable slots.  It is a read-only projection of Item; the price
// is captured here when the catalog is fetched and carried unchanged
// into the line items on submission.
type SelectionItem struct {
	ID       uint64  `json:"id"`
	Key      string  `json:"key"`
	Title    string  `json:"title"`
	Category string  `json:"category"`
	Price    float64 `json:"price"`
	ImageURL string  `json:"image_url,omitempty"`
}
