// Package wizard implements the multi-step reservation wizard: the
// per-step typed payloads, the transition rules between steps and the
// branch between building a new package and continuing an existing
// reservation.  State is ephemeral — it lives in a session store for
// the duration of one booking flow and is discarded on confirmation.
package wizard

import (
	"crypto/rand"
	"encoding/hex"

	"github.com/huuhung7301/hubo-event/internal/model"
)

// Step identifies a wizard step.  Steps advance Package → Schedule →
// AddOns → Review and terminate at Confirmed.
type Step int

const (
	StepPackage   Step = 1 // build the item selection (skipped for existing reservations)
	StepSchedule  Step = 2 // date, postcode, delivery fee, contact details
	StepAddOns    Step = 3 // optional add-ons
	StepReview    Step = 4 // summary and confirm
	StepConfirmed Step = 5 // terminal confirmation display
)

// SlotMode describes how a category slot collects input.
type SlotMode string

const (
	SlotSingle SlotMode = "single" // at most one item; re-selecting toggles off
	SlotMulti  SlotMode = "multi"  // any number of items, toggled by key
	SlotText   SlotMode = "text"   // free-text message, persisted as notes
)

// CategorySlot is one entry of the configuration list driving Step 1.
// The slot set is data, not a fixed type: the catalog decides which
// categories exist and whether each is single- or multi-select.
type CategorySlot struct {
	Name string   `json:"name"`
	Mode SlotMode `json:"mode"`
}

// SlotValue is the tagged union holding a slot's current selection.
// Exactly one of Item, Items or Text is meaningful, depending on Mode.
type SlotValue struct {
	Mode  SlotMode              `json:"mode"`
	Item  *model.SelectionItem  `json:"item,omitempty"`
	Items []model.SelectionItem `json:"items,omitempty"`
	Text  string                `json:"text,omitempty"`
}

// ScheduleData is the Step 2 payload.  DeliveryFee is nil until a
// complete postcode has been priced successfully.
type ScheduleData struct {
	Date          string   `json:"date"` // ISO date (YYYY-MM-DD)
	Postcode      string   `json:"postcode"`
	DeliveryFee   *float64 `json:"delivery_fee,omitempty"`
	CustomerName  string   `json:"customer_name"`
	CustomerEmail string   `json:"customer_email"`
	CustomerPhone string   `json:"customer_phone"`
}

// AddOnData is the Step 3 payload.  Add-ons are optional; an empty
// list is valid.
type AddOnData struct {
	AddOns []model.SelectionItem `json:"add_ons"`
}

// State is the full wizard session state.  Slots preserves the
// configuration order so flattening produces deterministic line-item
// ordering; Selections maps slot name to its current value.
//
// Existing is set when the wizard was entered with a reservation id
// owned by the current identity.  In that branch Step 1 is a read-only
// summary of the persisted items and the first actionable step is
// Schedule.
type State struct {
	CurrentStep    Step                  `json:"current_step"`
	Completed      Step                  `json:"completed"` // furthest completed step, 0 if none
	Slots          []CategorySlot        `json:"slots"`
	Selections     map[string]*SlotValue `json:"selections"`
	Schedule       ScheduleData          `json:"schedule"`
	AddOns         AddOnData             `json:"add_ons"`
	Existing       *model.Reservation    `json:"existing,omitempty"`
	IdempotencyKey string                `json:"idempotency_key"`
}

// New returns a fresh wizard state for the given slot configuration,
// positioned at Step 1 with an idempotency key for this session's
// eventual create call.
func New(slots []CategorySlot) *State {
	st := &State{
		CurrentStep:    StepPackage,
		Slots:          slots,
		Selections:     make(map[string]*SlotValue, len(slots)),
		IdempotencyKey: newToken(),
	}
	for _, s := range slots {
		st.Selections[s.Name] = &SlotValue{Mode: s.Mode}
	}
	return st
}

// NewForExisting returns a wizard state continuing the given
// reservation.  Step 1 is replaced by the persisted item summary, the
// schedule fields are prefilled from the reservation and the wizard
// opens at Step 2.
func NewForExisting(slots []CategorySlot, res *model.Reservation) *State {
	st := New(slots)
	st.Existing = res
	st.CurrentStep = StepSchedule
	st.Completed = StepPackage
	if res.ReservationDate != nil {
		st.Schedule.Date = res.ReservationDate.UTC().Format("2006-01-02")
	}
	if res.Postcode != nil {
		st.Schedule.Postcode = *res.Postcode
	}
	if res.CustomerName != nil {
		st.Schedule.CustomerName = *res.CustomerName
	}
	if res.CustomerEmail != nil {
		st.Schedule.CustomerEmail = *res.CustomerEmail
	}
	if res.CustomerPhone != nil {
		st.Schedule.CustomerPhone = *res.CustomerPhone
	}
	if res.Extra.DeliveryFee > 0 {
		fee := res.Extra.DeliveryFee
		st.Schedule.DeliveryFee = &fee
	}
	for _, a := range res.Extra.AddOns {
		st.AddOns.AddOns = append(st.AddOns.AddOns, model.SelectionItem{
			Key:   a.Key,
			Title: a.Key,
			Price: a.PriceAtBooking,
		})
	}
	return st
}

// NewSessionID returns an opaque identifier for a wizard session.
func NewSessionID() string { return newToken() }

func newToken() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		panic(err) // crypto/rand never fails on supported platforms
	}
	return hex.EncodeToString(b)
}
