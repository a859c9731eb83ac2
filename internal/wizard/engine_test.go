package wizard

import (
	"errors"
	"testing"
	"time"

	"github.com/huuhung7301/hubo-event/internal/model"
)

func testSlots() []CategorySlot {
	return []CategorySlot{
		{Name: "backdrop", Mode: SlotSingle},
		{Name: "decorations", Mode: SlotMulti},
		{Name: "theme", Mode: SlotSingle},
		{Name: "message", Mode: SlotText},
	}
}

func item(key string, price float64) model.SelectionItem {
	return model.SelectionItem{Key: key, Title: key, Price: price}
}

func fee(v float64) *float64 { return &v }

func validSchedule() ScheduleData {
	return ScheduleData{
		Date:          "2025-11-01",
		Postcode:      "2000",
		DeliveryFee:   fee(50),
		CustomerName:  "Ada",
		CustomerEmail: "ada@example.com",
		CustomerPhone: "0400000000",
	}
}

func TestNewStateStartsAtPackageStep(t *testing.T) {
	st := New(testSlots())
	if st.CurrentStep != StepPackage {
		t.Fatalf("new state starts at step %d, want %d", st.CurrentStep, StepPackage)
	}
	if st.IdempotencyKey == "" {
		t.Fatal("new state must carry an idempotency key")
	}
	if len(st.Selections) != 4 {
		t.Fatalf("expected a value per configured slot, got %d", len(st.Selections))
	}
}

func TestToggleSingleSlot(t *testing.T) {
	st := New(testSlots())
	arch := item("roundArch", 120)
	mesh := item("meshWall", 150)

	if err := st.ToggleSelection("backdrop", arch); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := st.Selections["backdrop"].Item; got == nil || got.Key != "roundArch" {
		t.Fatalf("backdrop = %+v, want roundArch", got)
	}
	// Selecting a different item replaces the held one.
	if err := st.ToggleSelection("backdrop", mesh); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := st.Selections["backdrop"].Item; got == nil || got.Key != "meshWall" {
		t.Fatalf("backdrop = %+v, want meshWall", got)
	}
	// Re-selecting the held item toggles it off.
	if err := st.ToggleSelection("backdrop", mesh); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if st.Selections["backdrop"].Item != nil {
		t.Fatal("re-selecting the held item must clear a single slot")
	}
}

func TestToggleMultiSlot(t *testing.T) {
	st := New(testSlots())
	garland := item("balloonGarland", 80)
	neon := item("neonSign", 60)

	for _, it := range []model.SelectionItem{garland, neon} {
		if err := st.ToggleSelection("decorations", it); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if len(st.Selections["decorations"].Items) != 2 {
		t.Fatalf("expected 2 decorations, got %d", len(st.Selections["decorations"].Items))
	}
	if err := st.ToggleSelection("decorations", garland); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	items := st.Selections["decorations"].Items
	if len(items) != 1 || items[0].Key != "neonSign" {
		t.Fatalf("expected only neonSign to remain, got %+v", items)
	}
}

func TestToggleErrors(t *testing.T) {
	st := New(testSlots())
	if err := st.ToggleSelection("cake", item("x", 1)); !errors.Is(err, ErrUnknownSlot) {
		t.Fatalf("expected ErrUnknownSlot, got %v", err)
	}
	if err := st.ToggleSelection("message", item("x", 1)); !errors.Is(err, ErrSlotMode) {
		t.Fatalf("expected ErrSlotMode, got %v", err)
	}
	if err := st.SetText("backdrop", "hi"); !errors.Is(err, ErrSlotMode) {
		t.Fatalf("expected ErrSlotMode, got %v", err)
	}
}

func TestSubmitPackageRequiresSelection(t *testing.T) {
	st := New(testSlots())
	if err := st.SubmitPackage(); !errors.Is(err, ErrEmptyPackage) {
		t.Fatalf("expected ErrEmptyPackage, got %v", err)
	}
	if st.CurrentStep != StepPackage {
		t.Fatal("failed submission must not advance the step")
	}
	if err := st.ToggleSelection("backdrop", item("roundArch", 120)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := st.SubmitPackage(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if st.CurrentStep != StepSchedule {
		t.Fatalf("after step 1 the wizard is at %d, want %d", st.CurrentStep, StepSchedule)
	}
}

func TestSubmitScheduleGuards(t *testing.T) {
	st := New(testSlots())
	_ = st.ToggleSelection("backdrop", item("roundArch", 120))
	if err := st.SubmitPackage(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cases := []struct {
		name string
		mod  func(*ScheduleData)
	}{
		{"missing date", func(d *ScheduleData) { d.Date = "" }},
		{"malformed date", func(d *ScheduleData) { d.Date = "01/11/2025" }},
		{"missing fee", func(d *ScheduleData) { d.DeliveryFee = nil }},
		{"missing name", func(d *ScheduleData) { d.CustomerName = "" }},
		{"missing email", func(d *ScheduleData) { d.CustomerEmail = "" }},
		{"missing phone", func(d *ScheduleData) { d.CustomerPhone = "" }},
	}
	for _, c := range cases {
		data := validSchedule()
		c.mod(&data)
		if err := st.SubmitSchedule(data); !errors.Is(err, ErrIncompleteStep) {
			t.Fatalf("%s: expected ErrIncompleteStep, got %v", c.name, err)
		}
		if st.CurrentStep != StepSchedule {
			t.Fatalf("%s: blocked submission must not advance", c.name)
		}
	}

	if err := st.SubmitSchedule(validSchedule()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if st.CurrentStep != StepAddOns {
		t.Fatalf("after step 2 the wizard is at %d, want %d", st.CurrentStep, StepAddOns)
	}
}

func TestSubmitAddOnsAlwaysEnabled(t *testing.T) {
	st := stateAtAddOns(t)
	if err := st.SubmitAddOns(AddOnData{}); err != nil {
		t.Fatalf("empty add-ons must be accepted: %v", err)
	}
	if st.CurrentStep != StepReview {
		t.Fatalf("after step 3 the wizard is at %d, want %d", st.CurrentStep, StepReview)
	}
}

func TestSubmitOutOfOrder(t *testing.T) {
	st := New(testSlots())
	if err := st.SubmitSchedule(validSchedule()); !errors.Is(err, ErrWrongStep) {
		t.Fatalf("expected ErrWrongStep, got %v", err)
	}
	if err := st.SubmitAddOns(AddOnData{}); !errors.Is(err, ErrWrongStep) {
		t.Fatalf("expected ErrWrongStep, got %v", err)
	}
	if err := st.CompleteConfirmation(); !errors.Is(err, ErrWrongStep) {
		t.Fatalf("expected ErrWrongStep, got %v", err)
	}
}

func TestJumpRules(t *testing.T) {
	st := stateAtAddOns(t)

	// Backward jumps are always allowed.
	if err := st.Jump(StepPackage); err != nil {
		t.Fatalf("backward jump failed: %v", err)
	}
	// Forward jump back to the next uncompleted step is allowed.
	if err := st.Jump(StepAddOns); err != nil {
		t.Fatalf("jump to furthest+1 failed: %v", err)
	}
	// Jumping past uncompleted steps is not.
	if err := st.Jump(StepReview); !errors.Is(err, ErrJumpNotAllowed) {
		t.Fatalf("expected ErrJumpNotAllowed, got %v", err)
	}
	// The terminal step is never a jump target.
	if err := st.Jump(StepConfirmed); !errors.Is(err, ErrJumpNotAllowed) {
		t.Fatalf("expected ErrJumpNotAllowed, got %v", err)
	}
}

func TestExistingReservationBranch(t *testing.T) {
	uid := uint64(7)
	date := time.Date(2025, 11, 1, 0, 0, 0, 0, time.UTC)
	postcode := "2000"
	res := &model.Reservation{
		ID:     42,
		UserID: &uid,
		Items: []model.LineItem{
			{Key: "roundArch", Quantity: 1, PriceAtBooking: 120},
		},
		ReservationDate: &date,
		Postcode:        &postcode,
		Extra:           model.ReservationExtra{DeliveryFee: 50},
		Status:          model.ReservationStatusPending,
	}
	st := NewForExisting(testSlots(), res)

	if st.CurrentStep != StepSchedule {
		t.Fatalf("existing branch opens at %d, want %d", st.CurrentStep, StepSchedule)
	}
	if st.Schedule.Date != "2025-11-01" || st.Schedule.Postcode != "2000" {
		t.Fatalf("schedule not prefilled: %+v", st.Schedule)
	}
	if st.Schedule.DeliveryFee == nil || *st.Schedule.DeliveryFee != 50 {
		t.Fatalf("delivery fee not prefilled: %+v", st.Schedule.DeliveryFee)
	}
	if err := st.ToggleSelection("backdrop", item("meshWall", 150)); !errors.Is(err, ErrStepReadOnly) {
		t.Fatalf("expected ErrStepReadOnly, got %v", err)
	}
	if err := st.Jump(StepPackage); !errors.Is(err, ErrJumpNotAllowed) {
		t.Fatalf("expected ErrJumpNotAllowed for read-only package step, got %v", err)
	}
	// Core lines come verbatim from the persisted reservation.
	lines := st.CoreLines()
	if len(lines) != 1 || lines[0].Key != "roundArch" || lines[0].PriceAtBooking != 120 {
		t.Fatalf("core lines not taken from reservation: %+v", lines)
	}
}

func TestConfirmationFlow(t *testing.T) {
	st := stateAtAddOns(t)
	if err := st.SubmitAddOns(AddOnData{AddOns: []model.SelectionItem{item("ledUplights", 80)}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := st.CompleteConfirmation(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if st.CurrentStep != StepConfirmed {
		t.Fatalf("confirmed wizard is at %d, want %d", st.CurrentStep, StepConfirmed)
	}
}

func stateAtAddOns(t *testing.T) *State {
	t.Helper()
	st := New(testSlots())
	if err := st.ToggleSelection("backdrop", item("roundArch", 120)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := st.SubmitPackage(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := st.SubmitSchedule(validSchedule()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return st
}
