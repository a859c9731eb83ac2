package booking

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/huuhung7301/hubo-event/internal/model"
	"github.com/huuhung7301/hubo-event/internal/queue"
	"github.com/huuhung7301/hubo-event/internal/repository"
	"github.com/huuhung7301/hubo-event/internal/wizard"
)

type fakeStore struct {
	reservations map[uint64]*model.Reservation
	nextID       uint64
	dateCounts   map[string]int
	createErr    error
	createCalls  int
	updateCalls  int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		reservations: make(map[uint64]*model.Reservation),
		nextID:       1,
		dateCounts:   make(map[string]int),
	}
}

func (s *fakeStore) Create(_ context.Context, res *model.Reservation) error {
	s.createCalls++
	if s.createErr != nil {
		return s.createErr
	}
	res.ID = s.nextID
	s.nextID++
	s.reservations[res.ID] = cloneReservation(res)
	return nil
}

func (s *fakeStore) Update(_ context.Context, id uint64, upd repository.ReservationUpdate) error {
	s.updateCalls++
	res, ok := s.reservations[id]
	if !ok {
		return repository.ErrReservationNotFound
	}
	if res.Status != model.ReservationStatusPending {
		return repository.ErrConflict
	}
	res.Items = append([]model.LineItem(nil), upd.Items...)
	res.OptionalItems = append([]model.LineItem(nil), upd.OptionalItems...)
	res.ReservationDate = upd.ReservationDate
	res.Postcode = upd.Postcode
	res.CustomerName = upd.CustomerName
	res.CustomerEmail = upd.CustomerEmail
	res.CustomerPhone = upd.CustomerPhone
	res.Notes = upd.Notes
	res.Extra = upd.Extra
	res.TotalPrice = upd.TotalPrice
	return nil
}

func (s *fakeStore) GetByID(_ context.Context, id uint64) (*model.Reservation, error) {
	res, ok := s.reservations[id]
	if !ok {
		return nil, repository.ErrReservationNotFound
	}
	return cloneReservation(res), nil
}

func (s *fakeStore) FindByIdempotencyKey(_ context.Context, key string) (*model.Reservation, error) {
	for _, res := range s.reservations {
		if res.IdempotencyKey != nil && *res.IdempotencyKey == key {
			return cloneReservation(res), nil
		}
	}
	return nil, repository.ErrReservationNotFound
}

func (s *fakeStore) CountForDate(_ context.Context, day time.Time) (int, error) {
	return s.dateCounts[day.UTC().Format("2006-01-02")], nil
}

func cloneReservation(res *model.Reservation) *model.Reservation {
	c := *res
	c.Items = append([]model.LineItem(nil), res.Items...)
	c.OptionalItems = append([]model.LineItem(nil), res.OptionalItems...)
	c.Extra.AddOns = append([]model.LineItem(nil), res.Extra.AddOns...)
	return &c
}

type capturingPublisher struct {
	events []queue.ReservationSubmittedEvent
}

func (p *capturingPublisher) PublishReservationSubmitted(_ context.Context, e queue.ReservationSubmittedEvent) error {
	p.events = append(p.events, e)
	return nil
}

func testSlots() []wizard.CategorySlot {
	return []wizard.CategorySlot{
		{Name: "backdrop", Mode: wizard.SlotSingle},
		{Name: "theme", Mode: wizard.SlotSingle},
		{Name: "message", Mode: wizard.SlotText},
	}
}

// reviewState walks a fresh wizard to the review step with the
// end-to-end scenario: Round Arch ($120) + Pastel ($10), postcode
// priced at fee 50, one LED Uplights add-on ($80).
func reviewState(t *testing.T) *wizard.State {
	t.Helper()
	st := wizard.New(testSlots())
	mustDo(t, st.ToggleSelection("backdrop", model.SelectionItem{Key: "Round Arch", Title: "Round Arch", Price: 120}))
	mustDo(t, st.ToggleSelection("theme", model.SelectionItem{Key: "Pastel", Title: "Pastel", Price: 10}))
	mustDo(t, st.SubmitPackage())
	fee := 50.0
	mustDo(t, st.SubmitSchedule(wizard.ScheduleData{
		Date:          "2025-11-01",
		Postcode:      "2100",
		DeliveryFee:   &fee,
		CustomerName:  "Ada",
		CustomerEmail: "ada@example.com",
		CustomerPhone: "0400000000",
	}))
	mustDo(t, st.SubmitAddOns(wizard.AddOnData{AddOns: []model.SelectionItem{
		{Key: "LED Uplights", Title: "LED Uplights", Price: 80},
	}}))
	return st
}

func mustDo(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSubmitCreatesReservation(t *testing.T) {
	store := newFakeStore()
	pub := &capturingPublisher{}
	orc := NewOrchestrator(store, pub)
	st := reviewState(t)

	res, err := orc.Submit(context.Background(), 7, st)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Status != model.ReservationStatusPending {
		t.Fatalf("status = %s, want PENDING", res.Status)
	}
	if res.TotalPrice != 260 {
		t.Fatalf("total = %v, want 260 (120+10+80+50)", res.TotalPrice)
	}
	wantItems := []model.LineItem{
		{Key: "Round Arch", Quantity: 1, PriceAtBooking: 120},
		{Key: "Pastel", Quantity: 1, PriceAtBooking: 10},
	}
	if len(res.Items) != len(wantItems) {
		t.Fatalf("items = %+v, want %+v", res.Items, wantItems)
	}
	for i, w := range wantItems {
		if res.Items[i] != w {
			t.Fatalf("item %d = %+v, want %+v", i, res.Items[i], w)
		}
	}
	if res.Extra.DeliveryFee != 50 {
		t.Fatalf("extra delivery fee = %v, want 50", res.Extra.DeliveryFee)
	}
	if len(res.Extra.AddOns) != 1 || res.Extra.AddOns[0] != (model.LineItem{Key: "LED Uplights", Quantity: 1, PriceAtBooking: 80}) {
		t.Fatalf("add-ons = %+v", res.Extra.AddOns)
	}
	if res.WorkID != model.CustomWorkID {
		t.Fatalf("workID = %d, want custom sentinel %d", res.WorkID, model.CustomWorkID)
	}
	if res.UserID == nil || *res.UserID != 7 {
		t.Fatalf("userID = %v, want 7", res.UserID)
	}
	if len(pub.events) != 1 || pub.events[0].ReservationID != res.ID || pub.events[0].Updated {
		t.Fatalf("unexpected events: %+v", pub.events)
	}
}

func TestSubmitRequiresAuthentication(t *testing.T) {
	orc := NewOrchestrator(newFakeStore(), nil)
	if _, err := orc.Submit(context.Background(), 0, reviewState(t)); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestSubmitRequiresReviewStep(t *testing.T) {
	orc := NewOrchestrator(newFakeStore(), nil)
	st := wizard.New(testSlots())
	if _, err := orc.Submit(context.Background(), 7, st); !errors.Is(err, wizard.ErrWrongStep) {
		t.Fatalf("expected ErrWrongStep, got %v", err)
	}
}

func TestSubmitRejectsFullDate(t *testing.T) {
	store := newFakeStore()
	store.dateCounts["2025-11-01"] = 6
	orc := NewOrchestrator(store, nil)
	st := reviewState(t)

	if _, err := orc.Submit(context.Background(), 7, st); !errors.Is(err, ErrDateUnavailable) {
		t.Fatalf("expected ErrDateUnavailable, got %v", err)
	}
	if store.createCalls != 0 {
		t.Fatal("nothing may be persisted for a full date")
	}
	if st.CurrentStep != wizard.StepReview {
		t.Fatal("failed submission must leave the wizard at review")
	}
}

func TestSubmitBusyDateStillAllowed(t *testing.T) {
	store := newFakeStore()
	store.dateCounts["2025-11-01"] = 5
	orc := NewOrchestrator(store, nil)
	if _, err := orc.Submit(context.Background(), 7, reviewState(t)); err != nil {
		t.Fatalf("count at the threshold is busy, not full: %v", err)
	}
}

func TestSubmitRetryIsIdempotent(t *testing.T) {
	store := newFakeStore()
	orc := NewOrchestrator(store, nil)
	st := reviewState(t)

	first, err := orc.Submit(context.Background(), 7, st)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// The client retries the same session, e.g. after a timeout that
	// actually committed.
	second, err := orc.Submit(context.Background(), 7, st)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("retry created a duplicate: %d vs %d", second.ID, first.ID)
	}
	if store.createCalls != 1 {
		t.Fatalf("create called %d times, want 1", store.createCalls)
	}
}

func TestSubmitRetryAfterFailure(t *testing.T) {
	store := newFakeStore()
	store.createErr = errors.New("network down")
	orc := NewOrchestrator(store, nil)
	st := reviewState(t)

	if _, err := orc.Submit(context.Background(), 7, st); err == nil {
		t.Fatal("expected failure")
	}
	if st.CurrentStep != wizard.StepReview {
		t.Fatal("state must be preserved for retry")
	}

	store.createErr = nil
	res, err := orc.Submit(context.Background(), 7, st)
	if err != nil {
		t.Fatalf("retry failed: %v", err)
	}
	if res.TotalPrice != 260 {
		t.Fatalf("retry total = %v, want 260", res.TotalPrice)
	}
}

func TestPriceLock(t *testing.T) {
	store := newFakeStore()
	orc := NewOrchestrator(store, nil)
	st := reviewState(t)

	res, err := orc.Submit(context.Background(), 7, st)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// A later catalog price change must not move the stored lines or
	// total; the reservation carries its own priceAtBooking values.
	reread, err := store.GetByID(context.Background(), res.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	reread.Items[0].PriceAtBooking = 999 // mutate the copy only

	again, err := store.GetByID(context.Background(), res.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if again.Items[0].PriceAtBooking != 120 || again.TotalPrice != 260 {
		t.Fatalf("stored prices drifted: %+v total %v", again.Items, again.TotalPrice)
	}
}

func existingReservation(userID uint64) *model.Reservation {
	uid := userID
	date := time.Date(2025, 11, 1, 0, 0, 0, 0, time.UTC)
	postcode := "2000"
	return &model.Reservation{
		WorkID: 3,
		UserID: &uid,
		Items: []model.LineItem{
			{Key: "meshWall", Quantity: 1, PriceAtBooking: 150},
		},
		OptionalItems: []model.LineItem{
			{Key: "neonSign", Quantity: 1, PriceAtBooking: 60},
		},
		ReservationDate: &date,
		Postcode:        &postcode,
		Extra:           model.ReservationExtra{DeliveryFee: 80},
		Status:          model.ReservationStatusPending,
	}
}

func TestSubmitUpdatesExistingReservation(t *testing.T) {
	store := newFakeStore()
	orc := NewOrchestrator(store, nil)
	seed := existingReservation(7)
	mustDo(t, store.Create(context.Background(), seed))

	st, err := orc.Resume(context.Background(), 7, seed.ID, testSlots())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if st.Existing == nil || st.CurrentStep != wizard.StepSchedule {
		t.Fatalf("resume did not open the continuation branch: %+v", st)
	}

	fee := 150.0
	mustDo(t, st.SubmitSchedule(wizard.ScheduleData{
		Date:          "2025-12-05",
		Postcode:      "2300",
		DeliveryFee:   &fee,
		CustomerName:  "Ada",
		CustomerEmail: "ada@example.com",
		CustomerPhone: "0400000000",
	}))
	mustDo(t, st.SubmitAddOns(wizard.AddOnData{AddOns: []model.SelectionItem{
		{Key: "ledUplights", Title: "LED Uplights", Price: 80},
	}}))

	res, err := orc.Submit(context.Background(), 7, st)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.createCalls != 1 { // only the seed
		t.Fatalf("continuation must update, not create (creates: %d)", store.createCalls)
	}
	if store.updateCalls != 1 {
		t.Fatalf("update called %d times, want 1", store.updateCalls)
	}
	// Items pass through verbatim; total covers items + optional +
	// new add-on + new fee.
	if res.Items[0].Key != "meshWall" || res.Items[0].PriceAtBooking != 150 {
		t.Fatalf("core items not passed through: %+v", res.Items)
	}
	if want := 150 + 60 + 80 + 150.0; res.TotalPrice != want {
		t.Fatalf("total = %v, want %v", res.TotalPrice, want)
	}
	if res.ReservationDate == nil || res.ReservationDate.Format("2006-01-02") != "2025-12-05" {
		t.Fatalf("date not updated: %v", res.ReservationDate)
	}
}

func TestResumeForeignReservationYieldsFreshState(t *testing.T) {
	store := newFakeStore()
	orc := NewOrchestrator(store, nil)
	seed := existingReservation(1) // owned by user A
	mustDo(t, store.Create(context.Background(), seed))

	st, err := orc.Resume(context.Background(), 2, seed.ID, testSlots()) // user B
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if st.Existing != nil {
		t.Fatal("foreign reservation must never be exposed")
	}
	if st.CurrentStep != wizard.StepPackage {
		t.Fatalf("fresh state starts at step %d, want %d", st.CurrentStep, wizard.StepPackage)
	}
}

func TestResumeUnknownIDYieldsFreshState(t *testing.T) {
	orc := NewOrchestrator(newFakeStore(), nil)
	st, err := orc.Resume(context.Background(), 2, 999, testSlots())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if st.Existing != nil || st.CurrentStep != wizard.StepPackage {
		t.Fatalf("expected fresh state, got %+v", st)
	}
}
