// Package booking implements the reservation submission orchestrator:
// the piece that turns a completed wizard state into a persisted
// reservation.  It decides create-vs-update, flattens the step
// payloads into the uniform line-item shape, re-checks availability at
// submit time and computes the stored total with the same function the
// quote path uses.
package booking

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/huuhung7301/hubo-event/internal/availability"
	"github.com/huuhung7301/hubo-event/internal/model"
	"github.com/huuhung7301/hubo-event/internal/pricing"
	"github.com/huuhung7301/hubo-event/internal/queue"
	"github.com/huuhung7301/hubo-event/internal/repository"
	"github.com/huuhung7301/hubo-event/internal/wizard"
)

var (
	// ErrUnauthenticated blocks submission without a signed-in user.
	// The UI is expected to open the sign-in flow instead of calling
	// the orchestrator.
	ErrUnauthenticated = errors.New("booking: authentication required")

	// ErrDateUnavailable is returned when the chosen date has filled up
	// between quote time and submit time.
	ErrDateUnavailable = errors.New("booking: date no longer available")
)

// ReservationStore is the persistence boundary the orchestrator writes
// through.  *repository.ReservationRepo satisfies it; tests use fakes.
type ReservationStore interface {
	Create(ctx context.Context, res *model.Reservation) error
	Update(ctx context.Context, id uint64, upd repository.ReservationUpdate) error
	GetByID(ctx context.Context, id uint64) (*model.Reservation, error)
	FindByIdempotencyKey(ctx context.Context, key string) (*model.Reservation, error)
	CountForDate(ctx context.Context, day time.Time) (int, error)
}

// EventPublisher pushes domain events to the broker.  Publishing is
// best-effort: failures are logged and never fail a submission.
type EventPublisher interface {
	PublishReservationSubmitted(ctx context.Context, event queue.ReservationSubmittedEvent) error
}

// Orchestrator coordinates reservation submission.
type Orchestrator struct {
	store     ReservationStore
	publisher EventPublisher // nil disables event publishing
}

// NewOrchestrator returns an Orchestrator over the given store.
// publisher may be nil.
func NewOrchestrator(store ReservationStore, publisher EventPublisher) *Orchestrator {
	if store == nil {
		panic("nil store passed to NewOrchestrator")
	}
	return &Orchestrator{store: store, publisher: publisher}
}

// Resume builds the wizard state for an entry carrying a reservation
// id.  When the id resolves to a reservation owned by the caller, the
// wizard continues it (Step 1 read-only).  Any other outcome — the id
// does not exist, the row is ownerless, or it belongs to someone else
// — silently yields a fresh id-less state; foreign reservations are
// never exposed, not even as an error.
func (o *Orchestrator) Resume(ctx context.Context, userID, reservationID uint64, slots []wizard.CategorySlot) (*wizard.State, error) {
	res, err := o.store.GetByID(ctx, reservationID)
	if errors.Is(err, repository.ErrReservationNotFound) {
		return wizard.New(slots), nil
	}
	if err != nil {
		return nil, err
	}
	if res.UserID == nil || *res.UserID != userID {
		return wizard.New(slots), nil
	}
	return wizard.NewForExisting(slots, res), nil
}

// Submit persists a completed wizard state.  On any failure the state
// is left untouched at the review step so the user can retry without
// re-entering data.
func (o *Orchestrator) Submit(ctx context.Context, userID uint64, st *wizard.State) (*model.Reservation, error) {
	if userID == 0 {
		return nil, ErrUnauthenticated
	}
	if st.CurrentStep != wizard.StepReview {
		return nil, fmt.Errorf("%w: at step %d", wizard.ErrWrongStep, st.CurrentStep)
	}
	date, err := time.Parse("2006-01-02", st.Schedule.Date)
	if err != nil {
		return nil, fmt.Errorf("%w: malformed date %q", wizard.ErrIncompleteStep, st.Schedule.Date)
	}

	// Quote-time availability can be stale; re-check the chosen day
	// before writing.
	count, err := o.store.CountForDate(ctx, date)
	if err != nil {
		return nil, err
	}
	if count > availability.FullThreshold {
		return nil, fmt.Errorf("%w: %s", ErrDateUnavailable, st.Schedule.Date)
	}

	core := st.CoreLines()
	optional := st.OptionalLines()
	addOns := st.AddOnLines()
	total, err := pricing.ComputeTotal(core, optional, addOns, st.DeliveryFee())
	if err != nil {
		// Corrupted line items must never reach storage.
		log.Printf("booking: aborting submission: %v", err)
		return nil, err
	}

	if st.Existing != nil {
		return o.update(ctx, userID, st, core, optional, addOns, date, total)
	}
	return o.create(ctx, userID, st, core, addOns, date, total)
}

func (o *Orchestrator) create(ctx context.Context, userID uint64, st *wizard.State,
	core, addOns []model.LineItem, date time.Time, total float64) (*model.Reservation, error) {

	// A retried submission after a transient failure must not
	// double-create: the session's idempotency token identifies the
	// earlier attempt.
	if st.IdempotencyKey != "" {
		prior, err := o.store.FindByIdempotencyKey(ctx, st.IdempotencyKey)
		if err == nil {
			return prior, nil
		}
		if !errors.Is(err, repository.ErrReservationNotFound) {
			return nil, err
		}
	}

	res := &model.Reservation{
		WorkID:          model.CustomWorkID,
		UserID:          &userID,
		CustomerName:    optionalString(st.Schedule.CustomerName),
		CustomerEmail:   optionalString(st.Schedule.CustomerEmail),
		CustomerPhone:   optionalString(st.Schedule.CustomerPhone),
		Notes:           optionalString(st.Notes()),
		TotalPrice:      total,
		Items:           core,
		OptionalItems:   nil,
		ReservationDate: &date,
		Postcode:        optionalString(st.Schedule.Postcode),
		Extra:           model.ReservationExtra{DeliveryFee: st.DeliveryFee(), AddOns: addOns},
		Status:          model.ReservationStatusPending,
		IdempotencyKey:  optionalString(st.IdempotencyKey),
	}
	if err := o.store.Create(ctx, res); err != nil {
		if errors.Is(err, repository.ErrConflict) && st.IdempotencyKey != "" {
			// Lost a race against our own retry; the earlier row wins.
			return o.store.FindByIdempotencyKey(ctx, st.IdempotencyKey)
		}
		return nil, err
	}
	o.publish(ctx, res, false)
	return res, nil
}

func (o *Orchestrator) update(ctx context.Context, userID uint64, st *wizard.State,
	core, optional, addOns []model.LineItem, date time.Time, total float64) (*model.Reservation, error) {

	existing := st.Existing
	if existing.UserID == nil || *existing.UserID != userID {
		return nil, repository.ErrForbidden
	}
	upd := repository.ReservationUpdate{
		// Step 1 is read-only on this branch: items pass through
		// verbatim from the persisted reservation.
		Items:           core,
		OptionalItems:   optional,
		ReservationDate: &date,
		Postcode:        optionalString(st.Schedule.Postcode),
		CustomerName:    optionalString(st.Schedule.CustomerName),
		CustomerEmail:   optionalString(st.Schedule.CustomerEmail),
		CustomerPhone:   optionalString(st.Schedule.CustomerPhone),
		Notes:           existing.Notes,
		Extra:           model.ReservationExtra{DeliveryFee: st.DeliveryFee(), AddOns: addOns},
		TotalPrice:      total,
	}
	if err := o.store.Update(ctx, existing.ID, upd); err != nil {
		return nil, err
	}
	res, err := o.store.GetByID(ctx, existing.ID)
	if err != nil {
		return nil, err
	}
	o.publish(ctx, res, true)
	return res, nil
}

func (o *Orchestrator) publish(ctx context.Context, res *model.Reservation, updated bool) {
	if o.publisher == nil {
		return
	}
	keys := make([]string, 0, len(res.Items)+len(res.Extra.AddOns))
	for _, l := range res.Items {
		keys = append(keys, l.Key)
	}
	for _, l := range res.Extra.AddOns {
		keys = append(keys, l.Key)
	}
	event := queue.ReservationSubmittedEvent{
		ReservationID: res.ID,
		WorkID:        res.WorkID,
		ItemKeys:      keys,
		TotalPrice:    res.TotalPrice,
		Status:        res.Status,
		Updated:       updated,
		SubmittedAt:   time.Now().UTC().Format(time.RFC3339),
	}
	if res.UserID != nil {
		event.UserID = *res.UserID
	}
	if res.ReservationDate != nil {
		event.ReservationDate = res.ReservationDate.UTC().Format("2006-01-02")
	}
	if res.Postcode != nil {
		event.Postcode = *res.Postcode
	}
	if err := o.publisher.PublishReservationSubmitted(ctx, event); err != nil {
		log.Printf("booking: event publish failed: %v", err)
	}
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
