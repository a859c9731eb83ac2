// Package availability aggregates reservation counts per calendar day
// so the wizard's date picker can shade the calendar.  The tiers are
// advisory: nothing here locks a date, the submission path re-checks
// the chosen day before persisting.
package availability

import (
	"context"
	"time"
)

// WindowMonths is the length of the rolling availability window,
// starting at today.
const WindowMonths = 3

// Load tiers derived from per-day reservation counts.
const (
	TierOpen = "open" // 0-2 reservations
	TierBusy = "busy" // 3-5 reservations
	TierFull = "full" // more than 5; the date must not be selectable
)

// Count thresholds for the tiers.  FullThreshold is the last count at
// which a date is still bookable.
const (
	busyThreshold = 3
	FullThreshold = 5
)

// ReservationDates lists the reservation dates falling inside
// [from, to).  Cancelled reservations are excluded by implementations.
type ReservationDates interface {
	ReservationDates(ctx context.Context, from, to time.Time) ([]time.Time, error)
}

// Aggregator counts reservations per day over the rolling window.
type Aggregator struct {
	store ReservationDates
	now   func() time.Time
}

// NewAggregator returns an Aggregator backed by the given store.
func NewAggregator(store ReservationDates) *Aggregator {
	return &Aggregator{store: store, now: time.Now}
}

// GetAvailability returns reservation counts keyed by ISO date for the
// window [today, today+3 months).  Dates with no reservations are
// absent from the map; consumers treat absence as zero.  All
// truncation is done in UTC — the single timezone policy for both
// storage and aggregation.
func (a *Aggregator) GetAvailability(ctx context.Context) (map[string]int, error) {
	from := truncateUTC(a.now())
	to := from.AddDate(0, WindowMonths, 0)

	dates, err := a.store.ReservationDates(ctx, from, to)
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int, len(dates))
	for _, d := range dates {
		counts[DateKey(d)]++
	}
	return counts, nil
}

// Tier maps a per-day reservation count to its load tier.
func Tier(count int) string {
	switch {
	case count > FullThreshold:
		return TierFull
	case count >= busyThreshold:
		return TierBusy
	default:
		return TierOpen
	}
}

// DateKey formats a timestamp as its UTC calendar date.
func DateKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

func truncateUTC(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
