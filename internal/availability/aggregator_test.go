package availability

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeDates struct {
	dates []time.Time
	err   error

	gotFrom time.Time
	gotTo   time.Time
}

func (f *fakeDates) ReservationDates(_ context.Context, from, to time.Time) ([]time.Time, error) {
	f.gotFrom, f.gotTo = from, to
	return f.dates, f.err
}

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestGetAvailabilitySparseCounts(t *testing.T) {
	store := &fakeDates{dates: []time.Time{
		day("2025-11-01"), day("2025-11-01"), day("2025-11-01"),
		day("2025-11-08"), day("2025-11-08"), day("2025-11-08"),
		day("2025-11-08"), day("2025-11-08"), day("2025-11-08"),
	}}
	agg := NewAggregator(store)
	agg.now = func() time.Time { return day("2025-10-20") }

	counts, err := agg.GetAvailability(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(counts) != 2 {
		t.Fatalf("expected exactly 2 dates, got %d: %v", len(counts), counts)
	}
	if counts["2025-11-01"] != 3 {
		t.Fatalf("2025-11-01 count = %d, want 3", counts["2025-11-01"])
	}
	if counts["2025-11-08"] != 6 {
		t.Fatalf("2025-11-08 count = %d, want 6", counts["2025-11-08"])
	}
	if _, present := counts["2025-11-02"]; present {
		t.Fatal("date with no reservations must be absent from the map")
	}
}

func TestGetAvailabilityWindow(t *testing.T) {
	store := &fakeDates{}
	agg := NewAggregator(store)
	agg.now = func() time.Time {
		return time.Date(2025, 10, 20, 17, 45, 3, 0, time.UTC)
	}
	if _, err := agg.GetAvailability(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	wantFrom := time.Date(2025, 10, 20, 0, 0, 0, 0, time.UTC)
	wantTo := time.Date(2026, 1, 20, 0, 0, 0, 0, time.UTC)
	if !store.gotFrom.Equal(wantFrom) {
		t.Fatalf("window start = %v, want midnight today %v", store.gotFrom, wantFrom)
	}
	if !store.gotTo.Equal(wantTo) {
		t.Fatalf("window end = %v, want %v", store.gotTo, wantTo)
	}
}

func TestGetAvailabilityTruncatesTimestamps(t *testing.T) {
	// Two timestamps on the same UTC day must count as one date.
	store := &fakeDates{dates: []time.Time{
		time.Date(2025, 11, 1, 0, 30, 0, 0, time.UTC),
		time.Date(2025, 11, 1, 23, 59, 0, 0, time.UTC),
	}}
	agg := NewAggregator(store)
	agg.now = func() time.Time { return day("2025-10-20") }

	counts, err := agg.GetAvailability(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if counts["2025-11-01"] != 2 {
		t.Fatalf("2025-11-01 count = %d, want 2", counts["2025-11-01"])
	}
}

func TestGetAvailabilityStoreFailure(t *testing.T) {
	boom := errors.New("db down")
	agg := NewAggregator(&fakeDates{err: boom})
	if _, err := agg.GetAvailability(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("expected store error to propagate, got %v", err)
	}
}

func TestTier(t *testing.T) {
	cases := []struct {
		count int
		tier  string
	}{
		{0, TierOpen}, {2, TierOpen},
		{3, TierBusy}, {5, TierBusy},
		{6, TierFull}, {40, TierFull},
	}
	for _, c := range cases {
		if got := Tier(c.count); got != c.tier {
			t.Fatalf("Tier(%d) = %s, want %s", c.count, got, c.tier)
		}
	}
}
