package pricing

import (
	"errors"
	"testing"

	"github.com/huuhung7301/hubo-event/internal/model"
)

func TestComputeTotalEmptyInputs(t *testing.T) {
	total, err := ComputeTotal(nil, nil, nil, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 0 {
		t.Fatalf("empty inputs should total 0, got %v", total)
	}
}

func TestComputeTotalSumsAllGroups(t *testing.T) {
	core := []model.LineItem{
		{Key: "roundArch", Quantity: 1, PriceAtBooking: 120},
		{Key: "pastel", Quantity: 1, PriceAtBooking: 10},
	}
	optional := []model.LineItem{
		{Key: "balloonGarland", Quantity: 2, PriceAtBooking: 40},
	}
	addOns := []model.LineItem{
		{Key: "ledUplights", Quantity: 1, PriceAtBooking: 80},
	}
	total, err := ComputeTotal(core, optional, addOns, 50)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := 120 + 10 + 2*40 + 80 + 50.0; total != want {
		t.Fatalf("total = %v, want %v", total, want)
	}
}

func TestComputeTotalOrderIndependent(t *testing.T) {
	a := []model.LineItem{
		{Key: "a", Quantity: 1, PriceAtBooking: 12.5},
		{Key: "b", Quantity: 3, PriceAtBooking: 7},
		{Key: "c", Quantity: 2, PriceAtBooking: 99},
	}
	b := []model.LineItem{a[2], a[0], a[1]}

	t1, err := ComputeTotal(a, nil, nil, 80)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	t2, err := ComputeTotal(b, nil, nil, 80)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if t1 != t2 {
		t.Fatalf("reordering changed the total: %v vs %v", t1, t2)
	}
}

func TestComputeTotalRejectsInvalidLines(t *testing.T) {
	cases := []struct {
		name string
		line model.LineItem
	}{
		{"zero quantity", model.LineItem{Key: "x", Quantity: 0, PriceAtBooking: 10}},
		{"negative quantity", model.LineItem{Key: "x", Quantity: -1, PriceAtBooking: 10}},
		{"negative price", model.LineItem{Key: "x", Quantity: 1, PriceAtBooking: -5}},
	}
	for _, c := range cases {
		if _, err := ComputeTotal([]model.LineItem{c.line}, nil, nil, 0); !errors.Is(err, ErrInvalidLineItem) {
			t.Fatalf("%s: expected ErrInvalidLineItem, got %v", c.name, err)
		}
	}
	if _, err := ComputeTotal(nil, nil, nil, -1); !errors.Is(err, ErrInvalidLineItem) {
		t.Fatalf("negative delivery fee: expected ErrInvalidLineItem, got %v", err)
	}
}
