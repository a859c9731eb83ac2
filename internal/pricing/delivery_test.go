package pricing

import (
	"context"
	"errors"
	"math"
	"testing"
)

type fakeDirectory map[string]Location

func (d fakeDirectory) Lookup(_ context.Context, postcode string) (Location, bool, error) {
	loc, ok := d[postcode]
	return loc, ok, nil
}

type failingDirectory struct{ err error }

func (d failingDirectory) Lookup(context.Context, string) (Location, bool, error) {
	return Location{}, false, d.err
}

// latitudeOffsetForKm returns the latitude delta (in degrees) that
// places a point exactly km kilometers due north of the warehouse.
func latitudeOffsetForKm(km float64) float64 {
	return km / earthRadiusKm * 180 / math.Pi
}

func TestFeeForDistanceTiers(t *testing.T) {
	cases := []struct {
		km      float64
		fee     float64
		inRange bool
	}{
		{0, 50, true},
		{10, 50, true},
		{10.01, 80, true},
		{20, 80, true},
		{20.01, 150, true},
		{50, 150, true},
		{50.01, 0, false},
		{120, 0, false},
	}
	for _, c := range cases {
		fee, ok := feeForDistance(c.km)
		if ok != c.inRange {
			t.Fatalf("feeForDistance(%v): in range = %v, want %v", c.km, ok, c.inRange)
		}
		if fee != c.fee {
			t.Fatalf("feeForDistance(%v) = %v, want %v", c.km, fee, c.fee)
		}
	}
}

func TestComputeDeliveryFee(t *testing.T) {
	warehouse := Location{Latitude: -33.8688, Longitude: 151.2093}
	dir := fakeDirectory{
		"2000": {Latitude: warehouse.Latitude, Longitude: warehouse.Longitude, Locality: "Sydney"},
		"2100": {Latitude: warehouse.Latitude + latitudeOffsetForKm(8), Longitude: warehouse.Longitude, Locality: "Brookvale"},
		"2200": {Latitude: warehouse.Latitude + latitudeOffsetForKm(15), Longitude: warehouse.Longitude, Locality: "Bankstown"},
		"2300": {Latitude: warehouse.Latitude + latitudeOffsetForKm(35), Longitude: warehouse.Longitude, Locality: "Newcastle"},
		"2800": {Latitude: warehouse.Latitude + latitudeOffsetForKm(240), Longitude: warehouse.Longitude, Locality: "Orange"},
	}

	cases := []struct {
		postcode string
		fee      float64
		locality string
	}{
		{"2000", 50, "Sydney"},
		{"2100", 50, "Brookvale"},
		{"2200", 80, "Bankstown"},
		{"2300", 150, "Newcastle"},
	}
	for _, c := range cases {
		q, err := ComputeDeliveryFee(context.Background(), c.postcode, warehouse, dir)
		if err != nil {
			t.Fatalf("ComputeDeliveryFee(%s): unexpected error %v", c.postcode, err)
		}
		if q.Fee != c.fee {
			t.Fatalf("ComputeDeliveryFee(%s): fee = %v, want %v", c.postcode, q.Fee, c.fee)
		}
		if q.Locality != c.locality {
			t.Fatalf("ComputeDeliveryFee(%s): locality = %q, want %q", c.postcode, q.Locality, c.locality)
		}
	}
}

func TestComputeDeliveryFeeOutOfServiceArea(t *testing.T) {
	warehouse := Location{}
	dir := fakeDirectory{
		"2800": {Latitude: latitudeOffsetForKm(240), Locality: "Orange"},
	}
	_, err := ComputeDeliveryFee(context.Background(), "2800", warehouse, dir)
	var oos *OutOfServiceAreaError
	if !errors.As(err, &oos) {
		t.Fatalf("expected OutOfServiceAreaError, got %v", err)
	}
	if oos.DistanceKm < 239 || oos.DistanceKm > 241 {
		t.Fatalf("unexpected carried distance %v", oos.DistanceKm)
	}
}

func TestComputeDeliveryFeeIncompletePostcode(t *testing.T) {
	dir := fakeDirectory{"2000": {Locality: "Sydney"}}
	for _, code := range []string{"", "2", "20", "200", "20000", "2o00"} {
		_, err := ComputeDeliveryFee(context.Background(), code, Location{}, dir)
		if !errors.Is(err, ErrPostcodeIncomplete) {
			t.Fatalf("postcode %q: expected ErrPostcodeIncomplete, got %v", code, err)
		}
	}
}

func TestComputeDeliveryFeeUnknownPostcode(t *testing.T) {
	_, err := ComputeDeliveryFee(context.Background(), "9999", Location{}, fakeDirectory{})
	if !errors.Is(err, ErrPostcodeNotFound) {
		t.Fatalf("expected ErrPostcodeNotFound, got %v", err)
	}
}

func TestComputeDeliveryFeeDirectoryFailure(t *testing.T) {
	boom := errors.New("directory down")
	_, err := ComputeDeliveryFee(context.Background(), "2000", Location{}, failingDirectory{err: boom})
	if !errors.Is(err, boom) {
		t.Fatalf("expected directory error to propagate, got %v", err)
	}
}

func TestHaversineKm(t *testing.T) {
	// Sydney CBD to Parramatta is roughly 20 km.
	d := HaversineKm(-33.8688, 151.2093, -33.8150, 151.0011)
	if d < 18 || d > 22 {
		t.Fatalf("Sydney-Parramatta distance = %v, want roughly 20", d)
	}
	if z := HaversineKm(-33.8688, 151.2093, -33.8688, 151.2093); z != 0 {
		t.Fatalf("identical coordinates should be 0 km apart, got %v", z)
	}
}
