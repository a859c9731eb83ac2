// Package pricing implements the two pure pricing computations of the
// reservation flow: the distance-tiered delivery fee and the total
// price aggregation.  Both are deliberately free of side effects so
// the quote shown in the wizard and the amount persisted at submission
// time cannot diverge.
package pricing

import (
	"context"
	"errors"
	"fmt"
	"math"
)

// Delivery fee tiers in whole dollars.  Upper bounds are inclusive;
// distances beyond the last tier are out of the service area.
const (
	nearTierKm  = 10.0
	nearTierFee = 50.0

	midTierKm  = 20.0
	midTierFee = 80.0

	farTierKm  = 50.0
	farTierFee = 150.0
)

// earthRadiusKm is the mean Earth radius used by the haversine formula.
const earthRadiusKm = 6371.0

// PostcodeLength is the number of digits a complete postcode has.
const PostcodeLength = 4

var (
	// ErrPostcodeIncomplete signals that the postcode is not yet a full
	// 4-digit code.  It is not a failure: the caller should treat the
	// input as "not ready to price" and keep the field editable.
	ErrPostcodeIncomplete = errors.New("pricing: postcode incomplete")

	// ErrPostcodeNotFound signals that a well-formed postcode has no
	// entry in the directory.
	ErrPostcodeNotFound = errors.New("pricing: postcode not found")
)

// OutOfServiceAreaError is returned when the computed distance exceeds
// the last delivery tier.  It carries the distance so the caller can
// show it to the customer.
type OutOfServiceAreaError struct {
	DistanceKm float64
}

func (e *OutOfServiceAreaError) Error() string {
	return fmt.Sprintf("pricing: %.1f km is outside the service area", e.DistanceKm)
}

// Location is a resolved postcode coordinate.
type Location struct {
	Latitude  float64
	Longitude float64
	Locality  string
}

// Directory resolves a postcode to its registered coordinate.  The
// second return value reports whether the postcode exists; err is
// reserved for lookup infrastructure failures.
type Directory interface {
	Lookup(ctx context.Context, postcode string) (Location, bool, error)
}

// DeliveryQuote is a successfully priced delivery.
type DeliveryQuote struct {
	Fee        float64 `json:"fee"`
	Locality   string  `json:"locality"`
	DistanceKm float64 `json:"distance_km"`
}

// ComputeDeliveryFee prices delivery for a postcode against the fixed
// warehouse coordinate.  Incomplete postcodes return
// ErrPostcodeIncomplete, unknown ones ErrPostcodeNotFound, and
// distances beyond the last tier an *OutOfServiceAreaError.
func ComputeDeliveryFee(ctx context.Context, postcode string, warehouse Location, dir Directory) (DeliveryQuote, error) {
	if len(postcode) != PostcodeLength || !allDigits(postcode) {
		return DeliveryQuote{}, ErrPostcodeIncomplete
	}
	loc, ok, err := dir.Lookup(ctx, postcode)
	if err != nil {
		return DeliveryQuote{}, err
	}
	if !ok {
		return DeliveryQuote{}, ErrPostcodeNotFound
	}
	dist := HaversineKm(warehouse.Latitude, warehouse.Longitude, loc.Latitude, loc.Longitude)
	fee, ok := feeForDistance(dist)
	if !ok {
		return DeliveryQuote{}, &OutOfServiceAreaError{DistanceKm: dist}
	}
	return DeliveryQuote{Fee: fee, Locality: loc.Locality, DistanceKm: dist}, nil
}

// feeForDistance maps a distance to its fee tier.  ok is false beyond
// the last tier.
func feeForDistance(km float64) (float64, bool) {
	switch {
	case km <= nearTierKm:
		return nearTierFee, true
	case km <= midTierKm:
		return midTierFee, true
	case km <= farTierKm:
		return farTierFee, true
	default:
		return 0, false
	}
}

// HaversineKm returns the great-circle distance in kilometers between
// two coordinates.
func HaversineKm(lat1, lng1, lat2, lng2 float64) float64 {
	const degToRad = math.Pi / 180.0
	dLat := (lat2 - lat1) * degToRad
	dLng := (lng2 - lng1) * degToRad
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*degToRad)*math.Cos(lat2*degToRad)*
			math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusKm * math.Asin(math.Sqrt(a))
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
