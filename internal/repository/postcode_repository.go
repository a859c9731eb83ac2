package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/huuhung7301/hubo-event/internal/pricing"
)

// PostcodeRepo reads the static postcode directory backing the
// delivery-fee computation.  It satisfies pricing.Directory: a missing
// postcode is reported through the ok flag, not an error, so the
// pricing function keeps its own failure taxonomy.
type PostcodeRepo struct {
	db *sql.DB
}

// NewPostcodeRepo returns a PostcodeRepo bound to the given database.
func NewPostcodeRepo(db *sql.DB) *PostcodeRepo { return &PostcodeRepo{db: db} }

// Lookup resolves a postcode to its registered coordinate and
// locality.
func (r *PostcodeRepo) Lookup(ctx context.Context, postcode string) (pricing.Location, bool, error) {
	const q = `SELECT latitude, longitude, locality FROM postcodes WHERE code = ?`
	var loc pricing.Location
	err := r.db.QueryRowContext(ctx, q, postcode).Scan(&loc.Latitude, &loc.Longitude, &loc.Locality)
	if errors.Is(err, sql.ErrNoRows) {
		return pricing.Location{}, false, nil
	}
	if err != nil {
		return pricing.Location{}, false, err
	}
	return loc, true, nil
}
