// Package repository implements persistence over MySQL for the
// catalog, curated works, the postcode directory, reservations and
// user accounts.  Sentinel errors defined here are shared across
// repositories so handlers can translate failure scenarios to HTTP
// statuses with errors.Is.
package repository

import "errors"

// ErrForbidden is returned when the caller attempts an operation on a
// resource owned by someone else.  Handlers translate this to 403.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when a write cannot proceed because of the
// record's current state, such as updating a reservation that has
// already been cancelled.  Handlers translate this to 409.
var ErrConflict = errors.New("conflict")
