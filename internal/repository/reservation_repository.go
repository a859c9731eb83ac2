package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/huuhung7301/hubo-event/internal/model"
)

// ErrReservationNotFound is returned when a reservation id or
// idempotency key does not resolve to a row.
var ErrReservationNotFound = errors.New("reservation not found")

// ReservationRepo provides CRUD operations for reservations.  Line
// items, optional items and the extras blob are stored as JSON columns
// — prices inside them are locked at write time and never joined back
// to the live catalog.  All timestamps are stored in UTC.
type ReservationRepo struct {
	db *sql.DB
}

// NewReservationRepo returns a ReservationRepo bound to the given database.
func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

const reservationColumns = `id, work_id, user_id, customer_name, customer_email, customer_phone,
	notes, total_price, items, optional_items, reservation_date, postcode, extra, status,
	idempotency_key, created_at, updated_at`

// Create inserts a new reservation and populates the generated id and
// timestamps on the given record.  The caller sets status; the create
// path always passes PENDING.  A duplicate idempotency key maps to
// ErrConflict so the orchestrator can fall back to the earlier row.
func (r *ReservationRepo) Create(ctx context.Context, res *model.Reservation) error {
	items, optional, extra, err := marshalLineColumns(res)
	if err != nil {
		return err
	}
	const q = `INSERT INTO reservations
		(work_id, user_id, customer_name, customer_email, customer_phone, notes,
		 total_price, items, optional_items, reservation_date, postcode, extra, status, idempotency_key)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?)`
	result, err := r.db.ExecContext(ctx, q,
		res.WorkID, res.UserID, res.CustomerName, res.CustomerEmail, res.CustomerPhone, res.Notes,
		res.TotalPrice, items, optional, res.ReservationDate, res.Postcode, extra, res.Status,
		res.IdempotencyKey)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return ErrConflict
		}
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	res.ID = uint64(id)
	// Read the row back for DB-populated timestamps.
	stored, err := r.GetByID(ctx, res.ID)
	if err != nil {
		return err
	}
	res.CreatedAt, res.UpdatedAt = stored.CreatedAt, stored.UpdatedAt
	return nil
}

// ReservationUpdate carries the mutable fields of the update path.
// Items and optional items are passed through verbatim from the
// persisted reservation on the continuation branch; only the
// schedule, contacts, extras and total change.
type ReservationUpdate struct {
	Items           []model.LineItem
	OptionalItems   []model.LineItem
	ReservationDate *time.Time
	Postcode        *string
	CustomerName    *string
	CustomerEmail   *string
	CustomerPhone   *string
	Notes           *string
	Extra           model.ReservationExtra
	TotalPrice      float64
}

// Update rewrites a pending reservation.  Terminal rows (CANCELLED)
// and already-confirmed rows are immutable through this path and
// produce ErrConflict; a missing id produces ErrReservationNotFound.
func (r *ReservationRepo) Update(ctx context.Context, id uint64, upd ReservationUpdate) error {
	items, err := json.Marshal(orEmpty(upd.Items))
	if err != nil {
		return err
	}
	optional, err := json.Marshal(orEmpty(upd.OptionalItems))
	if err != nil {
		return err
	}
	extra, err := json.Marshal(upd.Extra)
	if err != nil {
		return err
	}
	const q = `UPDATE reservations
		SET items = ?, optional_items = ?, reservation_date = ?, postcode = ?,
		    customer_name = ?, customer_email = ?, customer_phone = ?, notes = ?,
		    extra = ?, total_price = ?
		WHERE id = ? AND status = ?`
	result, err := r.db.ExecContext(ctx, q,
		items, optional, upd.ReservationDate, upd.Postcode,
		upd.CustomerName, upd.CustomerEmail, upd.CustomerPhone, upd.Notes,
		extra, upd.TotalPrice, id, model.ReservationStatusPending)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// Distinguish a missing row from a non-pending one.
		var status string
		err := r.db.QueryRowContext(ctx, `SELECT status FROM reservations WHERE id = ?`, id).Scan(&status)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrReservationNotFound
		}
		if err != nil {
			return err
		}
		return ErrConflict
	}
	return nil
}

// UpdateStatus moves a reservation between PENDING, CONFIRMED and
// CANCELLED.  Status changes are manual (admin surface); nothing in
// the booking flow transitions status automatically.
func (r *ReservationRepo) UpdateStatus(ctx context.Context, id uint64, status string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE reservations SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrReservationNotFound
	}
	return nil
}

// GetByID returns a reservation by id, or ErrReservationNotFound.
func (r *ReservationRepo) GetByID(ctx context.Context, id uint64) (*model.Reservation, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+reservationColumns+` FROM reservations WHERE id = ?`, id)
	return scanReservation(row)
}

// FindByIdempotencyKey returns the reservation created under the given
// session token, or ErrReservationNotFound.
func (r *ReservationRepo) FindByIdempotencyKey(ctx context.Context, key string) (*model.Reservation, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+reservationColumns+` FROM reservations WHERE idempotency_key = ?`, key)
	return scanReservation(row)
}

// ReservationDates lists the reservation dates inside [from, to) for
// the availability aggregator.  Cancelled reservations do not occupy
// a slot and are excluded.
func (r *ReservationRepo) ReservationDates(ctx context.Context, from, to time.Time) ([]time.Time, error) {
	const q = `SELECT reservation_date FROM reservations
	           WHERE reservation_date IS NOT NULL
	             AND reservation_date >= ? AND reservation_date < ?
	             AND status <> ?`
	rows, err := r.db.QueryContext(ctx, q, from, to, model.ReservationStatusCancelled)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var dates []time.Time
	for rows.Next() {
		var d time.Time
		if err := rows.Scan(&d); err != nil {
			return nil, err
		}
		dates = append(dates, d)
	}
	return dates, rows.Err()
}

// CountForDate counts non-cancelled reservations on the given UTC
// calendar day.  The submission path uses it to re-check that a quoted
// date is still under the full threshold.
func (r *ReservationRepo) CountForDate(ctx context.Context, day time.Time) (int, error) {
	u := day.UTC()
	start := time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 1)
	const q = `SELECT COUNT(*) FROM reservations
	           WHERE reservation_date >= ? AND reservation_date < ? AND status <> ?`
	var n int
	err := r.db.QueryRowContext(ctx, q, start, end, model.ReservationStatusCancelled).Scan(&n)
	return n, err
}

// ListAll returns all reservations newest first, for the admin
// surface.
func (r *ReservationRepo) ListAll(ctx context.Context) ([]model.Reservation, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+reservationColumns+` FROM reservations ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	list := make([]model.Reservation, 0)
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *res)
	}
	return list, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanReservation(row rowScanner) (*model.Reservation, error) {
	var (
		res             model.Reservation
		userID          sql.NullInt64
		name            sql.NullString
		email           sql.NullString
		phone           sql.NullString
		notes           sql.NullString
		reservationDate sql.NullTime
		postcode        sql.NullString
		idempotencyKey  sql.NullString
		items           []byte
		optional        []byte
		extra           []byte
	)
	err := row.Scan(&res.ID, &res.WorkID, &userID, &name, &email, &phone,
		&notes, &res.TotalPrice, &items, &optional, &reservationDate, &postcode,
		&extra, &res.Status, &idempotencyKey, &res.CreatedAt, &res.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrReservationNotFound
	}
	if err != nil {
		return nil, err
	}
	if userID.Valid {
		uid := uint64(userID.Int64)
		res.UserID = &uid
	}
	res.CustomerName = nullableString(name)
	res.CustomerEmail = nullableString(email)
	res.CustomerPhone = nullableString(phone)
	res.Notes = nullableString(notes)
	res.Postcode = nullableString(postcode)
	res.IdempotencyKey = nullableString(idempotencyKey)
	if reservationDate.Valid {
		d := reservationDate.Time.UTC()
		res.ReservationDate = &d
	}
	if err := json.Unmarshal(items, &res.Items); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(optional, &res.OptionalItems); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(extra, &res.Extra); err != nil {
		return nil, err
	}
	return &res, nil
}

func marshalLineColumns(res *model.Reservation) (items, optional, extra []byte, err error) {
	if items, err = json.Marshal(orEmpty(res.Items)); err != nil {
		return nil, nil, nil, err
	}
	if optional, err = json.Marshal(orEmpty(res.OptionalItems)); err != nil {
		return nil, nil, nil, err
	}
	if extra, err = json.Marshal(res.Extra); err != nil {
		return nil, nil, nil, err
	}
	return items, optional, extra, nil
}

// orEmpty keeps JSON columns as [] rather than null.
func orEmpty(lines []model.LineItem) []model.LineItem {
	if lines == nil {
		return []model.LineItem{}
	}
	return lines
}

func nullableString(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}
