package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/huuhung7301/hubo-event/internal/model"
)

// ErrWorkNotFound is returned when a work id does not resolve to a row.
var ErrWorkNotFound = errors.New("work not found")

// WorkRepo manages curated decoration packages and their item
// compositions.
type WorkRepo struct {
	db *sql.DB
}

// NewWorkRepo returns a WorkRepo bound to the given database.
func NewWorkRepo(db *sql.DB) *WorkRepo { return &WorkRepo{db: db} }

// ListWorks returns all curated works with their categories and item
// lines.  The sentinel custom work (id 0) is excluded from browsing.
func (r *WorkRepo) ListWorks(ctx context.Context) ([]model.Work, error) {
	const q = `SELECT id, title, image_url, notes, created_at, updated_at
	           FROM works WHERE id <> 0 ORDER BY id`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	works := make([]model.Work, 0)
	index := make(map[uint64]int)
	for rows.Next() {
		var w model.Work
		var notes sql.NullString
		if err := rows.Scan(&w.ID, &w.Title, &w.ImageURL, &notes, &w.CreatedAt, &w.UpdatedAt); err != nil {
			return nil, err
		}
		if notes.Valid {
			n := notes.String
			w.Notes = &n
		}
		w.Categories = []string{}
		w.Items = []model.WorkLine{}
		w.OptionalItems = []model.WorkLine{}
		index[w.ID] = len(works)
		works = append(works, w)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(works) == 0 {
		return works, nil
	}

	ids := make([]interface{}, 0, len(works))
	placeholders := make([]string, 0, len(works))
	for _, w := range works {
		ids = append(ids, w.ID)
		placeholders = append(placeholders, "?")
	}
	in := strings.Join(placeholders, ",")

	// Categories for all works in one query.
	catQ := `SELECT wc.work_id, c.name
	         FROM work_categories wc
	         JOIN categories c ON c.id = wc.category_id
	         WHERE wc.work_id IN (` + in + `)
	         ORDER BY wc.work_id, c.name`
	crows, err := r.db.QueryContext(ctx, catQ, ids...)
	if err != nil {
		return nil, err
	}
	defer crows.Close()
	for crows.Next() {
		var wid uint64
		var name string
		if err := crows.Scan(&wid, &name); err != nil {
			return nil, err
		}
		if i, ok := index[wid]; ok {
			works[i].Categories = append(works[i].Categories, name)
		}
	}
	if err := crows.Err(); err != nil {
		return nil, err
	}

	// Item lines, required and optional, in one query each.
	for _, tbl := range []struct {
		table    string
		optional bool
	}{
		{"work_items", false},
		{"work_optional_items", true},
	} {
		lineQ := `SELECT wl.work_id, i.` + "`key`" + `, i.name, i.base_price, wl.quantity
		          FROM ` + tbl.table + ` wl
		          JOIN items i ON i.id = wl.item_id
		          WHERE wl.work_id IN (` + in + `)
		          ORDER BY wl.work_id, i.name`
		lrows, err := r.db.QueryContext(ctx, lineQ, ids...)
		if err != nil {
			return nil, err
		}
		for lrows.Next() {
			var wid uint64
			var line model.WorkLine
			if err := lrows.Scan(&wid, &line.Key, &line.Name, &line.Price, &line.Quantity); err != nil {
				lrows.Close()
				return nil, err
			}
			if i, ok := index[wid]; ok {
				if tbl.optional {
					works[i].OptionalItems = append(works[i].OptionalItems, line)
				} else {
					works[i].Items = append(works[i].Items, line)
				}
			}
		}
		if err := lrows.Err(); err != nil {
			lrows.Close()
			return nil, err
		}
		lrows.Close()
	}
	return works, nil
}

// WorkLineInput references an item by catalog key when composing a
// work.
type WorkLineInput struct {
	Key      string
	Quantity int
}

// CreateWorkInput carries everything needed to create a curated work.
type CreateWorkInput struct {
	Title         string
	ImageURL      string
	Notes         *string
	Categories    []string
	Items         []WorkLineInput
	OptionalItems []WorkLineInput
}

// CreateWork inserts a work with its categories and item lines in one
// transaction.  Categories are created on first use; every referenced
// item key must exist or the whole insert fails with ErrItemNotFound.
func (r *WorkRepo) CreateWork(ctx context.Context, in CreateWorkInput) (uint64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	// Resolve every referenced item key up front.
	itemIDs, err := resolveItemKeysTx(ctx, tx, append(keysOf(in.Items), keysOf(in.OptionalItems)...))
	if err != nil {
		return 0, err
	}

	result, err := tx.ExecContext(ctx,
		`INSERT INTO works (title, image_url, notes) VALUES (?,?,?)`,
		in.Title, in.ImageURL, in.Notes)
	if err != nil {
		return 0, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, err
	}
	workID := uint64(id)

	for _, name := range in.Categories {
		var catID uint64
		err := tx.QueryRowContext(ctx, `SELECT id FROM categories WHERE name = ?`, name).Scan(&catID)
		if errors.Is(err, sql.ErrNoRows) {
			res, err := tx.ExecContext(ctx, `INSERT INTO categories (name) VALUES (?)`, name)
			if err != nil {
				return 0, err
			}
			newID, err := res.LastInsertId()
			if err != nil {
				return 0, err
			}
			catID = uint64(newID)
		} else if err != nil {
			return 0, err
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO work_categories (work_id, category_id) VALUES (?,?)`, workID, catID); err != nil {
			return 0, err
		}
	}

	if err := insertWorkLinesTx(ctx, tx, "work_items", workID, in.Items, itemIDs); err != nil {
		return 0, err
	}
	if err := insertWorkLinesTx(ctx, tx, "work_optional_items", workID, in.OptionalItems, itemIDs); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	committed = true
	return workID, nil
}

func keysOf(lines []WorkLineInput) []string {
	keys := make([]string, 0, len(lines))
	for _, l := range lines {
		keys = append(keys, l.Key)
	}
	return keys
}

func resolveItemKeysTx(ctx context.Context, tx *sql.Tx, keys []string) (map[string]uint64, error) {
	ids := make(map[string]uint64, len(keys))
	if len(keys) == 0 {
		return ids, nil
	}
	placeholders := make([]string, 0, len(keys))
	args := make([]interface{}, 0, len(keys))
	for _, k := range keys {
		placeholders = append(placeholders, "?")
		args = append(args, k)
	}
	q := "SELECT `key`, id FROM items WHERE `key` IN (" + strings.Join(placeholders, ",") + ")"
	rows, err := tx.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var key string
		var id uint64
		if err := rows.Scan(&key, &id); err != nil {
			return nil, err
		}
		ids[key] = id
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, k := range keys {
		if _, ok := ids[k]; !ok {
			return nil, fmt.Errorf("%w: %q", ErrItemNotFound, k)
		}
	}
	return ids, nil
}

func insertWorkLinesTx(ctx context.Context, tx *sql.Tx, table string, workID uint64, lines []WorkLineInput, itemIDs map[string]uint64) error {
	if len(lines) == 0 {
		return nil
	}
	q := `INSERT INTO ` + table + ` (work_id, item_id, quantity) VALUES `
	args := make([]interface{}, 0, len(lines)*3)
	for i, l := range lines {
		if i > 0 {
			q += ","
		}
		q += "(?,?,?)"
		qty := l.Quantity
		if qty < 1 {
			qty = 1
		}
		args = append(args, workID, itemIDs[l.Key], qty)
	}
	_, err := tx.ExecContext(ctx, q, args...)
	return err
}
