package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/huuhung7301/hubo-event/internal/model"
)

// ErrItemNotFound is returned when a catalog key does not resolve to
// an item.
var ErrItemNotFound = errors.New("item not found")

// ItemRepo is the catalog store: item categories and the rentable
// items the wizard and the works reference by key.
type ItemRepo struct {
	db *sql.DB
}

// NewItemRepo returns an ItemRepo bound to the given database.
func NewItemRepo(db *sql.DB) *ItemRepo { return &ItemRepo{db: db} }

// ListCategories returns all item categories in slot order.
func (r *ItemRepo) ListCategories(ctx context.Context) ([]model.ItemCategory, error) {
	const q = `SELECT id, name, slot_mode FROM item_categories ORDER BY id`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	cats := make([]model.ItemCategory, 0)
	for rows.Next() {
		var c model.ItemCategory
		if err := rows.Scan(&c.ID, &c.Name, &c.SlotMode); err != nil {
			return nil, err
		}
		cats = append(cats, c)
	}
	return cats, rows.Err()
}

// ListItems returns catalog items, optionally filtered by a keyword
// (matched against name and key) and/or a category id.  Results are
// ordered by name.
func (r *ItemRepo) ListItems(ctx context.Context, keyword string, categoryID uint64) ([]model.Item, error) {
	q := `SELECT id, ` + "`key`" + `, name, base_price, unit, image_url, category_id, created_at, updated_at
	      FROM items`
	var (
		conds []string
		args  []interface{}
	)
	if keyword = strings.TrimSpace(keyword); keyword != "" {
		conds = append(conds, "(name LIKE ? OR `key` LIKE ?)")
		like := "%" + keyword + "%"
		args = append(args, like, like)
	}
	if categoryID != 0 {
		conds = append(conds, "category_id = ?")
		args = append(args, categoryID)
	}
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY name"

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := make([]model.Item, 0)
	for rows.Next() {
		var it model.Item
		if err := rows.Scan(&it.ID, &it.Key, &it.Name, &it.BasePrice, &it.Unit,
			&it.ImageURL, &it.CategoryID, &it.CreatedAt, &it.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// GetByKey returns the item with the given catalog key, or
// ErrItemNotFound.
func (r *ItemRepo) GetByKey(ctx context.Context, key string) (*model.Item, error) {
	const q = `SELECT id, ` + "`key`" + `, name, base_price, unit, image_url, category_id, created_at, updated_at
	           FROM items WHERE ` + "`key`" + ` = ?`
	var it model.Item
	err := r.db.QueryRowContext(ctx, q, key).Scan(&it.ID, &it.Key, &it.Name, &it.BasePrice,
		&it.Unit, &it.ImageURL, &it.CategoryID, &it.CreatedAt, &it.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrItemNotFound
	}
	if err != nil {
		return nil, err
	}
	return &it, nil
}

// SelectionItemsByCategory returns the items of a named category in
// the shape the wizard's selection slots consume.
func (r *ItemRepo) SelectionItemsByCategory(ctx context.Context, category string) ([]model.SelectionItem, error) {
	const q = `SELECT i.id, i.` + "`key`" + `, i.name, c.name, i.base_price, i.image_url
	           FROM items i
	           JOIN item_categories c ON c.id = i.category_id
	           WHERE c.name = ?
	           ORDER BY i.name`
	rows, err := r.db.QueryContext(ctx, q, category)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := make([]model.SelectionItem, 0)
	for rows.Next() {
		var s model.SelectionItem
		if err := rows.Scan(&s.ID, &s.Key, &s.Title, &s.Category, &s.Price, &s.ImageURL); err != nil {
			return nil, err
		}
		items = append(items, s)
	}
	return items, rows.Err()
}

// Create inserts a new catalog item and populates its generated id.
// A duplicate key maps to ErrConflict.
func (r *ItemRepo) Create(ctx context.Context, it *model.Item) error {
	const q = "INSERT INTO items (`key`, name, base_price, unit, image_url, category_id) VALUES (?,?,?,?,?,?)"
	res, err := r.db.ExecContext(ctx, q, it.Key, it.Name, it.BasePrice, it.Unit, it.ImageURL, it.CategoryID)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return ErrConflict
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	it.ID = uint64(id)
	return nil
}
