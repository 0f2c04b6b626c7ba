// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"inkpress/internal/models"
)

// CategoryStore manages categories in the database. It implements
// categories.Store, so the ordering service runs directly against it.
type CategoryStore struct {
	db *sql.DB
}

// NewCategoryStore returns a new CategoryStore.
func NewCategoryStore(db *sql.DB) *CategoryStore {
	return &CategoryStore{db: db}
}

const categoryColumns = `id, name, parent_id, sort_order, created_at, updated_at`

// scanCategory scans a row into a Category struct.
func scanCategory(scanner interface{ Scan(...any) error }) (*models.Category, error) {
	var c models.Category
	err := scanner.Scan(&c.ID, &c.Name, &c.ParentID, &c.SortOrder, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// List returns all categories sorted by parent group and sort order.
func (s *CategoryStore) List() ([]models.Category, error) {
	rows, err := s.db.Query(`
		SELECT ` + categoryColumns + `
		FROM categories
		ORDER BY parent_id NULLS FIRST, sort_order
	`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var items []models.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		items = append(items, *c)
	}
	return items, rows.Err()
}

// ListWithPostCounts returns all categories with the number of published
// posts attached to each. Used by the admin editor and the public sidebar.
func (s *CategoryStore) ListWithPostCounts() ([]models.Category, error) {
	rows, err := s.db.Query(`
		SELECT c.id, c.name, c.parent_id, c.sort_order, c.created_at, c.updated_at,
		       COUNT(p.id) FILTER (WHERE p.status = 'published') AS post_count
		FROM categories c
		LEFT JOIN posts p ON p.category_id = c.id
		GROUP BY c.id
		ORDER BY c.parent_id NULLS FIRST, c.sort_order
	`)
	if err != nil {
		return nil, fmt.Errorf("list categories with counts: %w", err)
	}
	defer rows.Close()

	var items []models.Category
	for rows.Next() {
		var c models.Category
		err := rows.Scan(&c.ID, &c.Name, &c.ParentID, &c.SortOrder,
			&c.CreatedAt, &c.UpdatedAt, &c.PostCount)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		items = append(items, c)
	}
	return items, rows.Err()
}

// FindByID retrieves a category by ID. Returns nil if not found.
func (s *CategoryStore) FindByID(id uuid.UUID) (*models.Category, error) {
	row := s.db.QueryRow(`SELECT `+categoryColumns+` FROM categories WHERE id = $1`, id)
	c, err := scanCategory(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find category by id: %w", err)
	}
	return c, nil
}

// FindByOrder retrieves the sibling occupying a sort-order slot within a
// parent group. Returns nil if the slot is empty.
func (s *CategoryStore) FindByOrder(parentID *uuid.UUID, order int) (*models.Category, error) {
	var row *sql.Row
	if parentID == nil {
		row = s.db.QueryRow(`
			SELECT `+categoryColumns+` FROM categories
			WHERE parent_id IS NULL AND sort_order = $1`, order)
	} else {
		row = s.db.QueryRow(`
			SELECT `+categoryColumns+` FROM categories
			WHERE parent_id = $1 AND sort_order = $2`, *parentID, order)
	}
	c, err := scanCategory(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find category by order: %w", err)
	}
	return c, nil
}

// MaxOrder returns the highest sort_order within a parent group, or 0
// when the group has no members.
func (s *CategoryStore) MaxOrder(parentID *uuid.UUID) (int, error) {
	var max int
	var err error
	if parentID == nil {
		err = s.db.QueryRow(`
			SELECT COALESCE(MAX(sort_order), 0) FROM categories
			WHERE parent_id IS NULL`).Scan(&max)
	} else {
		err = s.db.QueryRow(`
			SELECT COALESCE(MAX(sort_order), 0) FROM categories
			WHERE parent_id = $1`, *parentID).Scan(&max)
	}
	if err != nil {
		return 0, fmt.Errorf("max sort order: %w", err)
	}
	return max, nil
}

// ShiftOrders adds delta to the sort_order of every sibling in the parent
// group at or past fromOrder. One UPDATE covers the whole group, which is
// the store's bulk increment primitive.
func (s *CategoryStore) ShiftOrders(parentID *uuid.UUID, fromOrder, delta int) error {
	var err error
	if parentID == nil {
		_, err = s.db.Exec(`
			UPDATE categories SET sort_order = sort_order + $1, updated_at = NOW()
			WHERE parent_id IS NULL AND sort_order >= $2`, delta, fromOrder)
	} else {
		_, err = s.db.Exec(`
			UPDATE categories SET sort_order = sort_order + $1, updated_at = NOW()
			WHERE parent_id = $2 AND sort_order >= $3`, delta, *parentID, fromOrder)
	}
	if err != nil {
		return fmt.Errorf("shift sort orders: %w", err)
	}
	return nil
}

// Create inserts a new category and returns it with its assigned id.
func (s *CategoryStore) Create(c *models.Category) (*models.Category, error) {
	row := s.db.QueryRow(`
		INSERT INTO categories (name, parent_id, sort_order)
		VALUES ($1, $2, $3)
		RETURNING `+categoryColumns,
		c.Name, c.ParentID, c.SortOrder,
	)
	result, err := scanCategory(row)
	if err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	return result, nil
}

// UpdateName changes a category's display name.
func (s *CategoryStore) UpdateName(id uuid.UUID, name string) error {
	_, err := s.db.Exec(`
		UPDATE categories SET name = $1, updated_at = NOW() WHERE id = $2
	`, name, id)
	if err != nil {
		return fmt.Errorf("update category name: %w", err)
	}
	return nil
}

// UpdateOrder changes a category's sort order in place.
func (s *CategoryStore) UpdateOrder(id uuid.UUID, order int) error {
	_, err := s.db.Exec(`
		UPDATE categories SET sort_order = $1, updated_at = NOW() WHERE id = $2
	`, order, id)
	if err != nil {
		return fmt.Errorf("update category order: %w", err)
	}
	return nil
}

// Delete removes a single category row. Posts referencing it are
// re-pointed to NULL by the schema; subtree order bookkeeping is the
// ordering service's job, not the store's.
func (s *CategoryStore) Delete(id uuid.UUID) error {
	_, err := s.db.Exec(`DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	return nil
}
