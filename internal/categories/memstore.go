// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package categories

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"inkpress/internal/models"
)

// MemStore is an in-memory Store used by the ordering-service unit tests
// and by handler tests that don't need PostgreSQL. It mirrors the SQL
// store's contract, including (nil, nil) for missing rows.
type MemStore struct {
	mu   sync.Mutex
	rows map[uuid.UUID]models.Category
}

// NewMemStore returns an empty in-memory category store.
func NewMemStore() *MemStore {
	return &MemStore{rows: make(map[uuid.UUID]models.Category)}
}

// List returns all categories sorted by parent group and sort order.
func (m *MemStore) List() ([]models.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]models.Category, 0, len(m.rows))
	for _, c := range m.rows {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		pi, pj := parentKey(out[i].ParentID), parentKey(out[j].ParentID)
		if pi != pj {
			return pi < pj
		}
		return out[i].SortOrder < out[j].SortOrder
	})
	return out, nil
}

// FindByID returns a copy of the category, or nil if absent.
func (m *MemStore) FindByID(id uuid.UUID) (*models.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.rows[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

// FindByOrder returns the sibling at the given order slot, or nil.
func (m *MemStore) FindByOrder(parentID *uuid.UUID, order int) (*models.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, c := range m.rows {
		if sameParent(c.ParentID, parentID) && c.SortOrder == order {
			row := c
			return &row, nil
		}
	}
	return nil, nil
}

// MaxOrder returns the highest sort order in a parent group, 0 if empty.
func (m *MemStore) MaxOrder(parentID *uuid.UUID) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	max := 0
	for _, c := range m.rows {
		if sameParent(c.ParentID, parentID) && c.SortOrder > max {
			max = c.SortOrder
		}
	}
	return max, nil
}

// ShiftOrders adds delta to every sibling at or past fromOrder.
func (m *MemStore) ShiftOrders(parentID *uuid.UUID, fromOrder, delta int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, c := range m.rows {
		if sameParent(c.ParentID, parentID) && c.SortOrder >= fromOrder {
			c.SortOrder += delta
			c.UpdatedAt = time.Now()
			m.rows[id] = c
		}
	}
	return nil
}

// Create assigns an id and stores the category, returning the stored copy.
func (m *MemStore) Create(c *models.Category) (*models.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	row := *c
	row.ID = uuid.New()
	row.CreatedAt = now
	row.UpdatedAt = now
	if row.ParentID != nil {
		pid := *row.ParentID
		row.ParentID = &pid
	}
	m.rows[row.ID] = row
	return &row, nil
}

// UpdateName changes a category's name.
func (m *MemStore) UpdateName(id uuid.UUID, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.rows[id]
	if !ok {
		return nil
	}
	c.Name = name
	c.UpdatedAt = time.Now()
	m.rows[id] = c
	return nil
}

// UpdateOrder changes a category's sort order.
func (m *MemStore) UpdateOrder(id uuid.UUID, order int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.rows[id]
	if !ok {
		return nil
	}
	c.SortOrder = order
	c.UpdatedAt = time.Now()
	m.rows[id] = c
	return nil
}

// Delete removes a single row.
func (m *MemStore) Delete(id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.rows, id)
	return nil
}

// sameParent compares two parent pointers (both nil, or same value).
func sameParent(a, b *uuid.UUID) bool {
	if a == nil && b == nil {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	return *a == *b
}

// parentKey collapses a parent pointer into a sortable string.
func parentKey(p *uuid.UUID) string {
	if p == nil {
		return ""
	}
	return p.String()
}
