// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package categories implements the nested-category ordering engine: a
// service that applies a closed set of mutation actions against a
// category store while keeping per-parent sort orders contiguous, and a
// pure materializer that turns the flat category list into a tree.
package categories

import (
	"github.com/google/uuid"

	"inkpress/internal/models"
)

// Store is the persistence contract the ordering service runs against.
// store.CategoryStore implements it on PostgreSQL; MemStore implements it
// in memory for tests.
//
// Lookup methods return (nil, nil) when no row matches. parentID is nil
// for the root sibling group throughout.
type Store interface {
	// List returns every category, sorted by parent group and then
	// ascending sort order.
	List() ([]models.Category, error)

	// FindByID returns a single category, or nil if the id is unknown.
	FindByID(id uuid.UUID) (*models.Category, error)

	// FindByOrder returns the sibling at the given sort order within a
	// parent group, or nil if that slot is empty.
	FindByOrder(parentID *uuid.UUID, order int) (*models.Category, error)

	// MaxOrder returns the highest sort order in a parent group, or 0
	// when the group is empty.
	MaxOrder(parentID *uuid.UUID) (int, error)

	// ShiftOrders adds delta to the sort order of every sibling in the
	// parent group whose sort order is >= fromOrder.
	ShiftOrders(parentID *uuid.UUID, fromOrder, delta int) error

	// Create inserts a category with the given name, parent, and sort
	// order, returning the stored row with its assigned id.
	Create(c *models.Category) (*models.Category, error)

	// UpdateName changes a category's display name.
	UpdateName(id uuid.UUID, name string) error

	// UpdateOrder changes a category's sort order in place.
	UpdateOrder(id uuid.UUID, order int) error

	// Delete removes a single category row. It does not cascade; the
	// service walks the subtree itself.
	Delete(id uuid.UUID) error
}
