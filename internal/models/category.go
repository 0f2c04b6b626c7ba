// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// DefaultCategoryName is assigned to newly created categories until the
// editor renames them.
const DefaultCategoryName = "Untitled"

// Category is a node in the nested category tree. ParentID is nil for
// top-level categories. SortOrder is 1-based and contiguous within the
// set of siblings sharing the same ParentID; the ordering service is the
// only writer that may change it.
type Category struct {
	ID        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	ParentID  *uuid.UUID `json:"parent_id"`
	SortOrder int        `json:"sort_order"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`

	// Virtual fields populated by the tree materializer.
	Children  []Category `json:"children,omitempty"`
	Depth     int        `json:"depth"`
	PostCount int        `json:"post_count"`
}

// IsRoot returns true for top-level categories.
func (c Category) IsRoot() bool {
	return c.ParentID == nil
}
