// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package categories

import (
	"sort"

	"github.com/google/uuid"

	"inkpress/internal/models"
)

// BuildTree converts the flat category list into a forest, children
// sorted by ascending sort order and Depth set for display.
//
// It is deliberately permissive: a category whose parent_id references a
// nonexistent id becomes an extra root rather than an error. Writes keep
// the tree consistent; reads never reject what they find.
func BuildTree(flat []models.Category) []models.Category {
	present := make(map[uuid.UUID]bool, len(flat))
	for _, c := range flat {
		present[c.ID] = true
	}

	byParent := make(map[uuid.UUID][]models.Category)
	var roots []models.Category
	for _, c := range flat {
		if c.ParentID == nil || !present[*c.ParentID] {
			roots = append(roots, c)
			continue
		}
		byParent[*c.ParentID] = append(byParent[*c.ParentID], c)
	}

	sortSiblings(roots)
	return attach(roots, byParent, 0)
}

// attach recursively fills in Children and Depth for one sibling level.
func attach(siblings []models.Category, byParent map[uuid.UUID][]models.Category, depth int) []models.Category {
	out := make([]models.Category, 0, len(siblings))
	for _, c := range siblings {
		c.Depth = depth
		kids := byParent[c.ID]
		sortSiblings(kids)
		c.Children = attach(kids, byParent, depth+1)
		out = append(out, c)
	}
	return out
}

// sortSiblings orders one sibling group by sort order. Stable so that
// duplicate orders (possible after a lost-update race) keep a
// deterministic display order.
func sortSiblings(cats []models.Category) {
	sort.SliceStable(cats, func(i, j int) bool {
		return cats[i].SortOrder < cats[j].SortOrder
	})
}

// Flatten walks a forest depth-first into a single list, preserving the
// Depth values set by BuildTree. Used for indented <select> dropdowns.
func Flatten(tree []models.Category) []models.Category {
	var out []models.Category
	var walk func([]models.Category)
	walk = func(cats []models.Category) {
		for _, c := range cats {
			node := c
			node.Children = nil
			out = append(out, node)
			walk(c.Children)
		}
	}
	walk(tree)
	return out
}
