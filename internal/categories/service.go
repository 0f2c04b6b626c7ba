// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package categories

import (
	"fmt"

	"github.com/google/uuid"

	"inkpress/internal/models"
)

// Action names as they appear on the wire. The client tree editor sends
// these in the POST /api/categories envelope.
const (
	ActionRename    = "input"
	ActionAddFirst  = "addFirst"
	ActionAddAfter  = "add"
	ActionAddNested = "addNested"
	ActionDelete    = "delete"
	ActionMoveUp    = "up"
	ActionMoveDown  = "down"
)

// Request is a single decoded mutation action. Which pointer fields must
// be set depends on Action; Apply validates them before touching the store.
type Request struct {
	Action string
	ID     *uuid.UUID // rename, delete, up, down
	Value  *string    // rename
	After  *uuid.UUID // add (insert after this sibling)
	Nested *uuid.UUID // addNested (insert as child of this category)
}

// Result is the uniform success envelope. NewID is set for the three
// creation actions so the client can reconcile its temporary id.
type Result struct {
	Message string     `json:"message"`
	NewID   *uuid.UUID `json:"newId,omitempty"`
}

// Messages holds the user-facing strings the service embeds in results
// and errors. Injected at construction so the service can be tested and
// localized without global state.
type Messages struct {
	Success       string
	NotFound      string
	InvalidInput  string
	UnknownAction string
	AlreadyTop    string
	AlreadyBottom string
}

// DefaultMessages returns the built-in English message set.
func DefaultMessages() Messages {
	return Messages{
		Success:       "Success",
		NotFound:      "category not found",
		InvalidInput:  "missing or malformed field",
		UnknownAction: "unknown action",
		AlreadyTop:    "already at top",
		AlreadyBottom: "already at bottom",
	}
}

// Service applies ordering actions against a Store, maintaining the
// invariant that every parent group's sort orders form a contiguous
// 1..N sequence.
//
// Each Apply call is an independent unit of work; callers mutating the
// same sibling group concurrently can race on the shared order counter.
// Serializing per parent group (advisory lock keyed on parent_id) would
// close that window; single-editor installs don't hit it.
type Service struct {
	store Store
	msgs  Messages
}

// NewService creates an ordering service over the given store.
func NewService(store Store, msgs Messages) *Service {
	return &Service{store: store, msgs: msgs}
}

// Apply validates and executes one action, returning the success envelope
// or one of the sentinel errors from errors.go.
func (s *Service) Apply(req Request) (*Result, error) {
	switch req.Action {
	case ActionRename:
		return s.rename(req)
	case ActionAddFirst:
		return s.addFirst()
	case ActionAddAfter:
		return s.addAfter(req)
	case ActionAddNested:
		return s.addNested(req)
	case ActionDelete:
		return s.remove(req)
	case ActionMoveUp:
		return s.moveUp(req)
	case ActionMoveDown:
		return s.moveDown(req)
	default:
		return nil, fmt.Errorf("%w: %s", ErrInvalidInput, s.msgs.UnknownAction)
	}
}

// rename sets a category's display name. Renaming to the current value is
// a no-op success; sort order and parent are never touched.
func (s *Service) rename(req Request) (*Result, error) {
	if req.ID == nil || req.Value == nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidInput, s.msgs.InvalidInput)
	}

	c, err := s.store.FindByID(*req.ID)
	if err != nil {
		return nil, fmt.Errorf("rename lookup: %w", err)
	}
	if c == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, s.msgs.NotFound)
	}

	if err := s.store.UpdateName(c.ID, *req.Value); err != nil {
		return nil, fmt.Errorf("rename update: %w", err)
	}
	return &Result{Message: s.msgs.Success}, nil
}

// addFirst creates a new root category. Despite the action name it lands
// at the tail of the root group (order = current max + 1); the client only
// offers this action when the root list is empty, which is where the name
// comes from.
func (s *Service) addFirst() (*Result, error) {
	max, err := s.store.MaxOrder(nil)
	if err != nil {
		return nil, fmt.Errorf("addFirst max order: %w", err)
	}

	created, err := s.store.Create(&models.Category{
		Name:      models.DefaultCategoryName,
		ParentID:  nil,
		SortOrder: max + 1,
	})
	if err != nil {
		return nil, fmt.Errorf("addFirst create: %w", err)
	}
	return &Result{Message: s.msgs.Success, NewID: &created.ID}, nil
}

// addAfter inserts a new sibling directly after the referenced category,
// shifting every trailing sibling up by one to make room.
func (s *Service) addAfter(req Request) (*Result, error) {
	if req.After == nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidInput, s.msgs.InvalidInput)
	}

	ref, err := s.store.FindByID(*req.After)
	if err != nil {
		return nil, fmt.Errorf("addAfter lookup: %w", err)
	}
	if ref == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, s.msgs.NotFound)
	}

	insertOrder := ref.SortOrder + 1
	if err := s.store.ShiftOrders(ref.ParentID, insertOrder, +1); err != nil {
		return nil, fmt.Errorf("addAfter shift: %w", err)
	}

	created, err := s.store.Create(&models.Category{
		Name:      models.DefaultCategoryName,
		ParentID:  ref.ParentID,
		SortOrder: insertOrder,
	})
	if err != nil {
		return nil, fmt.Errorf("addAfter create: %w", err)
	}
	return &Result{Message: s.msgs.Success, NewID: &created.ID}, nil
}

// addNested appends a new child at the tail of the referenced category's
// child group.
func (s *Service) addNested(req Request) (*Result, error) {
	if req.Nested == nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidInput, s.msgs.InvalidInput)
	}

	parent, err := s.store.FindByID(*req.Nested)
	if err != nil {
		return nil, fmt.Errorf("addNested lookup: %w", err)
	}
	if parent == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, s.msgs.NotFound)
	}

	max, err := s.store.MaxOrder(&parent.ID)
	if err != nil {
		return nil, fmt.Errorf("addNested max order: %w", err)
	}

	created, err := s.store.Create(&models.Category{
		Name:      models.DefaultCategoryName,
		ParentID:  &parent.ID,
		SortOrder: max + 1,
	})
	if err != nil {
		return nil, fmt.Errorf("addNested create: %w", err)
	}
	return &Result{Message: s.msgs.Success, NewID: &created.ID}, nil
}

// remove deletes a category and its entire subtree, children before
// parents, then closes the gap in the remaining siblings' orders.
//
// The subtree is discovered from a single bulk read: one List call builds
// an id -> children adjacency map, so a deep tree costs two round trips
// (read + shift) plus one delete per node instead of one query per level.
func (s *Service) remove(req Request) (*Result, error) {
	if req.ID == nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidInput, s.msgs.InvalidInput)
	}

	c, err := s.store.FindByID(*req.ID)
	if err != nil {
		return nil, fmt.Errorf("delete lookup: %w", err)
	}
	if c == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, s.msgs.NotFound)
	}

	flat, err := s.store.List()
	if err != nil {
		return nil, fmt.Errorf("delete list: %w", err)
	}

	children := make(map[uuid.UUID][]uuid.UUID, len(flat))
	for _, cat := range flat {
		if cat.ParentID != nil {
			children[*cat.ParentID] = append(children[*cat.ParentID], cat.ID)
		}
	}

	for _, id := range postOrder(c.ID, children) {
		if err := s.store.Delete(id); err != nil {
			return nil, fmt.Errorf("delete subtree node %s: %w", id, err)
		}
	}

	if err := s.store.ShiftOrders(c.ParentID, c.SortOrder+1, -1); err != nil {
		return nil, fmt.Errorf("delete compact: %w", err)
	}
	return &Result{Message: s.msgs.Success}, nil
}

// postOrder returns the subtree rooted at id in children-first order, so
// deleting in sequence never leaves a child pointing at a removed parent.
func postOrder(id uuid.UUID, children map[uuid.UUID][]uuid.UUID) []uuid.UUID {
	var out []uuid.UUID
	for _, child := range children[id] {
		out = append(out, postOrder(child, children)...)
	}
	return append(out, id)
}

// moveUp swaps a category with the sibling directly above it.
func (s *Service) moveUp(req Request) (*Result, error) {
	if req.ID == nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidInput, s.msgs.InvalidInput)
	}

	c, err := s.store.FindByID(*req.ID)
	if err != nil {
		return nil, fmt.Errorf("moveUp lookup: %w", err)
	}
	if c == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, s.msgs.NotFound)
	}

	if c.SortOrder <= 1 {
		return nil, fmt.Errorf("%w: %s", ErrInvalidOperation, s.msgs.AlreadyTop)
	}

	above, err := s.store.FindByOrder(c.ParentID, c.SortOrder-1)
	if err != nil {
		return nil, fmt.Errorf("moveUp sibling lookup: %w", err)
	}
	if above == nil {
		// The orders are supposed to be contiguous; a missing slot means
		// the store is inconsistent.
		return nil, fmt.Errorf("%w: %s", ErrNotFound, s.msgs.NotFound)
	}

	return s.swap(c, above)
}

// moveDown swaps a category with the sibling directly below it.
func (s *Service) moveDown(req Request) (*Result, error) {
	if req.ID == nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidInput, s.msgs.InvalidInput)
	}

	c, err := s.store.FindByID(*req.ID)
	if err != nil {
		return nil, fmt.Errorf("moveDown lookup: %w", err)
	}
	if c == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, s.msgs.NotFound)
	}

	max, err := s.store.MaxOrder(c.ParentID)
	if err != nil {
		return nil, fmt.Errorf("moveDown max order: %w", err)
	}
	if c.SortOrder >= max {
		return nil, fmt.Errorf("%w: %s", ErrInvalidOperation, s.msgs.AlreadyBottom)
	}

	below, err := s.store.FindByOrder(c.ParentID, c.SortOrder+1)
	if err != nil {
		return nil, fmt.Errorf("moveDown sibling lookup: %w", err)
	}
	if below == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, s.msgs.NotFound)
	}

	return s.swap(c, below)
}

// swap exchanges the sort orders of two siblings.
func (s *Service) swap(a, b *models.Category) (*Result, error) {
	if err := s.store.UpdateOrder(a.ID, b.SortOrder); err != nil {
		return nil, fmt.Errorf("swap update: %w", err)
	}
	if err := s.store.UpdateOrder(b.ID, a.SortOrder); err != nil {
		return nil, fmt.Errorf("swap update: %w", err)
	}
	return &Result{Message: s.msgs.Success}, nil
}
