// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package categories

import (
	"errors"
	"sort"
	"testing"

	"github.com/google/uuid"

	"inkpress/internal/models"
)

func newTestService() (*Service, *MemStore) {
	st := NewMemStore()
	return NewService(st, DefaultMessages()), st
}

// addRoot creates a root category via the service and returns its id.
func addRoot(t *testing.T, svc *Service) uuid.UUID {
	t.Helper()
	res, err := svc.Apply(Request{Action: ActionAddFirst})
	if err != nil {
		t.Fatalf("addFirst: %v", err)
	}
	if res.NewID == nil {
		t.Fatal("addFirst returned no newId")
	}
	return *res.NewID
}

// addChild creates a child of parent via the service and returns its id.
func addChild(t *testing.T, svc *Service, parent uuid.UUID) uuid.UUID {
	t.Helper()
	res, err := svc.Apply(Request{Action: ActionAddNested, Nested: &parent})
	if err != nil {
		t.Fatalf("addNested: %v", err)
	}
	return *res.NewID
}

// groupOrders returns the sorted orders of one sibling group.
func groupOrders(t *testing.T, st *MemStore, parent *uuid.UUID) []int {
	t.Helper()
	flat, err := st.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	var orders []int
	for _, c := range flat {
		if sameParent(c.ParentID, parent) {
			orders = append(orders, c.SortOrder)
		}
	}
	sort.Ints(orders)
	return orders
}

// assertContiguous fails unless orders are exactly 1..len(orders).
func assertContiguous(t *testing.T, orders []int) {
	t.Helper()
	for i, o := range orders {
		if o != i+1 {
			t.Fatalf("orders not contiguous: got %v", orders)
		}
	}
}

// assertAllGroupsContiguous checks the contiguity invariant across every
// sibling group in the store, including the root group.
func assertAllGroupsContiguous(t *testing.T, st *MemStore) {
	t.Helper()
	flat, err := st.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	groups := map[string][]int{}
	for _, c := range flat {
		groups[parentKey(c.ParentID)] = append(groups[parentKey(c.ParentID)], c.SortOrder)
	}
	for key, orders := range groups {
		sort.Ints(orders)
		for i, o := range orders {
			if o != i+1 {
				t.Fatalf("group %q orders not contiguous: %v", key, orders)
			}
		}
	}
}

func TestAddFirstAppendsAtRootTail(t *testing.T) {
	svc, st := newTestService()

	first := addRoot(t, svc)
	second := addRoot(t, svc)

	a, _ := st.FindByID(first)
	b, _ := st.FindByID(second)
	if a.SortOrder != 1 || b.SortOrder != 2 {
		t.Errorf("orders = %d, %d; want 1, 2", a.SortOrder, b.SortOrder)
	}
	if a.Name != models.DefaultCategoryName {
		t.Errorf("name = %q; want default placeholder", a.Name)
	}
}

func TestAddAfterShiftsTrailingSiblings(t *testing.T) {
	svc, st := newTestService()

	// Siblings with orders [1,2,3].
	ids := []uuid.UUID{addRoot(t, svc), addRoot(t, svc), addRoot(t, svc)}
	third, _ := st.FindByID(ids[2])

	res, err := svc.Apply(Request{Action: ActionAddAfter, After: &ids[1]})
	if err != nil {
		t.Fatalf("addAfter: %v", err)
	}

	inserted, _ := st.FindByID(*res.NewID)
	if inserted.SortOrder != 3 {
		t.Errorf("inserted order = %d; want 3", inserted.SortOrder)
	}
	shifted, _ := st.FindByID(third.ID)
	if shifted.SortOrder != 4 {
		t.Errorf("former order-3 sibling now = %d; want 4", shifted.SortOrder)
	}
	assertContiguous(t, groupOrders(t, st, nil))
}

func TestAddNestedAppendsToChildGroup(t *testing.T) {
	svc, st := newTestService()

	parent := addRoot(t, svc)
	c1 := addChild(t, svc, parent)
	c2 := addChild(t, svc, parent)

	a, _ := st.FindByID(c1)
	b, _ := st.FindByID(c2)
	if a.SortOrder != 1 || b.SortOrder != 2 {
		t.Errorf("child orders = %d, %d; want 1, 2", a.SortOrder, b.SortOrder)
	}
	if b.ParentID == nil || *b.ParentID != parent {
		t.Error("child not attached to parent")
	}
}

func TestDeleteRenumbersRemainingSiblings(t *testing.T) {
	svc, st := newTestService()

	// Orders [1,2,3,4]; delete the one at order 2.
	ids := []uuid.UUID{addRoot(t, svc), addRoot(t, svc), addRoot(t, svc), addRoot(t, svc)}
	if _, err := svc.Apply(Request{Action: ActionDelete, ID: &ids[1]}); err != nil {
		t.Fatalf("delete: %v", err)
	}

	assertContiguous(t, groupOrders(t, st, nil))

	// Former order 3 and 4 slid down by one.
	c3, _ := st.FindByID(ids[2])
	c4, _ := st.FindByID(ids[3])
	if c3.SortOrder != 2 || c4.SortOrder != 3 {
		t.Errorf("orders after delete = %d, %d; want 2, 3", c3.SortOrder, c4.SortOrder)
	}
}

func TestDeleteRemovesEntireSubtree(t *testing.T) {
	svc, st := newTestService()

	// Three-level chain A -> B -> C.
	a := addRoot(t, svc)
	b := addChild(t, svc, a)
	c := addChild(t, svc, b)

	if _, err := svc.Apply(Request{Action: ActionDelete, ID: &a}); err != nil {
		t.Fatalf("delete: %v", err)
	}

	for _, id := range []uuid.UUID{a, b, c} {
		got, _ := st.FindByID(id)
		if got != nil {
			t.Errorf("category %s still present after subtree delete", id)
		}
	}
	flat, _ := st.List()
	if len(flat) != 0 {
		t.Errorf("store has %d rows after deleting the only tree", len(flat))
	}
}

func TestMoveUpDownSymmetry(t *testing.T) {
	svc, st := newTestService()

	ids := []uuid.UUID{addRoot(t, svc), addRoot(t, svc), addRoot(t, svc)}

	before := map[uuid.UUID]int{}
	for _, id := range ids {
		c, _ := st.FindByID(id)
		before[id] = c.SortOrder
	}

	// Move the middle one up, then move it back down.
	if _, err := svc.Apply(Request{Action: ActionMoveUp, ID: &ids[1]}); err != nil {
		t.Fatalf("moveUp: %v", err)
	}
	if _, err := svc.Apply(Request{Action: ActionMoveDown, ID: &ids[1]}); err != nil {
		t.Fatalf("moveDown: %v", err)
	}

	for _, id := range ids {
		c, _ := st.FindByID(id)
		if c.SortOrder != before[id] {
			t.Errorf("category %s order = %d; want %d", id, c.SortOrder, before[id])
		}
	}
}

func TestMoveBoundariesRejected(t *testing.T) {
	svc, _ := newTestService()

	ids := []uuid.UUID{addRoot(t, svc), addRoot(t, svc)}

	_, err := svc.Apply(Request{Action: ActionMoveUp, ID: &ids[0]})
	if !errors.Is(err, ErrInvalidOperation) {
		t.Errorf("moveUp on top sibling: got %v; want ErrInvalidOperation", err)
	}

	_, err = svc.Apply(Request{Action: ActionMoveDown, ID: &ids[1]})
	if !errors.Is(err, ErrInvalidOperation) {
		t.Errorf("moveDown on bottom sibling: got %v; want ErrInvalidOperation", err)
	}
}

func TestRenameIsIdempotent(t *testing.T) {
	svc, st := newTestService()

	id := addRoot(t, svc)
	name := "Culture"
	if _, err := svc.Apply(Request{Action: ActionRename, ID: &id, Value: &name}); err != nil {
		t.Fatalf("rename: %v", err)
	}

	beforeRow, _ := st.FindByID(id)

	// Renaming to the current value succeeds and changes nothing else.
	res, err := svc.Apply(Request{Action: ActionRename, ID: &id, Value: &name})
	if err != nil {
		t.Fatalf("idempotent rename: %v", err)
	}
	if res.Message != "Success" {
		t.Errorf("message = %q; want Success", res.Message)
	}

	afterRow, _ := st.FindByID(id)
	if afterRow.Name != name || afterRow.SortOrder != beforeRow.SortOrder {
		t.Error("rename to same value changed order or name")
	}
	if !sameParent(afterRow.ParentID, beforeRow.ParentID) {
		t.Error("rename to same value changed parent")
	}
}

func TestUnknownActionRejected(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Apply(Request{Action: "reparent"})
	if !errors.Is(err, ErrInvalidInput) {
		t.Errorf("unknown action: got %v; want ErrInvalidInput", err)
	}
}

func TestMissingFieldsRejected(t *testing.T) {
	svc, _ := newTestService()
	id := addRoot(t, svc)
	value := "x"

	cases := []struct {
		name string
		req  Request
	}{
		{"rename without id", Request{Action: ActionRename, Value: &value}},
		{"rename without value", Request{Action: ActionRename, ID: &id}},
		{"add without after", Request{Action: ActionAddAfter}},
		{"addNested without parent", Request{Action: ActionAddNested}},
		{"delete without id", Request{Action: ActionDelete}},
		{"up without id", Request{Action: ActionMoveUp}},
		{"down without id", Request{Action: ActionMoveDown}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Apply(tc.req); !errors.Is(err, ErrInvalidInput) {
				t.Errorf("got %v; want ErrInvalidInput", err)
			}
		})
	}
}

func TestUnknownIDReturnsNotFound(t *testing.T) {
	svc, _ := newTestService()
	addRoot(t, svc)

	ghost := uuid.New()
	value := "x"

	cases := []struct {
		name string
		req  Request
	}{
		{"rename", Request{Action: ActionRename, ID: &ghost, Value: &value}},
		{"add", Request{Action: ActionAddAfter, After: &ghost}},
		{"addNested", Request{Action: ActionAddNested, Nested: &ghost}},
		{"delete", Request{Action: ActionDelete, ID: &ghost}},
		{"up", Request{Action: ActionMoveUp, ID: &ghost}},
		{"down", Request{Action: ActionMoveDown, ID: &ghost}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Apply(tc.req); !errors.Is(err, ErrNotFound) {
				t.Errorf("got %v; want ErrNotFound", err)
			}
		})
	}
}

// TestContiguityAfterActionSequence drives a longer scripted mix of
// inserts, moves, and deletes and then checks the 1..N invariant in
// every sibling group the tree ended up with.
func TestContiguityAfterActionSequence(t *testing.T) {
	svc, st := newTestService()

	r1 := addRoot(t, svc)
	r2 := addRoot(t, svc)
	r3 := addRoot(t, svc)

	c1 := addChild(t, svc, r1)
	addChild(t, svc, r1)
	c3 := addChild(t, svc, r1)
	addChild(t, svc, r2)

	// Insert among the children of r1.
	if _, err := svc.Apply(Request{Action: ActionAddAfter, After: &c1}); err != nil {
		t.Fatalf("addAfter: %v", err)
	}
	// Shuffle within two groups.
	if _, err := svc.Apply(Request{Action: ActionMoveDown, ID: &r1}); err != nil {
		t.Fatalf("moveDown: %v", err)
	}
	if _, err := svc.Apply(Request{Action: ActionMoveUp, ID: &c3}); err != nil {
		t.Fatalf("moveUp: %v", err)
	}
	// Remove a mid-sequence child and a whole root subtree.
	if _, err := svc.Apply(Request{Action: ActionDelete, ID: &c1}); err != nil {
		t.Fatalf("delete child: %v", err)
	}
	if _, err := svc.Apply(Request{Action: ActionDelete, ID: &r2}); err != nil {
		t.Fatalf("delete root: %v", err)
	}
	// Grow again after deleting.
	if _, err := svc.Apply(Request{Action: ActionAddAfter, After: &r3}); err != nil {
		t.Fatalf("addAfter: %v", err)
	}

	assertAllGroupsContiguous(t, st)
}
