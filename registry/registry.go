// Package registry maps script-chosen widget ids to native tree handles and
// tracks each widget's place among its siblings.
//
// A Registry is owned by the UI goroutine and is not safe for concurrent use.
package registry

import (
	"errors"
	"fmt"

	"github.com/drake/duet/protocol"
	"github.com/drake/duet/render"
)

// RootKey is the parent key of widgets created without a parent.
const RootKey = "__root__"

var (
	ErrInvalidID     = errors.New("registry: invalid widget id")
	ErrDuplicate     = errors.New("registry: widget id already registered")
	ErrUnknownParent = errors.New("registry: unknown parent")
	ErrNoHandle      = errors.New("registry: missing native handle")
	ErrHandleInUse   = errors.New("registry: native handle already registered")
	ErrChildIndex    = errors.New("registry: child index is not the next append position")
)

// Record is the registry's view of one live widget.
type Record struct {
	ID     string
	Handle render.Handle
	Kind   protocol.WidgetKind
	// ParentID is empty for widgets parented to the root.
	ParentID string
	// ChildIndex is the widget's current position in its parent's child list.
	ChildIndex int
}

// ParentKey returns the key of the record's parent in the child index.
func (r Record) ParentKey() string {
	if r.ParentID == "" {
		return RootKey
	}
	return r.ParentID
}

type Registry struct {
	records  map[string]*Record
	children map[string][]string
	byHandle map[render.Handle]string
}

func New() *Registry {
	return &Registry{
		records:  make(map[string]*Record),
		children: map[string][]string{RootKey: nil},
		byHandle: make(map[render.Handle]string),
	}
}

// parentKey maps "" to RootKey.
func parentKey(parentID string) string {
	if parentID == "" {
		return RootKey
	}
	return parentID
}

// NextChildIndex returns the index the next child of parentID will get.
// An empty parentID means the root.
func (r *Registry) NextChildIndex(parentID string) int {
	return len(r.children[parentKey(parentID)])
}

// Register records a widget whose native node already exists. It appends id
// to the parent's child list and gives id its own empty child list.
// childIndex must equal NextChildIndex(parentID). On error nothing changes.
func (r *Registry) Register(id string, h render.Handle, kind protocol.WidgetKind, parentID string, childIndex int) error {
	if id == "" || id == RootKey {
		return fmt.Errorf("register %q: %w", id, ErrInvalidID)
	}
	if _, ok := r.records[id]; ok {
		return fmt.Errorf("register %q: %w", id, ErrDuplicate)
	}
	if h == 0 {
		return fmt.Errorf("register %q: %w", id, ErrNoHandle)
	}
	if other, ok := r.byHandle[h]; ok {
		return fmt.Errorf("register %q: handle %d held by %q: %w", id, h, other, ErrHandleInUse)
	}

	key := parentKey(parentID)
	siblings, ok := r.children[key]
	if !ok {
		return fmt.Errorf("register %q under %q: %w", id, parentID, ErrUnknownParent)
	}
	if childIndex != len(siblings) {
		return fmt.Errorf("register %q: got %d, want %d: %w", id, childIndex, len(siblings), ErrChildIndex)
	}

	r.records[id] = &Record{
		ID:         id,
		Handle:     h,
		Kind:       kind,
		ParentID:   parentID,
		ChildIndex: childIndex,
	}
	r.children[key] = append(siblings, id)
	r.children[id] = nil
	r.byHandle[h] = id
	return nil
}

// RemoveSubtree removes id and every descendant, then renumbers id's
// remaining siblings so indices stay dense. It returns the removed top
// record and the number of descendants removed with it. ok is false when
// id is not registered.
func (r *Registry) RemoveSubtree(id string) (removed Record, descendants int, ok bool) {
	rec, ok := r.records[id]
	if !ok {
		return Record{}, 0, false
	}
	removed = *rec

	key := rec.ParentKey()
	siblings := r.children[key]
	for i, sib := range siblings {
		if sib == id {
			siblings = append(siblings[:i:i], siblings[i+1:]...)
			break
		}
	}
	r.children[key] = siblings

	stack := []string{id}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		stack = append(stack, r.children[cur]...)

		if cr, ok := r.records[cur]; ok {
			delete(r.byHandle, cr.Handle)
			delete(r.records, cur)
		}
		delete(r.children, cur)
		if cur != id {
			descendants++
		}
	}

	for i, sib := range siblings {
		r.records[sib].ChildIndex = i
	}
	return removed, descendants, true
}

// Lookup returns the record for id.
func (r *Registry) Lookup(id string) (Record, bool) {
	rec, ok := r.records[id]
	if !ok {
		return Record{}, false
	}
	return *rec, true
}

// LookupHandle returns the id registered for a native handle.
func (r *Registry) LookupHandle(h render.Handle) (string, bool) {
	id, ok := r.byHandle[h]
	return id, ok
}

// Children returns the ids under parentID in order. An empty parentID
// means the root.
func (r *Registry) Children(parentID string) []string {
	list := r.children[parentKey(parentID)]
	out := make([]string, len(list))
	copy(out, list)
	return out
}

// Len returns the number of registered widgets.
func (r *Registry) Len() int { return len(r.records) }

// Check verifies the registry's structural invariants and returns the first
// violation found.
func (r *Registry) Check() error {
	if _, ok := r.children[RootKey]; !ok {
		return errors.New("registry: root child list missing")
	}
	if len(r.byHandle) != len(r.records) {
		return fmt.Errorf("registry: %d handles for %d records", len(r.byHandle), len(r.records))
	}

	listed := 0
	for key, list := range r.children {
		if key != RootKey {
			if _, ok := r.records[key]; !ok {
				return fmt.Errorf("registry: child list for unregistered %q", key)
			}
		}
		for i, id := range list {
			rec, ok := r.records[id]
			if !ok {
				return fmt.Errorf("registry: dangling child %q under %q", id, key)
			}
			if rec.ParentKey() != key {
				return fmt.Errorf("registry: %q listed under %q but parented to %q", id, key, rec.ParentKey())
			}
			if rec.ChildIndex != i {
				return fmt.Errorf("registry: %q has index %d at position %d", id, rec.ChildIndex, i)
			}
			listed++
		}
	}
	if listed != len(r.records) {
		return fmt.Errorf("registry: %d records but %d listed children", len(r.records), listed)
	}

	for id, rec := range r.records {
		if _, ok := r.children[id]; !ok {
			return fmt.Errorf("registry: %q has no child list", id)
		}
		if r.byHandle[rec.Handle] != id {
			return fmt.Errorf("registry: handle %d does not map back to %q", rec.Handle, id)
		}
		seen := map[string]bool{id: true}
		for p := rec.ParentID; p != ""; p = r.records[p].ParentID {
			if seen[p] {
				return fmt.Errorf("registry: cycle through %q", p)
			}
			seen[p] = true
			if _, ok := r.records[p]; !ok {
				return fmt.Errorf("registry: %q has unregistered ancestor %q", id, p)
			}
		}
	}
	return nil
}
