// Package render holds the native widget tree: a retained tree of built
// widgets addressed by engine-assigned Handles, and its terminal view.
//
// The tree is owned by the UI goroutine and is not safe for concurrent use.
package render

import (
	"errors"
	"fmt"
)

var (
	// ErrNoNode is returned for a Handle that is not in the tree.
	ErrNoNode = errors.New("render: no such node")

	// ErrUnsupported is returned by Mutate when the widget has no such field.
	ErrUnsupported = errors.New("render: field not supported by widget")
)

// Handle identifies a node in the tree. Handles are never reused.
type Handle uint64

// Field names a mutable widget property.
type Field int

const (
	FieldText Field = iota
	FieldVisible
)

func (f Field) String() string {
	switch f {
	case FieldText:
		return "text"
	case FieldVisible:
		return "visible"
	default:
		return fmt.Sprintf("field(%d)", int(f))
	}
}

type node struct {
	handle   Handle
	parent   *node
	children []*node
	widget   Widget
	hidden   bool
}

// Tree is the retained native widget tree. The root node is a column
// container created with the tree.
type Tree struct {
	nodes map[Handle]*node
	root  *node
	next  Handle
}

// NewTree creates a tree whose root lays children out as a column.
func NewTree(root Widget) *Tree {
	t := &Tree{nodes: make(map[Handle]*node)}
	t.root = t.alloc(root)
	return t
}

func (t *Tree) alloc(w Widget) *node {
	t.next++
	n := &node{handle: t.next, widget: w}
	t.nodes[n.handle] = n
	return n
}

// Root returns the handle of the root container.
func (t *Tree) Root() Handle { return t.root.handle }

// Insert appends w as the last child of parent and returns its handle.
func (t *Tree) Insert(parent Handle, w Widget) (Handle, error) {
	if w == nil {
		return 0, errors.New("render: insert nil widget")
	}
	p, ok := t.nodes[parent]
	if !ok {
		return 0, fmt.Errorf("insert under %d: %w", parent, ErrNoNode)
	}

	n := t.alloc(w)
	n.parent = p
	p.children = append(p.children, n)
	return n.handle, nil
}

// Remove detaches h and its whole subtree. The root cannot be removed.
func (t *Tree) Remove(h Handle) error {
	n, ok := t.nodes[h]
	if !ok {
		return fmt.Errorf("remove %d: %w", h, ErrNoNode)
	}
	if n == t.root {
		return errors.New("render: cannot remove root")
	}

	p := n.parent
	for i, c := range p.children {
		if c == n {
			p.children = append(p.children[:i], p.children[i+1:]...)
			break
		}
	}

	stack := []*node{n}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		delete(t.nodes, cur.handle)
		stack = append(stack, cur.children...)
		cur.parent, cur.children = nil, nil
	}
	return nil
}

// Mutate sets a field on the widget at h in place. The node keeps its handle
// and position.
func (t *Tree) Mutate(h Handle, field Field, value any) error {
	n, ok := t.nodes[h]
	if !ok {
		return fmt.Errorf("mutate %d: %w", h, ErrNoNode)
	}

	switch field {
	case FieldText:
		text, ok := value.(string)
		if !ok {
			return fmt.Errorf("mutate %s: want string, got %T", field, value)
		}
		ts, ok := n.widget.(TextSetter)
		if !ok {
			return fmt.Errorf("mutate %s on %T: %w", field, n.widget, ErrUnsupported)
		}
		ts.SetText(text)
	case FieldVisible:
		visible, ok := value.(bool)
		if !ok {
			return fmt.Errorf("mutate %s: want bool, got %T", field, value)
		}
		n.hidden = !visible
	default:
		return fmt.Errorf("mutate %s: %w", field, ErrUnsupported)
	}
	return nil
}

// Widget returns the widget at h.
func (t *Tree) Widget(h Handle) (Widget, bool) {
	n, ok := t.nodes[h]
	if !ok {
		return nil, false
	}
	return n.widget, true
}

// Visible reports whether h and all of its ancestors are shown.
func (t *Tree) Visible(h Handle) bool {
	n, ok := t.nodes[h]
	if !ok {
		return false
	}
	for ; n != nil; n = n.parent {
		if n.hidden {
			return false
		}
	}
	return true
}

// Children returns the handles of h's children in order.
func (t *Tree) Children(h Handle) []Handle {
	n, ok := t.nodes[h]
	if !ok {
		return nil
	}
	out := make([]Handle, len(n.children))
	for i, c := range n.children {
		out[i] = c.handle
	}
	return out
}

// Len returns the number of nodes, including the root.
func (t *Tree) Len() int { return len(t.nodes) }

// Walk visits visible nodes depth-first in child order, skipping the root.
// Returning false from fn stops the walk.
func (t *Tree) Walk(fn func(h Handle, w Widget) bool) {
	var visit func(n *node) bool
	visit = func(n *node) bool {
		for _, c := range n.children {
			if c.hidden {
				continue
			}
			if !fn(c.handle, c.widget) || !visit(c) {
				return false
			}
		}
		return true
	}
	visit(t.root)
}
