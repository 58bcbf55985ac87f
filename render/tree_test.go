package render

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// text is a minimal widget: its own text followed by its children.
type text struct{ s string }

func (w *text) View(ctx Context, children []string) string {
	s := w.s
	if ctx.Focused {
		s = ">" + s
	}
	return strings.Join(append([]string{s}, children...), "|")
}

func (w *text) SetText(s string) { w.s = s }

// static has no text field.
type static struct{}

func (static) View(Context, []string) string { return "static" }

func newTestTree() *Tree {
	return NewTree(&text{s: "root"})
}

func TestInsertAppends(t *testing.T) {
	tr := newTestTree()
	a, err := tr.Insert(tr.Root(), &text{s: "a"})
	require.NoError(t, err)
	b, err := tr.Insert(tr.Root(), &text{s: "b"})
	require.NoError(t, err)
	c, err := tr.Insert(a, &text{s: "c"})
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	assert.Equal(t, []Handle{a, b}, tr.Children(tr.Root()))
	assert.Equal(t, []Handle{c}, tr.Children(a))
	assert.Equal(t, 4, tr.Len())
	assert.Equal(t, "root|a|c|b", tr.View(0, 0, 0))
}

func TestInsertUnknownParent(t *testing.T) {
	tr := newTestTree()
	_, err := tr.Insert(Handle(999), &text{s: "x"})
	assert.ErrorIs(t, err, ErrNoNode)
	assert.Equal(t, 1, tr.Len())
}

func TestRemoveSubtree(t *testing.T) {
	tr := newTestTree()
	a, _ := tr.Insert(tr.Root(), &text{s: "a"})
	b, _ := tr.Insert(a, &text{s: "b"})
	c, _ := tr.Insert(b, &text{s: "c"})
	d, _ := tr.Insert(tr.Root(), &text{s: "d"})

	require.NoError(t, tr.Remove(a))
	for _, h := range []Handle{a, b, c} {
		_, ok := tr.Widget(h)
		assert.False(t, ok, "handle %d should be gone", h)
	}
	assert.Equal(t, []Handle{d}, tr.Children(tr.Root()))
	assert.Equal(t, 2, tr.Len())

	assert.ErrorIs(t, tr.Remove(a), ErrNoNode)
	assert.Error(t, tr.Remove(tr.Root()))
}

func TestHandlesNotReused(t *testing.T) {
	tr := newTestTree()
	a, _ := tr.Insert(tr.Root(), &text{s: "a"})
	require.NoError(t, tr.Remove(a))
	b, _ := tr.Insert(tr.Root(), &text{s: "b"})
	assert.NotEqual(t, a, b)
}

func TestMutate(t *testing.T) {
	tr := newTestTree()
	a, _ := tr.Insert(tr.Root(), &text{s: "a"})
	s, _ := tr.Insert(tr.Root(), static{})

	require.NoError(t, tr.Mutate(a, FieldText, "A"))
	assert.Equal(t, "root|A|static", tr.View(0, 0, 0))

	assert.ErrorIs(t, tr.Mutate(s, FieldText, "x"), ErrUnsupported)
	assert.Error(t, tr.Mutate(a, FieldText, 42))
	assert.ErrorIs(t, tr.Mutate(Handle(77), FieldVisible, true), ErrNoNode)

	require.NoError(t, tr.Mutate(a, FieldVisible, false))
	assert.False(t, tr.Visible(a))
	assert.Equal(t, "root|static", tr.View(0, 0, 0))
	assert.Equal(t, []Handle{a, s}, tr.Children(tr.Root()), "hiding keeps position")

	require.NoError(t, tr.Mutate(a, FieldVisible, true))
	assert.True(t, tr.Visible(a))
}

func TestWalkSkipsHiddenSubtrees(t *testing.T) {
	tr := newTestTree()
	a, _ := tr.Insert(tr.Root(), &text{s: "a"})
	b, _ := tr.Insert(a, &text{s: "b"})
	c, _ := tr.Insert(tr.Root(), &text{s: "c"})

	var seen []Handle
	tr.Walk(func(h Handle, _ Widget) bool {
		seen = append(seen, h)
		return true
	})
	assert.Equal(t, []Handle{a, b, c}, seen)

	require.NoError(t, tr.Mutate(a, FieldVisible, false))
	seen = nil
	tr.Walk(func(h Handle, _ Widget) bool {
		seen = append(seen, h)
		return true
	})
	assert.Equal(t, []Handle{c}, seen)
	assert.False(t, tr.Visible(b))
}

func TestViewMarksFocus(t *testing.T) {
	tr := newTestTree()
	a, _ := tr.Insert(tr.Root(), &text{s: "a"})
	assert.Equal(t, "root|>a", tr.View(0, 0, a))
}
