package registry

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drake/duet/protocol"
	"github.com/drake/duet/render"
)

var label = protocol.Kind(protocol.TagLabel)

// fixture hands out increasing handles.
type fixture struct {
	*Registry
	next render.Handle
}

func newFixture() *fixture { return &fixture{Registry: New(), next: 100} }

func (f *fixture) add(t *testing.T, id, parent string) render.Handle {
	t.Helper()
	f.next++
	require.NoError(t, f.Register(id, f.next, label, parent, f.NextChildIndex(parent)))
	return f.next
}

func TestRegisterAppends(t *testing.T) {
	f := newFixture()
	assert.Equal(t, 0, f.NextChildIndex(""))

	f.add(t, "a", "")
	f.add(t, "b", "")
	f.add(t, "a1", "a")

	assert.Equal(t, []string{"a", "b"}, f.Children(""))
	assert.Equal(t, []string{"a1"}, f.Children("a"))
	assert.Empty(t, f.Children("b"), "every widget gets an empty child list")
	assert.Equal(t, 2, f.NextChildIndex(""))

	rec, ok := f.Lookup("b")
	require.True(t, ok)
	assert.Equal(t, 1, rec.ChildIndex)
	assert.Equal(t, RootKey, rec.ParentKey())

	a1, _ := f.Lookup("a1")
	assert.Equal(t, "a", a1.ParentKey())
	require.NoError(t, f.Check())
}

func TestRegisterRejects(t *testing.T) {
	f := newFixture()
	h := f.add(t, "a", "")

	tests := []struct {
		name   string
		id     string
		handle render.Handle
		parent string
		index  int
		err    error
	}{
		{"empty id", "", 1, "", 1, ErrInvalidID},
		{"root key", RootKey, 1, "", 1, ErrInvalidID},
		{"duplicate", "a", 1, "", 1, ErrDuplicate},
		{"no handle", "b", 0, "", 1, ErrNoHandle},
		{"handle reuse", "b", h, "", 1, ErrHandleInUse},
		{"unknown parent", "b", 1, "ghost", 0, ErrUnknownParent},
		{"bad index", "b", 1, "", 5, ErrChildIndex},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := f.Register(tt.id, tt.handle, label, tt.parent, tt.index)
			assert.ErrorIs(t, err, tt.err)
			assert.Equal(t, 1, f.Len())
			require.NoError(t, f.Check())
		})
	}
}

func TestRemoveSubtreeRenumbersSiblings(t *testing.T) {
	f := newFixture()
	f.add(t, "a", "")
	f.add(t, "b", "")
	f.add(t, "c", "")
	f.add(t, "b1", "b")
	f.add(t, "b2", "b")
	f.add(t, "b1x", "b1")

	removed, n, ok := f.RemoveSubtree("b")
	require.True(t, ok)
	assert.Equal(t, "b", removed.ID)
	assert.Equal(t, 3, n)

	for _, id := range []string{"b", "b1", "b2", "b1x"} {
		_, ok := f.Lookup(id)
		assert.False(t, ok, id)
	}
	assert.Equal(t, []string{"a", "c"}, f.Children(""))

	c, _ := f.Lookup("c")
	assert.Equal(t, 1, c.ChildIndex)
	assert.Equal(t, 2, f.NextChildIndex(""))
	assert.Equal(t, 2, f.Len())
	require.NoError(t, f.Check())
}

func TestRemoveIsIdempotent(t *testing.T) {
	f := newFixture()
	f.add(t, "a", "")

	_, _, ok := f.RemoveSubtree("a")
	require.True(t, ok)
	_, _, ok = f.RemoveSubtree("a")
	assert.False(t, ok)
	_, _, ok = f.RemoveSubtree("never")
	assert.False(t, ok)
	require.NoError(t, f.Check())
}

func TestRemovedHandleNoLongerResolves(t *testing.T) {
	f := newFixture()
	h := f.add(t, "a", "")
	child := f.add(t, "a1", "a")

	id, ok := f.LookupHandle(child)
	require.True(t, ok)
	assert.Equal(t, "a1", id)

	f.RemoveSubtree("a")
	_, ok = f.LookupHandle(h)
	assert.False(t, ok)
	_, ok = f.LookupHandle(child)
	assert.False(t, ok)
}

func TestReusedIDIsFresh(t *testing.T) {
	f := newFixture()
	f.add(t, "a", "")
	f.add(t, "x", "a")
	f.RemoveSubtree("a")

	f.add(t, "x", "")
	rec, ok := f.Lookup("x")
	require.True(t, ok)
	assert.Equal(t, "", rec.ParentID)
	assert.Equal(t, 0, rec.ChildIndex)
	require.NoError(t, f.Check())
}

func TestCreateUnderRemovedParentFails(t *testing.T) {
	f := newFixture()
	f.add(t, "p", "")
	f.RemoveSubtree("p")

	err := f.Register("c", 999, label, "p", 0)
	assert.ErrorIs(t, err, ErrUnknownParent)
	assert.Equal(t, 0, f.Len())
}

// TestRandomOperations drives the registry with random creates and removes
// and checks the invariants after every step.
func TestRandomOperations(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	f := newFixture()
	var live []string

	for step := 0; step < 2000; step++ {
		if len(live) == 0 || rng.Intn(3) > 0 {
			parent := ""
			if len(live) > 0 && rng.Intn(4) > 0 {
				parent = live[rng.Intn(len(live))]
			}
			id := fmt.Sprintf("w%d", rng.Intn(300))
			before := f.NextChildIndex(parent)
			f.next++
			err := f.Register(id, f.next, label, parent, before)
			if err == nil {
				live = append(live, id)
				rec, _ := f.Lookup(id)
				assert.Equal(t, before, rec.ChildIndex, "append-only index")
				assert.Equal(t, before+1, f.NextChildIndex(parent))
			} else {
				assert.ErrorIs(t, err, ErrDuplicate)
			}
		} else {
			id := live[rng.Intn(len(live))]
			f.RemoveSubtree(id)
			// Drop everything the registry no longer knows.
			kept := live[:0]
			for _, l := range live {
				if _, ok := f.Lookup(l); ok {
					kept = append(kept, l)
				}
			}
			live = kept
			_, ok := f.Lookup(id)
			assert.False(t, ok)
		}

		require.NoError(t, f.Check(), "step %d", step)
		assert.Equal(t, len(live), f.Len())
	}
}
