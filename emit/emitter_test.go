package emit

import (
	"context"
	"math"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drake/duet/protocol"
	"github.com/drake/duet/registry"
	"github.com/drake/duet/render"
	"github.com/drake/duet/transport"
)

func setup(t *testing.T) (*Emitter, *transport.ScriptEnd, *registry.Registry) {
	t.Helper()
	link := transport.New(0)
	reg := registry.New()
	require.NoError(t, reg.Register("btn1", render.Handle(5), protocol.Kind(protocol.TagButton), "", 0))
	return New(link.UI(), reg, zerolog.Nop()), link.Script(), reg
}

func TestWidgetActionResolvesID(t *testing.T) {
	e, script, _ := setup(t)

	require.True(t, e.WidgetAction(5, protocol.Click()))

	ev, err := script.Recv(context.Background())
	require.NoError(t, err)
	assert.Equal(t, protocol.WidgetAction{WidgetID: "btn1", Action: protocol.Click()}, ev)
	assert.Equal(t, int64(1), e.Stats().Emitted)
}

func TestUnresolvedActionIsDropped(t *testing.T) {
	e, script, _ := setup(t)

	assert.False(t, e.WidgetAction(99, protocol.Click()))

	_, ok, err := script.TryRecv()
	require.NoError(t, err)
	assert.False(t, ok, "nothing queued")
	assert.Equal(t, int64(1), e.Stats().Unresolved)
}

func TestRemovedWidgetNoLongerEmits(t *testing.T) {
	e, _, reg := setup(t)
	reg.RemoveSubtree("btn1")
	assert.False(t, e.WidgetAction(5, protocol.Click()))
}

func TestEventsKeepOrder(t *testing.T) {
	e, script, _ := setup(t)
	events := []protocol.Event{
		protocol.KeyPress{Key: "a"},
		protocol.TextInput{Text: "a"},
		protocol.WindowFocusChanged{Focused: true},
	}
	for _, ev := range events {
		require.True(t, e.Emit(ev))
	}
	for _, want := range events {
		got, err := script.Recv(context.Background())
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestEmitAfterScriptGone(t *testing.T) {
	e, script, _ := setup(t)
	script.Close()

	assert.False(t, e.Emit(protocol.AppExit{}))
	assert.False(t, e.Emit(protocol.AppExit{}))
	assert.Equal(t, int64(2), e.Stats().Failed)
}

func TestNonFiniteNumbersAreRejected(t *testing.T) {
	e, script, _ := setup(t)

	assert.False(t, e.WidgetAction(5, protocol.ValueChanged(math.NaN())))
	assert.False(t, e.Emit(protocol.MouseMove{X: math.Inf(1), Y: 0}))
	assert.True(t, e.WidgetAction(5, protocol.ValueChanged(0.25)))

	ev, err := script.Recv(context.Background())
	require.NoError(t, err)
	assert.Equal(t, protocol.WidgetAction{WidgetID: "btn1", Action: protocol.ValueChanged(0.25)}, ev)

	stats := e.Stats()
	assert.Equal(t, int64(2), stats.Rejected)
	assert.Equal(t, int64(1), stats.Emitted)
	assert.Zero(t, stats.Failed)
}
