package debug

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drake/duet/session"
	"github.com/drake/duet/transport"
	"github.com/drake/duet/ui"
)

type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

type fixedSource struct{ stats session.Stats }

func (f fixedSource) Stats() session.Stats { return f.stats }

func TestEnabled(t *testing.T) {
	t.Setenv("DUET_DEBUG", "")
	assert.False(t, Enabled(false))
	assert.True(t, Enabled(true))

	t.Setenv("DUET_DEBUG", "1")
	assert.True(t, Enabled(false))
}

func TestNewMonitorNeedsInterval(t *testing.T) {
	m := NewMonitor(fixedSource{}, 0, zerolog.Nop())
	assert.Nil(t, m)
	m.Start(context.Background())
}

func TestMonitorLogsStats(t *testing.T) {
	src := fixedSource{stats: session.Stats{
		UI:         ui.Stats{Widgets: 3},
		Transport:  transport.Stats{Commands: 2, EventsDropped: 1},
		Timers:     4,
		Goroutines: 9,
	}}

	var buf lockedBuffer
	m := NewMonitor(src, time.Millisecond, zerolog.New(&buf))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		m.run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool {
		return strings.Contains(buf.String(), `"message":"stats"`)
	}, 2*time.Second, 5*time.Millisecond)
	cancel()
	<-done

	var entry map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if strings.Contains(line, `"message":"stats"`) {
			require.NoError(t, json.Unmarshal([]byte(line), &entry))
			break
		}
	}
	require.NotNil(t, entry)
	assert.Equal(t, "debug", entry["component"])
	assert.Equal(t, 3.0, entry["widgets"])
	assert.Equal(t, 2.0, entry["cmdQ"])
	assert.Equal(t, 1.0, entry["evtDropped"])
	assert.Equal(t, 4.0, entry["timers"])
	assert.Equal(t, 9.0, entry["goroutines"])
}
