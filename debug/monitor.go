// Package debug provides runtime monitoring and diagnostics.
package debug

import (
	"context"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/drake/duet/session"
)

// Enabled reports whether DUET_DEBUG=1 or the config asks for the monitor.
func Enabled(configured bool) bool {
	return configured || os.Getenv("DUET_DEBUG") == "1"
}

// Source provides statistics snapshots.
type Source interface {
	Stats() session.Stats
}

// Monitor periodically logs session statistics.
type Monitor struct {
	source   Source
	interval time.Duration
	log      zerolog.Logger
}

// NewMonitor creates a monitor for source. It returns nil when interval is
// not positive.
func NewMonitor(source Source, interval time.Duration, logger zerolog.Logger) *Monitor {
	if interval <= 0 {
		return nil
	}
	return &Monitor{
		source:   source,
		interval: interval,
		log:      logger.With().Str("component", "debug").Logger(),
	}
}

// Start begins the monitoring loop in a goroutine. It stops when ctx is
// done.
func (m *Monitor) Start(ctx context.Context) {
	if m == nil {
		return
	}
	go m.run(ctx)
}

func (m *Monitor) run(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.log.Debug().Dur("interval", m.interval).Msg("monitor started")

	for {
		select {
		case <-ctx.Done():
			m.log.Debug().Msg("monitor stopped")
			return
		case <-ticker.C:
			m.logStats()
		}
	}
}

func (m *Monitor) logStats() {
	s := m.source.Stats()

	m.log.Info().
		Int64("widgets", s.UI.Widgets).
		Int64("applied", s.UI.Dispatch.Applied).
		Int64("skipped", s.UI.Dispatch.Skipped).
		Int64("degraded", s.UI.Dispatch.Degraded).
		Int64("emitted", s.UI.Emit.Emitted).
		Int64("unresolved", s.UI.Emit.Unresolved).
		Int64("emitFailed", s.UI.Emit.Failed).
		Int64("emitRejected", s.UI.Emit.Rejected).
		Int("cmdQ", s.Transport.Commands).
		Int("evtQ", s.Transport.Events).
		Int64("cmdDropped", s.Transport.CommandsDropped).
		Int64("evtDropped", s.Transport.EventsDropped).
		Int("timers", s.Timers).
		Int("goroutines", s.Goroutines).
		Msg("stats")
}
