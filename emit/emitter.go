// Package emit turns UI interactions into protocol events and queues them
// for the script. Emitting never blocks the UI goroutine.
package emit

import (
	"math"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/drake/duet/protocol"
	"github.com/drake/duet/render"
)

// Sender is the UI end of the event queue.
type Sender interface {
	Send(ev protocol.Event) error
}

// IDResolver maps native handles back to script ids.
type IDResolver interface {
	LookupHandle(h render.Handle) (string, bool)
}

// Stats counts emitted events. Safe to read from any goroutine.
type Stats struct {
	Emitted    int64
	Unresolved int64
	Failed     int64
	Rejected   int64
}

type Emitter struct {
	out Sender
	ids IDResolver
	log zerolog.Logger

	gone bool

	emitted    atomic.Int64
	unresolved atomic.Int64
	failed     atomic.Int64
	rejected   atomic.Int64
}

func New(out Sender, ids IDResolver, logger zerolog.Logger) *Emitter {
	return &Emitter{
		out: out,
		ids: ids,
		log: logger.With().Str("component", "emit").Logger(),
	}
}

// Emit queues ev. It reports whether the event was queued; a failure is
// logged and the caller carries on.
func (e *Emitter) Emit(ev protocol.Event) bool {
	if !encodable(ev) {
		e.rejected.Add(1)
		e.log.Warn().Str("event", ev.Type()).Msg("event with a non-finite number dropped")
		return false
	}
	if err := e.out.Send(ev); err != nil {
		e.failed.Add(1)
		// Only the first failure is interesting: after that the script is
		// known to be gone.
		if !e.gone {
			e.gone = true
			e.log.Warn().Err(err).Str("event", ev.Type()).Msg("event not delivered")
		} else {
			e.log.Debug().Str("event", ev.Type()).Msg("event dropped, script gone")
		}
		return false
	}
	e.emitted.Add(1)
	return true
}

// WidgetAction emits an action performed on the widget at h. Widgets with no
// script id are internal and their actions are dropped.
func (e *Emitter) WidgetAction(h render.Handle, action protocol.Action) bool {
	id, ok := e.ids.LookupHandle(h)
	if !ok {
		e.unresolved.Add(1)
		e.log.Debug().Uint64("handle", uint64(h)).Stringer("action", action.Kind).Msg("action on unregistered widget dropped")
		return false
	}
	return e.Emit(protocol.WidgetAction{WidgetID: id, Action: action})
}

func (e *Emitter) Stats() Stats {
	return Stats{
		Emitted:    e.emitted.Load(),
		Unresolved: e.unresolved.Load(),
		Failed:     e.failed.Load(),
		Rejected:   e.rejected.Load(),
	}
}

// encodable reports whether every number in ev has a JSON form.
func encodable(ev protocol.Event) bool {
	switch ev := ev.(type) {
	case protocol.WidgetAction:
		return finite(ev.Action.Value)
	case protocol.MouseClick:
		return finite(ev.X) && finite(ev.Y)
	case protocol.MouseMove:
		return finite(ev.X) && finite(ev.Y)
	}
	return true
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
