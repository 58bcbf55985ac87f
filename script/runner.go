package script

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/drake/duet/protocol"
	"github.com/drake/duet/timer"
)

// Event is a UI event as the script side sees it.
type Event struct {
	Type string
	// JSON is the wire form.
	JSON string
	// Fields is JSON decoded into plain Go values.
	Fields map[string]any
}

// ParseEvent decodes the wire form of an event.
func ParseEvent(data string) (Event, error) {
	var fields map[string]any
	if err := json.Unmarshal([]byte(data), &fields); err != nil {
		return Event{}, fmt.Errorf("parse event: %w", err)
	}
	typ, _ := fields["type"].(string)
	if typ == "" {
		return Event{}, errors.New("parse event: missing type")
	}
	return Event{Type: typ, JSON: data, Fields: fields}, nil
}

// Engine runs one script. Every method is called from the runner's
// goroutine.
type Engine interface {
	// Load runs the script's top level. ctx bounds all later execution.
	Load(ctx context.Context, path string) error
	// Deliver calls the listeners registered for ev.Type and "*".
	Deliver(ev Event)
	// Fire runs the callback of a timer.
	Fire(f timer.Fire)
	// Pending reports whether the script still has listeners or timers.
	Pending() bool
	Close()
}

// ErrScript wraps errors raised by the script's top level.
var ErrScript = errors.New("script failed")

// Runner is the script loop. It blocks on whichever comes first of a UI
// event, a timer fire or cancellation, and runs the matching callback.
type Runner struct {
	host   *Host
	engine Engine
	fires  <-chan timer.Fire
	log    zerolog.Logger
}

func NewRunner(host *Host, engine Engine, fires <-chan timer.Fire, logger zerolog.Logger) *Runner {
	return &Runner{
		host:   host,
		engine: engine,
		fires:  fires,
		log:    logger.With().Str("component", "runner").Logger(),
	}
}

// Run loads the script at path and serves it until it has no listeners or
// timers left, the UI disconnects, or ctx is done. The engine is closed on
// return.
func (r *Runner) Run(ctx context.Context, path string) error {
	defer r.engine.Close()

	if err := r.engine.Load(ctx, path); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("%w: %s: %w", ErrScript, path, err)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	events := make(chan Event)
	go r.pumpEvents(ctx, events)

	for r.engine.Pending() {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			r.engine.Deliver(ev)
			if ev.Type == protocol.TypeDisconnected {
				r.log.Info().Msg("UI disconnected, script loop ending")
				return nil
			}
		case f := <-r.fires:
			r.engine.Fire(f)
		}
	}

	r.log.Info().Msg("no listeners or timers left, script loop ending")
	return nil
}

// pumpEvents waits for UI events on a helper goroutine so the loop can
// select over events and timers together. It stops after delivering the
// disconnect sentinel.
func (r *Runner) pumpEvents(ctx context.Context, out chan<- Event) {
	defer close(out)
	for {
		// Only a done ctx makes WaitForEvent fail.
		data, err := r.host.WaitForEvent(ctx)
		if err != nil {
			return
		}
		ev, err := ParseEvent(data)
		if err != nil {
			r.log.Error().Err(err).Msg("dropping malformed event")
			continue
		}

		select {
		case out <- ev:
		case <-ctx.Done():
			return
		}
		if ev.Type == protocol.TypeDisconnected {
			return
		}
	}
}
