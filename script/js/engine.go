// Package js runs ECMAScript scripts with sobek. Scripts drive the UI
// through globalThis.appjs and get console and the timer globals.
package js

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/grafana/sobek"
	"github.com/rs/zerolog"

	"github.com/drake/duet/script"
	"github.com/drake/duet/timer"
)

var _ script.Engine = (*Engine)(nil)

// Engine owns a sobek runtime. Only the runner goroutine calls it; the
// runtime is interrupted from another goroutine when the load context ends.
type Engine struct {
	rt     *sobek.Runtime
	api    script.API
	timers script.Timers
	log    zerolog.Logger

	parse     sobek.Callable // JSON.parse
	callbacks map[int]*callback
	listeners map[string][]*listener

	stopInterrupt func() bool
}

type callback struct {
	fn   sobek.Callable
	args []sobek.Value
}

type listener struct {
	fn      sobek.Callable
	removed bool
}

func NewEngine(api script.API, timers script.Timers, logger zerolog.Logger) *Engine {
	return &Engine{
		api:       api,
		timers:    timers,
		log:       logger.With().Str("component", "js").Logger(),
		callbacks: make(map[int]*callback),
		listeners: make(map[string][]*listener),
	}
}

// Init creates a fresh runtime with the globals installed.
func (e *Engine) Init() error {
	e.resetCallbacks()
	e.listeners = make(map[string][]*listener)

	e.rt = sobek.New()
	parse, ok := sobek.AssertFunction(e.rt.Get("JSON").ToObject(e.rt).Get("parse"))
	if !ok {
		return errors.New("js: JSON.parse unavailable")
	}
	e.parse = parse

	return e.registerAPIs()
}

// Load runs the script at path. When ctx is done, running code is
// interrupted.
func (e *Engine) Load(ctx context.Context, path string) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if e.rt == nil {
		if err := e.Init(); err != nil {
			return err
		}
	}

	rt := e.rt
	e.stopInterrupt = context.AfterFunc(ctx, func() {
		rt.Interrupt(ctx.Err())
	})
	return e.RunString(path, string(src))
}

// RunString evaluates code as a classic script.
func (e *Engine) RunString(name, code string) error {
	_, err := e.rt.RunScript(name, code)
	return describe(err)
}

// Deliver calls the listeners for ev.Type, then the "*" listeners, with
// the event parsed into a plain object.
func (e *Engine) Deliver(ev script.Event) {
	if e.rt == nil {
		return
	}
	targets := append(e.snapshot(ev.Type), e.snapshot("*")...)
	if len(targets) == 0 {
		return
	}

	arg, err := e.parse(sobek.Undefined(), e.rt.ToValue(ev.JSON))
	if err != nil {
		e.log.Error().Err(err).Str("event", ev.Type).Msg("event parse failed")
		return
	}
	for _, l := range targets {
		if l.removed {
			continue
		}
		if _, err := l.fn(sobek.Undefined(), arg); err != nil {
			e.log.Error().Err(describe(err)).Str("event", ev.Type).Msg("listener failed")
		}
	}
}

// Fire runs a setTimeout or setInterval callback.
func (e *Engine) Fire(f timer.Fire) {
	if e.rt == nil {
		return
	}
	cb, ok := e.callbacks[f.ID]
	if !ok {
		return
	}
	if !f.Repeating {
		delete(e.callbacks, f.ID)
	}

	if _, err := cb.fn(sobek.Undefined(), cb.args...); err != nil {
		e.log.Error().Err(describe(err)).Int("timer", f.ID).Msg("timer callback failed")
	}
}

// Pending reports whether listeners or timers remain.
func (e *Engine) Pending() bool {
	return len(e.callbacks) > 0 || len(e.listeners) > 0
}

// Close cancels timers and drops the runtime.
func (e *Engine) Close() {
	e.resetCallbacks()
	e.listeners = make(map[string][]*listener)
	if e.stopInterrupt != nil {
		e.stopInterrupt()
		e.stopInterrupt = nil
	}
	e.rt = nil
}

func (e *Engine) resetCallbacks() {
	for id := range e.callbacks {
		e.timers.Cancel(id)
	}
	e.callbacks = make(map[int]*callback)
}

func (e *Engine) snapshot(typ string) []*listener {
	return append([]*listener(nil), e.listeners[typ]...)
}

// describe gives script exceptions their JS stack in the message.
func describe(err error) error {
	var exc *sobek.Exception
	if errors.As(err, &exc) {
		return errors.New(exc.String())
	}
	return err
}

func toDuration(ms float64) time.Duration {
	if !(ms > 0) { // negative or NaN
		ms = 0
	}
	return time.Duration(ms * float64(time.Millisecond))
}
