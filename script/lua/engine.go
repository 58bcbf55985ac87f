// Package lua runs scripts with gopher-lua. Scripts drive the UI through
// the global app table.
package lua

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	glua "github.com/yuin/gopher-lua"

	"github.com/drake/duet/script"
	"github.com/drake/duet/timer"
)

var _ script.Engine = (*Engine)(nil)

// Engine owns a Lua state. It is not safe for concurrent use; the runner
// calls it from one goroutine.
type Engine struct {
	L   *glua.LState
	api script.API
	log zerolog.Logger

	appTable *glua.LTable

	// Timer service owns ids and scheduling; the engine owns callbacks.
	timers    script.Timers
	callbacks map[int]*glua.LFunction

	listeners map[string][]*listener
}

type listener struct {
	fn      *glua.LFunction
	removed bool
}

// NewEngine creates an engine. The Lua state is created by Load.
func NewEngine(api script.API, timers script.Timers, logger zerolog.Logger) *Engine {
	return &Engine{
		api:       api,
		timers:    timers,
		log:       logger.With().Str("component", "lua").Logger(),
		callbacks: make(map[int]*glua.LFunction),
		listeners: make(map[string][]*listener),
	}
}

// Init creates a fresh Lua state with the app table registered.
func (e *Engine) Init() {
	if e.L != nil {
		e.L.Close()
	}
	e.L = glua.NewState()
	e.resetCallbacks()
	e.registerAPIs()
}

// Load runs the script at path. The script's directory is searched first
// by require.
func (e *Engine) Load(ctx context.Context, path string) error {
	if e.L == nil {
		e.Init()
	}
	e.L.SetContext(ctx)
	return e.DoFile(path)
}

// DoString runs a chunk of Lua code.
func (e *Engine) DoString(name, code string) error {
	fn, err := e.L.Load(strings.NewReader(code), name)
	if err != nil {
		return err
	}
	e.L.Push(fn)
	return e.L.PCall(0, 0, nil)
}

// DoFile runs a Lua file with its directory prepended to package.path.
func (e *Engine) DoFile(path string) error {
	absPath, err := filepath.Abs(expandTilde(path))
	if err != nil {
		return err
	}

	pkg := e.L.GetGlobal("package").(*glua.LTable)
	oldPath := e.L.GetField(pkg, "path").String()
	e.L.SetField(pkg, "path", glua.LString(filepath.Dir(absPath)+"/?.lua;"+oldPath))
	defer e.L.SetField(pkg, "path", glua.LString(oldPath))

	return e.L.DoFile(absPath)
}

// Deliver calls the listeners for ev.Type, then the "*" listeners, each
// with the event as a table. A failing listener is logged and the rest
// still run.
func (e *Engine) Deliver(ev script.Event) {
	if e.L == nil {
		return
	}
	targets := append(e.snapshot(ev.Type), e.snapshot("*")...)
	if len(targets) == 0 {
		return
	}

	arg := toLua(e.L, ev.Fields)
	for _, l := range targets {
		if l.removed {
			continue
		}
		if err := e.L.CallByParam(glua.P{Fn: l.fn, NRet: 0, Protect: true}, arg); err != nil {
			e.log.Error().Err(err).Str("event", ev.Type).Msg("listener failed")
		}
	}
}

// Fire runs a timer callback. Fires for cancelled timers are dropped.
func (e *Engine) Fire(f timer.Fire) {
	if e.L == nil {
		return
	}
	fn, ok := e.callbacks[f.ID]
	if !ok {
		return
	}
	if !f.Repeating {
		delete(e.callbacks, f.ID)
	}

	if err := e.L.CallByParam(glua.P{Fn: fn, NRet: 0, Protect: true}); err != nil {
		e.log.Error().Err(err).Int("timer", f.ID).Msg("timer callback failed")
	}
}

// Pending reports whether listeners or timers remain.
func (e *Engine) Pending() bool {
	return len(e.callbacks) > 0 || len(e.listeners) > 0
}

// Close cancels the script's timers and closes the Lua state.
func (e *Engine) Close() {
	e.resetCallbacks()
	e.listeners = make(map[string][]*listener)
	if e.L != nil {
		e.L.Close()
		e.L = nil
	}
}

func (e *Engine) resetCallbacks() {
	for id := range e.callbacks {
		e.timers.Cancel(id)
	}
	e.callbacks = make(map[int]*glua.LFunction)
}

// snapshot copies a listener list so listeners may unsubscribe while
// running.
func (e *Engine) snapshot(typ string) []*listener {
	return append([]*listener(nil), e.listeners[typ]...)
}

// expandTilde expands a leading ~ to the home directory.
func expandTilde(path string) string {
	if len(path) > 0 && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}
