// Package dispatch applies script commands to the native widget tree and
// keeps the identity registry in step with it.
//
// A Dispatcher runs on the UI goroutine. Commands that reference unknown
// widgets, or that would corrupt the registry, are logged and skipped; no
// command can crash the UI.
package dispatch

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/drake/duet/protocol"
	"github.com/drake/duet/registry"
	"github.com/drake/duet/render"
	"github.com/drake/duet/widget"
)

var (
	ErrInvalidID       = errors.New("dispatch: invalid widget id")
	ErrUnknownWidget   = errors.New("dispatch: unknown widget")
	ErrUnknownParent   = errors.New("dispatch: unknown parent")
	ErrDuplicateWidget = errors.New("dispatch: widget already exists")
	ErrTerminated      = errors.New("dispatch: window already closed")
)

// Renderer is the native widget tree.
type Renderer interface {
	Root() render.Handle
	Insert(parent render.Handle, w render.Widget) (render.Handle, error)
	Remove(h render.Handle) error
	Mutate(h render.Handle, field render.Field, value any) error
}

// Window is the windowing collaborator.
type Window interface {
	SetTitle(title string)
	Resize(width, height int)
	RequestClose()
	RequestExit()
}

// Builder constructs native widgets.
type Builder interface {
	Build(spec widget.Spec) (render.Widget, error)
}

// Result describes what a single Dispatch did.
type Result struct {
	// Applied is false when the command was skipped.
	Applied bool
	// Terminal is set by CloseWindow and ExitApp.
	Terminal bool
	// Handle and Widget are set for a successful CreateWidget.
	Handle render.Handle
	Widget render.Widget
	// Removed counts widgets removed by RemoveWidget, descendants included.
	Removed int
	// Err is the diagnostic for a skipped or degraded command. It has
	// already been logged.
	Err error
}

// Stats counts dispatched commands. Safe to read from any goroutine.
type Stats struct {
	Applied  int64
	Skipped  int64
	Degraded int64
}

type Dispatcher struct {
	tree     Renderer
	reg      *registry.Registry
	window   Window
	builder  Builder
	log      zerolog.Logger
	sink     zerolog.Logger
	terminal bool

	applied  atomic.Int64
	skipped  atomic.Int64
	degraded atomic.Int64
}

// New creates a dispatcher. Script Log commands go to logger with
// source=script; the dispatcher's own diagnostics carry component=dispatch.
func New(tree Renderer, reg *registry.Registry, window Window, builder Builder, logger zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		tree:    tree,
		reg:     reg,
		window:  window,
		builder: builder,
		log:     logger.With().Str("component", "dispatch").Logger(),
		sink:    logger.With().Str("source", "script").Logger(),
	}
}

// Stats returns a snapshot of the counters.
func (d *Dispatcher) Stats() Stats {
	return Stats{
		Applied:  d.applied.Load(),
		Skipped:  d.skipped.Load(),
		Degraded: d.degraded.Load(),
	}
}

// Terminated reports whether CloseWindow or ExitApp has been applied.
func (d *Dispatcher) Terminated() bool { return d.terminal }

// Dispatch applies one command.
func (d *Dispatcher) Dispatch(cmd protocol.Command) Result {
	if d.terminal {
		d.log.Debug().Str("command", protocol.CommandName(cmd)).Msg("command after close ignored")
		return d.skip(ErrTerminated)
	}

	var res Result
	switch c := cmd.(type) {
	case protocol.CreateWidget:
		res = d.create(c)
	case protocol.RemoveWidget:
		res = d.remove(c)
	case protocol.SetWidgetText:
		res = d.mutate(c.ID, render.FieldText, c.Text)
	case protocol.SetWidgetVisible:
		res = d.mutate(c.ID, render.FieldVisible, c.Visible)
	case protocol.SetTitle:
		d.window.SetTitle(c.Title)
		res = Result{Applied: true}
	case protocol.ResizeWindow:
		d.window.Resize(c.Width, c.Height)
		res = Result{Applied: true}
	case protocol.CloseWindow:
		d.terminal = true
		d.window.RequestClose()
		res = Result{Applied: true, Terminal: true}
	case protocol.ExitApp:
		d.terminal = true
		d.window.RequestExit()
		res = Result{Applied: true, Terminal: true}
	case protocol.Log:
		d.sink.WithLevel(zerologLevel(c.Level)).Msg(c.Message)
		res = Result{Applied: true}
	default:
		d.log.Warn().Str("type", fmt.Sprintf("%T", cmd)).Msg("unknown command")
		return d.skip(fmt.Errorf("dispatch: unknown command %T", cmd))
	}

	if res.Applied {
		d.applied.Add(1)
		if res.Err != nil {
			d.degraded.Add(1)
		}
	}
	return res
}

func (d *Dispatcher) skip(err error) Result {
	d.skipped.Add(1)
	return Result{Err: err}
}

func (d *Dispatcher) create(c protocol.CreateWidget) Result {
	log := d.log.With().Str("id", c.ID).Str("kind", c.Kind.String()).Logger()

	if c.ID == "" || c.ID == registry.RootKey {
		log.Warn().Msg("create with invalid id")
		return d.skip(ErrInvalidID)
	}
	if _, ok := d.reg.Lookup(c.ID); ok {
		log.Warn().Msg("create for existing id")
		return d.skip(fmt.Errorf("%q: %w", c.ID, ErrDuplicateWidget))
	}

	parent := d.tree.Root()
	if c.ParentID != "" {
		rec, ok := d.reg.Lookup(c.ParentID)
		if !ok {
			log.Warn().Str("parent", c.ParentID).Msg("create under unknown parent")
			return d.skip(fmt.Errorf("%q: %w", c.ParentID, ErrUnknownParent))
		}
		parent = rec.Handle
	}

	if c.Kind.IsCustom() {
		if name, ok := protocol.SuggestKind(c.Kind.Name); ok {
			log.Debug().Str("suggest", name).Msg("custom kind resembles a built-in kind")
		}
	}

	spec := widget.Spec{Kind: c.Kind, Style: c.Style, Data: c.Data}
	if c.Text != nil {
		spec.Text = *c.Text
	}
	w, buildErr := d.builder.Build(spec)
	if buildErr != nil {
		log.Warn().Err(buildErr).Msg("widget construction failed, using placeholder")
	}
	if w == nil {
		w = widget.Placeholder(spec)
	}

	index := d.reg.NextChildIndex(c.ParentID)
	h, err := d.tree.Insert(parent, w)
	if err != nil {
		log.Error().Err(err).Msg("native insert failed")
		return d.skip(err)
	}
	if err := d.reg.Register(c.ID, h, c.Kind, c.ParentID, index); err != nil {
		log.Error().Err(err).Msg("register failed, rolling back native insert")
		if rmErr := d.tree.Remove(h); rmErr != nil {
			log.Error().Err(rmErr).Msg("rollback failed")
		}
		return d.skip(err)
	}

	log.Debug().Uint64("handle", uint64(h)).Int("index", index).Msg("widget created")
	return Result{Applied: true, Handle: h, Widget: w, Err: buildErr}
}

func (d *Dispatcher) remove(c protocol.RemoveWidget) Result {
	rec, ok := d.reg.Lookup(c.ID)
	if !ok {
		d.log.Debug().Str("id", c.ID).Msg("remove of unknown widget ignored")
		return d.skip(fmt.Errorf("%q: %w", c.ID, ErrUnknownWidget))
	}

	if err := d.tree.Remove(rec.Handle); err != nil {
		d.log.Error().Err(err).Str("id", c.ID).Msg("native remove failed")
	}
	_, n, _ := d.reg.RemoveSubtree(c.ID)
	return Result{Applied: true, Removed: n + 1}
}

func (d *Dispatcher) mutate(id string, field render.Field, value any) Result {
	rec, ok := d.reg.Lookup(id)
	if !ok {
		d.log.Warn().Str("id", id).Stringer("field", field).Msg("update of unknown widget")
		return d.skip(fmt.Errorf("%q: %w", id, ErrUnknownWidget))
	}
	if err := d.tree.Mutate(rec.Handle, field, value); err != nil {
		d.log.Warn().Err(err).Str("id", id).Stringer("field", field).Msg("update failed")
		return d.skip(err)
	}
	return Result{Applied: true}
}

func zerologLevel(l protocol.LogLevel) zerolog.Level {
	switch l {
	case protocol.LevelDebug:
		return zerolog.DebugLevel
	case protocol.LevelWarn:
		return zerolog.WarnLevel
	case protocol.LevelError:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
