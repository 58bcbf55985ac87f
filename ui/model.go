// Package ui runs the UI goroutine: a bubbletea program that owns the
// native widget tree and the identity registry, applies script commands and
// turns terminal input into events.
package ui

import (
	"sync/atomic"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/drake/duet/dispatch"
	"github.com/drake/duet/emit"
	"github.com/drake/duet/protocol"
	"github.com/drake/duet/registry"
	"github.com/drake/duet/render"
	"github.com/drake/duet/style"
	"github.com/drake/duet/widget"
)

// commandMsg carries one script command into Update.
type commandMsg struct {
	cmd protocol.Command
}

// scriptDetachedMsg reports that the command queue is closed and drained.
type scriptDetachedMsg struct{}

// Options configure the model.
type Options struct {
	Title          string
	Width, Height  int
	StyleCacheSize int
}

// Stats is a snapshot safe to take from any goroutine.
type Stats struct {
	Widgets  int64
	Dispatch dispatch.Stats
	Emit     emit.Stats
}

var titleStyle = lipgloss.NewStyle().Bold(true)

// Model is the bubbletea model. All of its state belongs to the program
// goroutine.
type Model struct {
	tree       *render.Tree
	reg        *registry.Registry
	dispatcher *dispatch.Dispatcher
	emitter    *emit.Emitter
	window     *Window
	log        zerolog.Logger

	focus      render.Handle
	termWidth  int
	termHeight int
	scriptGone bool
	quitting   bool
	widgets    atomic.Int64
}

// NewModel creates a model that sends events to out.
func NewModel(out emit.Sender, opts Options, logger zerolog.Logger) *Model {
	tree := render.NewTree(widget.NewRoot())
	reg := registry.New()
	window := NewWindow(opts.Title, opts.Width, opts.Height)
	builder := widget.NewBuilder(style.NewResolver(opts.StyleCacheSize))

	return &Model{
		tree:       tree,
		reg:        reg,
		dispatcher: dispatch.New(tree, reg, window, builder, logger),
		emitter:    emit.New(out, reg, logger),
		window:     window,
		log:        logger.With().Str("component", "ui").Logger(),
	}
}

// Stats is safe to call from any goroutine.
func (m *Model) Stats() Stats {
	return Stats{
		Widgets:  m.widgets.Load(),
		Dispatch: m.dispatcher.Stats(),
		Emit:     m.emitter.Stats(),
	}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	if m.window.Title() != "" {
		return tea.SetWindowTitle(m.window.Title())
	}
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case commandMsg:
		return m, m.apply(msg.cmd)

	case scriptDetachedMsg:
		if !m.scriptGone {
			m.scriptGone = true
			m.log.Info().Msg("script side closed, UI keeps running")
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.termWidth, m.termHeight = msg.Width, msg.Height
		m.emitter.Emit(protocol.WindowResized{Width: msg.Width, Height: msg.Height})
		return m, nil

	case tea.KeyMsg:
		return m, m.handleKey(msg)

	case tea.MouseMsg:
		m.handleMouse(msg)
		return m, nil

	case tea.FocusMsg:
		m.emitter.Emit(protocol.WindowFocusChanged{Focused: true})
		return m, nil

	case tea.BlurMsg:
		m.emitter.Emit(protocol.WindowFocusChanged{Focused: false})
		return m, nil
	}

	return m, m.animate(msg)
}

// apply dispatches one command and returns the follow-up work it produced.
func (m *Model) apply(cmd protocol.Command) tea.Cmd {
	res := m.dispatcher.Dispatch(cmd)
	m.widgets.Store(int64(m.reg.Len()))

	cmds := m.window.takeCmds()
	if a, ok := res.Widget.(widget.Animated); ok {
		cmds = append(cmds, a.Init())
	}
	if res.Applied {
		m.fixFocus(res.Handle)
	}
	if res.Terminal {
		cmds = append(cmds, m.quit())
	}
	return tea.Batch(cmds...)
}

// quit emits AppExit and stops the program.
func (m *Model) quit() tea.Cmd {
	if m.quitting {
		return nil
	}
	m.quitting = true
	m.emitter.Emit(protocol.AppExit{})
	return tea.Quit
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	if msg.Type == tea.KeyCtrlC {
		m.emitter.Emit(protocol.WindowCloseRequested{})
		return m.quit()
	}

	m.emitter.Emit(keyEvent(msg))
	if text, ok := textOf(msg); ok {
		m.emitter.Emit(protocol.TextInput{Text: text})
	}

	switch msg.Type {
	case tea.KeyTab:
		m.moveFocus(1)
		return nil
	case tea.KeyShiftTab:
		m.moveFocus(-1)
		return nil
	}

	if w, ok := m.focused(); ok {
		if action, ok := w.HandleKey(msg); ok {
			m.emitter.WidgetAction(m.focus, action)
		}
	}
	return nil
}

func (m *Model) handleMouse(msg tea.MouseMsg) {
	switch {
	case msg.Action == tea.MouseActionMotion:
		m.emitter.Emit(protocol.MouseMove{X: float64(msg.X), Y: float64(msg.Y)})
	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		m.emitter.Emit(protocol.MouseClick{X: float64(msg.X), Y: float64(msg.Y)})
	}
}

// animate forwards non-input messages, spinner ticks mostly, to animated
// widgets.
func (m *Model) animate(msg tea.Msg) tea.Cmd {
	var cmds []tea.Cmd
	m.tree.Walk(func(_ render.Handle, w render.Widget) bool {
		if a, ok := w.(widget.Animated); ok {
			if cmd := a.Update(msg); cmd != nil {
				cmds = append(cmds, cmd)
			}
		}
		return true
	})
	return tea.Batch(cmds...)
}

// interactive lists focusable widgets in tree order.
func (m *Model) interactive() []render.Handle {
	var out []render.Handle
	m.tree.Walk(func(h render.Handle, w render.Widget) bool {
		if _, ok := w.(widget.Interactive); ok {
			out = append(out, h)
		}
		return true
	})
	return out
}

func (m *Model) focused() (widget.Interactive, bool) {
	if m.focus == 0 || !m.tree.Visible(m.focus) {
		return nil, false
	}
	w, ok := m.tree.Widget(m.focus)
	if !ok {
		return nil, false
	}
	iw, ok := w.(widget.Interactive)
	return iw, ok
}

func (m *Model) setFocus(h render.Handle) {
	if h == m.focus {
		return
	}
	if w, ok := m.focused(); ok {
		w.SetFocused(false)
	}
	m.focus = h
	if w, ok := m.focused(); ok {
		w.SetFocused(true)
	}
}

func (m *Model) moveFocus(delta int) {
	ring := m.interactive()
	if len(ring) == 0 {
		m.focus = 0
		return
	}

	next := 0
	for i, h := range ring {
		if h == m.focus {
			next = (i + delta + len(ring)) % len(ring)
			break
		}
	}
	m.setFocus(ring[next])
}

// fixFocus keeps focus on a live, visible, interactive widget after the
// tree changes. A newly created interactive widget takes focus when nothing
// holds it.
func (m *Model) fixFocus(created render.Handle) {
	if _, ok := m.focused(); ok {
		return
	}
	m.focus = 0
	if created != 0 {
		if w, ok := m.tree.Widget(created); ok {
			if _, ok := w.(widget.Interactive); ok && m.tree.Visible(created) {
				m.setFocus(created)
				return
			}
		}
	}
	if ring := m.interactive(); len(ring) > 0 {
		m.setFocus(ring[0])
	}
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}

	width, height := m.window.clip(m.termWidth, m.termHeight)
	header := ""
	if title := m.window.Title(); title != "" {
		header = titleStyle.Render(title)
		if width > 0 {
			header = lipgloss.NewStyle().MaxWidth(width).Render(header)
		}
		if height > 0 {
			height--
		}
	}

	body := m.tree.View(width, height, m.focus)
	if header == "" {
		return body
	}
	return header + "\n" + body
}
