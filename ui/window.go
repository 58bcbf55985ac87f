package ui

import tea "github.com/charmbracelet/bubbletea"

// Window is the terminal implementation of the windowing collaborator. It
// runs on the UI goroutine; requests are queued as tea commands and picked
// up by the model after each dispatch.
type Window struct {
	title         string
	width, height int
	closing       bool

	pending []tea.Cmd
}

func NewWindow(title string, width, height int) *Window {
	return &Window{title: title, width: width, height: height}
}

func (w *Window) Title() string { return w.title }

// Size returns the requested drawing area; zero means the full terminal.
func (w *Window) Size() (int, int) { return w.width, w.height }

// Closing reports whether a close or exit has been requested.
func (w *Window) Closing() bool { return w.closing }

func (w *Window) SetTitle(title string) {
	w.title = title
	w.pending = append(w.pending, tea.SetWindowTitle(title))
}

func (w *Window) Resize(width, height int) {
	w.width, w.height = max(0, width), max(0, height)
}

func (w *Window) RequestClose() { w.closing = true }

// RequestExit ends the program. A terminal has one window, so exiting and
// closing are the same thing.
func (w *Window) RequestExit() { w.closing = true }

// takeCmds returns and clears the queued commands.
func (w *Window) takeCmds() []tea.Cmd {
	cmds := w.pending
	w.pending = nil
	return cmds
}

// clip returns the drawn area for a terminal of the given size.
func (w *Window) clip(termWidth, termHeight int) (int, int) {
	width, height := termWidth, termHeight
	if w.width > 0 && (width == 0 || w.width < width) {
		width = w.width
	}
	if w.height > 0 && (height == 0 || w.height < height) {
		height = w.height
	}
	return width, height
}
