package widget

import (
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/drake/duet/protocol"
	"github.com/drake/duet/render"
)

var _ Animated = (*Spinner)(nil)

// ProgressBar shows value as a fraction of [min, max].
type ProgressBar struct {
	box
	bar           progress.Model
	min, max, val float64
}

func NewProgressBar(b box, data *protocol.WidgetData, width int) *ProgressBar {
	if width <= 0 {
		width = defaultInputWidth
	}
	return &ProgressBar{
		box: b,
		bar: progress.New(progress.WithDefaultGradient(), progress.WithWidth(width)),
		min: finite(data.Min, 0),
		max: finite(data.Max, 1),
		val: finite(data.Value, 0),
	}
}

// Percent returns the filled fraction in [0, 1].
func (p *ProgressBar) Percent() float64 {
	if p.max <= p.min {
		return 0
	}
	f := (p.val - p.min) / (p.max - p.min)
	if !(f > 0) {
		return 0
	}
	return min(1, f)
}

func (p *ProgressBar) View(ctx render.Context, children []string) string {
	return below(p.frame(ctx, p.bar.ViewAs(p.Percent())), children)
}

// Spinner is an animated activity indicator with an optional caption.
type Spinner struct {
	box
	model spinner.Model
	text  string
}

func NewSpinner(b box, text string) *Spinner {
	s := spinner.New()
	s.Spinner = spinner.Dot
	return &Spinner{box: b, model: s, text: text}
}

func (s *Spinner) SetText(text string) { s.text = text }

// Init starts the tick loop.
func (s *Spinner) Init() tea.Cmd { return s.model.Tick }

// Update advances the animation on this spinner's own tick messages.
func (s *Spinner) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	s.model, cmd = s.model.Update(msg)
	return cmd
}

func (s *Spinner) View(ctx render.Context, children []string) string {
	out := s.model.View()
	if s.text != "" {
		out += " " + s.text
	}
	return below(s.frame(ctx, out), children)
}
