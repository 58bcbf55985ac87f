package widget

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/drake/duet/render"
)

// Label is a single run of text. With a fixed width the text is truncated
// to fit.
type Label struct {
	box
	text  string
	width int
}

func NewLabel(b box, text string, width int) *Label {
	return &Label{box: b, text: text, width: width}
}

func (l *Label) Text() string { return l.text }

func (l *Label) SetText(text string) { l.text = text }

func (l *Label) View(ctx render.Context, children []string) string {
	text := l.text
	if l.width > 0 {
		text = runewidth.Truncate(text, l.width, "…")
	}
	return below(l.frame(ctx, text), children)
}

// Prose is wrapped body text.
type Prose struct {
	box
	text  string
	width int
}

// defaultProseWidth is used when the style sets no width.
const defaultProseWidth = 60

func NewProse(b box, text string, width int) *Prose {
	if width <= 0 {
		width = defaultProseWidth
	}
	return &Prose{box: b, text: text, width: width}
}

func (p *Prose) SetText(text string) { p.text = text }

func (p *Prose) View(ctx render.Context, children []string) string {
	wrapped := lipgloss.NewStyle().Width(p.width).Render(p.text)
	return below(p.frame(ctx, wrapped), children)
}

// Media stands in for image, video and svg content the terminal cannot draw.
type Media struct {
	box
	kind string
	src  string
}

func NewMedia(b box, kind, src string) *Media {
	return &Media{box: b, kind: kind, src: src}
}

func (m *Media) View(ctx render.Context, children []string) string {
	s := "[" + m.kind
	if m.src != "" {
		s += " " + m.src
	}
	s += "]"
	return below(m.frame(ctx, s), children)
}
