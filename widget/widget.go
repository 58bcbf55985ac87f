// Package widget builds native terminal widgets, one construction path per
// widget kind.
package widget

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/drake/duet/protocol"
	"github.com/drake/duet/render"
	"github.com/drake/duet/style"
)

// Spec describes a widget to build.
type Spec struct {
	Kind  protocol.WidgetKind
	Text  string
	Style *protocol.WidgetStyle
	Data  *protocol.WidgetData
}

// Interactive widgets take part in the focus ring and turn key presses into
// widget actions.
type Interactive interface {
	render.Widget
	SetFocused(focused bool)
	// HandleKey returns the action produced by msg, if any.
	HandleKey(msg tea.KeyMsg) (protocol.Action, bool)
}

// Animated widgets run a bubbletea tick loop.
type Animated interface {
	render.Widget
	Init() tea.Cmd
	Update(msg tea.Msg) tea.Cmd
}

// Builder constructs widgets. It is used from the UI goroutine only.
type Builder struct {
	styles *style.Resolver
}

// NewBuilder creates a builder resolving styles through styles.
func NewBuilder(styles *style.Resolver) *Builder {
	return &Builder{styles: styles}
}

// Build constructs the widget for spec. It always returns a usable widget:
// when err is non-nil the widget is a placeholder label and err says why.
func (b *Builder) Build(spec Spec) (render.Widget, error) {
	st, err := b.styles.Resolve(spec.Style)
	if err != nil {
		return Placeholder(spec), fmt.Errorf("build %s: %w", spec.Kind, err)
	}

	ws := spec.Style
	if ws == nil {
		ws = &protocol.WidgetStyle{}
	}
	data := spec.Data
	if data == nil {
		data = &protocol.WidgetData{}
	}
	bx := box{style: st}

	switch spec.Kind.Tag {
	case protocol.TagLabel:
		return NewLabel(bx, spec.Text, ws.Width), nil
	case protocol.TagProse:
		return NewProse(bx, spec.Text, ws.Width), nil
	case protocol.TagButton:
		return NewButton(bx, spec.Text, data.SvgData != ""), nil
	case protocol.TagContainer, protocol.TagHoverable:
		return NewFlex(bx, ws), nil
	case protocol.TagFlex:
		return NewFlex(bx, ws), nil
	case protocol.TagSizedBox:
		return NewSizedBox(bx, ws.Width, ws.Height), nil
	case protocol.TagZStack:
		return NewZStack(bx), nil
	case protocol.TagPortal:
		return NewPortal(bx, ws.Height), nil
	case protocol.TagGrid:
		return NewGrid(bx, data.Columns, ws.Gap), nil
	case protocol.TagTextInput:
		return NewTextInput(bx, spec.Text, ws.Placeholder, ws.Width), nil
	case protocol.TagTextArea:
		return NewTextArea(bx, spec.Text, ws.Placeholder, ws.Width, ws.Height), nil
	case protocol.TagCheckbox:
		return NewCheckbox(bx, spec.Text, data.Checked), nil
	case protocol.TagSlider:
		return NewSlider(bx, data), nil
	case protocol.TagProgressBar:
		return NewProgressBar(bx, data, ws.Width), nil
	case protocol.TagSpinner:
		return NewSpinner(bx, spec.Text), nil
	case protocol.TagImage:
		return NewMedia(bx, "image", data.Src), nil
	case protocol.TagVideo:
		return NewMedia(bx, "video", data.Src), nil
	case protocol.TagSvg:
		return NewMedia(bx, "svg", ""), nil
	case protocol.TagCustom:
		return NewLabel(bx, customText(spec), 0), nil
	default:
		return Placeholder(spec), fmt.Errorf("build: unknown kind tag %d", spec.Kind.Tag)
	}
}

// NewRoot returns the unstyled column that holds top-level widgets.
func NewRoot() *Flex {
	return NewFlex(box{style: lipgloss.NewStyle()}, &protocol.WidgetStyle{})
}

// Placeholder returns the label shown when a widget cannot be built. It
// keeps the widget's text when there is any, and the kind name otherwise.
func Placeholder(spec Spec) render.Widget {
	text := spec.Text
	if text == "" {
		text = "[" + spec.Kind.String() + "]"
	}
	return NewLabel(box{style: lipgloss.NewStyle()}, text, 0)
}

func customText(spec Spec) string {
	name := spec.Kind.Name
	if name == "" {
		name = "Custom"
	}
	if spec.Text != "" {
		return name + ": " + spec.Text
	}
	return name
}

var focusStyle = lipgloss.NewStyle().Reverse(true)

// box carries the resolved style shared by every widget.
type box struct {
	style lipgloss.Style
}

func (b box) frame(ctx render.Context, s string) string {
	if ctx.Focused {
		s = focusStyle.Render(s)
	}
	return b.style.Render(s)
}

// below stacks children under a leaf widget's own view.
func below(own string, children []string) string {
	if len(children) == 0 {
		return own
	}
	return lipgloss.JoinVertical(lipgloss.Left, append([]string{own}, children...)...)
}
