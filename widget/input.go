package widget

import (
	"math"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/drake/duet/protocol"
	"github.com/drake/duet/render"
)

// Compile-time checks
var (
	_ Interactive = (*Button)(nil)
	_ Interactive = (*Checkbox)(nil)
	_ Interactive = (*Slider)(nil)
	_ Interactive = (*TextInput)(nil)
	_ Interactive = (*TextArea)(nil)
)

func activates(msg tea.KeyMsg) bool {
	return msg.Type == tea.KeyEnter || msg.Type == tea.KeySpace
}

// Button emits Click on Enter or Space. Children (an icon, usually) are
// drawn after the text.
type Button struct {
	box
	text string
	icon bool
}

func NewButton(b box, text string, icon bool) *Button {
	return &Button{box: b, text: text, icon: icon}
}

func (b *Button) SetText(text string) { b.text = text }

func (b *Button) SetFocused(bool) {}

func (b *Button) HandleKey(msg tea.KeyMsg) (protocol.Action, bool) {
	if activates(msg) {
		return protocol.Click(), true
	}
	return protocol.Action{}, false
}

func (b *Button) View(ctx render.Context, children []string) string {
	label := b.text
	if b.icon {
		label = "◆ " + label
	}
	parts := append([]string{"[ " + label}, children...)
	parts = append(parts, " ]")
	return b.frame(ctx, lipgloss.JoinHorizontal(lipgloss.Center, parts...))
}

// Checkbox toggles on Enter or Space and reports the new state as
// ValueChanged(1) or ValueChanged(0).
type Checkbox struct {
	box
	label   string
	checked bool
}

func NewCheckbox(b box, label string, checked bool) *Checkbox {
	return &Checkbox{box: b, label: label, checked: checked}
}

func (c *Checkbox) Checked() bool { return c.checked }

func (c *Checkbox) SetText(text string) { c.label = text }

func (c *Checkbox) SetFocused(bool) {}

func (c *Checkbox) HandleKey(msg tea.KeyMsg) (protocol.Action, bool) {
	if !activates(msg) {
		return protocol.Action{}, false
	}
	c.checked = !c.checked
	if c.checked {
		return protocol.ValueChanged(1), true
	}
	return protocol.ValueChanged(0), true
}

func (c *Checkbox) View(ctx render.Context, children []string) string {
	mark := "[ ]"
	if c.checked {
		mark = "[x]"
	}
	s := mark
	if c.label != "" {
		s += " " + c.label
	}
	return below(c.frame(ctx, s), children)
}

// Slider moves by step on Left and Right, clamped to [min, max].
type Slider struct {
	box
	min, max, value, step float64
}

const sliderTrack = 20

func NewSlider(b box, data *protocol.WidgetData) *Slider {
	s := &Slider{
		box:   b,
		min:   finite(data.Min, 0),
		max:   finite(data.Max, 1),
		value: finite(data.Value, 0.5),
	}
	if s.max < s.min {
		s.min, s.max = s.max, s.min
	}
	s.step = finite(data.Step, (s.max-s.min)/sliderTrack)
	if !(s.step > 0) || math.IsInf(s.step, 0) {
		s.step = (s.max - s.min) / sliderTrack
	}
	s.value = s.clamp(s.value)
	return s
}

func (s *Slider) Value() float64 { return s.value }

// finite returns *p, or def when p is nil, NaN or infinite.
func finite(p *float64, def float64) float64 {
	v := protocol.Float(p, def)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return def
	}
	return v
}

func (s *Slider) clamp(v float64) float64 {
	return math.Max(s.min, math.Min(s.max, v))
}

func (s *Slider) SetFocused(bool) {}

func (s *Slider) HandleKey(msg tea.KeyMsg) (protocol.Action, bool) {
	var next float64
	switch msg.Type {
	case tea.KeyLeft:
		next = s.clamp(s.value - s.step)
	case tea.KeyRight:
		next = s.clamp(s.value + s.step)
	default:
		return protocol.Action{}, false
	}
	if next == s.value {
		return protocol.Action{}, false
	}
	s.value = next
	return protocol.ValueChanged(s.value), true
}

func (s *Slider) View(ctx render.Context, children []string) string {
	pos := 0
	if s.max > s.min {
		// Extreme finite bounds can still overflow to Inf/Inf.
		if f := (s.value - s.min) / (s.max - s.min); f > 0 {
			pos = int(math.Round(min(f, 1) * sliderTrack))
		}
	}
	track := strings.Repeat("=", pos) + "|" + strings.Repeat("-", sliderTrack-pos)
	out := "[" + track + "] " + strconv.FormatFloat(s.value, 'g', 4, 64)
	return below(s.frame(ctx, out), children)
}

const defaultInputWidth = 20

// TextInput is a single-line editor. Edits emit TextChanged; Enter emits
// Custom("submit").
type TextInput struct {
	box
	model textinput.Model
}

func NewTextInput(b box, text, placeholder string, width int) *TextInput {
	if width <= 0 {
		width = defaultInputWidth
	}
	ti := textinput.New()
	ti.Prompt = ""
	ti.Placeholder = placeholder
	ti.Width = width
	ti.SetValue(text)
	return &TextInput{box: b, model: ti}
}

func (t *TextInput) Value() string { return t.model.Value() }

func (t *TextInput) SetText(text string) { t.model.SetValue(text) }

func (t *TextInput) SetFocused(focused bool) {
	if focused {
		t.model.Focus()
	} else {
		t.model.Blur()
	}
}

func (t *TextInput) HandleKey(msg tea.KeyMsg) (protocol.Action, bool) {
	if msg.Type == tea.KeyEnter {
		return protocol.CustomAction("submit"), true
	}
	before := t.model.Value()
	t.model, _ = t.model.Update(msg)
	if after := t.model.Value(); after != before {
		return protocol.TextChanged(after), true
	}
	return protocol.Action{}, false
}

func (t *TextInput) View(ctx render.Context, children []string) string {
	// The editor draws its own cursor; the focus highlight would hide it.
	return below(t.style.Render(t.model.View()), children)
}

// TextArea is a multi-line editor. Edits emit TextChanged.
type TextArea struct {
	box
	model textarea.Model
}

const defaultAreaHeight = 4

func NewTextArea(b box, text, placeholder string, width, height int) *TextArea {
	if width <= 0 {
		width = defaultInputWidth * 2
	}
	if height <= 0 {
		height = defaultAreaHeight
	}
	ta := textarea.New()
	ta.ShowLineNumbers = false
	ta.Placeholder = placeholder
	ta.SetWidth(width)
	ta.SetHeight(height)
	ta.SetValue(text)
	return &TextArea{box: b, model: ta}
}

func (t *TextArea) Value() string { return t.model.Value() }

func (t *TextArea) SetText(text string) { t.model.SetValue(text) }

func (t *TextArea) SetFocused(focused bool) {
	if focused {
		t.model.Focus()
	} else {
		t.model.Blur()
	}
}

func (t *TextArea) HandleKey(msg tea.KeyMsg) (protocol.Action, bool) {
	before := t.model.Value()
	t.model, _ = t.model.Update(msg)
	if after := t.model.Value(); after != before {
		return protocol.TextChanged(after), true
	}
	return protocol.Action{}, false
}

func (t *TextArea) View(ctx render.Context, children []string) string {
	return below(t.style.Render(t.model.View()), children)
}
