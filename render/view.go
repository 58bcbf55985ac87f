package render

import "github.com/charmbracelet/lipgloss"

// Context is passed to Widget.View.
type Context struct {
	// Focused is true for the widget holding keyboard focus.
	Focused bool
}

// Widget is a built native widget.
type Widget interface {
	// View renders the widget. children holds the rendered views of the
	// widget's visible children, in order.
	View(ctx Context, children []string) string
}

// TextSetter is implemented by widgets whose text can change in place.
type TextSetter interface {
	SetText(text string)
}

// View renders the visible tree, clipped to width x height cells. Zero
// dimensions leave that axis unclipped.
func (t *Tree) View(width, height int, focused Handle) string {
	out := t.view(t.root, focused)

	clip := lipgloss.NewStyle()
	if width > 0 {
		clip = clip.MaxWidth(width)
	}
	if height > 0 {
		clip = clip.MaxHeight(height)
	}
	return clip.Render(out)
}

func (t *Tree) view(n *node, focused Handle) string {
	children := make([]string, 0, len(n.children))
	for _, c := range n.children {
		if c.hidden {
			continue
		}
		children = append(children, t.view(c, focused))
	}
	return n.widget.View(Context{Focused: n.handle == focused}, children)
}
