package widget

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/drake/duet/protocol"
	"github.com/drake/duet/render"
)

// Flex lays children out in a row or a column. Container and Hoverable
// are columns unless their style says otherwise.
type Flex struct {
	box
	row   bool
	gap   int
	cross lipgloss.Position
}

func NewFlex(b box, ws *protocol.WidgetStyle) *Flex {
	f := &Flex{
		box: b,
		row: strings.EqualFold(ws.Direction, "row"),
		gap: min(ws.Gap, maxSpan),
	}

	if f.row {
		f.cross = position(ws.CrossAxisAlignment, lipgloss.Top, lipgloss.Bottom)
		if ws.Width > 0 {
			f.style = f.style.Align(position(ws.MainAxisAlignment, lipgloss.Left, lipgloss.Right))
		}
	} else {
		f.cross = position(ws.CrossAxisAlignment, lipgloss.Left, lipgloss.Right)
		if ws.Height > 0 {
			f.style = f.style.AlignVertical(position(ws.MainAxisAlignment, lipgloss.Top, lipgloss.Bottom))
		}
	}
	return f
}

// Row reports whether children are laid out horizontally.
func (f *Flex) Row() bool { return f.row }

func (f *Flex) View(ctx render.Context, children []string) string {
	if len(children) == 0 {
		return f.frame(ctx, "")
	}

	parts := children
	if f.gap > 0 {
		spacer := strings.Repeat(" ", f.gap)
		if !f.row {
			spacer = strings.Repeat("\n", f.gap-1)
		}
		parts = make([]string, 0, 2*len(children)-1)
		for i, c := range children {
			if i > 0 {
				parts = append(parts, spacer)
			}
			parts = append(parts, c)
		}
	}

	if f.row {
		return f.frame(ctx, lipgloss.JoinHorizontal(f.cross, parts...))
	}
	return f.frame(ctx, lipgloss.JoinVertical(f.cross, parts...))
}

// position maps a start/center/end alignment name onto lipgloss positions.
func position(name string, start, end lipgloss.Position) lipgloss.Position {
	switch strings.ToLower(name) {
	case "center":
		return lipgloss.Center
	case "end":
		return end
	default:
		return start
	}
}

// SizedBox clips its children to a fixed size.
type SizedBox struct {
	box
	width, height int
}

func NewSizedBox(b box, width, height int) *SizedBox {
	return &SizedBox{box: b, width: width, height: height}
}

func (s *SizedBox) View(ctx render.Context, children []string) string {
	clip := lipgloss.NewStyle()
	if s.width > 0 {
		clip = clip.MaxWidth(s.width)
	}
	if s.height > 0 {
		clip = clip.MaxHeight(s.height)
	}
	return s.frame(ctx, clip.Render(lipgloss.JoinVertical(lipgloss.Left, children...)))
}

// ZStack draws children on top of each other. Later children cover earlier
// ones line by line.
type ZStack struct {
	box
}

func NewZStack(b box) *ZStack { return &ZStack{box: b} }

func (z *ZStack) View(ctx render.Context, children []string) string {
	var out []string
	for _, c := range children {
		for i, line := range strings.Split(c, "\n") {
			if i < len(out) {
				out[i] = line
			} else {
				out = append(out, line)
			}
		}
	}
	return z.frame(ctx, strings.Join(out, "\n"))
}

// Portal is a column of children cut to a maximum height.
type Portal struct {
	box
	height int
}

func NewPortal(b box, height int) *Portal {
	return &Portal{box: b, height: height}
}

func (p *Portal) View(ctx render.Context, children []string) string {
	content := lipgloss.JoinVertical(lipgloss.Left, children...)
	if p.height > 0 {
		content = lipgloss.NewStyle().MaxHeight(p.height).Render(content)
	}
	return p.frame(ctx, content)
}

// maxSpan caps script-supplied gaps and column counts, in cells.
const maxSpan = 256

// Grid lays children out in rows of a fixed number of columns.
type Grid struct {
	box
	columns int
	gap     int
}

const defaultGridColumns = 2

func NewGrid(b box, columns, gap int) *Grid {
	if columns <= 0 {
		columns = defaultGridColumns
	}
	if gap <= 0 {
		gap = 1
	}
	columns, gap = min(columns, maxSpan), min(gap, maxSpan)
	return &Grid{box: b, columns: columns, gap: gap}
}

func (g *Grid) View(ctx render.Context, children []string) string {
	if len(children) == 0 {
		return g.frame(ctx, "")
	}

	columns := min(g.columns, len(children))
	widths := make([]int, columns)
	for i, c := range children {
		if w := lipgloss.Width(c); w > widths[i%columns] {
			widths[i%columns] = w
		}
	}

	spacer := strings.Repeat(" ", g.gap)
	var rows []string
	for start := 0; start < len(children); start += columns {
		end := min(start+columns, len(children))
		cells := make([]string, 0, 2*(end-start))
		for i := start; i < end; i++ {
			if i > start {
				cells = append(cells, spacer)
			}
			cells = append(cells, lipgloss.NewStyle().Width(widths[i-start]).Render(children[i]))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	return g.frame(ctx, lipgloss.JoinVertical(lipgloss.Left, rows...))
}
