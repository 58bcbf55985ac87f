// Package style turns script-supplied WidgetStyle values into lipgloss
// styles. Resolved styles are cached by value.
package style

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/drake/duet/protocol"
)

// ErrBadColor is wrapped by errors for color strings that do not parse.
var ErrBadColor = errors.New("style: bad color")

// DefaultCacheSize is used when a Resolver is created with size <= 0.
const DefaultCacheSize = 256

// Color is a parsed RGBA color.
type Color struct {
	R, G, B, A uint8
}

// Transparent reports whether the color should be left unset.
func (c Color) Transparent() bool { return c.A == 0 }

// Hex returns the color as #rrggbb. Alpha is dropped: terminals have no
// notion of it.
func (c Color) Hex() string {
	return colorful.Color{
		R: float64(c.R) / 255,
		G: float64(c.G) / 255,
		B: float64(c.B) / 255,
	}.Hex()
}

var named = map[string]Color{
	"white":       {255, 255, 255, 255},
	"black":       {0, 0, 0, 255},
	"red":         {255, 0, 0, 255},
	"green":       {0, 128, 0, 255},
	"blue":        {0, 0, 255, 255},
	"yellow":      {255, 255, 0, 255},
	"cyan":        {0, 255, 255, 255},
	"magenta":     {255, 0, 255, 255},
	"orange":      {255, 165, 0, 255},
	"purple":      {128, 0, 128, 255},
	"gray":        {128, 128, 128, 255},
	"grey":        {128, 128, 128, 255},
	"transparent": {0, 0, 0, 0},
}

// ParseColor accepts #RRGGBB, #RRGGBBAA, rgb(r,g,b), rgba(r,g,b,a) with a
// in [0,1], and a small set of named colors.
func ParseColor(s string) (Color, error) {
	s = strings.TrimSpace(s)
	switch {
	case strings.HasPrefix(s, "#"):
		return parseHex(s)
	case strings.HasPrefix(s, "rgb(") || strings.HasPrefix(s, "rgba("):
		return parseFunc(s)
	}
	if c, ok := named[strings.ToLower(s)]; ok {
		return c, nil
	}
	return Color{}, fmt.Errorf("%w: %q", ErrBadColor, s)
}

func parseHex(s string) (Color, error) {
	hex := s[1:]
	if len(hex) != 6 && len(hex) != 8 {
		return Color{}, fmt.Errorf("%w: %q", ErrBadColor, s)
	}

	c, err := colorful.Hex("#" + hex[:6])
	if err != nil {
		return Color{}, fmt.Errorf("%w: %q", ErrBadColor, s)
	}
	r, g, b := c.RGB255()
	out := Color{R: r, G: g, B: b, A: 255}

	if len(hex) == 8 {
		a, err := strconv.ParseUint(hex[6:], 16, 8)
		if err != nil {
			return Color{}, fmt.Errorf("%w: %q", ErrBadColor, s)
		}
		out.A = uint8(a)
	}
	return out, nil
}

func parseFunc(s string) (Color, error) {
	if !strings.HasSuffix(s, ")") {
		return Color{}, fmt.Errorf("%w: %q", ErrBadColor, s)
	}
	inner := s[strings.IndexByte(s, '(')+1 : len(s)-1]
	parts := strings.Split(inner, ",")
	if len(parts) != 3 && len(parts) != 4 {
		return Color{}, fmt.Errorf("%w: %q", ErrBadColor, s)
	}

	var ch [3]uint8
	for i := range ch {
		v, err := strconv.ParseUint(strings.TrimSpace(parts[i]), 10, 8)
		if err != nil {
			return Color{}, fmt.Errorf("%w: %q", ErrBadColor, s)
		}
		ch[i] = uint8(v)
	}

	out := Color{R: ch[0], G: ch[1], B: ch[2], A: 255}
	if len(parts) == 4 {
		a, err := strconv.ParseFloat(strings.TrimSpace(parts[3]), 64)
		if err != nil || a < 0 || a > 1 {
			return Color{}, fmt.Errorf("%w: %q", ErrBadColor, s)
		}
		out.A = uint8(a * 255)
	}
	return out, nil
}

// Resolver converts WidgetStyle values to lipgloss styles.
// It is safe for concurrent use.
type Resolver struct {
	cache *lru.Cache[string, lipgloss.Style]
}

// NewResolver creates a resolver caching up to size styles.
func NewResolver(size int) *Resolver {
	if size <= 0 {
		size = DefaultCacheSize
	}
	cache, _ := lru.New[string, lipgloss.Style](size)
	return &Resolver{cache: cache}
}

// Resolve returns the lipgloss style for ws. A nil ws yields an empty style.
// Malformed colors or padding produce an error; the caller decides whether
// to fall back.
func (r *Resolver) Resolve(ws *protocol.WidgetStyle) (lipgloss.Style, error) {
	if ws == nil {
		return lipgloss.NewStyle(), nil
	}

	key := fmt.Sprintf("%+v", *ws)
	if st, ok := r.cache.Get(key); ok {
		return st, nil
	}

	st, err := build(ws)
	if err != nil {
		return lipgloss.NewStyle(), err
	}
	r.cache.Add(key, st)
	return st, nil
}

// Len returns the number of cached styles.
func (r *Resolver) Len() int { return r.cache.Len() }

func build(ws *protocol.WidgetStyle) (lipgloss.Style, error) {
	st := lipgloss.NewStyle()

	if ws.Color != "" {
		c, err := ParseColor(ws.Color)
		if err != nil {
			return st, fmt.Errorf("color: %w", err)
		}
		if !c.Transparent() {
			st = st.Foreground(lipgloss.Color(c.Hex()))
		}
	}
	if ws.Background != "" {
		c, err := ParseColor(ws.Background)
		if err != nil {
			return st, fmt.Errorf("background: %w", err)
		}
		if !c.Transparent() {
			st = st.Background(lipgloss.Color(c.Hex()))
		}
	}

	if ws.BorderWidth > 0 || ws.BorderColor != "" {
		border := lipgloss.NormalBorder()
		if ws.BorderWidth > 1 {
			border = lipgloss.ThickBorder()
		}
		st = st.Border(border)
		if ws.BorderColor != "" {
			c, err := ParseColor(ws.BorderColor)
			if err != nil {
				return st, fmt.Errorf("borderColor: %w", err)
			}
			if !c.Transparent() {
				st = st.BorderForeground(lipgloss.Color(c.Hex()))
			}
		}
	}

	switch len(ws.Padding) {
	case 0:
	case 1:
		st = st.Padding(ws.Padding[0])
	case 4:
		st = st.Padding(ws.Padding[0], ws.Padding[1], ws.Padding[2], ws.Padding[3])
	default:
		return st, fmt.Errorf("style: padding wants 1 or 4 values, got %d", len(ws.Padding))
	}

	if ws.Width > 0 {
		st = st.Width(ws.Width)
	}
	if ws.Height > 0 {
		st = st.Height(ws.Height)
	}

	return st.
		Bold(ws.Bold).
		Italic(ws.Italic).
		Underline(ws.Underline).
		Strikethrough(ws.Strikethrough), nil
}
