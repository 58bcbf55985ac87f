package protocol

// WidgetStyle is the box and text styling a script may attach to a widget.
// Zero values mean "not set".
type WidgetStyle struct {
	Color       string `json:"color,omitempty" mapstructure:"color"`
	Background  string `json:"background,omitempty" mapstructure:"background"`
	BorderColor string `json:"borderColor,omitempty" mapstructure:"borderColor"`
	BorderWidth int    `json:"borderWidth,omitempty" mapstructure:"borderWidth"`

	// Padding is either one value (uniform) or four (top, right, bottom, left).
	Padding []int `json:"padding,omitempty" mapstructure:"padding"`

	Width  int `json:"width,omitempty" mapstructure:"width"`
	Height int `json:"height,omitempty" mapstructure:"height"`

	Bold          bool `json:"bold,omitempty" mapstructure:"bold"`
	Italic        bool `json:"italic,omitempty" mapstructure:"italic"`
	Underline     bool `json:"underline,omitempty" mapstructure:"underline"`
	Strikethrough bool `json:"strikethrough,omitempty" mapstructure:"strikethrough"`

	// Layout of children for container kinds.
	Direction          string `json:"direction,omitempty" mapstructure:"direction"`
	Gap                int    `json:"gap,omitempty" mapstructure:"gap"`
	MainAxisAlignment  string `json:"mainAxisAlignment,omitempty" mapstructure:"mainAxisAlignment"`
	CrossAxisAlignment string `json:"crossAxisAlignment,omitempty" mapstructure:"crossAxisAlignment"`

	Placeholder string `json:"placeholder,omitempty" mapstructure:"placeholder"`
}

// WidgetData carries kind-specific initial state.
type WidgetData struct {
	// Checkbox
	Checked bool `json:"checked,omitempty" mapstructure:"checked"`

	// Slider, ProgressBar
	Min   *float64 `json:"min,omitempty" mapstructure:"min"`
	Max   *float64 `json:"max,omitempty" mapstructure:"max"`
	Value *float64 `json:"value,omitempty" mapstructure:"value"`
	Step  *float64 `json:"step,omitempty" mapstructure:"step"`

	// Image, Video
	Src string `json:"src,omitempty" mapstructure:"src"`

	// Svg, Button icon
	SvgData string `json:"svgData,omitempty" mapstructure:"svgData"`

	// Grid
	Columns int `json:"columns,omitempty" mapstructure:"columns"`
}

// Float returns *p or def when p is nil.
func Float(p *float64, def float64) float64 {
	if p == nil {
		return def
	}
	return *p
}
