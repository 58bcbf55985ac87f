package protocol

// Event is a UI → script notification. Implementations are closed; Type
// returns the wire discriminator.
type Event interface {
	Type() string
}

// Wire discriminators.
const (
	TypeWindowResized        = "windowResized"
	TypeMouseClick           = "mouseClick"
	TypeMouseMove            = "mouseMove"
	TypeKeyPress             = "keyPress"
	TypeKeyRelease           = "keyRelease"
	TypeTextInput            = "textInput"
	TypeWidgetAction         = "widgetAction"
	TypeWindowFocusChanged   = "windowFocusChanged"
	TypeWindowCloseRequested = "windowCloseRequested"
	TypeAppExit              = "appExit"
	TypeDisconnected         = "disconnected"
)

// Modifiers holds the keyboard modifier state of a key event.
type Modifiers struct {
	Shift bool
	Ctrl  bool
	Alt   bool
	Meta  bool
}

type WindowResized struct {
	Width  int
	Height int
}

type MouseClick struct {
	X, Y float64
}

type MouseMove struct {
	X, Y float64
}

type KeyPress struct {
	Key       string
	Modifiers Modifiers
}

type KeyRelease struct {
	Key       string
	Modifiers Modifiers
}

type TextInput struct {
	Text string
}

// WidgetAction reports an interaction with a script-registered widget.
type WidgetAction struct {
	WidgetID string
	Action   Action
}

type WindowFocusChanged struct {
	Focused bool
}

type WindowCloseRequested struct{}

type AppExit struct{}

// Disconnected is the sentinel delivered to the script once the UI side of
// the event queue is gone.
type Disconnected struct{}

func (WindowResized) Type() string        { return TypeWindowResized }
func (MouseClick) Type() string           { return TypeMouseClick }
func (MouseMove) Type() string            { return TypeMouseMove }
func (KeyPress) Type() string             { return TypeKeyPress }
func (KeyRelease) Type() string           { return TypeKeyRelease }
func (TextInput) Type() string            { return TypeTextInput }
func (WidgetAction) Type() string         { return TypeWidgetAction }
func (WindowFocusChanged) Type() string   { return TypeWindowFocusChanged }
func (WindowCloseRequested) Type() string { return TypeWindowCloseRequested }
func (AppExit) Type() string              { return TypeAppExit }
func (Disconnected) Type() string         { return TypeDisconnected }

// ActionKind discriminates the Action variants.
type ActionKind int

const (
	ActionClick ActionKind = iota
	ActionDoubleClick
	ActionTextChanged
	ActionValueChanged
	ActionCustom
)

var actionNames = [...]string{
	ActionClick:        "click",
	ActionDoubleClick:  "doubleClick",
	ActionTextChanged:  "textChanged",
	ActionValueChanged: "valueChanged",
	ActionCustom:       "custom",
}

func (k ActionKind) String() string {
	if k >= 0 && int(k) < len(actionNames) {
		return actionNames[k]
	}
	return "unknown"
}

// Action is the widget-specific part of a WidgetAction. Text is set for
// TextChanged and Custom, Value for ValueChanged.
type Action struct {
	Kind  ActionKind
	Text  string
	Value float64
}

func Click() Action                  { return Action{Kind: ActionClick} }
func DoubleClick() Action            { return Action{Kind: ActionDoubleClick} }
func TextChanged(text string) Action { return Action{Kind: ActionTextChanged, Text: text} }
func ValueChanged(v float64) Action  { return Action{Kind: ActionValueChanged, Value: v} }
func CustomAction(text string) Action {
	return Action{Kind: ActionCustom, Text: text}
}
