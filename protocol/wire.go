package protocol

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrUnknownEvent is returned by DecodeEvent for an unrecognized discriminator.
var ErrUnknownEvent = errors.New("protocol: unknown event type")

// WireEvent is the JSON object handed to scripts. Only the fields of the
// variant named by Type are present.
type WireEvent struct {
	Type string `json:"type" jsonschema:"enum=windowResized,enum=mouseClick,enum=mouseMove,enum=keyPress,enum=keyRelease,enum=textInput,enum=widgetAction,enum=windowFocusChanged,enum=windowCloseRequested,enum=appExit,enum=disconnected"`

	Width  *int `json:"width,omitempty"`
	Height *int `json:"height,omitempty"`

	X *float64 `json:"x,omitempty"`
	Y *float64 `json:"y,omitempty"`

	Key   *string `json:"key,omitempty"`
	Shift *bool   `json:"shift,omitempty"`
	Ctrl  *bool   `json:"ctrl,omitempty"`
	Alt   *bool   `json:"alt,omitempty"`
	Meta  *bool   `json:"meta,omitempty"`

	Text *string `json:"text,omitempty"`

	WidgetID *string `json:"widgetId,omitempty"`
	Action   *string `json:"action,omitempty" jsonschema:"enum=click,enum=doubleClick,enum=textChanged,enum=valueChanged,enum=custom"`
	// Value is a string for textChanged/custom and a number for valueChanged.
	Value any `json:"value,omitempty" jsonschema:"oneof_type=string;number"`

	Focused *bool `json:"focused,omitempty"`
}

// DisconnectedJSON is the encoded Disconnected sentinel.
const DisconnectedJSON = `{"type":"disconnected"}`

// EncodeEvent serializes ev to its wire form. Strings are escaped by the JSON
// encoder (quotes, backslashes and control characters); HTML escaping is off
// so text reaches scripts unchanged.
func EncodeEvent(ev Event) (string, error) {
	w, err := toWire(ev)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(w); err != nil {
		return "", fmt.Errorf("encode %s: %w", ev.Type(), err)
	}
	return string(bytes.TrimRight(buf.Bytes(), "\n")), nil
}

// DecodeEvent parses the wire form produced by EncodeEvent.
func DecodeEvent(data string) (Event, error) {
	var w WireEvent
	if err := json.Unmarshal([]byte(data), &w); err != nil {
		return nil, fmt.Errorf("decode event: %w", err)
	}
	return fromWire(w)
}

// IsDisconnected reports whether data is the encoded Disconnected sentinel.
func IsDisconnected(data string) bool {
	ev, err := DecodeEvent(data)
	if err != nil {
		return false
	}
	_, ok := ev.(Disconnected)
	return ok
}

func toWire(ev Event) (WireEvent, error) {
	w := WireEvent{Type: ev.Type()}

	switch e := ev.(type) {
	case WindowResized:
		w.Width, w.Height = &e.Width, &e.Height
	case MouseClick:
		w.X, w.Y = &e.X, &e.Y
	case MouseMove:
		w.X, w.Y = &e.X, &e.Y
	case KeyPress:
		setKey(&w, e.Key, e.Modifiers)
	case KeyRelease:
		setKey(&w, e.Key, e.Modifiers)
	case TextInput:
		w.Text = &e.Text
	case WidgetAction:
		action := e.Action.Kind.String()
		w.WidgetID, w.Action = &e.WidgetID, &action
		switch e.Action.Kind {
		case ActionTextChanged, ActionCustom:
			w.Value = e.Action.Text
		case ActionValueChanged:
			w.Value = e.Action.Value
		}
	case WindowFocusChanged:
		w.Focused = &e.Focused
	case WindowCloseRequested, AppExit, Disconnected:
	default:
		return w, fmt.Errorf("%w: %T", ErrUnknownEvent, ev)
	}
	return w, nil
}

func setKey(w *WireEvent, key string, m Modifiers) {
	w.Key = &key
	w.Shift, w.Ctrl, w.Alt, w.Meta = &m.Shift, &m.Ctrl, &m.Alt, &m.Meta
}

func fromWire(w WireEvent) (Event, error) {
	switch w.Type {
	case TypeWindowResized:
		return WindowResized{Width: deref(w.Width), Height: deref(w.Height)}, nil
	case TypeMouseClick:
		return MouseClick{X: deref(w.X), Y: deref(w.Y)}, nil
	case TypeMouseMove:
		return MouseMove{X: deref(w.X), Y: deref(w.Y)}, nil
	case TypeKeyPress:
		return KeyPress{Key: deref(w.Key), Modifiers: modifiers(w)}, nil
	case TypeKeyRelease:
		return KeyRelease{Key: deref(w.Key), Modifiers: modifiers(w)}, nil
	case TypeTextInput:
		return TextInput{Text: deref(w.Text)}, nil
	case TypeWidgetAction:
		return widgetActionFromWire(w)
	case TypeWindowFocusChanged:
		return WindowFocusChanged{Focused: deref(w.Focused)}, nil
	case TypeWindowCloseRequested:
		return WindowCloseRequested{}, nil
	case TypeAppExit:
		return AppExit{}, nil
	case TypeDisconnected:
		return Disconnected{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEvent, w.Type)
	}
}

func widgetActionFromWire(w WireEvent) (Event, error) {
	if w.WidgetID == nil || w.Action == nil {
		return nil, errors.New("decode widgetAction: missing widgetId or action")
	}

	var action Action
	switch *w.Action {
	case "click":
		action = Click()
	case "doubleClick":
		action = DoubleClick()
	case "textChanged", "custom":
		s, ok := w.Value.(string)
		if !ok {
			return nil, fmt.Errorf("decode widgetAction %s: value is %T, want string", *w.Action, w.Value)
		}
		if *w.Action == "custom" {
			action = CustomAction(s)
		} else {
			action = TextChanged(s)
		}
	case "valueChanged":
		v, ok := w.Value.(float64)
		if !ok {
			return nil, fmt.Errorf("decode widgetAction valueChanged: value is %T, want number", w.Value)
		}
		action = ValueChanged(v)
	default:
		return nil, fmt.Errorf("decode widgetAction: unknown action %q", *w.Action)
	}
	return WidgetAction{WidgetID: *w.WidgetID, Action: action}, nil
}

func modifiers(w WireEvent) Modifiers {
	return Modifiers{
		Shift: deref(w.Shift),
		Ctrl:  deref(w.Ctrl),
		Alt:   deref(w.Alt),
		Meta:  deref(w.Meta),
	}
}

func deref[T any](p *T) T {
	if p == nil {
		var zero T
		return zero
	}
	return *p
}
