// Package protocol defines the messages exchanged between the script
// goroutine and the UI goroutine: Commands flow script → UI, Events flow
// UI → script.
package protocol

import (
	"fmt"
	"strings"
)

// Command is a script → UI instruction. The set of implementations is closed;
// consumers type-switch on the concrete type.
type Command interface {
	isCommand()
}

// SetTitle sets the window title.
type SetTitle struct {
	Title string
}

// CreateWidget creates a widget and appends it to its parent's children.
// An empty ParentID parents the widget to the root container.
type CreateWidget struct {
	ID       string
	Kind     WidgetKind
	ParentID string
	Text     *string
	Style    *WidgetStyle
	Data     *WidgetData
}

// RemoveWidget removes a widget and all of its descendants.
type RemoveWidget struct {
	ID string
}

// SetWidgetText replaces a widget's text content.
type SetWidgetText struct {
	ID   string
	Text string
}

// SetWidgetVisible shows or hides a widget.
type SetWidgetVisible struct {
	ID      string
	Visible bool
}

// ResizeWindow requests a new window size.
type ResizeWindow struct {
	Width  int
	Height int
}

// CloseWindow asks the window to close. Terminal.
type CloseWindow struct{}

// ExitApp asks the application to exit. Terminal.
type ExitApp struct{}

// Log writes a script message to the diagnostic sink.
type Log struct {
	Level   LogLevel
	Message string
}

func (SetTitle) isCommand()         {}
func (CreateWidget) isCommand()     {}
func (RemoveWidget) isCommand()     {}
func (SetWidgetText) isCommand()    {}
func (SetWidgetVisible) isCommand() {}
func (ResizeWindow) isCommand()     {}
func (CloseWindow) isCommand()      {}
func (ExitApp) isCommand()          {}
func (Log) isCommand()              {}

// CommandName returns a short name for cmd, used in diagnostics.
func CommandName(cmd Command) string {
	switch cmd.(type) {
	case SetTitle:
		return "SetTitle"
	case CreateWidget:
		return "CreateWidget"
	case RemoveWidget:
		return "RemoveWidget"
	case SetWidgetText:
		return "SetWidgetText"
	case SetWidgetVisible:
		return "SetWidgetVisible"
	case ResizeWindow:
		return "ResizeWindow"
	case CloseWindow:
		return "CloseWindow"
	case ExitApp:
		return "ExitApp"
	case Log:
		return "Log"
	default:
		return fmt.Sprintf("%T", cmd)
	}
}

// LogLevel is the severity of a script Log command.
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
)

// ParseLogLevel maps "debug", "info", "warn" and "error". Anything else is
// treated as info.
func ParseLogLevel(s string) LogLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

func (l LogLevel) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return "info"
	}
}
