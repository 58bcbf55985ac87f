// Package script runs the scripting side: the call surface scripts use to
// drive the UI, and the cooperative loop that delivers events and timer
// fires to a script engine on a single goroutine.
package script

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/drake/duet/protocol"
	"github.com/drake/duet/transport"
)

// API is the set of calls a script engine exposes to scripts.
type API interface {
	SetTitle(title string) error
	ResizeWindow(width, height int) error
	CloseWindow() error
	Exit() error
	// CreateWidget returns the widget id, generated when id is empty.
	CreateWidget(id, kind, parentID string, opts map[string]any) (string, error)
	RemoveWidget(id string) error
	SetWidgetText(id, text string) error
	SetWidgetVisible(id string, visible bool) error
	Log(level, message string) error
}

// Timers schedules script timers. Fires arrive on the runner's channel.
type Timers interface {
	After(d time.Duration) int
	Every(d time.Duration) int
	Cancel(id int)
}

var _ API = (*Host)(nil)

// Host implements API over the script end of the transport. It is used
// only from the script goroutine.
type Host struct {
	end *transport.ScriptEnd
	log zerolog.Logger
}

func NewHost(end *transport.ScriptEnd, logger zerolog.Logger) *Host {
	return &Host{
		end: end,
		log: logger.With().Str("component", "script").Logger(),
	}
}

func (h *Host) SetTitle(title string) error {
	return h.end.Send(protocol.SetTitle{Title: title})
}

func (h *Host) ResizeWindow(width, height int) error {
	return h.end.Send(protocol.ResizeWindow{Width: width, Height: height})
}

func (h *Host) CloseWindow() error {
	return h.end.Send(protocol.CloseWindow{})
}

func (h *Host) Exit() error {
	return h.end.Send(protocol.ExitApp{})
}

func (h *Host) CreateWidget(id, kind, parentID string, opts map[string]any) (string, error) {
	if id == "" {
		id = uuid.NewString()
	}

	decoded, unused, err := protocol.DecodeOptions(opts)
	if err != nil {
		return "", fmt.Errorf("create %q: %w", id, err)
	}
	if len(unused) > 0 {
		h.log.Warn().Str("id", id).Strs("keys", unused).Msg("ignoring unknown widget options")
	}

	cmd := protocol.CreateWidget{
		ID:       id,
		Kind:     protocol.ParseKind(kind),
		ParentID: parentID,
		Text:     decoded.Text,
		Style:    decoded.Style,
		Data:     decoded.Data,
	}
	if err := h.end.Send(cmd); err != nil {
		return "", err
	}
	return id, nil
}

func (h *Host) RemoveWidget(id string) error {
	return h.end.Send(protocol.RemoveWidget{ID: id})
}

func (h *Host) SetWidgetText(id, text string) error {
	return h.end.Send(protocol.SetWidgetText{ID: id, Text: text})
}

func (h *Host) SetWidgetVisible(id string, visible bool) error {
	return h.end.Send(protocol.SetWidgetVisible{ID: id, Visible: visible})
}

func (h *Host) Log(level, message string) error {
	return h.end.Send(protocol.Log{Level: protocol.ParseLogLevel(level), Message: message})
}

// WaitForEvent blocks until the UI sends an event and returns its JSON
// form. Once the UI is gone it returns protocol.DisconnectedJSON with a nil
// error, every time it is called. An event that cannot be encoded is logged
// and skipped. Only a done ctx yields an error.
func (h *Host) WaitForEvent(ctx context.Context) (string, error) {
	for {
		ev, err := h.end.Recv(ctx)
		if errors.Is(err, transport.ErrDisconnected) {
			return protocol.DisconnectedJSON, nil
		}
		if err != nil {
			return "", err
		}

		data, err := protocol.EncodeEvent(ev)
		if err != nil {
			h.log.Error().Err(err).Str("type", ev.Type()).Msg("event encoding failed, skipping")
			continue
		}
		return data, nil
	}
}

// Language is a script language.
type Language int

const (
	Lua Language = iota + 1
	JavaScript
)

func (l Language) String() string {
	switch l {
	case Lua:
		return "lua"
	case JavaScript:
		return "javascript"
	default:
		return "unknown"
	}
}

// ErrUnknownLanguage is returned by LanguageOf for unsupported extensions.
var ErrUnknownLanguage = errors.New("unsupported script type")

// LanguageOf picks the engine for a script by file extension.
func LanguageOf(path string) (Language, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".lua":
		return Lua, nil
	case ".js", ".mjs":
		return JavaScript, nil
	}
	return 0, fmt.Errorf("%s: %w (want .lua, .js or .mjs)", path, ErrUnknownLanguage)
}
