// Package transport connects the script goroutine and the UI goroutine with
// two independent unbounded FIFO queues: commands flow script to UI, events
// flow UI to script.
//
// Each end is used by exactly one goroutine. Closing an end is the only
// cancellation signal; the peer sees ErrDisconnected once the queue it reads
// is drained.
package transport

import (
	"context"
	"errors"
	"fmt"

	"github.com/drake/duet/internal/buffer"
	"github.com/drake/duet/protocol"
)

// ErrDisconnected reports that the other end has gone away.
var ErrDisconnected = errors.New("transport: peer disconnected")

const initialCap = 64

// Link owns both queues.
type Link struct {
	commands *buffer.Unbounded[protocol.Command]
	events   *buffer.Unbounded[protocol.Event]
}

// New creates a link. limit caps each queue's backlog, dropping the oldest
// item on overflow; 0 leaves the queues unbounded.
func New(limit int) *Link {
	return &Link{
		commands: buffer.NewUnbounded[protocol.Command](initialCap, limit),
		events:   buffer.NewUnbounded[protocol.Event](initialCap, limit),
	}
}

// Script returns the script goroutine's end.
func (l *Link) Script() *ScriptEnd { return &ScriptEnd{link: l} }

// UI returns the UI goroutine's end.
func (l *Link) UI() *UIEnd { return &UIEnd{link: l} }

// Stats is a snapshot of queue depths.
type Stats struct {
	Commands        int
	Events          int
	CommandsDropped int64
	EventsDropped   int64
}

// Stats is safe to call from any goroutine.
func (l *Link) Stats() Stats {
	return Stats{
		Commands:        l.commands.Len(),
		Events:          l.events.Len(),
		CommandsDropped: l.commands.Dropped(),
		EventsDropped:   l.events.Dropped(),
	}
}

func wrap(err error) error {
	switch {
	case errors.Is(err, buffer.ErrClosed), errors.Is(err, buffer.ErrDetached):
		return fmt.Errorf("%w: %w", ErrDisconnected, err)
	default:
		return err
	}
}

// ScriptEnd sends commands and receives events.
type ScriptEnd struct {
	link *Link
}

// Send enqueues cmd without blocking. It fails with ErrDisconnected once the
// UI end is closed.
func (e *ScriptEnd) Send(cmd protocol.Command) error {
	return wrap(e.link.commands.Push(cmd))
}

// Recv blocks for the next event. It returns ErrDisconnected once the UI end
// is closed and every queued event has been received, or ctx.Err().
func (e *ScriptEnd) Recv(ctx context.Context) (protocol.Event, error) {
	ev, err := e.link.events.Pop(ctx)
	return ev, wrap(err)
}

// TryRecv returns the next event if one is queued.
func (e *ScriptEnd) TryRecv() (protocol.Event, bool, error) {
	ev, ok, err := e.link.events.TryPop()
	return ev, ok, wrap(err)
}

// Close ends the script side: no more commands will be sent and no more
// events will be read.
func (e *ScriptEnd) Close() {
	e.link.commands.Close()
	e.link.events.Detach()
}

// UIEnd receives commands and sends events.
type UIEnd struct {
	link *Link
}

// Recv blocks for the next command. It wakes as soon as the script sends.
func (e *UIEnd) Recv(ctx context.Context) (protocol.Command, error) {
	cmd, err := e.link.commands.Pop(ctx)
	return cmd, wrap(err)
}

// Send enqueues ev without blocking. It fails with ErrDisconnected once the
// script end is closed; the UI logs that and keeps running.
func (e *UIEnd) Send(ev protocol.Event) error {
	return wrap(e.link.events.Push(ev))
}

// Close ends the UI side.
func (e *UIEnd) Close() {
	e.link.events.Close()
	e.link.commands.Detach()
}
