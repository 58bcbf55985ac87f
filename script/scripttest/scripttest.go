// Package scripttest provides in-memory fakes of the script call surface
// and timer service for engine tests.
package scripttest

import (
	"fmt"
	"time"

	"github.com/drake/duet/script"
)

var _ script.API = (*Recorder)(nil)

// Recorder records each call as a short string. Err, when set, is
// returned from every call.
type Recorder struct {
	Calls []string
	Opts  []map[string]any
	Err   error
}

func (r *Recorder) record(format string, args ...any) error {
	r.Calls = append(r.Calls, fmt.Sprintf(format, args...))
	return r.Err
}

func (r *Recorder) SetTitle(title string) error { return r.record("title %s", title) }
func (r *Recorder) ResizeWindow(w, h int) error  { return r.record("resize %dx%d", w, h) }
func (r *Recorder) CloseWindow() error           { return r.record("close") }
func (r *Recorder) Exit() error                  { return r.record("exit") }

// CreateWidget returns "generated" for an empty id.
func (r *Recorder) CreateWidget(id, kind, parentID string, opts map[string]any) (string, error) {
	if id == "" {
		id = "generated"
	}
	r.Opts = append(r.Opts, opts)
	return id, r.record("create %s %s %s", id, kind, parentID)
}

func (r *Recorder) RemoveWidget(id string) error { return r.record("remove %s", id) }

func (r *Recorder) SetWidgetText(id, text string) error {
	return r.record("text %s %s", id, text)
}

func (r *Recorder) SetWidgetVisible(id string, visible bool) error {
	return r.record("visible %s %v", id, visible)
}

func (r *Recorder) Log(level, message string) error {
	return r.record("log %s %s", level, message)
}

var _ script.Timers = (*Timers)(nil)

// Timers hands out sequential ids and never fires; tests fire by hand.
type Timers struct {
	Intervals map[int]time.Duration
	Cancelled []int
	next      int
}

func (t *Timers) add(d time.Duration) int {
	t.next++
	if t.Intervals == nil {
		t.Intervals = make(map[int]time.Duration)
	}
	t.Intervals[t.next] = d
	return t.next
}

func (t *Timers) After(d time.Duration) int { return t.add(d) }
func (t *Timers) Every(d time.Duration) int { return t.add(d) }
func (t *Timers) Cancel(id int)             { t.Cancelled = append(t.Cancelled, id) }
