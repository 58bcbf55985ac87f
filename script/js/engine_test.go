package js

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drake/duet/script"
	"github.com/drake/duet/script/scripttest"
	"github.com/drake/duet/timer"
)

func newTestEngine(t *testing.T, code string) (*Engine, *scripttest.Recorder, *scripttest.Timers) {
	t.Helper()
	rec := &scripttest.Recorder{}
	timers := &scripttest.Timers{}
	e := NewEngine(rec, timers, zerolog.Nop())
	t.Cleanup(e.Close)

	path := filepath.Join(t.TempDir(), "main.js")
	require.NoError(t, os.WriteFile(path, []byte(code), 0o644))
	require.NoError(t, e.Load(context.Background(), path))
	return e, rec, timers
}

func event(t *testing.T, data string) script.Event {
	t.Helper()
	ev, err := script.ParseEvent(data)
	require.NoError(t, err)
	return ev
}

func TestWindowAndUICalls(t *testing.T) {
	e, rec, _ := newTestEngine(t, `
		appjs.window.setTitle("Counter");
		appjs.window.resize(80, 24);
		const id = appjs.ui.createWidget("btn1", "Button", null, {text: "Go", style: {bold: true}});
		appjs.ui.createWidget("lbl", "Label", id);
		appjs.ui.createWidget("box", "Flex", {style: {direction: "row"}});
		appjs.ui.setWidgetText("lbl", 42);
		appjs.ui.setWidgetVisible("lbl", false);
		appjs.ui.removeWidget("lbl");
		appjs.window.close();
		appjs.exit();
		var generated = appjs.ui.createWidget(undefined, "Label");
	`)

	assert.Equal(t, []string{
		"title Counter",
		"resize 80x24",
		"create btn1 Button ",
		"create lbl Label btn1",
		"create box Flex ",
		"text lbl 42",
		"visible lbl false",
		"remove lbl",
		"close",
		"exit",
		"create generated Label ",
	}, rec.Calls)

	require.Len(t, rec.Opts, 4)
	assert.Equal(t, map[string]any{"text": "Go", "style": map[string]any{"bold": true}}, rec.Opts[0])
	assert.Nil(t, rec.Opts[1])
	assert.Equal(t, map[string]any{"style": map[string]any{"direction": "row"}}, rec.Opts[2])
	assert.Equal(t, "generated", e.rt.Get("generated").String())
}

func TestAPIErrorsThrow(t *testing.T) {
	rec := &scripttest.Recorder{Err: errors.New("transport: disconnected")}
	e := NewEngine(rec, &scripttest.Timers{}, zerolog.Nop())
	defer e.Close()
	require.NoError(t, e.Init())

	err := e.RunString("t", `appjs.exit()`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disconnected")

	require.NoError(t, e.RunString("t", `
		var caught = false;
		try { appjs.window.setTitle("x"); } catch (err) { caught = true; }
	`))
	assert.True(t, e.rt.Get("caught").ToBoolean())
}

func TestListeners(t *testing.T) {
	e, rec, _ := newTestEngine(t, `
		appjs.events.on("widgetAction", (ev) => appjs.log.info(ev.widgetId, ev.action, ev.value));
		appjs.events.on("*", (ev) => console.debug("any", ev.type));
	`)
	assert.True(t, e.Pending())

	e.Deliver(event(t, `{"type":"widgetAction","widgetId":"s1","action":"valueChanged","value":0.5}`))
	e.Deliver(event(t, `{"type":"windowFocusChanged","focused":false}`))

	assert.Equal(t, []string{
		"log info s1 valueChanged 0.5",
		"log debug any widgetAction",
		"log debug any windowFocusChanged",
	}, rec.Calls)
}

func TestListenerErrorDoesNotStopOthers(t *testing.T) {
	e, rec, _ := newTestEngine(t, `
		appjs.events.on("keyPress", () => { throw new Error("boom"); });
		appjs.events.on("keyPress", (ev) => console.log("key", ev.key, ev.shift));
	`)
	e.Deliver(event(t, `{"type":"keyPress","key":"A","shift":true}`))
	assert.Equal(t, []string{"log info key A true"}, rec.Calls)
}

func TestUnsubscribeAndOff(t *testing.T) {
	e, rec, _ := newTestEngine(t, `
		const off = appjs.events.on("textInput", (ev) => { console.log(ev.text); off(); });
		appjs.events.on("mouseClick", () => {});
		appjs.events.on("mouseMove", () => {});
		appjs.events.off("mouseMove");
	`)
	e.Deliver(event(t, `{"type":"textInput","text":"a"}`))
	e.Deliver(event(t, `{"type":"textInput","text":"b"}`))
	assert.Equal(t, []string{"log info a"}, rec.Calls)
	assert.Len(t, e.listeners, 1)

	require.NoError(t, e.RunString("t", `appjs.events.off()`))
	assert.False(t, e.Pending())
}

func TestOnRejectsNonFunction(t *testing.T) {
	e, _, _ := newTestEngine(t, ``)
	err := e.RunString("t", `appjs.events.on("keyPress", 3)`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TypeError")
}

func TestTimers(t *testing.T) {
	e, rec, timers := newTestEngine(t, `
		var once = setTimeout((who) => console.log("once", who), 250, "me");
		var tick = setInterval(() => console.log("tick"), 1000);
	`)
	once := int(e.rt.Get("once").ToInteger())
	tick := int(e.rt.Get("tick").ToInteger())
	assert.Equal(t, 250*time.Millisecond, timers.Intervals[once])
	assert.Equal(t, time.Second, timers.Intervals[tick])

	e.Fire(timer.Fire{ID: once})
	e.Fire(timer.Fire{ID: once})
	e.Fire(timer.Fire{ID: tick, Repeating: true})
	assert.Equal(t, []string{"log info once me", "log info tick"}, rec.Calls)

	require.NoError(t, e.RunString("t", `clearInterval(tick); clearTimeout(undefined);`))
	assert.Equal(t, []int{tick}, timers.Cancelled)
	assert.False(t, e.Pending())
}

func TestNegativeDelay(t *testing.T) {
	e, _, timers := newTestEngine(t, `setTimeout(() => {}, -5); setTimeout(() => {});`)
	assert.Equal(t, time.Duration(0), timers.Intervals[1])
	assert.Equal(t, time.Duration(0), timers.Intervals[2])
	assert.True(t, e.Pending())
}

func TestCloseCancelsTimers(t *testing.T) {
	timers := &scripttest.Timers{}
	e := NewEngine(&scripttest.Recorder{}, timers, zerolog.Nop())
	require.NoError(t, e.Init())
	require.NoError(t, e.RunString("t", `setInterval(() => {}, 10)`))

	e.Close()
	assert.Equal(t, []int{1}, timers.Cancelled)
	assert.False(t, e.Pending())
	e.Deliver(event(t, `{"type":"appExit"}`))
	e.Fire(timer.Fire{ID: 1, Repeating: true})
}

func TestLoadErrors(t *testing.T) {
	e := NewEngine(&scripttest.Recorder{}, &scripttest.Timers{}, zerolog.Nop())
	defer e.Close()

	assert.Error(t, e.Load(context.Background(), filepath.Join(t.TempDir(), "missing.js")))

	path := filepath.Join(t.TempDir(), "bad.js")
	require.NoError(t, os.WriteFile(path, []byte(`function (`), 0o644))
	assert.Error(t, e.Load(context.Background(), path))
}

func TestCancelledContextInterrupts(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	path := filepath.Join(t.TempDir(), "loop.js")
	require.NoError(t, os.WriteFile(path, []byte(`for (;;) {}`), 0o644))

	e := NewEngine(&scripttest.Recorder{}, &scripttest.Timers{}, zerolog.Nop())
	defer e.Close()
	assert.Error(t, e.Load(ctx, path))
}
