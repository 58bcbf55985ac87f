package lua

import (
	"strings"
	"time"

	glua "github.com/yuin/gopher-lua"
)

func (e *Engine) registerAPIs() {
	e.appTable = e.L.NewTable()
	e.L.SetGlobal("app", e.appTable)

	e.registerWindowFuncs()
	e.registerUIFuncs()
	e.registerEventFuncs()
	e.registerLogFuncs()
	e.registerTimerFuncs()

	// app.exit(): Ask the application to quit
	e.L.SetField(e.appTable, "exit", e.L.NewFunction(func(L *glua.LState) int {
		e.check(L, e.api.Exit())
		return 0
	}))
}

// check raises err as a Lua error.
func (e *Engine) check(L *glua.LState, err error) {
	if err != nil {
		L.RaiseError("%s", err.Error())
	}
}

func (e *Engine) namespace(name string) *glua.LTable {
	t := e.L.NewTable()
	e.L.SetField(e.appTable, name, t)
	return t
}

// registerWindowFuncs registers app.window.*.
func (e *Engine) registerWindowFuncs() {
	t := e.namespace("window")

	e.L.SetField(t, "set_title", e.L.NewFunction(func(L *glua.LState) int {
		e.check(L, e.api.SetTitle(L.CheckString(1)))
		return 0
	}))

	e.L.SetField(t, "resize", e.L.NewFunction(func(L *glua.LState) int {
		e.check(L, e.api.ResizeWindow(L.CheckInt(1), L.CheckInt(2)))
		return 0
	}))

	e.L.SetField(t, "close", e.L.NewFunction(func(L *glua.LState) int {
		e.check(L, e.api.CloseWindow())
		return 0
	}))
}

// registerUIFuncs registers app.ui.*.
func (e *Engine) registerUIFuncs() {
	t := e.namespace("ui")

	// app.ui.create(id, kind [, parent] [, opts]): Returns the widget id.
	// An empty or nil id gets a generated one.
	e.L.SetField(t, "create", e.L.NewFunction(func(L *glua.LState) int {
		id := L.OptString(1, "")
		kind := L.CheckString(2)

		var parent string
		var opts map[string]any
		switch v := L.Get(3).(type) {
		case glua.LString:
			parent = string(v)
			opts = optTable(L, 4)
		case *glua.LTable:
			opts = tableToMap(v)
		}

		id, err := e.api.CreateWidget(id, kind, parent, opts)
		e.check(L, err)
		L.Push(glua.LString(id))
		return 1
	}))

	e.L.SetField(t, "remove", e.L.NewFunction(func(L *glua.LState) int {
		e.check(L, e.api.RemoveWidget(L.CheckString(1)))
		return 0
	}))

	e.L.SetField(t, "set_text", e.L.NewFunction(func(L *glua.LState) int {
		e.check(L, e.api.SetWidgetText(L.CheckString(1), L.ToStringMeta(L.Get(2)).String()))
		return 0
	}))

	e.L.SetField(t, "set_visible", e.L.NewFunction(func(L *glua.LState) int {
		e.check(L, e.api.SetWidgetVisible(L.CheckString(1), L.ToBool(2)))
		return 0
	}))
}

func optTable(L *glua.LState, n int) map[string]any {
	if t, ok := L.Get(n).(*glua.LTable); ok {
		return tableToMap(t)
	}
	return nil
}

// registerEventFuncs registers app.events.*.
func (e *Engine) registerEventFuncs() {
	t := e.namespace("events")

	// app.events.on(type, fn): Returns a function that removes the listener.
	// "*" receives every event.
	e.L.SetField(t, "on", e.L.NewFunction(func(L *glua.LState) int {
		typ := L.CheckString(1)
		l := &listener{fn: L.CheckFunction(2)}
		e.listeners[typ] = append(e.listeners[typ], l)

		L.Push(L.NewFunction(func(L *glua.LState) int {
			e.unsubscribe(typ, l)
			return 0
		}))
		return 1
	}))

	// app.events.off([type]): Remove the listeners for type, or all of them.
	e.L.SetField(t, "off", e.L.NewFunction(func(L *glua.LState) int {
		if L.GetTop() == 0 || L.Get(1) == glua.LNil {
			for typ := range e.listeners {
				e.removeAll(typ)
			}
			return 0
		}
		e.removeAll(L.CheckString(1))
		return 0
	}))
}

func (e *Engine) unsubscribe(typ string, l *listener) {
	list := e.listeners[typ]
	for i, x := range list {
		if x == l {
			l.removed = true
			list = append(list[:i:i], list[i+1:]...)
			break
		}
	}
	if len(list) == 0 {
		delete(e.listeners, typ)
	} else {
		e.listeners[typ] = list
	}
}

func (e *Engine) removeAll(typ string) {
	for _, l := range e.listeners[typ] {
		l.removed = true
	}
	delete(e.listeners, typ)
}

// registerLogFuncs registers app.log.* and replaces print. Arguments are
// joined with spaces.
func (e *Engine) registerLogFuncs() {
	t := e.namespace("log")

	for _, level := range []string{"debug", "info", "warn", "error"} {
		e.L.SetField(t, level, e.L.NewFunction(func(L *glua.LState) int {
			e.check(L, e.api.Log(level, joinArgs(L)))
			return 0
		}))
	}

	e.L.SetGlobal("print", e.L.NewFunction(func(L *glua.LState) int {
		e.check(L, e.api.Log("info", joinArgs(L)))
		return 0
	}))
}

func joinArgs(L *glua.LState) string {
	parts := make([]string, L.GetTop())
	for i := range parts {
		parts[i] = L.ToStringMeta(L.Get(i + 1)).String()
	}
	return strings.Join(parts, " ")
}

// registerTimerFuncs registers app.timer.*.
func (e *Engine) registerTimerFuncs() {
	t := e.namespace("timer")

	// app.timer.after(seconds, fn): One-shot timer, returns its id
	e.L.SetField(t, "after", e.L.NewFunction(func(L *glua.LState) int {
		seconds := L.CheckNumber(1)
		fn := L.CheckFunction(2)

		id := e.timers.After(toDuration(seconds))
		e.callbacks[id] = fn

		L.Push(glua.LNumber(id))
		return 1
	}))

	// app.timer.every(seconds, fn): Repeating timer, returns its id
	e.L.SetField(t, "every", e.L.NewFunction(func(L *glua.LState) int {
		seconds := L.CheckNumber(1)
		fn := L.CheckFunction(2)

		id := e.timers.Every(toDuration(seconds))
		e.callbacks[id] = fn

		L.Push(glua.LNumber(id))
		return 1
	}))

	// app.timer.cancel(id)
	e.L.SetField(t, "cancel", e.L.NewFunction(func(L *glua.LState) int {
		id := L.CheckInt(1)
		if _, ok := e.callbacks[id]; ok {
			delete(e.callbacks, id)
			e.timers.Cancel(id)
		}
		return 0
	}))
}

// toDuration converts Lua number seconds to a duration.
func toDuration(seconds glua.LNumber) time.Duration {
	return time.Duration(float64(seconds) * float64(time.Second))
}
