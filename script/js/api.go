package js

import (
	"strings"

	"github.com/grafana/sobek"
)

type fn = func(call sobek.FunctionCall) sobek.Value

func (e *Engine) registerAPIs() error {
	appjs := e.rt.NewObject()
	set := func(obj *sobek.Object, name string, f fn) {
		// Set only fails on frozen objects.
		_ = obj.Set(name, f)
	}
	namespace := func(name string) *sobek.Object {
		obj := e.rt.NewObject()
		_ = appjs.Set(name, obj)
		return obj
	}

	window := namespace("window")
	set(window, "setTitle", func(call sobek.FunctionCall) sobek.Value {
		e.check(e.api.SetTitle(call.Argument(0).String()))
		return sobek.Undefined()
	})
	set(window, "resize", func(call sobek.FunctionCall) sobek.Value {
		e.check(e.api.ResizeWindow(int(call.Argument(0).ToInteger()), int(call.Argument(1).ToInteger())))
		return sobek.Undefined()
	})
	set(window, "close", func(sobek.FunctionCall) sobek.Value {
		e.check(e.api.CloseWindow())
		return sobek.Undefined()
	})

	ui := namespace("ui")
	set(ui, "createWidget", e.createWidget)
	set(ui, "removeWidget", func(call sobek.FunctionCall) sobek.Value {
		e.check(e.api.RemoveWidget(call.Argument(0).String()))
		return sobek.Undefined()
	})
	set(ui, "setWidgetText", func(call sobek.FunctionCall) sobek.Value {
		e.check(e.api.SetWidgetText(call.Argument(0).String(), call.Argument(1).String()))
		return sobek.Undefined()
	})
	set(ui, "setWidgetVisible", func(call sobek.FunctionCall) sobek.Value {
		e.check(e.api.SetWidgetVisible(call.Argument(0).String(), call.Argument(1).ToBoolean()))
		return sobek.Undefined()
	})

	events := namespace("events")
	set(events, "on", e.on)
	set(events, "off", func(call sobek.FunctionCall) sobek.Value {
		if absent(call.Argument(0)) {
			for typ := range e.listeners {
				e.removeAll(typ)
			}
		} else {
			e.removeAll(call.Argument(0).String())
		}
		return sobek.Undefined()
	})

	log := namespace("log")
	console := e.rt.NewObject()
	for _, level := range []string{"debug", "info", "warn", "error"} {
		f := e.logger(level)
		set(log, level, f)
		set(console, level, f)
	}
	set(console, "log", e.logger("info"))

	set(appjs, "exit", func(sobek.FunctionCall) sobek.Value {
		e.check(e.api.Exit())
		return sobek.Undefined()
	})

	global := e.rt.GlobalObject()
	for name, v := range map[string]any{
		"appjs":         appjs,
		"console":       console,
		"setTimeout":    e.setTimer(false),
		"setInterval":   e.setTimer(true),
		"clearTimeout":  fn(e.clearTimer),
		"clearInterval": fn(e.clearTimer),
	} {
		if err := global.Set(name, v); err != nil {
			return err
		}
	}
	return nil
}

// check throws err into the script.
func (e *Engine) check(err error) {
	if err != nil {
		panic(e.rt.NewGoError(err))
	}
}

func absent(v sobek.Value) bool {
	return v == nil || sobek.IsUndefined(v) || sobek.IsNull(v)
}

// createWidget(id, kind, parentId?, opts?) returns the widget id. The
// third argument may be the options object when there is no parent.
func (e *Engine) createWidget(call sobek.FunctionCall) sobek.Value {
	var id string
	if !absent(call.Argument(0)) {
		id = call.Argument(0).String()
	}
	kind := call.Argument(1).String()

	var parent string
	var opts map[string]any
	third := call.Argument(2)
	if s, ok := third.Export().(string); ok || absent(third) {
		parent = s
		opts = exportOpts(call.Argument(3))
	} else {
		opts = exportOpts(third)
	}

	id, err := e.api.CreateWidget(id, kind, parent, opts)
	e.check(err)
	return e.rt.ToValue(id)
}

func exportOpts(v sobek.Value) map[string]any {
	if absent(v) {
		return nil
	}
	m, _ := v.Export().(map[string]any)
	return m
}

// on(type, fn) returns a function that removes the listener.
func (e *Engine) on(call sobek.FunctionCall) sobek.Value {
	typ := call.Argument(0).String()
	cb, ok := sobek.AssertFunction(call.Argument(1))
	if !ok {
		panic(e.rt.NewTypeError("appjs.events.on: listener is not a function"))
	}

	l := &listener{fn: cb}
	e.listeners[typ] = append(e.listeners[typ], l)
	return e.rt.ToValue(func(sobek.FunctionCall) sobek.Value {
		e.unsubscribe(typ, l)
		return sobek.Undefined()
	})
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

func (e *Engine) logger(level string) fn {
	return func(call sobek.FunctionCall) sobek.Value {
		parts := make([]string, len(call.Arguments))
		for i, arg := range call.Arguments {
			parts[i] = arg.String()
		}
		e.check(e.api.Log(level, strings.Join(parts, " ")))
		return sobek.Undefined()
	}
}

// setTimer implements setTimeout and setInterval: (fn, ms, ...args) → id.
func (e *Engine) setTimer(repeat bool) fn {
	return func(call sobek.FunctionCall) sobek.Value {
		cb, ok := sobek.AssertFunction(call.Argument(0))
		if !ok {
			panic(e.rt.NewTypeError("timer callback is not a function"))
		}
		d := toDuration(call.Argument(1).ToFloat())

		var id int
		if repeat {
			id = e.timers.Every(d)
		} else {
			id = e.timers.After(d)
		}

		var args []sobek.Value
		if len(call.Arguments) > 2 {
			args = append(args, call.Arguments[2:]...)
		}
		e.callbacks[id] = &callback{fn: cb, args: args}
		return e.rt.ToValue(id)
	}
}

func (e *Engine) clearTimer(call sobek.FunctionCall) sobek.Value {
	if absent(call.Argument(0)) {
		return sobek.Undefined()
	}
	id := int(call.Argument(0).ToInteger())
	if _, ok := e.callbacks[id]; ok {
		delete(e.callbacks, id)
		e.timers.Cancel(id)
	}
	return sobek.Undefined()
}
