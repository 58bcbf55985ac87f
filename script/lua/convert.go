package lua

import (
	"sort"
	"strconv"

	glua "github.com/yuin/gopher-lua"
)

// toLua converts plain Go values, as produced by encoding/json, into Lua
// values.
func toLua(L *glua.LState, v any) glua.LValue {
	switch v := v.(type) {
	case nil:
		return glua.LNil
	case bool:
		return glua.LBool(v)
	case float64:
		return glua.LNumber(v)
	case int:
		return glua.LNumber(v)
	case string:
		return glua.LString(v)
	case []any:
		t := L.CreateTable(len(v), 0)
		for _, item := range v {
			t.Append(toLua(L, item))
		}
		return t
	case map[string]any:
		t := L.CreateTable(0, len(v))
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			t.RawSetString(k, toLua(L, v[k]))
		}
		return t
	default:
		return glua.LNil
	}
}

// fromLua converts a Lua value into plain Go values. Tables whose keys are
// exactly 1..n become slices; other tables become maps with string keys.
// Functions and userdata convert to nil.
func fromLua(v glua.LValue) any {
	switch v := v.(type) {
	case glua.LBool:
		return bool(v)
	case glua.LNumber:
		return float64(v)
	case glua.LString:
		return string(v)
	case *glua.LTable:
		if n := v.MaxN(); n > 0 && n == v.Len() && countKeys(v) == n {
			out := make([]any, 0, n)
			for i := 1; i <= n; i++ {
				out = append(out, fromLua(v.RawGetInt(i)))
			}
			return out
		}
		return tableToMap(v)
	default:
		return nil
	}
}

func tableToMap(t *glua.LTable) map[string]any {
	out := make(map[string]any)
	t.ForEach(func(k, val glua.LValue) {
		var key string
		switch k := k.(type) {
		case glua.LString:
			key = string(k)
		case glua.LNumber:
			key = strconv.FormatFloat(float64(k), 'f', -1, 64)
		default:
			return
		}
		if converted := fromLua(val); converted != nil {
			out[key] = converted
		}
	})
	return out
}

func countKeys(t *glua.LTable) int {
	n := 0
	t.ForEach(func(glua.LValue, glua.LValue) { n++ })
	return n
}
