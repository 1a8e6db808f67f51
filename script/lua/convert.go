package lua

import (
	"math"

	lua "github.com/yuin/gopher-lua"
	luar "layeh.com/gopher-luar"

	"github.com/kbukum/convpipe/errors"
	"github.com/kbukum/convpipe/pipe"
)

func toLua(L *lua.LState, v any) lua.LValue {
	switch v := v.(type) {
	case nil:
		return lua.LNil
	case pipe.Collection:
		return sliceTable(L, v)
	case []any:
		return sliceTable(L, v)
	case map[string]any:
		t := L.CreateTable(0, len(v))
		for k, e := range v {
			t.RawSetString(k, toLua(L, e))
		}
		return t
	}
	return luar.New(L, v)
}

func sliceTable(L *lua.LState, vs []any) *lua.LTable {
	t := L.CreateTable(len(vs), 0)
	for i, e := range vs {
		t.RawSetInt(i+1, toLua(L, e))
	}
	return t
}

func stringsTable(L *lua.LState, ss []string) *lua.LTable {
	t := L.CreateTable(len(ss), 0)
	for i, s := range ss {
		t.RawSetInt(i+1, lua.LString(s))
	}
	return t
}

func fromLua(v lua.LValue) (any, error) {
	switch v := v.(type) {
	case *lua.LNilType:
		return nil, nil
	case lua.LBool:
		return bool(v), nil
	case lua.LString:
		return string(v), nil
	case lua.LNumber:
		return number(float64(v)), nil
	case *lua.LUserData:
		return v.Value, nil
	case *lua.LTable:
		return fromTable(v)
	}
	return nil, errors.TypeMismatch(ConverterName, "a value convertible to Go", v)
}

func number(f float64) any {
	if f == math.Trunc(f) && f >= math.MinInt64 && f < math.MaxInt64 {
		return int64(f)
	}
	return f
}

// fromTable returns a sequence as a pipe.Collection and any other table as
// a map keyed by the string form of its keys.
func fromTable(t *lua.LTable) (any, error) {
	n := t.MaxN()
	if n > 0 && n == t.Len() && countKeys(t) == n {
		out := make(pipe.Collection, n)
		for i := 1; i <= n; i++ {
			e, err := fromLua(t.RawGetInt(i))
			if err != nil {
				return nil, err
			}
			out[i-1] = e
		}
		return out, nil
	}

	out := make(map[string]any)
	var err error
	t.ForEach(func(k, e lua.LValue) {
		if err != nil {
			return
		}
		out[k.String()], err = fromLua(e)
	})
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return pipe.Collection{}, nil
	}
	return out, nil
}

func countKeys(t *lua.LTable) int {
	n := 0
	t.ForEach(func(lua.LValue, lua.LValue) { n++ })
	return n
}
