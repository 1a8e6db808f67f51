package js

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kbukum/convpipe/component"
	"github.com/kbukum/convpipe/errors"
	"github.com/kbukum/convpipe/pipe"
	"github.com/kbukum/convpipe/script"
)

const library = `
function double(v) { return v * 2 }
function slug(v, sep) { return v.toLowerCase().split(" ").join(sep || "-") }
function sum(vals) { return vals.reduce(function (a, b) { return a + b }, 0) }
function pair(v) { return [v, v] }
function record(v) { return { name: v, size: 2 } }
function city(v) { return v.address.city }
function nothing() { }
function hog() { var a = []; for (var i = 0; ; i++) { a.push("x".repeat(64) + i) } }
function spin() { for (;;) {} }
function deep(n) { return deep(n + 1) + 1 }
function fail() { throw new Error("bad input") }
function shout(v) { console.log("shouting", v); return v.toUpperCase() }
var notAFunction = 1
`

type address struct {
	City string `json:"city"`
}

type customer struct {
	Address address `json:"address"`
}

func newProvider(t *testing.T, opts ...Option) *Provider {
	t.Helper()
	p, err := New(library, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Close() })
	return p
}

func TestCall(t *testing.T) {
	p := newProvider(t)

	tests := []struct {
		name string
		args []string
		in   any
		want any
	}{
		{"integral number", []string{"double"}, 21, int64(42)},
		{"fraction", []string{"double"}, 1.25, 2.5},
		{"residual args", []string{"slug", "_"}, "Hello Big World", "hello_big_world"},
		{"default residual", []string{"slug"}, "Hello World", "hello-world"},
		{"array result", []string{"pair"}, "x", pipe.Collection{"x", "x"}},
		{"object result", []string{"record"}, "n", map[string]any{"name": "n", "size": int64(2)}},
		{"struct by json tag", []string{"city"}, customer{Address: address{City: "Oslo"}}, "Oslo"},
		{"map argument", []string{"city"}, map[string]any{"address": map[string]any{"city": "Rome"}}, "Rome"},
		{"undefined result", []string{"nothing"}, 1, nil},
		{"console output", []string{"shout"}, "hey", "HEY"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := p.Call(tc.in, tc.args)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestCallN(t *testing.T) {
	p := newProvider(t)
	got, err := p.CallN([]any{1, 2, 3}, []string{"sum"})
	require.NoError(t, err)
	assert.Equal(t, int64(6), got)
}

func TestCall_Errors(t *testing.T) {
	p := newProvider(t)

	_, err := p.Call("x", []string{"missing"})
	assert.True(t, errors.Is(err, errors.ErrCodeScriptFunctionNotFound))

	_, err = p.Call("x", []string{"notAFunction"})
	assert.True(t, errors.Is(err, errors.ErrCodeScriptFunctionNotFound))

	_, err = p.Call("x", nil)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidArgument))

	_, err = p.Call("x", []string{"fail"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeProviderExecution))
}

func TestCall_Timeout(t *testing.T) {
	p := newProvider(t, WithLimits(script.Limits{Timeout: 50 * time.Millisecond}))

	start := time.Now()
	_, err := p.Call(nil, []string{"spin"})
	require.Error(t, err)
	assert.Less(t, time.Since(start), 3*time.Second)
	appErr, ok := errors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeResourceLimitExceeded, appErr.Code)
	assert.Equal(t, script.LimitTimeout, appErr.Details["limit"])

	got, err := p.Call(4, []string{"double"})
	require.NoError(t, err, "the runtime stays usable after an interrupted call")
	assert.Equal(t, int64(8), got)
}

func TestCall_Memory(t *testing.T) {
	p := newProvider(t, WithLimits(script.Limits{Timeout: 10 * time.Second, MaxMemory: 4 << 20, MaxCallDepth: 64}))

	start := time.Now()
	_, err := p.Call(nil, []string{"hog"})
	require.Error(t, err)
	assert.Less(t, time.Since(start), 5*time.Second)
	appErr, ok := errors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeResourceLimitExceeded, appErr.Code)
	assert.Equal(t, script.LimitMemory, appErr.Details["limit"])

	got, err := p.Call(5, []string{"double"})
	require.NoError(t, err, "the runtime stays usable after a memory trip")
	assert.Equal(t, int64(10), got)
}

func TestCall_CallDepth(t *testing.T) {
	p := newProvider(t, WithLimits(script.Limits{Timeout: 5 * time.Second, MaxCallDepth: 64}))

	_, err := p.Call(0, []string{"deep"})
	require.Error(t, err)
	appErr, ok := errors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeResourceLimitExceeded, appErr.Code)
	assert.Equal(t, script.LimitCallDepth, appErr.Details["limit"])

	got, err := p.Call(1, []string{"double"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), got)
}

func TestNew_BadSource(t *testing.T) {
	_, err := New("function (")
	assert.True(t, errors.Is(err, errors.ErrCodeProviderExecution))

	_, err = New("for (;;) {}", WithLimits(script.Limits{Timeout: 30 * time.Millisecond}))
	assert.True(t, errors.Is(err, errors.ErrCodeResourceLimitExceeded))
}

func TestModulesDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "strutil.js"), []byte(`
module.exports = { shout: function (s) { return s.toUpperCase() + "!" } }
`), 0o600))

	p, err := New(`
var strutil = require("strutil")
function shout(v) { return strutil.shout(v) }
`, WithModulesDir(dir))
	require.NoError(t, err)
	defer p.Close()

	got, err := p.Call("hey", []string{"shout"})
	require.NoError(t, err)
	assert.Equal(t, "HEY!", got)
}

func TestInstall_Pipeline(t *testing.T) {
	p := newProvider(t)
	reg := pipe.NewRegistry()
	require.NoError(t, reg.Install(p))
	e := pipe.NewEngine(reg)

	got, err := e.Run(context.Background(), `Js pair | Js sum`, 5)
	require.NoError(t, err)
	assert.Equal(t, int64(10), got)
}

func TestLifecycle(t *testing.T) {
	p, err := New(library)
	require.NoError(t, err)
	var c component.Component = p
	ctx := context.Background()

	require.NoError(t, c.Start(ctx))
	assert.Equal(t, component.StatusHealthy, c.Health(ctx).Status)
	assert.Equal(t, "JavaScript scripts", p.Describe().Name)

	require.NoError(t, c.Stop(ctx))
	assert.Equal(t, component.StatusUnhealthy, c.Health(ctx).Status)

	_, err = p.Call(1, []string{"double"})
	assert.True(t, errors.Is(err, errors.ErrCodeProviderExecution))
}
