package expr

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kbukum/convpipe/errors"
)

func TestEvaluate(t *testing.T) {
	ev := NewEvaluator()
	tests := []struct {
		name     string
		text     string
		bindings map[string]any
		want     any
	}{
		{"constant arithmetic", "1 + 2 * 3", nil, 7},
		{"division is float", "10 / 4", nil, 2.5},
		{"bound variable", "x * 2", map[string]any{"x": 21}, 42},
		{"two variables", "a + b", map[string]any{"a": 1.5, "b": 2}, 3.5},
		{"comparison", "age >= 18", map[string]any{"age": 20}, true},
		{"string concat", `first + " " + last`, map[string]any{"first": "Ada", "last": "Lovelace"}, "Ada Lovelace"},
		{"ternary", `v > 0 ? "pos" : "neg"`, map[string]any{"v": -1}, "neg"},
		{"unbound is nil", "missing == nil", nil, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ev.Evaluate(tc.text, tc.bindings)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestEvaluate_CompileError(t *testing.T) {
	_, err := NewEvaluator().Evaluate("1 +", nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidArgument))
}

func TestEvaluate_RuntimeError(t *testing.T) {
	_, err := NewEvaluator().Evaluate("a.b.c", map[string]any{"a": 1})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeProviderExecution))
}

func TestEvaluate_Cache(t *testing.T) {
	ev := NewEvaluator(WithCacheSize(1))
	_, err := ev.Evaluate("x + 1", map[string]any{"x": 1})
	require.NoError(t, err)
	got, err := ev.Evaluate("x + 1", map[string]any{"x": 2.5})
	require.NoError(t, err)
	assert.Equal(t, 3.5, got, "cached programs are not bound to earlier types")
	assert.Equal(t, 1, ev.cache.Len())

	uncached := NewEvaluator(WithCacheSize(0))
	assert.Nil(t, uncached.cache)
	got, err = uncached.Evaluate("2 * 2", nil)
	require.NoError(t, err)
	assert.Equal(t, 4, got)
}

func TestEvaluate_Concurrent(t *testing.T) {
	ev := NewEvaluator()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			got, err := ev.Evaluate("n * 2", map[string]any{"n": n})
			assert.NoError(t, err)
			assert.Equal(t, n*2, got)
		}(i)
	}
	wg.Wait()
}
