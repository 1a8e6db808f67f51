package mapping

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kbukum/convpipe/converters"
	"github.com/kbukum/convpipe/errors"
	"github.com/kbukum/convpipe/logger"
	"github.com/kbukum/convpipe/pipe"
	"github.com/kbukum/convpipe/property"
	"github.com/kbukum/convpipe/script/lua"
)

const sample = `
rules:
  - target: name
    source: user.name
    pipe: ToUpper
  - target: label
    sources: [first, middle, last]
    pipe: Join " "
  - target: top
    source: tags
    pipe: First
  - target: only
    source: single
    pipe: Join "-"
  - target: city
    source: user.address.city
  - target: names
    source: items[*].name
    pipe: Join ","
`

func newEngine(t *testing.T, providers ...pipe.Provider) *pipe.Engine {
	t.Helper()
	reg := pipe.NewRegistry()
	require.NoError(t, reg.Install(append([]pipe.Provider{converters.New()}, providers...)...))
	return pipe.NewEngine(reg, pipe.WithLogger(logger.Nop()))
}

func TestParse(t *testing.T) {
	m, err := Parse([]byte(sample))
	require.NoError(t, err)
	require.Len(t, m.Rules, 6)

	assert.Equal(t, Rule{Target: "name", Source: "user.name", Pipe: "ToUpper"}, m.Rules[0])
	assert.True(t, m.Rules[1].Multi())
	assert.Equal(t, []string{"first", "middle", "last"}, m.Rules[1].Sources)
	assert.Empty(t, m.Rules[4].Pipe)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{"no rules", "rules: []", "at least one rule"},
		{"missing target", "rules:\n  - source: a", "rules[0].target"},
		{"duplicate target", "rules:\n  - {target: a, source: a}\n  - {target: a, source: b}", "duplicate target a"},
		{"both sources", "rules:\n  - {target: a, source: a, sources: [b]}", "exactly one of source or sources"},
		{"no source", "rules:\n  - {target: a}", "exactly one of source or sources"},
		{"unknown key", "rules:\n  - {target: a, source: a, pipes: X}", "pipes"},
		{"not yaml", "rules: [", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrCodeInvalidConfig))
			if tt.want != "" {
				assert.Contains(t, errorText(err), tt.want)
			}
		})
	}
}

// errorText flattens an error chain into one string.
func errorText(err error) string {
	text := err.Error()
	if appErr, ok := errors.AsAppError(err); ok && appErr.Cause != nil {
		text += " " + errorText(appErr.Cause)
	}
	return text
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mapping.yml")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o600))

	m, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, m.Rules, 6)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yml"))
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidConfig))
}

func TestMarshal_RoundTrip(t *testing.T) {
	m, err := Parse([]byte(sample))
	require.NoError(t, err)

	data, err := m.Marshal()
	require.NoError(t, err)
	again, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, m, again)
}

func TestApply(t *testing.T) {
	m, err := Parse([]byte(sample))
	require.NoError(t, err)
	mapper := NewMapper(newEngine(t), m, WithLogger(logger.Nop()))

	record := map[string]any{
		"user":   map[string]any{"name": "ada"},
		"first":  "Ada",
		"middle": nil,
		"last":   "Lovelace",
		"tags":   []any{"math", "poetry", "engines"},
		"single": "solo",
		"items":  []any{map[string]any{"name": "a"}, map[string]any{"name": "b"}},
	}

	out, err := mapper.Apply(context.Background(), record)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"name":  "ADA",
		"label": "Ada Lovelace",
		"top":   "math",
		"only":  "solo",
		"city":  nil,
		"names": "a,b",
	}, out)
}

func TestApply_Error(t *testing.T) {
	m := &Mapping{Rules: []Rule{
		{Target: "ok", Source: "a"},
		{Target: "bad", Source: "a", Pipe: "Bogus"},
	}}
	mapper := NewMapper(newEngine(t), m, WithLogger(logger.Nop()))

	_, err := mapper.Apply(context.Background(), map[string]any{"a": "x"})
	require.Error(t, err)
	appErr, ok := errors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeUnknownConverter, appErr.Code)
	assert.Equal(t, "bad", appErr.Details[logger.FieldTarget])
	assert.Equal(t, "Bogus", appErr.Details[logger.FieldConverter])
}

func TestApply_MalformedSource(t *testing.T) {
	m := &Mapping{Rules: []Rule{{Target: "x", Source: "a[", Pipe: "ToString"}}}
	mapper := NewMapper(newEngine(t), m, WithLogger(logger.Nop()))

	_, err := mapper.Apply(context.Background(), map[string]any{})
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidArgument))
}

func TestApply_WithGlobals(t *testing.T) {
	resolver := property.NewResolver(map[string]any{"defaults": map[string]any{"region": "eu"}})
	m := &Mapping{Rules: []Rule{{Target: "region", Source: "$defaults.region", Pipe: "ToUpper"}}}
	mapper := NewMapper(newEngine(t), m, WithLogger(logger.Nop()), WithResolver(resolver))

	out, err := mapper.Apply(context.Background(), map[string]any{})
	require.NoError(t, err)
	assert.Equal(t, "EU", out["region"])
}

func TestApply_ConvertersInBothTables(t *testing.T) {
	scripts, err := lua.New(`function double(v) return v * 2 end`)
	require.NoError(t, err)
	t.Cleanup(func() { _ = scripts.Close() })

	engine := newEngine(t, property.NewPathProvider(nil), scripts)
	m := &Mapping{Rules: []Rule{
		{Target: "city", Source: "user", Pipe: "ByPath address.city"},
		{Target: "twice", Source: "count", Pipe: "Lua double"},
		{Target: "first", Source: "tag", Pipe: "First"},
	}}
	mapper := NewMapper(engine, m, WithLogger(logger.Nop()))

	record := map[string]any{
		"user":  map[string]any{"address": map[string]any{"city": "Oslo"}},
		"count": 21,
		"tag":   "solo",
	}
	direct, err := engine.Run(context.Background(), "ByPath address.city", record["user"])
	require.NoError(t, err)

	out, err := mapper.Apply(context.Background(), record)
	require.NoError(t, err)
	assert.Equal(t, direct, out["city"])
	assert.Equal(t, "Oslo", out["city"])
	assert.Equal(t, int64(42), out["twice"])
	assert.Equal(t, "solo", out["first"])
}

func TestApply_Concurrent(t *testing.T) {
	m, err := Parse([]byte(sample))
	require.NoError(t, err)
	mapper := NewMapper(newEngine(t), m, WithLogger(logger.Nop()))

	done := make(chan error, 8)
	for i := 0; i < 8; i++ {
		go func() {
			_, err := mapper.Apply(context.Background(), map[string]any{"user": map[string]any{"name": "x"}})
			done <- err
		}()
	}
	for i := 0; i < 8; i++ {
		assert.NoError(t, <-done)
	}
}
