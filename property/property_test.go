package property

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kbukum/convpipe/errors"
	"github.com/kbukum/convpipe/pipe"
)

type address struct {
	City string `json:"city"`
	Zip  string `mapstructure:"postal_code"`
}

type customer struct {
	Name      string
	Addresses []address
	Primary   *address
	Meta      map[string]any
	secret    string
}

type labels map[string]string

func sampleCustomer() customer {
	home := address{City: "Oslo", Zip: "0150"}
	return customer{
		Name:      "Ada",
		Addresses: []address{home, {City: "Bergen", Zip: "5003"}},
		Primary:   &home,
		Meta:      map[string]any{"tier": "gold", "0": "zero"},
		secret:    "hidden",
	}
}

func TestNewObject_Variants(t *testing.T) {
	assert.True(t, NewObject(map[string]any{}).Dynamic())
	assert.True(t, NewObject(labels{}).Dynamic())
	assert.False(t, NewObject(map[int]string{}).Dynamic())
	assert.False(t, NewObject(sampleCustomer()).Dynamic())
	assert.False(t, NewObject([]int{1}).Dynamic())
	assert.False(t, NewObject(nil).Dynamic())

	node, ok := Get(map[string]any{"inner": map[string]any{"x": 1}}, "inner")
	require.True(t, ok)
	assert.True(t, IsDynamic(node), "a node is viewed through its origin")
}

func TestObject_Property(t *testing.T) {
	c := sampleCustomer()
	tests := []struct {
		name   string
		object any
		prop   string
		want   any
		found  bool
	}{
		{"struct field", c, "Name", "Ada", true},
		{"pointer to struct", &c, "Name", "Ada", true},
		{"json tag", address{City: "Oslo"}, "city", "Oslo", true},
		{"mapstructure tag", address{Zip: "1"}, "postal_code", "1", true},
		{"unexported field", c, "secret", nil, false},
		{"missing field", c, "Age", nil, false},
		{"nil pointer", (*customer)(nil), "Name", nil, false},
		{"map key", map[string]any{"a": 1}, "a", 1, true},
		{"named map", labels{"env": "prod"}, "env", "prod", true},
		{"missing map key", map[string]any{}, "a", nil, false},
		{"nil map", map[string]any(nil), "a", nil, false},
		{"slice index", []string{"x", "y"}, "1", "y", true},
		{"negative index", []string{"x", "y"}, "-1", "y", true},
		{"index out of range", []string{"x"}, "3", nil, false},
		{"slice length", []int{1, 2, 3}, "Length", 3, true},
		{"string length", "abcd", "Length", 4, true},
		{"string index", "abcd", "0", nil, false},
		{"scalar", 42, "x", nil, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := NewObject(tc.object).Property(tc.prop)
			assert.Equal(t, tc.found, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestNode(t *testing.T) {
	c := sampleCustomer()
	node, ok := Get(c, "Primary")
	require.True(t, ok)
	assert.Equal(t, "Primary", node.Name())
	assert.Equal(t, c, node.Host().Origin())
	assert.Same(t, c.Primary, node.Origin())

	var w pipe.Wrapped = node
	assert.Same(t, c.Primary, pipe.Unwrap(w))

	city, ok := Get(node, "City")
	require.True(t, ok, "a node resolves against its origin")
	assert.Equal(t, "Oslo", city.Origin())

	_, ok = Get(c, "Nope")
	assert.False(t, ok)
}

func TestParsePath(t *testing.T) {
	tests := []struct {
		path     string
		global   string
		segments []string
		wildcard bool
	}{
		{"", "", nil, false},
		{"a", "", []string{"a"}, false},
		{"a.b.c", "", []string{"a", "b", "c"}, false},
		{"a[0].b", "", []string{"a", "[0]", "b"}, false},
		{"a.0.b", "", []string{"a", "[0]", "b"}, false},
		{"a[*].b", "", []string{"a", "*", "b"}, true},
		{"a.*.b", "", []string{"a", "*", "b"}, true},
		{"a[1][2]", "", []string{"a", "[1]", "[2]"}, false},
		{`a["x.y"]`, "", []string{"a", "x.y"}, false},
		{"$tenant.id", "tenant", []string{"id"}, false},
		{"$rows[0]", "rows", []string{"[0]"}, false},
		{"$tenant", "tenant", nil, false},
	}
	for _, tc := range tests {
		t.Run(tc.path, func(t *testing.T) {
			p, err := ParsePath(tc.path)
			require.NoError(t, err)
			assert.Equal(t, tc.global, p.Global())
			assert.Equal(t, tc.wildcard, p.HasWildcard())
			var got []string
			for _, s := range p.segments {
				got = append(got, s.String())
			}
			assert.Equal(t, tc.segments, got)
			assert.Equal(t, tc.path, p.String())
		})
	}
}

func TestParsePath_Errors(t *testing.T) {
	for _, path := range []string{"a..b", "a.", ".a", "a[0", "a]0[", "a[x]", "a[0]b", "$.a"} {
		_, err := ParsePath(path)
		assert.Error(t, err, path)
	}
}

func TestResolver_Resolve(t *testing.T) {
	order := map[string]any{
		"id": 7,
		"lines": []any{
			map[string]any{"sku": "A1", "qty": 2},
			map[string]any{"sku": "B2"},
			map[string]any{"sku": "C3", "qty": 1},
		},
		"customer": sampleCustomer(),
	}
	r := NewResolver(map[string]any{
		"tenant": map[string]any{"id": 99, "regions": []string{"eu", "us"}},
	})

	tests := []struct {
		name  string
		in    any
		path  string
		multi bool
		want  any
	}{
		{"empty path", order, "", true, order},
		{"key", order, "id", true, 7},
		{"index", order, "lines[1].sku", true, "B2"},
		{"negative index", order, "lines[-1].sku", true, "C3"},
		{"into struct", order, "customer.Addresses[1].city", true, "Bergen"},
		{"pointer field", order, "customer.Primary.City", true, "Oslo"},
		{"numeric map key", order, "customer.Meta.0", true, "zero"},
		{"wildcard multi", order, "lines[*].sku", true, pipe.Collection{"A1", "B2", "C3"}},
		{"wildcard skips missing", order, "lines[*].qty", true, pipe.Collection{2, 1}},
		{"wildcard single", order, "lines[*].sku", false, "A1"},
		{"wildcard over map values", map[string]any{"b": 2, "a": 1}, "*", true, pipe.Collection{1, 2}},
		{"wildcard no match single", order, "lines[*].nope", false, nil},
		{"wildcard no match multi", order, "lines[*].nope", true, pipe.Collection{}},
		{"global", nil, "$tenant.id", true, 99},
		{"global index", order, "$tenant.regions[1]", true, "us"},
		{"wrapped input", NewNode(order, nil, "order"), "id", true, 7},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := r.Resolve(tc.in, tc.path, tc.multi)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestResolver_Errors(t *testing.T) {
	r := NewResolver(nil)
	in := map[string]any{"a": map[string]any{"b": 1}, "list": []int{1}}

	_, err := r.Resolve(in, "a.c", true)
	require.Error(t, err)
	appErr, _ := errors.AsAppError(err)
	assert.Equal(t, errors.ErrCodePropertyNotFound, appErr.Code)
	assert.Equal(t, "c", appErr.Details["segment"])

	_, err = r.Resolve(in, "list[5]", true)
	assert.True(t, errors.Is(err, errors.ErrCodePropertyNotFound))

	_, err = r.Resolve(in, "$missing.x", true)
	assert.True(t, errors.Is(err, errors.ErrCodePropertyNotFound))

	_, err = r.Resolve(in, "a..b", true)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidArgument))

	_, err = r.Resolve(nil, "a", true)
	assert.True(t, errors.Is(err, errors.ErrCodePropertyNotFound))
}

func TestResolver_Globals(t *testing.T) {
	r := NewResolver(map[string]any{"b": 1, "a": 2})
	assert.Equal(t, []string{"a", "b"}, r.Globals())
}

func TestPathProvider(t *testing.T) {
	reg := pipe.NewRegistry()
	provider := NewPathProvider(map[string]any{"tenant": map[string]any{"code": "no"}})
	require.NoError(t, reg.Install(provider))
	assert.NotNil(t, provider.Resolver())
	e := pipe.NewEngine(reg)
	ctx := context.Background()

	record := map[string]any{"items": []any{
		map[string]any{"name": "a"},
		map[string]any{"name": "b"},
	}}

	got, err := e.Run(ctx, `ByPath "items[*].name"`, record)
	require.NoError(t, err)
	assert.Equal(t, pipe.Collection{"a", "b"}, got)

	got, err = e.Run(ctx, `ByPath $tenant.code`, "ignored")
	require.NoError(t, err)
	assert.Equal(t, "no", got)

	got, err = e.RunCollection(ctx, `ByPath "[1].name"`, []any{
		map[string]any{"name": "first"},
		map[string]any{"name": "second"},
	})
	require.NoError(t, err)
	assert.Equal(t, "second", got)

	_, err = e.Run(ctx, `ByPath`, record)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidArgument))
}
