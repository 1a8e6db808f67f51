package pipe

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kbukum/convpipe/errors"
)

func constConverter(s string) Converter {
	return func(any, []string) (any, error) { return s, nil }
}

func TestRegistry_RegisterRejectsDuplicates(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register("A", constConverter("a")))
	err := reg.Register("A", constConverter("b"))
	require.Error(t, err)
	appErr, _ := errors.AsAppError(err)
	assert.Equal(t, errors.ErrCodeAlreadyRegistered, appErr.Code)
	assert.Equal(t, "unary", appErr.Details["table"])

	require.NoError(t, reg.RegisterNAry("A", func([]any, []string) (any, error) { return nil, nil }),
		"the same name may live in both tables")
	err = reg.RegisterNAry("A", func([]any, []string) (any, error) { return nil, nil })
	assert.True(t, errors.Is(err, errors.ErrCodeAlreadyRegistered))
}

func TestRegistry_RegisterValidates(t *testing.T) {
	reg := NewRegistry()
	assert.True(t, errors.Is(reg.Register("", constConverter("")), errors.ErrCodeInvalidArgument))
	assert.True(t, errors.Is(reg.Register("X", nil), errors.ErrCodeInvalidArgument))
	assert.True(t, errors.Is(reg.RegisterNAry("X", nil), errors.ErrCodeInvalidArgument))
}

func TestRegistry_InstallOrderShadows(t *testing.T) {
	first := funcProvider{name: "first", install: func(b *Binder) error {
		return b.Register("Name", constConverter("first"))
	}}
	second := funcProvider{name: "second", install: func(b *Binder) error {
		return b.Register("Name", constConverter("second"))
	}}

	tests := []struct {
		name  string
		order []Provider
		want  string
	}{
		{"second wins", []Provider{first, second}, "second"},
		{"first wins", []Provider{second, first}, "first"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			reg := NewRegistry()
			require.NoError(t, reg.Install(tc.order...))
			fn, ok := reg.Unary("Name")
			require.True(t, ok)
			got, err := fn(nil, nil)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
			assert.Equal(t, tc.want, reg.List()[0].Provider)
		})
	}
}

func TestRegistry_InstallRejectsDuplicatesWithinProvider(t *testing.T) {
	bad := funcProvider{name: "bad", install: func(b *Binder) error {
		if err := b.Register("Keep", constConverter("k")); err != nil {
			return err
		}
		if err := b.Register("Dup", constConverter("1")); err != nil {
			return err
		}
		return b.Register("Dup", constConverter("2"))
	}}

	reg := NewRegistry()
	err := reg.Install(bad)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeAlreadyRegistered))
	assert.Contains(t, err.Error(), "installing provider bad")

	_, ok := reg.Unary("Keep")
	assert.False(t, ok, "a failed install commits nothing")
}

func TestRegistry_InstallStopsAtFirstFailure(t *testing.T) {
	failing := funcProvider{name: "failing", install: func(*Binder) error { return fmt.Errorf("no source") }}
	later := funcProvider{name: "later", install: func(b *Binder) error {
		return b.Register("Later", constConverter("l"))
	}}

	reg := NewRegistry()
	require.Error(t, reg.Install(failing, later))
	_, ok := reg.Unary("Later")
	assert.False(t, ok)
}

func TestRegistry_NamesAndList(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Install(testProvider()))

	assert.Equal(t, []string{"Count", "First", "Join"}, reg.Names(TableNAry))
	assert.Contains(t, reg.Names(TableUnary), "ToUpper")
	assert.Empty(t, reg.Names(Table("other")))

	list := reg.List()
	require.NotEmpty(t, list)
	assert.Equal(t, TableUnary, list[0].Table)
	assert.Equal(t, TableNAry, list[len(list)-1].Table)
	assert.Equal(t, "test", list[0].Provider)
}

func TestBinder_Provider(t *testing.T) {
	b := newBinder("lua")
	assert.Equal(t, "lua", b.Provider())
	require.NoError(t, b.RegisterNAry("Lua", func([]any, []string) (any, error) { return nil, nil }))
	err := b.RegisterNAry("Lua", func([]any, []string) (any, error) { return nil, nil })
	appErr, _ := errors.AsAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, "lua", appErr.Details["provider"])
}
