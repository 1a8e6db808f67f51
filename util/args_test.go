package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrimQuotes(t *testing.T) {
	assert.Equal(t, ",", TrimQuotes(`","`))
	assert.Equal(t, "a b", TrimQuotes(`""a b""`))
	assert.Equal(t, "bare", TrimQuotes("bare"))
	assert.Equal(t, "", TrimQuotes(`""`))
}

func TestLiteral(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`"X"`, "X"},
		{`"a\tb"`, "a\tb"},
		{`X`, "X"},
		{`"`, `"`},
		{`""`, ""},
		{`"say \"hi\""`, `say "hi"`},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			assert.Equal(t, tc.want, Literal(tc.in))
		})
	}
}

func TestUnescape(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`plain`, "plain"},
		{`\n`, "\n"},
		{`a\\b`, `a\b`},
		{`\,`, ","},
		{`é`, "é"},
		{`tail\`, `tail\`},
		{`\'`, "'"},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			assert.Equal(t, tc.want, Unescape(tc.in))
		})
	}
}

func TestParseOrder(t *testing.T) {
	order, err := ParseOrder(nil, 3)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2}, order)

	order, err = ParseOrder([]string{"2", "0", "1"}, 3)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 0, 1}, order)

	order, err = ParseOrder([]string{"2"}, 3)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 1, 2}, order)

	_, err = ParseOrder([]string{"x"}, 3)
	assert.ErrorContains(t, err, "not an integer")

	_, err = ParseOrder([]string{"3"}, 3)
	assert.ErrorContains(t, err, "out of range")

	_, err = ParseOrder([]string{"0", "1"}, 1)
	assert.ErrorContains(t, err, "too many")
}
