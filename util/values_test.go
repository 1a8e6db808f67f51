package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type named struct{ n string }

func (v named) String() string { return "named:" + v.n }

func TestIsNil(t *testing.T) {
	var p *int
	var m map[string]any
	var s []int
	assert.True(t, IsNil(nil))
	assert.True(t, IsNil(p))
	assert.True(t, IsNil(m))
	assert.True(t, IsNil(s))
	assert.False(t, IsNil(0))
	assert.False(t, IsNil(""))
	assert.False(t, IsNil([]int{}))
}

func TestToString(t *testing.T) {
	assert.Equal(t, "abc", ToString("abc"))
	assert.Equal(t, "42", ToString(42))
	assert.Equal(t, "1.5", ToString(1.5))
	assert.Equal(t, "true", ToString(true))
	assert.Equal(t, "named:x", ToString(named{"x"}))
	assert.Equal(t, "[1 2]", ToString([]int{1, 2}))
	assert.Equal(t, "", ToString(nil))
}
