package builtin_test

import (
	"testing"

	"github.com/nic-lang/nicc/lang/builtin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupKnown(t *testing.T) {
	e, ok := builtin.Lookup("gpio_write")
	require.True(t, ok)
	assert.Equal(t, builtin.GPIO, e.Category)
	assert.Equal(t, builtin.Void, e.ReturnType)
}

func TestLookupUnknown(t *testing.T) {
	_, ok := builtin.Lookup("not_a_builtin")
	assert.False(t, ok)
}

func TestCheckArityBounded(t *testing.T) {
	e, _ := builtin.Lookup("abs")
	assert.True(t, e.CheckArity(1))
	assert.False(t, e.CheckArity(0))
	assert.False(t, e.CheckArity(2))
}

func TestCheckArityUnbounded(t *testing.T) {
	e, _ := builtin.Lookup("print")
	assert.True(t, e.CheckArity(1))
	assert.True(t, e.CheckArity(20))
	assert.False(t, e.CheckArity(0))
}

func TestAllNamesUnique(t *testing.T) {
	seen := make(map[string]bool)
	for _, e := range builtin.All() {
		require.False(t, seen[e.Name], "duplicate builtin name %q", e.Name)
		seen[e.Name] = true
	}
	assert.NotEmpty(t, seen)
}
