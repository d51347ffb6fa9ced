package builtin

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllIsSortedAndNonEmpty(t *testing.T) {
	all := All()
	require.NotEmpty(t, all)
	for i := 1; i < len(all); i++ {
		assert.Less(t, all[i-1].Name, all[i].Name, "catalogue must be sorted by name")
	}
}

func TestLookupKnownOpcode(t *testing.T) {
	e, ok := Lookup("random")
	require.True(t, ok)
	assert.Equal(t, "random", e.Name)
	assert.Equal(t, []string{"min", "max"}, e.Parameters)
	assert.Equal(t, 2, e.Arity())
}

func TestLookupUnknownOpcode(t *testing.T) {
	_, ok := Lookup("not_a_real_opcode")
	assert.False(t, ok)
}

func TestIsBuiltin(t *testing.T) {
	assert.True(t, IsBuiltin("display_msg"))
	assert.True(t, IsBuiltin("get_global_var"))
	assert.False(t, IsBuiltin("user_defined_procedure"))
}

func TestNullaryArity(t *testing.T) {
	e, ok := Lookup("game_time")
	require.True(t, ok)
	assert.Equal(t, 0, e.Arity())
	assert.Empty(t, e.Parameters)
}
