package registry

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/blockc/internal/ir"
)

func TestNewIsEmpty(t *testing.T) {
	r := New()
	assert.Empty(t, r.Kinds())
	assert.False(t, r.Has("Wait"))
}

func TestNewDefaultVocabulary(t *testing.T) {
	r := NewDefault()

	wait, ok := r.Lookup("Wait")
	require.True(t, ok)
	assert.Equal(t, "Wait", wait.Call)
	assert.True(t, wait.Await)
	assert.Equal(t, ShapeStatement, wait.Shape)
	assert.Equal(t, ir.Arity{Values: 1}, wait.Arity())

	rule, ok := r.Lookup(KindRule)
	require.True(t, ok)
	assert.Equal(t, ir.Arity{Values: 1, Statements: 1}, rule.Arity())
	assert.Equal(t, KindRule, rule.Label)

	team, ok := r.Lookup("Team")
	require.True(t, ok)
	assert.Equal(t, "Teams", team.Enum)

	for _, op := range BinaryOperators() {
		def, ok := r.Lookup(op)
		require.True(t, ok, op)
		assert.Equal(t, []string{"VALUE-0", "VALUE-1"}, def.ValueInputs)
	}
	assert.Empty(t, r.Placeholders())
}

func TestBuiltinsAreUnique(t *testing.T) {
	seen := make(map[string]bool)
	for _, def := range Builtins() {
		assert.False(t, seen[def.Kind], "duplicate builtin %s", def.Kind)
		seen[def.Kind] = true
	}
}

func TestRegister(t *testing.T) {
	r := New()
	require.NoError(t, r.Register(Definition{Kind: "Mystery", Shape: ShapeValue, Placeholder: true}))

	def, _ := r.Lookup("Mystery")
	assert.Equal(t, "Mystery", def.Label, "label defaults to the kind")

	// A real definition replaces the placeholder.
	require.NoError(t, r.Register(Definition{Kind: "Mystery", Shape: ShapeStatement}))
	def, _ = r.Lookup("Mystery")
	assert.False(t, def.Placeholder)

	err := r.Register(Definition{Kind: "Mystery", Shape: ShapeValue})
	assert.True(t, errors.Is(err, ErrDuplicate))

	assert.Error(t, r.Register(Definition{}))
}

func TestKindsSortedAndPlaceholders(t *testing.T) {
	r := New()
	require.NoError(t, r.Register(Definition{Kind: "b", Placeholder: true}))
	require.NoError(t, r.Register(Definition{Kind: "a"}))
	require.NoError(t, r.Register(Definition{Kind: "c", Placeholder: true}))

	assert.Equal(t, []string{"a", "b", "c"}, r.Kinds())
	ph := r.Placeholders()
	require.Len(t, ph, 2)
	assert.Equal(t, "b", ph[0].Kind)
	assert.Equal(t, "c", ph[1].Kind)
}

func TestCloneIsIndependent(t *testing.T) {
	r := NewDefault()
	c := r.Clone()
	require.NoError(t, c.Register(Definition{Kind: "Extra"}))
	assert.True(t, c.Has("Extra"))
	assert.False(t, r.Has("Extra"))
}

func TestStructuralShape(t *testing.T) {
	shape, ok := StructuralShape(CanonicalRule)
	require.True(t, ok)
	assert.Equal(t, ShapeStatement, shape)

	shape, ok = StructuralShape(KindMod)
	require.True(t, ok)
	assert.Equal(t, ShapeTop, shape)

	_, ok = StructuralShape("Wait")
	assert.False(t, ok)
	assert.Len(t, StructuralKinds(), 6)
}
