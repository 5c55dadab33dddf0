package varenv

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shivasurya/code-pathfinder/sast-engine/internal/typeatom"
)

func TestScopeCloneIsCopyOnWrite(t *testing.T) {
	root := NewScopeContext(nil)
	root.SetVarType("$x", typeatom.GetInt())

	branch := root.Clone()
	branch.SetVarType("$x", typeatom.GetString())

	rootType, _ := root.GetVarType("$x")
	branchType, _ := branch.GetVarType("$x")
	assert.True(t, rootType.Has(typeatom.KindInt))
	assert.True(t, branchType.Has(typeatom.KindString))
}

func TestScopeCloneSharesUntouchedVars(t *testing.T) {
	root := NewScopeContext(nil)
	root.SetVarType("$x", typeatom.GetInt())
	root.SetVarType("$y", typeatom.GetBool())

	branch := root.Clone()
	branch.SetVarType("$x", typeatom.GetString())

	yType, ok := branch.GetVarType("$y")
	assert.True(t, ok)
	assert.True(t, yType.Has(typeatom.KindBool))
}

func TestRemoveVar(t *testing.T) {
	s := NewScopeContext(nil)
	s.SetVarType("$x", typeatom.GetInt())
	s.RemoveVar("$x")
	_, ok := s.GetVarType("$x")
	assert.False(t, ok)
}

func TestAdjustArrayTypeAddsKeyToParentShape(t *testing.T) {
	s := NewScopeContext(nil)
	s.SetVarType("$x", typeatom.GetShapeDict("S", map[string]*typeatom.KnownItem{
		"a": {Type: typeatom.GetInt()},
	}, []string{"a"}))

	ok := s.AdjustArrayType("$x['b']", "b", typeatom.GetString())
	assert.True(t, ok)

	parentType, _ := s.GetVarType("$x")
	single := parentType.Single()
	assert.Contains(t, single.KnownItems, "b")
}

func TestAdjustArrayTypeFailsWithoutTrackedParent(t *testing.T) {
	s := NewScopeContext(nil)
	ok := s.AdjustArrayType("$x['b']", "b", typeatom.GetString())
	assert.False(t, ok)
}

func TestInvalidateWidenedKeepsThis(t *testing.T) {
	s := NewScopeContext(nil)
	s.SetVarType("$this", typeatom.GetNamedObject("Self"))
	s.SetVarType("$x", typeatom.GetInt())

	s.InvalidateWidened()

	_, thisOk := s.GetVarType("$this")
	_, xOk := s.GetVarType("$x")
	assert.True(t, thisOk)
	assert.False(t, xOk)
}

func TestBreakTypeStack(t *testing.T) {
	s := NewScopeContext(nil)
	s.PushBreakType(BreakLoop)
	assert.True(t, s.InsideLoop)
	s.PushBreakType(BreakSwitch)
	s.PopBreakType()
	assert.True(t, s.InsideLoop)
	s.PopBreakType()
	assert.False(t, s.InsideLoop)
}
