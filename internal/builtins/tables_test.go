package builtins

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shivasurya/code-pathfinder/sast-engine/internal/dataflow"
	"github.com/shivasurya/code-pathfinder/sast-engine/internal/typeatom"
)

func TestArgTaintRuleFor(t *testing.T) {
	table := NewTable()
	rule, ok := table.ArgTaintRuleFor("implode")
	assert.True(t, ok)
	assert.Equal(t, []int{0, 1}, rule.Positions)

	_, ok = table.ArgTaintRuleFor("nonexistent_fn")
	assert.False(t, ok)
}

func TestTaintEffectsForSanitizer(t *testing.T) {
	table := NewTable()
	effects := table.TaintEffectsFor("htmlspecialchars")
	assert.Len(t, effects, 1)
	assert.Contains(t, effects[0].Removed, dataflow.TaintHTMLTag)
}

func TestTaintEffectsForSource(t *testing.T) {
	table := NewTable()
	effects := table.TaintEffectsFor("file_get_contents")
	assert.Len(t, effects, 1)
	assert.Contains(t, effects[0].Added, dataflow.TaintHTMLTag)
}

func TestSpecialReturnTypeLiteralFormatNoConversions(t *testing.T) {
	table := NewTable()
	result, ok := table.SpecialReturnType("sprintf", []*typeatom.Union{typeatom.GetLiteralString("hello")})
	assert.True(t, ok)
	v, isLiteral := result.GetSingleLiteralStringValue()
	assert.True(t, isLiteral)
	assert.Equal(t, "hello", v)
}

func TestSpecialReturnTypeWithConversionDegradesToString(t *testing.T) {
	table := NewTable()
	result, ok := table.SpecialReturnType("sprintf", []*typeatom.Union{typeatom.GetLiteralString("hello %s")})
	assert.True(t, ok)
	assert.True(t, result.Has(typeatom.KindStringWithFlags))
}

func TestSpecialReturnTypeUnknownFunctionFalse(t *testing.T) {
	table := NewTable()
	_, ok := table.SpecialReturnType("strtolower", nil)
	assert.False(t, ok)
}
