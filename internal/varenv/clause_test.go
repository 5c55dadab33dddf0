package varenv

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shivasurya/code-pathfinder/sast-engine/internal/assertion"
	"github.com/shivasurya/code-pathfinder/sast-engine/internal/typeatom"
)

func TestClauseNegateSinglePath(t *testing.T) {
	c := NewClause("$x", assertion.IsType(typeatom.GetInt()))
	neg := c.Negate()
	assert.Len(t, neg, 1)
	possibilities := neg[0].Possibilities["$x"]
	assert.Equal(t, assertion.KindIsNotType, possibilities[0].Kind)
}

func TestClauseNegateMultiPathReturnsNil(t *testing.T) {
	c := &Clause{Possibilities: map[string][]*assertion.Assertion{
		"$x": {assertion.IsType(typeatom.GetInt())},
		"$y": {assertion.IsType(typeatom.GetString())},
	}}
	assert.Nil(t, c.Negate())
}

func TestSimplifyClausesDedups(t *testing.T) {
	a := NewClause("$x", assertion.Truthy())
	b := NewClause("$x", assertion.Truthy())
	out := SimplifyClauses([]*Clause{a, b})
	assert.Len(t, out, 1)
}

func TestSimplifyClausesMarksImpossible(t *testing.T) {
	c := &Clause{Possibilities: map[string][]*assertion.Assertion{"$x": {}}}
	out := SimplifyClauses([]*Clause{c})
	assert.True(t, out[0].Impossible)
}
