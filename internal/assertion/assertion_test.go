package assertion

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shivasurya/code-pathfinder/sast-engine/internal/typeatom"
)

func TestNegatedRoundTrips(t *testing.T) {
	a := IsType(typeatom.GetInt())
	n := a.Negated()
	assert.Equal(t, KindIsNotType, n.Kind)
	assert.Equal(t, KindIsType, n.Negated().Kind)
}

func TestNegatedTruthyFalsy(t *testing.T) {
	assert.Equal(t, KindFalsy, Truthy().Negated().Kind)
	assert.Equal(t, KindTruthy, Falsy().Negated().Kind)
}

func TestNegatedArrayKey(t *testing.T) {
	a := ArrayKeyExists("k")
	n := a.Negated()
	assert.Equal(t, KindArrayKeyDoesNotExist, n.Kind)
	assert.Equal(t, "k", n.Key)
}

func TestNegatedHasNoOppositeForNonEmptyCountable(t *testing.T) {
	assert.Nil(t, NonEmptyCountable(false).Negated())
}

func TestHasNegation(t *testing.T) {
	assert.True(t, IsNotIsset().HasNegation())
	assert.False(t, Truthy().HasNegation())
}

func TestHasIsset(t *testing.T) {
	assert.True(t, HasArrayKey("k").HasIsset())
	assert.False(t, Truthy().HasIsset())
}

func TestHasNonIssetEquality(t *testing.T) {
	assertion := IsEqualIsset(typeatom.GetLiteralInt(5))
	assert.True(t, assertion.HasNonIssetEquality())
	assert.False(t, IsEqual(typeatom.GetLiteralInt(5)).HasNonIssetEquality())
}
