package typeatom

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUnionAddCommutativeAndIdempotent(t *testing.T) {
	a := GetInt()
	b := GetString()

	ab := UnionAdd(a, b, true)
	ba := UnionAdd(b, a, true)
	assert.ElementsMatch(t, discriminators(ab), discriminators(ba))

	aa := UnionAdd(a, a, true)
	assert.Equal(t, discriminators(a), discriminators(aa))
}

func TestUnionAddNeverEmpty(t *testing.T) {
	tests := []struct {
		name string
		a, b *Union
	}{
		{"nothing+nothing", GetNothing(), GetNothing()},
		{"int+nothing", GetInt(), GetNothing()},
		{"nothing+string", GetNothing(), GetString()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := UnionAdd(tt.a, tt.b, true)
			assert.GreaterOrEqual(t, result.Len(), 1)
		})
	}
}

func TestUnionAddWidensDistinctLiterals(t *testing.T) {
	a := GetLiteralString("foo")
	b := GetLiteralString("bar")
	result := UnionAdd(a, b, true)
	assert.True(t, result.Has(KindString))
	assert.False(t, result.Has(KindLiteralString))
}

func TestUnionAddKeepsSingleLiteral(t *testing.T) {
	a := GetLiteralString("foo")
	result := UnionAdd(a, a, true)
	v, ok := result.GetSingleLiteralStringValue()
	assert.True(t, ok)
	assert.Equal(t, "foo", v)
}

func TestUnionAddMixedAbsorbsRefinement(t *testing.T) {
	mixed := GetMixed()
	result := UnionAdd(mixed, GetInt(), true)
	assert.True(t, result.IsMixed())
}

func TestUnionAddMixedTruthyPreservesConcreteWhenNotOverwriting(t *testing.T) {
	truthy := WrapAtomic(&Atomic{Kind: KindMixedTruthy})
	concrete := GetLiteralString("x") // always truthy, a strict refinement
	result := UnionAdd(truthy, concrete, false)
	assert.False(t, result.IsMixed())
}

func TestUnionAddMergesVecKnownItemsAndUndefinedFlag(t *testing.T) {
	left := WrapAtomic(&Atomic{
		Kind:          KindVec,
		KnownItemKeys: []string{"0"},
		KnownItems:    map[string]*KnownItem{"0": {Type: GetInt()}},
	})
	right := WrapAtomic(&Atomic{
		Kind:          KindVec,
		KnownItemKeys: []string{"1"},
		KnownItems:    map[string]*KnownItem{"1": {Type: GetString()}},
	})
	result := UnionAdd(left, right, true)
	single := result.Single()
	assert.NotNil(t, single)
	assert.True(t, single.KnownItems["0"].PossiblyUndefined)
	assert.True(t, single.KnownItems["1"].PossiblyUndefined)
}

func TestParseDictKey(t *testing.T) {
	assert.Equal(t, DictKey{Kind: DictKeyString, Str: "k"}, ParseDictKey("'k'"))
	assert.Equal(t, DictKey{Kind: DictKeyInt, Int: 42}, ParseDictKey("42"))
	assert.Equal(t, DictKey{Kind: DictKeyString, Str: "-5x"}, ParseDictKey("-5x"))
}

func discriminators(u *Union) []string {
	out := make([]string, 0, u.Len())
	for _, a := range u.Atomics() {
		out = append(out, a.Discriminator())
	}
	return out
}
