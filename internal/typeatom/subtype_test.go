package typeatom

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeResolver struct {
	parents map[string][]string
}

func (f *fakeResolver) IsClassOrInterfaceOf(sub, sup string) bool {
	if sub == sup {
		return true
	}
	for _, p := range f.parents[sub] {
		if f.IsClassOrInterfaceOf(p, sup) {
			return true
		}
	}
	return false
}

func TestIsContainedByBasics(t *testing.T) {
	assert.True(t, IsContainedBy(GetNothing(), GetInt(), false, false, nil, nil))
	assert.True(t, IsContainedBy(GetInt(), GetMixed(), false, false, nil, nil))
	assert.False(t, IsContainedBy(GetMixed(), GetInt(), false, false, nil, nil))
	assert.True(t, IsContainedBy(GetLiteralInt(5), GetInt(), false, false, nil, nil))
	assert.False(t, IsContainedBy(GetInt(), GetLiteralInt(5), false, false, nil, nil))
}

func TestIsContainedByNominal(t *testing.T) {
	resolver := &fakeResolver{parents: map[string][]string{"Dog": {"Animal"}}}
	sub := GetNamedObject("Dog")
	sup := GetNamedObject("Animal")
	assert.True(t, IsContainedBy(sub, sup, false, false, resolver, nil))
	assert.False(t, IsContainedBy(sup, sub, false, false, resolver, nil))
}

func TestIsContainedByVecCovariant(t *testing.T) {
	resolver := &fakeResolver{parents: map[string][]string{"Dog": {"Animal"}}}
	sub := GetVec(GetNamedObject("Dog"))
	sup := GetVec(GetNamedObject("Animal"))
	assert.True(t, IsContainedBy(sub, sup, false, false, resolver, nil))
}

func TestIsContainedByShape(t *testing.T) {
	sup := GetShapeDict("S", map[string]*KnownItem{
		"a": {Type: GetInt()},
		"b": {Type: GetString(), PossiblyUndefined: true},
	}, []string{"a", "b"})
	sub := GetShapeDict("S", map[string]*KnownItem{
		"a": {Type: GetLiteralInt(1)},
	}, []string{"a"})
	assert.True(t, IsContainedBy(sub, sup, false, false, nil, nil))
}

func TestIgnoreNullable(t *testing.T) {
	sub := UnionAdd(GetInt(), GetNull(), true)
	assert.False(t, IsContainedBy(sub, GetInt(), false, false, nil, nil))
	assert.True(t, IsContainedBy(sub, GetInt(), true, false, nil, nil))
}
