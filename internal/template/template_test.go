package template

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shivasurya/code-pathfinder/sast-engine/internal/typeatom"
)

func TestResolveUnionsLowerBounds(t *testing.T) {
	r := NewTemplateResult()
	r.AddLowerBound("T", "f", TemplateBound{Type: typeatom.GetInt(), ArgumentOffset: 0})
	r.AddLowerBound("T", "f", TemplateBound{Type: typeatom.GetString(), ArgumentOffset: 1})

	resolved := r.Resolve("T", "f")
	assert.True(t, resolved.Has(typeatom.KindInt))
	assert.True(t, resolved.Has(typeatom.KindString))
}

func TestResolveFallsBackToUpperBound(t *testing.T) {
	r := NewTemplateResult()
	r.AddUpperBound("T", "f", TemplateBound{Type: typeatom.GetMixed()})

	resolved := r.Resolve("T", "f")
	assert.True(t, resolved.IsMixed())
}

func TestResolveDefaultsToMixed(t *testing.T) {
	r := NewTemplateResult()
	resolved := r.Resolve("T", "f")
	assert.True(t, resolved.IsMixed())
}

func TestInferredTypeReplacerSubstitutesTemplateParam(t *testing.T) {
	r := NewTemplateResult()
	r.AddLowerBound("T", "f", TemplateBound{Type: typeatom.GetInt()})

	tpl := typeatom.GetTemplateParam("T", "f", nil)
	result := InferredTypeReplacer(tpl, r)
	assert.True(t, result.Has(typeatom.KindInt))
}

func TestInferredTypeReplacerRecursesIntoVec(t *testing.T) {
	r := NewTemplateResult()
	r.AddLowerBound("T", "f", TemplateBound{Type: typeatom.GetString()})

	tpl := typeatom.GetVec(typeatom.GetTemplateParam("T", "f", nil))
	result := InferredTypeReplacer(tpl, r)
	single := result.Single()
	assert.True(t, single.Element.Has(typeatom.KindString))
}

func TestInferredTypeReplacerLeavesUnboundAlone(t *testing.T) {
	r := NewTemplateResult()
	tpl := typeatom.GetInt()
	result := InferredTypeReplacer(tpl, r)
	assert.Equal(t, tpl, result)
}

func TestLowerBoundsPreserveInsertionOrder(t *testing.T) {
	r := NewTemplateResult()
	r.AddLowerBound("T", "f", TemplateBound{Type: typeatom.GetInt(), ArgumentOffset: 0})
	r.AddLowerBound("T", "f", TemplateBound{Type: typeatom.GetString(), ArgumentOffset: 1})

	bounds := r.LowerBounds("T", "f")
	assert.Equal(t, 0, bounds[0].ArgumentOffset)
	assert.Equal(t, 1, bounds[1].ArgumentOffset)
}
