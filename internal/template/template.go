// Package template implements generic type-parameter inference (spec
// §4.2): accumulating lower/upper bounds for a function or class's
// template params as arguments are matched against parameter types, then
// substituting the inferred types back into a return type.
//
// Grounded in the same flat-struct idiom as internal/typeatom; the bound
// bookkeeping mirrors the teacher's append-only accumulation pattern seen
// in graph/callgraph/resolution's import-set building (left-to-right,
// never re-ordering what was already recorded).
package template

import "github.com/shivasurya/code-pathfinder/sast-engine/internal/typeatom"

// TemplateBound is one constraint recorded against a template parameter at
// a particular argument position (spec §4.2 "left-to-right monotonic
// bound accumulation").
type TemplateBound struct {
	Type           *typeatom.Union
	ArgumentOffset int
	// EqualityBound is true when the bound came from an invariant position
	// (e.g. a dict value type). Resolve does not consult it.
	EqualityBound bool
}

// key identifies a template parameter: its name plus the class/function
// scope it's defined in (two different functions may each declare a
// template param named "T").
type key struct {
	name  string
	scope string
}

// TemplateResult accumulates lower and upper bounds for every template
// parameter touched during one call's argument matching.
type TemplateResult struct {
	lowerBounds map[key][]TemplateBound
	upperBounds map[key][]TemplateBound
}

// NewTemplateResult returns an empty accumulator.
func NewTemplateResult() *TemplateResult {
	return &TemplateResult{
		lowerBounds: make(map[key][]TemplateBound),
		upperBounds: make(map[key][]TemplateBound),
	}
}

// AddLowerBound records that name@scope must accept at least t — produced
// when an argument's type is matched against a covariant template-param
// position (spec §4.2 "lower_bounds").  Bounds are appended in call order
// and Resolve unions all of them.
func (r *TemplateResult) AddLowerBound(name, scope string, bound TemplateBound) {
	k := key{name: name, scope: scope}
	r.lowerBounds[k] = append(r.lowerBounds[k], bound)
}

// AddUpperBound records that name@scope must be no wider than t —
// produced by a contravariant position (a callback parameter type, e.g.).
func (r *TemplateResult) AddUpperBound(name, scope string, bound TemplateBound) {
	k := key{name: name, scope: scope}
	r.upperBounds[k] = append(r.upperBounds[k], bound)
}

// LowerBounds returns the recorded lower bounds for name@scope, in the
// order they were added.
func (r *TemplateResult) LowerBounds(name, scope string) []TemplateBound {
	return r.lowerBounds[key{name: name, scope: scope}]
}

func (r *TemplateResult) UpperBounds(name, scope string) []TemplateBound {
	return r.upperBounds[key{name: name, scope: scope}]
}

// Resolve computes the final inferred type for name@scope: the union of
// every lower bound (widest type that satisfies every call site that
// supplied one), falling back to the narrowest upper bound if there were
// no lower bounds at all, and finally to mixed if neither was recorded
// (spec §4.2 "resolution order").
func (r *TemplateResult) Resolve(name, scope string) *typeatom.Union {
	lowers := r.LowerBounds(name, scope)
	if len(lowers) > 0 {
		result := lowers[0].Type
		for _, b := range lowers[1:] {
			result = typeatom.UnionAdd(result, b.Type, true)
		}
		return result
	}
	uppers := r.UpperBounds(name, scope)
	if len(uppers) > 0 {
		narrowest := uppers[0].Type
		for _, b := range uppers[1:] {
			if typeatom.IsContainedBy(b.Type, narrowest, false, false, nil, nil) {
				narrowest = b.Type
			}
		}
		return narrowest
	}
	return typeatom.GetMixed()
}

// InferredTypeReplacer substitutes template-param atomics in t with their
// resolved types from r, recursing into container element/param types
// (spec §4.2 "inferred_type_replacer::replace"). Atomics with no
// registered bound are left as-is (the template stays abstract, e.g. when
// reporting an error type for an under-constrained generic function).
func InferredTypeReplacer(t *typeatom.Union, r *TemplateResult) *typeatom.Union {
	if t == nil {
		return nil
	}
	replaced := make([]*typeatom.Atomic, 0, t.Len())
	changed := false
	for _, a := range t.Atomics() {
		next, did := replaceAtomic(a, r)
		replaced = append(replaced, next)
		changed = changed || did
	}
	if !changed {
		return t
	}
	out := typeatom.NewUnion(replaced...)
	return out
}

func replaceAtomic(a *typeatom.Atomic, r *TemplateResult) (*typeatom.Atomic, bool) {
	switch a.Kind {
	case typeatom.KindTemplateParam:
		if len(r.LowerBounds(a.ObjectName, a.TemplateScope)) == 0 && len(r.UpperBounds(a.ObjectName, a.TemplateScope)) == 0 {
			return a, false
		}
		resolved := r.Resolve(a.ObjectName, a.TemplateScope)
		single := resolved.Single()
		if single == nil {
			return a, false
		}
		return single, true

	case typeatom.KindVec, typeatom.KindKeyset:
		if a.Element == nil {
			return a, false
		}
		next := InferredTypeReplacer(a.Element, r)
		if next == a.Element {
			return a, false
		}
		cp := *a
		cp.Element = next
		return &cp, true

	case typeatom.KindDict:
		if a.Params == nil {
			return a, false
		}
		nextKey := InferredTypeReplacer(a.Params.Key, r)
		nextVal := InferredTypeReplacer(a.Params.Value, r)
		if nextKey == a.Params.Key && nextVal == a.Params.Value {
			return a, false
		}
		cp := *a
		cp.Params = &typeatom.DictParams{Key: nextKey, Value: nextVal}
		return &cp, true

	case typeatom.KindNamedObject, typeatom.KindGenericObject:
		if len(a.GenericParams) == 0 {
			return a, false
		}
		changed := false
		nextParams := make([]*typeatom.Union, len(a.GenericParams))
		for i, p := range a.GenericParams {
			nextParams[i] = InferredTypeReplacer(p, r)
			if nextParams[i] != p {
				changed = true
			}
		}
		if !changed {
			return a, false
		}
		cp := *a
		cp.GenericParams = nextParams
		return &cp, true

	default:
		return a, false
	}
}
