// Package reconcile implements the assertion reconciler (spec §4.5):
// given a ScopeContext and a map of path -> OR-of-AND assertion groups
// produced by a condition, narrows each path's tracked type and reports
// redundant/impossible comparisons.
//
// Grounded directly in the Hakana original's reconcile_keyed_types (see
// original_source/src/analyzer/reconciler/reconciler.rs), re-expressed in
// the teacher's idiom: explicit status enums instead of exceptions, and a
// plain struct return instead of threading mutable output parameters.
package reconcile

import (
	"github.com/shivasurya/code-pathfinder/sast-engine/internal/assertion"
	"github.com/shivasurya/code-pathfinder/sast-engine/internal/typeatom"
	"github.com/shivasurya/code-pathfinder/sast-engine/internal/varenv"
)

// Status is the per-path outcome of reconciling one assertion group
// against the currently-tracked type.
type Status string

const (
	StatusOK        Status = "ok"
	StatusRedundant Status = "redundant"
	StatusEmpty     Status = "empty"
)

// IssueKind enumerates the reconciler's own diagnostics, reported
// alongside (not instead of) the narrowed scope.
type IssueKind string

const (
	IssueRedundantTypeComparison  IssueKind = "RedundantTypeComparison"
	IssueImpossibleTypeComparison IssueKind = "ImpossibleTypeComparison"
	IssueFailedReconciliation     IssueKind = "FailedReconciliation"
)

// Issue is a single reconciler diagnostic.
type Issue struct {
	Kind IssueKind
	Path string
}

// Result is everything ReconcileKeyedTypes produces for one call: the
// statuses of every reconciled path, and any issues to surface.
type Result struct {
	Statuses   map[string]Status
	Issues     []Issue
	ChangedVarIDs map[string]struct{}
}

// NewTypes is the input shape: for each path, an OR-list of AND-groups of
// assertions — "$x is int OR ($x is string AND $x is non-empty)" becomes
// NewTypes["$x"] = [][]Assertion{{IsType(int)}, {IsType(string), NonEmptyCountable}}.
type NewTypes map[string][][]*assertion.Assertion

// ReconcileKeyedTypes is the reconciler's entry point (spec §4.5). For
// each path it:
//  1. reconciles each AND-branch of the OR-list and folds the surviving
//     branches with union-add
//  2. on an empty intersection across every branch, records StatusEmpty
//     and an ImpossibleTypeComparison issue, and sets the type to nothing
//  3. when the result has the same discriminators as the tracked type,
//     records StatusRedundant and a RedundantTypeComparison issue
//  4. lifts a narrowed array-path type back onto its parent container via
//     AdjustArrayType
//
// The "hakana taints" path toggles ctx.AllowTaints instead of narrowing a
// type. Nested assertions are not expanded, parent nodes are not rewritten
// (no ScalarTypeGuard provenance), and related paths are not invalidated.
func ReconcileKeyedTypes(newTypes NewTypes, ctx *varenv.ScopeContext, negated bool) *Result {
	result := &Result{
		Statuses:      make(map[string]Status),
		ChangedVarIDs: make(map[string]struct{}),
	}
	if len(newTypes) == 0 {
		return result
	}

	for path, orGroups := range newTypes {
		if path == "hakana taints" {
			applyTaintControlAssertions(orGroups, ctx)
			continue
		}

		existing, hadExisting := ctx.GetVarType(path)
		if !hadExisting {
			existing = typeatom.GetMixed()
		}

		reconciled, status := reconcileGroups(existing, orGroups, negated)
		result.Statuses[path] = status

		switch status {
		case StatusEmpty:
			result.Issues = append(result.Issues, Issue{Kind: IssueImpossibleTypeComparison, Path: path})
			ctx.SetVarType(path, typeatom.GetNothing())
		case StatusRedundant:
			result.Issues = append(result.Issues, Issue{Kind: IssueRedundantTypeComparison, Path: path})
			ctx.SetVarType(path, reconciled)
		default:
			ctx.SetVarType(path, reconciled)
		}
		result.ChangedVarIDs[path] = struct{}{}

		// step 5: lift onto the parent container if this path is an array
		// access, so a later read of the parent sees the narrowed key.
		if key, ok := varenv.GetValueForKey(path); ok {
			ctx.AdjustArrayType(path, key, reconciled)
		}
	}

	return result
}

// reconcileGroups runs steps 2-4 for one path: fold every AND-branch
// (step 2), detect an all-branches-empty intersection (step 3), and
// detect a no-op narrowing that leaves the type unchanged (redundant,
// step 4's degenerate case).
func reconcileGroups(existing *typeatom.Union, orGroups [][]*assertion.Assertion, negated bool) (*typeatom.Union, Status) {
	var folded *typeatom.Union
	anyNonEmpty := false

	for _, andGroup := range orGroups {
		branch := existing
		emptyBranch := false
		for _, a := range andGroup {
			next, ok := applyAssertion(branch, a)
			if !ok {
				emptyBranch = true
				break
			}
			branch = next
		}
		if emptyBranch {
			continue
		}
		anyNonEmpty = true
		if folded == nil {
			folded = branch
		} else {
			folded = typeatom.UnionAdd(folded, branch, true)
		}
	}

	if !anyNonEmpty {
		return typeatom.GetNothing(), StatusEmpty
	}

	if sameDiscriminators(folded, existing) {
		return folded, StatusRedundant
	}
	return folded, StatusOK
}

// applyAssertion narrows t by a single assertion, returning (nil, false)
// if the assertion can never hold for t (an empty intersection at the
// atom level, e.g. asserting IsType(string) against a plain int).
func applyAssertion(t *typeatom.Union, a *assertion.Assertion) (*typeatom.Union, bool) {
	switch a.Kind {
	case assertion.KindIsType:
		if fastPathIsNotIssetOnNullOnly(t, a) {
			return nil, false
		}
		if t.IsMixed() {
			return a.Type, true
		}
		narrowed := intersectByDiscriminator(t, a.Type)
		if narrowed.IsNothing() {
			return nil, false
		}
		return narrowed, true

	case assertion.KindIsNotType:
		if t.IsMixed() {
			return t, true
		}
		remaining := subtractByDiscriminator(t, a.Type)
		if remaining.IsNothing() {
			return nil, false
		}
		return remaining, true

	case assertion.KindTruthy:
		if t.IsAlwaysFalsy() {
			return nil, false
		}
		return t, true

	case assertion.KindFalsy:
		if t.IsAlwaysTruthy() {
			return nil, false
		}
		return t, true

	case assertion.KindHasArrayKey, assertion.KindArrayKeyExists:
		// narrows definedness of a's.Key on a tracked dict/shape: the
		// matching known item (materialized from the catch-all value
		// param if absent) is no longer possibly-undefined (spec §8
		// scenario 2: "$b = $a['k']" inside a Shapes::keyExists guard
		// infers int, not int|null).
		if narrowed, ok := narrowKnownItemDefined(t, a.Key); ok {
			return narrowed, true
		}
		return t, true

	case assertion.KindIsIsset, assertion.KindIsNotIsset,
		assertion.KindArrayKeyDoesNotExist,
		assertion.KindIsEqualIsset, assertion.KindHasStringArrayAccess,
		assertion.KindHasIntOrStringArrayAccess, assertion.KindNonEmptyCountable:
		// definedness-family assertions leave the tracked type unchanged.
		// A literal-keyed isset() reaches this package as HasArrayKey on
		// the base path (internal/analyzer's collectIssetAssertion), which
		// is handled above.
		return t, true

	case assertion.KindIsEqual:
		if a.Value == nil {
			return t, true
		}
		return a.Value, true

	case assertion.KindIsNotEqual:
		return t, true

	default:
		return t, true
	}
}

// fastPathIsNotIssetOnNullOnly short-circuits the common
// `if ($x !== null)`-shaped assertion when t is exactly null: there is no
// narrower type to produce than nothing, matching the Hakana original's
// dedicated fast path for this extremely common check rather than running
// it through the general subtract machinery.
func fastPathIsNotIssetOnNullOnly(t *typeatom.Union, a *assertion.Assertion) bool {
	return t.Len() == 1 && t.Has(typeatom.KindNull) && a.Type != nil && !a.Type.Has(typeatom.KindNull) && a.Type.Has(typeatom.KindMixed)
}

// narrowKnownItemDefined returns a copy of t with its single dict atomic's
// key known-item no longer possibly-undefined, materializing the item
// from the dict's catch-all value param (or mixed_any) when key wasn't
// already a known item at all.
func narrowKnownItemDefined(t *typeatom.Union, key string) (*typeatom.Union, bool) {
	single := t.Single()
	if single == nil || single.Kind != typeatom.KindDict {
		return nil, false
	}
	cp := *single
	items := make(map[string]*typeatom.KnownItem, len(cp.KnownItems)+1)
	for k, v := range cp.KnownItems {
		items[k] = v
	}
	keys := append([]string{}, cp.KnownItemKeys...)
	if existing, ok := items[key]; ok {
		narrowedItem := *existing
		narrowedItem.PossiblyUndefined = false
		items[key] = &narrowedItem
	} else {
		itemType := typeatom.GetMixedAny()
		if cp.Params != nil {
			itemType = cp.Params.Value
		}
		items[key] = &typeatom.KnownItem{Type: itemType}
		keys = append(keys, key)
	}
	cp.KnownItems = items
	cp.KnownItemKeys = keys
	return typeatom.WrapAtomic(&cp), true
}

func intersectByDiscriminator(t, narrowTo *typeatom.Union) *typeatom.Union {
	var kept []*typeatom.Atomic
	allowed := make(map[string]struct{}, narrowTo.Len())
	for _, a := range narrowTo.Atomics() {
		allowed[a.Discriminator()] = struct{}{}
	}
	for _, a := range t.Atomics() {
		if _, ok := allowed[a.Discriminator()]; ok {
			kept = append(kept, a)
		}
	}
	if len(kept) == 0 {
		return typeatom.GetNothing()
	}
	return typeatom.NewUnion(kept...)
}

func subtractByDiscriminator(t, remove *typeatom.Union) *typeatom.Union {
	excluded := make(map[string]struct{}, remove.Len())
	for _, a := range remove.Atomics() {
		excluded[a.Discriminator()] = struct{}{}
	}
	var kept []*typeatom.Atomic
	for _, a := range t.Atomics() {
		if _, ok := excluded[a.Discriminator()]; !ok {
			kept = append(kept, a)
		}
	}
	if len(kept) == 0 {
		return typeatom.GetNothing()
	}
	return typeatom.NewUnion(kept...)
}

func sameDiscriminators(a, b *typeatom.Union) bool {
	if a.Len() != b.Len() {
		return false
	}
	bSet := make(map[string]struct{}, b.Len())
	for _, atom := range b.Atomics() {
		bSet[atom.Discriminator()] = struct{}{}
	}
	for _, atom := range a.Atomics() {
		if _, ok := bSet[atom.Discriminator()]; !ok {
			return false
		}
	}
	return true
}

// applyTaintControlAssertions handles the synthetic "hakana taints" key,
// whose assertions toggle ctx.AllowTaints or strip taints from specific
// variables rather than narrowing any type (mirrors the original's
// special-cased `key == "hakana taints"` branch).
func applyTaintControlAssertions(orGroups [][]*assertion.Assertion, ctx *varenv.ScopeContext) {
	for _, group := range orGroups {
		for _, a := range group {
			switch a.Kind {
			case assertion.KindIgnoreTaints:
				ctx.AllowTaints = false
			case assertion.KindDontIgnoreTaints:
				ctx.AllowTaints = true
			}
		}
	}
}
