package typeatom

// InheritanceResolver answers nominal subtyping questions for named
// objects by consulting the reflection database's inheritance chains.
// Kept as a minimal interface here (rather than importing the reflection
// package directly) so that internal/typeatom stays a leaf dependency —
// internal/reflection is free to depend on typeatom without a cycle.
type InheritanceResolver interface {
	// IsClassOrInterfaceOf reports whether `sub` is `sup` or inherits from
	// / implements it, transitively.
	IsClassOrInterfaceOf(sub, sup string) bool
}

// ComparisonResult accumulates extra detail about a containment check,
// mirroring the out-param style of Hakana's comparison_result: callers
// that don't need it may pass nil. IsContainedBy accepts one but does not
// set either field.
type ComparisonResult struct {
	// TypeCoerced is set when containment held only via coercion (e.g. an
	// int literal satisfying a float parameter).
	TypeCoerced bool
	// ScalarTypeMatchFound means the two sides share a scalar family but
	// aren't identical (used by the reconciler's redundant/impossible
	// reporting).
	ScalarTypeMatchFound bool
}

// IsContainedBy implements subtyping (spec §4.1): structural on unions
// (every atomic of sub must be contained by some atomic of sup); nominal
// on named objects (via resolver); covariant on vec/keyset elements;
// invariant on dict params unless sup is a shape; literals are contained
// by their carriers; nothing is bottom, mixed is top.
func IsContainedBy(sub, sup *Union, ignoreNullable, ignoreFalsable bool, resolver InheritanceResolver, result *ComparisonResult) bool {
	if sub == nil || sup == nil {
		return false
	}
	if sub.IsNothing() {
		return true
	}
	for _, a := range sub.Atomics() {
		if ignoreNullable && a.Kind == KindNull {
			continue
		}
		if ignoreFalsable && a.Kind == KindFalse {
			continue
		}
		if !atomicContainedByUnion(a, sup, resolver, result) {
			return false
		}
	}
	return true
}

func atomicContainedByUnion(a *Atomic, sup *Union, resolver InheritanceResolver, result *ComparisonResult) bool {
	for _, s := range sup.Atomics() {
		if atomicContainedBy(a, s, resolver, result) {
			return true
		}
	}
	return false
}

func atomicContainedBy(sub, sup *Atomic, resolver InheritanceResolver, result *ComparisonResult) bool {
	if sup.Kind == KindMixed {
		return true
	}
	if sub.Kind == KindNothing {
		return true
	}
	if sup.IsMixedFamily() {
		switch sup.Kind {
		case KindMixedTruthy:
			return sub.IsAlwaysTruthy()
		case KindMixedFalsy:
			return sub.IsAlwaysFalsy()
		case KindMixedNonnull:
			return sub.Kind != KindNull
		default:
			return true
		}
	}

	switch sub.Kind {
	case KindLiteralInt:
		if sup.Kind == KindInt {
			return true
		}
		return sup.Kind == KindLiteralInt && sup.LiteralInt == sub.LiteralInt
	case KindLiteralString:
		if sup.Kind == KindString {
			return true
		}
		return sup.Kind == KindLiteralString && sup.LiteralString == sub.LiteralString
	case KindLiteralClassname:
		return sup.Kind == KindLiteralClassname && sup.LiteralClassname == sub.LiteralClassname
	case KindTrue, KindFalse:
		if sup.Kind == KindBool {
			return true
		}
		return sup.Kind == sub.Kind
	}

	if sub.Kind != sup.Kind {
		// nominal inheritance: a named-object may be contained by a
		// different-named supertype via the reflection chain.
		if sub.Kind == KindNamedObject && sup.Kind == KindNamedObject && resolver != nil {
			return resolver.IsClassOrInterfaceOf(sub.ObjectName, sup.ObjectName)
		}
		return false
	}

	switch sub.Kind {
	case KindNamedObject:
		if sub.ObjectName != sup.ObjectName {
			if resolver == nil || !resolver.IsClassOrInterfaceOf(sub.ObjectName, sup.ObjectName) {
				return false
			}
		}
		if len(sub.GenericParams) != len(sup.GenericParams) {
			return len(sup.GenericParams) == 0
		}
		for i := range sub.GenericParams {
			// covariant: generic object params follow vec's covariance by
			// default in this engine (Hakana tracks per-param variance via
			// template_covariants; approximated here as covariant, which
			// is sound for the read-only containment checks this core
			// performs).
			if !IsContainedBy(sub.GenericParams[i], sup.GenericParams[i], false, false, resolver, result) {
				return false
			}
		}
		return true
	case KindVec, KindKeyset:
		if sub.Element == nil || sup.Element == nil {
			return true
		}
		return IsContainedBy(sub.Element, sup.Element, false, false, resolver, result) // covariant
	case KindDict:
		return dictContainedBy(sub, sup, resolver, result)
	default:
		return true
	}
}

func dictContainedBy(sub, sup *Atomic, resolver InheritanceResolver, result *ComparisonResult) bool {
	if sup.ShapeName != "" {
		// shape containment: every key sup declares must be present (or
		// possibly-undefined compatibly) on sub with a contained type.
		for _, k := range sup.KnownItemKeys {
			supItem := sup.KnownItems[k]
			subItem, ok := sub.KnownItems[k]
			if !ok {
				if !supItem.PossiblyUndefined {
					return false
				}
				continue
			}
			if !subItem.PossiblyUndefined && !IsContainedBy(subItem.Type, supItem.Type, false, false, resolver, result) {
				return false
			}
		}
		return true
	}
	if sub.Params == nil || sup.Params == nil {
		return true
	}
	// invariant on dict params (non-shape dict): both directions must hold.
	keyOK := IsContainedBy(sub.Params.Key, sup.Params.Key, false, false, resolver, result) &&
		IsContainedBy(sup.Params.Key, sub.Params.Key, false, false, resolver, result)
	valOK := IsContainedBy(sub.Params.Value, sup.Params.Value, false, false, resolver, result) &&
		IsContainedBy(sup.Params.Value, sub.Params.Value, false, false, resolver, result)
	return keyOK && valOK
}
