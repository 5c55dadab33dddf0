// Package assertion defines the Assertion type used by the reconciler
// (internal/reconcile) to narrow variable types along conditional branches.
// An assertion is produced from a condition expression (e.g. `is_int($x)`,
// `isset($x['k'])`, `$x === null`) and names the key it applies to
// separately (spec §4.5 assigns assertions to ScopeContext path keys); this
// package only models the assertion's own shape.
//
// Follows the same flat tagged-variant idiom as internal/typeatom.Atomic:
// one Kind enum plus a single struct carrying every variant's optional
// payload, matching the teacher's core.Statement/core.BasicBlock style.
package assertion

import "github.com/shivasurya/code-pathfinder/sast-engine/internal/typeatom"

// Kind enumerates every assertion shape the reconciler understands.
type Kind string

const (
	KindIsType              Kind = "is_type"
	KindIsNotType           Kind = "is_not_type"
	KindIsEqual             Kind = "is_equal"
	KindIsNotEqual          Kind = "is_not_equal"
	KindTruthy              Kind = "truthy"
	KindFalsy               Kind = "falsy"
	KindIsIsset             Kind = "is_isset"
	KindIsNotIsset          Kind = "is_not_isset"
	KindIsEqualIsset        Kind = "is_equal_isset"
	KindHasArrayKey         Kind = "has_array_key"
	KindArrayKeyExists      Kind = "array_key_exists"
	KindArrayKeyDoesNotExist Kind = "array_key_does_not_exist"
	KindNonEmptyCountable   Kind = "non_empty_countable"
	KindHasStringArrayAccess Kind = "has_string_array_access"
	KindHasIntOrStringArrayAccess Kind = "has_int_or_string_array_access"
	KindIgnoreTaints        Kind = "ignore_taints"
	KindDontIgnoreTaints    Kind = "dont_ignore_taints"
	KindRemoveTaints        Kind = "remove_taints"
)

// Assertion is the flat tagged-variant carrying every kind's payload as
// optional fields.
type Assertion struct {
	Kind Kind

	// IsType / IsNotType payload: the type being asserted.
	Type *typeatom.Union

	// IsEqual / IsNotEqual / IsEqualIsset payload: the literal value being
	// compared, expressed as a singleton union (e.g. GetLiteralInt(5)).
	Value *typeatom.Union

	// HasArrayKey / ArrayKeyExists / ArrayKeyDoesNotExist payload: the
	// dict/shape key name.
	Key string

	// NonEmptyCountable payload: whether an empty array also satisfies
	// falsy-narrowing (mirrors PHP's count()===0 vs isset() distinction).
	RecountsEmptyArray bool

	// RemoveTaints payload: the taint kinds to strip from the matched value.
	RemovedTaintKinds []string
}

func IsType(t *typeatom.Union) *Assertion    { return &Assertion{Kind: KindIsType, Type: t} }
func IsNotType(t *typeatom.Union) *Assertion { return &Assertion{Kind: KindIsNotType, Type: t} }
func IsEqual(v *typeatom.Union) *Assertion   { return &Assertion{Kind: KindIsEqual, Value: v} }
func IsNotEqual(v *typeatom.Union) *Assertion { return &Assertion{Kind: KindIsNotEqual, Value: v} }
func Truthy() *Assertion                     { return &Assertion{Kind: KindTruthy} }
func Falsy() *Assertion                      { return &Assertion{Kind: KindFalsy} }
func IsIsset() *Assertion                    { return &Assertion{Kind: KindIsIsset} }
func IsNotIsset() *Assertion                 { return &Assertion{Kind: KindIsNotIsset} }
func IsEqualIsset(v *typeatom.Union) *Assertion {
	return &Assertion{Kind: KindIsEqualIsset, Value: v}
}
func HasArrayKey(key string) *Assertion    { return &Assertion{Kind: KindHasArrayKey, Key: key} }
func ArrayKeyExists(key string) *Assertion { return &Assertion{Kind: KindArrayKeyExists, Key: key} }
func ArrayKeyDoesNotExist(key string) *Assertion {
	return &Assertion{Kind: KindArrayKeyDoesNotExist, Key: key}
}
func NonEmptyCountable(recountsEmpty bool) *Assertion {
	return &Assertion{Kind: KindNonEmptyCountable, RecountsEmptyArray: recountsEmpty}
}
func HasStringArrayAccess() *Assertion { return &Assertion{Kind: KindHasStringArrayAccess} }
func HasIntOrStringArrayAccess() *Assertion {
	return &Assertion{Kind: KindHasIntOrStringArrayAccess}
}
func IgnoreTaints() *Assertion     { return &Assertion{Kind: KindIgnoreTaints} }
func DontIgnoreTaints() *Assertion { return &Assertion{Kind: KindDontIgnoreTaints} }
func RemoveTaints(kinds ...string) *Assertion {
	return &Assertion{Kind: KindRemoveTaints, RemovedTaintKinds: kinds}
}

// HasNegation reports whether the assertion's "positive" form is one of the
// Not-prefixed / falsy kinds; the reconciler negates an assertion by
// dispatching to its paired Kind rather than wrapping it, as in spec §4.5.
func (a *Assertion) HasNegation() bool {
	switch a.Kind {
	case KindIsNotType, KindIsNotEqual, KindFalsy, KindIsNotIsset, KindArrayKeyDoesNotExist:
		return true
	default:
		return false
	}
}

// HasIsset reports whether the assertion narrows definedness (isset-family),
// which the reconciler treats specially when lifting assertions through
// array-access paths (spec §4.5 "array path assignment lifting").
func (a *Assertion) HasIsset() bool {
	switch a.Kind {
	case KindIsIsset, KindIsNotIsset, KindIsEqualIsset, KindHasArrayKey,
		KindArrayKeyExists, KindArrayKeyDoesNotExist:
		return true
	default:
		return false
	}
}

// HasNonIssetEquality reports whether the assertion both tests isset-like
// definedness AND asserts an equality, which needs the two-part
// reconciliation the spec calls out for `$x['k'] === 5`-style checks.
func (a *Assertion) HasNonIssetEquality() bool {
	return a.Kind == KindIsEqualIsset
}

// Negated returns the assertion's logical negation, used when reconciling
// the "else" branch of a condition.
func (a *Assertion) Negated() *Assertion {
	switch a.Kind {
	case KindIsType:
		return &Assertion{Kind: KindIsNotType, Type: a.Type}
	case KindIsNotType:
		return &Assertion{Kind: KindIsType, Type: a.Type}
	case KindIsEqual:
		return &Assertion{Kind: KindIsNotEqual, Value: a.Value}
	case KindIsNotEqual:
		return &Assertion{Kind: KindIsEqual, Value: a.Value}
	case KindTruthy:
		return &Assertion{Kind: KindFalsy}
	case KindFalsy:
		return &Assertion{Kind: KindTruthy}
	case KindIsIsset:
		return &Assertion{Kind: KindIsNotIsset}
	case KindIsNotIsset:
		return &Assertion{Kind: KindIsIsset}
	case KindArrayKeyExists:
		return &Assertion{Kind: KindArrayKeyDoesNotExist, Key: a.Key}
	case KindArrayKeyDoesNotExist:
		return &Assertion{Kind: KindArrayKeyExists, Key: a.Key}
	default:
		// NonEmptyCountable, HasArrayKey, IsEqualIsset, array-access and
		// taint-control assertions have no useful negation; the
		// reconciler leaves the opposite branch unnarrowed for these.
		return nil
	}
}

func (a *Assertion) String() string {
	switch a.Kind {
	case KindIsType:
		return "is_type(" + a.Type.String() + ")"
	case KindIsNotType:
		return "!is_type(" + a.Type.String() + ")"
	case KindHasArrayKey, KindArrayKeyExists, KindArrayKeyDoesNotExist:
		return string(a.Kind) + "(" + a.Key + ")"
	default:
		return string(a.Kind)
	}
}
