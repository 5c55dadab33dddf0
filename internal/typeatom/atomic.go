// Package typeatom implements the type algebra: atomic type values, their
// constructors, union addition, and subtyping. It is the leaf component of
// the analysis core (spec §4.1) — every other component depends on it, it
// depends on nothing but internal/flowid (for union provenance).
//
// Tagged variants follow the teacher's own idiom (graph/callgraph/core.
// Statement: a Kind string enum plus one flat struct carrying every
// variant's payload as optional fields) rather than an interface
// hierarchy, per the design note in spec.md §9 ("prefer closed,
// exhaustively matched tagged unions").
package typeatom

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Kind tags an atomic type's shape.
type Kind string

const (
	KindInt    Kind = "int"
	KindFloat  Kind = "float"
	KindBool   Kind = "bool"
	KindString Kind = "string"
	KindNull   Kind = "null"
	KindTrue   Kind = "true"
	KindFalse  Kind = "false"
	KindNothing Kind = "nothing"

	// mixed and its refinements
	KindMixed             Kind = "mixed"
	KindMixedAny          Kind = "mixed_any"
	KindMixedTruthy       Kind = "mixed_truthy"
	KindMixedFalsy        Kind = "mixed_falsy"
	KindMixedNonnull      Kind = "mixed_nonnull"
	KindMixedFromLoopIsset Kind = "mixed_from_loop_isset"

	// literal singletons
	KindLiteralInt       Kind = "literal_int"
	KindLiteralString    Kind = "literal_string"
	KindLiteralClassname Kind = "literal_classname"

	// parametric containers
	KindVec    Kind = "vec"
	KindDict   Kind = "dict"
	KindKeyset Kind = "keyset"

	// object variants
	KindNamedObject   Kind = "named_object"
	KindGenericObject Kind = "generic_object"
	KindEnum          Kind = "enum"
	KindTypeAlias     Kind = "type_alias"
	KindTemplateParam Kind = "template_param"

	// string refinements
	KindStringWithFlags Kind = "string_with_flags"

	// reference placeholder
	KindReference Kind = "reference"
)

// DictKeyKind distinguishes a dict known-item key's shape.
type DictKeyKind string

const (
	DictKeyString DictKeyKind = "string"
	DictKeyInt    DictKeyKind = "int"
)

// DictKey is a single known-item key: "'k'" becomes DictKeyString("k"),
// an integer-parsable key becomes DictKeyInt, per §4.3 adjust_array_type.
type DictKey struct {
	Kind DictKeyKind
	Str  string
	Int  int64
}

func (k DictKey) String() string {
	if k.Kind == DictKeyInt {
		return strconv.FormatInt(k.Int, 10)
	}
	return k.Str
}

// ParseDictKey turns a literal array-access key token into a DictKey,
// following §4.3: a quoted string key becomes DictKeyString; an
// integer-parsable bare token becomes DictKeyInt.
func ParseDictKey(raw string) DictKey {
	unquoted := raw
	if len(raw) >= 2 && (raw[0] == '\'' || raw[0] == '"') && raw[len(raw)-1] == raw[0] {
		unquoted = raw[1 : len(raw)-1]
	} else if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return DictKey{Kind: DictKeyInt, Int: n}
	}
	return DictKey{Kind: DictKeyString, Str: unquoted}
}

// KnownItem is a single statically-known dict/vec slot.
type KnownItem struct {
	Type              *Union
	PossiblyUndefined bool
}

// DictParams is the (key, value) generic-param pair carried by a dict with
// no known-items, or alongside known-items for the catch-all case.
type DictParams struct {
	Key   *Union
	Value *Union
}

// Atomic is a single member of a union type. Exactly one "shape" of
// fields is meaningful at a time, selected by Kind; this mirrors the
// teacher's BasicBlock/Statement convention of one flat struct per sum
// type rather than a Go interface with N implementations, which would
// make union deduplication (by discriminator string) and union-add
// (structural merge) far more verbose to write generically.
type Atomic struct {
	Kind Kind

	// literal singleton payloads
	LiteralInt       int64
	LiteralString    string
	LiteralClassname string

	// vec / keyset element, dict catch-all params
	Element *Union
	Params  *DictParams

	// known-indexed/keyed items, in insertion order
	KnownItemKeys  []string // DictKey.String() form, ordered
	KnownItems     map[string]*KnownItem
	KnownCount     *int
	NonEmpty       bool
	ShapeName      string

	// object variants
	ObjectName     string // named-object symbol, enum name, type-alias name
	IsThis         bool
	GenericParams  []*Union // named-object generics or bare generic-object params
	AsType         *Union   // type-alias "as" bound, template-param "as" bound

	// template-param
	TemplateScope string // defining scope (class or function FQN)

	// string-with-flags
	StringIsTruthy    bool
	StringIsNonEmpty  bool
	StringAllLiteral  bool

	// unresolved reference placeholder
	ReferenceSymbol string
}

// Discriminator returns a structural key used to deduplicate atomics
// within a union, per the union invariant "deduplicated by discriminator."
// Two atomics with the same discriminator are considered the same member
// for union-add purposes (their payloads are then merged, not just
// dropped — see union.go mergeAtomic).
func (a *Atomic) Discriminator() string {
	switch a.Kind {
	case KindLiteralInt:
		return string(a.Kind) + ":" + strconv.FormatInt(a.LiteralInt, 10)
	case KindLiteralString:
		return string(a.Kind) + ":" + a.LiteralString
	case KindLiteralClassname:
		return string(a.Kind) + ":" + a.LiteralClassname
	case KindNamedObject, KindEnum:
		return string(a.Kind) + ":" + a.ObjectName
	case KindTypeAlias:
		return string(a.Kind) + ":" + a.ObjectName
	case KindTemplateParam:
		return string(a.Kind) + ":" + a.ObjectName + "@" + a.TemplateScope
	case KindReference:
		return string(a.Kind) + ":" + a.ReferenceSymbol
	case KindDict:
		if a.ShapeName != "" {
			return string(a.Kind) + ":shape:" + a.ShapeName
		}
		return string(a.Kind)
	default:
		return string(a.Kind)
	}
}

// IsMixedFamily reports whether a is mixed or one of its refinements.
func (a *Atomic) IsMixedFamily() bool {
	switch a.Kind {
	case KindMixed, KindMixedAny, KindMixedTruthy, KindMixedFalsy, KindMixedNonnull, KindMixedFromLoopIsset:
		return true
	default:
		return false
	}
}

// IsAlwaysTruthy reports whether every value of this atomic is truthy.
func (a *Atomic) IsAlwaysTruthy() bool {
	switch a.Kind {
	case KindTrue:
		return true
	case KindLiteralInt:
		return a.LiteralInt != 0
	case KindLiteralString:
		return a.LiteralString != "" && a.LiteralString != "0"
	case KindMixedTruthy:
		return true
	case KindStringWithFlags:
		return a.StringIsTruthy
	case KindVec, KindDict, KindKeyset:
		return a.NonEmpty
	default:
		return false
	}
}

// IsAlwaysFalsy reports whether every value of this atomic is falsy.
func (a *Atomic) IsAlwaysFalsy() bool {
	switch a.Kind {
	case KindFalse, KindNull, KindNothing:
		return true
	case KindLiteralInt:
		return a.LiteralInt == 0
	case KindLiteralString:
		return a.LiteralString == "" || a.LiteralString == "0"
	case KindMixedFalsy:
		return true
	default:
		return false
	}
}

func (a *Atomic) String() string {
	switch a.Kind {
	case KindLiteralInt:
		return strconv.FormatInt(a.LiteralInt, 10)
	case KindLiteralString:
		return fmt.Sprintf("%q", a.LiteralString)
	case KindLiteralClassname:
		return fmt.Sprintf("classname<%s>", a.LiteralClassname)
	case KindVec:
		if a.Element != nil {
			return "vec<" + a.Element.String() + ">"
		}
		return "vec<mixed>"
	case KindDict:
		if a.ShapeName != "" {
			return "shape(" + a.ShapeName + ")"
		}
		if a.Params != nil {
			return "dict<" + a.Params.Key.String() + ", " + a.Params.Value.String() + ">"
		}
		return "dict<arraykey, mixed>"
	case KindKeyset:
		if a.Element != nil {
			return "keyset<" + a.Element.String() + ">"
		}
		return "keyset<arraykey>"
	case KindNamedObject:
		if len(a.GenericParams) > 0 {
			parts := make([]string, len(a.GenericParams))
			for i, p := range a.GenericParams {
				parts[i] = p.String()
			}
			return a.ObjectName + "<" + strings.Join(parts, ", ") + ">"
		}
		return a.ObjectName
	case KindEnum:
		return a.ObjectName
	case KindTypeAlias:
		return a.ObjectName
	case KindTemplateParam:
		return a.ObjectName
	case KindStringWithFlags:
		return "string"
	case KindReference:
		return a.ReferenceSymbol
	default:
		return string(a.Kind)
	}
}

// sortedKnownKeys returns a's known-item keys in stable order, used by
// union addition to merge slot-by-slot deterministically.
func (a *Atomic) sortedKnownKeys() []string {
	keys := append([]string(nil), a.KnownItemKeys...)
	sort.Strings(keys)
	return keys
}
