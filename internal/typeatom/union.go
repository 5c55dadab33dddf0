package typeatom

import (
	"sort"
	"strings"

	"github.com/shivasurya/code-pathfinder/sast-engine/internal/flowid"
)

// Union is an ordered collection of atomics keyed by discriminator, plus
// the flags and provenance called for in the data model (spec §3).
// Invariant: never empty — use GetNothing() for the bottom type.
type Union struct {
	order []string
	types map[string]*Atomic

	IgnoreFalsableIssues bool
	PossiblyUndefined    bool
	ParentNodes          map[flowid.ID]struct{}
	SourceFunctionID     string // only meaningful for return-type unions
}

// NewUnion builds a union from one or more atomics, deduplicating by
// discriminator (later atomics with the same discriminator are merged via
// mergeAtomic rather than dropped).
func NewUnion(atomics ...*Atomic) *Union {
	u := &Union{types: make(map[string]*Atomic), ParentNodes: make(map[flowid.ID]struct{})}
	for _, a := range atomics {
		u.addAtomic(a)
	}
	if len(u.order) == 0 {
		u.addAtomic(&Atomic{Kind: KindNothing})
	}
	return u
}

func (u *Union) addAtomic(a *Atomic) {
	d := a.Discriminator()
	if existing, ok := u.types[d]; ok {
		u.types[d] = mergeAtomic(existing, a)
		return
	}
	u.types[d] = a
	u.order = append(u.order, d)
}

// Atomics returns the union's members in stable insertion order.
func (u *Union) Atomics() []*Atomic {
	out := make([]*Atomic, 0, len(u.order))
	for _, d := range u.order {
		out = append(out, u.types[d])
	}
	return out
}

// Len reports the number of distinct atomics (>= 1 by invariant).
func (u *Union) Len() int { return len(u.order) }

// Single returns the sole atomic of a single-member union, or nil.
func (u *Union) Single() *Atomic {
	if len(u.order) != 1 {
		return nil
	}
	return u.types[u.order[0]]
}

// Has reports whether the union contains an atomic of the given kind.
func (u *Union) Has(k Kind) bool {
	for _, a := range u.Atomics() {
		if a.Kind == k {
			return true
		}
	}
	return false
}

// IsNothing reports whether this is the bottom type.
func (u *Union) IsNothing() bool {
	return len(u.order) == 1 && u.types[u.order[0]].Kind == KindNothing
}

// IsMixed reports whether the union is exactly one mixed-family atomic.
func (u *Union) IsMixed() bool {
	a := u.Single()
	return a != nil && a.IsMixedFamily()
}

// AllLiterals reports whether every atomic is a literal singleton.
func (u *Union) AllLiterals() bool {
	for _, a := range u.Atomics() {
		switch a.Kind {
		case KindLiteralInt, KindLiteralString, KindLiteralClassname, KindTrue, KindFalse, KindNull:
		default:
			return false
		}
	}
	return true
}

// IsAlwaysTruthy reports whether every member is always truthy.
func (u *Union) IsAlwaysTruthy() bool {
	for _, a := range u.Atomics() {
		if !a.IsAlwaysTruthy() {
			return false
		}
	}
	return true
}

// IsAlwaysFalsy reports whether every member is always falsy.
func (u *Union) IsAlwaysFalsy() bool {
	for _, a := range u.Atomics() {
		if !a.IsAlwaysFalsy() {
			return false
		}
	}
	return true
}

// GetSingleLiteralStringValue returns the single literal string value and
// true, if this union is exactly one literal-string atomic.
func (u *Union) GetSingleLiteralStringValue() (string, bool) {
	a := u.Single()
	if a != nil && a.Kind == KindLiteralString {
		return a.LiteralString, true
	}
	return "", false
}

func (u *Union) String() string {
	parts := make([]string, 0, len(u.order))
	for _, d := range u.order {
		parts = append(parts, u.types[d].String())
	}
	return strings.Join(parts, "|")
}

// Clone makes a shallow, independent copy suitable for copy-on-write
// mutation: branch snapshots can share the returned value's atomics (they
// are treated as immutable) but get their own order/types/ParentNodes
// maps so that adding/removing members never mutates a shared ancestor.
func (u *Union) Clone() *Union {
	c := &Union{
		order:                append([]string(nil), u.order...),
		types:                make(map[string]*Atomic, len(u.types)),
		IgnoreFalsableIssues: u.IgnoreFalsableIssues,
		PossiblyUndefined:    u.PossiblyUndefined,
		ParentNodes:          make(map[flowid.ID]struct{}, len(u.ParentNodes)),
		SourceFunctionID:     u.SourceFunctionID,
	}
	for k, v := range u.types {
		c.types[k] = v
	}
	for n := range u.ParentNodes {
		c.ParentNodes[n] = struct{}{}
	}
	return c
}

// WithParents returns a clone of u whose provenance is replaced by nodes.
// Used by the analyzer to attach a value's fresh provenance node.
func (u *Union) WithParents(nodes ...flowid.ID) *Union {
	c := u.Clone()
	c.ParentNodes = make(map[flowid.ID]struct{}, len(nodes))
	for _, n := range nodes {
		c.ParentNodes[n] = struct{}{}
	}
	return c
}

// AddParent records a provenance node on u in place.
func (u *Union) AddParent(n flowid.ID) {
	if u.ParentNodes == nil {
		u.ParentNodes = make(map[flowid.ID]struct{})
	}
	u.ParentNodes[n] = struct{}{}
}

// ParentList returns the provenance node set as a stably sorted slice.
func (u *Union) ParentList() []flowid.ID {
	out := make([]flowid.ID, 0, len(u.ParentNodes))
	for n := range u.ParentNodes {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Kind != out[j].Kind {
			return out[i].Kind < out[j].Kind
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// UnionAdd implements "Union addition" (spec §4.1): atomics are coalesced
// by discriminator; literal singletons widen to their carrier when
// multiple distinct literals meet; vec/dict merge known-items slot by
// slot; mixed* absorbs refinements unless overwriteMixed is false and the
// non-mixed side is a strict refinement. Parent node sets are unioned;
// IgnoreFalsableIssues and PossiblyUndefined are ORed.
func UnionAdd(a, b *Union, overwriteMixed bool) *Union {
	if a == nil {
		return b.Clone()
	}
	if b == nil {
		return a.Clone()
	}
	if a.IsNothing() {
		r := b.Clone()
		mergeFlagsAndProvenance(r, a, b)
		return r
	}
	if b.IsNothing() {
		r := a.Clone()
		mergeFlagsAndProvenance(r, a, b)
		return r
	}

	// mixed absorption: if either side is bare "mixed" (not a refinement)
	// and overwriteMixed, or the other side is itself mixed-family, the
	// wider mixed wins over a non-mixed member rather than producing a
	// spurious union of both.
	if widened, ok := tryMixedAbsorption(a, b, overwriteMixed); ok {
		mergeFlagsAndProvenance(widened, a, b)
		return widened
	}

	out := &Union{types: make(map[string]*Atomic), ParentNodes: make(map[flowid.ID]struct{})}
	literalCarriers := map[Kind]bool{}

	add := func(members []*Atomic) {
		for _, m := range members {
			out.addAtomic(m)
		}
	}
	add(a.Atomics())
	add(b.Atomics())

	// widen distinct literal singletons of the same family to their carrier
	// type when more than one distinct literal value is present.
	seenLiteralInt := map[int64]bool{}
	seenLiteralStr := map[string]bool{}
	for _, d := range out.order {
		at := out.types[d]
		switch at.Kind {
		case KindLiteralInt:
			seenLiteralInt[at.LiteralInt] = true
		case KindLiteralString:
			seenLiteralStr[at.LiteralString] = true
		}
	}
	if len(seenLiteralInt) > 1 {
		literalCarriers[KindInt] = true
	}
	if len(seenLiteralStr) > 1 {
		literalCarriers[KindString] = true
	}
	if len(literalCarriers) > 0 {
		out = widenLiteralsToCarriers(out, literalCarriers)
	}

	mergeFlagsAndProvenance(out, a, b)
	return out
}

func mergeFlagsAndProvenance(out, a, b *Union) {
	out.IgnoreFalsableIssues = a.IgnoreFalsableIssues || b.IgnoreFalsableIssues
	out.PossiblyUndefined = a.PossiblyUndefined || b.PossiblyUndefined
	if out.ParentNodes == nil {
		out.ParentNodes = make(map[flowid.ID]struct{})
	}
	for n := range a.ParentNodes {
		out.ParentNodes[n] = struct{}{}
	}
	for n := range b.ParentNodes {
		out.ParentNodes[n] = struct{}{}
	}
}

// tryMixedAbsorption implements the "mixed* absorbs refinements" rule.
// Returns (result, true) when absorption applies; (nil, false) otherwise,
// meaning the caller should fall back to ordinary structural union-add.
func tryMixedAbsorption(a, b *Union, overwriteMixed bool) (*Union, bool) {
	aMixed, aIsMixed := a.Single(), a.IsMixed()
	bMixed, bIsMixed := b.Single(), b.IsMixed()
	if !aIsMixed && !bIsMixed {
		return nil, false
	}
	if aIsMixed && bIsMixed {
		// widen to the broader of the two mixed refinements; plain "mixed"
		// is broadest.
		if aMixed.Kind == KindMixed || bMixed.Kind == KindMixed {
			return NewUnion(&Atomic{Kind: KindMixed}), true
		}
		if aMixed.Kind == bMixed.Kind {
			return NewUnion(aMixed), true
		}
		return NewUnion(&Atomic{Kind: KindMixed}), true
	}
	// exactly one side is mixed-family; the other is a concrete type.
	mixedSide, other := aMixed, b
	if bIsMixed {
		mixedSide, other = bMixed, a
	}
	if !overwriteMixed && isStrictRefinementOf(other, mixedSide) {
		// the non-mixed side is already implied by the mixed refinement;
		// keep the narrower, concrete side instead of widening.
		return other.Clone(), true
	}
	if mixedSide.Kind == KindMixed {
		return NewUnion(&Atomic{Kind: KindMixed}), true
	}
	return NewUnion(mixedSide), true
}

// isStrictRefinementOf is a conservative check used only to decide whether
// overwriteMixed=false should preserve a concrete type instead of
// widening it back to a mixed refinement (e.g. mixed-truthy absorbing a
// known-truthy literal string is a no-op either way, so we keep the
// concrete type for better downstream diagnostics).
func isStrictRefinementOf(u *Union, mixedRefinement *Atomic) bool {
	switch mixedRefinement.Kind {
	case KindMixedTruthy:
		return u.IsAlwaysTruthy()
	case KindMixedFalsy:
		return u.IsAlwaysFalsy()
	case KindMixedNonnull:
		return !u.Has(KindNull)
	default:
		return false
	}
}

func widenLiteralsToCarriers(u *Union, carriers map[Kind]bool) *Union {
	out := &Union{types: make(map[string]*Atomic)}
	for _, d := range u.order {
		at := u.types[d]
		switch {
		case at.Kind == KindLiteralInt && carriers[KindInt]:
			out.addAtomic(&Atomic{Kind: KindInt})
		case at.Kind == KindLiteralString && carriers[KindString]:
			out.addAtomic(&Atomic{Kind: KindString})
		default:
			out.addAtomic(at)
		}
	}
	return out
}

// mergeAtomic merges two atomics sharing a discriminator: vec/dict known
// items merge slot-by-slot (possibly-undefined becomes true when either
// side lacks the slot), params merge pointwise, non-empty flags are ORed.
func mergeAtomic(x, y *Atomic) *Atomic {
	if x.Kind != y.Kind {
		return y // discriminator collision across kinds should not happen
	}
	switch x.Kind {
	case KindVec, KindKeyset:
		out := *x
		out.Element = unionOrNil(x.Element, y.Element)
		out.NonEmpty = x.NonEmpty || y.NonEmpty
		out.KnownItems, out.KnownItemKeys = mergeKnownItems(x.KnownItems, x.KnownItemKeys, y.KnownItems, y.KnownItemKeys)
		out.KnownCount = mergeKnownCount(x.KnownCount, y.KnownCount)
		return &out
	case KindDict:
		out := *x
		out.NonEmpty = x.NonEmpty || y.NonEmpty
		out.KnownItems, out.KnownItemKeys = mergeKnownItems(x.KnownItems, x.KnownItemKeys, y.KnownItems, y.KnownItemKeys)
		out.Params = mergeDictParams(x.Params, y.Params)
		return &out
	case KindNamedObject:
		out := *x
		if len(y.GenericParams) == len(x.GenericParams) {
			merged := make([]*Union, len(x.GenericParams))
			for i := range x.GenericParams {
				merged[i] = UnionAdd(x.GenericParams[i], y.GenericParams[i], true)
			}
			out.GenericParams = merged
		}
		out.IsThis = x.IsThis && y.IsThis
		return &out
	default:
		return x
	}
}

func unionOrNil(a, b *Union) *Union {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return UnionAdd(a, b, true)
}

func mergeKnownCount(a, b *int) *int {
	if a == nil || b == nil {
		return nil
	}
	if *a == *b {
		v := *a
		return &v
	}
	return nil
}

func mergeDictParams(a, b *DictParams) *DictParams {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return &DictParams{Key: unionOrNil(a.Key, b.Key), Value: unionOrNil(a.Value, b.Value)}
}

func mergeKnownItems(aItems map[string]*KnownItem, aKeys []string, bItems map[string]*KnownItem, bKeys []string) (map[string]*KnownItem, []string) {
	if aItems == nil && bItems == nil {
		return nil, nil
	}
	out := make(map[string]*KnownItem)
	order := []string{}
	seen := map[string]bool{}
	add := func(k string) {
		if !seen[k] {
			seen[k] = true
			order = append(order, k)
		}
	}
	for _, k := range aKeys {
		add(k)
	}
	for _, k := range bKeys {
		add(k)
	}
	for _, k := range order {
		ai, aok := aItems[k]
		bi, bok := bItems[k]
		switch {
		case aok && bok:
			out[k] = &KnownItem{
				Type:              unionOrNil(ai.Type, bi.Type),
				PossiblyUndefined: ai.PossiblyUndefined || bi.PossiblyUndefined,
			}
		case aok && !bok:
			out[k] = &KnownItem{Type: ai.Type, PossiblyUndefined: true}
		case !aok && bok:
			out[k] = &KnownItem{Type: bi.Type, PossiblyUndefined: true}
		}
	}
	return out, order
}
