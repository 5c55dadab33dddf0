package varenv

import (
	"github.com/shivasurya/code-pathfinder/sast-engine/internal/typeatom"
)

// BreakKind distinguishes the statement shapes a loop/switch body can
// break out of, used by the break_types stack to route `break`/`continue`
// analysis to the correct enclosing construct (spec §4.3 "break_types").
type BreakKind string

const (
	BreakLoop   BreakKind = "loop"
	BreakSwitch BreakKind = "switch"
)

// FunctionContext carries the ambient per-function facts the scope needs
// but doesn't own: the function's own FQN, its declared return type, and
// whether its body is currently under taint analysis. Kept minimal and
// separate from ScopeContext itself so internal/analyzer can build one
// once per function and thread it through nested scopes unchanged.
type FunctionContext struct {
	FunctionFQN      string
	DeclaredReturn   *typeatom.Union
	CollectingTaints bool
}

// ScopeContext is the flow-sensitive variable environment threaded through
// statement analysis (spec §4.3). VarsInScope is copy-on-write: Clone()
// shares the underlying map until a branch mutates it, matching the
// teacher's preference for cheap struct copies over defensive deep-copies
// on every basic-block edge (see graph/callgraph/cfg.BasicBlock handling).
type ScopeContext struct {
	varsInScope map[string]*typeatom.Union
	owned       bool // true once this context holds its own map (post-mutation)

	Clauses []*Clause

	// ProtectedVarIDs holds variable paths the current inference pass must
	// not invalidate even on a widening assignment — used for the $this
	// exception during trait method analysis (spec §9 Open Question 1).
	ProtectedVarIDs map[string]struct{}

	BreakTypes []BreakKind
	InsideLoop bool
	AllowTaints bool

	FunctionContext *FunctionContext

	// IfBodyContext holds the ScopeContext snapshot taken at an if's
	// condition evaluation (spec §4.3 "if_body_context"). The analyzer sets
	// it on an if's then-branch context; nothing in this module reads it.
	IfBodyContext *ScopeContext
}

// NewScopeContext builds an empty root scope.
func NewScopeContext(fc *FunctionContext) *ScopeContext {
	return &ScopeContext{
		varsInScope:     make(map[string]*typeatom.Union),
		owned:           true,
		ProtectedVarIDs: make(map[string]struct{}),
		AllowTaints:     true,
		FunctionContext: fc,
	}
}

// Clone returns a copy-on-write snapshot: the returned context shares
// s.varsInScope until its own SetVarType call forces a private copy.
func (s *ScopeContext) Clone() *ScopeContext {
	clauses := make([]*Clause, len(s.Clauses))
	copy(clauses, s.Clauses)
	breakTypes := make([]BreakKind, len(s.BreakTypes))
	copy(breakTypes, s.BreakTypes)
	protected := make(map[string]struct{}, len(s.ProtectedVarIDs))
	for k := range s.ProtectedVarIDs {
		protected[k] = struct{}{}
	}
	return &ScopeContext{
		varsInScope:     s.varsInScope,
		owned:           false,
		Clauses:         clauses,
		ProtectedVarIDs: protected,
		BreakTypes:      breakTypes,
		InsideLoop:      s.InsideLoop,
		AllowTaints:     s.AllowTaints,
		FunctionContext: s.FunctionContext,
	}
}

func (s *ScopeContext) ensureOwned() {
	if s.owned {
		return
	}
	cp := make(map[string]*typeatom.Union, len(s.varsInScope))
	for k, v := range s.varsInScope {
		cp[k] = v
	}
	s.varsInScope = cp
	s.owned = true
}

// GetVarType returns the type currently tracked for path, or (nil, false)
// if the variable is not in scope.
func (s *ScopeContext) GetVarType(path string) (*typeatom.Union, bool) {
	t, ok := s.varsInScope[path]
	return t, ok
}

// SetVarType assigns path's type, forcing a private copy of the
// underlying map if this context was still sharing one via Clone.
func (s *ScopeContext) SetVarType(path string, t *typeatom.Union) {
	s.ensureOwned()
	s.varsInScope[path] = t
}

// RemoveVar deletes path from scope entirely (used when a variable goes
// out of scope, e.g. after `unset($x)`).
func (s *ScopeContext) RemoveVar(path string) {
	s.ensureOwned()
	delete(s.varsInScope, path)
}

// AllVars returns a snapshot of every tracked path and its current type.
func (s *ScopeContext) AllVars() map[string]*typeatom.Union {
	out := make(map[string]*typeatom.Union, len(s.varsInScope))
	for k, v := range s.varsInScope {
		out[k] = v
	}
	return out
}

// AdjustArrayType writes valueType as the known item `key` of path's
// immediate parent container after an assertion or assignment on path —
// e.g. narrowing `$x['a']` also updates key "a" on the shape type `$x`
// holds (spec §4.3 "adjust_array_type"). Returns false if path has no
// parent, the parent is not tracked, or its type is not a single dict.
// Only the immediate parent is updated; further ancestors are not.
func (s *ScopeContext) AdjustArrayType(path string, key string, valueType *typeatom.Union) bool {
	parent, ok := ParentPath(path)
	if !ok {
		return false
	}
	parentType, ok := s.GetVarType(parent)
	if !ok || parentType == nil {
		return false
	}
	single := parentType.Single()
	if single == nil || single.Kind != typeatom.KindDict {
		return false
	}
	updated := *single
	keys := append([]string(nil), updated.KnownItemKeys...)
	items := make(map[string]*typeatom.KnownItem, len(updated.KnownItems)+1)
	for k, v := range updated.KnownItems {
		items[k] = v
	}
	found := false
	for _, k := range keys {
		if k == key {
			found = true
		}
	}
	if !found {
		keys = append(keys, key)
	}
	items[key] = &typeatom.KnownItem{Type: valueType}
	updated.KnownItemKeys = keys
	updated.KnownItems = items
	s.SetVarType(parent, typeatom.WrapAtomic(&updated))
	return true
}

// InvalidateWidened clears every tracked variable whose path is not in
// protected (the $this exception, spec §9 Open Question 1), used when a
// call site is known to pass variables by reference and the callee's
// exact mutation isn't tracked. Mirrors the reconciler's conservative
// "anything could have changed" fallback.
func (s *ScopeContext) InvalidateWidened() {
	s.ensureOwned()
	for path := range s.varsInScope {
		if _, protectedPath := s.ProtectedVarIDs[path]; protectedPath {
			continue
		}
		if path == "$this" {
			continue
		}
		delete(s.varsInScope, path)
	}
}

// PushBreakType pushes a new enclosing break target (entering a loop or
// switch body).
func (s *ScopeContext) PushBreakType(k BreakKind) {
	s.BreakTypes = append(s.BreakTypes, k)
	if k == BreakLoop {
		s.InsideLoop = true
	}
}

// PopBreakType pops the innermost break target on exiting a loop/switch
// body, restoring InsideLoop based on the remaining stack.
func (s *ScopeContext) PopBreakType() {
	if len(s.BreakTypes) == 0 {
		return
	}
	s.BreakTypes = s.BreakTypes[:len(s.BreakTypes)-1]
	s.InsideLoop = false
	for _, k := range s.BreakTypes {
		if k == BreakLoop {
			s.InsideLoop = true
		}
	}
}
