// Package builtins holds the special-function tables (spec §4.6): for a
// closed set of well-known standard-library functions, which argument
// positions carry taint, which taint kinds a call adds or removes, and a
// handful of functions whose return type depends on their arguments
// rather than a fixed declared signature.
//
// Grounded in the teacher's registry.BuiltinRegistry (graph/callgraph/
// registry/builtin.go): a pre-populated FQN-keyed map built once in a
// constructor, with small accessor methods doing the lookups, generalized
// from "builtin type method tables" to "builtin function taint/return
// tables".
package builtins

import (
	"strings"

	"github.com/shivasurya/code-pathfinder/sast-engine/internal/dataflow"
	"github.com/shivasurya/code-pathfinder/sast-engine/internal/typeatom"
)

// ArgTaintRule names which argument positions of a call propagate taint to
// its return value, and which taint kinds apply.
type ArgTaintRule struct {
	Positions []int
	Kinds     []dataflow.TaintKind
}

// TaintEffect names taint kinds a call adds to, or removes from, the value
// flowing through a specific argument position (position -1 means "the
// return value").
type TaintEffect struct {
	Position int
	Added    []dataflow.TaintKind
	Removed  []dataflow.TaintKind
}

// SpecialReturnTypeFn computes a call's return type from its concrete
// argument types, used for functions like sprintf whose return shape
// depends on its format string (spec §4.6 "special-return-type table").
type SpecialReturnTypeFn func(argTypes []*typeatom.Union) *typeatom.Union

// Table is the special-function registry, built once and treated as
// read-only afterward, same lifecycle as registry.BuiltinRegistry.
type Table struct {
	argTaint     map[string]ArgTaintRule
	taintEffects map[string][]TaintEffect
	returnTypes  map[string]SpecialReturnTypeFn
}

// NewTable builds and pre-populates the registry with the standard set of
// sources, sinks, sanitizers, and format functions.
func NewTable() *Table {
	t := &Table{
		argTaint:     make(map[string]ArgTaintRule),
		taintEffects: make(map[string][]TaintEffect),
		returnTypes:  make(map[string]SpecialReturnTypeFn),
	}
	t.initArgTaintRules()
	t.initTaintEffects()
	t.initReturnTypeFns()
	return t
}

func (t *Table) initArgTaintRules() {
	// string-combination functions: taint on each listed argument position
	// propagates to the return value.
	t.argTaint["implode"] = ArgTaintRule{Positions: []int{0, 1}}
	t.argTaint["sprintf"] = ArgTaintRule{Positions: []int{1, 2, 3, 4, 5, 6, 7, 8}}
	t.argTaint["str_replace"] = ArgTaintRule{Positions: []int{0, 1, 2}}
	t.argTaint["array_merge"] = ArgTaintRule{Positions: []int{0, 1, 2, 3}}
	t.argTaint["json_encode"] = ArgTaintRule{Positions: []int{0}}

	// sanitizers/encoders: the return value still flows from argument 0
	// (so downstream reachability sees the edge) but the taint-effect
	// table below strips specific kinds off that edge.
	t.argTaint["htmlspecialchars"] = ArgTaintRule{Positions: []int{0}}
	t.argTaint["htmlentities"] = ArgTaintRule{Positions: []int{0}}
	t.argTaint["strip_tags"] = ArgTaintRule{Positions: []int{0}}
	t.argTaint["urlencode"] = ArgTaintRule{Positions: []int{0}}
	t.argTaint["addslashes"] = ArgTaintRule{Positions: []int{0}}
	t.argTaint["escapeshellarg"] = ArgTaintRule{Positions: []int{0}}
	t.argTaint["basename"] = ArgTaintRule{Positions: []int{0}}
	t.argTaint["html_entity_decode"] = ArgTaintRule{Positions: []int{0}}
	t.argTaint["htmlspecialchars_decode"] = ArgTaintRule{Positions: []int{0}}
}

func (t *Table) initTaintEffects() {
	// sources: superglobal-style reads produce tainted return values.
	t.taintEffects["HH\\global_get"] = []TaintEffect{
		{Position: -1, Added: []dataflow.TaintKind{dataflow.TaintHTMLTag, dataflow.TaintSQL, dataflow.TaintShellCommand}},
	}
	t.taintEffects["file_get_contents"] = []TaintEffect{
		{Position: -1, Added: []dataflow.TaintKind{dataflow.TaintHTMLTag}},
	}

	// sanitizers: strip specific taint kinds off the edge from argument 0
	// to the return value (spec §6 "Taint-add/remove table → map
	// arg_index → (added sinks, removed sinks)").
	t.taintEffects["htmlspecialchars"] = []TaintEffect{
		{Position: 0, Removed: []dataflow.TaintKind{dataflow.TaintHTMLTag, dataflow.TaintHTMLAttributeURI}},
	}
	t.taintEffects["htmlentities"] = []TaintEffect{
		{Position: 0, Removed: []dataflow.TaintKind{dataflow.TaintHTMLTag, dataflow.TaintHTMLAttributeURI}},
	}
	t.taintEffects["strip_tags"] = []TaintEffect{
		{Position: 0, Removed: []dataflow.TaintKind{dataflow.TaintHTMLTag, dataflow.TaintHTMLAttributeURI}},
	}
	t.taintEffects["urlencode"] = []TaintEffect{
		{Position: 0, Removed: []dataflow.TaintKind{dataflow.TaintHTMLAttributeURI}},
	}
	t.taintEffects["addslashes"] = []TaintEffect{
		{Position: 0, Removed: []dataflow.TaintKind{dataflow.TaintSQL}},
	}
	t.taintEffects["escapeshellarg"] = []TaintEffect{
		{Position: 0, Removed: []dataflow.TaintKind{dataflow.TaintShellCommand}},
	}
	t.taintEffects["basename"] = []TaintEffect{
		{Position: 0, Removed: []dataflow.TaintKind{dataflow.TaintFilePath}},
	}

	// un-sanitizers: re-introduce HtmlTag when decoding entities back out.
	t.taintEffects["html_entity_decode"] = []TaintEffect{
		{Position: 0, Added: []dataflow.TaintKind{dataflow.TaintHTMLTag}},
	}
	t.taintEffects["htmlspecialchars_decode"] = []TaintEffect{
		{Position: 0, Added: []dataflow.TaintKind{dataflow.TaintHTMLTag}},
	}
}

// TaintEffectForPosition returns the registered add/remove taint effect
// for fqn's argument at pos, if any.
func (t *Table) TaintEffectForPosition(fqn string, pos int) (TaintEffect, bool) {
	for _, effect := range t.taintEffects[fqn] {
		if effect.Position == pos {
			return effect, true
		}
	}
	return TaintEffect{}, false
}

func (t *Table) initReturnTypeFns() {
	t.returnTypes["sprintf"] = sprintfReturnType
	t.returnTypes["vsprintf"] = sprintfReturnType
}

// ArgTaintRuleFor returns the registered argument-taint rule for fqn, if
// any.
func (t *Table) ArgTaintRuleFor(fqn string) (ArgTaintRule, bool) {
	r, ok := t.argTaint[fqn]
	return r, ok
}

// TaintEffectsFor returns the registered add/remove taint effects for fqn.
func (t *Table) TaintEffectsFor(fqn string) []TaintEffect {
	return t.taintEffects[fqn]
}

// SpecialReturnType computes fqn's return type from argTypes if fqn has a
// registered special-return-type function, else returns (nil, false) so
// the caller falls back to the declared signature.
func (t *Table) SpecialReturnType(fqn string, argTypes []*typeatom.Union) (*typeatom.Union, bool) {
	fn, ok := t.returnTypes[fqn]
	if !ok {
		return nil, false
	}
	return fn(argTypes), true
}

// sprintfReturnType is the format-string return type (spec §7): a literal
// format with no '%' is returned as that literal string; a literal format
// containing '%' yields a non-literal, non-empty string_with_flags; a
// missing or non-literal format yields plain `string`. Conversions are not
// tokenized and the remaining arguments are not spliced into the result.
func sprintfReturnType(argTypes []*typeatom.Union) *typeatom.Union {
	if len(argTypes) == 0 {
		return typeatom.GetString()
	}
	format, ok := argTypes[0].GetSingleLiteralStringValue()
	if !ok {
		return typeatom.GetString()
	}
	if !strings.Contains(format, "%") {
		return typeatom.GetLiteralString(format)
	}
	// a dynamic conversion is present: the composed result is no longer a
	// compile-time-known literal, but it is always a well-formed string.
	return typeatom.GetStringWithFlags(false, len(format) > 0, false)
}
