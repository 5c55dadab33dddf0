// Package model is the AST surface the expression analyzer consumes
// (spec §6, "Consumed — AST and source positions"): expressions and
// statements carrying an inferred type and data-flow provenance.
//
// The teacher's own model.Top/BaseTop (model/top.go) wraps a tree-sitter
// node behind a small interface hierarchy sized for read-only code-graph
// queries (GetFile, GetLocation, ...). The sibling sourcecode-parser
// module's model/expr.go and model/stmt.go go further and embed a raw
// sitter.Node directly on every expression/statement node — the shape the
// analyzer actually needs to walk. This package adapts that second shape,
// generalized from "one fixed parse tree species" to the flat
// tagged-variant idiom used throughout internal/typeatom and
// internal/assertion: a closed Kind enum plus optional payload fields,
// rather than an embedded-interface hierarchy, so the analyzer's switch
// statements over expression/statement kind are exhaustive and don't need
// type assertions.
package model

// Pos is a source position, generalized from the sourcecode-parser
// model's raw sitter.Node field into the plain byte/line span
// internal/dataflow.Position and the reconciler's Hpos collaborator
// already use, so model doesn't need to depend on go-tree-sitter itself
// (parsing to this position shape is an external collaborator, a
// non-goal in spec §1).
type Pos struct {
	File       string
	StartByte  int
	EndByte    int
	StartLine  int
	EndLine    int
	StartCol   int
	EndCol     int
}

// HPos is the narrower "just enough to build a flowid.Localization"
// position the reconciler and data-flow graph construction consult,
// matching the "Hpos" collaborator named in spec §6.
type HPos struct {
	File        string
	StartOffset int
	EndOffset   int
}

// ToHPos narrows a full Pos down to the file/offset pair used for
// data-flow node localization.
func (p Pos) ToHPos() HPos {
	return HPos{File: p.File, StartOffset: p.StartByte, EndOffset: p.EndByte}
}
