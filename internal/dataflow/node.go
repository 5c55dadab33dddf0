// Package dataflow implements the per-function and whole-program data-flow
// graph (spec §4.4): directed multigraphs of value-provenance nodes with
// labeled edges and optional taint source/sink annotations.
//
// Structured the way the teacher's graph/callgraph/core.CallGraph is
// structured (forward/reverse adjacency maps keyed by a comparable id,
// pre-allocated in a constructor) but generalized from a plain
// caller->callee string graph to the richer node/edge/path-kind shape the
// spec requires.
package dataflow

import (
	"github.com/shivasurya/code-pathfinder/sast-engine/internal/flowid"
)

// NodeRole distinguishes the seven node shapes in the data model.
type NodeRole string

const (
	RoleVertex            NodeRole = "vertex"
	RoleTaintSource        NodeRole = "taint_source"
	RoleTaintSink          NodeRole = "taint_sink"
	RoleVariableUseSource  NodeRole = "variable_use_source"
	RoleVariableUseSink    NodeRole = "variable_use_sink"
	RoleForLoopInit        NodeRole = "for_loop_init"
	RoleDataSource         NodeRole = "data_source"
)

// TaintKind labels the flavor of tainted data a source produces or a sink
// is sensitive to (e.g. HtmlTag, HtmlAttributeUri, Sql, ...). Kept as a
// string so the special-function tables (internal/builtins) can extend the
// set without a core change.
type TaintKind string

const (
	TaintHTMLTag          TaintKind = "HtmlTag"
	TaintHTMLAttributeURI TaintKind = "HtmlAttributeUri"
	TaintSQL              TaintKind = "Sql"
	TaintShellCommand     TaintKind = "ShellCommand"
	TaintFilePath         TaintKind = "FilePath"
	TaintUnserialize      TaintKind = "Unserialize"
)

// Node is a data-flow graph node. Equality and hashing are by ID only, per
// spec §3: "The id is itself a structured variant ... Equality and hashing
// are by id only."
type Node struct {
	ID   flowid.ID
	Role NodeRole

	// Vertex payload
	Pos            *Position
	Specialization *flowid.Localization // optional (file, offset) for whole-program specialization

	// TaintSource / TaintSink payload
	TaintKinds []TaintKind

	// Label is an optional human-readable union-type string (e.g. a
	// Union.String() rendering) for debugging/diagnostic output, kept as a
	// plain string so the dataflow package does not import typeatom. The
	// expression analyzer leaves it empty.
	Label string
}

// Position mirrors the external Pos collaborator (spec §6): file, byte
// offsets, and line.
type Position struct {
	File       string
	StartByte  int
	EndByte    int
	StartLine  int
	EndLine    int
}

// Vertex builds a plain provenance vertex.
func Vertex(id flowid.ID, pos *Position) *Node {
	return &Node{ID: id, Role: RoleVertex, Pos: pos}
}

// NewTaintSource builds a taint-source node twinning id.
func NewTaintSource(id flowid.ID, kinds ...TaintKind) *Node {
	return &Node{ID: id, Role: RoleTaintSource, TaintKinds: kinds}
}

// NewTaintSink builds a taint-sink node.
func NewTaintSink(id flowid.ID, kinds ...TaintKind) *Node {
	return &Node{ID: id, Role: RoleTaintSink, TaintKinds: kinds}
}
