// Package analyzer is the recursive expression/statement type-inference
// walker (spec §4.6): the only component that mutates
// internal/varenv.ScopeContext and internal/dataflow.Graph. It dispatches
// call analysis, binary/concat operations, array access/assignment,
// conditionals, and loops, consulting internal/reflection and
// internal/builtins along the way and narrowing through internal/reconcile.
//
// Grounded in the teacher's own statement-walking style: graph/callgraph's
// CFG builder (graph/callgraph/cfg/cfg.go) recurses over a statement tree
// exactly once, left-to-right, mutating one owned accumulator as it goes —
// this package keeps that shape but the accumulator is a ScopeContext plus
// a dataflow.Graph rather than a basic-block list.
package analyzer

import (
	"github.com/shivasurya/code-pathfinder/sast-engine/internal/assertion"
	"github.com/shivasurya/code-pathfinder/sast-engine/internal/builtins"
	"github.com/shivasurya/code-pathfinder/sast-engine/internal/dataflow"
	"github.com/shivasurya/code-pathfinder/sast-engine/internal/flowid"
	"github.com/shivasurya/code-pathfinder/sast-engine/internal/reconcile"
	"github.com/shivasurya/code-pathfinder/sast-engine/internal/reflection"
	"github.com/shivasurya/code-pathfinder/sast-engine/internal/typeatom"
	"github.com/shivasurya/code-pathfinder/sast-engine/internal/varenv"
	"github.com/shivasurya/code-pathfinder/sast-engine/model"
)

// IssueKind enumerates the diagnostics the analyzer itself can raise
// (distinct from internal/reconcile's narrowing diagnostics).
type IssueKind string

const (
	IssueInternalInvariantViolation IssueKind = "InternalInvariantViolation"
	IssueMethodVisibilityViolation  IssueKind = "MethodVisibilityViolation"
	IssueNonParsableVecKey          IssueKind = "NonParsableVecKey"
	IssueRedundantTypeComparison    IssueKind = "RedundantTypeComparison"
	IssueImpossibleTypeComparison   IssueKind = "ImpossibleTypeComparison"
	IssueFailedReconciliation       IssueKind = "FailedReconciliation"
)

// Issue is one analyzer-level diagnostic.
type Issue struct {
	Kind    IssueKind
	Message string
	Pos     model.Pos
}

// Analyzer drives one function body's analysis. A new Analyzer is created
// per function (spec §5 "Scheduling": one function body per worker, no
// suspension points); its Graph and Issues are read once
// AnalyzeFunctionBody returns.
type Analyzer struct {
	Reflection *reflection.Database
	Builtins   *builtins.Table

	graph  *dataflow.Graph
	issues []Issue

	breakHit bool
}

// NewAnalyzer builds an analyzer for one function body, with its own
// function-body data-flow graph (spec §4.4 "FunctionBody" kind).
func NewAnalyzer(refl *reflection.Database, bt *builtins.Table) *Analyzer {
	return &Analyzer{
		Reflection: refl,
		Builtins:   bt,
		graph:      dataflow.NewGraph(dataflow.KindFunctionBody),
	}
}

// Graph returns the per-function data-flow graph accumulated so far.
func (a *Analyzer) Graph() *dataflow.Graph { return a.graph }

// Issues returns every diagnostic raised during this function's analysis.
func (a *Analyzer) Issues() []Issue { return a.issues }

func (a *Analyzer) raise(kind IssueKind, msg string, pos model.Pos) {
	a.issues = append(a.issues, Issue{Kind: kind, Message: msg, Pos: pos})
}

var reconcileIssueKinds = map[reconcile.IssueKind]IssueKind{
	reconcile.IssueRedundantTypeComparison:  IssueRedundantTypeComparison,
	reconcile.IssueImpossibleTypeComparison: IssueImpossibleTypeComparison,
	reconcile.IssueFailedReconciliation:     IssueFailedReconciliation,
}

// absorbReconcileIssues surfaces internal/reconcile's own diagnostics
// (redundant/impossible type comparisons caught while narrowing a
// condition) as analyzer-level issues, tagged with the condition's
// position since the reconciler itself only knows the narrowed path.
func (a *Analyzer) absorbReconcileIssues(result *reconcile.Result, pos model.Pos) {
	if result == nil {
		return
	}
	for _, issue := range result.Issues {
		kind, ok := reconcileIssueKinds[issue.Kind]
		if !ok {
			kind = IssueInternalInvariantViolation
		}
		a.raise(kind, issue.Path, pos)
	}
}

// AnalyzeFunctionBody seeds a root ScopeContext from the function's
// declared parameters and walks its statements (spec §4.3 "Lifecycle":
// "created at the entry of each function body, seeded from parameter
// nodes and declared parameter types").
func (a *Analyzer) AnalyzeFunctionBody(fn *model.FunctionBody) (*varenv.ScopeContext, *typeatom.Union) {
	ctx := varenv.NewScopeContext(&varenv.FunctionContext{FunctionFQN: fn.FQN})
	for _, p := range fn.Params {
		paramID := flowid.Param(fn.FQN, p.Name)
		a.graph.AddNode(dataflow.Vertex(paramID, nil))
		t := typeatom.GetMixedAny()
		t.AddParent(paramID)
		ctx.SetVarType("$"+p.Name, t)
	}

	returnType := typeatom.GetNothing()
	for _, stmt := range fn.Body {
		ret := a.analyzeStmt(stmt, ctx)
		if ret != nil {
			returnType = typeatom.UnionAdd(returnType, ret, true)
		}
	}
	if returnType.IsNothing() {
		returnType = typeatom.GetNull()
	}
	return ctx, returnType
}
