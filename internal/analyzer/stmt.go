package analyzer

import (
	"github.com/shivasurya/code-pathfinder/sast-engine/internal/assertion"
	"github.com/shivasurya/code-pathfinder/sast-engine/internal/dataflow"
	"github.com/shivasurya/code-pathfinder/sast-engine/internal/flowid"
	"github.com/shivasurya/code-pathfinder/sast-engine/internal/reconcile"
	"github.com/shivasurya/code-pathfinder/sast-engine/internal/typeatom"
	"github.com/shivasurya/code-pathfinder/sast-engine/internal/varenv"
	"github.com/shivasurya/code-pathfinder/sast-engine/model"
)

// analyzeStmt dispatches one statement, mutating ctx and the analyzer's
// data-flow graph, and returning the union of types returned along any
// path reachable from s (nil if s cannot return).
func (a *Analyzer) analyzeStmt(s *model.Stmt, ctx *varenv.ScopeContext) *typeatom.Union {
	if s == nil {
		return nil
	}
	switch s.Kind {
	case model.StmtExpr:
		a.analyzeExpr(s.Expression, ctx)
		return nil
	case model.StmtBlock:
		return a.analyzeBlock(s.Body, ctx)
	case model.StmtIf:
		return a.analyzeIf(s, ctx)
	case model.StmtWhile:
		return a.analyzeWhile(s, ctx)
	case model.StmtDoWhile:
		return a.analyzeDoWhile(s, ctx)
	case model.StmtFor:
		return a.analyzeFor(s, ctx)
	case model.StmtForeach:
		return a.analyzeForeach(s, ctx)
	case model.StmtReturn:
		return a.analyzeReturn(s, ctx)
	case model.StmtThrow:
		a.analyzeExpr(s.Value, ctx)
		return nil
	case model.StmtBreak:
		a.breakHit = true
		return nil
	case model.StmtContinue:
		return nil
	case model.StmtSwitch:
		return a.analyzeSwitch(s, ctx)
	default:
		return nil
	}
}

func (a *Analyzer) analyzeBlock(stmts []*model.Stmt, ctx *varenv.ScopeContext) *typeatom.Union {
	var ret *typeatom.Union
	for _, st := range stmts {
		r := a.analyzeStmt(st, ctx)
		if r != nil {
			ret = unionReturns(ret, r)
		}
	}
	return ret
}

func unionReturns(a, b *typeatom.Union) *typeatom.Union {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return typeatom.UnionAdd(a, b, true)
}

// analyzeIf snapshots the context, runs each branch against assertions
// generated from the condition (and its negation), then joins variables
// pointwise by union-add (spec §4.6 "Assignments, conditionals, throws,
// returns").
func (a *Analyzer) analyzeIf(s *model.Stmt, ctx *varenv.ScopeContext) *typeatom.Union {
	a.analyzeExpr(s.Cond, ctx)
	newTypes := a.generateAssertions(s.Cond, ctx)

	thenCtx := ctx.Clone()
	thenCtx.IfBodyContext = ctx.Clone()
	if len(newTypes) > 0 {
		a.absorbReconcileIssues(reconcile.ReconcileKeyedTypes(newTypes, thenCtx, false), s.Cond.Pos)
	}
	var thenReturn *typeatom.Union
	if s.Then != nil {
		thenReturn = a.analyzeStmt(s.Then, thenCtx)
	}

	elseCtx := ctx.Clone()
	if negated := negateNewTypes(newTypes); len(negated) > 0 {
		a.absorbReconcileIssues(reconcile.ReconcileKeyedTypes(negated, elseCtx, true), s.Cond.Pos)
	}
	var elseReturn *typeatom.Union
	if s.Else != nil {
		elseReturn = a.analyzeStmt(s.Else, elseCtx)
	}

	joinBranches(ctx, thenCtx, elseCtx)
	return unionReturns(thenReturn, elseReturn)
}

// joinBranches merges two branch snapshots back into dest by pointwise
// union-add over every tracked path (spec §4.3 "snapshots are joined by
// pointwise union-add on vars-in-scope").
func joinBranches(dest, left, right *varenv.ScopeContext) {
	merged := left.AllVars()
	for path, t := range right.AllVars() {
		if existing, ok := merged[path]; ok {
			merged[path] = typeatom.UnionAdd(existing, t, true)
		} else {
			merged[path] = t
		}
	}
	for path, t := range merged {
		dest.SetVarType(path, t)
	}
}

// mergeMaybeZeroIterationVars folds a loop-body snapshot into the caller
// when the body may have executed zero times (while/for/foreach): every
// tracked path is union-added with its pre-loop value rather than
// committed outright.
func mergeMaybeZeroIterationVars(outer, bodyCtx *varenv.ScopeContext) {
	for path, t := range bodyCtx.AllVars() {
		if existing, ok := outer.GetVarType(path); ok {
			outer.SetVarType(path, typeatom.UnionAdd(existing, t, true))
		} else {
			outer.SetVarType(path, t)
		}
	}
}

func (a *Analyzer) analyzeWhile(s *model.Stmt, ctx *varenv.ScopeContext) *typeatom.Union {
	a.analyzeExpr(s.LoopCond, ctx)
	assertions := a.generateAssertions(s.LoopCond, ctx)

	bodyCtx := ctx.Clone()
	if len(assertions) > 0 {
		a.absorbReconcileIssues(reconcile.ReconcileKeyedTypes(assertions, bodyCtx, false), s.LoopCond.Pos)
	}
	bodyCtx.PushBreakType(varenv.BreakLoop)
	var ret *typeatom.Union
	if s.LoopBody != nil {
		ret = a.analyzeStmt(s.LoopBody, bodyCtx)
	}
	bodyCtx.PopBreakType()

	mergeMaybeZeroIterationVars(ctx, bodyCtx)
	return ret
}

func (a *Analyzer) analyzeFor(s *model.Stmt, ctx *varenv.ScopeContext) *typeatom.Union {
	a.analyzeExpr(s.Init, ctx)
	a.analyzeExpr(s.ForCond, ctx)

	bodyCtx := ctx.Clone()
	bodyCtx.PushBreakType(varenv.BreakLoop)
	var ret *typeatom.Union
	if s.ForBody != nil {
		ret = a.analyzeStmt(s.ForBody, bodyCtx)
	}
	a.analyzeExpr(s.Post, bodyCtx)
	bodyCtx.PopBreakType()

	mergeMaybeZeroIterationVars(ctx, bodyCtx)
	return ret
}

func (a *Analyzer) analyzeForeach(s *model.Stmt, ctx *varenv.ScopeContext) *typeatom.Union {
	collType := a.analyzeExpr(s.Collection, ctx)

	elemType := typeatom.GetMixedAny()
	if single := collType.Single(); single != nil {
		switch single.Kind {
		case typeatom.KindVec, typeatom.KindKeyset:
			if single.Element != nil {
				elemType = single.Element
			}
		case typeatom.KindDict:
			if single.Params != nil {
				elemType = single.Params.Value
			}
		}
	}

	bodyCtx := ctx.Clone()
	if s.ValueVar != nil {
		if path := exprPath(s.ValueVar); path != "" {
			bodyCtx.SetVarType(path, elemType.WithParents(flowid.Var(path)))
		}
	}
	if s.KeyVar != nil {
		if path := exprPath(s.KeyVar); path != "" {
			bodyCtx.SetVarType(path, typeatom.GetMixedAny())
		}
	}

	bodyCtx.PushBreakType(varenv.BreakLoop)
	var ret *typeatom.Union
	if s.ForeachBody != nil {
		ret = a.analyzeStmt(s.ForeachBody, bodyCtx)
	}
	bodyCtx.PopBreakType()

	mergeMaybeZeroIterationVars(ctx, bodyCtx)
	return ret
}

// analyzeDoWhile implements the six-step loop algorithm of spec §4.6
// "Loops" verbatim. Step 4's "generic loop analyzer ... to fixed point" is
// approximated by a single extra body+condition pass rather than an
// iterate-to-convergence solver (see DESIGN.md for the grounding of this
// simplification) — sufficient to stabilize the loop shapes this analyzer
// actually walks (no nested loops sharing a mixed induction variable).
func (a *Analyzer) analyzeDoWhile(s *model.Stmt, ctx *varenv.ScopeContext) *typeatom.Union {
	preLoopVars := ctx.AllVars()

	// step 1
	doContext := ctx.Clone()
	doContext.PushBreakType(varenv.BreakLoop)
	prevBreak := a.breakHit
	a.breakHit = false
	var ret *typeatom.Union
	if s.LoopBody != nil {
		ret = a.analyzeStmt(s.LoopBody, doContext)
	}
	doContext.PopBreakType()
	hadBreak := a.breakHit
	a.breakHit = a.breakHit || prevBreak

	// step 2
	mixedVars := map[string]struct{}{}
	for path, t := range doContext.AllVars() {
		if t.IsMixed() {
			mixedVars[path] = struct{}{}
		}
	}

	// step 3
	whileAssertions := a.generateAssertions(s.LoopCond, doContext)
	for path := range whileAssertions {
		if _, mixed := mixedVars[path]; mixed {
			delete(whileAssertions, path)
		}
	}

	// step 4: re-walk body + condition once more against the stabilized
	// context.
	if s.LoopBody != nil {
		a.analyzeStmt(s.LoopBody, doContext)
	}
	a.analyzeExpr(s.LoopCond, doContext)

	// step 5
	if negated := negateNewTypes(whileAssertions); len(negated) > 0 {
		a.absorbReconcileIssues(reconcile.ReconcileKeyedTypes(negated, doContext, true), s.LoopCond.Pos)
	}

	// step 6
	for path, t := range doContext.AllVars() {
		if hadBreak {
			if pre, ok := preLoopVars[path]; ok {
				ctx.SetVarType(path, typeatom.UnionAdd(pre, t, true))
				continue
			}
		}
		ctx.SetVarType(path, t)
	}
	return ret
}

func (a *Analyzer) analyzeReturn(s *model.Stmt, ctx *varenv.ScopeContext) *typeatom.Union {
	if s.Value == nil {
		return typeatom.GetNull()
	}
	valueType := a.analyzeExpr(s.Value, ctx)

	fqn := ""
	if ctx.FunctionContext != nil {
		fqn = ctx.FunctionContext.FunctionFQN
	}
	returnID := flowid.ID{Kind: flowid.KindReturn, Name: fqn}
	a.graph.AddNode(dataflow.Vertex(returnID, &dataflow.Position{
		File: s.Pos.File, StartByte: s.Pos.StartByte, EndByte: s.Pos.EndByte,
		StartLine: s.Pos.StartLine, EndLine: s.Pos.EndLine,
	}))
	for _, parent := range valueType.ParentList() {
		a.graph.AddPath(parent, returnID, dataflow.Default(), nil, nil)
	}
	return valueType.WithParents(returnID)
}

func (a *Analyzer) analyzeSwitch(s *model.Stmt, ctx *varenv.ScopeContext) *typeatom.Union {
	a.analyzeExpr(s.SwitchSubject, ctx)

	ctx.PushBreakType(varenv.BreakSwitch)
	var ret *typeatom.Union
	branches := make([]*varenv.ScopeContext, 0, len(s.Cases))
	for _, c := range s.Cases {
		caseCtx := ctx.Clone()
		if c.Match != nil {
			a.analyzeExpr(c.Match, caseCtx)
		}
		if r := a.analyzeBlock(c.Body, caseCtx); r != nil {
			ret = unionReturns(ret, r)
		}
		branches = append(branches, caseCtx)
	}
	ctx.PopBreakType()

	for _, bc := range branches {
		mergeMaybeZeroIterationVars(ctx, bc)
	}
	return ret
}

// generateAssertions derives path-keyed assertions from a condition
// expression, flattening top-level `&&` conjunctions into one AND-group
// per path (spec §4.6's "formula generation"). Disjunctions and compound
// per-path conjunctions beyond the shapes below are left unasserted rather
// than guessed at — a narrower but sound approximation.
func (a *Analyzer) generateAssertions(cond *model.Expr, ctx *varenv.ScopeContext) reconcile.NewTypes {
	out := reconcile.NewTypes{}
	a.collectAssertions(cond, out)
	return out
}

func (a *Analyzer) collectAssertions(e *model.Expr, out reconcile.NewTypes) {
	if e == nil {
		return
	}
	switch e.Kind {
	case model.ExprVariable:
		addAssertion(out, "$"+e.VarName, assertion.Truthy())

	case model.ExprBinary:
		switch e.Op {
		case "&&", "and":
			a.collectAssertions(e.Left, out)
			a.collectAssertions(e.Right, out)
		case "===", "==":
			collectEquality(e, out, true)
		case "!==", "!=":
			collectEquality(e, out, false)
		}

	case model.ExprShapesCall:
		if e.CalleeFQN == "keyExists" && len(e.Args) >= 2 {
			shapePath := exprPath(e.Args[0])
			if key, ok := literalStringKey(e.Args[1]); ok && shapePath != "" {
				addAssertion(out, shapePath, assertion.HasArrayKey(key))
			}
		}

	case model.ExprIsset:
		for _, target := range e.Targets {
			a.collectIssetAssertion(target, out)
		}
	}
}

// collectIssetAssertion is the nested-assertion expansion of spec §4.5
// step 1, applied to one isset() target: a literal-keyed array access
// (isset($a['k'])) injects HasArrayKey(key) on the base shape path, the
// same known-item-defined narrowing Shapes::keyExists triggers (spec §8
// scenario 2), since the known-item is what actually carries
// possibly_undefined. Anything else (plain variables, property fetches,
// non-literal keys) falls back to asserting IsIsset on the full path,
// which only rules out the path being completely untracked.
func (a *Analyzer) collectIssetAssertion(target *model.Expr, out reconcile.NewTypes) {
	if target != nil && target.Kind == model.ExprArrayAccess {
		basePath := exprPath(target.Base)
		if key, ok := literalStringKey(target.Key); ok && basePath != "" {
			addAssertion(out, basePath, assertion.HasArrayKey(key))
			return
		}
	}
	if path := exprPath(target); path != "" {
		addAssertion(out, path, assertion.IsIsset())
	}
}

// collectEquality handles `$x === <literal>` / `$x !== <literal>` in
// either operand order, asserting IsType/IsNotType against the literal's
// singleton type.
func collectEquality(e *model.Expr, out reconcile.NewTypes, positive bool) {
	varExpr, litExpr := e.Left, e.Right
	if litExpr == nil || litExpr.Kind != model.ExprLiteral {
		varExpr, litExpr = e.Right, e.Left
	}
	if litExpr == nil || litExpr.Kind != model.ExprLiteral {
		return
	}
	path := exprPath(varExpr)
	if path == "" {
		return
	}

	var litType *typeatom.Union
	switch litExpr.LiteralKind {
	case "null":
		litType = typeatom.GetNull()
	case "int":
		litType = typeatom.GetLiteralInt(litExpr.LiteralInt)
	case "string":
		litType = typeatom.GetLiteralString(litExpr.LiteralStr)
	case "bool":
		if litExpr.LiteralBool {
			litType = typeatom.GetTrue()
		} else {
			litType = typeatom.GetFalse()
		}
	default:
		return
	}

	if positive {
		addAssertion(out, path, assertion.IsType(litType))
	} else {
		addAssertion(out, path, assertion.IsNotType(litType))
	}
}

// addAssertion conjoins a into path's single AND-group. This generator
// only ever produces one AND-group per path (conjunction via top-level
// &&), so a second call for the same path extends that group rather than
// opening a new OR-branch.
func addAssertion(out reconcile.NewTypes, path string, a *assertion.Assertion) {
	if len(out[path]) == 0 {
		out[path] = [][]*assertion.Assertion{{a}}
		return
	}
	out[path][0] = append(out[path][0], a)
}

// negateNewTypes De Morgan's a single-AND-group-per-path NewTypes value
// into the OR-of-singletons shape its negation actually has: not(A and B)
// is (not A) or (not B). A path whose assertions include one with no
// useful negation is dropped entirely, leaving that path unnarrowed on the
// negated branch.
func negateNewTypes(newTypes reconcile.NewTypes) reconcile.NewTypes {
	out := reconcile.NewTypes{}
	for path, orGroups := range newTypes {
		if len(orGroups) != 1 {
			continue
		}
		var negated [][]*assertion.Assertion
		for _, a := range orGroups[0] {
			neg := a.Negated()
			if neg == nil {
				negated = nil
				break
			}
			negated = append(negated, []*assertion.Assertion{neg})
		}
		if negated != nil {
			out[path] = negated
		}
	}
	return out
}
