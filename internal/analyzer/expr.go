package analyzer

import (
	"strconv"

	"github.com/shivasurya/code-pathfinder/sast-engine/internal/dataflow"
	"github.com/shivasurya/code-pathfinder/sast-engine/internal/flowid"
	"github.com/shivasurya/code-pathfinder/sast-engine/internal/typeatom"
	"github.com/shivasurya/code-pathfinder/sast-engine/internal/varenv"
	"github.com/shivasurya/code-pathfinder/sast-engine/model"
)

// analyzeExpr recurses through an expression tree bottom-up, filling in
// e.Type and returning it.
func (a *Analyzer) analyzeExpr(e *model.Expr, ctx *varenv.ScopeContext) *typeatom.Union {
	if e == nil {
		return typeatom.GetMixedAny()
	}
	switch e.Kind {
	case model.ExprVariable:
		e.Type = a.analyzeVariable(e, ctx)
	case model.ExprLiteral:
		e.Type = a.analyzeLiteral(e)
	case model.ExprBinary:
		e.Type = a.analyzeBinary(e, ctx)
	case model.ExprConcat:
		e.Type = a.analyzeConcat(e, ctx)
	case model.ExprFunctionCall:
		e.Type = a.analyzeFunctionCall(e, ctx)
	case model.ExprMethodCall:
		e.Type = a.analyzeMethodCall(e, ctx)
	case model.ExprStaticCall:
		e.Type = a.analyzeStaticCall(e, ctx)
	case model.ExprShapesCall:
		e.Type = a.analyzeShapesCall(e, ctx)
	case model.ExprArrayAccess:
		e.Type = a.analyzeArrayAccess(e, ctx)
	case model.ExprArrayAssignment:
		e.Type = a.analyzeArrayAssignment(e, ctx)
	case model.ExprPropertyFetch:
		e.Type = a.analyzePropertyFetch(e, ctx)
	case model.ExprAssignment:
		e.Type = a.analyzeAssignment(e, ctx)
	case model.ExprTernary:
		e.Type = a.analyzeTernary(e, ctx)
	case model.ExprIsset:
		e.Type = a.analyzeIsset(e, ctx)
	default:
		e.Type = typeatom.GetMixedAny()
	}
	return e.Type
}

func (a *Analyzer) analyzeVariable(e *model.Expr, ctx *varenv.ScopeContext) *typeatom.Union {
	if t, ok := ctx.GetVarType("$" + e.VarName); ok {
		return t
	}
	return typeatom.GetMixedAny()
}

func (a *Analyzer) analyzeLiteral(e *model.Expr) *typeatom.Union {
	switch e.LiteralKind {
	case "int":
		return typeatom.GetLiteralInt(e.LiteralInt)
	case "string":
		return typeatom.GetLiteralString(e.LiteralStr)
	case "bool":
		if e.LiteralBool {
			return typeatom.GetTrue()
		}
		return typeatom.GetFalse()
	case "null":
		return typeatom.GetNull()
	case "classname":
		return typeatom.GetLiteralClassname(e.LiteralStr)
	default:
		return typeatom.GetMixedAny()
	}
}

func (a *Analyzer) analyzeBinary(e *model.Expr, ctx *varenv.ScopeContext) *typeatom.Union {
	a.analyzeExpr(e.Left, ctx)
	a.analyzeExpr(e.Right, ctx)
	switch e.Op {
	case "&&", "and", "||", "or":
		return typeatom.GetBool()
	case "===", "!==", "==", "!=", "<", ">", "<=", ">=":
		return typeatom.GetBool()
	default:
		return typeatom.GetMixedAny()
	}
}

// analyzeConcat folds a left-to-right operand chain, tracking all-literal
// and non-empty flags, and emits a composition node aggregating every
// operand's data-flow parents with Default edges (spec §4.6 "Binary
// concatenation").
func (a *Analyzer) analyzeConcat(e *model.Expr, ctx *varenv.ScopeContext) *typeatom.Union {
	allLiteral := true
	nonEmpty := len(e.Operands) > 0
	var literalParts []string
	isFullyLiteral := true

	compositionID := flowid.ID{Kind: flowid.KindComposition, Name: "concat@" + strconv.Itoa(e.Pos.StartByte)}
	a.graph.AddNode(dataflow.Vertex(compositionID, nil))

	for _, operand := range e.Operands {
		t := a.analyzeExpr(operand, ctx)
		if !t.AllLiterals() {
			allLiteral = false
			isFullyLiteral = false
		}
		if v, ok := t.GetSingleLiteralStringValue(); ok && isFullyLiteral {
			literalParts = append(literalParts, v)
		} else {
			isFullyLiteral = false
		}
		if t.IsAlwaysFalsy() {
			nonEmpty = false
		}
		for _, parent := range t.ParentList() {
			a.graph.AddPath(parent, compositionID, dataflow.Default(), nil, nil)
		}
	}

	if isFullyLiteral && allLiteral {
		joined := ""
		for _, p := range literalParts {
			joined += p
		}
		result := typeatom.GetLiteralString(joined)
		result.AddParent(compositionID)
		return result
	}

	result := typeatom.GetStringWithFlags(false, nonEmpty, allLiteral)
	result.AddParent(compositionID)
	return result
}

// analyzeIsset walks each isset() target purely for its data-flow/position
// side effects (spec §4.5's nested-assertion expansion is what actually
// narrows the targets, via collectAssertions); isset() itself always yields
// bool regardless of its targets' inferred types.
func (a *Analyzer) analyzeIsset(e *model.Expr, ctx *varenv.ScopeContext) *typeatom.Union {
	for _, t := range e.Targets {
		a.analyzeExpr(t, ctx)
	}
	return typeatom.GetBool()
}

func (a *Analyzer) analyzeTernary(e *model.Expr, ctx *varenv.ScopeContext) *typeatom.Union {
	a.analyzeExpr(e.Cond, ctx)
	trueType := a.analyzeExpr(e.IfTrue, ctx)
	falseType := a.analyzeExpr(e.IfFalse, ctx)
	return typeatom.UnionAdd(trueType, falseType, true)
}

func (a *Analyzer) analyzeAssignment(e *model.Expr, ctx *varenv.ScopeContext) *typeatom.Union {
	valueType := a.analyzeExpr(e.Value, ctx)
	path := exprPath(e.Base)
	if path != "" {
		assignID := flowid.ID{Kind: flowid.KindArrayAssignment, Name: path + "@" + strconv.Itoa(e.Pos.StartByte)}
		a.graph.AddNode(dataflow.Vertex(assignID, nil))
		for _, parent := range valueType.ParentList() {
			a.graph.AddPath(parent, assignID, dataflow.Default(), nil, nil)
		}
		rebindType := valueType.WithParents(assignID)
		ctx.SetVarType(path, rebindType)
		invalidateRelatedPaths(ctx, path)
	}
	return valueType
}

// invalidateRelatedPaths drops tracked sub-paths of path (e.g. assigning
// to $x invalidates any previously-tracked $x['k']) since their narrowed
// type can no longer be trusted against the new container value (spec
// §4.6 "Assignment rebinds a path and invalidates related sub-paths").
func invalidateRelatedPaths(ctx *varenv.ScopeContext, path string) {
	for other := range ctx.AllVars() {
		if other == path {
			continue
		}
		for parent, ok := varenv.ParentPath(other); ok; parent, ok = varenv.ParentPath(parent) {
			if parent == path {
				ctx.RemoveVar(other)
				break
			}
		}
	}
}

func exprPath(e *model.Expr) string {
	if e == nil {
		return ""
	}
	switch e.Kind {
	case model.ExprVariable:
		return "$" + e.VarName
	case model.ExprPropertyFetch:
		return exprPath(e.Base) + "->" + e.PropName
	case model.ExprArrayAccess, model.ExprArrayAssignment:
		base := exprPath(e.Base)
		if e.Key != nil && e.Key.Kind == model.ExprLiteral {
			if e.Key.LiteralKind == "string" {
				return base + "['" + e.Key.LiteralStr + "']"
			}
			if e.Key.LiteralKind == "int" {
				return base + "[" + strconv.FormatInt(e.Key.LiteralInt, 10) + "]"
			}
		}
		return ""
	default:
		return ""
	}
}
