package analyzer

import (
	"github.com/shivasurya/code-pathfinder/sast-engine/internal/dataflow"
	"github.com/shivasurya/code-pathfinder/sast-engine/internal/flowid"
	"github.com/shivasurya/code-pathfinder/sast-engine/internal/reflection"
	"github.com/shivasurya/code-pathfinder/sast-engine/internal/template"
	"github.com/shivasurya/code-pathfinder/sast-engine/internal/typeatom"
	"github.com/shivasurya/code-pathfinder/sast-engine/internal/varenv"
	"github.com/shivasurya/code-pathfinder/sast-engine/model"
)

// analyzeFunctionCall implements function_call_return_type_fetcher::fetch
// (spec §4.6 "Function calls"): special-function table first, then
// add_dataflow wiring the argument-taint table's edges onto a return
// vertex, with a TaintSource twin when the callee is a declared source.
func (a *Analyzer) analyzeFunctionCall(e *model.Expr, ctx *varenv.ScopeContext) *typeatom.Union {
	argTypes := a.analyzeArgs(e.Args, ctx)

	if special, ok := a.Builtins.SpecialReturnType(e.CalleeFQN, argTypes); ok {
		return a.addDataflow(e, argTypes, special)
	}

	// no declared-signature fetcher is wired in this core (reflection
	// tracks classes, not free functions); fall back to mixed-any, still
	// wired through add_dataflow so taint still propagates through
	// unknown functions via the argument-taint table.
	return a.addDataflow(e, argTypes, typeatom.GetMixedAny())
}

// addDataflow attaches a return vertex for e, wires the argument-taint
// table's edges from each covered argument position, and inserts a
// TaintSource twin if e.CalleeFQN is a registered source.
func (a *Analyzer) addDataflow(e *model.Expr, argTypes []*typeatom.Union, returnType *typeatom.Union) *typeatom.Union {
	returnID := flowid.CallTo(e.CalleeFQN).Localize(e.Pos.File, e.Pos.StartByte, e.Pos.EndByte)
	a.graph.AddNode(dataflow.Vertex(returnID, &dataflow.Position{
		File: e.Pos.File, StartByte: e.Pos.StartByte, EndByte: e.Pos.EndByte,
		StartLine: e.Pos.StartLine, EndLine: e.Pos.EndLine,
	}))

	if rule, ok := a.Builtins.ArgTaintRuleFor(e.CalleeFQN); ok {
		for _, pos := range rule.Positions {
			if pos < 0 || pos >= len(argTypes) {
				continue // variadic tail: positions beyond len(args) simply have nothing to wire
			}
			var added, removed []dataflow.TaintKind
			if effect, ok := a.Builtins.TaintEffectForPosition(e.CalleeFQN, pos); ok {
				added, removed = effect.Added, effect.Removed
			}
			for _, parent := range argTypes[pos].ParentList() {
				a.graph.AddPath(parent, returnID, dataflow.Default(), added, removed)
			}
		}
	}

	for _, effect := range a.Builtins.TaintEffectsFor(e.CalleeFQN) {
		if effect.Position != -1 {
			continue
		}
		if len(effect.Added) > 0 {
			a.graph.AddNode(dataflow.NewTaintSource(returnID, effect.Added...))
		}
	}

	return returnType.WithParents(returnID)
}

func (a *Analyzer) analyzeArgs(args []*model.Expr, ctx *varenv.ScopeContext) []*typeatom.Union {
	out := make([]*typeatom.Union, len(args))
	for i, arg := range args {
		out[i] = a.analyzeExpr(arg, ctx)
	}
	return out
}

// analyzeMethodCall mirrors analyzeFunctionCall but dispatches through
// analyzeMethodCallOnAtomic (the receiver's already-known object type) vs
// analyzeMethodCallByName (a class-name lookup), per SPEC_FULL.md §7's
// existing_atomic_method_call_analyzer grounding.
func (a *Analyzer) analyzeMethodCall(e *model.Expr, ctx *varenv.ScopeContext) *typeatom.Union {
	receiverType := a.analyzeExpr(e.Target, ctx)
	single := receiverType.Single()
	if single != nil && single.Kind == typeatom.KindNamedObject {
		return a.analyzeMethodCallOnAtomic(e, ctx, single)
	}
	return a.analyzeMethodCallByName(e, ctx, "")
}

func (a *Analyzer) analyzeMethodCallOnAtomic(e *model.Expr, ctx *varenv.ScopeContext, receiver *typeatom.Atomic) *typeatom.Union {
	argTypes := a.analyzeArgs(e.Args, ctx)
	methodInfo, found := a.Reflection.GetDeclaringMethodID(receiver.ObjectName, e.CalleeFQN)
	returnType := typeatom.GetMixedAny()
	if found {
		a.checkVisibility(methodInfo, e.Pos)
		if methodInfo.ReturnType != nil {
			returnType = inferMethodReturnType(methodInfo, argTypes)
		}
		// $this in a trait method body as the receiver doesn't get its
		// class template parameters updated here: see SPEC_FULL.md §9
		// Open Question 1. TODO: once internal/reflection exposes
		// per-trait-use template substitution, thread it through here.
	}
	return a.addDataflow(e, argTypes, returnType)
}

// inferMethodReturnType runs the template engine (spec §4.2) over one
// call's arguments: every declared parameter position whose type is a
// bare template-param atomic contributes a left-to-right lower bound,
// then the declared return type is substituted against the resolved
// bounds. Calls with no template-typed parameter are a no-op pass-through
// (spec §4.2 "For generic-parameter-free call sites ... the engine is
// bypassed") since InferredTypeReplacer leaves non-template atomics
// untouched.
func inferMethodReturnType(m *reflection.MethodInfo, argTypes []*typeatom.Union) *typeatom.Union {
	result := template.NewTemplateResult()
	for i, paramType := range m.ParamTypes {
		if i >= len(argTypes) {
			break
		}
		single := paramType.Single()
		if single == nil || single.Kind != typeatom.KindTemplateParam {
			continue
		}
		result.AddLowerBound(single.ObjectName, single.TemplateScope, template.TemplateBound{
			Type:           argTypes[i],
			ArgumentOffset: i,
		})
	}
	return template.InferredTypeReplacer(m.ReturnType, result)
}

func (a *Analyzer) analyzeMethodCallByName(e *model.Expr, ctx *varenv.ScopeContext, className string) *typeatom.Union {
	argTypes := a.analyzeArgs(e.Args, ctx)
	if className == "" {
		return a.addDataflow(e, argTypes, typeatom.GetMixedAny())
	}
	methodInfo, found := a.Reflection.GetDeclaringMethodID(className, e.CalleeFQN)
	returnType := typeatom.GetMixedAny()
	if found {
		a.checkVisibility(methodInfo, e.Pos)
		if methodInfo.ReturnType != nil {
			returnType = inferMethodReturnType(methodInfo, argTypes)
		}
	}
	return a.addDataflow(e, argTypes, returnType)
}

// checkVisibility is the best-effort, non-fatal visibility diagnostic
// decided in SPEC_FULL.md §9 Open Question 2: every call that resolves to a
// private method raises an issue rather than failing analysis. The calling
// scope is not compared with the declaring class, and protected methods
// are not checked. Purity re-checks after call analysis remain an
// unimplemented TODO, per the same decision.
func (a *Analyzer) checkVisibility(m *reflection.MethodInfo, pos model.Pos) {
	if m.Visibility == reflection.VisibilityPrivate {
		a.raise(IssueMethodVisibilityViolation, "call to private method "+m.Name+" may not be reachable from this scope", pos)
	}
}

func (a *Analyzer) analyzeStaticCall(e *model.Expr, ctx *varenv.ScopeContext) *typeatom.Union {
	return a.analyzeMethodCallByName(e, ctx, e.TargetClassName)
}

// analyzeShapesCall implements the HH\Shapes::* special semantics (spec
// §4.6 "Method calls").
func (a *Analyzer) analyzeShapesCall(e *model.Expr, ctx *varenv.ScopeContext) *typeatom.Union {
	switch e.CalleeFQN {
	case "keyExists":
		return a.shapesKeyExists(e, ctx)
	case "removeKey":
		return a.shapesRemoveKey(e, ctx)
	case "idx":
		return a.shapesIdx(e, ctx)
	case "toDict", "toArray":
		if len(e.Args) > 0 {
			return a.analyzeExpr(e.Args[0], ctx)
		}
		return typeatom.GetMixedAny()
	default:
		return typeatom.GetMixedAny()
	}
}

// shapesKeyExists just evaluates the receiver/key for their data-flow side
// effects and returns bool; the HasArrayKey/ArrayKeyExists assertion this
// call implies on its shape argument is generated by the conditional
// analyzer from the call shape itself, not by mutating ctx here — mirrors
// the assertion-generation/reconciliation split in spec §4.5.
func (a *Analyzer) shapesKeyExists(e *model.Expr, ctx *varenv.ScopeContext) *typeatom.Union {
	if len(e.Args) < 2 {
		return typeatom.GetBool()
	}
	a.analyzeExpr(e.Args[0], ctx)
	a.analyzeExpr(e.Args[1], ctx)
	return typeatom.GetBool()
}

func (a *Analyzer) shapesRemoveKey(e *model.Expr, ctx *varenv.ScopeContext) *typeatom.Union {
	if len(e.Args) < 2 {
		return typeatom.GetNull()
	}
	shapeType := a.analyzeExpr(e.Args[0], ctx)
	key, literal := literalStringKey(e.Args[1])
	shapePath := exprPath(e.Args[0])
	if literal && shapePath != "" {
		single := shapeType.Single()
		if single != nil && single.Kind == typeatom.KindDict {
			cp := *single
			items := make(map[string]*typeatom.KnownItem, len(cp.KnownItems))
			var keys []string
			for k, v := range cp.KnownItems {
				if k == key {
					continue
				}
				items[k] = v
			}
			for _, k := range cp.KnownItemKeys {
				if k != key {
					keys = append(keys, k)
				}
			}
			cp.KnownItems = items
			cp.KnownItemKeys = keys
			updated := typeatom.WrapAtomic(&cp)

			removeID := flowid.ID{Kind: flowid.KindArrayAssignment, Name: shapePath + "!remove:" + key}
			a.graph.AddNode(dataflow.Vertex(removeID, nil))
			for _, parent := range shapeType.ParentList() {
				a.graph.AddPath(parent, removeID, dataflow.RemoveDictKey(key), nil, nil)
			}
			ctx.SetVarType(shapePath, updated.WithParents(removeID))
		}
	}
	return typeatom.GetNull()
}

func (a *Analyzer) shapesIdx(e *model.Expr, ctx *varenv.ScopeContext) *typeatom.Union {
	if len(e.Args) < 2 {
		return typeatom.GetMixedAny()
	}
	shapeType := a.analyzeExpr(e.Args[0], ctx)
	key, literal := literalStringKey(e.Args[1])
	var defaultType *typeatom.Union
	if len(e.Args) >= 3 {
		defaultType = a.analyzeExpr(e.Args[2], ctx)
	}

	single := shapeType.Single()
	if literal && single != nil && single.Kind == typeatom.KindDict {
		if item, ok := single.KnownItems[key]; ok {
			if item.PossiblyUndefined {
				if defaultType != nil {
					return typeatom.UnionAdd(item.Type, defaultType, true)
				}
				return typeatom.UnionAdd(item.Type, typeatom.GetNull(), true)
			}
			return item.Type
		}
		if defaultType != nil {
			return defaultType
		}
		return typeatom.GetNull()
	}
	if defaultType != nil {
		return typeatom.UnionAdd(typeatom.GetMixedAny(), defaultType, true)
	}
	return typeatom.GetMixedAny()
}

func literalStringKey(e *model.Expr) (string, bool) {
	if e == nil || e.Kind != model.ExprLiteral || e.LiteralKind != "string" {
		return "", false
	}
	return e.LiteralStr, true
}
