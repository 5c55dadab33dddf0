package analyzer

import (
	"strconv"

	"github.com/shivasurya/code-pathfinder/sast-engine/internal/dataflow"
	"github.com/shivasurya/code-pathfinder/sast-engine/internal/flowid"
	"github.com/shivasurya/code-pathfinder/sast-engine/internal/typeatom"
	"github.com/shivasurya/code-pathfinder/sast-engine/internal/varenv"
	"github.com/shivasurya/code-pathfinder/sast-engine/model"
)

// analyzeArrayAccess implements handle_array_access_on_dict (spec §4.6
// "Array access"): a literal key on a known dict/shape resolves to the
// matching known item, widened with null when the item itself is
// possibly undefined; anything else falls back to the dict's catch-all value
// param, or mixed_any for an untyped base. Either way an ArrayFetch/
// UnknownArrayFetch edge is wired from the base's parents to a fresh
// vertex for the access expression.
func (a *Analyzer) analyzeArrayAccess(e *model.Expr, ctx *varenv.ScopeContext) *typeatom.Union {
	baseType := a.analyzeExpr(e.Base, ctx)
	keyType := a.analyzeExpr(e.Key, ctx)

	fetchID := flowid.ID{Kind: flowid.KindArrayItem, Name: "fetch@" + strconv.Itoa(e.Pos.StartByte)}
	a.graph.AddNode(dataflow.Vertex(fetchID, nil))

	result, accessKind, literalKey, known := resolveDictAccess(baseType, keyType)

	for _, parent := range baseType.ParentList() {
		if known {
			a.graph.AddPath(parent, fetchID, dataflow.ArrayFetch(accessKind, literalKey), nil, nil)
		} else {
			a.graph.AddPath(parent, fetchID, dataflow.UnknownArrayFetch(accessKind), nil, nil)
		}
	}

	return result.WithParents(fetchID)
}

// resolveDictAccess is the pure lookup half of handle_array_access_on_dict,
// factored out so the same known-item-vs-fallback decision can be reused
// by Shapes::idx (call.go).
func resolveDictAccess(baseType, keyType *typeatom.Union) (result *typeatom.Union, kind dataflow.ArrayAccessKind, literalKey string, known bool) {
	kind = dataflow.ArrayValue
	single := baseType.Single()
	if single == nil {
		return typeatom.GetMixedAny(), kind, "", false
	}

	switch single.Kind {
	case typeatom.KindDict:
		if lit, ok := literalKeyOf(keyType); ok {
			if item, ok := single.KnownItems[lit]; ok {
				if item.PossiblyUndefined {
					return typeatom.UnionAdd(item.Type, typeatom.GetNull(), true), kind, lit, true
				}
				return item.Type, kind, lit, true
			}
		}
		if single.Params != nil {
			return single.Params.Value, kind, "", false
		}
		return typeatom.GetMixedAny(), kind, "", false
	case typeatom.KindVec:
		if single.Element != nil {
			return single.Element, kind, "", false
		}
		return typeatom.GetMixedAny(), kind, "", false
	case typeatom.KindKeyset:
		return typeatom.GetMixedAny(), kind, "", false
	default:
		return typeatom.GetMixedAny(), kind, "", false
	}
}

// analyzeArrayAssignment mirrors analyzeArrayAccess on the write side: a
// literal string key assignment into a tracked dict/shape path narrows that one
// slot via ScopeContext.AdjustArrayType (lifting the narrowed item onto
// the parent shape), wires an ArrayAssignment edge when the key is known
// and an UnknownArrayAssignment edge otherwise.
func (a *Analyzer) analyzeArrayAssignment(e *model.Expr, ctx *varenv.ScopeContext) *typeatom.Union {
	valueType := a.analyzeExpr(e.Value, ctx)
	a.analyzeExpr(e.Key, ctx)

	basePath := exprPath(e.Base)
	assignID := flowid.ID{Kind: flowid.KindArrayAssignment, Name: basePath + "@" + strconv.Itoa(e.Pos.StartByte)}
	a.graph.AddNode(dataflow.Vertex(assignID, nil))

	for _, parent := range valueType.ParentList() {
		kind, literalKey, known := assignmentEdgeShape(e.Key)
		if known {
			a.graph.AddPath(parent, assignID, dataflow.ArrayAssignment(kind, literalKey), nil, nil)
		} else {
			a.graph.AddPath(parent, assignID, dataflow.UnknownArrayAssignment(kind), nil, nil)
		}
	}

	if basePath != "" {
		if literalKey, ok := literalStringKey(e.Key); ok {
			ctx.AdjustArrayType(exprPath(e), literalKey, valueType.WithParents(assignID))
		}
	}
	return valueType
}

// literalKeyOf returns the dict-key string form of keyType when it is
// exactly one literal string or literal int atom (spec §4.3's DictKey
// shape, reused here so array-access key resolution agrees with
// adjust_array_type's key normalization).
func literalKeyOf(keyType *typeatom.Union) (string, bool) {
	single := keyType.Single()
	if single == nil {
		return "", false
	}
	switch single.Kind {
	case typeatom.KindLiteralString:
		return single.LiteralString, true
	case typeatom.KindLiteralInt:
		return strconv.FormatInt(single.LiteralInt, 10), true
	default:
		return "", false
	}
}

func assignmentEdgeShape(key *model.Expr) (kind dataflow.ArrayAccessKind, literalKey string, known bool) {
	kind = dataflow.ArrayValue
	if key == nil {
		return kind, "", false
	}
	if lit, ok := literalStringKey(key); ok {
		return kind, lit, true
	}
	if key.Kind == model.ExprLiteral && key.LiteralKind == "int" {
		return kind, strconv.FormatInt(key.LiteralInt, 10), true
	}
	return kind, "", false
}

// analyzePropertyFetch resolves a property's declared type through
// internal/reflection when the base resolves to a named object, wiring a
// PropertyFetch-kind vertex with a single parent edge from the base
// (spec §4.6 "Property access" / §4.7 "get_property_type").
func (a *Analyzer) analyzePropertyFetch(e *model.Expr, ctx *varenv.ScopeContext) *typeatom.Union {
	baseType := a.analyzeExpr(e.Base, ctx)

	fetchID := flowid.ID{Kind: flowid.KindPropertyFetch, Name: exprPath(e) + "@" + strconv.Itoa(e.Pos.StartByte)}
	a.graph.AddNode(dataflow.Vertex(fetchID, nil))
	for _, parent := range baseType.ParentList() {
		a.graph.AddPath(parent, fetchID, dataflow.Default(), nil, nil)
	}

	single := baseType.Single()
	if single != nil && single.Kind == typeatom.KindNamedObject {
		if t, ok := a.Reflection.GetPropertyType(single.ObjectName, e.PropName); ok {
			return t.WithParents(fetchID)
		}
	}
	return typeatom.GetMixedAny().WithParents(fetchID)
}
