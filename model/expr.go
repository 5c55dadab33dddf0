package model

import "github.com/shivasurya/code-pathfinder/sast-engine/internal/typeatom"

// ExprKind enumerates every expression shape the analyzer walks (spec
// §4.6's operation list: function calls, method calls, array access/
// assignment, binary concatenation, plus the leaves needed to reach
// them).
type ExprKind string

const (
	ExprVariable      ExprKind = "variable"
	ExprLiteral       ExprKind = "literal"
	ExprBinary        ExprKind = "binary"
	ExprConcat        ExprKind = "concat"
	ExprFunctionCall   ExprKind = "function_call"
	ExprMethodCall     ExprKind = "method_call"
	ExprStaticCall     ExprKind = "static_call"
	ExprArrayAccess    ExprKind = "array_access"
	ExprArrayAssignment ExprKind = "array_assignment"
	ExprPropertyFetch  ExprKind = "property_fetch"
	ExprAssignment     ExprKind = "assignment"
	ExprShapesCall     ExprKind = "hh_shapes_call" // HH\Shapes::* special semantics
	ExprIsset          ExprKind = "isset"
	ExprTernary        ExprKind = "ternary"
)

// Expr is a flat tagged-variant expression node. Exactly one payload
// shape is meaningful per Kind, following the same convention as
// typeatom.Atomic and assertion.Assertion.
type Expr struct {
	Kind ExprKind
	Pos  Pos

	// Type is filled in by the analyzer as it infers each node
	// bottom-up; nil until analyzed.
	Type *typeatom.Union

	// ExprVariable
	VarName string

	// ExprLiteral
	LiteralKind  string // "int", "string", "bool", "null", "classname"
	LiteralInt   int64
	LiteralStr   string
	LiteralBool  bool

	// ExprBinary / ExprConcat
	Op       string
	Left     *Expr
	Right    *Expr
	Operands []*Expr // ExprConcat: left-to-right operand chain

	// ExprFunctionCall / ExprMethodCall / ExprStaticCall / ExprShapesCall
	CalleeFQN string // function FQN, or the bare method name for method/static/Shapes calls
	Target    *Expr  // ExprMethodCall/ExprStaticCall receiver (nil for static calls on a name)
	TargetClassName string // static-call / Shapes-call class name
	Args      []*Expr

	// ExprArrayAccess / ExprArrayAssignment / ExprPropertyFetch
	Base    *Expr
	Key     *Expr  // array index/key expression (nil for property fetch)
	PropName string // ExprPropertyFetch

	// ExprArrayAssignment / ExprAssignment
	Value *Expr

	// ExprIsset
	Targets []*Expr

	// ExprTernary
	Cond, IfTrue, IfFalse *Expr
}
