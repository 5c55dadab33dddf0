// Package flowid defines the identity of a data-flow graph node: a small,
// comparable sum type distinguishing provenance by role. It has no
// dependencies so that both the type algebra (union provenance) and the
// data-flow graph (node identity) can sit on top of it without an import
// cycle, mirroring how the teacher's core package (graph/callgraph/core)
// sits underneath both the registry and the taint analyzer.
package flowid

// Kind tags the role a node id plays, matching the "Data-flow node" shape
// in the data model: the id distinguishes by role and may carry a
// file/offset localization.
type Kind string

const (
	KindVar               Kind = "var"
	KindParam             Kind = "param"
	KindProperty          Kind = "property"
	KindPropertyFetch     Kind = "property_fetch"
	KindCallTo            Kind = "call_to"
	KindFunctionLikeArg   Kind = "function_like_arg"
	KindFunctionLikeOut   Kind = "function_like_out"
	KindThisBeforeMethod  Kind = "this_before_method"
	KindThisAfterMethod   Kind = "this_after_method"
	KindArrayAssignment   Kind = "array_assignment"
	KindArrayItem         Kind = "array_item"
	KindComposition       Kind = "composition"
	KindNarrowedTo        Kind = "narrowed_to"
	KindSymbol            Kind = "symbol"
	KindShapeFieldAccess  Kind = "shape_field_access"
	KindReferenceTo       Kind = "reference_to"
	KindForInit           Kind = "for_init"
	// Return and SpecializedCallArg are additions found in the Hakana
	// original (code_info/data_flow/node.rs) that spec.md's summary
	// folds into the general list; kept distinct since they're cheap
	// and already exhaustively handled by every switch over Kind.
	KindReturn             Kind = "return"
	KindSpecializedCallArg Kind = "specialized_call_arg"
)

// Localization is the (file, offset) pair used to distinguish per-call-site
// nodes in a whole-program graph (the "Specialization key" of the glossary).
type Localization struct {
	File        string
	StartOffset int
	EndOffset   int
}

// ID is a data-flow node id. Equality and hashing are by id only, per the
// data model: two IDs with the same Kind/Name/Localization are the same
// node even if constructed independently. ID is a plain comparable struct
// so it can be used directly as a map key, matching the teacher's
// preference for flat structs over pointer identity (see core.Statement).
type ID struct {
	Kind Kind
	// Name disambiguates within a Kind: a variable name, a property name
	// ("Class::$prop"), a call target FQN, a synthetic label ("composition
	// of dict['k']"), etc. Exact meaning is Kind-dependent.
	Name string
	// Localized is true when Local is meaningful. Unlocalized ids are used
	// in function-body graphs and as the "unspec" key in whole-program
	// specialization indices.
	Localized bool
	Local     Localization
}

// Unlocalized returns a copy of id with its localization cleared.
func (id ID) Unlocalized() ID {
	id.Localized = false
	id.Local = Localization{}
	return id
}

// Localize returns a copy of id carrying the given file/offset pair, the
// "DataFlowNodeId.localize(f,o)" operation of the round-trip property in
// spec.md §8.
func (id ID) Localize(file string, start, end int) ID {
	id.Localized = true
	id.Local = Localization{File: file, StartOffset: start, EndOffset: end}
	return id
}

// Unlocalize is the inverse of Localize; round trips per spec.md §8:
// DataFlowNodeId.localize(f,o).unlocalize() = self.
func (id ID) Unlocalize() ID {
	return id.Unlocalized()
}

// Var builds a plain-variable node id.
func Var(name string) ID { return ID{Kind: KindVar, Name: name} }

// Param builds a function-parameter node id.
func Param(functionFQN, paramName string) ID {
	return ID{Kind: KindParam, Name: functionFQN + "#" + paramName}
}

// CallTo builds a node id for the return value of a call at an unlocalized
// site; call Localize on the result to bind it to a specific call site.
func CallTo(functionFQN string) ID {
	return ID{Kind: KindCallTo, Name: functionFQN}
}
