package dataflow

import "github.com/shivasurya/code-pathfinder/sast-engine/internal/flowid"

// ArrayAccessKind distinguishes indexing into the array's value slot from
// indexing into its key slot (spec §3: "kind ∈ {ArrayValue, ArrayKey}").
type ArrayAccessKind string

const (
	ArrayValue ArrayAccessKind = "array_value"
	ArrayKey   ArrayAccessKind = "array_key"
)

// PathKindTag tags an edge's transformation label.
type PathKindTag string

const (
	PathDefault                 PathKindTag = "default"
	PathAggregate                PathKindTag = "aggregate"
	PathSerialize                 PathKindTag = "serialize"
	PathScalarTypeGuard            PathKindTag = "scalar_type_guard"
	PathRemoveDictKey              PathKindTag = "remove_dict_key"
	PathArrayFetch                 PathKindTag = "array_fetch"
	PathArrayAssignment            PathKindTag = "array_assignment"
	PathUnknownArrayFetch          PathKindTag = "unknown_array_fetch"
	PathUnknownArrayAssignment     PathKindTag = "unknown_array_assignment"
)

// PathKind is the full edge label: a tag plus the payload fields that
// apply to a subset of tags (RemoveDictKey's key, ArrayFetch/Assignment's
// kind+key, UnknownArrayFetch/Assignment's kind).
type PathKind struct {
	Tag  PathKindTag
	Key  string          // RemoveDictKey key, or ArrayFetch/ArrayAssignment literal key
	Kind ArrayAccessKind // ArrayFetch/ArrayAssignment/UnknownArrayFetch/UnknownArrayAssignment
}

func Default() PathKind      { return PathKind{Tag: PathDefault} }
func Aggregate() PathKind    { return PathKind{Tag: PathAggregate} }
func Serialize() PathKind    { return PathKind{Tag: PathSerialize} }
func ScalarTypeGuard() PathKind { return PathKind{Tag: PathScalarTypeGuard} }

func RemoveDictKey(key string) PathKind {
	return PathKind{Tag: PathRemoveDictKey, Key: key}
}

func ArrayFetch(kind ArrayAccessKind, key string) PathKind {
	return PathKind{Tag: PathArrayFetch, Kind: kind, Key: key}
}

func ArrayAssignment(kind ArrayAccessKind, key string) PathKind {
	return PathKind{Tag: PathArrayAssignment, Kind: kind, Key: key}
}

func UnknownArrayFetch(kind ArrayAccessKind) PathKind {
	return PathKind{Tag: PathUnknownArrayFetch, Kind: kind}
}

func UnknownArrayAssignment(kind ArrayAccessKind) PathKind {
	return PathKind{Tag: PathUnknownArrayAssignment, Kind: kind}
}

// Edge is a directed data-flow edge carrying a path kind and the two taint
// sets (spec §3: "Data-flow edge").
type Edge struct {
	From, To     flowid.ID
	Kind         PathKind
	AddedTaints  map[TaintKind]struct{}
	RemovedTaints map[TaintKind]struct{}
}

// NewEdge builds an edge with the given taint add/remove sets (either may
// be nil).
func NewEdge(from, to flowid.ID, kind PathKind, added, removed []TaintKind) *Edge {
	e := &Edge{From: from, To: to, Kind: kind}
	if len(added) > 0 {
		e.AddedTaints = make(map[TaintKind]struct{}, len(added))
		for _, k := range added {
			e.AddedTaints[k] = struct{}{}
		}
	}
	if len(removed) > 0 {
		e.RemovedTaints = make(map[TaintKind]struct{}, len(removed))
		for _, k := range removed {
			e.RemovedTaints[k] = struct{}{}
		}
	}
	return e
}
