package dataflow

import (
	"fmt"

	"github.com/shivasurya/code-pathfinder/sast-engine/internal/flowid"
)

// Kind distinguishes the two graph shapes (spec §3 "Graph"): a
// FunctionBody graph keeps both forward and backward edges and tracks
// mixed-source counts; a WholeProgram graph keeps forward edges and a
// specialization index.
type Kind string

const (
	KindFunctionBody       Kind = "function_body"
	KindWholeProgramTaint  Kind = "whole_program_taint"
	KindWholeProgramQuery  Kind = "whole_program_query"
)

func (k Kind) isWholeProgram() bool {
	return k == KindWholeProgramTaint || k == KindWholeProgramQuery
}

// Graph is the per-function or whole-program data-flow multigraph.
// Structured the way the teacher's core.CallGraph is structured: forward
// and reverse adjacency maps pre-allocated in a constructor, keyed by a
// comparable id (here flowid.ID rather than a bare string FQN).
type Graph struct {
	kind Kind

	vertices map[flowid.ID]*Node
	sources  map[flowid.ID]*Node
	sinks    map[flowid.ID]*Node

	forwardEdges  map[flowid.ID]map[flowid.ID]*Edge
	backwardEdges map[flowid.ID]map[flowid.ID]struct{} // function-body only

	// whole-program specialization index
	specializations map[flowid.ID]map[flowid.Localization]struct{} // unspec -> spec keys
	specializedCalls map[flowid.Localization]map[flowid.ID]struct{} // spec key -> unspec ids

	mixedSourceCounts map[flowid.ID]int // function-body only
}

// NewGraph creates an empty graph of the given kind, with every map
// pre-allocated to avoid nil-map writes, matching NewCallGraph's style.
func NewGraph(kind Kind) *Graph {
	g := &Graph{
		kind:         kind,
		vertices:     make(map[flowid.ID]*Node),
		sources:      make(map[flowid.ID]*Node),
		sinks:        make(map[flowid.ID]*Node),
		forwardEdges: make(map[flowid.ID]map[flowid.ID]*Edge),
	}
	if kind == KindFunctionBody {
		g.backwardEdges = make(map[flowid.ID]map[flowid.ID]struct{})
		g.mixedSourceCounts = make(map[flowid.ID]int)
	} else {
		g.specializations = make(map[flowid.ID]map[flowid.Localization]struct{})
		g.specializedCalls = make(map[flowid.Localization]map[flowid.ID]struct{})
	}
	return g
}

func (g *Graph) Kind() Kind { return g.kind }

// AddNode inserts a node per its role (vertices/sources/sinks), and, in a
// whole-program graph, registers its specialization key (spec §4.4
// "Insertion invariants").
func (g *Graph) AddNode(n *Node) {
	switch n.Role {
	case RoleTaintSource:
		g.sources[n.ID] = n
	case RoleTaintSink:
		g.sinks[n.ID] = n
	default:
		g.vertices[n.ID] = n
	}

	if g.kind.isWholeProgram() && n.ID.Localized {
		unspec := n.ID.Unlocalized()
		if g.specializations[unspec] == nil {
			g.specializations[unspec] = make(map[flowid.Localization]struct{})
		}
		g.specializations[unspec][n.ID.Local] = struct{}{}
		if g.specializedCalls[n.ID.Local] == nil {
			g.specializedCalls[n.ID.Local] = make(map[flowid.ID]struct{})
		}
		g.specializedCalls[n.ID.Local][unspec] = struct{}{}
	}
}

// HasNode reports whether id is present in vertices, sources, or sinks.
func (g *Graph) HasNode(id flowid.ID) bool {
	if _, ok := g.vertices[id]; ok {
		return true
	}
	if _, ok := g.sources[id]; ok {
		return true
	}
	_, ok := g.sinks[id]
	return ok
}

func (g *Graph) GetNode(id flowid.ID) (*Node, bool) {
	if n, ok := g.vertices[id]; ok {
		return n, true
	}
	if n, ok := g.sources[id]; ok {
		return n, true
	}
	n, ok := g.sinks[id]
	return n, ok
}

// AddPath inserts a forward edge from -> to with the given kind and taint
// sets (spec §4.4 "Edges"). Self-edges are dropped. In function-body
// mode, the reverse entry is also recorded. Parallel edges of different
// kinds between the same pair are kept as a single edge with the
// last-written kind, per spec — callers are expected not to overwrite.
func (g *Graph) AddPath(from, to flowid.ID, kind PathKind, added, removed []TaintKind) {
	if from == to {
		return
	}
	if g.forwardEdges[from] == nil {
		g.forwardEdges[from] = make(map[flowid.ID]*Edge)
	}
	g.forwardEdges[from][to] = NewEdge(from, to, kind, added, removed)

	if g.kind == KindFunctionBody {
		if g.backwardEdges[to] == nil {
			g.backwardEdges[to] = make(map[flowid.ID]struct{})
		}
		g.backwardEdges[to][from] = struct{}{}
	}
}

// ForwardEdgesFrom returns the edges leaving id.
func (g *Graph) ForwardEdgesFrom(id flowid.ID) map[flowid.ID]*Edge {
	return g.forwardEdges[id]
}

// BackwardNeighbors returns the set of nodes with a forward edge into id
// (function-body graphs only; nil otherwise).
func (g *Graph) BackwardNeighbors(id flowid.ID) map[flowid.ID]struct{} {
	return g.backwardEdges[id]
}

// IncrementMixedSourceCount records that id produced a mixed-typed value,
// for origin attribution diagnostics (function-body graphs only).
func (g *Graph) IncrementMixedSourceCount(id flowid.ID) {
	if g.mixedSourceCounts == nil {
		return
	}
	g.mixedSourceCounts[id]++
}

func (g *Graph) MixedSourceCount(id flowid.ID) int {
	return g.mixedSourceCounts[id]
}

// SpecializationsOf returns the (file,offset) keys registered for an
// unlocalized whole-program node id.
func (g *Graph) SpecializationsOf(unspec flowid.ID) map[flowid.Localization]struct{} {
	return g.specializations[unspec]
}

// UnspecializedFor returns the unlocalized ids registered under a
// specialization key.
func (g *Graph) UnspecializedFor(key flowid.Localization) map[flowid.ID]struct{} {
	return g.specializedCalls[key]
}

const maxOriginHops = 50

// GetOriginNodes performs a bounded (<=50 hops) backward BFS from node,
// through backward_edges with a forward_edges dual lookup, skipping a hop
// when the matching forward edge's kind is in ignoredKinds. Leaves reached
// with no unvisited parents are origins (spec §4.4 "Origin discovery").
// This mirrors gosec's taint.Analyzer walk, which also bounds its
// traversal depth (maxTaintDepth = 50) to guarantee termination on graphs
// with cycles such as `$x = f($x)` (spec §9 "Cycles in data-flow graphs").
func (g *Graph) GetOriginNodes(node flowid.ID, ignoredKinds map[PathKindTag]struct{}) []flowid.ID {
	visited := map[flowid.ID]struct{}{node: {}}
	frontier := []flowid.ID{node}
	origins := map[flowid.ID]struct{}{}

	for hop := 0; hop < maxOriginHops && len(frontier) > 0; hop++ {
		next := []flowid.ID{}
		for _, cur := range frontier {
			parents := g.backwardEdges[cur]
			unvisitedParents := 0
			for parent := range parents {
				edge, ok := g.forwardEdges[parent][cur]
				if ok && ignoredKinds != nil {
					if _, skip := ignoredKinds[edge.Kind.Tag]; skip {
						continue
					}
				}
				if _, seen := visited[parent]; seen {
					continue
				}
				unvisitedParents++
				visited[parent] = struct{}{}
				next = append(next, parent)
			}
			if unvisitedParents == 0 && cur != node {
				origins[cur] = struct{}{}
			}
		}
		frontier = next
	}
	// anything still on the frontier when the hop budget is exhausted is
	// treated as an origin too, since the BFS cannot prove it isn't a leaf.
	for _, cur := range frontier {
		origins[cur] = struct{}{}
	}
	if len(origins) == 0 && node != (flowid.ID{}) {
		// node itself had no backward edges at all: it is its own origin.
		origins[node] = struct{}{}
	}

	out := make([]flowid.ID, 0, len(origins))
	for id := range origins {
		out = append(out, id)
	}
	return out
}

// AddGraph merges other into g ("Graph merge", spec §4.4). Requires equal
// kind; unions forward edges, and (function-body only) backward edges and
// mixed-source counts; whole-program mode unions specializations instead.
// Vertex/source/sink maps are unioned by id (last-write wins).
func (g *Graph) AddGraph(other *Graph) error {
	if other == nil {
		return nil
	}
	if g.kind != other.kind {
		return fmt.Errorf("dataflow: cannot merge graph of kind %q into %q", other.kind, g.kind)
	}
	for id, n := range other.vertices {
		g.vertices[id] = n
	}
	for id, n := range other.sources {
		g.sources[id] = n
	}
	for id, n := range other.sinks {
		g.sinks[id] = n
	}
	for from, tos := range other.forwardEdges {
		if g.forwardEdges[from] == nil {
			g.forwardEdges[from] = make(map[flowid.ID]*Edge)
		}
		for to, e := range tos {
			g.forwardEdges[from][to] = e
		}
	}
	if g.kind == KindFunctionBody {
		for to, froms := range other.backwardEdges {
			if g.backwardEdges[to] == nil {
				g.backwardEdges[to] = make(map[flowid.ID]struct{})
			}
			for from := range froms {
				g.backwardEdges[to][from] = struct{}{}
			}
		}
		for id, c := range other.mixedSourceCounts {
			g.mixedSourceCounts[id] += c
		}
	} else {
		for unspec, keys := range other.specializations {
			if g.specializations[unspec] == nil {
				g.specializations[unspec] = make(map[flowid.Localization]struct{})
			}
			for k := range keys {
				g.specializations[unspec][k] = struct{}{}
			}
		}
		for key, ids := range other.specializedCalls {
			if g.specializedCalls[key] == nil {
				g.specializedCalls[key] = make(map[flowid.ID]struct{})
			}
			for id := range ids {
				g.specializedCalls[key][id] = struct{}{}
			}
		}
	}
	return nil
}
