package dataflow

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shivasurya/code-pathfinder/sast-engine/internal/flowid"
)

func TestAddPathDropsSelfLoop(t *testing.T) {
	g := NewGraph(KindFunctionBody)
	v := flowid.Var("x")
	g.AddPath(v, v, Default(), nil, nil)
	assert.Empty(t, g.ForwardEdgesFrom(v))
}

func TestAddPathMirrorsBackwardEdgeForFunctionBody(t *testing.T) {
	g := NewGraph(KindFunctionBody)
	a := flowid.Var("a")
	b := flowid.Var("b")
	g.AddPath(a, b, Default(), nil, nil)

	assert.Contains(t, g.ForwardEdgesFrom(a), b)
	backward := g.BackwardNeighbors(b)
	assert.Contains(t, backward, a)
}

func TestAddPathSkipsBackwardEdgeForWholeProgram(t *testing.T) {
	g := NewGraph(KindWholeProgramTaint)
	a := flowid.Var("a")
	b := flowid.Var("b")
	g.AddPath(a, b, Default(), nil, nil)
	assert.Nil(t, g.BackwardNeighbors(b))
}

func TestGetOriginNodesFindsLeaf(t *testing.T) {
	g := NewGraph(KindFunctionBody)
	src := flowid.Var("source")
	mid := flowid.Var("mid")
	sink := flowid.Var("sink")
	g.AddPath(src, mid, Default(), nil, nil)
	g.AddPath(mid, sink, Default(), nil, nil)

	origins := g.GetOriginNodes(sink, nil)
	assert.ElementsMatch(t, []flowid.ID{src}, origins)
}

func TestGetOriginNodesTerminatesOnCycle(t *testing.T) {
	g := NewGraph(KindFunctionBody)
	a := flowid.Var("a")
	b := flowid.Var("b")
	g.AddPath(a, b, Default(), nil, nil)
	g.AddPath(b, a, Default(), nil, nil)

	// A cyclic backward-edge graph with no leaf must still return: the
	// visited set stops the walk once every node on the cycle is seen.
	origins := g.GetOriginNodes(b, nil)
	assert.NotEmpty(t, origins)
}

func TestGetOriginNodesIgnoresKind(t *testing.T) {
	g := NewGraph(KindFunctionBody)
	src := flowid.Var("source")
	sink := flowid.Var("sink")
	g.AddPath(src, sink, ScalarTypeGuard(), nil, nil)

	ignored := map[PathKindTag]struct{}{PathScalarTypeGuard: {}}
	origins := g.GetOriginNodes(sink, ignored)
	assert.ElementsMatch(t, []flowid.ID{sink}, origins)
}

func TestAddGraphMergesForwardEdges(t *testing.T) {
	g1 := NewGraph(KindFunctionBody)
	g2 := NewGraph(KindFunctionBody)
	a, b, c := flowid.Var("a"), flowid.Var("b"), flowid.Var("c")
	g1.AddPath(a, b, Default(), nil, nil)
	g2.AddPath(b, c, Default(), nil, nil)

	err := g1.AddGraph(g2)
	assert.NoError(t, err)
	assert.Contains(t, g1.ForwardEdgesFrom(a), b)
	assert.Contains(t, g1.ForwardEdgesFrom(b), c)
	assert.Contains(t, g1.BackwardNeighbors(c), b)
}

func TestAddGraphRejectsKindMismatch(t *testing.T) {
	g1 := NewGraph(KindFunctionBody)
	g2 := NewGraph(KindWholeProgramTaint)
	err := g1.AddGraph(g2)
	assert.Error(t, err)
}

func TestAddNodeRegistersSpecializationForWholeProgram(t *testing.T) {
	g := NewGraph(KindWholeProgramTaint)
	unspec := flowid.CallTo("foo")
	spec := unspec.Localize("a.hack", 10, 20)

	g.AddNode(Vertex(spec, nil))
	keys := g.SpecializationsOf(unspec)
	assert.Len(t, keys, 1)
}
