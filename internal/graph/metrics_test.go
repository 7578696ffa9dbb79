package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chainGraph(ids ...string) *Graph {
	g := &Graph{Nodes: make([]Node, 0, len(ids))}
	for _, id := range ids {
		g.Nodes = append(g.Nodes, Node{ID: id, Title: id, Type: "class"})
	}
	for i := 0; i+1 < len(ids); i++ {
		g.Edges = append(g.Edges, Edge{Source: ids[i], Target: ids[i+1], Kind: EdgeKindImports})
	}
	return g
}

func TestMaxDepth_Empty(t *testing.T) {
	depth, err := MaxDepth(&Graph{})
	require.NoError(t, err)
	assert.Equal(t, 0, depth)
}

func TestMaxDepth_SingleNode(t *testing.T) {
	depth, err := MaxDepth(chainGraph("a"))
	require.NoError(t, err)
	assert.Equal(t, 0, depth)
}

func TestMaxDepth_Chain(t *testing.T) {
	depth, err := MaxDepth(chainGraph("a", "b", "c", "d"))
	require.NoError(t, err)
	assert.Equal(t, 3, depth)
}

func TestMaxDepth_Diamond(t *testing.T) {
	g := chainGraph("a", "b", "c")
	// a -> c shortcut alongside a -> b -> c.
	g.Edges = append(g.Edges, Edge{Source: "a", Target: "c", Kind: EdgeKindImports})

	depth, err := MaxDepth(g)
	require.NoError(t, err)
	assert.Equal(t, 2, depth)
}

func TestMaxDepth_CycleTerminates(t *testing.T) {
	g := chainGraph("a", "b", "c")
	g.Edges = append(g.Edges, Edge{Source: "c", Target: "a", Kind: EdgeKindImports})

	_, err := MaxDepth(g)
	require.Error(t, err)

	var cycleErr *CycleError
	require.ErrorAs(t, err, &cycleErr)
	assert.Contains(t, cycleErr.Nodes, "a")
	assert.Contains(t, cycleErr.Nodes, "c")
	// The reported loop closes on its starting node.
	assert.Equal(t, cycleErr.Nodes[0], cycleErr.Nodes[len(cycleErr.Nodes)-1])
}

func TestMaxDepth_SelfLoop(t *testing.T) {
	g := chainGraph("a")
	g.Edges = append(g.Edges, Edge{Source: "a", Target: "a", Kind: EdgeKindCalls})

	_, err := MaxDepth(g)
	var cycleErr *CycleError
	require.ErrorAs(t, err, &cycleErr)
}

func TestComputeMetrics(t *testing.T) {
	m, err := ComputeMetrics(chainGraph("a", "b", "c", "d"))
	require.NoError(t, err)
	assert.Equal(t, 4, m.NodeCount)
	assert.Equal(t, 3, m.EdgeCount)
	assert.Equal(t, 3, m.MaxDepth)
}

func TestComputeMetrics_CycleKeepsCounts(t *testing.T) {
	g := chainGraph("a", "b")
	g.Edges = append(g.Edges, Edge{Source: "b", Target: "a", Kind: EdgeKindImports})

	m, err := ComputeMetrics(g)
	var cycleErr *CycleError
	require.ErrorAs(t, err, &cycleErr)
	require.NotNil(t, m)
	assert.Equal(t, 2, m.NodeCount)
	assert.Equal(t, 2, m.EdgeCount)
}
