package graph

import (
	"context"
	"errors"
	"sync"
)

// Compile-time assertion: *MemStore satisfies Store.
var _ Store = (*MemStore)(nil)

// MemStore implements Store over an indexed in-memory copy of the graph.
// Thread-safe via sync.RWMutex; the graph is replaced wholesale on each
// analysis run.
type MemStore struct {
	mu       sync.RWMutex
	graph    *Graph
	index    map[string]int   // node id -> index into graph.Nodes
	touching map[string][]int // node id -> indexes into graph.Edges
}

// NewMemStore returns an empty MemStore ready for use.
func NewMemStore() *MemStore {
	return &MemStore{}
}

// InitSchema is a no-op for the in-memory store.
func (m *MemStore) InitSchema(_ context.Context) error {
	return nil
}

// ReplaceGraph swaps in a new graph and rebuilds the lookup indexes.
func (m *MemStore) ReplaceGraph(_ context.Context, g *Graph) error {
	index := make(map[string]int, len(g.Nodes))
	for i, n := range g.Nodes {
		index[n.ID] = i
	}

	touching := make(map[string][]int)
	for i, e := range g.Edges {
		touching[e.Source] = append(touching[e.Source], i)
		if e.Target != e.Source {
			touching[e.Target] = append(touching[e.Target], i)
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.graph = g
	m.index = index
	m.touching = touching
	return nil
}

// GetGraph returns the currently loaded graph, or nil before any run.
func (m *MemStore) GetGraph(_ context.Context) (*Graph, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.graph, nil
}

// GetNode returns a copy of the node with the given id, or nil if absent.
func (m *MemStore) GetNode(_ context.Context, id string) (*Node, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.graph == nil {
		return nil, nil
	}
	i, ok := m.index[id]
	if !ok {
		return nil, nil
	}
	n := m.graph.Nodes[i]
	return &n, nil
}

// EdgesTouching returns every edge incident to id, in graph edge order.
func (m *MemStore) EdgesTouching(_ context.Context, id string) ([]Edge, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.graph == nil {
		return nil, nil
	}
	idxs := m.touching[id]
	out := make([]Edge, 0, len(idxs))
	for _, i := range idxs {
		out = append(out, m.graph.Edges[i])
	}
	return out, nil
}

// Metrics derives counts and max depth from the loaded graph. A cycle is
// logged with the participating node ids and MaxDepth reported as 0.
func (m *MemStore) Metrics(_ context.Context) (*Metrics, error) {
	m.mu.RLock()
	g := m.graph
	m.mu.RUnlock()

	if g == nil {
		return &Metrics{}, nil
	}

	metrics, err := ComputeMetrics(g)
	var cycle *CycleError
	if errors.As(err, &cycle) {
		logger.WithField("nodes", cycle.Nodes).Warn("metrics: dependency cycle detected")
		return metrics, nil
	}
	if err != nil {
		return nil, err
	}
	return metrics, nil
}

// Close is a no-op for the in-memory store.
func (m *MemStore) Close() error {
	return nil
}
