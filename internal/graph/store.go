package graph

import (
	"context"
	"io"
)

// Store is the consumption interface the presentation and navigation
// surfaces depend on. It never exposes parser- or language-specific
// internals, only the standardized graph.
// Implementations: MemStore (always available), KuzuStore (CGO builds).
type Store interface {
	io.Closer

	// Schema setup, called once before any data is inserted.
	InitSchema(ctx context.Context) error

	// ReplaceGraph swaps in the result of a new analysis run. The previous
	// graph is discarded wholesale; there is no incremental merge.
	ReplaceGraph(ctx context.Context, g *Graph) error

	// GetGraph returns the currently loaded graph, or nil when no analysis
	// has run yet.
	GetGraph(ctx context.Context) (*Graph, error)

	// GetNode returns the node with the given id, or nil when absent.
	GetNode(ctx context.Context, id string) (*Node, error)

	// EdgesTouching returns every edge whose source or target is id.
	EdgesTouching(ctx context.Context, id string) ([]Edge, error)

	// Metrics derives node count, edge count, and max depth from the
	// loaded graph. A cyclic graph is reported as a diagnostic, not an
	// error: counts stay valid and MaxDepth is 0.
	Metrics(ctx context.Context) (*Metrics, error)
}
