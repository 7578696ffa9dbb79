package graph

import "github.com/dusk-indust/depscope/internal/project"

// EdgeKind classifies a dependency between two nodes. The enumeration is
// shared by every converter regardless of source language; downstream
// consumers rely on it to stay language-agnostic.
type EdgeKind string

const (
	EdgeKindImports    EdgeKind = "imports"
	EdgeKindExtends    EdgeKind = "extends"
	EdgeKindImplements EdgeKind = "implements"
	EdgeKindCalls      EdgeKind = "calls"
	EdgeKindUses       EdgeKind = "uses"

	// EdgeKindDependency is the generic fallback for relation kinds the
	// converter does not recognize. Unknown kinds map here instead of
	// being dropped.
	EdgeKindDependency EdgeKind = "dependency"
)

// Metadata keys every converter populates on nodes with a known source file.
const (
	MetaFilePath  = "filePath"
	MetaStartLine = "startLine"
	MetaEndLine   = "endLine"
)

// Node is one symbol in the standardized graph. ID is the symbol's stable
// identifier from extraction; the converter never invents ids.
type Node struct {
	ID       string            `json:"id"`
	Title    string            `json:"title"`
	Type     string            `json:"type"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Edge is one directed, kind-tagged relation between two node ids. In a
// valid Graph both endpoints resolve to nodes present in Nodes.
type Edge struct {
	Source string   `json:"source"`
	Target string   `json:"target"`
	Kind   EdgeKind `json:"type"`
}

// Graph is the standardized output of one analysis run: the durable
// artifact persisted as a snapshot and replaced wholesale on re-analysis.
type Graph struct {
	Project  string           `json:"project,omitempty"`
	Language project.Language `json:"language,omitempty"`
	Nodes    []Node           `json:"nodes"`
	Edges    []Edge           `json:"edges"`
}

// NodeByID returns the node with the given id, or nil. Linear scan; callers
// needing repeated lookups should go through a Store.
func (g *Graph) NodeByID(id string) *Node {
	for i := range g.Nodes {
		if g.Nodes[i].ID == id {
			return &g.Nodes[i]
		}
	}
	return nil
}

// Metrics summarizes a graph. Derived on demand, never stored with it.
type Metrics struct {
	NodeCount int `json:"nodeCount"`
	EdgeCount int `json:"edgeCount"`
	MaxDepth  int `json:"maxDepth"`
}
