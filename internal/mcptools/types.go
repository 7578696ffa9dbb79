package mcptools

import "github.com/dusk-indust/depscope/internal/graph"

// --- MCP Tool Input Types ---
// These structs define the JSON schema for each MCP tool's input.
// The MCP Go SDK auto-generates JSON schemas from struct tags.

// AnalyzeProjectInput is the input for the analyze_project MCP tool.
type AnalyzeProjectInput struct {
	RootPath    string   `json:"rootPath" jsonschema:"the absolute path of the project to analyze"`
	ExcludeDirs []string `json:"excludeDirs,omitempty" jsonschema:"directories to exclude from analysis (e.g. vendor, node_modules)"`
	Snapshot    bool     `json:"snapshot,omitempty" jsonschema:"persist the resulting graph as a snapshot under the project root"`
}

// AnalyzeProjectOutput is the result of the analyze_project MCP tool.
type AnalyzeProjectOutput struct {
	Project  string        `json:"project"`
	Language string        `json:"language"`
	Metrics  graph.Metrics `json:"metrics"`
	Cycle    []string      `json:"cycle,omitempty"`
}

// GetGraphInput is the input for the get_graph MCP tool.
type GetGraphInput struct{}

// GetGraphOutput is the result of the get_graph MCP tool.
type GetGraphOutput struct {
	Graph *graph.Graph `json:"graph"`
}

// GetNodeInput is the input for the get_node MCP tool.
type GetNodeInput struct {
	ID string `json:"id" jsonschema:"the node id to look up"`
}

// GetNodeOutput is the result of the get_node MCP tool.
type GetNodeOutput struct {
	Node *graph.Node `json:"node"`
}

// EdgesTouchingInput is the input for the edges_touching MCP tool.
type EdgesTouchingInput struct {
	ID string `json:"id" jsonschema:"the node id whose incoming and outgoing edges to list"`
}

// EdgesTouchingOutput is the result of the edges_touching MCP tool.
type EdgesTouchingOutput struct {
	Edges []graph.Edge `json:"edges"`
	Total int          `json:"total"`
}

// GraphMetricsInput is the input for the graph_metrics MCP tool.
type GraphMetricsInput struct{}

// GraphMetricsOutput is the result of the graph_metrics MCP tool.
type GraphMetricsOutput struct {
	Metrics graph.Metrics `json:"metrics"`
	Cycle   []string      `json:"cycle,omitempty"`
}
