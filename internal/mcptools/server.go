package mcptools

import (
	"context"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// version is set by the linker at build time.
var version = "dev"

// NewServer creates an MCP server with all 5 dependency graph tools
// registered.
func NewServer(svc *Service) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "depscope",
		Version: version,
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "analyze_project",
		Description: "Detect the project type under a root path, extract its dependency graph with the matching language parser, and store the standardized result.",
	}, svc.AnalyzeProject)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_graph",
		Description: "Return the stored dependency graph: project name, language, nodes, and edges.",
	}, svc.GetGraph)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_node",
		Description: "Look up a single graph node by its id, including title, type, and source location metadata.",
	}, svc.GetNode)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "edges_touching",
		Description: "List every dependency edge that has the given node as source or target.",
	}, svc.EdgesTouching)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "graph_metrics",
		Description: "Compute node count, edge count, and the longest dependency chain of the stored graph. Reports cycle members when the graph is cyclic.",
	}, svc.GraphMetrics)

	return server
}

// RunServer starts an HTTP server exposing the dependency graph MCP tools.
func RunServer(ctx context.Context, svc *Service, addr string) error {
	server := NewServer(svc)

	handler := mcp.NewStreamableHTTPHandler(
		func(_ *http.Request) *mcp.Server { return server },
		nil,
	)

	httpServer := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	// Shutdown gracefully when context is cancelled.
	go func() {
		<-ctx.Done()
		httpServer.Shutdown(context.Background())
	}()

	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
