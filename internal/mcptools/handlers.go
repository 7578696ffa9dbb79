// Package mcptools exposes the analysis pipeline as MCP tools.
package mcptools

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sirupsen/logrus"

	"github.com/dusk-indust/depscope/internal/graph"
	"github.com/dusk-indust/depscope/internal/project"
	"github.com/dusk-indust/depscope/internal/registry"
	"github.com/dusk-indust/depscope/internal/snapshot"
)

// Service holds the registry, graph store, and snapshot store used by MCP
// tool handlers.
type Service struct {
	registry *registry.Registry
	store    graph.Store
	snaps    *snapshot.Store
	log      *logrus.Logger
}

// NewService creates a Service. A nil logger defaults to logrus.New().
func NewService(reg *registry.Registry, store graph.Store, snaps *snapshot.Store, log *logrus.Logger) *Service {
	if log == nil {
		log = logrus.New()
	}
	return &Service{registry: reg, store: store, snaps: snaps, log: log}
}

// AnalyzeProject detects the project type under rootPath, runs the matching
// parser, and replaces the stored graph with the result.
func (s *Service) AnalyzeProject(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AnalyzeProjectInput,
) (*mcp.CallToolResult, AnalyzeProjectOutput, error) {
	if input.RootPath == "" {
		return nil, AnalyzeProjectOutput{}, fmt.Errorf("rootPath is required")
	}

	info, err := os.Stat(input.RootPath)
	if err != nil {
		return nil, AnalyzeProjectOutput{}, fmt.Errorf("cannot access rootPath: %w", err)
	}
	if !info.IsDir() {
		return nil, AnalyzeProjectOutput{}, fmt.Errorf("rootPath is not a directory: %s", input.RootPath)
	}

	pt, err := project.Detect(input.RootPath)
	if err != nil {
		return nil, AnalyzeProjectOutput{}, fmt.Errorf("detect project: %w", err)
	}
	pt.ExcludeDirs = append(pt.ExcludeDirs, input.ExcludeDirs...)

	g, err := s.registry.Parse(ctx, pt)
	if err != nil {
		return nil, AnalyzeProjectOutput{}, fmt.Errorf("analyze %s: %w", pt.Name, err)
	}

	if err := s.store.InitSchema(ctx); err != nil {
		return nil, AnalyzeProjectOutput{}, fmt.Errorf("init schema: %w", err)
	}
	if err := s.store.ReplaceGraph(ctx, g); err != nil {
		return nil, AnalyzeProjectOutput{}, fmt.Errorf("store graph: %w", err)
	}

	if input.Snapshot && s.snaps != nil {
		path := snapshot.DefaultPath(input.RootPath)
		if err := s.snaps.Save(path, g); err != nil {
			s.log.WithError(err).Warn("snapshot save failed")
		}
	}

	out := AnalyzeProjectOutput{Project: g.Project, Language: string(g.Language)}
	metrics, err := graph.ComputeMetrics(g)
	if metrics != nil {
		out.Metrics = *metrics
	}
	var cycleErr *graph.CycleError
	if errors.As(err, &cycleErr) {
		out.Cycle = cycleErr.Nodes
	}
	return nil, out, nil
}

// GetGraph returns the stored graph.
func (s *Service) GetGraph(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ GetGraphInput,
) (*mcp.CallToolResult, GetGraphOutput, error) {
	g, err := s.store.GetGraph(ctx)
	if err != nil {
		return nil, GetGraphOutput{}, fmt.Errorf("get graph: %w", err)
	}
	if g == nil {
		return nil, GetGraphOutput{}, fmt.Errorf("no graph stored; run analyze_project first")
	}
	return nil, GetGraphOutput{Graph: g}, nil
}

// GetNode looks up a single node by id.
func (s *Service) GetNode(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input GetNodeInput,
) (*mcp.CallToolResult, GetNodeOutput, error) {
	if input.ID == "" {
		return nil, GetNodeOutput{}, fmt.Errorf("id is required")
	}
	node, err := s.store.GetNode(ctx, input.ID)
	if err != nil {
		return nil, GetNodeOutput{}, fmt.Errorf("get node: %w", err)
	}
	if node == nil {
		return nil, GetNodeOutput{}, fmt.Errorf("node not found: %s", input.ID)
	}
	return nil, GetNodeOutput{Node: node}, nil
}

// EdgesTouching lists every edge with the given node as source or target.
func (s *Service) EdgesTouching(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input EdgesTouchingInput,
) (*mcp.CallToolResult, EdgesTouchingOutput, error) {
	if input.ID == "" {
		return nil, EdgesTouchingOutput{}, fmt.Errorf("id is required")
	}
	edges, err := s.store.EdgesTouching(ctx, input.ID)
	if err != nil {
		return nil, EdgesTouchingOutput{}, fmt.Errorf("edges touching: %w", err)
	}
	return nil, EdgesTouchingOutput{Edges: edges, Total: len(edges)}, nil
}

// GraphMetrics computes node count, edge count, and longest dependency
// chain for the stored graph. A cycle is reported as data, not a failure.
func (s *Service) GraphMetrics(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ GraphMetricsInput,
) (*mcp.CallToolResult, GraphMetricsOutput, error) {
	g, err := s.store.GetGraph(ctx)
	if err != nil {
		return nil, GraphMetricsOutput{}, fmt.Errorf("get graph: %w", err)
	}
	if g == nil {
		return nil, GraphMetricsOutput{}, fmt.Errorf("no graph stored; run analyze_project first")
	}

	out := GraphMetricsOutput{}
	metrics, err := graph.ComputeMetrics(g)
	if metrics != nil {
		out.Metrics = *metrics
	}
	var cycleErr *graph.CycleError
	if err != nil && !errors.As(err, &cycleErr) {
		return nil, GraphMetricsOutput{}, fmt.Errorf("compute metrics: %w", err)
	}
	if cycleErr != nil {
		out.Cycle = cycleErr.Nodes
	}
	return nil, out, nil
}
