package mcptools

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/depscope/internal/extract"
	"github.com/dusk-indust/depscope/internal/graph"
	"github.com/dusk-indust/depscope/internal/registry"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	reg := registry.New(nil)
	reg.Register(extract.NewJavaParser())
	reg.Register(extract.NewPythonParser())
	reg.Register(extract.NewTypeScriptParser())
	reg.Register(extract.NewGoParser())
	reg.Register(extract.NewRustParser())

	store := graph.NewMemStore()
	t.Cleanup(func() { _ = store.Close() })
	return NewService(reg, store, nil, nil)
}

func fixtureRoot(t *testing.T, name string) string {
	t.Helper()
	root, err := filepath.Abs(filepath.Join("..", "..", "testdata", "fixtures", name))
	require.NoError(t, err)
	return root
}

func analyzeFixture(t *testing.T, svc *Service, name string) AnalyzeProjectOutput {
	t.Helper()
	_, out, err := svc.AnalyzeProject(context.Background(), nil, AnalyzeProjectInput{
		RootPath: fixtureRoot(t, name),
	})
	require.NoError(t, err)
	return out
}

func TestAnalyzeProject_RequiresRootPath(t *testing.T) {
	svc := newTestService(t)
	_, _, err := svc.AnalyzeProject(context.Background(), nil, AnalyzeProjectInput{})
	assert.Error(t, err)
}

func TestAnalyzeProject_MissingRoot(t *testing.T) {
	svc := newTestService(t)
	_, _, err := svc.AnalyzeProject(context.Background(), nil, AnalyzeProjectInput{
		RootPath: filepath.Join(t.TempDir(), "missing"),
	})
	assert.Error(t, err)
}

func TestAnalyzeProject_JavaFixture(t *testing.T) {
	svc := newTestService(t)
	out := analyzeFixture(t, svc, "java_project")

	assert.Equal(t, "java_project", out.Project)
	assert.Equal(t, "java", out.Language)
	assert.Equal(t, 4, out.Metrics.NodeCount)
	assert.Greater(t, out.Metrics.EdgeCount, 0)
	assert.Empty(t, out.Cycle)
}

func TestGetGraph_EmptyStore(t *testing.T) {
	svc := newTestService(t)
	_, _, err := svc.GetGraph(context.Background(), nil, GetGraphInput{})
	assert.Error(t, err)
}

func TestGetGraph_AfterAnalyze(t *testing.T) {
	svc := newTestService(t)
	analyzeFixture(t, svc, "java_project")

	_, out, err := svc.GetGraph(context.Background(), nil, GetGraphInput{})
	require.NoError(t, err)
	require.NotNil(t, out.Graph)
	assert.Len(t, out.Graph.Nodes, 4)
}

func TestGetNode(t *testing.T) {
	svc := newTestService(t)
	analyzeFixture(t, svc, "java_project")
	ctx := context.Background()

	_, out, err := svc.GetNode(ctx, nil, GetNodeInput{ID: "com.example.Dog"})
	require.NoError(t, err)
	require.NotNil(t, out.Node)
	assert.Equal(t, "class", out.Node.Type)

	_, _, err = svc.GetNode(ctx, nil, GetNodeInput{ID: "com.example.Cat"})
	assert.Error(t, err, "missing node is a tool error")

	_, _, err = svc.GetNode(ctx, nil, GetNodeInput{})
	assert.Error(t, err)
}

func TestEdgesTouching(t *testing.T) {
	svc := newTestService(t)
	analyzeFixture(t, svc, "java_project")
	ctx := context.Background()

	_, out, err := svc.EdgesTouching(ctx, nil, EdgesTouchingInput{ID: "com.example.Pet"})
	require.NoError(t, err)
	require.Greater(t, out.Total, 0)
	for _, e := range out.Edges {
		touches := e.Source == "com.example.Pet" || e.Target == "com.example.Pet"
		assert.True(t, touches)
	}
}

func TestGraphMetrics(t *testing.T) {
	svc := newTestService(t)
	analyzeFixture(t, svc, "java_project")

	_, out, err := svc.GraphMetrics(context.Background(), nil, GraphMetricsInput{})
	require.NoError(t, err)
	assert.Equal(t, 4, out.Metrics.NodeCount)
	assert.GreaterOrEqual(t, out.Metrics.MaxDepth, 1)
}

func TestGraphMetrics_EmptyStore(t *testing.T) {
	svc := newTestService(t)
	_, _, err := svc.GraphMetrics(context.Background(), nil, GraphMetricsInput{})
	assert.Error(t, err)
}

func TestNewServer_RegistersTools(t *testing.T) {
	svc := newTestService(t)
	server := NewServer(svc)
	assert.NotNil(t, server)
}

func TestAnalyzeProject_ReplacesPreviousGraph(t *testing.T) {
	svc := newTestService(t)
	analyzeFixture(t, svc, "java_project")
	analyzeFixture(t, svc, "python_project")

	_, out, err := svc.GetGraph(context.Background(), nil, GetGraphInput{})
	require.NoError(t, err)
	assert.Equal(t, "python_project", out.Graph.Project)
	assert.Nil(t, out.Graph.NodeByID("com.example.Dog"), "old analysis fully replaced")
}
