package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dusk-indust/depscope/internal/graph"
)

// Report is the top-level JSON export: the standardized graph together
// with its computed metrics and a generation timestamp.
type Report struct {
	GeneratedAt string         `json:"generatedAt"`
	Project     string         `json:"project"`
	Language    string         `json:"language"`
	Metrics     *graph.Metrics `json:"metrics,omitempty"`
	Cycle       []string       `json:"cycle,omitempty"`
	Graph       *graph.Graph   `json:"graph"`
}

// BuildReport assembles a Report from a graph. A dependency cycle does not
// fail the export: node and edge counts stay valid and the cycle members
// are reported in place of a depth.
func BuildReport(g *graph.Graph) *Report {
	r := &Report{
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		Project:     g.Project,
		Language:    string(g.Language),
		Graph:       g,
	}

	metrics, err := graph.ComputeMetrics(g)
	r.Metrics = metrics
	var cycleErr *graph.CycleError
	if errors.As(err, &cycleErr) {
		r.Cycle = cycleErr.Nodes
	}
	return r
}

// JSON renders a report as indented JSON.
func JSON(r *Report) ([]byte, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode report: %w", err)
	}
	return data, nil
}
