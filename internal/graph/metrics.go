package graph

import (
	"fmt"
	"strings"
)

// CycleError reports a dependency cycle encountered while measuring depth.
// Nodes holds the ids participating in the cycle, in traversal order.
type CycleError struct {
	Nodes []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("dependency cycle detected: %s", strings.Join(e.Nodes, " -> "))
}

// visit states for the depth-first walk.
const (
	unvisited = iota
	inPath
	done
)

// MaxDepth returns the length of the longest directed forward path in the
// graph, following edges from source to target. An empty graph or a graph
// without edges yields 0.
//
// Depth values are memoized per node so each node is fully explored once.
// Memoization alone is not cycle-safe, so the walk also keeps an
// in-current-path marker: re-entering a node that is still on the active
// path terminates the walk with a *CycleError instead of recursing forever.
func MaxDepth(g *Graph) (int, error) {
	adjacency := make(map[string][]string, len(g.Nodes))
	for _, e := range g.Edges {
		adjacency[e.Source] = append(adjacency[e.Source], e.Target)
	}

	depths := make(map[string]int, len(g.Nodes))
	state := make(map[string]int, len(g.Nodes))
	var path []string

	var walk func(id string) (int, error)
	walk = func(id string) (int, error) {
		switch state[id] {
		case done:
			return depths[id], nil
		case inPath:
			return 0, cycleFrom(path, id)
		}

		state[id] = inPath
		path = append(path, id)

		best := 0
		for _, target := range adjacency[id] {
			d, err := walk(target)
			if err != nil {
				return 0, err
			}
			if d+1 > best {
				best = d + 1
			}
		}

		path = path[:len(path)-1]
		state[id] = done
		depths[id] = best
		return best, nil
	}

	max := 0
	for _, n := range g.Nodes {
		d, err := walk(n.ID)
		if err != nil {
			return 0, err
		}
		if d > max {
			max = d
		}
	}
	return max, nil
}

// cycleFrom slices the active path from the first occurrence of id and
// closes the loop for reporting.
func cycleFrom(path []string, id string) *CycleError {
	for i, p := range path {
		if p == id {
			cycle := make([]string, 0, len(path)-i+1)
			cycle = append(cycle, path[i:]...)
			cycle = append(cycle, id)
			return &CycleError{Nodes: cycle}
		}
	}
	return &CycleError{Nodes: []string{id}}
}

// ComputeMetrics derives node count, edge count, and maximum depth from a
// graph. When the graph is cyclic the counts are still returned alongside
// the *CycleError; callers report the cycle as a diagnostic and keep the
// counts.
func ComputeMetrics(g *Graph) (*Metrics, error) {
	m := &Metrics{
		NodeCount: len(g.Nodes),
		EdgeCount: len(g.Edges),
	}
	depth, err := MaxDepth(g)
	if err != nil {
		return m, err
	}
	m.MaxDepth = depth
	return m, nil
}
