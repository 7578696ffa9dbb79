// Package export renders analysis results into shareable formats.
package export

import (
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/dusk-indust/depscope/internal/graph"
)

// Mermaid renders a graph as a Mermaid "graph TD" diagram. Nodes are
// grouped into subgraphs by source directory; edges other than plain
// imports carry their kind as a label.
func Mermaid(g *graph.Graph) string {
	nodeIDs := make(map[string]string, len(g.Nodes))
	nextID := 0
	getID := func(key string) string {
		if id, ok := nodeIDs[key]; ok {
			return id
		}
		id := fmt.Sprintf("N%d", nextID)
		nextID++
		nodeIDs[key] = id
		return id
	}

	// Group nodes by directory; nodes without a file path land in a
	// catch-all group rendered last.
	groups := make(map[string][]graph.Node)
	for _, n := range g.Nodes {
		dir := ""
		if fp := n.Metadata[graph.MetaFilePath]; fp != "" {
			dir = path.Dir(fp)
		}
		groups[dir] = append(groups[dir], n)
	}

	dirs := make([]string, 0, len(groups))
	for dir := range groups {
		if dir != "" {
			dirs = append(dirs, dir)
		}
	}
	sort.Strings(dirs)
	if _, ok := groups[""]; ok {
		dirs = append(dirs, "")
	}

	var sb strings.Builder
	sb.WriteString("graph TD\n")

	for _, dir := range dirs {
		nodes := groups[dir]
		if dir == "" {
			for _, n := range nodes {
				sb.WriteString(fmt.Sprintf("  %s[\"%s\"]\n", getID(n.ID), mermaidLabel(n)))
			}
			continue
		}
		sb.WriteString(fmt.Sprintf("  subgraph %s[\"%.40s\"]\n", getID("dir:"+dir), dir))
		for _, n := range nodes {
			sb.WriteString(fmt.Sprintf("    %s[\"%s\"]\n", getID(n.ID), mermaidLabel(n)))
		}
		sb.WriteString("  end\n")
	}

	for _, e := range g.Edges {
		src := getID(e.Source)
		tgt := getID(e.Target)
		if e.Kind == graph.EdgeKindImports {
			sb.WriteString(fmt.Sprintf("  %s --> %s\n", src, tgt))
			continue
		}
		sb.WriteString(fmt.Sprintf("  %s -->|%s| %s\n", src, e.Kind, tgt))
	}

	return sb.String()
}

// mermaidLabel produces a diagram-safe node label.
func mermaidLabel(n graph.Node) string {
	label := n.Title
	if label == "" {
		label = n.ID
	}
	return strings.ReplaceAll(label, `"`, "'")
}
