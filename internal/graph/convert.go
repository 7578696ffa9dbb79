package graph

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/dusk-indust/depscope/internal/deps"
)

// logger is package-level so the pure conversion path can still leave a
// diagnostic trail for pruned edges without threading a logger through.
var logger = logrus.StandardLogger()

// Convert normalizes a language-specific extraction into the standardized
// Graph. The transformation is deterministic: symbols become nodes in
// first-seen order, relations become edges in declaration order, and
// identical input always yields an identical Graph.
//
// Edges whose target id has no corresponding node are pruned: the target
// typically lives outside the analyzed tree (stdlib, third-party). Pruning
// is logged, never surfaced as a failure, because the graph stays
// internally consistent afterward.
func Convert(ext *deps.Extraction) *Graph {
	g := &Graph{
		Project:  ext.Project,
		Language: ext.Language,
		Nodes:    make([]Node, 0, len(ext.Symbols)),
		Edges:    []Edge{},
	}

	known := make(map[string]bool, len(ext.Symbols))
	for _, sym := range ext.Symbols {
		if known[sym.ID] {
			// Extraction guarantees unique ids; a duplicate here means an
			// upstream defect. Keep the first occurrence.
			logger.WithFields(logrus.Fields{
				"id":   sym.ID,
				"file": sym.FilePath,
			}).Warn("convert: duplicate symbol id, keeping first")
			continue
		}
		known[sym.ID] = true
		g.Nodes = append(g.Nodes, Node{
			ID:       sym.ID,
			Title:    sym.Title,
			Type:     sym.Kind,
			Metadata: nodeMetadata(sym),
		})
	}

	pruned := 0
	for _, sym := range ext.Symbols {
		for _, rel := range sym.Relations {
			if !known[rel.Target] {
				pruned++
				continue
			}
			g.Edges = append(g.Edges, Edge{
				Source: sym.ID,
				Target: rel.Target,
				Kind:   edgeKindFor(rel.Kind),
			})
		}
	}

	if pruned > 0 {
		logger.WithFields(logrus.Fields{
			"project": ext.Project,
			"pruned":  pruned,
			"kept":    len(g.Edges),
		}).Debug("convert: pruned dangling edges")
	}

	return g
}

// edgeKindFor maps a relation kind into the shared edge-kind enumeration.
// Unrecognized kinds map to the generic dependency kind so no information
// silently disappears.
func edgeKindFor(kind deps.RelationKind) EdgeKind {
	switch kind {
	case deps.RelationImport:
		return EdgeKindImports
	case deps.RelationExtends:
		return EdgeKindExtends
	case deps.RelationImplements:
		return EdgeKindImplements
	case deps.RelationCalls:
		return EdgeKindCalls
	case deps.RelationUses:
		return EdgeKindUses
	default:
		return EdgeKindDependency
	}
}

func nodeMetadata(sym deps.Symbol) map[string]string {
	if sym.FilePath == "" {
		return nil
	}
	md := map[string]string{MetaFilePath: sym.FilePath}
	if sym.StartLine > 0 {
		md[MetaStartLine] = strconv.Itoa(sym.StartLine)
	}
	if sym.EndLine > 0 {
		md[MetaEndLine] = strconv.Itoa(sym.EndLine)
	}
	return md
}

// Format identifies which producer shape a blob of persisted JSON came from.
type Format string

const (
	FormatGraph      Format = "graph"      // standardized nodes/edges shape
	FormatExtraction Format = "extraction" // language-specific pre-conversion data
	FormatLegacy     Format = "legacy"     // original Java-only shape
	FormatUnknown    Format = "unknown"
)

// DetectFormat inspects the structure of raw JSON and reports which snapshot
// shape it is. Detection is structural (presence of characteristic fields),
// never filename-based.
func DetectFormat(raw []byte) Format {
	var probe struct {
		Nodes   json.RawMessage `json:"nodes"`
		Edges   json.RawMessage `json:"edges"`
		Symbols json.RawMessage `json:"symbols"`
		Lang    json.RawMessage `json:"language"`
		Classes json.RawMessage `json:"classes"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return FormatUnknown
	}

	switch {
	case probe.Nodes != nil && probe.Edges != nil:
		return FormatGraph
	case probe.Symbols != nil && probe.Lang != nil:
		return FormatExtraction
	case probe.Classes != nil:
		return FormatLegacy
	default:
		return FormatUnknown
	}
}

// Decode turns any recognized snapshot shape into a standardized Graph.
// The standardized shape loads directly; the other two pass through Convert.
func Decode(raw []byte) (*Graph, error) {
	switch format := DetectFormat(raw); format {
	case FormatGraph:
		var g Graph
		if err := json.Unmarshal(raw, &g); err != nil {
			return nil, fmt.Errorf("decode graph snapshot: %w", err)
		}
		if g.Nodes == nil {
			g.Nodes = []Node{}
		}
		if g.Edges == nil {
			g.Edges = []Edge{}
		}
		return &g, nil

	case FormatExtraction:
		var ext deps.Extraction
		if err := json.Unmarshal(raw, &ext); err != nil {
			return nil, fmt.Errorf("decode extraction snapshot: %w", err)
		}
		return Convert(&ext), nil

	case FormatLegacy:
		var legacy deps.LegacySnapshot
		if err := json.Unmarshal(raw, &legacy); err != nil {
			return nil, fmt.Errorf("decode legacy snapshot: %w", err)
		}
		return Convert(legacy.ToExtraction()), nil

	default:
		return nil, fmt.Errorf("unrecognized snapshot format")
	}
}
