//go:build cgo

package graph

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	kuzu "github.com/kuzudb/go-kuzu"

	"github.com/dusk-indust/depscope/internal/project"
)

// KuzuStore implements Store using KuzuDB as the graph backend, which makes
// the standardized graph queryable with Cypher from outside the process.
// Requires CGO because the go-kuzu driver wraps KuzuDB's C library.
type KuzuStore struct {
	db   *kuzu.Database
	conn *kuzu.Connection
}

// Compile-time check that KuzuStore satisfies Store.
var _ Store = (*KuzuStore)(nil)

// NewKuzuStore creates a KuzuStore backed by an in-memory KuzuDB instance.
func NewKuzuStore() (*KuzuStore, error) {
	return openKuzu(":memory:")
}

// NewKuzuFileStore creates a KuzuStore backed by a file-based KuzuDB at the
// given directory path, so the graph index survives across sessions.
func NewKuzuFileStore(dbPath string) (*KuzuStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("kuzu: create parent directory: %w", err)
	}
	return openKuzu(dbPath)
}

func openKuzu(path string) (*KuzuStore, error) {
	cfg := kuzu.DefaultSystemConfig()
	db, err := kuzu.OpenDatabase(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("kuzu: open database: %w", err)
	}
	conn, err := kuzu.OpenConnection(db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("kuzu: open connection: %w", err)
	}
	return &KuzuStore{db: db, conn: conn}, nil
}

// Close releases the KuzuDB connection and database.
func (s *KuzuStore) Close() error {
	if s.conn != nil {
		s.conn.Close()
	}
	if s.db != nil {
		s.db.Close()
	}
	return nil
}

// ddlStatements defines the Cypher DDL executed by InitSchema. The node
// table must precede the relationship table.
var ddlStatements = []string{
	`CREATE NODE TABLE IF NOT EXISTS Symbol(
		id STRING,
		title STRING,
		kind STRING,
		file_path STRING,
		start_line INT64,
		end_line INT64,
		PRIMARY KEY(id)
	)`,
	`CREATE NODE TABLE IF NOT EXISTS Meta(
		key STRING,
		value STRING,
		PRIMARY KEY(key)
	)`,
	`CREATE REL TABLE IF NOT EXISTS DEPENDS(FROM Symbol TO Symbol, kind STRING)`,
}

// InitSchema creates the node and relationship tables if they do not exist.
func (s *KuzuStore) InitSchema(_ context.Context) error {
	for _, stmt := range ddlStatements {
		res, err := s.conn.Query(stmt)
		if err != nil {
			return fmt.Errorf("kuzu: init schema: %w", err)
		}
		res.Close()
	}
	return nil
}

// ReplaceGraph clears the previous graph and inserts the new one. The store
// never merges runs; each analysis replaces the whole index.
func (s *KuzuStore) ReplaceGraph(ctx context.Context, g *Graph) error {
	if err := s.InitSchema(ctx); err != nil {
		return err
	}
	if err := s.exec("MATCH (n:Symbol) DETACH DELETE n", nil); err != nil {
		return fmt.Errorf("kuzu: clear graph: %w", err)
	}
	if err := s.exec("MATCH (m:Meta) DELETE m", nil); err != nil {
		return fmt.Errorf("kuzu: clear meta: %w", err)
	}

	for _, meta := range []struct{ key, value string }{
		{"project", g.Project},
		{"language", string(g.Language)},
	} {
		if err := s.exec(
			"CREATE (m:Meta {key: $key, value: $value})",
			map[string]any{"key": meta.key, "value": meta.value},
		); err != nil {
			return fmt.Errorf("kuzu: store meta: %w", err)
		}
	}

	for _, n := range g.Nodes {
		if err := s.exec(
			`CREATE (n:Symbol {
				id: $id,
				title: $title,
				kind: $kind,
				file_path: $fp,
				start_line: $sl,
				end_line: $el
			})`,
			map[string]any{
				"id":    n.ID,
				"title": n.Title,
				"kind":  n.Type,
				"fp":    n.Metadata[MetaFilePath],
				"sl":    metaLine(n, MetaStartLine),
				"el":    metaLine(n, MetaEndLine),
			},
		); err != nil {
			return fmt.Errorf("kuzu: add node %s: %w", n.ID, err)
		}
	}

	for _, e := range g.Edges {
		if err := s.exec(
			`MATCH (a:Symbol {id: $src}), (b:Symbol {id: $dst})
			 CREATE (a)-[:DEPENDS {kind: $kind}]->(b)`,
			map[string]any{
				"src":  e.Source,
				"dst":  e.Target,
				"kind": string(e.Kind),
			},
		); err != nil {
			return fmt.Errorf("kuzu: add edge %s->%s: %w", e.Source, e.Target, err)
		}
	}

	return nil
}

// GetGraph reconstructs the stored graph. Node and edge ordering follows id
// order, not the converter's first-seen order; callers needing the exact
// persisted ordering should read the JSON snapshot instead.
func (s *KuzuStore) GetGraph(_ context.Context) (*Graph, error) {
	g := &Graph{Nodes: []Node{}, Edges: []Edge{}}

	metaRows, err := s.query("MATCH (m:Meta) RETURN m.key, m.value", nil)
	if err == nil {
		for _, r := range metaRows {
			switch toString(r[0]) {
			case "project":
				g.Project = toString(r[1])
			case "language":
				g.Language = project.Language(toString(r[1]))
			}
		}
	}

	rows, err := s.query(
		`MATCH (n:Symbol)
		 RETURN n.id, n.title, n.kind, n.file_path, n.start_line, n.end_line`,
		nil,
	)
	if err != nil {
		return nil, err
	}
	for _, r := range rows {
		g.Nodes = append(g.Nodes, rowToNode(r))
	}
	sort.Slice(g.Nodes, func(i, j int) bool { return g.Nodes[i].ID < g.Nodes[j].ID })

	edgeRows, err := s.query(
		"MATCH (a:Symbol)-[r:DEPENDS]->(b:Symbol) RETURN a.id, b.id, r.kind",
		nil,
	)
	if err != nil {
		return nil, err
	}
	for _, r := range edgeRows {
		g.Edges = append(g.Edges, Edge{
			Source: toString(r[0]),
			Target: toString(r[1]),
			Kind:   EdgeKind(toString(r[2])),
		})
	}
	sort.Slice(g.Edges, func(i, j int) bool {
		a, b := g.Edges[i], g.Edges[j]
		if a.Source != b.Source {
			return a.Source < b.Source
		}
		if a.Target != b.Target {
			return a.Target < b.Target
		}
		return a.Kind < b.Kind
	})

	if len(g.Nodes) == 0 {
		return nil, nil
	}
	return g, nil
}

// GetNode retrieves a single node by id, or nil if not found.
func (s *KuzuStore) GetNode(_ context.Context, id string) (*Node, error) {
	rows, err := s.query(
		`MATCH (n:Symbol {id: $id})
		 RETURN n.id, n.title, n.kind, n.file_path, n.start_line, n.end_line`,
		map[string]any{"id": id},
	)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	n := rowToNode(rows[0])
	return &n, nil
}

// EdgesTouching returns edges incident to id in either direction.
func (s *KuzuStore) EdgesTouching(_ context.Context, id string) ([]Edge, error) {
	out := []Edge{}

	rows, err := s.query(
		"MATCH (a:Symbol {id: $id})-[r:DEPENDS]->(b:Symbol) RETURN a.id, b.id, r.kind",
		map[string]any{"id": id},
	)
	if err != nil {
		return nil, err
	}
	for _, r := range rows {
		out = append(out, Edge{Source: toString(r[0]), Target: toString(r[1]), Kind: EdgeKind(toString(r[2]))})
	}

	rows, err = s.query(
		"MATCH (a:Symbol)-[r:DEPENDS]->(b:Symbol {id: $id}) WHERE a.id <> $id RETURN a.id, b.id, r.kind",
		map[string]any{"id": id},
	)
	if err != nil {
		return nil, err
	}
	for _, r := range rows {
		out = append(out, Edge{Source: toString(r[0]), Target: toString(r[1]), Kind: EdgeKind(toString(r[2]))})
	}

	return out, nil
}

// Metrics derives counts and max depth by loading the stored graph.
func (s *KuzuStore) Metrics(ctx context.Context) (*Metrics, error) {
	g, err := s.GetGraph(ctx)
	if err != nil {
		return nil, err
	}
	if g == nil {
		return &Metrics{}, nil
	}

	metrics, err := ComputeMetrics(g)
	var cycle *CycleError
	if errors.As(err, &cycle) {
		logger.WithField("nodes", cycle.Nodes).Warn("metrics: dependency cycle detected")
		return metrics, nil
	}
	if err != nil {
		return nil, err
	}
	return metrics, nil
}

// ---------- Internal helpers ----------

// exec runs a parameterized Cypher statement that produces no result rows.
func (s *KuzuStore) exec(cypher string, params map[string]any) error {
	if len(params) == 0 {
		res, err := s.conn.Query(cypher)
		if err != nil {
			return fmt.Errorf("kuzu: query: %w", err)
		}
		res.Close()
		return nil
	}

	stmt, err := s.conn.Prepare(cypher)
	if err != nil {
		return fmt.Errorf("kuzu: prepare: %w", err)
	}
	defer stmt.Close()

	res, err := s.conn.Execute(stmt, params)
	if err != nil {
		return fmt.Errorf("kuzu: execute: %w", err)
	}
	res.Close()
	return nil
}

// query runs a parameterized Cypher statement and collects all result rows.
// Each row is a []any slice with values in column order.
func (s *KuzuStore) query(cypher string, params map[string]any) ([][]any, error) {
	var res *kuzu.QueryResult
	var err error

	if len(params) == 0 {
		res, err = s.conn.Query(cypher)
	} else {
		var stmt *kuzu.PreparedStatement
		stmt, err = s.conn.Prepare(cypher)
		if err != nil {
			return nil, fmt.Errorf("kuzu: prepare: %w", err)
		}
		defer stmt.Close()
		res, err = s.conn.Execute(stmt, params)
	}
	if err != nil {
		return nil, fmt.Errorf("kuzu: query: %w", err)
	}
	defer res.Close()

	var rows [][]any
	for res.HasNext() {
		tuple, err := res.Next()
		if err != nil {
			return nil, fmt.Errorf("kuzu: next: %w", err)
		}
		vals, err := tuple.GetAsSlice()
		if err != nil {
			return nil, fmt.Errorf("kuzu: row values: %w", err)
		}
		rows = append(rows, vals)
	}
	return rows, nil
}

// metaLine reads a line-number metadata value as int64, defaulting to 0.
func metaLine(n Node, key string) int64 {
	v := n.Metadata[key]
	var out int64
	for _, c := range v {
		if c < '0' || c > '9' {
			return 0
		}
		out = out*10 + int64(c-'0')
	}
	return out
}

// rowToNode converts a 6-column result row into a Node.
// Column order: id, title, kind, file_path, start_line, end_line.
func rowToNode(r []any) Node {
	n := Node{
		ID:    toString(r[0]),
		Title: toString(r[1]),
		Type:  toString(r[2]),
	}
	fp := toString(r[3])
	if fp != "" {
		n.Metadata = map[string]string{MetaFilePath: fp}
		if sl := toInt(r[4]); sl > 0 {
			n.Metadata[MetaStartLine] = fmt.Sprintf("%d", sl)
		}
		if el := toInt(r[5]); el > 0 {
			n.Metadata[MetaEndLine] = fmt.Sprintf("%d", el)
		}
	}
	return n
}

// ---------- Type coercion helpers ----------
// KuzuDB returns typed Go values (int64, float64, bool, string).

func toString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

func toInt(v any) int {
	switch n := v.(type) {
	case int64:
		return int(n)
	case int:
		return n
	case int32:
		return int(n)
	case float64:
		return int(n)
	default:
		return 0
	}
}
