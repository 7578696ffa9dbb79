// Package extract implements the per-language extraction engines. Each
// engine walks a project's source tree with a tree-sitter grammar and emits
// the language-specific intermediate representation; normalization into the
// standardized graph happens in the converter, never here.
package extract

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	"golang.org/x/sync/errgroup"

	"github.com/dusk-indust/depscope/internal/deps"
	"github.com/dusk-indust/depscope/internal/project"
)

// defaultExcludes are directory names skipped in every walk, on top of any
// project-configured exclusions.
var defaultExcludes = map[string]bool{
	".git":         true,
	"node_modules": true,
	"vendor":       true,
	"target":       true,
	"build":        true,
	"dist":         true,
	"out":          true,
	"__pycache__":  true,
	"venv":         true,
	".venv":        true,
	".idea":        true,
	".vscode":      true,
}

// fileChunk is the per-file extraction result. Exactly one of symbols or
// diag is populated: a malformed file becomes a diagnostic, never an abort.
type fileChunk struct {
	path    string
	symbols []deps.Symbol
	diag    *deps.Diagnostic
}

// extractFn turns one parsed source file into symbols. relPath is
// slash-separated and relative to the project root.
type extractFn func(root *tree_sitter.Node, source []byte, relPath string) []deps.Symbol

// resolveFn rewrites a relation target once the full file set is known.
// Returning an empty target drops the relation.
type resolveFn func(sourceFile string, rel deps.Relation) deps.Relation

// collectSources walks the project root and returns the sorted,
// slash-separated relative paths of every source file with one of the given
// extensions. An unreadable root is a fatal failure; so is a tree with no
// recognizable sources, because silently returning an empty graph would
// mask a misconfigured root.
func collectSources(pt *project.Type, exts []string, langName string) ([]string, error) {
	if _, err := os.Stat(pt.RootPath); err != nil {
		return nil, fmt.Errorf("read project root: %w", err)
	}

	extSet := make(map[string]bool, len(exts))
	for _, e := range exts {
		extSet[e] = true
	}
	excluded := make(map[string]bool, len(defaultExcludes)+len(pt.ExcludeDirs))
	for d := range defaultExcludes {
		excluded[d] = true
	}
	for _, d := range pt.ExcludeDirs {
		excluded[d] = true
	}

	var files []string
	err := filepath.WalkDir(pt.RootPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // skip inaccessible paths
		}
		if d.IsDir() {
			name := d.Name()
			if path != pt.RootPath && (excluded[name] || strings.HasPrefix(name, ".")) {
				return filepath.SkipDir
			}
			return nil
		}
		if !extSet[filepath.Ext(path)] {
			return nil
		}
		rel, relErr := filepath.Rel(pt.RootPath, path)
		if relErr != nil {
			return nil
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk project root: %w", err)
	}

	if len(files) == 0 {
		return nil, fmt.Errorf("no %s source files under %s", langName, pt.RootPath)
	}

	sort.Strings(files)
	return files, nil
}

// parseFiles parses every file concurrently, bounded by the CPU count.
// Individual file parses are side-effect-free and order-independent, so
// they fan out freely; results land in a preallocated slice so chunk order
// stays deterministic regardless of completion order.
func parseFiles(
	ctx context.Context,
	lang *tree_sitter.Language,
	rootPath string,
	files []string,
	fn extractFn,
) ([]fileChunk, error) {
	chunks := make([]fileChunk, len(files))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())

	for i, relPath := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			chunks[i] = parseOne(lang, rootPath, relPath, fn)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return chunks, nil
}

// parseOne parses a single file. Any per-file failure is recorded as a
// diagnostic on the chunk.
func parseOne(lang *tree_sitter.Language, rootPath, relPath string, fn extractFn) fileChunk {
	chunk := fileChunk{path: relPath}

	source, err := os.ReadFile(filepath.Join(rootPath, filepath.FromSlash(relPath)))
	if err != nil {
		chunk.diag = &deps.Diagnostic{FilePath: relPath, Message: fmt.Sprintf("read: %v", err)}
		return chunk
	}

	parser := tree_sitter.NewParser()
	defer parser.Close()

	if err := parser.SetLanguage(lang); err != nil {
		chunk.diag = &deps.Diagnostic{FilePath: relPath, Message: fmt.Sprintf("set language: %v", err)}
		return chunk
	}

	tree := parser.Parse(source, nil)
	if tree == nil {
		chunk.diag = &deps.Diagnostic{FilePath: relPath, Message: "tree-sitter returned nil tree"}
		return chunk
	}
	defer tree.Close()

	// Tree-sitter is error-tolerant: bad syntax yields a tree with ERROR
	// nodes, never a nil tree. A file that failed to parse cleanly is
	// skipped whole; salvaging symbols from a half-parsed file would put
	// unreliable ids and relations into the symbol table.
	root := tree.RootNode()
	if root.HasError() {
		chunk.diag = &deps.Diagnostic{FilePath: relPath, Message: "syntax error"}
		return chunk
	}

	chunk.symbols = fn(root, source, relPath)
	return chunk
}

// assemble merges per-file chunks into one Extraction. This is the single
// synchronization point after the parallel phase: symbol ids are checked for
// uniqueness (colliding ids are qualified with the file path) and relation
// targets are resolved against the completed symbol table.
func assemble(lang project.Language, pt *project.Type, chunks []fileChunk, resolve resolveFn) *deps.Extraction {
	ext := &deps.Extraction{Language: lang, Project: pt.Name}

	seen := make(map[string]bool)
	for _, c := range chunks {
		if c.diag != nil {
			ext.Diagnostics = append(ext.Diagnostics, *c.diag)
			continue
		}
		for _, sym := range c.symbols {
			// First occurrence keeps the bare id; a later collision is
			// requalified with its file path. Relations keep targeting the
			// bare id, so they resolve to the first-seen symbol and the
			// requalified node carries no incoming edges.
			if seen[sym.ID] {
				sym.ID = sym.FilePath + ":" + sym.ID
			}
			if seen[sym.ID] {
				continue
			}
			seen[sym.ID] = true
			ext.Symbols = append(ext.Symbols, sym)
		}
	}

	for i := range ext.Symbols {
		sym := &ext.Symbols[i]
		kept := make([]deps.Relation, 0, len(sym.Relations))
		for _, rel := range sym.Relations {
			if resolve != nil {
				rel = resolve(sym.FilePath, rel)
			}
			// Empty targets are unresolvable; self references carry no
			// dependency information.
			if rel.Target == "" || rel.Target == sym.ID {
				continue
			}
			kept = append(kept, rel)
		}
		sym.Relations = kept
	}

	return ext
}

// countLines counts lines by counting newline bytes, plus one for the final
// line when the source is non-empty.
func countLines(source []byte) int {
	if len(source) == 0 {
		return 0
	}
	return bytes.Count(source, []byte{'\n'}) + 1
}

// walkTree visits every node in the tree via a cursor, invoking visit on
// each. The cursor pattern avoids re-allocating child slices per node.
func walkTree(root *tree_sitter.Node, visit func(node *tree_sitter.Node)) {
	cursor := root.Walk()
	defer cursor.Close()
	walkCursor(cursor, visit)
}

func walkCursor(cursor *tree_sitter.TreeCursor, visit func(node *tree_sitter.Node)) {
	visit(cursor.Node())
	if cursor.GotoFirstChild() {
		walkCursor(cursor, visit)
		for cursor.GotoNextSibling() {
			walkCursor(cursor, visit)
		}
		cursor.GotoParent()
	}
}
