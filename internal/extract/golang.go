package extract

import (
	"bufio"
	"context"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_go "github.com/tree-sitter/tree-sitter-go/bindings/go"

	"github.com/dusk-indust/depscope/internal/deps"
	"github.com/dusk-indust/depscope/internal/project"
)

// GoParser extracts file-level dependencies from Go source trees. Every
// source file becomes a module symbol identified by its relative path;
// functions, methods, and type declarations get ids of the form "path:Name".
//
// Import paths under the repository's own module path resolve to the first
// non-test .go file of the imported package directory. Stdlib and external
// imports stay raw and are pruned by the converter.
type GoParser struct {
	lang *tree_sitter.Language
}

// NewGoParser creates a GoParser with the Go grammar loaded.
func NewGoParser() *GoParser {
	return &GoParser{lang: tree_sitter.NewLanguage(tree_sitter_go.Language())}
}

// Language reports the language this parser extracts.
func (p *GoParser) Language() project.Language { return project.LangGo }

// CanHandle is a pure predicate on the detected project language.
func (p *GoParser) CanHandle(pt *project.Type) bool {
	return pt.Language == project.LangGo
}

// Extract walks the project's .go files and produces the intermediate
// representation. Test files are excluded.
func (p *GoParser) Extract(ctx context.Context, pt *project.Type) (*deps.Extraction, error) {
	all, err := collectSources(pt, []string{".go"}, "go")
	if err != nil {
		return nil, err
	}
	files := make([]string, 0, len(all))
	for _, f := range all {
		if !strings.HasSuffix(f, "_test.go") {
			files = append(files, f)
		}
	}
	if len(files) == 0 {
		files = all
	}

	chunks, err := parseFiles(ctx, p.lang, pt.RootPath, files, extractGoFile)
	if err != nil {
		return nil, err
	}

	return assemble(project.LangGo, pt, chunks, goResolver(pt.RootPath, files)), nil
}

// goResolver builds the deferred target resolver. Import targets matching
// the repository's go.mod module path resolve to a representative file of
// the imported package; "#Name" call targets resolve within the source file.
func goResolver(rootPath string, files []string) resolveFn {
	modulePath := readGoModulePath(rootPath)

	dirIndex := make(map[string][]string)
	for _, f := range files {
		dir := path.Dir(f)
		dirIndex[dir] = append(dirIndex[dir], f)
	}
	for _, fs := range dirIndex {
		sort.Strings(fs)
	}

	packageFile := func(relDir string) string {
		for _, f := range dirIndex[relDir] {
			return f
		}
		return ""
	}

	return func(sourceFile string, rel deps.Relation) deps.Relation {
		if name, found := strings.CutPrefix(rel.Target, "#"); found {
			rel.Target = sourceFile + ":" + name
			return rel
		}
		if rel.Kind != deps.RelationImport || modulePath == "" {
			return rel
		}
		if rel.Target == modulePath {
			if f := packageFile("."); f != "" {
				rel.Target = f
			}
			return rel
		}
		if relDir, found := strings.CutPrefix(rel.Target, modulePath+"/"); found {
			if f := packageFile(relDir); f != "" {
				rel.Target = f
			}
		}
		return rel
	}
}

// readGoModulePath returns the module directive of the root go.mod, or ""
// when the file is absent or has no module line.
func readGoModulePath(rootPath string) string {
	f, err := os.Open(filepath.Join(rootPath, "go.mod"))
	if err != nil {
		return ""
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if rest, found := strings.CutPrefix(line, "module "); found {
			return strings.TrimSpace(rest)
		}
	}
	return ""
}

func extractGoFile(root *tree_sitter.Node, source []byte, relPath string) []deps.Symbol {
	fileSym := deps.Symbol{
		ID:        relPath,
		Title:     path.Base(relPath),
		Kind:      "module",
		FilePath:  relPath,
		StartLine: 1,
		EndLine:   countLines(source),
	}

	var decls []deps.Symbol
	importSeen := make(map[string]bool)
	callSeen := make(map[string]bool)

	walkTree(root, func(n *tree_sitter.Node) {
		switch n.Kind() {
		case "function_declaration":
			if sym := goNamedDecl(n, source, relPath, "function"); sym != nil {
				decls = append(decls, *sym)
			}

		case "method_declaration":
			if sym := goNamedDecl(n, source, relPath, "method"); sym != nil {
				decls = append(decls, *sym)
			}

		case "type_spec":
			if sym := goTypeSpec(n, source, relPath); sym != nil {
				decls = append(decls, *sym)
			}

		case "import_spec":
			target := goImportPath(n, source)
			if target == "" || importSeen[target] {
				return
			}
			importSeen[target] = true
			fileSym.Relations = append(fileSym.Relations, deps.Relation{
				Kind:   deps.RelationImport,
				Target: target,
			})

		case "call_expression":
			// Only bare identifier calls resolve to a symbol in this file;
			// selector calls cross package boundaries already covered by
			// the import relation.
			fn := n.ChildByFieldName("function")
			if fn == nil || fn.Kind() != "identifier" {
				return
			}
			name := fn.Utf8Text(source)
			if name == "" || callSeen[name] {
				return
			}
			callSeen[name] = true
			fileSym.Relations = append(fileSym.Relations, deps.Relation{
				Kind:   deps.RelationCalls,
				Target: "#" + name,
			})
		}
	})

	symbols := []deps.Symbol{fileSym}
	symbols = append(symbols, decls...)
	return symbols
}

func goNamedDecl(node *tree_sitter.Node, source []byte, relPath, kind string) *deps.Symbol {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}
	name := nameNode.Utf8Text(source)
	return &deps.Symbol{
		ID:        relPath + ":" + name,
		Title:     name,
		Kind:      kind,
		FilePath:  relPath,
		StartLine: int(node.StartPosition().Row) + 1,
		EndLine:   int(node.EndPosition().Row) + 1,
	}
}

func goTypeSpec(node *tree_sitter.Node, source []byte, relPath string) *deps.Symbol {
	sym := goNamedDecl(node, source, relPath, "type")
	if sym == nil {
		return nil
	}
	if typeNode := node.ChildByFieldName("type"); typeNode != nil && typeNode.Kind() == "interface_type" {
		sym.Kind = "interface"
	}
	return sym
}

// goImportPath returns the unquoted path of an import_spec.
func goImportPath(node *tree_sitter.Node, source []byte) string {
	pathNode := node.ChildByFieldName("path")
	if pathNode == nil {
		for i := uint(0); i < node.ChildCount(); i++ {
			child := node.Child(i)
			if child != nil && child.Kind() == "interpreted_string_literal" {
				pathNode = child
				break
			}
		}
	}
	if pathNode == nil {
		return ""
	}
	return strings.Trim(pathNode.Utf8Text(source), `"`)
}
