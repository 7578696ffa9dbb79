package extract

import (
	"context"
	"path"
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"

	"github.com/dusk-indust/depscope/internal/deps"
	"github.com/dusk-indust/depscope/internal/project"
)

// TypeScriptParser extracts module-level dependencies from TypeScript source
// trees. Modules are identified by their extension-less relative path;
// declarations within a module get ids of the form "module:Name".
//
// Relative import specifiers cannot be resolved until the full file set is
// known, so per-file extraction emits raw specifier targets and a resolver
// rewrites them during assembly.
type TypeScriptParser struct {
	lang *tree_sitter.Language
}

// NewTypeScriptParser creates a TypeScriptParser with the TSX grammar loaded,
// which parses both .ts and .tsx sources.
func NewTypeScriptParser() *TypeScriptParser {
	return &TypeScriptParser{lang: tree_sitter.NewLanguage(tree_sitter_typescript.LanguageTSX())}
}

// Language reports the language this parser extracts.
func (p *TypeScriptParser) Language() project.Language { return project.LangTypeScript }

// CanHandle is a pure predicate on the detected project language.
func (p *TypeScriptParser) CanHandle(pt *project.Type) bool {
	return pt.Language == project.LangTypeScript
}

// Extract walks the project's .ts/.tsx files and produces the intermediate
// representation.
func (p *TypeScriptParser) Extract(ctx context.Context, pt *project.Type) (*deps.Extraction, error) {
	files, err := collectSources(pt, []string{".ts", ".tsx"}, "typescript")
	if err != nil {
		return nil, err
	}

	chunks, err := parseFiles(ctx, p.lang, pt.RootPath, files, extractTSFile)
	if err != nil {
		return nil, err
	}

	modules := make(map[string]bool, len(files))
	for _, f := range files {
		modules[tsModulePath(f)] = true
	}

	return assemble(project.LangTypeScript, pt, chunks, tsResolver(modules)), nil
}

// tsModulePath strips the source extension: "src/app.ts" -> "src/app",
// "src/types.d.ts" -> "src/types".
func tsModulePath(relPath string) string {
	for _, ext := range []string{".d.ts", ".tsx", ".ts"} {
		if strings.HasSuffix(relPath, ext) {
			return strings.TrimSuffix(relPath, ext)
		}
	}
	return relPath
}

// tsResolver builds the deferred target resolver. Raw targets come in three
// shapes: "spec" (a whole-module import), "spec#Name" (a binding imported
// from spec), and "module:Name" (an already-local reference, passed through).
// Relative specs resolve against the importing module's directory, probing
// the bare path first and an index module second. Unresolvable relative
// specs are dropped; bare external specs are passed through for the
// converter to prune.
func tsResolver(modules map[string]bool) resolveFn {
	resolveSpec := func(sourceFile, spec string) (string, bool) {
		if !strings.HasPrefix(spec, ".") {
			return spec, false
		}
		base := path.Join(path.Dir(tsModulePath(sourceFile)), spec)
		if modules[base] {
			return base, true
		}
		if idx := base + "/index"; modules[idx] {
			return idx, true
		}
		return "", false
	}

	return func(sourceFile string, rel deps.Relation) deps.Relation {
		if strings.Contains(rel.Target, ":") {
			return rel
		}
		if spec, name, found := strings.Cut(rel.Target, "#"); found {
			resolved, ok := resolveSpec(sourceFile, spec)
			if !ok {
				if strings.HasPrefix(spec, ".") {
					rel.Target = ""
					return rel
				}
				// External binding: keep the package spec so the relation
				// prunes consistently with plain imports.
				rel.Target = spec
				return rel
			}
			rel.Target = resolved + ":" + name
			return rel
		}
		resolved, ok := resolveSpec(sourceFile, rel.Target)
		if ok {
			rel.Target = resolved
		} else if strings.HasPrefix(rel.Target, ".") {
			rel.Target = ""
		}
		return rel
	}
}

// tsFile holds per-file context: the module id plus bindings from imports,
// mapping local names to raw "spec#Name" targets.
type tsFile struct {
	module  string
	relPath string
	aliases map[string]string
}

func extractTSFile(root *tree_sitter.Node, source []byte, relPath string) []deps.Symbol {
	file := &tsFile{
		module:  tsModulePath(relPath),
		relPath: relPath,
		aliases: make(map[string]string),
	}

	moduleSym := deps.Symbol{
		ID:        file.module,
		Title:     path.Base(file.module),
		Kind:      "module",
		FilePath:  relPath,
		StartLine: 1,
		EndLine:   countLines(source),
	}

	var decls []deps.Symbol
	importSeen := make(map[string]bool)

	for i := uint(0); i < root.ChildCount(); i++ {
		child := root.Child(i)
		if child == nil {
			continue
		}
		tsTopLevel(child, source, file, &moduleSym, &decls, importSeen)
	}

	// Call and construction references anywhere in the file attach to the
	// module symbol.
	callSeen := make(map[string]bool)
	walkTree(root, func(n *tree_sitter.Node) {
		switch n.Kind() {
		case "call_expression":
			fnNode := n.ChildByFieldName("function")
			if fnNode == nil || fnNode.Kind() != "identifier" {
				return
			}
			target := file.ref(fnNode.Utf8Text(source))
			if target == "" || callSeen[target] {
				return
			}
			callSeen[target] = true
			moduleSym.Relations = append(moduleSym.Relations, deps.Relation{
				Kind:   deps.RelationCalls,
				Target: target,
			})
		case "new_expression":
			ctorNode := n.ChildByFieldName("constructor")
			if ctorNode == nil || ctorNode.Kind() != "identifier" {
				return
			}
			target := file.ref(ctorNode.Utf8Text(source))
			if target == "" || callSeen[target] {
				return
			}
			callSeen[target] = true
			moduleSym.Relations = append(moduleSym.Relations, deps.Relation{
				Kind:   deps.RelationUses,
				Target: target,
			})
		}
	})

	symbols := []deps.Symbol{moduleSym}
	symbols = append(symbols, decls...)
	return symbols
}

// ref resolves a referenced identifier: imported bindings map to their raw
// "spec#Name" target, everything else is assumed local to the module. Only
// type-cased names resolve, which filters out builtin and local helper calls.
func (f *tsFile) ref(name string) string {
	if name == "" {
		return ""
	}
	if target, ok := f.aliases[name]; ok {
		return target
	}
	if !isUpperStart(name) {
		return ""
	}
	return f.module + ":" + name
}

func tsTopLevel(
	node *tree_sitter.Node,
	source []byte,
	file *tsFile,
	moduleSym *deps.Symbol,
	decls *[]deps.Symbol,
	importSeen map[string]bool,
) {
	switch node.Kind() {
	case "import_statement":
		spec := tsImportSource(node, source)
		if spec == "" {
			return
		}
		if !importSeen[spec] {
			importSeen[spec] = true
			moduleSym.Relations = append(moduleSym.Relations, deps.Relation{
				Kind:   deps.RelationImport,
				Target: spec,
			})
		}
		tsBindImports(node, source, file, spec)

	case "export_statement":
		// Re-exports carry a source; declarations exported inline are
		// handled by descending into the declared node.
		if spec := tsImportSource(node, source); spec != "" {
			if !importSeen[spec] {
				importSeen[spec] = true
				moduleSym.Relations = append(moduleSym.Relations, deps.Relation{
					Kind:   deps.RelationImport,
					Target: spec,
				})
			}
			return
		}
		if decl := node.ChildByFieldName("declaration"); decl != nil {
			tsTopLevel(decl, source, file, moduleSym, decls, importSeen)
		}

	case "class_declaration", "abstract_class_declaration":
		if sym := tsClass(node, source, file); sym != nil {
			*decls = append(*decls, *sym)
		}

	case "interface_declaration":
		if sym := tsInterface(node, source, file); sym != nil {
			*decls = append(*decls, *sym)
		}

	case "function_declaration":
		if sym := tsNamedDecl(node, source, file, "function"); sym != nil {
			*decls = append(*decls, *sym)
		}

	case "enum_declaration":
		if sym := tsNamedDecl(node, source, file, "enum"); sym != nil {
			*decls = append(*decls, *sym)
		}

	case "type_alias_declaration":
		if sym := tsNamedDecl(node, source, file, "type"); sym != nil {
			*decls = append(*decls, *sym)
		}
	}
}

// tsImportSource returns the unquoted module specifier of an import or
// re-export statement, or "" when the statement has no source.
func tsImportSource(node *tree_sitter.Node, source []byte) string {
	srcNode := node.ChildByFieldName("source")
	if srcNode == nil {
		return ""
	}
	return strings.Trim(srcNode.Utf8Text(source), `"'`)
}

// tsBindImports records local bindings introduced by an import statement:
// named imports bind to "spec#Name", default and namespace imports bind to
// the module itself.
func tsBindImports(node *tree_sitter.Node, source []byte, file *tsFile, spec string) {
	walkTree(node, func(n *tree_sitter.Node) {
		switch n.Kind() {
		case "import_specifier":
			nameNode := n.ChildByFieldName("name")
			if nameNode == nil {
				return
			}
			name := nameNode.Utf8Text(source)
			local := name
			if aliasNode := n.ChildByFieldName("alias"); aliasNode != nil {
				local = aliasNode.Utf8Text(source)
			}
			file.aliases[local] = spec + "#" + name
		case "namespace_import":
			for i := uint(0); i < n.ChildCount(); i++ {
				child := n.Child(i)
				if child != nil && child.Kind() == "identifier" {
					file.aliases[child.Utf8Text(source)] = spec
				}
			}
		case "import_clause":
			// A bare identifier directly under the clause is the default
			// import.
			for i := uint(0); i < n.ChildCount(); i++ {
				child := n.Child(i)
				if child != nil && child.Kind() == "identifier" {
					file.aliases[child.Utf8Text(source)] = spec
				}
			}
		}
	})
}

func tsClass(node *tree_sitter.Node, source []byte, file *tsFile) *deps.Symbol {
	sym := tsNamedDecl(node, source, file, "class")
	if sym == nil {
		return nil
	}

	walkTree(node, func(n *tree_sitter.Node) {
		switch n.Kind() {
		case "extends_clause":
			if value := n.ChildByFieldName("value"); value != nil && value.Kind() == "identifier" {
				tsAddHeritage(sym, deps.RelationExtends, file.ref(value.Utf8Text(source)))
			}
		case "implements_clause":
			for i := uint(0); i < n.ChildCount(); i++ {
				child := n.Child(i)
				if child != nil && child.Kind() == "type_identifier" {
					tsAddHeritage(sym, deps.RelationImplements, file.ref(child.Utf8Text(source)))
				}
			}
		}
	})
	return sym
}

func tsInterface(node *tree_sitter.Node, source []byte, file *tsFile) *deps.Symbol {
	sym := tsNamedDecl(node, source, file, "interface")
	if sym == nil {
		return nil
	}

	walkTree(node, func(n *tree_sitter.Node) {
		if n.Kind() != "extends_type_clause" {
			return
		}
		for i := uint(0); i < n.ChildCount(); i++ {
			child := n.Child(i)
			if child != nil && child.Kind() == "type_identifier" {
				tsAddHeritage(sym, deps.RelationExtends, file.ref(child.Utf8Text(source)))
			}
		}
	})
	return sym
}

func tsAddHeritage(sym *deps.Symbol, kind deps.RelationKind, target string) {
	if target == "" {
		return
	}
	sym.Relations = append(sym.Relations, deps.Relation{Kind: kind, Target: target})
}

func tsNamedDecl(node *tree_sitter.Node, source []byte, file *tsFile, kind string) *deps.Symbol {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}
	name := nameNode.Utf8Text(source)
	return &deps.Symbol{
		ID:        file.module + ":" + name,
		Title:     name,
		Kind:      kind,
		FilePath:  file.relPath,
		StartLine: int(node.StartPosition().Row) + 1,
		EndLine:   int(node.EndPosition().Row) + 1,
	}
}
