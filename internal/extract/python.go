package extract

import (
	"context"
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_python "github.com/tree-sitter/tree-sitter-python/bindings/go"

	"github.com/dusk-indust/depscope/internal/deps"
	"github.com/dusk-indust/depscope/internal/project"
)

// PythonParser extracts module-level dependencies from Python source trees.
// Every file becomes a module symbol named by its dotted path; top-level
// classes and functions become symbols qualified by that module.
type PythonParser struct {
	lang *tree_sitter.Language
}

// NewPythonParser creates a PythonParser with the Python grammar loaded.
func NewPythonParser() *PythonParser {
	return &PythonParser{lang: tree_sitter.NewLanguage(tree_sitter_python.Language())}
}

// Language reports the language this parser extracts.
func (p *PythonParser) Language() project.Language { return project.LangPython }

// CanHandle is a pure predicate on the detected project language.
func (p *PythonParser) CanHandle(pt *project.Type) bool {
	return pt.Language == project.LangPython
}

// Extract walks the project's .py files and produces the intermediate
// representation. Relative imports are resolved against each file's module
// path during extraction; absolute imports of external packages survive as
// raw targets for the converter to prune.
func (p *PythonParser) Extract(ctx context.Context, pt *project.Type) (*deps.Extraction, error) {
	files, err := collectSources(pt, []string{".py"}, "python")
	if err != nil {
		return nil, err
	}

	chunks, err := parseFiles(ctx, p.lang, pt.RootPath, files, extractPythonFile)
	if err != nil {
		return nil, err
	}

	return assemble(project.LangPython, pt, chunks, nil), nil
}

// pyModulePath converts a relative file path into a dotted module path:
// "app/models.py" -> "app.models", "app/__init__.py" -> "app".
func pyModulePath(relPath string) string {
	path := strings.TrimSuffix(relPath, ".py")
	path = strings.TrimSuffix(path, "/__init__")
	if path == "__init__" {
		return ""
	}
	return strings.ReplaceAll(path, "/", ".")
}

// pyFile holds per-file binding context for name resolution.
type pyFile struct {
	module  string
	relPath string
	aliases map[string]string // local name -> qualified target
}

// qualify resolves a referenced name: bound imports first, dotted names with
// a bound first segment next, then same-module qualification.
func (f *pyFile) qualify(name string) string {
	if name == "" {
		return ""
	}
	if target, ok := f.aliases[name]; ok {
		return target
	}
	if head, rest, found := strings.Cut(name, "."); found {
		if target, ok := f.aliases[head]; ok {
			return target + "." + rest
		}
		return name
	}
	if f.module != "" {
		return f.module + "." + name
	}
	return name
}

func extractPythonFile(root *tree_sitter.Node, source []byte, relPath string) []deps.Symbol {
	module := pyModulePath(relPath)
	if module == "" {
		module = strings.TrimSuffix(relPath, ".py")
	}
	file := &pyFile{module: module, relPath: relPath, aliases: make(map[string]string)}

	moduleSym := deps.Symbol{
		ID:        module,
		Title:     lastDotted(module),
		Kind:      "module",
		FilePath:  relPath,
		StartLine: 1,
		EndLine:   countLines(source),
	}

	var classes []deps.Symbol
	var functions []deps.Symbol
	importSeen := make(map[string]bool)
	callSeen := make(map[string]bool)

	for i := uint(0); i < root.ChildCount(); i++ {
		child := root.Child(i)
		if child == nil {
			continue
		}
		pyTopLevel(child, source, file, &moduleSym, &classes, &functions, importSeen)
	}

	// Module-level call references, wherever they appear in the file.
	walkTree(root, func(n *tree_sitter.Node) {
		if n.Kind() != "call" {
			return
		}
		fnNode := n.ChildByFieldName("function")
		if fnNode == nil {
			return
		}
		var callee string
		switch fnNode.Kind() {
		case "identifier", "attribute":
			callee = file.qualify(fnNode.Utf8Text(source))
		}
		if callee == "" || callSeen[callee] {
			return
		}
		callSeen[callee] = true
		moduleSym.Relations = append(moduleSym.Relations, deps.Relation{
			Kind:   deps.RelationCalls,
			Target: callee,
		})
	})

	symbols := []deps.Symbol{moduleSym}
	symbols = append(symbols, classes...)
	symbols = append(symbols, functions...)
	return symbols
}

// pyTopLevel handles one statement at module level.
func pyTopLevel(
	node *tree_sitter.Node,
	source []byte,
	file *pyFile,
	moduleSym *deps.Symbol,
	classes, functions *[]deps.Symbol,
	importSeen map[string]bool,
) {
	switch node.Kind() {
	case "import_statement":
		for _, target := range pyImportTargets(node, source, file) {
			addPyImport(moduleSym, target, importSeen)
		}

	case "import_from_statement":
		base := pyFromImportBase(node, source, file)
		if base == "" {
			return
		}
		addPyImport(moduleSym, base, importSeen)
		// Bind the imported names so base-class and call references
		// resolve to their defining module.
		for i := uint(0); i < node.ChildCount(); i++ {
			child := node.Child(i)
			if child == nil {
				continue
			}
			switch child.Kind() {
			case "dotted_name":
				// The module part also matches dotted_name; only bind
				// names after the "import" keyword.
				if !pyAfterImportKeyword(node, child, source) {
					continue
				}
				name := child.Utf8Text(source)
				file.aliases[name] = base + "." + name
			case "aliased_import":
				nameNode := child.ChildByFieldName("name")
				aliasNode := child.ChildByFieldName("alias")
				if nameNode == nil || aliasNode == nil {
					continue
				}
				file.aliases[aliasNode.Utf8Text(source)] = base + "." + nameNode.Utf8Text(source)
			}
		}

	case "class_definition":
		if sym := pyClass(node, source, file); sym != nil {
			*classes = append(*classes, *sym)
		}

	case "function_definition":
		if sym := pyFunction(node, source, file); sym != nil {
			*functions = append(*functions, *sym)
		}

	case "decorated_definition":
		for i := uint(0); i < node.ChildCount(); i++ {
			child := node.Child(i)
			if child == nil {
				continue
			}
			pyTopLevel(child, source, file, moduleSym, classes, functions, importSeen)
		}
	}
}

func addPyImport(moduleSym *deps.Symbol, target string, seen map[string]bool) {
	if target == "" || target == moduleSym.ID || seen[target] {
		return
	}
	seen[target] = true
	moduleSym.Relations = append(moduleSym.Relations, deps.Relation{
		Kind:   deps.RelationImport,
		Target: target,
	})
}

// pyImportTargets extracts module targets from "import a.b, c" statements,
// registering aliases for "import a.b as x".
func pyImportTargets(node *tree_sitter.Node, source []byte, file *pyFile) []string {
	var targets []string
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child == nil {
			continue
		}
		switch child.Kind() {
		case "dotted_name":
			name := child.Utf8Text(source)
			targets = append(targets, name)
			file.aliases[name] = name
		case "aliased_import":
			nameNode := child.ChildByFieldName("name")
			aliasNode := child.ChildByFieldName("alias")
			if nameNode == nil {
				continue
			}
			name := nameNode.Utf8Text(source)
			targets = append(targets, name)
			if aliasNode != nil {
				file.aliases[aliasNode.Utf8Text(source)] = name
			}
		}
	}
	return targets
}

// pyFromImportBase resolves the module part of a from-import, handling
// relative prefixes: one leading dot is the current package, each further
// dot walks one package up.
func pyFromImportBase(node *tree_sitter.Node, source []byte, file *pyFile) string {
	moduleNode := node.ChildByFieldName("module_name")
	if moduleNode == nil {
		return ""
	}
	raw := moduleNode.Utf8Text(source)

	dots := 0
	for _, c := range raw {
		if c != '.' {
			break
		}
		dots++
	}
	if dots == 0 {
		return raw
	}

	// Walk up from the current module: one dot keeps the package, each
	// extra dot strips one more segment.
	base := file.module
	for i := 0; i < dots; i++ {
		idx := strings.LastIndex(base, ".")
		if idx == -1 {
			base = ""
			break
		}
		base = base[:idx]
	}

	rest := raw[dots:]
	switch {
	case base == "":
		return rest
	case rest == "":
		return base
	default:
		return base + "." + rest
	}
}

// pyAfterImportKeyword reports whether child starts after the "import"
// keyword inside a from-import statement, distinguishing imported names
// from the module path.
func pyAfterImportKeyword(stmt, child *tree_sitter.Node, source []byte) bool {
	var importStart uint
	for i := uint(0); i < stmt.ChildCount(); i++ {
		c := stmt.Child(i)
		if c != nil && c.Kind() == "import" {
			importStart = c.StartByte()
			break
		}
	}
	return child.StartByte() > importStart && importStart > 0
}

func pyClass(node *tree_sitter.Node, source []byte, file *pyFile) *deps.Symbol {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}
	name := nameNode.Utf8Text(source)

	sym := &deps.Symbol{
		ID:        file.module + "." + name,
		Title:     name,
		Kind:      "class",
		FilePath:  file.relPath,
		StartLine: int(node.StartPosition().Row) + 1,
		EndLine:   int(node.EndPosition().Row) + 1,
	}

	if supers := node.ChildByFieldName("superclasses"); supers != nil {
		for i := uint(0); i < supers.ChildCount(); i++ {
			child := supers.Child(i)
			if child == nil {
				continue
			}
			switch child.Kind() {
			case "identifier", "attribute":
				target := file.qualify(child.Utf8Text(source))
				if target != "" {
					sym.Relations = append(sym.Relations, deps.Relation{
						Kind:   deps.RelationExtends,
						Target: target,
					})
				}
			}
		}
	}
	return sym
}

func pyFunction(node *tree_sitter.Node, source []byte, file *pyFile) *deps.Symbol {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}
	name := nameNode.Utf8Text(source)
	return &deps.Symbol{
		ID:        file.module + "." + name,
		Title:     name,
		Kind:      "function",
		FilePath:  file.relPath,
		StartLine: int(node.StartPosition().Row) + 1,
		EndLine:   int(node.EndPosition().Row) + 1,
	}
}

// lastDotted returns the final segment of a dotted path.
func lastDotted(path string) string {
	if idx := strings.LastIndex(path, "."); idx != -1 {
		return path[idx+1:]
	}
	return path
}
