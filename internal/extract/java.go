package extract

import (
	"context"
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_java "github.com/tree-sitter/tree-sitter-java/bindings/go"

	"github.com/dusk-indust/depscope/internal/deps"
	"github.com/dusk-indust/depscope/internal/project"
)

// JavaParser extracts type-level dependencies from Java source trees.
// Symbols are top-level classes, interfaces, enums, and records identified
// by their fully qualified names.
type JavaParser struct {
	lang *tree_sitter.Language
}

// NewJavaParser creates a JavaParser with the Java grammar loaded.
func NewJavaParser() *JavaParser {
	return &JavaParser{lang: tree_sitter.NewLanguage(tree_sitter_java.Language())}
}

// Language reports the language this parser extracts.
func (p *JavaParser) Language() project.Language { return project.LangJava }

// CanHandle is a pure predicate on the detected project language.
func (p *JavaParser) CanHandle(pt *project.Type) bool {
	return pt.Language == project.LangJava
}

// Extract walks the project's .java files and produces the intermediate
// representation. Relation targets are fully qualified during per-file
// extraction using the file's package and imports; cross-file pruning of
// external targets is left to the converter.
func (p *JavaParser) Extract(ctx context.Context, pt *project.Type) (*deps.Extraction, error) {
	files, err := collectSources(pt, []string{".java"}, "java")
	if err != nil {
		return nil, err
	}

	chunks, err := parseFiles(ctx, p.lang, pt.RootPath, files, extractJavaFile)
	if err != nil {
		return nil, err
	}

	return assemble(project.LangJava, pt, chunks, nil), nil
}

// javaFile accumulates per-file context needed to qualify simple names.
type javaFile struct {
	pkg     string
	imports []string          // fully qualified, declaration order
	byName  map[string]string // simple name -> fully qualified import
}

// qualify resolves a possibly-simple type name to a fully qualified one:
// dotted names pass through, imported names resolve via the import table,
// anything else is assumed to live in the file's own package.
func (f *javaFile) qualify(name string) string {
	if name == "" || strings.Contains(name, ".") {
		return name
	}
	if fq, ok := f.byName[name]; ok {
		return fq
	}
	if f.pkg != "" {
		return f.pkg + "." + name
	}
	return name
}

func extractJavaFile(root *tree_sitter.Node, source []byte, relPath string) []deps.Symbol {
	file := &javaFile{byName: make(map[string]string)}

	// First pass: package and imports, which every type in the file shares.
	for i := uint(0); i < root.ChildCount(); i++ {
		child := root.Child(i)
		if child == nil {
			continue
		}
		switch child.Kind() {
		case "package_declaration":
			file.pkg = javaDottedName(child, source)
		case "import_declaration":
			fq := javaDottedName(child, source)
			if fq == "" {
				continue
			}
			file.imports = append(file.imports, fq)
			if idx := strings.LastIndex(fq, "."); idx != -1 {
				file.byName[fq[idx+1:]] = fq
			}
		}
	}

	// Second pass: top-level type declarations.
	var symbols []deps.Symbol
	for i := uint(0); i < root.ChildCount(); i++ {
		child := root.Child(i)
		if child == nil {
			continue
		}
		if sym := extractJavaType(child, source, relPath, file); sym != nil {
			symbols = append(symbols, *sym)
		}
	}
	return symbols
}

// javaTypeKinds maps declaration node kinds to symbol kinds.
var javaTypeKinds = map[string]string{
	"class_declaration":      "class",
	"interface_declaration":  "interface",
	"enum_declaration":       "enum",
	"record_declaration":     "class",
	"annotation_declaration": "interface",
}

func extractJavaType(node *tree_sitter.Node, source []byte, relPath string, file *javaFile) *deps.Symbol {
	kind, ok := javaTypeKinds[node.Kind()]
	if !ok {
		return nil
	}
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}
	name := nameNode.Utf8Text(source)

	id := name
	if file.pkg != "" {
		id = file.pkg + "." + name
	}

	sym := &deps.Symbol{
		ID:        id,
		Title:     name,
		Kind:      kind,
		FilePath:  relPath,
		StartLine: int(node.StartPosition().Row) + 1,
		EndLine:   int(node.EndPosition().Row) + 1,
	}

	for _, imp := range file.imports {
		sym.Relations = append(sym.Relations, deps.Relation{Kind: deps.RelationImport, Target: imp})
	}

	if super := node.ChildByFieldName("superclass"); super != nil {
		if target := firstTypeName(super, source); target != "" {
			sym.Relations = append(sym.Relations, deps.Relation{
				Kind:   deps.RelationExtends,
				Target: file.qualify(target),
			})
		}
	}

	if ifaces := node.ChildByFieldName("interfaces"); ifaces != nil {
		for _, target := range listTypeNames(ifaces, source) {
			sym.Relations = append(sym.Relations, deps.Relation{
				Kind:   deps.RelationImplements,
				Target: file.qualify(target),
			})
		}
	}

	// Interfaces extend via a dedicated child, not a field.
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child != nil && child.Kind() == "extends_interfaces" {
			for _, target := range listTypeNames(child, source) {
				sym.Relations = append(sym.Relations, deps.Relation{
					Kind:   deps.RelationExtends,
					Target: file.qualify(target),
				})
			}
		}
	}

	collectJavaBodyRelations(node, source, file, sym)
	return sym
}

// collectJavaBodyRelations walks a type's body for usage and call
// references: field types and object creations become uses relations,
// static-looking method invocations become calls relations.
func collectJavaBodyRelations(node *tree_sitter.Node, source []byte, file *javaFile, sym *deps.Symbol) {
	usesSeen := make(map[string]bool)
	callsSeen := make(map[string]bool)

	walkTree(node, func(n *tree_sitter.Node) {
		switch n.Kind() {
		case "field_declaration":
			if typeNode := n.ChildByFieldName("type"); typeNode != nil {
				if target := firstTypeName(typeNode, source); target != "" {
					addJavaRelation(sym, deps.RelationUses, file.qualify(target), usesSeen)
				}
			}
		case "object_creation_expression":
			if typeNode := n.ChildByFieldName("type"); typeNode != nil {
				if target := firstTypeName(typeNode, source); target != "" {
					addJavaRelation(sym, deps.RelationUses, file.qualify(target), usesSeen)
				}
			}
		case "method_invocation":
			// Only receiver-typed invocations like Util.helper() resolve to
			// a type; instance calls are skipped.
			obj := n.ChildByFieldName("object")
			if obj == nil || obj.Kind() != "identifier" {
				return
			}
			receiver := obj.Utf8Text(source)
			if receiver == "" || !isUpperStart(receiver) {
				return
			}
			addJavaRelation(sym, deps.RelationCalls, file.qualify(receiver), callsSeen)
		}
	})
}

func addJavaRelation(sym *deps.Symbol, kind deps.RelationKind, target string, seen map[string]bool) {
	if target == "" || target == sym.ID || seen[target] {
		return
	}
	seen[target] = true
	sym.Relations = append(sym.Relations, deps.Relation{Kind: kind, Target: target})
}

// javaDottedName returns the text of the first dotted or plain identifier
// beneath node (package and import declarations).
func javaDottedName(node *tree_sitter.Node, source []byte) string {
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child == nil {
			continue
		}
		switch child.Kind() {
		case "scoped_identifier", "identifier":
			return child.Utf8Text(source)
		}
	}
	return ""
}

// firstTypeName returns the first type identifier beneath node, with any
// generic arguments stripped.
func firstTypeName(node *tree_sitter.Node, source []byte) string {
	var found string
	walkTree(node, func(n *tree_sitter.Node) {
		if found != "" {
			return
		}
		switch n.Kind() {
		case "type_identifier", "scoped_type_identifier":
			found = n.Utf8Text(source)
		}
	})
	if idx := strings.Index(found, "<"); idx != -1 {
		found = found[:idx]
	}
	return found
}

// listTypeNames returns every top-level type name in an interface list
// (super_interfaces, extends_interfaces).
func listTypeNames(node *tree_sitter.Node, source []byte) []string {
	var names []string
	walkTree(node, func(n *tree_sitter.Node) {
		switch n.Kind() {
		case "type_identifier", "scoped_type_identifier":
			// Skip names nested inside generic arguments or a larger
			// scoped name; only the list's own entries count.
			parent := n.Parent()
			if parent != nil && (parent.Kind() == "scoped_type_identifier" || parent.Kind() == "type_arguments") {
				return
			}
			text := n.Utf8Text(source)
			if idx := strings.Index(text, "<"); idx != -1 {
				text = text[:idx]
			}
			names = append(names, text)
		}
	})
	return names
}

func isUpperStart(s string) bool {
	return s != "" && s[0] >= 'A' && s[0] <= 'Z'
}
