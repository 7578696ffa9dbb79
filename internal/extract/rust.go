package extract

import (
	"context"
	"path"
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_rust "github.com/tree-sitter/tree-sitter-rust/bindings/go"

	"github.com/dusk-indust/depscope/internal/deps"
	"github.com/dusk-indust/depscope/internal/project"
)

// RustParser extracts file-level dependencies from Rust source trees. Every
// source file becomes a module symbol identified by its relative path;
// structs, enums, traits, type aliases, and functions get ids of the form
// "path:Name".
//
// Use declarations with crate::, self::, or super:: prefixes resolve to the
// declaring file within the repository; external crate paths stay raw and
// are pruned by the converter.
type RustParser struct {
	lang *tree_sitter.Language
}

// NewRustParser creates a RustParser with the Rust grammar loaded.
func NewRustParser() *RustParser {
	return &RustParser{lang: tree_sitter.NewLanguage(tree_sitter_rust.Language())}
}

// Language reports the language this parser extracts.
func (p *RustParser) Language() project.Language { return project.LangRust }

// CanHandle is a pure predicate on the detected project language.
func (p *RustParser) CanHandle(pt *project.Type) bool {
	return pt.Language == project.LangRust
}

// Extract walks the project's .rs files and produces the intermediate
// representation.
func (p *RustParser) Extract(ctx context.Context, pt *project.Type) (*deps.Extraction, error) {
	files, err := collectSources(pt, []string{".rs"}, "rust")
	if err != nil {
		return nil, err
	}

	chunks, err := parseFiles(ctx, p.lang, pt.RootPath, files, extractRustFile)
	if err != nil {
		return nil, err
	}

	return assemble(project.LangRust, pt, chunks, rustResolver(files)), nil
}

// rustResolver builds the deferred target resolver for crate-internal use
// paths and in-file "#Name" references.
func rustResolver(files []string) resolveFn {
	fileSet := make(map[string]bool, len(files))
	for _, f := range files {
		fileSet[f] = true
	}

	probe := func(base string) (string, bool) {
		for _, candidate := range []string{base + ".rs", base + "/mod.rs"} {
			if fileSet[candidate] {
				return candidate, true
			}
		}
		return "", false
	}

	return func(sourceFile string, rel deps.Relation) deps.Relation {
		if name, found := strings.CutPrefix(rel.Target, "#"); found {
			rel.Target = sourceFile + ":" + name
			return rel
		}
		if rel.Kind != deps.RelationImport {
			return rel
		}

		target := rel.Target
		// Strip use-list braces: "crate::model::{User, Repo}" -> "crate::model".
		if idx := strings.Index(target, "::{"); idx != -1 {
			target = target[:idx]
		}

		var base string
		switch {
		case strings.HasPrefix(target, "crate::"):
			modPath := strings.ReplaceAll(strings.TrimPrefix(target, "crate::"), "::", "/")
			// Conventional crate layout roots sources under src/.
			for _, candidate := range []string{path.Join("src", modPath), modPath, path.Join(crateRoot(sourceFile), modPath)} {
				if resolved, ok := probe(candidate); ok {
					rel.Target = resolved
					return rel
				}
			}
			return rel
		case strings.HasPrefix(target, "self::"):
			base = path.Join(path.Dir(sourceFile), strings.ReplaceAll(strings.TrimPrefix(target, "self::"), "::", "/"))
		case strings.HasPrefix(target, "super::"):
			base = path.Join(path.Dir(path.Dir(sourceFile)), strings.ReplaceAll(strings.TrimPrefix(target, "super::"), "::", "/"))
		default:
			return rel // external crate or std
		}

		if resolved, ok := probe(base); ok {
			rel.Target = resolved
		}
		return rel
	}
}

// crateRoot walks up from a file path to the nearest src directory, the
// conventional crate source root.
func crateRoot(filePath string) string {
	dir := path.Dir(filePath)
	for dir != "." && dir != "/" && dir != "" {
		if path.Base(dir) == "src" {
			return dir
		}
		dir = path.Dir(dir)
	}
	return ""
}

// rustDeclKinds maps item node kinds to symbol kinds.
var rustDeclKinds = map[string]string{
	"function_item": "function",
	"struct_item":   "struct",
	"enum_item":     "enum",
	"trait_item":    "trait",
	"type_item":     "type",
}

func extractRustFile(root *tree_sitter.Node, source []byte, relPath string) []deps.Symbol {
	fileSym := deps.Symbol{
		ID:        relPath,
		Title:     path.Base(relPath),
		Kind:      "module",
		FilePath:  relPath,
		StartLine: 1,
		EndLine:   countLines(source),
	}

	var decls []deps.Symbol
	declIndex := make(map[string]int)
	useSeen := make(map[string]bool)
	callSeen := make(map[string]bool)

	addDecl := func(sym deps.Symbol) {
		if _, exists := declIndex[sym.ID]; exists {
			return
		}
		declIndex[sym.ID] = len(decls)
		decls = append(decls, sym)
	}

	walkTree(root, func(n *tree_sitter.Node) {
		kind, isDecl := rustDeclKinds[n.Kind()]
		switch {
		case isDecl:
			// Functions inside impl blocks are methods of the impl type,
			// not standalone symbols.
			if n.Kind() == "function_item" && rustInsideImpl(n) {
				return
			}
			nameNode := n.ChildByFieldName("name")
			if nameNode == nil {
				return
			}
			name := nameNode.Utf8Text(source)
			addDecl(deps.Symbol{
				ID:        relPath + ":" + name,
				Title:     name,
				Kind:      kind,
				FilePath:  relPath,
				StartLine: int(n.StartPosition().Row) + 1,
				EndLine:   int(n.EndPosition().Row) + 1,
			})

		case n.Kind() == "use_declaration":
			target := rustUsePath(n, source)
			if target == "" || useSeen[target] {
				return
			}
			useSeen[target] = true
			fileSym.Relations = append(fileSym.Relations, deps.Relation{
				Kind:   deps.RelationImport,
				Target: target,
			})

		case n.Kind() == "impl_item":
			// "impl Trait for Type" links the type to the trait.
			traitNode := n.ChildByFieldName("trait")
			typeNode := n.ChildByFieldName("type")
			if traitNode == nil || typeNode == nil {
				return
			}
			traitName := rustBareTypeName(traitNode.Utf8Text(source))
			typeName := rustBareTypeName(typeNode.Utf8Text(source))
			if traitName == "" || typeName == "" {
				return
			}
			typeID := relPath + ":" + typeName
			idx, ok := declIndex[typeID]
			if !ok {
				addDecl(deps.Symbol{
					ID:        typeID,
					Title:     typeName,
					Kind:      "struct",
					FilePath:  relPath,
					StartLine: int(n.StartPosition().Row) + 1,
					EndLine:   int(n.EndPosition().Row) + 1,
				})
				idx = declIndex[typeID]
			}
			decls[idx].Relations = append(decls[idx].Relations, deps.Relation{
				Kind:   deps.RelationImplements,
				Target: relPath + ":" + traitName,
			})

		case n.Kind() == "call_expression":
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

// rustInsideImpl reports whether a node sits within an impl item body.
func rustInsideImpl(node *tree_sitter.Node) bool {
	for p := node.Parent(); p != nil; p = p.Parent() {
		if p.Kind() == "impl_item" {
			return true
		}
	}
	return false
}

// rustUsePath returns the argument text of a use declaration, or the raw
// declaration text stripped of keywords when the field is absent.
func rustUsePath(node *tree_sitter.Node, source []byte) string {
	if arg := node.ChildByFieldName("argument"); arg != nil {
		return arg.Utf8Text(source)
	}
	text := node.Utf8Text(source)
	text = strings.TrimPrefix(text, "use ")
	return strings.TrimSuffix(strings.TrimSpace(text), ";")
}

// rustBareTypeName strips generic arguments and any path prefix from a type
// or trait reference: "fmt::Display" -> "Display", "Vec<T>" -> "Vec".
func rustBareTypeName(s string) string {
	if idx := strings.Index(s, "<"); idx != -1 {
		s = s[:idx]
	}
	if idx := strings.LastIndex(s, "::"); idx != -1 {
		s = s[idx+2:]
	}
	return strings.TrimSpace(s)
}
