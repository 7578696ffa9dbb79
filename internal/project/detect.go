package project

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// marker associates a language with the build manifests that identify it and
// the conventional source roots for that language.
type marker struct {
	lang        Language
	manifests   []string
	sourceRoots []string
	extensions  []string
}

// markerOrder is the detection precedence. When a root carries manifests for
// more than one language, the earliest entry here wins: Java build files
// beat go.mod, which beats Cargo.toml, then Python manifests, then
// TypeScript ones. package.json is last because it shows up in many
// polyglot repositories that are not primarily TypeScript projects.
var markerOrder = []marker{
	{LangJava, []string{"pom.xml", "build.gradle", "build.gradle.kts"}, []string{"src/main/java", "src"}, []string{".java"}},
	{LangGo, []string{"go.mod"}, nil, []string{".go"}},
	{LangRust, []string{"Cargo.toml"}, []string{"src"}, []string{".rs"}},
	{LangPython, []string{"pyproject.toml", "setup.py", "requirements.txt", "manage.py"}, nil, []string{".py"}},
	{LangTypeScript, []string{"tsconfig.json", "package.json"}, []string{"src"}, []string{".ts", ".tsx", ".js", ".jsx"}},
}

// censusMaxDepth bounds the fallback source-file scan.
const censusMaxDepth = 4

// Detect inspects root and returns the ProjectType describing it. Detection
// is manifest-first: the first marker in precedence order whose manifest
// exists at the root wins. When no manifest is present, Detect falls back to
// counting source files by extension (bounded depth) and picks the language
// with the most files, breaking ties by the same precedence order.
//
// Returns ErrNoProject when neither pass finds a supported language.
func Detect(root string) (*Type, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve root: %w", err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("inspect root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("root is not a directory: %s", abs)
	}

	for _, m := range markerOrder {
		var found []string
		for _, manifest := range m.manifests {
			if _, err := os.Stat(filepath.Join(abs, manifest)); err == nil {
				found = append(found, manifest)
			}
		}
		if len(found) > 0 {
			return &Type{
				Name:        filepath.Base(abs),
				Language:    m.lang,
				RootPath:    abs,
				Markers:     found,
				SourceRoots: m.sourceRoots,
			}, nil
		}
	}

	lang, ok := censusLanguage(abs)
	if !ok {
		return nil, fmt.Errorf("%w at %s", ErrNoProject, abs)
	}

	for _, m := range markerOrder {
		if m.lang == lang {
			return &Type{
				Name:        filepath.Base(abs),
				Language:    lang,
				RootPath:    abs,
				SourceRoots: m.sourceRoots,
			}, nil
		}
	}
	return nil, fmt.Errorf("%w at %s", ErrNoProject, abs)
}

// censusLanguage counts source files by extension under root and returns the
// language with the highest count. Ties break by markerOrder precedence.
func censusLanguage(root string) (Language, bool) {
	extLang := make(map[string]Language)
	for _, m := range markerOrder {
		for _, ext := range m.extensions {
			extLang[ext] = m.lang
		}
	}

	counts := make(map[Language]int)
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // skip inaccessible paths
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return nil
		}
		if d.IsDir() {
			name := d.Name()
			if path != root && (strings.HasPrefix(name, ".") || skipDirs[name]) {
				return filepath.SkipDir
			}
			if strings.Count(rel, string(filepath.Separator)) >= censusMaxDepth {
				return filepath.SkipDir
			}
			return nil
		}
		if lang, ok := extLang[filepath.Ext(path)]; ok {
			counts[lang]++
		}
		return nil
	})

	best := Language("")
	bestCount := 0
	for _, m := range markerOrder {
		if c := counts[m.lang]; c > bestCount {
			best = m.lang
			bestCount = c
		}
	}
	return best, bestCount > 0
}

// skipDirs are directory names never scanned during the census.
var skipDirs = map[string]bool{
	"node_modules": true,
	"vendor":       true,
	"target":       true,
	"build":        true,
	"dist":         true,
	"out":          true,
	"__pycache__":  true,
	"venv":         true,
}
