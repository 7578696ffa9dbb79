package extract

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/depscope/internal/deps"
	"github.com/dusk-indust/depscope/internal/project"
)

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

// fixtureProject builds a project.Type pointing at a fixture tree under
// testdata/fixtures.
func fixtureProject(t *testing.T, name string, lang project.Language) *project.Type {
	t.Helper()
	root, err := filepath.Abs(filepath.Join("..", "..", "testdata", "fixtures", name))
	require.NoError(t, err)
	return &project.Type{Name: name, Language: lang, RootPath: root}
}

// findSymbol returns the symbol with the given id, or nil.
func findSymbol(symbols []deps.Symbol, id string) *deps.Symbol {
	for i := range symbols {
		if symbols[i].ID == id {
			return &symbols[i]
		}
	}
	return nil
}

// findRelation returns the first relation of the given kind and target on
// sym, or nil.
func findRelation(sym *deps.Symbol, kind deps.RelationKind, target string) *deps.Relation {
	for i := range sym.Relations {
		if sym.Relations[i].Kind == kind && sym.Relations[i].Target == target {
			return &sym.Relations[i]
		}
	}
	return nil
}

// requireSymbol fails the test when the symbol is missing.
func requireSymbol(t *testing.T, ext *deps.Extraction, id string) *deps.Symbol {
	t.Helper()
	sym := findSymbol(ext.Symbols, id)
	require.NotNil(t, sym, "symbol %s should be extracted", id)
	return sym
}

// assertLineRange checks that StartLine and EndLine are populated and valid.
func assertLineRange(t *testing.T, sym *deps.Symbol) {
	t.Helper()
	assert.Greater(t, sym.StartLine, 0, "StartLine should be > 0 for %s", sym.ID)
	assert.GreaterOrEqual(t, sym.EndLine, sym.StartLine, "StartLine <= EndLine for %s", sym.ID)
}

// ---------------------------------------------------------------------------
// Shared harness
// ---------------------------------------------------------------------------

func TestCollectSources_MissingRootIsFatal(t *testing.T) {
	pt := &project.Type{Name: "x", Language: project.LangJava, RootPath: filepath.Join(t.TempDir(), "missing")}
	_, err := collectSources(pt, []string{".java"}, "java")
	assert.Error(t, err)
}

func TestCollectSources_NoSourcesIsFatal(t *testing.T) {
	pt := &project.Type{Name: "x", Language: project.LangJava, RootPath: t.TempDir()}
	_, err := collectSources(pt, []string{".java"}, "java")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no java source files")
}

func TestCollectSources_SortedRelativePaths(t *testing.T) {
	pt := fixtureProject(t, "java_project", project.LangJava)
	files, err := collectSources(pt, []string{".java"}, "java")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"src/main/java/com/example/Animal.java",
		"src/main/java/com/example/Dog.java",
		"src/main/java/com/example/Pet.java",
		"src/main/java/com/example/util/Sound.java",
	}, files)
}

func TestExtract_MalformedFileSkippedWithDiagnostic(t *testing.T) {
	root := t.TempDir()
	appDir := filepath.Join(root, "app")
	require.NoError(t, os.MkdirAll(appDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(appDir, "good.py"),
		[]byte("class Good:\n    pass\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(appDir, "bad.py"),
		[]byte("def broken(:\n    ???\n"), 0o644))

	pt := &project.Type{Name: "brokenapp", Language: project.LangPython, RootPath: root}
	ext, err := NewPythonParser().Extract(context.Background(), pt)
	require.NoError(t, err, "one malformed file must not fail the run")

	require.Len(t, ext.Diagnostics, 1)
	assert.Equal(t, "app/bad.py", ext.Diagnostics[0].FilePath)
	assert.Equal(t, "syntax error", ext.Diagnostics[0].Message)

	requireSymbol(t, ext, "app.good")
	requireSymbol(t, ext, "app.good.Good")
	assert.Nil(t, findSymbol(ext.Symbols, "app.bad"), "malformed file contributes no symbols")
	for _, sym := range ext.Symbols {
		assert.NotEqual(t, "app/bad.py", sym.FilePath)
	}
}

func TestExtract_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	pt := fixtureProject(t, "java_project", project.LangJava)
	_, err := NewJavaParser().Extract(ctx, pt)
	assert.Error(t, err)
}

// ---------------------------------------------------------------------------
// CanHandle dispatch predicates
// ---------------------------------------------------------------------------

func TestParsers_CanHandle(t *testing.T) {
	javaProj := &project.Type{Language: project.LangJava}
	pyProj := &project.Type{Language: project.LangPython}
	tsProj := &project.Type{Language: project.LangTypeScript}
	goProj := &project.Type{Language: project.LangGo}
	rsProj := &project.Type{Language: project.LangRust}

	assert.True(t, NewJavaParser().CanHandle(javaProj))
	assert.False(t, NewJavaParser().CanHandle(pyProj))

	assert.True(t, NewPythonParser().CanHandle(pyProj))
	assert.False(t, NewPythonParser().CanHandle(tsProj))

	assert.True(t, NewTypeScriptParser().CanHandle(tsProj))
	assert.False(t, NewTypeScriptParser().CanHandle(goProj))

	assert.True(t, NewGoParser().CanHandle(goProj))
	assert.False(t, NewGoParser().CanHandle(rsProj))

	assert.True(t, NewRustParser().CanHandle(rsProj))
	assert.False(t, NewRustParser().CanHandle(javaProj))
}
