package project

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeFiles creates the named files (with parent dirs) under a fresh temp
// root and returns the root.
func writeFiles(t *testing.T, paths ...string) string {
	t.Helper()
	root := t.TempDir()
	for _, p := range paths {
		full := filepath.Join(root, filepath.FromSlash(p))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte("x"), 0o644))
	}
	return root
}

func TestDetect_ManifestPerLanguage(t *testing.T) {
	tests := []struct {
		name     string
		manifest string
		want     Language
	}{
		{"maven", "pom.xml", LangJava},
		{"gradle", "build.gradle", LangJava},
		{"gradle kotlin", "build.gradle.kts", LangJava},
		{"go module", "go.mod", LangGo},
		{"cargo", "Cargo.toml", LangRust},
		{"pyproject", "pyproject.toml", LangPython},
		{"setup.py", "setup.py", LangPython},
		{"requirements", "requirements.txt", LangPython},
		{"django", "manage.py", LangPython},
		{"tsconfig", "tsconfig.json", LangTypeScript},
		{"package.json", "package.json", LangTypeScript},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := writeFiles(t, tt.manifest)
			pt, err := Detect(root)
			require.NoError(t, err)
			assert.Equal(t, tt.want, pt.Language)
			assert.Contains(t, pt.Markers, tt.manifest)
			assert.Equal(t, filepath.Base(root), pt.Name)
		})
	}
}

func TestDetect_PrecedenceWhenAmbiguous(t *testing.T) {
	// A Maven project with a helper package.json is still a Java project.
	root := writeFiles(t, "pom.xml", "package.json")
	pt, err := Detect(root)
	require.NoError(t, err)
	assert.Equal(t, LangJava, pt.Language)

	// go.mod beats the Python manifests.
	root = writeFiles(t, "go.mod", "requirements.txt")
	pt, err = Detect(root)
	require.NoError(t, err)
	assert.Equal(t, LangGo, pt.Language)
}

func TestDetect_CensusFallback(t *testing.T) {
	root := writeFiles(t,
		"src/a.py",
		"src/b.py",
		"src/c.py",
		"notes.ts",
	)
	pt, err := Detect(root)
	require.NoError(t, err)
	assert.Equal(t, LangPython, pt.Language)
	assert.Empty(t, pt.Markers)
}

func TestDetect_CensusTieBreaksByPrecedence(t *testing.T) {
	// One Java file and one Python file: Java wins the tie.
	root := writeFiles(t, "A.java", "a.py")
	pt, err := Detect(root)
	require.NoError(t, err)
	assert.Equal(t, LangJava, pt.Language)
}

func TestDetect_NoProject(t *testing.T) {
	root := writeFiles(t, "README.md")
	_, err := Detect(root)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoProject))
}

func TestDetect_RootMissing(t *testing.T) {
	_, err := Detect(filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrNoProject), "unreadable root is fatal, not a detection miss")
}

func TestDetect_RootIsFile(t *testing.T) {
	root := writeFiles(t, "go.mod")
	_, err := Detect(filepath.Join(root, "go.mod"))
	assert.Error(t, err)
}

func TestDetect_AbsoluteRootPath(t *testing.T) {
	root := writeFiles(t, "go.mod")
	pt, err := Detect(root)
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(pt.RootPath))
}
