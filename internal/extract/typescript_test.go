package extract

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/depscope/internal/deps"
	"github.com/dusk-indust/depscope/internal/project"
)

func TestTSModulePath(t *testing.T) {
	tests := []struct {
		relPath string
		want    string
	}{
		{"src/app.ts", "src/app"},
		{"src/view.tsx", "src/view"},
		{"src/types.d.ts", "src/types"},
		{"index.ts", "index"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tsModulePath(tt.relPath), tt.relPath)
	}
}

func TestTSResolver(t *testing.T) {
	modules := map[string]bool{
		"src/models":    true,
		"src/lib/index": true,
		"src/service":   true,
	}
	resolve := tsResolver(modules)

	// Relative module import.
	rel := resolve("src/service.ts", deps.Relation{Kind: deps.RelationImport, Target: "./models"})
	assert.Equal(t, "src/models", rel.Target)

	// Directory import falls back to the index module.
	rel = resolve("src/service.ts", deps.Relation{Kind: deps.RelationImport, Target: "./lib"})
	assert.Equal(t, "src/lib/index", rel.Target)

	// Named binding resolves to a local symbol id.
	rel = resolve("src/service.ts", deps.Relation{Kind: deps.RelationUses, Target: "./models#User"})
	assert.Equal(t, "src/models:User", rel.Target)

	// Unresolvable relative specifier drops.
	rel = resolve("src/service.ts", deps.Relation{Kind: deps.RelationImport, Target: "./missing"})
	assert.Empty(t, rel.Target)

	// External package passes through for converter pruning.
	rel = resolve("src/service.ts", deps.Relation{Kind: deps.RelationImport, Target: "react"})
	assert.Equal(t, "react", rel.Target)

	// External binding collapses to its package spec.
	rel = resolve("src/service.ts", deps.Relation{Kind: deps.RelationUses, Target: "react#useState"})
	assert.Equal(t, "react", rel.Target)

	// Local references pass through untouched.
	rel = resolve("src/service.ts", deps.Relation{Kind: deps.RelationCalls, Target: "src/service:helper"})
	assert.Equal(t, "src/service:helper", rel.Target)
}

func tsExtraction(t *testing.T) *deps.Extraction {
	t.Helper()
	pt := fixtureProject(t, "ts_project", project.LangTypeScript)
	ext, err := NewTypeScriptParser().Extract(context.Background(), pt)
	require.NoError(t, err)
	return ext
}

func TestTypeScriptParser_Symbols(t *testing.T) {
	ext := tsExtraction(t)
	assert.Empty(t, ext.Diagnostics)

	requireSymbol(t, ext, "src/index")
	requireSymbol(t, ext, "src/models")
	requireSymbol(t, ext, "src/service")

	base := requireSymbol(t, ext, "src/models:Base")
	assert.Equal(t, "class", base.Kind)
	assertLineRange(t, base)

	requireSymbol(t, ext, "src/models:User")

	svc := requireSymbol(t, ext, "src/service:UserService")
	assert.Equal(t, "class", svc.Kind)
}

func TestTypeScriptParser_Relations(t *testing.T) {
	ext := tsExtraction(t)

	user := requireSymbol(t, ext, "src/models:User")
	assert.NotNil(t, findRelation(user, deps.RelationExtends, "src/models:Base"))

	service := requireSymbol(t, ext, "src/service")
	assert.NotNil(t, findRelation(service, deps.RelationImport, "src/models"),
		"relative import resolves to the sibling module")
	assert.NotNil(t, findRelation(service, deps.RelationUses, "src/models:User"),
		"new User() resolves through the named import")

	index := requireSymbol(t, ext, "src/index")
	assert.NotNil(t, findRelation(index, deps.RelationImport, "src/service"))
	assert.NotNil(t, findRelation(index, deps.RelationUses, "src/service:UserService"))
}
