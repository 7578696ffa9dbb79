package registry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/depscope/internal/deps"
	"github.com/dusk-indust/depscope/internal/project"
)

// fakeParser is a scriptable Parser for dispatch tests.
type fakeParser struct {
	lang    project.Language
	handles bool
	ext     *deps.Extraction
	err     error
	calls   int
}

func (f *fakeParser) Language() project.Language     { return f.lang }
func (f *fakeParser) CanHandle(_ *project.Type) bool { return f.handles }
func (f *fakeParser) Extract(_ context.Context, pt *project.Type) (*deps.Extraction, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if f.ext != nil {
		return f.ext, nil
	}
	return &deps.Extraction{Language: f.lang, Project: pt.Name}, nil
}

func testProject() *project.Type {
	return &project.Type{Name: "demo", Language: project.LangJava, RootPath: "/tmp/demo"}
}

func TestRegistry_ParserForFirstMatchWins(t *testing.T) {
	first := &fakeParser{lang: project.LangJava, handles: true}
	second := &fakeParser{lang: project.LangJava, handles: true}

	reg := New(nil)
	reg.Register(first)
	reg.Register(second)

	got := reg.ParserFor(testProject())
	assert.Same(t, first, got)
}

func TestRegistry_ParserForSkipsNonMatching(t *testing.T) {
	miss := &fakeParser{lang: project.LangPython, handles: false}
	hit := &fakeParser{lang: project.LangJava, handles: true}

	reg := New(nil)
	reg.Register(miss)
	reg.Register(hit)

	got := reg.ParserFor(testProject())
	assert.Same(t, hit, got)
}

func TestRegistry_ParseNoParser(t *testing.T) {
	reg := New(nil)
	reg.Register(&fakeParser{lang: project.LangPython, handles: false})

	_, err := reg.Parse(context.Background(), testProject())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoParser))
}

func TestRegistry_ParseConverts(t *testing.T) {
	p := &fakeParser{
		lang:    project.LangJava,
		handles: true,
		ext: &deps.Extraction{
			Language: project.LangJava,
			Project:  "demo",
			Symbols: []deps.Symbol{
				{ID: "a", Title: "a", Kind: "class", Relations: []deps.Relation{
					{Kind: deps.RelationExtends, Target: "b"},
					{Kind: deps.RelationImport, Target: "java.util.List"},
				}},
				{ID: "b", Title: "b", Kind: "class"},
			},
		},
	}

	reg := New(nil)
	reg.Register(p)

	g, err := reg.Parse(context.Background(), testProject())
	require.NoError(t, err)
	assert.Equal(t, 1, p.calls)
	assert.Len(t, g.Nodes, 2)
	require.Len(t, g.Edges, 1, "dangling import edge pruned during conversion")
	assert.Equal(t, "b", g.Edges[0].Target)
}

func TestRegistry_ParseSucceedsWithDiagnostics(t *testing.T) {
	p := &fakeParser{
		lang:    project.LangJava,
		handles: true,
		ext: &deps.Extraction{
			Language: project.LangJava,
			Project:  "demo",
			Symbols: []deps.Symbol{
				{ID: "a", Title: "a", Kind: "class"},
			},
			Diagnostics: []deps.Diagnostic{
				{FilePath: "src/Broken.java", Message: "syntax error"},
			},
		},
	}

	reg := New(nil)
	reg.Register(p)

	g, err := reg.Parse(context.Background(), testProject())
	require.NoError(t, err, "skipped files are diagnostics, not run failures")
	assert.Len(t, g.Nodes, 1)
}

func TestRegistry_ParsePropagatesError(t *testing.T) {
	wantErr := errors.New("boom")
	p := &fakeParser{lang: project.LangJava, handles: true, err: wantErr}

	reg := New(nil)
	reg.Register(p)

	_, err := reg.Parse(context.Background(), testProject())
	assert.True(t, errors.Is(err, wantErr), "delegate errors pass through unchanged")
}
