package extract

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/depscope/internal/deps"
	"github.com/dusk-indust/depscope/internal/project"
)

func javaExtraction(t *testing.T) *deps.Extraction {
	t.Helper()
	pt := fixtureProject(t, "java_project", project.LangJava)
	ext, err := NewJavaParser().Extract(context.Background(), pt)
	require.NoError(t, err)
	return ext
}

func TestJavaParser_Symbols(t *testing.T) {
	ext := javaExtraction(t)

	assert.Equal(t, project.LangJava, ext.Language)
	assert.Equal(t, "java_project", ext.Project)
	assert.Empty(t, ext.Diagnostics)

	animal := requireSymbol(t, ext, "com.example.Animal")
	assert.Equal(t, "interface", animal.Kind)
	assert.Equal(t, "Animal", animal.Title)
	assert.Equal(t, "src/main/java/com/example/Animal.java", animal.FilePath)
	assertLineRange(t, animal)

	dog := requireSymbol(t, ext, "com.example.Dog")
	assert.Equal(t, "class", dog.Kind)

	requireSymbol(t, ext, "com.example.Pet")
	requireSymbol(t, ext, "com.example.util.Sound")
}

func TestJavaParser_Relations(t *testing.T) {
	ext := javaExtraction(t)
	dog := requireSymbol(t, ext, "com.example.Dog")

	assert.NotNil(t, findRelation(dog, deps.RelationExtends, "com.example.Pet"),
		"Dog extends Pet via same-package qualification")
	assert.NotNil(t, findRelation(dog, deps.RelationImplements, "com.example.Animal"))
	assert.NotNil(t, findRelation(dog, deps.RelationImport, "com.example.util.Sound"))
	assert.NotNil(t, findRelation(dog, deps.RelationUses, "com.example.util.Sound"),
		"field of type Sound resolves through the import table")
	assert.NotNil(t, findRelation(dog, deps.RelationCalls, "com.example.util.Sound"),
		"static invocation Sound.bark() counts as a call")
}

func TestJavaParser_NoSelfRelations(t *testing.T) {
	ext := javaExtraction(t)
	for _, sym := range ext.Symbols {
		for _, rel := range sym.Relations {
			assert.NotEqual(t, sym.ID, rel.Target, "self relation on %s", sym.ID)
		}
	}
}
