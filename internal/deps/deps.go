// Package deps defines the language-specific intermediate representation
// that extraction produces and the converter consumes. The shape is shared
// structurally across languages; the values (symbol kinds, identifier
// schemes, relation targets) are language-specific and exist only
// transiently between extraction and conversion, or inside a persisted
// pre-conversion snapshot.
package deps

import "github.com/dusk-indust/depscope/internal/project"

// RelationKind classifies an outbound relation from one symbol to another.
type RelationKind string

const (
	RelationImport     RelationKind = "import"
	RelationExtends    RelationKind = "extends"
	RelationImplements RelationKind = "implements"
	RelationCalls      RelationKind = "calls"
	RelationUses       RelationKind = "uses"
)

// Relation is a directed, kind-tagged reference from the declaring symbol to
// the symbol identified by Target. Target may name a symbol outside the
// analyzed tree; the converter prunes such references.
type Relation struct {
	Kind   RelationKind `json:"kind"`
	Target string       `json:"target"`
}

// Symbol is one declared entity: a class, module, function, or similar.
// ID must be stable and unique within one extraction run.
type Symbol struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Kind      string     `json:"kind"`
	FilePath  string     `json:"filePath"`
	StartLine int        `json:"startLine,omitempty"`
	EndLine   int        `json:"endLine,omitempty"`
	Relations []Relation `json:"relations,omitempty"`
}

// Diagnostic records a recoverable per-file extraction problem. The run
// continues without the affected file.
type Diagnostic struct {
	FilePath string `json:"filePath"`
	Message  string `json:"message"`
}

// Extraction is the complete output of one parser run over one project.
type Extraction struct {
	Language    project.Language `json:"language"`
	Project     string           `json:"project"`
	Symbols     []Symbol         `json:"symbols"`
	Diagnostics []Diagnostic     `json:"diagnostics,omitempty"`
}
