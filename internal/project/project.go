package project

import "errors"

// Language identifies a programming language for parsing.
type Language string

const (
	LangJava       Language = "java"
	LangPython     Language = "python"
	LangTypeScript Language = "typescript"
	LangGo         Language = "go"
	LangRust       Language = "rust"
)

// SupportedLanguages lists every language the analyzer ships a parser for,
// in detector precedence order.
var SupportedLanguages = []Language{LangJava, LangGo, LangRust, LangPython, LangTypeScript}

// ErrNoProject is returned by Detect when a root directory carries no
// recognizable language signature. Callers should treat it as "cannot
// proceed here", not as a fatal condition.
var ErrNoProject = errors.New("no supported project detected")

// Type describes a detected project: what it is called, what language it is
// written in, and where its sources live. A Type is created once by Detect
// and consumed read-only by parsers.
type Type struct {
	Name     string   `json:"name"`
	Language Language `json:"language"`
	RootPath string   `json:"rootPath"`

	// Markers are the manifest files that identified the language,
	// relative to RootPath. Empty when detection fell back to a source
	// file census.
	Markers []string `json:"markers,omitempty"`

	// SourceRoots are conventional source directories for the language
	// (e.g. src/main/java). Hints only; parsers walk the whole root.
	SourceRoots []string `json:"sourceRoots,omitempty"`

	// ExcludeDirs are extra directory names to skip during extraction,
	// merged from project configuration by the caller.
	ExcludeDirs []string `json:"excludeDirs,omitempty"`
}
