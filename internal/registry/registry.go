// Package registry holds the parser contract and the ordered parser
// registry that dispatches analysis runs by project type.
package registry

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/dusk-indust/depscope/internal/deps"
	"github.com/dusk-indust/depscope/internal/graph"
	"github.com/dusk-indust/depscope/internal/project"
)

// ErrNoParser is returned when no registered parser claims a project type.
var ErrNoParser = errors.New("no parser registered for project type")

// Parser is the capability set one language implementation provides.
// CanHandle must be a pure predicate with no I/O; Extract walks the project
// sources and produces the language-specific intermediate representation.
// Parsers never build Graph nodes or edges themselves: normalization stays
// centralized in the converter, which the Registry applies after Extract.
type Parser interface {
	Language() project.Language
	CanHandle(pt *project.Type) bool
	Extract(ctx context.Context, pt *project.Type) (*deps.Extraction, error)
}

// Registry keeps parsers in registration order. When two parsers could both
// claim a project type, the earliest registered wins, so registration order
// is part of the observable contract.
type Registry struct {
	mu      sync.RWMutex
	parsers []Parser
	log     *logrus.Logger
}

// New creates an empty Registry. A nil logger defaults to logrus.New().
func New(log *logrus.Logger) *Registry {
	if log == nil {
		log = logrus.New()
	}
	return &Registry{log: log}
}

// Register appends a parser to the dispatch list.
func (r *Registry) Register(p Parser) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.parsers = append(r.parsers, p)
}

// ParserFor returns the first registered parser whose CanHandle matches, or
// nil when none does.
func (r *Registry) ParserFor(pt *project.Type) Parser {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.parsers {
		if p.CanHandle(pt) {
			return p
		}
	}
	return nil
}

// Parse resolves a parser for the project type, runs its extraction step,
// and converts the result into the standardized Graph. Elapsed wall-time is
// logged as structured fields; instrumentation never alters the result or
// error semantics of the delegate.
func (r *Registry) Parse(ctx context.Context, pt *project.Type) (*graph.Graph, error) {
	p := r.ParserFor(pt)
	if p == nil {
		return nil, fmt.Errorf("%w: %s (%s)", ErrNoParser, pt.Name, pt.Language)
	}

	start := time.Now()
	ext, err := p.Extract(ctx, pt)
	elapsed := time.Since(start)

	fields := logrus.Fields{
		"project":    pt.Name,
		"language":   p.Language(),
		"durationMs": elapsed.Milliseconds(),
	}
	if err != nil {
		r.log.WithFields(fields).WithError(err).Warn("parse failed")
		return nil, err
	}

	g := graph.Convert(ext)

	fields["symbols"] = len(ext.Symbols)
	fields["nodes"] = len(g.Nodes)
	fields["edges"] = len(g.Edges)
	fields["diagnostics"] = len(ext.Diagnostics)
	r.log.WithFields(fields).Info("parse complete")

	for _, d := range ext.Diagnostics {
		r.log.WithFields(logrus.Fields{
			"file":   d.FilePath,
			"detail": d.Message,
		}).Warn("file skipped during extraction")
	}

	return g, nil
}
