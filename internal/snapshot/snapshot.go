// Package snapshot persists analysis results as JSON files and reads them
// back through a format-detecting decoder, so snapshots written by older
// releases keep loading.
package snapshot

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/sirupsen/logrus"

	"github.com/dusk-indust/depscope/internal/graph"
)

// cacheSize bounds the number of decoded snapshots kept in memory.
const cacheSize = 16

// entry is one cached decode, keyed by path and validated against the
// file's stat fingerprint.
type entry struct {
	modTime time.Time
	size    int64
	graph   *graph.Graph
}

// Store loads and saves graph snapshots. Decoded graphs are cached by path
// and invalidated when the file changes on disk.
type Store struct {
	cache *lru.Cache[string, entry]
	log   *logrus.Logger
}

// New creates a snapshot Store. A nil logger defaults to logrus.New().
func New(log *logrus.Logger) (*Store, error) {
	if log == nil {
		log = logrus.New()
	}
	cache, err := lru.New[string, entry](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("snapshot cache: %w", err)
	}
	return &Store{cache: cache, log: log}, nil
}

// DefaultPath returns the conventional snapshot location for a project root.
func DefaultPath(root string) string {
	return filepath.Join(root, ".depscope", "graph.json")
}

// Load reads and decodes the snapshot at path. Any of the supported
// persisted shapes decodes to a Graph; the raw shape is detected from the
// document structure, never from the file name.
func (s *Store) Load(path string) (*graph.Graph, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat snapshot: %w", err)
	}

	if cached, ok := s.cache.Get(path); ok {
		if cached.modTime.Equal(info.ModTime()) && cached.size == info.Size() {
			s.log.WithField("path", path).Debug("snapshot cache hit")
			return cached.graph, nil
		}
		s.cache.Remove(path)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	g, err := graph.Decode(raw)
	if err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", path, err)
	}

	s.cache.Add(path, entry{modTime: info.ModTime(), size: info.Size(), graph: g})
	s.log.WithFields(logrus.Fields{
		"path":  path,
		"nodes": len(g.Nodes),
		"edges": len(g.Edges),
	}).Debug("snapshot loaded")
	return g, nil
}

// Save writes the graph to path as indented JSON. The write goes through a
// temporary file in the same directory and a rename, so a concurrent reader
// never observes a partial snapshot.
func (s *Store) Save(path string, g *graph.Graph) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}

	data, err := json.MarshalIndent(g, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".graph-*.json")
	if err != nil {
		return fmt.Errorf("create snapshot temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close snapshot temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replace snapshot: %w", err)
	}

	s.cache.Remove(path)
	s.log.WithFields(logrus.Fields{
		"path":  path,
		"nodes": len(g.Nodes),
		"edges": len(g.Edges),
	}).Info("snapshot saved")
	return nil
}
