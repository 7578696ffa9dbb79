//go:build cgo

package main

import (
	"github.com/dusk-indust/depscope/internal/graph"
)

// openStore returns a KuzuDB-backed store when a database path is given,
// otherwise the in-memory store.
func openStore(dbPath string) (graph.Store, error) {
	if dbPath == "" {
		return graph.NewMemStore(), nil
	}
	return graph.NewKuzuFileStore(dbPath)
}
