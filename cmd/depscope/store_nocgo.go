//go:build !cgo

package main

import (
	"fmt"

	"github.com/dusk-indust/depscope/internal/graph"
)

// openStore returns the in-memory store. KuzuDB persistence needs cgo.
func openStore(dbPath string) (graph.Store, error) {
	if dbPath != "" {
		return nil, fmt.Errorf("kuzu persistence requires a cgo-enabled build")
	}
	return graph.NewMemStore(), nil
}
