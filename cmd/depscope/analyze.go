package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/dusk-indust/depscope/internal/config"
	"github.com/dusk-indust/depscope/internal/graph"
	"github.com/dusk-indust/depscope/internal/project"
	"github.com/dusk-indust/depscope/internal/snapshot"
)

func runAnalyze(args []string) error {
	fs := flag.NewFlagSet("depscope analyze", flag.ContinueOnError)
	root := fs.String("root", ".", "path to the project root")
	out := fs.String("out", "", "snapshot output path (default: <root>/.depscope/graph.json)")
	noSnapshot := fs.Bool("no-snapshot", false, "skip writing the snapshot file")
	verbose := fs.Bool("verbose", false, "enable verbose output")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(*root)
	if err != nil {
		return err
	}
	log := newLogger(*verbose || cfg.Verbose)

	pt, err := project.Detect(*root)
	if err != nil {
		return fmt.Errorf("detect project: %w", err)
	}
	pt.ExcludeDirs = append(pt.ExcludeDirs, cfg.ExcludeDirs...)

	g, err := newRegistry(log).Parse(context.Background(), pt)
	if err != nil {
		return err
	}

	if !*noSnapshot {
		path := *out
		if path == "" {
			path = cfg.SnapshotPath
		}
		if path == "" {
			path = snapshot.DefaultPath(*root)
		}
		snaps, err := snapshot.New(log)
		if err != nil {
			return err
		}
		if err := snaps.Save(path, g); err != nil {
			return err
		}
	}

	metrics, err := graph.ComputeMetrics(g)
	var cycleErr *graph.CycleError
	if errors.As(err, &cycleErr) {
		fmt.Fprintf(os.Stdout, "%s (%s): %d nodes, %d edges, cycle detected: %v\n",
			g.Project, g.Language, metrics.NodeCount, metrics.EdgeCount, cycleErr.Nodes)
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "%s (%s): %d nodes, %d edges, max depth %d\n",
		g.Project, g.Language, metrics.NodeCount, metrics.EdgeCount, metrics.MaxDepth)
	return nil
}
