package main

import (
	"context"
	"flag"
	"os/signal"
	"syscall"
	"time"

	"github.com/dusk-indust/depscope/internal/config"
	"github.com/dusk-indust/depscope/internal/project"
	"github.com/dusk-indust/depscope/internal/snapshot"
	"github.com/dusk-indust/depscope/internal/watch"
)

func runWatch(args []string) error {
	fs := flag.NewFlagSet("depscope watch", flag.ContinueOnError)
	root := fs.String("root", ".", "path to the project root")
	out := fs.String("out", "", "snapshot output path (default: <root>/.depscope/graph.json)")
	debounceMs := fs.Int("debounce", 0, "debounce window in milliseconds (default 500)")
	verbose := fs.Bool("verbose", false, "enable verbose output")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(*root)
	if err != nil {
		return err
	}
	log := newLogger(*verbose || cfg.Verbose)

	path := *out
	if path == "" {
		path = cfg.SnapshotPath
	}
	if path == "" {
		path = snapshot.DefaultPath(*root)
	}

	debounce := time.Duration(*debounceMs) * time.Millisecond
	if debounce <= 0 {
		debounce = cfg.Debounce()
	}

	reg := newRegistry(log)
	snaps, err := snapshot.New(log)
	if err != nil {
		return err
	}

	run := func(ctx context.Context) error {
		pt, err := project.Detect(*root)
		if err != nil {
			return err
		}
		pt.ExcludeDirs = append(pt.ExcludeDirs, cfg.ExcludeDirs...)
		g, err := reg.Parse(ctx, pt)
		if err != nil {
			return err
		}
		return snaps.Save(path, g)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	w := watch.New(*root, debounce, cfg.ExcludeDirs, run, log)
	if err := w.Run(ctx); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}
