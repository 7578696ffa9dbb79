package main

import (
	"context"
	"flag"
	"os/signal"
	"syscall"

	"github.com/dusk-indust/depscope/internal/config"
	"github.com/dusk-indust/depscope/internal/mcptools"
	"github.com/dusk-indust/depscope/internal/snapshot"
)

func runServe(args []string) error {
	fs := flag.NewFlagSet("depscope serve", flag.ContinueOnError)
	root := fs.String("root", ".", "path to the project root")
	addr := fs.String("addr", "", "listen address (default :8410)")
	kuzuPath := fs.String("kuzu", "", "persist the graph in a KuzuDB at this path instead of in memory")
	verbose := fs.Bool("verbose", false, "enable verbose output")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(*root)
	if err != nil {
		return err
	}
	log := newLogger(*verbose || cfg.Verbose)

	listen := *addr
	if listen == "" {
		listen = cfg.ServeAddr
	}
	if listen == "" {
		listen = ":8410"
	}

	dbPath := *kuzuPath
	if dbPath == "" {
		dbPath = cfg.KuzuPath
	}
	store, err := openStore(dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	snaps, err := snapshot.New(log)
	if err != nil {
		return err
	}

	svc := mcptools.NewService(newRegistry(log), store, snaps, log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.WithField("addr", listen).Info("serving MCP tools")
	return mcptools.RunServer(ctx, svc, listen)
}
