package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/dusk-indust/depscope/internal/config"
	"github.com/dusk-indust/depscope/internal/export"
	"github.com/dusk-indust/depscope/internal/snapshot"
)

func runExport(args []string) error {
	fs := flag.NewFlagSet("depscope export", flag.ContinueOnError)
	root := fs.String("root", ".", "path to the project root")
	in := fs.String("snapshot", "", "snapshot path to read (default: <root>/.depscope/graph.json)")
	format := fs.String("format", "json", "output format: json or mermaid")
	verbose := fs.Bool("verbose", false, "enable verbose output")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(*root)
	if err != nil {
		return err
	}
	log := newLogger(*verbose || cfg.Verbose)

	path := *in
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
	g, err := snaps.Load(path)
	if err != nil {
		return fmt.Errorf("load snapshot (run depscope analyze first): %w", err)
	}

	switch *format {
	case "mermaid":
		fmt.Fprint(os.Stdout, export.Mermaid(g))
		return nil
	case "json":
		data, err := export.JSON(export.BuildReport(g))
		if err != nil {
			return err
		}
		_, err = os.Stdout.Write(append(data, '\n'))
		return err
	default:
		return fmt.Errorf("unknown format: %s", *format)
	}
}
