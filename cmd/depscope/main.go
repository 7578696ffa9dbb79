package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/dusk-indust/depscope/internal/extract"
	"github.com/dusk-indust/depscope/internal/registry"
)

// version is set by goreleaser at build time.
var version = "dev"

const usage = `usage: depscope <command> [flags]

commands:
  analyze   detect the project type, extract its dependency graph, and save a snapshot
  export    render a graph as mermaid or a JSON report
  serve     expose the analysis pipeline as MCP tools over HTTP
  watch     re-run analysis whenever project sources change
  version   print version and exit
`

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	if len(args) == 0 {
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("missing command")
	}

	switch args[0] {
	case "analyze":
		return runAnalyze(args[1:])
	case "export":
		return runExport(args[1:])
	case "serve":
		return runServe(args[1:])
	case "watch":
		return runWatch(args[1:])
	case "version", "-version", "--version":
		fmt.Println(version)
		return nil
	case "help", "-h", "--help":
		fmt.Print(usage)
		return nil
	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command: %s", args[0])
	}
}

// newLogger builds the process logger. Verbose mode enables debug output.
func newLogger(verbose bool) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	if verbose {
		log.SetLevel(logrus.DebugLevel)
	}
	return log
}

// newRegistry registers every language parser in dispatch order.
func newRegistry(log *logrus.Logger) *registry.Registry {
	reg := registry.New(log)
	reg.Register(extract.NewJavaParser())
	reg.Register(extract.NewPythonParser())
	reg.Register(extract.NewTypeScriptParser())
	reg.Register(extract.NewGoParser())
	reg.Register(extract.NewRustParser())
	return reg
}
