// Command shelfwright evaluates a .shelf description, generates the unit and
// prints what was built.
//
// Usage:
//
//	shelfwright build [flags] [file.shelf]   # generate and summarize a unit
//	shelfwright materials [-config file]     # list the material table
//	shelfwright version                      # print version information
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"text/tabwriter"

	"github.com/chazu/shelfwright/pkg/settings"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

// Injected at build time.
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "build":
		os.Exit(runBuild(os.Args[2:], os.Stdout))
	case "materials":
		os.Exit(runMaterials(os.Args[2:], os.Stdout))
	case "version":
		printVersion()
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func runBuild(args []string, out io.Writer) int {
	fs := flag.NewFlagSet("build", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to settings file")
	verbose := fs.Bool("v", false, "Debug logging")
	mesh := fs.Bool("mesh", false, "Tessellate every part")
	asJSON := fs.Bool("json", false, "Print the result as JSON")
	fs.Parse(args)

	s, err := loadSettings(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load settings: %v\n", err)
		return 1
	}
	if *verbose {
		s.Log.Level = "debug"
	}
	logger, err := s.Log.Logger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build logger: %v\n", err)
		return 1
	}
	defer logger.Sync()

	var source string
	if fs.NArg() > 0 {
		b, err := os.ReadFile(fs.Arg(0))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to read source: %v\n", err)
			return 1
		}
		source = string(b)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	app, err := NewApp(s, logger, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start: %v\n", err)
		return 1
	}
	defer app.Close()

	result := app.Evaluate(ctx, source, *mesh)
	logger.Debug("evaluation finished",
		zap.String("status", result.Status),
		zap.Int("parts", len(result.Parts)),
		zap.Int("errors", len(result.Errors)))

	if *asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to encode result: %v\n", err)
			return 1
		}
	} else {
		printSummary(out, result)
	}
	if len(result.Errors) > 0 {
		return 1
	}
	return 0
}

func runMaterials(args []string, out io.Writer) int {
	fs := flag.NewFlagSet("materials", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to settings file")
	fs.Parse(args)

	s, err := loadSettings(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load settings: %v\n", err)
		return 1
	}
	table := s.MaterialTable()
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tCOLOR\tROUGHNESS\tMETALNESS")
	for _, id := range table.IDs() {
		m := table[id]
		fmt.Fprintf(w, "%s\t%s\t%s\t%.2f\t%.2f\n", id, m.Name, m.Hex(), m.Roughness, m.Metalness)
	}
	w.Flush()
	return 0
}

func loadSettings(path string) (*settings.Settings, error) {
	loader := settings.NewLoader()
	if path != "" {
		loader = loader.WithConfigPath(path)
	}
	return loader.Load()
}

func printSummary(out io.Writer, r EvalResult) {
	for _, e := range r.Errors {
		switch {
		case e.Line > 0:
			fmt.Fprintf(out, "error: line %d: %s\n", e.Line, e.Message)
		case e.Field != "":
			fmt.Fprintf(out, "error: %s: %s\n", e.Field, e.Message)
		default:
			fmt.Fprintf(out, "error: %s\n", e.Message)
		}
	}
	if len(r.Parts) == 0 {
		return
	}

	fmt.Fprintf(out, "unit %s (%s)\n", r.GraphID, r.Fingerprint)
	counts := lo.CountValuesBy(r.Parts, func(p PartData) string { return p.Role })
	roles := lo.Keys(counts)
	sort.Strings(roles)
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ROLE\tPARTS")
	for _, role := range roles {
		fmt.Fprintf(w, "%s\t%d\n", role, counts[role])
	}
	if len(r.Lights) > 0 {
		fmt.Fprintf(w, "light\t%d\n", len(r.Lights))
	}
	w.Flush()

	fmt.Fprintf(out, "bounds min (%.2f, %.2f, %.2f) max (%.2f, %.2f, %.2f)\n",
		r.Bounds.Min[0], r.Bounds.Min[1], r.Bounds.Min[2],
		r.Bounds.Max[0], r.Bounds.Max[1], r.Bounds.Max[2])
	if r.Mesh != nil {
		fmt.Fprintf(out, "mesh %d parts, %d vertices, %d triangles, %d bytes\n",
			r.Mesh.Meshes, r.Mesh.Vertices, r.Mesh.Triangles, r.Mesh.Bytes)
	}
	for _, warn := range r.Warnings {
		fmt.Fprintf(out, "warning: %s: %s\n", warn.Field, warn.Message)
	}
}

func printUsage() {
	fmt.Println(`shelfwright - parametric shelving unit generator

Usage:
  shelfwright <command> [options]

Commands:
  build       Generate a unit from a .shelf file (or the configured defaults)
  materials   List the material table
  version     Show version information
  help        Show this help message

Build options:
  -config <path>   Path to settings file (mesh.kernel selects sdfx or manifold)
  -v               Debug logging
  -mesh            Tessellate every part
  -json            Print the result as JSON

Examples:
  shelfwright build examples/wardrobe.shelf
  shelfwright build -mesh -json examples/bookcase.shelf`)
}

func printVersion() {
	fmt.Printf("shelfwright %s\n", Version)
	fmt.Printf("  Build Time: %s\n", BuildTime)
	fmt.Printf("  Git Commit: %s\n", GitCommit)
}
