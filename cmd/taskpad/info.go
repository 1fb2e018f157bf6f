// Package main is the entry point for the taskpad application.
// This file contains the info subcommand handler.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"taskpad/internal/app"
)

const infoHelpText = `taskpad info - Show task, filter, and storage statistics

USAGE:
    taskpad info [OPTIONS]

OPTIONS:
    -f, --format FORMAT  Output format: text or json (default: text)
    -h, --help           Show this help message

EXAMPLES:
    # Human-readable summary
    taskpad info

    # Machine-readable output
    taskpad info -f json
`

// runInfo handles the "taskpad info" subcommand.
func runInfo(args []string) {
	fs := flag.NewFlagSet("info", flag.ExitOnError)

	format := fs.String("format", "text", "output format: text or json")
	fs.StringVar(format, "f", "text", "output format (shorthand)")

	helpFlag := fs.Bool("help", false, "show help message")
	fs.BoolVar(helpFlag, "h", false, "show help message (shorthand)")

	fs.Usage = func() {
		fmt.Fprint(os.Stderr, infoHelpText)
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	if *helpFlag {
		fmt.Print(infoHelpText)
		os.Exit(0)
	}

	cfg, store := mustOpen()

	// Headless engine: hydrate through the normal repair path, no
	// watcher, no sample data on an empty store, and read-only so a
	// stats query never writes a snapshot back.
	engine := app.New(app.Options{
		Store:          store,
		Logger:         newLogger(cfg),
		SkipSampleData: true,
		ReadOnly:       true,
	})
	if err := engine.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading data: %v\n", err)
		os.Exit(1)
	}
	stats := engine.AppStats()
	if err := engine.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Error shutting down: %v\n", err)
	}

	switch *format {
	case "json":
		out, err := json.MarshalIndent(stats, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error serializing stats: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(string(out))

	case "text":
		printStats(stats)

	default:
		fmt.Fprintf(os.Stderr, "Error: unknown format %q (use text or json)\n", *format)
		os.Exit(1)
	}
}

// printStats renders the stats in a human-readable layout.
func printStats(stats app.Stats) {
	fmt.Println("Tasks:")
	fmt.Printf("  Total:     %d\n", stats.Tasks.Total)
	fmt.Printf("  Completed: %d (%d%%)\n", stats.Tasks.Completed, stats.Tasks.CompletionPercentage)
	fmt.Printf("  Pending:   %d\n", stats.Tasks.Pending)

	fmt.Println("Filters:")
	fmt.Printf("  Active:    %v\n", stats.Filters.Active)
	fmt.Printf("  Selection: %s\n", stats.Filters.Description)

	fmt.Println("Theme:")
	fmt.Printf("  Mode:      %s\n", stats.Theme.Mode)

	fmt.Println("Storage:")
	fmt.Printf("  Used:      %d bytes (%.2f%% of assumed quota)\n",
		stats.Storage.Used, stats.Storage.UsagePercentage)
}
