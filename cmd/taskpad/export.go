// Package main is the entry point for the taskpad application.
// This file contains the export subcommand handler.
package main

import (
	"flag"
	"fmt"
	"os"

	"taskpad/internal/persist"
)

const exportHelpText = `taskpad export - Export all data as portable JSON

USAGE:
    taskpad export [OPTIONS]

OPTIONS:
    -o, --output FILE  Write the export to a file instead of stdout
    -h, --help         Show this help message

DESCRIPTION:
    Prints the persisted data wrapped with export metadata (exportedAt
    and a format version). The output can be re-imported with
    'taskpad import'.

EXAMPLES:
    # Print to stdout
    taskpad export

    # Write to a file
    taskpad export -o tasks.json
`

// runExport handles the "taskpad export" subcommand.
func runExport(args []string) {
	fs := flag.NewFlagSet("export", flag.ExitOnError)

	output := fs.String("output", "", "write export to file")
	fs.StringVar(output, "o", "", "write export to file (shorthand)")

	helpFlag := fs.Bool("help", false, "show help message")
	fs.BoolVar(helpFlag, "h", false, "show help message (shorthand)")

	fs.Usage = func() {
		fmt.Fprint(os.Stderr, exportHelpText)
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	if *helpFlag {
		fmt.Print(exportHelpText)
		os.Exit(0)
	}

	cfg, store := mustOpen()
	ctrl := persist.New(store, persist.DefaultKey, newLogger(cfg))

	serialized, ok := ctrl.Export()
	if !ok {
		fmt.Fprintln(os.Stderr, "Error: no data to export")
		os.Exit(1)
	}

	if *output == "" {
		fmt.Println(serialized)
		return
	}

	if err := os.WriteFile(*output, []byte(serialized+"\n"), 0600); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", *output, err)
		os.Exit(1)
	}
	fmt.Printf("✓ Exported to %s\n", *output)
}
