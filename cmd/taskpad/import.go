// Package main is the entry point for the taskpad application.
// This file contains the import subcommand handler.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"taskpad/internal/persist"
)

const importHelpText = `taskpad import - Import a previously exported document

USAGE:
    taskpad import FILE
    taskpad import -        (read from stdin)

OPTIONS:
    -h, --help   Show this help message

DESCRIPTION:
    Validates the document against the export format and replaces the
    persisted data with its contents. Malformed documents are rejected
    without touching existing data. A safety backup is created first.

EXAMPLES:
    # Import from a file
    taskpad import tasks.json

    # Import from stdin
    cat tasks.json | taskpad import -
`

// runImport handles the "taskpad import" subcommand.
func runImport(args []string) {
	fs := flag.NewFlagSet("import", flag.ExitOnError)

	helpFlag := fs.Bool("help", false, "show help message")
	fs.BoolVar(helpFlag, "h", false, "show help message (shorthand)")

	fs.Usage = func() {
		fmt.Fprint(os.Stderr, importHelpText)
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	if *helpFlag {
		fmt.Print(importHelpText)
		os.Exit(0)
	}

	if fs.NArg() != 1 {
		fmt.Fprint(os.Stderr, importHelpText)
		os.Exit(1)
	}

	var data []byte
	var err error
	if source := fs.Arg(0); source == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(source)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading input: %v\n", err)
		os.Exit(1)
	}

	cfg, store := mustOpen()
	ctrl := persist.New(store, persist.DefaultKey, newLogger(cfg))

	// Safety backup before overwriting anything.
	if _, err := newBackupManager(cfg, store).Create(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not create safety backup: %v\n", err)
	}

	if !ctrl.Import(string(data)) {
		fmt.Fprintln(os.Stderr, "Error: document is not a valid taskpad export")
		os.Exit(1)
	}

	fmt.Println("✓ Import complete")
}
