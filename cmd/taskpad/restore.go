// Package main is the entry point for the taskpad application.
// This file contains the restore subcommand handler.
package main

import (
	"flag"
	"fmt"
	"os"
)

const restoreHelpText = `taskpad restore - Restore data from a backup

USAGE:
    taskpad restore NAME
    taskpad restore --latest

OPTIONS:
    --latest     Restore from the most recent backup
    -h, --help   Show this help message

DESCRIPTION:
    Replaces the current data file with the contents of a backup. A
    safety backup of the current data is created first, so a restore can
    itself be undone.

    Run 'taskpad backup --list' to see available backup names.

EXAMPLES:
    # Restore from a specific backup
    taskpad restore 2026-08-30_143022_001

    # Restore from the most recent backup
    taskpad restore --latest
`

// runRestore handles the "taskpad restore" subcommand.
func runRestore(args []string) {
	fs := flag.NewFlagSet("restore", flag.ExitOnError)

	latestFlag := fs.Bool("latest", false, "restore from the most recent backup")

	helpFlag := fs.Bool("help", false, "show help message")
	fs.BoolVar(helpFlag, "h", false, "show help message (shorthand)")

	fs.Usage = func() {
		fmt.Fprint(os.Stderr, restoreHelpText)
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	if *helpFlag {
		fmt.Print(restoreHelpText)
		os.Exit(0)
	}

	cfg, store := mustOpen()
	manager := newBackupManager(cfg, store)

	switch {
	case *latestFlag:
		if err := manager.RestoreLatest(); err != nil {
			fmt.Fprintf(os.Stderr, "Error restoring: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("✓ Restored from the most recent backup")

	case fs.NArg() == 1:
		name := fs.Arg(0)
		if err := manager.Restore(name); err != nil {
			fmt.Fprintf(os.Stderr, "Error restoring: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("✓ Restored from %s\n", name)

	default:
		fmt.Fprint(os.Stderr, restoreHelpText)
		os.Exit(1)
	}
}
