// Package main is the entry point for the taskpad application.
// It loads configuration, opens the data store, and starts the TUI.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/charmbracelet/log"

	"taskpad/internal/app"
	"taskpad/internal/config"
	"taskpad/internal/kv"
	"taskpad/internal/persist"
	"taskpad/internal/sync"
	"taskpad/internal/ui"
)

// Version information - set by GoReleaser during build
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const helpText = `taskpad - A keyboard-driven task list for your terminal

USAGE:
    taskpad [OPTIONS]
    taskpad <command> [ARGS]

COMMANDS:
    export           Print all data as a portable JSON document
    export -o FILE   Write the export to a file
    import FILE      Import a previously exported document
    backup           Create a backup of the data file
    backup --list    List available backups
    restore NAME     Restore from a specific backup
    restore --latest Restore from the most recent backup
    info             Show task, filter, and storage statistics

OPTIONS:
    -h, --help       Show this help message
    -v, --version    Show version information

DESCRIPTION:
    taskpad is a terminal task list with live filtering, search, and
    sorting. Changes are saved automatically after a short quiet period,
    and other taskpad instances sharing the data directory pick them up.

KEYBINDINGS:
    a            Add task
    d/Space      Toggle done
    x            Delete task
    C            Clear completed
    /            Search
    f            Cycle status filter
    s            Cycle sort key
    o            Toggle sort order
    r            Reset filters
    t            Toggle dark mode
    j/k, ↓/↑     Navigate
    ?            Help overlay
    q            Quit

DATA STORAGE:
    All data lives in ~/.taskpad/ as a single JSON file
    (taskpad-data.json), with timestamped backups under
    ~/.taskpad/backups/.

CONFIGURATION:
    Optional config file: ~/.config/taskpad/config.yaml

EXAMPLES:
    # Start the app
    taskpad

    # Export to a file
    taskpad export -o tasks.json

    # Import from a file
    taskpad import tasks.json

    # Restore the most recent backup
    taskpad restore --latest
`

func main() {
	// Check for subcommands first (before flag parsing)
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "export":
			runExport(os.Args[2:])
			return
		case "import":
			runImport(os.Args[2:])
			return
		case "backup":
			runBackup(os.Args[2:])
			return
		case "restore":
			runRestore(os.Args[2:])
			return
		case "info":
			runInfo(os.Args[2:])
			return
		}
	}

	showVersion := flag.Bool("version", false, "show version information")
	flag.BoolVar(showVersion, "v", false, "show version information (shorthand)")

	showHelp := flag.Bool("help", false, "show help message")
	flag.BoolVar(showHelp, "h", false, "show help message (shorthand)")

	flag.Usage = func() {
		fmt.Fprint(os.Stderr, helpText)
	}

	flag.Parse()

	if *showVersion {
		fmt.Printf("taskpad version %s\n", version)
		fmt.Printf("  commit: %s\n", commit)
		fmt.Printf("  built:  %s\n", date)
		os.Exit(0)
	}

	if *showHelp {
		fmt.Print(helpText)
		os.Exit(0)
	}

	if flag.NArg() > 0 {
		fmt.Fprintf(os.Stderr, "Error: unknown arguments: %v\n\n", flag.Args())
		flag.Usage()
		os.Exit(1)
	}

	cfg, store := mustOpen()

	var notifier sync.Notifier
	if cfg.Watch {
		w, err := sync.NewFileWatcher(store, persist.DefaultKey)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: change watching disabled: %v\n", err)
		} else {
			notifier = w
		}
	}

	engine := app.New(app.Options{
		Store:    store,
		Notifier: notifier,
		Logger:   newLogger(cfg),
		Debounce: cfg.Debounce(),
	})
	if err := engine.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing: %v\n", err)
		os.Exit(1)
	}

	runErr := ui.Run(engine, cfg.Theme)

	if err := engine.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Error shutting down: %v\n", err)
	}
	if runErr != nil {
		fmt.Fprintf(os.Stderr, "Error running app: %v\n", runErr)
		os.Exit(1)
	}
}

// mustOpen loads configuration and opens the data store, exiting on error.
func mustOpen() (*config.Config, *kv.FileStore) {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	store, err := kv.NewFileStore(cfg.GetDataDir())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening data directory: %v\n", err)
		os.Exit(1)
	}
	return cfg, store
}

// newLogger builds a stderr logger at the configured level.
func newLogger(cfg *config.Config) *log.Logger {
	logger := log.New(os.Stderr)
	if lvl, err := log.ParseLevel(cfg.LogLevel); err == nil {
		logger.SetLevel(lvl)
	} else {
		logger.SetLevel(log.WarnLevel)
	}
	return logger
}
