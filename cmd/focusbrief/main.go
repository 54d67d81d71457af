package main

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hpungsan/focusbrief/internal/config"
	"github.com/hpungsan/focusbrief/internal/db"
	"github.com/hpungsan/focusbrief/internal/extract"
	"github.com/hpungsan/focusbrief/internal/llm"
	"github.com/hpungsan/focusbrief/internal/logging"
	"github.com/hpungsan/focusbrief/internal/mcp"
	"github.com/hpungsan/focusbrief/internal/ops"
)

// Version is set via -ldflags at build time.
var Version = "dev"

// cliCommands contains known CLI subcommands.
var cliCommands = map[string]bool{
	"text": true, "url": true, "file": true, "batch": true,
	"list": true, "fetch": true, "delete": true, "serve": true,
	"help": true,
}

// isCLIMode determines if we should run CLI vs MCP server.
func isCLIMode() bool {
	if len(os.Args) < 2 {
		return false // No args → MCP server
	}
	arg := os.Args[1]
	// Known subcommand → CLI
	if cliCommands[arg] {
		return true
	}
	// --help or --version → CLI
	if arg == "--help" || arg == "-h" || arg == "--version" || arg == "-v" {
		return true
	}
	return false // Default → MCP server
}

// isHelpOrVersion returns true if the user is requesting help or version info.
func isHelpOrVersion() bool {
	if len(os.Args) < 2 {
		return false
	}
	arg := os.Args[1]
	return arg == "--help" || arg == "-h" || arg == "--version" || arg == "-v" || arg == "help"
}

// isTerminal returns true if stdin is a terminal (not piped).
func isTerminal() bool {
	stat, _ := os.Stdin.Stat()
	return (stat.Mode() & os.ModeCharDevice) != 0
}

// printBanner displays a friendly banner when run interactively without args.
func printBanner() {
	fmt.Println(`
   __                     _          _       __
  / _| ___   ___ _   _ __| |__  _ __(_) ___ / _|
 | |_ / _ \ / __| | | / __| '_ \| '__| |/ _ \ |_
 |  _| (_) | (__| |_| \__ \ |_) | |  | |  __/  _|
 |_|  \___/ \___|\__,_|___/_.__/|_|  |_|\___|_|

  Turn content into action-oriented capsules

  Usage: focusbrief <command> [options]
         focusbrief --help

  MCP server mode requires piped input.`)
}

// app bundles the process-wide collaborators, constructed once.
type app struct {
	db       *sql.DB
	cfg      *config.Config
	log      *logging.Logger
	pipeline *ops.Pipeline
}

// newApp wires the model client, extractors and pipeline over database.
func newApp(database *sql.DB, cfg *config.Config, log *logging.Logger) *app {
	client := llm.NewClient(llm.ConfigFrom(cfg), llm.WithLogger(log))
	dispatcher := extract.NewDispatcher(cfg, nil, client, log)
	return &app{
		db:       database,
		cfg:      cfg,
		log:      log,
		pipeline: ops.NewPipeline(cfg, dispatcher, client, ops.DBStore{DB: database}, log),
	}
}

func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
	os.Exit(1)
}

func main() {
	// No args + interactive terminal → show banner and exit
	if len(os.Args) < 2 && isTerminal() {
		printBanner()
		return
	}

	// Handle --help/--version before DB init (no DB needed)
	if isHelpOrVersion() {
		if err := newCLIApp(nil).Run(os.Args); err != nil {
			fail("%v", err)
		}
		return
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		fail("could not determine home directory: %v", err)
	}
	baseDir := filepath.Join(homeDir, config.DirName)

	cwd, _ := os.Getwd()
	cfg, err := config.LoadWithRepo(baseDir, cwd)
	if err != nil {
		fail("failed to load config: %v", err)
	}
	cfg = config.ApplyEnv(cfg, os.Getenv)

	log, err := logging.New(cfg.LogMode)
	if err != nil {
		fail("failed to build logger: %v", err)
	}
	defer log.Sync()

	if unknown := mcp.ValidateDisabledTools(cfg.DisabledTools); len(unknown) > 0 {
		log.Warn("unknown tools in disabled_tools", "tools", unknown)
	}

	database, err := db.Init(baseDir)
	if err != nil {
		fail("failed to initialize database: %v", err)
	}
	defer database.Close()
	db.ConfigurePool(database, cfg)

	a := newApp(database, cfg, log)

	// CLI mode: known subcommand
	if isCLIMode() {
		if err := newCLIApp(a).Run(os.Args); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			log.Sync()
			database.Close()
			os.Exit(1)
		}
		return
	}

	// Unknown argument + terminal → show error (don't start MCP server)
	if len(os.Args) >= 2 && isTerminal() {
		fmt.Fprintf(os.Stderr, "error: unknown command %q\n", os.Args[1])
		fmt.Fprintf(os.Stderr, "Run 'focusbrief --help' for usage.\n")
		os.Exit(1)
	}

	// MCP server mode (default)
	if err := mcp.Run(mcp.Deps{DB: database, Pipeline: a.pipeline, Config: cfg, Log: log, Version: Version}); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
