// Package cmd implements the CLI command structure for tasker.
package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/nibzard/tasker-go/internal/config"
	"github.com/nibzard/tasker-go/internal/logging"
	"github.com/nibzard/tasker-go/internal/repl"
	"github.com/nibzard/tasker-go/internal/storage"
	"github.com/nibzard/tasker-go/internal/ui"
)

// Version is set via ldflags at build time.
var Version = "dev"

// streams bundles the process I/O so commands can be exercised in tests.
type streams struct {
	in  io.Reader
	out io.Writer
	err io.Writer
}

// Run executes the tasker CLI.
func Run(ctx context.Context, args []string) error {
	return run(ctx, args, streams{in: os.Stdin, out: os.Stdout, err: os.Stderr})
}

func run(ctx context.Context, args []string, s streams) error {
	fs := flag.NewFlagSet("tasker", flag.ContinueOnError)
	fs.SetOutput(s.err)
	fs.Usage = func() {
		printUsage(fs, s.err)
	}
	help := fs.Bool("help", false, "Show help")
	fs.BoolVar(help, "h", false, "Show help")
	showVersion := fs.Bool("version", false, "Show version")
	fs.BoolVar(showVersion, "v", false, "Show version")

	cfg, err := config.Load(fs, args)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if *help {
		printUsage(fs, s.out)
		return nil
	}
	if *showVersion {
		return versionCommand(s.out)
	}

	logger := logging.New(s.err, cfg.LogOptions())

	subcommand := "repl"
	remainingArgs := fs.Args()
	if len(remainingArgs) > 0 {
		subcommand = remainingArgs[0]
		remainingArgs = remainingArgs[1:]
	}

	switch subcommand {
	case "repl":
		return replCommand(ctx, cfg, logger, remainingArgs, s)
	case "tui":
		return tuiCommand(ctx, cfg, logger, remainingArgs)
	case "ls":
		return lsCommand(cfg, logger, remainingArgs, s.out)
	case "config":
		return configCommand(cfg, remainingArgs, s.out)
	case "version":
		return versionCommand(s.out)
	case "help":
		printUsage(fs, s.out)
		return nil
	default:
		fmt.Fprintf(s.err, "Unknown command: %s\n", subcommand)
		printUsage(fs, s.err)
		return fmt.Errorf("unknown command: %s", subcommand)
	}
}

// openRepository resolves an optional file argument and opens the
// configured storage format.
func openRepository(cfg *config.Config, logger *log.Logger, args []string) (storage.Repository, string, error) {
	if len(args) > 1 {
		return nil, "", fmt.Errorf("unexpected arguments: %v", args[1:])
	}
	path := cfg.TaskFile
	if len(args) == 1 {
		path = args[0]
		if !filepath.IsAbs(path) {
			path = filepath.Join(cfg.WorkDir, path)
		}
	}

	repo, err := storage.New(cfg.StorageFormat(), path, logger)
	if err != nil {
		return nil, "", err
	}
	return repo, path, nil
}

// replCommand runs the interactive command loop.
func replCommand(ctx context.Context, cfg *config.Config, logger *log.Logger, args []string, s streams) error {
	fs := flag.NewFlagSet("tasker repl", flag.ContinueOnError)
	fs.SetOutput(s.err)
	showIndex := fs.Bool("show-index", cfg.ShowIndex, "Show task indices")
	if err := fs.Parse(args); err != nil {
		return err
	}

	repo, path, err := openRepository(cfg, logger, fs.Args())
	if err != nil {
		return err
	}
	logger.Debug("Opening task file", "path", path, "format", cfg.Format)

	session, err := repl.New(repo, s.in, s.out, repl.Options{
		Variant:   repl.VariantFor(cfg.StorageFormat()),
		ShowIndex: *showIndex,
		Logger:    logger,
	})
	if err != nil {
		return err
	}
	return session.Run(ctx)
}

// tuiCommand launches the TUI.
func tuiCommand(ctx context.Context, cfg *config.Config, logger *log.Logger, args []string) error {
	if cfg.StorageFormat() == storage.FormatFlat {
		return fmt.Errorf("tui needs a format with sub-tasks (lines or json)")
	}
	repo, path, err := openRepository(cfg, logger, args)
	if err != nil {
		return err
	}
	return ui.RunTUI(ctx, repo,
		ui.WithShowIndex(cfg.ShowIndex),
		ui.WithLogger(logger),
		ui.WithTitle(path),
	)
}

// lsCommand prints the task list once.
func lsCommand(cfg *config.Config, logger *log.Logger, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("tasker ls", flag.ContinueOnError)
	showIndex := fs.Bool("show-index", cfg.ShowIndex, "Show task indices")
	pending := fs.Bool("pending", false, "Only show incomplete tasks")
	if err := fs.Parse(args); err != nil {
		return err
	}

	repo, _, err := openRepository(cfg, logger, fs.Args())
	if err != nil {
		return err
	}
	tasks, err := repo.Load()
	if err != nil {
		return fmt.Errorf("loading tasks: %w", err)
	}

	if !*pending {
		repl.Render(out, tasks, *showIndex)
		return nil
	}
	fmt.Fprintln(out, "Here are all the items:")
	for i, t := range tasks {
		if t.Completed {
			continue
		}
		if *showIndex {
			fmt.Fprintf(out, "%d %s\n", i, t)
		} else {
			fmt.Fprintln(out, t)
		}
	}
	return nil
}

// configCommand prints the effective configuration as TOML.
func configCommand(cfg *config.Config, args []string, out io.Writer) error {
	if len(args) > 0 {
		return fmt.Errorf("unexpected arguments: %v", args)
	}
	return cfg.WriteTOML(out)
}

func versionCommand(out io.Writer) error {
	fmt.Fprintf(out, "tasker version %s\n", Version)
	return nil
}

// printUsage prints the usage message.
func printUsage(fs *flag.FlagSet, w io.Writer) {
	fmt.Fprintln(w, "Tasker - a task list with one level of sub-tasks")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  tasker [options] [command] [file]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  repl [file]   Interactive command loop (default command)")
	fmt.Fprintln(w, "  tui [file]    Launch terminal UI")
	fmt.Fprintln(w, "  ls [file]     Print the task list")
	fmt.Fprintln(w, "  config        Print the effective configuration")
	fmt.Fprintln(w, "  version       Show version information")
	fmt.Fprintln(w, "  help          Show this help message")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Global Options:")
	fs.SetOutput(w)
	fs.PrintDefaults()
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Formats: "+strings.Join(formatNames(), ", "))
}

func formatNames() []string {
	var names []string
	for _, f := range storage.Formats() {
		names = append(names, string(f))
	}
	return names
}
