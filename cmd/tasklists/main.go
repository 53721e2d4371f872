// Package main is the entry point for the tasklists terminal UI.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"

	"github.com/nhle/tasklists/internal/app"
	"github.com/nhle/tasklists/internal/model"
	"github.com/nhle/tasklists/internal/store"
	appsync "github.com/nhle/tasklists/internal/sync"
)

// options are the command-line overrides applied on top of the config file.
type options struct {
	configPath string
	lists      []string
	backend    string
	dbPath     string
	logFile    string
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var opts options
	fs := pflag.NewFlagSet("tasklists", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVarP(&opts.configPath, "config", "c", model.DefaultConfigPath(), "path to the YAML config file")
	fs.StringSliceVarP(&opts.lists, "list", "l", nil, "list to open as a pane (repeatable, overrides config)")
	fs.StringVar(&opts.backend, "backend", "", "storage backend: sqlite, keyring or memory")
	fs.StringVar(&opts.dbPath, "db", "", "storage path (SQLite file or keyring directory)")
	fs.StringVar(&opts.logFile, "log-file", "", "write logs to this file")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	// Positional arguments are list names too.
	opts.lists = append(opts.lists, fs.Args()...)
	return opts, nil
}

// loadConfig reads the config file, writing the defaults on first run,
// and applies the command-line overrides.
func loadConfig(opts options) (*model.AppConfig, error) {
	cfg, err := model.LoadConfig(opts.configPath)
	if err != nil {
		return nil, err
	}
	if _, statErr := os.Stat(opts.configPath); errors.Is(statErr, os.ErrNotExist) {
		if err := model.SaveConfig(opts.configPath, cfg); err != nil {
			log.Printf("tasklists: writing default config: %v", err)
		}
	}

	if lists := model.CleanListNames(opts.lists); len(lists) > 0 {
		cfg.Lists = lists
	}
	if opts.backend != "" {
		switch opts.backend {
		case model.BackendSQLite, model.BackendKeyring, model.BackendMemory:
			cfg.Storage.Backend = opts.backend
		default:
			return nil, fmt.Errorf("unknown storage backend %q", opts.backend)
		}
	}
	if opts.dbPath != "" {
		cfg.Storage.Path = opts.dbPath
	}
	if opts.logFile != "" {
		cfg.LogFile = opts.logFile
	}
	return cfg, nil
}

func run(ctx context.Context, args []string, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(stderr, "tasklists: %v\n", err)
		return 2
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		fmt.Fprintf(stderr, "tasklists: %v\n", err)
		return 1
	}

	if cfg.LogFile != "" {
		f, err := tea.LogToFile(cfg.LogFile, "tasklists")
		if err != nil {
			fmt.Fprintf(stderr, "tasklists: opening log file: %v\n", err)
			return 1
		}
		defer f.Close()
	} else {
		log.SetOutput(io.Discard)
	}

	backend, err := store.Open(cfg.Storage)
	if err != nil {
		fmt.Fprintf(stderr, "tasklists: %v\n", err)
		return 1
	}
	defer backend.Close()

	root := app.New(backend, appsync.NewChannel(), cfg.Lists, cfg.Display)
	p := tea.NewProgram(root, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		fmt.Fprintf(stderr, "tasklists: %v\n", err)
		return 1
	}
	return 0
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stderr)
	cancel()
	os.Exit(code)
}
