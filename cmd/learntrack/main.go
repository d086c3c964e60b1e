package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"github.com/nhle/knowledge-tracker/internal/app"
	"github.com/nhle/knowledge-tracker/internal/importer"
	"github.com/nhle/knowledge-tracker/internal/model"
	"github.com/nhle/knowledge-tracker/internal/reminder"
	"github.com/nhle/knowledge-tracker/internal/store"
	"github.com/nhle/knowledge-tracker/internal/theme"
	"github.com/nhle/knowledge-tracker/internal/tracker"
)

// Version is the current CLI version string.
const Version = "v0.1"

func usage() {
	fmt.Fprint(flag.CommandLine.Output(),
		`learntrack: track what you learn and review it with spaced repetition

Usage:
  learntrack [flags]                 open the terminal UI
  learntrack [flags] import <file>   import cards from .xlsx or .csv
  learntrack [flags] export <file>   write a .json backup or .xlsx sheet
  learntrack [flags] restore <file>  replace all data from a .json backup
  learntrack [flags] due             print how many cards are due today

Flags:
`)
	flag.PrintDefaults()
}

// loadDotEnv applies .env overrides. A missing file is fine; any other
// failure is logged and startup continues.
func loadDotEnv(load func(...string) error) {
	if err := load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("Warning: loading .env: %v", err)
	}
}

func main() {
	loadDotEnv(godotenv.Load)

	configPath := flag.String("config", model.DefaultConfigPath(), "path to config.yaml")
	dbPath := flag.String("db", "", "database path (overrides config)")
	version := flag.Bool("version", false, "print version and exit")
	flag.Usage = usage
	flag.Parse()

	if *version {
		fmt.Println(Version)
		return
	}

	cfg, err := model.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *dbPath != "" {
		cfg.Database.Path = *dbPath
	}

	os.Exit(run(cfg, *configPath, flag.Args()))
}

func run(cfg *model.AppConfig, configPath string, args []string) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	t, closeFn, err := openTracker(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "learntrack: %v\n", err)
		return 1
	}
	defer closeFn()

	if len(args) == 0 {
		return runTUI(ctx, cfg, configPath, t)
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "import":
		return cmdImport(ctx, t, rest)
	case "export":
		return cmdExport(t, rest)
	case "restore":
		return cmdRestore(ctx, t, rest)
	case "due":
		fmt.Println(t.DueCount())
		return 0
	case "help", "-h":
		usage()
		return 0
	default:
		fmt.Fprintf(os.Stderr, "learntrack: unknown command %q\n", cmd)
		usage()
		return 2
	}
}

// openTracker opens the SQLite store and loads the tracker. The returned
// function closes the store.
func openTracker(ctx context.Context, cfg *model.AppConfig) (*tracker.Tracker, func(), error) {
	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("create data dir: %w", err)
	}

	s, err := store.NewSQLiteStore(cfg.Database.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}

	t := tracker.New(s, tracker.Options{ExtraCategories: cfg.Categories})
	if err := t.Load(ctx); err != nil {
		_ = s.Close()
		return nil, nil, err
	}

	closeFn := func() {
		if err := s.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}
	return t, closeFn, nil
}

func runTUI(ctx context.Context, cfg *model.AppConfig, configPath string, t *tracker.Tracker) int {
	if err := theme.Apply(cfg.Display.Theme); err != nil {
		fmt.Fprintf(os.Stderr, "learntrack: %v\n", err)
		return 1
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Log.File), 0o755); err == nil {
		f, err := tea.LogToFile(cfg.Log.File, "learntrack")
		if err != nil {
			fmt.Fprintf(os.Stderr, "learntrack: open log: %v\n", err)
			return 1
		}
		defer f.Close()
	}

	lastVisit, _, err := t.TouchLastVisit(ctx)
	if err != nil {
		log.Printf("Error recording visit: %v", err)
	}

	sched, err := reminder.New(cfg.Reminder, time.Local, t.DueCount)
	if err != nil {
		log.Printf("Reminders disabled: %v", err)
		sched = nil
	}

	m := app.New(t, app.Options{
		Config:     *cfg,
		ConfigPath: configPath,
		LastVisit:  lastVisit,
		Reminder:   sched,
	})
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		fmt.Fprintf(os.Stderr, "learntrack: %v\n", err)
		return 1
	}
	if sched != nil {
		sched.Stop()
	}
	return 0
}

func cmdImport(ctx context.Context, t *tracker.Tracker, args []string) int {
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "usage: learntrack import <file.xlsx|file.csv>")
		return 2
	}

	res, err := importer.ImportFile(ctx, t, args[0], importer.DefaultSheetConfig())
	if err != nil {
		fmt.Fprintf(os.Stderr, "import: %v\n", err)
		return 1
	}

	fmt.Printf("Processed %d rows: %d topics created, %d cards created, %d updated, %d skipped\n",
		res.Processed, res.TopicsCreated, res.Created, res.Updated, res.Skipped)
	for _, e := range res.Errors {
		fmt.Fprintf(os.Stderr, "  %s\n", e)
	}
	return 0
}

func cmdExport(t *tracker.Tracker, args []string) int {
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "usage: learntrack export <file.json|file.xlsx>")
		return 2
	}
	path := args[0]
	topics, cards := t.Topics(), t.Flashcards()

	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		if err := importer.ExportSheet(path, topics, cards); err != nil {
			fmt.Fprintf(os.Stderr, "export: %v\n", err)
			return 1
		}
	} else {
		f, err := os.Create(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "export: %v\n", err)
			return 1
		}
		defer f.Close()
		if err := importer.WriteBackup(f, topics, cards); err != nil {
			fmt.Fprintf(os.Stderr, "export: %v\n", err)
			return 1
		}
	}

	fmt.Printf("Exported %d topics and %d cards to %s\n", len(topics), len(cards), path)
	return 0
}

func cmdRestore(ctx context.Context, t *tracker.Tracker, args []string) int {
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "usage: learntrack restore <file.json>")
		return 2
	}

	f, err := os.Open(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "restore: %v\n", err)
		return 1
	}
	defer f.Close()

	b, err := importer.Restore(ctx, t, f)
	if err != nil {
		fmt.Fprintf(os.Stderr, "restore: %v\n", err)
		return 1
	}
	fmt.Printf("Restored %d topics and %d cards\n", len(b.Topics), len(b.Flashcards))
	return 0
}
