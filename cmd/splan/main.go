package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/tgienger/smartplanner/internal/api"
	"github.com/tgienger/smartplanner/internal/config"
	"github.com/tgienger/smartplanner/internal/importer"
	"github.com/tgienger/smartplanner/internal/session"
	"github.com/tgienger/smartplanner/internal/ui"
)

// Version information set via ldflags
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const debugEnv = "SPLAN_DEBUG"

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	if len(args) > 0 && (args[0] == "--version" || args[0] == "-v") {
		fmt.Printf("splan %s (commit: %s, built: %s)\n", version, commit, date)
		return nil
	}

	cfgPath, err := config.DefaultPath()
	if err != nil {
		return err
	}
	cfg, err := config.LoadOrCreate(cfgPath)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	store, err := session.DefaultStore()
	if err != nil {
		return err
	}

	logger := log.New(io.Discard, "", 0)
	if os.Getenv(debugEnv) != "" {
		f, err := tea.LogToFile("splan-debug.log", "splan")
		if err != nil {
			return err
		}
		defer f.Close()
		logger = log.Default()
	}

	timeout, err := cfg.RequestTimeout()
	if err != nil {
		return err
	}
	client := api.New(cfg.APIURL, api.WithTimeout(timeout), api.WithLogger(logger))

	if len(args) > 0 {
		switch args[0] {
		case "logout":
			return store.Clear()
		case "import":
			if len(args) != 2 {
				return errors.New("usage: splan import <file.yaml>")
			}
			return importFile(client, store, args[1])
		default:
			return fmt.Errorf("unknown command %q", args[0])
		}
	}

	sess, err := store.Load()
	if err != nil {
		// A damaged session file only costs a login.
		logger.Printf("session: %v", err)
		sess = session.Anonymous()
	}

	weekStart, err := cfg.WeekStartDay()
	if err != nil {
		return err
	}
	sort, err := cfg.Sort()
	if err != nil {
		return err
	}

	app := ui.NewApp(client, store, sess, ui.Options{WeekStart: weekStart, Sort: sort})
	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running application: %w", err)
	}
	return nil
}

func importFile(client *api.Client, store *session.Store, path string) error {
	sess, err := store.Load()
	if err != nil {
		return err
	}
	if !sess.Authenticated() {
		return errors.New("not logged in; run splan and log in first")
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	tasks, err := importer.Parse(f)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	n, err := importer.Import(ctx, client, sess, tasks)
	fmt.Printf("imported %d of %d tasks\n", n, len(tasks))
	if err != nil {
		return fmt.Errorf("import stopped: %s", api.Reason(err))
	}
	return nil
}
