package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/appengine-ltd/wagon-trail/internal/config"
	"github.com/appengine-ltd/wagon-trail/internal/savegame"
	"github.com/appengine-ltd/wagon-trail/internal/ui"
)

// version, commit, date are injected at build time with -ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	var (
		showVersion bool
		configPath  string
		logPath     string
		seed        int64
	)

	flag.BoolVar(&showVersion, "version", false, "print version and exit")
	flag.StringVar(&configPath, "config", "", "path to a YAML rules file")
	flag.StringVar(&logPath, "log", "", "append journey events to this file")
	flag.Int64Var(&seed, "seed", 0, "override the dice seed from the rules file")
	flag.Parse()

	if showVersion {
		fmt.Printf("Wagon Trail %s (%s) %s\n", version, commit, date)
		return
	}

	if err := run(configPath, logPath, seed); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(configPath, logPath string, seed int64) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if seed != 0 {
		cfg.Travel.Seed = seed
	}

	// The terminal belongs to the UI, so events only go to a file when asked.
	var out io.Writer = io.Discard
	if logPath != "" {
		f, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
		if err != nil {
			return fmt.Errorf("open log: %w", err)
		}
		defer f.Close()
		out = f
	}
	logger := slog.New(slog.NewTextHandler(out, nil))

	saves, err := savegame.Open(cfg.Saves)
	if err != nil {
		return err
	}
	defer saves.Close()

	app := ui.NewApp(ui.AppConfig{
		Version:   version,
		Commit:    commit,
		BuildDate: date,
		Rules:     cfg,
		Saves:     saves,
		Logger:    logger,
	})
	return app.Run()
}
