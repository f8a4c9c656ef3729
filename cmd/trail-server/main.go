package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/appengine-ltd/wagon-trail/internal/config"
	"github.com/appengine-ltd/wagon-trail/internal/savegame"
	"github.com/appengine-ltd/wagon-trail/internal/server"
	"github.com/appengine-ltd/wagon-trail/internal/trail"
	"github.com/appengine-ltd/wagon-trail/internal/travel"
)

func main() {
	var (
		configPath string
		addr       string
		leader     string
		companions string
		resume     string
	)

	flag.StringVar(&configPath, "config", "", "path to a YAML rules file")
	flag.StringVar(&addr, "addr", "", "listen address (defaults to server.addr from the rules file)")
	flag.StringVar(&leader, "leader", "Amanda", "name of the party leader")
	flag.StringVar(&companions, "companions", "Bob,Cid,Dee,Eve", "comma separated companion names")
	flag.StringVar(&resume, "resume", "", "load this save slot (id or name, \"latest\" for the newest) instead of starting fresh")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))
	if err := run(logger, configPath, addr, leader, companions, resume); err != nil {
		logger.Error("trail-server stopped", "err", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger, configPath, addr, leader, companions, resume string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if addr == "" {
		addr = cfg.Server.Addr
	}

	saves, err := savegame.Open(cfg.Saves)
	if err != nil {
		return err
	}
	defer saves.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	journey, err := startingJourney(ctx, cfg, saves, leader, companions, resume)
	if err != nil {
		return err
	}
	session := travel.NewSessionFromConfig(cfg, journey)

	srv := server.New(session, saves, server.Config{Logger: logger})
	if err := srv.ListenAndServe(ctx, addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve %s: %w", addr, err)
	}
	return nil
}

func startingJourney(ctx context.Context, cfg *config.Config, saves savegame.Store, leader, companions, resume string) (*trail.JourneyState, error) {
	if resume != "" {
		ref := resume
		if ref == "latest" {
			ref = ""
		}
		slot, err := savegame.Resolve(ctx, saves, ref)
		if err != nil {
			return nil, fmt.Errorf("resume %q: %w", resume, err)
		}
		return slot.Journey, nil
	}

	var names []string
	for _, name := range strings.Split(companions, ",") {
		if name = strings.TrimSpace(name); name != "" {
			names = append(names, name)
		}
	}
	journey := cfg.NewJourney()
	journey.Setup(strings.TrimSpace(leader), names)
	return journey, nil
}
