// promptlab TUI - A terminal client for the PromptLab experiment backend.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/jeranaias/promptlab-tui/internal/api"
	"github.com/jeranaias/promptlab-tui/internal/backend"
	"github.com/jeranaias/promptlab-tui/internal/config"
	"github.com/jeranaias/promptlab-tui/internal/history"
	"github.com/jeranaias/promptlab-tui/internal/offline"
	"github.com/jeranaias/promptlab-tui/internal/query"
	"github.com/jeranaias/promptlab-tui/internal/session"
	"github.com/jeranaias/promptlab-tui/internal/state"
	"github.com/jeranaias/promptlab-tui/internal/ui/chat"
	"github.com/jeranaias/promptlab-tui/internal/ui/components"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func main() {
	var (
		configPath  = flag.String("config", "", "path to config file (default ~/.promptlab/config.toml)")
		showVersion = flag.Bool("version", false, "print version and exit")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("promptlab %s (%s, built %s)\n", Version, GitCommit, BuildDate)
		return
	}

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Fprintln(os.Stderr, "Error: promptlab requires an interactive terminal")
		os.Exit(1)
	}

	config.LoadEnv()

	var cfg *config.Config
	var err error
	if *configPath != "" {
		cfg, err = config.LoadFromPath(*configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	cleanupLog := setupLogging(cfg)
	defer cleanupLog()

	// Reachability monitor plus its background probe.
	monitor := offline.NewMonitor()
	probeCtx, stopProbe := context.WithCancel(context.Background())
	defer stopProbe()
	go monitor.Probe(probeCtx, cfg.Backend.BaseURL,
		time.Duration(cfg.Backend.ProbeIntervalSecs)*time.Second)

	toasts := components.NewToastManager()

	client := api.NewClient(cfg.Backend.BaseURL, monitor).
		WithTimeout(time.Duration(cfg.Backend.TimeoutSecs)*time.Second).
		WithDefaultCooldown(time.Duration(cfg.Backend.CooldownSecs)*time.Second).
		WithMaxPending(cfg.Backend.MaxPending).
		WithRateLimit(cfg.Backend.RateLimit, cfg.Backend.RateBurst).
		WithNotifier(toasts)
	defer client.Close()

	store := query.NewStore(client)
	svc := backend.NewService(store)
	st := state.NewStore()
	coord := session.NewCoordinator(svc, st)

	var hist *history.Store
	if cfg.History.Enabled {
		if path, err := cfg.HistoryPath(); err == nil {
			hist, err = history.Open(path, cfg.History.MaxEntries)
			if err != nil {
				log.Printf("prompt history disabled: %v", err)
				hist = nil
			}
		}
	}
	if hist != nil {
		defer hist.Close()
	}

	// Hot-reload backend tunables on config file edits. Base URL changes
	// need a restart, which the reload log line mentions.
	if watcher := startConfigWatcher(client, *configPath); watcher != nil {
		defer watcher.Close()
	}

	m := chat.New(chat.Deps{
		Config:      cfg,
		Client:      client,
		Backend:     svc,
		Coordinator: coord,
		State:       st,
		Monitor:     monitor,
		History:     hist,
		Toasts:      toasts,
	})

	p := tea.NewProgram(m,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// setupLogging sends the standard logger to the promptlab log file so
// stray output never corrupts the TUI. Returns a cleanup func.
func setupLogging(cfg *config.Config) func() {
	path, err := cfg.LogPath()
	if err != nil {
		log.SetOutput(os.Stderr)
		return func() {}
	}
	if err := config.EnsureConfigDir(); err != nil {
		log.SetOutput(os.Stderr)
		return func() {}
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		log.SetOutput(os.Stderr)
		return func() {}
	}
	log.SetOutput(f)
	return func() { f.Close() }
}

// startConfigWatcher watches the config file and applies the tunables
// that can change at runtime.
func startConfigWatcher(client *api.Client, explicitPath string) *config.Watcher {
	path := explicitPath
	if path == "" {
		var err error
		path, err = config.ConfigPath()
		if err != nil {
			return nil
		}
	}
	if _, err := os.Stat(path); err != nil {
		return nil
	}

	watcher, err := config.NewWatcher(path, func(next *config.Config) {
		client.WithTimeout(time.Duration(next.Backend.TimeoutSecs) * time.Second).
			WithDefaultCooldown(time.Duration(next.Backend.CooldownSecs) * time.Second).
			WithRateLimit(next.Backend.RateLimit, next.Backend.RateBurst)
		if next.Backend.BaseURL != client.BaseURL() {
			log.Printf("config: base_url changed to %s, restart to apply", next.Backend.BaseURL)
		}
	})
	if err != nil {
		log.Printf("config watcher unavailable: %v", err)
		return nil
	}
	if err := watcher.Watch(); err != nil {
		log.Printf("config watcher unavailable: %v", err)
		watcher.Close()
		return nil
	}
	return watcher
}
