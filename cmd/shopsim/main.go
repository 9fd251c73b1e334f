// Command shopsim runs the card shop simulation and its HTTP API.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/talgya/shopfloor/internal/api"
	"github.com/talgya/shopfloor/internal/config"
	"github.com/talgya/shopfloor/internal/engine"
	"github.com/talgya/shopfloor/internal/persistence"
	"github.com/talgya/shopfloor/internal/progression"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfgPath := flag.String("config", "shopfloor.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// ── Database ──────────────────────────────────────────────────────
	db, err := persistence.Open(cfg.DBPath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("database opened", "path", cfg.DBPath)

	// ── Load or Start Fresh ───────────────────────────────────────────
	tree := progression.DefaultTree()
	state, err := db.LoadState(persistence.DefaultSlot, tree)
	if err != nil {
		slog.Error("failed to load save", "error", err)
		os.Exit(1)
	}
	fresh := state == nil
	if fresh {
		slog.Info("no save found, opening a new shop")
		state = engine.NewState()
	}

	simCfg := engine.DefaultConfig()
	simCfg.Seed = cfg.Seed
	simCfg.DayDurationS = cfg.DayDurationS
	simCfg.NightDurationS = cfg.NightDurationS
	simCfg.OrderLeadS = cfg.OrderLeadS

	sim := engine.NewSimulation(simCfg, tree, state, logger)
	loop := engine.NewLoop(sim, logger)

	if fresh {
		if err := db.SaveState(persistence.DefaultSlot, sim.State()); err != nil {
			slog.Error("initial save failed", "error", err)
		}
	}

	// ── HTTP API ──────────────────────────────────────────────────────
	adminKey := cfg.AdminKey
	if adminKey == "" {
		adminKey = os.Getenv("SHOPFLOOR_ADMIN_KEY")
	}
	if adminKey == "" {
		slog.Warn("SHOPFLOOR_ADMIN_KEY not set, admin POST endpoints will be disabled")
	}

	hub := api.NewHub()
	hub.Attach(loop)

	server := &api.Server{
		Loop:     loop,
		DB:       db,
		Hub:      hub,
		Addr:     cfg.Addr,
		AdminKey: adminKey,
	}
	server.Start()

	// ── Autosave ──────────────────────────────────────────────────────
	ctx, cancel := context.WithCancel(context.Background())
	if cfg.SaveEveryS > 0 {
		go func() {
			ticker := time.NewTicker(time.Duration(cfg.SaveEveryS) * time.Second)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					loop.Do(func(s *engine.Simulation) {
						if err := db.SaveState(persistence.DefaultSlot, s.State()); err != nil {
							slog.Error("autosave failed", "error", err)
						}
					})
				}
			}
		}()
	}

	// ── Start ─────────────────────────────────────────────────────────
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("received signal, shutting down", "signal", sig)
		cancel()
	}()

	st := sim.State()
	fmt.Printf("\nShop open: day %d, $%d in the till.\n", st.Day, st.Money)
	fmt.Printf("API: http://localhost%s/api/v1/status\n", cfg.Addr)
	fmt.Println("Starting simulation... (Ctrl+C to stop)")

	loop.Run(ctx)

	// Final save on shutdown. The loop has stopped, so direct access is safe.
	slog.Info("final save...")
	if err := db.SaveState(persistence.DefaultSlot, sim.State()); err != nil {
		slog.Error("final save failed", "error", err)
	}

	fmt.Println("Simulation stopped. Shop state saved.")
}
