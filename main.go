package main

import (
	"flag"
	"log/slog"
	"os"

	rl "github.com/gen2brain/raylib-go/raylib"

	"seep/config"
	"seep/game"
	"seep/server"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	headless := flag.Bool("headless", false, "Run without graphics")
	logStats := flag.Bool("log-stats", false, "Output stats via slog")
	statsWindow := flag.Float64("stats-window", 0, "Stats window size in seconds (0 = use config)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs, snapshots and config snapshot")
	seed := flag.Int64("seed", 0, "World seed (0 = use config)")
	maxTicks := flag.Int("max-ticks", 0, "Stop after N simulation ticks (0 = unlimited)")
	stepsPerUpdate := flag.Int("steps-per-update", 1, "Simulation ticks per update call (higher = faster headless runs)")
	serveAddr := flag.String("serve", "", "State server listen address (empty = use config)")
	logLevel := flag.String("log-level", "info", "Log level (debug, info, warn, error)")

	flag.Parse()

	// Initialize config before anything else
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()
	if *serveAddr != "" {
		cfg.Server.Addr = *serveAddr
	}

	// Set up slog (JSON to stdout for structured logging)
	var level slog.Level
	if err := level.UnmarshalText([]byte(*logLevel)); err != nil {
		slog.Error("invalid log level", "error", err)
		os.Exit(1)
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	// Ticks only advance through the fluid clock; without it a headless
	// run would spin forever.
	if *headless && !cfg.Fluid.Enabled {
		slog.Error("headless run with fluid disabled would never tick")
		os.Exit(1)
	}

	opts := game.Options{
		Seed:           *seed,
		LogStats:       *logStats,
		StatsWindowSec: *statsWindow,
		OutputDir:      *outputDir,
		Headless:       *headless,
		StepsPerUpdate: *stepsPerUpdate,
	}

	if *headless {
		// Headless mode - pure CPU simulation, no raylib needed
		g, err := game.NewGame(opts)
		if err != nil {
			slog.Error("failed to start", "error", err)
			os.Exit(1)
		}
		defer g.Unload()

		if srv := maybeServe(cfg, g); srv != nil {
			defer srv.Close()
		}

		slog.Info("starting headless simulation",
			"seed", *seed,
			"stats_window", *statsWindow,
			"max_ticks", *maxTicks,
			"steps_per_update", *stepsPerUpdate,
		)

		for {
			g.UpdateHeadless()

			if *maxTicks > 0 && g.Tick() >= *maxTicks {
				slog.Info("max ticks reached", "tick", g.Tick())
				return
			}
		}
	} else {
		// Graphical mode
		rl.InitWindow(int32(cfg.Screen.Width), int32(cfg.Screen.Height), "Seep")
		defer rl.CloseWindow()

		rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))

		g, err := game.NewGame(opts)
		if err != nil {
			slog.Error("failed to start", "error", err)
			os.Exit(1)
		}
		defer g.Unload()

		if srv := maybeServe(cfg, g); srv != nil {
			defer srv.Close()
		}

		for !rl.WindowShouldClose() {
			g.Update()
			g.Draw()

			if *maxTicks > 0 && g.Tick() >= *maxTicks {
				break
			}
		}
	}
}

// maybeServe starts the state server when an address is configured,
// feeding it from the game loop's publish callbacks.
func maybeServe(cfg *config.Config, g *game.Game) *server.Server {
	if cfg.Server.Addr == "" {
		return nil
	}
	srv := server.New(cfg, g.World())
	g.SetStatsCallback(srv.PublishStats)
	g.SetChunkCallback(srv.PublishChunks)
	go func() {
		slog.Info("state server listening", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil {
			slog.Error("state server failed", "error", err)
		}
	}()
	return srv
}
