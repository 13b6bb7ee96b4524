package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/talgya/fleetcommand/internal/api"
	"github.com/talgya/fleetcommand/internal/config"
	"github.com/talgya/fleetcommand/internal/engine"
	"github.com/talgya/fleetcommand/internal/persistence"
	"github.com/talgya/fleetcommand/internal/scenario"
	"github.com/talgya/fleetcommand/internal/sector"
	"github.com/talgya/fleetcommand/internal/simtime"
	"github.com/talgya/fleetcommand/internal/telemetry"
	"github.com/talgya/fleetcommand/internal/world"
)

func runCmd() *cobra.Command {
	var (
		ticks uint64
		serve bool
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Generate a fleet and run the simulation",
		Long: `Run builds a sector and a fleet from the configuration and doctrine
catalog, then advances the simulation. With --ticks it runs that many ticks
back to back and exits; otherwise it runs in real time until interrupted.
State is saved every sim-day and at exit.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if err := applyRunFlags(cmd, &cfg); err != nil {
				return err
			}
			return run(cmd.Context(), cfg, ticks, serve, cmd)
		},
	}
	cmd.Flags().Uint64Var(&ticks, "ticks", 0, "run this many ticks headless, then exit (0 = real time)")
	cmd.Flags().BoolVar(&serve, "serve", false, "serve the HTTP API while running")
	cmd.Flags().String("db", "", "database path (overrides FLEETSIM_DB)")
	cmd.Flags().Int64("seed", 0, "random seed (overrides FLEETSIM_SEED)")
	cmd.Flags().Int("ships", 0, "ship count (overrides FLEETSIM_SHIPS)")
	cmd.Flags().Int("crew", 0, "crew per ship (overrides FLEETSIM_CREW)")
	cmd.Flags().Int("port", 0, "API port (overrides FLEETSIM_PORT)")
	cmd.Flags().String("catalog", "", "doctrine catalog YAML (overrides FLEETSIM_CATALOG)")
	cmd.Flags().Int("workers", 0, "succession workers (overrides FLEETSIM_WORKERS)")
	return cmd
}

// applyRunFlags copies explicitly set flags over the environment config.
func applyRunFlags(cmd *cobra.Command, cfg *config.Config) error {
	f := cmd.Flags()
	if f.Changed("db") {
		cfg.DBPath, _ = f.GetString("db")
	}
	if f.Changed("seed") {
		cfg.Seed, _ = f.GetInt64("seed")
	}
	if f.Changed("ships") {
		cfg.Ships, _ = f.GetInt("ships")
	}
	if f.Changed("crew") {
		cfg.CrewPerShip, _ = f.GetInt("crew")
	}
	if f.Changed("port") {
		cfg.Port, _ = f.GetInt("port")
	}
	if f.Changed("catalog") {
		cfg.CatalogPath, _ = f.GetString("catalog")
	}
	if f.Changed("workers") {
		cfg.Workers, _ = f.GetInt("workers")
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}
	return nil
}

func run(ctx context.Context, cfg config.Config, ticks uint64, serve bool, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	shutdownTracing, err := telemetry.Setup(ctx, "fleetsim")
	if err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			slog.Warn("trace flush failed", "error", err)
		}
	}()

	catalog, err := loadCatalog(cfg.CatalogPath)
	if err != nil {
		return err
	}

	// ── Database ──────────────────────────────────────────────────────
	if dir := filepath.Dir(cfg.DBPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create data dir: %w", err)
		}
	}
	db, err := persistence.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer db.Close()

	runID := uuid.New()
	if err := db.SaveMeta(persistence.MetaRunID, runID.String()); err != nil {
		return fmt.Errorf("save run id: %w", err)
	}
	if err := db.SaveMeta(persistence.MetaSeed, strconv.FormatInt(cfg.Seed, 10)); err != nil {
		return fmt.Errorf("save seed: %w", err)
	}
	slog.Info("database opened", "path", cfg.DBPath, "run", runID)

	// ── Fleet ─────────────────────────────────────────────────────────
	sec := sector.Generate(sector.GenConfig{Radius: cfg.Radius, Seed: cfg.Seed})
	w := world.New(cfg.EscalationCapacity, cfg.BreachCapacity)

	spawnCfg := scenario.DefaultSpawnConfig()
	spawnCfg.Seed = cfg.Seed
	spawnCfg.Ships = cfg.Ships
	spawnCfg.CrewPerShip = cfg.CrewPerShip
	spawner := scenario.NewSpawner(spawnCfg, sec)
	spawner.Populate(w, catalog.Build())

	slog.Info("fleet ready",
		"ships", len(w.Ships),
		"factions", len(w.Factions),
		"doctrines", catalog.Names(),
		"zones", len(sec.Coords()),
	)

	// ── Simulation ────────────────────────────────────────────────────
	opts := engine.DefaultOptions()
	if cfg.Workers > 0 {
		opts.SuccessionWorkers = cfg.Workers
	}
	opts.AlertThreshold = cfg.AlertThreshold
	opts.CustodyThreshold = cfg.CustodyThreshold

	sim := engine.NewSimulation(w, sec, opts)
	sim.Director = scenario.NewDirector(cfg.Seed, sec, spawner)
	if cfg.AckDelay > 0 {
		sim.Acknowledger = scenario.NewAutoAcknowledger(cfg.AckDelay)
	}

	eng := engine.NewEngine()
	eng.Interval = cfg.TickInterval

	save := func(reason string) {
		snap := sim.Snapshot()
		if err := db.SaveFleetState(snap); err != nil {
			slog.Error(reason+" save failed", "error", err)
			return
		}
		sim.MarkSaved(snap)
	}

	// Wire tick callbacks, auto-save every sim-day.
	eng.OnTick = sim.TickMinute
	eng.OnHour = sim.TickHour
	eng.OnDay = func(clock simtime.Clock) {
		sim.TickDay(clock)
		save("daily")
	}
	eng.OnWeek = sim.TickWeek

	// ── HTTP API ──────────────────────────────────────────────────────
	if serve {
		if cfg.AdminKey == "" {
			slog.Warn("FLEETSIM_ADMIN_KEY not set, admin POST endpoints will be disabled")
		}
		srv := &api.Server{
			Sim:         sim,
			Eng:         eng,
			Port:        cfg.Port,
			AdminKey:    cfg.AdminKey,
			CORSOrigins: cfg.CORSOrigins,
		}
		srv.Start()
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			srv.Shutdown(sctx)
		}()
		fmt.Fprintf(cmd.OutOrStdout(), "API: http://localhost:%d/api/v1/status\n", cfg.Port)
	}

	// ── Start ─────────────────────────────────────────────────────────
	start := time.Now()
	if ticks > 0 {
		eng.Advance(ticks)
	} else {
		sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		go func() {
			<-sigCtx.Done()
			slog.Info("shutting down")
			eng.Stop()
		}()
		fmt.Fprintln(cmd.OutOrStdout(), "Starting simulation... (Ctrl+C to stop)")
		eng.Run()
	}

	// Status before the final save, which releases the ticket queue.
	st := sim.Status()
	save("final")

	fmt.Fprintf(cmd.OutOrStdout(),
		"Stopped at %s after %s ticks in %s: %s orders completed, %s seats filled, %s escalations raised, %s tickets queued.\n",
		st.Time,
		humanize.Comma(int64(st.Tick)),
		time.Since(start).Round(time.Millisecond),
		humanize.Comma(int64(st.Stats.OrdersCompleted)),
		humanize.Comma(int64(st.Stats.SeatsFilled)),
		humanize.Comma(int64(st.Stats.EscalationsRaised)),
		humanize.Comma(int64(st.QueuedTickets)),
	)
	return nil
}
