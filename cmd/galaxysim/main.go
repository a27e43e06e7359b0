// Command galaxysim runs the autonomous galaxy simulation headless, saving
// to SQLite as it goes.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"

	"github.com/talgya/galaxy-sim/internal/catalog"
	"github.com/talgya/galaxy-sim/internal/config"
	"github.com/talgya/galaxy-sim/internal/engine"
	"github.com/talgya/galaxy-sim/internal/persistence"
	"github.com/talgya/galaxy-sim/internal/ships"
)

func main() {
	configPath := flag.String("config", os.Getenv("GALAXYSIM_CONFIG"), "YAML config file (optional)")
	fresh := flag.Bool("new", false, "generate a new galaxy even if a save exists")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Parse()

	setupLogging(*verbose)

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cat, err := loadCatalog(cfg.CatalogPath)
	if err != nil {
		slog.Error("failed to load catalog", "error", err)
		os.Exit(1)
	}

	// ── Database ──────────────────────────────────────────────────────
	if dir := filepath.Dir(cfg.DBPath); dir != "" {
		os.MkdirAll(dir, 0755)
	}
	db, err := persistence.Open(cfg.DBPath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("database opened", "path", cfg.DBPath)

	// ── Load or Generate Galaxy ───────────────────────────────────────
	var sim *engine.Simulation
	if !*fresh {
		sim, err = db.LoadGalaxy(cfg, cat)
		if err != nil && !errors.Is(err, persistence.ErrNoGalaxy) {
			slog.Error("failed to load galaxy", "error", err)
			os.Exit(1)
		}
	}
	if sim == nil {
		slog.Info("generating galaxy...")
		sim, err = engine.NewGalaxy(cfg, cat)
		if err != nil {
			slog.Error("galaxy generation failed", "error", err)
			os.Exit(1)
		}
		if err := db.ResetCheckpoints(); err != nil {
			slog.Error("failed to reset checkpoints", "error", err)
		}
		if err := db.SaveGalaxy(sim); err != nil {
			slog.Error("initial save failed", "error", err)
		}
	}

	// ── Engine ────────────────────────────────────────────────────────
	eng := engine.NewEngine(sim.TurnNumber, cfg.Galaxy.CheckpointEvery)
	eng.OnTurn = func(uint64) { sim.Turn() }
	eng.OnCheckpoint = func(turn uint64) {
		if err := db.SaveGalaxy(sim); err != nil {
			slog.Error("autosave failed", "turn", turn, "error", err)
			return
		}
		if _, err := db.Checkpoint(sim); err != nil {
			slog.Error("checkpoint failed", "turn", turn, "error", err)
		}
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("received signal, shutting down", "signal", sig)
		eng.Stop()
	}()

	fmt.Printf("\nThe galaxy is alive: %d ships across %d sectors, %d factions.\n",
		len(sim.Ships), sim.WorldMap.SectorCount(), len(sim.Factions))
	if sim.TurnNumber > 0 {
		fmt.Printf("Resuming from turn %s\n", humanize.Comma(int64(sim.TurnNumber)))
	}
	fmt.Println("Starting simulation... (Ctrl+C to stop)")

	eng.Run(cfg.Turns)

	printSummary(sim)
	fmt.Println("Simulation stopped. Galaxy saved.")
}

// setupLogging writes text logs to a terminal and JSON everywhere else.
func setupLogging(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}

func loadCatalog(path string) (*catalog.Catalog, error) {
	if path == "" {
		return catalog.Default()
	}
	return catalog.Load(path)
}

func printSummary(sim *engine.Simulation) {
	fmt.Printf("\nTurn %s\n", humanize.Comma(int64(sim.TurnNumber)))
	for _, f := range sim.Factions {
		leader := "none"
		if f.LeaderID != nil {
			if sh := sim.Ship(ships.ID(*f.LeaderID)); sh != nil {
				leader = sh.Name
			}
		}
		claims := 0
		for _, s := range sim.WorldMap.All() {
			claims += s.ClaimCount(f.ID)
		}
		fmt.Printf("  %-22s %4d members  %3d claims  %10s credits  leader: %s\n",
			f.Name, len(sim.FactionMembers(f.ID)), claims, humanize.Comma(int64(f.Economy)), leader)
	}
	if p := sim.Player(); p != nil {
		loc, _ := sim.Location(p.ID)
		fmt.Printf("  %s at %s with %s credits\n", p.Name, loc.Format(), humanize.Comma(int64(p.Credits())))
	}
}
