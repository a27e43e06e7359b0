// Galaxy creation: factions, territory, starting ships and the player.
package engine

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/talgya/galaxy-sim/internal/catalog"
	"github.com/talgya/galaxy-sim/internal/config"
	"github.com/talgya/galaxy-sim/internal/entropy"
	"github.com/talgya/galaxy-sim/internal/social"
	"github.com/talgya/galaxy-sim/internal/world"
)

// GenConfig derives the geometry settings from the simulation config.
func GenConfig(cfg *config.Config, seed int64) world.GenConfig {
	return world.GenConfig{
		Radius:        cfg.Galaxy.Radius,
		Seed:          seed,
		Density:       cfg.Galaxy.SectorDensity,
		MinOrbits:     cfg.Galaxy.MinOrbits,
		MaxOrbits:     cfg.Galaxy.MaxOrbits,
		PriceVariance: cfg.Economy.PriceVariance,
	}
}

// NewGalaxy generates a fresh galaxy: the map, the factions and their
// relationships, home stations, an initial population and the player.
func NewGalaxy(cfg *config.Config, cat *catalog.Catalog) (*Simulation, error) {
	seed := cfg.Seed
	if seed == 0 {
		seed = entropy.CryptoSeed()
	}
	m := world.Generate(GenConfig(cfg, seed), cat)
	s := NewSimulation(cfg, cat, m, seed)
	s.RunID = uuid.NewString()

	for _, f := range social.SeedFactions(cfg.Galaxy.Factions, cfg.Economy.StartingEconomy) {
		s.AddFaction(f)
	}
	s.initRelations()

	homes := world.HomeSectors(m, len(s.Factions), cfg.Galaxy.HomeDistance)
	for i, f := range s.Factions {
		if i >= len(homes) {
			slog.Warn("faction has no home station", "faction", f.Name)
			continue
		}
		st := homes[i].Stations[0]
		st.Owner = world.Own(f.ID)
		f.AddNews(0, cfg.Politics.NewsLimit, "The %s was founded at %s in %s", f.Name, st.Name, homes[i].Name)
	}

	for _, sector := range m.All() {
		for i := 0; i < len(sector.Stations) && i < cfg.Galaxy.ShipsPerSector; i++ {
			if _, err := s.spawnAt(sector, i); err != nil {
				return nil, err
			}
		}
		for i := len(sector.Stations); i < cfg.Galaxy.ShipsPerSector && len(sector.Stations) > 0; i++ {
			if _, err := s.spawnAt(sector, s.rng.Intn(len(sector.Stations))); err != nil {
				return nil, err
			}
		}
	}

	if err := s.placePlayer(homes); err != nil {
		return nil, err
	}

	for _, f := range s.Factions {
		s.holdElection(f, false)
	}

	slog.Info("galaxy generated",
		"run", s.RunID,
		"seed", seed,
		"sectors", m.SectorCount(),
		"factions", len(s.Factions),
		"ships", len(s.Ships),
	)
	return s, nil
}

// initRelations sets every pair's starting relationship. Two factions always
// start at war; with more, each pair starts at war or peace, never allied.
func (s *Simulation) initRelations() {
	for i, a := range s.Factions {
		for _, b := range s.Factions[i+1:] {
			t := social.War
			if len(s.Factions) > 2 && s.rng.Bool() {
				t = social.Peace
			}
			if err := s.Relations.Init(a.ID, b.ID, t); err != nil {
				slog.Warn("relationship init failed", "a", a.Name, "b", b.Name, "error", err)
			}
		}
	}
}

// placePlayer docks the player at the first faction's home station.
func (s *Simulation) placePlayer(homes []*world.Sector) error {
	if len(homes) == 0 || len(s.Factions) == 0 {
		return fmt.Errorf("place player: %w", world.ErrNoStation)
	}
	home := homes[0]
	st := home.Stations[0]
	p := s.spawner.SpawnPlayer(s.Config.Galaxy.PlayerName, world.Own(s.Factions[0].ID))
	return s.AddShip(p, world.AtStation(home.Coord, st.Orbit, 0))
}
