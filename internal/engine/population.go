// Population: keeping station sectors inhabited and faction income.
package engine

import (
	"fmt"
	"log/slog"

	"github.com/dustin/go-humanize"

	"github.com/talgya/galaxy-sim/internal/ships"
	"github.com/talgya/galaxy-sim/internal/social"
	"github.com/talgya/galaxy-sim/internal/world"
)

// restock spawns a ship docked at a random station in every station-bearing
// sector that has fallen below MinSectorShips.
func (s *Simulation) restock() {
	floor := s.Config.Galaxy.MinSectorShips
	if floor <= 0 {
		return
	}
	for _, sector := range s.WorldMap.All() {
		if len(sector.Stations) == 0 || s.Roster.SectorCount(sector.Coord) >= floor {
			continue
		}
		sh, err := s.spawnAt(sector, s.rng.Intn(len(sector.Stations)))
		if err != nil {
			slog.Warn("restock failed", "sector", sector.Coord, "error", err)
			continue
		}
		s.EmitEvent(Event{
			Turn:        s.TurnNumber,
			Description: fmt.Sprintf("%s arrives in %s", sh.Name, sector.Name),
			Category:    "arrival",
			Meta:        map[string]any{"ship_id": sh.ID, "sector": sector.Coord.String()},
		})
	}
}

// spawnAt creates an NPC docked at a station, aligned with the station's
// owner when it has one.
func (s *Simulation) spawnAt(sector *world.Sector, station int) (*ships.Ship, error) {
	st := sector.Station(station)
	if st == nil {
		return nil, fmt.Errorf("spawn in %s: %w", sector.Name, world.ErrNoStation)
	}
	var owner *social.FactionID
	if f, ok := world.OwnerOf(st.Owner); ok {
		owner = world.Own(f)
	}
	sh := s.spawner.Spawn(owner)
	if err := s.AddShip(sh, world.AtStation(sector.Coord, st.Orbit, station)); err != nil {
		return nil, err
	}
	return sh, nil
}

// collectIncome pays each faction for the regions and stations it holds
// every IncomeInterval turns.
func (s *Simulation) collectIncome() {
	cfg := s.Config.Economy
	if cfg.IncomeInterval == 0 || s.TurnNumber == 0 || s.TurnNumber%cfg.IncomeInterval != 0 {
		return
	}
	for _, f := range s.Factions {
		claims := 0
		for _, sector := range s.WorldMap.All() {
			claims += sector.ClaimCount(f.ID)
		}
		if claims == 0 {
			continue
		}
		income := claims * cfg.IncomePerClaim
		f.Economy += income
		slog.Debug("faction income", "faction", f.Name, "claims", claims, "income", humanize.Comma(int64(income)), "economy", humanize.Comma(int64(f.Economy)))
	}
}
