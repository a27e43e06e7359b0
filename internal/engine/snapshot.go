package engine

import (
	"fmt"

	"github.com/talgya/galaxy-sim/internal/ships"
	"github.com/talgya/galaxy-sim/internal/world"
)

// SnapshotShip captures a ship together with the location and faction only
// the simulation can resolve. Battles are not saved, so a ship caught in one
// is recorded orbiting where the fight takes place.
func (s *Simulation) SnapshotShip(id ships.ID) (ships.Snapshot, error) {
	sh := s.Ship(id)
	if sh == nil {
		return nil, fmt.Errorf("snapshot ship %d: %w", id, ErrUnknownShip)
	}
	loc, ok := s.Roster.Location(id)
	if !ok {
		return nil, fmt.Errorf("snapshot ship %d: not on the roster", id)
	}
	if left, err := world.LeaveBattle(loc); err == nil {
		loc = left
	}

	snap := sh.Snapshot()
	snap[ships.KeyLocation] = loc.String()
	if fid, ok := sh.FactionID(); ok {
		if f := s.Faction(fid); f != nil {
			snap[ships.KeyFaction] = f.Name
		}
	}
	return snap, nil
}

// RestoreShip rebuilds a saved ship and places it on the roster.
func (s *Simulation) RestoreShip(id ships.ID, snap ships.Snapshot) (*ships.Ship, error) {
	sh, err := ships.Restore(id, snap, s.cat)
	if err != nil {
		return nil, err
	}
	loc, err := world.ParseLocation(snap[ships.KeyLocation])
	if err != nil {
		return nil, fmt.Errorf("ship %d location: %w", id, err)
	}
	if name := snap[ships.KeyFaction]; name != "" {
		f := s.FactionByName(name)
		if f == nil {
			return nil, fmt.Errorf("ship %d faction %q: %w", id, name, ErrUnknownFaction)
		}
		sh.Join(f.ID)
	}
	if err := s.AddShip(sh, loc); err != nil {
		return nil, err
	}
	return sh, nil
}
