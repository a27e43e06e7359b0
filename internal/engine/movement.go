// Movement: location transitions with faction rules and costs.
package engine

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/talgya/galaxy-sim/internal/catalog"
	"github.com/talgya/galaxy-sim/internal/ships"
	"github.com/talgya/galaxy-sim/internal/social"
	"github.com/talgya/galaxy-sim/internal/world"
)

var ErrHostileStation = errors.New("station belongs to a faction at war with the ship")

// cost is what a transition charges once it has succeeded.
type cost struct {
	fuel    int
	energy  int
	credits int
}

// afford reports why a ship cannot pay c, or nil.
func (c cost) afford(sh *ships.Ship) error {
	switch {
	case sh.Amount(catalog.Fuel) < c.fuel:
		return fmt.Errorf("need %d fuel, have %d: %w", c.fuel, sh.Amount(catalog.Fuel), ships.ErrInsufficientResource)
	case sh.Amount(catalog.Energy) < c.energy:
		return fmt.Errorf("need %d energy, have %d: %w", c.energy, sh.Amount(catalog.Energy), ships.ErrInsufficientResource)
	case sh.Credits() < c.credits:
		return fmt.Errorf("need %d credits, have %d: %w", c.credits, sh.Credits(), ships.ErrInsufficientFunds)
	}
	return nil
}

func (c cost) charge(sh *ships.Ship) {
	sh.Res(catalog.Fuel).Amount -= c.fuel
	sh.Res(catalog.Energy).Amount -= c.energy
	sh.Res(catalog.Credits).Amount -= c.credits
}

// transition moves a ship to the location next computes from its current one.
// Nothing changes unless the transition is valid and affordable; the cost is
// charged after the roster move.
func (s *Simulation) transition(sh *ships.Ship, verb string, c cost, next func(loc world.Location) (world.Location, error)) (world.Location, error) {
	if sh == nil || sh.Destroyed {
		return world.Location{}, fmt.Errorf("%s: %w", verb, ships.ErrDestroyed)
	}
	loc, ok := s.Roster.Location(sh.ID)
	if !ok {
		return world.Location{}, fmt.Errorf("%s ship %d: %w", verb, sh.ID, ErrUnknownShip)
	}
	to, err := next(loc)
	if err != nil {
		return loc, fmt.Errorf("%s: %w", verb, err)
	}
	if err := c.afford(sh); err != nil {
		return loc, fmt.Errorf("%s: %w", verb, err)
	}
	if err := s.Roster.Move(sh.ID, to); err != nil {
		return loc, fmt.Errorf("%s: %w", verb, err)
	}
	c.charge(sh)
	slog.Debug("ship moved", "ship", sh.ID, "action", verb, "from", loc, "to", to)
	return to, nil
}

// sectorOf returns the sector a ship is in, or nil when it is between sectors.
func (s *Simulation) sectorOf(sh *ships.Ship) *world.Sector {
	loc, ok := s.Roster.Location(sh.ID)
	if !ok || !loc.InSector() {
		return nil
	}
	return s.WorldMap.Get(loc.Sector)
}

func (s *Simulation) dock(sh *ships.Ship, station int) error {
	sector := s.sectorOf(sh)
	if loc, ok := s.Roster.Location(sh.ID); ok {
		if _, err := world.Dock(loc, sector, station); err != nil {
			return fmt.Errorf("dock: %w", err)
		}
	}

	// The station exists past this point; check who owns it.
	c := cost{}
	var owner *social.Faction
	if sector != nil {
		st := sector.Station(station)
		if f, ok := world.OwnerOf(st.Owner); ok {
			owner = s.Faction(f)
			if mine, aligned := sh.FactionID(); aligned && s.isEnemy(mine, f) {
				return fmt.Errorf("dock at %s: %w", st.Name, ErrHostileStation)
			}
			if !s.Friendly(sh, f) {
				c.credits = s.Config.Costs.DockingFee
			}
		}
	}

	_, err := s.transition(sh, "dock", c, func(loc world.Location) (world.Location, error) {
		return world.Dock(loc, sector, station)
	})
	if err != nil {
		return err
	}
	if owner != nil && c.credits > 0 {
		owner.Economy += c.credits
	}
	return nil
}

func (s *Simulation) undock(sh *ships.Ship) error {
	_, err := s.transition(sh, "undock", cost{}, world.Undock)
	return err
}

func (s *Simulation) land(sh *ships.Ship, region int) error {
	sector := s.sectorOf(sh)
	_, err := s.transition(sh, "land", cost{fuel: s.Config.Costs.LandFuel}, func(loc world.Location) (world.Location, error) {
		return world.Land(loc, sector, region)
	})
	return err
}

func (s *Simulation) takeoff(sh *ships.Ship) error {
	_, err := s.transition(sh, "takeoff", cost{fuel: s.Config.Costs.TakeoffFuel}, world.Takeoff)
	return err
}

func (s *Simulation) changeOrbit(sh *ships.Ship, delta int) error {
	sector := s.sectorOf(sh)
	c := cost{fuel: s.Config.Costs.OrbitFuel * social.Abs(delta)}
	_, err := s.transition(sh, "change orbit", c, func(loc world.Location) (world.Location, error) {
		return world.ChangeOrbit(loc, sector, delta)
	})
	return err
}

func (s *Simulation) enterSector(sh *ships.Ship) error {
	_, err := s.transition(sh, "enter sector", cost{}, func(loc world.Location) (world.Location, error) {
		return world.EnterSector(loc, s.WorldMap)
	})
	return err
}

func (s *Simulation) escapeSector(sh *ships.Ship) error {
	sector := s.sectorOf(sh)
	_, err := s.transition(sh, "escape sector", cost{fuel: s.Config.Costs.EscapeFuel}, func(loc world.Location) (world.Location, error) {
		return world.EscapeSector(loc, sector)
	})
	return err
}

func (s *Simulation) jump(sh *ships.Ship, to world.Coord) error {
	_, err := s.transition(sh, "jump", cost{fuel: s.Config.Costs.JumpFuel}, func(loc world.Location) (world.Location, error) {
		return world.Jump(loc, s.WorldMap, to)
	})
	return err
}

func (s *Simulation) warp(sh *ships.Ship, to world.Coord) error {
	if !sh.CanWarp() {
		return fmt.Errorf("warp: %w", ships.ErrNoModule)
	}
	c := cost{fuel: s.Config.Costs.WarpFuel, energy: s.Config.Costs.WarpEnergy}
	_, err := s.transition(sh, "warp", c, func(loc world.Location) (world.Location, error) {
		return world.Warp(loc, s.WorldMap, to, s.Config.Costs.WarpRange)
	})
	return err
}

// ── Player commands ──

// Dock docks the player at a station in its orbit.
func (s *Simulation) Dock(station int) error {
	p, err := s.player()
	if err != nil {
		return err
	}
	return s.dock(p, station)
}

// Undock returns the player to orbit.
func (s *Simulation) Undock() error {
	p, err := s.player()
	if err != nil {
		return err
	}
	return s.undock(p)
}

// Land sets the player down on a region of the planet in its orbit.
func (s *Simulation) Land(region int) error {
	p, err := s.player()
	if err != nil {
		return err
	}
	return s.land(p, region)
}

// Takeoff lifts the player back to orbit.
func (s *Simulation) Takeoff() error {
	p, err := s.player()
	if err != nil {
		return err
	}
	return s.takeoff(p)
}

// ChangeOrbit moves the player delta orbits outward (negative = inward).
func (s *Simulation) ChangeOrbit(delta int) error {
	p, err := s.player()
	if err != nil {
		return err
	}
	return s.changeOrbit(p, delta)
}

// EnterSector brings the player from intergalactic space to a sector's edge.
func (s *Simulation) EnterSector() error {
	p, err := s.player()
	if err != nil {
		return err
	}
	return s.enterSector(p)
}

// EscapeSector takes the player from a sector's edge into intergalactic space.
func (s *Simulation) EscapeSector() error {
	p, err := s.player()
	if err != nil {
		return err
	}
	return s.escapeSector(p)
}

// Jump moves the player one intergalactic step.
func (s *Simulation) Jump(to world.Coord) error {
	p, err := s.player()
	if err != nil {
		return err
	}
	return s.jump(p, to)
}

// Warp moves the player up to WarpRange steps at once.
func (s *Simulation) Warp(to world.Coord) error {
	p, err := s.player()
	if err != nil {
		return err
	}
	return s.warp(p, to)
}
