package world

import (
	"errors"
	"fmt"
)

// Transition failures. A failed transition never changes anything.
var (
	ErrNotOrbital       = errors.New("not in orbit")
	ErrNotDocked        = errors.New("not docked")
	ErrNotLanded        = errors.New("not landed")
	ErrAlreadyDocked    = errors.New("already docked")
	ErrAlreadyLanded    = errors.New("already landed")
	ErrInvalidOrbit     = errors.New("orbit out of range")
	ErrNoStation        = errors.New("no such station at this orbit")
	ErrNoPlanet         = errors.New("no planet at this orbit")
	ErrNoRegion         = errors.New("no such region on this planet")
	ErrNotAtEdge        = errors.New("not at the sector edge")
	ErrNotIntergalactic = errors.New("not in intergalactic space")
	ErrNoSector         = errors.New("no sector at these coordinates")
	ErrInBattle         = errors.New("in battle")
	ErrNotInBattle      = errors.New("not in battle")
	ErrOutOfRange       = errors.New("destination out of range")
)

// requireOrbital rejects every variant other than Orbital with the most
// specific reason.
func requireOrbital(loc Location) error {
	switch loc.Kind {
	case Orbital:
		return nil
	case Docked:
		return ErrAlreadyDocked
	case Landed:
		return ErrAlreadyLanded
	case InBattle:
		return ErrInBattle
	case Intergalactic:
		return ErrNotOrbital
	}
	return ErrNotOrbital
}

func sectorFor(loc Location, s *Sector) error {
	if s == nil || s.Coord != loc.Sector {
		return fmt.Errorf("%s: %w", loc.Sector, ErrNoSector)
	}
	return nil
}

// Dock moves an orbiting ship onto a station at its orbit.
func Dock(loc Location, s *Sector, station int) (Location, error) {
	if err := requireOrbital(loc); err != nil {
		return loc, err
	}
	if err := sectorFor(loc, s); err != nil {
		return loc, err
	}
	st := s.Station(station)
	if st == nil || st.Orbit != loc.Orbit {
		return loc, fmt.Errorf("station %d: %w", station, ErrNoStation)
	}
	return AtStation(loc.Sector, loc.Orbit, station), nil
}

// Undock returns a docked ship to orbit.
func Undock(loc Location) (Location, error) {
	if loc.Kind != Docked {
		return loc, ErrNotDocked
	}
	return InOrbit(loc.Sector, loc.Orbit), nil
}

// Land sets an orbiting ship down on a region of the planet at its orbit.
func Land(loc Location, s *Sector, region int) (Location, error) {
	if err := requireOrbital(loc); err != nil {
		return loc, err
	}
	if err := sectorFor(loc, s); err != nil {
		return loc, err
	}
	if s.PlanetAt(loc.Orbit) == nil {
		return loc, ErrNoPlanet
	}
	if s.Region(loc.Orbit, region) == nil {
		return loc, fmt.Errorf("region %d: %w", region, ErrNoRegion)
	}
	return OnRegion(loc.Sector, loc.Orbit, region), nil
}

// Takeoff returns a landed ship to orbit.
func Takeoff(loc Location) (Location, error) {
	if loc.Kind != Landed {
		return loc, ErrNotLanded
	}
	return InOrbit(loc.Sector, loc.Orbit), nil
}

// ChangeOrbit moves an orbiting ship delta orbits outward (negative = inward).
func ChangeOrbit(loc Location, s *Sector, delta int) (Location, error) {
	if err := requireOrbital(loc); err != nil {
		return loc, err
	}
	if err := sectorFor(loc, s); err != nil {
		return loc, err
	}
	target := loc.Orbit + delta
	if delta == 0 || !s.ValidOrbit(target) {
		return loc, fmt.Errorf("orbit %d of %d: %w", target, s.Orbits, ErrInvalidOrbit)
	}
	return InOrbit(loc.Sector, target), nil
}

// EnterSector brings a ship in from intergalactic space to the sector edge.
func EnterSector(loc Location, m *Map) (Location, error) {
	if loc.Kind != Intergalactic {
		return loc, ErrNotIntergalactic
	}
	s := m.Get(loc.Sector)
	if s == nil {
		return loc, fmt.Errorf("%s: %w", loc.Sector, ErrNoSector)
	}
	return InOrbit(s.Coord, s.Edge()), nil
}

// EscapeSector leaves the sector from its edge orbit.
func EscapeSector(loc Location, s *Sector) (Location, error) {
	if err := requireOrbital(loc); err != nil {
		return loc, err
	}
	if err := sectorFor(loc, s); err != nil {
		return loc, err
	}
	if loc.Orbit != s.Edge() {
		return loc, ErrNotAtEdge
	}
	return InSpace(loc.Sector), nil
}

// Jump moves one step through intergalactic space to an adjacent coordinate.
func Jump(loc Location, m *Map, to Coord) (Location, error) {
	if loc.Kind != Intergalactic {
		return loc, ErrNotIntergalactic
	}
	if !loc.Sector.Adjacent(to) || !m.InBounds(to) {
		return loc, fmt.Errorf("jump %s to %s: %w", loc.Sector, to, ErrOutOfRange)
	}
	return InSpace(to), nil
}

// Warp moves through intergalactic space up to maxRange jumps in one step.
func Warp(loc Location, m *Map, to Coord, maxRange int) (Location, error) {
	if loc.Kind != Intergalactic {
		return loc, ErrNotIntergalactic
	}
	d := loc.Sector.Distance(to)
	if d == 0 || d > maxRange || !m.InBounds(to) {
		return loc, fmt.Errorf("warp %s to %s (range %d): %w", loc.Sector, to, maxRange, ErrOutOfRange)
	}
	return InSpace(to), nil
}

// JoinBattle pulls an orbiting ship into a battle at its orbit.
func JoinBattle(loc Location, id BattleID) (Location, error) {
	if err := requireOrbital(loc); err != nil {
		return loc, err
	}
	return InFight(loc.Sector, loc.Orbit, id), nil
}

// LeaveBattle returns a battle participant to orbit where the battle was.
func LeaveBattle(loc Location) (Location, error) {
	if loc.Kind != InBattle {
		return loc, ErrNotInBattle
	}
	return InOrbit(loc.Sector, loc.Orbit), nil
}

// FleeBattle moves a battle participant to another orbit of the sector.
func FleeBattle(loc Location, s *Sector, orbit int) (Location, error) {
	if loc.Kind != InBattle {
		return loc, ErrNotInBattle
	}
	if err := sectorFor(loc, s); err != nil {
		return loc, err
	}
	if orbit == loc.Orbit || !s.ValidOrbit(orbit) {
		return loc, fmt.Errorf("flee to orbit %d: %w", orbit, ErrInvalidOrbit)
	}
	return InOrbit(loc.Sector, orbit), nil
}

// EscapeOrbits returns the orbits a ship fleeing from orbit may reach, one
// step up or down, within the sector.
func EscapeOrbits(s *Sector, orbit int) []int {
	var out []int
	for _, o := range []int{orbit - 1, orbit + 1} {
		if s.ValidOrbit(o) {
			out = append(out, o)
		}
	}
	return out
}
