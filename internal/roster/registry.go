// Package roster tracks where every ship is. The registry is the only owner of
// ship locations: a ship is a member of exactly one roster (the one keyed by
// its Location) or of none once removed.
package roster

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/talgya/galaxy-sim/internal/ships"
	"github.com/talgya/galaxy-sim/internal/world"
)

var (
	ErrAlreadyPlaced = errors.New("ship already has a location")
	ErrNotPlaced     = errors.New("ship has no location")
)

type members map[ships.ID]struct{}

// Registry maps ships to locations with an index per roster and per sector.
type Registry struct {
	where   map[ships.ID]world.Location
	rosters map[world.Location]members
	sectors map[world.Coord]members
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		where:   make(map[ships.ID]world.Location),
		rosters: make(map[world.Location]members),
		sectors: make(map[world.Coord]members),
	}
}

// Place registers a ship that has no location yet.
func (r *Registry) Place(id ships.ID, loc world.Location) error {
	if old, ok := r.where[id]; ok {
		return fmt.Errorf("ship %d at %s: %w", id, old, ErrAlreadyPlaced)
	}
	r.add(id, loc)
	return nil
}

// Move relocates a ship: it leaves its old roster and joins the new one in a
// single step.
func (r *Registry) Move(id ships.ID, loc world.Location) error {
	old, ok := r.where[id]
	if !ok {
		return fmt.Errorf("ship %d: %w", id, ErrNotPlaced)
	}
	if old == loc {
		return nil
	}
	r.drop(id, old)
	r.add(id, loc)
	return nil
}

// Remove revokes a ship's roster membership, whatever variant it held.
// Returns false when the ship was not registered.
func (r *Registry) Remove(id ships.ID) bool {
	old, ok := r.where[id]
	if !ok {
		return false
	}
	r.drop(id, old)
	delete(r.where, id)
	return true
}

// Location returns a ship's location.
func (r *Registry) Location(id ships.ID) (world.Location, bool) {
	loc, ok := r.where[id]
	return loc, ok
}

// Members returns the ships at exactly loc, in ID order.
func (r *Registry) Members(loc world.Location) []ships.ID {
	return sorted(r.rosters[loc])
}

// Count returns the number of ships at exactly loc.
func (r *Registry) Count(loc world.Location) int {
	return len(r.rosters[loc])
}

// InSector returns every ship bound to the sector at c (orbiting, landed,
// docked or fighting), in ID order.
func (r *Registry) InSector(c world.Coord) []ships.ID {
	return sorted(r.sectors[c])
}

// SectorCount returns the number of ships bound to the sector at c.
func (r *Registry) SectorCount(c world.Coord) int {
	return len(r.sectors[c])
}

// IDs returns every registered ship in ID order.
func (r *Registry) IDs() []ships.ID {
	out := make([]ships.ID, 0, len(r.where))
	for id := range r.where {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Len returns the number of registered ships.
func (r *Registry) Len() int {
	return len(r.where)
}

// Verify checks that every roster agrees with the location map and repairs
// disagreements: strays are dropped from rosters they do not belong to and
// missing memberships are restored. Returns the ships that needed repair.
func (r *Registry) Verify() []ships.ID {
	repaired := make(map[ships.ID]struct{})

	for loc, set := range r.rosters {
		for id := range set {
			if cur, ok := r.where[id]; !ok || cur != loc {
				delete(set, id)
				repaired[id] = struct{}{}
				slog.Warn("roster stray removed", "ship", id, "roster", loc.Format())
			}
		}
		if len(set) == 0 {
			delete(r.rosters, loc)
		}
	}
	for c, set := range r.sectors {
		for id := range set {
			if cur, ok := r.where[id]; !ok || !cur.InSector() || cur.Sector != c {
				delete(set, id)
				repaired[id] = struct{}{}
			}
		}
		if len(set) == 0 {
			delete(r.sectors, c)
		}
	}
	for id, loc := range r.where {
		if _, ok := r.rosters[loc][id]; !ok {
			r.add(id, loc)
			repaired[id] = struct{}{}
			slog.Warn("roster membership restored", "ship", id, "roster", loc.Format())
		} else if loc.InSector() {
			if _, ok := r.sectors[loc.Sector][id]; !ok {
				r.add(id, loc)
				repaired[id] = struct{}{}
			}
		}
	}

	return sorted(repaired)
}

func (r *Registry) add(id ships.ID, loc world.Location) {
	r.where[id] = loc
	if r.rosters[loc] == nil {
		r.rosters[loc] = make(members)
	}
	r.rosters[loc][id] = struct{}{}
	if loc.InSector() {
		if r.sectors[loc.Sector] == nil {
			r.sectors[loc.Sector] = make(members)
		}
		r.sectors[loc.Sector][id] = struct{}{}
	}
}

func (r *Registry) drop(id ships.ID, loc world.Location) {
	if set := r.rosters[loc]; set != nil {
		delete(set, id)
		if len(set) == 0 {
			delete(r.rosters, loc)
		}
	}
	if loc.InSector() {
		if set := r.sectors[loc.Sector]; set != nil {
			delete(set, id)
			if len(set) == 0 {
				delete(r.sectors, loc.Sector)
			}
		}
	}
}

func sorted(set members) []ships.ID {
	out := make([]ships.ID, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
