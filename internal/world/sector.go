package world

import (
	"github.com/talgya/galaxy-sim/internal/catalog"
	"github.com/talgya/galaxy-sim/internal/social"
)

// Sector is a star system: a set of numbered orbits holding planets,
// stations and asteroid belts. Orbit 1 is innermost; orbit Orbits is the
// edge, the only orbit a ship may leave the sector from.
type Sector struct {
	Coord    Coord      `json:"coord"`
	Name     string     `json:"name"`
	Star     string     `json:"star"`
	Orbits   int        `json:"orbits"`
	Planets  []*Planet  `json:"planets,omitempty"`
	Stations []*Station `json:"stations,omitempty"`
	Belts    []int      `json:"belts,omitempty"` // Orbits holding mineable asteroid belts
	Richness float64    `json:"richness"`        // 0–1, scales belt yields
}

// Planet sits alone at one orbit and is divided into claimable regions.
type Planet struct {
	Name    string    `json:"name"`
	Orbit   int       `json:"orbit"`
	Regions []*Region `json:"regions"`
}

// Region is a landable, mineable and claimable area of a planet.
type Region struct {
	Name  string            `json:"name"`
	Ore   int               `json:"ore"` // Ore yielded per mining action
	Owner *social.FactionID `json:"owner,omitempty"`
}

// Station is a dockable trading post orbiting in a sector.
type Station struct {
	Name   string            `json:"name"`
	Orbit  int               `json:"orbit"`
	Owner  *social.FactionID `json:"owner,omitempty"`
	Prices catalog.PriceList `json:"-"`
}

// Edge returns the outermost orbit.
func (s *Sector) Edge() int {
	return s.Orbits
}

// ValidOrbit reports whether orbit exists in this sector.
func (s *Sector) ValidOrbit(orbit int) bool {
	return orbit >= 1 && orbit <= s.Orbits
}

// PlanetAt returns the planet at an orbit, or nil.
func (s *Sector) PlanetAt(orbit int) *Planet {
	for _, p := range s.Planets {
		if p.Orbit == orbit {
			return p
		}
	}
	return nil
}

// StationsAt returns the indexes of stations at an orbit.
func (s *Sector) StationsAt(orbit int) []int {
	var out []int
	for i, st := range s.Stations {
		if st.Orbit == orbit {
			out = append(out, i)
		}
	}
	return out
}

// Station returns the station at index, or nil.
func (s *Sector) Station(index int) *Station {
	if index < 0 || index >= len(s.Stations) {
		return nil
	}
	return s.Stations[index]
}

// HasBelt reports whether an asteroid belt occupies the orbit.
func (s *Sector) HasBelt(orbit int) bool {
	for _, b := range s.Belts {
		if b == orbit {
			return true
		}
	}
	return false
}

// BeltYield is the ore a single mining action extracts from a belt here.
func (s *Sector) BeltYield() int {
	return 1 + int(s.Richness*3)
}

// Region returns a region on the planet at orbit, or nil.
func (s *Sector) Region(orbit, index int) *Region {
	p := s.PlanetAt(orbit)
	if p == nil || index < 0 || index >= len(p.Regions) {
		return nil
	}
	return p.Regions[index]
}

// ClaimCount returns how many regions and stations a faction owns here.
func (s *Sector) ClaimCount(f social.FactionID) int {
	n := 0
	for _, st := range s.Stations {
		if st.Owner != nil && *st.Owner == f {
			n++
		}
	}
	for _, p := range s.Planets {
		for _, r := range p.Regions {
			if r.Owner != nil && *r.Owner == f {
				n++
			}
		}
	}
	return n
}

// OwnerOf is a small helper for nullable owners.
func OwnerOf(owner *social.FactionID) (social.FactionID, bool) {
	if owner == nil {
		return 0, false
	}
	return *owner, true
}

// Own returns an owner handle for f.
func Own(f social.FactionID) *social.FactionID {
	return &f
}
