package world

import (
	"fmt"
	"sort"
)

// Map holds every sector in the galaxy.
type Map struct {
	Sectors map[Coord]*Sector `json:"-"`
	Radius  int               `json:"radius"`

	order []Coord
}

// NewMap creates an empty map with the given radius.
// Coordinates satisfy |x| <= radius and |y| <= radius.
func NewMap(radius int) *Map {
	return &Map{
		Sectors: make(map[Coord]*Sector),
		Radius:  radius,
	}
}

// Get returns the sector at the given coordinate, or nil for empty space.
func (m *Map) Get(c Coord) *Sector {
	return m.Sectors[c]
}

// Set places a sector at its coordinate.
func (m *Map) Set(s *Sector) {
	if _, ok := m.Sectors[s.Coord]; !ok {
		m.order = append(m.order, s.Coord)
		sort.Slice(m.order, func(i, j int) bool { return m.order[i].Less(m.order[j]) })
	}
	m.Sectors[s.Coord] = s
}

// InBounds returns true if the coordinate lies on the grid.
func (m *Map) InBounds(c Coord) bool {
	return abs(c.X) <= m.Radius && abs(c.Y) <= m.Radius
}

// Coords returns sector coordinates in row-major order.
func (m *Map) Coords() []Coord {
	out := make([]Coord, len(m.order))
	copy(out, m.order)
	return out
}

// All returns sectors in row-major order.
func (m *Map) All() []*Sector {
	out := make([]*Sector, 0, len(m.order))
	for _, c := range m.order {
		out = append(out, m.Sectors[c])
	}
	return out
}

// Within returns sectors no more than r jumps from center, nearest first,
// ties in row-major order.
func (m *Map) Within(center Coord, r int) []*Sector {
	var out []*Sector
	for _, c := range m.order {
		if center.Distance(c) <= r {
			out = append(out, m.Sectors[c])
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return center.Distance(out[i].Coord) < center.Distance(out[j].Coord)
	})
	return out
}

// SectorCount returns the number of sectors.
func (m *Map) SectorCount() int {
	return len(m.order)
}

// String returns a summary of the map.
func (m *Map) String() string {
	return fmt.Sprintf("Map(radius=%d, sectors=%d)", m.Radius, m.SectorCount())
}
