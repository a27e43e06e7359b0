// Station placement and faction home selection.
package world

import (
	"fmt"
	"sort"

	"github.com/talgya/galaxy-sim/internal/catalog"
	"github.com/talgya/galaxy-sim/internal/entropy"
)

// stationScore rates a sector as a trading post site: planets and belts bring
// traffic, richness brings ore.
func stationScore(s *Sector) float64 {
	return float64(len(s.Planets))*1.5 + float64(len(s.Belts)) + s.Richness*2
}

// PlaceStations gives every sector scoring above the median one station, and
// the best sectors a second. Each station clones the catalog prices with its
// own jitter. The best-scoring sector always receives a station.
func PlaceStations(m *Map, cat *catalog.Catalog, rng *entropy.Source, variance float64) {
	sectors := rankedSectors(m)
	if len(sectors) == 0 {
		return
	}

	for i, s := range sectors {
		count := 0
		switch {
		case i < len(sectors)/4 || i == 0:
			count = 2
		case i < len(sectors)/2:
			count = 1
		}
		for n := 0; n < count; n++ {
			s.Stations = append(s.Stations, &Station{
				Name:   fmt.Sprintf("%s Station %s", s.Name, string(rune('A'+n))),
				Orbit:  rng.Between(1, s.Orbits),
				Prices: cat.PriceList(rng, variance),
			})
		}
	}
}

// HomeSectors picks up to n station-bearing sectors as faction homes, best
// first, keeping them at least minDist jumps apart when possible.
func HomeSectors(m *Map, n, minDist int) []*Sector {
	var withStations []*Sector
	for _, s := range rankedSectors(m) {
		if len(s.Stations) > 0 {
			withStations = append(withStations, s)
		}
	}

	var homes []*Sector
	for dist := minDist; dist >= 0 && len(homes) < n; dist-- {
		for _, s := range withStations {
			if len(homes) >= n {
				break
			}
			if contains(homes, s) || tooClose(s.Coord, homes, dist) {
				continue
			}
			homes = append(homes, s)
		}
	}
	return homes
}

func rankedSectors(m *Map) []*Sector {
	sectors := m.All()
	sort.SliceStable(sectors, func(i, j int) bool {
		return stationScore(sectors[i]) > stationScore(sectors[j])
	})
	return sectors
}

func tooClose(c Coord, placed []*Sector, minDist int) bool {
	for _, s := range placed {
		if c.Distance(s.Coord) < minDist {
			return true
		}
	}
	return false
}

func contains(list []*Sector, s *Sector) bool {
	for _, x := range list {
		if x == s {
			return true
		}
	}
	return false
}
