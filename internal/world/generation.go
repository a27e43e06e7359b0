// Galaxy generation using layered simplex noise.
// A density layer decides which grid cells hold a star system and a richness
// layer scales the ore of its belts and regions.
package world

import (
	"fmt"
	"strings"

	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/talgya/galaxy-sim/internal/catalog"
	"github.com/talgya/galaxy-sim/internal/entropy"
)

// GenConfig holds galaxy generation parameters.
type GenConfig struct {
	Radius        int     // Grid radius; coordinates span [-Radius, Radius]
	Seed          int64   // Random seed (0 = random)
	Density       float64 // Noise threshold (0.0–1.0); higher = fewer sectors
	MinOrbits     int
	MaxOrbits     int
	PriceVariance float64 // Station price jitter
}

// DefaultGenConfig returns a reasonable starting configuration.
func DefaultGenConfig() GenConfig {
	return GenConfig{
		Radius:        4,
		Density:       0.45,
		MinOrbits:     3,
		MaxOrbits:     8,
		PriceVariance: 0.25,
	}
}

// SmallTestConfig returns a tiny galaxy for tests.
func SmallTestConfig() GenConfig {
	return GenConfig{
		Radius:        2,
		Seed:          42,
		Density:       0.4,
		MinOrbits:     3,
		MaxOrbits:     5,
		PriceVariance: 0.25,
	}
}

// Generate creates the galaxy geometry. The same seed always yields the same
// map, so saves only need to store the seed and the mutable ownership.
func Generate(cfg GenConfig, cat *catalog.Catalog) *Map {
	seed := cfg.Seed
	if seed == 0 {
		seed = entropy.CryptoSeed()
	}
	rng := entropy.New(seed + 100)

	densityNoise := opensimplex.NewNormalized(seed)
	richNoise := opensimplex.NewNormalized(seed + 1)

	m := NewMap(cfg.Radius)

	for y := -cfg.Radius; y <= cfg.Radius; y++ {
		for x := -cfg.Radius; x <= cfg.Radius; x++ {
			fx, fy := float64(x), float64(y)
			density := octaveNoise(densityNoise, fx, fy, 3, 0.35, 0.5)
			if density < cfg.Density {
				continue
			}
			rich := octaveNoise(richNoise, fx, fy, 2, 0.25, 0.5)
			m.Set(makeSector(Coord{X: x, Y: y}, rich, cfg, rng))
		}
	}

	// A galaxy needs somewhere to go: fall back to the center and one
	// neighbor when the noise leaves the grid too empty.
	for _, c := range []Coord{{0, 0}, {1, 0}} {
		if m.SectorCount() >= 2 {
			break
		}
		if m.Get(c) == nil {
			m.Set(makeSector(c, 0.5, cfg, rng))
		}
	}

	PlaceStations(m, cat, rng, cfg.PriceVariance)
	return m
}

// makeSector lays out one star system: orbits, planets with regions and
// asteroid belts. Stations are placed afterwards across the whole map.
func makeSector(c Coord, richness float64, cfg GenConfig, rng *entropy.Source) *Sector {
	s := &Sector{
		Coord:    c,
		Name:     systemName(rng),
		Star:     starClasses[rng.Intn(len(starClasses))],
		Orbits:   rng.Between(cfg.MinOrbits, cfg.MaxOrbits),
		Richness: richness,
	}

	for orbit := 1; orbit <= s.Orbits; orbit++ {
		switch roll := rng.Float64(); {
		case roll < 0.45:
			p := &Planet{Name: fmt.Sprintf("%s %s", s.Name, roman(orbit)), Orbit: orbit}
			regions := rng.Between(1, 4)
			for i := 0; i < regions; i++ {
				p.Regions = append(p.Regions, &Region{
					Name: regionNames[rng.Intn(len(regionNames))],
					Ore:  1 + int(richness*float64(rng.Between(1, 4))),
				})
			}
			s.Planets = append(s.Planets, p)
		case roll < 0.45+0.25*richness+0.1:
			s.Belts = append(s.Belts, orbit)
		}
	}
	return s
}

var starClasses = []string{"red dwarf", "yellow dwarf", "white dwarf", "orange giant", "blue giant", "binary"}

var regionNames = []string{"Highlands", "Basin", "Plateau", "Rift", "Lowlands", "Crater Field", "Ice Shelf", "Dunes"}

var syllables = []string{"ka", "ri", "to", "vel", "an", "mir", "os", "tha", "zen", "cor", "ul", "bex", "ny", "dra", "qua", "sol"}

// systemName strings two or three syllables together.
func systemName(rng *entropy.Source) string {
	n := rng.Between(2, 3)
	name := ""
	for i := 0; i < n; i++ {
		name += syllables[rng.Intn(len(syllables))]
	}
	return strings.ToUpper(name[:1]) + name[1:]
}

func roman(n int) string {
	numerals := []string{"", "I", "II", "III", "IV", "V", "VI", "VII", "VIII", "IX", "X", "XI", "XII"}
	if n > 0 && n < len(numerals) {
		return numerals[n]
	}
	return fmt.Sprint(n)
}

// octaveNoise samples multi-octave simplex noise normalized to roughly 0–1.
func octaveNoise(noise opensimplex.Noise, x, y float64, octaves int, frequency, persistence float64) float64 {
	total := 0.0
	amplitude := 1.0
	maxVal := 0.0

	for i := 0; i < octaves; i++ {
		total += noise.Eval2(x*frequency, y*frequency) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		frequency *= 2
	}

	return total / maxVal
}
