// Ship spawning: names, starting resources and loadouts.
package ships

import (
	"github.com/talgya/galaxy-sim/internal/catalog"
	"github.com/talgya/galaxy-sim/internal/entropy"
	"github.com/talgya/galaxy-sim/internal/social"
)

// Spawner creates ships for the simulation.
type Spawner struct {
	rng     *entropy.Source
	cat     *catalog.Catalog
	credits int
	nextID  ID
}

// NewSpawner creates a ship spawner. Every new ship starts with credits.
func NewSpawner(rng *entropy.Source, cat *catalog.Catalog, credits int) *Spawner {
	return &Spawner{
		rng:     rng,
		cat:     cat,
		credits: credits,
		nextID:  1,
	}
}

// SetNextID sets the next ship ID to be issued (used when restoring from DB).
func (s *Spawner) SetNextID(id ID) {
	s.nextID = id
}

// NextID returns the ID the next spawned ship will receive.
func (s *Spawner) NextID() ID {
	return s.nextID
}

// Blank creates a ship with base capacities, full tanks and starting credits
// but no modules.
func (s *Spawner) Blank(name string) *Ship {
	id := s.nextID
	s.nextID++

	ship := &Ship{
		ID:         id,
		Name:       name,
		Reputation: make(map[social.FactionID]*social.Reputation),
	}
	for kind := catalog.ResourceKind(0); kind < catalog.NumResources; kind++ {
		def := s.cat.Resource(kind)
		ship.Resources[kind] = Resource{Amount: def.Capacity, Capacity: def.Capacity, Price: def.Price}
	}
	ship.Resources[catalog.Ore].Amount = 0
	ship.Resources[catalog.Credits] = Resource{Amount: s.credits, Price: 1}
	return ship
}

// Spawn creates an NPC ship with a random loadout, aligned with faction
// when it is non-nil.
func (s *Spawner) Spawn(faction *social.FactionID) *Ship {
	ship := s.Blank(s.generateName())
	if faction != nil {
		ship.Join(*faction)
	}

	// Most ships carry a weapon; the rest of the loadout is a few rolls
	// weighted toward the cheaper modules.
	if s.rng.Chance(0.7) {
		s.installFirst(ship, catalog.KindWeapon)
	}
	extras := []catalog.ModuleKind{catalog.KindShield, catalog.KindRefinery, catalog.KindSolar, catalog.KindWarp, catalog.KindCloak, catalog.KindScanner}
	weights := []int{5, 4, 4, 2, 1, 2}
	for i := s.rng.Between(0, 2); i > 0; i-- {
		if pick := s.rng.Weighted(weights); pick >= 0 {
			s.installFirst(ship, extras[pick])
			weights[pick] = 0
		}
	}
	return ship
}

// SpawnPlayer creates the human ship with a laser and a shield.
func (s *Spawner) SpawnPlayer(name string, faction *social.FactionID) *Ship {
	ship := s.Blank(name)
	ship.Human = true
	if faction != nil {
		ship.Join(*faction)
	}
	s.installFirst(ship, catalog.KindWeapon)
	s.installFirst(ship, catalog.KindShield)
	return ship
}

func (s *Spawner) installFirst(ship *Ship, kind catalog.ModuleKind) {
	mods := s.cat.ModulesOfKind(kind)
	if len(mods) == 0 {
		return
	}
	ship.Install(mods[s.rng.Intn(len(mods))])
}

var (
	namePrefixes = []string{
		"Iron", "Silent", "Crimson", "Distant", "Bright", "Hollow", "Restless", "Amber",
		"Last", "Wandering", "Cold", "Steady", "Quiet", "Burning", "Pale", "Northern",
	}
	nameNouns = []string{
		"Heron", "Lantern", "Drifter", "Anvil", "Comet", "Harbor", "Vigil", "Meridian",
		"Sparrow", "Tide", "Ember", "Ledger", "Compass", "Warden", "Kestrel", "Promise",
	}
)

func (s *Spawner) generateName() string {
	prefix := namePrefixes[s.rng.Intn(len(namePrefixes))]
	noun := nameNouns[s.rng.Intn(len(nameNouns))]
	return prefix + " " + noun
}
