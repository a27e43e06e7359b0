package battle

import (
	"testing"

	"github.com/talgya/galaxy-sim/internal/catalog"
	"github.com/talgya/galaxy-sim/internal/config"
	"github.com/talgya/galaxy-sim/internal/entropy"
	"github.com/talgya/galaxy-sim/internal/roster"
	"github.com/talgya/galaxy-sim/internal/ships"
	"github.com/talgya/galaxy-sim/internal/world"
)

// testArena is a minimal simulation: a registry, a sector and a fixed
// tactic per ship.
type testArena struct {
	t       *testing.T
	cat     *catalog.Catalog
	cfg     config.BattleConfig
	rng     *entropy.Source
	reg     *roster.Registry
	sector  *world.Sector
	fleet   map[ships.ID]*ships.Ship
	tactics map[ships.ID]Tactic
	battles []*Battle
	kills   []ships.ID
}

func newArena(t *testing.T) *testArena {
	t.Helper()
	cat, err := catalog.Default()
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	return &testArena{
		t:       t,
		cat:     cat,
		cfg:     config.Default().Battle,
		rng:     entropy.New(11),
		reg:     roster.New(),
		sector:  &world.Sector{Coord: world.Coord{}, Name: "Arena", Orbits: 5},
		fleet:   make(map[ships.ID]*ships.Ship),
		tactics: make(map[ships.ID]Tactic),
	}
}

func (a *testArena) Ship(id ships.ID) *ships.Ship { return a.fleet[id] }
func (a *testArena) Rand() *entropy.Source { return a.rng }
func (a *testArena) BattleConfig() config.BattleConfig { return a.cfg }
func (a *testArena) Tactic(s *ships.Ship, b *Battle) Tactic { return a.tactics[s.ID] }
func (a *testArena) WillAttack(s *ships.Ship) bool { return s.IsArmed() }
func (a *testArena) Destroyed(victim, killer ships.ID) { a.kills = append(a.kills, victim) }

func (a *testArena) Sector(c world.Coord) *world.Sector {
	if c == a.sector.Coord {
		return a.sector
	}
	return nil
}

func (a *testArena) Relocate(id ships.ID, loc world.Location) error {
	return a.reg.Move(id, loc)
}

func (a *testArena) Spawn(sector world.Coord, orbit int, attackers, defenders []ships.ID) *Battle {
	b := New(world.BattleID(len(a.battles)+1), sector, orbit, attackers, defenders)
	a.battles = append(a.battles, b)
	for _, id := range b.Participants() {
		a.reg.Move(id, b.Location())
	}
	return b
}

// addShip creates a ship orbiting at orbit 3 with the given hull, credits
// and modules.
func (a *testArena) addShip(id ships.ID, hull, credits int, modules ...string) *ships.Ship {
	s := &ships.Ship{ID: id, Name: "ship"}
	for kind := catalog.ResourceKind(0); kind < catalog.NumResources; kind++ {
		def := a.cat.Resource(kind)
		s.Resources[kind] = ships.Resource{Amount: def.Capacity, Capacity: def.Capacity, Price: def.Price}
	}
	s.Resources[catalog.Hull].Amount = hull
	s.Resources[catalog.Credits].Amount = credits
	for _, name := range modules {
		m, ok := a.cat.Module(name)
		if !ok {
			a.t.Fatalf("no module %q", name)
		}
		s.Install(m)
	}
	a.fleet[id] = s
	if err := a.reg.Place(id, world.InOrbit(a.sector.Coord, 3)); err != nil {
		a.t.Fatalf("place: %v", err)
	}
	return s
}

func TestOneShotKillEndsBattle(t *testing.T) {
	a := newArena(t)
	a.addShip(1, 5, 0, "Laser")
	a.addShip(2, 1, 40)
	a.tactics[1] = Fire

	b := a.Spawn(a.sector.Coord, 3, []ships.ID{1}, []ships.ID{2})
	b.ProcessAttacks(a)

	if len(b.Destroyed) != 1 || b.Destroyed[0] != 2 {
		t.Fatalf("destroyed = %v, want [2]", b.Destroyed)
	}
	if b.Continues() {
		t.Fatal("battle should not continue with an empty side")
	}
	if len(b.Attackers) != 1 || b.Attackers[0] != 1 {
		t.Errorf("attackers = %v", b.Attackers)
	}

	if res := b.Resolve(a, false); res != Finished {
		t.Errorf("Resolve = %v, want Finished", res)
	}
	if b.State != Resolved {
		t.Error("battle not resolved")
	}
	if loc, _ := a.reg.Location(1); loc != world.InOrbit(a.sector.Coord, 3) {
		t.Errorf("survivor at %s, want orbit 3", loc)
	}
	if got := a.fleet[1].Credits(); got != 20 {
		t.Errorf("survivor credits %d, want 40/2 = 20", got)
	}
}

func TestLootConservation(t *testing.T) {
	a := newArena(t)
	a.cfg.LootModifier = 3
	for id := ships.ID(1); id <= 3; id++ {
		a.addShip(id, 5, 0)
	}
	victims := []int{100, 7, 55}
	for i, credits := range victims {
		a.addShip(ships.ID(10+i), 1, credits, "Laser", "Shield", "Battery")
	}
	b := a.Spawn(a.sector.Coord, 3, []ships.ID{1, 2, 3}, []ships.ID{10, 11, 12})
	for i := range victims {
		b.destroy(a, ships.ID(10+i), 1)
	}

	want := 0
	for _, c := range victims {
		want += c / 3
	}
	if b.LootCredits != want {
		t.Fatalf("banked %d, want %d", b.LootCredits, want)
	}
	if paid := b.DistributeLoot(a); paid != want {
		t.Errorf("paid %d, want %d", paid, want)
	}
	total, cargo := 0, 0
	for id := ships.ID(1); id <= 3; id++ {
		total += a.fleet[id].Credits()
		cargo += len(a.fleet[id].Cargo)
	}
	if total != want {
		t.Errorf("survivors hold %d, want %d", total, want)
	}
	// 9 salvaged modules, every third one kept.
	if cargo != 3 {
		t.Errorf("salvaged cargo %d, want 3", cargo)
	}
}

func TestStalemateTerminates(t *testing.T) {
	a := newArena(t)
	a.cfg.MaxRounds = 5
	a.addShip(1, 5, 0)
	a.addShip(2, 5, 0)
	a.tactics[1] = Fire // unarmed: firing does nothing
	a.tactics[2] = Hold

	b := a.Spawn(a.sector.Coord, 3, []ships.ID{1}, []ships.ID{2})
	if res := b.Resolve(a, false); res != Stalemate {
		t.Fatalf("Resolve = %v, want Stalemate", res)
	}
	if b.Rounds != 5 || b.State != Resolved {
		t.Errorf("rounds %d state %v", b.Rounds, b.State)
	}
	for _, id := range []ships.ID{1, 2} {
		if loc, _ := a.reg.Location(id); loc.Kind != world.Orbital {
			t.Errorf("ship %d left at %s", id, loc)
		}
	}
}

func TestResolveTerminatesWithArmedShips(t *testing.T) {
	for seed := int64(1); seed <= 20; seed++ {
		a := newArena(t)
		a.rng = entropy.New(seed)
		a.addShip(1, 5, 10, "Laser", "Shield")
		a.addShip(2, 5, 10, "Torpedo Tube")
		a.addShip(3, 3, 10, "Laser")
		a.tactics[1] = Fire
		a.tactics[2] = Fire
		a.tactics[3] = Flee

		b := a.Spawn(a.sector.Coord, 3, []ships.ID{1}, []ships.ID{2, 3})
		b.Resolve(a, false)
		if b.State != Resolved {
			t.Fatalf("seed %d: battle not resolved", seed)
		}
		// Pursuits may open further sub-battles while earlier ones resolve.
		for i := 1; i < len(a.battles); i++ {
			sub := a.battles[i]
			sub.Resolve(a, false)
			if sub.State != Resolved {
				t.Fatalf("seed %d: sub-battle not resolved", seed)
			}
		}
	}
}

func TestCloakedEscapeIsUnconditional(t *testing.T) {
	a := newArena(t)
	a.cfg.EscapeChance = 0
	a.addShip(1, 5, 0, "Laser")
	s := a.addShip(2, 5, 0, "Cloaking Device")
	if err := s.EngageCloak(); err != nil {
		t.Fatalf("EngageCloak: %v", err)
	}
	a.tactics[2] = Flee

	b := a.Spawn(a.sector.Coord, 3, []ships.ID{1}, []ships.ID{2})
	b.ProcessAttacks(a)
	if !b.IsFleeing(2) {
		t.Fatal("ship 2 should be fleeing")
	}
	b.ProcessEscapes(a)

	loc, _ := a.reg.Location(2)
	if loc.Kind != world.Orbital || loc.Orbit == 3 {
		t.Errorf("cloaked ship at %s, want another orbit", loc)
	}
	if len(a.battles) != 1 {
		t.Error("nobody should pursue a cloaked ship")
	}
	if b.Continues() {
		t.Error("battle should be over once the defender escaped")
	}
}

func TestEscapeWithPursuersOpensSubBattle(t *testing.T) {
	a := newArena(t)
	a.cfg.EscapeChance = 1
	a.addShip(1, 5, 0, "Laser")
	a.addShip(2, 5, 0)
	a.tactics[2] = Flee

	b := a.Spawn(a.sector.Coord, 3, []ships.ID{1}, []ships.ID{2})
	b.ProcessAttacks(a)
	b.ProcessEscapes(a)

	if len(a.battles) != 2 {
		t.Fatalf("expected a sub-battle, have %d battles", len(a.battles))
	}
	sub := a.battles[1]
	if sub.Orbit == 3 || !sub.Involves(1) || !sub.Involves(2) {
		t.Errorf("sub-battle %+v", sub)
	}
	for _, id := range []ships.ID{1, 2} {
		if loc, _ := a.reg.Location(id); loc != sub.Location() {
			t.Errorf("ship %d at %s, want %s", id, loc, sub.Location())
		}
	}
	if b.Continues() {
		t.Error("original battle should be empty")
	}
}
