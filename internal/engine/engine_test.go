package engine

import (
	"errors"
	"testing"

	"github.com/talgya/galaxy-sim/internal/catalog"
	"github.com/talgya/galaxy-sim/internal/config"
	"github.com/talgya/galaxy-sim/internal/ships"
	"github.com/talgya/galaxy-sim/internal/social"
	"github.com/talgya/galaxy-sim/internal/world"
)

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	cat, err := catalog.Default()
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	return cat
}

// newTestSim builds a one-sector galaxy with a station at orbit 3 owned by
// the Blue faction, and two factions at the given relationship.
func newTestSim(t *testing.T, rel social.RelationType) *Simulation {
	t.Helper()
	cat := testCatalog(t)
	m := world.NewMap(2)
	m.Set(&world.Sector{
		Coord:  world.Coord{},
		Name:   "Home",
		Orbits: 4,
		Planets: []*world.Planet{
			{Name: "Home II", Orbit: 2, Regions: []*world.Region{{Name: "Basin", Ore: 2}}},
		},
		Stations: []*world.Station{{Name: "Home Station", Orbit: 3, Owner: world.Own(2), Prices: cat.PriceList(nil, 0)}},
	})

	cfg := config.Default()
	s := NewSimulation(cfg, cat, m, 42)
	s.AddFaction(social.NewFaction(1, "Red League", "red", 1000))
	s.AddFaction(social.NewFaction(2, "Blue Accord", "blue", 1000))
	if err := s.Relations.Init(1, 2, rel); err != nil {
		t.Fatalf("init relations: %v", err)
	}
	return s
}

func addNPC(t *testing.T, s *Simulation, faction social.FactionID, loc world.Location) *ships.Ship {
	t.Helper()
	sh := s.Spawner().Spawn(world.Own(faction))
	if err := s.AddShip(sh, loc); err != nil {
		t.Fatalf("add ship: %v", err)
	}
	return sh
}

func TestTwoFactionsStartAtWar(t *testing.T) {
	cfg := config.Default()
	cfg.Seed = 7
	cfg.Galaxy.Factions = 2

	s, err := NewGalaxy(cfg, testCatalog(t))
	if err != nil {
		t.Fatalf("NewGalaxy: %v", err)
	}
	if len(s.Factions) != 2 {
		t.Fatalf("factions = %d, want 2", len(s.Factions))
	}
	if got := s.Relation(s.Factions[0].ID, s.Factions[1].ID); got != social.War {
		t.Errorf("relation = %s, want war", got)
	}

	p := s.Player()
	if p == nil {
		t.Fatal("no player ship")
	}
	loc, ok := s.Location(p.ID)
	if !ok || loc.Kind != world.Docked {
		t.Errorf("player location = %v, want docked", loc)
	}
	if !p.InFaction(s.Factions[0].ID) {
		t.Error("player should start in the first faction")
	}
}

func TestNewGalaxyIsDeterministic(t *testing.T) {
	cfg := config.Default()
	cfg.Seed = 99

	a, err := NewGalaxy(cfg, testCatalog(t))
	if err != nil {
		t.Fatalf("NewGalaxy: %v", err)
	}
	b, err := NewGalaxy(cfg, testCatalog(t))
	if err != nil {
		t.Fatalf("NewGalaxy: %v", err)
	}
	if len(a.Ships) != len(b.Ships) {
		t.Fatalf("ship counts differ: %d vs %d", len(a.Ships), len(b.Ships))
	}
	for i := range a.Ships {
		if a.Ships[i].Name != b.Ships[i].Name {
			t.Errorf("ship %d: %q vs %q", i, a.Ships[i].Name, b.Ships[i].Name)
		}
	}
	for i, f := range a.Factions {
		g := b.Factions[i]
		if (f.LeaderID == nil) != (g.LeaderID == nil) || (f.LeaderID != nil && *f.LeaderID != *g.LeaderID) {
			t.Errorf("faction %s leaders differ", f.Name)
		}
	}
}

func TestRosterStaysExclusive(t *testing.T) {
	cfg := config.Default()
	cfg.Seed = 11

	s, err := NewGalaxy(cfg, testCatalog(t))
	if err != nil {
		t.Fatalf("NewGalaxy: %v", err)
	}
	for turn := 0; turn < 150; turn++ {
		s.Turn()

		alive := 0
		for _, sh := range s.Ships {
			if !sh.Alive() {
				continue
			}
			alive++
			loc, ok := s.Location(sh.ID)
			if !ok {
				t.Fatalf("turn %d: ship %d has no location", turn, sh.ID)
			}
			found := 0
			for _, id := range s.Members(loc) {
				if id == sh.ID {
					found++
				}
			}
			if found != 1 {
				t.Fatalf("turn %d: ship %d listed %d times at %s", turn, sh.ID, found, loc)
			}
		}
		if s.Roster.Len() != alive {
			t.Fatalf("turn %d: roster holds %d ships, %d alive", turn, s.Roster.Len(), alive)
		}
		if repaired := s.Roster.Verify(); len(repaired) > 0 {
			t.Fatalf("turn %d: roster needed repair for %v", turn, repaired)
		}
	}
}

func TestExpulsionTriggersElection(t *testing.T) {
	s := newTestSim(t, social.War)
	home := world.InOrbit(world.Coord{}, 1)
	leader := addNPC(t, s, 1, home)
	second := addNPC(t, s, 1, home)
	third := addNPC(t, s, 1, home)

	red := s.Faction(1)
	red.SetLeader(uint64(leader.ID))
	leader.Rep(1).Value = -1000
	second.Rep(1).Value = 50
	third.Rep(1).Value = 10

	s.processExpulsions()
	if leader.Faction != nil {
		t.Fatal("leader below the rejection threshold should be expelled")
	}
	if red.HasLeader() {
		t.Fatal("expelled leader should leave the faction leaderless")
	}

	s.processElections()
	if !red.HasLeader() {
		t.Fatal("emergency election should install a leader")
	}
	if *red.LeaderID != uint64(second.ID) {
		t.Errorf("leader = %d, want %d (highest standing)", *red.LeaderID, second.ID)
	}
	if got := second.RepValue(1); got != 50+s.Config.Reputation.LeaderBonus {
		t.Errorf("new leader reputation = %d, want %d", got, 50+s.Config.Reputation.LeaderBonus)
	}
}

func TestElectionIsDeterministic(t *testing.T) {
	run := func() uint64 {
		s := newTestSim(t, social.War)
		home := world.InOrbit(world.Coord{}, 1)
		for i := 0; i < 7; i++ {
			sh := addNPC(t, s, 1, home)
			sh.Rep(1).Value = (i * 37) % 11
		}
		s.holdElection(s.Faction(1), false)
		if !s.Faction(1).HasLeader() {
			t.Fatal("election produced no leader")
		}
		return *s.Faction(1).LeaderID
	}
	if a, b := run(), run(); a != b {
		t.Errorf("same galaxy elected %d and %d", a, b)
	}
}

func TestPlayerElectionWaitsForVote(t *testing.T) {
	s := newTestSim(t, social.War)
	home := world.InOrbit(world.Coord{}, 1)
	for i := 0; i < 3; i++ {
		sh := addNPC(t, s, 1, home)
		sh.Rep(1).Value = 100 + i
	}
	p := s.Spawner().SpawnPlayer("Wayfarer", world.Own(1))
	if err := s.AddShip(p, home); err != nil {
		t.Fatalf("add player: %v", err)
	}
	s.Config.Politics.ElectionCandidates = 2

	s.holdElection(s.Faction(1), false)
	e, ok := s.PendingElection()
	if !ok || !e.AwaitingPlayer {
		t.Fatal("election should wait for the player's ballot")
	}
	if err := s.CastVote(len(e.Candidates)); err == nil {
		t.Error("out-of-range vote should fail")
	}
	if err := s.CastVote(1); err != nil {
		t.Fatalf("CastVote: %v", err)
	}
	if _, ok := s.PendingElection(); ok {
		t.Error("election should be finished after the vote")
	}
	if !s.Faction(1).HasLeader() {
		t.Error("faction should have a leader")
	}
}

func TestDockAtHostileStationFails(t *testing.T) {
	s := newTestSim(t, social.War)
	sh := addNPC(t, s, 1, world.InOrbit(world.Coord{}, 3))

	err := s.dock(sh, 0)
	if !errors.Is(err, ErrHostileStation) {
		t.Fatalf("dock = %v, want ErrHostileStation", err)
	}
	if loc, _ := s.Location(sh.ID); loc.Kind != world.Orbital {
		t.Errorf("ship moved to %s after a failed dock", loc)
	}
}

func TestDockingFeePaidToOwner(t *testing.T) {
	s := newTestSim(t, social.Peace)
	sh := addNPC(t, s, 1, world.InOrbit(world.Coord{}, 3))
	credits := sh.Credits()
	economy := s.Faction(2).Economy

	if err := s.dock(sh, 0); err != nil {
		t.Fatalf("dock: %v", err)
	}
	fee := s.Config.Costs.DockingFee
	if sh.Credits() != credits-fee {
		t.Errorf("credits = %d, want %d", sh.Credits(), credits-fee)
	}
	if s.Faction(2).Economy != economy+fee {
		t.Errorf("owner economy = %d, want %d", s.Faction(2).Economy, economy+fee)
	}
}

func TestDockWrongOrbitFails(t *testing.T) {
	s := newTestSim(t, social.Peace)
	sh := addNPC(t, s, 1, world.InOrbit(world.Coord{}, 1))
	if err := s.dock(sh, 0); !errors.Is(err, world.ErrNoStation) {
		t.Errorf("dock = %v, want ErrNoStation", err)
	}
}

func TestBuyWithoutCreditsFails(t *testing.T) {
	s := newTestSim(t, social.Peace)
	p := s.Spawner().SpawnPlayer("Wayfarer", world.Own(2))
	if err := s.AddShip(p, world.AtStation(world.Coord{}, 3, 0)); err != nil {
		t.Fatalf("add player: %v", err)
	}
	p.Res(catalog.Credits).Amount = 0
	p.Res(catalog.Fuel).Amount = 0
	before := p.Resources

	err := s.BuyResource(catalog.Fuel, 1)
	if !errors.Is(err, ships.ErrInsufficientFunds) {
		t.Fatalf("buy = %v, want ErrInsufficientFunds", err)
	}
	if p.Resources != before {
		t.Error("failed purchase changed the ship's resources")
	}
}

func TestTransitionChargesFuel(t *testing.T) {
	s := newTestSim(t, social.Peace)
	sh := addNPC(t, s, 1, world.InOrbit(world.Coord{}, 1))
	fuel := sh.Amount(catalog.Fuel)

	if err := s.changeOrbit(sh, 2); err != nil {
		t.Fatalf("changeOrbit: %v", err)
	}
	want := fuel - 2*s.Config.Costs.OrbitFuel
	if got := sh.Amount(catalog.Fuel); got != want {
		t.Errorf("fuel = %d, want %d", got, want)
	}

	sh.Res(catalog.Fuel).Amount = 0
	if err := s.changeOrbit(sh, -1); !errors.Is(err, ships.ErrInsufficientResource) {
		t.Errorf("changeOrbit without fuel = %v, want ErrInsufficientResource", err)
	}
	if loc, _ := s.Location(sh.ID); loc.Orbit != 3 {
		t.Errorf("orbit = %d after failed move, want 3", loc.Orbit)
	}
}

func TestSnapshotRestoreShip(t *testing.T) {
	s := newTestSim(t, social.War)
	sh := addNPC(t, s, 2, world.AtStation(world.Coord{}, 3, 0))
	sh.Rep(2).Value = 77

	snap, err := s.SnapshotShip(sh.ID)
	if err != nil {
		t.Fatalf("SnapshotShip: %v", err)
	}

	fresh := newTestSim(t, social.War)
	got, err := fresh.RestoreShip(sh.ID, snap)
	if err != nil {
		t.Fatalf("RestoreShip: %v", err)
	}
	if !got.InFaction(2) {
		t.Error("restored ship lost its faction")
	}
	if got.RepValue(2) != 77 {
		t.Errorf("reputation = %d, want 77", got.RepValue(2))
	}
	loc, _ := fresh.Location(got.ID)
	if want := world.AtStation(world.Coord{}, 3, 0); loc != want {
		t.Errorf("location = %s, want %s", loc, want)
	}
	if fresh.Spawner().NextID() <= sh.ID {
		t.Error("spawner should skip restored IDs")
	}
}

func TestEngineRunCheckpoints(t *testing.T) {
	e := NewEngine(0, 5)
	var turns int
	var checkpoints []uint64
	e.OnTurn = func(uint64) { turns++ }
	e.OnCheckpoint = func(turn uint64) { checkpoints = append(checkpoints, turn) }

	e.Run(12)
	if turns != 12 || e.Turn != 12 {
		t.Fatalf("ran %d turns, engine at %d; want 12", turns, e.Turn)
	}
	want := []uint64{5, 10, 12}
	if len(checkpoints) != len(want) {
		t.Fatalf("checkpoints = %v, want %v", checkpoints, want)
	}
	for i := range want {
		if checkpoints[i] != want[i] {
			t.Errorf("checkpoint %d = %d, want %d", i, checkpoints[i], want[i])
		}
	}
	if e.Running() {
		t.Error("engine should not be running after Run returns")
	}
}

func TestEngineStop(t *testing.T) {
	e := NewEngine(100, 0)
	e.OnTurn = func(turn uint64) {
		if turn == 103 {
			e.Stop()
		}
	}
	e.Run(0)
	if e.Turn != 104 {
		t.Errorf("engine stopped at %d, want 104", e.Turn)
	}
}

func TestTradeCompletesGoal(t *testing.T) {
	s := newTestSim(t, social.Peace)
	station := world.AtStation(world.Coord{}, 3, 0)
	sh := addNPC(t, s, 1, station)
	sh.Goal = ships.Goal{Kind: ships.GoalTrade, Target: station}

	s.Turn()
	if sh.Goal.Kind == ships.GoalTrade && sh.Goal.Target == station {
		t.Fatal("goal should be cleared once the trade is done")
	}

	for i := 0; i < 3; i++ {
		s.Turn()
	}
	if loc, _ := s.Location(sh.ID); loc == station {
		t.Errorf("ship still docked at %s after trading", loc)
	}
}

func TestNPCsKeepMoving(t *testing.T) {
	cfg := config.Default()
	cfg.Seed = 11

	s, err := NewGalaxy(cfg, testCatalog(t))
	if err != nil {
		t.Fatalf("NewGalaxy: %v", err)
	}
	for i := 0; i < 40; i++ {
		s.Turn()
	}
	before := make(map[ships.ID]world.Location)
	for _, sh := range s.Ships {
		if sh.Alive() && !sh.Human {
			before[sh.ID], _ = s.Location(sh.ID)
		}
	}
	for i := 0; i < 20; i++ {
		s.Turn()
	}

	moved, docked, alive := 0, 0, 0
	for id, was := range before {
		sh := s.Ship(id)
		if sh == nil || !sh.Alive() {
			continue
		}
		alive++
		now, _ := s.Location(id)
		if now != was {
			moved++
		}
		if now.Kind == world.Docked {
			docked++
		}
	}
	if alive == 0 {
		t.Fatal("no NPCs survived")
	}
	if moved == 0 {
		t.Errorf("none of %d NPCs moved in 20 turns", alive)
	}
	if docked == alive {
		t.Errorf("all %d NPCs are docked", alive)
	}
}
