package persistence

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/talgya/galaxy-sim/internal/catalog"
	"github.com/talgya/galaxy-sim/internal/config"
	"github.com/talgya/galaxy-sim/internal/engine"
	"github.com/talgya/galaxy-sim/internal/world"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "galaxy.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func newGalaxy(t *testing.T, seed int64) (*engine.Simulation, *config.Config, *catalog.Catalog) {
	t.Helper()
	cat, err := catalog.Default()
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	cfg := config.Default()
	cfg.Seed = seed
	sim, err := engine.NewGalaxy(cfg, cat)
	if err != nil {
		t.Fatalf("NewGalaxy: %v", err)
	}
	return sim, cfg, cat
}

func TestLoadWithoutSave(t *testing.T) {
	db := openTestDB(t)
	if db.HasGalaxy() {
		t.Error("fresh database should hold no galaxy")
	}
	cat, _ := catalog.Default()
	if _, err := db.LoadGalaxy(config.Default(), cat); !errors.Is(err, ErrNoGalaxy) {
		t.Errorf("LoadGalaxy = %v, want ErrNoGalaxy", err)
	}
}

func TestSaveLoadGalaxy(t *testing.T) {
	db := openTestDB(t)
	sim, cfg, cat := newGalaxy(t, 5)
	for i := 0; i < 20; i++ {
		sim.Turn()
	}

	if err := db.SaveGalaxy(sim); err != nil {
		t.Fatalf("SaveGalaxy: %v", err)
	}
	if !db.HasGalaxy() {
		t.Fatal("HasGalaxy should be true after a save")
	}

	got, err := db.LoadGalaxy(cfg, cat)
	if err != nil {
		t.Fatalf("LoadGalaxy: %v", err)
	}
	if got.TurnNumber != sim.TurnNumber || got.RunID != sim.RunID || got.Seed != sim.Seed {
		t.Errorf("meta = (%d, %s, %d), want (%d, %s, %d)",
			got.TurnNumber, got.RunID, got.Seed, sim.TurnNumber, sim.RunID, sim.Seed)
	}

	if (got.LastNegotiation == nil) != (sim.LastNegotiation == nil) ||
		(got.LastNegotiation != nil && *got.LastNegotiation != *sim.LastNegotiation) {
		t.Errorf("last negotiation = %v, want %v", got.LastNegotiation, sim.LastNegotiation)
	}

	if len(got.Ships) != len(sim.Ships) {
		t.Fatalf("ships = %d, want %d", len(got.Ships), len(sim.Ships))
	}
	for _, want := range sim.Ships {
		sh := got.Ship(want.ID)
		if sh == nil {
			t.Fatalf("ship %d missing after load", want.ID)
		}
		if sh.Name != want.Name || sh.Resources != want.Resources || len(sh.Modules) != len(want.Modules) {
			t.Errorf("ship %d state differs after load", want.ID)
		}
		wf, _ := want.FactionID()
		gf, _ := sh.FactionID()
		if wf != gf {
			t.Errorf("ship %d faction = %d, want %d", want.ID, gf, wf)
		}
		wl, _ := sim.Location(want.ID)
		if wl.Kind == world.InBattle {
			wl = wl.Orbital()
		}
		if gl, _ := got.Location(want.ID); gl != wl {
			t.Errorf("ship %d location = %s, want %s", want.ID, gl, wl)
		}
	}
	if got.Player() == nil {
		t.Error("player ship not restored")
	}

	for i, r := range sim.Relations.Pairs() {
		if got.Relations.Pairs()[i] != r {
			t.Errorf("relationship %v differs after load", r.Pair)
		}
	}
	for _, s := range sim.WorldMap.All() {
		loaded := got.WorldMap.Get(s.Coord)
		for i, st := range s.Stations {
			a, aok := world.OwnerOf(st.Owner)
			b, bok := world.OwnerOf(loaded.Stations[i].Owner)
			if a != b || aok != bok {
				t.Errorf("%s owner differs after load", st.Name)
			}
		}
	}
	if len(got.Events) != len(sim.Events) {
		t.Errorf("events = %d, want %d", len(got.Events), len(sim.Events))
	}
}

func TestFingerprintStable(t *testing.T) {
	a, _, _ := newGalaxy(t, 21)
	b, _, _ := newGalaxy(t, 21)

	sa, err := Capture(a)
	if err != nil {
		t.Fatalf("Capture: %v", err)
	}
	sb, err := Capture(b)
	if err != nil {
		t.Fatalf("Capture: %v", err)
	}
	fa, _ := Fingerprint(sa)
	fb, _ := Fingerprint(sb)
	if fa != fb {
		t.Errorf("equal galaxies fingerprint differently: %s vs %s", fa, fb)
	}

	a.Ships[0].Res(0).Amount--
	sa, _ = Capture(a)
	if fc, _ := Fingerprint(sa); fc == fb {
		t.Error("fingerprint ignored a state change")
	}
}

func TestCheckpointChain(t *testing.T) {
	db := openTestDB(t)
	sim, _, _ := newGalaxy(t, 8)

	first, err := db.Checkpoint(sim)
	if err != nil {
		t.Fatalf("Checkpoint: %v", err)
	}
	for i := 0; i < 5; i++ {
		sim.Turn()
	}
	second, err := db.Checkpoint(sim)
	if err != nil {
		t.Fatalf("Checkpoint: %v", err)
	}
	if first == second {
		t.Error("chained checkpoints should differ")
	}
	if err := db.VerifyChain(); err != nil {
		t.Fatalf("VerifyChain: %v", err)
	}

	st, err := db.LoadCheckpoint(5)
	if err != nil {
		t.Fatalf("LoadCheckpoint: %v", err)
	}
	if st.Turn != 5 || st.Seed != 8 {
		t.Errorf("checkpoint turn %d seed %d, want 5 and 8", st.Turn, st.Seed)
	}
	if len(st.Ships) == 0 || len(st.Factions) != len(sim.Factions) {
		t.Errorf("checkpoint holds %d ships and %d factions", len(st.Ships), len(st.Factions))
	}

	if _, err := db.conn.Exec("UPDATE checkpoints SET chain_hash = 'x' WHERE turn = 0"); err != nil {
		t.Fatalf("tamper: %v", err)
	}
	if err := db.VerifyChain(); !errors.Is(err, ErrCorruptCheckpoint) {
		t.Errorf("VerifyChain after tampering = %v, want ErrCorruptCheckpoint", err)
	}
}
