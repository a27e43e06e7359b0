package ships

import (
	"errors"
	"testing"

	"github.com/talgya/galaxy-sim/internal/catalog"
	"github.com/talgya/galaxy-sim/internal/entropy"
	"github.com/talgya/galaxy-sim/internal/social"
)

func testSpawner(t *testing.T) (*Spawner, *catalog.Catalog) {
	t.Helper()
	cat, err := catalog.Default()
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	return NewSpawner(entropy.New(7), cat, 100), cat
}

func mustModule(t *testing.T, cat *catalog.Catalog, name string) catalog.Module {
	t.Helper()
	m, ok := cat.Module(name)
	if !ok {
		t.Fatalf("no module %q", name)
	}
	return m
}

func TestBuyWithoutFundsChangesNothing(t *testing.T) {
	sp, _ := testSpawner(t)
	s := sp.Blank("Broke")
	s.Resources[catalog.Credits].Amount = 0
	s.Resources[catalog.Fuel].Amount = 3
	before := s.Resources

	err := s.Buy(catalog.Fuel, 1, 10)
	if !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}
	if s.Resources != before {
		t.Errorf("resources changed on failed buy: %+v -> %+v", before, s.Resources)
	}
}

func TestBuySellRoundTrip(t *testing.T) {
	sp, _ := testSpawner(t)
	s := sp.Blank("Trader")
	s.Resources[catalog.Fuel].Amount = 0

	if err := s.Buy(catalog.Fuel, 5, 10); err != nil {
		t.Fatalf("Buy: %v", err)
	}
	if s.Credits() != 50 || s.Amount(catalog.Fuel) != 5 {
		t.Fatalf("after buy: credits %d fuel %d", s.Credits(), s.Amount(catalog.Fuel))
	}
	if err := s.Buy(catalog.Fuel, 11, 1); !errors.Is(err, ErrNoCapacity) {
		t.Errorf("expected ErrNoCapacity, got %v", err)
	}
	if err := s.Sell(catalog.Fuel, 6, 10); !errors.Is(err, ErrInsufficientResource) {
		t.Errorf("expected ErrInsufficientResource, got %v", err)
	}
	if err := s.Sell(catalog.Fuel, 5, 8); err != nil {
		t.Fatalf("Sell: %v", err)
	}
	if s.Credits() != 90 {
		t.Errorf("credits after sell = %d, want 90", s.Credits())
	}
	if err := s.Buy(catalog.Credits, 1, 1); !errors.Is(err, ErrNotTradable) {
		t.Errorf("expected ErrNotTradable, got %v", err)
	}
}

func TestRestockLimitedByCredits(t *testing.T) {
	sp, _ := testSpawner(t)
	s := sp.Blank("Thrifty")
	s.Resources[catalog.Fuel].Amount = 0
	s.Resources[catalog.Credits].Amount = 35

	if n := s.Restock(catalog.Fuel, 10); n != 3 {
		t.Errorf("restocked %d, want 3", n)
	}
	if s.Credits() != 5 {
		t.Errorf("credits = %d, want 5", s.Credits())
	}
}

func TestExpanderRaisesCapacity(t *testing.T) {
	sp, cat := testSpawner(t)
	s := sp.Blank("Hauler")
	before := s.Res(catalog.Ore).Capacity
	bay := mustModule(t, cat, "Cargo Bay")
	s.Resources[catalog.Credits].Amount = bay.Price

	if err := s.BuyModule(bay, bay.Price); err != nil {
		t.Fatalf("BuyModule: %v", err)
	}
	if got := s.Res(catalog.Ore).Capacity; got != before+bay.Amount {
		t.Errorf("ore capacity %d, want %d", got, before+bay.Amount)
	}
	if s.Specialization() != Miner {
		t.Errorf("cargo bay should make a miner, got %s", s.Specialization())
	}
	if err := s.BuyModule(bay, 1); !errors.Is(err, ErrInsufficientFunds) {
		t.Errorf("expected ErrInsufficientFunds, got %v", err)
	}
}

func TestShieldHalvesDamage(t *testing.T) {
	sp, cat := testSpawner(t)
	s := sp.Blank("Tank")
	s.Install(mustModule(t, cat, "Shield"))
	s.Resources[catalog.Hull].Amount = 5

	if err := s.RaiseShield(); err != nil {
		t.Fatalf("RaiseShield: %v", err)
	}
	if s.TakeHit(3) {
		t.Fatal("shielded ship should survive 3 damage")
	}
	if got := s.Amount(catalog.Hull); got != 4 {
		t.Errorf("hull = %d, want 4 (3 halved to 1)", got)
	}
	s.Shielded = false
	if !s.TakeHit(4) || !s.Destroyed {
		t.Error("unshielded 4 damage should destroy a 4-hull ship")
	}
}

func TestContinuousEffectsDropWhenExhausted(t *testing.T) {
	sp, cat := testSpawner(t)
	s := sp.Blank("Drained")
	s.Install(mustModule(t, cat, "Cloaking Device"))
	s.Resources[catalog.Energy].Amount = 4

	if err := s.EngageCloak(); err != nil {
		t.Fatalf("EngageCloak: %v", err)
	}
	// 4 - 3 activation = 1 left, below the drain of 2.
	if !s.Exhausted() {
		t.Fatal("expected exhausted cloak")
	}
	s.ApplyContinuous()
	if s.Cloaked {
		t.Error("cloak should drop when it cannot be paid")
	}
}

func TestFireAndRefine(t *testing.T) {
	sp, cat := testSpawner(t)
	s := sp.Blank("Gunner")
	if _, err := s.Fire(); !errors.Is(err, ErrNoWeapon) {
		t.Errorf("expected ErrNoWeapon, got %v", err)
	}
	s.Install(mustModule(t, cat, "Laser"))
	s.Install(mustModule(t, cat, "Torpedo Tube"))
	energy, fuel := s.Amount(catalog.Energy), s.Amount(catalog.Fuel)
	dmg, err := s.Fire()
	if err != nil || dmg != 2 {
		t.Fatalf("Fire = %d, %v; want torpedo damage 2", dmg, err)
	}
	if s.Amount(catalog.Fuel) != fuel-2 || s.Amount(catalog.Energy) != energy {
		t.Errorf("torpedo should cost fuel only")
	}
	if s.Specialization() != Fighter {
		t.Errorf("two weapons should make a fighter, got %s", s.Specialization())
	}

	if err := s.Refine(2); !errors.Is(err, ErrNoModule) {
		t.Errorf("expected ErrNoModule, got %v", err)
	}
	s.Install(mustModule(t, cat, "Refinery"))
	s.Resources[catalog.Ore].Amount = 3
	if err := s.Refine(2); err != nil {
		t.Fatalf("Refine: %v", err)
	}
	if s.Amount(catalog.Ore) != 1 || s.Amount(catalog.Fuel) != fuel-1 {
		t.Errorf("refine: ore %d fuel %d", s.Amount(catalog.Ore), s.Amount(catalog.Fuel))
	}
}

func TestSnapshotRestore(t *testing.T) {
	sp, cat := testSpawner(t)
	s := sp.Spawn(nil)
	s.Cargo = append(s.Cargo, mustModule(t, cat, "Battery"))
	s.Rep(social.FactionID(2)).Value = -40
	s.Resources[catalog.Ore].Amount = 7

	snap := s.Snapshot()
	got, err := Restore(s.ID, snap, cat)
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if got.Name != s.Name || got.Resources != s.Resources {
		t.Errorf("restored %+v, want %+v", got.Resources, s.Resources)
	}
	if len(got.Modules) != len(s.Modules) || len(got.Cargo) != 1 {
		t.Errorf("modules %d/%d cargo %d", len(got.Modules), len(s.Modules), len(got.Cargo))
	}
	if got.RepValue(2) != -40 {
		t.Errorf("reputation = %d, want -40", got.RepValue(2))
	}

	snap[KeyModules] = "Flux Capacitor"
	if _, err := Restore(s.ID, snap, cat); err == nil {
		t.Error("expected error for unknown module")
	}
}

func TestSpawnerIssuesUniqueIDs(t *testing.T) {
	sp, _ := testSpawner(t)
	f := social.FactionID(1)
	seen := make(map[ID]bool)
	for i := 0; i < 20; i++ {
		s := sp.Spawn(&f)
		if seen[s.ID] {
			t.Fatalf("duplicate id %d", s.ID)
		}
		seen[s.ID] = true
		if !s.InFaction(f) {
			t.Errorf("ship %d not in faction", s.ID)
		}
	}
}
