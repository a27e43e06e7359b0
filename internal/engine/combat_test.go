package engine

import (
	"errors"
	"testing"

	"github.com/talgya/galaxy-sim/internal/battle"
	"github.com/talgya/galaxy-sim/internal/catalog"
	"github.com/talgya/galaxy-sim/internal/social"
	"github.com/talgya/galaxy-sim/internal/world"
)

func TestPlayerBattleAdvancesOnePassPerTurn(t *testing.T) {
	s := newTestSim(t, social.War)
	s.Config.Battle.MaxRounds = 50
	orbit := world.InOrbit(world.Coord{}, 1)

	p := s.Spawner().SpawnPlayer("Wayfarer", world.Own(1))
	if err := s.AddShip(p, orbit); err != nil {
		t.Fatalf("add player: %v", err)
	}
	// An unarmed hulk with no fuel can neither fire nor flee.
	target := s.Spawner().Blank("Hulk")
	target.Join(2)
	target.Res(catalog.Fuel).Amount = 0
	target.Res(catalog.Hull).Capacity = 100000
	target.Res(catalog.Hull).Amount = 100000
	if err := s.AddShip(target, orbit); err != nil {
		t.Fatalf("add target: %v", err)
	}

	if err := s.SubmitTactic(battle.Fire); !errors.Is(err, world.ErrNotInBattle) {
		t.Fatalf("tactic outside battle = %v, want ErrNotInBattle", err)
	}

	if err := s.Attack(target.ID); err != nil {
		t.Fatalf("Attack: %v", err)
	}
	open := s.SortedBattles()
	if len(open) != 1 {
		t.Fatalf("open battles = %d, want 1", len(open))
	}
	b := open[0]
	if b.Rounds != 1 {
		t.Fatalf("rounds = %d after opening, want one pass", b.Rounds)
	}
	if loc, _ := s.Location(p.ID); loc.Kind != world.InBattle {
		t.Fatalf("player at %s, want in battle", loc)
	}
	// Without a queued order the player holds.
	if got := target.Amount(catalog.Hull); got != 100000 {
		t.Errorf("target hull = %d after a held pass", got)
	}

	if err := s.SubmitTactic(battle.Fire); err != nil {
		t.Fatalf("SubmitTactic: %v", err)
	}
	s.Turn()

	if s.Battles[b.ID] == nil {
		t.Fatal("battle with the player should stay open between turns")
	}
	if b.Rounds != 2 {
		t.Errorf("rounds = %d after one turn, want 2", b.Rounds)
	}
	if got := target.Amount(catalog.Hull); got >= 100000 {
		t.Error("queued fire order was not carried out")
	}
	if _, queued := s.tactics[p.ID]; queued {
		t.Error("tactic should be used up by the pass")
	}
}
