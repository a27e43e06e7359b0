package engine

import (
	"errors"
	"testing"

	"github.com/talgya/galaxy-sim/internal/ships"
	"github.com/talgya/galaxy-sim/internal/social"
	"github.com/talgya/galaxy-sim/internal/world"
)

func countEvents(s *Simulation, category string) int {
	n := 0
	for _, e := range s.Events {
		if e.Category == category {
			n++
		}
	}
	return n
}

// addThirdFaction brings the test galaxy to three factions, all at war.
func addThirdFaction(t *testing.T, s *Simulation) {
	t.Helper()
	s.AddFaction(social.NewFaction(3, "Green Compact", "green", 1000))
	for _, other := range []social.FactionID{1, 2} {
		if err := s.Relations.Init(other, 3, social.War); err != nil {
			t.Fatalf("init relations: %v", err)
		}
	}
}

// addLeader places the player in a faction as its leader.
func addLeader(t *testing.T, s *Simulation, faction social.FactionID) *ships.Ship {
	t.Helper()
	p := s.Spawner().SpawnPlayer("Wayfarer", world.Own(faction))
	if err := s.AddShip(p, world.InOrbit(world.Coord{}, 1)); err != nil {
		t.Fatalf("add player: %v", err)
	}
	s.Faction(faction).SetLeader(uint64(p.ID))
	return p
}

func TestDiplomacyNeedsThreeFactions(t *testing.T) {
	s := newTestSim(t, social.War)
	s.Config.Politics.DiplomacyChance = 10

	for turn := uint64(0); turn < 10; turn++ {
		s.TurnNumber = turn
		s.processDiplomacy()
	}
	if s.LastNegotiation != nil {
		t.Errorf("two factions negotiated at turn %d", *s.LastNegotiation)
	}
	if got := s.Relation(1, 2); got != social.War {
		t.Errorf("relation = %s, want war", got)
	}
}

func TestDiplomacyCooldown(t *testing.T) {
	s := newTestSim(t, social.War)
	addThirdFaction(t, s)
	s.Config.Politics.DiplomacyChance = 10
	s.Config.Politics.DiplomacyRetries = 50
	cooldown := s.Config.Politics.DiplomacyCooldown

	s.processDiplomacy()
	if s.LastNegotiation == nil || *s.LastNegotiation != 0 {
		t.Fatalf("negotiation at turn 0 not recorded: %v", s.LastNegotiation)
	}
	if got := countEvents(s, "diplomacy"); got != 1 {
		t.Fatalf("diplomacy events = %d, want 1", got)
	}

	// A negotiation on turn 0 still starts the cooldown.
	s.TurnNumber = 1
	s.processDiplomacy()
	if got := countEvents(s, "diplomacy"); got != 1 {
		t.Errorf("negotiated again during cooldown: %d events", got)
	}

	s.TurnNumber = cooldown
	s.processDiplomacy()
	if got := countEvents(s, "diplomacy"); got != 2 {
		t.Errorf("diplomacy events after cooldown = %d, want 2", got)
	}
	if *s.LastNegotiation != cooldown {
		t.Errorf("last negotiation = %d, want %d", *s.LastNegotiation, cooldown)
	}
	if s.Relations.Len() != 3 {
		t.Errorf("relationship records = %d, want one per pair", s.Relations.Len())
	}
}

func TestDiplomacyRetryCap(t *testing.T) {
	s := newTestSim(t, social.War)
	addThirdFaction(t, s)
	s.Config.Politics.DiplomacyChance = 10
	s.Config.Politics.DiplomacyRetries = 0

	s.processDiplomacy()
	if s.LastNegotiation != nil {
		t.Error("no pair may be tried without retries")
	}
}

func TestProposalToPlayerWaitsForAnswer(t *testing.T) {
	s := newTestSim(t, social.War)
	addLeader(t, s, 2)

	prop, err := s.Relations.NewProposal(1, 2, social.Peace, s.TurnNumber)
	if err != nil {
		t.Fatalf("NewProposal: %v", err)
	}
	s.negotiate(s.Faction(1), s.Faction(2), prop)

	if _, ok := s.PendingProposal(); !ok {
		t.Fatal("offer to a player-led faction should be queued")
	}
	if got := s.Relation(1, 2); got != social.War {
		t.Fatalf("relation = %s before the answer, want war", got)
	}

	out, err := s.AnswerProposal(true)
	if err != nil {
		t.Fatalf("AnswerProposal: %v", err)
	}
	if out != social.OutcomeAccepted || s.Relation(1, 2) != social.Peace {
		t.Errorf("outcome %s, relation %s; want accepted peace", out, s.Relation(1, 2))
	}
	if _, err := s.AnswerProposal(true); !errors.Is(err, ErrNoProposal) {
		t.Errorf("second answer = %v, want ErrNoProposal", err)
	}
}

func TestRejectedProposalKeepsRelation(t *testing.T) {
	s := newTestSim(t, social.Peace)
	addLeader(t, s, 2)

	prop, err := s.Relations.NewProposal(1, 2, social.Alliance, s.TurnNumber)
	if err != nil {
		t.Fatalf("NewProposal: %v", err)
	}
	s.negotiate(s.Faction(1), s.Faction(2), prop)
	out, err := s.AnswerProposal(false)
	if err != nil {
		t.Fatalf("AnswerProposal: %v", err)
	}
	if out != social.OutcomeRejected || s.Relation(1, 2) != social.Peace {
		t.Errorf("outcome %s, relation %s; want rejected peace", out, s.Relation(1, 2))
	}
}

func TestExpiredProposals(t *testing.T) {
	tests := []struct {
		name     string
		current  social.RelationType
		proposed social.RelationType
		want     social.RelationType
	}{
		{"consent refused", social.War, social.Peace, social.War},
		{"leaving an alliance still applies", social.Alliance, social.Peace, social.Peace},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestSim(t, tt.current)
			addLeader(t, s, 2)

			prop, err := s.Relations.NewProposal(1, 2, tt.proposed, 0)
			if err != nil {
				t.Fatalf("NewProposal: %v", err)
			}
			s.negotiate(s.Faction(1), s.Faction(2), prop)

			s.TurnNumber = s.Config.Politics.ProposalWindow - 1
			s.expireProposals()
			if _, ok := s.PendingProposal(); !ok {
				t.Fatal("offer expired before its window closed")
			}

			s.TurnNumber = s.Config.Politics.ProposalWindow
			s.expireProposals()
			if _, ok := s.PendingProposal(); ok {
				t.Fatal("offer should expire once the window closes")
			}
			if got := s.Relation(1, 2); got != tt.want {
				t.Errorf("relation = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestProposeRelationship(t *testing.T) {
	s := newTestSim(t, social.Peace)
	p := s.Spawner().SpawnPlayer("Wayfarer", world.Own(1))
	if err := s.AddShip(p, world.InOrbit(world.Coord{}, 1)); err != nil {
		t.Fatalf("add player: %v", err)
	}

	if _, err := s.ProposeRelationship(2, social.War); !errors.Is(err, ErrNotLeader) {
		t.Fatalf("proposal by a non-leader = %v, want ErrNotLeader", err)
	}

	s.Faction(1).SetLeader(uint64(p.ID))
	if _, err := s.ProposeRelationship(9, social.War); !errors.Is(err, ErrUnknownFaction) {
		t.Errorf("proposal to an unknown faction = %v, want ErrUnknownFaction", err)
	}

	out, err := s.ProposeRelationship(2, social.War)
	if err != nil {
		t.Fatalf("ProposeRelationship: %v", err)
	}
	if out != social.OutcomeUnilateral || s.Relation(1, 2) != social.War {
		t.Errorf("outcome %s, relation %s; want unilateral war", out, s.Relation(1, 2))
	}

	if _, err := s.ProposeRelationship(2, social.War); !errors.Is(err, social.ErrNoChange) {
		t.Errorf("repeated declaration = %v, want ErrNoChange", err)
	}
}
