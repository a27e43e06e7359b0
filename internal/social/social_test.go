package social

import (
	"errors"
	"testing"
)

func TestRelationsOneRecordPerPair(t *testing.T) {
	r := NewRelations()
	if err := r.Init(1, 2, War); err != nil {
		t.Fatalf("Init: %v", err)
	}
	// Reversed order and a different type must not create a second record.
	if err := r.Init(2, 1, Alliance); err != nil {
		t.Fatalf("Init reversed: %v", err)
	}
	if r.Len() != 1 {
		t.Fatalf("expected 1 record, got %d", r.Len())
	}
	if got := r.Type(2, 1); got != War {
		t.Errorf("expected war, got %s", got)
	}
	if err := r.Init(3, 3, Peace); !errors.Is(err, ErrSameFaction) {
		t.Errorf("expected ErrSameFaction, got %v", err)
	}
}

func TestConsentRules(t *testing.T) {
	tests := []struct {
		current, proposed RelationType
		valid, consent    bool
	}{
		{Peace, War, true, false},
		{Alliance, War, true, false},
		{War, Peace, true, true},
		{Peace, Alliance, true, true},
		{Alliance, Peace, true, false},
		{War, Alliance, false, true},
		{War, War, false, false},
	}
	for _, tc := range tests {
		if got := ValidTransition(tc.current, tc.proposed); got != tc.valid {
			t.Errorf("ValidTransition(%s,%s) = %v, want %v", tc.current, tc.proposed, got, tc.valid)
		}
		if !tc.valid {
			continue
		}
		if got := RequiresConsent(tc.current, tc.proposed); got != tc.consent {
			t.Errorf("RequiresConsent(%s,%s) = %v, want %v", tc.current, tc.proposed, got, tc.consent)
		}
	}
}

func TestResolveRejectionLeavesRelationship(t *testing.T) {
	r := NewRelations()
	r.Init(1, 2, War)

	p, err := r.NewProposal(1, 2, Peace, 10)
	if err != nil {
		t.Fatalf("NewProposal: %v", err)
	}
	out, err := r.Resolve(p, false)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if out != OutcomeRejected {
		t.Errorf("expected rejection, got %v", out)
	}
	if r.Type(1, 2) != War {
		t.Errorf("rejection changed relationship to %s", r.Type(1, 2))
	}

	out, _ = r.Resolve(p, true)
	if out != OutcomeAccepted || r.Type(1, 2) != Peace {
		t.Errorf("accepted peace: outcome %v type %s", out, r.Type(1, 2))
	}
}

func TestResolveWarIsUnilateral(t *testing.T) {
	r := NewRelations()
	r.Init(1, 2, Alliance)
	p, err := r.NewProposal(2, 1, War, 0)
	if err != nil {
		t.Fatalf("NewProposal: %v", err)
	}
	out, _ := r.Resolve(p, false)
	if out != OutcomeUnilateral {
		t.Errorf("expected unilateral, got %v", out)
	}
	if r.Type(1, 2) != War {
		t.Errorf("expected war, got %s", r.Type(1, 2))
	}
}

func TestResolveStaleProposal(t *testing.T) {
	r := NewRelations()
	r.Init(1, 2, War)
	p, _ := r.NewProposal(1, 2, Peace, 0)
	r.Resolve(p, true)

	out, err := r.Resolve(p, true)
	if err != nil || out != OutcomeStale {
		t.Errorf("expected stale outcome, got %v %v", out, err)
	}
}

func TestNewProposalRejectsSkippingPeace(t *testing.T) {
	r := NewRelations()
	r.Init(1, 2, War)
	if _, err := r.NewProposal(1, 2, Alliance, 0); !errors.Is(err, ErrInvalidProposal) {
		t.Errorf("expected ErrInvalidProposal, got %v", err)
	}
	if _, err := r.NewProposal(1, 2, War, 0); !errors.Is(err, ErrNoChange) {
		t.Errorf("expected ErrNoChange, got %v", err)
	}
}

func TestClassifyRelativeToHistory(t *testing.T) {
	f := NewFaction(1, "Test", "red", 0)
	if got := Classify(0, f, 100); got != Neutral {
		t.Errorf("zero should be neutral, got %s", got)
	}
	if got := Classify(80, f, 100); got != Heroic {
		t.Errorf("80/100 should be heroic, got %s", got)
	}

	// A faction that has seen 1000 makes 80 unremarkable.
	rep := &Reputation{Faction: 1}
	rep.Adjust(1000, f)
	if got := Classify(80, f, 100); got != Neutral {
		t.Errorf("80/1000 should be neutral, got %s", got)
	}
	if got := Classify(-80, f, 100); got != Infamous {
		t.Errorf("-80/100 should be infamous, got %s", got)
	}
}

func TestFadeReachesZeroMonotonically(t *testing.T) {
	for _, start := range []int{1, 7, -13, 250, -999, 5000} {
		rep := &Reputation{Value: start}
		prev := Abs(start)
		steps := 0
		for rep.Value != 0 {
			rep.Fade(300, 20, 100)
			mag := Abs(rep.Value)
			if mag > prev {
				t.Fatalf("start %d: magnitude grew from %d to %d", start, prev, mag)
			}
			if (start > 0 && rep.Value < 0) || (start < 0 && rep.Value > 0) {
				t.Fatalf("start %d: fade overshot zero to %d", start, rep.Value)
			}
			prev = mag
			steps++
			if steps > 10000 {
				t.Fatalf("start %d: did not reach zero", start)
			}
		}
	}
}

func TestFadeSlowerForHighAverage(t *testing.T) {
	low := FadeStep(1000, 0, 10, 100)
	high := FadeStep(1000, 1000, 10, 100)
	if high >= low {
		t.Errorf("high average should fade slower: low %d high %d", low, high)
	}
}

func TestElectionCandidatesAndTies(t *testing.T) {
	f := NewFaction(1, "Test", "red", 0)
	f.SetLeader(3)
	members := []Member{
		{ID: 1, Reputation: 10},
		{ID: 2, Reputation: 50},
		{ID: 3, Reputation: 50},
		{ID: 4, Reputation: 5},
		{ID: 5, Reputation: 40},
	}
	e, err := NewElection(f, members, 4, false, 100)
	if err != nil {
		t.Fatalf("NewElection: %v", err)
	}
	want := []uint64{2, 3, 5, 1}
	for i, id := range want {
		if e.Candidates[i] != id {
			t.Fatalf("candidate %d = %d, want %d (all %v)", i, e.Candidates[i], id, e.Candidates)
		}
	}

	// Tie between index 1 and 2: earliest wins.
	e.Vote(1)
	e.Vote(2)
	winner, err := e.Winner()
	if err != nil {
		t.Fatalf("Winner: %v", err)
	}
	if winner != 3 {
		t.Errorf("expected candidate 3 on tie, got %d", winner)
	}
	if !e.Reelected(winner) {
		t.Error("expected incumbent reelection to be detected")
	}
	if err := e.Vote(0); !errors.Is(err, ErrAlreadyDecided) {
		t.Errorf("expected ErrAlreadyDecided, got %v", err)
	}
}

func TestElectionRejectsEmptyMembership(t *testing.T) {
	f := NewFaction(1, "Test", "red", 0)
	if _, err := NewElection(f, nil, 4, true, 0); !errors.Is(err, ErrNoCandidates) {
		t.Errorf("expected ErrNoCandidates, got %v", err)
	}
}

func TestNewsLimit(t *testing.T) {
	f := NewFaction(1, "Test", "red", 0)
	for i := 0; i < 10; i++ {
		f.AddNews(uint64(i), 3, "entry %d", i)
	}
	if len(f.News) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(f.News))
	}
	if f.News[0].Text != "entry 7" {
		t.Errorf("expected oldest kept entry 7, got %q", f.News[0].Text)
	}
}
