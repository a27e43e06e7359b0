// Elections: scheduled and emergency leadership votes.
package engine

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/talgya/galaxy-sim/internal/ships"
	"github.com/talgya/galaxy-sim/internal/social"
)

var ErrNoElection = errors.New("no election is waiting for the player's vote")

// validLeader reports whether the faction's leader is a live member.
func (s *Simulation) validLeader(f *social.Faction) bool {
	if f.LeaderID == nil {
		return false
	}
	leader := s.Ship(ships.ID(*f.LeaderID))
	return leader != nil && leader.Alive() && leader.InFaction(f.ID)
}

// processElections finishes elections whose vote window closed and opens new
// ones for factions whose leader is gone or whose term ran out.
func (s *Simulation) processElections() {
	cfg := s.Config.Politics
	for _, f := range s.Factions {
		if e, ok := s.Elections[f.ID]; ok {
			if s.TurnNumber >= e.Opened+cfg.ElectionVoteWindow {
				slog.Info("election closed without the player's vote", "faction", f.Name)
				s.finishElection(f, e)
			}
			continue
		}

		emergency := !s.validLeader(f)
		due := cfg.ElectionInterval > 0 && s.TurnNumber >= f.LastElection+cfg.ElectionInterval
		if !emergency && !due {
			continue
		}
		if emergency && f.LeaderID != nil {
			s.EmitEvent(Event{
				Turn:        s.TurnNumber,
				Description: fmt.Sprintf("The %s has lost its leader", f.Name),
				Category:    "political",
				Meta:        map[string]any{"faction_id": f.ID, "faction_name": f.Name, "leader_id": *f.LeaderID},
			})
			f.ClearLeader()
		}
		s.holdElection(f, emergency)
	}
}

// holdElection opens an election and collects every NPC ballot. When the
// player is a voting member the election waits for CastVote.
func (s *Simulation) holdElection(f *social.Faction, emergency bool) {
	members := s.FactionMembers(f.ID)
	ballot := make([]social.Member, 0, len(members))
	for _, sh := range members {
		ballot = append(ballot, social.Member{ID: uint64(sh.ID), Reputation: sh.RepValue(f.ID), Human: sh.Human})
	}

	e, err := social.NewElection(f, ballot, s.Config.Politics.ElectionCandidates, emergency, s.TurnNumber)
	if err != nil {
		f.LastElection = s.TurnNumber
		slog.Debug("election skipped", "faction", f.Name, "error", err)
		return
	}

	candidates := s.candidates(e)
	awaiting := false
	for _, voter := range members {
		if e.IsCandidate(uint64(voter.ID)) {
			continue
		}
		if voter.Human {
			awaiting = true
			continue
		}
		if err := e.Vote(s.policy.Vote(voter, candidates, s)); err != nil {
			slog.Warn("ballot rejected", "faction", f.Name, "voter", voter.ID, "error", err)
		}
	}

	if awaiting {
		e.AwaitingPlayer = true
		s.Elections[f.ID] = e
		f.AddNews(s.TurnNumber, s.Config.Politics.NewsLimit, "An election is under way; %d candidates stand", len(e.Candidates))
		return
	}
	s.finishElection(f, e)
}

// candidates resolves an election's ballot to ships. A candidate destroyed
// while the vote was open appears as nil.
func (s *Simulation) candidates(e *social.Election) []*ships.Ship {
	out := make([]*ships.Ship, len(e.Candidates))
	for i, id := range e.Candidates {
		if sh := s.Ship(ships.ID(id)); sh != nil && sh.Alive() {
			out[i] = sh
		}
	}
	return out
}

// finishElection installs the winner. A reelected incumbent pays a
// reputation penalty; a new leader gains a bonus.
func (s *Simulation) finishElection(f *social.Faction, e *social.Election) {
	delete(s.Elections, f.ID)
	f.LastElection = s.TurnNumber

	id, err := e.Winner()
	if err != nil {
		slog.Warn("election has no winner", "faction", f.Name, "error", err)
		return
	}
	winner := s.Ship(ships.ID(id))
	if winner == nil || !winner.Alive() || !winner.InFaction(f.ID) {
		// Left leaderless; the next turn opens an emergency election.
		f.ClearLeader()
		slog.Warn("election winner no longer eligible", "faction", f.Name, "winner", id)
		return
	}

	f.SetLeader(id)
	cfg := s.Config.Reputation
	reelected := e.Reelected(id)
	if reelected {
		winner.Rep(f.ID).Adjust(-cfg.ReelectionPenalty, f)
		f.AddNews(s.TurnNumber, s.Config.Politics.NewsLimit, "%s was reelected as leader", winner.Name)
	} else {
		winner.Rep(f.ID).Adjust(cfg.LeaderBonus, f)
		f.AddNews(s.TurnNumber, s.Config.Politics.NewsLimit, "%s was elected as the new leader", winner.Name)
	}

	s.EmitEvent(Event{
		Turn:        s.TurnNumber,
		Description: fmt.Sprintf("%s becomes leader of the %s", winner.Name, f.Name),
		Category:    "election",
		Meta: map[string]any{
			"faction_id":   f.ID,
			"faction_name": f.Name,
			"ship_id":      winner.ID,
			"emergency":    e.Emergency,
			"reelected":    reelected,
			"votes":        e.Votes,
		},
	})
	slog.Info("election", "faction", f.Name, "winner", winner.Name, "emergency", e.Emergency, "reelected", reelected)
}

// ── Player commands ──

// PendingElection returns the election waiting for the player's ballot.
func (s *Simulation) PendingElection() (*social.Election, bool) {
	f := s.playerFaction()
	if f == nil {
		return nil, false
	}
	e, ok := s.Elections[f.ID]
	return e, ok
}

// CastVote records the player's ballot for the candidate at index and
// finishes the election.
func (s *Simulation) CastVote(index int) error {
	e, ok := s.PendingElection()
	if !ok {
		return ErrNoElection
	}
	if err := e.Vote(index); err != nil {
		return fmt.Errorf("cast vote: %w", err)
	}
	s.finishElection(s.Faction(e.Faction), e)
	return nil
}
