// Diplomacy: the relationship negotiation cycle between factions.
package engine

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/talgya/galaxy-sim/internal/social"
)

var (
	ErrNoProposal = errors.New("no proposal is waiting for an answer")
	ErrNotLeader  = errors.New("the player does not lead a faction")
)

// processDiplomacy expires stale offers to the player and, when the schedule
// permits, runs one negotiation between a random pair of factions. It only
// runs with more than two factions, at most once per cooldown, with a chance
// that shrinks as the faction count grows.
func (s *Simulation) processDiplomacy() {
	s.expireProposals()

	n := len(s.Factions)
	cfg := s.Config.Politics
	if n <= 2 {
		return
	}
	if s.LastNegotiation != nil && s.TurnNumber < *s.LastNegotiation+cfg.DiplomacyCooldown {
		return
	}
	if !s.rng.Chance(cfg.DiplomacyChance / float64(n)) {
		return
	}

	for try := 0; try < cfg.DiplomacyRetries; try++ {
		chooser := s.Factions[s.rng.Intn(n)]
		receiver := s.Factions[s.rng.Intn(n)]
		if chooser.ID == receiver.ID || s.PlayerLed(chooser) || s.pending(social.MakePair(chooser.ID, receiver.ID)) {
			continue
		}

		current := s.Relations.Type(chooser.ID, receiver.ID)
		proposed := s.policy.ChooseRelationship(current, s.rng)
		prop, err := s.Relations.NewProposal(chooser.ID, receiver.ID, proposed, s.TurnNumber)
		if err != nil {
			slog.Debug("proposal rejected by rules", "chooser", chooser.Name, "receiver", receiver.Name, "error", err)
			continue
		}
		turn := s.TurnNumber
		s.LastNegotiation = &turn
		s.negotiate(chooser, receiver, prop)
		return
	}
	slog.Debug("no eligible faction pair", "turn", s.TurnNumber, "retries", cfg.DiplomacyRetries)
}

// pending reports whether a proposal for the pair waits on the player.
func (s *Simulation) pending(p social.Pair) bool {
	for _, prop := range s.Proposals {
		if prop.Pair() == p {
			return true
		}
	}
	return false
}

// negotiate hands a proposal to the receiver: queued when the player leads
// it, otherwise answered by the receiver's policy at once.
func (s *Simulation) negotiate(chooser, receiver *social.Faction, prop social.Proposal) {
	if s.PlayerLed(receiver) {
		s.Proposals = append(s.Proposals, prop)
		receiver.AddNews(s.TurnNumber, s.Config.Politics.NewsLimit, "The %s proposes %s", chooser.Name, prop.Proposed)
		s.EmitEvent(Event{
			Turn:        s.TurnNumber,
			Description: fmt.Sprintf("The %s proposes %s to the %s", chooser.Name, prop.Proposed, receiver.Name),
			Category:    "diplomacy",
			Meta:        map[string]any{"chooser": chooser.ID, "receiver": receiver.ID, "awaiting_player": true},
		})
		return
	}
	accepted := s.policy.AcceptRelationship(receiver, chooser, prop, s.rng)
	s.settleProposal(prop, accepted)
}

// settleProposal applies the receiver's answer and reports the outcome in
// both factions' news.
func (s *Simulation) settleProposal(prop social.Proposal, accepted bool) social.Outcome {
	chooser, receiver := s.Faction(prop.Chooser), s.Faction(prop.Receiver)
	out, err := s.Relations.Resolve(prop, accepted)
	if err != nil {
		slog.Warn("proposal could not be resolved", "chooser", prop.Chooser, "receiver", prop.Receiver, "error", err)
		return out
	}
	if chooser == nil || receiver == nil {
		return out
	}

	limit := s.Config.Politics.NewsLimit
	var desc string
	switch out {
	case social.OutcomeAccepted, social.OutcomeUnilateral:
		desc = relationNews(chooser, receiver, prop.Proposed)
		chooser.AddNews(s.TurnNumber, limit, "%s", desc)
		receiver.AddNews(s.TurnNumber, limit, "%s", desc)
	case social.OutcomeRejected:
		desc = fmt.Sprintf("The %s rejected the %s's offer of %s", receiver.Name, chooser.Name, prop.Proposed)
		chooser.AddNews(s.TurnNumber, limit, "%s", desc)
		receiver.AddNews(s.TurnNumber, limit, "%s", desc)
	case social.OutcomeStale:
		slog.Debug("stale proposal dropped", "chooser", chooser.Name, "receiver", receiver.Name)
		return out
	}

	s.EmitEvent(Event{
		Turn:        s.TurnNumber,
		Description: desc,
		Category:    "diplomacy",
		Meta: map[string]any{
			"chooser":  chooser.ID,
			"receiver": receiver.ID,
			"current":  prop.Current.String(),
			"proposed": prop.Proposed.String(),
			"accepted": out == social.OutcomeAccepted,
		},
	})
	slog.Info("diplomacy", "chooser", chooser.Name, "receiver", receiver.Name, "proposed", prop.Proposed, "outcome", out)
	return out
}

func relationNews(a, b *social.Faction, t social.RelationType) string {
	switch t {
	case social.War:
		return fmt.Sprintf("The %s declared war on the %s", a.Name, b.Name)
	case social.Alliance:
		return fmt.Sprintf("The %s and the %s formed an alliance", a.Name, b.Name)
	}
	return fmt.Sprintf("The %s and the %s are at peace", a.Name, b.Name)
}

// expireProposals answers offers the player left waiting too long with a
// refusal. Unilateral changes still take effect.
func (s *Simulation) expireProposals() {
	window := s.Config.Politics.ProposalWindow
	if window == 0 {
		return
	}
	kept := s.Proposals[:0]
	for _, prop := range s.Proposals {
		if s.TurnNumber >= prop.Opened+window {
			s.settleProposal(prop, false)
			continue
		}
		kept = append(kept, prop)
	}
	s.Proposals = kept
}

// ── Player commands ──

// PendingProposal returns the oldest offer waiting on the player.
func (s *Simulation) PendingProposal() (social.Proposal, bool) {
	if len(s.Proposals) == 0 {
		return social.Proposal{}, false
	}
	return s.Proposals[0], true
}

// AnswerProposal resolves the oldest offer waiting on the player.
func (s *Simulation) AnswerProposal(accept bool) (social.Outcome, error) {
	prop, ok := s.PendingProposal()
	if !ok {
		return social.OutcomeRejected, ErrNoProposal
	}
	s.Proposals = s.Proposals[1:]
	return s.settleProposal(prop, accept), nil
}

// ProposeRelationship lets a player-led faction offer a new relationship to
// another faction, answered at once by that faction's policy.
func (s *Simulation) ProposeRelationship(receiver social.FactionID, t social.RelationType) (social.Outcome, error) {
	mine := s.playerFaction()
	if mine == nil || !s.PlayerLed(mine) {
		return social.OutcomeRejected, ErrNotLeader
	}
	other := s.Faction(receiver)
	if other == nil {
		return social.OutcomeRejected, fmt.Errorf("propose to %d: %w", receiver, ErrUnknownFaction)
	}
	prop, err := s.Relations.NewProposal(mine.ID, other.ID, t, s.TurnNumber)
	if err != nil {
		return social.OutcomeRejected, fmt.Errorf("propose %s to the %s: %w", t, other.Name, err)
	}
	accepted := s.policy.AcceptRelationship(other, mine, prop, s.rng)
	return s.settleProposal(prop, accepted), nil
}

// playerFaction returns the player's faction, or nil.
func (s *Simulation) playerFaction() *social.Faction {
	p := s.Player()
	if p == nil {
		return nil
	}
	fid, ok := p.FactionID()
	if !ok {
		return nil
	}
	return s.Faction(fid)
}
