// Reputation bookkeeping: per-faction averages, fading and expulsion.
package engine

import (
	"fmt"
	"log/slog"
)

// cacheAverages stores each faction's mean member reputation, which scales
// the fade rate until the next turn.
func (s *Simulation) cacheAverages() {
	for _, f := range s.Factions {
		sum, n := 0, 0
		for _, sh := range s.Ships {
			if sh.Alive() && sh.InFaction(f.ID) {
				sum += sh.RepValue(f.ID)
				n++
			}
		}
		if n == 0 {
			f.AvgReputation = 0
			continue
		}
		f.AvgReputation = sum / n
	}
}

// fadeReputations moves every reputation one step toward zero every
// FadeInterval turns, the player's included.
func (s *Simulation) fadeReputations() {
	cfg := s.Config.Reputation
	if cfg.FadeInterval == 0 || s.TurnNumber%cfg.FadeInterval != 0 {
		return
	}
	for _, sh := range s.Ships {
		if !sh.Alive() {
			continue
		}
		for fid, rep := range sh.Reputation {
			if rep.Value == 0 {
				continue
			}
			avg := 0
			if f := s.Faction(fid); f != nil {
				avg = f.AvgReputation
			}
			rep.Fade(avg, cfg.FadeDivisor, cfg.FadeAverageScale)
		}
	}
}

// processExpulsions removes members whose standing with their own faction
// fell below the rejection threshold. A leader expelled this way leaves the
// faction leaderless, which triggers an emergency election.
func (s *Simulation) processExpulsions() {
	threshold := s.Config.Reputation.RejectionThreshold
	for _, sh := range s.Ships {
		fid, ok := sh.FactionID()
		if !ok || !sh.Alive() || sh.RepValue(fid) >= threshold {
			continue
		}
		f := s.Faction(fid)
		sh.Leave()
		if f == nil {
			continue
		}

		wasLeader := f.IsLeader(uint64(sh.ID))
		if wasLeader {
			f.ClearLeader()
		}
		f.AddNews(s.TurnNumber, s.Config.Politics.NewsLimit, "%s has been expelled from the %s", sh.Name, f.Name)
		s.EmitEvent(Event{
			Turn:        s.TurnNumber,
			Description: fmt.Sprintf("%s is expelled from the %s", sh.Name, f.Name),
			Category:    "political",
			Meta: map[string]any{
				"ship_id":      sh.ID,
				"faction_id":   f.ID,
				"faction_name": f.Name,
				"was_leader":   wasLeader,
			},
		})
		slog.Info("ship expelled", "ship", sh.ID, "name", sh.Name, "faction", f.Name, "reputation", sh.RepValue(fid), "leader", wasLeader)
	}
}
