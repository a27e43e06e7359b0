package ai

import (
	"github.com/talgya/galaxy-sim/internal/entropy"
	"github.com/talgya/galaxy-sim/internal/ships"
	"github.com/talgya/galaxy-sim/internal/social"
)

// Score rates a candidate from a voter's point of view: a shared
// specialization, being nearby, and net worth all count in its favor.
func (p *Policy) Score(voter, candidate *ships.Ship, v View) int {
	score := 0
	if voter.Specialization() == candidate.Specialization() {
		score += p.cfg.SpecializationPts
	}

	vl, ok1 := v.Location(voter.ID)
	cl, ok2 := v.Location(candidate.ID)
	if ok1 && ok2 {
		switch d := vl.Sector.Distance(cl.Sector); {
		case d == 0:
			score += p.cfg.ColocatedPts
		case d == 1:
			score += p.cfg.AdjacentPts
		}
	}

	if p.cfg.ValueScale > 0 {
		score += candidate.NetValue() / p.cfg.ValueScale
	}
	return score
}

// Vote returns the ballot index of the best-scoring candidate, ties going
// to the earliest position.
func (p *Policy) Vote(voter *ships.Ship, candidates []*ships.Ship, v View) int {
	scores := make([]int, len(candidates))
	for i, c := range candidates {
		if c == nil {
			scores[i] = -1 << 30
			continue
		}
		scores[i] = p.Score(voter, c, v)
	}
	return social.BestIndex(scores)
}

// ChooseRelationship picks what a faction proposes to change its relationship
// with another to.
func (p *Policy) ChooseRelationship(current social.RelationType, rng *entropy.Source) social.RelationType {
	switch current {
	case social.War:
		return social.Peace
	case social.Peace:
		if rng.Chance(p.cfg.WarChance) {
			return social.War
		}
		return social.Alliance
	default:
		if rng.Chance(p.cfg.WarChance * p.cfg.BreakChance) {
			return social.War
		}
		return social.Peace
	}
}

// AcceptRelationship decides whether the receiving faction agrees to a
// proposal. The poorer side of a war is keener on peace.
func (p *Policy) AcceptRelationship(receiver, chooser *social.Faction, prop social.Proposal, rng *entropy.Source) bool {
	switch prop.Proposed {
	case social.War:
		return false
	case social.Peace:
		if prop.Current == social.Alliance {
			return rng.Chance(p.cfg.BreakChance)
		}
		if receiver.Economy < chooser.Economy {
			return true
		}
		return rng.Chance(0.5)
	case social.Alliance:
		return rng.Chance(p.cfg.AllianceChance)
	}
	return false
}
