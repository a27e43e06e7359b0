package ai

import (
	"github.com/talgya/galaxy-sim/internal/battle"
	"github.com/talgya/galaxy-sim/internal/catalog"
	"github.com/talgya/galaxy-sim/internal/entropy"
	"github.com/talgya/galaxy-sim/internal/ships"
)

// WillAttack reports whether the ship is willing to fight: armed and above
// half hull.
func (p *Policy) WillAttack(s *ships.Ship) bool {
	return s.IsArmed() && s.HullFraction() > 0.5
}

// Tactic picks an NPC's micro-action for one battle pass.
func (p *Policy) Tactic(s *ships.Ship, rng *entropy.Source) battle.Tactic {
	canFlee := s.Cloaked || s.Amount(catalog.Fuel) >= 1

	if s.Cloaked {
		return battle.Flee
	}
	if s.HullFraction() <= 0.25 && s.HasModule(catalog.KindCloak) {
		if m, _ := s.FirstModule(catalog.KindCloak); s.Amount(m.Resource) >= m.Cost {
			return battle.Cloak
		}
	}
	if !p.WillAttack(s) {
		if canFlee {
			return battle.Flee
		}
		if s.IsArmed() {
			return battle.Fire
		}
		return battle.Hold
	}
	if !s.Shielded && s.HasModule(catalog.KindShield) && rng.Chance(p.battle.ShieldChance) {
		if m, _ := s.FirstModule(catalog.KindShield); s.Amount(m.Resource) >= m.Cost+m.Amount {
			return battle.Shield
		}
	}
	return battle.Fire
}
