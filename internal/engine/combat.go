// Combat: opening battles, driving their resolution and recording kills.
package engine

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/talgya/galaxy-sim/internal/battle"
	"github.com/talgya/galaxy-sim/internal/config"
	"github.com/talgya/galaxy-sim/internal/ships"
	"github.com/talgya/galaxy-sim/internal/world"
)

var (
	ErrNotColocated  = errors.New("target is not at the same location")
	ErrTargetCloaked = errors.New("target is cloaked")
)

// BattleConfig returns the combat constants.
func (s *Simulation) BattleConfig() config.BattleConfig {
	return s.Config.Battle
}

// WillAttack reports whether an NPC would pursue a fleeing enemy.
func (s *Simulation) WillAttack(sh *ships.Ship) bool {
	return s.policy.WillAttack(sh)
}

// Tactic returns a participant's move for one pass. The player's queued
// order is used once; without one the player holds.
func (s *Simulation) Tactic(sh *ships.Ship, b *battle.Battle) battle.Tactic {
	if sh.Human {
		t, ok := s.tactics[sh.ID]
		if !ok {
			return battle.Hold
		}
		delete(s.tactics, sh.ID)
		return t
	}
	return s.policy.Tactic(sh, s.rng)
}

// Spawn opens a battle at an orbit and pulls its participants in.
func (s *Simulation) Spawn(sector world.Coord, orbit int, attackers, defenders []ships.ID) *battle.Battle {
	s.NextBattle++
	b := battle.New(s.NextBattle, sector, orbit, attackers, defenders)
	s.Battles[b.ID] = b

	for _, id := range b.Participants() {
		loc, ok := s.Roster.Location(id)
		if !ok {
			continue
		}
		to, err := world.JoinBattle(loc, b.ID)
		if err != nil {
			slog.Warn("ship could not join battle", "battle", b.ID, "ship", id, "location", loc, "error", err)
			continue
		}
		if err := s.Roster.Move(id, to); err != nil {
			slog.Warn("battle roster move failed", "battle", b.ID, "ship", id, "error", err)
		}
	}

	s.EmitEvent(Event{
		Turn:        s.TurnNumber,
		Description: fmt.Sprintf("Battle erupts in sector %s at orbit %d", sector, orbit),
		Category:    "battle",
		Meta: map[string]any{
			"battle_id": b.ID,
			"attackers": len(b.Attackers),
			"defenders": len(b.Defenders),
		},
	})
	return b
}

// Destroyed records a kill: the victim leaves every roster and the killer's
// standing shifts with the victim's faction and its enemies.
func (s *Simulation) Destroyed(victim, killer ships.ID) {
	v := s.Ship(victim)
	s.Roster.Remove(victim)
	if v == nil {
		return
	}
	v.Destroyed = true

	k := s.Ship(killer)
	if k != nil {
		if vf, ok := v.FactionID(); ok {
			k.Rep(vf).Adjust(-s.Config.Reputation.KillPenalty, s.Faction(vf))
			for _, f := range s.Factions {
				if s.isEnemy(f.ID, vf) {
					k.Rep(f.ID).Adjust(s.Config.Reputation.KillBonus, f)
				}
			}
		}
	}

	desc := fmt.Sprintf("%s was destroyed", v.Name)
	if k != nil {
		desc = fmt.Sprintf("%s was destroyed by %s", v.Name, k.Name)
	}
	meta := map[string]any{"ship_id": victim}
	if f, ok := v.FactionID(); ok {
		if fac := s.Faction(f); fac != nil {
			meta["faction_name"] = fac.Name
			if fac.IsLeader(uint64(victim)) {
				fac.AddNews(s.TurnNumber, s.Config.Politics.NewsLimit, "Our leader %s was killed in battle", v.Name)
			}
		}
	}
	s.EmitEvent(Event{Turn: s.TurnNumber, Description: desc, Category: "death", Meta: meta})
}

// destroy removes a ship outside combat.
func (s *Simulation) destroy(sh *ships.Ship, reason string) {
	sh.Destroyed = true
	s.Roster.Remove(sh.ID)
	s.EmitEvent(Event{
		Turn:        s.TurnNumber,
		Description: fmt.Sprintf("%s %s", sh.Name, reason),
		Category:    "death",
		Meta:        map[string]any{"ship_id": sh.ID},
	})
}

// attack opens a battle between two ships at the same orbit. Ships allied
// with either side who are there may join it.
func (s *Simulation) attack(sh *ships.Ship, targetID ships.ID) error {
	target := s.Ship(targetID)
	if target == nil || target.Destroyed {
		return fmt.Errorf("attack %d: %w", targetID, ErrUnknownShip)
	}
	if !sh.IsArmed() {
		return fmt.Errorf("attack %s: %w", target.Name, ships.ErrNoWeapon)
	}
	loc, _ := s.Roster.Location(sh.ID)
	tloc, _ := s.Roster.Location(targetID)
	if loc.Kind != world.Orbital {
		return fmt.Errorf("attack %s: %w", target.Name, world.ErrNotOrbital)
	}
	if loc != tloc {
		return fmt.Errorf("attack %s: %w", target.Name, ErrNotColocated)
	}
	if target.Cloaked {
		return fmt.Errorf("attack %s: %w", target.Name, ErrTargetCloaked)
	}

	var attackers, defenders []ships.ID
	attackers = append(attackers, sh.ID)
	defenders = append(defenders, targetID)
	chance := s.Config.Battle.AllyJoinChance
	for _, id := range s.Roster.Members(loc) {
		if id == sh.ID || id == targetID {
			continue
		}
		o := s.Ship(id)
		if o == nil || o.Human || !s.policy.WillAttack(o) {
			continue
		}
		of, ok := o.FactionID()
		if !ok {
			continue
		}
		switch {
		case s.Friendly(sh, of) && !s.Friendly(target, of):
			if s.rng.Chance(chance) {
				attackers = append(attackers, id)
			}
		case s.Friendly(target, of) && !s.Friendly(sh, of):
			if s.rng.Chance(chance) {
				defenders = append(defenders, id)
			}
		}
	}

	b := s.Spawn(loc.Sector, loc.Orbit, attackers, defenders)
	slog.Info("battle opened", "battle", b.ID, "attacker", sh.Name, "defender", target.Name,
		"sides", fmt.Sprintf("%d v %d", len(attackers), len(defenders)))
	s.resolve(b)
	return nil
}

// involvesHuman reports whether the player fights in b.
func (s *Simulation) involvesHuman(b *battle.Battle) bool {
	for _, id := range b.Participants() {
		if sh := s.Ship(id); sh != nil && sh.Human && !sh.Destroyed {
			return true
		}
	}
	return false
}

// resolve runs a battle: to the end without the player, one pass with.
func (s *Simulation) resolve(b *battle.Battle) {
	res := b.Resolve(s, s.involvesHuman(b))
	if b.State != battle.Resolved {
		return
	}
	delete(s.Battles, b.ID)

	outcome := "ends"
	if res == battle.Stalemate {
		outcome = "ends in stalemate"
	}
	s.EmitEvent(Event{
		Turn:        s.TurnNumber,
		Description: fmt.Sprintf("Battle in sector %s %s after %d rounds", b.Sector, outcome, b.Rounds),
		Category:    "battle",
		Meta:        map[string]any{"battle_id": b.ID, "rounds": b.Rounds},
	})
}

// resumeBattles gives each battle with the player one more pass.
func (s *Simulation) resumeBattles() {
	for _, b := range s.SortedBattles() {
		if s.involvesHuman(b) {
			s.resolve(b)
		}
	}
	s.settleBattles()
}

// settleBattles resolves every battle without the player, including
// pursuits opened while resolving others.
func (s *Simulation) settleBattles() {
	for {
		var open []*battle.Battle
		for _, b := range s.SortedBattles() {
			if !s.involvesHuman(b) {
				open = append(open, b)
			}
		}
		if len(open) == 0 {
			return
		}
		for _, b := range open {
			s.resolve(b)
		}
	}
}

// ── Player commands ──

// Attack opens a battle between the player and a ship at its orbit.
func (s *Simulation) Attack(target ships.ID) error {
	p, err := s.player()
	if err != nil {
		return err
	}
	return s.attack(p, target)
}

// SubmitTactic queues the player's move for the next battle pass.
func (s *Simulation) SubmitTactic(t battle.Tactic) error {
	p, err := s.player()
	if err != nil {
		return err
	}
	loc, _ := s.Roster.Location(p.ID)
	if loc.Kind != world.InBattle {
		return fmt.Errorf("tactic %s: %w", t, world.ErrNotInBattle)
	}
	s.tactics[p.ID] = t
	return nil
}
