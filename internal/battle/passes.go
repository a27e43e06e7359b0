package battle

import (
	"log/slog"

	"github.com/talgya/galaxy-sim/internal/catalog"
	"github.com/talgya/galaxy-sim/internal/ships"
	"github.com/talgya/galaxy-sim/internal/world"
)

// ProcessAttacks lets every participant act once. Slots interleave the sides
// (attacker 0, defender 0, attacker 1, ...) so the order is deterministic.
func (b *Battle) ProcessAttacks(a Arena) {
	attackers := append([]ships.ID(nil), b.Attackers...)
	defenders := append([]ships.ID(nil), b.Defenders...)

	slots := len(attackers)
	if len(defenders) > slots {
		slots = len(defenders)
	}
	for i := 0; i < slots; i++ {
		if i < len(attackers) {
			b.act(a, attackers[i])
		}
		if i < len(defenders) {
			b.act(a, defenders[i])
		}
	}
}

func (b *Battle) act(a Arena, id ships.ID) {
	s := a.Ship(id)
	if s == nil || s.Destroyed || !b.Involves(id) || b.IsFleeing(id) {
		return
	}

	switch t := a.Tactic(s, b); t {
	case Fire:
		target := b.pickTarget(a, id)
		if target == nil {
			return
		}
		dmg, err := s.Fire()
		if err != nil {
			return
		}
		if target.TakeHit(dmg) {
			b.destroy(a, target.ID, id)
		}
	case Shield:
		if err := s.RaiseShield(); err != nil {
			slog.Debug("shield failed", "ship", id, "error", err)
		}
	case Cloak:
		if err := s.EngageCloak(); err != nil {
			slog.Debug("cloak failed", "ship", id, "error", err)
		}
	case Flee:
		b.Fleeing = append(b.Fleeing, id)
	case Hold:
	}
}

// pickTarget chooses a random live, visible opponent.
func (b *Battle) pickTarget(a Arena, id ships.ID) *ships.Ship {
	var targets []*ships.Ship
	for _, oid := range b.Opponents(id) {
		o := a.Ship(oid)
		if o != nil && !o.Destroyed && !o.Cloaked {
			targets = append(targets, o)
		}
	}
	if len(targets) == 0 {
		return nil
	}
	return targets[a.Rand().Intn(len(targets))]
}

// destroy moves a ship out of every set into Destroyed and banks its salvage.
func (b *Battle) destroy(a Arena, victim, killer ships.ID) {
	b.Attackers = without(b.Attackers, victim)
	b.Defenders = without(b.Defenders, victim)
	b.Fleeing = without(b.Fleeing, victim)
	b.Destroyed = append(b.Destroyed, victim)
	b.progress = true

	if s := a.Ship(victim); s != nil {
		mod := a.BattleConfig().LootModifier
		if mod < 1 {
			mod = 1
		}
		b.LootCredits += s.Credits() / mod
		b.LootModules = append(b.LootModules, s.Salvage()...)
	}
	slog.Info("ship destroyed in battle", "battle", b.ID, "victim", victim, "killer", killer)
	a.Destroyed(victim, killer)
}

// ProcessEscapes attempts an escape for every fleeing ship. Pursuers are the
// opposing ships willing to attack that have fuel to follow; nobody pursues
// a cloaked ship.
func (b *Battle) ProcessEscapes(a Arena) {
	for _, id := range append([]ships.ID(nil), b.Fleeing...) {
		s := a.Ship(id)
		if s == nil || s.Destroyed {
			continue
		}
		var pursuers []ships.ID
		if !s.Cloaked {
			for _, pid := range b.Opponents(id) {
				p := a.Ship(pid)
				if p == nil || p.Destroyed || p.Human || b.IsFleeing(pid) {
					continue
				}
				if p.Amount(catalog.Fuel) >= 1 && a.WillAttack(p) {
					pursuers = append(pursuers, pid)
				}
			}
		}
		b.ProcessEscape(a, id, pursuers)
	}
}

// ProcessEscape moves a fleeing ship one orbit up or down, away from the
// battle. A cloaked ship always escapes; otherwise the attempt costs one fuel
// and succeeds with the configured chance. On failure the ship stops fleeing
// and fights on. Pursuers follow into a new battle at the new orbit.
// Returns true when the ship got away.
func (b *Battle) ProcessEscape(a Arena, id ships.ID, pursuers []ships.ID) bool {
	if !b.IsFleeing(id) {
		return false
	}
	b.Fleeing = without(b.Fleeing, id)

	s := a.Ship(id)
	sector := a.Sector(b.Sector)
	if s == nil || sector == nil {
		return false
	}
	orbits := world.EscapeOrbits(sector, b.Orbit)
	if len(orbits) == 0 {
		return false
	}

	if !s.Cloaked {
		if s.Consume(catalog.Fuel, 1) != nil {
			return false
		}
		if !a.Rand().Chance(a.BattleConfig().EscapeChance) {
			slog.Debug("escape failed", "battle", b.ID, "ship", id)
			return false
		}
	}

	orbit := orbits[a.Rand().Intn(len(orbits))]
	from := b.Location()
	to, err := world.FleeBattle(from, sector, orbit)
	if err != nil {
		return false
	}

	b.Attackers = without(b.Attackers, id)
	b.Defenders = without(b.Defenders, id)
	b.progress = true
	if err := a.Relocate(id, to); err != nil {
		slog.Warn("escape relocation failed", "ship", id, "error", err)
	}

	var chasing []ships.ID
	for _, pid := range pursuers {
		p := a.Ship(pid)
		if p == nil || !b.Involves(pid) || p.Consume(catalog.Fuel, 1) != nil {
			continue
		}
		b.Attackers = without(b.Attackers, pid)
		b.Defenders = without(b.Defenders, pid)
		if err := a.Relocate(pid, to); err != nil {
			slog.Warn("pursuit relocation failed", "ship", pid, "error", err)
			continue
		}
		chasing = append(chasing, pid)
	}

	if len(chasing) > 0 {
		sub := a.Spawn(b.Sector, orbit, chasing, []ships.ID{id})
		slog.Info("pursuit", "battle", b.ID, "ship", id, "pursuers", len(chasing), "sub_battle", sub.ID)
	} else {
		slog.Info("escaped", "battle", b.ID, "ship", id, "orbit", orbit)
	}
	return true
}

// DistributeLoot pays banked salvage to the survivors round-robin. Credits
// are conserved exactly; every LootModifier-th salvaged module goes to a
// survivor's cargo. Returns the credits paid out.
func (b *Battle) DistributeLoot(a Arena) int {
	survivors := b.survivors(a)
	if len(survivors) == 0 {
		b.LootCredits = 0
		b.LootModules = nil
		return 0
	}

	paid := 0
	share := b.LootCredits / len(survivors)
	extra := b.LootCredits % len(survivors)
	for i, s := range survivors {
		amount := share
		if i < extra {
			amount++
		}
		s.Earn(amount)
		paid += amount
	}

	mod := a.BattleConfig().LootModifier
	if mod < 1 {
		mod = 1
	}
	next := 0
	for i, m := range b.LootModules {
		if (i+1)%mod != 0 {
			continue
		}
		s := survivors[next%len(survivors)]
		s.Cargo = append(s.Cargo, m)
		next++
	}

	if paid > 0 || next > 0 {
		slog.Info("loot distributed", "battle", b.ID, "credits", paid, "modules", next, "survivors", len(survivors))
	}
	b.LootCredits = 0
	b.LootModules = nil
	return paid
}

func (b *Battle) survivors(a Arena) []*ships.Ship {
	var out []*ships.Ship
	for _, id := range b.Participants() {
		if s := a.Ship(id); s != nil && !s.Destroyed {
			out = append(out, s)
		}
	}
	return out
}

// End returns every surviving participant to orbit, clears all four sets and
// marks the battle resolved.
func (b *Battle) End(a Arena) {
	orbit := world.InOrbit(b.Sector, b.Orbit)
	seen := make(map[ships.ID]bool)
	for _, id := range append(b.Participants(), b.Fleeing...) {
		if seen[id] {
			continue
		}
		seen[id] = true
		if s := a.Ship(id); s == nil || s.Destroyed {
			continue
		}
		if err := a.Relocate(id, orbit); err != nil {
			slog.Warn("battle end relocation failed", "ship", id, "error", err)
		}
	}
	b.Attackers = nil
	b.Defenders = nil
	b.Fleeing = nil
	b.Destroyed = nil
	b.State = Resolved
}
