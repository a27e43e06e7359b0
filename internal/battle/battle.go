// Package battle resolves combat between two sides of ships at one orbit.
package battle

import (
	"log/slog"

	"github.com/talgya/galaxy-sim/internal/catalog"
	"github.com/talgya/galaxy-sim/internal/config"
	"github.com/talgya/galaxy-sim/internal/entropy"
	"github.com/talgya/galaxy-sim/internal/ships"
	"github.com/talgya/galaxy-sim/internal/world"
)

// State is the lifecycle of a battle.
type State uint8

const (
	Active State = iota
	Resolved
)

// Tactic is one participant's micro-action for a pass.
type Tactic uint8

const (
	Hold Tactic = iota
	Fire
	Shield
	Cloak
	Flee
)

var tacticNames = [...]string{"hold", "fire", "shield", "cloak", "flee"}

func (t Tactic) String() string {
	if int(t) < len(tacticNames) {
		return tacticNames[t]
	}
	return "unknown"
}

// ParseTactic maps a tactic name to its value.
func ParseTactic(s string) (Tactic, bool) {
	for i, n := range tacticNames {
		if n == s {
			return Tactic(i), true
		}
	}
	return Hold, false
}

// Arena is what a battle needs from the simulation around it.
type Arena interface {
	Ship(id ships.ID) *ships.Ship
	Sector(c world.Coord) *world.Sector
	Rand() *entropy.Source
	BattleConfig() config.BattleConfig

	// Tactic returns the participant's choice for this pass: the policy for
	// NPCs, the queued order for the player.
	Tactic(s *ships.Ship, b *Battle) Tactic
	// WillAttack reports whether an NPC would pursue a fleeing enemy.
	WillAttack(s *ships.Ship) bool

	// Relocate moves a ship to a new location in the roster registry.
	Relocate(id ships.ID, loc world.Location) error
	// Spawn opens a new battle at an orbit and moves its participants in.
	Spawn(sector world.Coord, orbit int, attackers, defenders []ships.ID) *Battle
	// Destroyed is told of every kill as it happens.
	Destroyed(victim, killer ships.ID)
}

// Battle is the transient state of one fight.
type Battle struct {
	ID     world.BattleID `json:"id"`
	Sector world.Coord    `json:"sector"`
	Orbit  int            `json:"orbit"`

	Attackers []ships.ID `json:"attackers"`
	Defenders []ships.ID `json:"defenders"`
	Fleeing   []ships.ID `json:"fleeing,omitempty"`
	Destroyed []ships.ID `json:"destroyed,omitempty"`

	State  State `json:"state"`
	Rounds int   `json:"rounds"`

	// Salvage collected from kills, paid out by DistributeLoot.
	LootCredits int              `json:"loot_credits"`
	LootModules []catalog.Module `json:"loot_modules,omitempty"`

	idle     int  // Passes in a row with no kill or escape
	progress bool // Set by a kill or escape during the current pass
}

// New creates an active battle.
func New(id world.BattleID, sector world.Coord, orbit int, attackers, defenders []ships.ID) *Battle {
	return &Battle{
		ID:        id,
		Sector:    sector,
		Orbit:     orbit,
		Attackers: append([]ships.ID(nil), attackers...),
		Defenders: append([]ships.ID(nil), defenders...),
		State:     Active,
	}
}

// Location returns the roster location of this battle's participants.
func (b *Battle) Location() world.Location {
	return world.InFight(b.Sector, b.Orbit, b.ID)
}

// Continues reports whether both sides still have ships.
func (b *Battle) Continues() bool {
	return b.State == Active && len(b.Attackers) > 0 && len(b.Defenders) > 0
}

// Participants returns every ship still on a side.
func (b *Battle) Participants() []ships.ID {
	out := make([]ships.ID, 0, len(b.Attackers)+len(b.Defenders))
	out = append(out, b.Attackers...)
	return append(out, b.Defenders...)
}

// Involves reports whether a ship is on either side.
func (b *Battle) Involves(id ships.ID) bool {
	return indexOf(b.Attackers, id) >= 0 || indexOf(b.Defenders, id) >= 0
}

// IsFleeing reports whether a ship is trying to escape.
func (b *Battle) IsFleeing(id ships.ID) bool {
	return indexOf(b.Fleeing, id) >= 0
}

// Opponents returns the side opposing id.
func (b *Battle) Opponents(id ships.ID) []ships.ID {
	if indexOf(b.Attackers, id) >= 0 {
		return b.Defenders
	}
	if indexOf(b.Defenders, id) >= 0 {
		return b.Attackers
	}
	return nil
}

// Allies returns id's own side, id included.
func (b *Battle) Allies(id ships.ID) []ships.ID {
	if indexOf(b.Attackers, id) >= 0 {
		return b.Attackers
	}
	if indexOf(b.Defenders, id) >= 0 {
		return b.Defenders
	}
	return nil
}

// Join adds a ship to a side mid-battle.
func (b *Battle) Join(id ships.ID, attacker bool) {
	if b.Involves(id) {
		return
	}
	if attacker {
		b.Attackers = append(b.Attackers, id)
	} else {
		b.Defenders = append(b.Defenders, id)
	}
}

// Result is how a call to Resolve ended.
type Result uint8

const (
	Paused    Result = iota // Stopped after one pass to wait for the player
	Finished                // One side was emptied
	Stalemate               // Nobody could make progress; everyone disengaged
)

// Resolve runs passes until one side is empty, then pays out loot and ends
// the battle. With pause set it runs a single pass and returns Paused if the
// fight is still going.
func (b *Battle) Resolve(a Arena, pause bool) Result {
	maxIdle := a.BattleConfig().MaxRounds
	if maxIdle < 1 {
		maxIdle = 1
	}

	for b.Continues() {
		b.progress = false
		b.ProcessAttacks(a)
		b.ProcessEscapes(a)
		b.Rounds++

		if b.progress {
			b.idle = 0
		} else {
			b.idle++
		}
		if b.idle >= maxIdle && b.Continues() {
			slog.Info("battle stalemate", "battle", b.ID, "rounds", b.Rounds)
			b.DistributeLoot(a)
			b.End(a)
			return Stalemate
		}
		if pause && b.Continues() {
			return Paused
		}
	}

	b.DistributeLoot(a)
	b.End(a)
	return Finished
}

func indexOf(list []ships.ID, id ships.ID) int {
	for i, x := range list {
		if x == id {
			return i
		}
	}
	return -1
}

func without(list []ships.ID, id ships.ID) []ships.ID {
	if i := indexOf(list, id); i >= 0 {
		return append(list[:i], list[i+1:]...)
	}
	return list
}
