// Package ai is the autonomous ship policy: one decision per ship per turn,
// battle tactics, election votes, diplomatic choices and station purchases.
package ai

import (
	"fmt"

	"github.com/talgya/galaxy-sim/internal/catalog"
	"github.com/talgya/galaxy-sim/internal/ships"
	"github.com/talgya/galaxy-sim/internal/world"
)

// ActionKind enumerates what a ship can do in one turn.
type ActionKind uint8

const (
	ActionIdle        ActionKind = iota
	ActionDropEffects // Lower a shield or cloak that can no longer be paid
	ActionAttack      // Open a battle against Target
	ActionDock        // Dock at Station
	ActionUndock
	ActionLand // Land on Region
	ActionTakeoff
	ActionOrbit // Change orbit by Delta
	ActionEnterSector
	ActionEscapeSector
	ActionJump         // One intergalactic step to Coord
	ActionWarp         // Long intergalactic jump to Coord
	ActionMine         // Extract ore here
	ActionTrade        // Station routine, then buy Purchases
	ActionClaim        // Claim the region or station here
	ActionInvade       // Seize Station from a hostile faction
	ActionRefine       // Turn ore into fuel
	ActionDistress     // Ask the faction for a refuel
	ActionSelfDestruct // Stranded with nothing left to try
)

var actionNames = [...]string{
	"idle", "drop-effects", "attack", "dock", "undock", "land", "takeoff", "orbit",
	"enter-sector", "escape-sector", "jump", "warp", "mine", "trade", "claim",
	"invade", "refine", "distress", "self-destruct",
}

func (k ActionKind) String() string {
	if int(k) < len(actionNames) {
		return actionNames[k]
	}
	return fmt.Sprintf("action(%d)", k)
}

// Action is what a ship decided to do this turn.
type Action struct {
	Ship      ships.ID
	Kind      ActionKind
	Target    ships.ID
	Station   int
	Region    int
	Delta     int
	Coord     world.Coord
	Purchases []catalog.Module
	Detail    string // Human-readable description for the event log
}

func idle(s *ships.Ship, detail string) Action {
	return Action{Ship: s.ID, Kind: ActionIdle, Detail: s.Name + " " + detail}
}
