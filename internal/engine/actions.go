// Applying NPC decisions to the world.
package engine

import (
	"errors"
	"fmt"

	"github.com/dustin/go-humanize"

	"github.com/talgya/galaxy-sim/internal/ai"
	"github.com/talgya/galaxy-sim/internal/catalog"
	"github.com/talgya/galaxy-sim/internal/ships"
	"github.com/talgya/galaxy-sim/internal/social"
	"github.com/talgya/galaxy-sim/internal/world"
)

var (
	ErrNothingToMine   = errors.New("nothing to mine here")
	ErrHoldFull        = errors.New("ore hold is full")
	ErrPoorStanding    = errors.New("reputation too low")
	ErrFactionTooPoor  = errors.New("faction cannot afford it")
	ErrNoStationTarget = errors.New("trade requires docking at the planned station")
)

// apply carries out one decided action. The world may have changed since the
// decision, so every action re-validates and fails without side effects.
func (s *Simulation) apply(act ai.Action) error {
	sh := s.Ship(act.Ship)
	if sh == nil || sh.Destroyed {
		return fmt.Errorf("%s by %d: %w", act.Kind, act.Ship, ErrUnknownShip)
	}

	var err error
	switch act.Kind {
	case ai.ActionIdle:
	case ai.ActionDropEffects:
		sh.DropExhausted()
	case ai.ActionAttack:
		err = s.attack(sh, act.Target)
	case ai.ActionDock:
		err = s.dock(sh, act.Station)
	case ai.ActionUndock:
		err = s.undock(sh)
	case ai.ActionLand:
		err = s.land(sh, act.Region)
	case ai.ActionTakeoff:
		err = s.takeoff(sh)
	case ai.ActionOrbit:
		err = s.changeOrbit(sh, act.Delta)
	case ai.ActionEnterSector:
		err = s.enterSector(sh)
	case ai.ActionEscapeSector:
		err = s.escapeSector(sh)
	case ai.ActionJump:
		err = s.jump(sh, act.Coord)
	case ai.ActionWarp:
		err = s.warp(sh, act.Coord)
	case ai.ActionMine:
		err = s.mine(sh)
	case ai.ActionTrade:
		if loc, _ := s.Roster.Location(sh.ID); loc.Kind != world.Docked || loc.Station != act.Station {
			err = ErrNoStationTarget
			break
		}
		err = s.trade(sh, act.Purchases)
	case ai.ActionClaim:
		err = s.claim(sh)
	case ai.ActionInvade:
		err = s.invade(sh, act.Station)
	case ai.ActionRefine:
		err = sh.Refine(s.Config.Costs.RefineOre)
	case ai.ActionDistress:
		err = s.distress(sh)
	case ai.ActionSelfDestruct:
		s.destroy(sh, "self-destructed, stranded with nothing left")
	default:
		err = fmt.Errorf("unhandled action %s", act.Kind)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", act.Detail, err)
	}

	// These actions complete the goal; the next decision picks a new one.
	switch act.Kind {
	case ai.ActionTrade, ai.ActionClaim, ai.ActionInvade:
		sh.Goal = ships.Goal{}
	}
	return nil
}

// mine extracts ore from an asteroid belt in orbit or from a landed region.
func (s *Simulation) mine(sh *ships.Ship) error {
	loc, _ := s.Roster.Location(sh.ID)
	sector := s.WorldMap.Get(loc.Sector)
	if sector == nil || !loc.InSector() {
		return ErrNothingToMine
	}

	yield := 0
	switch loc.Kind {
	case world.Orbital:
		if sector.HasBelt(loc.Orbit) {
			yield = sector.BeltYield()
		}
	case world.Landed:
		if r := sector.Region(loc.Orbit, loc.Region); r != nil {
			yield = r.Ore
		}
	}
	if yield <= 0 {
		return ErrNothingToMine
	}
	if sh.Res(catalog.Ore).Full() {
		return ErrHoldFull
	}
	if err := sh.Consume(catalog.Energy, s.Config.Costs.MiningEnergy); err != nil {
		return fmt.Errorf("mine: %w", err)
	}
	sh.Gain(catalog.Ore, yield)
	return nil
}

// distress asks the ship's faction to refuel it. The faction pays catalog
// price for the fuel and the ship pays in reputation.
func (s *Simulation) distress(sh *ships.Ship) error {
	fid, ok := sh.FactionID()
	if !ok {
		return fmt.Errorf("distress: %w", ErrUnaligned)
	}
	f := s.Faction(fid)
	if f == nil {
		return fmt.Errorf("distress: %w", ErrUnknownFaction)
	}
	if sh.OwnRep() < s.Config.Reputation.DistressThreshold {
		return fmt.Errorf("distress (reputation %d): %w", sh.OwnRep(), ErrPoorStanding)
	}
	need := sh.Res(catalog.Fuel).Room()
	if need <= 0 {
		return fmt.Errorf("distress: %w", ships.ErrFuelFull)
	}
	bill := need * s.cat.Resource(catalog.Fuel).Price
	if f.Economy < bill {
		return fmt.Errorf("distress bill %d (economy %d): %w", bill, f.Economy, ErrFactionTooPoor)
	}

	f.Economy -= bill
	sh.Gain(catalog.Fuel, need)
	sh.Rep(fid).Adjust(-s.Config.Reputation.DistressCost, f)
	f.AddNews(s.TurnNumber, s.Config.Politics.NewsLimit, "%s was rescued at a cost of %s credits", sh.Name, humanize.Comma(int64(bill)))
	s.EmitEvent(Event{
		Turn:        s.TurnNumber,
		Description: fmt.Sprintf("The %s refuels %s after a distress call", f.Name, sh.Name),
		Category:    "rescue",
		Meta:        map[string]any{"ship_id": sh.ID, "faction_id": fid, "bill": bill},
	})
	return nil
}

// isEnemy reports whether two factions are at war.
func (s *Simulation) isEnemy(a, b social.FactionID) bool {
	return a != b && s.Relations.Type(a, b) == social.War
}
