package ai

import (
	"fmt"

	"github.com/talgya/galaxy-sim/internal/catalog"
	"github.com/talgya/galaxy-sim/internal/ships"
	"github.com/talgya/galaxy-sim/internal/world"
)

// seek returns the cheapest single transition toward target. Returns false
// when the next step cannot be afforded.
func (p *Policy) seek(s *ships.Ship, loc, target world.Location, v View) (Action, bool) {
	fuel := s.Amount(catalog.Fuel)
	act := func(kind ActionKind, detail string) Action {
		return Action{Ship: s.ID, Kind: kind, Detail: s.Name + " " + detail}
	}

	switch loc.Kind {
	case world.InBattle:
		return Action{}, false

	case world.Docked:
		return act(ActionUndock, "undocks"), true

	case world.Landed:
		if fuel < p.costs.TakeoffFuel {
			return Action{}, false
		}
		return act(ActionTakeoff, "takes off"), true

	case world.Intergalactic:
		if loc.Sector == target.Sector {
			return act(ActionEnterSector, "enters sector "+target.Sector.String()), true
		}
		dist := loc.Sector.Distance(target.Sector)
		if dist > 1 && s.CanWarp() && fuel >= p.costs.WarpFuel && s.Amount(catalog.Energy) >= p.costs.WarpEnergy {
			to := loc.Sector
			for to != target.Sector && loc.Sector.Distance(to) < p.costs.WarpRange {
				to = to.StepToward(target.Sector)
			}
			a := act(ActionWarp, "warps to "+to.String())
			a.Coord = to
			return a, true
		}
		if fuel < p.costs.JumpFuel {
			return Action{}, false
		}
		to := loc.Sector.StepToward(target.Sector)
		a := act(ActionJump, "jumps to "+to.String())
		a.Coord = to
		return a, true

	case world.Orbital:
		sector := v.Map().Get(loc.Sector)
		if sector == nil {
			return Action{}, false
		}
		if loc.Sector != target.Sector {
			if loc.Orbit == sector.Edge() {
				if fuel < p.costs.EscapeFuel {
					return Action{}, false
				}
				return act(ActionEscapeSector, "leaves "+sector.Name), true
			}
			return p.orbitStep(s, 1, fuel)
		}
		if loc.Orbit != target.Orbit {
			delta := 1
			if target.Orbit < loc.Orbit {
				delta = -1
			}
			return p.orbitStep(s, delta, fuel)
		}
		switch target.Kind {
		case world.Docked:
			a := act(ActionDock, "docks at "+sector.Stations[target.Station].Name)
			a.Station = target.Station
			return a, true
		case world.Landed:
			if fuel < p.costs.LandFuel {
				return Action{}, false
			}
			a := act(ActionLand, "lands on "+sector.PlanetAt(target.Orbit).Name)
			a.Region = target.Region
			return a, true
		}
	}
	return Action{}, false
}

func (p *Policy) orbitStep(s *ships.Ship, delta, fuel int) (Action, bool) {
	if fuel < p.costs.OrbitFuel {
		return Action{}, false
	}
	return Action{Ship: s.ID, Kind: ActionOrbit, Delta: delta, Detail: fmt.Sprintf("%s burns to orbit %+d", s.Name, delta)}, true
}
