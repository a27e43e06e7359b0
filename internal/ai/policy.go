package ai

import (
	"github.com/talgya/galaxy-sim/internal/catalog"
	"github.com/talgya/galaxy-sim/internal/config"
	"github.com/talgya/galaxy-sim/internal/entropy"
	"github.com/talgya/galaxy-sim/internal/ships"
	"github.com/talgya/galaxy-sim/internal/social"
	"github.com/talgya/galaxy-sim/internal/world"
)

// View is the read-only world a ship decides against.
type View interface {
	CurrentTurn() uint64
	Map() *world.Map
	Catalog() *catalog.Catalog
	Ship(id ships.ID) *ships.Ship
	Location(id ships.ID) (world.Location, bool)
	Members(loc world.Location) []ships.ID
	Relation(a, b social.FactionID) social.RelationType
	Hostile(observer, target *ships.Ship) bool
}

// Policy is the single strategy every NPC ship runs. It holds only tuning;
// all state lives on the ships and in the View.
type Policy struct {
	cfg    config.PolicyConfig
	costs  config.CostConfig
	rep    config.ReputationConfig
	battle config.BattleConfig
}

// New creates a policy from the simulation configuration.
func New(cfg *config.Config) *Policy {
	return &Policy{
		cfg:    cfg.Policy,
		costs:  cfg.Costs,
		rep:    cfg.Reputation,
		battle: cfg.Battle,
	}
}

// Decide picks the ship's action for this turn. The only state it changes is
// the ship's own Goal.
func (p *Policy) Decide(s *ships.Ship, v View, rng *entropy.Source) Action {
	if s.Destroyed || s.Human {
		return idle(s, "does nothing")
	}
	loc, ok := v.Location(s.ID)
	if !ok {
		return idle(s, "is nowhere")
	}

	// Battle resolution drives ships that are fighting.
	if loc.Kind == world.InBattle {
		return idle(s, "is in battle")
	}

	if s.Exhausted() {
		return Action{Ship: s.ID, Kind: ActionDropEffects, Detail: s.Name + " powers down exhausted systems"}
	}

	if target, ok := p.opportunity(s, loc, v); ok {
		return Action{Ship: s.ID, Kind: ActionAttack, Target: target.ID, Detail: s.Name + " attacks " + target.Name}
	}

	// A goal reached or gone stale is replaced; the second pass covers a goal
	// that was completed on arrival.
	for attempt := 0; attempt < 2; attempt++ {
		if p.stale(s, loc, v) {
			goal, found := p.chooseGoal(s, loc, v, rng)
			if !found {
				s.Goal = ships.Goal{}
				break
			}
			s.Goal = goal
		}

		if reached(loc, s.Goal) {
			if act, ok := p.arrive(s, loc, v, rng); ok {
				return act
			}
			s.Goal = ships.Goal{}
			continue
		}

		if act, ok := p.seek(s, loc, s.Goal.Target, v); ok {
			return act
		}
		break
	}

	if loc.Kind == world.Docked && s.Goal.Kind == ships.GoalNone {
		return idle(s, "waits at the station")
	}
	return p.emergency(s)
}

// opportunity finds a visible hostile ship sharing an orbit with an armed ship.
func (p *Policy) opportunity(s *ships.Ship, loc world.Location, v View) (*ships.Ship, bool) {
	if loc.Kind != world.Orbital || !s.IsArmed() {
		return nil, false
	}
	for _, id := range v.Members(loc) {
		if id == s.ID {
			continue
		}
		o := v.Ship(id)
		if o == nil || o.Destroyed || o.Cloaked {
			continue
		}
		if v.Hostile(s, o) {
			return o, true
		}
	}
	return nil, false
}

// emergency is the fallback for a ship that cannot make progress.
func (p *Policy) emergency(s *ships.Ship) Action {
	if s.HasModule(catalog.KindRefinery) && s.Amount(catalog.Ore) >= p.costs.RefineOre && !s.Res(catalog.Fuel).Full() {
		return Action{Ship: s.ID, Kind: ActionRefine, Detail: s.Name + " refines ore into fuel"}
	}
	if s.Faction != nil && s.OwnRep() >= p.rep.DistressThreshold {
		return Action{Ship: s.ID, Kind: ActionDistress, Detail: s.Name + " sends a distress signal"}
	}
	return Action{Ship: s.ID, Kind: ActionSelfDestruct, Detail: s.Name + " self-destructs"}
}
