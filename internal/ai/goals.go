package ai

import (
	"github.com/talgya/galaxy-sim/internal/catalog"
	"github.com/talgya/galaxy-sim/internal/entropy"
	"github.com/talgya/galaxy-sim/internal/ships"
	"github.com/talgya/galaxy-sim/internal/social"
	"github.com/talgya/galaxy-sim/internal/world"
)

// reached reports whether the ship stands where its goal is carried out.
// Invasions happen from orbit since hostile stations refuse docking.
func reached(loc world.Location, g ships.Goal) bool {
	switch g.Kind {
	case ships.GoalNone:
		return false
	case ships.GoalInvade:
		return loc.Kind == world.Orbital && loc.SameOrbit(g.Target)
	}
	return loc == g.Target
}

// stale reports whether the current goal must be replaced.
func (p *Policy) stale(s *ships.Ship, loc world.Location, v View) bool {
	g := s.Goal
	if g.Kind == ships.GoalNone || g.Target.Kind == world.InBattle {
		return true
	}
	sector := v.Map().Get(g.Target.Sector)
	if sector == nil {
		return true
	}

	switch g.Kind {
	case ships.GoalInvade:
		st := sector.Station(g.Target.Station)
		return st == nil || !p.enemyOwned(s, st.Owner, v)
	case ships.GoalClaim:
		if g.Target.Kind == world.Docked {
			st := sector.Station(g.Target.Station)
			return st == nil || st.Owner != nil
		}
		r := sector.Region(g.Target.Orbit, g.Target.Region)
		return r == nil || r.Owner != nil
	case ships.GoalMine:
		return s.Res(catalog.Ore).Full() || s.Amount(catalog.Energy) < p.costs.MiningEnergy
	case ships.GoalTrade:
		st := sector.Station(g.Target.Station)
		return st == nil || p.enemyOwned(s, st.Owner, v)
	case ships.GoalExplore:
		return loc.InSector() && loc.Sector == g.Target.Sector
	}
	return true
}

// enemyOwned reports whether owner is a faction at war with the ship's own.
// Unaligned ships have no enemies by faction.
func (p *Policy) enemyOwned(s *ships.Ship, owner *social.FactionID, v View) bool {
	mine, ok := s.FactionID()
	theirs, owned := world.OwnerOf(owner)
	if !ok || !owned || mine == theirs {
		return false
	}
	return v.Relation(mine, theirs) == social.War
}

// candidate is a possible goal with its travel distance.
type candidate struct {
	goal ships.Goal
	hops int // Intergalactic distance
	orb  int // Orbit distance within the target sector
}

func (c candidate) closer(o candidate) bool {
	if c.hops != o.hops {
		return c.hops < o.hops
	}
	return c.orb < o.orb
}

// distance measures travel from loc to an orbit of sector: jumps, then orbits
// from where the ship would arrive.
func distance(loc world.Location, sector *world.Sector, orbit int) (int, int) {
	hops := loc.Sector.Distance(sector.Coord)
	from := sector.Edge()
	if hops == 0 && loc.InSector() {
		from = loc.Orbit
	}
	return hops, social.Abs(orbit - from)
}

// chooseGoal picks a destination by priority: invade, claim, mine, trade,
// then explore.
func (p *Policy) chooseGoal(s *ships.Ship, loc world.Location, v View, rng *entropy.Source) (ships.Goal, bool) {
	turn := v.CurrentTurn()
	sectors := v.Map().Within(loc.Sector, p.cfg.SensorRange+s.SensorBonus())

	finders := []func(*ships.Ship, world.Location, []*world.Sector, View) (ships.Goal, bool){
		p.findInvasion,
		p.findClaim,
		p.findMining,
		p.findTrade,
	}
	for _, find := range finders {
		if g, ok := find(s, loc, sectors, v); ok {
			g.Set = turn
			return g, true
		}
	}

	coords := v.Map().Coords()
	var options []world.Coord
	for _, c := range coords {
		if !loc.InSector() || c != loc.Sector {
			options = append(options, c)
		}
	}
	if len(options) == 0 {
		return ships.Goal{}, false
	}
	c := options[rng.Intn(len(options))]
	sector := v.Map().Get(c)
	return ships.Goal{Kind: ships.GoalExplore, Target: world.InOrbit(c, sector.Edge()), Set: turn}, true
}

func best(cands []candidate) (ships.Goal, bool) {
	if len(cands) == 0 {
		return ships.Goal{}, false
	}
	b := cands[0]
	for _, c := range cands[1:] {
		if c.closer(b) {
			b = c
		}
	}
	return b.goal, true
}

func (p *Policy) findInvasion(s *ships.Ship, loc world.Location, sectors []*world.Sector, v View) (ships.Goal, bool) {
	if s.Faction == nil ||
		s.CountModules(catalog.KindWeapon) < p.cfg.InvadeMinWeapons ||
		s.Amount(catalog.Fuel) < p.cfg.InvadeMinFuel ||
		s.Credits() < p.costs.InvadeCost {
		return ships.Goal{}, false
	}
	var cands []candidate
	for _, sec := range sectors {
		for i, st := range sec.Stations {
			if !p.enemyOwned(s, st.Owner, v) {
				continue
			}
			hops, orb := distance(loc, sec, st.Orbit)
			cands = append(cands, candidate{
				goal: ships.Goal{Kind: ships.GoalInvade, Target: world.AtStation(sec.Coord, st.Orbit, i)},
				hops: hops, orb: orb,
			})
		}
	}
	return best(cands)
}

func (p *Policy) findClaim(s *ships.Ship, loc world.Location, sectors []*world.Sector, v View) (ships.Goal, bool) {
	if s.Faction == nil || s.Credits() < p.costs.ClaimRegion {
		return ships.Goal{}, false
	}
	var cands []candidate
	for _, sec := range sectors {
		if s.Credits() >= p.costs.ClaimStation {
			for i, st := range sec.Stations {
				if st.Owner != nil {
					continue
				}
				hops, orb := distance(loc, sec, st.Orbit)
				cands = append(cands, candidate{
					goal: ships.Goal{Kind: ships.GoalClaim, Target: world.AtStation(sec.Coord, st.Orbit, i)},
					hops: hops, orb: orb,
				})
			}
		}
		for _, pl := range sec.Planets {
			for ri, r := range pl.Regions {
				if r.Owner != nil {
					continue
				}
				hops, orb := distance(loc, sec, pl.Orbit)
				cands = append(cands, candidate{
					goal: ships.Goal{Kind: ships.GoalClaim, Target: world.OnRegion(sec.Coord, pl.Orbit, ri)},
					hops: hops, orb: orb,
				})
			}
		}
	}
	return best(cands)
}

func (p *Policy) findMining(s *ships.Ship, loc world.Location, sectors []*world.Sector, v View) (ships.Goal, bool) {
	if s.Res(catalog.Ore).Full() || s.Amount(catalog.Energy) < p.costs.MiningEnergy {
		return ships.Goal{}, false
	}

	// Prefer where the ship already is.
	if loc.InSector() {
		if sec := v.Map().Get(loc.Sector); sec != nil {
			switch {
			case loc.Kind == world.Landed && p.mineable(s, sec.Region(loc.Orbit, loc.Region), v):
				return ships.Goal{Kind: ships.GoalMine, Target: loc}, true
			case loc.Kind == world.Orbital && sec.HasBelt(loc.Orbit):
				return ships.Goal{Kind: ships.GoalMine, Target: loc}, true
			}
		}
	}

	var cands []candidate
	for _, sec := range sectors {
		for _, b := range sec.Belts {
			hops, orb := distance(loc, sec, b)
			cands = append(cands, candidate{
				goal: ships.Goal{Kind: ships.GoalMine, Target: world.InOrbit(sec.Coord, b)},
				hops: hops, orb: orb,
			})
		}
		for _, pl := range sec.Planets {
			for ri, r := range pl.Regions {
				if !p.mineable(s, r, v) {
					continue
				}
				hops, orb := distance(loc, sec, pl.Orbit)
				cands = append(cands, candidate{
					goal: ships.Goal{Kind: ships.GoalMine, Target: world.OnRegion(sec.Coord, pl.Orbit, ri)},
					hops: hops, orb: orb + 1, // Landing costs a step
				})
			}
		}
	}
	return best(cands)
}

// mineable reports whether a region has ore the ship may take: unclaimed or
// claimed by a faction it is not at war with.
func (p *Policy) mineable(s *ships.Ship, r *world.Region, v View) bool {
	return r != nil && r.Ore > 0 && !p.enemyOwned(s, r.Owner, v)
}

func (p *Policy) findTrade(s *ships.Ship, loc world.Location, sectors []*world.Sector, v View) (ships.Goal, bool) {
	var cands []candidate
	for _, sec := range sectors {
		for i, st := range sec.Stations {
			target := world.AtStation(sec.Coord, st.Orbit, i)
			// The station the ship is docked at has already been traded with.
			if target == loc || p.enemyOwned(s, st.Owner, v) {
				continue
			}
			hops, orb := distance(loc, sec, st.Orbit)
			cands = append(cands, candidate{
				goal: ships.Goal{Kind: ships.GoalTrade, Target: target},
				hops: hops, orb: orb,
			})
		}
	}
	return best(cands)
}

// arrive carries out the goal at its destination. Returns false when the
// goal can no longer be carried out and should be replaced.
func (p *Policy) arrive(s *ships.Ship, loc world.Location, v View, rng *entropy.Source) (Action, bool) {
	g := s.Goal
	sector := v.Map().Get(g.Target.Sector)
	if sector == nil {
		return Action{}, false
	}

	switch g.Kind {
	case ships.GoalInvade:
		if s.Credits() < p.costs.InvadeCost {
			return Action{}, false
		}
		return Action{Ship: s.ID, Kind: ActionInvade, Station: g.Target.Station, Detail: s.Name + " invades " + sector.Stations[g.Target.Station].Name}, true
	case ships.GoalClaim:
		cost := p.costs.ClaimRegion
		if g.Target.Kind == world.Docked {
			cost = p.costs.ClaimStation
		}
		if s.Credits() < cost {
			return Action{}, false
		}
		return Action{Ship: s.ID, Kind: ActionClaim, Station: g.Target.Station, Region: g.Target.Region, Detail: s.Name + " stakes a claim in " + sector.Name}, true
	case ships.GoalMine:
		return Action{Ship: s.ID, Kind: ActionMine, Detail: s.Name + " mines ore in " + sector.Name}, true
	case ships.GoalTrade:
		st := sector.Station(g.Target.Station)
		if st == nil {
			return Action{}, false
		}
		return Action{
			Ship:      s.ID,
			Kind:      ActionTrade,
			Station:   g.Target.Station,
			Purchases: p.PlanPurchases(s, v.Catalog(), st.Prices, rng),
			Detail:    s.Name + " trades at " + st.Name,
		}, true
	}
	return Action{}, false
}
