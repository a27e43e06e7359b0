// Station trade and territory: buying, selling, claiming and invading.
package engine

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/dustin/go-humanize"

	"github.com/talgya/galaxy-sim/internal/catalog"
	"github.com/talgya/galaxy-sim/internal/ships"
	"github.com/talgya/galaxy-sim/internal/social"
	"github.com/talgya/galaxy-sim/internal/world"
)

var (
	ErrUnknownModule  = errors.New("no such module in the catalog")
	ErrUnaligned      = errors.New("ship belongs to no faction")
	ErrAlreadyClaimed = errors.New("already claimed")
	ErrNotClaimable   = errors.New("nothing to claim here")
	ErrNotHostile     = errors.New("station is not held by an enemy faction")
)

// dockedStation returns the station a ship is docked at.
func (s *Simulation) dockedStation(sh *ships.Ship) (*world.Sector, *world.Station, error) {
	loc, ok := s.Roster.Location(sh.ID)
	if !ok || loc.Kind != world.Docked {
		return nil, nil, world.ErrNotDocked
	}
	sector := s.WorldMap.Get(loc.Sector)
	if sector == nil {
		return nil, nil, world.ErrNoSector
	}
	st := sector.Station(loc.Station)
	if st == nil {
		return nil, nil, world.ErrNoStation
	}
	return sector, st, nil
}

func (s *Simulation) buyResource(sh *ships.Ship, kind catalog.ResourceKind, n int) error {
	_, st, err := s.dockedStation(sh)
	if err != nil {
		return fmt.Errorf("buy %s: %w", kind, err)
	}
	return sh.Buy(kind, n, st.Prices.Resources[kind])
}

func (s *Simulation) sellResource(sh *ships.Ship, kind catalog.ResourceKind, n int) error {
	_, st, err := s.dockedStation(sh)
	if err != nil {
		return fmt.Errorf("sell %s: %w", kind, err)
	}
	return sh.Sell(kind, n, st.Prices.Resources[kind])
}

func (s *Simulation) buyModule(sh *ships.Ship, m catalog.Module) error {
	_, st, err := s.dockedStation(sh)
	if err != nil {
		return fmt.Errorf("buy %s: %w", m.Name, err)
	}
	return sh.BuyModule(m, st.Prices.ModulePrice(m))
}

// resale is what a station pays for a spare module.
func resale(st *world.Station, m catalog.Module) int {
	return st.Prices.ModulePrice(m) / 2
}

// trade runs the station routine for an NPC: sell duplicate spares and ore,
// restock consumables, claim an unowned station, then buy planned modules.
func (s *Simulation) trade(sh *ships.Ship, purchases []catalog.Module) error {
	_, st, err := s.dockedStation(sh)
	if err != nil {
		return fmt.Errorf("trade: %w", err)
	}

	earned := 0
	for _, i := range sh.DuplicateCargo() {
		price := resale(st, sh.Cargo[i])
		if sh.SellCargo(i, price) == nil {
			earned += price
		}
	}
	if ore := sh.Amount(catalog.Ore); ore > 0 {
		price := st.Prices.Resources[catalog.Ore]
		if sh.Sell(catalog.Ore, ore, price) == nil {
			earned += ore * price
		}
	}

	bought := 0
	for _, kind := range []catalog.ResourceKind{catalog.Fuel, catalog.Energy, catalog.Hull} {
		bought += sh.Restock(kind, st.Prices.Resources[kind])
	}

	if st.Owner == nil && sh.Faction != nil && sh.Credits() >= s.Config.Costs.ClaimStation {
		if err := s.claim(sh); err != nil {
			slog.Debug("station claim failed", "ship", sh.ID, "error", err)
		}
	}

	for _, m := range purchases {
		if err := sh.BuyModule(m, st.Prices.ModulePrice(m)); err != nil {
			slog.Debug("purchase skipped", "ship", sh.ID, "module", m.Name, "error", err)
		}
	}

	slog.Debug("station trade", "ship", sh.ID, "station", st.Name, "earned", earned, "restocked", bought, "modules", len(purchases))
	return nil
}

// claim takes the unowned station or region the ship is at for its faction.
func (s *Simulation) claim(sh *ships.Ship) error {
	fid, ok := sh.FactionID()
	if !ok {
		return fmt.Errorf("claim: %w", ErrUnaligned)
	}
	f := s.Faction(fid)
	if f == nil {
		return fmt.Errorf("claim: %w", ErrUnknownFaction)
	}
	loc, _ := s.Roster.Location(sh.ID)
	sector := s.WorldMap.Get(loc.Sector)
	if sector == nil || !loc.InSector() {
		return fmt.Errorf("claim: %w", ErrNotClaimable)
	}

	var owner **social.FactionID
	var name string
	var price int
	switch loc.Kind {
	case world.Docked:
		st := sector.Station(loc.Station)
		owner, name, price = &st.Owner, st.Name, s.Config.Costs.ClaimStation
	case world.Landed:
		r := sector.Region(loc.Orbit, loc.Region)
		owner, name, price = &r.Owner, r.Name, s.Config.Costs.ClaimRegion
	default:
		return fmt.Errorf("claim from %s: %w", loc.Kind, ErrNotClaimable)
	}
	if *owner != nil {
		return fmt.Errorf("claim %s: %w", name, ErrAlreadyClaimed)
	}
	if err := sh.Spend(price); err != nil {
		return fmt.Errorf("claim %s: %w", name, err)
	}

	*owner = world.Own(fid)
	sh.Rep(fid).Adjust(s.Config.Reputation.ClaimBonus, f)
	f.AddNews(s.TurnNumber, s.Config.Politics.NewsLimit, "%s claimed %s in %s for %s credits", sh.Name, name, sector.Name, humanize.Comma(int64(price)))
	s.EmitEvent(Event{
		Turn:        s.TurnNumber,
		Description: fmt.Sprintf("%s claims %s for the %s", sh.Name, name, f.Name),
		Category:    "territory",
		Meta: map[string]any{
			"ship_id":      sh.ID,
			"faction_id":   fid,
			"faction_name": f.Name,
			"sector":       sector.Coord.String(),
		},
	})
	return nil
}

// invade seizes a station held by an enemy faction from orbit.
func (s *Simulation) invade(sh *ships.Ship, station int) error {
	fid, ok := sh.FactionID()
	if !ok {
		return fmt.Errorf("invade: %w", ErrUnaligned)
	}
	winner := s.Faction(fid)
	if winner == nil {
		return fmt.Errorf("invade: %w", ErrUnknownFaction)
	}
	loc, _ := s.Roster.Location(sh.ID)
	if loc.Kind != world.Orbital {
		return fmt.Errorf("invade: %w", world.ErrNotOrbital)
	}
	sector := s.WorldMap.Get(loc.Sector)
	if sector == nil {
		return fmt.Errorf("invade: %w", world.ErrNoSector)
	}
	st := sector.Station(station)
	if st == nil || st.Orbit != loc.Orbit {
		return fmt.Errorf("invade station %d: %w", station, world.ErrNoStation)
	}
	held, owned := world.OwnerOf(st.Owner)
	if !owned || !s.isEnemy(fid, held) {
		return fmt.Errorf("invade %s: %w", st.Name, ErrNotHostile)
	}
	if !sh.IsArmed() {
		return fmt.Errorf("invade %s: %w", st.Name, ships.ErrNoWeapon)
	}
	if err := sh.Spend(s.Config.Costs.InvadeCost); err != nil {
		return fmt.Errorf("invade %s: %w", st.Name, err)
	}

	st.Owner = world.Own(fid)
	victim := s.Faction(held)
	sh.Rep(held).Adjust(-s.Config.Reputation.InvadePenalty, victim)
	sh.Rep(fid).Adjust(s.Config.Reputation.ClaimBonus, winner)

	limit := s.Config.Politics.NewsLimit
	if victim != nil {
		victim.AddNews(s.TurnNumber, limit, "%s was seized by %s of the %s", st.Name, sh.Name, winner.Name)
	}
	winner.AddNews(s.TurnNumber, limit, "%s captured %s in %s", sh.Name, st.Name, sector.Name)
	s.EmitEvent(Event{
		Turn:        s.TurnNumber,
		Description: fmt.Sprintf("%s invades %s in %s", sh.Name, st.Name, sector.Name),
		Category:    "territory",
		Meta: map[string]any{
			"ship_id":      sh.ID,
			"faction_id":   fid,
			"former_owner": held,
			"station_name": st.Name,
			"sector":       sector.Coord.String(),
		},
	})
	return nil
}

// ── Player commands ──

// BuyResource buys n units at the player's station.
func (s *Simulation) BuyResource(kind catalog.ResourceKind, n int) error {
	p, err := s.player()
	if err != nil {
		return err
	}
	return s.buyResource(p, kind, n)
}

// SellResource sells n units at the player's station.
func (s *Simulation) SellResource(kind catalog.ResourceKind, n int) error {
	p, err := s.player()
	if err != nil {
		return err
	}
	return s.sellResource(p, kind, n)
}

// BuyModule buys and installs a module by catalog name.
func (s *Simulation) BuyModule(name string) error {
	p, err := s.player()
	if err != nil {
		return err
	}
	m, ok := s.cat.Module(name)
	if !ok {
		return fmt.Errorf("buy %q: %w", name, ErrUnknownModule)
	}
	return s.buyModule(p, m)
}

// SellCargo sells the player's spare module at index.
func (s *Simulation) SellCargo(index int) error {
	p, err := s.player()
	if err != nil {
		return err
	}
	_, st, err := s.dockedStation(p)
	if err != nil {
		return fmt.Errorf("sell cargo: %w", err)
	}
	if index < 0 || index >= len(p.Cargo) {
		return fmt.Errorf("sell cargo %d: %w", index, ships.ErrNoCargo)
	}
	return p.SellCargo(index, resale(st, p.Cargo[index]))
}

// Claim claims the player's station or region for its faction.
func (s *Simulation) Claim() error {
	p, err := s.player()
	if err != nil {
		return err
	}
	return s.claim(p)
}

// Invade seizes an enemy station at the player's orbit.
func (s *Simulation) Invade(station int) error {
	p, err := s.player()
	if err != nil {
		return err
	}
	return s.invade(p, station)
}
