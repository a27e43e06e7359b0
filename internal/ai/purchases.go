package ai

import (
	"github.com/talgya/galaxy-sim/internal/catalog"
	"github.com/talgya/galaxy-sim/internal/entropy"
	"github.com/talgya/galaxy-sim/internal/ships"
)

// purchaseOrder is the priority in which missing modules are bought.
var purchaseOrder = []catalog.ModuleKind{
	catalog.KindWeapon,
	catalog.KindShield,
	catalog.KindCloak,
	catalog.KindRefinery,
	catalog.KindWarp,
	catalog.KindScanner,
}

// PlanPurchases lists the modules the ship would buy at a station: each
// missing module in priority order, then an expander for its scarcest
// resource. Every item is a coin flip at PurchaseChance and must fit the
// remaining budget.
func (p *Policy) PlanPurchases(s *ships.Ship, cat *catalog.Catalog, prices catalog.PriceList, rng *entropy.Source) []catalog.Module {
	budget := s.Credits()
	var out []catalog.Module

	buy := func(m catalog.Module) {
		price := prices.ModulePrice(m)
		if price > budget || !rng.Chance(p.cfg.PurchaseChance) {
			return
		}
		budget -= price
		out = append(out, m)
	}

	for _, kind := range purchaseOrder {
		if s.HasModule(kind) {
			continue
		}
		mods := cat.ModulesOfKind(kind)
		if len(mods) == 0 {
			continue
		}
		buy(mods[0])
	}

	if exp, ok := cat.ExpanderFor(Scarcest(s)); ok {
		buy(exp)
	}
	return out
}

// Scarcest returns the resource the ship is shortest of. Fuel, energy and hull
// are scarce when nearly empty; ore when the hold is nearly full.
func Scarcest(s *ships.Ship) catalog.ResourceKind {
	kinds := []catalog.ResourceKind{catalog.Fuel, catalog.Energy, catalog.Ore, catalog.Hull}
	best := kinds[0]
	bestLeft := 2.0
	for _, k := range kinds {
		left := s.Res(k).Fraction()
		if k == catalog.Ore {
			left = 1 - left
		}
		if left < bestLeft {
			best, bestLeft = k, left
		}
	}
	return best
}
