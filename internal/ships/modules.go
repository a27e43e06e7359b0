package ships

import (
	"errors"
	"fmt"

	"github.com/talgya/galaxy-sim/internal/catalog"
)

var (
	ErrNoModule  = errors.New("module not installed")
	ErrNoWeapon  = errors.New("no usable weapon")
	ErrFuelFull  = errors.New("fuel tanks full")
	ErrDestroyed = errors.New("ship destroyed")
)

// HasModule reports whether a module of the kind is installed.
func (s *Ship) HasModule(kind catalog.ModuleKind) bool {
	return s.CountModules(kind) > 0
}

// CountModules counts installed modules of a kind.
func (s *Ship) CountModules(kind catalog.ModuleKind) int {
	n := 0
	for _, m := range s.Modules {
		if m.Kind == kind {
			n++
		}
	}
	return n
}

// FirstModule returns the first installed module of a kind.
func (s *Ship) FirstModule(kind catalog.ModuleKind) (catalog.Module, bool) {
	for _, m := range s.Modules {
		if m.Kind == kind {
			return m, true
		}
	}
	return catalog.Module{}, false
}

// Weapons returns the installed weapons the ship can currently afford to fire.
func (s *Ship) Weapons() []catalog.Module {
	var out []catalog.Module
	for _, m := range s.Modules {
		if m.Kind == catalog.KindWeapon && s.Resources[m.Resource].Amount >= m.Cost {
			out = append(out, m)
		}
	}
	return out
}

// IsArmed reports whether at least one weapon can fire.
func (s *Ship) IsArmed() bool {
	return len(s.Weapons()) > 0
}

// Fire discharges the strongest usable weapon, paying its cost, and returns
// the damage dealt.
func (s *Ship) Fire() (int, error) {
	weapons := s.Weapons()
	if len(weapons) == 0 {
		return 0, ErrNoWeapon
	}
	best := weapons[0]
	for _, w := range weapons[1:] {
		if w.Amount > best.Amount {
			best = w
		}
	}
	s.Resources[best.Resource].Amount -= best.Cost
	return best.Amount, nil
}

// TakeHit applies incoming damage to the hull. A raised shield halves it,
// rounding down. Returns true when the hit destroys the ship.
func (s *Ship) TakeHit(damage int) bool {
	if s.Shielded {
		damage /= 2
	}
	hull := &s.Resources[catalog.Hull]
	hull.Amount -= damage
	if hull.Amount <= 0 {
		hull.Amount = 0
		s.Destroyed = true
		s.Shielded = false
		s.Cloaked = false
	}
	return s.Destroyed
}

// HullFraction returns the remaining hull as a fraction of capacity.
func (s *Ship) HullFraction() float64 {
	return s.Resources[catalog.Hull].Fraction()
}

// canSustain reports whether a continuous module's per-turn drain can be
// paid.
func (s *Ship) canSustain(kind catalog.ModuleKind) bool {
	m, ok := s.FirstModule(kind)
	return ok && s.Resources[m.Resource].Amount >= m.Amount
}

// activate pays a continuous module's activation cost.
func (s *Ship) activate(kind catalog.ModuleKind) error {
	m, ok := s.FirstModule(kind)
	if !ok {
		return fmt.Errorf("%s: %w", kind, ErrNoModule)
	}
	if err := s.Consume(m.Resource, m.Cost); err != nil {
		return fmt.Errorf("%s: %w", kind, err)
	}
	return nil
}

// RaiseShield activates the shield, paying its activation cost.
func (s *Ship) RaiseShield() error {
	if s.Shielded {
		return nil
	}
	if err := s.activate(catalog.KindShield); err != nil {
		return err
	}
	s.Shielded = true
	return nil
}

// EngageCloak activates the cloaking device, paying its activation cost.
func (s *Ship) EngageCloak() error {
	if s.Cloaked {
		return nil
	}
	if err := s.activate(catalog.KindCloak); err != nil {
		return err
	}
	s.Cloaked = true
	return nil
}

// Exhausted reports whether an active shield or cloak can no longer be paid.
func (s *Ship) Exhausted() bool {
	return (s.Shielded && !s.canSustain(catalog.KindShield)) ||
		(s.Cloaked && !s.canSustain(catalog.KindCloak))
}

// DropExhausted lowers any active shield or cloak the ship cannot sustain.
func (s *Ship) DropExhausted() bool {
	dropped := false
	if s.Shielded && !s.canSustain(catalog.KindShield) {
		s.Shielded = false
		dropped = true
	}
	if s.Cloaked && !s.canSustain(catalog.KindCloak) {
		s.Cloaked = false
		dropped = true
	}
	return dropped
}

// ApplyContinuous runs one turn of passive module effects: solar arrays
// charge, then shields and cloaks drain and drop when they cannot be paid.
func (s *Ship) ApplyContinuous() {
	if s.Destroyed {
		return
	}
	for _, m := range s.Modules {
		if m.Kind == catalog.KindSolar {
			s.Gain(m.Resource, m.Amount)
		}
	}
	if s.Shielded {
		m, _ := s.FirstModule(catalog.KindShield)
		if s.Consume(m.Resource, m.Amount) != nil {
			s.Shielded = false
		}
	}
	if s.Cloaked {
		m, _ := s.FirstModule(catalog.KindCloak)
		if s.Consume(m.Resource, m.Amount) != nil {
			s.Cloaked = false
		}
	}
}

// Refine converts oreCost ore into fuel using the refinery.
func (s *Ship) Refine(oreCost int) error {
	m, ok := s.FirstModule(catalog.KindRefinery)
	if !ok {
		return fmt.Errorf("refine: %w", ErrNoModule)
	}
	if s.Resources[catalog.Fuel].Full() {
		return ErrFuelFull
	}
	if err := s.Consume(catalog.Ore, oreCost); err != nil {
		return fmt.Errorf("refine: %w", err)
	}
	amount := m.Amount
	if amount < 1 {
		amount = 1
	}
	s.Gain(catalog.Fuel, amount)
	return nil
}

// CanWarp reports whether the ship has a warp drive.
func (s *Ship) CanWarp() bool {
	return s.HasModule(catalog.KindWarp)
}

// SensorBonus returns extra sensor range from scanners.
func (s *Ship) SensorBonus() int {
	bonus := 0
	for _, m := range s.Modules {
		if m.Kind == catalog.KindScanner {
			bonus += m.Amount
		}
	}
	return bonus
}

// Specialization classifies the loadout: two or more weapons make a fighter,
// a refinery or cargo bay a miner, a warp drive an explorer.
func (s *Ship) Specialization() Specialization {
	switch {
	case s.CountModules(catalog.KindWeapon) >= 2:
		return Fighter
	case s.HasModule(catalog.KindRefinery) || s.hasExpanderFor(catalog.Ore):
		return Miner
	case s.HasModule(catalog.KindWarp):
		return Explorer
	}
	return Trader
}

func (s *Ship) hasExpanderFor(kind catalog.ResourceKind) bool {
	for _, m := range s.Modules {
		if m.IsExpander() && m.Resource == kind {
			return true
		}
	}
	return false
}

// Salvage strips the ship's modules, installed then spare, for loot.
func (s *Ship) Salvage() []catalog.Module {
	out := make([]catalog.Module, 0, len(s.Modules)+len(s.Cargo))
	out = append(out, s.Modules...)
	out = append(out, s.Cargo...)
	s.Modules = nil
	s.Cargo = nil
	return out
}
