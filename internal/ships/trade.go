package ships

import (
	"errors"
	"fmt"

	"github.com/talgya/galaxy-sim/internal/catalog"
)

var (
	ErrInsufficientFunds    = errors.New("insufficient funds")
	ErrInsufficientResource = errors.New("insufficient resource")
	ErrNoCapacity           = errors.New("no capacity for more")
	ErrNotTradable          = errors.New("resource cannot be traded")
	ErrNoCargo              = errors.New("no such cargo item")
	ErrBadQuantity          = errors.New("quantity must be positive")
)

// Buy purchases n units of a resource at price each. Nothing changes unless
// the whole purchase succeeds.
func (s *Ship) Buy(kind catalog.ResourceKind, n, price int) error {
	if kind == catalog.Credits {
		return ErrNotTradable
	}
	if n <= 0 {
		return ErrBadQuantity
	}
	cost := n * price
	if s.Credits() < cost {
		return fmt.Errorf("buy %d %s for %d (have %d): %w", n, kind, cost, s.Credits(), ErrInsufficientFunds)
	}
	if s.Resources[kind].Room() < n {
		return fmt.Errorf("buy %d %s: %w", n, kind, ErrNoCapacity)
	}
	s.Resources[catalog.Credits].Amount -= cost
	s.Resources[kind].Amount += n
	return nil
}

// Sell sells n units of a resource at price each.
func (s *Ship) Sell(kind catalog.ResourceKind, n, price int) error {
	if kind == catalog.Credits {
		return ErrNotTradable
	}
	if n <= 0 {
		return ErrBadQuantity
	}
	if s.Resources[kind].Amount < n {
		return fmt.Errorf("sell %d %s (have %d): %w", n, kind, s.Resources[kind].Amount, ErrInsufficientResource)
	}
	s.Resources[kind].Amount -= n
	s.Resources[catalog.Credits].Amount += n * price
	return nil
}

// Restock buys as much of a resource as fits and is affordable, returning
// the number of units bought.
func (s *Ship) Restock(kind catalog.ResourceKind, price int) int {
	if kind == catalog.Credits || price <= 0 {
		return 0
	}
	n := s.Resources[kind].Room()
	if afford := s.Credits() / price; afford < n {
		n = afford
	}
	if n <= 0 {
		return 0
	}
	if err := s.Buy(kind, n, price); err != nil {
		return 0
	}
	return n
}

// Spend removes credits, failing without change when the balance is short.
func (s *Ship) Spend(amount int) error {
	if s.Credits() < amount {
		return fmt.Errorf("spend %d (have %d): %w", amount, s.Credits(), ErrInsufficientFunds)
	}
	s.Resources[catalog.Credits].Amount -= amount
	return nil
}

// Earn adds credits.
func (s *Ship) Earn(amount int) {
	if amount > 0 {
		s.Resources[catalog.Credits].Amount += amount
	}
}

// Consume removes n units of a resource, failing without change if short.
func (s *Ship) Consume(kind catalog.ResourceKind, n int) error {
	if n <= 0 {
		return nil
	}
	if s.Resources[kind].Amount < n {
		return fmt.Errorf("need %d %s (have %d): %w", n, kind, s.Resources[kind].Amount, ErrInsufficientResource)
	}
	s.Resources[kind].Amount -= n
	return nil
}

// Gain adds up to n units of a resource and returns how many fit.
func (s *Ship) Gain(kind catalog.ResourceKind, n int) int {
	return s.Resources[kind].add(n)
}

// BuyModule purchases and installs a module.
func (s *Ship) BuyModule(m catalog.Module, price int) error {
	if s.Credits() < price {
		return fmt.Errorf("buy %s for %d (have %d): %w", m.Name, price, s.Credits(), ErrInsufficientFunds)
	}
	s.Resources[catalog.Credits].Amount -= price
	s.Install(m)
	return nil
}

// Install fits a module. Expanders raise their resource's capacity.
func (s *Ship) Install(m catalog.Module) {
	s.Modules = append(s.Modules, m)
	if m.IsExpander() && m.Resource != catalog.Credits {
		s.Resources[m.Resource].Capacity += m.Amount
	}
}

// SellCargo sells the spare module at index.
func (s *Ship) SellCargo(index, price int) error {
	if index < 0 || index >= len(s.Cargo) {
		return fmt.Errorf("cargo %d of %d: %w", index, len(s.Cargo), ErrNoCargo)
	}
	s.Cargo = append(s.Cargo[:index], s.Cargo[index+1:]...)
	s.Earn(price)
	return nil
}

// InstallCargo moves the spare module at index into the installed list.
func (s *Ship) InstallCargo(index int) error {
	if index < 0 || index >= len(s.Cargo) {
		return fmt.Errorf("cargo %d of %d: %w", index, len(s.Cargo), ErrNoCargo)
	}
	m := s.Cargo[index]
	s.Cargo = append(s.Cargo[:index], s.Cargo[index+1:]...)
	s.Install(m)
	return nil
}

// DuplicateCargo returns the indexes of spare modules whose kind the ship
// already has installed, highest index first so they can be removed in order.
func (s *Ship) DuplicateCargo() []int {
	var out []int
	for i := len(s.Cargo) - 1; i >= 0; i-- {
		c := s.Cargo[i]
		if c.IsExpander() {
			continue
		}
		if s.HasModule(c.Kind) {
			out = append(out, i)
		}
	}
	return out
}

// NetValue estimates the ship's worth: credits, resources at their unit
// price, and installed and spare modules at catalog price.
func (s *Ship) NetValue() int {
	total := 0
	for _, r := range s.Resources {
		p := r.Price
		if p == 0 {
			p = 1
		}
		total += r.Amount * p
	}
	for _, m := range s.Modules {
		total += m.Price
	}
	for _, m := range s.Cargo {
		total += m.Price
	}
	return total
}
