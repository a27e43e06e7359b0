// Package ships provides the ship data model: resources, installed modules,
// status flags, per-faction reputation and the AI goal.
package ships

import (
	"github.com/talgya/galaxy-sim/internal/catalog"
	"github.com/talgya/galaxy-sim/internal/social"
	"github.com/talgya/galaxy-sim/internal/world"
)

// ID is a unique identifier for a ship.
type ID uint64

// Resource is one slot of a ship's inventory. Capacity 0 means unbounded.
// Price is the per-unit valuation used for net worth.
type Resource struct {
	Amount   int `json:"amount"`
	Capacity int `json:"capacity"`
	Price    int `json:"price"`
}

// Room returns how many more units fit.
func (r Resource) Room() int {
	if r.Capacity == 0 {
		return int(^uint(0) >> 1)
	}
	return social.Clamp(r.Capacity-r.Amount, 0, r.Capacity)
}

// Full reports whether the slot is at capacity.
func (r Resource) Full() bool {
	return r.Capacity > 0 && r.Amount >= r.Capacity
}

// Fraction returns Amount/Capacity, or 1 for unbounded slots.
func (r Resource) Fraction() float64 {
	if r.Capacity == 0 {
		return 1
	}
	return float64(r.Amount) / float64(r.Capacity)
}

// add stores up to n units and returns how many fit.
func (r *Resource) add(n int) int {
	if n <= 0 {
		return 0
	}
	if room := r.Room(); n > room {
		n = room
	}
	r.Amount += n
	return n
}

// GoalKind is what the AI is currently working toward.
type GoalKind uint8

const (
	GoalNone GoalKind = iota
	GoalInvade
	GoalClaim
	GoalMine
	GoalTrade
	GoalExplore
)

var goalNames = [...]string{"none", "invade", "claim", "mine", "trade", "explore"}

func (g GoalKind) String() string {
	if int(g) < len(goalNames) {
		return goalNames[g]
	}
	return "unknown"
}

// ParseGoalKind maps a goal name to its kind; unknown names read as none.
func ParseGoalKind(s string) GoalKind {
	for i, n := range goalNames {
		if n == s {
			return GoalKind(i)
		}
	}
	return GoalNone
}

// Goal is a ship's current destination and what it means to do there.
type Goal struct {
	Kind   GoalKind       `json:"kind"`
	Target world.Location `json:"target"`
	Set    uint64         `json:"set"` // Turn the goal was chosen
}

// Specialization is the role a ship's loadout suits it for. Voters prefer
// candidates sharing their own.
type Specialization uint8

const (
	Trader Specialization = iota
	Miner
	Explorer
	Fighter
)

var specNames = [...]string{"trader", "miner", "explorer", "fighter"}

func (s Specialization) String() string {
	if int(s) < len(specNames) {
		return specNames[s]
	}
	return "unknown"
}

// Ship is a spacecraft: the player's or an autonomous NPC's. Its location is
// held by the roster registry, not here.
type Ship struct {
	ID    ID     `json:"id"`
	Name  string `json:"name"`
	Human bool   `json:"human"`

	// Faction is nil for unaligned ships.
	Faction *social.FactionID `json:"faction,omitempty"`

	Resources [catalog.NumResources]Resource `json:"resources"`
	Modules   []catalog.Module               `json:"modules"`
	Cargo     []catalog.Module               `json:"cargo,omitempty"` // Spare, uninstalled modules

	// Status flags
	Destroyed bool `json:"destroyed"`
	Shielded  bool `json:"shielded"`
	Cloaked   bool `json:"cloaked"`

	Reputation map[social.FactionID]*social.Reputation `json:"reputation"`

	Goal Goal `json:"goal"`
}

// Res returns the resource slot of a kind.
func (s *Ship) Res(kind catalog.ResourceKind) *Resource {
	return &s.Resources[kind]
}

// Amount returns the stored amount of a resource.
func (s *Ship) Amount(kind catalog.ResourceKind) int {
	return s.Resources[kind].Amount
}

// Credits returns the ship's credit balance.
func (s *Ship) Credits() int {
	return s.Resources[catalog.Credits].Amount
}

// Alive reports whether the ship can still act.
func (s *Ship) Alive() bool {
	return !s.Destroyed
}

// FactionID returns the ship's faction, if aligned.
func (s *Ship) FactionID() (social.FactionID, bool) {
	return world.OwnerOf(s.Faction)
}

// InFaction reports whether the ship belongs to f.
func (s *Ship) InFaction(f social.FactionID) bool {
	return s.Faction != nil && *s.Faction == f
}

// Join aligns the ship with a faction.
func (s *Ship) Join(f social.FactionID) {
	s.Faction = world.Own(f)
}

// Leave makes the ship unaligned.
func (s *Ship) Leave() {
	s.Faction = nil
}

// Rep returns the ship's reputation record with a faction, creating it at
// zero on first use.
func (s *Ship) Rep(f social.FactionID) *social.Reputation {
	if s.Reputation == nil {
		s.Reputation = make(map[social.FactionID]*social.Reputation)
	}
	r, ok := s.Reputation[f]
	if !ok {
		r = &social.Reputation{Faction: f}
		s.Reputation[f] = r
	}
	return r
}

// RepValue returns the reputation value with f without creating a record.
func (s *Ship) RepValue(f social.FactionID) int {
	if r, ok := s.Reputation[f]; ok {
		return r.Value
	}
	return 0
}

// OwnRep returns the reputation with the ship's own faction, 0 if unaligned.
func (s *Ship) OwnRep() int {
	f, ok := s.FactionID()
	if !ok {
		return 0
	}
	return s.RepValue(f)
}

func (s *Ship) String() string {
	return s.Name
}
