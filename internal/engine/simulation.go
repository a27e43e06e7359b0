// Simulation ties together all galaxy systems and runs them each turn.
package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/talgya/galaxy-sim/internal/ai"
	"github.com/talgya/galaxy-sim/internal/battle"
	"github.com/talgya/galaxy-sim/internal/catalog"
	"github.com/talgya/galaxy-sim/internal/config"
	"github.com/talgya/galaxy-sim/internal/entropy"
	"github.com/talgya/galaxy-sim/internal/roster"
	"github.com/talgya/galaxy-sim/internal/ships"
	"github.com/talgya/galaxy-sim/internal/social"
	"github.com/talgya/galaxy-sim/internal/world"
)

var (
	ErrUnknownShip    = errors.New("unknown ship")
	ErrUnknownFaction = errors.New("unknown faction")
	ErrNoPlayer       = errors.New("no player ship")
)

// maxEvents bounds the event log.
const maxEvents = 1000

// Simulation holds the complete galaxy state and wires systems together.
// It is the only owner of ships, factions and battles; everything else refers
// to them by ID.
type Simulation struct {
	Config   *config.Config
	WorldMap *world.Map
	Seed     int64  // Generation seed; the map is rebuilt from it on load
	RunID    string // Identifies one generated galaxy across saves

	Ships     []*ships.Ship
	ShipIndex map[ships.ID]*ships.Ship
	Roster    *roster.Registry

	Factions     []*social.Faction
	FactionIndex map[social.FactionID]*social.Faction
	Relations    *social.Relations

	Battles    map[world.BattleID]*battle.Battle
	NextBattle world.BattleID

	// Political state waiting on the player.
	Proposals []social.Proposal                      // Offers to a player-led faction
	Elections map[social.FactionID]*social.Election // Elections waiting for the player's ballot

	PlayerID        *ships.ID
	TurnNumber      uint64
	LastNegotiation *uint64 // Nil until the first negotiation
	Events          []Event

	cat     *catalog.Catalog
	rng     *entropy.Source
	policy  *ai.Policy
	spawner *ships.Spawner
	tactics map[ships.ID]battle.Tactic // Orders queued by the player for the next pass
}

// Event is a notable occurrence in the galaxy.
type Event struct {
	Turn        uint64         `json:"turn"`
	Description string         `json:"description"`
	Category    string         `json:"category"` // "battle", "death", "territory", "diplomacy", "election", ...
	Meta        map[string]any `json:"meta,omitempty"`
}

// NewSimulation creates an empty simulation over a generated map. Ships and
// factions are added by NewGalaxy or by the persistence layer.
func NewSimulation(cfg *config.Config, cat *catalog.Catalog, m *world.Map, seed int64) *Simulation {
	rng := entropy.New(seed)
	return &Simulation{
		Config:       cfg,
		WorldMap:     m,
		Seed:         seed,
		ShipIndex:    make(map[ships.ID]*ships.Ship),
		Roster:       roster.New(),
		FactionIndex: make(map[social.FactionID]*social.Faction),
		Relations:    social.NewRelations(),
		Battles:      make(map[world.BattleID]*battle.Battle),
		Elections:    make(map[social.FactionID]*social.Election),
		cat:          cat,
		rng:          rng,
		policy:       ai.New(cfg),
		spawner:      ships.NewSpawner(rng.Derive(1), cat, cfg.Economy.StartingCredits),
		tactics:      make(map[ships.ID]battle.Tactic),
	}
}

// Turn advances the simulation by one step. The order is load-bearing: NPCs
// decide against the previous turn's world, and destroyed ships are purged
// before any bookkeeping reads faction membership.
func (s *Simulation) Turn() {
	s.applyPlayerEffects()
	s.resumeBattles()
	s.processActions()
	s.purgeDestroyed()
	s.cacheAverages()
	s.collectIncome()
	s.applyContinuous()
	s.fadeReputations()
	s.processExpulsions()
	s.restock()
	s.verifyRoster()
	s.processDiplomacy()
	s.processElections()
	s.TurnNumber++

	if len(s.Events) > maxEvents {
		s.Events = s.Events[len(s.Events)-maxEvents:]
	}
}

// EmitEvent appends an event to the log.
func (s *Simulation) EmitEvent(e Event) {
	s.Events = append(s.Events, e)
	slog.Debug("event", "turn", e.Turn, "category", e.Category, "description", e.Description)
}

// ── Lookups ──

// CurrentTurn returns the number of turns completed.
func (s *Simulation) CurrentTurn() uint64 {
	return s.TurnNumber
}

// Map returns the galaxy geometry.
func (s *Simulation) Map() *world.Map {
	return s.WorldMap
}

// Catalog returns the static module table.
func (s *Simulation) Catalog() *catalog.Catalog {
	return s.cat
}

// Rand returns the simulation's random source.
func (s *Simulation) Rand() *entropy.Source {
	return s.rng
}

// Policy returns the NPC policy.
func (s *Simulation) Policy() *ai.Policy {
	return s.policy
}

// Spawner returns the ship factory.
func (s *Simulation) Spawner() *ships.Spawner {
	return s.spawner
}

// Ship looks up a live or not-yet-purged ship.
func (s *Simulation) Ship(id ships.ID) *ships.Ship {
	return s.ShipIndex[id]
}

// Sector looks up a sector.
func (s *Simulation) Sector(c world.Coord) *world.Sector {
	return s.WorldMap.Get(c)
}

// Faction looks up a faction.
func (s *Simulation) Faction(id social.FactionID) *social.Faction {
	return s.FactionIndex[id]
}

// FactionByName looks up a faction by its name.
func (s *Simulation) FactionByName(name string) *social.Faction {
	for _, f := range s.Factions {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// Location returns where a ship is.
func (s *Simulation) Location(id ships.ID) (world.Location, bool) {
	return s.Roster.Location(id)
}

// Members returns the ships at a location in ID order.
func (s *Simulation) Members(loc world.Location) []ships.ID {
	return s.Roster.Members(loc)
}

// Relation returns the diplomatic state between two factions.
func (s *Simulation) Relation(a, b social.FactionID) social.RelationType {
	return s.Relations.Type(a, b)
}

// Standing classifies a ship's reputation with a faction.
func (s *Simulation) Standing(sh *ships.Ship, f social.FactionID) social.Range {
	return social.Classify(sh.RepValue(f), s.Faction(f), s.Config.Reputation.RangeScale)
}

// Hostile reports whether observer treats target as an enemy: their factions
// are at war, or target is despised by the observer's faction.
func (s *Simulation) Hostile(observer, target *ships.Ship) bool {
	if observer == nil || target == nil || observer.ID == target.ID || target.Destroyed {
		return false
	}
	mine, aligned := observer.FactionID()
	if !aligned {
		return false
	}
	if theirs, ok := target.FactionID(); ok {
		if theirs == mine {
			return false
		}
		if s.Relations.Type(mine, theirs) == social.War {
			return true
		}
	}
	switch s.Standing(target, mine) {
	case social.Despised, social.Infamous:
		return true
	}
	return false
}

// Friendly reports whether a faction is the ship's own or allied with it.
func (s *Simulation) Friendly(sh *ships.Ship, f social.FactionID) bool {
	mine, ok := sh.FactionID()
	if !ok {
		return false
	}
	return s.Relations.Type(mine, f) == social.Alliance
}

// FactionMembers returns the live members of a faction in ID order.
func (s *Simulation) FactionMembers(f social.FactionID) []*ships.Ship {
	var out []*ships.Ship
	for _, sh := range s.Ships {
		if sh.Alive() && sh.InFaction(f) {
			out = append(out, sh)
		}
	}
	return out
}

// Player returns the human ship, or nil when it has been destroyed.
func (s *Simulation) Player() *ships.Ship {
	if s.PlayerID == nil {
		return nil
	}
	sh := s.ShipIndex[*s.PlayerID]
	if sh == nil || sh.Destroyed {
		return nil
	}
	return sh
}

func (s *Simulation) player() (*ships.Ship, error) {
	p := s.Player()
	if p == nil {
		return nil, ErrNoPlayer
	}
	return p, nil
}

// PlayerLed reports whether the player leads the faction.
func (s *Simulation) PlayerLed(f *social.Faction) bool {
	p := s.Player()
	return p != nil && f.IsLeader(uint64(p.ID))
}

// ── Registration ──

// AddFaction registers a faction.
func (s *Simulation) AddFaction(f *social.Faction) {
	s.Factions = append(s.Factions, f)
	s.FactionIndex[f.ID] = f
}

// AddShip registers a ship at a location. Every ship carries one reputation
// entry per faction in the galaxy.
func (s *Simulation) AddShip(sh *ships.Ship, loc world.Location) error {
	if _, dup := s.ShipIndex[sh.ID]; dup {
		return fmt.Errorf("add ship %d: duplicate id", sh.ID)
	}
	if err := s.Roster.Place(sh.ID, loc); err != nil {
		return fmt.Errorf("add ship %d: %w", sh.ID, err)
	}
	for _, f := range s.Factions {
		sh.Rep(f.ID)
	}
	s.Ships = append(s.Ships, sh)
	s.ShipIndex[sh.ID] = sh
	if sh.Human {
		id := sh.ID
		s.PlayerID = &id
	}
	if sh.ID >= s.spawner.NextID() {
		s.spawner.SetNextID(sh.ID + 1)
	}
	return nil
}

// Relocate moves a ship in the roster registry.
func (s *Simulation) Relocate(id ships.ID, loc world.Location) error {
	return s.Roster.Move(id, loc)
}

// ── Turn steps ──

// applyPlayerEffects runs the player's shield, cloak and solar upkeep.
func (s *Simulation) applyPlayerEffects() {
	if p := s.Player(); p != nil {
		p.ApplyContinuous()
	}
}

// processActions asks every NPC for an action against the pre-action world,
// then applies them in roster order. Actions re-validate when applied, so a
// ship pulled into a battle by an earlier action simply fails its own.
func (s *Simulation) processActions() {
	ids := s.Roster.IDs()
	actions := make([]ai.Action, 0, len(ids))
	for _, id := range ids {
		sh := s.Ship(id)
		if sh == nil || !sh.Alive() || sh.Human {
			continue
		}
		act := s.policy.Decide(sh, s, s.rng)
		if act.Kind != ai.ActionIdle {
			actions = append(actions, act)
		}
	}

	for _, act := range actions {
		if err := s.apply(act); err != nil {
			slog.Debug("action failed", "ship", act.Ship, "action", act.Kind, "error", err)
		}
	}
	s.settleBattles()
}

// purgeDestroyed drops destroyed ships from the registry, index and list.
func (s *Simulation) purgeDestroyed() {
	kept := s.Ships[:0]
	for _, sh := range s.Ships {
		if sh.Alive() {
			kept = append(kept, sh)
			continue
		}
		s.Roster.Remove(sh.ID)
		delete(s.ShipIndex, sh.ID)
		delete(s.tactics, sh.ID)
		if sh.Human {
			slog.Info("player ship lost", "ship", sh.ID, "name", sh.Name, "turn", s.TurnNumber)
		}
	}
	for i := len(kept); i < len(s.Ships); i++ {
		s.Ships[i] = nil
	}
	s.Ships = kept
}

// applyContinuous runs shield, cloak and solar upkeep for every NPC.
func (s *Simulation) applyContinuous() {
	for _, sh := range s.Ships {
		if sh.Alive() && !sh.Human {
			sh.ApplyContinuous()
		}
	}
}

// verifyRoster repairs the registry and drops entries for ships the
// simulation no longer knows.
func (s *Simulation) verifyRoster() {
	if repaired := s.Roster.Verify(); len(repaired) > 0 {
		slog.Warn("roster repaired", "turn", s.TurnNumber, "ships", repaired)
	}
	for _, id := range s.Roster.IDs() {
		if sh := s.Ship(id); sh == nil || !sh.Alive() {
			s.Roster.Remove(id)
			slog.Warn("removed stale roster entry", "ship", id)
		}
	}
	for _, sh := range s.Ships {
		if _, ok := s.Roster.Location(sh.ID); !ok && sh.Alive() {
			slog.Warn("live ship missing from roster", "ship", sh.ID, "name", sh.Name)
		}
	}
}

// SortedBattles returns the active battles in ID order.
func (s *Simulation) SortedBattles() []*battle.Battle {
	out := make([]*battle.Battle, 0, len(s.Battles))
	for _, b := range s.Battles {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
