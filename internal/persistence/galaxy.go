package persistence

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/jmoiron/sqlx"

	"github.com/talgya/galaxy-sim/internal/catalog"
	"github.com/talgya/galaxy-sim/internal/config"
	"github.com/talgya/galaxy-sim/internal/engine"
	"github.com/talgya/galaxy-sim/internal/ships"
	"github.com/talgya/galaxy-sim/internal/social"
	"github.com/talgya/galaxy-sim/internal/world"
)

// Metadata keys.
const (
	MetaSeed            = "seed"
	MetaTurn            = "last_turn"
	MetaRunID           = "run_id"
	MetaLastNegotiation = "last_negotiation"
	MetaNextBattle      = "next_battle"
)

// ErrNoGalaxy is returned by LoadGalaxy when nothing has been saved.
var ErrNoGalaxy = errors.New("no saved galaxy")

// Claim kinds stored in the claims table.
const (
	claimStation = "station"
	claimRegion  = "region"
)

// HasGalaxy reports whether a galaxy has been saved.
func (db *DB) HasGalaxy() bool {
	_, err := db.GetMeta(MetaSeed)
	return err == nil
}

// SaveGalaxy performs a full save of the galaxy state. The map itself is
// not stored: it is regenerated from the seed and the claims reapplied.
func (db *DB) SaveGalaxy(sim *engine.Simulation) error {
	slog.Info("saving galaxy", "turn", sim.TurnNumber, "ships", len(sim.Ships), "factions", len(sim.Factions))

	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := saveFactions(tx, sim.Factions); err != nil {
		return fmt.Errorf("save factions: %w", err)
	}
	if err := saveRelations(tx, sim.Relations.Pairs()); err != nil {
		return fmt.Errorf("save relationships: %w", err)
	}
	if err := saveClaims(tx, sim.WorldMap); err != nil {
		return fmt.Errorf("save claims: %w", err)
	}
	if err := saveShips(tx, sim); err != nil {
		return fmt.Errorf("save ships: %w", err)
	}

	meta := map[string]string{
		MetaSeed:            strconv.FormatInt(sim.Seed, 10),
		MetaTurn:            strconv.FormatUint(sim.TurnNumber, 10),
		MetaRunID:           sim.RunID,
		MetaNextBattle:      strconv.FormatUint(uint64(sim.NextBattle), 10),
	}
	if sim.LastNegotiation != nil {
		meta[MetaLastNegotiation] = strconv.FormatUint(*sim.LastNegotiation, 10)
	} else if _, err := tx.Exec("DELETE FROM world_meta WHERE key = ?", MetaLastNegotiation); err != nil {
		return fmt.Errorf("clear meta %s: %w", MetaLastNegotiation, err)
	}
	for k, v := range meta {
		if _, err := tx.Exec("INSERT OR REPLACE INTO world_meta (key, value) VALUES (?, ?)", k, v); err != nil {
			return fmt.Errorf("save meta %s: %w", k, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	if err := db.SaveEvents(sim.Events); err != nil {
		return fmt.Errorf("save events: %w", err)
	}
	slog.Info("galaxy saved")
	return nil
}

func saveFactions(tx *sqlx.Tx, factions []*social.Faction) error {
	if _, err := tx.Exec("DELETE FROM factions"); err != nil {
		return err
	}
	for _, f := range factions {
		news, err := json.Marshal(f.News)
		if err != nil {
			return err
		}
		var leader *int64
		if f.LeaderID != nil {
			id := int64(*f.LeaderID)
			leader = &id
		}
		_, err = tx.Exec(`INSERT INTO factions
			(id, name, color, leader_id, last_election, economy,
			 avg_reputation, min_reputation, max_reputation, news_json)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			f.ID, f.Name, f.Color, leader, f.LastElection, f.Economy,
			f.AvgReputation, f.MinReputation, f.MaxReputation, string(news),
		)
		if err != nil {
			return fmt.Errorf("insert faction %d: %w", f.ID, err)
		}
	}
	return nil
}

func saveRelations(tx *sqlx.Tx, pairs []social.Relationship) error {
	if _, err := tx.Exec("DELETE FROM relationships"); err != nil {
		return err
	}
	for _, r := range pairs {
		_, err := tx.Exec("INSERT INTO relationships (faction_a, faction_b, relation) VALUES (?, ?, ?)",
			r.Pair.A, r.Pair.B, r.Type.String())
		if err != nil {
			return err
		}
	}
	return nil
}

func saveClaims(tx *sqlx.Tx, m *world.Map) error {
	if _, err := tx.Exec("DELETE FROM claims"); err != nil {
		return err
	}
	stmt, err := tx.Preparex(`INSERT INTO claims
		(sector_x, sector_y, kind, orbit, idx, faction_id) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, s := range m.All() {
		for i, st := range s.Stations {
			if f, ok := world.OwnerOf(st.Owner); ok {
				if _, err := stmt.Exec(s.Coord.X, s.Coord.Y, claimStation, st.Orbit, i, f); err != nil {
					return err
				}
			}
		}
		for _, p := range s.Planets {
			for i, r := range p.Regions {
				if f, ok := world.OwnerOf(r.Owner); ok {
					if _, err := stmt.Exec(s.Coord.X, s.Coord.Y, claimRegion, p.Orbit, i, f); err != nil {
						return err
					}
				}
			}
		}
	}
	return nil
}

func saveShips(tx *sqlx.Tx, sim *engine.Simulation) error {
	if _, err := tx.Exec("DELETE FROM ship_state"); err != nil {
		return err
	}
	stmt, err := tx.Preparex("INSERT INTO ship_state (ship_id, key, value) VALUES (?, ?, ?)")
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, sh := range sim.Ships {
		if !sh.Alive() {
			continue
		}
		snap, err := sim.SnapshotShip(sh.ID)
		if err != nil {
			return err
		}
		for _, k := range snap.Keys() {
			if _, err := stmt.Exec(sh.ID, k, snap[k]); err != nil {
				return fmt.Errorf("insert ship %d %s: %w", sh.ID, k, err)
			}
		}
	}
	return nil
}

// ── Loading ──

type factionRow struct {
	ID            uint64        `db:"id"`
	Name          string        `db:"name"`
	Color         string        `db:"color"`
	LeaderID      sql.NullInt64 `db:"leader_id"`
	LastElection  uint64        `db:"last_election"`
	Economy       int           `db:"economy"`
	AvgReputation int           `db:"avg_reputation"`
	MinReputation int           `db:"min_reputation"`
	MaxReputation int           `db:"max_reputation"`
	News          string        `db:"news_json"`
}

type relationRow struct {
	A        uint64 `db:"faction_a"`
	B        uint64 `db:"faction_b"`
	Relation string `db:"relation"`
}

type claimRow struct {
	X       int    `db:"sector_x"`
	Y       int    `db:"sector_y"`
	Kind    string `db:"kind"`
	Orbit   int    `db:"orbit"`
	Index   int    `db:"idx"`
	Faction uint64 `db:"faction_id"`
}

type shipStateRow struct {
	ShipID uint64 `db:"ship_id"`
	Key    string `db:"key"`
	Value  string `db:"value"`
}

// LoadGalaxy rebuilds a simulation from the last save.
func (db *DB) LoadGalaxy(cfg *config.Config, cat *catalog.Catalog) (*engine.Simulation, error) {
	seedStr, err := db.GetMeta(MetaSeed)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoGalaxy
	}
	if err != nil {
		return nil, fmt.Errorf("load seed: %w", err)
	}
	seed, err := strconv.ParseInt(seedStr, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("parse seed %q: %w", seedStr, err)
	}

	m := world.Generate(engine.GenConfig(cfg, seed), cat)
	sim := engine.NewSimulation(cfg, cat, m, seed)
	if err := db.loadMeta(sim); err != nil {
		return nil, err
	}
	if err := db.loadFactions(sim); err != nil {
		return nil, fmt.Errorf("load factions: %w", err)
	}
	if err := db.loadRelations(sim); err != nil {
		return nil, fmt.Errorf("load relationships: %w", err)
	}
	if err := db.loadClaims(m); err != nil {
		return nil, fmt.Errorf("load claims: %w", err)
	}
	if err := db.loadShips(sim); err != nil {
		return nil, fmt.Errorf("load ships: %w", err)
	}

	events, err := db.RecentEvents(1000)
	if err != nil {
		return nil, fmt.Errorf("load events: %w", err)
	}
	for i := len(events) - 1; i >= 0; i-- {
		sim.Events = append(sim.Events, events[i])
	}

	slog.Info("galaxy loaded",
		"run", sim.RunID,
		"turn", sim.TurnNumber,
		"ships", len(sim.Ships),
		"factions", len(sim.Factions),
	)
	return sim, nil
}

func (db *DB) loadMeta(sim *engine.Simulation) error {
	if v, err := db.GetMeta(MetaTurn); err == nil {
		if sim.TurnNumber, err = strconv.ParseUint(v, 10, 64); err != nil {
			return fmt.Errorf("parse %s %q: %w", MetaTurn, v, err)
		}
	}
	if v, err := db.GetMeta(MetaLastNegotiation); err == nil {
		turn, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("parse %s %q: %w", MetaLastNegotiation, v, err)
		}
		sim.LastNegotiation = &turn
	}
	if v, err := db.GetMeta(MetaNextBattle); err == nil {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("parse %s %q: %w", MetaNextBattle, v, err)
		}
		sim.NextBattle = world.BattleID(n)
	}
	if v, err := db.GetMeta(MetaRunID); err == nil {
		sim.RunID = v
	}
	return nil
}

func (db *DB) loadFactions(sim *engine.Simulation) error {
	var rows []factionRow
	if err := db.conn.Select(&rows, "SELECT * FROM factions ORDER BY id"); err != nil {
		return err
	}
	for _, r := range rows {
		f := social.NewFaction(social.FactionID(r.ID), r.Name, r.Color, r.Economy)
		if r.LeaderID.Valid {
			f.SetLeader(uint64(r.LeaderID.Int64))
		}
		f.LastElection = r.LastElection
		f.AvgReputation = r.AvgReputation
		f.MinReputation = r.MinReputation
		f.MaxReputation = r.MaxReputation
		if err := json.Unmarshal([]byte(r.News), &f.News); err != nil {
			return fmt.Errorf("faction %s news: %w", r.Name, err)
		}
		sim.AddFaction(f)
	}
	return nil
}

func (db *DB) loadRelations(sim *engine.Simulation) error {
	var rows []relationRow
	if err := db.conn.Select(&rows, "SELECT faction_a, faction_b, relation FROM relationships"); err != nil {
		return err
	}
	for _, r := range rows {
		t, err := social.ParseRelation(r.Relation)
		if err != nil {
			return err
		}
		if err := sim.Relations.Init(social.FactionID(r.A), social.FactionID(r.B), t); err != nil {
			return err
		}
	}
	return nil
}

func (db *DB) loadClaims(m *world.Map) error {
	var rows []claimRow
	if err := db.conn.Select(&rows, "SELECT sector_x, sector_y, kind, orbit, idx, faction_id FROM claims"); err != nil {
		return err
	}
	for _, r := range rows {
		s := m.Get(world.Coord{X: r.X, Y: r.Y})
		if s == nil {
			return fmt.Errorf("claim in %d,%d: %w", r.X, r.Y, world.ErrNoSector)
		}
		owner := world.Own(social.FactionID(r.Faction))
		switch r.Kind {
		case claimStation:
			st := s.Station(r.Index)
			if st == nil {
				return fmt.Errorf("claim station %d in %s: %w", r.Index, s.Name, world.ErrNoStation)
			}
			st.Owner = owner
		case claimRegion:
			reg := s.Region(r.Orbit, r.Index)
			if reg == nil {
				return fmt.Errorf("claim region %d at orbit %d in %s: %w", r.Index, r.Orbit, s.Name, world.ErrNoRegion)
			}
			reg.Owner = owner
		default:
			return fmt.Errorf("unknown claim kind %q", r.Kind)
		}
	}
	return nil
}

func (db *DB) loadShips(sim *engine.Simulation) error {
	var rows []shipStateRow
	if err := db.conn.Select(&rows, "SELECT ship_id, key, value FROM ship_state ORDER BY ship_id"); err != nil {
		return err
	}
	snaps := make(map[ships.ID]ships.Snapshot)
	var order []ships.ID
	for _, r := range rows {
		id := ships.ID(r.ShipID)
		snap, ok := snaps[id]
		if !ok {
			snap = make(ships.Snapshot)
			snaps[id] = snap
			order = append(order, id)
		}
		snap[r.Key] = r.Value
	}
	for _, id := range order {
		if _, err := sim.RestoreShip(id, snaps[id]); err != nil {
			return err
		}
	}
	return nil
}
