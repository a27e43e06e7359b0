// Package config holds every tuned constant of the simulation.
// Values come from Default(), optionally overlaid by a YAML file and then by
// environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration, mapping to the whole galaxysim.yaml file.
type Config struct {
	Seed        int64  `yaml:"seed"`         // 0 = random
	DBPath      string `yaml:"db_path"`      // SQLite save file
	CatalogPath string `yaml:"catalog_path"` // Optional override of the embedded catalog
	Turns       uint64 `yaml:"turns"`        // Turns to run before exiting (0 = until stopped)

	Galaxy     GalaxyConfig     `yaml:"galaxy"`
	Costs      CostConfig       `yaml:"costs"`
	Reputation ReputationConfig `yaml:"reputation"`
	Battle     BattleConfig     `yaml:"battle"`
	Politics   PoliticsConfig   `yaml:"politics"`
	Policy     PolicyConfig     `yaml:"policy"`
	Economy    EconomyConfig    `yaml:"economy"`
}

// GalaxyConfig controls generation and population.
type GalaxyConfig struct {
	Radius          int     `yaml:"radius"`         // Coordinates span [-Radius, Radius] on both axes
	SectorDensity   float64 `yaml:"sector_density"` // Noise threshold; higher = fewer sectors
	MinOrbits       int     `yaml:"min_orbits"`
	MaxOrbits       int     `yaml:"max_orbits"`
	Factions        int     `yaml:"factions"`
	ShipsPerSector  int     `yaml:"ships_per_sector"` // Initial NPCs per station-bearing sector
	MinSectorShips  int     `yaml:"min_sector_ships"` // Restock threshold
	HomeDistance    int     `yaml:"home_distance"`    // Preferred jumps between faction homes
	PlayerName      string  `yaml:"player_name"`
	CheckpointEvery uint64  `yaml:"checkpoint_every"` // Autosave interval in turns
}

// CostConfig holds the resource cost of each location transition.
type CostConfig struct {
	OrbitFuel    int `yaml:"orbit_fuel"`
	LandFuel     int `yaml:"land_fuel"`
	TakeoffFuel  int `yaml:"takeoff_fuel"`
	EscapeFuel   int `yaml:"escape_fuel"`
	JumpFuel     int `yaml:"jump_fuel"`
	WarpFuel     int `yaml:"warp_fuel"`
	WarpEnergy   int `yaml:"warp_energy"`
	WarpRange    int `yaml:"warp_range"`
	DockingFee   int `yaml:"docking_fee"`
	MiningEnergy int `yaml:"mining_energy"`
	RefineOre    int `yaml:"refine_ore"` // Ore consumed per unit of fuel refined
	ClaimRegion  int `yaml:"claim_region"`
	ClaimStation int `yaml:"claim_station"`
	InvadeCost   int `yaml:"invade_cost"`
}

// ReputationConfig holds the reputation ledger constants.
type ReputationConfig struct {
	FadeInterval       uint64 `yaml:"fade_interval"`
	FadeDivisor        int    `yaml:"fade_divisor"`
	FadeAverageScale   int    `yaml:"fade_average_scale"`
	RangeScale         int    `yaml:"range_scale"`
	RejectionThreshold int    `yaml:"rejection_threshold"`
	DistressThreshold  int    `yaml:"distress_threshold"`
	DistressCost       int    `yaml:"distress_cost"`
	KillPenalty        int    `yaml:"kill_penalty"`
	KillBonus          int    `yaml:"kill_bonus"`
	ClaimBonus         int    `yaml:"claim_bonus"`
	InvadePenalty      int    `yaml:"invade_penalty"`
	ReelectionPenalty  int    `yaml:"reelection_penalty"`
	LeaderBonus        int    `yaml:"leader_bonus"`
}

// BattleConfig holds combat constants.
type BattleConfig struct {
	LootModifier   int     `yaml:"loot_modifier"`
	EscapeChance   float64 `yaml:"escape_chance"`
	MaxRounds      int     `yaml:"max_rounds"`
	ShieldChance   float64 `yaml:"shield_chance"`
	AllyJoinChance float64 `yaml:"ally_join_chance"`
}

// PoliticsConfig holds diplomacy and election constants.
type PoliticsConfig struct {
	DiplomacyChance    float64 `yaml:"diplomacy_chance"`
	DiplomacyCooldown  uint64  `yaml:"diplomacy_cooldown"`
	DiplomacyRetries   int     `yaml:"diplomacy_retries"`
	ProposalWindow     uint64  `yaml:"proposal_window"`
	ElectionInterval   uint64  `yaml:"election_interval"`
	ElectionCandidates int     `yaml:"election_candidates"`
	ElectionVoteWindow uint64  `yaml:"election_vote_window"`
	NewsLimit          int     `yaml:"news_limit"`
}

// PolicyConfig tunes the agent policy.
type PolicyConfig struct {
	SensorRange       int     `yaml:"sensor_range"` // Intergalactic distance a ship looks for goals
	InvadeMinWeapons  int     `yaml:"invade_min_weapons"`
	InvadeMinFuel     int     `yaml:"invade_min_fuel"`
	PurchaseChance    float64 `yaml:"purchase_chance"`
	WarChance         float64 `yaml:"war_chance"`
	AllianceChance    float64 `yaml:"alliance_chance"`
	BreakChance       float64 `yaml:"break_chance"`
	SpecializationPts int     `yaml:"specialization_points"`
	ColocatedPts      int     `yaml:"colocated_points"`
	AdjacentPts       int     `yaml:"adjacent_points"`
	ValueScale        int     `yaml:"value_scale"`
}

// EconomyConfig holds faction bookkeeping constants.
type EconomyConfig struct {
	StartingEconomy int     `yaml:"starting_economy"`
	IncomeInterval  uint64  `yaml:"income_interval"`
	IncomePerClaim  int     `yaml:"income_per_claim"`
	StartingCredits int     `yaml:"starting_credits"`
	PriceVariance   float64 `yaml:"price_variance"`
}

// Default returns the tuned configuration used when no file is supplied.
func Default() *Config {
	return &Config{
		Seed:   0,
		DBPath: "data/galaxy.db",
		Galaxy: GalaxyConfig{
			Radius:          4,
			SectorDensity:   0.45,
			MinOrbits:       3,
			MaxOrbits:       8,
			Factions:        4,
			ShipsPerSector:  2,
			MinSectorShips:  1,
			HomeDistance:    2,
			PlayerName:      "Wayfarer",
			CheckpointEvery: 100,
		},
		Costs: CostConfig{
			OrbitFuel:    1,
			LandFuel:     1,
			TakeoffFuel:  2,
			EscapeFuel:   1,
			JumpFuel:     3,
			WarpFuel:     5,
			WarpEnergy:   10,
			WarpRange:    4,
			DockingFee:   10,
			MiningEnergy: 1,
			RefineOre:    2,
			ClaimRegion:  250,
			ClaimStation: 500,
			InvadeCost:   400,
		},
		Reputation: ReputationConfig{
			FadeInterval:       10,
			FadeDivisor:        20,
			FadeAverageScale:   100,
			RangeScale:         200,
			RejectionThreshold: -300,
			DistressThreshold:  50,
			DistressCost:       40,
			KillPenalty:        60,
			KillBonus:          30,
			ClaimBonus:         40,
			InvadePenalty:      120,
			ReelectionPenalty:  25,
			LeaderBonus:        50,
		},
		Battle: BattleConfig{
			LootModifier:   2,
			EscapeChance:   0.6,
			MaxRounds:      30,
			ShieldChance:   0.5,
			AllyJoinChance: 0.5,
		},
		Politics: PoliticsConfig{
			DiplomacyChance:    0.6,
			DiplomacyCooldown:  25,
			DiplomacyRetries:   5,
			ProposalWindow:     20,
			ElectionInterval:   500,
			ElectionCandidates: 4,
			ElectionVoteWindow: 10,
			NewsLimit:          50,
		},
		Policy: PolicyConfig{
			SensorRange:       2,
			InvadeMinWeapons:  2,
			InvadeMinFuel:     8,
			PurchaseChance:    0.5,
			WarChance:         0.25,
			AllianceChance:    0.5,
			BreakChance:       0.2,
			SpecializationPts: 3,
			ColocatedPts:      2,
			AdjacentPts:       1,
			ValueScale:        500,
		},
		Economy: EconomyConfig{
			StartingEconomy: 2000,
			IncomeInterval:  50,
			IncomePerClaim:  25,
			StartingCredits: 100,
			PriceVariance:   0.25,
		},
	}
}

// Load returns Default() overlaid with the YAML file at path (skipped when
// path is empty) and then with environment overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("GALAXYSIM_SEED"); v != "" {
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("GALAXYSIM_SEED: %w", err)
		}
		c.Seed = seed
	}
	if v := os.Getenv("GALAXYSIM_TURNS"); v != "" {
		turns, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("GALAXYSIM_TURNS: %w", err)
		}
		c.Turns = turns
	}
	if v := os.Getenv("GALAXYSIM_DB"); v != "" {
		c.DBPath = v
	}
	if v := os.Getenv("GALAXYSIM_CATALOG"); v != "" {
		c.CatalogPath = v
	}
	return nil
}

// Validate rejects configurations the engine cannot run with.
func (c *Config) Validate() error {
	switch {
	case c.Galaxy.Radius < 1:
		return fmt.Errorf("galaxy.radius must be at least 1, got %d", c.Galaxy.Radius)
	case c.Galaxy.MinOrbits < 2 || c.Galaxy.MaxOrbits < c.Galaxy.MinOrbits:
		return fmt.Errorf("galaxy orbits out of range: min %d max %d", c.Galaxy.MinOrbits, c.Galaxy.MaxOrbits)
	case c.Galaxy.Factions < 2:
		return fmt.Errorf("galaxy.factions must be at least 2, got %d", c.Galaxy.Factions)
	case c.Battle.LootModifier < 1:
		return fmt.Errorf("battle.loot_modifier must be positive, got %d", c.Battle.LootModifier)
	case c.Reputation.FadeDivisor < 1:
		return fmt.Errorf("reputation.fade_divisor must be positive, got %d", c.Reputation.FadeDivisor)
	case c.Politics.ElectionCandidates < 1:
		return fmt.Errorf("politics.election_candidates must be positive, got %d", c.Politics.ElectionCandidates)
	}
	return nil
}
