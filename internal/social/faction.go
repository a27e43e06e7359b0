// Factions: political organizations with a leader, an economy, and a news feed.
package social

import "fmt"

// FactionID is a unique identifier for a faction.
type FactionID uint64

// Faction is a political organization ships belong to.
type Faction struct {
	ID    FactionID `json:"id"`
	Name  string    `json:"name"`
	Color string    `json:"color"` // Display tag for the rendering layer

	// Leadership. LeaderID holds a ship ID; nil when leaderless.
	LeaderID     *uint64 `json:"leader_id,omitempty"`
	LastElection uint64  `json:"last_election"`

	// Economy is the faction's credit balance, funded by claimed territory.
	Economy int `json:"economy"`

	// Reputation statistics. AvgReputation is cached once per turn and scales
	// the fade rate; Min/Max are the historical extremes used for ranges.
	AvgReputation int `json:"avg_reputation"`
	MinReputation int `json:"min_reputation"`
	MaxReputation int `json:"max_reputation"`

	News []NewsEntry `json:"news,omitempty"`
}

// NewsEntry is one line in a faction's news feed.
type NewsEntry struct {
	Turn uint64 `json:"turn"`
	Text string `json:"text"`
}

// NewFaction creates a faction with the given economy.
func NewFaction(id FactionID, name, color string, economy int) *Faction {
	return &Faction{
		ID:      id,
		Name:    name,
		Color:   color,
		Economy: economy,
	}
}

// HasLeader reports whether a leader is assigned.
func (f *Faction) HasLeader() bool {
	return f.LeaderID != nil
}

// SetLeader assigns a leader by ship ID.
func (f *Faction) SetLeader(shipID uint64) {
	id := shipID
	f.LeaderID = &id
}

// ClearLeader removes the leader.
func (f *Faction) ClearLeader() {
	f.LeaderID = nil
}

// IsLeader reports whether the given ship leads this faction.
func (f *Faction) IsLeader(shipID uint64) bool {
	return f.LeaderID != nil && *f.LeaderID == shipID
}

// AddNews appends a news entry, keeping at most limit entries (0 = unbounded).
func (f *Faction) AddNews(turn uint64, limit int, format string, args ...any) {
	f.News = append(f.News, NewsEntry{Turn: turn, Text: fmt.Sprintf(format, args...)})
	if limit > 0 && len(f.News) > limit {
		f.News = f.News[len(f.News)-limit:]
	}
}

// observeReputation widens the historical extremes to include v.
func (f *Faction) observeReputation(v int) {
	if v > f.MaxReputation {
		f.MaxReputation = v
	}
	if v < f.MinReputation {
		f.MinReputation = v
	}
}

func (f *Faction) String() string {
	return f.Name
}

// Palette of display colors assigned to generated factions in order.
var Palette = []string{"red", "cyan", "yellow", "green", "magenta", "blue", "white", "orange"}

// SeedNames are the names given to generated factions in order.
var SeedNames = []string{
	"Solar Concord",
	"Free Miners' Union",
	"Crimson Syndicate",
	"Arcturan League",
	"Void Covenant",
	"Helix Directorate",
	"Outer Rim Cartel",
	"Meridian Trust",
}

// SeedFactions creates n factions with names and colors from the seed lists.
func SeedFactions(n, economy int) []*Faction {
	out := make([]*Faction, 0, n)
	for i := 0; i < n; i++ {
		name := fmt.Sprintf("Faction %d", i+1)
		if i < len(SeedNames) {
			name = SeedNames[i]
		}
		color := Palette[i%len(Palette)]
		out = append(out, NewFaction(FactionID(i+1), name, color, economy))
	}
	return out
}
