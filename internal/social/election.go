// Elections: periodic or emergency leadership votes within a faction.
package social

import (
	"errors"
	"fmt"
	"sort"
)

var (
	ErrNoCandidates   = errors.New("election has no candidates")
	ErrBadCandidate   = errors.New("candidate index out of range")
	ErrAlreadyDecided = errors.New("election already decided")
)

// Member is the slice of a ship an election needs: identity and standing.
type Member struct {
	ID         uint64
	Reputation int
	Human      bool
}

// Election is the transient state of one faction vote.
type Election struct {
	Faction    FactionID `json:"faction"`
	Emergency  bool      `json:"emergency"`           // Leader was lost rather than term expiring
	Incumbent  *uint64   `json:"incumbent,omitempty"` // Leader at the time the election opened
	Candidates []uint64  `json:"candidates"`
	Votes      []int     `json:"votes"`
	Opened     uint64    `json:"opened"`

	// AwaitingPlayer is set while the election waits for the human's ballot.
	AwaitingPlayer bool `json:"awaiting_player"`
	decided        bool
}

// NewElection selects up to n candidates: the members with the highest
// reputation, ties kept in membership order.
func NewElection(f *Faction, members []Member, n int, emergency bool, turn uint64) (*Election, error) {
	if n < 1 || len(members) == 0 {
		return nil, ErrNoCandidates
	}

	ranked := make([]Member, len(members))
	copy(ranked, members)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Reputation > ranked[j].Reputation
	})
	if len(ranked) > n {
		ranked = ranked[:n]
	}

	e := &Election{
		Faction:   f.ID,
		Emergency: emergency,
		Opened:    turn,
	}
	if f.LeaderID != nil {
		id := *f.LeaderID
		e.Incumbent = &id
	}
	for _, m := range ranked {
		e.Candidates = append(e.Candidates, m.ID)
	}
	e.Votes = make([]int, len(e.Candidates))
	return e, nil
}

// IsCandidate reports whether a ship is on the ballot.
func (e *Election) IsCandidate(id uint64) bool {
	return e.CandidateIndex(id) >= 0
}

// CandidateIndex returns the ballot position of a ship, or -1.
func (e *Election) CandidateIndex(id uint64) int {
	for i, c := range e.Candidates {
		if c == id {
			return i
		}
	}
	return -1
}

// Vote records one ballot for the candidate at index.
func (e *Election) Vote(index int) error {
	if e.decided {
		return ErrAlreadyDecided
	}
	if index < 0 || index >= len(e.Candidates) {
		return fmt.Errorf("vote %d of %d: %w", index, len(e.Candidates), ErrBadCandidate)
	}
	e.Votes[index]++
	return nil
}

// Winner returns the candidate with the most votes, ties broken toward the
// earliest ballot position, and marks the election decided.
func (e *Election) Winner() (uint64, error) {
	if len(e.Candidates) == 0 {
		return 0, ErrNoCandidates
	}
	best := BestIndex(e.Votes)
	e.decided = true
	e.AwaitingPlayer = false
	return e.Candidates[best], nil
}

// Reelected reports whether the given winner is the incumbent.
func (e *Election) Reelected(winner uint64) bool {
	return e.Incumbent != nil && *e.Incumbent == winner
}

// BestIndex returns the index of the highest value, ties broken toward the
// lowest index. Returns 0 for an empty slice.
func BestIndex(values []int) int {
	best := 0
	for i := 1; i < len(values); i++ {
		if values[i] > values[best] {
			best = i
		}
	}
	return best
}
