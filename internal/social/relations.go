// Diplomatic relationships between factions and the rules for changing them.
package social

import (
	"errors"
	"fmt"
	"sort"
)

// RelationType is the diplomatic state between two factions.
type RelationType uint8

const (
	War RelationType = iota
	Peace
	Alliance
)

func (r RelationType) String() string {
	switch r {
	case War:
		return "war"
	case Peace:
		return "peace"
	case Alliance:
		return "alliance"
	}
	return fmt.Sprintf("relation(%d)", r)
}

// ParseRelation maps a relation name to its type.
func ParseRelation(s string) (RelationType, error) {
	switch s {
	case "war":
		return War, nil
	case "peace":
		return Peace, nil
	case "alliance":
		return Alliance, nil
	}
	return 0, fmt.Errorf("unknown relation %q", s)
}

// Pair is an unordered pair of factions, normalized so A < B.
type Pair struct {
	A FactionID
	B FactionID
}

// MakePair normalizes two faction IDs into a Pair.
func MakePair(x, y FactionID) Pair {
	if x > y {
		x, y = y, x
	}
	return Pair{A: x, B: y}
}

// Other returns the member of the pair that is not id.
func (p Pair) Other(id FactionID) FactionID {
	if p.A == id {
		return p.B
	}
	return p.A
}

// Contains reports whether id is a member of the pair.
func (p Pair) Contains(id FactionID) bool {
	return p.A == id || p.B == id
}

// Relationship is the single record kept for a pair of factions.
type Relationship struct {
	Pair Pair         `json:"pair"`
	Type RelationType `json:"type"`
}

var (
	ErrSameFaction     = errors.New("a faction has no relationship with itself")
	ErrUnknownPair     = errors.New("no relationship between these factions")
	ErrNoChange        = errors.New("proposal does not change the relationship")
	ErrInvalidProposal = errors.New("relationship cannot move directly to the proposed type")
)

// Relations holds at most one Relationship per unordered pair.
type Relations struct {
	records map[Pair]*Relationship
}

// NewRelations creates an empty table.
func NewRelations() *Relations {
	return &Relations{records: make(map[Pair]*Relationship)}
}

// Init creates the record for a pair. Re-initializing an existing pair is a
// no-op so a pair never gets a second record.
func (r *Relations) Init(x, y FactionID, t RelationType) error {
	if x == y {
		return ErrSameFaction
	}
	p := MakePair(x, y)
	if _, ok := r.records[p]; ok {
		return nil
	}
	r.records[p] = &Relationship{Pair: p, Type: t}
	return nil
}

// Get returns the relationship type between two factions. A faction is
// always allied with itself.
func (r *Relations) Get(x, y FactionID) (RelationType, error) {
	if x == y {
		return Alliance, nil
	}
	rec, ok := r.records[MakePair(x, y)]
	if !ok {
		return War, ErrUnknownPair
	}
	return rec.Type, nil
}

// Type is Get without the error; unknown pairs read as War.
func (r *Relations) Type(x, y FactionID) RelationType {
	t, _ := r.Get(x, y)
	return t
}

// Pairs returns every record in a stable order.
func (r *Relations) Pairs() []Relationship {
	out := make([]Relationship, 0, len(r.records))
	for _, rec := range r.records {
		out = append(out, *rec)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Pair.A != out[j].Pair.A {
			return out[i].Pair.A < out[j].Pair.A
		}
		return out[i].Pair.B < out[j].Pair.B
	})
	return out
}

// Len returns the number of records.
func (r *Relations) Len() int {
	return len(r.records)
}

// Enemies returns the factions at war with id among the given candidates.
func (r *Relations) Enemies(id FactionID, among []FactionID) []FactionID {
	var out []FactionID
	for _, other := range among {
		if other != id && r.Type(id, other) == War {
			out = append(out, other)
		}
	}
	return out
}

// apply changes a record; only called through Resolve.
func (r *Relations) apply(p Pair, t RelationType) error {
	rec, ok := r.records[p]
	if !ok {
		return ErrUnknownPair
	}
	rec.Type = t
	return nil
}

// ValidTransition reports whether a relationship may move from current to
// proposed in one negotiation.
func ValidTransition(current, proposed RelationType) bool {
	switch proposed {
	case War:
		return current != War
	case Peace:
		return current == War || current == Alliance
	case Alliance:
		return current == Peace
	}
	return false
}

// RequiresConsent reports whether the receiver must accept the change.
// Declaring war and leaving an alliance are unilateral.
func RequiresConsent(current, proposed RelationType) bool {
	switch {
	case proposed == War:
		return false
	case current == Alliance && proposed == Peace:
		return false
	}
	return true
}

// Proposal is a pending offer from one faction to another.
type Proposal struct {
	Chooser  FactionID    `json:"chooser"`
	Receiver FactionID    `json:"receiver"`
	Current  RelationType `json:"current"`
	Proposed RelationType `json:"proposed"`
	Opened   uint64       `json:"opened"`
}

// Pair returns the pair the proposal concerns.
func (p Proposal) Pair() Pair {
	return MakePair(p.Chooser, p.Receiver)
}

// NewProposal validates and builds a proposal against the current table.
func (r *Relations) NewProposal(chooser, receiver FactionID, proposed RelationType, turn uint64) (Proposal, error) {
	current, err := r.Get(chooser, receiver)
	if err != nil {
		return Proposal{}, err
	}
	if current == proposed {
		return Proposal{}, ErrNoChange
	}
	if !ValidTransition(current, proposed) {
		return Proposal{}, fmt.Errorf("%s to %s: %w", current, proposed, ErrInvalidProposal)
	}
	return Proposal{
		Chooser:  chooser,
		Receiver: receiver,
		Current:  current,
		Proposed: proposed,
		Opened:   turn,
	}, nil
}

// Outcome is the result of resolving a proposal.
type Outcome uint8

const (
	OutcomeAccepted   Outcome = iota // Receiver agreed
	OutcomeUnilateral                // Changed without consent
	OutcomeRejected                  // Receiver refused; relationship unchanged
	OutcomeStale                     // The relationship changed since the proposal opened
)

var outcomeNames = [...]string{"accepted", "unilateral", "rejected", "stale"}

func (o Outcome) String() string {
	if int(o) < len(outcomeNames) {
		return outcomeNames[o]
	}
	return fmt.Sprintf("outcome(%d)", o)
}

// Resolve applies a proposal given the receiver's answer. Unilateral changes
// apply regardless of the answer; consent-requiring changes apply only when
// accepted.
func (r *Relations) Resolve(p Proposal, accepted bool) (Outcome, error) {
	current, err := r.Get(p.Chooser, p.Receiver)
	if err != nil {
		return OutcomeRejected, err
	}
	if current != p.Current {
		return OutcomeStale, nil
	}

	if RequiresConsent(p.Current, p.Proposed) {
		if !accepted {
			return OutcomeRejected, nil
		}
		return OutcomeAccepted, r.apply(p.Pair(), p.Proposed)
	}

	if err := r.apply(p.Pair(), p.Proposed); err != nil {
		return OutcomeRejected, err
	}
	if accepted {
		return OutcomeAccepted, nil
	}
	return OutcomeUnilateral, nil
}
