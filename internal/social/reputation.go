// Reputation ledger: per-ship standing with each faction.
package social

import "golang.org/x/exp/constraints"

// Range is the named band a reputation value falls into.
type Range uint8

const (
	Infamous Range = iota
	Despised
	Disliked
	Neutral
	Liked
	Respected
	Heroic
)

var rangeNames = [...]string{"Infamous", "Despised", "Disliked", "Neutral", "Liked", "Respected", "Heroic"}

func (r Range) String() string {
	if int(r) < len(rangeNames) {
		return rangeNames[r]
	}
	return "Unknown"
}

// Reputation is one ship's standing with one faction.
type Reputation struct {
	Faction FactionID `json:"faction"`
	Value   int       `json:"value"`
}

// Adjust changes the value and records it in the faction's historical extremes.
// f may be nil when the faction is not at hand.
func (r *Reputation) Adjust(delta int, f *Faction) {
	r.Value += delta
	if f != nil {
		f.observeReputation(r.Value)
	}
}

// Classify maps a value to a Range relative to the faction's historical
// extremes. scale is the minimum span used so a young faction does not
// classify small values as extreme.
func Classify(value int, f *Faction, scale int) Range {
	if value == 0 {
		return Neutral
	}

	span := scale
	if value > 0 {
		if f != nil && f.MaxReputation > span {
			span = f.MaxReputation
		}
	} else if f != nil && -f.MinReputation > span {
		span = -f.MinReputation
	}
	if span <= 0 {
		span = 1
	}

	pct := Abs(value) * 100 / span
	switch {
	case value > 0 && pct >= 75:
		return Heroic
	case value > 0 && pct >= 50:
		return Respected
	case value > 0 && pct >= 25:
		return Liked
	case value < 0 && pct >= 75:
		return Infamous
	case value < 0 && pct >= 50:
		return Despised
	case value < 0 && pct >= 25:
		return Disliked
	}
	return Neutral
}

// FadeStep returns how far a value moves toward zero in one fade. The step is
// proportional to the magnitude, inversely proportional to the faction's
// average reputation, at least 1 and never past zero.
func FadeStep(value, avg, divisor, avgScale int) int {
	mag := Abs(value)
	if mag == 0 {
		return 0
	}
	if divisor < 1 {
		divisor = 1
	}
	if avgScale > 0 {
		divisor += Abs(avg) / avgScale
	}
	return Clamp(mag/divisor, 1, mag)
}

// Fade moves the value one step toward zero.
func (r *Reputation) Fade(avg, divisor, avgScale int) {
	step := FadeStep(r.Value, avg, divisor, avgScale)
	if r.Value > 0 {
		r.Value -= step
	} else {
		r.Value += step
	}
}

// Abs returns the absolute value of an integer.
func Abs[T constraints.Signed](v T) T {
	if v < 0 {
		return -v
	}
	return v
}

// Clamp bounds v to [lo, hi].
func Clamp[T constraints.Integer](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
