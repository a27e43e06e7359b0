package world

import (
	"fmt"
	"strconv"
	"strings"
)

// LocationKind tags the variant a Location holds.
type LocationKind uint8

const (
	Intergalactic LocationKind = iota // Between sectors, at Sector coordinate
	Orbital                           // In orbit of Sector at Orbit
	Landed                            // On Region of the planet at Orbit
	Docked                            // At Station index within Sector
	InBattle                          // Fighting in Battle at Sector/Orbit
)

var kindNames = [...]string{"intergalactic", "orbital", "landed", "docked", "battle"}

func (k LocationKind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("location(%d)", k)
}

// BattleID identifies an active battle.
type BattleID uint64

// Location is a tagged union of ship positions. Only the fields meaningful
// for Kind are set; the zero value of the others keeps Locations comparable
// with ==.
type Location struct {
	Kind    LocationKind `json:"kind"`
	Sector  Coord        `json:"sector"`
	Orbit   int          `json:"orbit,omitempty"`
	Region  int          `json:"region,omitempty"`
	Station int          `json:"station,omitempty"`
	Battle  BattleID     `json:"battle,omitempty"`
}

// InSpace returns the intergalactic location at c.
func InSpace(c Coord) Location {
	return Location{Kind: Intergalactic, Sector: c}
}

// InOrbit returns the orbital location at orbit of sector c.
func InOrbit(c Coord, orbit int) Location {
	return Location{Kind: Orbital, Sector: c, Orbit: orbit}
}

// OnRegion returns the landed location for a region of the planet at orbit.
func OnRegion(c Coord, orbit, region int) Location {
	return Location{Kind: Landed, Sector: c, Orbit: orbit, Region: region}
}

// AtStation returns the docked location at a station.
func AtStation(c Coord, orbit, station int) Location {
	return Location{Kind: Docked, Sector: c, Orbit: orbit, Station: station}
}

// InFight returns the location of a battle participant.
func InFight(c Coord, orbit int, id BattleID) Location {
	return Location{Kind: InBattle, Sector: c, Orbit: orbit, Battle: id}
}

// InSector reports whether the location is bound to a sector.
func (l Location) InSector() bool {
	return l.Kind != Intergalactic
}

// SameOrbit reports whether two locations share a sector orbit, whatever
// their variant.
func (l Location) SameOrbit(o Location) bool {
	return l.InSector() && o.InSector() && l.Sector == o.Sector && l.Orbit == o.Orbit
}

// Orbital returns the orbit the location sits in, dropping any landing,
// docking or battle detail.
func (l Location) Orbital() Location {
	if !l.InSector() {
		return l
	}
	return InOrbit(l.Sector, l.Orbit)
}

// String formats the location as its persistence descriptor.
func (l Location) String() string {
	return l.Format()
}

// Format returns the text descriptor: "intergalactic X,Y", "orbital X,Y O",
// "landed X,Y O R", "docked X,Y O S" or "battle X,Y O B".
func (l Location) Format() string {
	switch l.Kind {
	case Intergalactic:
		return fmt.Sprintf("%s %s", l.Kind, l.Sector)
	case Orbital:
		return fmt.Sprintf("%s %s %d", l.Kind, l.Sector, l.Orbit)
	case Landed:
		return fmt.Sprintf("%s %s %d %d", l.Kind, l.Sector, l.Orbit, l.Region)
	case Docked:
		return fmt.Sprintf("%s %s %d %d", l.Kind, l.Sector, l.Orbit, l.Station)
	case InBattle:
		return fmt.Sprintf("%s %s %d %d", l.Kind, l.Sector, l.Orbit, l.Battle)
	}
	return l.Kind.String()
}

// ParseLocation reads a descriptor produced by Format.
func ParseLocation(s string) (Location, error) {
	fields := strings.Fields(s)
	if len(fields) < 2 {
		return Location{}, fmt.Errorf("location %q: too few fields", s)
	}

	var kind LocationKind = 255
	for i, n := range kindNames {
		if n == fields[0] {
			kind = LocationKind(i)
		}
	}
	want := map[LocationKind]int{Intergalactic: 2, Orbital: 3, Landed: 4, Docked: 4, InBattle: 4}
	n, ok := want[kind]
	if !ok {
		return Location{}, fmt.Errorf("location %q: unknown kind %q", s, fields[0])
	}
	if len(fields) != n {
		return Location{}, fmt.Errorf("location %q: want %d fields, got %d", s, n, len(fields))
	}

	coord, err := parseCoord(fields[1])
	if err != nil {
		return Location{}, fmt.Errorf("location %q: %w", s, err)
	}
	nums := make([]int, 0, 2)
	for _, f := range fields[2:] {
		v, err := strconv.Atoi(f)
		if err != nil {
			return Location{}, fmt.Errorf("location %q: %w", s, err)
		}
		nums = append(nums, v)
	}

	switch kind {
	case Intergalactic:
		return InSpace(coord), nil
	case Orbital:
		return InOrbit(coord, nums[0]), nil
	case Landed:
		return OnRegion(coord, nums[0], nums[1]), nil
	case Docked:
		return AtStation(coord, nums[0], nums[1]), nil
	default:
		return InFight(coord, nums[0], BattleID(nums[1])), nil
	}
}

func parseCoord(s string) (Coord, error) {
	x, y, ok := strings.Cut(s, ",")
	if !ok {
		return Coord{}, fmt.Errorf("coordinate %q: missing comma", s)
	}
	cx, err := strconv.Atoi(x)
	if err != nil {
		return Coord{}, fmt.Errorf("coordinate %q: %w", s, err)
	}
	cy, err := strconv.Atoi(y)
	if err != nil {
		return Coord{}, fmt.Errorf("coordinate %q: %w", s, err)
	}
	return Coord{X: cx, Y: cy}, nil
}
