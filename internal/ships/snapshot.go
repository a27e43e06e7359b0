package ships

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/talgya/galaxy-sim/internal/catalog"
	"github.com/talgya/galaxy-sim/internal/social"
)

// Snapshot is the flat key/value form of a ship used for saving. The ship
// writes its own state; the simulation adds the "location" and "faction"
// keys, which only it can resolve.
type Snapshot map[string]string

// Snapshot keys written by the ship itself.
const (
	KeyName    = "name"
	KeyHuman   = "human"
	KeyCredits = "credits"
	KeyModules = "modules"
	KeyCargo   = "cargo"
	KeyFlags   = "flags"
	KeyGoal    = "goal"

	KeyLocation = "location"
	KeyFaction  = "faction"

	repPrefix = "rep."
)

// Snapshot captures the ship's own state.
func (s *Ship) Snapshot() Snapshot {
	snap := Snapshot{
		KeyName:    s.Name,
		KeyHuman:   strconv.FormatBool(s.Human),
		KeyCredits: strconv.Itoa(s.Credits()),
		KeyModules: joinModules(s.Modules),
		KeyCargo:   joinModules(s.Cargo),
		KeyGoal:    s.Goal.Kind.String(),
	}
	for kind := catalog.ResourceKind(0); kind < catalog.Credits; kind++ {
		r := s.Resources[kind]
		snap[kind.String()] = fmt.Sprintf("%d/%d", r.Amount, r.Capacity)
	}

	var flags []string
	if s.Shielded {
		flags = append(flags, "shielded")
	}
	if s.Cloaked {
		flags = append(flags, "cloaked")
	}
	snap[KeyFlags] = strings.Join(flags, ",")

	for f, r := range s.Reputation {
		snap[repPrefix+strconv.FormatUint(uint64(f), 10)] = strconv.Itoa(r.Value)
	}
	return snap
}

// Keys returns the snapshot keys in sorted order.
func (snap Snapshot) Keys() []string {
	keys := make([]string, 0, len(snap))
	for k := range snap {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Restore rebuilds a ship from a snapshot. Modules are looked up by name in
// the catalog; resource prices come from the catalog as well. Location and
// faction are left to the caller.
func Restore(id ID, snap Snapshot, cat *catalog.Catalog) (*Ship, error) {
	s := &Ship{
		ID:         id,
		Name:       snap[KeyName],
		Human:      snap[KeyHuman] == "true",
		Reputation: make(map[social.FactionID]*social.Reputation),
	}
	if s.Name == "" {
		return nil, fmt.Errorf("ship %d: snapshot has no name", id)
	}

	for kind := catalog.ResourceKind(0); kind < catalog.Credits; kind++ {
		amount, capacity, err := parseFraction(snap[kind.String()])
		if err != nil {
			return nil, fmt.Errorf("ship %d %s: %w", id, kind, err)
		}
		s.Resources[kind] = Resource{Amount: amount, Capacity: capacity, Price: cat.Resource(kind).Price}
	}
	credits, err := strconv.Atoi(snap[KeyCredits])
	if err != nil {
		return nil, fmt.Errorf("ship %d credits: %w", id, err)
	}
	s.Resources[catalog.Credits] = Resource{Amount: credits, Price: 1}

	if s.Modules, err = splitModules(snap[KeyModules], cat); err != nil {
		return nil, fmt.Errorf("ship %d modules: %w", id, err)
	}
	if s.Cargo, err = splitModules(snap[KeyCargo], cat); err != nil {
		return nil, fmt.Errorf("ship %d cargo: %w", id, err)
	}

	for _, flag := range strings.Split(snap[KeyFlags], ",") {
		switch flag {
		case "shielded":
			s.Shielded = true
		case "cloaked":
			s.Cloaked = true
		}
	}

	for k, v := range snap {
		if !strings.HasPrefix(k, repPrefix) {
			continue
		}
		f, err := strconv.ParseUint(strings.TrimPrefix(k, repPrefix), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("ship %d reputation key %q: %w", id, k, err)
		}
		val, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("ship %d reputation %q: %w", id, k, err)
		}
		s.Reputation[social.FactionID(f)] = &social.Reputation{Faction: social.FactionID(f), Value: val}
	}
	return s, nil
}

func joinModules(mods []catalog.Module) string {
	names := make([]string, len(mods))
	for i, m := range mods {
		names[i] = m.Name
	}
	return strings.Join(names, ",")
}

func splitModules(s string, cat *catalog.Catalog) ([]catalog.Module, error) {
	if s == "" {
		return nil, nil
	}
	var out []catalog.Module
	for _, name := range strings.Split(s, ",") {
		m, ok := cat.Module(name)
		if !ok {
			return nil, fmt.Errorf("unknown module %q", name)
		}
		out = append(out, m)
	}
	return out, nil
}

func parseFraction(s string) (int, int, error) {
	a, c, ok := strings.Cut(s, "/")
	if !ok {
		return 0, 0, fmt.Errorf("malformed amount %q", s)
	}
	amount, err := strconv.Atoi(a)
	if err != nil {
		return 0, 0, err
	}
	capacity, err := strconv.Atoi(c)
	if err != nil {
		return 0, 0, err
	}
	return amount, capacity, nil
}
