// Package catalog is the read-only table of resources and ship modules.
// The default table is embedded; stations clone it into per-station price lists.
package catalog

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/talgya/galaxy-sim/internal/entropy"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// ResourceKind enumerates the fixed resource slots every ship carries.
type ResourceKind uint8

const (
	Fuel ResourceKind = iota
	Energy
	Ore
	Hull
	Credits
)

// NumResources is the number of resource kinds.
const NumResources = 5

var resourceNames = [NumResources]string{"fuel", "energy", "ore", "hull", "credits"}

func (k ResourceKind) String() string {
	if int(k) < len(resourceNames) {
		return resourceNames[k]
	}
	return fmt.Sprintf("resource(%d)", k)
}

// ParseResource maps a resource name to its kind.
func ParseResource(name string) (ResourceKind, error) {
	for i, n := range resourceNames {
		if strings.EqualFold(n, name) {
			return ResourceKind(i), nil
		}
	}
	return 0, fmt.Errorf("unknown resource %q", name)
}

// UnmarshalYAML reads a resource kind from its name.
func (k *ResourceKind) UnmarshalYAML(node *yaml.Node) error {
	kind, err := ParseResource(node.Value)
	if err != nil {
		return err
	}
	*k = kind
	return nil
}

// MarshalYAML writes a resource kind as its name.
func (k ResourceKind) MarshalYAML() (any, error) {
	return k.String(), nil
}

// ModuleKind categorizes what an installed module does.
type ModuleKind uint8

const (
	KindWeapon ModuleKind = iota
	KindShield
	KindCloak
	KindWarp
	KindRefinery
	KindSolar
	KindScanner
	KindExpander
)

var moduleKindNames = []string{"weapon", "shield", "cloak", "warp", "refinery", "solar", "scanner", "expander"}

func (k ModuleKind) String() string {
	if int(k) < len(moduleKindNames) {
		return moduleKindNames[k]
	}
	return fmt.Sprintf("kind(%d)", k)
}

// UnmarshalYAML reads a module kind from its name.
func (k *ModuleKind) UnmarshalYAML(node *yaml.Node) error {
	for i, n := range moduleKindNames {
		if n == node.Value {
			*k = ModuleKind(i)
			return nil
		}
	}
	return fmt.Errorf("unknown module kind %q", node.Value)
}

// MarshalYAML writes a module kind as its name.
func (k ModuleKind) MarshalYAML() (any, error) {
	return k.String(), nil
}

// Module is an installable ship component.
//
// Amount is kind-specific: damage for weapons, per-turn drain for shields and
// cloaks, capacity added by expanders, units produced by refineries and solar
// arrays, extra sensor range for scanners. Cost is the Resource spent per use.
type Module struct {
	Name        string       `yaml:"name" json:"name"`
	Kind        ModuleKind   `yaml:"kind" json:"kind"`
	Resource    ResourceKind `yaml:"resource" json:"resource"`
	Amount      int          `yaml:"amount" json:"amount"`
	Cost        int          `yaml:"cost" json:"cost"`
	Price       int          `yaml:"price" json:"price"`
	Description string       `yaml:"description,omitempty" json:"description,omitempty"`
}

// IsExpander reports whether the module raises a resource capacity.
func (m Module) IsExpander() bool {
	return m.Kind == KindExpander
}

// ResourceDef describes one resource slot.
type ResourceDef struct {
	Kind     ResourceKind `yaml:"kind"`
	Name     string       `yaml:"name"`
	Price    int          `yaml:"price"`    // Base price per unit
	Capacity int          `yaml:"capacity"` // Base ship capacity (0 = unbounded)
	Expander string       `yaml:"expander,omitempty"`
}

// Catalog is the immutable module and resource table.
type Catalog struct {
	Resources []ResourceDef `yaml:"resources"`
	Modules   []Module      `yaml:"modules"`

	byName map[string]Module
	byKind [NumResources]ResourceDef
}

// Default parses the embedded catalog.
func Default() (*Catalog, error) {
	return Parse(defaultCatalog)
}

// Load reads a catalog file, falling back to the embedded one when path is empty.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return Parse(data)
}

// Parse builds a catalog from YAML and indexes it.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	seen := [NumResources]bool{}
	for _, r := range c.Resources {
		c.byKind[r.Kind] = r
		seen[r.Kind] = true
	}
	for i, ok := range seen {
		if !ok {
			return nil, fmt.Errorf("catalog missing resource %s", ResourceKind(i))
		}
	}

	c.byName = make(map[string]Module, len(c.Modules))
	for _, m := range c.Modules {
		if _, dup := c.byName[m.Name]; dup {
			return nil, fmt.Errorf("catalog module %q defined twice", m.Name)
		}
		c.byName[m.Name] = m
	}
	for _, r := range c.Resources {
		if r.Expander == "" {
			continue
		}
		if m, ok := c.byName[r.Expander]; !ok || !m.IsExpander() {
			return nil, fmt.Errorf("resource %s names unknown expander %q", r.Kind, r.Expander)
		}
	}
	return &c, nil
}

// Module looks up a module by name.
func (c *Catalog) Module(name string) (Module, bool) {
	m, ok := c.byName[name]
	return m, ok
}

// Resource returns the definition of a resource kind.
func (c *Catalog) Resource(kind ResourceKind) ResourceDef {
	return c.byKind[kind]
}

// ExpanderFor returns the expander module that raises the given resource.
func (c *Catalog) ExpanderFor(kind ResourceKind) (Module, bool) {
	name := c.byKind[kind].Expander
	if name == "" {
		return Module{}, false
	}
	return c.Module(name)
}

// ModulesOfKind returns catalog modules of one kind in catalog order.
func (c *Catalog) ModulesOfKind(kind ModuleKind) []Module {
	var out []Module
	for _, m := range c.Modules {
		if m.Kind == kind {
			out = append(out, m)
		}
	}
	return out
}

// PriceList is a station's private copy of catalog prices.
type PriceList struct {
	Resources [NumResources]int
	Modules   map[string]int
}

// PriceList clones catalog prices with a uniform ±variance jitter.
// Credits always trade at 1.
func (c *Catalog) PriceList(rng *entropy.Source, variance float64) PriceList {
	pl := PriceList{Modules: make(map[string]int, len(c.Modules))}
	for _, r := range c.Resources {
		pl.Resources[r.Kind] = jitter(r.Price, variance, rng)
	}
	pl.Resources[Credits] = 1
	for _, m := range c.Modules {
		pl.Modules[m.Name] = jitter(m.Price, variance, rng)
	}
	return pl
}

// ModulePrice returns the station's price for a module, or the catalog price
// when the station does not list it.
func (pl PriceList) ModulePrice(m Module) int {
	if p, ok := pl.Modules[m.Name]; ok {
		return p
	}
	return m.Price
}

func jitter(base int, variance float64, rng *entropy.Source) int {
	if base <= 0 || variance <= 0 || rng == nil {
		return base
	}
	scale := 1 + (rng.Float64()*2-1)*variance
	p := int(float64(base)*scale + 0.5)
	if p < 1 {
		p = 1
	}
	return p
}
