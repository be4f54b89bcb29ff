package creature

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed species.yaml
var defaultSpeciesYAML []byte

// Formula is a level-scaled stat: Base + (level*PerLevel)/Divisor using integer division.
// A zero Divisor is treated as 1.
type Formula struct {
	Base     int `yaml:"base"`
	PerLevel int `yaml:"per_level"`
	Divisor  int `yaml:"divisor"`
}

// At evaluates the formula at level.
//
// Precondition: level >= 1.
func (f Formula) At(level int) int {
	div := f.Divisor
	if div == 0 {
		div = 1
	}
	return f.Base + (level*f.PerLevel)/div
}

// DefendRule describes how a species mitigates incoming damage.
type DefendRule struct {
	// Rule is "identity" (all damage taken) or "threshold".
	Rule string `yaml:"rule"`
	// Scale and Offset give the threshold as defence*Scale + Offset.
	Scale  int `yaml:"scale"`
	Offset int `yaml:"offset"`
	// Inclusive selects >= instead of > when comparing damage to the threshold.
	Inclusive bool `yaml:"inclusive"`
	// Above is applied when damage clears the threshold: "full" or "double".
	Above string `yaml:"above"`
	// Below is applied otherwise: "half", "full" or "zero".
	Below string `yaml:"below"`
}

// Apply returns the hp lost when damage is dealt to a creature whose current defence is defence.
func (r DefendRule) Apply(damage, defence int) int {
	if r.Rule == "identity" {
		return damage
	}
	threshold := defence*r.Scale + r.Offset
	cleared := damage > threshold
	if r.Inclusive {
		cleared = damage >= threshold
	}
	if cleared {
		return factor(r.Above, damage)
	}
	return factor(r.Below, damage)
}

func factor(name string, damage int) int {
	switch name {
	case "double":
		return 2 * damage
	case "half":
		return damage / 2
	case "zero":
		return 0
	default:
		return damage
	}
}

func (r DefendRule) validate() error {
	switch r.Rule {
	case "identity":
		return nil
	case "threshold":
	default:
		return fmt.Errorf("unknown defend rule %q", r.Rule)
	}
	if r.Scale < 0 {
		return fmt.Errorf("defend scale must be >= 0, got %d", r.Scale)
	}
	switch r.Above {
	case "full", "double":
	default:
		return fmt.Errorf("defend above must be one of [full, double], got %q", r.Above)
	}
	switch r.Below {
	case "half", "full", "zero":
	default:
		return fmt.Errorf("defend below must be one of [half, full, zero], got %q", r.Below)
	}
	return nil
}

// Evolution describes the successor a species turns into.
type Evolution struct {
	AtLevel      int    `yaml:"at_level"`
	Into         string `yaml:"into"`
	InheritLevel bool   `yaml:"inherit_level"`
}

// speciesDef is the on-disk representation of one species.
type speciesDef struct {
	ID        string     `yaml:"id"`
	Name      string     `yaml:"name"`
	Element   string     `yaml:"element"`
	BaseLevel int        `yaml:"base_level"`
	HP        Formula    `yaml:"hp"`
	Speed     Formula    `yaml:"speed"`
	Attack    Formula    `yaml:"attack"`
	Defence   Formula    `yaml:"defence"`
	Defend    DefendRule `yaml:"defend"`
	Evolution *Evolution `yaml:"evolution"`
}

type speciesFile struct {
	Roster  []string     `yaml:"roster"`
	Species []speciesDef `yaml:"species"`
}

// Species is the immutable definition shared by every creature of one kind.
type Species struct {
	ID        string
	Name      string
	Element   Element
	BaseLevel int
	HP        Formula
	Speed     Formula
	Attack    Formula
	Defence   Formula
	Defend    DefendRule
	// EvolveAt is the level at which ShouldEvolve turns true; 0 when the species cannot evolve.
	EvolveAt     int
	InheritLevel bool
	// Successor is nil when the species cannot evolve.
	Successor *Species
}

// CanEvolve reports whether the species has a successor.
func (s *Species) CanEvolve() bool { return s.Successor != nil }

// Registry holds all known species keyed by ID plus the roster order used to
// expand team compositions.
type Registry struct {
	species map[string]*Species
	roster  []*Species
}

// Get returns the species for id, or (nil, false) if not found.
func (r *Registry) Get(id string) (*Species, bool) {
	s, ok := r.species[id]
	return s, ok
}

// Roster returns a copy of the roster slots in composition order.
func (r *Registry) Roster() []*Species {
	out := make([]*Species, len(r.roster))
	copy(out, r.roster)
	return out
}

// All returns a snapshot slice of every registered species.
func (r *Registry) All() []*Species {
	out := make([]*Species, 0, len(r.species))
	for _, s := range r.species {
		out = append(out, s)
	}
	return out
}

// ErrInvalidSpecies is wrapped by every species table validation failure.
var ErrInvalidSpecies = errors.New("invalid species table")

// LoadRegistry parses a species table in YAML form and links successors.
//
// Precondition: data is a YAML document with "roster" and "species" keys.
// Postcondition: returns a fully linked Registry, or an error wrapping ErrInvalidSpecies.
func LoadRegistry(data []byte) (*Registry, error) {
	var file speciesFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("parsing species table: %w", err)
	}

	reg := &Registry{species: make(map[string]*Species, len(file.Species))}
	for _, def := range file.Species {
		sp, err := def.build()
		if err != nil {
			return nil, fmt.Errorf("%w: species %q: %v", ErrInvalidSpecies, def.ID, err)
		}
		if _, dup := reg.species[sp.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate species %q", ErrInvalidSpecies, sp.ID)
		}
		reg.species[sp.ID] = sp
	}

	for _, def := range file.Species {
		if def.Evolution == nil {
			continue
		}
		next, ok := reg.species[def.Evolution.Into]
		if !ok {
			return nil, fmt.Errorf("%w: species %q evolves into unknown species %q", ErrInvalidSpecies, def.ID, def.Evolution.Into)
		}
		reg.species[def.ID].Successor = next
	}
	for _, sp := range reg.species {
		if err := checkChain(sp); err != nil {
			return nil, err
		}
	}

	if len(file.Roster) == 0 {
		return nil, fmt.Errorf("%w: roster must not be empty", ErrInvalidSpecies)
	}
	for _, id := range file.Roster {
		sp, ok := reg.species[id]
		if !ok {
			return nil, fmt.Errorf("%w: roster names unknown species %q", ErrInvalidSpecies, id)
		}
		reg.roster = append(reg.roster, sp)
	}
	return reg, nil
}

// LoadFile reads and parses the species table at path.
//
// Precondition: path names a readable YAML file.
// Postcondition: returns a linked Registry or a non-nil error.
func LoadFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading species table %q: %w", path, err)
	}
	return LoadRegistry(data)
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
)

// DefaultRegistry returns the registry parsed from the embedded species table.
// It panics if the embedded table is malformed.
func DefaultRegistry() *Registry {
	defaultOnce.Do(func() {
		reg, err := LoadRegistry(defaultSpeciesYAML)
		if err != nil {
			panic("creature: embedded species table: " + err.Error())
		}
		defaultRegistry = reg
	})
	return defaultRegistry
}

func (d speciesDef) build() (*Species, error) {
	if d.ID == "" {
		return nil, errors.New("id must not be empty")
	}
	if d.Name == "" {
		return nil, errors.New("name must not be empty")
	}
	elem, err := ParseElement(d.Element)
	if err != nil {
		return nil, err
	}
	if d.BaseLevel < 1 {
		return nil, fmt.Errorf("base_level must be >= 1, got %d", d.BaseLevel)
	}
	for name, f := range map[string]Formula{"hp": d.HP, "speed": d.Speed, "attack": d.Attack, "defence": d.Defence} {
		if f.Divisor < 0 {
			return nil, fmt.Errorf("%s divisor must be >= 0, got %d", name, f.Divisor)
		}
	}
	if hp := d.HP.At(d.BaseLevel); hp <= 0 {
		return nil, fmt.Errorf("hp at base level must be > 0, got %d", hp)
	}
	if err := d.Defend.validate(); err != nil {
		return nil, err
	}
	sp := &Species{
		ID:        d.ID,
		Name:      d.Name,
		Element:   elem,
		BaseLevel: d.BaseLevel,
		HP:        d.HP,
		Speed:     d.Speed,
		Attack:    d.Attack,
		Defence:   d.Defence,
		Defend:    d.Defend,
	}
	if d.Evolution != nil {
		if d.Evolution.AtLevel < 1 {
			return nil, fmt.Errorf("evolution at_level must be >= 1, got %d", d.Evolution.AtLevel)
		}
		sp.EvolveAt = d.Evolution.AtLevel
		sp.InheritLevel = d.Evolution.InheritLevel
	}
	return sp, nil
}

// checkChain rejects evolution cycles reachable from sp.
func checkChain(sp *Species) error {
	seen := map[*Species]bool{}
	for cur := sp; cur != nil; cur = cur.Successor {
		if seen[cur] {
			return fmt.Errorf("%w: evolution cycle through %q", ErrInvalidSpecies, cur.ID)
		}
		seen[cur] = true
	}
	return nil
}
