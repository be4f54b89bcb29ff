// Package team builds rosters of creatures and exposes them to the combat
// engine through the combat.Side contract.
package team

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/cory-johannsen/arena/internal/game/ai"
	"github.com/cory-johannsen/arena/internal/game/combat"
	"github.com/cory-johannsen/arena/internal/game/creature"
	"github.com/cory-johannsen/arena/internal/game/dice"
)

const (
	// MaxSize is the largest number of creatures a team may hold.
	MaxSize = 6
	// InitialHeals is the heal counter of a new or regenerated team.
	InitialHeals = 3
)

var (
	ErrTeamTooLarge       = errors.New("team exceeds the maximum of 6 creatures")
	ErrCriterionRequired  = errors.New("ordered teams require a criterion")
	ErrInvalidMode        = errors.New("invalid team mode")
	ErrNegativeCount      = errors.New("composition counts must not be negative")
	ErrCompositionTooLong = errors.New("composition has more slots than the roster")
	ErrEmptyName          = errors.New("team name must not be empty")
	ErrPolicyRequired     = errors.New("team requires an action policy")
	ErrInvalidRandomSize  = errors.New("random team size must be between 1 and 6")
	errRegistryRequired   = errors.New("team requires a species registry")
)

var sizeExpr = dice.MustParse("1d4+2")

var _ combat.Side = (*Team)(nil)

// Config describes a team. Composition[i] is the number of creatures of the
// i-th roster species.
type Config struct {
	Name        string
	Mode        Mode
	Criterion   Criterion
	Composition []int
}

// Team is a named roster with a container discipline, a heal counter and an
// action policy. It implements combat.Side.
type Team struct {
	cfg       Config
	registry  *creature.Registry
	policy    ai.Policy
	container Container
	heals     int
}

// New validates cfg and builds the team.
//
// Precondition: reg and policy must be non-nil.
// Postcondition: returns a team holding sum(cfg.Composition) creatures with
// InitialHeals heals, or an error wrapping one of the package's sentinel errors.
func New(cfg Config, reg *creature.Registry, policy ai.Policy) (*Team, error) {
	if err := validate(cfg, reg); err != nil {
		return nil, fmt.Errorf("team %q: %w", cfg.Name, err)
	}
	if policy == nil {
		return nil, fmt.Errorf("team %q: %w", cfg.Name, ErrPolicyRequired)
	}
	cfg.Composition = append([]int(nil), cfg.Composition...)
	t := &Team{cfg: cfg, registry: reg, policy: policy}
	if err := t.Regenerate(); err != nil {
		return nil, err
	}
	return t, nil
}

func validate(cfg Config, reg *creature.Registry) error {
	if reg == nil {
		return errRegistryRequired
	}
	if cfg.Name == "" {
		return ErrEmptyName
	}
	if !cfg.Mode.Valid() {
		return fmt.Errorf("%w: %d", ErrInvalidMode, int(cfg.Mode))
	}
	if cfg.Mode == ModeOrdered && cfg.Criterion == CriterionNone {
		return ErrCriterionRequired
	}
	if len(cfg.Composition) > len(reg.Roster()) {
		return fmt.Errorf("%w: %d slots, roster has %d", ErrCompositionTooLong, len(cfg.Composition), len(reg.Roster()))
	}
	total := 0
	for _, n := range cfg.Composition {
		if n < 0 {
			return ErrNegativeCount
		}
		total += n
	}
	if total > MaxSize {
		return fmt.Errorf("%w: got %d", ErrTeamTooLarge, total)
	}
	return nil
}

// Regenerate rebuilds the container from the composition and resets the heal counter.
//
// Postcondition: Len() == sum(Composition()) and HealsRemaining() == InitialHeals.
func (t *Team) Regenerate() error {
	roster := t.registry.Roster()
	c := newContainer(t.cfg.Mode, t.cfg.Criterion)
	spawn := func(slot int) error {
		for j := 0; j < t.cfg.Composition[slot]; j++ {
			cr, err := creature.New(roster[slot])
			if err != nil {
				return fmt.Errorf("team %q: %w", t.cfg.Name, err)
			}
			c.Return(cr)
		}
		return nil
	}

	switch t.cfg.Mode {
	case ModeStack:
		// Pushed back to front so the first slot comes out first.
		for i := len(t.cfg.Composition) - 1; i >= 0; i-- {
			if err := spawn(i); err != nil {
				return err
			}
		}
	default:
		for i := range t.cfg.Composition {
			if err := spawn(i); err != nil {
				return err
			}
		}
	}
	// Ordered teams are filled ascending and fielded highest key first.
	if t.cfg.Mode == ModeOrdered {
		c.Special()
	}

	t.container = c
	t.heals = InitialHeals
	return nil
}

// RandomOptions configures Random. A zero Size draws the size from 1d4+2.
type RandomOptions struct {
	Name      string
	Mode      Mode
	Criterion Criterion
	Size      int
}

// Random builds a team whose composition splits the team size at random cut
// points: the size and one draw per roster boundary in [0, size] are sorted
// together with 0, and consecutive differences become the per-species counts.
//
// Precondition: src, reg and policy must be non-nil.
// Postcondition: the composition has one entry per roster species and sums to the size.
func Random(opts RandomOptions, src dice.Source, reg *creature.Registry, policy ai.Policy) (*Team, error) {
	if reg == nil {
		return nil, fmt.Errorf("team %q: %w", opts.Name, errRegistryRequired)
	}
	size := opts.Size
	if size == 0 {
		size = dice.Roll(sizeExpr, src).Total()
	}
	if size < 1 || size > MaxSize {
		return nil, fmt.Errorf("team %q: %w: got %d", opts.Name, ErrInvalidRandomSize, size)
	}
	return New(Config{
		Name:        opts.Name,
		Mode:        opts.Mode,
		Criterion:   opts.Criterion,
		Composition: RandomComposition(src, size, len(reg.Roster())),
	}, reg, policy)
}

// RandomComposition splits size into slots counts using slots-1 random cut points.
//
// Precondition: size >= 0; slots >= 1.
// Postcondition: len(result) == slots and sum(result) == size.
func RandomComposition(src dice.Source, size, slots int) []int {
	cuts := []int{0, size}
	for i := 0; i < slots-1; i++ {
		cuts = append(cuts, dice.Between(src, 0, size))
	}
	sort.Ints(cuts)
	comp := make([]int, slots)
	for i := range comp {
		comp[i] = cuts[i+1] - cuts[i]
	}
	return comp
}

// Name returns the team name.
func (t *Team) Name() string { return t.cfg.Name }

// Mode returns the container discipline.
func (t *Team) Mode() Mode { return t.cfg.Mode }

// Criterion returns the sort criterion; CriterionNone unless Mode is ModeOrdered.
func (t *Team) Criterion() Criterion { return t.cfg.Criterion }

// Composition returns a copy of the per-species counts.
func (t *Team) Composition() []int { return append([]int(nil), t.cfg.Composition...) }

// Len returns the number of creatures in reserve.
func (t *Team) Len() int { return t.container.Len() }

// Snapshot lists the reserve in retrieval order.
func (t *Team) Snapshot() []*creature.Creature { return t.container.Snapshot() }

func (t *Team) IsEmpty() bool                { return t.container.IsEmpty() }
func (t *Team) Retrieve() *creature.Creature { return t.container.Retrieve() }
func (t *Team) Return(c *creature.Creature)  { t.container.Return(c) }
func (t *Team) Special()                     { t.container.Special() }
func (t *Team) HealsRemaining() int          { return t.heals }

// UseHeal consumes one heal; the counter never drops below zero.
func (t *Team) UseHeal() {
	if t.heals > 0 {
		t.heals--
	}
}

// ChooseAction asks the team's policy for this round's action.
func (t *Team) ChooseAction(mine, theirs *creature.Creature) (combat.Action, error) {
	return t.policy.Choose(ai.Situation{Mine: mine, Theirs: theirs, HealsRemaining: t.heals})
}

// String renders the team as "<name> (<mode number>): [<creature>, ...]".
func (t *Team) String() string {
	parts := make([]string, 0, t.container.Len())
	for _, c := range t.container.Snapshot() {
		parts = append(parts, c.String())
	}
	return fmt.Sprintf("%s (%d): [%s]", t.cfg.Name, int(t.cfg.Mode), strings.Join(parts, ", "))
}
