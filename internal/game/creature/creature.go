package creature

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ErrNonPositiveHP is returned when a creature would be created with max hp <= 0.
var ErrNonPositiveHP = errors.New("max hp must be greater than zero")

// Creature is a single combatant.
//
// Invariant: IsFainted() == (HP <= 0). HP may be negative until the fainted check runs.
type Creature struct {
	// ID uniquely identifies this instance; an evolved successor gets a fresh ID.
	ID      string
	Level   int
	HP      int
	MaxHP   int
	Status  Status
	species *Species
}

// New creates a creature of species sp at the species' base level with full hp.
//
// Precondition: sp must not be nil.
// Postcondition: returns a creature with HP == MaxHP > 0, or an error wrapping ErrNonPositiveHP.
func New(sp *Species) (*Creature, error) {
	if sp == nil {
		return nil, errors.New("creature.New: species must not be nil")
	}
	hp := sp.HP.At(sp.BaseLevel)
	if hp <= 0 {
		return nil, fmt.Errorf("creature.New: %s: %w", sp.Name, ErrNonPositiveHP)
	}
	return &Creature{
		ID:      uuid.New().String(),
		Level:   sp.BaseLevel,
		HP:      hp,
		MaxHP:   hp,
		species: sp,
	}, nil
}

// Species returns the species definition of c.
func (c *Creature) Species() *Species { return c.species }

// Name returns the species display name.
func (c *Creature) Name() string { return c.species.Name }

// Element returns the species element.
func (c *Creature) Element() Element { return c.species.Element }

// IsFainted reports whether hp has dropped to zero or below.
func (c *Creature) IsFainted() bool { return c.HP <= 0 }

// Speed returns the current speed, halved (truncated) under Paralysis.
func (c *Creature) Speed() int {
	speed := c.species.Speed.At(c.Level)
	if c.Status == Paralysis {
		return int(float64(speed) * 0.5)
	}
	return speed
}

// AttackPower returns the untruncated attack value, halved under Burn.
// The attack resolver scales this by the element multiplier before truncating.
func (c *Creature) AttackPower() float64 {
	attack := float64(c.species.Attack.At(c.Level))
	if c.Status == Burn {
		attack *= 0.5
	}
	return attack
}

// AttackDamage returns AttackPower truncated toward zero.
func (c *Creature) AttackDamage() int { return int(c.AttackPower()) }

// Defence returns the current defence.
func (c *Creature) Defence() int { return c.species.Defence.At(c.Level) }

// Defend returns the hp c loses when hit for damage, per its species rule.
//
// Precondition: damage >= 0.
// Postcondition: returns >= 0.
func (c *Creature) Defend(damage int) int {
	return c.species.Defend.Apply(damage, c.Defence())
}

// LoseHP subtracts n from hp without flooring.
func (c *Creature) LoseHP(n int) { c.HP -= n }

// Heal restores hp to max and clears any status.
//
// Postcondition: HP == MaxHP and Status == StatusNone.
func (c *Creature) Heal() {
	c.HP = c.MaxHP
	c.Status = StatusNone
}

// LevelUp raises the level by one and rescales max hp, keeping the absolute hp deficit.
//
// Postcondition: Level is incremented; MaxHP-HP is unchanged.
func (c *Creature) LevelUp() {
	c.Level++
	newMax := c.species.HP.At(c.Level)
	c.HP = newMax - (c.MaxHP - c.HP)
	c.MaxHP = newMax
}

// CanEvolve reports whether the species has a successor.
func (c *Creature) CanEvolve() bool { return c.species.CanEvolve() }

// ShouldEvolve reports whether c has reached its species' evolution level.
func (c *Creature) ShouldEvolve() bool {
	return c.species.CanEvolve() && c.Level >= c.species.EvolveAt
}

// Evolve returns a new creature of the successor species. The successor keeps
// c's status and hp deficit; when the species inherits level it is levelled up
// to c's level first.
//
// Precondition: c.CanEvolve() is true.
// Postcondition: result.MaxHP - result.HP == c.MaxHP - c.HP.
func (c *Creature) Evolve() (*Creature, error) {
	if !c.CanEvolve() {
		return nil, fmt.Errorf("%s cannot evolve", c.Name())
	}
	next, err := New(c.species.Successor)
	if err != nil {
		return nil, fmt.Errorf("evolving %s: %w", c.Name(), err)
	}
	next.Status = c.Status
	next.LoseHP(c.MaxHP - c.HP)
	if c.species.InheritLevel {
		for next.Level < c.Level {
			next.LevelUp()
		}
	}
	return next, nil
}

// String renders c as "LV. <level> <name>: <hp> HP".
func (c *Creature) String() string {
	return fmt.Sprintf("LV. %d %s: %d HP", c.Level, c.Name(), c.HP)
}
