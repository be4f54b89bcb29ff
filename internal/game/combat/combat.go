// Package combat implements the round-resolution engine: action precedence,
// attack resolution and the turn loop that plays one match between two sides.
package combat

import "github.com/cory-johannsen/arena/internal/game/creature"

// Outcome is the result of a match. The numeric values are part of the
// external contract: 0 draw, 1 first side wins, 2 second side wins.
type Outcome int

const (
	Draw      Outcome = 0
	Team1Wins Outcome = 1
	Team2Wins Outcome = 2
)

// String returns a human-readable outcome label.
func (o Outcome) String() string {
	switch o {
	case Draw:
		return "draw"
	case Team1Wins:
		return "team 1 wins"
	case Team2Wins:
		return "team 2 wins"
	default:
		return "unknown"
	}
}

// Side is the contract the engine requires of each team taking part in a match.
// The engine never inspects how a side stores its creatures.
type Side interface {
	// Name identifies the side in logs and events.
	Name() string
	// IsEmpty reports whether the side has no creature left in reserve.
	IsEmpty() bool
	// Retrieve removes and returns the next creature, or nil when empty.
	Retrieve() *creature.Creature
	// Return re-admits a non-fainted creature and clears its status; fainted creatures are dropped.
	Return(c *creature.Creature)
	// Special reorders the creatures in reserve.
	Special()
	// ChooseAction decides this round's action for mine facing theirs.
	ChooseAction(mine, theirs *creature.Creature) (Action, error)
	// HealsRemaining returns the number of heals the side may still use.
	HealsRemaining() int
	// UseHeal consumes one heal.
	UseHeal()
}

// Result summarises a finished match.
type Result struct {
	Outcome Outcome
	// Rounds is the number of rounds played.
	Rounds int
	// HealExhausted records which sides asked for a heal with none remaining.
	HealExhausted [2]bool
	// Events is the ordered trace of everything that happened.
	Events []RoundEvent
}
