package combat

import (
	"fmt"
	"strings"
)

// Action identifies what a side intends to do this round.
// The zero value (ActionUnknown) is intentionally invalid.
type Action int

const (
	ActionUnknown Action = iota // zero value; intentionally invalid
	ActionAttack
	ActionHeal
	ActionSpecial
	ActionSwap
)

// Valid reports whether a is one of the four playable actions.
func (a Action) Valid() bool {
	return a >= ActionAttack && a <= ActionSwap
}

// String returns the human-readable name of the Action.
// Postcondition: returns "attack", "heal", "special", "swap" or "unknown".
func (a Action) String() string {
	switch a {
	case ActionAttack:
		return "attack"
	case ActionHeal:
		return "heal"
	case ActionSpecial:
		return "special"
	case ActionSwap:
		return "swap"
	default:
		return "unknown"
	}
}

// ParseAction converts a case-insensitive action name into an Action.
//
// Postcondition: returns a valid Action or a non-nil error.
func ParseAction(s string) (Action, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "attack":
		return ActionAttack, nil
	case "heal":
		return ActionHeal, nil
	case "special":
		return ActionSpecial, nil
	case "swap":
		return ActionSwap, nil
	default:
		return ActionUnknown, fmt.Errorf("unknown action %q", s)
	}
}

// Ordering is the result of comparing two simultaneously chosen actions.
type Ordering int

const (
	// Equal means both sides chose the same action and it resolves in its paired form.
	Equal Ordering = iota
	// FirstWins means the first action resolves before the second.
	FirstWins
	// SecondWins means the second action resolves before the first.
	SecondWins
)

// String returns a label for the ordering.
func (o Ordering) String() string {
	switch o {
	case Equal:
		return "equal"
	case FirstWins:
		return "first wins"
	case SecondWins:
		return "second wins"
	default:
		return "unknown"
	}
}

// rank maps each action onto its precedence; lower ranks resolve first.
var rank = [...]int{
	ActionUnknown: -1,
	ActionAttack:  0,
	ActionHeal:    1,
	ActionSpecial: 2,
	ActionSwap:    3,
}

// Precedence orders two actions by the fixed ranking ATTACK > HEAL > SPECIAL > SWAP.
//
// Precondition: a1 and a2 are valid actions.
// Postcondition: returns Equal iff a1 == a2; FirstWins iff a1 outranks a2.
func Precedence(a1, a2 Action) Ordering {
	r1, r2 := rank[a1], rank[a2]
	switch {
	case r1 == r2:
		return Equal
	case r1 < r2:
		return FirstWins
	default:
		return SecondWins
	}
}
