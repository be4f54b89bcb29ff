// Package ai implements the action-selection policies a team consults each
// round. Every policy sees the same Situation and answers with one combat.Action.
package ai

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/cory-johannsen/arena/internal/game/combat"
	"github.com/cory-johannsen/arena/internal/game/creature"
	"github.com/cory-johannsen/arena/internal/game/dice"
)

// Situation is everything a policy may consult when choosing an action.
type Situation struct {
	// Mine is the deciding side's active creature.
	Mine *creature.Creature
	// Theirs is the opposing active creature.
	Theirs *creature.Creature
	// HealsRemaining is the deciding side's heal counter.
	HealsRemaining int
}

// Policy chooses an action for one side.
type Policy interface {
	// Choose returns a playable action or an error.
	//
	// Precondition: s.Mine and s.Theirs must be non-nil.
	Choose(s Situation) (combat.Action, error)
}

// PolicyFunc adapts a function to Policy.
type PolicyFunc func(s Situation) (combat.Action, error)

// Choose calls f(s).
func (f PolicyFunc) Choose(s Situation) (combat.Action, error) { return f(s) }

// Kind names a built-in policy.
type Kind string

const (
	KindAlwaysAttack         Kind = "always_attack"
	KindSwapOnSuperEffective Kind = "swap_on_super_effective"
	KindRandom               Kind = "random"
	KindUserInput            Kind = "user_input"
	KindScript               Kind = "script"
)

var kinds = []Kind{KindAlwaysAttack, KindSwapOnSuperEffective, KindRandom, KindUserInput, KindScript}

// ParseKind converts a case-insensitive policy name into a Kind.
//
// Postcondition: returns a known Kind or a non-nil error.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range kinds {
		if k == known {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown policy %q", s)
}

// Deps carries the collaborators a policy kind may need.
type Deps struct {
	// Source drives the random policy.
	Source dice.Source
	// Input and Output drive the user-input policy.
	Input  io.Reader
	Output io.Writer
	// Scripts, VM and Hook drive the script policy. Hook defaults to DefaultHook.
	Scripts ScriptCaller
	VM      string
	Hook    string
}

// New builds the policy named by kind.
//
// Postcondition: returns a non-nil Policy, or an error when kind is unknown
// or a dependency it needs is missing.
func New(kind Kind, deps Deps) (Policy, error) {
	switch kind {
	case KindAlwaysAttack:
		return AlwaysAttack{}, nil
	case KindSwapOnSuperEffective:
		return SwapOnSuperEffective{}, nil
	case KindRandom:
		if deps.Source == nil {
			return nil, errors.New("ai: random policy requires a source")
		}
		return NewRandom(deps.Source), nil
	case KindUserInput:
		if deps.Input == nil {
			return nil, errors.New("ai: user_input policy requires an input reader")
		}
		return NewPrompt(deps.Input, deps.Output), nil
	case KindScript:
		if deps.Scripts == nil || deps.VM == "" {
			return nil, errors.New("ai: script policy requires a script caller and a VM name")
		}
		return NewScripted(deps.Scripts, deps.VM, deps.Hook), nil
	default:
		return nil, fmt.Errorf("ai: unknown policy kind %q", kind)
	}
}
