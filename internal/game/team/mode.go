package team

import (
	"fmt"
	"strings"

	"github.com/cory-johannsen/arena/internal/game/creature"
)

// Mode selects the container discipline of a team. The numeric values match
// the battle modes used in team listings.
type Mode int

const (
	ModeStack   Mode = 0
	ModeQueue   Mode = 1
	ModeOrdered Mode = 2
)

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool { return m >= ModeStack && m <= ModeOrdered }

// String returns the mode label.
func (m Mode) String() string {
	switch m {
	case ModeStack:
		return "stack"
	case ModeQueue:
		return "queue"
	case ModeOrdered:
		return "ordered"
	default:
		return "unknown"
	}
}

// ParseMode accepts a mode label or its number.
//
// Postcondition: returns a valid Mode or a non-nil error.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "stack", "0":
		return ModeStack, nil
	case "queue", "1":
		return ModeQueue, nil
	case "ordered", "2":
		return ModeOrdered, nil
	default:
		return 0, fmt.Errorf("unknown team mode %q", s)
	}
}

// Criterion is the sort key of an ordered team.
type Criterion int

const (
	CriterionNone Criterion = iota
	CriterionSpeed
	CriterionHP
	CriterionLevel
	CriterionDefence
)

// String returns the criterion label.
func (c Criterion) String() string {
	switch c {
	case CriterionSpeed:
		return "speed"
	case CriterionHP:
		return "hp"
	case CriterionLevel:
		return "level"
	case CriterionDefence:
		return "defence"
	default:
		return "none"
	}
}

// ParseCriterion accepts a criterion label. The empty string maps to CriterionNone.
//
// Postcondition: returns a Criterion or a non-nil error.
func ParseCriterion(s string) (Criterion, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return CriterionNone, nil
	case "speed", "spd":
		return CriterionSpeed, nil
	case "hp":
		return CriterionHP, nil
	case "level", "lv":
		return CriterionLevel, nil
	case "defence", "defense", "def":
		return CriterionDefence, nil
	default:
		return CriterionNone, fmt.Errorf("unknown criterion %q", s)
	}
}

// Key evaluates the criterion on c at the time of the call.
//
// Precondition: c is not CriterionNone.
func (c Criterion) Key(cr *creature.Creature) int {
	switch c {
	case CriterionSpeed:
		return cr.Speed()
	case CriterionHP:
		return cr.HP
	case CriterionLevel:
		return cr.Level
	case CriterionDefence:
		return cr.Defence()
	default:
		return 0
	}
}
