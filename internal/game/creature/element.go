// Package creature implements combatants, their species table, the elemental
// multiplier matrix and the element-to-status infliction table.
package creature

import (
	"fmt"
	"strings"
)

// Element is the elemental type of a species. The zero value (ElementUnknown)
// is intentionally invalid.
type Element int

const (
	ElementUnknown Element = iota
	Fire
	Grass
	Water
	Ghost
	Normal
)

// String returns the lower-case element name.
// Postcondition: returns one of "fire", "grass", "water", "ghost", "normal" or "unknown".
func (e Element) String() string {
	switch e {
	case Fire:
		return "fire"
	case Grass:
		return "grass"
	case Water:
		return "water"
	case Ghost:
		return "ghost"
	case Normal:
		return "normal"
	default:
		return "unknown"
	}
}

// ParseElement converts a case-insensitive element name into an Element.
//
// Postcondition: returns a valid Element or a non-nil error.
func ParseElement(s string) (Element, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "fire":
		return Fire, nil
	case "grass":
		return Grass, nil
	case "water":
		return Water, nil
	case "ghost":
		return Ghost, nil
	case "normal":
		return Normal, nil
	default:
		return ElementUnknown, fmt.Errorf("unknown element %q", s)
	}
}

// Status is the mutually exclusive status effect held by a creature.
type Status int

const (
	StatusNone Status = iota
	Burn
	Poison
	Paralysis
	Sleep
	Confusion
)

// String returns the lower-case status name.
func (s Status) String() string {
	switch s {
	case StatusNone:
		return "none"
	case Burn:
		return "burn"
	case Poison:
		return "poison"
	case Paralysis:
		return "paralysis"
	case Sleep:
		return "sleep"
	case Confusion:
		return "confusion"
	default:
		return "unknown"
	}
}

// typeChart is indexed [attacker][defender]; row and column 0 belong to ElementUnknown.
var typeChart = [6][6]float64{
	ElementUnknown: {},
	//           unknown fire  grass water ghost normal
	Fire:   {0, 1, 2, 0.5, 1, 1},
	Grass:  {0, 0.5, 1, 2, 1, 1},
	Water:  {0, 2, 0.5, 1, 1, 1},
	Ghost:  {0, 1.25, 1.25, 1.25, 2, 0},
	Normal: {0, 1.25, 1.25, 1.25, 0, 1},
}

// Multiplier returns the damage multiplier for an attack of element attacker
// landing on a defender of element defender.
//
// Precondition: both elements are valid.
// Postcondition: returns 0 for any unknown element.
func Multiplier(attacker, defender Element) float64 {
	if attacker <= ElementUnknown || attacker > Normal || defender <= ElementUnknown || defender > Normal {
		return 0
	}
	return typeChart[attacker][defender]
}

// InflictedStatus returns the status an attacker of element e inflicts on a
// successful infliction roll.
//
// Postcondition: returns StatusNone for ElementUnknown.
func InflictedStatus(e Element) Status {
	switch e {
	case Fire:
		return Burn
	case Grass:
		return Poison
	case Water:
		return Paralysis
	case Ghost:
		return Sleep
	case Normal:
		return Confusion
	default:
		return StatusNone
	}
}
