// Package dice provides the single injectable randomness source shared by the
// attack resolver, the action-selection policies and roster generation.
//
// Every random draw in a match flows through one Source so that replaying a
// seed together with the same external action choices reproduces the match.
package dice

import "fmt"

// Source is the randomness provider for every draw in a match.
type Source interface {
	// Intn returns a non-negative random int in [0, n).
	//
	// Precondition: n > 0.
	Intn(n int) int
}

// Chance reports whether a percent-in-100 event happens, drawing exactly once from src.
//
// Precondition: src must be non-nil; 0 <= percent <= 100.
// Postcondition: returns src.Intn(100) < percent.
func Chance(src Source, percent int) bool {
	return src.Intn(100) < percent
}

// Between returns a uniformly drawn int in the inclusive range [lo, hi].
//
// Precondition: lo <= hi.
// Postcondition: lo <= result <= hi.
func Between(src Source, lo, hi int) int {
	if hi < lo {
		panic(fmt.Sprintf("dice: Between called with hi %d < lo %d", hi, lo))
	}
	return lo + src.Intn(hi-lo+1)
}

// RollResult holds the audit trail for a single dice expression roll.
//
// Postcondition: Total() == sum(Dice) + Modifier.
type RollResult struct {
	Expression string // expression as written, e.g. "1d4+2"
	Dice       []int  // individual die results before modifier
	Modifier   int    // flat modifier (may be negative)
}

// Total returns the sum of all die results plus the modifier.
func (r RollResult) Total() int {
	total := r.Modifier
	for _, d := range r.Dice {
		total += d
	}
	return total
}

// String returns an audit string such as "1d4+2 → [3] +2 = 5".
//
// Precondition: r.Expression is non-empty.
func (r RollResult) String() string {
	if r.Expression == "" {
		panic("dice: RollResult.String() precondition violated: Expression must be non-empty")
	}
	return fmt.Sprintf("%s → %v %+d = %d", r.Expression, r.Dice, r.Modifier, r.Total())
}
