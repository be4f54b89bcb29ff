package ai

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/cory-johannsen/arena/internal/game/combat"
	"github.com/cory-johannsen/arena/internal/game/creature"
	"github.com/cory-johannsen/arena/internal/game/dice"
)

// AlwaysAttack chooses ATTACK every round.
type AlwaysAttack struct{}

// Choose returns ActionAttack.
func (AlwaysAttack) Choose(Situation) (combat.Action, error) { return combat.ActionAttack, nil }

// superEffectiveRatio is the factor at which an incoming hit counts as super effective.
const superEffectiveRatio = 1.5

// SwapOnSuperEffective swaps out when the opposing creature's hit on ours would
// be at least 1.5 times its raw attack, and attacks otherwise.
type SwapOnSuperEffective struct{}

// Choose returns ActionSwap or ActionAttack.
func (SwapOnSuperEffective) Choose(s Situation) (combat.Action, error) {
	attack := s.Theirs.AttackPower()
	if attack*creature.Multiplier(s.Theirs.Element(), s.Mine.Element()) >= superEffectiveRatio*attack {
		return combat.ActionSwap, nil
	}
	return combat.ActionAttack, nil
}

// Random picks uniformly from ATTACK, SWAP, HEAL and SPECIAL, leaving HEAL
// out once no heals remain. It takes exactly one draw per decision.
type Random struct {
	src dice.Source
}

// NewRandom creates a Random policy drawing from src.
//
// Precondition: src must not be nil.
func NewRandom(src dice.Source) *Random {
	return &Random{src: src}
}

// Choose draws one action.
func (r *Random) Choose(s Situation) (combat.Action, error) {
	pool := []combat.Action{combat.ActionAttack, combat.ActionSwap, combat.ActionHeal, combat.ActionSpecial}
	if s.HealsRemaining <= 0 {
		pool = []combat.Action{combat.ActionAttack, combat.ActionSwap, combat.ActionSpecial}
	}
	return pool[r.src.Intn(len(pool))], nil
}

// promptOptions maps menu numbers onto actions.
var promptOptions = map[int]combat.Action{
	1: combat.ActionAttack,
	2: combat.ActionSwap,
	3: combat.ActionHeal,
	4: combat.ActionSpecial,
}

// Prompt reads the action from a human, one numbered option per line.
type Prompt struct {
	in  *bufio.Scanner
	out io.Writer
}

// NewPrompt creates a Prompt reading from in and writing the menu to out.
// A nil out suppresses the menu.
//
// Precondition: in must not be nil.
func NewPrompt(in io.Reader, out io.Writer) *Prompt {
	if out == nil {
		out = io.Discard
	}
	return &Prompt{in: bufio.NewScanner(in), out: out}
}

// Choose prints the menu and reads one option.
//
// Postcondition: returns an error on end of input or when the line is not one of 1-4.
func (p *Prompt) Choose(s Situation) (combat.Action, error) {
	fmt.Fprintf(p.out, "%s vs %s\n", s.Mine, s.Theirs)
	fmt.Fprintln(p.out, "Available Actions:")
	fmt.Fprintln(p.out, "(1) Attack")
	fmt.Fprintln(p.out, "(2) Swap")
	fmt.Fprintf(p.out, "(3) Heal [%d left]\n", s.HealsRemaining)
	fmt.Fprintln(p.out, "(4) Special")
	fmt.Fprint(p.out, "Enter Option: ")

	if !p.in.Scan() {
		if err := p.in.Err(); err != nil {
			return combat.ActionUnknown, fmt.Errorf("ai: reading option: %w", err)
		}
		return combat.ActionUnknown, fmt.Errorf("ai: reading option: %w", io.ErrUnexpectedEOF)
	}
	line := strings.TrimSpace(p.in.Text())
	n, err := strconv.Atoi(line)
	if err != nil {
		return combat.ActionUnknown, fmt.Errorf("ai: option %q is not a number", line)
	}
	a, ok := promptOptions[n]
	if !ok {
		return combat.ActionUnknown, fmt.Errorf("ai: option %d out of range 1-4", n)
	}
	return a, nil
}
