package combat

import (
	"fmt"

	"github.com/cory-johannsen/arena/internal/game/creature"
)

// EventKind classifies a RoundEvent.
type EventKind int

const (
	EventSendOut EventKind = iota
	EventChoose
	EventAttack
	EventHeal
	EventSwap
	EventSpecial
	EventHealExhausted
	EventAttrition
	EventFaint
	EventLevelUp
	EventEvolve
)

// String returns the event kind label.
func (k EventKind) String() string {
	switch k {
	case EventSendOut:
		return "send out"
	case EventChoose:
		return "choose"
	case EventAttack:
		return "attack"
	case EventHeal:
		return "heal"
	case EventSwap:
		return "swap"
	case EventSpecial:
		return "special"
	case EventHealExhausted:
		return "heal exhausted"
	case EventAttrition:
		return "attrition"
	case EventFaint:
		return "faint"
	case EventLevelUp:
		return "level up"
	case EventEvolve:
		return "evolve"
	default:
		return "unknown"
	}
}

// RoundEvent records one step of a match.
type RoundEvent struct {
	Round int
	// Side is 1 or 2.
	Side   int
	Kind   EventKind
	Action Action
	// Actor is the rendering of the acting creature after the step, e.g. "LV. 1 Charmander: 9 HP".
	Actor        string
	AttackResult *AttackResult // nil unless Kind == EventAttack
	Narrative    string
}

func (m *match) record(side int, kind EventKind, action Action, actor *creature.Creature, r *AttackResult, narrative string) {
	ev := RoundEvent{
		Round:        m.round,
		Side:         side + 1,
		Kind:         kind,
		Action:       action,
		AttackResult: r,
		Narrative:    narrative,
	}
	if actor != nil {
		ev.Actor = actor.String()
	}
	m.events = append(m.events, ev)
}

// field retrieves a new active creature for side i. When the side has nothing
// left to send out the current active stays in place.
func (m *match) field(i int) {
	c := m.sides[i].Retrieve()
	if c == nil {
		return
	}
	m.active[i] = c
	m.record(i, EventSendOut, ActionUnknown, c, nil, fmt.Sprintf("%s sends out %s.", m.sides[i].Name(), c.Name()))
}

// apply resolves a single side's action against the current state, which the
// other side may already have changed this round. A fainted active still acts:
// HEAL revives it, SWAP and SPECIAL drop it and send out a replacement.
func (m *match) apply(i int, a Action) error {
	me := m.active[i]
	switch a {
	case ActionAttack:
		m.attack(i)
	case ActionHeal:
		me.Heal()
		m.sides[i].UseHeal()
		m.record(i, EventHeal, a, me, nil, fmt.Sprintf("%s heals %s (%d heals left).", m.sides[i].Name(), me.Name(), m.sides[i].HealsRemaining()))
	case ActionSwap:
		m.sides[i].Return(me)
		m.record(i, EventSwap, a, me, nil, fmt.Sprintf("%s recalls %s.", m.sides[i].Name(), me.Name()))
		m.field(i)
	case ActionSpecial:
		m.sides[i].Return(me)
		m.sides[i].Special()
		m.record(i, EventSpecial, a, me, nil, fmt.Sprintf("%s recalls %s and reorders its reserve.", m.sides[i].Name(), me.Name()))
		m.field(i)
	default:
		return fmt.Errorf("side %d (%s): cannot apply action %s", i+1, m.sides[i].Name(), a)
	}
	return nil
}

// attack makes side i's active creature attack the opposing active creature.
func (m *match) attack(i int) {
	me, them := m.active[i], m.active[1-i]
	r := ResolveAttack(me, them, m.src)
	var narrative string
	switch {
	case r.Asleep:
		narrative = fmt.Sprintf("%s is asleep.", me.Name())
	case r.SelfHit:
		narrative = fmt.Sprintf("%s is confused and hits itself for %d.", me.Name(), r.Loss)
	default:
		narrative = fmt.Sprintf("%s attacks %s for %d.", me.Name(), them.Name(), r.Loss)
	}
	if r.Inflicted {
		narrative += fmt.Sprintf(" Status %s inflicted.", r.Status)
	}
	m.record(i, EventAttack, ActionAttack, me, &r, narrative)
}

// pairedAttack resolves both sides attacking. The faster creature strikes
// first and the other counters only if still standing; on a speed tie side 1
// strikes first and side 2 always strikes back.
func (m *match) pairedAttack() {
	s1, s2 := m.active[0].Speed(), m.active[1].Speed()
	switch {
	case s1 > s2:
		m.attack(0)
		if !m.active[1].IsFainted() {
			m.attack(1)
		}
	case s2 > s1:
		m.attack(1)
		if !m.active[0].IsFainted() {
			m.attack(0)
		}
	default:
		m.attack(0)
		m.attack(1)
	}
}

// resolveActions applies both chosen actions in precedence order.
func (m *match) resolveActions(a [2]Action) error {
	switch Precedence(a[0], a[1]) {
	case Equal:
		if a[0] == ActionAttack {
			m.pairedAttack()
			return nil
		}
		if err := m.apply(0, a[0]); err != nil {
			return err
		}
		return m.apply(1, a[1])
	case FirstWins:
		if err := m.apply(0, a[0]); err != nil {
			return err
		}
		return m.apply(1, a[1])
	default:
		if err := m.apply(1, a[1]); err != nil {
			return err
		}
		return m.apply(0, a[0])
	}
}

// attrition costs both actives 1 hp when both survived the round's actions.
//
// Postcondition: returns true iff both actives are still standing afterwards.
func (m *match) attrition() bool {
	if m.active[0].IsFainted() || m.active[1].IsFainted() {
		return false
	}
	for i, c := range m.active {
		c.LoseHP(1)
		m.record(i, EventAttrition, ActionUnknown, c, nil, fmt.Sprintf("%s loses 1 hp to attrition.", c.Name()))
	}
	return !m.active[0].IsFainted() && !m.active[1].IsFainted()
}

// resolveFaints discards fainted actives and levels up a lone survivor.
//
// Postcondition: returns true when the survivor's side is empty but the
// survivor must keep fighting the opposing side's reserve.
func (m *match) resolveFaints() bool {
	f1, f2 := m.active[0].IsFainted(), m.active[1].IsFainted()
	switch {
	case f1 && f2:
		for i, c := range m.active {
			m.record(i, EventFaint, ActionUnknown, c, nil, fmt.Sprintf("%s fainted.", c.Name()))
			m.sides[i].Return(c)
		}
		return false
	case f1 || f2:
		loser := 0
		if f2 {
			loser = 1
		}
		winner := 1 - loser
		w, l := m.active[winner], m.active[loser]
		w.LevelUp()
		m.record(loser, EventFaint, ActionUnknown, l, nil, fmt.Sprintf("%s fainted.", l.Name()))
		m.record(winner, EventLevelUp, ActionUnknown, w, nil, fmt.Sprintf("%s grew to level %d.", w.Name(), w.Level))
		m.sides[loser].Return(l)
		if m.sides[loser].IsEmpty() {
			m.sides[winner].Return(w)
		}
		return m.sides[winner].IsEmpty()
	default:
		return false
	}
}

// evolveSurvivors replaces every standing active that has reached its
// evolution level with its successor.
func (m *match) evolveSurvivors() error {
	for i, c := range m.active {
		if c.IsFainted() || !c.CanEvolve() || !c.ShouldEvolve() {
			continue
		}
		next, err := c.Evolve()
		if err != nil {
			return fmt.Errorf("side %d (%s): %w", i+1, m.sides[i].Name(), err)
		}
		m.active[i] = next
		m.record(i, EventEvolve, ActionUnknown, next, nil, fmt.Sprintf("%s evolved into %s.", c.Name(), next.Name()))
	}
	return nil
}
