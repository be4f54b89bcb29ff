package combat

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/arena/internal/game/creature"
)

// Battle plays matches between two sides using a shared random source.
// A Battle is not safe for concurrent use because the source is not.
type Battle struct {
	src    Source
	logger *zap.Logger
}

// NewBattle creates a Battle.
//
// Precondition: src must not be nil; a nil logger is replaced with a no-op logger.
// Postcondition: returns a ready Battle.
func NewBattle(src Source, logger *zap.Logger) *Battle {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Battle{src: src, logger: logger}
}

// match holds the state of a single Run.
type match struct {
	src       Source
	sides     [2]Side
	active    [2]*creature.Creature
	exhausted [2]bool
	round     int
	events    []RoundEvent
}

// Run plays team1 against team2 until one or both sides are out of creatures
// or a side asks for a heal it no longer has.
//
// Precondition: team1 and team2 must be non-nil and distinct.
// Postcondition: on success Result.Outcome is Draw, Team1Wins or Team2Wins and
// Result.Events is the full ordered trace; a non-nil error is returned when a
// side's policy fails or the sides violate the Side contract.
func (b *Battle) Run(team1, team2 Side) (Result, error) {
	if team1 == nil || team2 == nil {
		return Result{}, errors.New("combat: both sides are required")
	}
	m := &match{src: b.src, sides: [2]Side{team1, team2}}

	var bothAlive, oneAlive bool
	if !team1.IsEmpty() && !team2.IsEmpty() {
		for i := range m.sides {
			m.field(i)
		}
		bothAlive, oneAlive = true, true
	}

	for (!team1.IsEmpty() && !team2.IsEmpty()) || bothAlive || oneAlive {
		m.round++
		for i := range m.active {
			if (m.active[i] == nil || m.active[i].IsFainted()) && !m.sides[i].IsEmpty() {
				m.field(i)
			}
		}

		var actions [2]Action
		for i, side := range m.sides {
			a, err := side.ChooseAction(m.active[i], m.active[1-i])
			if err != nil {
				return m.result(), fmt.Errorf("side %d (%s): choosing action: %w", i+1, side.Name(), err)
			}
			if !a.Valid() {
				return m.result(), fmt.Errorf("side %d (%s): invalid action %d", i+1, side.Name(), int(a))
			}
			actions[i] = a
			m.record(i, EventChoose, a, m.active[i], nil, fmt.Sprintf("%s chooses %s.", side.Name(), a))
		}
		b.logger.Debug("round",
			zap.Int("round", m.round),
			zap.Stringer("active1", m.active[0]),
			zap.Stringer("active2", m.active[1]),
			zap.Stringer("action1", actions[0]),
			zap.Stringer("action2", actions[1]),
		)

		if m.checkHealExhaustion(actions) {
			break
		}
		if err := m.resolveActions(actions); err != nil {
			return m.result(), err
		}
		bothAlive = m.attrition()
		oneAlive = m.resolveFaints()
		if err := m.evolveSurvivors(); err != nil {
			return m.result(), err
		}
	}

	res := m.result()
	b.logger.Info("match finished",
		zap.String("team1", team1.Name()),
		zap.String("team2", team2.Name()),
		zap.Stringer("outcome", res.Outcome),
		zap.Int("rounds", res.Rounds),
	)
	return res, nil
}

// checkHealExhaustion marks every side that chose HEAL with no heals left.
//
// Postcondition: returns true iff at least one side is exhausted; no action
// has been applied in that case.
func (m *match) checkHealExhaustion(a [2]Action) bool {
	found := false
	for i, side := range m.sides {
		if a[i] == ActionHeal && side.HealsRemaining() <= 0 {
			m.exhausted[i] = true
			found = true
			m.record(i, EventHealExhausted, a[i], m.active[i], nil, fmt.Sprintf("%s has no heals left.", side.Name()))
		}
	}
	return found
}

// outcome applies the winner rules in priority order: heal exhaustion first,
// then team emptiness.
func (m *match) outcome() Outcome {
	switch {
	case m.exhausted[0] && m.exhausted[1]:
		return Draw
	case m.exhausted[0]:
		return Team2Wins
	case m.exhausted[1]:
		return Team1Wins
	}
	e1, e2 := m.sides[0].IsEmpty(), m.sides[1].IsEmpty()
	switch {
	case e1 && e2:
		return Draw
	case e1:
		return Team2Wins
	case e2:
		return Team1Wins
	default:
		return Draw
	}
}

func (m *match) result() Result {
	return Result{
		Outcome:       m.outcome(),
		Rounds:        m.round,
		HealExhausted: m.exhausted,
		Events:        m.events,
	}
}
