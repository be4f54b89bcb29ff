// Package tower runs a player team through a rotating queue of random
// opponents, each carrying a number of lives.
package tower

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/arena/internal/game/ai"
	"github.com/cory-johannsen/arena/internal/game/combat"
	"github.com/cory-johannsen/arena/internal/game/creature"
	"github.com/cory-johannsen/arena/internal/game/dice"
	"github.com/cory-johannsen/arena/internal/game/team"
)

var (
	// ErrNoPlayer is returned by Next before SetPlayer has been called.
	ErrNoPlayer = errors.New("tower has no player team")
	// ErrInvalidCount is returned by Generate for a non-positive opponent count.
	ErrInvalidCount = errors.New("tower opponent count must be positive")
)

var livesExpr = dice.MustParse("1d9+1")

// Runner plays one match between two sides. *combat.Battle satisfies it.
type Runner interface {
	Run(team1, team2 combat.Side) (combat.Result, error)
}

// Entry is an opponent waiting in the tower.
//
// Invariant: Lives >= 1 while the entry is queued.
type Entry struct {
	Team  *team.Team
	Lives int
}

// Bout is the record of one tower match.
type Bout struct {
	Result   combat.Result
	Player   *team.Team
	Opponent *team.Team
	// Lives is the opponent's remaining lives after the match.
	Lives int
}

// Tower holds the player team and the circular queue of opponents.
//
// Concurrency: a Tower is not safe for concurrent use.
type Tower struct {
	runner   Runner
	src      dice.Source
	registry *creature.Registry
	policy   ai.Policy
	logger   *zap.Logger

	player  *team.Team
	pending []Entry
	last    combat.Outcome
}

// New creates an empty tower.
//
// Precondition: runner, src, reg and policy must be non-nil. policy drives every
// generated opponent.
// Postcondition: returns a tower with no opponents and no player.
func New(runner Runner, src dice.Source, reg *creature.Registry, policy ai.Policy, logger *zap.Logger) *Tower {
	if runner == nil || src == nil || reg == nil || policy == nil {
		panic("tower.New: runner, src, reg and policy must be non-nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Tower{runner: runner, src: src, registry: reg, policy: policy, logger: logger}
}

// SetPlayer sets the team that fights through the tower and restarts iteration.
func (t *Tower) SetPlayer(p *team.Team) {
	t.player = p
	t.last = combat.Draw
}

// Generate replaces the opponents with n random teams named "Team 0".."Team n-1".
// Each opponent gets a stack or queue mode and between 2 and 10 lives.
//
// Postcondition: on success Len() == n.
func (t *Tower) Generate(n int) error {
	if n <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidCount, n)
	}
	pending := make([]Entry, 0, n)
	for i := 0; i < n; i++ {
		mode := team.Mode(dice.Between(t.src, int(team.ModeStack), int(team.ModeQueue)))
		opp, err := team.Random(team.RandomOptions{Name: fmt.Sprintf("Team %d", i), Mode: mode}, t.src, t.registry, t.policy)
		if err != nil {
			return fmt.Errorf("generating tower: %w", err)
		}
		lives := dice.Roll(livesExpr, t.src).Total()
		pending = append(pending, Entry{Team: opp, Lives: lives})
	}
	t.pending = pending
	t.last = combat.Draw
	t.logger.Info("tower generated", zap.Int("opponents", n))
	return nil
}

// Len returns the number of opponents still in the tower.
func (t *Tower) Len() int { return len(t.pending) }

// Entries lists the queued opponents front first.
func (t *Tower) Entries() []Entry { return append([]Entry(nil), t.pending...) }

// Done reports whether iteration has ended: the tower is empty or the
// player lost the previous match.
func (t *Tower) Done() bool {
	return len(t.pending) == 0 || t.last == combat.Team2Wins
}

// Next serves the front opponent, regenerates both teams, plays the match and
// re-queues the opponent at the back if it still has lives. The opponent loses
// a life unless it won.
//
// Postcondition: ok is false, with a zero Bout, when Done() held on entry.
func (t *Tower) Next() (bout Bout, ok bool, err error) {
	if t.player == nil {
		return Bout{}, false, ErrNoPlayer
	}
	if t.Done() {
		return Bout{}, false, nil
	}
	e := t.pending[0]
	t.pending = t.pending[1:]

	if err := t.player.Regenerate(); err != nil {
		return Bout{}, false, err
	}
	if err := e.Team.Regenerate(); err != nil {
		return Bout{}, false, err
	}
	res, err := t.runner.Run(t.player, e.Team)
	if err != nil {
		return Bout{}, false, fmt.Errorf("tower match against %q: %w", e.Team.Name(), err)
	}
	t.last = res.Outcome

	if res.Outcome != combat.Team2Wins {
		e.Lives--
	}
	if e.Lives > 0 {
		t.pending = append(t.pending, e)
	}
	t.logger.Debug("tower match",
		zap.String("opponent", e.Team.Name()),
		zap.Stringer("outcome", res.Outcome),
		zap.Int("lives", e.Lives),
		zap.Int("remaining", len(t.pending)),
	)
	return Bout{Result: res, Player: t.player, Opponent: e.Team, Lives: e.Lives}, true, nil
}

// AvoidDuplicates drops every opponent whose composition holds more than one
// creature of any species. Queue order of the survivors is kept.
func (t *Tower) AvoidDuplicates() {
	kept := t.pending[:0]
	for _, e := range t.pending {
		if !hasDuplicate(e.Team.Composition()) {
			kept = append(kept, e)
		}
	}
	t.pending = kept
}

func hasDuplicate(comp []int) bool {
	for _, n := range comp {
		if n > 1 {
			return true
		}
	}
	return false
}
