// Package tournament plays a knockout bracket written in postfix form, where
// "A B + C +" means A plays B and the winner plays C.
package tournament

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/cory-johannsen/arena/internal/game/ai"
	"github.com/cory-johannsen/arena/internal/game/combat"
	"github.com/cory-johannsen/arena/internal/game/creature"
	"github.com/cory-johannsen/arena/internal/game/dice"
	"github.com/cory-johannsen/arena/internal/game/team"
)

// Operator joins the two preceding entries of a bracket into one game.
const Operator = "+"

// MaxAttempts is how many times a drawn game is played before the first team
// advances by default.
const MaxAttempts = 3

var (
	// ErrInvalidBracket is returned by Start for a malformed bracket string.
	ErrInvalidBracket = errors.New("invalid tournament bracket")
	// ErrNotStarted is returned by Advance before Start.
	ErrNotStarted = errors.New("tournament not started")
	// ErrUnknownTeam is returned by StartTeams when a bracket name has no team.
	ErrUnknownTeam = errors.New("bracket names an unknown team")
)

// Runner plays one match between two sides. *combat.Battle satisfies it.
type Runner interface {
	Run(team1, team2 combat.Side) (combat.Result, error)
}

// Options select the discipline of generated teams.
type Options struct {
	Mode      team.Mode
	Criterion team.Criterion
}

// Game is the record of one bracket game.
type Game struct {
	Team1, Team2 *team.Team
	Result       combat.Result
	// Winner is the team that advanced.
	Winner *team.Team
	// Attempts counts the matches played, more than one only after draws.
	Attempts int
	// Metas lists elements absent from both teams but present in a team
	// either of them has already knocked out, in element order.
	Metas []creature.Element
}

// slot is one bracket entry: a team, or the operator when t is nil.
type slot struct {
	t *team.Team
}

// Tournament holds a bracket and plays it one game at a time.
//
// Concurrency: a Tournament is not safe for concurrent use.
type Tournament struct {
	runner   Runner
	src      dice.Source
	registry *creature.Registry
	policy   ai.Policy
	opts     Options
	logger   *zap.Logger

	slots   []slot
	started bool
	// beaten maps a team to every team eliminated in its half of the bracket.
	beaten map[*team.Team][]*team.Team
}

// New creates a tournament with no bracket.
//
// Precondition: runner, src, reg and policy must be non-nil.
func New(runner Runner, src dice.Source, reg *creature.Registry, policy ai.Policy, opts Options, logger *zap.Logger) *Tournament {
	if runner == nil || src == nil || reg == nil || policy == nil {
		panic("tournament.New: runner, src, reg and policy must be non-nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Tournament{runner: runner, src: src, registry: reg, policy: policy, opts: opts, logger: logger}
}

// Valid reports whether bracket is a well-formed postfix expression over
// unique team names joined by Operator.
func Valid(bracket string) bool {
	_, err := parse(bracket)
	return err == nil
}

// parse returns the team names of bracket in order of appearance.
func parse(bracket string) ([]string, error) {
	tokens := strings.Fields(bracket)
	if len(tokens) == 0 {
		return nil, fmt.Errorf("%w: empty", ErrInvalidBracket)
	}
	var names []string
	seen := make(map[string]bool)
	depth := 0
	for _, tok := range tokens {
		if tok == Operator {
			if depth < 2 {
				return nil, fmt.Errorf("%w: %q needs two entries before it", ErrInvalidBracket, Operator)
			}
			depth--
			continue
		}
		if seen[tok] {
			return nil, fmt.Errorf("%w: team %q appears twice", ErrInvalidBracket, tok)
		}
		seen[tok] = true
		names = append(names, tok)
		depth++
	}
	if depth != 1 {
		return nil, fmt.Errorf("%w: %d entries left unplayed", ErrInvalidBracket, depth)
	}
	return names, nil
}

// Start validates bracket and generates one random team per name.
//
// Postcondition: on success the bracket is ready for Advance.
func (t *Tournament) Start(bracket string) error {
	names, err := parse(bracket)
	if err != nil {
		return err
	}
	teams := make([]*team.Team, 0, len(names))
	for _, name := range names {
		tm, err := team.Random(team.RandomOptions{Name: name, Mode: t.opts.Mode, Criterion: t.opts.Criterion}, t.src, t.registry, t.policy)
		if err != nil {
			return fmt.Errorf("starting tournament: %w", err)
		}
		teams = append(teams, tm)
	}
	return t.StartTeams(bracket, teams)
}

// StartTeams validates bracket and binds each name to the team of that name.
//
// Precondition: teams holds a team for every name in bracket.
func (t *Tournament) StartTeams(bracket string, teams []*team.Team) error {
	if _, err := parse(bracket); err != nil {
		return err
	}
	byName := make(map[string]*team.Team, len(teams))
	for _, tm := range teams {
		byName[tm.Name()] = tm
	}
	slots := make([]slot, 0, len(strings.Fields(bracket)))
	for _, tok := range strings.Fields(bracket) {
		if tok == Operator {
			slots = append(slots, slot{})
			continue
		}
		tm, ok := byName[tok]
		if !ok {
			return fmt.Errorf("%w: %q", ErrUnknownTeam, tok)
		}
		slots = append(slots, slot{t: tm})
	}
	t.slots = slots
	t.beaten = make(map[*team.Team][]*team.Team, len(teams))
	t.started = true
	t.logger.Info("tournament started", zap.String("bracket", bracket), zap.Int("teams", len(byName)))
	return nil
}

// Advance plays the leftmost pending game. Both teams are regenerated before
// every match. A drawn match is replayed up to MaxAttempts times, after which
// the first team advances.
//
// Postcondition: ok is false once a single entry remains.
func (t *Tournament) Advance() (g Game, ok bool, err error) {
	if !t.started {
		return Game{}, false, ErrNotStarted
	}
	op := -1
	for i, s := range t.slots {
		if s.t == nil {
			op = i
			break
		}
	}
	if op < 0 {
		return Game{}, false, nil
	}
	t1, t2 := t.slots[op-2].t, t.slots[op-1].t
	g = Game{Team1: t1, Team2: t2, Metas: t.metas(t1, t2)}

	for g.Attempts < MaxAttempts {
		if err := t1.Regenerate(); err != nil {
			return Game{}, false, err
		}
		if err := t2.Regenerate(); err != nil {
			return Game{}, false, err
		}
		g.Attempts++
		g.Result, err = t.runner.Run(t1, t2)
		if err != nil {
			return Game{}, false, fmt.Errorf("tournament game %s vs %s: %w", t1.Name(), t2.Name(), err)
		}
		if g.Result.Outcome != combat.Draw {
			break
		}
	}

	winner, loser := t1, t2
	if g.Result.Outcome == combat.Team2Wins {
		winner, loser = t2, t1
	}
	g.Winner = winner
	t.beaten[winner] = append(append(t.beaten[winner], loser), t.beaten[loser]...)
	delete(t.beaten, loser)

	rest := append([]slot{{t: winner}}, t.slots[op+1:]...)
	t.slots = append(t.slots[:op-2], rest...)

	t.logger.Debug("tournament game",
		zap.String("team1", t1.Name()),
		zap.String("team2", t2.Name()),
		zap.String("winner", winner.Name()),
		zap.Int("attempts", g.Attempts),
	)
	return g, true, nil
}

// Games plays the remaining bracket and returns its games in play order.
func (t *Tournament) Games() ([]Game, error) {
	var games []Game
	for {
		g, ok, err := t.Advance()
		if err != nil {
			return games, err
		}
		if !ok {
			return games, nil
		}
		games = append(games, g)
	}
}

// Winner returns the champion once every game has been played.
func (t *Tournament) Winner() (*team.Team, bool) {
	if !t.started || len(t.slots) != 1 {
		return nil, false
	}
	return t.slots[0].t, true
}

func (t *Tournament) metas(t1, t2 *team.Team) []creature.Element {
	present := t.elements(t1)
	for e := range t.elements(t2) {
		present[e] = true
	}
	knocked := make(map[creature.Element]bool)
	for _, tm := range append(append([]*team.Team(nil), t.beaten[t1]...), t.beaten[t2]...) {
		for e := range t.elements(tm) {
			knocked[e] = true
		}
	}
	var out []creature.Element
	for e := creature.Fire; e <= creature.Normal; e++ {
		if knocked[e] && !present[e] {
			out = append(out, e)
		}
	}
	return out
}

// elements returns the elements of the species a team was built with.
func (t *Tournament) elements(tm *team.Team) map[creature.Element]bool {
	roster := t.registry.Roster()
	out := make(map[creature.Element]bool)
	for i, n := range tm.Composition() {
		if n > 0 && i < len(roster) {
			out[roster[i].Element] = true
		}
	}
	return out
}
