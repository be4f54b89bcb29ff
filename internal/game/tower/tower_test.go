package tower_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/arena/internal/game/ai"
	"github.com/cory-johannsen/arena/internal/game/combat"
	"github.com/cory-johannsen/arena/internal/game/creature"
	"github.com/cory-johannsen/arena/internal/game/dice"
	"github.com/cory-johannsen/arena/internal/game/team"
	"github.com/cory-johannsen/arena/internal/game/tower"
)

// fakeRunner returns outcomes in order, repeating the last one.
type fakeRunner struct {
	outcomes []combat.Outcome
	calls    int
	fielded  []int
	err      error
}

func (f *fakeRunner) Run(team1, team2 combat.Side) (combat.Result, error) {
	if f.err != nil {
		return combat.Result{}, f.err
	}
	o := f.outcomes[min(f.calls, len(f.outcomes)-1)]
	f.calls++
	f.fielded = append(f.fielded, team2.(*team.Team).Len())
	return combat.Result{Outcome: o, Rounds: 1}, nil
}

func newPlayer(t testing.TB) *team.Team {
	t.Helper()
	p, err := team.New(team.Config{Name: "player", Mode: team.ModeQueue, Composition: []int{1, 1, 1}}, creature.DefaultRegistry(), ai.AlwaysAttack{})
	require.NoError(t, err)
	return p
}

func newTower(t testing.TB, r tower.Runner, seed uint64, n int) *tower.Tower {
	t.Helper()
	tw := tower.New(r, dice.NewSeededSource(seed), creature.DefaultRegistry(), ai.AlwaysAttack{}, zap.NewNop())
	require.NoError(t, tw.Generate(n))
	tw.SetPlayer(newPlayer(t))
	return tw
}

func sum(xs []int) int {
	s := 0
	for _, x := range xs {
		s += x
	}
	return s
}

func TestGenerate_OpponentsWithinBounds(t *testing.T) {
	tw := newTower(t, &fakeRunner{outcomes: []combat.Outcome{combat.Team1Wins}}, 11, 8)
	require.Equal(t, 8, tw.Len())
	for i, e := range tw.Entries() {
		assert.Equal(t, fmt.Sprintf("Team %d", i), e.Team.Name())
		assert.GreaterOrEqual(t, e.Lives, 2)
		assert.LessOrEqual(t, e.Lives, 10)
		assert.Contains(t, []team.Mode{team.ModeStack, team.ModeQueue}, e.Team.Mode())
		size := sum(e.Team.Composition())
		assert.GreaterOrEqual(t, size, 3)
		assert.LessOrEqual(t, size, 6)
	}
}

func TestGenerate_RejectsNonPositiveCount(t *testing.T) {
	tw := tower.New(&fakeRunner{}, dice.NewSeededSource(1), creature.DefaultRegistry(), ai.AlwaysAttack{}, nil)
	assert.ErrorIs(t, tw.Generate(0), tower.ErrInvalidCount)
	assert.ErrorIs(t, tw.Generate(-3), tower.ErrInvalidCount)
}

func TestNew_PanicsOnMissingDependency(t *testing.T) {
	assert.Panics(t, func() {
		tower.New(nil, dice.NewSeededSource(1), creature.DefaultRegistry(), ai.AlwaysAttack{}, nil)
	})
}

func TestNext_RequiresPlayer(t *testing.T) {
	tw := tower.New(&fakeRunner{outcomes: []combat.Outcome{combat.Draw}}, dice.NewSeededSource(1), creature.DefaultRegistry(), ai.AlwaysAttack{}, nil)
	require.NoError(t, tw.Generate(1))
	_, _, err := tw.Next()
	assert.ErrorIs(t, err, tower.ErrNoPlayer)
}

func TestNext_PlayerWinsEveryMatchClearsTower(t *testing.T) {
	r := &fakeRunner{outcomes: []combat.Outcome{combat.Team1Wins}}
	tw := newTower(t, r, 5, 3)
	total := 0
	for _, e := range tw.Entries() {
		total += e.Lives
	}

	bouts := 0
	for {
		b, ok, err := tw.Next()
		require.NoError(t, err)
		if !ok {
			break
		}
		bouts++
		assert.Equal(t, combat.Team1Wins, b.Result.Outcome)
		assert.Equal(t, "player", b.Player.Name())
	}
	assert.Equal(t, total, bouts)
	assert.Zero(t, tw.Len())
	assert.True(t, tw.Done())
}

func TestNext_OpponentRotatesToBack(t *testing.T) {
	tw := newTower(t, &fakeRunner{outcomes: []combat.Outcome{combat.Draw}}, 5, 3)
	before := tw.Entries()

	b, ok, err := tw.Next()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Same(t, before[0].Team, b.Opponent)
	assert.Equal(t, before[0].Lives-1, b.Lives)

	after := tw.Entries()
	require.Len(t, after, 3)
	assert.Same(t, before[1].Team, after[0].Team)
	assert.Same(t, before[0].Team, after[2].Team)
	assert.Equal(t, before[0].Lives-1, after[2].Lives)
}

func TestNext_StopsAfterPlayerLoses(t *testing.T) {
	tw := newTower(t, &fakeRunner{outcomes: []combat.Outcome{combat.Team2Wins}}, 5, 2)
	before := tw.Entries()

	b, ok, err := tw.Next()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, before[0].Lives, b.Lives)
	assert.Equal(t, 2, tw.Len())
	assert.True(t, tw.Done())

	_, ok, err = tw.Next()
	require.NoError(t, err)
	assert.False(t, ok)

	tw.SetPlayer(newPlayer(t))
	assert.False(t, tw.Done())
}

func TestNext_RegeneratesOpponentBeforeEachMatch(t *testing.T) {
	r := &fakeRunner{outcomes: []combat.Outcome{combat.Team1Wins}}
	tw := newTower(t, r, 9, 1)
	e := tw.Entries()[0]
	want := sum(e.Team.Composition())
	e.Team.Retrieve()

	_, ok, err := tw.Next()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []int{want}, r.fielded)
}

func TestNext_PropagatesRunnerError(t *testing.T) {
	boom := errors.New("boom")
	tw := newTower(t, &fakeRunner{err: boom}, 5, 1)
	_, ok, err := tw.Next()
	assert.False(t, ok)
	assert.ErrorIs(t, err, boom)
}

func TestAvoidDuplicates_DropsTeamsWithRepeatedSpecies(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		seed := rapid.Uint64().Draw(rt, "seed")
		tw := newTower(t, &fakeRunner{outcomes: []combat.Outcome{combat.Draw}}, seed, 6)

		var want []*team.Team
		for _, e := range tw.Entries() {
			dup := false
			for _, n := range e.Team.Composition() {
				if n > 1 {
					dup = true
				}
			}
			if !dup {
				want = append(want, e.Team)
			}
		}

		tw.AvoidDuplicates()
		got := tw.Entries()
		if len(got) != len(want) {
			rt.Fatalf("kept %d opponents, want %d", len(got), len(want))
		}
		for i := range got {
			if got[i].Team != want[i] {
				rt.Fatalf("opponent %d out of order", i)
			}
		}
	})
}

func TestTower_RealBattlesTerminate(t *testing.T) {
	src := dice.NewSeededSource(2024)
	tw := tower.New(combat.NewBattle(src, nil), src, creature.DefaultRegistry(), ai.AlwaysAttack{}, zap.NewNop())
	require.NoError(t, tw.Generate(3))
	tw.SetPlayer(newPlayer(t))

	for i := 0; i < 100; i++ {
		_, ok, err := tw.Next()
		require.NoError(t, err)
		if !ok {
			break
		}
	}
	assert.True(t, tw.Done())
}
