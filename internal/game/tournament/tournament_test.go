package tournament_test

import (
	"errors"
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
	"github.com/cory-johannsen/arena/internal/game/tournament"
)

// fakeRunner returns outcomes in order, repeating the last one, and records pairings.
type fakeRunner struct {
	outcomes []combat.Outcome
	calls    int
	pairs    [][2]string
	err      error
}

func (f *fakeRunner) Run(team1, team2 combat.Side) (combat.Result, error) {
	if f.err != nil {
		return combat.Result{}, f.err
	}
	o := f.outcomes[min(f.calls, len(f.outcomes)-1)]
	f.calls++
	f.pairs = append(f.pairs, [2]string{team1.Name(), team2.Name()})
	return combat.Result{Outcome: o}, nil
}

func newTournament(r tournament.Runner) *tournament.Tournament {
	return tournament.New(r, dice.NewSeededSource(7), creature.DefaultRegistry(), ai.AlwaysAttack{}, tournament.Options{Mode: team.ModeQueue}, zap.NewNop())
}

func mono(t testing.TB, name string, slot int) *team.Team {
	t.Helper()
	comp := make([]int, slot+1)
	comp[slot] = 1
	tm, err := team.New(team.Config{Name: name, Mode: team.ModeQueue, Composition: comp}, creature.DefaultRegistry(), ai.AlwaysAttack{})
	require.NoError(t, err)
	return tm
}

func TestValid(t *testing.T) {
	cases := map[string]bool{
		"A B + C +":       true,
		"A B C + +":       true,
		"A B + C D + +":   true,
		"A":               true,
		"  A   B   +  ":   true,
		"":                false,
		"A +":             false,
		"A B":             false,
		"A B + +":         false,
		"+ A B":           false,
		"A A +":           false,
		"A B + C + D E +": false,
	}
	for in, want := range cases {
		assert.Equal(t, want, tournament.Valid(in), "Valid(%q)", in)
	}
}

func TestProperty_LeftFoldBracketsAreValid(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(1, 12).Draw(rt, "n")
		s := "T0"
		for i := 1; i < n; i++ {
			s += " T" + string(rune('a'+i)) + " +"
		}
		if !tournament.Valid(s) {
			rt.Fatalf("expected %q to be valid", s)
		}
		if tournament.Valid(s + " +") {
			rt.Fatalf("expected %q to be invalid", s+" +")
		}
	})
}

func TestStart_RejectsInvalidBracket(t *testing.T) {
	tr := newTournament(&fakeRunner{outcomes: []combat.Outcome{combat.Team1Wins}})
	assert.ErrorIs(t, tr.Start("A B + +"), tournament.ErrInvalidBracket)
	_, _, err := tr.Advance()
	assert.ErrorIs(t, err, tournament.ErrNotStarted)
}

func TestStart_GeneratesNamedTeams(t *testing.T) {
	r := &fakeRunner{outcomes: []combat.Outcome{combat.Team1Wins}}
	tr := newTournament(r)
	require.NoError(t, tr.Start("red blue + green +"))

	games, err := tr.Games()
	require.NoError(t, err)
	require.Len(t, games, 2)
	assert.Equal(t, [][2]string{{"red", "blue"}, {"red", "green"}}, r.pairs)
	for _, g := range games {
		assert.Equal(t, team.ModeQueue, g.Team1.Mode())
	}
	w, ok := tr.Winner()
	require.True(t, ok)
	assert.Equal(t, "red", w.Name())
}

func TestAdvance_LoserIsEliminated(t *testing.T) {
	r := &fakeRunner{outcomes: []combat.Outcome{combat.Team1Wins, combat.Team2Wins, combat.Team2Wins}}
	tr := newTournament(r)
	require.NoError(t, tr.Start("A B + C D + +"))

	games, err := tr.Games()
	require.NoError(t, err)
	require.Len(t, games, 3)
	assert.Equal(t, [][2]string{{"A", "B"}, {"C", "D"}, {"A", "D"}}, r.pairs)
	assert.Equal(t, "A", games[0].Winner.Name())
	assert.Equal(t, "D", games[1].Winner.Name())
	assert.Equal(t, "D", games[2].Winner.Name())

	_, ok, err := tr.Advance()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAdvance_DrawIsReplayedThenFirstTeamAdvances(t *testing.T) {
	r := &fakeRunner{outcomes: []combat.Outcome{combat.Draw, combat.Team2Wins}}
	tr := newTournament(r)
	require.NoError(t, tr.Start("A B +"))
	g, ok, err := tr.Advance()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 2, g.Attempts)
	assert.Equal(t, "B", g.Winner.Name())

	r = &fakeRunner{outcomes: []combat.Outcome{combat.Draw}}
	tr = newTournament(r)
	require.NoError(t, tr.Start("A B +"))
	g, ok, err = tr.Advance()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, tournament.MaxAttempts, g.Attempts)
	assert.Equal(t, combat.Draw, g.Result.Outcome)
	assert.Equal(t, "A", g.Winner.Name())
}

func TestAdvance_PropagatesRunnerError(t *testing.T) {
	boom := errors.New("boom")
	tr := newTournament(&fakeRunner{err: boom})
	require.NoError(t, tr.Start("A B +"))
	_, _, err := tr.Advance()
	assert.ErrorIs(t, err, boom)
}

func TestStartTeams_UnknownName(t *testing.T) {
	tr := newTournament(&fakeRunner{outcomes: []combat.Outcome{combat.Team1Wins}})
	err := tr.StartTeams("A B +", []*team.Team{mono(t, "A", 0)})
	assert.ErrorIs(t, err, tournament.ErrUnknownTeam)
}

func TestGames_MetasFromKnockedOutTeams(t *testing.T) {
	r := &fakeRunner{outcomes: []combat.Outcome{combat.Team1Wins}}
	tr := newTournament(r)
	teams := []*team.Team{mono(t, "A", 0), mono(t, "B", 1), mono(t, "C", 2), mono(t, "D", 3)}
	require.NoError(t, tr.StartTeams("A B + C D + +", teams))

	games, err := tr.Games()
	require.NoError(t, err)
	require.Len(t, games, 3)
	assert.Empty(t, games[0].Metas)
	assert.Empty(t, games[1].Metas)
	// Fire vs water; grass and ghost were knocked out earlier.
	assert.Equal(t, []creature.Element{creature.Grass, creature.Ghost}, games[2].Metas)
}

func TestWinner_SingleTeamBracket(t *testing.T) {
	tr := newTournament(&fakeRunner{outcomes: []combat.Outcome{combat.Team1Wins}})
	_, ok := tr.Winner()
	assert.False(t, ok)
	require.NoError(t, tr.Start("solo"))
	games, err := tr.Games()
	require.NoError(t, err)
	assert.Empty(t, games)
	w, ok := tr.Winner()
	require.True(t, ok)
	assert.Equal(t, "solo", w.Name())
}

func TestTournament_RealBattles(t *testing.T) {
	src := dice.NewSeededSource(31)
	tr := tournament.New(combat.NewBattle(src, nil), src, creature.DefaultRegistry(), ai.AlwaysAttack{}, tournament.Options{Mode: team.ModeStack}, nil)
	require.NoError(t, tr.Start("A B + C D + +"))
	games, err := tr.Games()
	require.NoError(t, err)
	assert.Len(t, games, 3)
	_, ok := tr.Winner()
	assert.True(t, ok)
}
