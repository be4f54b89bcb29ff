package ai_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/arena/internal/game/ai"
	"github.com/cory-johannsen/arena/internal/game/combat"
	"github.com/cory-johannsen/arena/internal/game/creature"
)

// fixedSrc always returns val.
type fixedSrc struct{ val int }

func (f fixedSrc) Intn(_ int) int { return f.val }

func spawn(t testing.TB, id string) *creature.Creature {
	t.Helper()
	sp, ok := creature.DefaultRegistry().Get(id)
	require.True(t, ok, "unknown species %s", id)
	c, err := creature.New(sp)
	require.NoError(t, err)
	return c
}

func situation(t testing.TB, mine, theirs string, heals int) ai.Situation {
	return ai.Situation{Mine: spawn(t, mine), Theirs: spawn(t, theirs), HealsRemaining: heals}
}

func TestParseKind(t *testing.T) {
	for _, name := range []string{"always_attack", "SWAP_ON_SUPER_EFFECTIVE", " random ", "user_input", "script"} {
		k, err := ai.ParseKind(name)
		require.NoError(t, err, name)
		assert.Equal(t, strings.ToLower(strings.TrimSpace(name)), string(k))
	}
	_, err := ai.ParseKind("berserk")
	assert.Error(t, err)
}

func TestNew_BuildsEachKind(t *testing.T) {
	deps := ai.Deps{
		Source:  fixedSrc{val: 0},
		Input:   strings.NewReader("1\n"),
		Scripts: &mockScriptCaller{},
		VM:      "policies",
	}
	for _, k := range []ai.Kind{ai.KindAlwaysAttack, ai.KindSwapOnSuperEffective, ai.KindRandom, ai.KindUserInput, ai.KindScript} {
		p, err := ai.New(k, deps)
		require.NoError(t, err, k)
		assert.NotNil(t, p)
	}
}

func TestNew_MissingDependencies(t *testing.T) {
	_, err := ai.New(ai.KindRandom, ai.Deps{})
	assert.Error(t, err)
	_, err = ai.New(ai.KindUserInput, ai.Deps{})
	assert.Error(t, err)
	_, err = ai.New(ai.KindScript, ai.Deps{Scripts: &mockScriptCaller{}})
	assert.Error(t, err)
	_, err = ai.New(ai.Kind("nope"), ai.Deps{})
	assert.Error(t, err)
}

func TestAlwaysAttack(t *testing.T) {
	a, err := ai.AlwaysAttack{}.Choose(situation(t, "gastly", "eevee", 0))
	require.NoError(t, err)
	assert.Equal(t, combat.ActionAttack, a)
}

func TestSwapOnSuperEffective(t *testing.T) {
	cases := []struct {
		mine, theirs string
		want         combat.Action
	}{
		{"charmander", "squirtle", combat.ActionSwap},   // water hits fire x2
		{"bulbasaur", "charmander", combat.ActionSwap},  // fire hits grass x2
		{"gastly", "gastly", combat.ActionSwap},         // ghost hits ghost x2
		{"squirtle", "charmander", combat.ActionAttack}, // fire hits water x0.5
		{"charmander", "eevee", combat.ActionAttack},    // normal hits fire x1.25
		{"eevee", "gastly", combat.ActionAttack},        // ghost cannot hit normal
	}
	for _, tc := range cases {
		a, err := ai.SwapOnSuperEffective{}.Choose(situation(t, tc.mine, tc.theirs, 3))
		require.NoError(t, err)
		assert.Equal(t, tc.want, a, "%s facing %s", tc.mine, tc.theirs)
	}
}

func TestRandom_PoolOrder(t *testing.T) {
	want := []combat.Action{combat.ActionAttack, combat.ActionSwap, combat.ActionHeal, combat.ActionSpecial}
	for i, w := range want {
		a, err := ai.NewRandom(fixedSrc{val: i}).Choose(situation(t, "eevee", "eevee", 3))
		require.NoError(t, err)
		assert.Equal(t, w, a)
	}
}

func TestRandom_NoHealWhenExhausted(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		v := rapid.IntRange(0, 2).Draw(rt, "draw")
		heals := rapid.IntRange(-1, 0).Draw(rt, "heals")
		a, err := ai.NewRandom(fixedSrc{val: v}).Choose(situation(t, "eevee", "eevee", heals))
		if err != nil {
			rt.Fatal(err)
		}
		if a == combat.ActionHeal || !a.Valid() {
			rt.Fatalf("got %s with %d heals", a, heals)
		}
	})
}
