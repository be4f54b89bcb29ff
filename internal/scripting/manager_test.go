package scripting_test

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/arena/internal/game/dice"
	"github.com/cory-johannsen/arena/internal/scripting"
)

func newTestManager(t testing.TB) (*scripting.Manager, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zap.DebugLevel)
	logger := zap.New(core)
	roller := dice.NewLoggedRoller(dice.NewSeededSource(7), logger)
	mgr := scripting.NewManager(roller, logger)
	t.Cleanup(mgr.Close)
	return mgr, logs
}

func writeTempLua(t testing.TB, filename, src string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, filename), []byte(src), 0644))
	return dir
}

func TestManager_LoadScript_CallsHook(t *testing.T) {
	mgr, _ := newTestManager(t)
	dir := writeTempLua(t, "hooks.lua", `
		function test_hook(a, b)
			return a + b
		end
	`)
	require.NoError(t, mgr.LoadScript("test", dir, 0))
	ret, err := mgr.CallHook("test", "test_hook", 3, 4)
	require.NoError(t, err)
	assert.Equal(t, lua.LNumber(7), ret)
}

func TestManager_LoadString_CallsHook(t *testing.T) {
	mgr, _ := newTestManager(t)
	require.NoError(t, mgr.LoadString("inline", `function greet(name) return "hi " .. name end`, 0))
	assert.True(t, mgr.Has("inline"))
	ret, err := mgr.CallHook("inline", "greet", "ash")
	require.NoError(t, err)
	assert.Equal(t, lua.LString("hi ash"), ret)
}

func TestManager_CallHook_MissingHook_NoOp(t *testing.T) {
	mgr, _ := newTestManager(t)
	dir := writeTempLua(t, "empty.lua", `-- no functions`)
	require.NoError(t, mgr.LoadScript("test", dir, 0))
	ret, err := mgr.CallHook("test", "nonexistent_hook")
	require.NoError(t, err)
	assert.Equal(t, lua.LNil, ret)
}

func TestManager_CallHook_UnknownVM_ReturnsErrNoVM(t *testing.T) {
	mgr, _ := newTestManager(t)
	ret, err := mgr.CallHook("no_such_vm", "some_hook")
	require.Error(t, err)
	assert.ErrorIs(t, err, scripting.ErrNoVM)
	assert.Equal(t, lua.LNil, ret)
}

func TestManager_CallHook_RuntimeError_WarnsAndReturnsError(t *testing.T) {
	mgr, logs := newTestManager(t)
	require.NoError(t, mgr.LoadString("bad", `
		function bad_hook()
			error("intentional error")
		end
	`, 0))
	ret, err := mgr.CallHook("bad", "bad_hook")
	require.Error(t, err)
	assert.Equal(t, lua.LNil, ret)
	assert.Equal(t, 1, logs.FilterLevelExact(zap.WarnLevel).Len())
}

func TestManager_CallHook_BudgetResetsPerCall(t *testing.T) {
	mgr, _ := newTestManager(t)
	require.NoError(t, mgr.LoadString("loop", `
		function spin(n)
			local s = 0
			for i = 1, n do s = s + i end
			return s
		end
	`, 500))
	// Each call fits the budget on its own; together they would not.
	for i := 0; i < 20; i++ {
		ret, err := mgr.CallHook("loop", "spin", 50)
		require.NoError(t, err)
		assert.Equal(t, lua.LNumber(1275), ret)
	}
	_, err := mgr.CallHook("loop", "spin", 100000)
	assert.Error(t, err)
	// The VM stays usable after a budget failure.
	ret, err := mgr.CallHook("loop", "spin", 3)
	require.NoError(t, err)
	assert.Equal(t, lua.LNumber(6), ret)
}

func TestManager_CallHook_UnsupportedArgument(t *testing.T) {
	mgr, _ := newTestManager(t)
	require.NoError(t, mgr.LoadString("args", `function id(x) return x end`, 0))
	_, err := mgr.CallHook("args", "id", struct{}{})
	assert.Error(t, err)
}

func TestManager_LoadScript_EmptyDir_NoError(t *testing.T) {
	mgr, _ := newTestManager(t)
	require.NoError(t, mgr.LoadScript("empty", t.TempDir(), 0))
	ret, err := mgr.CallHook("empty", "anything")
	require.NoError(t, err)
	assert.Equal(t, lua.LNil, ret)
}

func TestManager_LoadScript_InvalidLua_ReturnsError(t *testing.T) {
	mgr, _ := newTestManager(t)
	dir := writeTempLua(t, "bad.lua", `this is not valid lua @@@@`)
	assert.Error(t, mgr.LoadScript("bad", dir, 0))
	assert.False(t, mgr.Has("bad"))
}

func TestManager_LoadScript_MissingDir_ReturnsError(t *testing.T) {
	mgr, _ := newTestManager(t)
	assert.Error(t, mgr.LoadScript("nowhere", filepath.Join(t.TempDir(), "missing"), 0))
}

func TestManager_LoadString_EmptyName(t *testing.T) {
	mgr, _ := newTestManager(t)
	assert.Error(t, mgr.LoadString("", `x = 1`, 0))
}

func TestManager_LoadString_RunawayChunkFails(t *testing.T) {
	mgr, _ := newTestManager(t)
	assert.Error(t, mgr.LoadString("spin", `while true do end`, 100))
}

func TestManager_Reload_ReplacesVM(t *testing.T) {
	mgr, _ := newTestManager(t)
	require.NoError(t, mgr.LoadString("v", `function version() return 1 end`, 0))
	require.NoError(t, mgr.LoadString("v", `function version() return 2 end`, 0))
	ret, err := mgr.CallHook("v", "version")
	require.NoError(t, err)
	assert.Equal(t, lua.LNumber(2), ret)
}

func TestProperty_CallHookUnknownVMNeverPanics(t *testing.T) {
	mgr, _ := newTestManager(t)
	rapid.Check(t, func(rt *rapid.T) {
		name := rapid.StringMatching(`[a-z]{1,10}`).Draw(rt, "vm")
		hook := rapid.StringMatching(`[a-z]{1,10}`).Draw(rt, "hook")
		if _, err := mgr.CallHook(name, hook); err == nil {
			rt.Fatalf("expected error for unknown vm %q", name)
		}
	})
}

func TestManager_CallHookConcurrentSameVM_NoRace(t *testing.T) {
	mgr, _ := newTestManager(t)
	require.NoError(t, mgr.LoadString("conc", `
		function concurrent_hook(a, b)
			return a + b
		end
	`, 0))

	const goroutines = 10
	const callsEach = 5
	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < callsEach; j++ {
				ret, err := mgr.CallHook("conc", "concurrent_hook", 1, 2)
				assert.NoError(t, err)
				assert.Equal(t, lua.LNumber(3), ret)
			}
		}()
	}
	wg.Wait()
}

func TestManager_LoadScript_MultipleFiles_OrderedByName(t *testing.T) {
	mgr, _ := newTestManager(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.lua"), []byte(`base_val = 10`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.lua"), []byte(`
		function get_val() return base_val end
	`), 0644))
	require.NoError(t, mgr.LoadScript("ordered", dir, 0))
	ret, err := mgr.CallHook("ordered", "get_val")
	require.NoError(t, err)
	assert.Equal(t, lua.LNumber(10), ret)
}

func TestNewManager_PanicsOnNilRoller(t *testing.T) {
	assert.Panics(t, func() {
		scripting.NewManager(nil, zap.NewNop())
	})
}

func TestNewManager_PanicsOnNilLogger(t *testing.T) {
	roller := dice.NewLoggedRoller(dice.NewCryptoSource(), zap.NewNop())
	assert.Panics(t, func() {
		scripting.NewManager(roller, nil)
	})
}

func TestManager_Close_ReleasesVMs(t *testing.T) {
	mgr, _ := newTestManager(t)
	require.NoError(t, mgr.LoadString("closing", `function get_x() return x end`, 0))
	mgr.Close()
	assert.False(t, mgr.Has("closing"))
	_, err := mgr.CallHook("closing", "get_x")
	assert.ErrorIs(t, err, scripting.ErrNoVM)
}
