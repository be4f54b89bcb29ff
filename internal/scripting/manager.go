package scripting

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/arena/internal/game/dice"
)

// ErrNoVM is returned by CallHook when no VM is registered under the requested name.
var ErrNoVM = errors.New("scripting: no VM registered")

// vm is one sandboxed LState and its per-execution instruction limit.
// An LState is single-threaded; mu serialises every use of L.
type vm struct {
	mu    sync.Mutex
	L     *lua.LState
	limit int
}

// Manager owns named sandboxed VMs and exposes hook dispatch.
//
// Manager is safe for concurrent use. Calls to the same VM are serialised;
// different VMs run concurrently.
type Manager struct {
	mu     sync.RWMutex
	vms    map[string]*vm
	roller *dice.Roller
	logger *zap.Logger
}

// NewManager creates a Manager.
//
// Precondition: roller and logger must be non-nil.
// Postcondition: Returns a non-nil Manager with no VMs.
func NewManager(roller *dice.Roller, logger *zap.Logger) *Manager {
	if roller == nil {
		panic("scripting.NewManager: roller must not be nil")
	}
	if logger == nil {
		panic("scripting.NewManager: logger must not be nil")
	}
	return &Manager{
		vms:    make(map[string]*vm),
		roller: roller,
		logger: logger,
	}
}

// LoadScript creates a sandboxed VM named name, registers the engine module,
// then executes every *.lua file in scriptDir in lexicographic order.
//
// Precondition: name must be non-empty; scriptDir must be a readable directory.
// Postcondition: the VM replaces any previous VM of the same name; returns error on Lua load failure.
func (m *Manager) LoadScript(name, scriptDir string, instLimit int) error {
	entries, err := os.ReadDir(scriptDir)
	if err != nil {
		return fmt.Errorf("scripting: reading script dir %q for %q: %w", scriptDir, name, err)
	}
	var luaFiles []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".lua" {
			luaFiles = append(luaFiles, filepath.Join(scriptDir, e.Name()))
		}
	}
	sort.Strings(luaFiles)

	return m.load(name, instLimit, func(L *lua.LState) error {
		for _, path := range luaFiles {
			if err := L.DoFile(path); err != nil {
				return fmt.Errorf("loading %q: %w", path, err)
			}
		}
		return nil
	})
}

// LoadString creates a sandboxed VM named name from a single Lua chunk.
//
// Precondition: name must be non-empty.
// Postcondition: the VM replaces any previous VM of the same name; returns error on Lua load failure.
func (m *Manager) LoadString(name, src string, instLimit int) error {
	return m.load(name, instLimit, func(L *lua.LState) error {
		return L.DoString(src)
	})
}

func (m *Manager) load(name string, instLimit int, run func(L *lua.LState) error) error {
	if name == "" {
		return errors.New("scripting: VM name must not be empty")
	}
	L := NewSandboxedState(instLimit)
	m.RegisterModules(L)

	cancel := arm(L, instLimit)
	err := run(L)
	cancel()
	if err != nil {
		L.Close()
		return fmt.Errorf("scripting: %q: %w", name, err)
	}

	m.mu.Lock()
	if old, ok := m.vms[name]; ok {
		old.mu.Lock()
		old.L.Close()
		old.mu.Unlock()
	}
	m.vms[name] = &vm{L: L, limit: instLimit}
	m.mu.Unlock()

	m.logger.Debug("scripting: VM loaded", zap.String("vm", name))
	return nil
}

// Has reports whether a VM is registered under name.
func (m *Manager) Has(name string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.vms[name]
	return ok
}

// CallHook calls the named Lua global function in the VM registered as name
// with a fresh instruction budget. Go arguments are converted with ToLValue.
// Returns (LNil, nil) if the hook is not defined.
//
// Precondition: args must be convertible by ToLValue.
// Postcondition: Returns the first return value of the hook; Lua runtime
// errors, budget exhaustion and unknown VMs are returned as errors.
func (m *Manager) CallHook(name, hook string, args ...any) (lua.LValue, error) {
	m.mu.RLock()
	v, ok := m.vms[name]
	m.mu.RUnlock()
	if !ok {
		return lua.LNil, fmt.Errorf("%w: %q", ErrNoVM, name)
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	L := v.L

	fn := L.GetGlobal(hook)
	if fn == lua.LNil {
		return lua.LNil, nil
	}

	largs := make([]lua.LValue, len(args))
	for i, a := range args {
		lv, err := ToLValue(L, a)
		if err != nil {
			return lua.LNil, fmt.Errorf("scripting: %s.%s arg %d: %w", name, hook, i+1, err)
		}
		largs[i] = lv
	}

	cancel := arm(L, v.limit)
	defer cancel()
	if err := L.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, largs...); err != nil {
		m.logger.Warn("scripting: Lua runtime error",
			zap.String("vm", name),
			zap.String("hook", hook),
			zap.Error(err),
		)
		return lua.LNil, fmt.Errorf("scripting: %s.%s: %w", name, hook, err)
	}

	ret := L.Get(-1)
	L.Pop(1)
	return ret, nil
}

// Close releases every VM.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for name, v := range m.vms {
		v.mu.Lock()
		v.L.Close()
		v.mu.Unlock()
		delete(m.vms, name)
	}
}
