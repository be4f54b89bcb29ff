package scripting

import (
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/arena/internal/game/creature"
)

// RegisterModules registers the engine Lua table into L:
//
//	engine.roll(expr)                 -> total of a dice expression such as "1d4+2"
//	engine.multiplier(atk, def)       -> element multiplier of atk hitting def
//	engine.status_for(element)        -> status an element inflicts
//	engine.log(msg)                   -> debug log line
//
// Precondition: L must be from NewSandboxedState.
// Postcondition: engine global is defined in L.
func (m *Manager) RegisterModules(L *lua.LState) {
	engine := L.NewTable()
	L.SetField(engine, "roll", L.NewFunction(m.luaRoll))
	L.SetField(engine, "multiplier", L.NewFunction(luaMultiplier))
	L.SetField(engine, "status_for", L.NewFunction(luaStatusFor))
	L.SetField(engine, "log", L.NewFunction(m.luaLog))
	L.SetGlobal("engine", engine)
}

func (m *Manager) luaRoll(L *lua.LState) int {
	res, err := m.roller.RollExpr(L.CheckString(1))
	if err != nil {
		L.RaiseError("engine.roll: %s", err.Error())
		return 0
	}
	L.Push(lua.LNumber(res.Total()))
	return 1
}

func luaMultiplier(L *lua.LState) int {
	atk := checkElement(L, 1)
	def := checkElement(L, 2)
	L.Push(lua.LNumber(creature.Multiplier(atk, def)))
	return 1
}

func luaStatusFor(L *lua.LState) int {
	L.Push(lua.LString(creature.InflictedStatus(checkElement(L, 1)).String()))
	return 1
}

func checkElement(L *lua.LState, n int) creature.Element {
	e, err := creature.ParseElement(L.CheckString(n))
	if err != nil {
		L.ArgError(n, err.Error())
	}
	return e
}

func (m *Manager) luaLog(L *lua.LState) int {
	m.logger.Debug("lua", zap.String("msg", L.CheckString(1)))
	return 0
}
