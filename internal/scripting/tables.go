package scripting

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"

	"github.com/cory-johannsen/arena/internal/game/creature"
)

// CreatureInfo is a snapshot of a creature's state passed to Lua callbacks.
type CreatureInfo struct {
	Name    string
	Element string
	Status  string
	Level   int
	HP      int
	MaxHP   int
	Speed   int
	Attack  float64
	Defence int
}

// SnapshotCreature captures c for a Lua callback.
//
// Precondition: c must not be nil.
func SnapshotCreature(c *creature.Creature) CreatureInfo {
	return CreatureInfo{
		Name:    c.Name(),
		Element: c.Element().String(),
		Status:  c.Status.String(),
		Level:   c.Level,
		HP:      c.HP,
		MaxHP:   c.MaxHP,
		Speed:   c.Speed(),
		Attack:  c.AttackPower(),
		Defence: c.Defence(),
	}
}

// CreatureTable converts info into a Lua table with snake_case fields.
//
// Postcondition: returns a new table owned by L.
func CreatureTable(L *lua.LState, info CreatureInfo) *lua.LTable {
	t := L.NewTable()
	L.SetField(t, "name", lua.LString(info.Name))
	L.SetField(t, "element", lua.LString(info.Element))
	L.SetField(t, "status", lua.LString(info.Status))
	L.SetField(t, "level", lua.LNumber(info.Level))
	L.SetField(t, "hp", lua.LNumber(info.HP))
	L.SetField(t, "max_hp", lua.LNumber(info.MaxHP))
	L.SetField(t, "speed", lua.LNumber(info.Speed))
	L.SetField(t, "attack", lua.LNumber(info.Attack))
	L.SetField(t, "defence", lua.LNumber(info.Defence))
	return t
}

// ToLValue converts a Go value into a Lua value owned by L.
// Supported: lua.LValue, nil, bool, int, float64, string, CreatureInfo and *CreatureInfo.
//
// Postcondition: returns a non-nil error for unsupported types.
func ToLValue(L *lua.LState, v any) (lua.LValue, error) {
	switch x := v.(type) {
	case nil:
		return lua.LNil, nil
	case lua.LValue:
		return x, nil
	case bool:
		return lua.LBool(x), nil
	case int:
		return lua.LNumber(x), nil
	case float64:
		return lua.LNumber(x), nil
	case string:
		return lua.LString(x), nil
	case CreatureInfo:
		return CreatureTable(L, x), nil
	case *CreatureInfo:
		if x == nil {
			return lua.LNil, nil
		}
		return CreatureTable(L, *x), nil
	default:
		return lua.LNil, fmt.Errorf("unsupported argument type %T", v)
	}
}
