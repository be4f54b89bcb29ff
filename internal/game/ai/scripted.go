package ai

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"

	"github.com/cory-johannsen/arena/internal/game/combat"
	"github.com/cory-johannsen/arena/internal/scripting"
)

// DefaultHook is the Lua function a scripted policy calls when none is configured.
const DefaultHook = "choose_action"

// ScriptCaller is the interface required by Scripted to evaluate Lua hooks.
type ScriptCaller interface {
	// CallHook calls a named Lua function in the given VM.
	// Returns (LNil, nil) if the function is not defined.
	CallHook(vm, hook string, args ...any) (lua.LValue, error)
}

// Scripted delegates the decision to a Lua hook called as
// hook(mine, theirs, heals), where mine and theirs are creature tables.
// The hook must return one of "attack", "heal", "special" or "swap".
//
// Invariant: caller must not be nil.
type Scripted struct {
	caller ScriptCaller
	vm     string
	hook   string
}

// NewScripted constructs a Scripted policy. An empty hook uses DefaultHook.
//
// Precondition: caller must not be nil.
func NewScripted(caller ScriptCaller, vm, hook string) *Scripted {
	if caller == nil {
		panic("ai.NewScripted: caller must not be nil")
	}
	if hook == "" {
		hook = DefaultHook
	}
	return &Scripted{caller: caller, vm: vm, hook: hook}
}

// Choose calls the hook and parses its answer.
//
// Postcondition: a missing hook, a Lua error or a non-action answer is an error.
func (p *Scripted) Choose(s Situation) (combat.Action, error) {
	ret, err := p.caller.CallHook(p.vm, p.hook,
		scripting.SnapshotCreature(s.Mine),
		scripting.SnapshotCreature(s.Theirs),
		s.HealsRemaining,
	)
	if err != nil {
		return combat.ActionUnknown, fmt.Errorf("ai: script %s.%s: %w", p.vm, p.hook, err)
	}
	if ret == nil {
		ret = lua.LNil
	}
	str, ok := ret.(lua.LString)
	if !ok {
		return combat.ActionUnknown, fmt.Errorf("ai: script %s.%s returned %s, want an action name", p.vm, p.hook, ret.Type())
	}
	a, err := combat.ParseAction(string(str))
	if err != nil {
		return combat.ActionUnknown, fmt.Errorf("ai: script %s.%s: %w", p.vm, p.hook, err)
	}
	return a, nil
}
