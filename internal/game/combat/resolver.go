package combat

import (
	"github.com/cory-johannsen/arena/internal/game/creature"
	"github.com/cory-johannsen/arena/internal/game/dice"
)

// Source is the subset of dice.Source used by the resolver and the engine.
type Source interface {
	Intn(n int) int
}

const (
	confusionRedirectPercent = 50
	inflictPercent           = 20
	burnUpkeep               = 1
	poisonUpkeep             = 3
)

// AttackResult records every stage of a single attack.
type AttackResult struct {
	// Asleep is true when the attacker slept through the attack; nothing else happened.
	Asleep bool
	// SelfHit is true when confusion redirected the attack onto the attacker.
	SelfHit bool
	// Multiplier is the element multiplier applied.
	Multiplier float64
	// Damage is the effective damage before the target's defend rule.
	Damage int
	// Loss is the hp the target lost.
	Loss int
	// Upkeep is the hp the attacker lost to its own burn or poison.
	Upkeep int
	// Inflicted is true when the infliction roll succeeded.
	Inflicted bool
	// Status is the status written onto the target when Inflicted is true.
	Status creature.Status
}

// ResolveAttack performs one attack of attacker on defender and mutates both.
//
// Stages:
//  1. sleep gate: a sleeping attacker does nothing and draws nothing;
//  2. confusion: with 50% chance the attacker hits itself;
//  3. damage = floor(attack power * element multiplier);
//  4. loss = target's defend rule applied to damage, subtracted from target hp;
//  5. upkeep: burn costs the attacker 1 hp, poison 3 hp;
//  6. with 20% chance the target's status is overwritten by the attacker element's status.
//
// Precondition: attacker, defender and src must be non-nil.
// Postcondition: exactly one draw is taken for the infliction roll unless the attacker
// is asleep, preceded by one confusion draw when the attacker is confused.
func ResolveAttack(attacker, defender *creature.Creature, src Source) AttackResult {
	if attacker.Status == creature.Sleep {
		return AttackResult{Asleep: true}
	}

	var r AttackResult
	target := defender
	if attacker.Status == creature.Confusion && dice.Chance(src, confusionRedirectPercent) {
		target = attacker
		r.SelfHit = true
	}

	r.Multiplier = creature.Multiplier(attacker.Element(), target.Element())
	r.Damage = int(attacker.AttackPower() * r.Multiplier)
	r.Loss = target.Defend(r.Damage)
	target.LoseHP(r.Loss)

	switch attacker.Status {
	case creature.Burn:
		r.Upkeep = burnUpkeep
	case creature.Poison:
		r.Upkeep = poisonUpkeep
	}
	attacker.LoseHP(r.Upkeep)

	if dice.Chance(src, inflictPercent) {
		r.Inflicted = true
		r.Status = creature.InflictedStatus(attacker.Element())
		target.Status = r.Status
	}
	return r
}
