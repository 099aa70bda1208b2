package hooks

import (
	"slices"

	"github.com/KirkDiggler/rpg-battle/internal/content"
	"github.com/KirkDiggler/rpg-battle/internal/engine/state"
	"github.com/KirkDiggler/rpg-battle/internal/errors"
)

// Set holds typed handler lists, one per trigger point, in dispatch order
type Set struct {
	handlers []Handler

	power         []PowerModifier
	accuracy      []AccuracyModifier
	bypass        []AccuracyBypass
	damage        []DamageModifier
	speed         []SpeedModifier
	priority      []PriorityModifier
	grounded      []GroundedOverride
	statusBlock   []StatusBlocker
	switchIn      []SwitchInReactor
	damageTaken   []DamageTakenReactor
	hitDealt      []HitDealtReactor
	abilityChange []AbilityChangeReactor
	residual      []ResidualHandler
}

func newSet(handlers []Handler) (*Set, error) {
	slices.SortStableFunc(handlers, func(a, b Handler) int {
		return int(a.Source()) - int(b.Source())
	})

	s := &Set{handlers: handlers}
	for _, h := range handlers {
		var implemented []Capability
		if v, ok := h.(PowerModifier); ok {
			s.power = append(s.power, v)
			implemented = append(implemented, CapPower)
		}
		if v, ok := h.(AccuracyModifier); ok {
			s.accuracy = append(s.accuracy, v)
			implemented = append(implemented, CapAccuracy)
		}
		if v, ok := h.(AccuracyBypass); ok {
			s.bypass = append(s.bypass, v)
			implemented = append(implemented, CapAccuracyBypass)
		}
		if v, ok := h.(DamageModifier); ok {
			s.damage = append(s.damage, v)
			implemented = append(implemented, CapDamage)
		}
		if v, ok := h.(SpeedModifier); ok {
			s.speed = append(s.speed, v)
			implemented = append(implemented, CapSpeed)
		}
		if v, ok := h.(PriorityModifier); ok {
			s.priority = append(s.priority, v)
			implemented = append(implemented, CapPriority)
		}
		if v, ok := h.(GroundedOverride); ok {
			s.grounded = append(s.grounded, v)
			implemented = append(implemented, CapGrounded)
		}
		if v, ok := h.(StatusBlocker); ok {
			s.statusBlock = append(s.statusBlock, v)
			implemented = append(implemented, CapStatusBlock)
		}
		if v, ok := h.(SwitchInReactor); ok {
			s.switchIn = append(s.switchIn, v)
			implemented = append(implemented, CapSwitchIn)
		}
		if v, ok := h.(DamageTakenReactor); ok {
			s.damageTaken = append(s.damageTaken, v)
			implemented = append(implemented, CapDamageTaken)
		}
		if v, ok := h.(HitDealtReactor); ok {
			s.hitDealt = append(s.hitDealt, v)
			implemented = append(implemented, CapHitDealt)
		}
		if v, ok := h.(AbilityChangeReactor); ok {
			s.abilityChange = append(s.abilityChange, v)
			implemented = append(implemented, CapAbilityChange)
		}
		if v, ok := h.(ResidualHandler); ok {
			s.residual = append(s.residual, v)
			implemented = append(implemented, CapResidual)
		}

		if !sameCapabilities(h.Capabilities(), implemented) {
			return nil, errors.Invariantf("handler %s declares %v but implements %v", h.ID(), h.Capabilities(), implemented)
		}
	}
	return s, nil
}

func sameCapabilities(declared, implemented []Capability) bool {
	if len(declared) != len(implemented) {
		return false
	}
	for _, c := range declared {
		if !slices.Contains(implemented, c) {
			return false
		}
	}
	return true
}

// Handlers returns every handler in dispatch order
func (s *Set) Handlers() []Handler {
	return append([]Handler(nil), s.handlers...)
}

// PowerSteps collects power chain contributions
func (s *Set) PowerSteps(mc MoveContext) []Step {
	var out []Step
	for _, h := range s.power {
		if step, ok := h.ModifyPower(mc); ok {
			out = append(out, step)
		}
	}
	return out
}

// AccuracySteps collects hit chance contributions
func (s *Set) AccuracySteps(mc MoveContext) []Step {
	var out []Step
	for _, h := range s.accuracy {
		if step, ok := h.ModifyAccuracy(mc); ok {
			out = append(out, step)
		}
	}
	return out
}

// BypassesAccuracy reports whether any handler skips the accuracy roll
func (s *Set) BypassesAccuracy(mc MoveContext) bool {
	for _, h := range s.bypass {
		if h.BypassAccuracy(mc) {
			return true
		}
	}
	return false
}

// DamageSteps collects final damage contributions
func (s *Set) DamageSteps(mc MoveContext) []Step {
	var out []Step
	for _, h := range s.damage {
		if step, ok := h.ModifyDamage(mc); ok {
			out = append(out, step)
		}
	}
	return out
}

// SpeedSteps collects speed contributions for c
func (s *Set) SpeedSteps(env Env, c *state.Combatant) []Step {
	var out []Step
	for _, h := range s.speed {
		if step, ok := h.ModifySpeed(env, c); ok {
			out = append(out, step)
		}
	}
	return out
}

// PriorityBonus sums priority contributions for c using move
func (s *Set) PriorityBonus(env Env, c *state.Combatant, move *content.Move) int {
	total := 0
	for _, h := range s.priority {
		total += h.ModifyPriority(env, c, move)
	}
	return total
}

// StatusBlocked reports whether any handler prevents status on target
func (s *Set) StatusBlocked(env Env, target *state.Combatant, status content.Status) bool {
	for _, h := range s.statusBlock {
		if h.BlocksStatus(env, target, status) {
			return true
		}
	}
	return false
}

// SwitchIn collects reactions to entrant arriving
func (s *Set) SwitchIn(env Env, entrant *state.Combatant) []state.Effect {
	var out []state.Effect
	for _, h := range s.switchIn {
		out = append(out, h.OnSwitchIn(env, entrant)...)
	}
	return out
}

// DamageTaken collects reactions to a landed damage effect
func (s *Set) DamageTaken(mc MoveContext, dmg state.Damage) []state.Effect {
	var out []state.Effect
	for _, h := range s.damageTaken {
		out = append(out, h.OnDamageTaken(mc, dmg)...)
	}
	return out
}

// HitDealt collects reactions from the attacker's side of a hit
func (s *Set) HitDealt(mc MoveContext, dmg state.Damage) []state.Effect {
	var out []state.Effect
	for _, h := range s.hitDealt {
		out = append(out, h.OnHitDealt(mc, dmg)...)
	}
	return out
}

// AbilityChange collects reactions to an imminent ability change
func (s *Set) AbilityChange(env Env, change AbilityChange) []state.Effect {
	var out []state.Effect
	for _, h := range s.abilityChange {
		out = append(out, h.OnAbilityChange(env, change)...)
	}
	return out
}

// Residual collects end-of-turn effects for one unit
func (s *Set) Residual(env Env, unit ResidualUnit) []state.Effect {
	var out []state.Effect
	for _, h := range s.residual {
		if h.Unit() == unit {
			out = append(out, h.Residual(env)...)
		}
	}
	return out
}

// ResidualHandlers returns the handlers of one unit in dispatch order, for
// callers that apply each handler's effects before running the next
func (s *Set) ResidualHandlers(unit ResidualUnit) []ResidualHandler {
	var out []ResidualHandler
	for _, h := range s.residual {
		if h.Unit() == unit {
			out = append(out, h)
		}
	}
	return out
}
