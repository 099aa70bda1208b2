// Package hooks is the trigger-point layer between the move pipeline and the
// content rules. Abilities, held items and field conditions register
// handlers; each handler implements one capability interface per trigger
// point it reacts to. Handlers only read state and report contributions:
// chain steps to fold, or effects for the pipeline to apply.
package hooks

import (
	"github.com/KirkDiggler/rpg-battle/internal/content"
	"github.com/KirkDiggler/rpg-battle/internal/engine/state"
)

// Source is the kind of thing a handler came from. Lower sources dispatch first.
type Source int

// Sources in dispatch precedence order
const (
	SourceField Source = iota
	SourceAbility
	SourceItem
)

func (s Source) String() string {
	switch s {
	case SourceField:
		return "field"
	case SourceAbility:
		return "ability"
	case SourceItem:
		return "item"
	default:
		return "unknown"
	}
}

// Capability names a trigger point
type Capability string

// Trigger points
const (
	CapPower          Capability = "power"
	CapAccuracy       Capability = "accuracy"
	CapAccuracyBypass Capability = "accuracy_bypass"
	CapDamage         Capability = "damage"
	CapSpeed          Capability = "speed"
	CapPriority       Capability = "priority"
	CapGrounded       Capability = "grounded"
	CapStatusBlock    Capability = "status_block"
	CapSwitchIn       Capability = "switch_in"
	CapDamageTaken    Capability = "damage_taken"
	CapHitDealt       Capability = "hit_dealt"
	CapAbilityChange  Capability = "ability_change"
	CapResidual       Capability = "residual"
)

// ResidualUnit groups end-of-turn handlers. Units run in ResidualOrder.
type ResidualUnit string

// Residual units
const (
	UnitWeather ResidualUnit = "weather"
	UnitBerry   ResidualUnit = "berry"
	UnitTerrain ResidualUnit = "terrain"
	UnitItem    ResidualUnit = "item"
	UnitStatus  ResidualUnit = "status"
	UnitAbility ResidualUnit = "ability"
)

// ResidualOrder is the fixed end-of-turn priority list
var ResidualOrder = []ResidualUnit{UnitWeather, UnitBerry, UnitTerrain, UnitItem, UnitStatus, UnitAbility}

// Handler is the common face of every registered rule
type Handler interface {
	ID() string
	Source() Source
	// Owner is the combatant the handler belongs to; empty for field-wide rules
	Owner() string
	// Capabilities must list exactly the capability interfaces implemented
	Capabilities() []Capability
}

// Base carries the identity half of a handler. Rules embed it.
type Base struct {
	id     string
	source Source
	owner  string
	caps   []Capability
}

// NewBase creates handler identity
func NewBase(id string, source Source, owner string, caps ...Capability) Base {
	return Base{id: id, source: source, owner: owner, caps: caps}
}

// ID implements Handler
func (b Base) ID() string { return b.id }

// Source implements Handler
func (b Base) Source() Source { return b.source }

// Owner implements Handler
func (b Base) Owner() string { return b.owner }

// Capabilities implements Handler
func (b Base) Capabilities() []Capability { return b.caps }

// Query answers derived questions that depend on other handlers
type Query interface {
	AbilityActive(c *state.Combatant) bool
	Grounded(c *state.Combatant) bool
}

// Env is the read-only world a handler sees
type Env struct {
	View  state.View
	Query Query
}

// MoveContext describes one attacker/target pairing inside the pipeline
type MoveContext struct {
	Env
	Attacker *state.Combatant
	Target   *state.Combatant
	Move     *content.Move
	// Effectiveness is filled in before the damage chain runs
	Effectiveness float64
	// Spread is true when the move hits more than one target
	Spread bool
}

// AttackerOwns reports whether h belongs to the attacker
func (mc MoveContext) AttackerOwns(h Handler) bool {
	return mc.Attacker != nil && h.Owner() == mc.Attacker.ID()
}

// TargetOwns reports whether h belongs to the target
func (mc MoveContext) TargetOwns(h Handler) bool {
	return mc.Target != nil && h.Owner() == mc.Target.ID()
}

// AbilityChange describes an ability about to be replaced or suppressed
type AbilityChange struct {
	Target     *state.Combatant
	Suppressed bool
}

// PowerModifier contributes a step to the move power chain
type PowerModifier interface {
	Handler
	ModifyPower(mc MoveContext) (Step, bool)
}

// AccuracyModifier contributes a step to the hit chance chain
type AccuracyModifier interface {
	Handler
	ModifyAccuracy(mc MoveContext) (Step, bool)
}

// AccuracyBypass lets a move skip the accuracy roll
type AccuracyBypass interface {
	Handler
	BypassAccuracy(mc MoveContext) bool
}

// DamageModifier contributes a step to the final damage chain
type DamageModifier interface {
	Handler
	ModifyDamage(mc MoveContext) (Step, bool)
}

// SpeedModifier contributes a step to a combatant's effective speed
type SpeedModifier interface {
	Handler
	ModifySpeed(env Env, c *state.Combatant) (Step, bool)
}

// PriorityModifier adds to an action's priority bracket
type PriorityModifier interface {
	Handler
	ModifyPriority(env Env, c *state.Combatant, move *content.Move) int
}

// GroundedOverride lifts a combatant off the ground
type GroundedOverride interface {
	Handler
	Ungrounded(env Env, c *state.Combatant) bool
}

// StatusBlocker prevents a status from being applied
type StatusBlocker interface {
	Handler
	BlocksStatus(env Env, target *state.Combatant, status content.Status) bool
}

// SwitchInReactor reacts to a combatant entering the field
type SwitchInReactor interface {
	Handler
	OnSwitchIn(env Env, entrant *state.Combatant) []state.Effect
}

// DamageTakenReactor reacts after damage lands on a combatant
type DamageTakenReactor interface {
	Handler
	OnDamageTaken(mc MoveContext, dmg state.Damage) []state.Effect
}

// HitDealtReactor reacts after the attacker lands a hit
type HitDealtReactor interface {
	Handler
	OnHitDealt(mc MoveContext, dmg state.Damage) []state.Effect
}

// AbilityChangeReactor runs before an ability is replaced or suppressed,
// while the old ability is still active
type AbilityChangeReactor interface {
	Handler
	OnAbilityChange(env Env, change AbilityChange) []state.Effect
}

// ResidualHandler contributes end-of-turn effects
type ResidualHandler interface {
	Handler
	Unit() ResidualUnit
	Residual(env Env) []state.Effect
}

// Fraction returns max(1, hp*num/den), the usual shape of residual amounts
func Fraction(hp, num, den int) int {
	return max(1, hp*num/den)
}
