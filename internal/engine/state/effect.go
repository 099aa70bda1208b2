package state

import "github.com/KirkDiggler/rpg-battle/internal/content"

// EffectKind discriminates effect records
type EffectKind string

// Effect kinds
const (
	KindMoveUsed          EffectKind = "move_used"
	KindMoveFailed        EffectKind = "move_failed"
	KindDamage            EffectKind = "damage"
	KindHeal              EffectKind = "heal"
	KindFaint             EffectKind = "faint"
	KindStatusApplied     EffectKind = "status_applied"
	KindStatusCured       EffectKind = "status_cured"
	KindSleepTicked       EffectKind = "sleep_ticked"
	KindStageChanged      EffectKind = "stage_changed"
	KindTerrainChanged    EffectKind = "terrain_changed"
	KindWeatherChanged    EffectKind = "weather_changed"
	KindSideTagAdded      EffectKind = "side_tag_added"
	KindAbilityChanged    EffectKind = "ability_changed"
	KindAbilitySuppressed EffectKind = "ability_suppressed"
	KindTypesChanged      EffectKind = "types_changed"
	KindIllusionActivated EffectKind = "illusion_activated"
	KindIllusionBroken    EffectKind = "illusion_broken"
	KindSwitchedIn        EffectKind = "switched_in"
	KindSwitchedOut       EffectKind = "switched_out"
	KindItemConsumed      EffectKind = "item_consumed"
	KindFieldCountdown    EffectKind = "field_countdown"
	KindTurnEnded         EffectKind = "turn_ended"
	KindBattleEnded       EffectKind = "battle_ended"
)

// Effect is one discrete, already-decided change or notice. Handlers and the
// pipeline produce effects; only Battle.Apply turns them into state.
type Effect interface {
	Kind() EffectKind
}

// FailReason says why an action resolved to nothing
type FailReason string

// Failure reasons
const (
	FailNoTarget FailReason = "no_target"
	FailMiss     FailReason = "miss"
	FailCantAct  FailReason = "cant_act"
	FailNoEffect FailReason = "no_effect"
	FailFainted  FailReason = "fainted"
)

// MoveUsed announces an action that got past the legality check
type MoveUsed struct {
	Actor   string   `json:"actor"`
	Move    string   `json:"move"`
	Targets []string `json:"targets,omitempty"`
}

// MoveFailed is the zero-effect outcome of an action
type MoveFailed struct {
	Actor  string     `json:"actor"`
	Move   string     `json:"move"`
	Target string     `json:"target,omitempty"`
	Reason FailReason `json:"reason"`
}

// Damage lowers HP. Direct is true only for a damaging move landing on its target.
type Damage struct {
	Target        string  `json:"target"`
	Amount        int     `json:"amount"`
	Direct        bool    `json:"direct"`
	Cause         string  `json:"cause"`
	Source        string  `json:"source,omitempty"`
	Critical      bool    `json:"critical,omitempty"`
	Effectiveness float64 `json:"effectiveness,omitempty"`
}

// Heal restores HP
type Heal struct {
	Target string `json:"target"`
	Amount int    `json:"amount"`
	Cause  string `json:"cause"`
}

// Faint is recorded by Apply when HP reaches zero
type Faint struct {
	Target string `json:"target"`
}

// StatusApplied sets a non-volatile status. Turns is the sleep counter.
type StatusApplied struct {
	Target string         `json:"target"`
	Status content.Status `json:"status"`
	Turns  int            `json:"turns,omitempty"`
}

// StatusCured clears a non-volatile status
type StatusCured struct {
	Target string         `json:"target"`
	Status content.Status `json:"status"`
}

// SleepTicked spends one turn of sleep
type SleepTicked struct {
	Target string `json:"target"`
}

// StageChanged moves a stat stage; Apply clamps Delta to the legal range
type StageChanged struct {
	Target string       `json:"target"`
	Stat   content.Stat `json:"stat"`
	Delta  int          `json:"delta"`
}

// TerrainChanged replaces the terrain slot. TerrainNone ends it.
type TerrainChanged struct {
	Terrain content.Terrain `json:"terrain"`
	Turns   int             `json:"turns"`
}

// WeatherChanged replaces the weather slot. WeatherNone ends it.
type WeatherChanged struct {
	Weather content.Weather `json:"weather"`
	Turns   int             `json:"turns"`
}

// SideTagAdded sets a per-side condition
type SideTagAdded struct {
	Side int             `json:"side"`
	Tag  content.SideTag `json:"tag"`
}

// AbilityChanged replaces a combatant's ability for its field tenure
type AbilityChanged struct {
	Target string `json:"target"`
	From   string `json:"from"`
	To     string `json:"to"`
}

// AbilitySuppressed disables a combatant's ability for its field tenure
type AbilitySuppressed struct {
	Target string `json:"target"`
}

// TypesChanged overrides a combatant's types for its field tenure
type TypesChanged struct {
	Target string         `json:"target"`
	Types  []content.Type `json:"types"`
}

// IllusionActivated starts a disguise
type IllusionActivated struct {
	Target string   `json:"target"`
	Donor  Disguise `json:"donor"`
}

// IllusionBreakReason says what ended a disguise
type IllusionBreakReason string

// Illusion break reasons
const (
	BreakDirectHit  IllusionBreakReason = "direct_hit"
	BreakAbility    IllusionBreakReason = "ability_changed"
	BreakSuppressed IllusionBreakReason = "ability_suppressed"
	BreakSwitchOut  IllusionBreakReason = "switch_out"
)

// IllusionBroken ends a disguise. Applying it to a combatant without an
// active disguise is a no-op.
type IllusionBroken struct {
	Target string              `json:"target"`
	Reason IllusionBreakReason `json:"reason"`
}

// SwitchedIn places a party member into an active slot
type SwitchedIn struct {
	Target string `json:"target"`
	Side   int    `json:"side"`
	Slot   int    `json:"slot"`
}

// SwitchedOut removes an active member and discards its overlay
type SwitchedOut struct {
	Target string `json:"target"`
	Side   int    `json:"side"`
	Slot   int    `json:"slot"`
}

// ItemConsumed removes one unit of a held item
type ItemConsumed struct {
	Target string `json:"target"`
	Item   string `json:"item"`
}

// FieldCountdown ticks terrain and weather durations. Apply records the
// matching ended change when a duration runs out.
type FieldCountdown struct {
	Turn int `json:"turn"`
}

// TurnEnded advances the turn counter and clears per-turn flags
type TurnEnded struct {
	Turn int `json:"turn"`
}

// BattleEnded closes the battle. Winner is -1 for a draw.
type BattleEnded struct {
	Winner int `json:"winner"`
}

func (MoveUsed) Kind() EffectKind { return KindMoveUsed }
func (MoveFailed) Kind() EffectKind { return KindMoveFailed }
func (Damage) Kind() EffectKind { return KindDamage }
func (Heal) Kind() EffectKind { return KindHeal }
func (Faint) Kind() EffectKind { return KindFaint }
func (StatusApplied) Kind() EffectKind { return KindStatusApplied }
func (StatusCured) Kind() EffectKind { return KindStatusCured }
func (SleepTicked) Kind() EffectKind { return KindSleepTicked }
func (StageChanged) Kind() EffectKind { return KindStageChanged }
func (TerrainChanged) Kind() EffectKind { return KindTerrainChanged }
func (WeatherChanged) Kind() EffectKind { return KindWeatherChanged }
func (SideTagAdded) Kind() EffectKind { return KindSideTagAdded }
func (AbilityChanged) Kind() EffectKind { return KindAbilityChanged }
func (AbilitySuppressed) Kind() EffectKind { return KindAbilitySuppressed }
func (TypesChanged) Kind() EffectKind { return KindTypesChanged }
func (IllusionActivated) Kind() EffectKind { return KindIllusionActivated }
func (IllusionBroken) Kind() EffectKind { return KindIllusionBroken }
func (SwitchedIn) Kind() EffectKind { return KindSwitchedIn }
func (SwitchedOut) Kind() EffectKind { return KindSwitchedOut }
func (ItemConsumed) Kind() EffectKind { return KindItemConsumed }
func (FieldCountdown) Kind() EffectKind { return KindFieldCountdown }
func (TurnEnded) Kind() EffectKind { return KindTurnEnded }
func (BattleEnded) Kind() EffectKind { return KindBattleEnded }

// Record is one applied effect in battle order
type Record struct {
	Seq    int        `json:"seq"`
	Turn   int        `json:"turn"`
	Phase  string     `json:"phase"`
	Kind   EffectKind `json:"kind"`
	Effect Effect     `json:"effect"`
}
