package engine

import (
	"github.com/KirkDiggler/rpg-battle/internal/content"
	"github.com/KirkDiggler/rpg-battle/internal/engine/pipeline"
	"github.com/KirkDiggler/rpg-battle/internal/engine/state"
)

// Format sets how many combatants each side fields at once
type Format string

// Supported formats
const (
	FormatSingles Format = "singles"
	FormatDoubles Format = "doubles"
)

// Slots returns the active slots per side, or 0 for an unknown format
func (f Format) Slots() int {
	switch f {
	case FormatSingles:
		return 1
	case FormatDoubles:
		return 2
	}
	return 0
}

// Party size and level limits
const (
	MaxPartySize = 6
	MaxMoves     = 4
	MinLevel     = 1
	MaxLevel     = 100
)

// ActionKind says what a combatant intends this turn
type ActionKind string

// Action kinds
const (
	ActionMove   ActionKind = "move"
	ActionSwitch ActionKind = "switch"
)

// Action is one combatant's chosen intent for a turn
type Action struct {
	CombatantID string     `json:"combatant_id" yaml:"combatant_id"`
	Kind        ActionKind `json:"kind" yaml:"kind"`
	MoveID      string     `json:"move_id,omitempty" yaml:"move_id,omitempty"`
	// TargetSlot is the opposing slot for single-target moves; -1 lets the
	// engine pick the first live foe
	TargetSlot int    `json:"target_slot" yaml:"target_slot"`
	SwitchTo   string `json:"switch_to,omitempty" yaml:"switch_to,omitempty"`
}

// Request describes one combatant the engine is waiting on
type Request struct {
	CombatantID string `json:"combatant_id"`
	Side        int    `json:"side"`
	Slot        int    `json:"slot"`
	// MustSwitch is set for a fainted active that has to be replaced
	MustSwitch bool     `json:"must_switch,omitempty"`
	Moves      []string `json:"moves,omitempty"`
	Switches   []string `json:"switches,omitempty"`
}

// Estimate is what an opponent can infer about a move against a target.
// Effectiveness uses the target's apparent types.
type Estimate struct {
	AttackerID      string         `json:"attacker_id"`
	TargetID        string         `json:"target_id"`
	MoveID          string         `json:"move_id"`
	Power           float64        `json:"power"`
	Effectiveness   float64        `json:"effectiveness"`
	ApparentSpecies string         `json:"apparent_species"`
	ApparentTypes   []content.Type `json:"apparent_types"`
	// Score is power times effectiveness times same-type bonus
	Score float64 `json:"score"`
}

// CombatantSnapshot is a point-in-time view of one combatant
type CombatantSnapshot struct {
	ID         string               `json:"id"`
	Side       int                  `json:"side"`
	Slot       int                  `json:"slot"`
	Species    string               `json:"species"`
	Appearance state.Appearance     `json:"appearance"`
	Level      int                  `json:"level"`
	HP         int                  `json:"hp"`
	MaxHP      int                  `json:"max_hp"`
	Status     content.Status       `json:"status,omitempty"`
	Ability    string               `json:"ability"`
	Suppressed bool                 `json:"suppressed,omitempty"`
	Types      []content.Type       `json:"types"`
	Stages     map[content.Stat]int `json:"stages,omitempty"`
	Items      []state.HeldItem     `json:"items,omitempty"`
	Illusion   string               `json:"illusion"`
	OnField    bool                 `json:"on_field"`
	Fainted    bool                 `json:"fainted,omitempty"`
}

// SideSnapshot is a point-in-time view of one side
type SideSnapshot struct {
	Index    int                 `json:"index"`
	Tags     []content.SideTag   `json:"tags,omitempty"`
	Defeated bool                `json:"defeated,omitempty"`
	Party    []CombatantSnapshot `json:"party"`
}

// Snapshot is a point-in-time view of a battle
type Snapshot struct {
	Turn   int            `json:"turn"`
	Phase  string         `json:"phase"`
	Ended  bool           `json:"ended"`
	Winner int            `json:"winner"`
	Field  state.Field    `json:"field"`
	Sides  []SideSnapshot `json:"sides"`
}

// TurnLog is the actions submitted for one turn
type TurnLog struct {
	Turn    int      `json:"turn" yaml:"turn"`
	Actions []Action `json:"actions" yaml:"actions"`
}

// Log is everything needed to replay a battle
type Log struct {
	Seed    int64            `json:"seed" yaml:"seed"`
	Format  Format           `json:"format" yaml:"format"`
	Rules   pipeline.Rules   `json:"rules" yaml:"rules"`
	Parties [][]state.Member `json:"parties" yaml:"parties"`
	Turns   []TurnLog        `json:"turns" yaml:"turns"`
}

// Clone returns a deep copy of the log
func (l *Log) Clone() *Log {
	out := &Log{Seed: l.Seed, Format: l.Format, Rules: l.Rules}
	for _, party := range l.Parties {
		out.Parties = append(out.Parties, append([]state.Member(nil), party...))
	}
	for _, t := range l.Turns {
		out.Turns = append(out.Turns, TurnLog{Turn: t.Turn, Actions: append([]Action(nil), t.Actions...)})
	}
	return out
}
