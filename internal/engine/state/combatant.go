package state

import (
	"github.com/KirkDiggler/rpg-toolkit/core"

	"github.com/KirkDiggler/rpg-battle/internal/content"
)

// EntityType is what combatants report through core.Entity
const EntityType = "combatant"

// Stage bounds
const (
	MinStage = -6
	MaxStage = 6
)

// HeldItem is an item id with a stack count
type HeldItem struct {
	ID    string `json:"id" yaml:"id"`
	Count int    `json:"count" yaml:"count"`
}

// Member is the roster entry a combatant is built from
type Member struct {
	ID       string     `json:"id,omitempty" yaml:"id"`
	Species  string     `json:"species" yaml:"species"`
	Nickname string     `json:"nickname,omitempty" yaml:"nickname"`
	Gender   string     `json:"gender,omitempty" yaml:"gender"`
	Shiny    bool       `json:"shiny,omitempty" yaml:"shiny"`
	Ball     string     `json:"ball,omitempty" yaml:"ball"`
	Level    int        `json:"level" yaml:"level"`
	Ability  string     `json:"ability,omitempty" yaml:"ability"`
	Items    []HeldItem `json:"items,omitempty" yaml:"items"`
	Moves    []string   `json:"moves" yaml:"moves"`
	Boss     bool       `json:"boss,omitempty" yaml:"boss"`
}

// Appearance is what an observer sees of a combatant
type Appearance struct {
	SpeciesID string         `json:"species_id"`
	Name      string         `json:"name"`
	Nickname  string         `json:"nickname,omitempty"`
	Gender    string         `json:"gender,omitempty"`
	Shiny     bool           `json:"shiny,omitempty"`
	Ball      string         `json:"ball,omitempty"`
	Types     []content.Type `json:"types"`
}

// TurnFlags are cleared at every turn end
type TurnFlags struct {
	Moved bool
}

// overlay is the battle-scoped, discard-on-switch layer. Base data is never
// touched by anything recorded here.
type overlay struct {
	stages     map[content.Stat]int
	ability    string
	suppressed bool
	types      []content.Type
	illusion   *Illusion
	turn       TurnFlags
	enteredOn  int
}

func newOverlay(turn int) *overlay {
	return &overlay{
		stages:    make(map[content.Stat]int),
		illusion:  NewIllusion(),
		enteredOn: turn,
	}
}

// Combatant is one party member. Exported methods are read-only; every
// mutation happens inside Battle.Apply.
type Combatant struct {
	id         string
	side       int
	partyIndex int
	member     Member
	species    *content.Species
	stats      content.Stats
	hp         int
	status     content.Status
	sleepTurns int
	ability    string
	items      []HeldItem

	slot    int
	overlay *overlay
}

var _ core.Entity = (*Combatant)(nil)

func newCombatant(id string, side, partyIndex int, m Member, species *content.Species) *Combatant {
	ability := m.Ability
	if ability == "" {
		ability = species.Ability
	}
	items := make([]HeldItem, 0, len(m.Items))
	for _, it := range m.Items {
		if it.Count <= 0 {
			it.Count = 1
		}
		items = append(items, it)
	}
	stats := ComputeStats(species.Base, m.Level)
	return &Combatant{
		id:         id,
		side:       side,
		partyIndex: partyIndex,
		member:     m,
		species:    species,
		stats:      stats,
		hp:         stats.HP,
		ability:    ability,
		items:      items,
		slot:       -1,
	}
}

// ComputeStats derives level-scaled stats from a base block using fixed
// maximum individual values and no training values.
func ComputeStats(base content.Stats, level int) content.Stats {
	other := func(b int) int { return (2*b+31)*level/100 + 5 }
	return content.Stats{
		HP:    (2*base.HP+31)*level/100 + level + 10,
		Atk:   other(base.Atk),
		Def:   other(base.Def),
		SpAtk: other(base.SpAtk),
		SpDef: other(base.SpDef),
		Speed: other(base.Speed),
	}
}

// StageMultiplier converts a stat stage to its multiplier
func StageMultiplier(stage int) float64 {
	if stage >= 0 {
		return float64(2+stage) / 2
	}
	return 2 / float64(2-stage)
}

// AccuracyStageMultiplier converts an accuracy or evasion stage
func AccuracyStageMultiplier(stage int) float64 {
	if stage >= 0 {
		return float64(3+stage) / 3
	}
	return 3 / float64(3-stage)
}

// GetID implements core.Entity
func (c *Combatant) GetID() string { return c.id }

// GetType implements core.Entity
func (c *Combatant) GetType() string { return EntityType }

// ID returns the combatant id
func (c *Combatant) ID() string { return c.id }

// Side returns the owning side index
func (c *Combatant) Side() int { return c.side }

// PartyIndex returns the roster position
func (c *Combatant) PartyIndex() int { return c.partyIndex }

// Member returns the roster entry the combatant was built from
func (c *Combatant) Member() Member { return c.member }

// Species returns the true species
func (c *Combatant) Species() *content.Species { return c.species }

// Level returns the level
func (c *Combatant) Level() int { return c.member.Level }

// Stats returns the computed stat block
func (c *Combatant) Stats() content.Stats { return c.stats }

// HP returns current hit points
func (c *Combatant) HP() int { return c.hp }

// MaxHP returns maximum hit points
func (c *Combatant) MaxHP() int { return c.stats.HP }

// Fainted reports whether HP is zero
func (c *Combatant) Fainted() bool { return c.hp <= 0 }

// CanBattle reports whether the member is still usable
func (c *Combatant) CanBattle() bool { return c.hp > 0 }

// Status returns the non-volatile status
func (c *Combatant) Status() content.Status { return c.status }

// SleepTurns returns the remaining sleep counter
func (c *Combatant) SleepTurns() int { return c.sleepTurns }

// Moves returns the move ids
func (c *Combatant) Moves() []string { return append([]string(nil), c.member.Moves...) }

// HasMove reports whether moveID is in the moveset
func (c *Combatant) HasMove(moveID string) bool {
	for _, m := range c.member.Moves {
		if m == moveID {
			return true
		}
	}
	return false
}

// Items returns a copy of the held items
func (c *Combatant) Items() []HeldItem { return append([]HeldItem(nil), c.items...) }

// ItemCount returns how many of itemID are held
func (c *Combatant) ItemCount(itemID string) int {
	for _, it := range c.items {
		if it.ID == itemID {
			return it.Count
		}
	}
	return 0
}

// OnField reports whether the combatant occupies an active slot
func (c *Combatant) OnField() bool { return c.overlay != nil }

// Slot returns the active slot, or -1 when benched
func (c *Combatant) Slot() int { return c.slot }

// BaseAbility returns the roster ability, ignoring overlay changes
func (c *Combatant) BaseAbility() string { return c.ability }

// Ability returns the ability currently held, including replacements. It
// does not consider suppression; the hook dispatcher decides activity.
func (c *Combatant) Ability() string {
	if c.overlay != nil && c.overlay.ability != "" {
		return c.overlay.ability
	}
	return c.ability
}

// AbilitySuppressed reports whether the ability was suppressed directly
func (c *Combatant) AbilitySuppressed() bool {
	return c.overlay != nil && c.overlay.suppressed
}

// Types returns the real types, including overlay overrides
func (c *Combatant) Types() []content.Type {
	if c.overlay != nil && len(c.overlay.types) > 0 {
		return append([]content.Type(nil), c.overlay.types...)
	}
	return append([]content.Type(nil), c.species.Types...)
}

// Stage returns the stage of stat
func (c *Combatant) Stage(stat content.Stat) int {
	if c.overlay == nil {
		return 0
	}
	return c.overlay.stages[stat]
}

// EffectiveStat applies the stat stage to a computed stat
func (c *Combatant) EffectiveStat(stat content.Stat) int {
	return int(float64(c.stats.Get(stat)) * StageMultiplier(c.Stage(stat)))
}

// TurnFlags returns this turn's flags
func (c *Combatant) TurnFlags() TurnFlags {
	if c.overlay == nil {
		return TurnFlags{}
	}
	return c.overlay.turn
}

// EnteredOn returns the turn the current tenure began, or -1 when benched
func (c *Combatant) EnteredOn() int {
	if c.overlay == nil {
		return -1
	}
	return c.overlay.enteredOn
}

// IllusionState returns the disguise lifecycle state for the current tenure
func (c *Combatant) IllusionState() string {
	if c.overlay == nil {
		return IllusionStateInactive
	}
	return c.overlay.illusion.State()
}

// Disguise returns the active disguise, or nil
func (c *Combatant) Disguise() *Disguise {
	if c.overlay == nil {
		return nil
	}
	return c.overlay.illusion.Disguise()
}

// TrueAppearance is the combatant's own look, disguise ignored
func (c *Combatant) TrueAppearance() Appearance {
	return Appearance{
		SpeciesID: c.species.ID,
		Name:      c.species.Name,
		Nickname:  c.member.Nickname,
		Gender:    c.member.Gender,
		Shiny:     c.member.Shiny,
		Ball:      c.member.Ball,
		Types:     c.Types(),
	}
}

// Appearance is what observers see: the donor's look while disguised
func (c *Combatant) Appearance() Appearance {
	if d := c.Disguise(); d != nil {
		return Appearance{
			SpeciesID: d.SpeciesID,
			Name:      d.Name,
			Nickname:  d.Nickname,
			Gender:    d.Gender,
			Shiny:     d.Shiny,
			Ball:      d.Ball,
			Types:     append([]content.Type(nil), d.Types...),
		}
	}
	return c.TrueAppearance()
}

// ApparentTypes are the types an observer would assume
func (c *Combatant) ApparentTypes() []content.Type {
	return c.Appearance().Types
}

// DisguiseFrom snapshots a donor's appearance
func DisguiseFrom(donor *Combatant) Disguise {
	look := donor.TrueAppearance()
	return Disguise{
		DonorID:   donor.id,
		SpeciesID: look.SpeciesID,
		Name:      look.Name,
		Nickname:  look.Nickname,
		Gender:    look.Gender,
		Shiny:     look.Shiny,
		Ball:      look.Ball,
		Types:     append([]content.Type(nil), donor.species.Types...),
	}
}
