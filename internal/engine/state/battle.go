package state

import (
	"context"
	"fmt"

	"github.com/KirkDiggler/rpg-battle/internal/content"
	"github.com/KirkDiggler/rpg-battle/internal/errors"
)

// DefaultFieldTurns is how long a terrain or weather lasts when set
const DefaultFieldTurns = 5

// Field is the arena-wide condition slots
type Field struct {
	Terrain      content.Terrain `json:"terrain,omitempty"`
	TerrainTurns int             `json:"terrain_turns,omitempty"`
	Weather      content.Weather `json:"weather,omitempty"`
	WeatherTurns int             `json:"weather_turns,omitempty"`
	Turn         int             `json:"turn"`
}

// Side is one team: its party, its active slots and its side conditions
type Side struct {
	index  int
	party  []*Combatant
	active []*Combatant
	tags   map[content.SideTag]bool
}

// Index returns the side index
func (s *Side) Index() int { return s.index }

// Party returns the roster in order
func (s *Side) Party() []*Combatant { return append([]*Combatant(nil), s.party...) }

// Slots returns the active slots; empty slots are nil
func (s *Side) Slots() []*Combatant { return append([]*Combatant(nil), s.active...) }

// HasTag reports whether the side carries tag
func (s *Side) HasTag(tag content.SideTag) bool { return s.tags[tag] }

// Defeated reports whether no member can battle
func (s *Side) Defeated() bool {
	for _, c := range s.party {
		if c.CanBattle() {
			return false
		}
	}
	return true
}

// Config describes the rosters a battle is built from
type Config struct {
	Catalog      *content.Catalog
	SlotsPerSide int
	Parties      [][]Member
}

// View is the read-only face of a battle handed to hooks and rules
type View interface {
	Catalog() *content.Catalog
	Field() Field
	Turn() int
	Sides() []*Side
	Combatant(id string) (*Combatant, bool)
	Active() []*Combatant
	Foes(c *Combatant) []*Combatant
}

// Battle owns all mutable battle state. Apply is its only writer.
type Battle struct {
	catalog   *content.Catalog
	sides     []*Side
	byID      map[string]*Combatant
	field     Field
	phase     string
	log       []Record
	observers []func(Record)
	ended     bool
	winner    int
}

var _ View = (*Battle)(nil)

// New builds a battle from rosters. Members with an undefined species get a
// neutral stand-in; ids default to p<side>-<index>.
func New(cfg Config) (*Battle, error) {
	if cfg.Catalog == nil {
		return nil, errors.InvalidArgument("catalog is required")
	}
	if cfg.SlotsPerSide < 1 {
		return nil, errors.InvalidArgumentf("slots per side must be positive, got %d", cfg.SlotsPerSide)
	}
	if len(cfg.Parties) < 2 {
		return nil, errors.InvalidArgumentf("at least two sides are required, got %d", len(cfg.Parties))
	}

	b := &Battle{
		catalog: cfg.Catalog,
		byID:    make(map[string]*Combatant),
		winner:  -1,
		field:   Field{Turn: 1},
	}
	for sideIdx, party := range cfg.Parties {
		if len(party) == 0 {
			return nil, errors.InvalidArgumentf("side %d has an empty party", sideIdx)
		}
		side := &Side{
			index:  sideIdx,
			active: make([]*Combatant, cfg.SlotsPerSide),
			tags:   make(map[content.SideTag]bool),
		}
		for i, m := range party {
			id := m.ID
			if id == "" {
				id = fmt.Sprintf("p%d-%d", sideIdx+1, i)
			}
			if _, dup := b.byID[id]; dup {
				return nil, errors.AlreadyExistsf("combatant id %s is used twice", id)
			}
			c := newCombatant(id, sideIdx, i, m, cfg.Catalog.SpeciesOrNeutral(m.Species))
			side.party = append(side.party, c)
			b.byID[id] = c
		}
		b.sides = append(b.sides, side)
	}
	return b, nil
}

// Catalog returns the content the battle was built with
func (b *Battle) Catalog() *content.Catalog { return b.catalog }

// Field returns a copy of the field slots
func (b *Battle) Field() Field { return b.field }

// Turn returns the current turn number
func (b *Battle) Turn() int { return b.field.Turn }

// Sides returns every side in index order
func (b *Battle) Sides() []*Side { return append([]*Side(nil), b.sides...) }

// Combatant looks up a combatant by id
func (b *Battle) Combatant(id string) (*Combatant, bool) {
	c, ok := b.byID[id]
	return c, ok
}

// Active returns every occupied slot in canonical (side, slot) order,
// fainted occupants included
func (b *Battle) Active() []*Combatant {
	var out []*Combatant
	for _, s := range b.sides {
		for _, c := range s.active {
			if c != nil {
				out = append(out, c)
			}
		}
	}
	return out
}

// Foes returns the non-fainted active combatants opposing c
func (b *Battle) Foes(c *Combatant) []*Combatant {
	var out []*Combatant
	for _, other := range b.Active() {
		if other.side != c.side && !other.Fainted() {
			out = append(out, other)
		}
	}
	return out
}

// Ended reports whether the battle is over
func (b *Battle) Ended() bool { return b.ended }

// Winner returns the winning side, or -1
func (b *Battle) Winner() int { return b.winner }

// SetPhase labels subsequent records with the running phase
func (b *Battle) SetPhase(label string) { b.phase = label }

// Phase returns the current phase label
func (b *Battle) Phase() string { return b.phase }

// Observe registers fn to receive every record as it is applied
func (b *Battle) Observe(fn func(Record)) {
	b.observers = append(b.observers, fn)
}

// RecordCount returns how many records have been applied
func (b *Battle) RecordCount() int { return len(b.log) }

// Records returns the full effect log
func (b *Battle) Records() []Record {
	return append([]Record(nil), b.log...)
}

func (b *Battle) record(e Effect) {
	r := Record{
		Seq:    len(b.log) + 1,
		Turn:   b.field.Turn,
		Phase:  b.phase,
		Kind:   e.Kind(),
		Effect: e,
	}
	b.log = append(b.log, r)
	for _, fn := range b.observers {
		fn(r)
	}
}

func (b *Battle) lookup(id string) (*Combatant, error) {
	c, ok := b.byID[id]
	if !ok {
		return nil, errors.Invariantf("effect references unknown combatant %s", id)
	}
	return c, nil
}

func (b *Battle) lookupOnField(id string) (*Combatant, error) {
	c, err := b.lookup(id)
	if err != nil {
		return nil, err
	}
	if c.overlay == nil {
		return nil, errors.Invariantf("effect targets %s which is not on the field", id)
	}
	return c, nil
}

// Apply commits one effect. No-op effects (healing at full HP, breaking an
// inactive illusion, raising a maxed stage) are dropped without a record.
func (b *Battle) Apply(ctx context.Context, e Effect) error {
	if b.ended {
		return errors.FailedPrecondition("battle has already ended")
	}

	switch v := e.(type) {
	case MoveUsed:
		return b.applyActed(v.Actor, v)
	case MoveFailed:
		return b.applyActed(v.Actor, v)
	case Damage:
		return b.applyDamage(v)
	case Heal:
		c, err := b.lookup(v.Target)
		if err != nil {
			return err
		}
		if c.Fainted() || v.Amount <= 0 {
			return nil
		}
		v.Amount = min(v.Amount, c.MaxHP()-c.hp)
		if v.Amount == 0 {
			return nil
		}
		c.hp += v.Amount
		b.record(v)
	case Faint:
		c, err := b.lookup(v.Target)
		if err != nil {
			return err
		}
		if c.hp == 0 {
			return nil
		}
		c.hp = 0
		b.record(v)
	case StatusApplied:
		c, err := b.lookup(v.Target)
		if err != nil {
			return err
		}
		if c.Fainted() || c.status != content.StatusNone {
			return nil
		}
		c.status = v.Status
		c.sleepTurns = v.Turns
		b.record(v)
	case StatusCured:
		c, err := b.lookup(v.Target)
		if err != nil {
			return err
		}
		if c.status != v.Status || v.Status == content.StatusNone {
			return nil
		}
		c.status = content.StatusNone
		c.sleepTurns = 0
		b.record(v)
	case SleepTicked:
		c, err := b.lookup(v.Target)
		if err != nil {
			return err
		}
		if c.status != content.StatusSleep || c.sleepTurns <= 0 {
			return nil
		}
		c.sleepTurns--
		b.record(v)
	case StageChanged:
		c, err := b.lookupOnField(v.Target)
		if err != nil {
			return err
		}
		cur := c.overlay.stages[v.Stat]
		next := max(MinStage, min(MaxStage, cur+v.Delta))
		if next == cur {
			return nil
		}
		c.overlay.stages[v.Stat] = next
		v.Delta = next - cur
		b.record(v)
	case TerrainChanged:
		b.field.Terrain = v.Terrain
		b.field.TerrainTurns = v.Turns
		if v.Terrain == content.TerrainNone {
			b.field.TerrainTurns = 0
		}
		b.record(v)
	case WeatherChanged:
		b.field.Weather = v.Weather
		b.field.WeatherTurns = v.Turns
		if v.Weather == content.WeatherNone {
			b.field.WeatherTurns = 0
		}
		b.record(v)
	case FieldCountdown:
		return b.applyCountdown(v)
	case SideTagAdded:
		if v.Side < 0 || v.Side >= len(b.sides) {
			return errors.Invariantf("side tag for unknown side %d", v.Side)
		}
		if b.sides[v.Side].tags[v.Tag] {
			return nil
		}
		b.sides[v.Side].tags[v.Tag] = true
		b.record(v)
	case AbilityChanged:
		c, err := b.lookupOnField(v.Target)
		if err != nil {
			return err
		}
		v.From = c.Ability()
		if v.From == v.To {
			return nil
		}
		c.overlay.ability = v.To
		b.record(v)
	case AbilitySuppressed:
		c, err := b.lookupOnField(v.Target)
		if err != nil {
			return err
		}
		if c.overlay.suppressed {
			return nil
		}
		c.overlay.suppressed = true
		b.record(v)
	case TypesChanged:
		c, err := b.lookupOnField(v.Target)
		if err != nil {
			return err
		}
		c.overlay.types = append([]content.Type(nil), v.Types...)
		b.record(v)
	case IllusionActivated:
		c, err := b.lookupOnField(v.Target)
		if err != nil {
			return err
		}
		if err := c.overlay.illusion.Activate(ctx, v.Donor); err != nil {
			return err
		}
		b.record(v)
	case IllusionBroken:
		c, err := b.lookup(v.Target)
		if err != nil {
			return err
		}
		if c.overlay == nil {
			return nil
		}
		changed, err := c.overlay.illusion.Break(ctx)
		if err != nil {
			return err
		}
		if changed {
			b.record(v)
		}
	case SwitchedOut:
		return b.applySwitchOut(ctx, v)
	case SwitchedIn:
		return b.applySwitchIn(v)
	case ItemConsumed:
		c, err := b.lookup(v.Target)
		if err != nil {
			return err
		}
		for i := range c.items {
			if c.items[i].ID != v.Item {
				continue
			}
			c.items[i].Count--
			if c.items[i].Count <= 0 {
				c.items = append(c.items[:i], c.items[i+1:]...)
			}
			b.record(v)
			return nil
		}
		return nil
	case TurnEnded:
		for _, c := range b.Active() {
			c.overlay.turn = TurnFlags{}
		}
		b.record(v)
		b.field.Turn = v.Turn + 1
	case BattleEnded:
		b.record(v)
		b.ended = true
		b.winner = v.Winner
	default:
		return errors.Invariantf("unknown effect type %T", e)
	}
	return nil
}

func (b *Battle) applyActed(actorID string, e Effect) error {
	c, err := b.lookup(actorID)
	if err != nil {
		return err
	}
	if c.overlay != nil {
		c.overlay.turn.Moved = true
	}
	b.record(e)
	return nil
}

func (b *Battle) applyDamage(v Damage) error {
	c, err := b.lookup(v.Target)
	if err != nil {
		return err
	}
	if c.Fainted() || v.Amount <= 0 {
		return nil
	}
	v.Amount = min(v.Amount, c.hp)
	c.hp -= v.Amount
	b.record(v)
	if c.hp == 0 {
		b.record(Faint{Target: c.id})
	}
	return nil
}

func (b *Battle) applyCountdown(v FieldCountdown) error {
	if b.field.Terrain != content.TerrainNone {
		b.field.TerrainTurns--
		if b.field.TerrainTurns <= 0 {
			b.field.Terrain = content.TerrainNone
			b.field.TerrainTurns = 0
			b.record(TerrainChanged{Terrain: content.TerrainNone})
		}
	}
	if b.field.Weather != content.WeatherNone {
		b.field.WeatherTurns--
		if b.field.WeatherTurns <= 0 {
			b.field.Weather = content.WeatherNone
			b.field.WeatherTurns = 0
			b.record(WeatherChanged{Weather: content.WeatherNone})
		}
	}
	return nil
}

func (b *Battle) applySwitchOut(ctx context.Context, v SwitchedOut) error {
	c, err := b.lookupOnField(v.Target)
	if err != nil {
		return err
	}
	side := b.sides[c.side]
	if side.active[c.slot] != c {
		return errors.Invariantf("combatant %s does not hold slot %d", c.id, c.slot)
	}
	changed, err := c.overlay.illusion.Break(ctx)
	if err != nil {
		return err
	}
	if changed {
		b.record(IllusionBroken{Target: c.id, Reason: BreakSwitchOut})
	}
	v.Side, v.Slot = c.side, c.slot
	side.active[c.slot] = nil
	c.slot = -1
	c.overlay = nil
	b.record(v)
	return nil
}

func (b *Battle) applySwitchIn(v SwitchedIn) error {
	c, err := b.lookup(v.Target)
	if err != nil {
		return err
	}
	if c.side != v.Side || v.Side < 0 || v.Side >= len(b.sides) {
		return errors.Invariantf("combatant %s cannot enter side %d", c.id, v.Side)
	}
	side := b.sides[v.Side]
	if v.Slot < 0 || v.Slot >= len(side.active) {
		return errors.Invariantf("slot %d out of range", v.Slot)
	}
	if side.active[v.Slot] != nil {
		return errors.Invariantf("slot %d on side %d is occupied", v.Slot, v.Side)
	}
	if c.overlay != nil {
		return errors.Invariantf("combatant %s is already on the field", c.id)
	}
	if c.Fainted() {
		return errors.Invariantf("fainted combatant %s cannot enter", c.id)
	}
	c.slot = v.Slot
	c.overlay = newOverlay(b.field.Turn)
	side.active[v.Slot] = c
	b.record(v)
	return nil
}
