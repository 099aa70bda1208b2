package hooks

import (
	"github.com/KirkDiggler/rpg-battle/internal/content"
	"github.com/KirkDiggler/rpg-battle/internal/engine/state"
	"github.com/KirkDiggler/rpg-battle/internal/errors"
)

// Dispatcher assembles handler sets from the current battle state
type Dispatcher struct {
	registry *Registry
	view     state.View
}

var _ Query = (*Dispatcher)(nil)

// NewDispatcher creates a dispatcher over view
func NewDispatcher(registry *Registry, view state.View) *Dispatcher {
	return &Dispatcher{registry: registry, view: view}
}

// Env returns the handler environment backed by this dispatcher
func (d *Dispatcher) Env() Env {
	return Env{View: d.view, Query: d}
}

// abilityFlags reads ability flags without logging; undefined abilities
// behave as flagless.
func (d *Dispatcher) abilityFlags(id string) *content.Ability {
	a, err := d.view.Catalog().Ability(id)
	if err != nil {
		return &content.Ability{ID: id}
	}
	return a
}

// AbilityActive is the single source of truth for ability suppression. An
// ability is inactive when it was suppressed directly, or when another
// combatant on the field holds a field-wide suppressor, unless it is
// unsuppressable.
func (d *Dispatcher) AbilityActive(c *state.Combatant) bool {
	id := c.Ability()
	if id == "" || !c.OnField() || c.Fainted() {
		return false
	}
	if d.abilityFlags(id).Unsuppressable {
		return true
	}
	if c.AbilitySuppressed() {
		return false
	}
	for _, other := range d.view.Active() {
		if other == c || other.Fainted() {
			continue
		}
		if d.abilityFlags(other.Ability()).SuppressesOthers && !other.AbilitySuppressed() {
			return false
		}
	}
	return true
}

// Grounded reports whether ground-relative effects reach c
func (d *Dispatcher) Grounded(c *state.Combatant) bool {
	if content.HasType(c.Types(), content.TypeFlying) {
		return false
	}
	env := d.Env()
	for _, h := range d.ownHandlers(c) {
		if g, ok := h.(GroundedOverride); ok && g.Ungrounded(env, c) {
			return false
		}
	}
	return true
}

// ownHandlers builds c's ability and item handlers without field handlers
func (d *Dispatcher) ownHandlers(c *state.Combatant) []Handler {
	var out []Handler
	if d.AbilityActive(c) {
		if f, ok := d.registry.abilities[c.Ability()]; ok {
			out = append(out, f(Binding{Owner: c.ID(), Count: 1}))
		}
	}
	for _, it := range c.Items() {
		if f, ok := d.registry.items[it.ID]; ok {
			out = append(out, f(Binding{Owner: c.ID(), Count: it.Count}))
		}
	}
	return out
}

// Assemble builds the handler set relevant to participants: field
// conditions, their statuses, then their active abilities, then their items.
// Suppressed abilities are never built.
func (d *Dispatcher) Assemble(participants ...*state.Combatant) (*Set, error) {
	var handlers []Handler
	field := d.view.Field()
	if f, ok := d.registry.terrains[field.Terrain]; ok && field.Terrain != content.TerrainNone {
		handlers = append(handlers, f(Binding{Count: 1}))
	}
	if f, ok := d.registry.weathers[field.Weather]; ok && field.Weather != content.WeatherNone {
		handlers = append(handlers, f(Binding{Count: 1}))
	}

	seen := make(map[string]bool, len(participants))
	var unique []*state.Combatant
	for _, c := range participants {
		if c == nil || seen[c.ID()] {
			continue
		}
		seen[c.ID()] = true
		unique = append(unique, c)
	}

	for _, c := range unique {
		if f, ok := d.registry.statuses[c.Status()]; ok && c.Status() != content.StatusNone {
			handlers = append(handlers, f(Binding{Owner: c.ID(), Count: 1}))
		}
	}
	for _, c := range unique {
		if !d.AbilityActive(c) {
			continue
		}
		if f, ok := d.registry.abilities[c.Ability()]; ok {
			handlers = append(handlers, f(Binding{Owner: c.ID(), Count: 1}))
		}
	}
	for _, c := range unique {
		for _, it := range c.Items() {
			if f, ok := d.registry.items[it.ID]; ok {
				handlers = append(handlers, f(Binding{Owner: c.ID(), Count: it.Count}))
			}
		}
	}

	set, err := newSet(handlers)
	if err != nil {
		return nil, err
	}
	if err := d.verify(set); err != nil {
		return nil, err
	}
	return set, nil
}

// AssembleAll builds the set for every non-fainted active combatant
func (d *Dispatcher) AssembleAll() (*Set, error) {
	var live []*state.Combatant
	for _, c := range d.view.Active() {
		if !c.Fainted() {
			live = append(live, c)
		}
	}
	return d.Assemble(live...)
}

func (d *Dispatcher) verify(set *Set) error {
	for _, h := range set.handlers {
		if h.Source() != SourceAbility {
			continue
		}
		owner, ok := d.view.Combatant(h.Owner())
		if !ok {
			return errors.Invariantf("ability handler %s has unknown owner %s", h.ID(), h.Owner())
		}
		if !d.AbilityActive(owner) {
			return errors.Invariantf("handler %s assembled for suppressed ability of %s", h.ID(), owner.ID())
		}
	}
	return nil
}
