// Package rules holds the concrete ability, item and field behaviour bound
// to the hook registry.
package rules

import (
	"github.com/KirkDiggler/rpg-battle/internal/engine/hooks"
	"github.com/KirkDiggler/rpg-battle/internal/engine/state"
)

// NewRegistry returns a registry with every built-in rule bound
func NewRegistry() *hooks.Registry {
	r := hooks.NewRegistry()
	Register(r)
	return r
}

// Register binds every built-in rule into r
func Register(r *hooks.Registry) {
	registerField(r)
	registerAbilities(r)
	registerItems(r)
}

// owner resolves a handler's combatant, reporting false when it is gone
// from the field or fainted
func owner(env hooks.Env, h hooks.Handler) (*state.Combatant, bool) {
	c, ok := env.View.Combatant(h.Owner())
	if !ok || !c.OnField() || c.Fainted() {
		return nil, false
	}
	return c, true
}

func isOwner(h hooks.Handler, c *state.Combatant) bool {
	return c != nil && c.ID() == h.Owner()
}
