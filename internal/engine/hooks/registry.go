package hooks

import "github.com/KirkDiggler/rpg-battle/internal/content"

// Binding is what a factory knows about the handler it builds
type Binding struct {
	// Owner is the combatant id; empty for terrain and weather
	Owner string
	// Count is the stack size for held items, 1 otherwise
	Count int
}

// Factory builds one handler instance
type Factory func(b Binding) Handler

// Registry maps content ids to handler factories. Content without a factory
// has no behaviour.
type Registry struct {
	abilities map[string]Factory
	items     map[string]Factory
	terrains  map[content.Terrain]Factory
	weathers  map[content.Weather]Factory
	statuses  map[content.Status]Factory
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		abilities: make(map[string]Factory),
		items:     make(map[string]Factory),
		terrains:  make(map[content.Terrain]Factory),
		weathers:  make(map[content.Weather]Factory),
		statuses:  make(map[content.Status]Factory),
	}
}

// RegisterAbility binds an ability id
func (r *Registry) RegisterAbility(id string, f Factory) { r.abilities[id] = f }

// RegisterItem binds an item id
func (r *Registry) RegisterItem(id string, f Factory) { r.items[id] = f }

// RegisterTerrain binds a terrain
func (r *Registry) RegisterTerrain(t content.Terrain, f Factory) { r.terrains[t] = f }

// RegisterWeather binds a weather
func (r *Registry) RegisterWeather(w content.Weather, f Factory) { r.weathers[w] = f }

// RegisterStatus binds a status
func (r *Registry) RegisterStatus(s content.Status, f Factory) { r.statuses[s] = f }

// HasAbility reports whether an ability has behaviour
func (r *Registry) HasAbility(id string) bool {
	_, ok := r.abilities[id]
	return ok
}

// HasItem reports whether an item has behaviour
func (r *Registry) HasItem(id string) bool {
	_, ok := r.items[id]
	return ok
}
