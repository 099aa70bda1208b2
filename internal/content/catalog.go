package content

import (
	"embed"
	"io/fs"
	"log/slog"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/KirkDiggler/rpg-battle/internal/errors"
)

//go:embed data/*.yaml
var embedded embed.FS

// Content kinds, used in missing-content reports
const (
	KindSpecies = "species"
	KindMove    = "move"
	KindAbility = "ability"
	KindItem    = "item"
)

// NeutralMoveID identifies the fallback for undefined moves
const NeutralMoveID = "struggle_noop"

// Catalog is the loaded, read-only content set
type Catalog struct {
	species   map[string]*Species
	moves     map[string]*Move
	abilities map[string]*Ability
	items     map[string]*Item
}

// Load parses the embedded catalog
func Load() (*Catalog, error) {
	sub, err := fs.Sub(embedded, "data")
	if err != nil {
		return nil, errors.Wrap(err, "failed to open embedded content")
	}
	return LoadFS(sub)
}

// LoadFS parses species.yaml, moves.yaml, abilities.yaml and items.yaml from fsys
func LoadFS(fsys fs.FS) (*Catalog, error) {
	var species []*Species
	var moves []*Move
	var abilities []*Ability
	var items []*Item

	files := []struct {
		name   string
		target interface{}
	}{
		{"species.yaml", &species},
		{"moves.yaml", &moves},
		{"abilities.yaml", &abilities},
		{"items.yaml", &items},
	}
	for _, f := range files {
		raw, err := fs.ReadFile(fsys, f.name)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read %s", f.name)
		}
		if err := yaml.Unmarshal(raw, f.target); err != nil {
			return nil, errors.WrapWithCode(err, errors.CodeDataLoss, "failed to parse "+f.name)
		}
	}

	c := &Catalog{
		species:   make(map[string]*Species, len(species)),
		moves:     make(map[string]*Move, len(moves)),
		abilities: make(map[string]*Ability, len(abilities)),
		items:     make(map[string]*Item, len(items)),
	}

	for _, s := range species {
		if s.Name == "" {
			s.Name = DisplayName(s.ID)
		}
		c.species[s.ID] = s
	}
	for _, m := range moves {
		if m.Name == "" {
			m.Name = DisplayName(m.ID)
		}
		if m.Target == "" {
			m.Target = TargetOpponent
		}
		c.moves[m.ID] = m
	}
	for _, a := range abilities {
		if a.Name == "" {
			a.Name = DisplayName(a.ID)
		}
		c.abilities[a.ID] = a
	}
	for _, it := range items {
		if it.Name == "" {
			it.Name = DisplayName(it.ID)
		}
		c.items[it.ID] = it
	}

	return c, nil
}

// Species returns a species definition
func (c *Catalog) Species(id string) (*Species, error) {
	if s, ok := c.species[id]; ok {
		return s, nil
	}
	return nil, errors.MissingContent(KindSpecies, id)
}

// Move returns a move definition
func (c *Catalog) Move(id string) (*Move, error) {
	if m, ok := c.moves[id]; ok {
		return m, nil
	}
	return nil, errors.MissingContent(KindMove, id)
}

// Ability returns an ability definition
func (c *Catalog) Ability(id string) (*Ability, error) {
	if a, ok := c.abilities[id]; ok {
		return a, nil
	}
	return nil, errors.MissingContent(KindAbility, id)
}

// Item returns an item definition
func (c *Catalog) Item(id string) (*Item, error) {
	if it, ok := c.items[id]; ok {
		return it, nil
	}
	return nil, errors.MissingContent(KindItem, id)
}

// SpeciesOrNeutral returns the species, or a typeless stand-in when the id
// is undefined. The miss is logged for the content owner.
func (c *Catalog) SpeciesOrNeutral(id string) *Species {
	s, err := c.Species(id)
	if err == nil {
		return s
	}
	reportMissing(err)
	return &Species{
		ID:    id,
		Name:  DisplayName(id),
		Types: []Type{TypeUnknown},
		Base:  Stats{HP: 50, Atk: 50, Def: 50, SpAtk: 50, SpDef: 50, Speed: 50},
	}
}

// MoveOrNeutral returns the move, or a no-op status move when the id is undefined
func (c *Catalog) MoveOrNeutral(id string) *Move {
	m, err := c.Move(id)
	if err == nil {
		return m
	}
	reportMissing(err)
	return NeutralMove(id)
}

// NeutralMove is the no-op stand-in used for undefined moves
func NeutralMove(requestedID string) *Move {
	return &Move{
		ID:       NeutralMoveID,
		Name:     DisplayName(requestedID),
		Type:     TypeUnknown,
		Category: CategoryStatus,
		Target:   TargetSelf,
	}
}

// AbilityOrNeutral returns the ability, or a flagless one when undefined.
// A flagless ability never has a registered handler, so it does nothing.
func (c *Catalog) AbilityOrNeutral(id string) *Ability {
	if id == "" {
		return &Ability{}
	}
	a, err := c.Ability(id)
	if err == nil {
		return a
	}
	reportMissing(err)
	return &Ability{ID: id, Name: DisplayName(id)}
}

// ItemOrNeutral returns the item, or a flagless one when undefined
func (c *Catalog) ItemOrNeutral(id string) *Item {
	it, err := c.Item(id)
	if err == nil {
		return it
	}
	reportMissing(err)
	return &Item{ID: id, Name: DisplayName(id)}
}

// AllSpecies returns every species ordered by id
func (c *Catalog) AllSpecies() []*Species {
	out := make([]*Species, 0, len(c.species))
	for _, s := range c.species {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// AllMoves returns every move ordered by id
func (c *Catalog) AllMoves() []*Move {
	out := make([]*Move, 0, len(c.moves))
	for _, m := range c.moves {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func reportMissing(err error) {
	meta := errors.GetMeta(err)
	slog.Warn("Content definition missing, using neutral fallback",
		"content_kind", meta[errors.MetaContentKind],
		"content_id", meta[errors.MetaContentID],
	)
}
