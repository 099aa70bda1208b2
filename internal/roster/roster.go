// Package roster reads battle setups from YAML files
package roster

import (
	"bytes"
	_ "embed"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/KirkDiggler/rpg-battle/internal/engine"
	"github.com/KirkDiggler/rpg-battle/internal/engine/pipeline"
	"github.com/KirkDiggler/rpg-battle/internal/engine/state"
	"github.com/KirkDiggler/rpg-battle/internal/errors"
)

//go:embed demo.yaml
var demo []byte

// File is a battle setup: the format, an optional seed, rules, and one
// party per side
type File struct {
	Format  engine.Format    `yaml:"format"`
	Seed    int64            `yaml:"seed"`
	Rules   pipeline.Rules   `yaml:"rules"`
	Parties [][]state.Member `yaml:"parties"`
}

// Parse decodes a roster document. Unknown keys are rejected.
func Parse(data []byte) (*File, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var f File
	if err := dec.Decode(&f); err != nil {
		return nil, errors.InvalidArgumentf("malformed roster: %v", err)
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

// Load reads and parses a roster file
func Load(path string) (*File, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NotFoundf("roster file %s not found", path)
		}
		return nil, errors.Wrapf(err, "failed to read roster %s", path)
	}
	return Parse(data)
}

// Default is the built-in demo roster
func Default() *File {
	f, err := Parse(demo)
	if err != nil {
		panic("embedded demo roster is invalid: " + err.Error())
	}
	return f
}

// Validate checks the shape of the setup. Species, moves, and levels are
// left to the engine.
func (f *File) Validate() error {
	vb := errors.NewValidationBuilder()
	if f.Format.Slots() == 0 {
		vb.Fieldf("format", "unknown format %q", f.Format)
	}
	if len(f.Parties) < 2 {
		vb.Fieldf("parties", "need at least 2, got %d", len(f.Parties))
	}
	for i, party := range f.Parties {
		if len(party) == 0 || len(party) > engine.MaxPartySize {
			vb.Fieldf("parties", "party %d has %d members, want 1-%d", i, len(party), engine.MaxPartySize)
		}
	}
	return vb.Build()
}

// BattleConfig converts the setup for the engine
func (f *File) BattleConfig() *engine.BattleConfig {
	return &engine.BattleConfig{
		Format:  f.Format,
		Seed:    f.Seed,
		Rules:   f.Rules,
		Parties: f.Parties,
	}
}
