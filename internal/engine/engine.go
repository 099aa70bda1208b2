package engine

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/trace"

	"github.com/KirkDiggler/rpg-battle/internal/content"
	"github.com/KirkDiggler/rpg-battle/internal/engine/hooks"
	"github.com/KirkDiggler/rpg-battle/internal/engine/hooks/rules"
	"github.com/KirkDiggler/rpg-battle/internal/engine/pipeline"
	"github.com/KirkDiggler/rpg-battle/internal/engine/rng"
	"github.com/KirkDiggler/rpg-battle/internal/engine/state"
	"github.com/KirkDiggler/rpg-battle/internal/errors"
)

// Config is the configuration for an engine
type Config struct {
	Catalog *content.Catalog
	// Registry defaults to the standard rule set
	Registry *hooks.Registry
	// Tracer defaults to the global provider
	Tracer trace.Tracer
}

// Validate validates the config
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()
	if c.Catalog == nil {
		vb.RequiredField("Catalog")
	}
	return vb.Build()
}

type engine struct {
	catalog  *content.Catalog
	registry *hooks.Registry
	tracer   trace.Tracer
}

// New creates an engine
func New(cfg *Config) (Engine, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}
	registry := cfg.Registry
	if registry == nil {
		registry = rules.NewRegistry()
	}
	return &engine{
		catalog:  cfg.Catalog,
		registry: registry,
		tracer:   cfg.Tracer,
	}, nil
}

// BattleConfig describes one battle
type BattleConfig struct {
	Format Format
	// Seed of zero picks a fresh seed, which is recorded in the log
	Seed    int64
	Rules   pipeline.Rules
	Parties [][]state.Member
}

// Validate validates the battle config
func (c *BattleConfig) Validate() error {
	vb := errors.NewValidationBuilder()
	if c.Format.Slots() == 0 {
		vb.InvalidField("Format", "must be singles or doubles")
	}
	if len(c.Parties) < 2 {
		vb.Fieldf("Parties", "at least two sides are required, got %d", len(c.Parties))
	}
	for side, party := range c.Parties {
		if len(party) == 0 || len(party) > MaxPartySize {
			vb.Fieldf("Parties", "side %d must have 1 to %d members, got %d", side, MaxPartySize, len(party))
		}
		for i, m := range party {
			if m.Species == "" {
				vb.Fieldf("Parties", "side %d member %d has no species", side, i)
			}
			if m.Level < MinLevel || m.Level > MaxLevel {
				vb.Fieldf("Parties", "side %d member %d level %d is outside %d-%d", side, i, m.Level, MinLevel, MaxLevel)
			}
			if len(m.Moves) == 0 || len(m.Moves) > MaxMoves {
				vb.Fieldf("Parties", "side %d member %d must know 1 to %d moves", side, i, MaxMoves)
			}
		}
	}
	return vb.Build()
}

// NewBattle builds a battle from validated rosters
func (e *engine) NewBattle(cfg *BattleConfig) (*Battle, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("battle config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid battle config")
	}

	seed := cfg.Seed
	if seed == 0 {
		var err error
		seed, err = rng.NewSeed()
		if err != nil {
			return nil, errors.Wrap(err, "failed to seed battle")
		}
	}

	b, err := newBattle(e, cfg, seed)
	if err != nil {
		return nil, err
	}
	slog.Debug("Battle created",
		"format", cfg.Format,
		"seed", seed,
		"sides", len(cfg.Parties))
	return b, nil
}

// Replay rebuilds a battle by resubmitting every logged turn. The battle
// comes back suspended where the log ends.
func (e *engine) Replay(ctx context.Context, log *Log) (*Battle, error) {
	if log == nil {
		return nil, errors.InvalidArgument("log is required")
	}
	if log.Seed == 0 {
		return nil, errors.InvalidArgument("log has no seed")
	}
	b, err := e.NewBattle(&BattleConfig{
		Format:  log.Format,
		Seed:    log.Seed,
		Rules:   log.Rules,
		Parties: log.Parties,
	})
	if err != nil {
		return nil, err
	}
	if err := b.Start(ctx); err != nil {
		return nil, err
	}
	for _, turn := range log.Turns {
		if b.Turn() != turn.Turn {
			return nil, errors.InvalidArgumentf("log turn %d does not match battle turn %d", turn.Turn, b.Turn())
		}
		for _, act := range turn.Actions {
			if err := b.Submit(act); err != nil {
				return nil, errors.Wrapf(err, "failed to replay turn %d", turn.Turn)
			}
		}
		if err := b.Advance(ctx); err != nil {
			return nil, errors.Wrapf(err, "failed to replay turn %d", turn.Turn)
		}
	}
	return b, nil
}
