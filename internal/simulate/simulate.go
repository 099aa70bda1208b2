// Package simulate plays whole battles offline with scripted pickers
package simulate

import (
	"context"
	"log/slog"

	"github.com/KirkDiggler/rpg-battle/internal/engine"
	"github.com/KirkDiggler/rpg-battle/internal/engine/state"
	"github.com/KirkDiggler/rpg-battle/internal/errors"
)

// DefaultMaxTurns stops a battle that is not converging
const DefaultMaxTurns = 200

// Picker chooses the action for one pending request
type Picker interface {
	Pick(b *engine.Battle, req engine.Request) (engine.Action, error)
}

// PickerFunc adapts a function to Picker
type PickerFunc func(b *engine.Battle, req engine.Request) (engine.Action, error)

// Pick calls f
func (f PickerFunc) Pick(b *engine.Battle, req engine.Request) (engine.Action, error) {
	return f(b, req)
}

// Config describes one simulated battle
type Config struct {
	Engine engine.Engine
	Battle *engine.BattleConfig
	// Pickers are indexed by side; missing sides use FirstLegal
	Pickers  []Picker
	MaxTurns int
	// OnEffect sees every record as it is applied
	OnEffect func(state.Record)
}

// Validate validates the config
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()
	if c.Engine == nil {
		vb.RequiredField("Engine")
	}
	if c.Battle == nil {
		vb.RequiredField("Battle")
	}
	if c.MaxTurns < 0 {
		vb.InvalidField("MaxTurns", "cannot be negative")
	}
	return vb.Build()
}

// Result is the finished (or abandoned) battle
type Result struct {
	Turns    int
	Ended    bool
	Winner   int
	Snapshot *engine.Snapshot
	Effects  []state.Record
	Log      *engine.Log
}

func (c *Config) picker(side int) Picker {
	if side < len(c.Pickers) && c.Pickers[side] != nil {
		return c.Pickers[side]
	}
	return FirstLegal
}

// Run plays a battle until it ends or MaxTurns turns have resolved
func Run(ctx context.Context, cfg *Config) (*Result, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}
	maxTurns := cfg.MaxTurns
	if maxTurns == 0 {
		maxTurns = DefaultMaxTurns
	}

	b, err := cfg.Engine.NewBattle(cfg.Battle)
	if err != nil {
		return nil, err
	}
	if cfg.OnEffect != nil {
		b.Observe(cfg.OnEffect)
	}
	if err := b.Start(ctx); err != nil {
		return nil, errors.Wrap(err, "failed to start battle")
	}

	turns := 0
	for !b.Ended() && turns < maxTurns {
		for _, req := range b.Requests() {
			act, err := cfg.picker(req.Side).Pick(b, req)
			if err != nil {
				return nil, errors.Wrapf(err, "failed to pick for %s", req.CombatantID)
			}
			if err := b.Submit(act); err != nil {
				return nil, errors.Wrapf(err, "picker chose an illegal action for %s", req.CombatantID)
			}
		}
		if !b.Ready() {
			return nil, errors.Internalf("turn %d is still waiting on actions", b.Turn())
		}
		if err := b.Advance(ctx); err != nil {
			return nil, err
		}
		turns++
	}

	if !b.Ended() {
		slog.Warn("Simulation stopped before the battle ended",
			"seed", b.Seed(),
			"turns", turns)
	}

	return &Result{
		Turns:    turns,
		Ended:    b.Ended(),
		Winner:   b.Winner(),
		Snapshot: b.Snapshot(),
		Effects:  b.Effects(),
		Log:      b.Log(),
	}, nil
}
