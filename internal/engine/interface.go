// Package engine is the battle facade: it builds a battle from rosters,
// collects actions, and drives the phase scheduler one turn at a time.
package engine

//go:generate mockgen -destination=mock/mock_engine.go -package=enginemock github.com/KirkDiggler/rpg-battle/internal/engine Engine

import (
	"context"
)

// Engine creates battles from rosters and from recorded logs
type Engine interface {
	// NewBattle builds a battle that has not started yet
	NewBattle(cfg *BattleConfig) (*Battle, error)

	// Replay rebuilds a battle by resubmitting every logged turn
	Replay(ctx context.Context, log *Log) (*Battle, error)
}
