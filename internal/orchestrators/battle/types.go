package battle

import (
	"github.com/KirkDiggler/rpg-battle/internal/engine"
	"github.com/KirkDiggler/rpg-battle/internal/engine/pipeline"
	"github.com/KirkDiggler/rpg-battle/internal/engine/state"
	"github.com/KirkDiggler/rpg-battle/internal/repositories/battlelog"
)

// StartBattleInput describes a new battle
type StartBattleInput struct {
	Format engine.Format
	// Seed of zero picks a fresh one
	Seed    int64
	Rules   pipeline.Rules
	Parties [][]state.Member
}

// StartBattleOutput is the battle waiting on its first turn
type StartBattleOutput struct {
	BattleID string
	Snapshot *engine.Snapshot
	Requests []engine.Request
	Effects  []state.Record
}

// SubmitActionsInput carries choices for the pending turn
type SubmitActionsInput struct {
	BattleID string
	Actions  []engine.Action
	// Defer leaves a complete turn unresolved so RunUntilPhase can step it
	Defer bool
}

// SubmitActionsOutput reports what the submission set in motion. Resolved
// is false while other combatants still owe an action.
type SubmitActionsOutput struct {
	Resolved bool
	Snapshot *engine.Snapshot
	Requests []engine.Request
	Effects  []state.Record
}

// GetBattleInput identifies a battle
type GetBattleInput struct {
	BattleID string
}

// GetBattleOutput is the current view of a battle
type GetBattleOutput struct {
	Snapshot *engine.Snapshot
	Requests []engine.Request
	Log      *engine.Log
}

// ListBattlesInput pages stored battles
type ListBattlesInput struct {
	Limit int
}

// ListBattlesOutput contains stored battles, newest first
type ListBattlesOutput struct {
	Battles []*battlelog.Record
}

// RunUntilPhaseInput asks the battle to pause before a phase kind
type RunUntilPhaseInput struct {
	BattleID string
	Phase    string
}

// RunUntilPhaseOutput reports where the battle stopped
type RunUntilPhaseOutput struct {
	Reached   bool
	NextPhase string
	Snapshot  *engine.Snapshot
	Effects   []state.Record
}

// PreviewEffectivenessInput picks an attacker and the target it is sizing up
type PreviewEffectivenessInput struct {
	BattleID   string
	AttackerID string
	TargetID   string
}

// PreviewEffectivenessOutput ranks the attacker's moves, best first
type PreviewEffectivenessOutput struct {
	Estimates []*engine.Estimate
}

// ReplayBattleInput identifies a stored battle to replay
type ReplayBattleInput struct {
	BattleID string
}

// ReplayBattleOutput is the replayed battle
type ReplayBattleOutput struct {
	Snapshot *engine.Snapshot
	Effects  []state.Record
	Ended    bool
	Winner   int
}

// SubscribeInput identifies the battle to follow
type SubscribeInput struct {
	BattleID string
}

// SubscribeOutput delivers effects as they are recorded. Effects is closed
// when Cancel is called or the subscribe context ends.
type SubscribeOutput struct {
	Effects <-chan state.Record
	Cancel  func()
	// Ended is set when the battle was already over at subscribe time, so
	// no battle_ended record will follow
	Ended bool
}
