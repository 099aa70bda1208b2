// Package battle runs live battles for remote players: it owns the engine
// battles in memory, persists their logs turn by turn, and fans effects out
// to subscribers.
package battle

//go:generate mockgen -destination=mock/mock_service.go -package=battlemock github.com/KirkDiggler/rpg-battle/internal/orchestrators/battle Service

import (
	"context"
	"log/slog"
	"sync"

	"github.com/KirkDiggler/rpg-toolkit/core"
	"github.com/KirkDiggler/rpg-toolkit/events"

	"github.com/KirkDiggler/rpg-battle/internal/engine"
	"github.com/KirkDiggler/rpg-battle/internal/engine/phase"
	"github.com/KirkDiggler/rpg-battle/internal/engine/state"
	"github.com/KirkDiggler/rpg-battle/internal/errors"
	"github.com/KirkDiggler/rpg-battle/internal/pkg/idgen"
	"github.com/KirkDiggler/rpg-battle/internal/repositories/battlelog"
)

// DefaultSubscriberBuffer is the effect backlog a subscriber may fall behind
// by before records are dropped for it
const DefaultSubscriberBuffer = 256

// Service defines battle operations
type Service interface {
	StartBattle(ctx context.Context, input *StartBattleInput) (*StartBattleOutput, error)
	SubmitActions(ctx context.Context, input *SubmitActionsInput) (*SubmitActionsOutput, error)
	GetBattle(ctx context.Context, input *GetBattleInput) (*GetBattleOutput, error)
	ListBattles(ctx context.Context, input *ListBattlesInput) (*ListBattlesOutput, error)
	RunUntilPhase(ctx context.Context, input *RunUntilPhaseInput) (*RunUntilPhaseOutput, error)
	PreviewEffectiveness(ctx context.Context, input *PreviewEffectivenessInput) (*PreviewEffectivenessOutput, error)
	ReplayBattle(ctx context.Context, input *ReplayBattleInput) (*ReplayBattleOutput, error)
	Subscribe(ctx context.Context, input *SubscribeInput) (*SubscribeOutput, error)
}

// Config holds the dependencies for the battle orchestrator
type Config struct {
	Engine        engine.Engine
	BattleLogRepo battlelog.Repository
	IDGenerator   idgen.Generator
	// SubscriberBuffer defaults to DefaultSubscriberBuffer
	SubscriberBuffer int
	// DisableCrits turns critical hits off for every battle started here
	DisableCrits bool
}

// Validate ensures all required dependencies are provided
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()

	if c.Engine == nil {
		vb.RequiredField("Engine")
	}
	if c.BattleLogRepo == nil {
		vb.RequiredField("BattleLogRepo")
	}
	if c.IDGenerator == nil {
		vb.RequiredField("IDGenerator")
	}
	if c.SubscriberBuffer < 0 {
		vb.InvalidField("SubscriberBuffer", "cannot be negative")
	}

	return vb.Build()
}

// effectEventType is the bus topic every recorded effect is published on
const effectEventType = "battle.effect"

// effectEvent carries one effect record across a session's bus
type effectEvent struct {
	*events.GameEvent
	record state.Record
}

// session is one live battle. mu serializes every engine call on it.
type session struct {
	mu        sync.Mutex
	id        string
	battle    *engine.Battle
	persisted int
	// result as last written to the store
	savedEnded  bool
	savedWinner int

	bus events.EventBus
}

func newSession(id string, b *engine.Battle, persisted int, ended bool, winner int) *session {
	sess := &session{
		id:          id,
		battle:      b,
		persisted:   persisted,
		savedEnded:  ended,
		savedWinner: winner,
		bus:         events.NewBus(),
	}
	b.Observe(sess.publish)
	return sess
}

var _ core.Entity = (*session)(nil)

// GetID returns the battle ID
func (s *session) GetID() string { return s.id }

// GetType returns the entity type
func (s *session) GetType() string { return "battle" }

func (s *session) publish(rec state.Record) {
	ev := &effectEvent{
		GameEvent: events.NewGameEvent(effectEventType, s, nil),
		record:    rec,
	}
	if err := s.bus.Publish(context.Background(), ev); err != nil {
		slog.Warn("Failed to publish effect",
			"battle_id", s.id,
			"seq", rec.Seq,
			"error", err)
	}
}

// subscriber feeds one channel from the session bus. closed guards the
// channel against a publish racing with cancel.
type subscriber struct {
	mu       sync.Mutex
	closed   bool
	ch       chan state.Record
	battleID string
}

func (sub *subscriber) handle(_ context.Context, e events.Event) error {
	ev, ok := e.(*effectEvent)
	if !ok {
		return nil
	}
	sub.mu.Lock()
	defer sub.mu.Unlock()
	if sub.closed {
		return nil
	}
	select {
	case sub.ch <- ev.record:
	default:
		slog.Warn("Dropping effect for slow subscriber",
			"battle_id", sub.battleID,
			"seq", ev.record.Seq)
	}
	return nil
}

func (sub *subscriber) close() {
	sub.mu.Lock()
	defer sub.mu.Unlock()
	if !sub.closed {
		sub.closed = true
		close(sub.ch)
	}
}

type orchestrator struct {
	engine   engine.Engine
	repo     battlelog.Repository
	idGen    idgen.Generator
	subBuf   int
	noCrits  bool
	mu       sync.RWMutex
	sessions map[string]*session
}

// NewOrchestrator creates a new battle orchestrator with the provided dependencies
func NewOrchestrator(cfg *Config) (Service, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	buf := cfg.SubscriberBuffer
	if buf == 0 {
		buf = DefaultSubscriberBuffer
	}
	return &orchestrator{
		engine:   cfg.Engine,
		repo:     cfg.BattleLogRepo,
		idGen:    cfg.IDGenerator,
		subBuf:   buf,
		noCrits:  cfg.DisableCrits,
		sessions: make(map[string]*session),
	}, nil
}

// StartBattle creates a battle, sends out the leads, and stores its log
func (o *orchestrator) StartBattle(ctx context.Context, input *StartBattleInput) (*StartBattleOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	rules := input.Rules
	if o.noCrits {
		rules.DisableCrits = true
	}
	b, err := o.engine.NewBattle(&engine.BattleConfig{
		Format:  input.Format,
		Seed:    input.Seed,
		Rules:   rules,
		Parties: input.Parties,
	})
	if err != nil {
		return nil, err
	}
	if err := b.Start(ctx); err != nil {
		return nil, errors.Wrap(err, "failed to start battle")
	}

	id := o.idGen.Generate()
	_, err = o.repo.Create(ctx, battlelog.CreateInput{Record: &battlelog.Record{
		BattleID: id,
		Log:      b.Log(),
		Ended:    b.Ended(),
		Winner:   b.Winner(),
	}})
	if err != nil {
		return nil, errors.Wrap(err, "failed to store battle")
	}

	o.mu.Lock()
	o.sessions[id] = newSession(id, b, 0, b.Ended(), b.Winner())
	o.mu.Unlock()

	slog.Info("Battle started",
		"battle_id", id,
		"format", input.Format,
		"seed", b.Seed())

	return &StartBattleOutput{
		BattleID: id,
		Snapshot: b.Snapshot(),
		Requests: b.Requests(),
		Effects:  b.Effects(),
	}, nil
}

// session returns the live battle, rebuilding it from its stored log when
// this process has not seen it yet
func (o *orchestrator) session(ctx context.Context, battleID string) (*session, error) {
	if battleID == "" {
		return nil, errors.InvalidArgument("battle ID is required")
	}

	o.mu.RLock()
	sess, ok := o.sessions[battleID]
	o.mu.RUnlock()
	if ok {
		return sess, nil
	}

	out, err := o.repo.Get(ctx, battlelog.GetInput{BattleID: battleID})
	if err != nil {
		return nil, err
	}
	b, err := o.engine.Replay(ctx, out.Record.Log)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to restore battle %s", battleID)
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	if existing, ok := o.sessions[battleID]; ok {
		return existing, nil
	}
	sess = newSession(battleID, b, len(out.Record.Log.Turns), out.Record.Ended, out.Record.Winner)
	o.sessions[battleID] = sess
	slog.Debug("Battle restored from log",
		"battle_id", battleID,
		"turns", sess.persisted)
	return sess, nil
}

// persist appends every turn the battle has started since the last write,
// then writes the result on its own when a turn finished after it was saved.
// The caller holds sess.mu.
func (o *orchestrator) persist(ctx context.Context, sess *session) error {
	log := sess.battle.Log()
	ended, winner := sess.battle.Ended(), sess.battle.Winner()
	for sess.persisted < len(log.Turns) {
		turn := log.Turns[sess.persisted]
		_, err := o.repo.AppendTurn(ctx, battlelog.AppendTurnInput{
			BattleID: sess.id,
			Turn:     turn,
			Ended:    ended,
			Winner:   winner,
		})
		if err != nil {
			slog.Error("Failed to persist turn",
				"battle_id", sess.id,
				"turn", turn.Turn,
				"error", err)
			return errors.Wrapf(err, "failed to persist turn %d", turn.Turn)
		}
		sess.persisted++
		sess.savedEnded, sess.savedWinner = ended, winner
	}

	if sess.savedEnded == ended && sess.savedWinner == winner {
		return nil
	}
	_, err := o.repo.SetResult(ctx, battlelog.SetResultInput{
		BattleID: sess.id,
		Ended:    ended,
		Winner:   winner,
	})
	if err != nil {
		slog.Error("Failed to persist battle result",
			"battle_id", sess.id,
			"ended", ended,
			"winner", winner,
			"error", err)
		return errors.Wrap(err, "failed to persist battle result")
	}
	sess.savedEnded, sess.savedWinner = ended, winner
	return nil
}

// SubmitActions records the given choices and resolves the turn once every
// requested combatant has one. The first illegal choice stops the batch;
// choices before it stay pending.
func (o *orchestrator) SubmitActions(ctx context.Context, input *SubmitActionsInput) (*SubmitActionsOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if len(input.Actions) == 0 {
		return nil, errors.InvalidArgument("at least one action is required")
	}
	sess, err := o.session(ctx, input.BattleID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	b := sess.battle
	before := len(b.Effects())
	for _, act := range input.Actions {
		if err := b.Submit(act); err != nil {
			return nil, err
		}
	}

	out := &SubmitActionsOutput{}
	if b.Ready() && !input.Defer {
		if err := b.Advance(ctx); err != nil {
			return nil, errors.Wrap(err, "failed to resolve turn")
		}
		out.Resolved = true
		if err := o.persist(ctx, sess); err != nil {
			return nil, err
		}
	}

	out.Snapshot = b.Snapshot()
	out.Requests = b.Requests()
	out.Effects = b.Effects()[before:]
	return out, nil
}

// GetBattle returns the current view of a battle
func (o *orchestrator) GetBattle(ctx context.Context, input *GetBattleInput) (*GetBattleOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	sess, err := o.session(ctx, input.BattleID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	return &GetBattleOutput{
		Snapshot: sess.battle.Snapshot(),
		Requests: sess.battle.Requests(),
		Log:      sess.battle.Log(),
	}, nil
}

// ListBattles returns stored battles, newest first
func (o *orchestrator) ListBattles(ctx context.Context, input *ListBattlesInput) (*ListBattlesOutput, error) {
	if input == nil {
		input = &ListBattlesInput{}
	}
	out, err := o.repo.List(ctx, battlelog.ListInput{Limit: input.Limit})
	if err != nil {
		return nil, err
	}
	return &ListBattlesOutput{Battles: out.Records}, nil
}

// RunUntilPhase pauses the battle before the next unit of the given kind.
// It never skips or reorders units.
func (o *orchestrator) RunUntilPhase(ctx context.Context, input *RunUntilPhaseInput) (*RunUntilPhaseOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	kind, err := phase.ParseKind(input.Phase)
	if err != nil {
		return nil, err
	}
	sess, err := o.session(ctx, input.BattleID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	b := sess.battle
	before := len(b.Effects())
	reached, err := b.RunUntil(ctx, kind)
	if err != nil {
		return nil, errors.Wrap(err, "failed to run battle")
	}
	if err := o.persist(ctx, sess); err != nil {
		return nil, err
	}

	out := &RunUntilPhaseOutput{
		Reached:  reached,
		Snapshot: b.Snapshot(),
		Effects:  b.Effects()[before:],
	}
	if next, ok := b.NextPhase(); ok {
		out.NextPhase = string(next)
	}
	return out, nil
}

// PreviewEffectiveness ranks the attacker's moves against a target as the
// attacker's side perceives it
func (o *orchestrator) PreviewEffectiveness(ctx context.Context, input *PreviewEffectivenessInput) (*PreviewEffectivenessOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	vb := errors.NewValidationBuilder()
	errors.ValidateRequired("AttackerID", input.AttackerID, vb)
	errors.ValidateRequired("TargetID", input.TargetID, vb)
	if err := vb.Build(); err != nil {
		return nil, err
	}
	sess, err := o.session(ctx, input.BattleID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	estimates, err := sess.battle.PreviewAll(input.AttackerID, input.TargetID)
	if err != nil {
		return nil, err
	}
	return &PreviewEffectivenessOutput{Estimates: estimates}, nil
}

// ReplayBattle rebuilds a stored battle from its log alone, independent of
// any live copy
func (o *orchestrator) ReplayBattle(ctx context.Context, input *ReplayBattleInput) (*ReplayBattleOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if input.BattleID == "" {
		return nil, errors.InvalidArgument("battle ID is required")
	}
	out, err := o.repo.Get(ctx, battlelog.GetInput{BattleID: input.BattleID})
	if err != nil {
		return nil, err
	}
	b, err := o.engine.Replay(ctx, out.Record.Log)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to replay battle %s", input.BattleID)
	}
	return &ReplayBattleOutput{
		Snapshot: b.Snapshot(),
		Effects:  b.Effects(),
		Ended:    b.Ended(),
		Winner:   b.Winner(),
	}, nil
}

// Subscribe streams effects recorded from now on
func (o *orchestrator) Subscribe(ctx context.Context, input *SubscribeInput) (*SubscribeOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	sess, err := o.session(ctx, input.BattleID)
	if err != nil {
		return nil, err
	}

	sub := &subscriber{
		ch:       make(chan state.Record, o.subBuf),
		battleID: sess.id,
	}
	// under sess.mu no effect lands between the ended check and the subscribe
	sess.mu.Lock()
	ended := sess.battle.Ended()
	subID := sess.bus.SubscribeFunc(effectEventType, 0, sub.handle)
	sess.mu.Unlock()

	done := make(chan struct{})
	var once sync.Once
	cancel := func() {
		once.Do(func() {
			if err := sess.bus.Unsubscribe(subID); err != nil {
				slog.Warn("Failed to unsubscribe from battle",
					"battle_id", sess.id,
					"subscriber", subID,
					"error", err)
			}
			sub.close()
			close(done)
		})
	}
	go func() {
		select {
		case <-ctx.Done():
			cancel()
		case <-done:
		}
	}()

	return &SubscribeOutput{Effects: sub.ch, Cancel: cancel, Ended: ended}, nil
}
