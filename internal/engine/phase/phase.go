// Package phase sequences a battle into atomic units and runs them in order.
//
// A turn is queued as its action units in resolver order, one unit per
// residual category, a field countdown, and a turn end, followed by the next
// command collection. The queue suspends only at command collection.
package phase

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/KirkDiggler/rpg-battle/internal/engine/hooks"
	"github.com/KirkDiggler/rpg-battle/internal/engine/state"
	"github.com/KirkDiggler/rpg-battle/internal/errors"
)

const tracerName = "github.com/KirkDiggler/rpg-battle/internal/engine/phase"

// Kind classifies a unit
type Kind string

// Unit kinds
const (
	KindBattleStart       Kind = "battle_start"
	KindCommandCollection Kind = "command_collection"
	KindSwitch            Kind = "switch"
	KindMoveExecution     Kind = "move_execution"
	KindResidual          Kind = "residual"
	KindTurnEnd           Kind = "turn_end"
)

// Kinds lists every unit kind in the order a turn visits them
var Kinds = []Kind{KindBattleStart, KindCommandCollection, KindSwitch, KindMoveExecution, KindResidual, KindTurnEnd}

// ParseKind converts a wire name into a Kind
func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", errors.InvalidArgumentf("unknown phase kind %q", s)
}

// Unit is one atomic step. Run is nil for command collection.
type Unit struct {
	Kind Kind
	Name string
	Run  func(ctx context.Context) error
}

// Label is the phase label recorded on effects
func (u Unit) Label() string {
	if u.Name == "" {
		return string(u.Kind)
	}
	return string(u.Kind) + ":" + u.Name
}

// Config is the configuration for a scheduler
type Config struct {
	Battle     *state.Battle
	Dispatcher *hooks.Dispatcher
	Tracer     trace.Tracer
}

// Validate validates the config
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()
	if c.Battle == nil {
		vb.RequiredField("Battle")
	}
	if c.Dispatcher == nil {
		vb.RequiredField("Dispatcher")
	}
	return vb.Build()
}

// Scheduler owns the unit queue of one battle
type Scheduler struct {
	battle     *state.Battle
	dispatcher *hooks.Dispatcher
	tracer     trace.Tracer
	queue      []Unit
	executed   int
}

// New creates a scheduler
func New(cfg *Config) (*Scheduler, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}
	tracer := cfg.Tracer
	if tracer == nil {
		tracer = otel.Tracer(tracerName)
	}
	return &Scheduler{
		battle:     cfg.Battle,
		dispatcher: cfg.Dispatcher,
		tracer:     tracer,
	}, nil
}

// Push appends units to the queue
func (s *Scheduler) Push(units ...Unit) {
	s.queue = append(s.queue, units...)
}

// Next returns the unit at the head of the queue
func (s *Scheduler) Next() (Unit, bool) {
	if len(s.queue) == 0 {
		return Unit{}, false
	}
	return s.queue[0], true
}

// Pending lists the queued units without running them
func (s *Scheduler) Pending() []Unit {
	return append([]Unit(nil), s.queue...)
}

// Executed counts units run so far
func (s *Scheduler) Executed() int { return s.executed }

// Suspended reports whether the queue waits on external input
func (s *Scheduler) Suspended() bool {
	next, ok := s.Next()
	return ok && next.Kind == KindCommandCollection
}

// Step runs the head unit. Command collection cannot be stepped; it is
// completed by BeginTurn.
func (s *Scheduler) Step(ctx context.Context) error {
	unit, ok := s.Next()
	if !ok {
		return errors.FailedPrecondition("phase queue is empty")
	}
	if unit.Kind == KindCommandCollection {
		return errors.FailedPrecondition("waiting for actions")
	}
	s.queue = s.queue[1:]
	return s.run(ctx, unit)
}

func (s *Scheduler) run(ctx context.Context, unit Unit) error {
	ctx, span := s.tracer.Start(ctx, "phase."+string(unit.Kind), trace.WithAttributes(
		attribute.String("phase.kind", string(unit.Kind)),
		attribute.String("phase.name", unit.Name),
		attribute.Int("battle.turn", s.battle.Turn()),
	))
	defer span.End()

	s.battle.SetPhase(unit.Label())
	s.executed++
	if unit.Run == nil {
		return nil
	}
	if err := unit.Run(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		slog.Error("Phase unit failed",
			"phase", unit.Label(),
			"turn", s.battle.Turn(),
			"error", err)
		return err
	}
	if s.battle.Ended() {
		s.queue = nil
	}
	return nil
}

// Run executes units until the queue suspends, empties, or fails
func (s *Scheduler) Run(ctx context.Context) error {
	for {
		if _, ok := s.Next(); !ok || s.Suspended() {
			return nil
		}
		if err := s.Step(ctx); err != nil {
			return err
		}
	}
}

// RunUntil executes units until the head is of the given kind, and reports
// whether it got there. It pauses before that unit; it never skips or
// reorders anything.
func (s *Scheduler) RunUntil(ctx context.Context, kind Kind) (bool, error) {
	for {
		next, ok := s.Next()
		if !ok {
			return false, nil
		}
		if next.Kind == kind {
			return true, nil
		}
		if next.Kind == KindCommandCollection {
			return false, nil
		}
		if err := s.Step(ctx); err != nil {
			return false, err
		}
	}
}

// BeginTurn completes the pending command collection and queues the turn:
// the given action units, the residual units, the turn end, and the next
// collection.
func (s *Scheduler) BeginTurn(ctx context.Context, actions []Unit) error {
	if !s.Suspended() {
		return errors.FailedPrecondition("no command collection is pending")
	}
	collection := s.queue[0]
	s.queue = s.queue[1:]
	if err := s.run(ctx, collection); err != nil {
		return err
	}

	s.Push(actions...)
	s.Push(s.ResidualUnits()...)
	s.Push(s.TurnEndUnit(), Unit{Kind: KindCommandCollection, Name: fmt.Sprintf("turn_%d", s.battle.Turn()+1)})
	return nil
}

// ResidualUnits builds one unit per residual category in priority order,
// then the field countdown
func (s *Scheduler) ResidualUnits() []Unit {
	units := make([]Unit, 0, len(hooks.ResidualOrder)+1)
	for _, category := range hooks.ResidualOrder {
		units = append(units, Unit{
			Kind: KindResidual,
			Name: string(category),
			Run: func(ctx context.Context) error {
				return s.runResidual(ctx, category)
			},
		})
	}
	units = append(units, Unit{
		Kind: KindResidual,
		Name: "countdown",
		Run: func(ctx context.Context) error {
			return s.battle.Apply(ctx, state.FieldCountdown{Turn: s.battle.Turn()})
		},
	})
	return units
}

// runResidual applies each handler's effects before the next one looks at
// the state
func (s *Scheduler) runResidual(ctx context.Context, category hooks.ResidualUnit) error {
	set, err := s.dispatcher.AssembleAll()
	if err != nil {
		return err
	}
	env := s.dispatcher.Env()
	for _, h := range set.ResidualHandlers(category) {
		for _, e := range h.Residual(env) {
			if err := s.battle.Apply(ctx, e); err != nil {
				return err
			}
		}
	}
	return nil
}

// TurnEndUnit clears per-turn flags, advances the counter, and checks for
// a winner
func (s *Scheduler) TurnEndUnit() Unit {
	return Unit{
		Kind: KindTurnEnd,
		Run: func(ctx context.Context) error {
			if err := s.battle.Apply(ctx, state.TurnEnded{Turn: s.battle.Turn()}); err != nil {
				return err
			}
			winner, over := Outcome(s.battle)
			if !over {
				return nil
			}
			slog.Info("Battle ended", "winner", winner, "turn", s.battle.Turn())
			return s.battle.Apply(ctx, state.BattleEnded{Winner: winner})
		},
	}
}

// Outcome reports whether at most one side can still battle, and which.
// The winner is -1 when every side is defeated.
func Outcome(b state.View) (int, bool) {
	standing := -1
	alive := 0
	for _, side := range b.Sides() {
		if !side.Defeated() {
			alive++
			standing = side.Index()
		}
	}
	if alive > 1 {
		return 0, false
	}
	return standing, true
}
