package phase_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/KirkDiggler/rpg-battle/internal/content"
	"github.com/KirkDiggler/rpg-battle/internal/engine/hooks"
	"github.com/KirkDiggler/rpg-battle/internal/engine/hooks/rules"
	"github.com/KirkDiggler/rpg-battle/internal/engine/phase"
	"github.com/KirkDiggler/rpg-battle/internal/engine/pipeline"
	"github.com/KirkDiggler/rpg-battle/internal/engine/rng"
	"github.com/KirkDiggler/rpg-battle/internal/engine/state"
	"github.com/KirkDiggler/rpg-battle/internal/errors"
)

type PhaseTestSuite struct {
	suite.Suite
	ctx       context.Context
	catalog   *content.Catalog
	battle    *state.Battle
	pipe      *pipeline.Pipeline
	scheduler *phase.Scheduler
	spans     *tracetest.SpanRecorder
}

func TestPhaseSuite(t *testing.T) {
	suite.Run(t, new(PhaseTestSuite))
}

func (s *PhaseTestSuite) SetupSuite() {
	var err error
	s.catalog, err = content.Load()
	s.Require().NoError(err)
	s.ctx = context.Background()
}

func (s *PhaseTestSuite) SetupTest() {
	s.build(
		[]state.Member{{ID: "zoroark", Species: "zoroark", Level: 50, Moves: []string{"night_slash"}}, {ID: "axew", Species: "axew", Level: 50}},
		[]state.Member{{ID: "tyranitar", Species: "tyranitar", Level: 50, Moves: []string{"rock_slide"}}},
	)
}

// build starts a singles battle with each side's first member in and
// leaves the scheduler waiting on turn 1 commands
func (s *PhaseTestSuite) build(left, right []state.Member) {
	var err error
	s.battle, err = state.New(state.Config{
		Catalog:      s.catalog,
		SlotsPerSide: 1,
		Parties:      [][]state.Member{left, right},
	})
	s.Require().NoError(err)
	dispatcher := hooks.NewDispatcher(rules.NewRegistry(), s.battle)
	s.pipe, err = pipeline.New(&pipeline.Config{Battle: s.battle, Dispatcher: dispatcher, RNG: rng.New(9), Rules: pipeline.Rules{DisableCrits: true}})
	s.Require().NoError(err)

	s.spans = tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(s.spans))
	s.scheduler, err = phase.New(&phase.Config{Battle: s.battle, Dispatcher: dispatcher, Tracer: provider.Tracer("test")})
	s.Require().NoError(err)

	s.scheduler.Push(
		phase.Unit{Kind: phase.KindBattleStart, Run: func(ctx context.Context) error {
			return s.pipe.Enter(ctx,
				pipeline.Placement{ID: left[0].ID, Side: 0, Slot: 0},
				pipeline.Placement{ID: right[0].ID, Side: 1, Slot: 0})
		}},
		phase.Unit{Kind: phase.KindCommandCollection, Name: "turn_1"},
	)
	s.Require().NoError(s.scheduler.Run(s.ctx))
}

func (s *PhaseTestSuite) get(id string) *state.Combatant {
	c, ok := s.battle.Combatant(id)
	s.Require().True(ok)
	return c
}

// idleTurn runs a turn with no actions so only residual effects land
func (s *PhaseTestSuite) idleTurn() {
	s.Require().NoError(s.scheduler.BeginTurn(s.ctx, nil))
	s.Require().NoError(s.scheduler.Run(s.ctx))
}

func holding(id, species string, items ...string) state.Member {
	m := state.Member{ID: id, Species: species, Level: 50, Moves: []string{"splash"}}
	for _, item := range items {
		m.Items = append(m.Items, state.HeldItem{ID: item})
	}
	return m
}

func (s *PhaseTestSuite) heals(target, cause string) []state.Heal {
	var out []state.Heal
	for _, r := range s.battle.Records() {
		if h, ok := r.Effect.(state.Heal); ok && h.Target == target && h.Cause == cause {
			out = append(out, h)
		}
	}
	return out
}

func (s *PhaseTestSuite) moveUnit(actor, move string) phase.Unit {
	return phase.Unit{Kind: phase.KindMoveExecution, Name: actor, Run: func(ctx context.Context) error {
		return s.pipe.Execute(ctx, pipeline.MoveAction{ActorID: actor, MoveID: move})
	}}
}

func (s *PhaseTestSuite) TestNewRequiresBattle() {
	_, err := phase.New(&phase.Config{})
	s.Error(err)
}

func (s *PhaseTestSuite) TestSuspendsAtCollection() {
	s.True(s.scheduler.Suspended())
	s.Equal(content.WeatherSandstorm, s.battle.Field().Weather)

	err := s.scheduler.Step(s.ctx)
	s.True(errors.IsFailedPrecondition(err))
}

func (s *PhaseTestSuite) TestResidualRunsAfterAllMoves() {
	s.Require().NoError(s.scheduler.BeginTurn(s.ctx, []phase.Unit{s.moveUnit("zoroark", "night_slash"), s.moveUnit("tyranitar", "rock_slide")}))
	s.Require().NoError(s.scheduler.Run(s.ctx))

	lastMove, firstResidual := -1, -1
	for i, r := range s.battle.Records() {
		if r.Turn != 1 {
			continue
		}
		switch {
		case r.Phase == "move_execution:zoroark" || r.Phase == "move_execution:tyranitar":
			lastMove = i
		case firstResidual == -1 && len(r.Phase) >= len("residual") && r.Phase[:len("residual")] == "residual":
			firstResidual = i
		}
	}
	s.Require().NotEqual(-1, lastMove)
	s.Require().NotEqual(-1, firstResidual)
	s.Less(lastMove, firstResidual)
	s.Equal(2, s.battle.Turn())
	s.True(s.scheduler.Suspended())
}

func (s *PhaseTestSuite) TestSandstormChipDoesNotBreakIllusion() {
	zoroark, _ := s.battle.Combatant("zoroark")
	s.Require().Equal(state.IllusionStateActive, zoroark.IllusionState())

	s.Require().NoError(s.scheduler.BeginTurn(s.ctx, nil))
	s.Require().NoError(s.scheduler.Run(s.ctx))

	s.Less(zoroark.HP(), zoroark.MaxHP())
	s.Equal(state.IllusionStateActive, zoroark.IllusionState())
}

func (s *PhaseTestSuite) TestBurnTickDoesNotBreakIllusion() {
	zoroark, _ := s.battle.Combatant("zoroark")
	s.Require().NoError(s.battle.Apply(s.ctx, state.StatusApplied{Target: "zoroark", Status: content.StatusBurn}))

	s.Require().NoError(s.scheduler.BeginTurn(s.ctx, nil))
	s.Require().NoError(s.scheduler.Run(s.ctx))

	burned := false
	for _, r := range s.battle.Records() {
		if d, ok := r.Effect.(state.Damage); ok && d.Target == "zoroark" && d.Cause == "status:burn" {
			burned = true
			s.False(d.Direct)
		}
	}
	s.True(burned)
	s.Equal(state.IllusionStateActive, zoroark.IllusionState())
}

func (s *PhaseTestSuite) TestRunUntilPausesBeforeKind() {
	s.Require().NoError(s.scheduler.BeginTurn(s.ctx, []phase.Unit{s.moveUnit("zoroark", "night_slash")}))

	reached, err := s.scheduler.RunUntil(s.ctx, phase.KindResidual)
	s.Require().NoError(err)
	s.True(reached)
	next, _ := s.scheduler.Next()
	s.Equal(phase.KindResidual, next.Kind)
	s.Equal(string(hooks.UnitWeather), next.Name)

	for _, r := range s.battle.Records() {
		s.NotContains(r.Phase, "residual")
	}

	reached, err = s.scheduler.RunUntil(s.ctx, phase.KindBattleStart)
	s.Require().NoError(err)
	s.False(reached)
	s.True(s.scheduler.Suspended())
}

func (s *PhaseTestSuite) TestFaintDoesNotAbortQueue() {
	s.Require().NoError(s.battle.Apply(s.ctx, state.Damage{Target: "zoroark", Amount: 9999, Cause: "test"}))
	s.Require().NoError(s.scheduler.BeginTurn(s.ctx, []phase.Unit{s.moveUnit("zoroark", "night_slash"), s.moveUnit("tyranitar", "rock_slide")}))
	s.Require().NoError(s.scheduler.Run(s.ctx))

	s.False(s.battle.Ended(), "axew can still battle")
	s.Equal(2, s.battle.Turn())
}

func (s *PhaseTestSuite) TestTurnEndDeclaresWinner() {
	s.Require().NoError(s.battle.Apply(s.ctx, state.Damage{Target: "tyranitar", Amount: 9999, Cause: "test"}))
	s.Require().NoError(s.scheduler.BeginTurn(s.ctx, nil))
	s.Require().NoError(s.scheduler.Run(s.ctx))

	s.True(s.battle.Ended())
	s.Equal(0, s.battle.Winner())
	s.Empty(s.scheduler.Pending())
}

func (s *PhaseTestSuite) TestOneSpanPerUnit() {
	s.Require().NoError(s.scheduler.BeginTurn(s.ctx, nil))
	s.Require().NoError(s.scheduler.Run(s.ctx))

	// battle start, collection, residual categories, countdown, turn end
	s.Len(s.spans.Ended(), 2+len(hooks.ResidualOrder)+1+1)
	s.Equal(s.scheduler.Executed(), len(s.spans.Ended()))
	span := s.spans.Ended()[0]
	s.Equal("phase.battle_start", span.Name())
}

func (s *PhaseTestSuite) TestParseKind() {
	k, err := phase.ParseKind("residual")
	s.Require().NoError(err)
	s.Equal(phase.KindResidual, k)

	_, err = phase.ParseKind("lunch")
	s.True(errors.IsInvalidArgument(err))
}

func (s *PhaseTestSuite) TestSitrusBerryHealsOnceAtHalf() {
	s.build([]state.Member{holding("snorlax", "snorlax", "sitrus_berry")}, []state.Member{holding("magikarp", "magikarp")})
	snorlax := s.get("snorlax")
	maxHP := snorlax.MaxHP()

	// one point above half keeps the berry
	s.Require().NoError(s.battle.Apply(s.ctx, state.Damage{Target: "snorlax", Amount: maxHP - (maxHP+1)/2, Cause: "test"}))
	s.Greater(snorlax.HP()*2, maxHP)
	s.idleTurn()
	s.Empty(s.heals("snorlax", "item:sitrus_berry"))
	s.Equal(1, snorlax.ItemCount("sitrus_berry"))

	s.Require().NoError(s.battle.Apply(s.ctx, state.Damage{Target: "snorlax", Amount: 1, Cause: "test"}))
	s.LessOrEqual(snorlax.HP()*2, maxHP)
	before := snorlax.HP()
	s.idleTurn()

	healed := s.heals("snorlax", "item:sitrus_berry")
	s.Require().Len(healed, 1)
	s.Equal(maxHP/4, healed[0].Amount)
	s.Equal(before+maxHP/4, snorlax.HP())
	s.Equal(0, snorlax.ItemCount("sitrus_berry"))

	consumed := 0
	for _, r := range s.battle.Records() {
		if c, ok := r.Effect.(state.ItemConsumed); ok && c.Target == "snorlax" && c.Item == "sitrus_berry" {
			consumed++
		}
	}
	s.Equal(1, consumed)

	s.Require().NoError(s.battle.Apply(s.ctx, state.Damage{Target: "snorlax", Amount: snorlax.HP() - maxHP/4, Cause: "test"}))
	s.idleTurn()
	s.Len(s.heals("snorlax", "item:sitrus_berry"), 1)
}

func (s *PhaseTestSuite) TestLeftoversHealsSixteenth() {
	s.build([]state.Member{holding("snorlax", "snorlax", "leftovers")}, []state.Member{holding("magikarp", "magikarp")})
	snorlax := s.get("snorlax")

	s.idleTurn()
	s.Empty(s.heals("snorlax", "item:leftovers"), "full HP skips the heal")

	s.Require().NoError(s.battle.Apply(s.ctx, state.Damage{Target: "snorlax", Amount: 100, Cause: "test"}))
	s.idleTurn()

	healed := s.heals("snorlax", "item:leftovers")
	s.Require().Len(healed, 1)
	s.Equal(snorlax.MaxHP()/16, healed[0].Amount)
	s.Equal(snorlax.MaxHP()-100+snorlax.MaxHP()/16, snorlax.HP())
	s.Equal(1, snorlax.ItemCount("leftovers"))
}

func (s *PhaseTestSuite) TestBerryResolvesBeforeLeftovers() {
	s.build([]state.Member{holding("snorlax", "snorlax", "leftovers", "sitrus_berry")}, []state.Member{holding("magikarp", "magikarp")})
	snorlax := s.get("snorlax")
	s.Require().NoError(s.battle.Apply(s.ctx, state.Damage{Target: "snorlax", Amount: snorlax.MaxHP() - snorlax.MaxHP()/2, Cause: "test"}))
	s.idleTurn()

	var causes []string
	for _, r := range s.battle.Records() {
		if h, ok := r.Effect.(state.Heal); ok {
			causes = append(causes, h.Cause)
		}
	}
	s.Equal([]string{"item:sitrus_berry", "item:leftovers"}, causes)
}

func (s *PhaseTestSuite) TestSpeedBoostSkipsEntryTurn() {
	s.build([]state.Member{holding("ninjask", "ninjask")}, []state.Member{holding("magikarp", "magikarp")})
	ninjask := s.get("ninjask")

	s.idleTurn()
	s.Equal(0, ninjask.Stage(content.StatSpeed))

	s.idleTurn()
	s.Equal(1, ninjask.Stage(content.StatSpeed))

	s.idleTurn()
	s.Equal(2, ninjask.Stage(content.StatSpeed))
}
