package simulate_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/KirkDiggler/rpg-battle/internal/content"
	"github.com/KirkDiggler/rpg-battle/internal/engine"
	"github.com/KirkDiggler/rpg-battle/internal/engine/state"
	"github.com/KirkDiggler/rpg-battle/internal/errors"
	"github.com/KirkDiggler/rpg-battle/internal/roster"
	"github.com/KirkDiggler/rpg-battle/internal/simulate"
	"github.com/KirkDiggler/rpg-battle/internal/testutils"
)

type SimulateTestSuite struct {
	suite.Suite
	ctx    context.Context
	engine engine.Engine
}

func TestSimulateSuite(t *testing.T) {
	suite.Run(t, new(SimulateTestSuite))
}

func (s *SimulateTestSuite) SetupTest() {
	s.ctx = context.Background()
	catalog, err := content.Load()
	s.Require().NoError(err)
	s.engine, err = engine.New(&engine.Config{Catalog: catalog})
	s.Require().NoError(err)
}

func (s *SimulateTestSuite) TestRunValidation() {
	_, err := simulate.Run(s.ctx, &simulate.Config{})
	s.Require().Error(err)
	s.True(errors.IsInvalidArgument(err))
}

func (s *SimulateTestSuite) TestDemoBattleFinishes() {
	var seen []state.Record
	res, err := simulate.Run(s.ctx, &simulate.Config{
		Engine:   s.engine,
		Battle:   roster.Default().BattleConfig(),
		OnEffect: func(rec state.Record) { seen = append(seen, rec) },
	})
	s.Require().NoError(err)

	s.True(res.Ended)
	s.Contains([]int{-1, 0, 1}, res.Winner)
	s.Positive(res.Turns)
	s.Len(res.Log.Turns, res.Turns)
	s.Equal(res.Effects, seen)
	s.Equal(state.KindBattleEnded, seen[len(seen)-1].Kind)
}

func (s *SimulateTestSuite) TestSameSeedSameBattle() {
	run := func() *simulate.Result {
		res, err := simulate.Run(s.ctx, &simulate.Config{
			Engine:  s.engine,
			Battle:  roster.Default().BattleConfig(),
			Pickers: []simulate.Picker{simulate.BestEstimate, simulate.FirstLegal},
		})
		s.Require().NoError(err)
		return res
	}

	first, second := run(), run()
	s.Equal(first.Effects, second.Effects)
	s.Equal(first.Snapshot, second.Snapshot)

	replayed, err := s.engine.Replay(s.ctx, first.Log)
	s.Require().NoError(err)
	s.Equal(first.Effects, replayed.Effects())
}

func (s *SimulateTestSuite) TestMaxTurnsStopsEarly() {
	res, err := simulate.Run(s.ctx, &simulate.Config{
		Engine:   s.engine,
		Battle:   roster.Default().BattleConfig(),
		MaxTurns: 1,
	})
	s.Require().NoError(err)
	s.Equal(1, res.Turns)
	s.False(res.Ended)
}

func (s *SimulateTestSuite) foeRequest(b *engine.Battle, id string) engine.Request {
	for _, req := range b.Requests() {
		if req.CombatantID == id {
			return req
		}
	}
	s.FailNow("no request for " + id)
	return engine.Request{}
}

func (s *SimulateTestSuite) TestBestEstimateJudgesTheDisguise() {
	b, err := s.engine.NewBattle(roster.Default().BattleConfig())
	s.Require().NoError(err)
	s.Require().NoError(b.Start(s.ctx))

	// zoroark shows up as gyarados, so earthquake looks useless
	act, err := simulate.BestEstimate.Pick(b, s.foeRequest(b, "p2a"))
	s.Require().NoError(err)
	s.Equal("rock_slide", act.MoveID)
	s.Equal(0, act.TargetSlot)

	act, err = simulate.FirstLegal.Pick(b, s.foeRequest(b, "p2a"))
	s.Require().NoError(err)
	s.Equal("earthquake", act.MoveID)
}

func (s *SimulateTestSuite) TestBestEstimateWithoutDisguise() {
	cfg := roster.Default().BattleConfig()
	cfg.Parties[0] = cfg.Parties[0][:1]

	b, err := s.engine.NewBattle(cfg)
	s.Require().NoError(err)
	s.Require().NoError(b.Start(s.ctx))

	act, err := simulate.BestEstimate.Pick(b, s.foeRequest(b, "p2a"))
	s.Require().NoError(err)
	s.Equal("earthquake", act.MoveID)
}

func (s *SimulateTestSuite) TestFirstLegalForcedSwitch() {
	act, err := simulate.FirstLegal.Pick(nil, engine.Request{CombatantID: "p1a", MustSwitch: true, Switches: []string{"p1b", "p1c"}})
	s.Require().NoError(err)
	s.Equal(engine.Action{CombatantID: "p1a", Kind: engine.ActionSwitch, SwitchTo: "p1b", TargetSlot: -1}, act)

	_, err = simulate.FirstLegal.Pick(nil, engine.Request{CombatantID: "p1a", MustSwitch: true})
	s.True(errors.IsFailedPrecondition(err))
}

func (s *SimulateTestSuite) TestPickerErrorsSurface() {
	_, err := simulate.Run(s.ctx, &simulate.Config{
		Engine: s.engine,
		Battle: &engine.BattleConfig{Format: engine.FormatSingles, Seed: 3, Parties: testutils.SinglesParties()},
		Pickers: []simulate.Picker{simulate.PickerFunc(func(_ *engine.Battle, req engine.Request) (engine.Action, error) {
			return engine.Action{CombatantID: req.CombatantID, Kind: engine.ActionMove, MoveID: "hyper_beam", TargetSlot: -1}, nil
		})},
	})
	s.Require().Error(err)
	s.True(errors.IsInvalidArgument(err))
}
