package v1alpha1_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/KirkDiggler/rpg-battle/internal/engine"
	"github.com/KirkDiggler/rpg-battle/internal/engine/state"
	"github.com/KirkDiggler/rpg-battle/internal/errors"
	"github.com/KirkDiggler/rpg-battle/internal/handlers/battle/v1alpha1"
	"github.com/KirkDiggler/rpg-battle/internal/orchestrators/battle"
	battlemock "github.com/KirkDiggler/rpg-battle/internal/orchestrators/battle/mock"
	"github.com/KirkDiggler/rpg-battle/internal/orchestrators/encounter"
	encountermock "github.com/KirkDiggler/rpg-battle/internal/orchestrators/encounter/mock"
	"github.com/KirkDiggler/rpg-battle/internal/repositories/battlelog"
	"github.com/KirkDiggler/rpg-battle/internal/repositories/encounters"
)

type HandlerTestSuite struct {
	suite.Suite
	ctx        context.Context
	ctrl       *gomock.Controller
	battles    *battlemock.MockService
	encounters *encountermock.MockService
	handler    *v1alpha1.Handler
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerTestSuite))
}

func (s *HandlerTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.ctrl = gomock.NewController(s.T())
	s.battles = battlemock.NewMockService(s.ctrl)
	s.encounters = encountermock.NewMockService(s.ctrl)

	var err error
	s.handler, err = v1alpha1.NewHandler(&v1alpha1.HandlerConfig{
		BattleService:    s.battles,
		EncounterService: s.encounters,
	})
	s.Require().NoError(err)
}

func (s *HandlerTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *HandlerTestSuite) msg(fields map[string]any) *structpb.Struct {
	out, err := structpb.NewStruct(fields)
	s.Require().NoError(err)
	return out
}

func (s *HandlerTestSuite) requireCode(err error, code codes.Code) {
	s.Require().Error(err)
	st, ok := status.FromError(err)
	s.Require().True(ok)
	s.Equal(code, st.Code(), st.Message())
}

func (s *HandlerTestSuite) TestNewHandlerValidation() {
	_, err := v1alpha1.NewHandler(&v1alpha1.HandlerConfig{})
	s.Require().Error(err)
	s.Contains(err.Error(), "BattleService")
	s.Contains(err.Error(), "EncounterService")
}

func (s *HandlerTestSuite) TestStartBattle() {
	member := func(id, species string) map[string]any {
		return map[string]any{"id": id, "species": species, "level": 50, "moves": []any{"tackle"}}
	}
	req := s.msg(map[string]any{
		"format": "singles",
		"seed":   "42",
		"parties": []any{
			[]any{member("a", "zoroark")},
			[]any{member("b", "snorlax")},
		},
	})

	s.battles.EXPECT().
		StartBattle(s.ctx, &battle.StartBattleInput{
			Format: engine.FormatSingles,
			Seed:   42,
			Parties: [][]state.Member{
				{{ID: "a", Species: "zoroark", Level: 50, Moves: []string{"tackle"}}},
				{{ID: "b", Species: "snorlax", Level: 50, Moves: []string{"tackle"}}},
			},
		}).
		Return(&battle.StartBattleOutput{
			BattleID: "battle_1",
			Snapshot: &engine.Snapshot{Winner: -1},
			Requests: []engine.Request{{CombatantID: "a"}, {CombatantID: "b", Side: 1}},
			Effects: []state.Record{
				{Seq: 1, Kind: state.KindMoveUsed, Effect: state.MoveUsed{Actor: "a", Move: "tackle"}},
			},
		}, nil)

	resp, err := s.handler.StartBattle(s.ctx, req)
	s.Require().NoError(err)

	out := resp.AsMap()
	s.Equal("battle_1", out["battle_id"])
	s.Len(out["requests"], 2)
	effects := out["effects"].([]any)
	s.Require().Len(effects, 1)
	effect := effects[0].(map[string]any)
	s.Equal("move_used", effect["kind"])
	s.Equal("tackle", effect["effect"].(map[string]any)["move"])
}

func (s *HandlerTestSuite) TestRejectsUnknownFields() {
	_, err := s.handler.StartBattle(s.ctx, s.msg(map[string]any{"format": "singles", "bogus": true}))
	s.requireCode(err, codes.InvalidArgument)
}

func (s *HandlerTestSuite) TestRequiredFields() {
	testCases := []struct {
		name string
		call func() error
	}{
		{name: "submit without battle", call: func() error {
			_, err := s.handler.SubmitActions(s.ctx, s.msg(map[string]any{"actions": []any{map[string]any{"combatant_id": "a"}}}))
			return err
		}},
		{name: "submit without actions", call: func() error {
			_, err := s.handler.SubmitActions(s.ctx, s.msg(map[string]any{"battle_id": "battle_1"}))
			return err
		}},
		{name: "get without battle", call: func() error {
			_, err := s.handler.GetBattle(s.ctx, s.msg(map[string]any{}))
			return err
		}},
		{name: "run until without phase", call: func() error {
			_, err := s.handler.RunUntilPhase(s.ctx, s.msg(map[string]any{"battle_id": "battle_1"}))
			return err
		}},
		{name: "resolve without encounter", call: func() error {
			_, err := s.handler.ResolveDarkDeal(s.ctx, s.msg(map[string]any{"option": "accept"}))
			return err
		}},
		{name: "nil message", call: func() error {
			_, err := s.handler.ReplayBattle(s.ctx, nil)
			return err
		}},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			s.requireCode(tc.call(), codes.InvalidArgument)
		})
	}
}

func (s *HandlerTestSuite) TestIllegalActionKeepsDetails() {
	s.battles.EXPECT().
		SubmitActions(s.ctx, gomock.Any()).
		Return(nil, errors.IllegalAction("p1a", "move hyper_beam is not known"))

	_, err := s.handler.SubmitActions(s.ctx, s.msg(map[string]any{
		"battle_id": "battle_1",
		"actions":   []any{map[string]any{"combatant_id": "p1a", "kind": "move", "move_id": "hyper_beam", "target_slot": -1}},
	}))
	s.requireCode(err, codes.InvalidArgument)

	back := errors.FromGRPCError(err)
	s.Equal("p1a", errors.GetMeta(back)[errors.MetaCombatantID])
}

func (s *HandlerTestSuite) TestSubmitActionsPassesDefer() {
	s.battles.EXPECT().
		SubmitActions(s.ctx, &battle.SubmitActionsInput{
			BattleID: "battle_1",
			Actions:  []engine.Action{{CombatantID: "p1a", Kind: engine.ActionMove, MoveID: "tackle", TargetSlot: -1}},
			Defer:    true,
		}).
		Return(&battle.SubmitActionsOutput{Resolved: false}, nil)

	resp, err := s.handler.SubmitActions(s.ctx, s.msg(map[string]any{
		"battle_id": "battle_1",
		"defer":     true,
		"actions":   []any{map[string]any{"combatant_id": "p1a", "kind": "move", "move_id": "tackle", "target_slot": -1}},
	}))
	s.Require().NoError(err)
	s.Equal(false, resp.AsMap()["resolved"])
}

func (s *HandlerTestSuite) TestGetBattleNotFound() {
	s.battles.EXPECT().
		GetBattle(s.ctx, &battle.GetBattleInput{BattleID: "battle_9"}).
		Return(nil, errors.NotFound("battle battle_9 not found"))

	_, err := s.handler.GetBattle(s.ctx, s.msg(map[string]any{"battle_id": "battle_9"}))
	s.requireCode(err, codes.NotFound)
}

func (s *HandlerTestSuite) TestGetBattleSeedSurvivesAsString() {
	const seed = int64(1)<<53 + 1
	s.battles.EXPECT().
		GetBattle(s.ctx, gomock.Any()).
		Return(&battle.GetBattleOutput{
			Snapshot: &engine.Snapshot{Turn: 3, Winner: -1},
			Log:      &engine.Log{Seed: seed, Format: engine.FormatSingles},
		}, nil)

	resp, err := s.handler.GetBattle(s.ctx, s.msg(map[string]any{"battle_id": "battle_1"}))
	s.Require().NoError(err)

	log := resp.AsMap()["log"].(map[string]any)
	s.Equal("9007199254740993", log["seed"])
	s.Equal("singles", log["format"])
}

func (s *HandlerTestSuite) TestListBattlesSummaries() {
	created := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	s.battles.EXPECT().
		ListBattles(s.ctx, &battle.ListBattlesInput{Limit: 5}).
		Return(&battle.ListBattlesOutput{Battles: []*battlelog.Record{{
			BattleID:  "battle_2",
			Log:       &engine.Log{Format: engine.FormatDoubles, Turns: []engine.TurnLog{{Turn: 1}, {Turn: 2}}},
			Ended:     true,
			Winner:    1,
			CreatedAt: created,
			UpdatedAt: created,
		}}}, nil)

	resp, err := s.handler.ListBattles(s.ctx, s.msg(map[string]any{"limit": 5}))
	s.Require().NoError(err)

	battles := resp.AsMap()["battles"].([]any)
	s.Require().Len(battles, 1)
	summary := battles[0].(map[string]any)
	s.Equal("battle_2", summary["battle_id"])
	s.Equal("doubles", summary["format"])
	s.Equal(float64(2), summary["turns"])
	s.Equal(true, summary["ended"])
	s.Equal("2026-03-14T09:26:53Z", summary["created_at"])
}

func (s *HandlerTestSuite) TestPreviewEffectiveness() {
	s.battles.EXPECT().
		PreviewEffectiveness(s.ctx, &battle.PreviewEffectivenessInput{BattleID: "battle_1", AttackerID: "p2a", TargetID: "p1a"}).
		Return(&battle.PreviewEffectivenessOutput{Estimates: []*engine.Estimate{
			{MoveID: "psychic", Effectiveness: 1, ApparentSpecies: "axew", Score: 90},
		}}, nil)

	resp, err := s.handler.PreviewEffectiveness(s.ctx, s.msg(map[string]any{
		"battle_id": "battle_1", "attacker_id": "p2a", "target_id": "p1a",
	}))
	s.Require().NoError(err)

	estimates := resp.AsMap()["estimates"].([]any)
	s.Require().Len(estimates, 1)
	s.Equal("axew", estimates[0].(map[string]any)["apparent_species"])
}

func (s *HandlerTestSuite) TestDarkDeal() {
	s.encounters.EXPECT().
		OfferDarkDeal(s.ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, input *encounter.OfferDarkDealInput) (*encounter.OfferDarkDealOutput, error) {
			s.Equal(60, input.Wave)
			s.Require().Len(input.Party, 2)
			s.True(input.Party[1].Fainted)
			return &encounter.OfferDarkDealOutput{
				EncounterID:  "enc_1",
				Options:      []encounter.Option{encounter.OptionAccept, encounter.OptionRefuse},
				CatchAllowed: true,
			}, nil
		})

	resp, err := s.handler.OfferDarkDeal(s.ctx, s.msg(map[string]any{
		"wave": 60,
		"party": []any{
			map[string]any{"member": map[string]any{"id": "a", "species": "zoroark", "level": 50, "moves": []any{"tackle"}}},
			map[string]any{"member": map[string]any{"id": "b", "species": "axew", "level": 40, "moves": []any{"tackle"}}, "fainted": true},
		},
	}))
	s.Require().NoError(err)
	s.Equal("enc_1", resp.AsMap()["encounter_id"])

	s.encounters.EXPECT().
		ResolveDarkDeal(s.ctx, &encounter.ResolveDarkDealInput{EncounterID: "enc_1", Option: encounter.OptionAccept, Seed: 7}).
		Return(&encounter.ResolveDarkDealOutput{
			Status:  encounters.StatusAccepted,
			Payload: &encounters.DarkDealPayload{BossSpecies: "dialga", Tier: 8},
			Rewards: []encounter.Reward{{ItemID: encounter.RogueBallID, Count: 5}},
			Battle:  &battle.StartBattleOutput{BattleID: "battle_3"},
		}, nil)

	resp, err = s.handler.ResolveDarkDeal(s.ctx, s.msg(map[string]any{"encounter_id": "enc_1", "option": "accept", "seed": "7"}))
	s.Require().NoError(err)

	out := resp.AsMap()
	s.Equal("accepted", out["status"])
	s.Equal("dialga", out["payload"].(map[string]any)["boss_species"])
	s.Equal("battle_3", out["battle"].(map[string]any)["battle_id"])
}
