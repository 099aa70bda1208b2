package stream_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"github.com/KirkDiggler/rpg-battle/internal/content"
	"github.com/KirkDiggler/rpg-battle/internal/engine"
	"github.com/KirkDiggler/rpg-battle/internal/engine/pipeline"
	"github.com/KirkDiggler/rpg-battle/internal/engine/state"
	"github.com/KirkDiggler/rpg-battle/internal/errors"
	"github.com/KirkDiggler/rpg-battle/internal/handlers/stream"
	"github.com/KirkDiggler/rpg-battle/internal/orchestrators/battle"
	battlemock "github.com/KirkDiggler/rpg-battle/internal/orchestrators/battle/mock"
	"github.com/KirkDiggler/rpg-battle/internal/pkg/idgen"
	"github.com/KirkDiggler/rpg-battle/internal/repositories/battlelog"
	"github.com/KirkDiggler/rpg-battle/internal/testutils"
)

type wireRecord struct {
	Seq  int              `json:"seq"`
	Turn int              `json:"turn"`
	Kind state.EffectKind `json:"kind"`
}

type StreamTestSuite struct {
	suite.Suite
	ctx    context.Context
	svc    battle.Service
	server *httptest.Server
}

func TestStreamSuite(t *testing.T) {
	suite.Run(t, new(StreamTestSuite))
}

func (s *StreamTestSuite) SetupTest() {
	s.ctx = context.Background()

	catalog, err := content.Load()
	s.Require().NoError(err)
	eng, err := engine.New(&engine.Config{Catalog: catalog})
	s.Require().NoError(err)
	s.svc, err = battle.NewOrchestrator(&battle.Config{
		Engine:        eng,
		BattleLogRepo: battlelog.NewInMemory(nil),
		IDGenerator:   idgen.NewSequential("battle"),
	})
	s.Require().NoError(err)

	s.server = s.serve(s.svc)
}

func (s *StreamTestSuite) TearDownTest() {
	s.server.Close()
}

func (s *StreamTestSuite) serve(svc battle.Service) *httptest.Server {
	h, err := stream.NewHandler(&stream.Config{BattleService: svc})
	s.Require().NoError(err)
	mux := http.NewServeMux()
	h.Register(mux)
	return httptest.NewServer(mux)
}

func wsURL(server *httptest.Server, battleID string) string {
	return "ws" + strings.TrimPrefix(server.URL, "http") + "/battles/" + battleID + "/stream"
}

func (s *StreamTestSuite) TestNewHandlerValidation() {
	_, err := stream.NewHandler(&stream.Config{})
	s.Require().Error(err)
	s.True(errors.IsInvalidArgument(err))
}

func (s *StreamTestSuite) TestStreamsTurnEffects() {
	log := testutils.SinglesLog(4)
	started, err := s.svc.StartBattle(s.ctx, &battle.StartBattleInput{Format: log.Format, Seed: log.Seed, Rules: log.Rules, Parties: log.Parties})
	s.Require().NoError(err)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(s.server, started.BattleID), nil)
	s.Require().NoError(err)
	defer conn.Close()

	played, err := s.svc.SubmitActions(s.ctx, &battle.SubmitActionsInput{
		BattleID: started.BattleID,
		Actions: []engine.Action{
			{CombatantID: "p1a", Kind: engine.ActionMove, MoveID: "swords_dance", TargetSlot: -1},
			{CombatantID: "p2a", Kind: engine.ActionMove, MoveID: "tackle", TargetSlot: -1},
		},
	})
	s.Require().NoError(err)
	s.Require().NotEmpty(played.Effects)

	s.Require().NoError(conn.SetReadDeadline(time.Now().Add(5 * time.Second)))
	for _, want := range played.Effects {
		var got wireRecord
		s.Require().NoError(conn.ReadJSON(&got))
		s.Equal(want.Seq, got.Seq)
		s.Equal(want.Kind, got.Kind)
		s.Equal(want.Turn, got.Turn)
	}
}

func (s *StreamTestSuite) TestUnknownBattleIsNotFound() {
	_, resp, err := websocket.DefaultDialer.Dial(wsURL(s.server, "battle_404"), nil)
	s.Require().ErrorIs(err, websocket.ErrBadHandshake)
	s.Require().NotNil(resp)
	defer resp.Body.Close()
	s.Equal(http.StatusNotFound, resp.StatusCode)
}

func (s *StreamTestSuite) TestClosesWhenBattleEnds() {
	ctrl := gomock.NewController(s.T())
	mockSvc := battlemock.NewMockService(ctrl)

	effects := make(chan state.Record, 2)
	effects <- state.Record{Seq: 40, Turn: 7, Kind: state.KindFaint, Effect: state.Faint{Target: "p2a"}}
	effects <- state.Record{Seq: 41, Turn: 7, Kind: state.KindBattleEnded, Effect: state.BattleEnded{Winner: 0}}
	mockSvc.EXPECT().
		Subscribe(gomock.Any(), &battle.SubscribeInput{BattleID: "battle_7"}).
		Return(&battle.SubscribeOutput{Effects: effects, Cancel: func() {}}, nil)

	server := s.serve(mockSvc)
	defer server.Close()

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(server, "battle_7"), nil)
	s.Require().NoError(err)
	defer conn.Close()
	s.Require().NoError(conn.SetReadDeadline(time.Now().Add(5 * time.Second)))

	var got wireRecord
	s.Require().NoError(conn.ReadJSON(&got))
	s.Equal(state.KindFaint, got.Kind)
	s.Require().NoError(conn.ReadJSON(&got))
	s.Equal(state.KindBattleEnded, got.Kind)

	_, _, err = conn.ReadMessage()
	s.True(websocket.IsCloseError(err, websocket.CloseNormalClosure), "got %v", err)
}

func (s *StreamTestSuite) TestEndedBattleClosesAtOnce() {
	started, err := s.svc.StartBattle(s.ctx, &battle.StartBattleInput{
		Format: engine.FormatSingles,
		Seed:   17,
		Rules:  pipeline.Rules{DisableCrits: true},
		Parties: [][]state.Member{
			{testutils.Member("p1a", "garchomp", 100, "earthquake")},
			{testutils.Member("p2a", "pikachu", 1, "tackle")},
		},
	})
	s.Require().NoError(err)
	played, err := s.svc.SubmitActions(s.ctx, &battle.SubmitActionsInput{
		BattleID: started.BattleID,
		Actions: []engine.Action{
			{CombatantID: "p1a", Kind: engine.ActionMove, MoveID: "earthquake", TargetSlot: -1},
			{CombatantID: "p2a", Kind: engine.ActionMove, MoveID: "tackle", TargetSlot: -1},
		},
	})
	s.Require().NoError(err)
	s.Require().True(played.Snapshot.Ended)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(s.server, started.BattleID), nil)
	s.Require().NoError(err)
	defer conn.Close()
	s.Require().NoError(conn.SetReadDeadline(time.Now().Add(5 * time.Second)))

	_, _, err = conn.ReadMessage()
	s.True(websocket.IsCloseError(err, websocket.CloseNormalClosure), "got %v", err)
}

func (s *StreamTestSuite) TestEndedSubscriptionSendsNoRecords() {
	ctrl := gomock.NewController(s.T())
	mockSvc := battlemock.NewMockService(ctrl)

	cancelled := make(chan struct{})
	mockSvc.EXPECT().
		Subscribe(gomock.Any(), &battle.SubscribeInput{BattleID: "battle_9"}).
		Return(&battle.SubscribeOutput{
			Effects: make(chan state.Record),
			Cancel:  func() { close(cancelled) },
			Ended:   true,
		}, nil)

	server := s.serve(mockSvc)
	defer server.Close()

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(server, "battle_9"), nil)
	s.Require().NoError(err)
	defer conn.Close()
	s.Require().NoError(conn.SetReadDeadline(time.Now().Add(5 * time.Second)))

	_, _, err = conn.ReadMessage()
	s.True(websocket.IsCloseError(err, websocket.CloseNormalClosure), "got %v", err)

	select {
	case <-cancelled:
	case <-time.After(5 * time.Second):
		s.Fail("subscription was not cancelled")
	}
}
