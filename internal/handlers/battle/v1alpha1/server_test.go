package v1alpha1_test

import (
	"context"
	"io"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/test/bufconn"

	"github.com/KirkDiggler/rpg-battle/internal/content"
	"github.com/KirkDiggler/rpg-battle/internal/engine"
	"github.com/KirkDiggler/rpg-battle/internal/engine/pipeline"
	"github.com/KirkDiggler/rpg-battle/internal/engine/rng"
	"github.com/KirkDiggler/rpg-battle/internal/engine/state"
	"github.com/KirkDiggler/rpg-battle/internal/handlers/battle/v1alpha1"
	"github.com/KirkDiggler/rpg-battle/internal/orchestrators/battle"
	"github.com/KirkDiggler/rpg-battle/internal/orchestrators/encounter"
	"github.com/KirkDiggler/rpg-battle/internal/pkg/idgen"
	"github.com/KirkDiggler/rpg-battle/internal/repositories/battlelog"
	"github.com/KirkDiggler/rpg-battle/internal/repositories/encounters"
	"github.com/KirkDiggler/rpg-battle/internal/testutils"
)

type ServerTestSuite struct {
	suite.Suite
	ctx    context.Context
	server *grpc.Server
	conn   *grpc.ClientConn
	client v1alpha1.BattleServiceClient
}

func TestServerSuite(t *testing.T) {
	suite.Run(t, new(ServerTestSuite))
}

func (s *ServerTestSuite) SetupTest() {
	s.ctx = context.Background()

	catalog, err := content.Load()
	s.Require().NoError(err)
	eng, err := engine.New(&engine.Config{Catalog: catalog})
	s.Require().NoError(err)
	battles, err := battle.NewOrchestrator(&battle.Config{
		Engine:        eng,
		BattleLogRepo: battlelog.NewInMemory(nil),
		IDGenerator:   idgen.NewSequential("battle"),
	})
	s.Require().NoError(err)
	encounterSvc, err := encounter.NewOrchestrator(&encounter.Config{
		Catalog:       catalog,
		BattleService: battles,
		EncounterRepo: encounters.NewInMemory(),
		IDGenerator:   idgen.NewSequential("enc"),
		Roller:        rng.New(11),
	})
	s.Require().NoError(err)
	handler, err := v1alpha1.NewHandler(&v1alpha1.HandlerConfig{
		BattleService:    battles,
		EncounterService: encounterSvc,
	})
	s.Require().NoError(err)

	lis := bufconn.Listen(1 << 20)
	s.server = grpc.NewServer()
	v1alpha1.RegisterBattleServiceServer(s.server, handler)
	go func() {
		_ = s.server.Serve(lis)
	}()

	s.conn, err = grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	s.Require().NoError(err)
	s.client = v1alpha1.NewBattleServiceClient(s.conn)
}

func (s *ServerTestSuite) TearDownTest() {
	_ = s.conn.Close()
	s.server.Stop()
}

func (s *ServerTestSuite) startBattle() string {
	log := testutils.SinglesLog(21)
	req, err := v1alpha1.Encode(&v1alpha1.StartBattleRequest{
		Format:  log.Format,
		Seed:    log.Seed,
		Rules:   log.Rules,
		Parties: log.Parties,
	})
	s.Require().NoError(err)

	resp, err := s.client.StartBattle(s.ctx, req)
	s.Require().NoError(err)
	id, _ := resp.AsMap()["battle_id"].(string)
	s.Require().NotEmpty(id)
	return id
}

func (s *ServerTestSuite) TestTurnOverTheWire() {
	id := s.startBattle()

	req, err := v1alpha1.Encode(&v1alpha1.SubmitActionsRequest{
		BattleID: id,
		Actions: []engine.Action{
			{CombatantID: "p1a", Kind: engine.ActionMove, MoveID: "swords_dance", TargetSlot: -1},
			{CombatantID: "p2a", Kind: engine.ActionMove, MoveID: "tackle", TargetSlot: -1},
		},
	})
	s.Require().NoError(err)
	resp, err := s.client.SubmitActions(s.ctx, req)
	s.Require().NoError(err)

	out := resp.AsMap()
	s.Equal(true, out["resolved"])
	s.NotEmpty(out["effects"])

	getReq, err := v1alpha1.Encode(&v1alpha1.BattleRequest{BattleID: id})
	s.Require().NoError(err)
	got, err := s.client.GetBattle(s.ctx, getReq)
	s.Require().NoError(err)
	log := got.AsMap()["log"].(map[string]any)
	s.Equal("21", log["seed"])
	s.Len(log["turns"], 1)
}

func (s *ServerTestSuite) TestIllegalChoiceIsInvalidArgument() {
	id := s.startBattle()

	req, err := v1alpha1.Encode(&v1alpha1.SubmitActionsRequest{
		BattleID: id,
		Actions:  []engine.Action{{CombatantID: "p1a", Kind: engine.ActionMove, MoveID: "hyper_beam", TargetSlot: -1}},
	})
	s.Require().NoError(err)
	_, err = s.client.SubmitActions(s.ctx, req)
	s.Require().Error(err)
	s.Contains(err.Error(), "InvalidArgument")
}

func (s *ServerTestSuite) TestStreamEffects() {
	id := s.startBattle()

	ctx, cancel := context.WithTimeout(s.ctx, 5*time.Second)
	defer cancel()
	streamReq, err := v1alpha1.Encode(&v1alpha1.BattleRequest{BattleID: id})
	s.Require().NoError(err)
	stream, err := s.client.StreamEffects(ctx, streamReq)
	s.Require().NoError(err)
	header, err := stream.Header()
	s.Require().NoError(err)
	s.Equal([]string{id}, header.Get("battle-id"))

	req, err := v1alpha1.Encode(&v1alpha1.SubmitActionsRequest{
		BattleID: id,
		Actions: []engine.Action{
			{CombatantID: "p1a", Kind: engine.ActionMove, MoveID: "swords_dance", TargetSlot: -1},
			{CombatantID: "p2a", Kind: engine.ActionMove, MoveID: "tackle", TargetSlot: -1},
		},
	})
	s.Require().NoError(err)
	resp, err := s.client.SubmitActions(s.ctx, req)
	s.Require().NoError(err)
	effects := resp.AsMap()["effects"].([]any)
	s.Require().NotEmpty(effects)

	for _, want := range effects {
		rec, err := stream.Recv()
		s.Require().NoError(err)
		s.Equal(want.(map[string]any)["seq"], rec.AsMap()["seq"])
		s.Equal(want.(map[string]any)["kind"], rec.AsMap()["kind"])
	}
}

func (s *ServerTestSuite) TestStreamEndsWithBattle() {
	req, err := v1alpha1.Encode(&v1alpha1.StartBattleRequest{
		Format: engine.FormatSingles,
		Seed:   17,
		Rules:  pipeline.Rules{DisableCrits: true},
		Parties: [][]state.Member{
			{testutils.Member("p1a", "garchomp", 100, "earthquake")},
			{testutils.Member("p2a", "pikachu", 1, "tackle")},
		},
	})
	s.Require().NoError(err)
	resp, err := s.client.StartBattle(s.ctx, req)
	s.Require().NoError(err)
	id, _ := resp.AsMap()["battle_id"].(string)

	ctx, cancel := context.WithTimeout(s.ctx, 5*time.Second)
	defer cancel()
	streamReq, err := v1alpha1.Encode(&v1alpha1.BattleRequest{BattleID: id})
	s.Require().NoError(err)
	stream, err := s.client.StreamEffects(ctx, streamReq)
	s.Require().NoError(err)
	_, err = stream.Header()
	s.Require().NoError(err)

	submit, err := v1alpha1.Encode(&v1alpha1.SubmitActionsRequest{
		BattleID: id,
		Actions: []engine.Action{
			{CombatantID: "p1a", Kind: engine.ActionMove, MoveID: "earthquake", TargetSlot: -1},
			{CombatantID: "p2a", Kind: engine.ActionMove, MoveID: "tackle", TargetSlot: -1},
		},
	})
	s.Require().NoError(err)
	_, err = s.client.SubmitActions(s.ctx, submit)
	s.Require().NoError(err)

	var last string
	for {
		rec, err := stream.Recv()
		if err == io.EOF {
			break
		}
		s.Require().NoError(err)
		last, _ = rec.AsMap()["kind"].(string)
	}
	s.Equal(string(state.KindBattleEnded), last)

	// following a battle that is already over ends at once
	late, err := s.client.StreamEffects(ctx, streamReq)
	s.Require().NoError(err)
	_, err = late.Recv()
	s.Equal(io.EOF, err)
}
