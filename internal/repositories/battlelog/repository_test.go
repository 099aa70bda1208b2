package battlelog_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/KirkDiggler/rpg-battle/internal/errors"
	"github.com/KirkDiggler/rpg-battle/internal/pkg/clock"
	"github.com/KirkDiggler/rpg-battle/internal/repositories/battlelog"
	"github.com/KirkDiggler/rpg-battle/internal/testutils"
)

var epoch = time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)

// RepositoryTestSuite runs the same behavior checks against every backend
type RepositoryTestSuite struct {
	suite.Suite
	ctx     context.Context
	clock   *clock.Fixed
	open    func(s *RepositoryTestSuite) (battlelog.Repository, func())
	repo    battlelog.Repository
	cleanup func()
}

func (s *RepositoryTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.clock = clock.NewFixed(epoch)
	s.repo, s.cleanup = s.open(s)
}

func (s *RepositoryTestSuite) TearDownTest() {
	if s.cleanup != nil {
		s.cleanup()
	}
}

func TestInMemoryRepository(t *testing.T) {
	suite.Run(t, &RepositoryTestSuite{
		open: func(s *RepositoryTestSuite) (battlelog.Repository, func()) {
			return battlelog.NewInMemory(s.clock), nil
		},
	})
}

func TestRedisRepository(t *testing.T) {
	suite.Run(t, &RepositoryTestSuite{
		open: func(s *RepositoryTestSuite) (battlelog.Repository, func()) {
			client, cleanup := testutils.CreateTestRedisClient(s.T())
			repo, err := battlelog.NewRedis(&battlelog.RedisConfig{Client: client, Clock: s.clock})
			s.Require().NoError(err)
			return repo, cleanup
		},
	})
}

func TestSQLiteRepository(t *testing.T) {
	suite.Run(t, &RepositoryTestSuite{
		open: func(s *RepositoryTestSuite) (battlelog.Repository, func()) {
			path := filepath.Join(s.T().TempDir(), "battles.db")
			repo, err := battlelog.OpenSQLite(&battlelog.SQLiteConfig{Path: path, Clock: s.clock})
			s.Require().NoError(err)
			return repo, func() { _ = repo.Close() }
		},
	})
}

func (s *RepositoryTestSuite) create(id string) *battlelog.Record {
	out, err := s.repo.Create(s.ctx, battlelog.CreateInput{Record: &battlelog.Record{
		BattleID: id,
		Log:      testutils.SinglesLog(99),
		Winner:   -1,
	}})
	s.Require().NoError(err)
	return out.Record
}

func (s *RepositoryTestSuite) TestCreateAndGet() {
	created := s.create("battle_1")
	s.True(created.CreatedAt.Equal(epoch))

	out, err := s.repo.Get(s.ctx, battlelog.GetInput{BattleID: "battle_1"})
	s.Require().NoError(err)

	rec := out.Record
	s.Equal("battle_1", rec.BattleID)
	s.Equal(int64(99), rec.Log.Seed)
	s.Equal(testutils.SinglesLog(99).Format, rec.Log.Format)
	s.True(rec.Log.Rules.DisableCrits)
	s.Require().Len(rec.Log.Parties, 2)
	s.Equal("zoroark", rec.Log.Parties[0][0].Species)
	s.Equal([]string{"tackle", "psychic"}, rec.Log.Parties[1][0].Moves)
	s.Empty(rec.Log.Turns)
	s.False(rec.Ended)
	s.Equal(-1, rec.Winner)
	s.True(rec.CreatedAt.Equal(epoch))
}

func (s *RepositoryTestSuite) TestCreateValidation() {
	testCases := []struct {
		name   string
		record *battlelog.Record
		errMsg string
	}{
		{name: "nil record", record: nil, errMsg: "record cannot be nil"},
		{name: "missing id", record: &battlelog.Record{Log: testutils.SinglesLog(1)}, errMsg: "battle ID cannot be empty"},
		{name: "missing log", record: &battlelog.Record{BattleID: "battle_x"}, errMsg: "log cannot be nil"},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			_, err := s.repo.Create(s.ctx, battlelog.CreateInput{Record: tc.record})
			s.Require().Error(err)
			s.True(errors.IsInvalidArgument(err))
			s.Contains(err.Error(), tc.errMsg)
		})
	}
}

func (s *RepositoryTestSuite) TestCreateDuplicate() {
	s.create("battle_1")

	_, err := s.repo.Create(s.ctx, battlelog.CreateInput{Record: &battlelog.Record{
		BattleID: "battle_1",
		Log:      testutils.SinglesLog(7),
	}})
	s.Require().Error(err)
	s.True(errors.IsAlreadyExists(err))
}

func (s *RepositoryTestSuite) TestCreateDoesNotAliasInput() {
	log := testutils.SinglesLog(5)
	_, err := s.repo.Create(s.ctx, battlelog.CreateInput{Record: &battlelog.Record{BattleID: "battle_1", Log: log}})
	s.Require().NoError(err)

	log.Parties[0][0].Species = "magikarp"

	out, err := s.repo.Get(s.ctx, battlelog.GetInput{BattleID: "battle_1"})
	s.Require().NoError(err)
	s.Equal("zoroark", out.Record.Log.Parties[0][0].Species)
}

func (s *RepositoryTestSuite) TestGetMissing() {
	_, err := s.repo.Get(s.ctx, battlelog.GetInput{BattleID: "nope"})
	s.Require().Error(err)
	s.True(errors.IsNotFound(err))

	_, err = s.repo.Get(s.ctx, battlelog.GetInput{})
	s.True(errors.IsInvalidArgument(err))
}

func (s *RepositoryTestSuite) TestAppendTurn() {
	s.create("battle_1")
	s.clock.Advance(time.Minute)

	out, err := s.repo.AppendTurn(s.ctx, battlelog.AppendTurnInput{
		BattleID: "battle_1",
		Turn:     testutils.MoveTurn(1, map[string]string{"p1a": "swords_dance", "p2a": "tackle"}),
		Winner:   -1,
	})
	s.Require().NoError(err)
	s.Require().Len(out.Record.Log.Turns, 1)
	s.True(out.Record.UpdatedAt.Equal(epoch.Add(time.Minute)))

	_, err = s.repo.AppendTurn(s.ctx, battlelog.AppendTurnInput{
		BattleID: "battle_1",
		Turn:     testutils.MoveTurn(2, map[string]string{"p1a": "night_slash", "p2a": "psychic"}),
		Ended:    true,
		Winner:   0,
	})
	s.Require().NoError(err)

	got, err := s.repo.Get(s.ctx, battlelog.GetInput{BattleID: "battle_1"})
	s.Require().NoError(err)
	rec := got.Record
	s.Require().Len(rec.Log.Turns, 2)
	s.Equal(1, rec.Log.Turns[0].Turn)
	s.Equal(2, rec.Log.Turns[1].Turn)
	s.Require().Len(rec.Log.Turns[1].Actions, 2)
	s.Equal("p1a", rec.Log.Turns[1].Actions[0].CombatantID)
	s.Equal("night_slash", rec.Log.Turns[1].Actions[0].MoveID)
	s.Equal(-1, rec.Log.Turns[1].Actions[0].TargetSlot)
	s.True(rec.Ended)
	s.Equal(0, rec.Winner)
}

func (s *RepositoryTestSuite) TestAppendTurnRejectsStaleTurn() {
	s.create("battle_1")
	turn := testutils.MoveTurn(1, map[string]string{"p1a": "splash"})

	_, err := s.repo.AppendTurn(s.ctx, battlelog.AppendTurnInput{BattleID: "battle_1", Turn: turn})
	s.Require().NoError(err)

	_, err = s.repo.AppendTurn(s.ctx, battlelog.AppendTurnInput{BattleID: "battle_1", Turn: turn})
	s.Require().Error(err)
	s.True(errors.IsFailedPrecondition(err))
}

func (s *RepositoryTestSuite) TestAppendTurnMissingBattle() {
	_, err := s.repo.AppendTurn(s.ctx, battlelog.AppendTurnInput{
		BattleID: "nope",
		Turn:     testutils.MoveTurn(1, nil),
	})
	s.Require().Error(err)
	s.True(errors.IsNotFound(err))
}

func (s *RepositoryTestSuite) TestSetResultKeepsTurns() {
	s.create("battle_1")
	_, err := s.repo.AppendTurn(s.ctx, battlelog.AppendTurnInput{
		BattleID: "battle_1",
		Turn:     testutils.MoveTurn(1, map[string]string{"p1a": "night_slash", "p2a": "tackle"}),
		Winner:   -1,
	})
	s.Require().NoError(err)
	s.clock.Advance(time.Minute)

	out, err := s.repo.SetResult(s.ctx, battlelog.SetResultInput{BattleID: "battle_1", Ended: true, Winner: 1})
	s.Require().NoError(err)
	s.True(out.Record.Ended)
	s.Equal(1, out.Record.Winner)
	s.True(out.Record.UpdatedAt.Equal(epoch.Add(time.Minute)))

	got, err := s.repo.Get(s.ctx, battlelog.GetInput{BattleID: "battle_1"})
	s.Require().NoError(err)
	s.True(got.Record.Ended)
	s.Equal(1, got.Record.Winner)
	s.Require().Len(got.Record.Log.Turns, 1)
	s.Equal("night_slash", got.Record.Log.Turns[0].Actions[0].MoveID)

	list, err := s.repo.List(s.ctx, battlelog.ListInput{})
	s.Require().NoError(err)
	s.Require().Len(list.Records, 1)
	s.True(list.Records[0].Ended)
}

func (s *RepositoryTestSuite) TestSetResultValidation() {
	_, err := s.repo.SetResult(s.ctx, battlelog.SetResultInput{Ended: true})
	s.True(errors.IsInvalidArgument(err))

	_, err = s.repo.SetResult(s.ctx, battlelog.SetResultInput{BattleID: "nope", Ended: true})
	s.True(errors.IsNotFound(err))
}

func (s *RepositoryTestSuite) TestDelete() {
	s.create("battle_1")

	_, err := s.repo.Delete(s.ctx, battlelog.DeleteInput{BattleID: "battle_1"})
	s.Require().NoError(err)

	_, err = s.repo.Get(s.ctx, battlelog.GetInput{BattleID: "battle_1"})
	s.True(errors.IsNotFound(err))

	_, err = s.repo.Delete(s.ctx, battlelog.DeleteInput{BattleID: "battle_1"})
	s.True(errors.IsNotFound(err))

	list, err := s.repo.List(s.ctx, battlelog.ListInput{})
	s.Require().NoError(err)
	s.Empty(list.Records)
}

func (s *RepositoryTestSuite) TestListNewestFirst() {
	for _, id := range []string{"battle_a", "battle_b", "battle_c"} {
		s.create(id)
		s.clock.Advance(time.Second)
	}

	out, err := s.repo.List(s.ctx, battlelog.ListInput{Limit: 2})
	s.Require().NoError(err)
	s.Require().Len(out.Records, 2)
	s.Equal("battle_c", out.Records[0].BattleID)
	s.Equal("battle_b", out.Records[1].BattleID)

	out, err = s.repo.List(s.ctx, battlelog.ListInput{})
	s.Require().NoError(err)
	s.Len(out.Records, 3)
}
