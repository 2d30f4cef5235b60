package battles

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/KirkDiggler/dnd-battle-engine/internal/domain/battle"
	dnderr "github.com/KirkDiggler/dnd-battle-engine/internal/errors"
	mockbattles "github.com/KirkDiggler/dnd-battle-engine/internal/repositories/battles/mock"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type RedisRepoTestSuite struct {
	suite.Suite
	mockClient   *redis.Client
	mock         redismock.ClientMock
	repo         Repository
	mockCtrl     *gomock.Controller
	timeProvider *mockbattles.MockTimeProvider
	now          time.Time
}

func (s *RedisRepoTestSuite) SetupTest() {
	s.mockClient, s.mock = redismock.NewClientMock()
	s.mockCtrl = gomock.NewController(s.T())
	s.timeProvider = mockbattles.NewMockTimeProvider(s.mockCtrl)
	s.repo = NewRedisRepository(&RedisRepoConfig{Client: s.mockClient, TimeProvider: s.timeProvider})
	s.now = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
}

func (s *RedisRepoTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
	s.NoError(s.mock.ExpectationsWereMet())
}

func TestRedisRepoTestSuite(t *testing.T) {
	suite.Run(t, new(RedisRepoTestSuite))
}

func (s *RedisRepoTestSuite) battle(status battle.BattleStatus) *battle.Battle {
	return &battle.Battle{
		ID:     "b1",
		Status: status,
		Round:  2,
		Order: []*battle.Participant{{
			ID: "a", Name: "A", Side: battle.SideAlly, MaxHP: 10, CurrentHP: 7, Status: battle.StatusActive,
		}},
		NextActionIndex: 3,
		StartedAt:       s.now,
	}
}

func (s *RedisRepoTestSuite) encode(data Data) string {
	raw, err := json.Marshal(data)
	s.Require().NoError(err)
	return string(raw)
}

func (s *RedisRepoTestSuite) TestCreate() {
	ctx := context.Background()
	b := s.battle(battle.BattleStatusActive)
	s.timeProvider.EXPECT().Now().Return(s.now)

	s.mock.ExpectExists("battle:b1").SetVal(0)
	s.mock.ExpectSet("battle:b1", s.encode(Data{Battle: b, CreatedAt: s.now, UpdatedAt: s.now}), 0).SetVal("OK")
	s.mock.ExpectSAdd(activeBattlesKey, "b1").SetVal(1)

	s.NoError(s.repo.Create(ctx, b))
}

func (s *RedisRepoTestSuite) TestCreate_AlreadyExists() {
	s.mock.ExpectExists("battle:b1").SetVal(1)

	err := s.repo.Create(context.Background(), s.battle(battle.BattleStatusActive))
	s.True(dnderr.Is(err, dnderr.CodeAlreadyExists))
}

func (s *RedisRepoTestSuite) TestCreate_InputValidation() {
	s.True(dnderr.IsInvalidArgument(s.repo.Create(context.Background(), nil)))
	s.True(dnderr.IsInvalidArgument(s.repo.Create(context.Background(), &battle.Battle{})))
}

func (s *RedisRepoTestSuite) TestGet() {
	b := s.battle(battle.BattleStatusActive)
	s.mock.ExpectGet("battle:b1").SetVal(s.encode(Data{Battle: b, CreatedAt: s.now, UpdatedAt: s.now}))

	got, err := s.repo.Get(context.Background(), "b1")
	s.Require().NoError(err)
	s.Equal(b, got)
}

func (s *RedisRepoTestSuite) TestGet_NotFound() {
	s.mock.ExpectGet("battle:missing").RedisNil()

	_, err := s.repo.Get(context.Background(), "missing")
	s.True(dnderr.IsNotFound(err))
}

func (s *RedisRepoTestSuite) TestGet_DependencyError() {
	s.mock.ExpectGet("battle:b1").SetErr(errors.New("redis error"))

	_, err := s.repo.Get(context.Background(), "b1")
	s.Error(err)
	s.False(dnderr.IsNotFound(err))
}

func (s *RedisRepoTestSuite) TestUpdate_CompletedLeavesActiveIndex() {
	ctx := context.Background()
	created := s.now.Add(-time.Hour)
	before := s.battle(battle.BattleStatusActive)
	after := s.battle(battle.BattleStatusCompleted)
	after.Outcome = battle.OutcomeVictory
	s.timeProvider.EXPECT().Now().Return(s.now)

	s.mock.ExpectGet("battle:b1").SetVal(s.encode(Data{Battle: before, CreatedAt: created, UpdatedAt: created}))
	s.mock.ExpectSet("battle:b1", s.encode(Data{Battle: after, CreatedAt: created, UpdatedAt: s.now}), 0).SetVal("OK")
	s.mock.ExpectSRem(activeBattlesKey, "b1").SetVal(1)

	s.NoError(s.repo.Update(ctx, after))
}

func (s *RedisRepoTestSuite) TestUpdate_NotFound() {
	s.mock.ExpectGet("battle:b1").RedisNil()

	err := s.repo.Update(context.Background(), s.battle(battle.BattleStatusActive))
	s.True(dnderr.IsNotFound(err))
}

func (s *RedisRepoTestSuite) TestDelete() {
	s.mock.ExpectDel("battle:b1").SetVal(1)
	s.mock.ExpectSRem(activeBattlesKey, "b1").SetVal(1)
	s.NoError(s.repo.Delete(context.Background(), "b1"))

	s.mock.ExpectDel("battle:b2").SetVal(0)
	s.mock.ExpectSRem(activeBattlesKey, "b2").SetVal(0)
	s.True(dnderr.IsNotFound(s.repo.Delete(context.Background(), "b2")))
}

func (s *RedisRepoTestSuite) TestListActive() {
	s.mock.ExpectSMembers(activeBattlesKey).SetVal([]string{"b2", "b1"})

	ids, err := s.repo.ListActive(context.Background())
	s.Require().NoError(err)
	s.Equal([]string{"b1", "b2"}, ids)
}
