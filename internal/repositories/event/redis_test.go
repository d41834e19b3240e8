package event

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/KirkDiggler/coinflip/internal/models"
	"github.com/KirkDiggler/coinflip/internal/repositories/store"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"
)

type RedisRepositoryTestSuite struct {
	suite.Suite
	mr         *miniredis.Miniredis
	client     *redis.Client
	repo       Repository
	transactor store.Transactor
	testNow    time.Time
}

func (s *RedisRepositoryTestSuite) SetupTest() {
	mr, err := miniredis.Run()
	s.Require().NoError(err)
	s.mr = mr

	s.client = redis.NewClient(&redis.Options{
		Addr: s.mr.Addr(),
	})

	repo, err := NewRedis(&Config{
		RedisClient: s.client,
	})
	s.Require().NoError(err)
	s.repo = repo

	transactor, err := store.NewRedis(&store.Config{
		RedisClient: s.client,
	})
	s.Require().NoError(err)
	s.transactor = transactor

	s.testNow = time.Date(2025, 4, 5, 10, 0, 0, 0, time.UTC)
}

func (s *RedisRepositoryTestSuite) TearDownTest() {
	s.client.Close()
	s.mr.Close()
}

func TestRedisRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(RedisRepositoryTestSuite))
}

func (s *RedisRepositoryTestSuite) append(event *models.Event) {
	s.Require().NoError(s.repo.AppendEvent(context.Background(), &AppendEventInput{Event: event}))
}

func (s *RedisRepositoryTestSuite) TestAppendAndList() {
	var buffer models.Buffer
	buffer[0] = 6

	s.append(&models.Event{ID: "1", Type: models.EventTypeGameCreated, GameID: "g", Game: "game-a", MaxResult: 10, Timestamp: s.testNow})
	s.append(&models.Event{ID: "2", Type: models.EventTypeRandomnessRequested, Game: "game-a", Binding: "state", MaxResult: 10, Timestamp: s.testNow})
	s.append(&models.Event{ID: "3", Type: models.EventTypeOutcomeSettled, Game: "game-a", Binding: "state", MaxResult: 10, Result: 7, ResultBuffer: &buffer, Timestamp: s.testNow})

	output, err := s.repo.ListEvents(context.Background(), &ListEventsInput{})
	s.Require().NoError(err)
	s.Require().Len(output.Events, 3)
	s.Equal(models.EventTypeGameCreated, output.Events[0].Type)
	s.Equal(uint64(10), output.Events[0].MaxResult)
	s.Equal(uint64(7), output.Events[2].Result)
	s.Require().NotNil(output.Events[2].ResultBuffer)
	s.Equal(buffer, *output.Events[2].ResultBuffer)
	s.NotEmpty(output.Cursor)

	// resuming from the cursor returns nothing new
	next, err := s.repo.ListEvents(context.Background(), &ListEventsInput{After: output.Cursor})
	s.Require().NoError(err)
	s.Empty(next.Events)
	s.Equal(output.Cursor, next.Cursor)
}

func (s *RedisRepositoryTestSuite) TestListFilters() {
	s.append(&models.Event{ID: "1", Type: models.EventTypeGameCreated, Game: "game-a", Timestamp: s.testNow})
	s.append(&models.Event{ID: "2", Type: models.EventTypeGameCreated, Game: "game-b", Timestamp: s.testNow})
	s.append(&models.Event{ID: "3", Type: models.EventTypeOutcomeSettled, Game: "game-a", Timestamp: s.testNow})

	output, err := s.repo.ListEvents(context.Background(), &ListEventsInput{
		Types: []models.EventType{models.EventTypeOutcomeSettled},
	})
	s.Require().NoError(err)
	s.Require().Len(output.Events, 1)
	s.Equal("3", output.Events[0].ID)

	output, err = s.repo.ListEvents(context.Background(), &ListEventsInput{Game: "game-b"})
	s.Require().NoError(err)
	s.Require().Len(output.Events, 1)
	s.Equal("2", output.Events[0].ID)

	output, err = s.repo.ListEvents(context.Background(), &ListEventsInput{Count: 2})
	s.Require().NoError(err)
	s.Len(output.Events, 2)
}

func (s *RedisRepositoryTestSuite) TestAppendInsideFailedTransactionIsDiscarded() {
	boom := errors.New("boom")

	err := s.transactor.Update(context.Background(), func(ctx context.Context) error {
		if err := s.repo.AppendEvent(ctx, &AppendEventInput{
			Event: &models.Event{ID: "1", Type: models.EventTypeGameCreated, Timestamp: s.testNow},
		}); err != nil {
			return err
		}
		return boom
	})
	s.ErrorIs(err, boom)

	output, err := s.repo.ListEvents(context.Background(), &ListEventsInput{})
	s.Require().NoError(err)
	s.Empty(output.Events)
}

func (s *RedisRepositoryTestSuite) TestAppendRequiresType() {
	err := s.repo.AppendEvent(context.Background(), &AppendEventInput{Event: &models.Event{ID: "1"}})
	s.Error(err)
}
