package client_state

import (
	"context"
	"testing"
	"time"

	"github.com/KirkDiggler/coinflip/internal/models"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"
)

type RedisRepositoryTestSuite struct {
	suite.Suite
	mr      *miniredis.Miniredis
	client  *redis.Client
	repo    Repository
	testNow time.Time
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

	s.testNow = time.Date(2025, 4, 5, 10, 0, 0, 0, time.UTC)
}

func (s *RedisRepositoryTestSuite) TearDownTest() {
	s.client.Close()
	s.mr.Close()
}

func TestRedisRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(RedisRepositoryTestSuite))
}

func (s *RedisRepositoryTestSuite) TestCreateAndGetClientState() {
	var buffer models.Buffer
	buffer[0] = 3

	state := &models.ClientState{
		Address:      "state",
		Bump:         253,
		MaxResult:    models.DefaultMaxResult,
		ResultBuffer: buffer,
		Result:       4,
		Timestamp:    s.testNow,
		Oracle:       "oracle",
	}

	err := s.repo.CreateClientState(context.Background(), &CreateClientStateInput{
		ClientState: state,
	})
	s.Require().NoError(err)

	retrieved, err := s.repo.GetClientState(context.Background(), &GetClientStateInput{
		Address: "state",
	})
	s.Require().NoError(err)
	s.Equal(uint8(253), retrieved.Bump)
	s.Equal(uint64(1337), retrieved.MaxResult)
	s.Equal(buffer, retrieved.ResultBuffer)
	s.Equal(uint64(4), retrieved.Result)
	s.Equal("oracle", retrieved.Oracle)
	s.True(s.testNow.Equal(retrieved.Timestamp))

	err = s.repo.CreateClientState(context.Background(), &CreateClientStateInput{
		ClientState: state,
	})
	s.ErrorIs(err, ErrClientStateAlreadyExists)
}

func (s *RedisRepositoryTestSuite) TestSaveClientStateOverwrites() {
	state := &models.ClientState{
		Address:   "state",
		MaxResult: 10,
		Oracle:    "oracle",
	}
	s.Require().NoError(s.repo.CreateClientState(context.Background(), &CreateClientStateInput{ClientState: state}))

	state.ResultBuffer[0] = 6
	state.Result = 7
	s.Require().NoError(s.repo.SaveClientState(context.Background(), &SaveClientStateInput{ClientState: state}))

	retrieved, err := s.repo.GetClientState(context.Background(), &GetClientStateInput{Address: "state"})
	s.Require().NoError(err)
	s.Equal(uint64(7), retrieved.Result)
	s.Equal(byte(6), retrieved.ResultBuffer[0])
	s.False(retrieved.ResultBuffer.IsZero())
}

func (s *RedisRepositoryTestSuite) TestGetClientStateNotFound() {
	_, err := s.repo.GetClientState(context.Background(), &GetClientStateInput{Address: "missing"})
	s.ErrorIs(err, ErrClientStateNotFound)
}

func (s *RedisRepositoryTestSuite) TestVRFKey() {
	key := &models.VRFKey{
		Address:   "vrf",
		Payer:     "payer",
		Oracle:    "oracle",
		CreatedAt: s.testNow,
	}

	s.Require().NoError(s.repo.SaveVRFKey(context.Background(), &SaveVRFKeyInput{VRFKey: key}))

	retrieved, err := s.repo.GetVRFKey(context.Background(), &GetVRFKeyInput{Address: "vrf"})
	s.Require().NoError(err)
	s.Equal("payer", retrieved.Payer)
	s.Equal("oracle", retrieved.Oracle)

	err = s.repo.SaveVRFKey(context.Background(), &SaveVRFKeyInput{VRFKey: key})
	s.ErrorIs(err, ErrVRFKeyAlreadyExists)

	_, err = s.repo.GetVRFKey(context.Background(), &GetVRFKeyInput{Address: "missing"})
	s.ErrorIs(err, ErrVRFKeyNotFound)
}
