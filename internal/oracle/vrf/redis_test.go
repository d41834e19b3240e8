package vrf

import (
	"context"
	"testing"
	"time"

	"github.com/KirkDiggler/coinflip/internal/common/clock/mocks"
	"github.com/KirkDiggler/coinflip/internal/models"
	"github.com/KirkDiggler/coinflip/internal/oracle"
	"github.com/KirkDiggler/coinflip/internal/repositories/store"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	testifysuite "github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type OracleTestSuite struct {
	testifysuite.Suite
	ctrl      *gomock.Controller
	mockClock *mocks.MockClock
	mr        *miniredis.Miniredis
	client    *redis.Client
	oracle    *Oracle
	testNow   time.Time
}

func (s *OracleTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.mockClock = mocks.NewMockClock(s.ctrl)
	s.testNow = time.Date(2025, 4, 5, 10, 0, 0, 0, time.UTC)
	s.mockClock.EXPECT().Now().Return(s.testNow).AnyTimes()

	mr, err := miniredis.Run()
	s.Require().NoError(err)
	s.mr = mr

	s.client = redis.NewClient(&redis.Options{
		Addr: s.mr.Addr(),
	})

	transactor, err := store.NewRedis(&store.Config{
		RedisClient: s.client,
	})
	s.Require().NoError(err)

	o, err := NewRedis(&Config{
		RedisClient: s.client,
		Transactor:  transactor,
		Clock:       s.mockClock,
	})
	s.Require().NoError(err)
	s.oracle = o
}

func (s *OracleTestSuite) TearDownTest() {
	s.client.Close()
	s.mr.Close()
	s.ctrl.Finish()
}

func TestOracleTestSuite(t *testing.T) {
	testifysuite.Run(t, new(OracleTestSuite))
}

func (s *OracleTestSuite) createAccount(authority string) string {
	address, err := s.oracle.CreateAccount(context.Background(), &oracle.CreateAccountInput{
		Payer: "payer",
	})
	s.Require().NoError(err)

	if authority != "payer" {
		s.Require().NoError(s.oracle.SetAuthority(context.Background(), &oracle.SetAuthorityInput{
			Account:   address,
			Current:   "payer",
			Authority: authority,
		}))
	}
	return address
}

func (s *OracleTestSuite) TestCreateAccount() {
	address := s.createAccount("payer")
	s.NotEmpty(address)

	authority, err := s.oracle.Authority(context.Background(), address)
	s.Require().NoError(err)
	s.Equal("payer", authority)

	buffer, err := s.oracle.CurrentBuffer(context.Background(), address)
	s.Require().NoError(err)
	s.True(buffer.IsZero())
}

func (s *OracleTestSuite) TestSetAuthorityRequiresCurrentAuthority() {
	address := s.createAccount("payer")

	err := s.oracle.SetAuthority(context.Background(), &oracle.SetAuthorityInput{
		Account:   address,
		Current:   "mallory",
		Authority: "mallory",
	})
	s.ErrorIs(err, oracle.ErrUnauthorizedRequest)
}

func (s *OracleTestSuite) TestUnknownAccount() {
	_, err := s.oracle.Authority(context.Background(), "missing")
	s.ErrorIs(err, oracle.ErrAccountNotFound)

	err = s.oracle.Request(context.Background(), &oracle.RequestInput{Account: "missing", Authority: "x"})
	s.ErrorIs(err, oracle.ErrAccountNotFound)
}

func (s *OracleTestSuite) TestRequestRequiresAuthority() {
	address := s.createAccount("client-state")

	err := s.oracle.Request(context.Background(), &oracle.RequestInput{
		Account:   address,
		Authority: "someone-else",
	})
	s.ErrorIs(err, oracle.ErrUnauthorizedRequest)
}

func (s *OracleTestSuite) TestRequestAndFulfil() {
	address := s.createAccount("client-state")

	err := s.oracle.Request(context.Background(), &oracle.RequestInput{
		Account:   address,
		Authority: "client-state",
		Params:    []byte("game-1"),
	})
	s.Require().NoError(err)

	// nothing is published until fulfilment
	buffer, err := s.oracle.CurrentBuffer(context.Background(), address)
	s.Require().NoError(err)
	s.True(buffer.IsZero())

	fulfilment, err := s.oracle.FulfillNext(context.Background())
	s.Require().NoError(err)
	s.Require().NotNil(fulfilment)
	s.Equal(address, fulfilment.Account)
	s.Equal(uint64(1), fulfilment.Counter)
	s.False(fulfilment.Buffer.IsZero())

	buffer, err = s.oracle.CurrentBuffer(context.Background(), address)
	s.Require().NoError(err)
	s.Equal(fulfilment.Buffer, buffer)

	verified, err := s.oracle.Verify(context.Background(), address)
	s.Require().NoError(err)
	s.Equal(buffer, verified)

	// queue drained
	fulfilment, err = s.oracle.FulfillNext(context.Background())
	s.Require().NoError(err)
	s.Nil(fulfilment)
}

func (s *OracleTestSuite) TestNewRoundClearsBufferAndDiffers() {
	address := s.createAccount("client-state")
	request := &oracle.RequestInput{Account: address, Authority: "client-state"}

	s.Require().NoError(s.oracle.Request(context.Background(), request))
	first, err := s.oracle.FulfillNext(context.Background())
	s.Require().NoError(err)

	s.Require().NoError(s.oracle.Request(context.Background(), request))
	buffer, err := s.oracle.CurrentBuffer(context.Background(), address)
	s.Require().NoError(err)
	s.True(buffer.IsZero())

	second, err := s.oracle.FulfillNext(context.Background())
	s.Require().NoError(err)
	s.Equal(uint64(2), second.Counter)
	s.NotEqual(first.Buffer, second.Buffer)
}

func (s *OracleTestSuite) TestDuplicateQueueEntriesAreServedOnce() {
	address := s.createAccount("client-state")
	request := &oracle.RequestInput{Account: address, Authority: "client-state"}

	s.Require().NoError(s.oracle.Request(context.Background(), request))
	s.Require().NoError(s.oracle.Request(context.Background(), request))

	fulfilment, err := s.oracle.FulfillNext(context.Background())
	s.Require().NoError(err)
	s.Require().NotNil(fulfilment)
	s.Equal(uint64(2), fulfilment.Counter)

	fulfilment, err = s.oracle.FulfillNext(context.Background())
	s.Require().NoError(err)
	s.Nil(fulfilment)
}

func (s *OracleTestSuite) TestVerifyDetectsTampering() {
	address := s.createAccount("client-state")
	s.Require().NoError(s.oracle.Request(context.Background(), &oracle.RequestInput{Account: address, Authority: "client-state"}))
	_, err := s.oracle.FulfillNext(context.Background())
	s.Require().NoError(err)

	acc, err := s.oracle.getAccount(context.Background(), address)
	s.Require().NoError(err)
	acc.Buffer[0] ^= 0xff
	s.Require().NoError(s.oracle.saveAccount(context.Background(), acc))

	_, err = s.oracle.Verify(context.Background(), address)
	s.ErrorIs(err, oracle.ErrInvalidProof)
}

func (s *OracleTestSuite) TestRequestInsideFailedTransactionIsDiscarded() {
	address := s.createAccount("client-state")

	transactor, err := store.NewRedis(&store.Config{RedisClient: s.client})
	s.Require().NoError(err)

	err = transactor.Update(context.Background(), func(ctx context.Context) error {
		if err := s.oracle.Request(ctx, &oracle.RequestInput{Account: address, Authority: "client-state"}); err != nil {
			return err
		}
		return oracle.ErrOracleUnavailable
	})
	s.ErrorIs(err, oracle.ErrOracleUnavailable)

	fulfilment, err := s.oracle.FulfillNext(context.Background())
	s.Require().NoError(err)
	s.Nil(fulfilment)
}

func TestEvaluateAndVerify(t *testing.T) {
	keys := newKeyPair()
	address, err := keys.address()
	if err != nil {
		t.Fatal(err)
	}

	alpha := alphaFor(address, 1, nil)
	proof, err := keys.evaluate(alpha)
	if err != nil {
		t.Fatal(err)
	}

	buffer, err := verify(address, alpha, proof)
	if err != nil {
		t.Fatalf("valid proof rejected: %v", err)
	}
	if buffer == (models.Buffer{}) {
		t.Fatal("expected non-zero output")
	}

	// same key and input give the same output
	again, err := keys.evaluate(alpha)
	if err != nil {
		t.Fatal(err)
	}
	if string(again.Gamma) != string(proof.Gamma) {
		t.Fatal("evaluation is not deterministic")
	}

	// a different input does not verify under the old proof
	if _, err := verify(address, alphaFor(address, 2, nil), proof); err == nil {
		t.Fatal("proof verified for the wrong input")
	}

	// another key cannot claim the output
	other, _ := newKeyPair().address()
	if _, err := verify(other, alpha, proof); err == nil {
		t.Fatal("proof verified for the wrong key")
	}
}

func (s *OracleTestSuite) TestFulfillSkipsServedBacklog() {
	served := s.createAccount("client-state")
	pending := s.createAccount("client-state")

	s.Require().NoError(s.oracle.Request(context.Background(), &oracle.RequestInput{Account: served, Authority: "client-state"}))
	_, err := s.oracle.FulfillNext(context.Background())
	s.Require().NoError(err)

	const stale = 2000
	backlog := make([]interface{}, stale)
	for i := range backlog {
		backlog[i] = served
	}
	s.Require().NoError(s.client.RPush(context.Background(), requestQueueKey, backlog...).Err())
	s.Require().NoError(s.oracle.Request(context.Background(), &oracle.RequestInput{Account: pending, Authority: "client-state"}))

	fulfilment, err := s.oracle.FulfillNext(context.Background())
	s.Require().NoError(err)
	s.Require().NotNil(fulfilment)
	s.Equal(pending, fulfilment.Account)

	queued, err := s.client.LLen(context.Background(), requestQueueKey).Result()
	s.Require().NoError(err)
	s.Zero(queued)

	fulfilment, err = s.oracle.FulfillNext(context.Background())
	s.Require().NoError(err)
	s.Nil(fulfilment)
}
