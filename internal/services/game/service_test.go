package game

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/KirkDiggler/coinflip/internal/common/clock/mocks"
	"github.com/KirkDiggler/coinflip/internal/common/derive"
	uuidMocks "github.com/KirkDiggler/coinflip/internal/common/uuid/mocks"
	"github.com/KirkDiggler/coinflip/internal/models"
	"github.com/KirkDiggler/coinflip/internal/oracle"
	oracleMocks "github.com/KirkDiggler/coinflip/internal/oracle/mocks"
	clientStateRepo "github.com/KirkDiggler/coinflip/internal/repositories/client_state"
	clientStateMocks "github.com/KirkDiggler/coinflip/internal/repositories/client_state/mocks"
	eventRepo "github.com/KirkDiggler/coinflip/internal/repositories/event"
	eventMocks "github.com/KirkDiggler/coinflip/internal/repositories/event/mocks"
	gameRepo "github.com/KirkDiggler/coinflip/internal/repositories/game"
	gameMocks "github.com/KirkDiggler/coinflip/internal/repositories/game/mocks"
	ledgerRepo "github.com/KirkDiggler/coinflip/internal/repositories/ledger"
	ledgerMocks "github.com/KirkDiggler/coinflip/internal/repositories/ledger/mocks"
	storeMocks "github.com/KirkDiggler/coinflip/internal/repositories/store/mocks"
	"github.com/rcrowley/go-metrics"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

const testProgramID = "CoinF1ipProgram111111111111111111111111111"

type GameServiceTestSuite struct {
	suite.Suite
	mockCtrl            *gomock.Controller
	mockTransactor      *storeMocks.MockTransactor
	mockGameRepo        *gameMocks.MockRepository
	mockClientStateRepo *clientStateMocks.MockRepository
	mockLedgerRepo      *ledgerMocks.MockRepository
	mockEventRepo       *eventMocks.MockRepository
	mockOracle          *oracleMocks.MockOracle
	mockProvisioner     *oracleMocks.MockProvisioner
	mockClock           *mocks.MockClock
	mockUUID            *uuidMocks.MockUUID
	registry            metrics.Registry
	gameService         Service
	ctx                 context.Context

	// Test data
	testTime       time.Time
	testGameID     string
	testOwner      string
	testJoinee     string
	testOracle     string
	testEventID    string
	testStake      int64
	gameAddress    string
	gameBump       uint8
	escrowAddress  string
	escrowBump     uint8
	stateAddress   string
	stateBump      uint8
	createInput    *CreateGameInput
	expectedGame   *models.Game
	expectedState  *models.ClientState
	joinedGame     *models.Game
	requestedState *models.ClientState
}

func (s *GameServiceTestSuite) SetupTest() {
	s.mockCtrl = gomock.NewController(s.T())
	s.mockTransactor = storeMocks.NewMockTransactor(s.mockCtrl)
	s.mockGameRepo = gameMocks.NewMockRepository(s.mockCtrl)
	s.mockClientStateRepo = clientStateMocks.NewMockRepository(s.mockCtrl)
	s.mockLedgerRepo = ledgerMocks.NewMockRepository(s.mockCtrl)
	s.mockEventRepo = eventMocks.NewMockRepository(s.mockCtrl)
	s.mockOracle = oracleMocks.NewMockOracle(s.mockCtrl)
	s.mockProvisioner = oracleMocks.NewMockProvisioner(s.mockCtrl)
	s.mockClock = mocks.NewMockClock(s.mockCtrl)
	s.mockUUID = uuidMocks.NewMockUUID(s.mockCtrl)
	s.registry = metrics.NewRegistry()

	s.ctx = context.Background()

	// Initialize test data
	s.testTime = time.Date(2025, 4, 19, 12, 0, 0, 0, time.UTC)
	s.testGameID = "test-game-id"
	s.testOwner = "test-owner"
	s.testJoinee = "test-joinee"
	s.testOracle = "test-oracle"
	s.testEventID = "test-event-id"
	s.testStake = 100

	var err error
	s.gameAddress, s.gameBump, err = derive.FindProgramAddress(testProgramID, derive.GameSeeds(s.testGameID, s.testOwner)...)
	s.Require().NoError(err)
	s.escrowAddress, s.escrowBump, err = derive.FindProgramAddress(testProgramID, derive.EscrowSeeds(s.testGameID, s.testOwner)...)
	s.Require().NoError(err)
	s.stateAddress, s.stateBump, err = derive.FindProgramAddress(testProgramID, derive.StateSeeds(s.testOracle)...)
	s.Require().NoError(err)

	// Set up the clock and uuid mocks
	s.mockClock.EXPECT().Now().Return(s.testTime).AnyTimes()
	s.mockUUID.EXPECT().NewUUID().Return(s.testEventID).AnyTimes()

	// Every operation runs its body directly inside the mocked transaction
	s.mockTransactor.EXPECT().
		Update(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, fn func(context.Context) error) error {
			return fn(ctx)
		}).
		AnyTimes()

	s.createInput = &CreateGameInput{
		Owner:       s.testOwner,
		GameID:      s.testGameID,
		Choice:      models.ChoiceEven,
		StakeAmount: s.testStake,
		MaxResult:   10,
		Oracle:      s.testOracle,
		ChannelID:   "test-channel-id",
	}

	s.expectedGame = &models.Game{
		Address:     s.gameAddress,
		Bump:        s.gameBump,
		GameID:      s.testGameID,
		Owner:       s.testOwner,
		OwnerChoice: models.ChoiceEven,
		StakeAmount: s.testStake,
		Escrow:      s.escrowAddress,
		EscrowBump:  s.escrowBump,
		ClientState: s.stateAddress,
		ChannelID:   "test-channel-id",
		CreatedAt:   s.testTime,
		UpdatedAt:   s.testTime,
	}

	s.expectedState = &models.ClientState{
		Address:   s.stateAddress,
		Bump:      s.stateBump,
		MaxResult: 10,
		Timestamp: s.testTime,
		Oracle:    s.testOracle,
	}

	s.gameService = s.newService(VariantClient, nil)
}

func (s *GameServiceTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func TestGameServiceSuite(t *testing.T) {
	suite.Run(t, new(GameServiceTestSuite))
}

func (s *GameServiceTestSuite) newService(variant Variant, provisioner oracle.Provisioner) Service {
	svc, err := New(&Config{
		ProgramID:       testProgramID,
		Variant:         variant,
		Transactor:      s.mockTransactor,
		GameRepo:        s.mockGameRepo,
		ClientStateRepo: s.mockClientStateRepo,
		LedgerRepo:      s.mockLedgerRepo,
		EventRepo:       s.mockEventRepo,
		Oracle:          s.mockOracle,
		Provisioner:     provisioner,
		Clock:           s.mockClock,
		UUIDGenerator:   s.mockUUID,
		MetricsRegistry: s.registry,
	})
	s.Require().NoError(err)
	return svc
}

// copies so expectations are not affected by the service mutating fixtures
func (s *GameServiceTestSuite) game() *models.Game {
	game := *s.expectedGame
	return &game
}

func (s *GameServiceTestSuite) state() *models.ClientState {
	state := *s.expectedState
	return &state
}

func (s *GameServiceTestSuite) joined() *models.Game {
	game := s.game()
	game.Joinee = s.testJoinee
	return game
}

func (s *GameServiceTestSuite) counter(name string) int64 {
	return metrics.GetOrRegisterCounter(metricsPrefix+name, s.registry).Count()
}

func (s *GameServiceTestSuite) expectGetGame(game *models.Game) {
	s.mockGameRepo.EXPECT().
		GetGame(gomock.Any(), &gameRepo.GetGameInput{Address: s.gameAddress}).
		Return(game, nil)
}

func (s *GameServiceTestSuite) expectGetState(state *models.ClientState) {
	s.mockClientStateRepo.EXPECT().
		GetClientState(gomock.Any(), &clientStateRepo.GetClientStateInput{Address: s.stateAddress}).
		Return(state, nil)
}

func (s *GameServiceTestSuite) TestNew_ValidatesConfig() {
	valid := func() *Config {
		return &Config{
			ProgramID:       testProgramID,
			Transactor:      s.mockTransactor,
			GameRepo:        s.mockGameRepo,
			ClientStateRepo: s.mockClientStateRepo,
			LedgerRepo:      s.mockLedgerRepo,
			EventRepo:       s.mockEventRepo,
			Oracle:          s.mockOracle,
			Clock:           s.mockClock,
			UUIDGenerator:   s.mockUUID,
		}
	}

	testCases := []struct {
		name   string
		mutate func(cfg *Config)
		err    error
	}{
		{"missing program id", func(cfg *Config) { cfg.ProgramID = "" }, ErrInvalidProgramID},
		{"unknown variant", func(cfg *Config) { cfg.Variant = "other" }, ErrInvalidVariant},
		{"nil transactor", func(cfg *Config) { cfg.Transactor = nil }, ErrNilTransactor},
		{"nil game repo", func(cfg *Config) { cfg.GameRepo = nil }, ErrNilGameRepo},
		{"nil client state repo", func(cfg *Config) { cfg.ClientStateRepo = nil }, ErrNilClientStateRepo},
		{"nil ledger repo", func(cfg *Config) { cfg.LedgerRepo = nil }, ErrNilLedgerRepo},
		{"nil event repo", func(cfg *Config) { cfg.EventRepo = nil }, ErrNilEventRepo},
		{"nil oracle", func(cfg *Config) { cfg.Oracle = nil }, ErrNilOracle},
		{"nil clock", func(cfg *Config) { cfg.Clock = nil }, ErrNilClock},
		{"nil uuid", func(cfg *Config) { cfg.UUIDGenerator = nil }, ErrNilUUIDGenerator},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			cfg := valid()
			tc.mutate(cfg)
			_, err := New(cfg)
			s.ErrorIs(err, tc.err)
		})
	}

	_, err := New(nil)
	s.ErrorIs(err, ErrNilConfig)

	_, err = New(valid())
	s.NoError(err)
}

// CreateGame Tests

func (s *GameServiceTestSuite) TestCreateGame_HappyPath() {
	s.mockOracle.EXPECT().
		Authority(gomock.Any(), s.testOracle).
		Return(s.stateAddress, nil)

	s.mockGameRepo.EXPECT().
		CreateGame(gomock.Any(), &gameRepo.CreateGameInput{Game: s.game()}).
		Return(nil)

	s.mockClientStateRepo.EXPECT().
		CreateClientState(gomock.Any(), &clientStateRepo.CreateClientStateInput{ClientState: s.state()}).
		Return(nil)

	s.mockLedgerRepo.EXPECT().
		OpenAccount(gomock.Any(), &ledgerRepo.OpenAccountInput{
			Address:   s.escrowAddress,
			Authority: s.gameAddress,
		}).
		Return(&models.Account{Address: s.escrowAddress, Authority: s.gameAddress}, nil)

	s.mockLedgerRepo.EXPECT().
		Transfer(gomock.Any(), &ledgerRepo.TransferInput{
			From:   s.testOwner,
			To:     s.escrowAddress,
			Amount: s.testStake,
			Signer: derive.IdentitySigner(s.testOwner),
		}).
		Return(&models.Transfer{}, nil)

	s.mockEventRepo.EXPECT().
		AppendEvent(gomock.Any(), &eventRepo.AppendEventInput{Event: &models.Event{
			ID:        s.testEventID,
			Type:      models.EventTypeGameCreated,
			GameID:    s.testGameID,
			Game:      s.gameAddress,
			MaxResult: 10,
			Timestamp: s.testTime,
		}}).
		Return(nil)

	output, err := s.gameService.CreateGame(s.ctx, s.createInput)

	s.Require().NoError(err)
	s.Require().NotNil(output)
	s.Equal(s.gameAddress, output.Game.Address)
	s.Equal(models.GameStatusOpen, output.Game.Status())
	s.Equal(uint64(10), output.ClientState.MaxResult)
	s.Equal(int64(1), s.counter("games_created"))
}

func (s *GameServiceTestSuite) TestCreateGame_DefaultsMaxResult() {
	s.createInput.MaxResult = 0

	state := s.state()
	state.MaxResult = models.DefaultMaxResult

	s.mockOracle.EXPECT().Authority(gomock.Any(), s.testOracle).Return(s.stateAddress, nil)
	s.mockGameRepo.EXPECT().CreateGame(gomock.Any(), gomock.Any()).Return(nil)
	s.mockClientStateRepo.EXPECT().
		CreateClientState(gomock.Any(), &clientStateRepo.CreateClientStateInput{ClientState: state}).
		Return(nil)
	s.mockLedgerRepo.EXPECT().OpenAccount(gomock.Any(), gomock.Any()).Return(&models.Account{}, nil)
	s.mockLedgerRepo.EXPECT().Transfer(gomock.Any(), gomock.Any()).Return(&models.Transfer{}, nil)
	s.mockEventRepo.EXPECT().
		AppendEvent(gomock.Any(), &eventRepo.AppendEventInput{Event: &models.Event{
			ID:        s.testEventID,
			Type:      models.EventTypeGameCreated,
			GameID:    s.testGameID,
			Game:      s.gameAddress,
			MaxResult: models.DefaultMaxResult,
			Timestamp: s.testTime,
		}}).
		Return(nil)

	output, err := s.gameService.CreateGame(s.ctx, s.createInput)
	s.Require().NoError(err)
	s.Equal(uint64(1337), output.ClientState.MaxResult)
}

func (s *GameServiceTestSuite) TestCreateGame_ValidationHappensBeforeAnyCall() {
	testCases := []struct {
		name   string
		mutate func(input *CreateGameInput)
		err    error
	}{
		{"max result above cap", func(input *CreateGameInput) { input.MaxResult = 1338 }, ErrConfigTooLarge},
		{"invalid choice", func(input *CreateGameInput) { input.Choice = 2 }, ErrInvalidChoice},
		{"zero stake", func(input *CreateGameInput) { input.StakeAmount = 0 }, ErrInvalidStake},
		{"pot would overflow", func(input *CreateGameInput) { input.StakeAmount = models.MaxStake + 1 }, ErrInvalidStake},
		{"missing owner", func(input *CreateGameInput) { input.Owner = "" }, ErrInvalidParticipant},
		{"empty game id", func(input *CreateGameInput) { input.GameID = "" }, ErrInvalidGameID},
		{"long game id", func(input *CreateGameInput) { input.GameID = "this-game-id-is-longer-than-32-bytes" }, ErrInvalidGameID},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			input := *s.createInput
			tc.mutate(&input)

			output, err := s.gameService.CreateGame(s.ctx, &input)
			s.ErrorIs(err, tc.err)
			s.Nil(output)
		})
	}
}

func (s *GameServiceTestSuite) TestCreateGame_MaxResultAtCapIsAccepted() {
	s.createInput.MaxResult = 1337

	s.mockOracle.EXPECT().Authority(gomock.Any(), s.testOracle).Return(s.stateAddress, nil)
	s.mockGameRepo.EXPECT().CreateGame(gomock.Any(), gomock.Any()).Return(nil)
	s.mockClientStateRepo.EXPECT().CreateClientState(gomock.Any(), gomock.Any()).Return(nil)
	s.mockLedgerRepo.EXPECT().OpenAccount(gomock.Any(), gomock.Any()).Return(&models.Account{}, nil)
	s.mockLedgerRepo.EXPECT().Transfer(gomock.Any(), gomock.Any()).Return(&models.Transfer{}, nil)
	s.mockEventRepo.EXPECT().AppendEvent(gomock.Any(), gomock.Any()).Return(nil)

	_, err := s.gameService.CreateGame(s.ctx, s.createInput)
	s.NoError(err)
}

func (s *GameServiceTestSuite) TestCreateGame_InvalidOracleAuthority() {
	s.mockOracle.EXPECT().
		Authority(gomock.Any(), s.testOracle).
		Return("someone-else", nil)

	output, err := s.gameService.CreateGame(s.ctx, s.createInput)

	s.ErrorIs(err, ErrInvalidOracleAuthority)
	s.Nil(output)
}

func (s *GameServiceTestSuite) TestCreateGame_UnknownOracle() {
	s.mockOracle.EXPECT().
		Authority(gomock.Any(), s.testOracle).
		Return("", oracle.ErrAccountNotFound)

	_, err := s.gameService.CreateGame(s.ctx, s.createInput)
	s.ErrorIs(err, ErrInvalidOracleBinding)
}

func (s *GameServiceTestSuite) TestCreateGame_NoOracleInClientVariant() {
	s.createInput.Oracle = ""

	_, err := s.gameService.CreateGame(s.ctx, s.createInput)
	s.ErrorIs(err, ErrInvalidOracleBinding)
}

func (s *GameServiceTestSuite) TestCreateGame_GameAlreadyExists() {
	s.mockOracle.EXPECT().Authority(gomock.Any(), s.testOracle).Return(s.stateAddress, nil)
	s.mockGameRepo.EXPECT().
		CreateGame(gomock.Any(), gomock.Any()).
		Return(gameRepo.ErrGameAlreadyExists)

	_, err := s.gameService.CreateGame(s.ctx, s.createInput)
	s.ErrorIs(err, ErrGameAlreadyExists)
}

func (s *GameServiceTestSuite) TestCreateGame_OracleAlreadyBound() {
	s.mockOracle.EXPECT().Authority(gomock.Any(), s.testOracle).Return(s.stateAddress, nil)
	s.mockGameRepo.EXPECT().CreateGame(gomock.Any(), gomock.Any()).Return(nil)
	s.mockClientStateRepo.EXPECT().
		CreateClientState(gomock.Any(), gomock.Any()).
		Return(clientStateRepo.ErrClientStateAlreadyExists)

	_, err := s.gameService.CreateGame(s.ctx, s.createInput)
	s.ErrorIs(err, ErrClientStateExists)
}

func (s *GameServiceTestSuite) TestCreateGame_InsufficientFunds() {
	s.mockOracle.EXPECT().Authority(gomock.Any(), s.testOracle).Return(s.stateAddress, nil)
	s.mockGameRepo.EXPECT().CreateGame(gomock.Any(), gomock.Any()).Return(nil)
	s.mockClientStateRepo.EXPECT().CreateClientState(gomock.Any(), gomock.Any()).Return(nil)
	s.mockLedgerRepo.EXPECT().OpenAccount(gomock.Any(), gomock.Any()).Return(&models.Account{}, nil)
	s.mockLedgerRepo.EXPECT().
		Transfer(gomock.Any(), gomock.Any()).
		Return(nil, ledgerRepo.ErrInsufficientFunds)

	_, err := s.gameService.CreateGame(s.ctx, s.createInput)

	s.ErrorIs(err, ErrInsufficientFunds)
	s.ErrorIs(err, ledgerRepo.ErrInsufficientFunds)
	s.Equal(int64(0), s.counter("games_created"))
}

func (s *GameServiceTestSuite) TestCreateGame_FreshOracle() {
	s.createInput.Oracle = ""
	s.createInput.FreshOracle = true
	s.gameService = s.newService(VariantClient, s.mockProvisioner)

	gomock.InOrder(
		s.mockProvisioner.EXPECT().
			CreateAccount(gomock.Any(), &oracle.CreateAccountInput{Payer: s.testOwner}).
			Return(s.testOracle, nil),
		s.mockProvisioner.EXPECT().
			SetAuthority(gomock.Any(), &oracle.SetAuthorityInput{
				Account:   s.testOracle,
				Current:   s.testOwner,
				Authority: s.stateAddress,
			}).
			Return(nil),
		s.mockOracle.EXPECT().
			Authority(gomock.Any(), s.testOracle).
			Return(s.stateAddress, nil),
	)
	s.mockGameRepo.EXPECT().CreateGame(gomock.Any(), gomock.Any()).Return(nil)
	s.mockClientStateRepo.EXPECT().CreateClientState(gomock.Any(), gomock.Any()).Return(nil)
	s.mockLedgerRepo.EXPECT().OpenAccount(gomock.Any(), gomock.Any()).Return(&models.Account{}, nil)
	s.mockLedgerRepo.EXPECT().Transfer(gomock.Any(), gomock.Any()).Return(&models.Transfer{}, nil)
	s.mockEventRepo.EXPECT().AppendEvent(gomock.Any(), gomock.Any()).Return(nil)

	output, err := s.gameService.CreateGame(s.ctx, s.createInput)
	s.Require().NoError(err)
	s.Equal(s.testOracle, output.ClientState.Oracle)
}

func (s *GameServiceTestSuite) TestCreateGame_VRFKeyFallback() {
	s.createInput.Oracle = ""
	s.gameService = s.newService(VariantVRF, s.mockProvisioner)

	keyAddress, _, err := derive.FindProgramAddress(testProgramID, derive.VRFSeeds(s.testOwner)...)
	s.Require().NoError(err)

	s.mockClientStateRepo.EXPECT().
		GetVRFKey(gomock.Any(), &clientStateRepo.GetVRFKeyInput{Address: keyAddress}).
		Return(&models.VRFKey{Address: keyAddress, Payer: s.testOwner, Oracle: s.testOracle}, nil)
	s.mockOracle.EXPECT().Authority(gomock.Any(), s.testOracle).Return(s.stateAddress, nil)
	s.mockGameRepo.EXPECT().CreateGame(gomock.Any(), gomock.Any()).Return(nil)
	s.mockClientStateRepo.EXPECT().CreateClientState(gomock.Any(), gomock.Any()).Return(nil)
	s.mockLedgerRepo.EXPECT().OpenAccount(gomock.Any(), gomock.Any()).Return(&models.Account{}, nil)
	s.mockLedgerRepo.EXPECT().Transfer(gomock.Any(), gomock.Any()).Return(&models.Transfer{}, nil)
	s.mockEventRepo.EXPECT().AppendEvent(gomock.Any(), gomock.Any()).Return(nil)

	output, err := s.gameService.CreateGame(s.ctx, s.createInput)
	s.Require().NoError(err)
	s.Equal(s.testOracle, output.ClientState.Oracle)
}

// JoinGame Tests

func (s *GameServiceTestSuite) TestJoinGame_HappyPath() {
	params := []byte("params")

	expectedState := s.state()
	expectedState.Result = 0

	s.expectGetGame(s.game())
	s.expectGetState(s.state())
	s.mockLedgerRepo.EXPECT().
		GetBalance(gomock.Any(), &ledgerRepo.GetBalanceInput{Address: s.testJoinee}).
		Return(int64(500), nil)

	gomock.InOrder(
		s.mockOracle.EXPECT().
			Request(gomock.Any(), &oracle.RequestInput{
				Account:   s.testOracle,
				Authority: s.stateAddress,
				Params:    params,
			}).
			Return(nil),
		s.mockClientStateRepo.EXPECT().
			SaveClientState(gomock.Any(), &clientStateRepo.SaveClientStateInput{ClientState: expectedState}).
			Return(nil),
		s.mockGameRepo.EXPECT().
			SaveGame(gomock.Any(), &gameRepo.SaveGameInput{Game: s.joined()}).
			Return(nil),
		s.mockLedgerRepo.EXPECT().
			Transfer(gomock.Any(), &ledgerRepo.TransferInput{
				From:   s.testJoinee,
				To:     s.escrowAddress,
				Amount: s.testStake,
				Signer: derive.IdentitySigner(s.testJoinee),
			}).
			Return(&models.Transfer{}, nil),
		s.mockEventRepo.EXPECT().
			AppendEvent(gomock.Any(), &eventRepo.AppendEventInput{Event: &models.Event{
				ID:        s.testEventID,
				Type:      models.EventTypeRandomnessRequested,
				Game:      s.gameAddress,
				Binding:   s.stateAddress,
				MaxResult: 10,
				Timestamp: s.testTime,
			}}).
			Return(nil),
	)

	output, err := s.gameService.JoinGame(s.ctx, &JoinGameInput{
		GameID: s.testGameID,
		Owner:  s.testOwner,
		Joinee: s.testJoinee,
		Params: params,
	})

	s.Require().NoError(err)
	s.Equal(s.testJoinee, output.Game.Joinee)
	s.Equal(models.GameStatusAwaitingRandomness, output.Game.Status())
	s.Equal(int64(1), s.counter("randomness_requested"))
}

func (s *GameServiceTestSuite) TestJoinGame_GameNotFound() {
	s.mockGameRepo.EXPECT().
		GetGame(gomock.Any(), gomock.Any()).
		Return(nil, gameRepo.ErrGameNotFound)

	_, err := s.gameService.JoinGame(s.ctx, &JoinGameInput{
		GameID: s.testGameID,
		Owner:  s.testOwner,
		Joinee: s.testJoinee,
	})
	s.ErrorIs(err, ErrGameNotFound)
}

func (s *GameServiceTestSuite) TestJoinGame_AlreadyJoined() {
	s.expectGetGame(s.joined())

	_, err := s.gameService.JoinGame(s.ctx, &JoinGameInput{
		GameID: s.testGameID,
		Owner:  s.testOwner,
		Joinee: "someone-else",
	})
	s.ErrorIs(err, ErrGameAlreadyJoined)
}

func (s *GameServiceTestSuite) TestJoinGame_OwnerCannotJoin() {
	s.expectGetGame(s.game())

	_, err := s.gameService.JoinGame(s.ctx, &JoinGameInput{
		GameID: s.testGameID,
		Owner:  s.testOwner,
		Joinee: s.testOwner,
	})
	s.ErrorIs(err, ErrCannotJoinOwnGame)
}

func (s *GameServiceTestSuite) TestJoinGame_InsufficientFundsRequestsNothing() {
	s.expectGetGame(s.game())
	s.expectGetState(s.state())
	s.mockLedgerRepo.EXPECT().
		GetBalance(gomock.Any(), &ledgerRepo.GetBalanceInput{Address: s.testJoinee}).
		Return(int64(99), nil)

	_, err := s.gameService.JoinGame(s.ctx, &JoinGameInput{
		GameID: s.testGameID,
		Owner:  s.testOwner,
		Joinee: s.testJoinee,
	})
	s.ErrorIs(err, ErrInsufficientFunds)
	s.ErrorIs(err, ledgerRepo.ErrInsufficientFunds)
}

func (s *GameServiceTestSuite) TestJoinGame_OracleUnavailable() {
	s.expectGetGame(s.game())
	s.expectGetState(s.state())
	s.mockLedgerRepo.EXPECT().GetBalance(gomock.Any(), gomock.Any()).Return(int64(500), nil)
	s.mockOracle.EXPECT().
		Request(gomock.Any(), gomock.Any()).
		Return(oracle.ErrOracleUnavailable)

	_, err := s.gameService.JoinGame(s.ctx, &JoinGameInput{
		GameID: s.testGameID,
		Owner:  s.testOwner,
		Joinee: s.testJoinee,
	})
	s.ErrorIs(err, oracle.ErrOracleUnavailable)
}

// SettleGame Tests

func (s *GameServiceTestSuite) settleInput() *SettleGameInput {
	return &SettleGameInput{
		GameID: s.testGameID,
		Owner:  s.testOwner,
		Oracle: s.testOracle,
	}
}

func (s *GameServiceTestSuite) TestSettleGame_InvalidOracleBinding() {
	s.expectGetGame(s.joined())
	s.expectGetState(s.state())

	input := s.settleInput()
	input.Oracle = "another-oracle"

	_, err := s.gameService.SettleGame(s.ctx, input)
	s.ErrorIs(err, ErrInvalidOracleBinding)
}

func (s *GameServiceTestSuite) TestSettleGame_AwaitingRandomness() {
	s.expectGetGame(s.joined())
	s.expectGetState(s.state())
	s.mockOracle.EXPECT().
		CurrentBuffer(gomock.Any(), s.testOracle).
		Return(models.Buffer{}, nil)

	output, err := s.gameService.SettleGame(s.ctx, s.settleInput())

	s.Require().NoError(err)
	s.Equal(SettleStatusAwaitingRandomness, output.Status)
	s.Equal(int64(1), s.counter("settle_noops"))
}

func (s *GameServiceTestSuite) TestSettleGame_AlreadyConsumed() {
	var buffer models.Buffer
	buffer[0] = 3

	state := s.state()
	state.ResultBuffer = buffer

	s.expectGetGame(s.joined())
	s.expectGetState(state)
	s.mockOracle.EXPECT().CurrentBuffer(gomock.Any(), s.testOracle).Return(buffer, nil)

	output, err := s.gameService.SettleGame(s.ctx, s.settleInput())

	s.Require().NoError(err)
	s.Equal(SettleStatusAlreadyConsumed, output.Status)
}

func (s *GameServiceTestSuite) TestSettleGame_NotJoined() {
	var buffer models.Buffer
	buffer[0] = 3

	s.expectGetGame(s.game())
	s.expectGetState(s.state())
	s.mockOracle.EXPECT().CurrentBuffer(gomock.Any(), s.testOracle).Return(buffer, nil)

	_, err := s.gameService.SettleGame(s.ctx, s.settleInput())
	s.ErrorIs(err, ErrGameNotJoined)
}

func (s *GameServiceTestSuite) TestSettleGame_ClientVariantPaysWinner() {
	// 3 mod 10 + 1 = 4, even, and the owner chose even
	var buffer models.Buffer
	buffer[0] = 3

	parity := uint8(0)
	settledGame := s.joined()
	settledGame.Winner = s.testOwner
	settledGame.Result = &parity
	settledGame.PayoutDisbursed = true

	settledState := s.state()
	settledState.ResultBuffer = buffer
	settledState.Result = 4

	signer, err := derive.NewSigner(testProgramID, s.gameBump, derive.GameSeeds(s.testGameID, s.testOwner)...)
	s.Require().NoError(err)

	s.expectGetGame(s.joined())
	s.expectGetState(s.state())
	s.mockOracle.EXPECT().CurrentBuffer(gomock.Any(), s.testOracle).Return(buffer, nil)
	s.mockClientStateRepo.EXPECT().
		SaveClientState(gomock.Any(), &clientStateRepo.SaveClientStateInput{ClientState: settledState}).
		Return(nil)
	s.mockLedgerRepo.EXPECT().
		GetBalance(gomock.Any(), &ledgerRepo.GetBalanceInput{Address: s.escrowAddress}).
		Return(int64(200), nil)
	s.mockLedgerRepo.EXPECT().
		Transfer(gomock.Any(), &ledgerRepo.TransferInput{
			From:   s.escrowAddress,
			To:     s.testOwner,
			Amount: 200,
			Signer: signer,
		}).
		Return(&models.Transfer{}, nil)
	s.mockGameRepo.EXPECT().
		SaveGame(gomock.Any(), &gameRepo.SaveGameInput{Game: settledGame}).
		Return(nil)

	var appended []models.EventType
	s.mockEventRepo.EXPECT().
		AppendEvent(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, input *eventRepo.AppendEventInput) error {
			appended = append(appended, input.Event.Type)
			if input.Event.Type == models.EventTypeOutcomeSettled {
				s.Equal(uint64(4), input.Event.Result)
				s.Equal(uint64(10), input.Event.MaxResult)
				s.Equal(s.stateAddress, input.Event.Binding)
				s.Equal(buffer, *input.Event.ResultBuffer)
			}
			return nil
		}).
		Times(2)

	output, err := s.gameService.SettleGame(s.ctx, s.settleInput())

	s.Require().NoError(err)
	s.Equal(SettleStatusSettled, output.Status)
	s.Equal(uint64(4), output.Numeric)
	s.Equal(int64(200), output.Paid)
	s.Equal(s.testOwner, output.Game.Winner)
	s.Equal([]models.EventType{models.EventTypeOutcomeSettled, models.EventTypeRewardClaimed}, appended)
	s.Equal(int64(1), s.counter("settlements"))
	s.Equal(int64(200), s.counter("payout_volume"))
}

func (s *GameServiceTestSuite) TestSettleGame_EscrowMismatchAbortsSettlement() {
	var buffer models.Buffer
	buffer[0] = 3

	s.expectGetGame(s.joined())
	s.expectGetState(s.state())
	s.mockOracle.EXPECT().CurrentBuffer(gomock.Any(), s.testOracle).Return(buffer, nil)
	s.mockClientStateRepo.EXPECT().SaveClientState(gomock.Any(), gomock.Any()).Return(nil)
	s.mockLedgerRepo.EXPECT().
		GetBalance(gomock.Any(), &ledgerRepo.GetBalanceInput{Address: s.escrowAddress}).
		Return(int64(100), nil)

	_, err := s.gameService.SettleGame(s.ctx, s.settleInput())
	s.ErrorIs(err, ErrEscrowMismatch)
}

func (s *GameServiceTestSuite) TestSettleGame_VRFVariantDefersPayout() {
	s.gameService = s.newService(VariantVRF, s.mockProvisioner)

	// 6 mod 10 + 1 = 7, odd, and the owner chose even
	var buffer models.Buffer
	buffer[0] = 6

	s.expectGetGame(s.joined())
	s.expectGetState(s.state())
	s.mockOracle.EXPECT().CurrentBuffer(gomock.Any(), s.testOracle).Return(buffer, nil)
	s.mockClientStateRepo.EXPECT().SaveClientState(gomock.Any(), gomock.Any()).Return(nil)
	s.mockGameRepo.EXPECT().
		SaveGame(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, input *gameRepo.SaveGameInput) error {
			s.Equal(s.testJoinee, input.Game.Winner)
			s.False(input.Game.PayoutDisbursed)
			return nil
		})
	s.mockEventRepo.EXPECT().AppendEvent(gomock.Any(), gomock.Any()).Return(nil).Times(1)

	output, err := s.gameService.SettleGame(s.ctx, s.settleInput())

	s.Require().NoError(err)
	s.Equal(SettleStatusSettled, output.Status)
	s.Equal(uint64(7), output.Numeric)
	s.Equal(int64(0), output.Paid)
	s.Equal(models.GameStatusSettled, output.Game.Status())
}

// ClaimReward Tests

func (s *GameServiceTestSuite) settled(winner string, parity uint8) *models.Game {
	game := s.joined()
	game.Winner = winner
	game.Result = &parity
	return game
}

// drawn returns the client state after a draw of numeric
func (s *GameServiceTestSuite) drawn(numeric uint64) *models.ClientState {
	state := s.state()
	state.Result = numeric
	return state
}

func (s *GameServiceTestSuite) TestClaimReward_NotSettled() {
	s.expectGetGame(s.joined())

	output, err := s.gameService.ClaimReward(s.ctx, &ClaimRewardInput{
		GameID: s.testGameID,
		Owner:  s.testOwner,
		Caller: s.testJoinee,
	})

	s.Require().NoError(err)
	s.Equal(ClaimStatusNotSettled, output.Status)
}

func (s *GameServiceTestSuite) TestClaimReward_NotWinnerMovesNothing() {
	s.expectGetGame(s.settled(s.testJoinee, 1))
	s.expectGetState(s.drawn(7))

	output, err := s.gameService.ClaimReward(s.ctx, &ClaimRewardInput{
		GameID: s.testGameID,
		Owner:  s.testOwner,
		Caller: s.testOwner,
	})

	s.Require().NoError(err)
	s.Equal(ClaimStatusNotWinner, output.Status)
	s.Equal(int64(0), output.Amount)
	s.Equal(int64(1), s.counter("claims_rejected"))
}

func (s *GameServiceTestSuite) TestClaimReward_PaysWinner() {
	s.expectGetGame(s.settled(s.testJoinee, 1))
	s.expectGetState(s.drawn(7))
	s.mockLedgerRepo.EXPECT().
		GetBalance(gomock.Any(), &ledgerRepo.GetBalanceInput{Address: s.escrowAddress}).
		Return(int64(200), nil)
	s.mockLedgerRepo.EXPECT().
		Transfer(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, input *ledgerRepo.TransferInput) (*models.Transfer, error) {
			s.Equal(s.escrowAddress, input.From)
			s.Equal(s.testJoinee, input.To)
			s.Equal(int64(200), input.Amount)
			s.True(input.Signer.IsDerived())
			s.Equal(s.gameAddress, input.Signer.Address())
			return &models.Transfer{}, nil
		})
	s.mockGameRepo.EXPECT().
		SaveGame(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, input *gameRepo.SaveGameInput) error {
			s.True(input.Game.PayoutDisbursed)
			return nil
		})
	s.mockEventRepo.EXPECT().AppendEvent(gomock.Any(), gomock.Any()).Return(nil)

	output, err := s.gameService.ClaimReward(s.ctx, &ClaimRewardInput{
		GameID: s.testGameID,
		Owner:  s.testOwner,
		Caller: s.testJoinee,
	})

	s.Require().NoError(err)
	s.Equal(ClaimStatusPaid, output.Status)
	s.Equal(int64(200), output.Amount)
}

func (s *GameServiceTestSuite) TestClaimReward_AlreadyDisbursed() {
	game := s.settled(s.testJoinee, 1)
	game.PayoutDisbursed = true
	s.expectGetGame(game)
	s.expectGetState(s.drawn(7))

	_, err := s.gameService.ClaimReward(s.ctx, &ClaimRewardInput{
		GameID: s.testGameID,
		Owner:  s.testOwner,
		Caller: s.testJoinee,
	})
	s.ErrorIs(err, ErrPayoutAlreadyDisbursed)
}

func (s *GameServiceTestSuite) TestClaimReward_OutcomeMismatch() {
	testCases := []struct {
		name    string
		game    *models.Game
		numeric uint64
	}{
		// parity 0 matches the owner's even choice, yet the joinee is recorded
		{"winner disagrees with recorded parity", s.settled(s.testJoinee, 0), 4},
		// the record says odd and joinee, the consumed draw says even
		{"draw disagrees with the record", s.settled(s.testJoinee, 1), 4},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			s.expectGetGame(tc.game)
			s.expectGetState(s.drawn(tc.numeric))

			output, err := s.gameService.ClaimReward(s.ctx, &ClaimRewardInput{
				GameID: s.testGameID,
				Owner:  s.testOwner,
				Caller: s.testJoinee,
			})
			s.ErrorIs(err, ErrOutcomeMismatch)
			s.Nil(output)
		})
	}
}

// InitVRF Tests

func (s *GameServiceTestSuite) TestInitVRF_UnsupportedInClientVariant() {
	_, err := s.gameService.InitVRF(s.ctx, &InitVRFInput{Payer: s.testOwner})
	s.ErrorIs(err, ErrVariantUnsupported)
}

func (s *GameServiceTestSuite) TestInitVRF_HappyPath() {
	s.gameService = s.newService(VariantVRF, s.mockProvisioner)

	keyAddress, _, err := derive.FindProgramAddress(testProgramID, derive.VRFSeeds(s.testOwner)...)
	s.Require().NoError(err)

	s.mockClientStateRepo.EXPECT().
		GetVRFKey(gomock.Any(), &clientStateRepo.GetVRFKeyInput{Address: keyAddress}).
		Return(nil, clientStateRepo.ErrVRFKeyNotFound)
	s.mockProvisioner.EXPECT().
		CreateAccount(gomock.Any(), &oracle.CreateAccountInput{Payer: s.testOwner}).
		Return(s.testOracle, nil)
	s.mockProvisioner.EXPECT().
		SetAuthority(gomock.Any(), &oracle.SetAuthorityInput{
			Account:   s.testOracle,
			Current:   s.testOwner,
			Authority: s.stateAddress,
		}).
		Return(nil)
	s.mockClientStateRepo.EXPECT().
		SaveVRFKey(gomock.Any(), &clientStateRepo.SaveVRFKeyInput{VRFKey: &models.VRFKey{
			Address:   keyAddress,
			Payer:     s.testOwner,
			Oracle:    s.testOracle,
			CreatedAt: s.testTime,
		}}).
		Return(nil)

	output, err := s.gameService.InitVRF(s.ctx, &InitVRFInput{Payer: s.testOwner})

	s.Require().NoError(err)
	s.Equal(s.testOracle, output.VRFKey.Oracle)
	s.Equal(s.stateAddress, output.ClientState)
}

func (s *GameServiceTestSuite) TestInitVRF_AlreadyInitialized() {
	s.gameService = s.newService(VariantVRF, s.mockProvisioner)

	s.mockClientStateRepo.EXPECT().
		GetVRFKey(gomock.Any(), gomock.Any()).
		Return(&models.VRFKey{}, nil)

	_, err := s.gameService.InitVRF(s.ctx, &InitVRFInput{Payer: s.testOwner})
	s.ErrorIs(err, ErrVRFAlreadyInitialized)
}

// Read paths

func (s *GameServiceTestSuite) TestGetPendingGames() {
	s.mockGameRepo.EXPECT().
		GetPendingGames(gomock.Any(), &gameRepo.GetPendingGamesInput{}).
		Return(&gameRepo.GetPendingGamesOutput{Games: []*models.Game{s.joined()}}, nil)
	s.expectGetState(s.state())

	output, err := s.gameService.GetPendingGames(s.ctx, &GetPendingGamesInput{})

	s.Require().NoError(err)
	s.Require().Len(output.Games, 1)
	s.Equal(s.testOracle, output.Games[0].Oracle)
}

func (s *GameServiceTestSuite) TestFundAccount() {
	s.mockLedgerRepo.EXPECT().
		Deposit(gomock.Any(), &ledgerRepo.DepositInput{Address: s.testOwner, Amount: 500}).
		Return(&models.Account{Address: s.testOwner, Balance: 500}, nil)

	output, err := s.gameService.FundAccount(s.ctx, &FundAccountInput{Address: s.testOwner, Amount: 500})
	s.Require().NoError(err)
	s.Equal(int64(500), output.Account.Balance)

	_, err = s.gameService.FundAccount(s.ctx, &FundAccountInput{Address: s.testOwner, Amount: -1})
	s.ErrorIs(err, ErrInvalidAmount)
}

func (s *GameServiceTestSuite) TestSettleGame_PropagatesUnexpectedErrors() {
	boom := errors.New("boom")
	s.mockGameRepo.EXPECT().GetGame(gomock.Any(), gomock.Any()).Return(nil, boom)

	_, err := s.gameService.SettleGame(s.ctx, s.settleInput())
	s.ErrorIs(err, boom)
}
