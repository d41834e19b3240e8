package game

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/KirkDiggler/coinflip/internal/common/clock"
	"github.com/KirkDiggler/coinflip/internal/common/derive"
	"github.com/KirkDiggler/coinflip/internal/common/uuid"
	"github.com/KirkDiggler/coinflip/internal/models"
	"github.com/KirkDiggler/coinflip/internal/oracle"
	clientStateRepo "github.com/KirkDiggler/coinflip/internal/repositories/client_state"
	eventRepo "github.com/KirkDiggler/coinflip/internal/repositories/event"
	gameRepo "github.com/KirkDiggler/coinflip/internal/repositories/game"
	ledgerRepo "github.com/KirkDiggler/coinflip/internal/repositories/ledger"
	"github.com/KirkDiggler/coinflip/internal/repositories/store"
	"github.com/rcrowley/go-metrics"
)

// service implements the Service interface
type service struct {
	programID       string
	variant         Variant
	transactor      store.Transactor
	gameRepo        gameRepo.Repository
	clientStateRepo clientStateRepo.Repository
	ledgerRepo      ledgerRepo.Repository
	eventRepo       eventRepo.Repository
	oracle          oracle.Oracle
	provisioner     oracle.Provisioner
	clock           clock.Clock
	uuidGenerator   uuid.UUID
	logger          *slog.Logger
	metrics         *engineMetrics
}

// New creates a new game service
func New(cfg *Config) (*service, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}

	if cfg.ProgramID == "" {
		return nil, ErrInvalidProgramID
	}

	variant := cfg.Variant
	if variant == "" {
		variant = VariantClient
	}
	if !variant.IsValid() {
		return nil, ErrInvalidVariant
	}

	if cfg.Transactor == nil {
		return nil, ErrNilTransactor
	}

	if cfg.GameRepo == nil {
		return nil, ErrNilGameRepo
	}

	if cfg.ClientStateRepo == nil {
		return nil, ErrNilClientStateRepo
	}

	if cfg.LedgerRepo == nil {
		return nil, ErrNilLedgerRepo
	}

	if cfg.EventRepo == nil {
		return nil, ErrNilEventRepo
	}

	if cfg.Oracle == nil {
		return nil, ErrNilOracle
	}

	if cfg.Clock == nil {
		return nil, ErrNilClock
	}

	if cfg.UUIDGenerator == nil {
		return nil, ErrNilUUIDGenerator
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	registry := cfg.MetricsRegistry
	if registry == nil {
		registry = metrics.DefaultRegistry
	}

	return &service{
		programID:       cfg.ProgramID,
		variant:         variant,
		transactor:      cfg.Transactor,
		gameRepo:        cfg.GameRepo,
		clientStateRepo: cfg.ClientStateRepo,
		ledgerRepo:      cfg.LedgerRepo,
		eventRepo:       cfg.EventRepo,
		oracle:          cfg.Oracle,
		provisioner:     cfg.Provisioner,
		clock:           cfg.Clock,
		uuidGenerator:   cfg.UUIDGenerator,
		logger:          logger.With("component", "engine", "variant", string(variant)),
		metrics:         newEngineMetrics(registry),
	}, nil
}

// CreateGame allocates the game record, its escrow and the client state of
// its oracle binding, and escrows the owner's stake
func (s *service) CreateGame(ctx context.Context, input *CreateGameInput) (*CreateGameOutput, error) {
	if input == nil {
		return nil, errors.New("input cannot be nil")
	}

	if input.MaxResult > models.MaxResultCap {
		return nil, ErrConfigTooLarge
	}

	if !input.Choice.IsValid() {
		return nil, ErrInvalidChoice
	}

	// Both stakes together must fit the escrow balance
	if input.StakeAmount <= 0 || input.StakeAmount > models.MaxStake {
		return nil, ErrInvalidStake
	}

	if input.Owner == "" {
		return nil, ErrInvalidParticipant
	}

	if err := validateGameID(input.GameID); err != nil {
		return nil, err
	}

	maxResult := input.MaxResult
	if maxResult == 0 {
		maxResult = models.DefaultMaxResult
	}

	gameAddress, gameBump, err := derive.FindProgramAddress(s.programID, derive.GameSeeds(input.GameID, input.Owner)...)
	if err != nil {
		return nil, fmt.Errorf("failed to derive game address: %w", err)
	}

	escrowAddress, escrowBump, err := derive.FindProgramAddress(s.programID, derive.EscrowSeeds(input.GameID, input.Owner)...)
	if err != nil {
		return nil, fmt.Errorf("failed to derive escrow address: %w", err)
	}

	var output *CreateGameOutput
	err = s.transactor.Update(ctx, func(ctx context.Context) error {
		oracleAccount, err := s.resolveOracle(ctx, input)
		if err != nil {
			return err
		}

		stateAddress, stateBump, err := derive.FindProgramAddress(s.programID, derive.StateSeeds(oracleAccount)...)
		if err != nil {
			return fmt.Errorf("failed to derive client state address: %w", err)
		}

		// Only the client state may request randomness on the bound oracle
		authority, err := s.oracle.Authority(ctx, oracleAccount)
		if err != nil {
			if errors.Is(err, oracle.ErrAccountNotFound) {
				return ErrInvalidOracleBinding
			}
			return err
		}
		if authority != stateAddress {
			return ErrInvalidOracleAuthority
		}

		now := s.clock.Now()
		game := &models.Game{
			Address:     gameAddress,
			Bump:        gameBump,
			GameID:      input.GameID,
			Owner:       input.Owner,
			OwnerChoice: input.Choice,
			StakeAmount: input.StakeAmount,
			Escrow:      escrowAddress,
			EscrowBump:  escrowBump,
			ClientState: stateAddress,
			ChannelID:   input.ChannelID,
			CreatedAt:   now,
			UpdatedAt:   now,
		}

		if err := s.gameRepo.CreateGame(ctx, &gameRepo.CreateGameInput{
			Game: game,
		}); err != nil {
			if errors.Is(err, gameRepo.ErrGameAlreadyExists) {
				return ErrGameAlreadyExists
			}
			return err
		}

		state := &models.ClientState{
			Address:   stateAddress,
			Bump:      stateBump,
			MaxResult: maxResult,
			Timestamp: now,
			Oracle:    oracleAccount,
		}

		if err := s.clientStateRepo.CreateClientState(ctx, &clientStateRepo.CreateClientStateInput{
			ClientState: state,
		}); err != nil {
			if errors.Is(err, clientStateRepo.ErrClientStateAlreadyExists) {
				return ErrClientStateExists
			}
			return err
		}

		// The escrow can only be debited by the game's derived authority
		if _, err := s.ledgerRepo.OpenAccount(ctx, &ledgerRepo.OpenAccountInput{
			Address:   escrowAddress,
			Authority: gameAddress,
		}); err != nil {
			if errors.Is(err, ledgerRepo.ErrAccountAlreadyExists) {
				return ErrGameAlreadyExists
			}
			return err
		}

		if err := s.transfer(ctx, input.Owner, escrowAddress, input.StakeAmount, derive.IdentitySigner(input.Owner)); err != nil {
			return err
		}

		if err := s.appendEvent(ctx, &models.Event{
			Type:      models.EventTypeGameCreated,
			GameID:    input.GameID,
			Game:      gameAddress,
			MaxResult: maxResult,
			Timestamp: now,
		}); err != nil {
			return err
		}

		output = &CreateGameOutput{
			Game:        game,
			ClientState: state,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.gamesCreated.Inc(1)
	s.logger.InfoContext(ctx, "game created",
		"game", output.Game.Address,
		"game_id", input.GameID,
		"owner", input.Owner,
		"choice", input.Choice.String(),
		"stake", input.StakeAmount,
		"max_result", maxResult,
		"oracle", output.ClientState.Oracle)

	return output, nil
}

// JoinGame requests randomness for the game and escrows the joinee's stake.
// The request, the client state reset, the joinee and the escrow commit
// together or not at all.
func (s *service) JoinGame(ctx context.Context, input *JoinGameInput) (*JoinGameOutput, error) {
	if input == nil {
		return nil, errors.New("input cannot be nil")
	}

	if input.Joinee == "" || input.Owner == "" {
		return nil, ErrInvalidParticipant
	}

	if err := validateGameID(input.GameID); err != nil {
		return nil, err
	}

	var output *JoinGameOutput
	err := s.transactor.Update(ctx, func(ctx context.Context) error {
		game, err := s.loadGame(ctx, input.GameID, input.Owner)
		if err != nil {
			return err
		}

		if game.Joinee != "" {
			return ErrGameAlreadyJoined
		}

		if game.Result != nil || game.Winner != "" {
			return ErrInvalidGameState
		}

		if input.Joinee == game.Owner {
			return ErrCannotJoinOwnGame
		}

		state, err := s.loadClientState(ctx, game.ClientState)
		if err != nil {
			return err
		}

		// Check funds before anything is requested
		balance, err := s.ledgerRepo.GetBalance(ctx, &ledgerRepo.GetBalanceInput{
			Address: input.Joinee,
		})
		if err != nil {
			return err
		}
		if balance < game.StakeAmount {
			return fmt.Errorf("%w: %w", ErrInsufficientFunds, ledgerRepo.ErrInsufficientFunds)
		}

		if err := s.oracle.Request(ctx, &oracle.RequestInput{
			Account:   state.Oracle,
			Authority: state.Address,
			Params:    input.Params,
		}); err != nil {
			if errors.Is(err, oracle.ErrUnauthorizedRequest) {
				return ErrInvalidOracleAuthority
			}
			return fmt.Errorf("failed to request randomness: %w", err)
		}

		state.Result = 0
		if err := s.clientStateRepo.SaveClientState(ctx, &clientStateRepo.SaveClientStateInput{
			ClientState: state,
		}); err != nil {
			return err
		}

		now := s.clock.Now()
		game.Joinee = input.Joinee
		game.UpdatedAt = now
		if err := s.gameRepo.SaveGame(ctx, &gameRepo.SaveGameInput{
			Game: game,
		}); err != nil {
			return err
		}

		if err := s.transfer(ctx, input.Joinee, game.Escrow, game.StakeAmount, derive.IdentitySigner(input.Joinee)); err != nil {
			return err
		}

		if err := s.appendEvent(ctx, &models.Event{
			Type:      models.EventTypeRandomnessRequested,
			Game:      game.Address,
			Binding:   state.Address,
			MaxResult: state.MaxResult,
			Timestamp: now,
		}); err != nil {
			return err
		}

		output = &JoinGameOutput{
			Game: game,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.randomnessRequested.Inc(1)
	s.logger.InfoContext(ctx, "game joined, randomness requested",
		"game", output.Game.Address,
		"joinee", input.Joinee)

	return output, nil
}

// InitVRF provisions an oracle account whose request rights belong to the
// client state derived from it, and records it as the payer's VRF key
func (s *service) InitVRF(ctx context.Context, input *InitVRFInput) (*InitVRFOutput, error) {
	if input == nil {
		return nil, errors.New("input cannot be nil")
	}

	if s.variant != VariantVRF || s.provisioner == nil {
		return nil, ErrVariantUnsupported
	}

	if input.Payer == "" {
		return nil, ErrInvalidParticipant
	}

	keyAddress, _, err := derive.FindProgramAddress(s.programID, derive.VRFSeeds(input.Payer)...)
	if err != nil {
		return nil, fmt.Errorf("failed to derive vrf key address: %w", err)
	}

	var output *InitVRFOutput
	err = s.transactor.Update(ctx, func(ctx context.Context) error {
		_, err := s.clientStateRepo.GetVRFKey(ctx, &clientStateRepo.GetVRFKeyInput{
			Address: keyAddress,
		})
		if err == nil {
			return ErrVRFAlreadyInitialized
		}
		if !errors.Is(err, clientStateRepo.ErrVRFKeyNotFound) {
			return err
		}

		oracleAccount, stateAddress, err := s.provisionOracle(ctx, input.Payer)
		if err != nil {
			return err
		}

		key := &models.VRFKey{
			Address:   keyAddress,
			Payer:     input.Payer,
			Oracle:    oracleAccount,
			CreatedAt: s.clock.Now(),
		}

		if err := s.clientStateRepo.SaveVRFKey(ctx, &clientStateRepo.SaveVRFKeyInput{
			VRFKey: key,
		}); err != nil {
			if errors.Is(err, clientStateRepo.ErrVRFKeyAlreadyExists) {
				return ErrVRFAlreadyInitialized
			}
			return err
		}

		output = &InitVRFOutput{
			VRFKey:      key,
			ClientState: stateAddress,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "vrf initialized",
		"payer", input.Payer,
		"oracle", output.VRFKey.Oracle)

	return output, nil
}

// GetGame retrieves a game with its client state and escrow balance
func (s *service) GetGame(ctx context.Context, input *GetGameInput) (*GetGameOutput, error) {
	if input == nil {
		return nil, errors.New("input cannot be nil")
	}

	var (
		game *models.Game
		err  error
	)
	if input.Address != "" {
		game, err = s.gameRepo.GetGame(ctx, &gameRepo.GetGameInput{
			Address: input.Address,
		})
		if errors.Is(err, gameRepo.ErrGameNotFound) {
			err = ErrGameNotFound
		}
	} else {
		game, err = s.loadGame(ctx, input.GameID, input.Owner)
	}
	if err != nil {
		return nil, err
	}

	return s.describe(ctx, game)
}

// GetGameByChannel retrieves the latest game created from a channel
func (s *service) GetGameByChannel(ctx context.Context, input *GetGameByChannelInput) (*GetGameOutput, error) {
	if input == nil || input.ChannelID == "" {
		return nil, errors.New("input and channel ID cannot be empty")
	}

	game, err := s.gameRepo.GetGameByChannel(ctx, &gameRepo.GetGameByChannelInput{
		ChannelID: input.ChannelID,
	})
	if err != nil {
		if errors.Is(err, gameRepo.ErrGameNotFound) {
			return nil, ErrGameNotFound
		}
		return nil, err
	}

	return s.describe(ctx, game)
}

// GetPendingGames lists joined games with the oracle each is bound to
func (s *service) GetPendingGames(ctx context.Context, input *GetPendingGamesInput) (*GetPendingGamesOutput, error) {
	if input == nil {
		return nil, errors.New("input cannot be nil")
	}

	pending, err := s.gameRepo.GetPendingGames(ctx, &gameRepo.GetPendingGamesInput{})
	if err != nil {
		return nil, err
	}

	games := make([]*PendingGame, 0, len(pending.Games))
	for _, game := range pending.Games {
		state, err := s.loadClientState(ctx, game.ClientState)
		if err != nil {
			return nil, fmt.Errorf("failed to load client state of %s: %w", game.Address, err)
		}
		games = append(games, &PendingGame{
			Game:   game,
			Oracle: state.Oracle,
		})
	}

	return &GetPendingGamesOutput{
		Games: games,
	}, nil
}

// GetBalance returns the ledger balance of an address
func (s *service) GetBalance(ctx context.Context, input *GetBalanceInput) (*GetBalanceOutput, error) {
	if input == nil || input.Address == "" {
		return nil, errors.New("input and address cannot be empty")
	}

	balance, err := s.ledgerRepo.GetBalance(ctx, &ledgerRepo.GetBalanceInput{
		Address: input.Address,
	})
	if err != nil {
		return nil, err
	}

	return &GetBalanceOutput{
		Balance: balance,
	}, nil
}

// GetTransfers returns the ledger history of an address
func (s *service) GetTransfers(ctx context.Context, input *GetTransfersInput) (*GetTransfersOutput, error) {
	if input == nil || input.Address == "" {
		return nil, errors.New("input and address cannot be empty")
	}

	output, err := s.ledgerRepo.GetTransfers(ctx, &ledgerRepo.GetTransfersInput{
		Address: input.Address,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get transfers for %s: %w", input.Address, err)
	}

	return &GetTransfersOutput{
		Transfers: output.Transfers,
	}, nil
}

// FundAccount credits an address
func (s *service) FundAccount(ctx context.Context, input *FundAccountInput) (*FundAccountOutput, error) {
	if input == nil || input.Address == "" {
		return nil, errors.New("input and address cannot be empty")
	}

	if input.Amount <= 0 {
		return nil, ErrInvalidAmount
	}

	var output *FundAccountOutput
	err := s.transactor.Update(ctx, func(ctx context.Context) error {
		account, err := s.ledgerRepo.Deposit(ctx, &ledgerRepo.DepositInput{
			Address: input.Address,
			Amount:  input.Amount,
		})
		if err != nil {
			return err
		}

		output = &FundAccountOutput{
			Account: account,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "account funded",
		"address", input.Address,
		"amount", input.Amount,
		"balance", output.Account.Balance)

	return output, nil
}

// ListEvents reads the observation log
func (s *service) ListEvents(ctx context.Context, input *ListEventsInput) (*ListEventsOutput, error) {
	if input == nil {
		return nil, errors.New("input cannot be nil")
	}

	events, err := s.eventRepo.ListEvents(ctx, &eventRepo.ListEventsInput{
		After: input.After,
		Count: input.Count,
		Types: input.Types,
		Game:  input.Game,
	})
	if err != nil {
		return nil, err
	}

	return &ListEventsOutput{
		Events: events.Events,
		Cursor: events.Cursor,
	}, nil
}

// resolveOracle picks the oracle account a new game binds to
func (s *service) resolveOracle(ctx context.Context, input *CreateGameInput) (string, error) {
	if input.Oracle != "" {
		return input.Oracle, nil
	}

	if input.FreshOracle {
		if s.provisioner == nil {
			return "", ErrVariantUnsupported
		}
		oracleAccount, _, err := s.provisionOracle(ctx, input.Owner)
		return oracleAccount, err
	}

	if s.variant != VariantVRF {
		return "", ErrInvalidOracleBinding
	}

	keyAddress, _, err := derive.FindProgramAddress(s.programID, derive.VRFSeeds(input.Owner)...)
	if err != nil {
		return "", fmt.Errorf("failed to derive vrf key address: %w", err)
	}

	key, err := s.clientStateRepo.GetVRFKey(ctx, &clientStateRepo.GetVRFKeyInput{
		Address: keyAddress,
	})
	if err != nil {
		if errors.Is(err, clientStateRepo.ErrVRFKeyNotFound) {
			return "", ErrInvalidOracleBinding
		}
		return "", err
	}

	return key.Oracle, nil
}

// provisionOracle creates an oracle account and hands its request rights to
// the client state derived from it
func (s *service) provisionOracle(ctx context.Context, payer string) (string, string, error) {
	oracleAccount, err := s.provisioner.CreateAccount(ctx, &oracle.CreateAccountInput{
		Payer: payer,
	})
	if err != nil {
		return "", "", fmt.Errorf("failed to create oracle account: %w", err)
	}

	stateAddress, _, err := derive.FindProgramAddress(s.programID, derive.StateSeeds(oracleAccount)...)
	if err != nil {
		return "", "", fmt.Errorf("failed to derive client state address: %w", err)
	}

	if err := s.provisioner.SetAuthority(ctx, &oracle.SetAuthorityInput{
		Account:   oracleAccount,
		Current:   payer,
		Authority: stateAddress,
	}); err != nil {
		return "", "", fmt.Errorf("failed to set oracle authority: %w", err)
	}

	return oracleAccount, stateAddress, nil
}

func (s *service) loadGame(ctx context.Context, gameID, owner string) (*models.Game, error) {
	if err := validateGameID(gameID); err != nil {
		return nil, err
	}

	if owner == "" {
		return nil, ErrInvalidParticipant
	}

	address, _, err := derive.FindProgramAddress(s.programID, derive.GameSeeds(gameID, owner)...)
	if err != nil {
		return nil, fmt.Errorf("failed to derive game address: %w", err)
	}

	game, err := s.gameRepo.GetGame(ctx, &gameRepo.GetGameInput{
		Address: address,
	})
	if err != nil {
		if errors.Is(err, gameRepo.ErrGameNotFound) {
			return nil, ErrGameNotFound
		}
		return nil, err
	}

	return game, nil
}

func (s *service) loadClientState(ctx context.Context, address string) (*models.ClientState, error) {
	state, err := s.clientStateRepo.GetClientState(ctx, &clientStateRepo.GetClientStateInput{
		Address: address,
	})
	if err != nil {
		if errors.Is(err, clientStateRepo.ErrClientStateNotFound) {
			return nil, ErrInvalidOracleBinding
		}
		return nil, err
	}
	return state, nil
}

func (s *service) describe(ctx context.Context, game *models.Game) (*GetGameOutput, error) {
	state, err := s.loadClientState(ctx, game.ClientState)
	if err != nil {
		return nil, err
	}

	balance, err := s.ledgerRepo.GetBalance(ctx, &ledgerRepo.GetBalanceInput{
		Address: game.Escrow,
	})
	if err != nil {
		return nil, err
	}

	return &GetGameOutput{
		Game:          game,
		ClientState:   state,
		EscrowBalance: balance,
	}, nil
}

// transfer moves funds on the ledger, reporting a short balance as the
// engine's ErrInsufficientFunds while keeping the ledger error in the chain
func (s *service) transfer(ctx context.Context, from, to string, amount int64, signer derive.Signer) error {
	_, err := s.ledgerRepo.Transfer(ctx, &ledgerRepo.TransferInput{
		From:   from,
		To:     to,
		Amount: amount,
		Signer: signer,
	})
	if err != nil {
		if errors.Is(err, ledgerRepo.ErrInsufficientFunds) {
			return fmt.Errorf("%w: %w", ErrInsufficientFunds, err)
		}
		return fmt.Errorf("failed to transfer %d from %s to %s: %w", amount, from, to, err)
	}
	return nil
}

func (s *service) appendEvent(ctx context.Context, event *models.Event) error {
	event.ID = s.uuidGenerator.NewUUID()
	if event.Timestamp.IsZero() {
		event.Timestamp = s.clock.Now()
	}
	return s.eventRepo.AppendEvent(ctx, &eventRepo.AppendEventInput{
		Event: event,
	})
}

func validateGameID(gameID string) error {
	if gameID == "" || len(gameID) > derive.MaxSeedLength {
		return ErrInvalidGameID
	}
	return nil
}
