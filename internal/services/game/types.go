package game

import (
	"log/slog"

	"github.com/KirkDiggler/coinflip/internal/common/clock"
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

// Variant selects when the escrow is released
type Variant string

const (
	// VariantClient pays the winner as part of settlement
	VariantClient Variant = "client"

	// VariantVRF records the outcome on settlement and pays on claim
	VariantVRF Variant = "vrf"
)

// IsValid reports whether v is a known variant
func (v Variant) IsValid() bool {
	return v == VariantClient || v == VariantVRF
}

// SettleStatus is the outcome of a settle attempt. Only SettleStatusSettled changes state.
type SettleStatus string

const (
	// SettleStatusAwaitingRandomness means the oracle has not delivered a value yet
	SettleStatusAwaitingRandomness SettleStatus = "awaiting_randomness"

	// SettleStatusAlreadyConsumed means the delivered value was consumed before
	SettleStatusAlreadyConsumed SettleStatus = "already_consumed"

	// SettleStatusAlreadySettled means the game has a winner already
	SettleStatusAlreadySettled SettleStatus = "already_settled"

	// SettleStatusSettled means the value was consumed and a winner recorded
	SettleStatusSettled SettleStatus = "settled"
)

// ClaimStatus is the outcome of a claim attempt
type ClaimStatus string

const (
	// ClaimStatusNotSettled means there is no outcome to claim yet
	ClaimStatusNotSettled ClaimStatus = "not_settled"

	// ClaimStatusNotWinner means the caller lost; nothing moves
	ClaimStatusNotWinner ClaimStatus = "not_winner"

	// ClaimStatusPaid means the escrow was released to the caller
	ClaimStatusPaid ClaimStatus = "paid"
)

// Config holds configuration for the game service
type Config struct {
	// ProgramID namespaces every derived address
	ProgramID string

	// Variant selects settle-pays or claim-pays
	Variant Variant

	// Transactor runs each operation as one transaction
	Transactor store.Transactor

	// Repository dependencies
	GameRepo        gameRepo.Repository
	ClientStateRepo clientStateRepo.Repository
	LedgerRepo      ledgerRepo.Repository
	EventRepo       eventRepo.Repository

	// Oracle is the randomness source
	Oracle oracle.Oracle

	// Provisioner creates oracle accounts; optional, required by InitVRF and FreshOracle
	Provisioner oracle.Provisioner

	// Service dependencies
	Clock         clock.Clock
	UUIDGenerator uuid.UUID

	// Logger defaults to slog.Default()
	Logger *slog.Logger

	// MetricsRegistry defaults to metrics.DefaultRegistry
	MetricsRegistry metrics.Registry
}

// CreateGameInput contains parameters for creating a game
type CreateGameInput struct {
	// Owner is the identity of the creator; their stake is escrowed
	Owner string

	// GameID is a caller chosen seed, at most 32 bytes
	GameID string

	// Choice is the parity the owner bets on
	Choice models.Choice

	// StakeAmount is what each side puts in
	StakeAmount int64

	// MaxResult bounds the draw; 0 means 1337
	MaxResult uint64

	// Oracle is the oracle account to bind. When empty the engine provisions
	// one if FreshOracle is set, else falls back to the owner's VRF key in
	// the vrf variant.
	Oracle string

	// FreshOracle provisions a dedicated oracle account for the game
	FreshOracle bool

	// ChannelID optionally ties the game to a chat channel
	ChannelID string
}

// CreateGameOutput contains the result of creating a game
type CreateGameOutput struct {
	Game        *models.Game
	ClientState *models.ClientState
}

// JoinGameInput contains parameters for joining a game
type JoinGameInput struct {
	// GameID and Owner identify the game
	GameID string
	Owner  string

	// Joinee is the identity of the second participant
	Joinee string

	// Params is passed through to the oracle request
	Params []byte
}

// JoinGameOutput contains the result of joining a game
type JoinGameOutput struct {
	Game *models.Game
}

// SettleGameInput contains parameters for settling a game
type SettleGameInput struct {
	// GameID and Owner identify the game
	GameID string
	Owner  string

	// Oracle is the account the caller read from; must be the bound one
	Oracle string
}

// SettleGameOutput contains the result of a settle attempt
type SettleGameOutput struct {
	Status      SettleStatus
	Game        *models.Game
	ClientState *models.ClientState

	// Numeric is the drawn number in [1, MaxResult]; set when settled
	Numeric uint64

	// Paid is what was released to the winner in the client variant
	Paid int64
}

// ClaimRewardInput contains parameters for claiming a payout
type ClaimRewardInput struct {
	// GameID and Owner identify the game
	GameID string
	Owner  string

	// Caller is who asks to be paid
	Caller string
}

// ClaimRewardOutput contains the result of a claim attempt
type ClaimRewardOutput struct {
	Status ClaimStatus
	Game   *models.Game
	Amount int64
}

// InitVRFInput contains parameters for provisioning a payer's oracle account
type InitVRFInput struct {
	Payer string
}

// InitVRFOutput contains the provisioned oracle account
type InitVRFOutput struct {
	VRFKey *models.VRFKey

	// ClientState is the address that holds request rights on the oracle
	ClientState string
}

// GetGameInput identifies a game either by Address or by GameID and Owner
type GetGameInput struct {
	Address string
	GameID  string
	Owner   string
}

// GetGameByChannelInput contains parameters for finding a channel's game
type GetGameByChannelInput struct {
	ChannelID string
}

// GetGameOutput contains a game and its client state
type GetGameOutput struct {
	Game        *models.Game
	ClientState *models.ClientState

	// EscrowBalance is the amount currently held for the game
	EscrowBalance int64
}

// GetPendingGamesInput contains parameters for listing pending games
type GetPendingGamesInput struct {
}

// PendingGame is a joined game and the oracle it waits on
type PendingGame struct {
	Game   *models.Game
	Oracle string
}

// GetPendingGamesOutput contains the pending games
type GetPendingGamesOutput struct {
	Games []*PendingGame
}

// GetBalanceInput contains parameters for reading a balance
type GetBalanceInput struct {
	Address string
}

// GetBalanceOutput contains a balance
type GetBalanceOutput struct {
	Balance int64
}

// GetTransfersInput contains parameters for reading an address's history
type GetTransfersInput struct {
	Address string
}

// GetTransfersOutput contains transfers in the order they were made
type GetTransfersOutput struct {
	Transfers []*models.Transfer
}

// FundAccountInput contains parameters for crediting an address
type FundAccountInput struct {
	Address string
	Amount  int64
}

// FundAccountOutput contains the credited account
type FundAccountOutput struct {
	Account *models.Account
}

// ListEventsInput contains parameters for reading observations
type ListEventsInput struct {
	After string
	Count int64
	Types []models.EventType
	Game  string
}

// ListEventsOutput contains observations and the cursor to resume from
type ListEventsOutput struct {
	Events []*models.Event
	Cursor string
}
