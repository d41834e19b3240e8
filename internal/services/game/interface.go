package game

//go:generate mockgen -package=mocks -destination=mocks/mock_service.go github.com/KirkDiggler/coinflip/internal/services/game Service

import "context"

// Service defines the wager engine
type Service interface {
	// CreateGame escrows the owner's stake and allocates the game and its client state
	CreateGame(ctx context.Context, input *CreateGameInput) (*CreateGameOutput, error)

	// JoinGame requests randomness and escrows the joinee's stake
	JoinGame(ctx context.Context, input *JoinGameInput) (*JoinGameOutput, error)

	// SettleGame consumes a delivered random value and records the winner
	SettleGame(ctx context.Context, input *SettleGameInput) (*SettleGameOutput, error)

	// ClaimReward pays a settled game's winner
	ClaimReward(ctx context.Context, input *ClaimRewardInput) (*ClaimRewardOutput, error)

	// InitVRF provisions an oracle account for a payer
	InitVRF(ctx context.Context, input *InitVRFInput) (*InitVRFOutput, error)

	// GetGame retrieves a game by id and owner or by address
	GetGame(ctx context.Context, input *GetGameInput) (*GetGameOutput, error)

	// GetGameByChannel retrieves the latest game created from a channel
	GetGameByChannel(ctx context.Context, input *GetGameByChannelInput) (*GetGameOutput, error)

	// GetPendingGames lists joined games waiting for a draw
	GetPendingGames(ctx context.Context, input *GetPendingGamesInput) (*GetPendingGamesOutput, error)

	// GetBalance returns the ledger balance of an address
	GetBalance(ctx context.Context, input *GetBalanceInput) (*GetBalanceOutput, error)

	// GetTransfers lists the ledger movements touching an address, oldest first
	GetTransfers(ctx context.Context, input *GetTransfersInput) (*GetTransfersOutput, error)

	// FundAccount credits an address from outside the ledger
	FundAccount(ctx context.Context, input *FundAccountInput) (*FundAccountOutput, error)

	// ListEvents reads the observation log
	ListEvents(ctx context.Context, input *ListEventsInput) (*ListEventsOutput, error)
}
