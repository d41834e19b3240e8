package game

//go:generate mockgen -package=mocks -destination=mocks/mock_repository.go github.com/KirkDiggler/coinflip/internal/repositories/game Repository

import (
	"context"

	"github.com/KirkDiggler/coinflip/internal/models"
)

// Repository defines the interface for game record persistence
type Repository interface {
	// CreateGame persists a new game, failing if its address is taken
	CreateGame(ctx context.Context, input *CreateGameInput) error

	// SaveGame persists changes to an existing game
	SaveGame(ctx context.Context, input *SaveGameInput) error

	// GetGame retrieves a game by address
	GetGame(ctx context.Context, input *GetGameInput) (*models.Game, error)

	// GetGameByChannel retrieves the latest game created from a channel
	GetGameByChannel(ctx context.Context, input *GetGameByChannelInput) (*models.Game, error)

	// GetPendingGames retrieves all joined games still waiting for a draw
	GetPendingGames(ctx context.Context, input *GetPendingGamesInput) (*GetPendingGamesOutput, error)
}
