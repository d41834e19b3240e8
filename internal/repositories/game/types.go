package game

import "github.com/KirkDiggler/coinflip/internal/models"

type CreateGameInput struct {
	Game *models.Game
}

type SaveGameInput struct {
	Game *models.Game
}

type GetGameInput struct {
	Address string
}

type GetGameByChannelInput struct {
	ChannelID string
}

type GetPendingGamesInput struct {
}

type GetPendingGamesOutput struct {
	Games []*models.Game
}
