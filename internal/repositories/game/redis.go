package game

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/KirkDiggler/coinflip/internal/models"
	"github.com/KirkDiggler/coinflip/internal/repositories/store"
	"github.com/redis/go-redis/v9"
)

const (
	// Key prefixes for Redis
	gameKeyPrefix    = "game:"
	channelKeyPrefix = "channel:"
	pendingGamesKey  = "games:pending"
)

var (
	// ErrGameNotFound is returned when a game is not found
	ErrGameNotFound = errors.New("game not found")

	// ErrGameAlreadyExists is returned when creating a game whose address is taken
	ErrGameAlreadyExists = errors.New("game already exists")
)

// Config holds configuration for the Redis game repository
type Config struct {
	// Redis client
	RedisClient *redis.Client
}

// redisRepository implements the Repository interface using Redis
type redisRepository struct {
	client *redis.Client
}

// NewRedis creates a new Redis-backed game repository
func NewRedis(cfg *Config) (*redisRepository, error) {
	// Validate config
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}

	if cfg.RedisClient == nil {
		return nil, errors.New("redis client cannot be nil")
	}

	// Test connection
	if err := cfg.RedisClient.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &redisRepository{
		client: cfg.RedisClient,
	}, nil
}

// CreateGame persists a new game to Redis
func (r *redisRepository) CreateGame(ctx context.Context, input *CreateGameInput) error {
	if input == nil || input.Game == nil {
		return errors.New("input and game cannot be nil")
	}

	if input.Game.Address == "" {
		return errors.New("game address cannot be empty")
	}

	exists, err := store.Exists(ctx, r.client, gameKey(input.Game.Address))
	if err != nil {
		return fmt.Errorf("failed to check game: %w", err)
	}
	if exists {
		return ErrGameAlreadyExists
	}

	if err := r.SaveGame(ctx, &SaveGameInput{
		Game: input.Game,
	}); err != nil {
		return err
	}

	// The channel points at the most recent game created from it
	if input.Game.ChannelID != "" {
		channel := channelKey(input.Game.ChannelID)
		if err := store.Put(ctx, r.client, channel, []byte(input.Game.Address)); err != nil {
			return fmt.Errorf("failed to index game by channel: %w", err)
		}
	}

	return nil
}

// SaveGame persists a game to Redis
func (r *redisRepository) SaveGame(ctx context.Context, input *SaveGameInput) error {
	if input == nil || input.Game == nil {
		return errors.New("input and game cannot be nil")
	}

	if input.Game.Address == "" {
		return errors.New("game address cannot be empty")
	}

	// Marshal the game to JSON
	gameJSON, err := json.Marshal(input.Game)
	if err != nil {
		return fmt.Errorf("failed to marshal game: %w", err)
	}

	if err := store.Put(ctx, r.client, gameKey(input.Game.Address), gameJSON); err != nil {
		return fmt.Errorf("failed to save game: %w", err)
	}

	game := input.Game
	return store.Exec(ctx, r.client, func(pipe redis.Pipeliner) {
		// Joined games waiting for a draw are tracked for the relayer
		if game.IsPending() {
			pipe.SAdd(ctx, pendingGamesKey, game.Address)
		} else {
			pipe.SRem(ctx, pendingGamesKey, game.Address)
		}
	})
}

// GetGame retrieves a game by address from Redis
func (r *redisRepository) GetGame(ctx context.Context, input *GetGameInput) (*models.Game, error) {
	if input == nil || input.Address == "" {
		return nil, errors.New("input and game address cannot be empty")
	}

	gameJSON, err := store.Get(ctx, r.client, gameKey(input.Address))
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrGameNotFound
		}
		return nil, fmt.Errorf("failed to get game: %w", err)
	}

	// Unmarshal the game from JSON
	var game models.Game
	if err := json.Unmarshal(gameJSON, &game); err != nil {
		return nil, fmt.Errorf("failed to unmarshal game: %w", err)
	}

	return &game, nil
}

// GetGameByChannel retrieves a game by channel ID from Redis
func (r *redisRepository) GetGameByChannel(ctx context.Context, input *GetGameByChannelInput) (*models.Game, error) {
	if input == nil || input.ChannelID == "" {
		return nil, errors.New("input and channel ID cannot be empty")
	}

	address, err := store.Get(ctx, r.client, channelKey(input.ChannelID))
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrGameNotFound
		}
		return nil, fmt.Errorf("failed to get game address for channel: %w", err)
	}

	return r.GetGame(ctx, &GetGameInput{
		Address: string(address),
	})
}

// GetPendingGames retrieves all joined, unsettled games from Redis
func (r *redisRepository) GetPendingGames(ctx context.Context, input *GetPendingGamesInput) (*GetPendingGamesOutput, error) {
	if input == nil {
		return nil, errors.New("input cannot be nil")
	}

	if err := store.Watch(ctx, pendingGamesKey); err != nil {
		return nil, err
	}

	addresses, err := store.Reader(ctx, r.client).SMembers(ctx, pendingGamesKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get pending games: %w", err)
	}

	games := make([]*models.Game, 0, len(addresses))
	for _, address := range addresses {
		game, err := r.GetGame(ctx, &GetGameInput{
			Address: address,
		})
		if err != nil {
			// The set can briefly outlive a deleted game
			if errors.Is(err, ErrGameNotFound) {
				continue
			}
			return nil, err
		}
		games = append(games, game)
	}

	// Oldest first so the relayer settles in join order
	sort.Slice(games, func(i, j int) bool {
		return games[i].UpdatedAt.Before(games[j].UpdatedAt)
	})

	return &GetPendingGamesOutput{
		Games: games,
	}, nil
}

func gameKey(address string) string {
	return fmt.Sprintf("%s%s", gameKeyPrefix, address)
}

func channelKey(channelID string) string {
	return fmt.Sprintf("%s%s", channelKeyPrefix, channelID)
}
