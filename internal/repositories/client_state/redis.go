package client_state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/KirkDiggler/coinflip/internal/models"
	"github.com/KirkDiggler/coinflip/internal/repositories/store"
	"github.com/redis/go-redis/v9"
)

const (
	// Key prefixes for Redis
	clientStateKeyPrefix = "client_state:"
	vrfKeyPrefix         = "vrf_key:"
)

var (
	// ErrClientStateNotFound is returned when a client state is not found
	ErrClientStateNotFound = errors.New("client state not found")

	// ErrClientStateAlreadyExists is returned when creating a client state whose address is taken
	ErrClientStateAlreadyExists = errors.New("client state already exists")

	// ErrVRFKeyNotFound is returned when a VRF key is not found
	ErrVRFKeyNotFound = errors.New("vrf key not found")

	// ErrVRFKeyAlreadyExists is returned when a payer already provisioned an oracle
	ErrVRFKeyAlreadyExists = errors.New("vrf key already exists")
)

// Config holds configuration for the Redis client state repository
type Config struct {
	// Redis client
	RedisClient *redis.Client
}

// redisRepository implements the Repository interface using Redis
type redisRepository struct {
	client *redis.Client
}

// NewRedis creates a new Redis-backed client state repository
func NewRedis(cfg *Config) (*redisRepository, error) {
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

// CreateClientState persists a new client state to Redis
func (r *redisRepository) CreateClientState(ctx context.Context, input *CreateClientStateInput) error {
	if input == nil || input.ClientState == nil {
		return errors.New("input and client state cannot be nil")
	}

	if input.ClientState.Address == "" {
		return errors.New("client state address cannot be empty")
	}

	exists, err := store.Exists(ctx, r.client, clientStateKey(input.ClientState.Address))
	if err != nil {
		return fmt.Errorf("failed to check client state: %w", err)
	}
	if exists {
		return ErrClientStateAlreadyExists
	}

	return r.SaveClientState(ctx, &SaveClientStateInput{
		ClientState: input.ClientState,
	})
}

// SaveClientState persists a client state to Redis
func (r *redisRepository) SaveClientState(ctx context.Context, input *SaveClientStateInput) error {
	if input == nil || input.ClientState == nil {
		return errors.New("input and client state cannot be nil")
	}

	if input.ClientState.Address == "" {
		return errors.New("client state address cannot be empty")
	}

	stateJSON, err := json.Marshal(input.ClientState)
	if err != nil {
		return fmt.Errorf("failed to marshal client state: %w", err)
	}

	if err := store.Put(ctx, r.client, clientStateKey(input.ClientState.Address), stateJSON); err != nil {
		return fmt.Errorf("failed to save client state: %w", err)
	}

	return nil
}

// GetClientState retrieves a client state by address from Redis
func (r *redisRepository) GetClientState(ctx context.Context, input *GetClientStateInput) (*models.ClientState, error) {
	if input == nil || input.Address == "" {
		return nil, errors.New("input and client state address cannot be empty")
	}

	stateJSON, err := store.Get(ctx, r.client, clientStateKey(input.Address))
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrClientStateNotFound
		}
		return nil, fmt.Errorf("failed to get client state: %w", err)
	}

	var state models.ClientState
	if err := json.Unmarshal(stateJSON, &state); err != nil {
		return nil, fmt.Errorf("failed to unmarshal client state: %w", err)
	}

	return &state, nil
}

// SaveVRFKey persists a VRF key to Redis
func (r *redisRepository) SaveVRFKey(ctx context.Context, input *SaveVRFKeyInput) error {
	if input == nil || input.VRFKey == nil {
		return errors.New("input and vrf key cannot be nil")
	}

	if input.VRFKey.Address == "" {
		return errors.New("vrf key address cannot be empty")
	}

	key := vrfKey(input.VRFKey.Address)
	exists, err := store.Exists(ctx, r.client, key)
	if err != nil {
		return fmt.Errorf("failed to check vrf key: %w", err)
	}
	if exists {
		return ErrVRFKeyAlreadyExists
	}

	keyJSON, err := json.Marshal(input.VRFKey)
	if err != nil {
		return fmt.Errorf("failed to marshal vrf key: %w", err)
	}

	if err := store.Put(ctx, r.client, key, keyJSON); err != nil {
		return fmt.Errorf("failed to save vrf key: %w", err)
	}

	return nil
}

// GetVRFKey retrieves a VRF key by address from Redis
func (r *redisRepository) GetVRFKey(ctx context.Context, input *GetVRFKeyInput) (*models.VRFKey, error) {
	if input == nil || input.Address == "" {
		return nil, errors.New("input and vrf key address cannot be empty")
	}

	keyJSON, err := store.Get(ctx, r.client, vrfKey(input.Address))
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrVRFKeyNotFound
		}
		return nil, fmt.Errorf("failed to get vrf key: %w", err)
	}

	var vrfKey models.VRFKey
	if err := json.Unmarshal(keyJSON, &vrfKey); err != nil {
		return nil, fmt.Errorf("failed to unmarshal vrf key: %w", err)
	}

	return &vrfKey, nil
}

func clientStateKey(address string) string {
	return fmt.Sprintf("%s%s", clientStateKeyPrefix, address)
}

func vrfKey(address string) string {
	return fmt.Sprintf("%s%s", vrfKeyPrefix, address)
}
