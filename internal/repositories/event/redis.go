package event

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	"github.com/KirkDiggler/coinflip/internal/models"
	"github.com/KirkDiggler/coinflip/internal/repositories/store"
	"github.com/redis/go-redis/v9"
)

const (
	// eventsStreamKey is the Redis stream holding every observation
	eventsStreamKey = "coinflip:events"

	eventField = "event"
)

// Config holds configuration for the Redis event repository
type Config struct {
	// Redis client
	RedisClient *redis.Client

	// MaxLen approximately caps the stream length; 0 keeps everything
	MaxLen int64
}

// redisRepository implements the Repository interface using a Redis stream
type redisRepository struct {
	client *redis.Client
	maxLen int64
}

// NewRedis creates a new Redis-backed event repository
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
		maxLen: cfg.MaxLen,
	}, nil
}

// AppendEvent adds an event to the stream. Inside a transaction the append
// is applied with the rest of the transaction's writes.
func (r *redisRepository) AppendEvent(ctx context.Context, input *AppendEventInput) error {
	if input == nil || input.Event == nil {
		return errors.New("input and event cannot be nil")
	}

	if input.Event.Type == "" {
		return errors.New("event type cannot be empty")
	}

	eventJSON, err := json.Marshal(input.Event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	args := &redis.XAddArgs{
		Stream: eventsStreamKey,
		Values: map[string]interface{}{eventField: string(eventJSON)},
	}
	if r.maxLen > 0 {
		args.MaxLen = r.maxLen
		args.Approx = true
	}

	if err := store.Exec(ctx, r.client, func(pipe redis.Pipeliner) {
		pipe.XAdd(ctx, args)
	}); err != nil {
		return fmt.Errorf("failed to append event: %w", err)
	}

	return nil
}

// ListEvents reads events after the cursor
func (r *redisRepository) ListEvents(ctx context.Context, input *ListEventsInput) (*ListEventsOutput, error) {
	if input == nil {
		return nil, errors.New("input cannot be nil")
	}

	// The range is inclusive, so the cursor entry itself is read and skipped
	start, count := "-", input.Count
	if input.After != "" {
		start = input.After
		if count > 0 {
			count++
		}
	}

	var (
		messages []redis.XMessage
		err      error
	)
	if count > 0 {
		messages, err = r.client.XRangeN(ctx, eventsStreamKey, start, "+", count).Result()
	} else {
		messages, err = r.client.XRange(ctx, eventsStreamKey, start, "+").Result()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read events: %w", err)
	}

	output := &ListEventsOutput{
		Events: make([]*models.Event, 0, len(messages)),
		Cursor: input.After,
	}

	for _, message := range messages {
		if message.ID == input.After {
			continue
		}
		output.Cursor = message.ID

		raw, ok := message.Values[eventField].(string)
		if !ok {
			return nil, fmt.Errorf("event %s has no payload", message.ID)
		}

		var event models.Event
		if err := json.Unmarshal([]byte(raw), &event); err != nil {
			return nil, fmt.Errorf("failed to unmarshal event %s: %w", message.ID, err)
		}

		if len(input.Types) > 0 && !slices.Contains(input.Types, event.Type) {
			continue
		}
		if input.Game != "" && event.Game != input.Game {
			continue
		}

		output.Events = append(output.Events, &event)
	}

	return output, nil
}
