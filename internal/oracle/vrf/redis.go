package vrf

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/KirkDiggler/coinflip/internal/common/clock"
	"github.com/KirkDiggler/coinflip/internal/models"
	"github.com/KirkDiggler/coinflip/internal/oracle"
	"github.com/KirkDiggler/coinflip/internal/repositories/store"
	"github.com/redis/go-redis/v9"
)

const (
	// Key prefixes for Redis
	accountKeyPrefix = "vrf:account:"
	requestQueueKey  = "vrf:requests"

	defaultPollInterval = time.Second
)

var (
	_ oracle.Oracle      = (*Oracle)(nil)
	_ oracle.Provisioner = (*Oracle)(nil)
)

// Oracle is a Redis-backed local VRF. Requests and authority changes go
// through the caller's transaction when the context carries one.
type Oracle struct {
	client       *redis.Client
	transactor   store.Transactor
	clock        clock.Clock
	pollInterval time.Duration
}

// NewRedis creates a new local oracle
func NewRedis(cfg *Config) (*Oracle, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}

	if cfg.RedisClient == nil {
		return nil, errors.New("redis client cannot be nil")
	}

	if cfg.Transactor == nil {
		return nil, errors.New("transactor cannot be nil")
	}

	// Test connection
	if err := cfg.RedisClient.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	clk := cfg.Clock
	if clk == nil {
		clk = clock.New()
	}

	pollInterval := cfg.PollInterval
	if pollInterval <= 0 {
		pollInterval = defaultPollInterval
	}

	return &Oracle{
		client:       cfg.RedisClient,
		transactor:   cfg.Transactor,
		clock:        clk,
		pollInterval: pollInterval,
	}, nil
}

// CreateAccount generates a key pair and stores a new account owned by the payer
func (o *Oracle) CreateAccount(ctx context.Context, input *oracle.CreateAccountInput) (string, error) {
	if input == nil || input.Payer == "" {
		return "", errors.New("input and payer cannot be empty")
	}

	keys := newKeyPair()
	address, err := keys.address()
	if err != nil {
		return "", fmt.Errorf("failed to encode account address: %w", err)
	}

	secret, err := keys.secretBytes()
	if err != nil {
		return "", fmt.Errorf("failed to encode account secret: %w", err)
	}

	acc := &account{
		Address:   address,
		Secret:    secret,
		Authority: input.Payer,
		CreatedAt: o.clock.Now(),
	}

	if err := o.saveAccount(ctx, acc); err != nil {
		return "", err
	}

	return address, nil
}

// SetAuthority hands request rights on an account to a new authority
func (o *Oracle) SetAuthority(ctx context.Context, input *oracle.SetAuthorityInput) error {
	if input == nil || input.Account == "" || input.Authority == "" {
		return errors.New("input, account and authority cannot be empty")
	}

	acc, err := o.getAccount(ctx, input.Account)
	if err != nil {
		return err
	}

	if acc.Authority != input.Current {
		return oracle.ErrUnauthorizedRequest
	}

	acc.Authority = input.Authority
	return o.saveAccount(ctx, acc)
}

// Authority returns the account's current authority
func (o *Oracle) Authority(ctx context.Context, address string) (string, error) {
	acc, err := o.getAccount(ctx, address)
	if err != nil {
		return "", err
	}
	return acc.Authority, nil
}

// Request opens a new round on the account and queues it for fulfilment.
// The previous buffer is cleared so consumers see the zero sentinel until
// the new value is published.
func (o *Oracle) Request(ctx context.Context, input *oracle.RequestInput) error {
	if input == nil || input.Account == "" {
		return errors.New("input and account cannot be empty")
	}

	acc, err := o.getAccount(ctx, input.Account)
	if err != nil {
		return err
	}

	if acc.Authority != input.Authority {
		return oracle.ErrUnauthorizedRequest
	}

	acc.Counter++
	acc.Pending = true
	acc.Alpha = alphaFor(acc.Address, acc.Counter, input.Params)
	acc.Buffer = models.Buffer{}
	acc.Proof = nil

	if err := o.saveAccount(ctx, acc); err != nil {
		return err
	}

	if err := store.Exec(ctx, o.client, func(pipe redis.Pipeliner) {
		pipe.RPush(ctx, requestQueueKey, acc.Address)
	}); err != nil {
		return fmt.Errorf("%w: %v", oracle.ErrOracleUnavailable, err)
	}

	return nil
}

// CurrentBuffer returns the last verified value of the account
func (o *Oracle) CurrentBuffer(ctx context.Context, address string) (models.Buffer, error) {
	acc, err := o.getAccount(ctx, address)
	if err != nil {
		return models.Buffer{}, err
	}
	return acc.Buffer, nil
}

// Verify re-checks the published proof of an account and returns its buffer
func (o *Oracle) Verify(ctx context.Context, address string) (models.Buffer, error) {
	acc, err := o.getAccount(ctx, address)
	if err != nil {
		return models.Buffer{}, err
	}

	if acc.Proof == nil {
		return models.Buffer{}, nil
	}

	buffer, err := verify(acc.Address, acc.Alpha, acc.Proof)
	if err != nil {
		return models.Buffer{}, fmt.Errorf("%w: %v", oracle.ErrInvalidProof, err)
	}
	if buffer != acc.Buffer {
		return models.Buffer{}, oracle.ErrInvalidProof
	}

	return buffer, nil
}

// FulfillNext pops queued requests until one publishes a value. Requests
// already served are dropped. It returns nil when the queue is empty.
func (o *Oracle) FulfillNext(ctx context.Context) (*Fulfilment, error) {
	for {
		address, err := o.client.LPop(ctx, requestQueueKey).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return nil, nil
			}
			return nil, fmt.Errorf("failed to pop request: %w", err)
		}

		fulfilment, err := o.fulfil(ctx, address)
		if err != nil {
			return nil, err
		}
		if fulfilment != nil {
			return fulfilment, nil
		}
	}
}

// fulfil answers the pending round of one account. A nil fulfilment means
// the round was already served.
func (o *Oracle) fulfil(ctx context.Context, address string) (*Fulfilment, error) {
	var fulfilment *Fulfilment
	err := o.transactor.Update(ctx, func(ctx context.Context) error {
		fulfilment = nil

		acc, err := o.getAccount(ctx, address)
		if err != nil {
			return err
		}

		// A repeated request for the same round is already served
		if !acc.Pending {
			return nil
		}

		keys, err := keyPairFromSecret(acc.Secret)
		if err != nil {
			return err
		}

		proof, err := keys.evaluate(acc.Alpha)
		if err != nil {
			return err
		}

		buffer, err := verify(acc.Address, acc.Alpha, proof)
		if err != nil {
			return fmt.Errorf("%w: %v", oracle.ErrInvalidProof, err)
		}

		acc.Pending = false
		acc.Buffer = buffer
		acc.Proof = proof
		acc.FulfilledAt = o.clock.Now()

		if err := o.saveAccount(ctx, acc); err != nil {
			return err
		}

		fulfilment = &Fulfilment{
			Account: acc.Address,
			Counter: acc.Counter,
			Buffer:  buffer,
		}
		return nil
	})
	if err != nil {
		// Put the request back so it is not lost
		if pushErr := o.client.LPush(context.WithoutCancel(ctx), requestQueueKey, address).Err(); pushErr != nil {
			slog.ErrorContext(ctx, "failed to requeue randomness request", "account", address, "error", pushErr)
		}
		return nil, fmt.Errorf("failed to fulfil request for %s: %w", address, err)
	}

	return fulfilment, nil
}

// Run fulfils queued requests until ctx is done
func (o *Oracle) Run(ctx context.Context, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}

	ticker := time.NewTicker(o.pollInterval)
	defer ticker.Stop()

	for {
		for {
			fulfilment, err := o.FulfillNext(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				logger.ErrorContext(ctx, "randomness fulfilment failed", "error", err)
				break
			}
			if fulfilment == nil {
				break
			}
			logger.InfoContext(ctx, "randomness fulfilled",
				"account", fulfilment.Account,
				"round", fulfilment.Counter,
				"buffer", fulfilment.Buffer.String())
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (o *Oracle) getAccount(ctx context.Context, address string) (*account, error) {
	if address == "" {
		return nil, oracle.ErrAccountNotFound
	}

	raw, err := store.Get(ctx, o.client, accountKey(address))
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, oracle.ErrAccountNotFound
		}
		return nil, fmt.Errorf("%w: %v", oracle.ErrOracleUnavailable, err)
	}

	var acc account
	if err := json.Unmarshal(raw, &acc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal oracle account: %w", err)
	}

	return &acc, nil
}

func (o *Oracle) saveAccount(ctx context.Context, acc *account) error {
	raw, err := json.Marshal(acc)
	if err != nil {
		return fmt.Errorf("failed to marshal oracle account: %w", err)
	}

	if err := store.Put(ctx, o.client, accountKey(acc.Address), raw); err != nil {
		return fmt.Errorf("%w: %v", oracle.ErrOracleUnavailable, err)
	}

	return nil
}

func accountKey(address string) string {
	return fmt.Sprintf("%s%s", accountKeyPrefix, address)
}
