package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/KirkDiggler/coinflip/internal/common/clock"
	"github.com/KirkDiggler/coinflip/internal/common/uuid"
	"github.com/KirkDiggler/coinflip/internal/models"
	"github.com/KirkDiggler/coinflip/internal/repositories/store"
	"github.com/redis/go-redis/v9"
)

const (
	// Key prefixes for Redis
	accountKeyPrefix          = "account:"
	transferKeyPrefix         = "transfer:"
	accountTransfersKeyPrefix = "account_transfers:"
)

var (
	// ErrAccountNotFound is returned when an account is not found
	ErrAccountNotFound = errors.New("account not found")

	// ErrAccountAlreadyExists is returned when opening an account twice
	ErrAccountAlreadyExists = errors.New("account already exists")

	// ErrInsufficientFunds is returned when the source balance is below the amount
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrInvalidAuthority is returned when the signer is not the source account's authority
	ErrInvalidAuthority = errors.New("signer is not the account authority")

	// ErrInvalidAmount is returned for non-positive amounts
	ErrInvalidAmount = errors.New("amount must be positive")

	// ErrSelfTransfer is returned when source and destination are the same account
	ErrSelfTransfer = errors.New("cannot transfer to the same account")

	// ErrBalanceOverflow is returned when a credit would exceed the largest balance
	ErrBalanceOverflow = errors.New("balance would overflow")
)

// Config holds configuration for the Redis ledger repository
type Config struct {
	// Redis client
	RedisClient *redis.Client

	// Clock and UUIDGenerator default to the system clock and random v4 ids
	Clock         clock.Clock
	UUIDGenerator uuid.UUID
}

// redisRepository implements the Repository interface using Redis
type redisRepository struct {
	client        *redis.Client
	clock         clock.Clock
	uuidGenerator uuid.UUID
}

// NewRedis creates a new Redis-backed ledger repository
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

	repo := &redisRepository{
		client:        cfg.RedisClient,
		clock:         cfg.Clock,
		uuidGenerator: cfg.UUIDGenerator,
	}
	if repo.clock == nil {
		repo.clock = clock.New()
	}
	if repo.uuidGenerator == nil {
		repo.uuidGenerator = uuid.New()
	}

	return repo, nil
}

// OpenAccount creates an empty account
func (r *redisRepository) OpenAccount(ctx context.Context, input *OpenAccountInput) (*models.Account, error) {
	if input == nil || input.Address == "" || input.Authority == "" {
		return nil, errors.New("input, address and authority cannot be empty")
	}

	_, err := r.GetAccount(ctx, &GetAccountInput{
		Address: input.Address,
	})
	if err == nil {
		return nil, ErrAccountAlreadyExists
	}
	if !errors.Is(err, ErrAccountNotFound) {
		return nil, err
	}

	now := r.clock.Now()
	account := &models.Account{
		Address:   input.Address,
		Authority: input.Authority,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := r.saveAccount(ctx, account); err != nil {
		return nil, err
	}

	return account, nil
}

// GetAccount retrieves an account by address
func (r *redisRepository) GetAccount(ctx context.Context, input *GetAccountInput) (*models.Account, error) {
	if input == nil || input.Address == "" {
		return nil, errors.New("input and address cannot be empty")
	}

	accountJSON, err := store.Get(ctx, r.client, accountKey(input.Address))
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	var account models.Account
	if err := json.Unmarshal(accountJSON, &account); err != nil {
		return nil, fmt.Errorf("failed to unmarshal account: %w", err)
	}

	return &account, nil
}

// GetBalance returns the balance held at an address
func (r *redisRepository) GetBalance(ctx context.Context, input *GetBalanceInput) (int64, error) {
	if input == nil || input.Address == "" {
		return 0, errors.New("input and address cannot be empty")
	}

	account, err := r.GetAccount(ctx, &GetAccountInput{
		Address: input.Address,
	})
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return 0, nil
		}
		return 0, err
	}

	return account.Balance, nil
}

// Deposit credits an address, opening a self-owned account if needed
func (r *redisRepository) Deposit(ctx context.Context, input *DepositInput) (*models.Account, error) {
	if input == nil || input.Address == "" {
		return nil, errors.New("input and address cannot be empty")
	}

	if input.Amount <= 0 {
		return nil, ErrInvalidAmount
	}

	account, err := r.getOrOpen(ctx, input.Address)
	if err != nil {
		return nil, err
	}

	if account.Balance > math.MaxInt64-input.Amount {
		return nil, ErrBalanceOverflow
	}

	account.Balance += input.Amount
	account.UpdatedAt = r.clock.Now()

	if err := r.saveAccount(ctx, account); err != nil {
		return nil, err
	}

	return account, nil
}

// Transfer moves funds from one account to another. The source must exist,
// be owned by the signer and hold at least the amount. An account whose
// authority is another address needs a derived signer. A missing
// destination is opened with itself as authority.
func (r *redisRepository) Transfer(ctx context.Context, input *TransferInput) (*models.Transfer, error) {
	if input == nil || input.From == "" || input.To == "" {
		return nil, errors.New("input, source and destination cannot be empty")
	}

	if input.Amount <= 0 {
		return nil, ErrInvalidAmount
	}

	if input.From == input.To {
		return nil, ErrSelfTransfer
	}

	from, err := r.GetAccount(ctx, &GetAccountInput{
		Address: input.From,
	})
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			// Nothing was ever deposited
			return nil, ErrInsufficientFunds
		}
		return nil, err
	}

	if input.Signer.Address() != from.Authority {
		return nil, ErrInvalidAuthority
	}

	// Accounts held for another address move only under a derived signature
	if from.Authority != from.Address && !input.Signer.IsDerived() {
		return nil, ErrInvalidAuthority
	}

	if from.Balance < input.Amount {
		return nil, ErrInsufficientFunds
	}

	to, err := r.getOrOpen(ctx, input.To)
	if err != nil {
		return nil, err
	}

	if to.Balance > math.MaxInt64-input.Amount {
		return nil, ErrBalanceOverflow
	}

	now := r.clock.Now()
	from.Balance -= input.Amount
	from.UpdatedAt = now
	to.Balance += input.Amount
	to.UpdatedAt = now

	if err := r.saveAccount(ctx, from); err != nil {
		return nil, err
	}
	if err := r.saveAccount(ctx, to); err != nil {
		return nil, err
	}

	transfer := &models.Transfer{
		ID:        r.uuidGenerator.NewUUID(),
		From:      input.From,
		To:        input.To,
		Amount:    input.Amount,
		Authority: input.Signer.Address(),
		Timestamp: now,
	}

	if err := r.recordTransfer(ctx, transfer); err != nil {
		return nil, err
	}

	return transfer, nil
}

// GetTransfers retrieves all transfers touching an address
func (r *redisRepository) GetTransfers(ctx context.Context, input *GetTransfersInput) (*GetTransfersOutput, error) {
	if input == nil || input.Address == "" {
		return nil, errors.New("input and address cannot be empty")
	}

	// Get all transfer IDs for the account
	transferIDs, err := r.client.ZRange(ctx, accountTransfersKey(input.Address), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get transfer IDs for account: %w", err)
	}

	// If there are no transfers, return an empty slice
	if len(transferIDs) == 0 {
		return &GetTransfersOutput{
			Transfers: []*models.Transfer{},
		}, nil
	}

	// Get all transfer records using a pipeline
	pipe := r.client.Pipeline()
	transferCommands := make(map[string]*redis.StringCmd, len(transferIDs))
	for _, transferID := range transferIDs {
		transferCommands[transferID] = pipe.Get(ctx, transferKey(transferID))
	}

	// Missing records surface as redis.Nil on their command
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("failed to get transfers: %w", err)
	}

	transfers := make([]*models.Transfer, 0, len(transferIDs))
	for _, transferID := range transferIDs {
		cmd := transferCommands[transferID]
		transferJSON, err := cmd.Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}
			return nil, fmt.Errorf("failed to get transfer %s: %w", transferID, err)
		}

		var transfer models.Transfer
		if err := json.Unmarshal(transferJSON, &transfer); err != nil {
			return nil, fmt.Errorf("failed to unmarshal transfer %s: %w", transferID, err)
		}

		transfers = append(transfers, &transfer)
	}

	sort.SliceStable(transfers, func(i, j int) bool {
		return transfers[i].Timestamp.Before(transfers[j].Timestamp)
	})

	return &GetTransfersOutput{
		Transfers: transfers,
	}, nil
}

func (r *redisRepository) getOrOpen(ctx context.Context, address string) (*models.Account, error) {
	account, err := r.GetAccount(ctx, &GetAccountInput{
		Address: address,
	})
	if err == nil {
		return account, nil
	}
	if !errors.Is(err, ErrAccountNotFound) {
		return nil, err
	}

	now := r.clock.Now()
	return &models.Account{
		Address:   address,
		Authority: address,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (r *redisRepository) saveAccount(ctx context.Context, account *models.Account) error {
	accountJSON, err := json.Marshal(account)
	if err != nil {
		return fmt.Errorf("failed to marshal account: %w", err)
	}

	if err := store.Put(ctx, r.client, accountKey(account.Address), accountJSON); err != nil {
		return fmt.Errorf("failed to save account: %w", err)
	}

	return nil
}

func (r *redisRepository) recordTransfer(ctx context.Context, transfer *models.Transfer) error {
	transferJSON, err := json.Marshal(transfer)
	if err != nil {
		return fmt.Errorf("failed to marshal transfer: %w", err)
	}

	score := float64(transfer.Timestamp.UnixNano())
	return store.Exec(ctx, r.client, func(pipe redis.Pipeliner) {
		pipe.Set(ctx, transferKey(transfer.ID), transferJSON, 0)
		pipe.ZAdd(ctx, accountTransfersKey(transfer.From), redis.Z{
			Score:  score,
			Member: transfer.ID,
		})
		pipe.ZAdd(ctx, accountTransfersKey(transfer.To), redis.Z{
			Score:  score,
			Member: transfer.ID,
		})
	})
}

func accountKey(address string) string {
	return fmt.Sprintf("%s%s", accountKeyPrefix, address)
}

func transferKey(id string) string {
	return fmt.Sprintf("%s%s", transferKeyPrefix, id)
}

func accountTransfersKey(address string) string {
	return fmt.Sprintf("%s%s", accountTransfersKeyPrefix, address)
}
