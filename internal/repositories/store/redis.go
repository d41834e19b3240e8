package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/redis/go-redis/v9"
)

const defaultMaxRetries = 10

type txnKey struct{}

// Txn is the state of one attempt of an Update
type Txn struct {
	tx      *redis.Tx
	writes  []func(pipe redis.Pipeliner)
	staged  map[string][]byte
	watched map[string]bool
}

// redisTransactor implements Transactor with WATCH/MULTI/EXEC
type redisTransactor struct {
	client     *redis.Client
	maxRetries uint64
}

// NewRedis creates a new Redis-backed transactor
func NewRedis(cfg *Config) (*redisTransactor, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}

	if cfg.RedisClient == nil {
		return nil, errors.New("redis client cannot be nil")
	}

	maxRetries := cfg.MaxRetries
	if maxRetries == 0 {
		maxRetries = defaultMaxRetries
	}

	return &redisTransactor{
		client:     cfg.RedisClient,
		maxRetries: maxRetries,
	}, nil
}

// Update runs fn in an optimistic transaction, retrying on conflicts
func (r *redisTransactor) Update(ctx context.Context, fn func(ctx context.Context) error) error {
	if FromContext(ctx) != nil {
		return fn(ctx)
	}

	attempt := func() error {
		err := r.client.Watch(ctx, func(tx *redis.Tx) error {
			txn := &Txn{
				tx:      tx,
				staged:  make(map[string][]byte),
				watched: make(map[string]bool),
			}

			if err := fn(context.WithValue(ctx, txnKey{}, txn)); err != nil {
				return err
			}

			if len(txn.writes) == 0 {
				return nil
			}

			_, err := tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				for _, write := range txn.writes {
					write(pipe)
				}
				return nil
			})
			return err
		})

		if errors.Is(err, redis.TxFailedErr) {
			return err
		}
		if err != nil {
			return backoff.Permanent(err)
		}
		return nil
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 5 * time.Millisecond
	policy.MaxInterval = 250 * time.Millisecond

	err := backoff.Retry(attempt, backoff.WithContext(backoff.WithMaxRetries(policy, r.maxRetries), ctx))
	if errors.Is(err, redis.TxFailedErr) {
		return ErrConflict
	}
	return err
}

// FromContext returns the transaction carried by ctx, if any
func FromContext(ctx context.Context) *Txn {
	txn, _ := ctx.Value(txnKey{}).(*Txn)
	return txn
}

// Get reads key, watching it when ctx carries a transaction. Values staged
// earlier in the same transaction are returned as written. A missing key
// returns redis.Nil.
func Get(ctx context.Context, client redis.Cmdable, key string) ([]byte, error) {
	txn := FromContext(ctx)
	if txn == nil {
		return client.Get(ctx, key).Bytes()
	}

	if value, ok := txn.staged[key]; ok {
		return value, nil
	}

	if err := txn.watch(ctx, key); err != nil {
		return nil, err
	}
	return txn.tx.Get(ctx, key).Bytes()
}

// Exists reports whether key is present, watching it inside a transaction
func Exists(ctx context.Context, client redis.Cmdable, key string) (bool, error) {
	_, err := Get(ctx, client, key)
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Put writes value under key, staging it when ctx carries a transaction
func Put(ctx context.Context, client redis.Cmdable, key string, value []byte) error {
	if txn := FromContext(ctx); txn != nil {
		txn.staged[key] = value
	}
	return Exec(ctx, client, func(pipe redis.Pipeliner) {
		pipe.Set(ctx, key, value, 0)
	})
}

// Exec queues write on the transaction, or runs it at once in its own
// MULTI/EXEC when ctx carries none
func Exec(ctx context.Context, client redis.Cmdable, write func(pipe redis.Pipeliner)) error {
	if txn := FromContext(ctx); txn != nil {
		txn.writes = append(txn.writes, write)
		return nil
	}

	_, err := client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		write(pipe)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to execute write: %w", err)
	}
	return nil
}

// Watch adds keys to the watched set of the transaction carried by ctx
func Watch(ctx context.Context, keys ...string) error {
	txn := FromContext(ctx)
	if txn == nil {
		return nil
	}
	for _, key := range keys {
		if err := txn.watch(ctx, key); err != nil {
			return err
		}
	}
	return nil
}

func (t *Txn) watch(ctx context.Context, key string) error {
	if t.watched[key] {
		return nil
	}
	if err := t.tx.Watch(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to watch %s: %w", key, err)
	}
	t.watched[key] = true
	return nil
}

// Reader returns the connection reads should go through for ctx. Keys read
// with it outside Get must be passed to Watch first.
func Reader(ctx context.Context, client redis.Cmdable) redis.Cmdable {
	if txn := FromContext(ctx); txn != nil {
		return txn.tx
	}
	return client
}
