package store

//go:generate mockgen -package=mocks -destination=mocks/mock_transactor.go github.com/KirkDiggler/coinflip/internal/repositories/store Transactor

import "context"

// Transactor runs units of work as a single serializable transaction
type Transactor interface {
	// Update runs fn inside a transaction. Every read made through the
	// context passed to fn is watched and every write is staged; the writes
	// are applied together only if none of the watched keys changed.
	// Calling Update with a context that already carries a transaction joins it.
	Update(ctx context.Context, fn func(ctx context.Context) error) error
}
