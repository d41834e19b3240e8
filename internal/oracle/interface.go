// Package oracle defines the randomness source the engine consumes: an
// account that, once requested, eventually publishes a verified 32 byte
// buffer.
package oracle

//go:generate mockgen -package=mocks -destination=mocks/mock_oracle.go github.com/KirkDiggler/coinflip/internal/oracle Oracle,Provisioner

import (
	"context"

	"github.com/KirkDiggler/coinflip/internal/models"
)

// Oracle is an asynchronous verifiable randomness service
type Oracle interface {
	// Authority returns who may request randomness on the account
	Authority(ctx context.Context, account string) (string, error)

	// Request asks for a fresh value. It returns once the request is
	// recorded; fulfilment happens later.
	Request(ctx context.Context, input *RequestInput) error

	// CurrentBuffer returns the latest verified value; all zero while a
	// request is outstanding or before the first one
	CurrentBuffer(ctx context.Context, account string) (models.Buffer, error)
}

// Provisioner creates oracle accounts
type Provisioner interface {
	// CreateAccount creates a new oracle account and returns its address
	CreateAccount(ctx context.Context, input *CreateAccountInput) (string, error)

	// SetAuthority hands request rights on an account to authority
	SetAuthority(ctx context.Context, input *SetAuthorityInput) error
}
