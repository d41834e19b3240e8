package ledger

//go:generate mockgen -package=mocks -destination=mocks/mock_repository.go github.com/KirkDiggler/coinflip/internal/repositories/ledger Repository

import (
	"context"

	"github.com/KirkDiggler/coinflip/internal/models"
)

// Repository defines the escrow ledger: named accounts and atomic transfers between them
type Repository interface {
	// OpenAccount creates an empty account debitable only by authority
	OpenAccount(ctx context.Context, input *OpenAccountInput) (*models.Account, error)

	// GetAccount retrieves an account by address
	GetAccount(ctx context.Context, input *GetAccountInput) (*models.Account, error)

	// GetBalance returns the balance of an address; unknown addresses hold 0
	GetBalance(ctx context.Context, input *GetBalanceInput) (int64, error)

	// Deposit credits an address from outside the ledger
	Deposit(ctx context.Context, input *DepositInput) (*models.Account, error)

	// Transfer moves funds between accounts when the signer is the source's authority
	Transfer(ctx context.Context, input *TransferInput) (*models.Transfer, error)

	// GetTransfers retrieves the transfers into or out of an address, oldest first
	GetTransfers(ctx context.Context, input *GetTransfersInput) (*GetTransfersOutput, error)
}
