package ledger

import (
	"github.com/KirkDiggler/coinflip/internal/common/derive"
	"github.com/KirkDiggler/coinflip/internal/models"
)

// OpenAccountInput contains parameters for opening an account
type OpenAccountInput struct {
	Address   string
	Authority string
}

// GetAccountInput contains parameters for retrieving an account
type GetAccountInput struct {
	Address string
}

// GetBalanceInput contains parameters for retrieving a balance
type GetBalanceInput struct {
	Address string
}

// DepositInput contains parameters for crediting an account
type DepositInput struct {
	Address string
	Amount  int64
}

// TransferInput contains parameters for moving funds
type TransferInput struct {
	From   string
	To     string
	Amount int64

	// Signer must be the authority of From
	Signer derive.Signer
}

// GetTransfersInput contains parameters for retrieving an account's transfers
type GetTransfersInput struct {
	Address string
}

// GetTransfersOutput contains the transfers of an account
type GetTransfersOutput struct {
	Transfers []*models.Transfer
}
