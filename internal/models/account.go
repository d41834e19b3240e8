package models

import (
	"time"
)

// Account is a balance holding entity on the escrow ledger
type Account struct {
	// Address identifies the account
	Address string

	// Authority is the only signer allowed to debit the account
	Authority string

	// Balance is the amount held
	Balance int64

	// CreatedAt is when the account was opened
	CreatedAt time.Time

	// UpdatedAt is when the balance last moved
	UpdatedAt time.Time
}
