package oracle

import "errors"

var (
	// ErrOracleUnavailable is returned when the oracle cannot accept a request
	ErrOracleUnavailable = errors.New("oracle unavailable")

	// ErrAccountNotFound is returned when the oracle account does not exist
	ErrAccountNotFound = errors.New("oracle account not found")

	// ErrUnauthorizedRequest is returned when the requester is not the account authority
	ErrUnauthorizedRequest = errors.New("requester is not the oracle account authority")

	// ErrInvalidProof is returned when a published value fails verification
	ErrInvalidProof = errors.New("invalid randomness proof")
)
