package models

import "time"

const (
	// DefaultMaxResult is used when a creator asks for a max result of 0
	DefaultMaxResult uint64 = 1337

	// MaxResultCap is the largest max result accepted at creation
	MaxResultCap uint64 = 1337
)

// ClientState tracks the last random value consumed from one oracle binding
type ClientState struct {
	// Address is derived from the oracle account address
	Address string

	// Bump is the nonce of Address
	Bump uint8

	// MaxResult bounds the numeric outcome to [1, MaxResult]
	MaxResult uint64

	// ResultBuffer is the last consumed raw random value; zero means none yet
	ResultBuffer Buffer

	// Result is the last numeric outcome; 0 while a fresh draw is awaited
	Result uint64

	// Timestamp is when Result last changed
	Timestamp time.Time

	// Oracle is the bound oracle account; immutable after creation
	Oracle string
}
