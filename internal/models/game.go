package models

import (
	"math"
	"time"
)

// Choice is the parity side a game owner bets on
type Choice uint8

const (
	// ChoiceEven wins when the drawn number is even
	ChoiceEven Choice = 0

	// ChoiceOdd wins when the drawn number is odd
	ChoiceOdd Choice = 1
)

// IsValid reports whether the choice is a parity bit
func (c Choice) IsValid() bool {
	return c == ChoiceEven || c == ChoiceOdd
}

// String returns the human name of the choice
func (c Choice) String() string {
	switch c {
	case ChoiceEven:
		return "even"
	case ChoiceOdd:
		return "odd"
	default:
		return "invalid"
	}
}

// GameStatus is derived from which optional fields of a game are set
type GameStatus string

const (
	// GameStatusOpen indicates the game is waiting for a joinee
	GameStatusOpen GameStatus = "open"

	// GameStatusAwaitingRandomness indicates both stakes are escrowed and the draw is pending
	GameStatusAwaitingRandomness GameStatus = "awaiting_randomness"

	// GameStatusSettled indicates a winner is recorded but the escrow has not been paid
	GameStatusSettled GameStatus = "settled"

	// GameStatusPaid indicates the escrow has been released to the winner
	GameStatusPaid GameStatus = "paid"
)

// Game is the per-match record of participants, stake and outcome
type Game struct {
	// Address is the derived address of the game record
	Address string

	// Bump is the nonce that made Address fall off the curve
	Bump uint8

	// GameID is the caller supplied seed identifying the match
	GameID string

	// Owner is the identity of the creator
	Owner string

	// OwnerChoice is the parity the owner bet on
	OwnerChoice Choice

	// Joinee is the second participant, empty until join
	Joinee string

	// Winner is the settled winner, empty until settlement
	Winner string

	// StakeAmount is what each side contributes to escrow
	StakeAmount int64

	// Result is the parity bit drawn, nil until settlement
	Result *uint8

	// Escrow is the derived address of the escrow account
	Escrow string

	// EscrowBump is the nonce of the escrow address
	EscrowBump uint8

	// ClientState is the address of the client state bound to the game's oracle
	ClientState string

	// PayoutDisbursed is set in the same transaction that releases the escrow
	PayoutDisbursed bool

	// ChannelID is the chat channel the game was created from, if any
	ChannelID string

	// CreatedAt is when the game was created
	CreatedAt time.Time

	// UpdatedAt is when the game was last written
	UpdatedAt time.Time
}

// Status returns the lifecycle stage of the game
func (g *Game) Status() GameStatus {
	switch {
	case g.PayoutDisbursed:
		return GameStatusPaid
	case g.Winner != "":
		return GameStatusSettled
	case g.Joinee != "":
		return GameStatusAwaitingRandomness
	default:
		return GameStatusOpen
	}
}

// IsSettled reports whether an outcome has been recorded
func (g *Game) IsSettled() bool {
	return g.Winner != "" && g.Result != nil
}

// IsPending reports whether the game is joined and waiting for a draw
func (g *Game) IsPending() bool {
	return g.Joinee != "" && g.Result == nil
}

// MaxStake is the largest stake whose pot still fits in an int64
const MaxStake = math.MaxInt64 / 2

// Pot is the escrow balance expected once both stakes are present
func (g *Game) Pot() int64 {
	return 2 * g.StakeAmount
}
