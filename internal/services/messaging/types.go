package messaging

import (
	"github.com/KirkDiggler/coinflip/internal/models"
)

// MessageTone represents the tone of a message
type MessageTone string

const (
	// ToneNeutral is a neutral tone
	ToneNeutral MessageTone = "neutral"

	// ToneFunny is a humorous tone
	ToneFunny MessageTone = "funny"

	// ToneSarcastic is a sarcastic tone
	ToneSarcastic MessageTone = "sarcastic"

	// ToneCelebration is a celebratory tone
	ToneCelebration MessageTone = "celebration"
)

// ClaimResult is what a claim attempt came to
type ClaimResult string

const (
	ClaimResultPaid       ClaimResult = "paid"
	ClaimResultNotWinner  ClaimResult = "not_winner"
	ClaimResultNotSettled ClaimResult = "not_settled"
)

// Error types understood by GetErrorMessage
const (
	ErrorTypeInsufficientFunds = "insufficient_funds"
	ErrorTypeAlreadyJoined     = "already_joined"
	ErrorTypeOwnGame           = "own_game"
	ErrorTypeNoGame            = "no_game"
	ErrorTypeGameInProgress    = "game_in_progress"
	ErrorTypeAlreadyPaid       = "already_paid"
)

// GetGameStatusMessageInput is the input for GetGameStatusMessage
type GetGameStatusMessageInput struct {
	GameStatus models.GameStatus
	Tone       MessageTone
}

// GetGameStatusMessageOutput is the output for GetGameStatusMessage
type GetGameStatusMessageOutput struct {
	Message string
}

// GetJoinGameMessageInput contains parameters for getting a join game message
type GetJoinGameMessageInput struct {
	// PlayerName is the name of the player joining
	PlayerName string

	// OwnerName is the name of the player who opened the game
	OwnerName string

	// PreferredTone is the preferred tone for the message (optional)
	PreferredTone MessageTone
}

// GetJoinGameMessageOutput contains the result of getting a join game message
type GetJoinGameMessageOutput struct {
	Message string
	Tone    MessageTone
}

// GetOutcomeMessageInput contains the settled flip to announce
type GetOutcomeMessageInput struct {
	WinnerName string
	LoserName  string

	// Numeric is the drawn value in [1, MaxResult]
	Numeric   uint64
	MaxResult uint64

	// Amount is the formatted pot when it was paid with the outcome
	Amount string

	// Claimable adds a hint that the winner still has to claim
	Claimable bool

	PreferredTone MessageTone
}

// GetOutcomeMessageOutput contains the announcement
type GetOutcomeMessageOutput struct {
	Title   string
	Message string
	Tone    MessageTone
}

// GetClaimMessageInput contains parameters for getting a claim reply
type GetClaimMessageInput struct {
	PlayerName string
	Result     ClaimResult

	// Amount is the formatted payout
	Amount string
}

// GetClaimMessageOutput contains the claim reply
type GetClaimMessageOutput struct {
	Title   string
	Message string
}

// GetErrorMessageInput contains parameters for getting an error message
type GetErrorMessageInput struct {
	// ErrorType is one of the ErrorType constants
	ErrorType string

	PlayerName string

	// PreferredTone is the preferred tone for the message (optional)
	PreferredTone MessageTone
}

// GetErrorMessageOutput contains the result of getting an error message
type GetErrorMessageOutput struct {
	Title   string
	Message string
	Tone    MessageTone
}

// ServiceConfig contains configuration for the messaging service
type ServiceConfig struct {
	// Seed fixes the message selection; 0 seeds from the current time
	Seed int64
}
