package messaging

import "context"

// Service is the interface for the messaging service
type Service interface {
	// GetGameStatusMessage returns a line describing where a game stands
	GetGameStatusMessage(ctx context.Context, input *GetGameStatusMessageInput) (*GetGameStatusMessageOutput, error)

	// GetJoinGameMessage returns a message for when a player takes the other side
	GetJoinGameMessage(ctx context.Context, input *GetJoinGameMessageInput) (*GetJoinGameMessageOutput, error)

	// GetOutcomeMessage returns the announcement of a settled flip
	GetOutcomeMessage(ctx context.Context, input *GetOutcomeMessageInput) (*GetOutcomeMessageOutput, error)

	// GetClaimMessage returns the reply to a claim
	GetClaimMessage(ctx context.Context, input *GetClaimMessageInput) (*GetClaimMessageOutput, error)

	// GetErrorMessage returns a user-friendly error message
	GetErrorMessage(ctx context.Context, input *GetErrorMessageInput) (*GetErrorMessageOutput, error)
}
