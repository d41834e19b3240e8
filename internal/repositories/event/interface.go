package event

//go:generate mockgen -package=mocks -destination=mocks/mock_repository.go github.com/KirkDiggler/coinflip/internal/repositories/event Repository

import (
	"context"
)

// Repository defines the append-only log of engine observations
type Repository interface {
	// AppendEvent adds an event to the end of the log
	AppendEvent(ctx context.Context, input *AppendEventInput) error

	// ListEvents reads events from the log in append order
	ListEvents(ctx context.Context, input *ListEventsInput) (*ListEventsOutput, error)
}
