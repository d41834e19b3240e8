package event

import "github.com/KirkDiggler/coinflip/internal/models"

// AppendEventInput contains the event to append
type AppendEventInput struct {
	Event *models.Event
}

// ListEventsInput contains parameters for reading the log
type ListEventsInput struct {
	// After is an exclusive cursor returned by a previous call; empty reads from the start
	After string

	// Count caps the number of entries scanned; 0 reads everything
	Count int64

	// Types keeps only the listed event types; empty keeps all
	Types []models.EventType

	// Game keeps only events of one game address; empty keeps all
	Game string
}

// ListEventsOutput contains the events read and the cursor to continue from
type ListEventsOutput struct {
	Events []*models.Event
	Cursor string
}
