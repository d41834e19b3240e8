package models

import (
	"time"
)

// EventType names an observation emitted by the engine
type EventType string

const (
	// EventTypeGameCreated is emitted when a game and its client state are created
	EventTypeGameCreated EventType = "game_created"

	// EventTypeRandomnessRequested is emitted when a joinee triggers the oracle request
	EventTypeRandomnessRequested EventType = "randomness_requested"

	// EventTypeOutcomeSettled is emitted when a random value is consumed
	EventTypeOutcomeSettled EventType = "outcome_settled"

	// EventTypeRewardClaimed is emitted when the escrow is released
	EventTypeRewardClaimed EventType = "reward_claimed"
)

// Event is an append-only observation for external consumers. Only the
// fields relevant to Type are populated.
type Event struct {
	// ID is unique per event
	ID string `json:"id"`

	// Type is the observation kind
	Type EventType `json:"type"`

	// GameID is set on game_created
	GameID string `json:"game_id,omitempty"`

	// Game is the game address the event relates to
	Game string `json:"game,omitempty"`

	// Binding is the client state address (randomness_requested, outcome_settled)
	Binding string `json:"binding,omitempty"`

	// MaxResult is the effective upper bound of the draw
	MaxResult uint64 `json:"max_result,omitempty"`

	// Result is the numeric outcome (outcome_settled)
	Result uint64 `json:"result,omitempty"`

	// ResultBuffer is the consumed random value (outcome_settled)
	ResultBuffer *Buffer `json:"result_buffer,omitempty"`

	// Winner is who was paid (reward_claimed)
	Winner string `json:"winner,omitempty"`

	// Amount is what was paid (reward_claimed)
	Amount int64 `json:"amount,omitempty"`

	// Timestamp is when the event happened
	Timestamp time.Time `json:"timestamp"`
}
