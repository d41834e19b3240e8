package client_state

//go:generate mockgen -package=mocks -destination=mocks/mock_repository.go github.com/KirkDiggler/coinflip/internal/repositories/client_state Repository

import (
	"context"

	"github.com/KirkDiggler/coinflip/internal/models"
)

// Repository defines the interface for client state and VRF key persistence
type Repository interface {
	// CreateClientState persists a new client state, failing if its address is taken
	CreateClientState(ctx context.Context, input *CreateClientStateInput) error

	// SaveClientState persists changes to an existing client state
	SaveClientState(ctx context.Context, input *SaveClientStateInput) error

	// GetClientState retrieves a client state by address
	GetClientState(ctx context.Context, input *GetClientStateInput) (*models.ClientState, error)

	// SaveVRFKey records a provisioned oracle account, failing if one exists
	SaveVRFKey(ctx context.Context, input *SaveVRFKeyInput) error

	// GetVRFKey retrieves a VRF key by address
	GetVRFKey(ctx context.Context, input *GetVRFKeyInput) (*models.VRFKey, error)
}
