package client_state

import "github.com/KirkDiggler/coinflip/internal/models"

type CreateClientStateInput struct {
	ClientState *models.ClientState
}

type SaveClientStateInput struct {
	ClientState *models.ClientState
}

type GetClientStateInput struct {
	Address string
}

type SaveVRFKeyInput struct {
	VRFKey *models.VRFKey
}

type GetVRFKeyInput struct {
	Address string
}
