package game

// GameError is a custom error type for game-related errors
type GameError string

// Error implements the error interface
func (e GameError) Error() string {
	return string(e)
}

// Define errors
const (
	ErrConfigTooLarge         GameError = "max result exceeds the maximum of 1337"
	ErrInvalidOracleBinding   GameError = "oracle does not match the game's binding"
	ErrInvalidOracleAuthority GameError = "oracle authority is not the game's client state"
	ErrInsufficientFunds      GameError = "insufficient funds"
	ErrInvalidChoice          GameError = "choice must be 0 (even) or 1 (odd)"
	ErrInvalidStake           GameError = "stake amount must be positive"
	ErrInvalidAmount          GameError = "amount must be positive"
	ErrInvalidGameID          GameError = "game id must be between 1 and 32 bytes"
	ErrInvalidParticipant     GameError = "participant identity cannot be empty"
	ErrGameNotFound           GameError = "game not found"
	ErrGameAlreadyExists      GameError = "game already exists"
	ErrClientStateExists      GameError = "oracle is already bound to another game"
	ErrGameAlreadyJoined      GameError = "game already has a joinee"
	ErrGameNotJoined          GameError = "game has no joinee"
	ErrCannotJoinOwnGame      GameError = "owner cannot join their own game"
	ErrInvalidGameState       GameError = "invalid game state"
	ErrPayoutAlreadyDisbursed GameError = "payout already disbursed"
	ErrEscrowMismatch         GameError = "escrow balance does not match the pot"
	ErrOutcomeMismatch        GameError = "recorded winner does not match the recorded result"
	ErrVRFAlreadyInitialized  GameError = "vrf already initialized for payer"
	ErrVariantUnsupported     GameError = "operation not supported by this variant"
	ErrNilConfig              GameError = "config cannot be nil"
	ErrNilTransactor          GameError = "transactor cannot be nil"
	ErrNilGameRepo            GameError = "game repository cannot be nil"
	ErrNilClientStateRepo     GameError = "client state repository cannot be nil"
	ErrNilLedgerRepo          GameError = "ledger repository cannot be nil"
	ErrNilEventRepo           GameError = "event repository cannot be nil"
	ErrNilOracle              GameError = "oracle cannot be nil"
	ErrNilClock               GameError = "clock cannot be nil"
	ErrNilUUIDGenerator       GameError = "UUID generator cannot be nil"
	ErrInvalidProgramID       GameError = "program id cannot be empty"
	ErrInvalidVariant         GameError = "variant must be client or vrf"
)
