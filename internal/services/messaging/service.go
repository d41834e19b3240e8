package messaging

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/KirkDiggler/coinflip/internal/models"
)

// service implements the Service interface
type service struct {
	// Random number generator for selecting random messages
	mu   sync.Mutex
	rand *rand.Rand
}

// NewService creates a new messaging service
func NewService(config *ServiceConfig) (Service, error) {
	if config == nil {
		return nil, errors.New("config cannot be nil")
	}

	seed := config.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	return &service{
		rand: rand.New(rand.NewSource(seed)),
	}, nil
}

func (s *service) pick(messages []string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return messages[s.rand.Intn(len(messages))]
}

// GetGameStatusMessage returns a dynamic message based on the game status
func (s *service) GetGameStatusMessage(ctx context.Context, input *GetGameStatusMessageInput) (*GetGameStatusMessageOutput, error) {
	if input == nil {
		return nil, errors.New("input cannot be nil")
	}

	var messages []string

	switch input.GameStatus {
	case models.GameStatusOpen:
		messages = []string{
			"A coin is on the table. Anyone brave enough to call the other side?",
			"Stake's in escrow. All it needs is a challenger.",
			"Heads, tails, even, odd. Somebody step up.",
		}
	case models.GameStatusAwaitingRandomness:
		messages = []string{
			"The coin is in the air. Waiting on the oracle...",
			"Randomness requested. Nobody touch anything.",
			"Spinning... spinning... still spinning.",
		}
	case models.GameStatusSettled:
		messages = []string{
			"The coin has landed. The winner can collect.",
			"It's decided. Winner, come get your pot.",
		}
	case models.GameStatusPaid:
		messages = []string{
			"Settled and paid. Nothing left to see here.",
			"Pot delivered. Start another one?",
		}
	default:
		messages = []string{
			"Something is happening with this game. Probably.",
		}
	}

	return &GetGameStatusMessageOutput{
		Message: s.pick(messages),
	}, nil
}

// GetJoinGameMessage returns a message for when a player joins a game
func (s *service) GetJoinGameMessage(ctx context.Context, input *GetJoinGameMessageInput) (*GetJoinGameMessageOutput, error) {
	if input == nil {
		return nil, errors.New("input cannot be nil")
	}

	tone := input.PreferredTone
	if tone == "" {
		tone = ToneFunny
	}

	var messages []string
	switch tone {
	case ToneNeutral:
		messages = []string{
			fmt.Sprintf("%s joined %s's game. Randomness has been requested.", input.PlayerName, input.OwnerName),
		}
	case ToneSarcastic:
		messages = []string{
			fmt.Sprintf("Oh good, %s thinks they can beat %s at a coin flip. Bold strategy.", input.PlayerName, input.OwnerName),
			fmt.Sprintf("%s has chosen violence against %s. And by violence we mean a 50/50.", input.PlayerName, input.OwnerName),
		}
	default:
		messages = []string{
			fmt.Sprintf("%s calls the other side! %s, hold on to your wallet.", input.PlayerName, input.OwnerName),
			fmt.Sprintf("A challenger appears! %s takes on %s.", input.PlayerName, input.OwnerName),
			fmt.Sprintf("%s matched the stake. The coin goes up!", input.PlayerName),
		}
	}

	return &GetJoinGameMessageOutput{
		Message: s.pick(messages),
		Tone:    tone,
	}, nil
}

// GetOutcomeMessage returns the announcement of a settled flip
func (s *service) GetOutcomeMessage(ctx context.Context, input *GetOutcomeMessageInput) (*GetOutcomeMessageOutput, error) {
	if input == nil {
		return nil, errors.New("input cannot be nil")
	}

	tone := input.PreferredTone
	if tone == "" {
		tone = ToneCelebration
	}

	parity := "even"
	if input.Numeric%2 == 1 {
		parity = "odd"
	}

	var messages []string
	switch tone {
	case ToneNeutral:
		messages = []string{
			fmt.Sprintf("%s wins over %s.", input.WinnerName, input.LoserName),
		}
	case ToneSarcastic:
		messages = []string{
			fmt.Sprintf("%s wins. %s, maybe try a game of skill next time.", input.WinnerName, input.LoserName),
			fmt.Sprintf("Shocking absolutely nobody, %s lost a coin flip to %s.", input.LoserName, input.WinnerName),
		}
	case ToneFunny:
		messages = []string{
			fmt.Sprintf("%s called it! %s is now checking the couch cushions for change.", input.WinnerName, input.LoserName),
			fmt.Sprintf("The oracle has spoken and it likes %s better than %s.", input.WinnerName, input.LoserName),
		}
	default:
		messages = []string{
			fmt.Sprintf("🎉 %s takes it! Better luck next time, %s.", input.WinnerName, input.LoserName),
			fmt.Sprintf("🪙 Winner winner! %s beats %s.", input.WinnerName, input.LoserName),
		}
	}

	message := fmt.Sprintf("Rolled **%d** of %d (%s). %s", input.Numeric, input.MaxResult, parity, s.pick(messages))
	if input.Amount != "" {
		message += fmt.Sprintf(" %s moved to %s.", input.Amount, input.WinnerName)
	} else if input.Claimable {
		message += fmt.Sprintf(" %s can claim the pot.", input.WinnerName)
	}

	return &GetOutcomeMessageOutput{
		Title:   fmt.Sprintf("%s wins the flip", input.WinnerName),
		Message: message,
		Tone:    tone,
	}, nil
}

// GetClaimMessage returns the reply to a claim
func (s *service) GetClaimMessage(ctx context.Context, input *GetClaimMessageInput) (*GetClaimMessageOutput, error) {
	if input == nil {
		return nil, errors.New("input cannot be nil")
	}

	switch input.Result {
	case ClaimResultPaid:
		return &GetClaimMessageOutput{
			Title: "Pot Claimed",
			Message: s.pick([]string{
				fmt.Sprintf("%s collected %s. Spend it wisely (you won't).", input.PlayerName, input.Amount),
				fmt.Sprintf("%s is %s richer.", input.PlayerName, input.Amount),
			}),
		}, nil
	case ClaimResultNotWinner:
		return &GetClaimMessageOutput{
			Title: "Nice Try",
			Message: s.pick([]string{
				fmt.Sprintf("%s, you didn't win this one. The pot stays put.", input.PlayerName),
				fmt.Sprintf("Bold of you to claim a pot you lost, %s.", input.PlayerName),
			}),
		}, nil
	case ClaimResultNotSettled:
		return &GetClaimMessageOutput{
			Title:   "Not Yet",
			Message: "The coin hasn't landed yet. Claim after it settles.",
		}, nil
	default:
		return nil, fmt.Errorf("unknown claim result %q", input.Result)
	}
}

// GetErrorMessage returns a user-friendly error message
func (s *service) GetErrorMessage(ctx context.Context, input *GetErrorMessageInput) (*GetErrorMessageOutput, error) {
	if input == nil {
		return nil, errors.New("input cannot be nil")
	}

	tone := input.PreferredTone
	if tone == "" {
		tone = ToneFunny
	}

	name := input.PlayerName
	if name == "" {
		name = "friend"
	}

	var (
		title    string
		messages []string
	)

	switch input.ErrorType {
	case ErrorTypeInsufficientFunds:
		title = "Insufficient Funds"
		messages = []string{
			fmt.Sprintf("%s, your balance can't cover that stake. Fund your account first.", name),
			fmt.Sprintf("Your wallet says no, %s.", name),
		}
	case ErrorTypeAlreadyJoined:
		title = "Game Already Joined"
		messages = []string{
			fmt.Sprintf("Too slow, %s! Someone already took the other side.", name),
			"This flip already has two players.",
		}
	case ErrorTypeOwnGame:
		title = "Can't Join Your Own Game"
		messages = []string{
			fmt.Sprintf("%s, betting against yourself is a special kind of lonely.", name),
			"You can't take both sides of your own coin.",
		}
	case ErrorTypeNoGame:
		title = "No Game Here"
		messages = []string{
			"There's no coin flip in this channel. Start one with /coinflip create.",
		}
	case ErrorTypeGameInProgress:
		title = "Game In Progress"
		messages = []string{
			"There's already a flip running in this channel. Let it land first.",
		}
	case ErrorTypeAlreadyPaid:
		title = "Already Paid"
		messages = []string{
			"That pot has already been paid out.",
		}
	default:
		title = "Something Went Wrong"
		messages = []string{
			"The coin rolled under the couch. Try again in a moment.",
			"Something went wrong. The oracle shrugs.",
		}
	}

	return &GetErrorMessageOutput{
		Title:   title,
		Message: s.pick(messages),
		Tone:    tone,
	}, nil
}
