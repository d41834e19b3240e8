package discord

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/KirkDiggler/coinflip/internal/common/amount"
	"github.com/KirkDiggler/coinflip/internal/models"
	"github.com/KirkDiggler/coinflip/internal/services/game"
	"github.com/KirkDiggler/coinflip/internal/services/messaging"
	"github.com/bwmarrin/discordgo"
)

// CoinflipCommand handles the /coinflip command
type CoinflipCommand struct {
	BaseCommand
	gameService      game.Service
	messagingService messaging.Service
	amounts          amount.Token
	allowFaucet      bool
	logger           *slog.Logger
}

// NewCoinflipCommand creates a new coinflip command handler
func NewCoinflipCommand(cfg *Config) *CoinflipCommand {
	minResult := float64(2)

	options := []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        "create",
			Description: "Open a coin flip in this channel",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "choice",
					Description: "The parity you bet on",
					Required:    true,
					Choices: []*discordgo.ApplicationCommandOptionChoice{
						{Name: "even", Value: "even"},
						{Name: "odd", Value: "odd"},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "stake",
					Description: "Amount each side puts in",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "max_result",
					Description: "Upper bound of the draw (default 1337)",
					MinValue:    &minResult,
					MaxValue:    float64(models.MaxResultCap),
				},
			},
		},
		{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        "join",
			Description: "Take the other side of this channel's coin flip",
		},
		{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        "settle",
			Description: "Settle this channel's coin flip if randomness has arrived",
		},
		{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        "claim",
			Description: "Claim the pot of this channel's coin flip",
		},
		{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        "balance",
			Description: "Show your balance",
		},
	}

	if cfg.AllowFaucet {
		options = append(options, &discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        "fund",
			Description: "Credit your account from the faucet",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "amount",
					Description: "Amount to credit",
					Required:    true,
				},
			},
		})
	}

	return &CoinflipCommand{
		BaseCommand: BaseCommand{
			Name:        "coinflip",
			Description: "Provably fair coin flips between two players",
			Options:     options,
		},
		gameService:      cfg.GameService,
		messagingService: cfg.MessagingService,
		amounts:          cfg.Amounts,
		allowFaucet:      cfg.AllowFaucet,
		logger:           cfg.Logger,
	}
}

// Handle processes a Discord interaction for the coinflip command
func (c *CoinflipCommand) Handle(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	if i.Type != discordgo.InteractionApplicationCommand {
		return nil
	}

	data := i.ApplicationCommandData()
	if data.Name != c.Name || len(data.Options) == 0 {
		return nil
	}

	ctx := context.Background()
	userID, username := interactionUser(i)
	if userID == "" {
		return RespondWithEphemeralMessage(s, i, "Couldn't tell who you are.")
	}

	sub := data.Options[0]
	switch sub.Name {
	case "create":
		return c.handleCreate(ctx, s, i, userID, username, sub.Options)
	case "join":
		return c.handleJoin(ctx, s, i, userID, username)
	case "settle":
		return c.handleSettle(ctx, s, i)
	case "claim":
		return c.handleClaim(ctx, s, i, userID, username)
	case "balance":
		return c.handleBalance(ctx, s, i, userID)
	case "fund":
		if !c.allowFaucet {
			return RespondWithEphemeralMessage(s, i, "The faucet is closed.")
		}
		return c.handleFund(ctx, s, i, userID, sub.Options)
	default:
		return errors.New("unknown subcommand")
	}
}

func (c *CoinflipCommand) handleCreate(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, userID, username string, options []*discordgo.ApplicationCommandInteractionDataOption) error {
	// One game per channel until it is settled
	existing, err := c.gameService.GetGameByChannel(ctx, &game.GetGameByChannelInput{
		ChannelID: i.ChannelID,
	})
	if err != nil && !errors.Is(err, game.ErrGameNotFound) {
		c.logger.ErrorContext(ctx, "failed to look up channel game", "channel", i.ChannelID, "error", err)
		return c.respondError(ctx, s, i, username, err)
	}
	if err == nil {
		switch existing.Game.Status() {
		case models.GameStatusOpen, models.GameStatusAwaitingRandomness:
			return c.respondErrorType(ctx, s, i, username, messaging.ErrorTypeGameInProgress)
		}
	}

	choice := models.ChoiceEven
	var (
		stakeText string
		maxResult uint64
	)
	for _, opt := range options {
		switch opt.Name {
		case "choice":
			if opt.StringValue() == "odd" {
				choice = models.ChoiceOdd
			}
		case "stake":
			stakeText = opt.StringValue()
		case "max_result":
			maxResult = uint64(opt.IntValue())
		}
	}

	stake, err := c.amounts.Parse(stakeText)
	if err != nil {
		return RespondWithEphemeralMessage(s, i, fmt.Sprintf("Invalid stake: %v", err))
	}

	// The interaction ID is a snowflake, unique and short enough for a seed
	created, err := c.gameService.CreateGame(ctx, &game.CreateGameInput{
		Owner:       userID,
		GameID:      i.ID,
		Choice:      choice,
		StakeAmount: stake,
		MaxResult:   maxResult,
		FreshOracle: true,
		ChannelID:   i.ChannelID,
	})
	if err != nil {
		c.logger.WarnContext(ctx, "create failed", "user", userID, "error", err)
		return c.respondError(ctx, s, i, username, err)
	}

	status, err := c.messagingService.GetGameStatusMessage(ctx, &messaging.GetGameStatusMessageInput{
		GameStatus: created.Game.Status(),
	})
	if err != nil {
		return err
	}

	view := &game.GetGameOutput{
		Game:          created.Game,
		ClientState:   created.ClientState,
		EscrowBalance: created.Game.StakeAmount,
	}
	return RespondWithEmbed(s, i, renderGameEmbed(view, c.amounts, status.Message), gameComponents(created.Game))
}

// handleJoin is shared by the join sub-command and the Join button
func (c *CoinflipCommand) handleJoin(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, userID, username string) error {
	existing, err := c.gameService.GetGameByChannel(ctx, &game.GetGameByChannelInput{
		ChannelID: i.ChannelID,
	})
	if err != nil {
		return c.respondError(ctx, s, i, username, err)
	}

	joined, err := c.gameService.JoinGame(ctx, &game.JoinGameInput{
		GameID: existing.Game.GameID,
		Owner:  existing.Game.Owner,
		Joinee: userID,
		Params: []byte(i.ID),
	})
	if err != nil {
		c.logger.WarnContext(ctx, "join failed", "user", userID, "game", existing.Game.Address, "error", err)
		return c.respondError(ctx, s, i, username, err)
	}

	message, err := c.messagingService.GetJoinGameMessage(ctx, &messaging.GetJoinGameMessageInput{
		PlayerName: mention(userID),
		OwnerName:  mention(joined.Game.Owner),
	})
	if err != nil {
		return err
	}

	view := &game.GetGameOutput{
		Game:          joined.Game,
		ClientState:   existing.ClientState,
		EscrowBalance: joined.Game.Pot(),
	}

	// A button click replaces the game message; the sub-command posts a new one
	responseType := discordgo.InteractionResponseChannelMessageWithSource
	if i.Type == discordgo.InteractionMessageComponent {
		responseType = discordgo.InteractionResponseUpdateMessage
	}

	return s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: responseType,
		Data: &discordgo.InteractionResponseData{
			Embeds:     []*discordgo.MessageEmbed{renderGameEmbed(view, c.amounts, message.Message)},
			Components: []discordgo.MessageComponent{},
		},
	})
}

func (c *CoinflipCommand) handleSettle(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) error {
	existing, err := c.gameService.GetGameByChannel(ctx, &game.GetGameByChannelInput{
		ChannelID: i.ChannelID,
	})
	if err != nil {
		return c.respondError(ctx, s, i, "", err)
	}

	settled, err := c.gameService.SettleGame(ctx, &game.SettleGameInput{
		GameID: existing.Game.GameID,
		Owner:  existing.Game.Owner,
		Oracle: existing.ClientState.Oracle,
	})
	if err != nil {
		c.logger.WarnContext(ctx, "settle failed", "game", existing.Game.Address, "error", err)
		return c.respondError(ctx, s, i, "", err)
	}

	switch settled.Status {
	case game.SettleStatusAwaitingRandomness:
		return RespondWithEphemeralMessage(s, i, "The oracle hasn't answered yet. Try again in a moment.")
	case game.SettleStatusAlreadyConsumed, game.SettleStatusAlreadySettled:
		return RespondWithEphemeralMessage(s, i, "This flip is already settled.")
	}

	// The announcement itself is posted by the event watcher
	return RespondWithEphemeralMessage(s, i, fmt.Sprintf("Settled. The draw was %d.", settled.Numeric))
}

func (c *CoinflipCommand) handleClaim(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, userID, username string) error {
	existing, err := c.gameService.GetGameByChannel(ctx, &game.GetGameByChannelInput{
		ChannelID: i.ChannelID,
	})
	if err != nil {
		return c.respondError(ctx, s, i, username, err)
	}

	claimed, err := c.gameService.ClaimReward(ctx, &game.ClaimRewardInput{
		GameID: existing.Game.GameID,
		Owner:  existing.Game.Owner,
		Caller: userID,
	})
	if err != nil {
		return c.respondError(ctx, s, i, username, err)
	}

	message, err := c.messagingService.GetClaimMessage(ctx, &messaging.GetClaimMessageInput{
		PlayerName: mention(userID),
		Result:     messaging.ClaimResult(claimed.Status),
		Amount:     c.amounts.Format(claimed.Amount),
	})
	if err != nil {
		return err
	}

	// A payout is announced to the channel by the event watcher
	return RespondWithEphemeralMessage(s, i, message.Message)
}

func (c *CoinflipCommand) handleBalance(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, userID string) error {
	balance, err := c.gameService.GetBalance(ctx, &game.GetBalanceInput{
		Address: userID,
	})
	if err != nil {
		return c.respondError(ctx, s, i, "", err)
	}

	return RespondWithEphemeralMessage(s, i, fmt.Sprintf("Your balance is %s.", c.amounts.Format(balance.Balance)))
}

func (c *CoinflipCommand) handleFund(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, userID string, options []*discordgo.ApplicationCommandInteractionDataOption) error {
	var amountText string
	for _, opt := range options {
		if opt.Name == "amount" {
			amountText = opt.StringValue()
		}
	}

	units, err := c.amounts.Parse(amountText)
	if err != nil {
		return RespondWithEphemeralMessage(s, i, fmt.Sprintf("Invalid amount: %v", err))
	}

	funded, err := c.gameService.FundAccount(ctx, &game.FundAccountInput{
		Address: userID,
		Amount:  units,
	})
	if err != nil {
		return c.respondError(ctx, s, i, "", err)
	}

	return RespondWithEphemeralMessage(s, i, fmt.Sprintf("Credited %s. Your balance is %s.",
		c.amounts.Format(units), c.amounts.Format(funded.Account.Balance)))
}

// outcomeEmbed builds the announcement of a settled game
func (c *CoinflipCommand) outcomeEmbed(ctx context.Context, g *models.Game, numeric, maxResult uint64) (*discordgo.MessageEmbed, error) {
	loser := g.Owner
	if g.Winner == g.Owner {
		loser = g.Joinee
	}

	outcome, err := c.messagingService.GetOutcomeMessage(ctx, &messaging.GetOutcomeMessageInput{
		WinnerName: mention(g.Winner),
		LoserName:  mention(loser),
		Numeric:    numeric,
		MaxResult:  maxResult,
		Claimable:  !g.PayoutDisbursed,
	})
	if err != nil {
		return nil, err
	}

	return &discordgo.MessageEmbed{
		Title:       "🪙 The coin has landed",
		Description: outcome.Message,
		Color:       colorSettled,
		Footer: &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("game %s", g.GameID),
		},
	}, nil
}

func (c *CoinflipCommand) respondError(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, username string, err error) error {
	kind := errorType(err)
	if kind == "" {
		return RespondWithError(s, i, "Error", err.Error())
	}
	return c.respondErrorType(ctx, s, i, username, kind)
}

func (c *CoinflipCommand) respondErrorType(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, username, kind string) error {
	message, err := c.messagingService.GetErrorMessage(ctx, &messaging.GetErrorMessageInput{
		ErrorType:  kind,
		PlayerName: username,
	})
	if err != nil {
		return err
	}
	return RespondWithError(s, i, message.Title, message.Message)
}
