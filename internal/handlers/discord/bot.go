package discord

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/KirkDiggler/coinflip/internal/common/amount"
	"github.com/KirkDiggler/coinflip/internal/models"
	"github.com/KirkDiggler/coinflip/internal/services/game"
	"github.com/KirkDiggler/coinflip/internal/services/messaging"
	"github.com/bwmarrin/discordgo"
)

const defaultWatchInterval = 2 * time.Second

// Button IDs
const (
	ButtonJoinGame = "coinflip_join"
)

// Bot represents the Discord bot instance
type Bot struct {
	session    *discordgo.Session
	commands   map[string]CommandHandler
	commandIDs map[string]string // Maps command name to command ID
	coinflip   *CoinflipCommand
	config     *Config
	logger     *slog.Logger
}

// Config holds the configuration for the bot
type Config struct {
	// Discord bot token
	Token string

	// Application ID for the bot
	ApplicationID string

	// Optional guild ID for development (server-specific commands)
	GuildID string

	GameService      game.Service
	MessagingService messaging.Service

	// Amounts formats ledger units for display
	Amounts amount.Token

	// AllowFaucet exposes /coinflip fund
	AllowFaucet bool

	// WatchInterval is how often the event log is polled for settlements
	WatchInterval time.Duration

	Logger *slog.Logger
}

// New creates a new Discord bot
func New(cfg *Config) (*Bot, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}

	if cfg.Token == "" {
		return nil, errors.New("token cannot be empty")
	}

	if cfg.GameService == nil {
		return nil, errors.New("game service cannot be nil")
	}

	if cfg.MessagingService == nil {
		return nil, errors.New("messaging service cannot be nil")
	}

	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	cfg.Logger = cfg.Logger.With("component", "discord")

	if cfg.WatchInterval <= 0 {
		cfg.WatchInterval = defaultWatchInterval
	}

	// Create a new Discord session
	session, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to create Discord session: %w", err)
	}

	bot := &Bot{
		session:    session,
		commands:   make(map[string]CommandHandler),
		commandIDs: make(map[string]string),
		coinflip:   NewCoinflipCommand(cfg),
		config:     cfg,
		logger:     cfg.Logger,
	}

	// Register the interaction handler
	session.AddHandler(bot.handleInteraction)

	return bot, nil
}

// Start initializes the Discord connection and registers commands
func (b *Bot) Start() error {
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("failed to open Discord connection: %w", err)
	}

	if err := b.RegisterCommand(b.coinflip); err != nil {
		return fmt.Errorf("failed to register coinflip command: %w", err)
	}

	b.logger.Info("bot is now running")
	return nil
}

// Stop removes the registered commands and closes the connection
func (b *Bot) Stop() error {
	appID := b.appID()

	for cmdName, cmdID := range b.commandIDs {
		if err := b.session.ApplicationCommandDelete(appID, b.config.GuildID, cmdID); err != nil {
			b.logger.Warn("failed to delete command", "command", cmdName, "id", cmdID, "error", err)
		}
	}

	return b.session.Close()
}

// RegisterCommand registers a command with Discord, for one guild when a
// guild ID is configured and globally otherwise
func (b *Bot) RegisterCommand(cmd CommandHandler) error {
	createdCmd, err := b.session.ApplicationCommandCreate(b.appID(), b.config.GuildID, cmd.GetCommand())
	if err != nil {
		return fmt.Errorf("failed to create command %s: %w", cmd.GetName(), err)
	}

	b.commands[cmd.GetName()] = cmd
	b.commandIDs[cmd.GetName()] = createdCmd.ID
	b.logger.Info("registered command",
		"command", cmd.GetName(),
		"id", createdCmd.ID,
		"guild", b.config.GuildID)

	return nil
}

func (b *Bot) appID() string {
	if b.config.ApplicationID != "" {
		return b.config.ApplicationID
	}
	// Fall back to session user ID if application ID is not provided
	return b.session.State.User.ID
}

// handleInteraction handles Discord interactions
func (b *Bot) handleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		name := i.ApplicationCommandData().Name
		if h, ok := b.commands[name]; ok {
			if err := h.Handle(s, i); err != nil {
				b.logger.Error("failed to handle command", "command", name, "error", err)
			}
		}
	case discordgo.InteractionMessageComponent:
		if err := b.handleComponentInteraction(s, i); err != nil {
			b.logger.Error("failed to handle component interaction", "error", err)
		}
	}
}

// handleComponentInteraction handles button clicks
func (b *Bot) handleComponentInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	customID := i.MessageComponentData().CustomID

	switch customID {
	case ButtonJoinGame:
		userID, username := interactionUser(i)
		return b.coinflip.handleJoin(context.Background(), s, i, userID, username)
	default:
		return RespondWithEphemeralMessage(s, i, fmt.Sprintf("Unknown button: %s", customID))
	}
}

// Watch posts an announcement to the game's channel for every settlement
// recorded after Watch starts, whoever performed it.
func (b *Bot) Watch(ctx context.Context) error {
	// Skip the history
	tail, err := b.config.GameService.ListEvents(ctx, &game.ListEventsInput{})
	if err != nil {
		return fmt.Errorf("failed to read event log: %w", err)
	}
	cursor := tail.Cursor

	ticker := time.NewTicker(b.config.WatchInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		events, err := b.config.GameService.ListEvents(ctx, &game.ListEventsInput{
			After: cursor,
			Count: 100,
			Types: []models.EventType{models.EventTypeOutcomeSettled, models.EventTypeRewardClaimed},
		})
		if err != nil {
			b.logger.WarnContext(ctx, "failed to poll event log", "error", err)
			continue
		}
		cursor = events.Cursor

		for _, event := range events.Events {
			if err := b.announce(ctx, event); err != nil {
				b.logger.WarnContext(ctx, "failed to announce event",
					"event", event.ID,
					"type", string(event.Type),
					"game", event.Game,
					"error", err)
			}
		}
	}
}

func (b *Bot) announce(ctx context.Context, event *models.Event) error {
	current, err := b.config.GameService.GetGame(ctx, &game.GetGameInput{
		Address: event.Game,
	})
	if err != nil {
		return err
	}

	if current.Game.ChannelID == "" {
		return nil
	}

	var embed *discordgo.MessageEmbed
	switch event.Type {
	case models.EventTypeOutcomeSettled:
		embed, err = b.coinflip.outcomeEmbed(ctx, current.Game, event.Result, event.MaxResult)
	case models.EventTypeRewardClaimed:
		embed, err = b.claimEmbed(ctx, event)
	}
	if err != nil || embed == nil {
		return err
	}

	_, err = b.session.ChannelMessageSendComplex(current.Game.ChannelID, &discordgo.MessageSend{
		Embeds: []*discordgo.MessageEmbed{embed},
	})
	return err
}

func (b *Bot) claimEmbed(ctx context.Context, event *models.Event) (*discordgo.MessageEmbed, error) {
	message, err := b.config.MessagingService.GetClaimMessage(ctx, &messaging.GetClaimMessageInput{
		PlayerName: mention(event.Winner),
		Result:     messaging.ClaimResultPaid,
		Amount:     b.config.Amounts.Format(event.Amount),
	})
	if err != nil {
		return nil, err
	}

	return &discordgo.MessageEmbed{
		Title:       message.Title,
		Description: message.Message,
		Color:       colorSettled,
	}, nil
}
