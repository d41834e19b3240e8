package discord

import (
	"errors"
	"fmt"

	"github.com/KirkDiggler/coinflip/internal/common/amount"
	"github.com/KirkDiggler/coinflip/internal/models"
	"github.com/KirkDiggler/coinflip/internal/services/game"
	"github.com/KirkDiggler/coinflip/internal/services/messaging"
	"github.com/bwmarrin/discordgo"
)

const (
	colorOpen    = 0x00ff00
	colorWaiting = 0xffa500
	colorSettled = 0x3498db
	colorError   = 0xff0000
)

// errorType maps engine errors to the messaging error categories
func errorType(err error) string {
	switch {
	case errors.Is(err, game.ErrInsufficientFunds):
		return messaging.ErrorTypeInsufficientFunds
	case errors.Is(err, game.ErrGameAlreadyJoined):
		return messaging.ErrorTypeAlreadyJoined
	case errors.Is(err, game.ErrCannotJoinOwnGame):
		return messaging.ErrorTypeOwnGame
	case errors.Is(err, game.ErrGameNotFound):
		return messaging.ErrorTypeNoGame
	case errors.Is(err, game.ErrPayoutAlreadyDisbursed):
		return messaging.ErrorTypeAlreadyPaid
	default:
		return ""
	}
}

// mention renders a participant, who is always a Discord user ID
func mention(userID string) string {
	if userID == "" {
		return "nobody yet"
	}
	return fmt.Sprintf("<@%s>", userID)
}

// renderGameEmbed renders the channel view of a game
func renderGameEmbed(output *game.GetGameOutput, amounts amount.Token, statusLine string) *discordgo.MessageEmbed {
	g := output.Game
	status := g.Status()

	fields := []*discordgo.MessageEmbedField{
		{
			Name:   "Owner",
			Value:  fmt.Sprintf("%s (%s)", mention(g.Owner), g.OwnerChoice),
			Inline: true,
		},
		{
			Name:   "Challenger",
			Value:  mention(g.Joinee),
			Inline: true,
		},
		{
			Name:   "Stake",
			Value:  amounts.Format(g.StakeAmount),
			Inline: true,
		},
		{
			Name:   "Escrow",
			Value:  amounts.Format(output.EscrowBalance),
			Inline: true,
		},
	}

	if output.ClientState != nil {
		fields = append(fields, &discordgo.MessageEmbedField{
			Name:   "Range",
			Value:  fmt.Sprintf("1 to %d", output.ClientState.MaxResult),
			Inline: true,
		})
	}

	color := colorOpen
	title := "Coin Flip: waiting for a challenger"
	switch status {
	case models.GameStatusAwaitingRandomness:
		color = colorWaiting
		title = "Coin Flip: the coin is in the air"
	case models.GameStatusSettled, models.GameStatusPaid:
		color = colorSettled
		title = "Coin Flip: settled"
		fields = append(fields, &discordgo.MessageEmbedField{
			Name:   "Winner",
			Value:  mention(g.Winner),
			Inline: false,
		})
		if output.ClientState != nil && output.ClientState.Result > 0 {
			fields = append(fields, &discordgo.MessageEmbedField{
				Name:   "Result",
				Value:  fmt.Sprintf("%d", output.ClientState.Result),
				Inline: true,
			})
		}
	}

	return &discordgo.MessageEmbed{
		Title:       title,
		Description: statusLine,
		Color:       color,
		Fields:      fields,
		Footer: &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("game %s · %s", g.GameID, status),
		},
	}
}

// gameComponents returns the buttons a game offers in its current state
func gameComponents(g *models.Game) []discordgo.MessageComponent {
	if g.Status() != models.GameStatusOpen {
		return nil
	}

	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{
					Label:    "Join",
					Style:    discordgo.SuccessButton,
					CustomID: ButtonJoinGame,
					Emoji: &discordgo.ComponentEmoji{
						Name: "🪙",
					},
				},
			},
		},
	}
}
