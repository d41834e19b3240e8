package game

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/KirkDiggler/coinflip/internal/common/derive"
	"github.com/KirkDiggler/coinflip/internal/models"
	clientStateRepo "github.com/KirkDiggler/coinflip/internal/repositories/client_state"
	gameRepo "github.com/KirkDiggler/coinflip/internal/repositories/game"
	ledgerRepo "github.com/KirkDiggler/coinflip/internal/repositories/ledger"
)

// SettleGame consumes the oracle's current value. An empty or already
// consumed value, or a game that already has a winner, is a successful
// no-op, so any number of relayers may call it concurrently.
func (s *service) SettleGame(ctx context.Context, input *SettleGameInput) (*SettleGameOutput, error) {
	if input == nil {
		return nil, errors.New("input cannot be nil")
	}

	start := time.Now()

	var output *SettleGameOutput
	err := s.transactor.Update(ctx, func(ctx context.Context) error {
		game, err := s.loadGame(ctx, input.GameID, input.Owner)
		if err != nil {
			return err
		}

		state, err := s.loadClientState(ctx, game.ClientState)
		if err != nil {
			return err
		}

		if input.Oracle == "" || input.Oracle != state.Oracle {
			return ErrInvalidOracleBinding
		}

		buffer, err := s.oracle.CurrentBuffer(ctx, state.Oracle)
		if err != nil {
			return fmt.Errorf("failed to read oracle buffer: %w", err)
		}

		output = &SettleGameOutput{
			Game:        game,
			ClientState: state,
		}

		switch {
		case buffer.IsZero():
			output.Status = SettleStatusAwaitingRandomness
			return nil
		case buffer == state.ResultBuffer:
			output.Status = SettleStatusAlreadyConsumed
			return nil
		case game.Winner != "":
			output.Status = SettleStatusAlreadySettled
			return nil
		case game.Joinee == "":
			return ErrGameNotJoined
		}

		numeric := MapResult(buffer, state.MaxResult)
		parity := Parity(numeric)
		winner := winnerOf(game, parity)
		now := s.clock.Now()

		game.Winner = winner
		game.Result = &parity
		game.UpdatedAt = now

		state.ResultBuffer = buffer
		if state.Result != numeric {
			state.Result = numeric
			state.Timestamp = now
		}

		if err := s.clientStateRepo.SaveClientState(ctx, &clientStateRepo.SaveClientStateInput{
			ClientState: state,
		}); err != nil {
			return err
		}

		if s.variant == VariantClient {
			paid, err := s.releaseEscrow(ctx, game, winner)
			if err != nil {
				return err
			}
			output.Paid = paid
		}

		if err := s.gameRepo.SaveGame(ctx, &gameRepo.SaveGameInput{
			Game: game,
		}); err != nil {
			return err
		}

		settled := buffer
		if err := s.appendEvent(ctx, &models.Event{
			Type:         models.EventTypeOutcomeSettled,
			Game:         game.Address,
			Binding:      state.Address,
			MaxResult:    state.MaxResult,
			Result:       state.Result,
			ResultBuffer: &settled,
			Timestamp:    now,
		}); err != nil {
			return err
		}

		if output.Paid > 0 {
			if err := s.appendEvent(ctx, &models.Event{
				Type:      models.EventTypeRewardClaimed,
				Game:      game.Address,
				Winner:    winner,
				Amount:    output.Paid,
				Timestamp: now,
			}); err != nil {
				return err
			}
		}

		output.Status = SettleStatusSettled
		output.Numeric = numeric
		return nil
	})
	if err != nil {
		return nil, err
	}

	if output.Status != SettleStatusSettled {
		s.metrics.settleNoops.Inc(1)
		s.logger.DebugContext(ctx, "settle skipped",
			"game", output.Game.Address,
			"status", string(output.Status))
		return output, nil
	}

	s.metrics.settlements.Inc(1)
	s.metrics.settleLatency.UpdateSince(start)
	if output.Paid > 0 {
		s.metrics.claimsPaid.Inc(1)
		s.metrics.payoutVolume.Inc(output.Paid)
	}

	s.logger.InfoContext(ctx, "game settled",
		"game", output.Game.Address,
		"numeric", output.Numeric,
		"parity", *output.Game.Result,
		"winner", output.Game.Winner,
		"paid", output.Paid)

	return output, nil
}

// ClaimReward pays the caller if they are the settled winner. Losing, or
// claiming before settlement, is reported through the status rather than
// as an error.
func (s *service) ClaimReward(ctx context.Context, input *ClaimRewardInput) (*ClaimRewardOutput, error) {
	if input == nil {
		return nil, errors.New("input cannot be nil")
	}

	if input.Caller == "" {
		return nil, ErrInvalidParticipant
	}

	var output *ClaimRewardOutput
	err := s.transactor.Update(ctx, func(ctx context.Context) error {
		game, err := s.loadGame(ctx, input.GameID, input.Owner)
		if err != nil {
			return err
		}

		output = &ClaimRewardOutput{
			Game: game,
		}

		if !game.IsSettled() {
			output.Status = ClaimStatusNotSettled
			return nil
		}

		// Eligibility is recomputed from the consumed draw, not taken from the record
		state, err := s.loadClientState(ctx, game.ClientState)
		if err != nil {
			return err
		}

		parity := Parity(state.Result)
		if parity != *game.Result || winnerOf(game, parity) != game.Winner {
			return fmt.Errorf("%w: draw %d, recorded winner %s", ErrOutcomeMismatch, state.Result, game.Winner)
		}

		if input.Caller != game.Winner {
			output.Status = ClaimStatusNotWinner
			return nil
		}

		amount, err := s.releaseEscrow(ctx, game, game.Winner)
		if err != nil {
			return err
		}

		now := s.clock.Now()
		game.UpdatedAt = now
		if err := s.gameRepo.SaveGame(ctx, &gameRepo.SaveGameInput{
			Game: game,
		}); err != nil {
			return err
		}

		if err := s.appendEvent(ctx, &models.Event{
			Type:      models.EventTypeRewardClaimed,
			Game:      game.Address,
			Winner:    game.Winner,
			Amount:    amount,
			Timestamp: now,
		}); err != nil {
			return err
		}

		output.Status = ClaimStatusPaid
		output.Amount = amount
		return nil
	})
	if err != nil {
		return nil, err
	}

	switch output.Status {
	case ClaimStatusPaid:
		s.metrics.claimsPaid.Inc(1)
		s.metrics.payoutVolume.Inc(output.Amount)
		s.logger.InfoContext(ctx, "reward claimed",
			"game", output.Game.Address,
			"winner", output.Game.Winner,
			"amount", output.Amount)
	case ClaimStatusNotWinner:
		s.metrics.claimsRejected.Inc(1)
		s.logger.InfoContext(ctx, "claim rejected, caller did not win",
			"game", output.Game.Address,
			"caller", input.Caller)
	}

	return output, nil
}

// releaseEscrow pays the whole pot to winner under the game's derived
// authority and marks the payout in the same transaction
func (s *service) releaseEscrow(ctx context.Context, game *models.Game, winner string) (int64, error) {
	if game.PayoutDisbursed {
		return 0, ErrPayoutAlreadyDisbursed
	}

	balance, err := s.ledgerRepo.GetBalance(ctx, &ledgerRepo.GetBalanceInput{
		Address: game.Escrow,
	})
	if err != nil {
		return 0, err
	}

	pot := game.Pot()
	if balance != pot {
		return 0, fmt.Errorf("%w: holds %d, expected %d", ErrEscrowMismatch, balance, pot)
	}

	signer, err := derive.NewSigner(s.programID, game.Bump, derive.GameSeeds(game.GameID, game.Owner)...)
	if err != nil {
		return 0, fmt.Errorf("failed to derive game authority: %w", err)
	}

	if err := s.transfer(ctx, game.Escrow, winner, pot, signer); err != nil {
		return 0, err
	}

	game.PayoutDisbursed = true
	return pot, nil
}
