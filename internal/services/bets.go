package services

import (
	"context"
	"math"
	"time"

	"dice-miniapp-backend/internal/config"
	"dice-miniapp-backend/internal/models"

	"github.com/rs/zerolog"
)

type BetStore interface {
	GetBalance(ctx context.Context, userID int64) (int64, error)
	AddBalance(ctx context.Context, userID int64, delta int64) (int64, error)
	NextNonce(ctx context.Context, userID int64) (int64, error)
	CurrentNonce(ctx context.Context, userID int64) (int64, error)
	SaveBet(ctx context.Context, bet *models.Bet) error
	ListBets(ctx context.Context, userID int64, limit int64) ([]*models.Bet, error)
}

// BetService settles dice wagers against the committed server seed.
type BetService struct {
	store       BetStore
	serverSeed  string
	houseEdgeBp int64
	notifier    Notifier
	logger      zerolog.Logger
}

func NewBetService(store BetStore, cfg *config.Config, notifier Notifier, logger zerolog.Logger) (*BetService, error) {
	if cfg.ServerSeed == "" {
		return nil, models.E(models.KindConfiguration, "server seed is not configured")
	}

	return &BetService{
		store:       store,
		serverSeed:  cfg.ServerSeed,
		houseEdgeBp: cfg.HouseEdgeBasisPoints,
		notifier:    notifier,
		logger:      logger,
	}, nil
}

// Commitment is the public hash of the current server seed.
func (s *BetService) Commitment() string {
	return CommitSeed(s.serverSeed)
}

// multiplierBp returns the payout multiplier in 1/10000 units:
// (100/chance) * (1 - edge/10000), rounded to four decimal places.
func (s *BetService) multiplierBp(chance int64) int64 {
	return int64(math.Round(float64(100*(10000-s.houseEdgeBp)) / float64(chance)))
}

// PlaceBet validates, rolls, settles and records a wager. The stake and the
// payout land on the ledger as a single net adjustment, so conservation
// holds per bet with no partial-effect window.
func (s *BetService) PlaceBet(ctx context.Context, userID int64, req *models.BetRequest) (*models.BetResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	balance, err := s.store.GetBalance(ctx, userID)
	if err != nil {
		return nil, err
	}
	if balance < req.Stake {
		return nil, models.E(models.KindInsufficientFunds,
			"stake %d exceeds balance %d", req.Stake, balance)
	}

	clientSeed := DeriveClientSeed(userID)

	nonce, err := s.store.NextNonce(ctx, userID)
	if err != nil {
		return nil, err
	}

	roll, digest := Roll(s.serverSeed, clientSeed, nonce)

	threshold := req.Chance * 10000
	var win bool
	switch req.Direction {
	case models.DirectionUnder:
		win = roll < threshold
	case models.DirectionOver:
		win = roll >= RollRange-threshold
	}

	mBp := s.multiplierBp(req.Chance)

	var payout int64
	if win {
		payout = req.Stake * mBp / 10000
	}

	newBalance, err := s.store.AddBalance(ctx, userID, payout-req.Stake)
	if err != nil {
		return nil, err
	}

	bet := &models.Bet{
		ID:             models.GenerateBetID(),
		UserID:         userID,
		Stake:          req.Stake,
		Chance:         req.Chance,
		Direction:      req.Direction,
		Nonce:          nonce,
		Roll:           roll,
		Win:            win,
		Payout:         payout,
		Multiplier:     float64(mBp) / 10000,
		ClientSeed:     clientSeed,
		ServerSeedHash: s.Commitment(),
		ProofHash:      digest,
		CreatedAt:      time.Now(),
	}

	if err := s.store.SaveBet(ctx, bet); err != nil {
		// The settlement already hit the ledger; reverse it rather than keep
		// a balance change with no recorded proof behind it.
		if _, revErr := s.store.AddBalance(ctx, userID, req.Stake-payout); revErr != nil {
			s.logger.Error().Err(revErr).
				Str("bet_id", bet.ID).
				Int64("user_id", userID).
				Msg("failed to reverse unrecorded settlement")
		}
		s.logger.Error().Err(err).Str("bet_id", bet.ID).Msg("failed to persist bet record")
		return nil, err
	}

	s.logger.Info().
		Int64("user_id", userID).
		Str("bet_id", bet.ID).
		Int64("stake", req.Stake).
		Int64("roll", roll).
		Bool("win", win).
		Int64("payout", payout).
		Msg("bet settled")

	s.notifier.NotifyUser(userID, "bet_settled", bet)

	return &models.BetResult{Bet: bet, NewBalance: newBalance}, nil
}

// VerificationData is what a player needs to audit future bets.
func (s *BetService) VerificationData(ctx context.Context, userID int64) (*models.VerificationData, error) {
	nonce, err := s.store.CurrentNonce(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &models.VerificationData{
		ClientSeed:     DeriveClientSeed(userID),
		ServerSeedHash: s.Commitment(),
		CurrentNonce:   nonce,
	}, nil
}

// VerifyRoll recomputes a past roll from a revealed seed so a player can
// check both the outcome and that the seed matches the old commitment.
func (s *BetService) VerifyRoll(serverSeed, clientSeed string, nonce int64) (int64, string, string) {
	roll, digest := Roll(serverSeed, clientSeed, nonce)
	return roll, digest, CommitSeed(serverSeed)
}

func (s *BetService) History(ctx context.Context, userID int64, limit int64) ([]*models.Bet, error) {
	return s.store.ListBets(ctx, userID, limit)
}
