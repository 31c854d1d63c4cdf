package services

import (
	"context"
	"time"

	"dice-miniapp-backend/internal/config"
	"dice-miniapp-backend/internal/models"

	"github.com/rs/zerolog"
)

type DepositStore interface {
	AddBalance(ctx context.Context, userID int64, delta int64) (int64, error)
	SaveDeposit(ctx context.Context, req *models.DepositRequest) error
	GetDeposit(ctx context.Context, id string) (*models.DepositRequest, error)
	ResolveDeposit(ctx context.Context, id string, to models.RequestStatus) (*models.DepositRequest, error)
	ListDeposits(ctx context.Context, userID int64, limit int64) ([]*models.DepositRequest, error)
	MarkOrderProcessed(ctx context.Context, orderID string) (bool, error)
}

// DepositService runs the pending -> approved/declined state machine for
// money entering the system, over both the manual and the gateway path.
type DepositService struct {
	store      DepositStore
	signer     *GatewaySigner
	merchantID string
	notifier   Notifier
	logger     zerolog.Logger
}

func NewDepositService(store DepositStore, cfg *config.Config, notifier Notifier, logger zerolog.Logger) *DepositService {
	return &DepositService{
		store:      store,
		signer:     NewGatewaySigner(cfg.GatewaySecret),
		merchantID: cfg.GatewayMerchantID,
		notifier:   notifier,
		logger:     logger,
	}
}

func (s *DepositService) create(ctx context.Context, userID, amount int64, method models.DepositMethod) (*models.DepositRequest, error) {
	if amount < models.MinRequestAmount || amount > models.MaxRequestAmount {
		return nil, models.E(models.KindValidation,
			"deposit amount must be between %d and %d", models.MinRequestAmount, models.MaxRequestAmount)
	}

	req := &models.DepositRequest{
		ID:        models.GenerateDepositID(),
		UserID:    userID,
		Amount:    amount,
		Method:    method,
		Status:    models.StatusPending,
		CreatedAt: time.Now(),
	}

	if err := s.store.SaveDeposit(ctx, req); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("deposit_id", req.ID).
		Int64("user_id", userID).
		Int64("amount", amount).
		Str("method", string(method)).
		Msg("deposit request created")

	s.notifier.NotifyAdmin("deposit_requested", req)

	return req, nil
}

// CreateManual registers a user-submitted deposit awaiting admin approval.
// No balance effect until then.
func (s *DepositService) CreateManual(ctx context.Context, userID, amount int64) (*models.DepositRequest, error) {
	return s.create(ctx, userID, amount, models.DepositMethodManual)
}

// CreateGatewayIntent pre-registers a pending deposit before the user is
// redirected to the payment page. The request id doubles as the external
// order id the callback will carry.
func (s *DepositService) CreateGatewayIntent(ctx context.Context, userID, amount int64) (*models.DepositRequest, error) {
	return s.create(ctx, userID, amount, models.DepositMethodGateway)
}

// Approve flips the request to approved and credits the ledger. The status
// swap happens first and is atomic, so a double-clicked approval credits
// exactly once: the loser sees a conflict.
func (s *DepositService) Approve(ctx context.Context, id string) (*models.DepositRequest, error) {
	req, err := s.store.ResolveDeposit(ctx, id, models.StatusApproved)
	if err != nil {
		return nil, err
	}

	if _, err := s.store.AddBalance(ctx, req.UserID, req.Amount); err != nil {
		s.logger.Error().Err(err).Str("deposit_id", id).Msg("deposit approved but credit failed")
		return nil, err
	}

	s.logger.Info().Str("deposit_id", id).Int64("amount", req.Amount).Msg("deposit approved")
	s.notifier.NotifyUser(req.UserID, "deposit_approved", req)

	return req, nil
}

func (s *DepositService) Decline(ctx context.Context, id string) (*models.DepositRequest, error) {
	req, err := s.store.ResolveDeposit(ctx, id, models.StatusDeclined)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("deposit_id", id).Msg("deposit declined")
	s.notifier.NotifyUser(req.UserID, "deposit_declined", req)

	return req, nil
}

// HandleGatewayCallback processes an at-least-once delivered gateway
// notification. Replays of an already processed order id acknowledge
// success without touching the ledger; the gateway's retry contract wants
// an idempotent acknowledgment, not an error.
func (s *DepositService) HandleGatewayCallback(ctx context.Context, cb *models.GatewayCallback) error {
	if cb.MerchantID != s.merchantID {
		return models.E(models.KindAuthentication, "callback authentication failed")
	}
	if !s.signer.Verify(cb.Signature, cb.MerchantID, cb.Amount, cb.OrderID) {
		return models.E(models.KindAuthentication, "callback authentication failed")
	}

	first, err := s.store.MarkOrderProcessed(ctx, cb.OrderID)
	if err != nil {
		return err
	}
	if !first {
		s.logger.Info().Str("order_id", cb.OrderID).Msg("duplicate gateway callback acknowledged")
		return nil
	}

	req, err := s.store.GetDeposit(ctx, cb.OrderID)
	if err != nil {
		return err
	}

	if req.Amount != cb.Amount {
		return models.E(models.KindValidation,
			"callback amount %d does not match deposit amount %d", cb.Amount, req.Amount)
	}

	if _, err := s.store.ResolveDeposit(ctx, cb.OrderID, models.StatusApproved); err != nil {
		return err
	}

	if _, err := s.store.AddBalance(ctx, req.UserID, req.Amount); err != nil {
		s.logger.Error().Err(err).Str("order_id", cb.OrderID).Msg("callback approved but credit failed")
		return err
	}

	s.logger.Info().
		Str("order_id", cb.OrderID).
		Int64("user_id", req.UserID).
		Int64("amount", req.Amount).
		Msg("gateway deposit credited")

	s.notifier.NotifyUser(req.UserID, "deposit_approved", req)

	return nil
}

func (s *DepositService) Get(ctx context.Context, id string) (*models.DepositRequest, error) {
	return s.store.GetDeposit(ctx, id)
}

func (s *DepositService) History(ctx context.Context, userID int64, limit int64) ([]*models.DepositRequest, error) {
	return s.store.ListDeposits(ctx, userID, limit)
}
