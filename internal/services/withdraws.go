package services

import (
	"context"
	"time"

	"dice-miniapp-backend/internal/models"

	"github.com/rs/zerolog"
)

type WithdrawStore interface {
	AddBalance(ctx context.Context, userID int64, delta int64) (int64, error)
	DebitIfSufficient(ctx context.Context, userID int64, amount int64) (int64, error)
	SaveWithdraw(ctx context.Context, req *models.WithdrawRequest) error
	GetWithdraw(ctx context.Context, id string) (*models.WithdrawRequest, error)
	ResolveWithdraw(ctx context.Context, id string, to models.RequestStatus) (*models.WithdrawRequest, error)
	ListWithdraws(ctx context.Context, userID int64, limit int64) ([]*models.WithdrawRequest, error)
}

// WithdrawService reserves funds up front: the debit happens at request
// time, approval is bookkeeping only, and decline/cancel refunds the exact
// reserved amount exactly once.
type WithdrawService struct {
	store    WithdrawStore
	notifier Notifier
	logger   zerolog.Logger
}

func NewWithdrawService(store WithdrawStore, notifier Notifier, logger zerolog.Logger) *WithdrawService {
	return &WithdrawService{
		store:    store,
		notifier: notifier,
		logger:   logger,
	}
}

func (s *WithdrawService) Create(ctx context.Context, userID int64, create *models.CreateWithdrawRequest) (*models.WithdrawRequest, error) {
	if err := create.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.store.DebitIfSufficient(ctx, userID, create.Amount); err != nil {
		return nil, err
	}

	req := &models.WithdrawRequest{
		ID:            models.GenerateWithdrawID(),
		UserID:        userID,
		Amount:        create.Amount,
		PayoutDetails: create.PayoutDetails,
		Status:        models.StatusPending,
		CreatedAt:     time.Now(),
	}

	if err := s.store.SaveWithdraw(ctx, req); err != nil {
		// The reservation already left the balance; hand it back rather
		// than strand it against a record that was never persisted.
		if _, refundErr := s.store.AddBalance(ctx, userID, create.Amount); refundErr != nil {
			s.logger.Error().Err(refundErr).
				Int64("user_id", userID).
				Int64("amount", create.Amount).
				Msg("failed to refund unsaved withdraw reservation")
		}
		return nil, err
	}

	s.logger.Info().
		Str("withdraw_id", req.ID).
		Int64("user_id", userID).
		Int64("amount", create.Amount).
		Msg("withdraw requested, funds reserved")

	s.notifier.NotifyAdmin("withdraw_requested", req)

	return req, nil
}

// Approve finalizes the payout. The debit happened at creation, so this is
// a status transition and nothing else.
func (s *WithdrawService) Approve(ctx context.Context, id string) (*models.WithdrawRequest, error) {
	req, err := s.store.ResolveWithdraw(ctx, id, models.StatusApproved)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("withdraw_id", id).Int64("amount", req.Amount).Msg("withdraw approved")
	s.notifier.NotifyUser(req.UserID, "withdraw_approved", req)

	return req, nil
}

func (s *WithdrawService) Decline(ctx context.Context, id string) (*models.WithdrawRequest, error) {
	return s.release(ctx, id, "withdraw_declined")
}

// Cancel is the user-initiated decline. Only the original owner may cancel.
func (s *WithdrawService) Cancel(ctx context.Context, userID int64, id string) (*models.WithdrawRequest, error) {
	req, err := s.store.GetWithdraw(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.UserID != userID {
		return nil, models.E(models.KindAuthorization, "withdraw %s belongs to another user", id)
	}

	return s.release(ctx, id, "withdraw_cancelled")
}

// release flips the request to declined and refunds the reservation. The
// atomic status swap guarantees the refund runs at most once.
func (s *WithdrawService) release(ctx context.Context, id, event string) (*models.WithdrawRequest, error) {
	req, err := s.store.ResolveWithdraw(ctx, id, models.StatusDeclined)
	if err != nil {
		return nil, err
	}

	if _, err := s.store.AddBalance(ctx, req.UserID, req.Amount); err != nil {
		s.logger.Error().Err(err).Str("withdraw_id", id).Msg("withdraw declined but refund failed")
		return nil, err
	}

	s.logger.Info().Str("withdraw_id", id).Int64("amount", req.Amount).Msg(event)
	s.notifier.NotifyUser(req.UserID, event, req)

	return req, nil
}

func (s *WithdrawService) Get(ctx context.Context, id string) (*models.WithdrawRequest, error) {
	return s.store.GetWithdraw(ctx, id)
}

func (s *WithdrawService) History(ctx context.Context, userID int64, limit int64) ([]*models.WithdrawRequest, error) {
	return s.store.ListWithdraws(ctx, userID, limit)
}
