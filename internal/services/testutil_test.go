package services_test

import (
	"context"
	"sync"
	"time"

	"dice-miniapp-backend/internal/models"
)

// fakeStore mirrors the RedisService semantics in memory: clamped atomic
// balance adjustments, debit-if-sufficient, compare-and-swap resolution and
// set-if-absent idempotency marking, all under one lock.
type fakeStore struct {
	mu        sync.Mutex
	balances  map[int64]int64
	nonces    map[int64]int64
	bets      []*models.Bet
	deposits  map[string]*models.DepositRequest
	withdraws map[string]*models.WithdrawRequest
	processed map[string]bool

	failSaveBet      bool
	failSaveWithdraw bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		balances:  make(map[int64]int64),
		nonces:    make(map[int64]int64),
		deposits:  make(map[string]*models.DepositRequest),
		withdraws: make(map[string]*models.WithdrawRequest),
		processed: make(map[string]bool),
	}
}

func (f *fakeStore) GetBalance(_ context.Context, userID int64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.balances[userID], nil
}

func (f *fakeStore) AddBalance(_ context.Context, userID int64, delta int64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.balances[userID] += delta
	if f.balances[userID] < 0 {
		f.balances[userID] = 0
	}
	return f.balances[userID], nil
}

func (f *fakeStore) DebitIfSufficient(_ context.Context, userID int64, amount int64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.balances[userID] < amount {
		return 0, models.E(models.KindInsufficientFunds, "balance below %d", amount)
	}
	f.balances[userID] -= amount
	return f.balances[userID], nil
}

func (f *fakeStore) NextNonce(_ context.Context, userID int64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.nonces[userID]++
	return f.nonces[userID], nil
}

func (f *fakeStore) CurrentNonce(_ context.Context, userID int64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.nonces[userID], nil
}

func (f *fakeStore) SaveBet(_ context.Context, bet *models.Bet) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failSaveBet {
		return models.E(models.KindTransientStore, "save bet failed")
	}

	f.bets = append(f.bets, bet)
	return nil
}

func (f *fakeStore) ListBets(_ context.Context, userID int64, limit int64) ([]*models.Bet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []*models.Bet
	for i := len(f.bets) - 1; i >= 0 && int64(len(out)) < limit; i-- {
		if f.bets[i].UserID == userID {
			out = append(out, f.bets[i])
		}
	}
	return out, nil
}

func (f *fakeStore) SaveDeposit(_ context.Context, req *models.DepositRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	cp := *req
	f.deposits[req.ID] = &cp
	return nil
}

func (f *fakeStore) GetDeposit(_ context.Context, id string) (*models.DepositRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	req, ok := f.deposits[id]
	if !ok {
		return nil, models.E(models.KindNotFound, "deposit %s not found", id)
	}
	cp := *req
	return &cp, nil
}

func (f *fakeStore) ResolveDeposit(_ context.Context, id string, to models.RequestStatus) (*models.DepositRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	req, ok := f.deposits[id]
	if !ok {
		return nil, models.E(models.KindNotFound, "deposit %s not found", id)
	}
	if req.Status != models.StatusPending {
		return nil, models.E(models.KindConflict, "deposit already resolved")
	}

	now := time.Now()
	req.Status = to
	req.ResolvedAt = &now

	cp := *req
	return &cp, nil
}

func (f *fakeStore) ListDeposits(_ context.Context, userID int64, limit int64) ([]*models.DepositRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []*models.DepositRequest
	for _, req := range f.deposits {
		if req.UserID == userID && int64(len(out)) < limit {
			cp := *req
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeStore) MarkOrderProcessed(_ context.Context, orderID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.processed[orderID] {
		return false, nil
	}
	f.processed[orderID] = true
	return true, nil
}

func (f *fakeStore) SaveWithdraw(_ context.Context, req *models.WithdrawRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failSaveWithdraw {
		return models.E(models.KindTransientStore, "save withdraw failed")
	}

	cp := *req
	f.withdraws[req.ID] = &cp
	return nil
}

func (f *fakeStore) GetWithdraw(_ context.Context, id string) (*models.WithdrawRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	req, ok := f.withdraws[id]
	if !ok {
		return nil, models.E(models.KindNotFound, "withdraw %s not found", id)
	}
	cp := *req
	return &cp, nil
}

func (f *fakeStore) ResolveWithdraw(_ context.Context, id string, to models.RequestStatus) (*models.WithdrawRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	req, ok := f.withdraws[id]
	if !ok {
		return nil, models.E(models.KindNotFound, "withdraw %s not found", id)
	}
	if req.Status != models.StatusPending {
		return nil, models.E(models.KindConflict, "withdraw already resolved")
	}

	now := time.Now()
	req.Status = to
	req.ResolvedAt = &now

	cp := *req
	return &cp, nil
}

func (f *fakeStore) ListWithdraws(_ context.Context, userID int64, limit int64) ([]*models.WithdrawRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []*models.WithdrawRequest
	for _, req := range f.withdraws {
		if req.UserID == userID && int64(len(out)) < limit {
			cp := *req
			out = append(out, &cp)
		}
	}
	return out, nil
}
