package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"dice-miniapp-backend/internal/config"
	"dice-miniapp-backend/internal/models"

	"github.com/redis/go-redis/v9"
)

// RedisService is the only holder of authoritative state. Balance mutations
// and the idempotency marker go through single-round-trip atomic commands;
// nothing here does an application-level read-modify-write on money.
type RedisService struct {
	client            *redis.Client
	processedOrderTTL time.Duration
}

func NewRedisService(cfg *config.Config) (*RedisService, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisURL,
		Password: cfg.RedisPass,
		DB:       cfg.RedisDB,
	})

	if _, err := client.Ping(context.Background()).Result(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %v", err)
	}

	return &RedisService{
		client:            client,
		processedOrderTTL: cfg.ProcessedOrderTTL,
	}, nil
}

func (s *RedisService) Close() error {
	return s.client.Close()
}

func storeErr(op string, err error) error {
	return models.E(models.KindTransientStore, "%s: %v", op, err)
}

// --- sessions ---

func (s *RedisService) StoreUserSession(ctx context.Context, session *models.UserSession) error {
	key := fmt.Sprintf(KeyUserSession, session.ID, session.SessionID)

	data, err := json.Marshal(session)
	if err != nil {
		return err
	}

	return s.client.Set(ctx, key, data, TTLUserSession).Err()
}

func (s *RedisService) GetUserSession(ctx context.Context, userID int64, sessionID string) (*models.UserSession, error) {
	key := fmt.Sprintf(KeyUserSession, userID, sessionID)

	data, err := s.client.Get(ctx, key).Result()
	if err != nil {
		return nil, err
	}

	var session models.UserSession
	if err := json.Unmarshal([]byte(data), &session); err != nil {
		return nil, err
	}

	session.LastAccessed = time.Now()
	updatedData, _ := json.Marshal(session)
	s.client.Set(ctx, key, updatedData, TTLUserSession)

	return &session, nil
}

func (s *RedisService) DeleteUserSession(ctx context.Context, userID int64, sessionID string) error {
	key := fmt.Sprintf(KeyUserSession, userID, sessionID)
	return s.client.Del(ctx, key).Err()
}

// --- balance ledger ---

// addBalanceScript is a true atomic increment with a floor at zero. The
// clamp is a safety net; callers validate sufficient funds first.
var addBalanceScript = redis.NewScript(`
	local v = redis.call("INCRBY", KEYS[1], ARGV[1])
	if v < 0 then
		redis.call("SET", KEYS[1], 0)
		return 0
	end
	return v
`)

// debitScript debits only when the balance covers the amount, in one trip.
var debitScript = redis.NewScript(`
	local bal = tonumber(redis.call("GET", KEYS[1]) or "0")
	local amount = tonumber(ARGV[1])
	if bal < amount then
		return -1
	end
	return redis.call("DECRBY", KEYS[1], amount)
`)

func (s *RedisService) GetBalance(ctx context.Context, userID int64) (int64, error) {
	key := fmt.Sprintf(KeyBalance, userID)

	balance, err := s.client.Get(ctx, key).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, storeErr("get balance", err)
	}

	return balance, nil
}

func (s *RedisService) SetBalance(ctx context.Context, userID int64, amount int64) error {
	if amount < 0 {
		amount = 0
	}

	key := fmt.Sprintf(KeyBalance, userID)
	if err := s.client.Set(ctx, key, amount, 0).Err(); err != nil {
		return storeErr("set balance", err)
	}
	return nil
}

func (s *RedisService) AddBalance(ctx context.Context, userID int64, delta int64) (int64, error) {
	key := fmt.Sprintf(KeyBalance, userID)

	balance, err := addBalanceScript.Run(ctx, s.client, []string{key}, delta).Int64()
	if err != nil {
		return 0, storeErr("add balance", err)
	}

	return balance, nil
}

func (s *RedisService) DebitIfSufficient(ctx context.Context, userID int64, amount int64) (int64, error) {
	key := fmt.Sprintf(KeyBalance, userID)

	balance, err := debitScript.Run(ctx, s.client, []string{key}, amount).Int64()
	if err != nil {
		return 0, storeErr("debit balance", err)
	}
	if balance < 0 {
		return 0, models.E(models.KindInsufficientFunds, "balance below %d", amount)
	}

	return balance, nil
}

// NextNonce allocates a strictly increasing per-user bet nonce. INCR keeps
// it race-free for concurrent bets from the same user.
func (s *RedisService) NextNonce(ctx context.Context, userID int64) (int64, error) {
	key := fmt.Sprintf(KeyUserNonce, userID)

	nonce, err := s.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, storeErr("next nonce", err)
	}

	return nonce, nil
}

// CurrentNonce reads the last allocated nonce without consuming one.
func (s *RedisService) CurrentNonce(ctx context.Context, userID int64) (int64, error) {
	key := fmt.Sprintf(KeyUserNonce, userID)

	nonce, err := s.client.Get(ctx, key).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, storeErr("current nonce", err)
	}

	return nonce, nil
}

// --- idempotency marker ---

// MarkOrderProcessed records that a gateway order id has been handled.
// Returns false when the id was already marked. The TTL must outlive the
// gateway's retry window or duplicate crediting becomes possible.
func (s *RedisService) MarkOrderProcessed(ctx context.Context, orderID string) (bool, error) {
	key := fmt.Sprintf(KeyProcessedOrder, orderID)

	first, err := s.client.SetNX(ctx, key, time.Now().Unix(), s.processedOrderTTL).Result()
	if err != nil {
		return false, storeErr("mark order", err)
	}

	return first, nil
}

// --- bet records ---

func (s *RedisService) SaveBet(ctx context.Context, bet *models.Bet) error {
	betKey := fmt.Sprintf(KeyBet, bet.ID)

	data, err := json.Marshal(bet)
	if err != nil {
		return fmt.Errorf("failed to marshal bet: %v", err)
	}

	if err := s.client.Set(ctx, betKey, data, TTLBet).Err(); err != nil {
		return storeErr("save bet", err)
	}

	userBetsKey := fmt.Sprintf(KeyUserBets, bet.UserID)
	if err := s.client.ZAdd(ctx, userBetsKey, redis.Z{
		Score:  float64(bet.CreatedAt.UnixNano()),
		Member: bet.ID,
	}).Err(); err != nil {
		return storeErr("index bet", err)
	}

	s.client.ZRemRangeByRank(ctx, userBetsKey, 0, -(HistoryLimit + 1))

	return nil
}

func (s *RedisService) ListBets(ctx context.Context, userID int64, limit int64) ([]*models.Bet, error) {
	if limit <= 0 || limit > HistoryLimit {
		limit = 50
	}

	userBetsKey := fmt.Sprintf(KeyUserBets, userID)

	betIDs, err := s.client.ZRevRange(ctx, userBetsKey, 0, limit-1).Result()
	if err != nil {
		return nil, storeErr("list bets", err)
	}

	var bets []*models.Bet
	for _, betID := range betIDs {
		data, err := s.client.Get(ctx, fmt.Sprintf(KeyBet, betID)).Result()
		if err != nil {
			continue
		}

		var bet models.Bet
		if err := json.Unmarshal([]byte(data), &bet); err != nil {
			continue
		}

		bets = append(bets, &bet)
	}

	return bets, nil
}

// --- deposit / withdraw records ---

// resolveScript flips a pending request to its terminal status exactly once.
// The decode/mutate/encode runs inside Redis, so two concurrent resolutions
// cannot both observe "pending".
var resolveScript = redis.NewScript(`
	local data = redis.call("GET", KEYS[1])
	if not data then
		return -1
	end
	local req = cjson.decode(data)
	if req.status ~= "pending" then
		return -2
	end
	req.status = ARGV[1]
	req.resolved_at = ARGV[2]
	local updated = cjson.encode(req)
	redis.call("SET", KEYS[1], updated)
	return updated
`)

func (s *RedisService) resolveRequest(ctx context.Context, key string, to models.RequestStatus) (string, error) {
	res, err := resolveScript.Run(ctx, s.client, []string{key}, string(to), time.Now().UTC().Format(time.RFC3339Nano)).Result()
	if err != nil {
		return "", storeErr("resolve request", err)
	}

	switch v := res.(type) {
	case int64:
		if v == -1 {
			return "", models.E(models.KindNotFound, "request not found")
		}
		return "", models.E(models.KindConflict, "request already resolved")
	case string:
		return v, nil
	default:
		return "", models.E(models.KindTransientStore, "unexpected resolve reply %T", res)
	}
}

func (s *RedisService) SaveDeposit(ctx context.Context, req *models.DepositRequest) error {
	data, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to marshal deposit: %v", err)
	}

	if err := s.client.Set(ctx, fmt.Sprintf(KeyDeposit, req.ID), data, 0).Err(); err != nil {
		return storeErr("save deposit", err)
	}

	userKey := fmt.Sprintf(KeyUserDeposits, req.UserID)
	if err := s.client.ZAdd(ctx, userKey, redis.Z{
		Score:  float64(req.CreatedAt.UnixNano()),
		Member: req.ID,
	}).Err(); err != nil {
		return storeErr("index deposit", err)
	}

	s.client.ZRemRangeByRank(ctx, userKey, 0, -(HistoryLimit + 1))

	return nil
}

func (s *RedisService) GetDeposit(ctx context.Context, id string) (*models.DepositRequest, error) {
	data, err := s.client.Get(ctx, fmt.Sprintf(KeyDeposit, id)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, models.E(models.KindNotFound, "deposit %s not found", id)
	}
	if err != nil {
		return nil, storeErr("get deposit", err)
	}

	var req models.DepositRequest
	if err := json.Unmarshal([]byte(data), &req); err != nil {
		return nil, fmt.Errorf("failed to unmarshal deposit: %v", err)
	}

	return &req, nil
}

func (s *RedisService) ResolveDeposit(ctx context.Context, id string, to models.RequestStatus) (*models.DepositRequest, error) {
	data, err := s.resolveRequest(ctx, fmt.Sprintf(KeyDeposit, id), to)
	if err != nil {
		return nil, err
	}

	var req models.DepositRequest
	if err := json.Unmarshal([]byte(data), &req); err != nil {
		return nil, fmt.Errorf("failed to unmarshal deposit: %v", err)
	}

	return &req, nil
}

func (s *RedisService) ListDeposits(ctx context.Context, userID int64, limit int64) ([]*models.DepositRequest, error) {
	if limit <= 0 || limit > HistoryLimit {
		limit = 50
	}

	ids, err := s.client.ZRevRange(ctx, fmt.Sprintf(KeyUserDeposits, userID), 0, limit-1).Result()
	if err != nil {
		return nil, storeErr("list deposits", err)
	}

	var requests []*models.DepositRequest
	for _, id := range ids {
		req, err := s.GetDeposit(ctx, id)
		if err != nil {
			continue
		}
		requests = append(requests, req)
	}

	return requests, nil
}

func (s *RedisService) SaveWithdraw(ctx context.Context, req *models.WithdrawRequest) error {
	data, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to marshal withdraw: %v", err)
	}

	if err := s.client.Set(ctx, fmt.Sprintf(KeyWithdraw, req.ID), data, 0).Err(); err != nil {
		return storeErr("save withdraw", err)
	}

	userKey := fmt.Sprintf(KeyUserWithdraws, req.UserID)
	if err := s.client.ZAdd(ctx, userKey, redis.Z{
		Score:  float64(req.CreatedAt.UnixNano()),
		Member: req.ID,
	}).Err(); err != nil {
		return storeErr("index withdraw", err)
	}

	s.client.ZRemRangeByRank(ctx, userKey, 0, -(HistoryLimit + 1))

	return nil
}

func (s *RedisService) GetWithdraw(ctx context.Context, id string) (*models.WithdrawRequest, error) {
	data, err := s.client.Get(ctx, fmt.Sprintf(KeyWithdraw, id)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, models.E(models.KindNotFound, "withdraw %s not found", id)
	}
	if err != nil {
		return nil, storeErr("get withdraw", err)
	}

	var req models.WithdrawRequest
	if err := json.Unmarshal([]byte(data), &req); err != nil {
		return nil, fmt.Errorf("failed to unmarshal withdraw: %v", err)
	}

	return &req, nil
}

func (s *RedisService) ResolveWithdraw(ctx context.Context, id string, to models.RequestStatus) (*models.WithdrawRequest, error) {
	data, err := s.resolveRequest(ctx, fmt.Sprintf(KeyWithdraw, id), to)
	if err != nil {
		return nil, err
	}

	var req models.WithdrawRequest
	if err := json.Unmarshal([]byte(data), &req); err != nil {
		return nil, fmt.Errorf("failed to unmarshal withdraw: %v", err)
	}

	return &req, nil
}

func (s *RedisService) ListWithdraws(ctx context.Context, userID int64, limit int64) ([]*models.WithdrawRequest, error) {
	if limit <= 0 || limit > HistoryLimit {
		limit = 50
	}

	ids, err := s.client.ZRevRange(ctx, fmt.Sprintf(KeyUserWithdraws, userID), 0, limit-1).Result()
	if err != nil {
		return nil, storeErr("list withdraws", err)
	}

	var requests []*models.WithdrawRequest
	for _, id := range ids {
		req, err := s.GetWithdraw(ctx, id)
		if err != nil {
			continue
		}
		requests = append(requests, req)
	}

	return requests, nil
}

// --- rate limiting ---

func (s *RedisService) CheckRateLimit(ctx context.Context, userID int64, action string, limit int, window time.Duration) (bool, error) {
	key := fmt.Sprintf(KeyRateLimit, userID, action)

	count, err := s.client.Incr(ctx, key).Result()
	if err != nil {
		return false, storeErr("rate limit", err)
	}

	if count == 1 {
		s.client.Expire(ctx, key, window)
	}

	return count <= int64(limit), nil
}
