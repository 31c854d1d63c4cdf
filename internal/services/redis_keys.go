package services

import "time"

const (
	KeyUserSession    = "user:%d:session:%s"
	KeyBalance        = "balance:%d"
	KeyUserNonce      = "user:%d:nonce"
	KeyBet            = "bet:%s"
	KeyUserBets       = "user:%d:bets"
	KeyDeposit        = "deposit:%s"
	KeyUserDeposits   = "user:%d:deposits"
	KeyWithdraw       = "withdraw:%s"
	KeyUserWithdraws  = "user:%d:withdraws"
	KeyProcessedOrder = "gateway:order:%s"
	KeyRateLimit      = "ratelimit:%d:%s"

	TTLUserSession = 24 * time.Hour
	TTLBet         = 30 * 24 * time.Hour // 30 days of bet history

	// Per-user history indexes keep the most recent entries only.
	HistoryLimit = 100

	DefaultRateLimitBets = 30 // max 30 bets per minute
)
