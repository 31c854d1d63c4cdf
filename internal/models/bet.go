package models

import "time"

type Direction string

const (
	DirectionUnder Direction = "under"
	DirectionOver  Direction = "over"
)

const (
	MinStake  int64 = 1
	MaxStake  int64 = 10000
	MinChance int64 = 1
	MaxChance int64 = 95
)

// Bet is immutable once recorded. Payout is fully determined by stake,
// chance, direction and the roll value.
type Bet struct {
	ID        string    `json:"id" redis:"id"`
	UserID    int64     `json:"user_id" redis:"user_id"`
	Stake     int64     `json:"stake" redis:"stake"`
	Chance    int64     `json:"chance" redis:"chance"`
	Direction Direction `json:"direction" redis:"direction"`

	Nonce      int64   `json:"nonce" redis:"nonce"`
	Roll       int64   `json:"roll" redis:"roll"`
	Win        bool    `json:"win" redis:"win"`
	Payout     int64   `json:"payout" redis:"payout"`
	Multiplier float64 `json:"multiplier" redis:"multiplier"`

	ClientSeed     string `json:"client_seed" redis:"client_seed"`
	ServerSeedHash string `json:"server_seed_hash" redis:"server_seed_hash"`
	ProofHash      string `json:"proof_hash" redis:"proof_hash"`

	CreatedAt time.Time `json:"created_at" redis:"created_at"`
}

type BetRequest struct {
	Stake     int64     `json:"stake"`
	Chance    int64     `json:"chance"`
	Direction Direction `json:"direction"`
}

// Validate checks everything that does not need the balance. Order matters:
// stake first, then chance, then direction.
func (r *BetRequest) Validate() error {
	if r.Stake < MinStake || r.Stake > MaxStake {
		return E(KindValidation, "stake must be between %d and %d", MinStake, MaxStake)
	}
	if r.Chance < MinChance || r.Chance > MaxChance {
		return E(KindValidation, "win chance must be between %d and %d percent", MinChance, MaxChance)
	}
	if r.Direction != DirectionUnder && r.Direction != DirectionOver {
		return E(KindValidation, "direction must be %q or %q", DirectionUnder, DirectionOver)
	}
	return nil
}

type BetResult struct {
	Bet        *Bet  `json:"bet"`
	NewBalance int64 `json:"new_balance"`
}

type VerificationData struct {
	ClientSeed     string `json:"client_seed"`
	ServerSeedHash string `json:"server_seed_hash"`
	CurrentNonce   int64  `json:"current_nonce"`
}

type VerifyRequest struct {
	ServerSeed string `json:"server_seed" binding:"required"`
	ClientSeed string `json:"client_seed" binding:"required"`
	Nonce      int64  `json:"nonce"`
}
