package models

import "time"

type RequestStatus string

const (
	StatusPending  RequestStatus = "pending"
	StatusApproved RequestStatus = "approved"
	StatusDeclined RequestStatus = "declined"
)

type DepositMethod string

const (
	DepositMethodManual  DepositMethod = "manual"
	DepositMethodGateway DepositMethod = "gateway"
)

// DepositRequest transitions pending->approved or pending->declined exactly
// once. Amount never changes after creation.
type DepositRequest struct {
	ID     string        `json:"id" redis:"id"`
	UserID int64         `json:"user_id" redis:"user_id"`
	Amount int64         `json:"amount" redis:"amount"`
	Method DepositMethod `json:"method" redis:"method"`
	Status RequestStatus `json:"status" redis:"status"`

	Metadata map[string]string `json:"metadata,omitempty" redis:"metadata"`

	CreatedAt  time.Time  `json:"created_at" redis:"created_at"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty" redis:"resolved_at"`
}

// Deposit and withdraw amounts share one bound. Records round-trip through
// store-side scripts that represent numbers as doubles, so amounts must stay
// far inside the range doubles carry exactly.
const (
	MinRequestAmount int64 = 1
	MaxRequestAmount int64 = 1_000_000_000
)

type CreateDepositRequest struct {
	Amount int64 `json:"amount"`
}

func (r *CreateDepositRequest) Validate() error {
	if r.Amount < MinRequestAmount || r.Amount > MaxRequestAmount {
		return E(KindValidation, "deposit amount must be between %d and %d", MinRequestAmount, MaxRequestAmount)
	}
	return nil
}
