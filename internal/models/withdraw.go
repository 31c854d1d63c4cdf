package models

import "time"

// WithdrawRequest reserves its amount out of the balance at creation time.
// Approval is bookkeeping only; decline or cancellation refunds the exact
// reserved amount exactly once.
type WithdrawRequest struct {
	ID            string        `json:"id" redis:"id"`
	UserID        int64         `json:"user_id" redis:"user_id"`
	Amount        int64         `json:"amount" redis:"amount"`
	PayoutDetails string        `json:"payout_details" redis:"payout_details"`
	Status        RequestStatus `json:"status" redis:"status"`

	CreatedAt  time.Time  `json:"created_at" redis:"created_at"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty" redis:"resolved_at"`
}

type CreateWithdrawRequest struct {
	Amount        int64  `json:"amount"`
	PayoutDetails string `json:"payout_details"`
}

func (r *CreateWithdrawRequest) Validate() error {
	if r.Amount < MinRequestAmount || r.Amount > MaxRequestAmount {
		return E(KindValidation, "withdraw amount must be between %d and %d", MinRequestAmount, MaxRequestAmount)
	}
	if r.PayoutDetails == "" {
		return E(KindValidation, "payout details are required")
	}
	return nil
}
