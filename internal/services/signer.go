package services

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// Admin action names, part of the signed payload so a signature for one
// action cannot authorize another.
const (
	ActionDepositApprove  = "deposit_approve"
	ActionDepositDecline  = "deposit_decline"
	ActionWithdrawApprove = "withdraw_approve"
	ActionWithdrawDecline = "withdraw_decline"
)

func signPayload(secret string, parts ...string) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(h.Sum(nil))
}

func verifyPayload(secret, signature string, parts ...string) bool {
	expected := signPayload(secret, parts...)
	return hmac.Equal([]byte(expected), []byte(signature))
}

// AdminSigner produces tamper-evident tokens for admin deep links. The
// signature covers every field that influences the resulting mutation:
// action, request id, user id and amount. Substituting any of them
// invalidates the token.
type AdminSigner struct {
	secret string
}

func NewAdminSigner(secret string) *AdminSigner {
	return &AdminSigner{secret: secret}
}

func (s *AdminSigner) Sign(action, requestID string, userID, amount int64) string {
	return signPayload(s.secret, action, requestID,
		fmt.Sprintf("%d", userID), fmt.Sprintf("%d", amount))
}

// Verify reports only pass/fail; it never tells which field mismatched.
func (s *AdminSigner) Verify(signature, action, requestID string, userID, amount int64) bool {
	return verifyPayload(s.secret, signature, action, requestID,
		fmt.Sprintf("%d", userID), fmt.Sprintf("%d", amount))
}

// GatewaySigner authenticates payment gateway callbacks with the shared
// merchant secret over (merchant id, amount, order id).
type GatewaySigner struct {
	secret string
}

func NewGatewaySigner(secret string) *GatewaySigner {
	return &GatewaySigner{secret: secret}
}

func (s *GatewaySigner) Sign(merchantID string, amount int64, orderID string) string {
	return signPayload(s.secret, merchantID, fmt.Sprintf("%d", amount), orderID)
}

func (s *GatewaySigner) Verify(signature, merchantID string, amount int64, orderID string) bool {
	return verifyPayload(s.secret, signature, merchantID, fmt.Sprintf("%d", amount), orderID)
}
