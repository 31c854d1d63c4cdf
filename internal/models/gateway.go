package models

import (
	"math"
	"strconv"
)

// GatewayCallback is the canonical shape of a payment gateway notification
// after field-name normalization. Signature verification runs against these
// fields only.
type GatewayCallback struct {
	MerchantID string
	OrderID    string
	Amount     int64
	Signature  string
}

// Gateway API variants name the same fields differently. The aliases are
// checked in order; the first present one wins.
var gatewayFieldAliases = map[string][]string{
	"merchant":  {"merchant_id", "merchantId", "m_id", "merchant"},
	"order":     {"order_id", "orderId", "merchant_order_id", "order"},
	"amount":    {"amount", "sum", "value"},
	"signature": {"sign", "signature", "sig"},
}

// NormalizeGatewayCallback maps a raw form/JSON payload onto GatewayCallback.
// Missing required fields after normalization are a validation error, not a
// silent fallback.
func NormalizeGatewayCallback(raw map[string]any) (*GatewayCallback, error) {
	merchant, ok := lookupString(raw, gatewayFieldAliases["merchant"])
	if !ok {
		return nil, E(KindValidation, "callback missing merchant id")
	}

	order, ok := lookupString(raw, gatewayFieldAliases["order"])
	if !ok {
		return nil, E(KindValidation, "callback missing order id")
	}

	amount, ok := lookupAmount(raw, gatewayFieldAliases["amount"])
	if !ok {
		return nil, E(KindValidation, "callback missing or malformed amount")
	}

	signature, ok := lookupString(raw, gatewayFieldAliases["signature"])
	if !ok {
		return nil, E(KindValidation, "callback missing signature")
	}

	return &GatewayCallback{
		MerchantID: merchant,
		OrderID:    order,
		Amount:     amount,
		Signature:  signature,
	}, nil
}

func lookupString(raw map[string]any, aliases []string) (string, bool) {
	for _, key := range aliases {
		v, ok := raw[key]
		if !ok {
			continue
		}
		s, ok := v.(string)
		if !ok || s == "" {
			continue
		}
		return s, true
	}
	return "", false
}

func lookupAmount(raw map[string]any, aliases []string) (int64, bool) {
	for _, key := range aliases {
		v, ok := raw[key]
		if !ok {
			continue
		}
		switch n := v.(type) {
		case string:
			parsed, err := strconv.ParseInt(n, 10, 64)
			if err != nil || parsed < MinRequestAmount || parsed > MaxRequestAmount {
				continue
			}
			return parsed, true
		case float64:
			if n != math.Trunc(n) {
				continue
			}
			if v := int64(n); v >= MinRequestAmount && v <= MaxRequestAmount {
				return v, true
			}
		case int64:
			if n < MinRequestAmount || n > MaxRequestAmount {
				continue
			}
			return n, true
		}
	}
	return 0, false
}
