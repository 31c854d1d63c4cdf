package services

import (
	"fmt"
	"net/url"

	"dice-miniapp-backend/internal/config"
)

// PaymentRedirector builds the outbound checkout link for a gateway deposit
// intent. The deposit request id rides along as the external order id so the
// later callback can be correlated back.
type PaymentRedirector interface {
	BuildPaymentRedirect(depositID string, amount int64) string
}

type gatewayRedirector struct {
	checkoutURL string
	merchantID  string
	signer      *GatewaySigner
}

func NewGatewayRedirector(cfg *config.Config, signer *GatewaySigner) PaymentRedirector {
	return &gatewayRedirector{
		checkoutURL: cfg.GatewayCheckoutURL,
		merchantID:  cfg.GatewayMerchantID,
		signer:      signer,
	}
}

func (r *gatewayRedirector) BuildPaymentRedirect(depositID string, amount int64) string {
	q := url.Values{}
	q.Set("m", r.merchantID)
	q.Set("oa", fmt.Sprintf("%d", amount))
	q.Set("o", depositID)
	q.Set("s", r.signer.Sign(r.merchantID, amount, depositID))

	return r.checkoutURL + "?" + q.Encode()
}
