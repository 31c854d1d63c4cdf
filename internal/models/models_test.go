package models_test

import (
	"errors"
	"net/http"
	"strings"
	"testing"

	"dice-miniapp-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBetRequestValidation(t *testing.T) {
	valid := &models.BetRequest{Stake: 100, Chance: 50, Direction: models.DirectionUnder}
	assert.NoError(t, valid.Validate())

	cases := []models.BetRequest{
		{Stake: 0, Chance: 50, Direction: models.DirectionUnder},
		{Stake: 10001, Chance: 50, Direction: models.DirectionOver},
		{Stake: 100, Chance: 0, Direction: models.DirectionUnder},
		{Stake: 100, Chance: 96, Direction: models.DirectionUnder},
		{Stake: 100, Chance: 50, Direction: "diagonal"},
	}
	for _, req := range cases {
		err := req.Validate()
		require.Error(t, err)
		assert.ErrorIs(t, err, models.ErrValidation)
	}
}

func TestErrorKindMatching(t *testing.T) {
	err := models.E(models.KindConflict, "deposit %s already resolved", "dep_1")

	assert.True(t, errors.Is(err, models.ErrConflict))
	assert.False(t, errors.Is(err, models.ErrNotFound))
	assert.True(t, strings.Contains(err.Error(), "dep_1"))
}

func TestErrorHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, models.HTTPStatus(models.ErrValidation))
	assert.Equal(t, http.StatusUnauthorized, models.HTTPStatus(models.ErrAuthentication))
	assert.Equal(t, http.StatusForbidden, models.HTTPStatus(models.ErrAuthorization))
	assert.Equal(t, http.StatusNotFound, models.HTTPStatus(models.ErrNotFound))
	assert.Equal(t, http.StatusConflict, models.HTTPStatus(models.ErrConflict))
	assert.Equal(t, http.StatusPaymentRequired, models.HTTPStatus(models.ErrInsufficientFunds))
	assert.Equal(t, http.StatusInternalServerError, models.HTTPStatus(models.ErrConfiguration))
	assert.Equal(t, http.StatusServiceUnavailable, models.HTTPStatus(models.ErrTransientStore))
	assert.Equal(t, http.StatusServiceUnavailable, models.HTTPStatus(errors.New("raw")))
}

func TestNormalizeGatewayCallbackAliases(t *testing.T) {
	variants := []map[string]any{
		{"merchant_id": "m1", "order_id": "dep_1", "amount": "500", "sign": "abc"},
		{"merchantId": "m1", "orderId": "dep_1", "sum": float64(500), "signature": "abc"},
		{"m_id": "m1", "merchant_order_id": "dep_1", "value": "500", "sig": "abc"},
	}

	for i, raw := range variants {
		cb, err := models.NormalizeGatewayCallback(raw)
		require.NoError(t, err, "variant %d", i)
		assert.Equal(t, "m1", cb.MerchantID)
		assert.Equal(t, "dep_1", cb.OrderID)
		assert.Equal(t, int64(500), cb.Amount)
		assert.Equal(t, "abc", cb.Signature)
	}
}

func TestNormalizeGatewayCallbackRejectsMalformed(t *testing.T) {
	cases := []map[string]any{
		{"order_id": "dep_1", "amount": "500", "sign": "abc"},              // no merchant
		{"merchant_id": "m1", "amount": "500", "sign": "abc"},              // no order
		{"merchant_id": "m1", "order_id": "dep_1", "sign": "abc"},          // no amount
		{"merchant_id": "m1", "order_id": "dep_1", "amount": "500"},        // no signature
		{"merchant_id": "m1", "order_id": "dep_1", "amount": "5.5", "sign": "abc"},
		{"merchant_id": "m1", "order_id": "dep_1", "amount": "-10", "sign": "abc"},
		{"merchant_id": "m1", "order_id": "dep_1", "amount": float64(10.5), "sign": "abc"},
		{"merchant_id": "m1", "order_id": "dep_1", "amount": "9999999999999999", "sign": "abc"},
	}

	for i, raw := range cases {
		_, err := models.NormalizeGatewayCallback(raw)
		require.Error(t, err, "case %d", i)
		assert.ErrorIs(t, err, models.ErrValidation)
	}
}

func TestCreateRequestValidation(t *testing.T) {
	assert.NoError(t, (&models.CreateDepositRequest{Amount: 1}).Validate())
	assert.NoError(t, (&models.CreateDepositRequest{Amount: models.MaxRequestAmount}).Validate())
	assert.Error(t, (&models.CreateDepositRequest{Amount: 0}).Validate())
	assert.Error(t, (&models.CreateDepositRequest{Amount: -3}).Validate())
	assert.Error(t, (&models.CreateDepositRequest{Amount: models.MaxRequestAmount + 1}).Validate())

	assert.NoError(t, (&models.CreateWithdrawRequest{Amount: 10, PayoutDetails: "x"}).Validate())
	assert.Error(t, (&models.CreateWithdrawRequest{Amount: 10}).Validate())
	assert.Error(t, (&models.CreateWithdrawRequest{Amount: 0, PayoutDetails: "x"}).Validate())
	assert.Error(t, (&models.CreateWithdrawRequest{Amount: models.MaxRequestAmount + 1, PayoutDetails: "x"}).Validate())
}

func TestGeneratedIDPrefixes(t *testing.T) {
	assert.True(t, strings.HasPrefix(models.GenerateBetID(), "bet_"))
	assert.True(t, strings.HasPrefix(models.GenerateDepositID(), "dep_"))
	assert.True(t, strings.HasPrefix(models.GenerateWithdrawID(), "wd_"))
}
