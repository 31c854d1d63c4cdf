package handlers_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dice-miniapp-backend/internal/config"
	"dice-miniapp-backend/internal/handlers"
	"dice-miniapp-backend/internal/models"
	"dice-miniapp-backend/internal/services"
)

type stubDepositStore struct {
	mu        sync.Mutex
	balance   int64
	deposit   *models.DepositRequest
	processed map[string]bool
}

func (s *stubDepositStore) AddBalance(_ context.Context, _ int64, delta int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.balance += delta
	return s.balance, nil
}

func (s *stubDepositStore) SaveDeposit(_ context.Context, req *models.DepositRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *req
	s.deposit = &cp
	return nil
}

func (s *stubDepositStore) GetDeposit(_ context.Context, id string) (*models.DepositRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.deposit == nil || s.deposit.ID != id {
		return nil, models.E(models.KindNotFound, "deposit %s not found", id)
	}
	cp := *s.deposit
	return &cp, nil
}

func (s *stubDepositStore) ResolveDeposit(_ context.Context, id string, to models.RequestStatus) (*models.DepositRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.deposit == nil || s.deposit.ID != id {
		return nil, models.E(models.KindNotFound, "deposit %s not found", id)
	}
	if s.deposit.Status != models.StatusPending {
		return nil, models.E(models.KindConflict, "deposit already resolved")
	}
	s.deposit.Status = to
	cp := *s.deposit
	return &cp, nil
}

func (s *stubDepositStore) ListDeposits(_ context.Context, _ int64, _ int64) ([]*models.DepositRequest, error) {
	return nil, nil
}

func (s *stubDepositStore) MarkOrderProcessed(_ context.Context, orderID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.processed[orderID] {
		return false, nil
	}
	s.processed[orderID] = true
	return true, nil
}

func setupGatewayRouter(t *testing.T) (*gin.Engine, *stubDepositStore, *models.DepositRequest) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		GatewaySecret:     "gw-secret",
		GatewayMerchantID: "m1",
	}

	store := &stubDepositStore{processed: make(map[string]bool)}
	svc := services.NewDepositService(store, cfg, services.NopNotifier{}, zerolog.Nop())

	deposit, err := svc.CreateGatewayIntent(context.Background(), 42, 500)
	require.NoError(t, err)

	handler := handlers.NewGatewayHandler(svc, zerolog.Nop())

	router := gin.New()
	router.POST("/payments/callback", handler.HandleCallback)

	return router, store, deposit
}

func postForm(router *gin.Engine, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/payments/callback",
		strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestGatewayCallbackEndpoint(t *testing.T) {
	router, store, deposit := setupGatewayRouter(t)

	signer := services.NewGatewaySigner("gw-secret")
	form := url.Values{}
	form.Set("merchant_id", "m1")
	form.Set("order_id", deposit.ID)
	form.Set("amount", strconv.FormatInt(deposit.Amount, 10))
	form.Set("sign", signer.Sign("m1", deposit.Amount, deposit.ID))

	// First delivery credits and acknowledges with the fixed literal.
	w := postForm(router, form)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "OK", w.Body.String())
	assert.Equal(t, int64(500), store.balance)

	// Replays acknowledge identically without crediting again.
	for i := 0; i < 3; i++ {
		w = postForm(router, form)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "OK", w.Body.String())
	}
	assert.Equal(t, int64(500), store.balance)
}

func TestGatewayCallbackEndpointRejectsBadSignature(t *testing.T) {
	router, store, deposit := setupGatewayRouter(t)

	form := url.Values{}
	form.Set("merchant_id", "m1")
	form.Set("order_id", deposit.ID)
	form.Set("amount", "500")
	form.Set("sign", "bogus")

	w := postForm(router, form)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, int64(0), store.balance)
}

func TestGatewayCallbackEndpointJSONVariant(t *testing.T) {
	router, store, deposit := setupGatewayRouter(t)

	signer := services.NewGatewaySigner("gw-secret")
	body := `{"merchantId":"m1","orderId":"` + deposit.ID + `","sum":500,"signature":"` +
		signer.Sign("m1", 500, deposit.ID) + `"}`

	req := httptest.NewRequest(http.MethodPost, "/payments/callback", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "OK", w.Body.String())
	assert.Equal(t, int64(500), store.balance)
}

func TestGatewayCallbackEndpointMissingFields(t *testing.T) {
	router, _, _ := setupGatewayRouter(t)

	form := url.Values{}
	form.Set("merchant_id", "m1")

	w := postForm(router, form)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
