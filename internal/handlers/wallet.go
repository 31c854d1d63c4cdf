package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"dice-miniapp-backend/internal/models"
	"dice-miniapp-backend/internal/services"
)

type WalletHandler struct {
	depositService  *services.DepositService
	withdrawService *services.WithdrawService
	redirector      services.PaymentRedirector
}

func NewWalletHandler(depositService *services.DepositService, withdrawService *services.WithdrawService, redirector services.PaymentRedirector) *WalletHandler {
	return &WalletHandler{
		depositService:  depositService,
		withdrawService: withdrawService,
		redirector:      redirector,
	}
}

func (h *WalletHandler) CreateDeposit(c *gin.Context) {
	userID := c.GetInt64("user_id")

	var req models.CreateDepositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, models.E(models.KindValidation, "invalid request body"))
		return
	}
	if err := req.Validate(); err != nil {
		respondError(c, err)
		return
	}

	deposit, err := h.depositService.CreateManual(c.Request.Context(), userID, req.Amount)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"deposit": deposit})
}

// CreateGatewayDeposit registers the intent first, then hands back the
// checkout link. The deposit must exist before the redirect is built.
func (h *WalletHandler) CreateGatewayDeposit(c *gin.Context) {
	userID := c.GetInt64("user_id")

	var req models.CreateDepositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, models.E(models.KindValidation, "invalid request body"))
		return
	}
	if err := req.Validate(); err != nil {
		respondError(c, err)
		return
	}

	deposit, err := h.depositService.CreateGatewayIntent(c.Request.Context(), userID, req.Amount)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"deposit":      deposit,
		"redirect_url": h.redirector.BuildPaymentRedirect(deposit.ID, deposit.Amount),
	})
}

func (h *WalletHandler) ListDeposits(c *gin.Context) {
	userID := c.GetInt64("user_id")
	limit, _ := strconv.ParseInt(c.DefaultQuery("limit", "50"), 10, 64)

	deposits, err := h.depositService.History(c.Request.Context(), userID, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"deposits": deposits})
}

func (h *WalletHandler) CreateWithdraw(c *gin.Context) {
	userID := c.GetInt64("user_id")

	var req models.CreateWithdrawRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, models.E(models.KindValidation, "invalid request body"))
		return
	}

	withdraw, err := h.withdrawService.Create(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"withdraw": withdraw})
}

func (h *WalletHandler) CancelWithdraw(c *gin.Context) {
	userID := c.GetInt64("user_id")
	id := c.Param("id")

	withdraw, err := h.withdrawService.Cancel(c.Request.Context(), userID, id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"withdraw": withdraw})
}

func (h *WalletHandler) ListWithdraws(c *gin.Context) {
	userID := c.GetInt64("user_id")
	limit, _ := strconv.ParseInt(c.DefaultQuery("limit", "50"), 10, 64)

	withdraws, err := h.withdrawService.History(c.Request.Context(), userID, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"withdraws": withdraws})
}
