package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"dice-miniapp-backend/internal/models"
	"dice-miniapp-backend/internal/services"
)

// AdminHandler executes approve/decline actions authorized by a signed deep
// link rather than a login session. A single click on an admin notification
// carries the proof of intent.
type AdminHandler struct {
	depositService  *services.DepositService
	withdrawService *services.WithdrawService
	signer          *services.AdminSigner
}

func NewAdminHandler(depositService *services.DepositService, withdrawService *services.WithdrawService, signer *services.AdminSigner) *AdminHandler {
	return &AdminHandler{
		depositService:  depositService,
		withdrawService: withdrawService,
		signer:          signer,
	}
}

func (h *AdminHandler) ApproveDeposit(c *gin.Context) {
	id := c.Param("id")

	req, err := h.depositService.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	// The signature covers the stored user id and amount, not anything the
	// caller supplies, so parameters cannot be substituted under a valid
	// signature.
	if !h.signer.Verify(c.Query("sig"), services.ActionDepositApprove, id, req.UserID, req.Amount) {
		respondError(c, models.E(models.KindAuthorization, "invalid action signature"))
		return
	}

	resolved, err := h.depositService.Approve(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"deposit": resolved})
}

func (h *AdminHandler) DeclineDeposit(c *gin.Context) {
	id := c.Param("id")

	req, err := h.depositService.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	if !h.signer.Verify(c.Query("sig"), services.ActionDepositDecline, id, req.UserID, req.Amount) {
		respondError(c, models.E(models.KindAuthorization, "invalid action signature"))
		return
	}

	resolved, err := h.depositService.Decline(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"deposit": resolved})
}

func (h *AdminHandler) ApproveWithdraw(c *gin.Context) {
	id := c.Param("id")

	req, err := h.withdrawService.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	if !h.signer.Verify(c.Query("sig"), services.ActionWithdrawApprove, id, req.UserID, req.Amount) {
		respondError(c, models.E(models.KindAuthorization, "invalid action signature"))
		return
	}

	resolved, err := h.withdrawService.Approve(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"withdraw": resolved})
}

func (h *AdminHandler) DeclineWithdraw(c *gin.Context) {
	id := c.Param("id")

	req, err := h.withdrawService.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	if !h.signer.Verify(c.Query("sig"), services.ActionWithdrawDecline, id, req.UserID, req.Amount) {
		respondError(c, models.E(models.KindAuthorization, "invalid action signature"))
		return
	}

	resolved, err := h.withdrawService.Decline(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"withdraw": resolved})
}
