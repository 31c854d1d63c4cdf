package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"dice-miniapp-backend/internal/models"
	"dice-miniapp-backend/internal/services"
)

type BetHandler struct {
	betService   *services.BetService
	redisService *services.RedisService
}

func NewBetHandler(betService *services.BetService, redisService *services.RedisService) *BetHandler {
	return &BetHandler{
		betService:   betService,
		redisService: redisService,
	}
}

func (h *BetHandler) PlaceBet(c *gin.Context) {
	userID := c.GetInt64("user_id")

	var req models.BetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, models.E(models.KindValidation, "invalid request body"))
		return
	}

	// Rate limit: 30 bets per minute
	allowed, err := h.redisService.CheckRateLimit(c.Request.Context(), userID, "bet",
		services.DefaultRateLimitBets, time.Minute)
	if err != nil {
		respondError(c, err)
		return
	}
	if !allowed {
		c.JSON(http.StatusTooManyRequests, gin.H{"error": gin.H{
			"kind":    "rate_limited",
			"message": "too many bets, slow down",
		}})
		return
	}

	result, err := h.betService.PlaceBet(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"new_balance": result.NewBalance,
		"bet":         result.Bet,
	})
}

func (h *BetHandler) GetBalance(c *gin.Context) {
	userID := c.GetInt64("user_id")

	balance, err := h.redisService.GetBalance(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.BalanceResponse{UserID: userID, Balance: balance})
}

func (h *BetHandler) GetHistory(c *gin.Context) {
	userID := c.GetInt64("user_id")
	limit, _ := strconv.ParseInt(c.DefaultQuery("limit", "50"), 10, 64)

	bets, err := h.betService.History(c.Request.Context(), userID, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"bets": bets})
}

// GetCommitment is public and unauthenticated: anyone may fetch the current
// server seed commitment at any time.
func (h *BetHandler) GetCommitment(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"server_seed_hash": h.betService.Commitment()})
}

func (h *BetHandler) GetVerificationData(c *gin.Context) {
	userID := c.GetInt64("user_id")

	data, err := h.betService.VerificationData(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, data)
}

// VerifyRoll recomputes a roll from a revealed server seed so players can
// audit a settled bet client-side and against the old commitment.
func (h *BetHandler) VerifyRoll(c *gin.Context) {
	var req models.VerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, models.E(models.KindValidation, "invalid request body"))
		return
	}

	roll, digest, commitment := h.betService.VerifyRoll(req.ServerSeed, req.ClientSeed, req.Nonce)

	c.JSON(http.StatusOK, gin.H{
		"roll":             roll,
		"proof_hash":       digest,
		"server_seed_hash": commitment,
	})
}
