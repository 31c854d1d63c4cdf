package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"dice-miniapp-backend/internal/models"
	"dice-miniapp-backend/internal/services"
)

type UserHandler struct {
	redisService *services.RedisService
}

func NewUserHandler(redisService *services.RedisService) *UserHandler {
	return &UserHandler{redisService: redisService}
}

func (h *UserHandler) GetCurrentUser(c *gin.Context) {
	userID := c.GetInt64("user_id")
	sessionID := c.GetString("session_id")

	session, err := h.redisService.GetUserSession(c.Request.Context(), userID, sessionID)
	if err != nil {
		respondError(c, models.E(models.KindAuthentication, "session expired or invalid"))
		return
	}

	balance, err := h.redisService.GetBalance(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user": session.TelegramUser,
		"session": gin.H{
			"session_id":    session.SessionID,
			"created_at":    session.CreatedAt,
			"last_accessed": session.LastAccessed,
		},
		"balance": balance,
	})
}

func (h *UserHandler) Logout(c *gin.Context) {
	userID := c.GetInt64("user_id")
	sessionID := c.GetString("session_id")

	if err := h.redisService.DeleteUserSession(c.Request.Context(), userID, sessionID); err != nil {
		respondError(c, models.E(models.KindTransientStore, "failed to delete session"))
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Successfully logged out"})
}
