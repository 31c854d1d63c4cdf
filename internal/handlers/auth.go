package handlers

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"dice-miniapp-backend/internal/models"
	"dice-miniapp-backend/internal/services"
)

type AuthHandler struct {
	redisService *services.RedisService
	jwtService   *services.JWTService
	botToken     string
	logger       zerolog.Logger
}

func NewAuthHandler(redisService *services.RedisService, jwtService *services.JWTService, botToken string, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		redisService: redisService,
		jwtService:   jwtService,
		botToken:     botToken,
		logger:       logger,
	}
}

// Authenticate verifies Telegram WebApp initData and issues a session token.
func (h *AuthHandler) Authenticate(c *gin.Context) {
	initData := c.Query("initData")
	if initData == "" {
		respondError(c, models.E(models.KindAuthentication, "missing init data"))
		return
	}

	user, err := verifyInitData(initData, h.botToken)
	if err != nil {
		respondError(c, models.E(models.KindAuthentication, "authentication failed"))
		return
	}

	session := &models.UserSession{
		ID:           user.ID,
		SessionID:    uuid.New().String(),
		TelegramUser: user,
		CreatedAt:    time.Now(),
		LastAccessed: time.Now(),
	}

	if err := h.redisService.StoreUserSession(c.Request.Context(), session); err != nil {
		respondError(c, models.E(models.KindTransientStore, "failed to store session"))
		return
	}

	token, err := h.jwtService.GenerateToken(user.ID, session.SessionID)
	if err != nil {
		h.logger.Error().Err(err).Int64("user_id", user.ID).Msg("failed to sign session token")
		respondError(c, models.E(models.KindConfiguration, "failed to issue token"))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user":  user,
	})
}

// verifyInitData implements the Telegram WebApp check: HMAC over the sorted
// key=value lines, keyed with HMAC("WebAppData", botToken).
func verifyInitData(initData, botToken string) (*models.TelegramUser, error) {
	values, err := url.ParseQuery(initData)
	if err != nil {
		return nil, err
	}

	providedHash := values.Get("hash")
	if providedHash == "" {
		return nil, models.E(models.KindAuthentication, "missing hash")
	}
	values.Del("hash")

	var lines []string
	for key := range values {
		lines = append(lines, key+"="+values.Get(key))
	}
	sort.Strings(lines)

	secretKey := hmac.New(sha256.New, []byte("WebAppData"))
	secretKey.Write([]byte(botToken))

	mac := hmac.New(sha256.New, secretKey.Sum(nil))
	mac.Write([]byte(strings.Join(lines, "\n")))
	expected := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expected), []byte(providedHash)) {
		return nil, models.E(models.KindAuthentication, "hash mismatch")
	}

	var user models.TelegramUser
	if err := json.Unmarshal([]byte(values.Get("user")), &user); err != nil {
		return nil, err
	}
	if user.ID == 0 {
		return nil, models.E(models.KindAuthentication, "missing user id")
	}

	return &user, nil
}
