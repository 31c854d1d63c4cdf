package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"dice-miniapp-backend/internal/models"
	"dice-miniapp-backend/internal/services"
)

// GatewayHandler is the callback endpoint the payment gateway retries
// against. The response body on success is the fixed literal "OK" the
// gateway expects, including on idempotent replays.
type GatewayHandler struct {
	depositService *services.DepositService
	logger         zerolog.Logger
}

func NewGatewayHandler(depositService *services.DepositService, logger zerolog.Logger) *GatewayHandler {
	return &GatewayHandler{
		depositService: depositService,
		logger:         logger,
	}
}

func (h *GatewayHandler) HandleCallback(c *gin.Context) {
	raw, err := parseCallbackPayload(c)
	if err != nil {
		respondError(c, models.E(models.KindValidation, "unreadable callback payload"))
		return
	}

	cb, err := models.NormalizeGatewayCallback(raw)
	if err != nil {
		respondError(c, err)
		return
	}

	if err := h.depositService.HandleGatewayCallback(c.Request.Context(), cb); err != nil {
		h.logger.Warn().Err(err).Str("order_id", cb.OrderID).Msg("gateway callback rejected")
		respondError(c, err)
		return
	}

	c.String(http.StatusOK, "OK")
}

// parseCallbackPayload accepts either the form-encoded or the JSON variant
// of the gateway API and flattens both into one raw map for normalization.
func parseCallbackPayload(c *gin.Context) (map[string]any, error) {
	contentType := c.ContentType()

	if strings.Contains(contentType, "json") {
		var raw map[string]any
		if err := c.ShouldBindJSON(&raw); err != nil {
			return nil, err
		}
		return raw, nil
	}

	if err := c.Request.ParseForm(); err != nil {
		return nil, err
	}

	raw := make(map[string]any, len(c.Request.PostForm))
	for key := range c.Request.PostForm {
		raw[key] = c.Request.PostForm.Get(key)
	}
	return raw, nil
}
