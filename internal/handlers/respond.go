package handlers

import (
	"github.com/gin-gonic/gin"

	"dice-miniapp-backend/internal/models"
)

// respondError serializes only the stable kind and message. Wrapped store
// detail never reaches the caller.
func respondError(c *gin.Context, err error) {
	e, ok := err.(*models.Error)
	if !ok {
		e = models.E(models.KindTransientStore, "temporary failure, retry")
	}

	c.JSON(models.HTTPStatus(e), gin.H{"error": e})
}
