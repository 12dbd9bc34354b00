package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/petrovis/hemjilt_backend/models"
	"github.com/petrovis/hemjilt_backend/utils"
)

// ApiKeyMiddleware guards the external lookup with a static key checked
// against the api_keys allow-list.
func ApiKeyMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader("x-api-key")
		if key == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "API key is required"})
			c.Abort()
			return
		}

		apiKey, err := models.ValidateApiKey(c.Request.Context(), key)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or inactive API key"})
			c.Abort()
			return
		}

		c.Request = c.Request.WithContext(utils.SetApiKeyNameInContext(c.Request.Context(), apiKey.Name))
		c.Next()
	}
}
