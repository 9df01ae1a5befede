package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/oakcrestpto/ptoportal/internal/social"
)

func SocialClientsMiddleware(clients map[string]social.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("social_clients", clients)
		c.Next()
	}
}

// GetSocialClient returns the client for a platform, or nil if the platform
// is unknown.
func GetSocialClient(c *gin.Context, platform string) social.Client {
	clients, exists := c.Get("social_clients")
	if !exists {
		return nil
	}
	return clients.(map[string]social.Client)[platform]
}
