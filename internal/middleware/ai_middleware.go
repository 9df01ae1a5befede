package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/oakcrestpto/ptoportal/internal/ai"
)

func AIClientMiddleware(client *ai.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("ai_client", client)
		c.Next()
	}
}

func GetAIClient(c *gin.Context) *ai.Client {
	client, exists := c.Get("ai_client")
	if !exists {
		return nil
	}
	return client.(*ai.Client)
}
