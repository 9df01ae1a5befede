package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/oakcrestpto/ptoportal/internal/payments"
)

func PaymentGatewayMiddleware(gateway payments.Gateway) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("payment_gateway", gateway)
		c.Next()
	}
}

func GetPaymentGateway(c *gin.Context) payments.Gateway {
	gateway, exists := c.Get("payment_gateway")
	if !exists {
		return nil
	}
	return gateway.(payments.Gateway)
}
