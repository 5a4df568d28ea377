package messages

import (
	"Homemade/controllers"
	"Homemade/middleware"
	"Homemade/pkg/messaging"

	"github.com/gin-gonic/gin"
)

// Register registers direct-message routes (protected). Sends are rate
// limited per user; reads are polled by clients and are not.
func Register(g *gin.RouterGroup, svc *messaging.Service, limiter *middleware.RateLimiter) {
	send := []gin.HandlerFunc{controllers.SendMessage(svc)}
	if limiter != nil {
		send = append([]gin.HandlerFunc{limiter.Middleware()}, send...)
	}
	g.POST("/messages", send...)
	g.GET("/messages/:userId/:otherId", controllers.GetConversation(svc))
}
