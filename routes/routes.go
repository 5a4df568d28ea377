package routes

import (
	"Homemade/middleware"
	"Homemade/pkg/messaging"
	"Homemade/pkg/services"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	aiRoutes "Homemade/routes/ai"
	authRoutes "Homemade/routes/auth"
	marketRoutes "Homemade/routes/market"
	messageRoutes "Homemade/routes/messages"
	profileRoutes "Homemade/routes/profile"
)

// Deps are the services the handlers need besides the database.
type Deps struct {
	DB          *gorm.DB
	Messaging   *messaging.Service
	Recommender services.Recommender
	SendLimiter *middleware.RateLimiter
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "Homemade marketplace backend running"})
	})

	api := r.Group("/api")
	authRoutes.RegisterPublic(api, d.DB)
	marketRoutes.RegisterPublic(api, d.DB)
	aiRoutes.Register(api, d.Recommender)

	protected := api.Group("/")
	protected.Use(middleware.AuthMiddleware())
	authRoutes.RegisterProtected(protected, d.DB)
	profileRoutes.Register(protected, d.DB)
	marketRoutes.RegisterProtected(protected, d.DB)
	messageRoutes.Register(protected, d.Messaging, d.SendLimiter)
}
