package ai

import (
	"Homemade/controllers"
	"Homemade/pkg/services"

	"github.com/gin-gonic/gin"
)

func Register(g *gin.RouterGroup, rec services.Recommender) {
	g.POST("/ai/recommend", controllers.Recommend(rec))
}
