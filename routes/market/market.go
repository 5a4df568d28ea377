package market

import (
	"Homemade/controllers"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// RegisterPublic registers the browsing routes used by the map and catalogue.
func RegisterPublic(g *gin.RouterGroup, db *gorm.DB) {
	g.GET("/sellers", controllers.ListSellers(db))
	g.GET("/products", controllers.ListProducts(db))
}

func RegisterProtected(g *gin.RouterGroup, db *gorm.DB) {
	g.POST("/products", controllers.CreateProduct(db))
}
