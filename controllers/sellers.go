package controllers

import (
	"Homemade/middleware"
	"Homemade/models"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ListSellers returns every seller with their location and product names,
// used to place sellers on the map.
func ListSellers(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var sellers []models.User
		err := db.Preload("Products", func(tx *gorm.DB) *gorm.DB { return tx.Order("id ASC") }).
			Where("role = ?", models.RoleSeller).
			Order("id ASC").
			Find(&sellers).Error
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		data := make([]gin.H, 0, len(sellers))
		for _, s := range sellers {
			names := make([]string, 0, len(s.Products))
			for _, p := range s.Products {
				names = append(names, p.Name)
			}
			data = append(data, gin.H{
				"id":         s.ID,
				"username":   s.Username,
				"full_name":  s.FullName,
				"bio":        s.Bio,
				"avatar_url": s.AvatarURL,
				"latitude":   s.Latitude,
				"longitude":  s.Longitude,
				"products":   strings.Join(names, ","),
			})
		}
		c.JSON(http.StatusOK, gin.H{"message": "success", "data": data})
	}
}

func productJSON(p models.Product) gin.H {
	return gin.H{
		"id":          p.ID,
		"name":        p.Name,
		"description": p.Description,
		"price":       p.Price,
		"image_url":   p.ImageURL,
		"seller_id":   p.SellerID,
	}
}

func ListProducts(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var products []models.Product
		if err := db.Order("id ASC").Find(&products).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		data := make([]gin.H, 0, len(products))
		for _, p := range products {
			data = append(data, productJSON(p))
		}
		c.JSON(http.StatusOK, gin.H{"message": "success", "data": data})
	}
}

// CreateProduct lists a new product for the calling seller.
func CreateProduct(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid, _ := middleware.CurrentUserID(c)
		if middleware.CurrentRole(c) != models.RoleSeller {
			c.JSON(http.StatusForbidden, gin.H{"error": "only sellers can list products"})
			return
		}

		var body struct {
			Name        string  `json:"name" binding:"required"`
			Description string  `json:"description"`
			Price       float64 `json:"price" binding:"gte=0"`
			ImageURL    string  `json:"image_url"`
		}
		if err := c.ShouldBindJSON(&body); err != nil || strings.TrimSpace(body.Name) == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "name is required and price must not be negative"})
			return
		}

		product := models.Product{
			Name:        strings.TrimSpace(body.Name),
			Description: body.Description,
			Price:       body.Price,
			ImageURL:    body.ImageURL,
			SellerID:    uid,
		}
		if err := db.Create(&product).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusCreated, gin.H{"message": "success", "data": product.ID})
	}
}
