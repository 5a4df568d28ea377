package controllers

import (
	"Homemade/pkg/services"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Recommend asks the recommender for a product suggestion.
func Recommend(rec services.Recommender) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body struct {
			Products    []services.ProductInfo `json:"products"`
			UserHistory []string               `json:"userHistory"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
			return
		}

		if rec == nil || !rec.Enabled() {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"message":        "AI service unavailable (Missing API Key)",
				"recommendation": services.RecommendLocal(body.Products, body.UserHistory),
			})
			return
		}

		text, err := rec.Recommend(c.Request.Context(), body.Products, body.UserHistory)
		if err != nil {
			_ = c.Error(err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate recommendation"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"recommendation": text})
	}
}
