package controllers

import (
	"Homemade/middleware"
	"Homemade/models"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func userJSON(u models.User) gin.H {
	return gin.H{
		"id":         u.ID,
		"username":   u.Username,
		"role":       u.Role,
		"full_name":  u.FullName,
		"address":    u.Address,
		"bio":        u.Bio,
		"avatar_url": u.AvatarURL,
		"latitude":   u.Latitude,
		"longitude":  u.Longitude,
	}
}

func paramID(c *gin.Context, name string) (uint, bool) {
	v, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || v == 0 {
		return 0, false
	}
	return uint(v), true
}

// GetProfile returns the public profile of :id.
func GetProfile(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
			return
		}
		var user models.User
		if err := db.First(&user, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "success", "data": userJSON(user)})
	}
}

// UpdateProfile updates the supplied profile fields of the caller's own account.
func UpdateProfile(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
			return
		}
		if uid, _ := middleware.CurrentUserID(c); uid != id {
			c.JSON(http.StatusForbidden, gin.H{"error": "cannot update another user's profile"})
			return
		}

		var body struct {
			FullName  *string  `json:"full_name"`
			Address   *string  `json:"address"`
			Bio       *string  `json:"bio"`
			AvatarURL *string  `json:"avatar_url"`
			Latitude  *float64 `json:"latitude"`
			Longitude *float64 `json:"longitude"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
			return
		}

		updates := map[string]any{}
		setIf := func(col string, v *string) {
			if v != nil && *v != "" {
				updates[col] = *v
			}
		}
		setIf("full_name", body.FullName)
		setIf("address", body.Address)
		setIf("bio", body.Bio)
		setIf("avatar_url", body.AvatarURL)
		if body.Latitude != nil {
			updates["latitude"] = *body.Latitude
		}
		if body.Longitude != nil {
			updates["longitude"] = *body.Longitude
		}
		if len(updates) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "No fields to update"})
			return
		}

		res := db.Model(&models.User{}).Where("id = ?", id).Updates(updates)
		if res.Error != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update profile"})
			return
		}
		if res.RowsAffected == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Profile updated"})
	}
}
