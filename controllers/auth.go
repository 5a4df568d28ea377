package controllers

import (
	"Homemade/middleware"
	"Homemade/models"
	"Homemade/pkg/config"
	tokenstore "Homemade/pkg/token"
	utils "Homemade/pkg/utills"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Missing coordinates place a new account in Central Park, NY.
const (
	defaultLatitude  = 40.7829
	defaultLongitude = -73.9654
)

// Register handler
func Register(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body struct {
			Username  string   `json:"username"`
			Password  string   `json:"password"`
			Role      string   `json:"role"`
			Latitude  *float64 `json:"latitude"`
			Longitude *float64 `json:"longitude"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
			return
		}

		username := strings.TrimSpace(body.Username)
		if username == "" || body.Password == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Username and password required"})
			return
		}
		if !utils.ValidPassword(body.Password) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Password must be at least 6 characters with one letter and one number"})
			return
		}

		role := strings.ToLower(strings.TrimSpace(body.Role))
		if role == "" {
			role = models.RoleBuyer
		}
		if !models.ValidRole(role) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "role must be buyer, seller or admin"})
			return
		}

		var exists models.User
		if err := db.Where("username = ?", username).First(&exists).Error; err == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Username already exists"})
			return
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		user := models.User{
			Username:  username,
			Role:      role,
			Latitude:  defaultLatitude,
			Longitude: defaultLongitude,
		}
		if body.Latitude != nil && body.Longitude != nil {
			user.Latitude = *body.Latitude
			user.Longitude = *body.Longitude
		}
		if err := user.SetPassword(body.Password); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to set password"})
			return
		}
		if err := db.Create(&user).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create user"})
			return
		}

		c.JSON(http.StatusCreated, gin.H{"message": "User created successfully", "userId": user.ID})
	}
}

// Login handler
func Login(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
			return
		}

		var user models.User
		if err := db.Where("username = ?", strings.TrimSpace(body.Username)).First(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "User not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}
		if !user.CheckPassword(body.Password) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid password"})
			return
		}

		tokenStr, err := issueToken(user)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create token"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"message": "Login successful",
			"token":   tokenStr,
			"user": gin.H{
				"id":       user.ID,
				"username": user.Username,
				"role":     user.Role,
			},
		})
	}
}

func issueToken(user models.User) (string, error) {
	claims := jwt.MapClaims{
		"sub":      strconv.FormatUint(uint64(user.ID), 10),
		"username": user.Username,
		"role":     user.Role,
		"jti":      uuid.NewString(),
		"exp":      time.Now().Add(time.Duration(config.TokenTTLHours) * time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(config.JWTSecret))
}

// Logout handler
func Logout() gin.HandlerFunc {
	return func(c *gin.Context) {
		jti := c.GetString(middleware.ContextJTIKey)
		exp := c.GetTime(middleware.ContextExpKey)
		tokenstore.RevokeToken(jti, exp)
		c.JSON(http.StatusOK, gin.H{"message": "logged out"})
	}
}
