package controllers

import (
	"Homemade/middleware"
	"Homemade/pkg/messaging"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

func messagingStatus(err error) int {
	if errors.Is(err, messaging.ErrValidation) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// SendMessage appends a direct message from the authenticated caller.
func SendMessage(svc *messaging.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body struct {
			SenderID   uint   `json:"sender_id"`
			ReceiverID uint   `json:"receiver_id"`
			Content    string `json:"content"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "sender_id, receiver_id and content are required"})
			return
		}

		if body.SenderID == 0 || body.ReceiverID == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "sender_id and receiver_id are required"})
			return
		}

		uid, _ := middleware.CurrentUserID(c)
		if body.SenderID != uid {
			c.JSON(http.StatusForbidden, gin.H{"error": "sender_id does not match the authenticated user"})
			return
		}

		msg, err := svc.Send(c.Request.Context(), messaging.SendRequest{
			SenderID:   body.SenderID,
			ReceiverID: body.ReceiverID,
			Content:    body.Content,
		})
		if err != nil {
			_ = c.Error(err)
			c.JSON(messagingStatus(err), gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Message sent", "id": msg.ID, "data": msg})
	}
}

// GetConversation returns the ordered history between :userId and :otherId.
// The caller must be one of the two participants.
func GetConversation(svc *messaging.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok1 := paramID(c, "userId")
		otherID, ok2 := paramID(c, "otherId")
		if !ok1 || !ok2 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "user ids must be positive integers"})
			return
		}

		uid, _ := middleware.CurrentUserID(c)
		if uid != userID && uid != otherID {
			c.JSON(http.StatusForbidden, gin.H{"error": "not a participant of this conversation"})
			return
		}

		msgs, err := svc.Conversation(c.Request.Context(), userID, otherID)
		if err != nil {
			_ = c.Error(err)
			c.JSON(messagingStatus(err), gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "success", "data": msgs})
	}
}
