package admin

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hackfiles/file-vault/internal/services"
)

func ListUsers(c *gin.Context) {
	users, err := services.GetPostgres().ListUsers(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch users"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

type setActiveRequest struct {
	IsActive *bool `json:"is_active" binding:"required"`
}

// SetUserActive enables or disables an account. Disabled accounts are
// rejected at the auth middleware.
func SetUserActive(c *gin.Context) {
	var req setActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "is_active is required"})
		return
	}

	updated, err := services.GetPostgres().SetUserActive(c.Request.Context(), c.Param("id"), *req.IsActive)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update user"})
		return
	}
	if !updated {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user_id": c.Param("id"), "is_active": *req.IsActive})
}

// DeleteUser removes the account row and publishes users.deleted; the
// consumer purges the user's entries and objects asynchronously.
func DeleteUser(c *gin.Context) {
	userID := c.Param("id")

	deleted, err := services.GetPostgres().DeleteUser(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete user"})
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	if err := services.PublishEvent("users.deleted", gin.H{"user_id": userID}); err != nil {
		log.Printf("warning: failed to publish users.deleted event: %v", err)
	}

	c.JSON(http.StatusOK, gin.H{"message": "User deleted", "user_id": userID})
}
