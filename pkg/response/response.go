package response

import (
	"log"
	"net/http"

	"github.com/captaindev404/gentil-gamification/pkg/apperror"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// GetUserID retrieves the authenticated user ID from the context
func GetUserID(c *gin.Context) (uuid.UUID, error) {
	userIDStr, exists := c.Get("user_id")
	if !exists {
		return uuid.Nil, apperror.ErrUnauthorized
	}

	userID, err := uuid.Parse(userIDStr.(string))
	if err != nil {
		return uuid.Nil, apperror.ErrUnauthorized
	}

	return userID, nil
}

// ResponseCreated writes a success payload for idempotent write endpoints:
// 201 when this call created the resource, 200 when it replayed an existing
// one. The payload carries the duplicate flag either way.
func ResponseCreated(c *gin.Context, created bool, payload gin.H) {
	payload["duplicate"] = !created

	status := http.StatusCreated
	if !created {
		status = http.StatusOK
	}
	c.JSON(status, payload)
}

// ResponseError standardized error response
func ResponseError(c *gin.Context, err error) {
	code := apperror.MapErrorToStatus(err)

	// Log internal errors
	if code == http.StatusInternalServerError {
		log.Printf("[Internal Error]: %v", err)
	}

	c.JSON(code, gin.H{"error": err.Error()})
}
