package utils

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/vairaleo03/classrent/logger"
)

// GetUserIDFromContext extracts the authenticated user's ID from the Gin
// context. The auth middleware stores it under "user_id", either as a string
// claim or as an already-parsed uuid.UUID.
func GetUserIDFromContext(c *gin.Context) (uuid.UUID, error) {
	value, exists := c.Get("user_id")
	if !exists {
		logger.ErrorLogger.Error("User ID not found in context.")
		return uuid.Nil, fmt.Errorf("authentication required: user ID not found")
	}

	switch v := value.(type) {
	case uuid.UUID:
		return v, nil
	case string:
		userID, err := uuid.Parse(v)
		if err != nil {
			logger.ErrorLogger.Errorf("Failed to parse user ID string %q to UUID: %v", v, err)
			return uuid.Nil, fmt.Errorf("internal server error: invalid user ID format")
		}
		return userID, nil
	default:
		logger.ErrorLogger.Errorf("User ID in context has unexpected type %T", value)
		return uuid.Nil, fmt.Errorf("internal server error: invalid user ID format in context")
	}
}
