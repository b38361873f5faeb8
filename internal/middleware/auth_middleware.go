package middleware

import (
	"net/http"
	"strings"

	"tutorhub/internal/utils"
	"tutorhub/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AuthRequired middleware validates JWT token and sets user context
func AuthRequired(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			utils.ErrorResponse(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authorization header required")
			c.Abort()
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			utils.ErrorResponse(c, http.StatusUnauthorized, "UNAUTHORIZED", "Bearer token required")
			c.Abort()
			return
		}

		claims, err := utils.ValidateToken(tokenString, jwtSecret)
		if err != nil {
			utils.ErrorResponse(c, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid token")
			c.Abort()
			return
		}

		// Convert user ID to ObjectID
		userID, err := primitive.ObjectIDFromHex(claims.UserID)
		if err != nil {
			utils.ErrorResponse(c, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid user ID in token")
			c.Abort()
			return
		}

		// Set user context
		c.Set("user_id", userID)
		c.Set("user_type", claims.UserType)
		c.Request = c.Request.WithContext(logger.ContextWithUserID(c.Request.Context(), userID))

		c.Next()
	}
}

// RoleRequired middleware ensures the user holds one of the given roles
func RoleRequired(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userType := c.GetString("user_type")
		if userType == "" {
			utils.UnauthorizedResponse(c)
			c.Abort()
			return
		}

		for _, role := range roles {
			if userType == role {
				c.Next()
				return
			}
		}

		utils.ForbiddenResponse(c, "Access restricted to "+strings.Join(roles, ", "))
		c.Abort()
	}
}
