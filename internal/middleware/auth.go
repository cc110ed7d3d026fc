package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shiporsink/change/internal/utils"
	"github.com/shiporsink/change/pkg/response"
)

const (
	ContextUserID = "user_id"
	ContextEmail  = "email"
)

// AuthRequired verifies the bearer token issued by the hosted auth
// provider. EventSource clients cannot set headers, so an access_token
// query parameter is accepted on GET requests.
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := bearerToken(c)
		if !ok {
			response.Unauthorized(c, "authorization header required")
			c.Abort()
			return
		}

		claims, err := utils.ParseToken(tokenString)
		if err != nil {
			response.Unauthorized(c, "invalid or expired token")
			c.Abort()
			return
		}

		c.Set(ContextUserID, claims.UserID())
		c.Set(ContextEmail, claims.Email)

		c.Next()
	}
}

func bearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		if c.Request.Method == "GET" {
			if t := c.Query("access_token"); t != "" {
				return t, true
			}
		}
		return "", false
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// AdminRequired allows only users whose email isAdmin accepts.
func AdminRequired(isAdmin func(email string) bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !isAdmin(GetEmail(c)) {
			response.Forbidden(c, "admin access required")
			c.Abort()
			return
		}
		c.Next()
	}
}

// GetUserID gets the current user ID from context
func GetUserID(c *gin.Context) string {
	return c.GetString(ContextUserID)
}

// GetEmail gets the current user's email from context
func GetEmail(c *gin.Context) string {
	return c.GetString(ContextEmail)
}
