package app

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"school-equipment-lending-system/models"
	"school-equipment-lending-system/session"
)

// AuthRequired validates the bearer token and checks the session is still
// live in Redis, so revoked logins fail even with a well-signed token. It
// injects userID, userName and role into the request context.
func AuthRequired(sessions *session.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(auth, "Bearer ")
		if !ok || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, H{"error": "unauthorized"})
			return
		}
		claims, err := session.ParseToken(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, H{"error": "invalid token"})
			return
		}
		sess, err := sessions.Get(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, H{"error": "session revoked or expired"})
			return
		}

		c.Set("userID", claims.UID)
		c.Set("userName", sess.Name)
		c.Set("role", sess.Role)
		c.Set("sessionToken", token)
		c.Next()
	}
}

// AdminOnly gates approval decisions and user administration.
func AdminOnly() gin.HandlerFunc {
	return roleGate(models.RoleAdmin)
}

// StaffOnly gates catalog mutation: admins and inventory managers.
func StaffOnly() gin.HandlerFunc {
	return roleGate(models.RoleAdmin, models.RoleInventory)
}

func roleGate(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString("role")
		for _, r := range roles {
			if role == r {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, H{"error": "forbidden"})
	}
}

// UserID returns the authenticated user's id, zero when unauthenticated.
func UserID(c *gin.Context) int {
	v, ok := c.Get("userID")
	if !ok {
		return 0
	}
	id, _ := v.(int)
	return id
}
