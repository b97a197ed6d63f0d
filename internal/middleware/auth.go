package middleware

import (
	"log"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"eventhub/internal/models"
	"eventhub/internal/services"
)

// Context keys set for authenticated requests.
const (
	CtxUserKey   = "user"
	CtxUserIDKey = "user_id"
	CtxRoleKey   = "role"
)

const sessionUserKey = "user_id"

// AuthMiddleware resolves the session to a user on every request.
// A missing session entry, an unknown user and a deactivated account all
// fail closed as plain 401s; the reasons only differ in the logs.
func AuthMiddleware(users services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}

		session := sessions.Default(c)
		v := session.Get(sessionUserKey)
		userID, ok := v.(int)
		if !ok || userID <= 0 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
			return
		}

		user, err := users.GetUserByID(userID)
		if err != nil {
			log.Printf("[auth][session] lookup failed for userID=%d: %v", userID, err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
			return
		}
		if user == nil {
			log.Printf("[auth][session] stale session: userID=%d no longer exists", userID)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
			return
		}
		if user.Status != models.StatusActive {
			log.Printf("[auth][session] deactivated account userID=%d", userID)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
			return
		}

		c.Set(CtxUserKey, user)
		c.Set(CtxUserIDKey, user.ID)
		c.Set(CtxRoleKey, user.Role)
		c.Next()
	}
}
