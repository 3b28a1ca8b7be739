package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"taskdeck/internal/auth"
	"taskdeck/internal/config"
	"taskdeck/pkg/logger"
)

const (
	userIDKey    = "user_id"
	userEmailKey = "user_email"
)

// RequestID tags every request with a correlation id, exposed in the
// X-Request-ID header and attached to the request-scoped logger.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.New().String()
		}
		c.Header("X-Request-ID", id)
		ctx := logger.WithRequestID(c.Request.Context(), id)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// Session authenticates the request from the session cookie and stores the
// user identity in the gin context. Missing or invalid sessions are 401.
func Session() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		secret := config.Get().JWTSecret
		if secret == "" {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "server misconfiguration"})
			c.Abort()
			return
		}
		cookie, err := c.Cookie(auth.CookieName)
		if err != nil || cookie == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			c.Abort()
			return
		}
		userID, email, err := auth.ParseToken(secret, cookie)
		if err != nil {
			logger.Debug(ctx, "Session token rejected", "error", err)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			c.Abort()
			return
		}
		c.Set(userIDKey, userID)
		c.Set(userEmailKey, email)
		c.Next()
	}
}

// UserID returns the authenticated user id set by Session.
func UserID(c *gin.Context) (int64, bool) {
	v, ok := c.Get(userIDKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok
}
