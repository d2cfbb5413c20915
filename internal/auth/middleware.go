package auth

import (
	"net/http"

	"taskhub/internal/apperr"
	"taskhub/internal/logging"

	"github.com/gin-gonic/gin"
)

// DefaultCookieName is used when no cookie name is configured.
const DefaultCookieName = "session_id"

const contextKeyUserID = "user_id"

// UserIDFromContext returns the current user ID set by RequireSession. 0 if not set.
func UserIDFromContext(c *gin.Context) int64 {
	v, ok := c.Get(contextKeyUserID)
	if !ok {
		return 0
	}
	id, ok := v.(int64)
	if !ok {
		return 0
	}
	return id
}

// SetUserID marks the request as authenticated.
func SetUserID(c *gin.Context, id int64) {
	c.Set(contextKeyUserID, id)
}

// RequireSession returns a middleware that checks for a valid session cookie
// and sets the current user ID in context. If missing or invalid, responds with 401;
// a failed session lookup is a 500.
func RequireSession(sessions *Store, cookieName string) gin.HandlerFunc {
	if cookieName == "" {
		cookieName = DefaultCookieName
	}
	return func(c *gin.Context) {
		sessionID, err := c.Cookie(cookieName)
		if err != nil || sessionID == "" {
			unauthorized(c)
			return
		}
		userID, ok, err := sessions.GetUserID(c.Request.Context(), sessionID)
		if err != nil {
			logging.FromContext(c).WithError(err).Error("session lookup failed")
			c.AbortWithStatusJSON(apperr.Internal.HTTPStatus(), gin.H{
				"error": "internal error",
				"code":  apperr.Internal.String(),
			})
			return
		}
		if !ok {
			unauthorized(c)
			return
		}
		SetUserID(c, userID)
		c.Next()
	}
}

func unauthorized(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error": "authorization required",
		"code":  apperr.Unauthenticated.String(),
	})
}
