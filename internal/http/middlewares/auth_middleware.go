package middlewares

import (
	"errors"
	"net/http"

	"github.com/finsight/gateway/internal/session"
	"github.com/gin-gonic/gin"
)

type SessionMiddleware struct {
	store session.Store
}

func NewSessionMiddleware(store session.Store) *SessionMiddleware {
	return &SessionMiddleware{store: store}
}

// RequireSession resolves the opaque cookie to a server-side session and
// aborts with 401 when there is none. Valid sessions get their expiry
// slid forward.
func (m *SessionMiddleware) RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := c.Cookie(session.CookieName)

		if err != nil || id == "" {
			abortUnauthorized(c)
			return
		}

		sess, err := m.store.Get(c.Request.Context(), id)

		if err != nil {
			if !errors.Is(err, session.ErrNotFound) {
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"error": gin.H{
						"code":    "internal_error",
						"message": "Could not load session",
					},
				})
				return
			}

			abortUnauthorized(c)
			return
		}

		// sliding expiry; best effort, the request proceeds either way
		_ = m.store.Touch(c.Request.Context(), sess.ID)

		c.Set(CtxSessionID, sess.ID)
		c.Set(CtxUserID, sess.UserID)
		c.Set(CtxEmail, sess.Email)

		c.Next()
	}
}

func abortUnauthorized(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error": gin.H{
			"code":    "unauthorized",
			"message": "Authentication required",
		},
	})
}

// Helpers so handlers don't need to know the magic keys.

func SessionIDFromContext(c *gin.Context) (string, bool) {
	v, ok := c.Get(CtxSessionID)
	if !ok {
		return "", false
	}
	id, ok := v.(string)
	return id, ok
}

func UserIDFromContext(c *gin.Context) (string, bool) {
	v, ok := c.Get(CtxUserID)
	if !ok {
		return "", false
	}
	id, ok := v.(string)
	return id, ok
}

func EmailFromContext(c *gin.Context) (string, bool) {
	v, ok := c.Get(CtxEmail)
	if !ok {
		return "", false
	}
	email, ok := v.(string)
	return email, ok
}
