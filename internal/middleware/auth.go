package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	iauth "github.com/billalcoder/skinCare/internal/auth"
	"github.com/billalcoder/skinCare/pkg/errors"
	"github.com/billalcoder/skinCare/pkg/response"
)

const (
	CtxUserIDKey    = "userID"
	CtxSessionIDKey = "sessionID"
)

// Auth enforces bearer authentication. The token must carry a valid signature
// AND map to a live session row; either check failing alone yields 401, so a
// logged-out token is dead even before its signature expires.
func Auth(jwt *iauth.JWTService, sessions *iauth.SessionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authz := c.GetHeader("Authorization")
		if len(authz) < 8 || !strings.EqualFold(authz[:7], "Bearer ") {
			response.Error(c, errors.ErrUnauthorized)
			c.Abort()
			return
		}

		token := strings.TrimSpace(authz[7:])
		userID, err := jwt.Verify(token)
		if err != nil {
			// Normalise all validation failures to 401
			c.Header("WWW-Authenticate", "Bearer")
			response.Error(c, errors.ErrUnauthorized)
			c.Abort()
			return
		}

		session, err := sessions.FindValidByToken(c.Request.Context(), token)
		if err != nil || session.UserID != userID {
			c.Header("WWW-Authenticate", "Bearer")
			response.Error(c, errors.ErrSessionInvalid)
			c.Abort()
			return
		}

		// Propagate identity into request context
		c.Set(CtxUserIDKey, userID)
		c.Set(CtxSessionIDKey, session.ID)

		c.Next()
	}
}

// UserID returns the authenticated user id placed by Auth.
func UserID(c *gin.Context) string {
	return c.GetString(CtxUserIDKey)
}
