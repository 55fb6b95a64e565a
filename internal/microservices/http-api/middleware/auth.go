package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"booklist/internal/microservices/http-api/models"
	"booklist/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
)

// SessionCookie holds the signed session token.
const SessionCookie = "session"

const identityKey = "identity"

// Identity is the authenticated caller, resolved once per request.
type Identity struct {
	UserID       int64
	Username     string
	User         *models.User
	SessionToken string
}

// SessionMiddleware resolves the session cookie into an Identity. Requests
// without a valid session continue anonymously; guards decide what they may see.
func SessionMiddleware(authService service.AuthService, logger *slog.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = slog.Default()
	}
	return func(c *gin.Context) {
		token, err := c.Cookie(SessionCookie)
		if err != nil || token == "" {
			c.Next()
			return
		}

		user, claims, err := authService.ResolveSession(c.Request.Context(), token)
		if err != nil {
			if !errors.Is(err, service.ErrInvalidSession) {
				logger.Warn("resolve session", "path", c.Request.URL.Path, "error", err)
			}
			ClearSessionCookie(c)
			c.Next()
			return
		}

		SetIdentity(c, &Identity{
			UserID:       user.ID,
			Username:     user.Username,
			User:         user,
			SessionToken: token,
		})
		logger.Debug("session resolved", "user_id", user.ID, "session_id", claims.ID)
		c.Next()
	}
}

// SetIdentity attaches an identity to the request.
func SetIdentity(c *gin.Context, ident *Identity) {
	c.Set(identityKey, ident)
}

// CurrentUser returns the caller's identity, or nil when anonymous.
func CurrentUser(c *gin.Context) *Identity {
	v, ok := c.Get(identityKey)
	if !ok {
		return nil
	}
	ident, _ := v.(*Identity)
	return ident
}

// SetSessionCookie stores a session token for ttl.
func SetSessionCookie(c *gin.Context, token string, ttl time.Duration, secure bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookie, token, int(ttl.Seconds()), "/", "", secure, true)
}

// ClearSessionCookie expires the session cookie.
func ClearSessionCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookie, "", -1, "/", "", false, true)
}
