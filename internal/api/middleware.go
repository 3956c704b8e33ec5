package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/pokerjest/trackAutoTool/internal/service"
)

// TokenFromRequest extracts the Plex token from X-Plex-Token or a
// Bearer Authorization header. Returns "" when neither is present.
func TokenFromRequest(c *gin.Context) string {
	if token := c.GetHeader("X-Plex-Token"); token != "" {
		return token
	}
	auth := c.GetHeader("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	}
	return ""
}

// RequireToken rejects requests without a Plex token and stores the
// token in the context for downstream handlers.
func RequireToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := TokenFromRequest(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
			return
		}
		c.Set("token", token)
		c.Next()
	}
}

func requestToken(c *gin.Context) string {
	return c.GetString("token")
}

// requestSession returns the session for the request token, validating the
// token against plex.tv when the session is not yet known.
func requestSession(c *gin.Context) (service.Session, bool) {
	token := requestToken(c)
	if sess, ok := authSvc.GetSession(token); ok {
		return sess, true
	}
	user, err := authSvc.ValidateToken(token)
	if err != nil {
		abortPlexError(c, err)
		return service.Session{}, false
	}
	return authSvc.GetOrCreateSession(token, *user), true
}

// requestServerURL resolves the selected server URL for the request,
// aborting with 400 when no server has been chosen yet.
func requestServerURL(c *gin.Context) (string, string, bool) {
	sess, ok := requestSession(c)
	if !ok {
		return "", "", false
	}
	if sess.ServerURL == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No server selected. Please select a Plex server first."})
		return "", "", false
	}
	return sess.ServerURL, sess.Token, true
}
