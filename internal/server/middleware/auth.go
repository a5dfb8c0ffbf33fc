package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"session-auth-service/internal/security"
	sessiondomain "session-auth-service/internal/session/domain"
	userdomain "session-auth-service/internal/user/domain"
)

const bearerPrefix = "bearer "

// UserResolver is the slice of the user repository AuthRequired needs.
type UserResolver interface {
	GetActiveByClaims(ctx context.Context, id int64, username, email string) (*userdomain.User, error)
}

// SessionResolver is the slice of the session repository AuthRequired needs.
type SessionResolver interface {
	GetActiveByUserAndAccess(ctx context.Context, userID int64, accessToken string) (*sessiondomain.Session, error)
}

// ClientInfo stores the caller's IP in the request context for every route so
// audit and telemetry can read it even on unauthenticated endpoints.
func ClientInfo() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := WithClientIP(c.Request.Context(), c.ClientIP())
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// AuthRequired validates the Bearer access token and resolves the caller to an
// active user and an active ledger session before the handler runs. The token
// is trusted only when all three hold: the signature and claims verify, a user
// matching the claims exactly is active, and the session that minted this
// exact access token is still active. Any miss aborts with 401.
func AuthRequired(tokens *security.TokenProvider, users UserResolver, sessions SessionResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractBearer(c.GetHeader("Authorization"))
		if token == "" {
			abortUnauthorized(c, "Not authenticated")
			return
		}

		// Expired and otherwise invalid tokens get the identical response;
		// the distinction stays internal to the token provider.
		claims, err := tokens.Verify(token)
		if err != nil {
			abortUnauthorized(c, "Invalid token")
			return
		}

		ctx := c.Request.Context()
		user, err := users.GetActiveByClaims(ctx, claims.UserID, claims.Username, claims.Email)
		if err != nil || user == nil {
			abortUnauthorized(c, "Invalid token")
			return
		}

		sess, err := sessions.GetActiveByUserAndAccess(ctx, user.ID, token)
		if err != nil || sess == nil {
			abortUnauthorized(c, "Invalid token")
			return
		}

		c.Request = c.Request.WithContext(WithIdentity(ctx, &Identity{
			User:      user,
			SessionID: sess.ID,
		}))
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, detail string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": detail})
}

// extractBearer returns the token from an Authorization header value, or "" if
// missing or malformed. The scheme match is case-insensitive.
func extractBearer(header string) string {
	v := strings.TrimSpace(header)
	if len(v) < len(bearerPrefix) {
		return ""
	}
	if !strings.EqualFold(v[:len(bearerPrefix)], bearerPrefix) {
		return ""
	}
	return strings.TrimSpace(v[len(bearerPrefix):])
}
