package middlewares

import (
	"log/slog"
	"strings"

	"github.com/geocoder89/tasktracker/internal/access"
	"github.com/geocoder89/tasktracker/internal/auth"
	"github.com/geocoder89/tasktracker/internal/observability"
	"github.com/gin-gonic/gin"
)

// Keep this small interface so tests can fake it easily.
type TokenVerifier interface {
	VerifyAccessToken(token string) (*auth.Claims, error)
}

type AuthMiddleware struct {
	jwt TokenVerifier
}

func NewAuthMiddleware(jwt TokenVerifier) *AuthMiddleware {
	return &AuthMiddleware{jwt: jwt}
}

func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			abortUnauthorized(c, "Authentication credentials were not provided.")
			return
		}

		raw := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer"))
		if raw == "" {
			abortUnauthorized(c, "Authentication credentials were not provided.")
			return
		}

		claims, err := m.jwt.VerifyAccessToken(raw)
		if err != nil {
			abortUnauthorized(c, "Invalid or expired access token.")
			return
		}

		c.Set(ctxActorKey, access.Actor{
			UserID:   claims.UserID,
			Username: claims.Username,
			Staff:    claims.Staff,
		})

		// service logs pick the caller up from the request context
		c.Request = c.Request.WithContext(observability.WithLogAttrs(c.Request.Context(), slog.String("user_id", claims.UserID)))

		c.Next()
	}
}

// ActorFromContext returns the caller stored by RequireAuth.
func ActorFromContext(c *gin.Context) (access.Actor, bool) {
	v, ok := c.Get(ctxActorKey)
	if !ok {
		return access.Actor{}, false
	}
	actor, ok := v.(access.Actor)
	return actor, ok && actor.UserID != ""
}
