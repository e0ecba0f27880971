package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/dance-class-api/internal/models"
	appErrors "github.com/noah-isme/dance-class-api/pkg/errors"
	"github.com/noah-isme/dance-class-api/pkg/logger"
	"github.com/noah-isme/dance-class-api/pkg/response"
)

// ContextSessionKey is the gin context key storing the resolved session.
const ContextSessionKey = "currentSession"

// SessionResolver turns a bearer token into a session.
type SessionResolver interface {
	ParseToken(token string) (*models.SessionClaims, error)
	Resolve(ctx context.Context, claims *models.SessionClaims) *models.Session
	Anonymous(ctx context.Context) *models.Session
}

// Session protects routes by requiring a valid session token.
func Session(sessions SessionResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "missing or invalid authorization header"))
			c.Abort()
			return
		}

		claims, err := sessions.ParseToken(token)
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		attach(c, sessions.Resolve(c.Request.Context(), claims))
		c.Next()
	}
}

// OptionalSession attaches the token's session when valid and an anonymous
// session bound to the default user otherwise. It never blocks.
func OptionalSession(sessions SessionResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, ok := bearerToken(c); ok {
			if claims, err := sessions.ParseToken(token); err == nil {
				attach(c, sessions.Resolve(c.Request.Context(), claims))
				c.Next()
				return
			}
		}
		attach(c, sessions.Anonymous(c.Request.Context()))
		c.Next()
	}
}

// CurrentSession returns the session attached by Session or OptionalSession.
func CurrentSession(c *gin.Context) *models.Session {
	value, exists := c.Get(ContextSessionKey)
	if !exists {
		return nil
	}
	session, ok := value.(*models.Session)
	if !ok {
		return nil
	}
	return session
}

func attach(c *gin.Context, session *models.Session) {
	c.Set(ContextSessionKey, session)
	if session.ID != "" {
		c.Set(logger.SessionIDKey, session.ID)
	}
}

func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", false
	}
	return strings.TrimSpace(parts[1]), true
}
