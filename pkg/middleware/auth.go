package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/weiawesome/wes-io-blog/pkg/jwt"
	pkglog "github.com/weiawesome/wes-io-blog/pkg/log"
	"github.com/weiawesome/wes-io-blog/pkg/response"
)

const (
	UserIDKey     = "user_id"
	UsernameKey   = "username"
	RolesKey      = "roles"
	AuthHeaderKey = "Authorization"
	BearerPrefix  = "Bearer "
)

// TokenValidator validates bearer tokens. Satisfied by *jwt.Manager.
type TokenValidator interface {
	ValidateToken(token string) (*jwt.Claims, error)
}

// ViewerObserver is told about every authenticated viewer, e.g. to mirror
// the identity into local storage. Errors are logged, not fatal.
type ViewerObserver interface {
	ObserveViewer(ctx context.Context, userID, username string) error
}

// AuthMiddleware identifies the current viewer from a bearer JWT.
type AuthMiddleware struct {
	validator TokenValidator
	observer  ViewerObserver
}

// NewAuthMiddleware creates a new auth middleware. observer may be nil.
func NewAuthMiddleware(validator TokenValidator, observer ViewerObserver) *AuthMiddleware {
	return &AuthMiddleware{
		validator: validator,
		observer:  observer,
	}
}

// OptionalAuth identifies the viewer when a valid token is supplied and
// otherwise lets the request through anonymously.
func (m *AuthMiddleware) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if ok {
			if claims, err := m.validator.ValidateToken(token); err == nil {
				m.setViewer(c, claims)
			}
		}
		c.Next()
	}
}

// RequireAuth rejects requests without a valid bearer token.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader(AuthHeaderKey)
		if authHeader == "" {
			response.AbortWithError(c, http.StatusUnauthorized, response.CodeUnauthorized, "missing authorization header")
			return
		}

		token, ok := bearerToken(c)
		if !ok {
			response.AbortWithError(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid authorization format")
			return
		}

		claims, err := m.validator.ValidateToken(token)
		if err != nil {
			response.AbortWithError(c, http.StatusUnauthorized, response.CodeUnauthorized, err.Error())
			return
		}

		m.setViewer(c, claims)
		c.Next()
	}
}

// RequireRole must run after RequireAuth.
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, r := range GetRoles(c) {
			if r == role {
				c.Next()
				return
			}
		}
		response.AbortWithError(c, http.StatusForbidden, response.CodeForbidden, "requires role "+role)
	}
}

func (m *AuthMiddleware) setViewer(c *gin.Context, claims *jwt.Claims) {
	c.Set(UserIDKey, claims.UserID)
	c.Set(UsernameKey, claims.Username)
	c.Set(RolesKey, claims.Roles)

	ctx := pkglog.WithViewer(c.Request.Context(), claims.UserID, claims.Username)
	c.Request = c.Request.WithContext(ctx)

	if m.observer == nil {
		return
	}
	if err := m.observer.ObserveViewer(ctx, claims.UserID, claims.Username); err != nil {
		l := pkglog.Ctx(ctx)
		l.Warn().Err(err).Msg("failed to record viewer identity")
	}
}

func bearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader(AuthHeaderKey)
	if !strings.HasPrefix(authHeader, BearerPrefix) {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(authHeader, BearerPrefix))
	return token, token != ""
}

// GetUserID extracts the viewer id from Gin context; empty means anonymous.
func GetUserID(c *gin.Context) string {
	return c.GetString(UserIDKey)
}

// GetUsername extracts username from Gin context.
func GetUsername(c *gin.Context) string {
	return c.GetString(UsernameKey)
}

// GetRoles extracts roles from Gin context.
func GetRoles(c *gin.Context) []string {
	return c.GetStringSlice(RolesKey)
}
