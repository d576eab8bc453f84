package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	"github.com/jwalitptl/booking-api/internal/handler"
	"github.com/jwalitptl/booking-api/internal/model"
	authService "github.com/jwalitptl/booking-api/internal/service/auth"
)

const (
	ContextCaller = "caller"

	tokenCacheTTL     = time.Minute
	tokenCacheCleanup = 10 * time.Minute
)

type AuthMiddleware struct {
	authService *authService.Service
	tokenCache  *gocache.Cache
}

func NewAuthMiddleware(authSvc *authService.Service) *AuthMiddleware {
	return &AuthMiddleware{
		authService: authSvc,
		tokenCache:  gocache.New(tokenCacheTTL, tokenCacheCleanup),
	}
}

// Authenticate verifies the bearer token and sets the caller identity
// in context. Validated claims are cached briefly to skip re-parsing
// on chatty clients.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("missing authorization header"))
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("invalid authorization format"))
			c.Abort()
			return
		}

		claims, err := m.lookupClaims(c, parts[1])
		if err != nil {
			c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("invalid token"))
			c.Abort()
			return
		}

		userID, err := uuid.Parse(claims.UserID)
		if err != nil {
			c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("invalid token"))
			c.Abort()
			return
		}

		c.Set(ContextCaller, &model.Caller{ID: userID, Role: claims.Role})
		c.Next()
	}
}

// RequireRole rejects callers whose role differs. Must run after
// Authenticate.
func (m *AuthMiddleware) RequireRole(role model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller, ok := CallerFromContext(c)
		if !ok || caller.Role != role {
			c.JSON(http.StatusForbidden, handler.NewErrorResponse("insufficient role"))
			c.Abort()
			return
		}
		c.Next()
	}
}

// CallerFromContext returns the authenticated caller set by
// Authenticate.
func CallerFromContext(c *gin.Context) (*model.Caller, bool) {
	v, ok := c.Get(ContextCaller)
	if !ok {
		return nil, false
	}
	caller, ok := v.(*model.Caller)
	return caller, ok
}

func (m *AuthMiddleware) lookupClaims(c *gin.Context, token string) (*model.TokenClaims, error) {
	if cached, ok := m.tokenCache.Get(token); ok {
		return cached.(*model.TokenClaims), nil
	}

	claims, err := m.authService.ValidateToken(c.Request.Context(), token)
	if err != nil {
		return nil, err
	}

	m.tokenCache.Set(token, claims, gocache.DefaultExpiration)
	return claims, nil
}
