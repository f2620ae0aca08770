package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/gardenhub/backend/internal/apperr"
	"github.com/gardenhub/backend/internal/models"
	"github.com/gardenhub/backend/pkg/response"
)

const (
	// ContextIdentity is the key for the caller's models.Identity in gin context.
	ContextIdentity = "identity"
	// ContextUserID is the key for user ID in gin context.
	ContextUserID = "user_id"
	// ContextUserRole is the key for user role in gin context.
	ContextUserRole = "user_role"
)

type identityKey struct{}

// TokenValidator turns a bearer token into an identity.
type TokenValidator interface {
	Identify(token string) (models.Identity, error)
}

// JWT returns a middleware that requires a valid bearer token and sets the identity in context.
func JWT(tokens TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Error(c, apperr.New(apperr.Unauthenticated, "missing authorization header"))
			return
		}
		if !authenticate(c, tokens, header) {
			return
		}
		c.Next()
	}
}

// OptionalJWT sets the identity when a bearer token is present and lets anonymous requests
// through. A present but invalid token is still rejected.
func OptionalJWT(tokens TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if header := c.GetHeader("Authorization"); header != "" && !authenticate(c, tokens, header) {
			return
		}
		c.Next()
	}
}

func authenticate(c *gin.Context, tokens TokenValidator, header string) bool {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		response.Error(c, apperr.New(apperr.InvalidToken, "invalid authorization header"))
		return false
	}
	id, err := tokens.Identify(strings.TrimSpace(parts[1]))
	if err != nil {
		response.Error(c, apperr.New(apperr.InvalidToken, "invalid or expired token"))
		return false
	}
	c.Set(ContextIdentity, id)
	c.Set(ContextUserID, id.ID)
	c.Set(ContextUserRole, string(id.Role))
	c.Request = c.Request.WithContext(WithIdentity(c.Request.Context(), id))
	return true
}

// IdentityFrom returns the authenticated caller, if any.
func IdentityFrom(c *gin.Context) (models.Identity, bool) {
	v, ok := c.Get(ContextIdentity)
	if !ok {
		return models.Identity{}, false
	}
	id, ok := v.(models.Identity)
	return id, ok
}

// Viewer returns the caller on optional-auth reads, nil for anonymous requests.
func Viewer(c *gin.Context) *models.Identity {
	id, ok := IdentityFrom(c)
	if !ok {
		return nil
	}
	return &id
}

// MustIdentity returns the caller on routes behind JWT. It panics when called on a route
// without it.
func MustIdentity(c *gin.Context) models.Identity {
	return c.MustGet(ContextIdentity).(models.Identity)
}

// WithIdentity stores id in ctx.
func WithIdentity(ctx context.Context, id models.Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFromContext returns the identity stored by WithIdentity.
func IdentityFromContext(ctx context.Context) (models.Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(models.Identity)
	return id, ok
}
