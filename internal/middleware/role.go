package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/gardenhub/backend/internal/apperr"
	"github.com/gardenhub/backend/internal/models"
	"github.com/gardenhub/backend/pkg/response"
)

// RequireRole returns a middleware that allows only the given platform roles.
func RequireRole(roles ...models.Role) gin.HandlerFunc {
	allowed := make(map[models.Role]struct{})
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(c *gin.Context) {
		id, ok := IdentityFrom(c)
		if !ok {
			response.Error(c, apperr.New(apperr.Unauthenticated, "missing user context"))
			return
		}
		if _, ok := allowed[id.Role]; !ok {
			response.Error(c, apperr.Forbid("insufficient permissions"))
			return
		}
		c.Next()
	}
}
