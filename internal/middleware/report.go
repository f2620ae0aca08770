package middleware

import (
	"net/http"

	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
)

// Report forwards errors of 5xx responses to Sentry. It is a no-op unless sentry.Init was
// called with a DSN.
func Report() gin.HandlerFunc {
	return func(c *gin.Context) {
		hub := sentry.CurrentHub().Clone()
		hub.Scope().SetRequest(c.Request)
		c.Next()

		if c.Writer.Status() < http.StatusInternalServerError || len(c.Errors) == 0 {
			return
		}
		if id, ok := IdentityFrom(c); ok {
			hub.Scope().SetUser(sentry.User{ID: id.ID.String(), Username: id.Username})
		}
		hub.Scope().SetTag("route", c.FullPath())
		for _, e := range c.Errors {
			hub.CaptureException(e.Err)
		}
	}
}
