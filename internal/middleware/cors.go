package middleware

import (
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// CORS answers cross-origin requests for the API. Allowed methods are the ones the router
// actually serves; call AllowRoutes once every route is mounted.
type CORS struct {
	origins map[string]bool
	headers string
	maxAge  string
	methods []string
}

// NewCORS builds a policy for allowedOrigins, "*" or a comma-separated list. headers are
// the request headers clients may send besides Authorization and Content-Type.
func NewCORS(allowedOrigins string, maxAge time.Duration, headers ...string) *CORS {
	origins := make(map[string]bool)
	for _, o := range strings.Split(allowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins[o] = true
		}
	}
	return &CORS{
		origins: origins,
		headers: strings.Join(append([]string{"Authorization", "Content-Type"}, headers...), ", "),
		maxAge:  strconv.Itoa(int(maxAge.Seconds())),
		methods: []string{http.MethodOptions},
	}
}

// AllowRoutes advertises the methods of routes, plus OPTIONS.
func (p *CORS) AllowRoutes(routes gin.RoutesInfo) {
	methods := []string{http.MethodOptions}
	for _, r := range routes {
		if !slices.Contains(methods, r.Method) {
			methods = append(methods, r.Method)
		}
	}
	slices.Sort(methods)
	p.methods = methods
}

// Methods returns the advertised methods.
func (p *CORS) Methods() []string { return p.methods }

func (p *CORS) allowOrigin(origin string) string {
	switch {
	case len(p.origins) == 0 || p.origins["*"]:
		return "*"
	case origin != "" && p.origins[origin]:
		return origin
	}
	return ""
}

// Handler sets the CORS headers and ends preflight requests. A preflight asking for a
// method no route serves gets 405.
func (p *CORS) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		allow := p.allowOrigin(c.GetHeader("Origin"))
		if allow != "" {
			c.Header("Access-Control-Allow-Origin", allow)
			if allow != "*" {
				c.Header("Vary", "Origin")
			}
		}
		if c.Request.Method != http.MethodOptions {
			c.Next()
			return
		}
		if want := c.GetHeader("Access-Control-Request-Method"); want != "" && !slices.Contains(p.methods, want) {
			c.AbortWithStatus(http.StatusMethodNotAllowed)
			return
		}
		if allow != "" {
			c.Header("Access-Control-Allow-Methods", strings.Join(p.methods, ", "))
			c.Header("Access-Control-Allow-Headers", p.headers)
			c.Header("Access-Control-Max-Age", p.maxAge)
		}
		c.AbortWithStatus(http.StatusNoContent)
	}
}
