package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// CORSConfig controls cross-origin behavior. AllowAll reflects the
// CORS_ALLOW_ALL switch; otherwise only listed origins are allowed.
type CORSConfig struct {
	AllowAll       bool
	AllowedOrigins []string
}

// CORS sets CORS headers and handles preflight requests.
func CORS(cfg CORSConfig) gin.HandlerFunc {
	origins := make(map[string]struct{})
	for _, o := range cfg.AllowedOrigins {
		if trimmed := strings.TrimSpace(o); trimmed != "" {
			origins[trimmed] = struct{}{}
		}
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		allowed := cfg.AllowAll
		if !allowed && origin != "" {
			_, allowed = origins[origin]
		}
		if origin != "" && allowed {
			h := c.Writer.Header()
			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Vary", "Origin")
			h.Set("Access-Control-Allow-Credentials", "true")
			h.Set("Access-Control-Allow-Methods", "GET,POST,PUT,PATCH,DELETE,OPTIONS")
			h.Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With, Accept, Origin, Cache-Control, X-File-Name, X-Request-Id")
			h.Set("Access-Control-Expose-Headers", "Content-Length, Content-Disposition, X-Request-Id")
			h.Set("Access-Control-Max-Age", "86400")
		}

		if c.Request.Method == http.MethodOptions {
			c.Status(http.StatusNoContent)
			c.Abort()
			return
		}

		c.Next()
	}
}
