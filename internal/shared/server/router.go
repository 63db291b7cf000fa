package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/adaosanto/sign-pdf/internal/shared/config"
	"github.com/adaosanto/sign-pdf/internal/shared/metrics"
	"github.com/adaosanto/sign-pdf/internal/shared/server/middleware"
	"github.com/adaosanto/sign-pdf/internal/signing"
)

// RouterDeps are the wired dependencies the router mounts.
type RouterDeps struct {
	Config  config.Config
	Signing *signing.Handler
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	if deps.Config.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(middleware.CORSConfig{
			AllowAll:       deps.Config.CORSAllowAll,
			AllowedOrigins: deps.Config.CORSAllowOrigin,
		}),
		middleware.RateLimit(middleware.RateLimitConfig{
			Window:      deps.Config.RateLimitWindow,
			MaxRequests: deps.Config.RateLimitMax,
			Limiter:     middleware.NewRateLimiter(time.Now),
		}),
	)

	started := time.Now()
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "OK",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"uptime":    time.Since(started).Seconds(),
		})
	})

	r.GET("/api", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "PDF Signer API",
			"version": "1.0.0",
			"endpoints": gin.H{
				"health":    "/health",
				"signPdf":   "/api/pdf/sign",
				"uploadPdf": "/api/pdf/upload",
				"validate":  "/validate",
				"apiInfo":   "/api/pdf/info",
			},
		})
	})

	r.GET("/metrics", metrics.Handler())

	pdf := r.Group("/api/pdf")
	signing.RegisterRoutes(pdf, deps.Signing)

	r.GET("/validate", deps.Signing.Validate)

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Rota não encontrada",
			"path":  c.Request.URL.Path,
		})
	})

	return r
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":3000"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
