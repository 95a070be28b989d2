package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/lysyi3m/blog-comb/app/cfg"
	"github.com/lysyi3m/blog-comb/app/metrics"
)

const (
	requestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"
)

// NewServer creates a new HTTP server with all routes configured
func NewServer(handler *Handler, apiAccessKey string) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	r.Use(requestIDMiddleware())

	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		Formatter: func(param gin.LogFormatterParams) string {
			requestID, _ := param.Keys[requestIDKey].(string)
			return fmt.Sprintf("%s - [%s] \"%s %s %s %d %s \"%s\" %s\" request_id=%s\n",
				param.ClientIP,
				param.TimeStamp.Format(time.RFC3339),
				param.Method,
				param.Path,
				param.Request.Proto,
				param.StatusCode,
				param.Latency,
				param.Request.UserAgent(),
				param.ErrorMessage,
				requestID,
			)
		},
		SkipPaths: []string{"/health", "/metrics"},
	}))

	r.Use(gin.Recovery())

	r.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization, X-API-Key")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	setupRoutes(r, handler, apiAccessKey)

	return r
}

func setupRoutes(r *gin.Engine, handler *Handler, apiAccessKey string) {
	sites := r.Group("/sites/:site")
	{
		sites.GET("/posts", handler.GetPosts)
		sites.GET("/posts/:slug", handler.GetPostBySlug)
		sites.GET("/post", handler.GetPostBySlugQuery)
		sites.GET("/items/:index", handler.GetPostByIndex)
		sites.GET("/feed.xml", handler.GetFeed)
	}

	r.GET("/health", handler.GetHealth)
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	api := r.Group("/api")
	if apiAccessKey != "" {
		api.Use(authMiddleware(apiAccessKey))
		api.POST("/sites/:site/reload", handler.APIReloadSite)
		slog.Info("API endpoints enabled with authentication")
	} else {
		slog.Info("API reload endpoint disabled (API_ACCESS_KEY not set)")
	}
	api.GET("/sites", handler.APIListSites)

	r.GET("/", func(c *gin.Context) {
		endpoints := map[string]string{
			"posts":   "/sites/<site>/posts",
			"post":    "/sites/<site>/posts/<slug>",
			"query":   "/sites/<site>/post?slug=<slug>",
			"item":    "/sites/<site>/items/<index>",
			"feed":    "/sites/<site>/feed.xml",
			"sites":   "/api/sites",
			"health":  "/health",
			"metrics": "/metrics",
		}

		if apiAccessKey != "" {
			endpoints["sites"] = "/api/sites (requires X-API-Key header)"
			endpoints["reload"] = "/api/sites/<site>/reload (POST, requires X-API-Key header)"
		}

		c.JSON(http.StatusOK, gin.H{
			"service":     "Blog Comb",
			"version":     cfg.GetVersion(),
			"description": "Normalized posts from WordPress REST and RSS sources",
			"endpoints":   endpoints,
			"api_status": map[string]interface{}{
				"enabled":       true,
				"auth_required": apiAccessKey != "",
				"header":        "X-API-Key",
			},
		})
	})

	r.GET("/favicon.ico", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
}

// requestIDMiddleware keeps an incoming X-Request-ID or assigns a new one.
func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}

		c.Set(requestIDKey, requestID)
		c.Header(requestIDHeader, requestID)

		c.Next()
	}
}

// authMiddleware creates authentication middleware for API endpoints
func authMiddleware(apiAccessKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		providedKey := c.GetHeader("X-API-Key")

		if providedKey == "" {
			authHeader := c.GetHeader("Authorization")
			if strings.HasPrefix(authHeader, "Bearer ") {
				providedKey = strings.TrimPrefix(authHeader, "Bearer ")
			}
		}

		if providedKey == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "API key required",
				"message": "Provide API key in X-API-Key header or Authorization: Bearer <key>",
			})
			c.Abort()
			return
		}

		if providedKey != apiAccessKey {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "Invalid API key",
				"message": "The provided API key is not valid",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
