package handler

import (
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"business-crm-go/internal/metrics"
	"business-crm-go/pkg/config"
)

// Handlers groups the route handlers the router mounts
type Handlers struct {
	Business *BusinessHandler
	Contact  *ContactHandler
	Data     *DataHandler
}

// NewRouter builds the gin engine with middleware, the REST routes (served
// both at the root and under /api), metrics and the static front-end.
func NewRouter(cfg *config.Config, logger *slog.Logger, h Handlers) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestID())
	router.Use(RequestLogger(logger))
	if cfg.EnableMetrics {
		router.Use(Metrics())
	}

	corsConfig := cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "X-Requested-With", requestIDHeader},
		ExposeHeaders:    []string{"Content-Length", "Content-Type", requestIDHeader},
		AllowCredentials: true,
		MaxAge:           24 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 0 {
		corsConfig.AllowOrigins = nil
		corsConfig.AllowAllOrigins = true
		corsConfig.AllowCredentials = false
	}
	router.Use(cors.New(corsConfig))

	registerRoutes(router.Group(""), h)
	registerRoutes(router.Group("/api"), h)

	router.GET("/healthz", h.Data.Healthz)
	if cfg.EnableMetrics {
		router.GET("/metrics", gin.WrapH(metrics.Handler()))
	}

	if info, err := os.Stat(cfg.StaticDir); err == nil && info.IsDir() {
		logger.Info("serving static front-end", "dir", cfg.StaticDir)
		router.NoRoute(staticFallback(cfg.StaticDir))
	} else {
		router.NoRoute(func(c *gin.Context) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
		})
	}

	return router
}

func registerRoutes(rg *gin.RouterGroup, h Handlers) {
	rg.GET("/data", h.Data.GetData)
	rg.GET("/stats", h.Data.GetStats)

	businesses := rg.Group("/businesses")
	{
		businesses.GET("", h.Business.ListBusinesses)
		businesses.POST("", h.Business.CreateBusiness)
		businesses.PUT("", h.Business.UpdateBusiness)
		businesses.POST("/contact", h.Contact.RegisterContact)
		businesses.GET("/:id", h.Business.GetBusiness)
		businesses.DELETE("/:id", h.Business.DeleteBusiness)
		businesses.PATCH("/:id/sent", h.Business.ToggleSent)
		businesses.GET("/:id/history", h.Contact.GetHistory)
	}
}

// staticFallback serves files from dir and answers unknown GET paths with
// index.html so client-side routes survive a reload. API paths still 404.
func staticFallback(dir string) gin.HandlerFunc {
	index := filepath.Join(dir, "index.html")
	return func(c *gin.Context) {
		method := c.Request.Method
		path := c.Request.URL.Path
		if (method != http.MethodGet && method != http.MethodHead) || strings.HasPrefix(path, "/api/") {
			c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
			return
		}

		file := filepath.Join(dir, filepath.Clean("/"+path))
		if info, err := os.Stat(file); err == nil && !info.IsDir() {
			c.File(file)
			return
		}
		c.File(index)
	}
}
