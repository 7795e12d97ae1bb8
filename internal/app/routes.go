package app

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gyansetu/core/internal/middleware"
	"github.com/gyansetu/core/internal/modules/cache"
	"github.com/gyansetu/core/internal/modules/profile"
	"github.com/gyansetu/core/internal/modules/tutor"
	pkgredis "github.com/gyansetu/core/internal/pkg/redis"
	"github.com/gyansetu/core/internal/pkg/response"
)

func (a *App) registerRoutes(rc *pkgredis.Client) {
	r := a.router

	r.NoRoute(func(c *gin.Context) {
		response.NotFound(c)
	})
	r.NoMethod(func(c *gin.Context) {
		response.MethodNotAllowed(c)
	})

	appInfo := gin.H{
		"name":    "gyansetu-core",
		"version": "1.0.0",
	}

	// Rate limiting and idempotence run on every route (requires Redis).
	r.Use(middleware.RateLimit(rc.Raw()))
	r.Use(middleware.Idempotence(rc.Raw()))

	api := r.Group("/api/v2")

	api.GET("", func(c *gin.Context) { c.PureJSON(http.StatusOK, appInfo) })
	api.GET("/info", func(c *gin.Context) { c.PureJSON(http.StatusOK, appInfo) })
	api.GET("/ping", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"data": "pong"}) })
	api.GET("/uptime", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"timestamp": time.Since(processStart).Milliseconds()})
	})

	cacheTTL := time.Duration(a.cfg.Tutor.CacheTTLHours) * time.Hour
	cacheSvc := cache.NewService(rc, cacheTTL, a.logger.Named("AnswerCache"))
	profileSvc := profile.NewService(a.db, a.cfg, a.logger.Named("ProfileService"))
	tutorSvc := tutor.NewService(a.cfg, cacheSvc, profileSvc, a.logger.Named("TutorService"))

	tutor.NewHandler(tutorSvc, profileSvc, a.logger.Named("TutorHandler")).RegisterRoutes(api)
}
