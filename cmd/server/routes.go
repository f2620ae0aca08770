package main

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/gardenhub/backend/internal/auth"
	"github.com/gardenhub/backend/internal/discussions"
	"github.com/gardenhub/backend/internal/events"
	"github.com/gardenhub/backend/internal/gardens"
	"github.com/gardenhub/backend/internal/middleware"
	"github.com/gardenhub/backend/internal/photos"
	"github.com/gardenhub/backend/internal/resources"
	"github.com/gardenhub/backend/internal/stats"
	"github.com/gardenhub/backend/internal/store"
	"github.com/gardenhub/backend/internal/users"
	"github.com/gardenhub/backend/pkg/response"
	"github.com/gardenhub/backend/pkg/storage"
)

// deps are the process-wide collaborators the router is built from.
type deps struct {
	store       store.Store
	jwt         *auth.JWTService
	bcryptCost  int
	blobs       storage.Blob
	cleaner     photos.BlobCleaner
	maxUpload   int64
	corsOrigins string
	uploadDir   string // served under /uploads when blobs are on local disk
	logger      *zap.Logger
}

func newRouter(d deps) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	cors := middleware.NewCORS(d.corsOrigins, 24*time.Hour)
	router.Use(cors.Handler())
	router.Use(middleware.Logger(d.logger))
	router.Use(middleware.Report())
	router.MaxMultipartMemory = d.maxUpload

	router.GET("/health", func(c *gin.Context) { response.OK(c, gin.H{"status": "ok"}) })
	if d.uploadDir != "" {
		router.Static("/uploads", d.uploadDir)
	}

	requireAuth := middleware.JWT(d.jwt)
	optionalAuth := middleware.OptionalJWT(d.jwt)
	api := router.Group("/api")

	auth.NewHandler(auth.NewService(d.store, d.jwt, d.bcryptCost, d.logger), d.logger).Routes(api, requireAuth)
	users.NewHandler(users.NewService(d.store, d.logger), d.logger).Routes(api, requireAuth)
	gardens.NewHandler(gardens.NewService(d.store, d.logger), d.logger).Routes(api, requireAuth)
	discussions.NewHandler(discussions.NewService(d.store, d.logger), d.logger).Routes(api, requireAuth)
	events.NewHandler(events.NewService(d.store, d.logger), d.logger).Routes(api, optionalAuth, requireAuth)
	photos.NewHandler(photos.NewService(d.store, d.blobs, d.cleaner, d.maxUpload, d.logger), d.logger).Routes(api, optionalAuth, requireAuth)
	resources.NewHandler(resources.NewService(d.store, d.logger), d.logger).Routes(api, optionalAuth, requireAuth)
	stats.NewHandler(stats.NewService(d.store, d.logger), d.logger).Routes(api, requireAuth)

	cors.AllowRoutes(router.Routes())
	return router
}
