package app

import (
	"context"
	"net/http"

	"authbridge/internal/auth/credentials"
	"authbridge/internal/auth/flow"
	"authbridge/internal/auth/handler"
	"authbridge/internal/auth/resolver"
	"authbridge/internal/config"
	"authbridge/internal/metrics"
	"authbridge/internal/middleware"
	"authbridge/internal/session"
	"authbridge/internal/storage"
	"authbridge/internal/webctx"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func setupHTTP(ctx context.Context, cfg config.Config) (*gin.Engine, func() error, error) {

	infra, err := setupInfra(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	// ----------------------------
	// Dependencies
	// ----------------------------

	store := storage.New(infra.Cache, storage.Config{
		KeyPrefix:               cfg.CacheKeyPrefix,
		SessionTTL:              cfg.SessionTTL(),
		ProfileTTL:              cfg.ProfileTTL(),
		ClearRequestedURLOnRead: cfg.ClearRequestedURLOnRead,
	})

	sessions := session.NewResolver(session.Config{
		Header: cfg.SessionHeader,
		Key:    cfg.SessionKey,
	})
	sessions.OnCreate(metrics.RecordSessionCreated)

	registry, err := buildRegistry(ctx, cfg, infra)
	if err != nil {
		_ = infra.Close()
		return nil, nil, err
	}

	coordinator, err := flow.New(flow.Config{
		DefaultSuccessURL:  cfg.DefaultSuccessURL,
		LogoutURLParameter: cfg.LogoutURLParameter,
		LogoutURLPattern:   cfg.LogoutURLPattern,
		DefaultLogoutURL:   cfg.DefaultLogoutURL,
		SuccessURLPattern:  cfg.SuccessURLPattern,
		ProfileTTL:         cfg.ProfileTTL(),
	}, registry, sessions, store)
	if err != nil {
		_ = infra.Close()
		return nil, nil, err
	}

	var registrar handler.Registrar
	if infra.DB != nil {
		coordinator.WithResolver(resolver.NewDBResolver(infra.DB))
		registrar = credentials.NewService(infra.DB)
	}

	authHandler := handler.NewHandler(coordinator, registrar)
	authMiddleware := middleware.NewAuthMiddleware(coordinator)
	if cfg.LoginClient != "" {
		authMiddleware.WithLoginClient(cfg.LoginClient)
	}

	// ----------------------------
	// Router
	// ----------------------------

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger())
	router.Use(session.Middleware([]byte(cfg.SessionSecret), session.CookieOptions{
		Name:   cfg.SessionCookieName,
		MaxAge: cfg.SessionTimeout,
		Secure: cfg.SessionSecure,
	}))
	router.Use(webctx.Middleware())

	// ----------------------------
	// Public Routes
	// ----------------------------

	authHandler.RegisterRoutes(router)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// ----------------------------
	// Protected API Routes
	// ----------------------------

	api := router.Group("/api")
	api.Use(middleware.GinRequireProfile(authMiddleware))

	api.GET("/profile", handler.Profile)

	// ----------------------------
	// Cleanup
	// ----------------------------

	return router, infra.Close, nil
}
