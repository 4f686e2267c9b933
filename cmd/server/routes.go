package main

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/Nixie-Tech-LLC/loopboard/internal/assign"
	"github.com/Nixie-Tech-LLC/loopboard/internal/auth"
	"github.com/Nixie-Tech-LLC/loopboard/internal/catalog"
	"github.com/Nixie-Tech-LLC/loopboard/internal/config"
	"github.com/Nixie-Tech-LLC/loopboard/internal/db"
	"github.com/Nixie-Tech-LLC/loopboard/internal/http/api"
	adminapi "github.com/Nixie-Tech-LLC/loopboard/internal/http/api/admin/control/endpoints"
	authapi "github.com/Nixie-Tech-LLC/loopboard/internal/http/api/auth/endpoints"
	playapi "github.com/Nixie-Tech-LLC/loopboard/internal/http/api/play/endpoints"
	"github.com/Nixie-Tech-LLC/loopboard/internal/model"
	"github.com/Nixie-Tech-LLC/loopboard/internal/presence"
	redisclient "github.com/Nixie-Tech-LLC/loopboard/internal/redis"
	"github.com/Nixie-Tech-LLC/loopboard/internal/storage"
)

// Services are the long-lived dependencies the routes are built from.
type Services struct {
	Store   db.Store
	Authn   *auth.Authenticator
	ETags   *redisclient.ETagCache
	Storage storage.Storage
}

// RegisterRoutes sets up all application routes
func RegisterRoutes(r *gin.Engine, cfg *config.Config, svc Services) {
	// CORS
	r.Use(cors.New(cors.Config{
		AllowOriginFunc: func(origin string) bool { return true },
		AllowMethods: []string{
			"GET",
			"POST",
			"PUT",
			"PATCH",
			"DELETE",
			"OPTIONS",
			"HEAD",
		},
		AllowHeaders: []string{
			"Origin",
			"Content-Type",
			"Authorization",
			"Accept",
			"If-None-Match",
		},
		ExposeHeaders: []string{
			"Content-Length",
			"ETag",
		},
		AllowCredentials: false,
	}))

	presenceSvc := presence.NewService(svc.Store, svc.ETags)
	engine := assign.NewEngine(svc.Store, svc.ETags)

	api.MountGroup(r, api.GroupConfig{
		Prefix: "/api/auth",
	},
		authapi.AuthPublicModule(cfg.JWTSecret, svc.Authn, presenceSvc),
	)

	api.MountGroup(r, api.GroupConfig{
		Prefix:    "/api/auth",
		Auth:      true,
		SecretKey: cfg.JWTSecret,
		Resolver:  svc.Authn,
	},
		authapi.AuthSessionModule(cfg.JWTSecret, svc.Authn, presenceSvc),
	)

	api.MountGroup(r, api.GroupConfig{
		Prefix:    "/api/admin",
		Auth:      true,
		SecretKey: cfg.JWTSecret,
		Resolver:  svc.Authn,
		Role:      model.RoleAdmin,
	},
		adminapi.MediaModule(catalog.NewService(svc.Store), svc.Storage),
		adminapi.UserModule(svc.Store, presenceSvc, svc.ETags),
		adminapi.AssignmentModule(engine),
		adminapi.DashboardModule(svc.Store, presenceSvc),
	)

	// the poll handler reads the account itself, so the token is trusted as-is
	api.MountGroup(r, api.GroupConfig{
		Prefix:    "/api/play",
		Auth:      true,
		SecretKey: cfg.JWTSecret,
		Resolver:  auth.ClaimsResolver{},
		Role:      model.RoleUser,
	},
		playapi.PlayModule(svc.Store, svc.ETags),
	)

	r.GET("/healthz", func(c *gin.Context) {
		if err := svc.Store.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Static content
	if cfg.Storage == config.StorageLocal {
		r.Static("/uploads", cfg.UploadDir)
	}
}
