package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/loopboard/internal/auth"
	"github.com/Nixie-Tech-LLC/loopboard/internal/config"
	"github.com/Nixie-Tech-LLC/loopboard/internal/db"
	redisclient "github.com/Nixie-Tech-LLC/loopboard/internal/redis"
)

func setupLogger(cfg *config.Config) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || cfg.LogLevel == "" {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339

	if cfg.Development() {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
		gin.SetMode(gin.DebugMode)
		return
	}
	gin.SetMode(gin.ReleaseMode)
}

func initStore(cfg *config.Config) db.Store {
	if cfg.Store == config.StoreMemory {
		log.Warn().Msg("using in-memory store; data is lost on restart")
		return db.NewMemoryStore()
	}

	if err := db.Init(cfg.DatabaseURL); err != nil {
		log.Fatal().Err(err).Msg("db init")
	}
	if err := db.RunMigrations(cfg.MigrationsPath); err != nil {
		log.Fatal().Err(err).Msg("db migrate")
	}
	return db.NewStore(db.DB)
}

func initETagCache(ctx context.Context, cfg *config.Config) *redisclient.ETagCache {
	if cfg.RedisAddress == "" {
		log.Info().Msg("REDIS_ADDRESS not set; poll responses are not cached")
		return nil
	}
	redisclient.InitRedis(cfg.RedisAddress, cfg.RedisUsername, cfg.RedisPassword)
	if err := redisclient.Rdb.Ping(ctx).Err(); err != nil {
		log.Warn().Err(err).Str("addr", cfg.RedisAddress).Msg("redis unreachable; continuing without ETag cache")
		return nil
	}
	return redisclient.NewETagCache(redisclient.Rdb)
}

func main() {
	cfg := LoadEnvironment()
	setupLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store := initStore(cfg)
	etags := initETagCache(ctx, cfg)
	storageSystem := InitStorage(ctx, cfg)

	authn := auth.NewAuthenticator(store)
	if cfg.AdminUsername != "" {
		created, err := authn.EnsureAdmin(ctx, cfg.AdminUsername, cfg.AdminPassword)
		if err != nil {
			log.Fatal().Err(err).Msg("could not bootstrap admin account")
		}
		if created {
			log.Info().Str("username", cfg.AdminUsername).Msg("bootstrap admin created")
		}
	}

	r := gin.New()
	r.Use(gin.Recovery())
	RegisterRoutes(r, cfg, Services{
		Store:   store,
		Authn:   authn,
		ETags:   etags,
		Storage: storageSystem,
	})

	if err := serve(ctx, r, cfg.ServerAddress); err != nil {
		log.Fatal().Err(err).Msg("server error")
	}
	log.Info().Msg("server stopped")
}
