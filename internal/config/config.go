package config

import (
	"fmt"
	"os"
	"strings"
)

const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"

	StorageLocal  = "local"
	StorageSpaces = "spaces"
	StorageMinio  = "minio"
)

// Config holds environment-based settings
type Config struct {
	Environment    string
	ServerAddress  string
	JWTSecret      string
	LogLevel       string
	Store          string
	DatabaseURL    string
	MigrationsPath string

	RedisAddress  string
	RedisUsername string
	RedisPassword string

	Storage       string
	UploadDir     string
	PublicBaseURL string

	SpacesEndpoint  string
	SpacesRegion    string
	SpacesBucket    string
	SpacesCDNURL    string
	SpacesAccessKey string
	SpacesSecretKey string

	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioPublicURL string
	MinioUseSSL    bool

	AdminUsername string
	AdminPassword string
}

func (c *Config) Development() bool {
	return c.Environment == "development"
}

func getenv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Environment:    getenv("APP_ENV", "production"),
		ServerAddress:  getenv("SERVER_ADDRESS", ":8080"),
		JWTSecret:      os.Getenv("JWT_SECRET"),
		LogLevel:       getenv("LOG_LEVEL", "info"),
		Store:          getenv("STORE", StorePostgres),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		MigrationsPath: getenv("MIGRATIONS_PATH", "./migrations"),

		RedisAddress:  os.Getenv("REDIS_ADDRESS"),
		RedisUsername: os.Getenv("REDIS_USERNAME"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),

		Storage:       getenv("STORAGE", StorageLocal),
		UploadDir:     getenv("UPLOAD_DIR", "./uploads"),
		PublicBaseURL: getenv("PUBLIC_BASE_URL", "http://localhost:8080"),

		SpacesEndpoint:  os.Getenv("SPACES_ENDPOINT"),
		SpacesRegion:    os.Getenv("SPACES_REGION"),
		SpacesBucket:    os.Getenv("SPACES_BUCKET"),
		SpacesCDNURL:    os.Getenv("SPACES_CDN_URL"),
		SpacesAccessKey: os.Getenv("SPACES_ACCESS_KEY"),
		SpacesSecretKey: os.Getenv("SPACES_SECRET_KEY"),

		MinioEndpoint:  os.Getenv("MINIO_ENDPOINT"),
		MinioAccessKey: os.Getenv("MINIO_ACCESS_KEY"),
		MinioSecretKey: os.Getenv("MINIO_SECRET_KEY"),
		MinioBucket:    getenv("MINIO_BUCKET", "media"),
		MinioPublicURL: os.Getenv("MINIO_PUBLIC_URL"),
		MinioUseSSL:    os.Getenv("MINIO_USE_SSL") == "true",

		AdminUsername: os.Getenv("ADMIN_USERNAME"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	switch cfg.Store {
	case StoreMemory:
	case StorePostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required when STORE=%s", StorePostgres)
		}
	default:
		return nil, fmt.Errorf("unknown STORE %q", cfg.Store)
	}

	switch cfg.Storage {
	case StorageLocal:
	case StorageSpaces:
		if cfg.SpacesBucket == "" || cfg.SpacesEndpoint == "" {
			return nil, fmt.Errorf("SPACES_ENDPOINT and SPACES_BUCKET are required when STORAGE=%s", StorageSpaces)
		}
	case StorageMinio:
		if cfg.MinioEndpoint == "" {
			return nil, fmt.Errorf("MINIO_ENDPOINT is required when STORAGE=%s", StorageMinio)
		}
	default:
		return nil, fmt.Errorf("unknown STORAGE %q", cfg.Storage)
	}

	if (cfg.AdminUsername == "") != (cfg.AdminPassword == "") {
		return nil, fmt.Errorf("ADMIN_USERNAME and ADMIN_PASSWORD must be set together")
	}

	return cfg, nil
}
