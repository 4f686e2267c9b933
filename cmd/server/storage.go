package main

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/loopboard/internal/config"
	"github.com/Nixie-Tech-LLC/loopboard/internal/storage"
)

// InitStorage selects and returns the configured storage backend
func InitStorage(ctx context.Context, cfg *config.Config) storage.Storage {
	switch cfg.Storage {
	case config.StorageSpaces:
		spacesStorage, err := storage.NewSpacesStorage(
			cfg.SpacesEndpoint,
			cfg.SpacesRegion,
			cfg.SpacesBucket,
			cfg.SpacesCDNURL,
			cfg.SpacesAccessKey,
			cfg.SpacesSecretKey,
		)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize Spaces storage")
		}
		log.Info().Str("cdn", cfg.SpacesCDNURL).Msg("using DigitalOcean Spaces storage")
		return spacesStorage

	case config.StorageMinio:
		minioStorage, err := storage.NewMinioStorage(ctx,
			cfg.MinioEndpoint,
			cfg.MinioAccessKey,
			cfg.MinioSecretKey,
			cfg.MinioBucket,
			cfg.MinioPublicURL,
			cfg.MinioUseSSL,
		)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize MinIO storage")
		}
		log.Info().Str("endpoint", cfg.MinioEndpoint).Str("bucket", cfg.MinioBucket).Msg("using MinIO storage")
		return minioStorage
	}

	log.Info().Str("dir", cfg.UploadDir).Msg("using local file storage")
	return storage.NewLocalStorage(cfg.UploadDir, cfg.PublicBaseURL)
}
