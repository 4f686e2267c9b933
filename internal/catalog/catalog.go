// Package catalog is the admin-managed media library. Items are copied by
// value into playlists, so nothing here ever touches an assignment.
package catalog

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/loopboard/internal/db"
	"github.com/Nixie-Tech-LLC/loopboard/internal/model"
	"github.com/Nixie-Tech-LLC/loopboard/internal/storage"
	"github.com/Nixie-Tech-LLC/loopboard/internal/validator"
)

type Service struct {
	store db.Store
	v     *validator.Validator
}

func NewService(store db.Store) *Service {
	return &Service{store: store, v: validator.NewValidator()}
}

// AddMedia validates and stores a new catalog entry.
func (s *Service) AddMedia(ctx context.Context, name, url string, kind model.Kind) (model.MediaItem, error) {
	name = strings.TrimSpace(name)
	url = strings.TrimSpace(url)
	if errs := s.check(&name, &url, &kind); len(errs) > 0 {
		return model.MediaItem{}, errs
	}

	item, err := s.store.CreateMedia(ctx, name, url, kind)
	if err != nil {
		return model.MediaItem{}, err
	}
	log.Info().Str("media_id", item.ID).Str("kind", string(kind)).Msg("[media] added")
	return item, nil
}

// UpdateMedia applies a partial update. Only the supplied fields are
// validated, except that a youtube kind is always checked against the
// resulting URL.
func (s *Service) UpdateMedia(ctx context.Context, id string, patch model.MediaPatch) (model.MediaItem, error) {
	current, err := s.store.GetMediaByID(ctx, id)
	if err != nil {
		return model.MediaItem{}, err
	}
	if patch.Name != nil {
		trimmed := strings.TrimSpace(*patch.Name)
		patch.Name = &trimmed
	}
	if patch.URL != nil {
		trimmed := strings.TrimSpace(*patch.URL)
		patch.URL = &trimmed
	}

	errs := s.check(patch.Name, patch.URL, patch.Kind)
	if len(errs) == 0 {
		url, kind := current.URL, current.Kind
		if patch.URL != nil {
			url = *patch.URL
		}
		if patch.Kind != nil {
			kind = *patch.Kind
		}
		if patch.URL != nil || patch.Kind != nil {
			errs = append(errs, youtubeCheck(url, kind)...)
		}
	}
	if len(errs) > 0 {
		return model.MediaItem{}, errs
	}
	if patch.Empty() {
		return current, nil
	}

	if err := s.store.UpdateMedia(ctx, id, patch); err != nil {
		return model.MediaItem{}, err
	}
	return s.store.GetMediaByID(ctx, id)
}

// DeleteMedia removes the entry. Existing playlists keep their copies.
func (s *Service) DeleteMedia(ctx context.Context, id string) error {
	if err := s.store.DeleteMedia(ctx, id); err != nil {
		return err
	}
	log.Info().Str("media_id", id).Msg("[media] deleted")
	return nil
}

func (s *Service) ListMedia(ctx context.Context) ([]model.MediaItem, error) {
	return s.store.ListMedia(ctx)
}

func (s *Service) GetMedia(ctx context.Context, id string) (model.MediaItem, error) {
	return s.store.GetMediaByID(ctx, id)
}

// ImportUpload registers a file accepted by the upload backend.
func (s *Service) ImportUpload(ctx context.Context, displayName string, up storage.Upload) (model.MediaItem, error) {
	return s.AddMedia(ctx, displayName, up.PublicURL, up.ResourceType)
}

// check validates whichever fields are non-nil.
func (s *Service) check(name, url *string, kind *model.Kind) validator.Errors {
	var errs validator.Errors
	if name != nil && *name == "" {
		errs = append(errs, validator.Invalid("name", "REQUIRED", "name is required")...)
	}
	if url != nil {
		errs = append(errs, s.v.Var("url", *url, "required,url")...)
	}
	if kind != nil && !kind.Valid() {
		errs = append(errs, validator.Invalid("type", "ONEOF", "type must be one of: image video youtube")...)
	}
	if len(errs) == 0 && url != nil && kind != nil {
		errs = append(errs, youtubeCheck(*url, *kind)...)
	}
	return errs
}

func youtubeCheck(url string, kind model.Kind) validator.Errors {
	if kind == model.KindYouTube && model.YouTubeID(url) == "" {
		return validator.Invalid("url", "YOUTUBE", "url must be a YouTube video link")
	}
	return nil
}
