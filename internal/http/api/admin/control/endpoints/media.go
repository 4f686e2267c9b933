package endpoints

import (
	"errors"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/loopboard/internal/catalog"
	"github.com/Nixie-Tech-LLC/loopboard/internal/http/api"
	"github.com/Nixie-Tech-LLC/loopboard/internal/http/api/admin/control/packets"
	"github.com/Nixie-Tech-LLC/loopboard/internal/model"
	"github.com/Nixie-Tech-LLC/loopboard/internal/storage"
	"github.com/Nixie-Tech-LLC/loopboard/internal/validator"
)

type MediaController struct {
	catalog *catalog.Service
	storage storage.Storage
}

func newMediaController(catalog *catalog.Service, storage storage.Storage) *MediaController {
	return &MediaController{catalog: catalog, storage: storage}
}

// MediaModule mounts all authenticated /media endpoints
func MediaModule(catalog *catalog.Service, storage storage.Storage) api.Module {
	ctl := newMediaController(catalog, storage)
	return api.ModuleFunc(func(c *api.Controller) {
		c.GET("/media", ctl.listMedia)
		c.POST("/media", ctl.createMedia)
		c.POST("/media/upload", ctl.uploadMedia)
		c.GET("/media/:id", ctl.getMedia)
		c.PUT("/media/:id", ctl.updateMedia)
		c.DELETE("/media/:id", ctl.deleteMedia)
	})
}

func (c *MediaController) listMedia(ctx *gin.Context, _ *model.Identity) (any, *api.APIError) {
	all, err := c.catalog.ListMedia(ctx.Request.Context())
	if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not list media"}
	}

	out := make([]packets.MediaResponse, 0, len(all))
	for _, m := range all {
		out = append(out, packets.NewMediaResponse(m))
	}
	return out, nil
}

func (c *MediaController) getMedia(ctx *gin.Context, _ *model.Identity) (any, *api.APIError) {
	m, err := c.catalog.GetMedia(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		return nil, api.FromError(err, "could not load media")
	}
	return packets.NewMediaResponse(m), nil
}

func (c *MediaController) createMedia(ctx *gin.Context, identity *model.Identity) (any, *api.APIError) {
	var request packets.CreateMediaRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, api.BindError(err)
	}

	m, err := c.catalog.AddMedia(ctx.Request.Context(), request.Name, request.URL, request.Type)
	if err != nil {
		return nil, api.FromError(err, "could not create media")
	}
	log.Debug().Str("media_id", m.ID).Str("admin", identity.Username).Msg("[media] created")
	return api.Created(packets.NewMediaResponse(m)), nil
}

// binary upload via multipart form: "file" plus an optional display "name"
func (c *MediaController) uploadMedia(ctx *gin.Context, _ *model.Identity) (any, *api.APIError) {
	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		log.Warn().Err(err).Msg("[media] uploadMedia: missing file")
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "file is required"}
	}

	name := strings.TrimSpace(ctx.PostForm("name"))
	if name == "" {
		name = strings.TrimSuffix(fileHeader.Filename, filepath.Ext(fileHeader.Filename))
	}

	upload, err := c.storage.SaveFile(fileHeader, fileHeader.Filename)
	if err != nil {
		if errors.Is(err, storage.ErrUnsupportedType) {
			return nil, api.FromError(validator.Invalid("file", "TYPE", "file must be an image or a video"), "")
		}
		log.Error().Err(err).Msg("[media] uploadMedia: save failed")
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not save file"}
	}

	m, err := c.catalog.ImportUpload(ctx.Request.Context(), name, upload)
	if err != nil {
		return nil, api.FromError(err, "could not create media")
	}
	return api.Created(packets.NewMediaResponse(m)), nil
}

func (c *MediaController) updateMedia(ctx *gin.Context, _ *model.Identity) (any, *api.APIError) {
	var request packets.UpdateMediaRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, api.BindError(err)
	}

	m, err := c.catalog.UpdateMedia(ctx.Request.Context(), ctx.Param("id"), model.MediaPatch{
		Name: request.Name,
		URL:  request.URL,
		Kind: request.Type,
	})
	if err != nil {
		return nil, api.FromError(err, "could not update media")
	}
	return packets.NewMediaResponse(m), nil
}

func (c *MediaController) deleteMedia(ctx *gin.Context, _ *model.Identity) (any, *api.APIError) {
	if err := c.catalog.DeleteMedia(ctx.Request.Context(), ctx.Param("id")); err != nil {
		return nil, api.FromError(err, "could not delete media")
	}
	return api.NoContent, nil
}
