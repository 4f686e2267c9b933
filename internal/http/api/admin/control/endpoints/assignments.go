package endpoints

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/loopboard/internal/assign"
	"github.com/Nixie-Tech-LLC/loopboard/internal/http/api"
	"github.com/Nixie-Tech-LLC/loopboard/internal/http/api/admin/control/packets"
	"github.com/Nixie-Tech-LLC/loopboard/internal/model"
)

type AssignmentController struct {
	engine *assign.Engine
}

// AssignmentModule mounts playlist assignment for one user or every user
func AssignmentModule(engine *assign.Engine) api.Module {
	ctl := &AssignmentController{engine: engine}
	return api.ModuleFunc(func(c *api.Controller) {
		c.POST("/assignments", ctl.commit)
		c.POST("/assignments/preview", ctl.preview)
	})
}

func bindAssign(ctx *gin.Context) (assign.Request, *api.APIError) {
	var request packets.AssignRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return assign.Request{}, api.BindError(err)
	}
	target := assign.User(request.UserID)
	if request.All {
		target = assign.All
	}
	return assign.Request{Target: target, FromCurrent: request.FromCurrent, MediaIDs: request.MediaIDs}, nil
}

// POST /api/admin/assignments/preview
func (a *AssignmentController) preview(ctx *gin.Context, _ *model.Identity) (any, *api.APIError) {
	req, apiErr := bindAssign(ctx)
	if apiErr != nil {
		return nil, apiErr
	}
	sel, err := a.engine.Plan(ctx.Request.Context(), req)
	if err != nil {
		return nil, api.FromError(err, "could not build selection")
	}
	return packets.AssignResponse{MediaPlaying: sel.Refs()}, nil
}

// POST /api/admin/assignments
func (a *AssignmentController) commit(ctx *gin.Context, identity *model.Identity) (any, *api.APIError) {
	req, apiErr := bindAssign(ctx)
	if apiErr != nil {
		return nil, apiErr
	}
	sel, err := a.engine.Plan(ctx.Request.Context(), req)
	if err != nil {
		return nil, api.FromError(err, "could not build selection")
	}

	res, err := a.engine.Commit(ctx.Request.Context(), req.Target, sel)
	resp := packets.AssignResponse{MediaPlaying: res.Playlist, Users: res.Users}
	if err != nil {
		if errors.Is(err, assign.ErrPartialCommit) {
			resp.Error = err.Error()
			return api.Response{Status: http.StatusMultiStatus, Body: resp}, nil
		}
		return nil, api.FromError(err, "could not assign media")
	}

	log.Info().Str("admin", identity.Username).Bool("all", req.Target.All).Str("user_id", req.Target.UserID).
		Int("items", len(res.Playlist)).Msg("[assign] playlist committed")
	return resp, nil
}
