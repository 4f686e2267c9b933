package endpoints

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Nixie-Tech-LLC/loopboard/internal/db"
	"github.com/Nixie-Tech-LLC/loopboard/internal/http/api"
	"github.com/Nixie-Tech-LLC/loopboard/internal/http/api/admin/control/packets"
	"github.com/Nixie-Tech-LLC/loopboard/internal/model"
	"github.com/Nixie-Tech-LLC/loopboard/internal/presence"
)

// DashboardModule mounts the admin overview counters
func DashboardModule(store db.Store, presence *presence.Service) api.Module {
	return api.ModuleFunc(func(c *api.Controller) {
		c.GET("/dashboard", func(ctx *gin.Context, _ *model.Identity) (any, *api.APIError) {
			reqCtx := ctx.Request.Context()
			users, err := store.ListUsers(reqCtx)
			if err != nil {
				return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not count users"}
			}
			media, err := store.CountMedia(reqCtx)
			if err != nil {
				return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not count media"}
			}
			playing, err := presence.CountPlaying(reqCtx)
			if err != nil {
				return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not count playing users"}
			}
			return packets.DashboardResponse{TotalUsers: len(users), TotalMedia: media, PlayingUsers: playing}, nil
		})
	})
}
