package endpoints

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/loopboard/internal/auth"
	"github.com/Nixie-Tech-LLC/loopboard/internal/db"
	"github.com/Nixie-Tech-LLC/loopboard/internal/http/api"
	"github.com/Nixie-Tech-LLC/loopboard/internal/http/api/admin/control/packets"
	"github.com/Nixie-Tech-LLC/loopboard/internal/model"
	"github.com/Nixie-Tech-LLC/loopboard/internal/presence"
	redisclient "github.com/Nixie-Tech-LLC/loopboard/internal/redis"
)

type UserController struct {
	store    db.Store
	presence *presence.Service
	etags    *redisclient.ETagCache
}

// UserModule mounts the display-account management endpoints
func UserModule(store db.Store, presence *presence.Service, etags *redisclient.ETagCache) api.Module {
	ctl := &UserController{store: store, presence: presence, etags: etags}
	return api.ModuleFunc(func(c *api.Controller) {
		c.GET("/users", ctl.listUsers)
		c.POST("/users", ctl.createUser)
		c.GET("/users/:id", ctl.getUser)
		c.PUT("/users/:id", ctl.updateUser)
		c.DELETE("/users/:id", ctl.deleteUser)
		c.PUT("/users/:id/status", ctl.setStatus)
	})
}

func (u *UserController) listUsers(ctx *gin.Context, _ *model.Identity) (any, *api.APIError) {
	all, err := u.store.ListUsers(ctx.Request.Context())
	if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not list users"}
	}
	out := make([]packets.UserResponse, 0, len(all))
	for _, x := range all {
		out = append(out, packets.NewUserResponse(x))
	}
	return out, nil
}

func (u *UserController) getUser(ctx *gin.Context, _ *model.Identity) (any, *api.APIError) {
	x, err := u.store.GetUserByID(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		return nil, api.FromError(err, "could not load user")
	}
	return packets.NewUserResponse(x), nil
}

func (u *UserController) createUser(ctx *gin.Context, _ *model.Identity) (any, *api.APIError) {
	var request packets.CreateUserRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, api.BindError(err)
	}

	hashed, err := auth.HashPassword(request.Password)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not hash password"}
	}

	created, err := u.store.CreateUser(ctx.Request.Context(), request.Username, hashed, request.Location)
	if err != nil {
		if errors.Is(err, db.ErrConflict) {
			log.Warn().Str("username", request.Username).Msg("[users] username already taken")
			return nil, &api.APIError{Code: http.StatusConflict, Message: "username already taken"}
		}
		return nil, api.FromError(err, "could not create user")
	}
	return api.Created(packets.NewUserResponse(created)), nil
}

func (u *UserController) updateUser(ctx *gin.Context, _ *model.Identity) (any, *api.APIError) {
	var request packets.UpdateUserRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, api.BindError(err)
	}

	patch := model.UserPatch{Username: request.Username, Location: request.Location}
	if request.Password != nil {
		hashed, err := auth.HashPassword(*request.Password)
		if err != nil {
			return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not hash password"}
		}
		patch.PasswordHash = &hashed
	}

	id := ctx.Param("id")
	if err := u.store.UpdateUser(ctx.Request.Context(), id, patch); err != nil {
		if errors.Is(err, db.ErrConflict) {
			return nil, &api.APIError{Code: http.StatusConflict, Message: "username already taken"}
		}
		return nil, api.FromError(err, "could not update user")
	}
	u.etags.Invalidate(ctx.Request.Context(), id)

	updated, err := u.store.GetUserByID(ctx.Request.Context(), id)
	if err != nil {
		return nil, api.FromError(err, "could not load user")
	}
	return packets.NewUserResponse(updated), nil
}

func (u *UserController) deleteUser(ctx *gin.Context, _ *model.Identity) (any, *api.APIError) {
	id := ctx.Param("id")
	if err := u.store.DeleteUser(ctx.Request.Context(), id); err != nil {
		return nil, api.FromError(err, "could not delete user")
	}
	u.etags.Invalidate(ctx.Request.Context(), id)
	return api.NoContent, nil
}

// PUT /api/admin/users/:id/status: Deactivate / Active from the admin actions view
func (u *UserController) setStatus(ctx *gin.Context, identity *model.Identity) (any, *api.APIError) {
	var request packets.SetStatusRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, api.BindError(err)
	}

	id := ctx.Param("id")
	if err := u.presence.SetStatus(ctx.Request.Context(), id, request.Status); err != nil {
		return nil, api.FromError(err, "could not change status")
	}
	log.Info().Str("user_id", id).Str("status", string(request.Status)).Str("admin", identity.Username).Msg("[users] status set by admin")

	updated, err := u.store.GetUserByID(ctx.Request.Context(), id)
	if err != nil {
		return nil, api.FromError(err, "could not load user")
	}
	return packets.NewUserResponse(updated), nil
}
