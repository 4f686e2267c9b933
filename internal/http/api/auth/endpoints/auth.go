package endpoints

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/loopboard/internal/auth"
	"github.com/Nixie-Tech-LLC/loopboard/internal/http/api"
	"github.com/Nixie-Tech-LLC/loopboard/internal/http/api/auth/packets"
	"github.com/Nixie-Tech-LLC/loopboard/internal/model"
	"github.com/Nixie-Tech-LLC/loopboard/internal/presence"
)

// AuthPublicModule mounts public auth endpoints (/auth/login, /auth/unload)
func AuthPublicModule(jwtSecret string, authn *auth.Authenticator, presence *presence.Service) api.Module {
	ctl := newAccountManager(jwtSecret, authn, presence)
	return api.ModuleFunc(func(c *api.Controller) {
		c.PUBLIC_POST("/login", ctl.login)
		c.PUBLIC_POST("/unload", ctl.unload)
	})
}

// AuthSessionModule mounts private session endpoints (JWT required)
func AuthSessionModule(jwtSecret string, authn *auth.Authenticator, presence *presence.Service) api.Module {
	ctl := newAccountManager(jwtSecret, authn, presence)
	return api.ModuleFunc(func(c *api.Controller) {
		c.POST("/logout", ctl.logout)
		c.GET("/me", ctl.currentIdentity)
	})
}

type AccountManager struct {
	jwtSecret string
	authn     *auth.Authenticator
	presence  *presence.Service
}

func newAccountManager(secret string, authn *auth.Authenticator, presence *presence.Service) *AccountManager {
	return &AccountManager{jwtSecret: secret, authn: authn, presence: presence}
}

// POST /api/auth/login
func (a *AccountManager) login(ctx *gin.Context) (any, *api.APIError) {
	var request packets.LoginRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, api.BindError(err)
	}

	identity, err := a.authn.Authenticate(ctx.Request.Context(), request.Username, request.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			log.Warn().Str("username", request.Username).Msg("[auth] rejected login")
			return nil, &api.APIError{Code: http.StatusUnauthorized, Message: auth.ErrInvalidCredentials.Error()}
		}
		log.Error().Err(err).Msg("[auth] credential check failed")
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not log in"}
	}

	// displays go on air before they get a session
	if !identity.IsAdmin {
		if err := a.presence.MarkPlaying(ctx.Request.Context(), identity.AccountID); err != nil {
			log.Error().Err(err).Str("user_id", identity.AccountID).Msg("[auth] could not mark user playing")
			return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not start session"}
		}
		identity.Status = model.StatusPlaying
	}

	token, err := auth.GenerateJWT(identity, a.jwtSecret)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not generate token"}
	}

	return packets.LoginResponse{Token: token, Identity: identity}, nil
}

// POST /api/auth/logout
func (a *AccountManager) logout(ctx *gin.Context, identity *model.Identity) (any, *api.APIError) {
	if !identity.IsAdmin {
		if err := a.presence.Logout(ctx.Request.Context(), identity.AccountID); err != nil {
			return nil, api.FromError(err, "could not log out")
		}
	}
	return api.NoContent, nil
}

// POST /api/auth/unload
//
// Best effort: the client is going away and will not read the answer.
func (a *AccountManager) unload(ctx *gin.Context) (any, *api.APIError) {
	token := ctx.Query("token")
	if token == "" {
		token = ctx.PostForm("token")
	}
	if token == "" {
		var request packets.UnloadRequest
		// beacons are often sent as text/plain, so decode regardless of content type
		if raw, err := io.ReadAll(io.LimitReader(ctx.Request.Body, 4096)); err == nil && len(raw) > 0 {
			_ = json.Unmarshal(raw, &request)
		}
		token = request.Token
	}
	if token == "" {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "token is required"}
	}

	claims, err := auth.ParseToken(token, a.jwtSecret)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusUnauthorized, Message: "invalid token"}
	}
	if claims.Role == model.RoleUser {
		if err := a.presence.Unload(ctx.Request.Context(), claims.Subject); err != nil {
			log.Warn().Err(err).Str("user_id", claims.Subject).Msg("[auth] unload beacon could not be applied")
		}
	}
	return api.NoContent, nil
}

// GET /api/auth/me
func (a *AccountManager) currentIdentity(ctx *gin.Context, identity *model.Identity) (any, *api.APIError) {
	return identity, nil
}
