package endpoints

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/loopboard/internal/db"
	"github.com/Nixie-Tech-LLC/loopboard/internal/http/api"
	"github.com/Nixie-Tech-LLC/loopboard/internal/model"
	redisclient "github.com/Nixie-Tech-LLC/loopboard/internal/redis"
)

type PlayController struct {
	store db.Store
	etags *redisclient.ETagCache
}

// PlayModule mounts the endpoint display clients poll
func PlayModule(store db.Store, etags *redisclient.ETagCache) api.Module {
	ctl := &PlayController{store: store, etags: etags}
	return api.ModuleFunc(func(c *api.Controller) {
		c.GET("/session", ctl.session)
	})
}

func etagFor(body []byte) string {
	sum := sha1.Sum(body)
	return `"` + hex.EncodeToString(sum[:]) + `"`
}

// GET /api/play/session
//
// Re-reads the caller's own account by username and returns what it should
// be showing. A matching If-None-Match is answered with 304 from the cache
// alone; the cache only ever holds tags of the current record.
func (p *PlayController) session(ctx *gin.Context, identity *model.Identity) (any, *api.APIError) {
	reqCtx := ctx.Request.Context()
	ifNoneMatch := ctx.GetHeader("If-None-Match")
	if ifNoneMatch != "" {
		if cached, ok := p.etags.Get(reqCtx, identity.AccountID); ok && cached == ifNoneMatch {
			ctx.Header("ETag", cached)
			ctx.AbortWithStatus(http.StatusNotModified)
			return nil, nil
		}
	}

	version := p.etags.Version(reqCtx, identity.AccountID)
	user, err := p.store.GetUserByUsername(reqCtx, identity.Username)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, &api.APIError{Code: http.StatusUnauthorized, Message: "account not found"}
		}
		log.Error().Err(err).Str("username", identity.Username).Msg("[play] failed to load account")
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not load session"}
	}
	// the username now belongs to a different account
	if user.ID != identity.AccountID {
		return nil, &api.APIError{Code: http.StatusUnauthorized, Message: "account not found"}
	}

	body, err := json.Marshal(user.Snapshot())
	if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not encode session"}
	}
	tag := etagFor(body)
	p.etags.Set(reqCtx, user.ID, tag, version)

	ctx.Header("ETag", tag)
	if ifNoneMatch == tag {
		ctx.AbortWithStatus(http.StatusNotModified)
		return nil, nil
	}
	ctx.Data(http.StatusOK, "application/json; charset=utf-8", body)
	return nil, nil
}
