package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nixie-Tech-LLC/loopboard/internal/auth"
	"github.com/Nixie-Tech-LLC/loopboard/internal/db"
	"github.com/Nixie-Tech-LLC/loopboard/internal/model"
	"github.com/Nixie-Tech-LLC/loopboard/internal/validator"
)

func TestFromError(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, FromError(fmt.Errorf("media x: %w", db.ErrNotFound), "x").Code)
	assert.Equal(t, http.StatusConflict, FromError(db.ErrConflict, "x").Code)

	verr := FromError(validator.Invalid("url", "URL", "url must be a valid URL"), "x")
	assert.Equal(t, http.StatusBadRequest, verr.Code)
	require.Len(t, verr.Fields, 1)

	other := FromError(errors.New("boom"), "could not list media")
	assert.Equal(t, http.StatusInternalServerError, other.Code)
	assert.Equal(t, "could not list media", other.Message)
}

func TestResolveEndpoint(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	MountGroup(r, GroupConfig{Prefix: "/api"}, ModuleFunc(func(c *Controller) {
		c.PUBLIC_GET("/ok", func(*gin.Context) (any, *APIError) { return gin.H{"a": 1}, nil })
		c.PUBLIC_POST("/created", func(*gin.Context) (any, *APIError) { return Created(gin.H{"id": "x"}), nil })
		c.PUBLIC_POST("/none", func(*gin.Context) (any, *APIError) { return NoContent, nil })
		c.PUBLIC_GET("/bad", func(*gin.Context) (any, *APIError) {
			return nil, FromError(validator.Invalid("name", "REQUIRED", "name is required"), "")
		})
		c.PUBLIC_GET("/cached", func(ctx *gin.Context) (any, *APIError) {
			ctx.AbortWithStatus(http.StatusNotModified)
			return nil, nil
		})
	}))

	do := func(method, path string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(method, path, nil))
		return w
	}

	assert.Equal(t, http.StatusOK, do(http.MethodGet, "/api/ok").Code)
	assert.Equal(t, http.StatusCreated, do(http.MethodPost, "/api/created").Code)
	assert.Equal(t, http.StatusNoContent, do(http.MethodPost, "/api/none").Code)
	assert.Equal(t, http.StatusNotModified, do(http.MethodGet, "/api/cached").Code)

	w := do(http.MethodGet, "/api/bad")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	var body struct {
		Error  string                      `json:"error"`
		Fields []validator.ValidationError `json:"fields"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "validation failed", body.Error)
	assert.Equal(t, "name", body.Fields[0].Field)
}

func TestAuthGroupRequiresToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	MountGroup(r, GroupConfig{Prefix: "/api/admin", Auth: true, SecretKey: "s", Resolver: nopResolver{}}, ModuleFunc(func(c *Controller) {
		c.GET("/ping", func(*gin.Context, *model.Identity) (any, *APIError) { return "pong", nil })
	}))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/admin/ping", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

type nopResolver struct{}

func (nopResolver) Resolve(context.Context, auth.Claims) (model.Identity, error) {
	return model.Identity{}, nil
}
