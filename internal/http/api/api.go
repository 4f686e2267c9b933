package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/loopboard/internal/db"
	"github.com/Nixie-Tech-LLC/loopboard/internal/http/middleware"
	"github.com/Nixie-Tech-LLC/loopboard/internal/model"
	"github.com/Nixie-Tech-LLC/loopboard/internal/validator"
)

type APIError struct {
	Code    int
	Message string
	Fields  validator.Errors
}

func (e *APIError) Error() string { return e.Message }

// Response lets a handler pick a status other than 200.
type Response struct {
	Status int
	Body   any
}

func Created(body any) Response { return Response{Status: http.StatusCreated, Body: body} }

var NoContent = Response{Status: http.StatusNoContent}

type HandlerFuncWithAuth func(ctx *gin.Context, identity *model.Identity) (any, *APIError)
type HandlerFunc func(ctx *gin.Context) (any, *APIError)

// FromError maps service errors onto an APIError. msg is used for anything
// unrecognised, which is reported as a 500.
func FromError(err error, msg string) *APIError {
	var verrs validator.Errors
	switch {
	case errors.As(err, &verrs):
		return &APIError{Code: http.StatusBadRequest, Message: "validation failed", Fields: verrs}
	case errors.Is(err, db.ErrNotFound):
		return &APIError{Code: http.StatusNotFound, Message: "not found"}
	case errors.Is(err, db.ErrConflict):
		return &APIError{Code: http.StatusConflict, Message: "already exists"}
	}
	return &APIError{Code: http.StatusInternalServerError, Message: msg}
}

// BindError wraps a failed ShouldBind into a 400 with field details.
func BindError(err error) *APIError {
	return &APIError{Code: http.StatusBadRequest, Message: "invalid request body", Fields: validator.FromError(err)}
}

func ResolveEndpointWithAuth(h HandlerFuncWithAuth) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		identity, ok := middleware.GetCurrentIdentity(ctx)
		if !ok {
			ctx.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		result, apiErr := h(ctx, identity)
		write(ctx, result, apiErr)
	}
}

func ResolveEndpoint(h HandlerFunc) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		result, apiErr := h(ctx)
		write(ctx, result, apiErr)
	}
}

func write(ctx *gin.Context, result any, apiErr *APIError) {
	if apiErr != nil {
		if apiErr.Code >= http.StatusInternalServerError {
			log.Error().Str("path", ctx.FullPath()).Int("status", apiErr.Code).Msg(apiErr.Message)
		}
		body := gin.H{"error": apiErr.Message}
		if len(apiErr.Fields) > 0 {
			body["fields"] = apiErr.Fields
		}
		ctx.JSON(apiErr.Code, body)
		return
	}

	// the handler already answered (e.g. 304)
	if ctx.Writer.Written() {
		return
	}

	if resp, ok := result.(Response); ok {
		if resp.Body == nil {
			ctx.Status(resp.Status)
			return
		}
		ctx.JSON(resp.Status, resp.Body)
		return
	}
	ctx.JSON(http.StatusOK, result)
}
