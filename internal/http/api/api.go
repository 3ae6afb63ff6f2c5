package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Glowcast-Media/glowcast/internal/http/middleware"
	"github.com/Glowcast-Media/glowcast/internal/model"
)

// APIError is a handler failure mapped straight onto an HTTP response.
type APIError struct {
	Code    int
	Message string
}

type HandlerFuncWithAuth func(ctx *gin.Context, user *model.User) (any, *APIError)
type HandlerFunc func(ctx *gin.Context) (any, *APIError)

// Controller wraps a gin group so endpoint modules can register handlers in
// the (result, *APIError) style without repeating response plumbing.
type Controller struct {
	Group *gin.RouterGroup
}

func (c *Controller) GET(path string, h HandlerFunc)    { c.Group.GET(path, resolveEndpoint(h)) }
func (c *Controller) POST(path string, h HandlerFunc)   { c.Group.POST(path, resolveEndpoint(h)) }
func (c *Controller) PUT(path string, h HandlerFunc)    { c.Group.PUT(path, resolveEndpoint(h)) }
func (c *Controller) DELETE(path string, h HandlerFunc) { c.Group.DELETE(path, resolveEndpoint(h)) }

func (c *Controller) AuthGET(path string, h HandlerFuncWithAuth) {
	c.Group.GET(path, resolveEndpointWithAuth(h))
}
func (c *Controller) AuthPOST(path string, h HandlerFuncWithAuth) {
	c.Group.POST(path, resolveEndpointWithAuth(h))
}
func (c *Controller) AuthPUT(path string, h HandlerFuncWithAuth) {
	c.Group.PUT(path, resolveEndpointWithAuth(h))
}
func (c *Controller) AuthDELETE(path string, h HandlerFuncWithAuth) {
	c.Group.DELETE(path, resolveEndpointWithAuth(h))
}

func resolveEndpointWithAuth(h HandlerFuncWithAuth) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		user, ok := middleware.GetCurrentUser(ctx)
		if !ok {
			ctx.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		result, apiErr := h(ctx, user)
		if apiErr != nil {
			ctx.JSON(apiErr.Code, gin.H{"error": apiErr.Message})
			return
		}
		if result == nil {
			ctx.Status(http.StatusNoContent)
			return
		}
		ctx.JSON(http.StatusOK, result)
	}
}

func resolveEndpoint(h HandlerFunc) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		result, apiErr := h(ctx)
		if apiErr != nil {
			ctx.JSON(apiErr.Code, gin.H{"error": apiErr.Message})
			return
		}
		if result == nil {
			ctx.Status(http.StatusNoContent)
			return
		}
		ctx.JSON(http.StatusOK, result)
	}
}
