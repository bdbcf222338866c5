package router

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/slotdraw/backend/pkg/errorx"
	"github.com/slotdraw/backend/pkg/xcontext"
)

func wrapHandler[Request, Response any](
	router *Router,
	method string,
	handler HandlerFunc[Request, Response],
) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := xcontext.Inherit(c.Request.Context(), router.root)
		ctx = xcontext.WithHTTPRequest(ctx, c.Request)

		resp, err := func() (*Response, error) {
			for _, middleware := range router.middlewares {
				next, err := middleware(ctx)
				if err != nil {
					return nil, err
				}
				ctx = next
			}

			var req Request
			var err error
			switch method {
			case http.MethodGet:
				err = c.ShouldBindQuery(&req)
			default:
				err = c.ShouldBindJSON(&req)
			}
			if err != nil {
				xcontext.Logger(ctx).Debugf("Cannot bind the request: %v", err)
				return nil, errorx.New(errorx.BadRequest, "Invalid request")
			}

			return handler(ctx, &req)
		}()

		if err != nil {
			ctx = xcontext.WithError(ctx, err)
			writeError(ctx, c, err)
		} else {
			c.JSON(http.StatusOK, newResponse(resp))
		}

		for _, closer := range router.closers {
			closer(ctx)
		}
	}
}

func writeError(ctx context.Context, c *gin.Context, err error) {
	resp, status := newErrorResponse(err)
	if status == http.StatusInternalServerError {
		xcontext.Logger(ctx).Errorf("Request %s failed: %v", c.Request.URL.Path, err)
	}

	c.JSON(status, resp)
}
