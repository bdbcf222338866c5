package router

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

type HandlerFunc[Request, Response any] func(ctx context.Context, req *Request) (*Response, error)

// MiddlewareFunc runs before the handler. A returned error aborts the request.
type MiddlewareFunc func(ctx context.Context) (context.Context, error)

// CloserFunc runs after the response is written.
type CloserFunc func(ctx context.Context)

type Router struct {
	Inner gin.IRouter

	root        context.Context
	middlewares []MiddlewareFunc
	closers     []CloserFunc
}

// New returns a router whose request contexts inherit the service-wide values
// of root.
func New(root context.Context) *Router {
	engine := gin.New()
	engine.Use(gin.Recovery())

	return &Router{Inner: engine, root: root}
}

func GET[Request, Response any](r *Router, pattern string, handler HandlerFunc[Request, Response]) {
	r.Inner.GET(pattern, wrapHandler(r, http.MethodGet, handler))
}

func POST[Request, Response any](r *Router, pattern string, handler HandlerFunc[Request, Response]) {
	r.Inner.POST(pattern, wrapHandler(r, http.MethodPost, handler))
}

func (r *Router) Before(middleware MiddlewareFunc) {
	r.middlewares = append(r.middlewares, middleware)
}

func (r *Router) After(closer CloserFunc) {
	r.closers = append(r.closers, closer)
}

// Group returns a router for the pattern prefix sharing the middlewares that
// are registered so far.
func (r *Router) Group(pattern string) *Router {
	return &Router{
		Inner:       r.Inner.Group(pattern),
		root:        r.root,
		middlewares: append([]MiddlewareFunc{}, r.middlewares...),
		closers:     append([]CloserFunc{}, r.closers...),
	}
}

// Handle registers a plain http.Handler, e.g. the metrics endpoint.
func (r *Router) Handle(method, pattern string, handler http.Handler) {
	r.Inner.Handle(method, pattern, gin.WrapH(handler))
}

func (r *Router) Handler() http.Handler {
	return r.Inner.(*gin.Engine)
}
