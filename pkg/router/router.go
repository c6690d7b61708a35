package router

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/cors"
	"github.com/spdm-lab/rewards/config"
	"github.com/spdm-lab/rewards/pkg/errorx"
	"github.com/spdm-lab/rewards/pkg/logger"
	"github.com/spdm-lab/rewards/pkg/xcontext"
	"gorm.io/gorm"
)

type HandlerFunc[Request, Response any] func(ctx context.Context, req *Request) (*Response, error)

// MiddlewareFunc may return a new context which replaces the current one for
// the rest of the chain. Returning a nil context keeps the current one.
type MiddlewareFunc func(ctx context.Context) (context.Context, error)

// CloserFunc runs after the response is written, even if the request failed.
type CloserFunc func(ctx context.Context)

type Router struct {
	mux *http.ServeMux

	befores []MiddlewareFunc
	afters  []MiddlewareFunc
	closers []CloserFunc

	cfg    config.Configs
	logger logger.Logger
	db     *gorm.DB
}

func New(db *gorm.DB, cfg config.Configs, logger logger.Logger) *Router {
	return &Router{
		mux:    http.NewServeMux(),
		cfg:    cfg,
		logger: logger,
		db:     db,
	}
}

// Branch returns a router sharing the same routes. Middlewares added to the
// branch do not affect its parent.
func (r *Router) Branch() *Router {
	clone := *r
	clone.befores = append([]MiddlewareFunc{}, r.befores...)
	clone.afters = append([]MiddlewareFunc{}, r.afters...)
	clone.closers = append([]CloserFunc{}, r.closers...)
	return &clone
}

func (r *Router) Before(m MiddlewareFunc) {
	r.befores = append(r.befores, m)
}

func (r *Router) After(m MiddlewareFunc) {
	r.afters = append(r.afters, m)
}

func (r *Router) AddCloser(c CloserFunc) {
	r.closers = append(r.closers, c)
}

func (r *Router) Static(pattern, root string) {
	r.mux.Handle(pattern, http.StripPrefix(pattern, http.FileServer(http.Dir(root))))
}

// Handle registers a raw http handler, it is used for websocket upgrades.
func (r *Router) Handle(pattern string, handler func(ctx context.Context, w http.ResponseWriter, req *http.Request)) {
	r.mux.HandleFunc(pattern, func(w http.ResponseWriter, req *http.Request) {
		ctx := r.newContext(req, w)
		ctx, err := r.runBefores(ctx)
		if err != nil {
			ctx = xcontext.WithError(ctx, err)
			handleResponse(ctx)
			r.runClosers(ctx)
			return
		}

		handler(ctx, w, req)
		r.runClosers(ctx)
	})
}

func (r *Router) Handler(allowedOrigins ...string) http.Handler {
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}

	return cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}).Handler(r.mux)
}

func GET[Request, Response any](r *Router, pattern string, handler HandlerFunc[Request, Response]) {
	route(r, http.MethodGet, pattern, handler)
}

func POST[Request, Response any](r *Router, pattern string, handler HandlerFunc[Request, Response]) {
	route(r, http.MethodPost, pattern, handler)
}

func route[Request, Response any](r *Router, method, pattern string, handler HandlerFunc[Request, Response]) {
	befores := r.befores
	afters := r.afters
	closers := r.closers

	r.mux.HandleFunc(pattern, func(w http.ResponseWriter, req *http.Request) {
		ctx := r.newContext(req, w)
		defer func() {
			handleResponse(ctx)
			for _, c := range closers {
				c(ctx)
			}
		}()

		if req.Method != method {
			ctx = xcontext.WithError(ctx, errNotAllowed(method))
			return
		}

		ctx, err := runMiddlewares(ctx, befores)
		if err != nil {
			ctx = xcontext.WithError(ctx, err)
			return
		}

		request := new(Request)
		if err := parseRequest(req, request); err != nil {
			xcontext.Logger(ctx).Debugf("Cannot parse request: %v", err)
			ctx = xcontext.WithError(ctx, errBadRequest)
			return
		}

		resp, err := handler(ctx, request)
		if err != nil {
			ctx = xcontext.WithError(ctx, err)
			return
		}

		ctx = withResponse(ctx, resp)
		ctx, err = runMiddlewares(ctx, afters)
		if err != nil {
			ctx = xcontext.WithError(ctx, err)
		}
	})
}

func (r *Router) newContext(req *http.Request, w http.ResponseWriter) context.Context {
	ctx := req.Context()
	ctx = xcontext.WithHTTPRequest(ctx, req)
	ctx = xcontext.WithHTTPWriter(ctx, w)
	ctx = xcontext.WithConfigs(ctx, r.cfg)
	ctx = xcontext.WithLogger(ctx, r.logger)
	ctx = xcontext.WithDB(ctx, r.db)
	ctx = xcontext.WithStartTime(ctx, time.Now())
	return ctx
}

func (r *Router) runBefores(ctx context.Context) (context.Context, error) {
	return runMiddlewares(ctx, r.befores)
}

func (r *Router) runClosers(ctx context.Context) {
	for _, c := range r.closers {
		c(ctx)
	}
}

func runMiddlewares(ctx context.Context, middlewares []MiddlewareFunc) (context.Context, error) {
	for _, m := range middlewares {
		newCtx, err := m(ctx)
		if err != nil {
			return ctx, err
		}

		if newCtx != nil {
			ctx = newCtx
		}
	}

	return ctx, nil
}

func errNotAllowed(method string) error {
	return errorx.New(errorx.BadRequest, "Only %s is allowed", method)
}
