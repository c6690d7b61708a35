package router_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/spdm-lab/rewards/config"
	"github.com/spdm-lab/rewards/pkg/errorx"
	"github.com/spdm-lab/rewards/pkg/logger"
	"github.com/spdm-lab/rewards/pkg/router"
	"github.com/spdm-lab/rewards/pkg/xcontext"
	"github.com/stretchr/testify/require"
)

type echoRequest struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

type echoResponse struct {
	Name   string `json:"name"`
	Count  int    `json:"count"`
	UserID string `json:"user_id"`
}

type envelope struct {
	Code  int64         `json:"code"`
	Error string        `json:"error"`
	Data  *echoResponse `json:"data"`
}

func echo(ctx context.Context, req *echoRequest) (*echoResponse, error) {
	if req.Name == "" {
		return nil, errorx.New(errorx.BadRequest, "Name is required")
	}

	return &echoResponse{Name: req.Name, Count: req.Count, UserID: xcontext.RequestUserID(ctx)}, nil
}

func newRouter() *router.Router {
	return router.New(nil, config.Default(), logger.NewNopLogger())
}

func do(t *testing.T, r *router.Router, req *http.Request) envelope {
	w := httptest.NewRecorder()
	r.Handler().ServeHTTP(w, req)

	var resp envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestRouter_GET(t *testing.T) {
	r := newRouter()
	router.GET(r, "/echo", echo)

	resp := do(t, r, httptest.NewRequest(http.MethodGet, "/echo?name=alice&count=3", nil))
	require.Equal(t, int64(0), resp.Code)
	require.Equal(t, &echoResponse{Name: "alice", Count: 3}, resp.Data)
}

func TestRouter_POST(t *testing.T) {
	r := newRouter()
	router.POST(r, "/echo", echo)

	body := strings.NewReader(`{"name":"bob","count":2}`)
	resp := do(t, r, httptest.NewRequest(http.MethodPost, "/echo", body))
	require.Equal(t, int64(0), resp.Code)
	require.Equal(t, &echoResponse{Name: "bob", Count: 2}, resp.Data)

	resp = do(t, r, httptest.NewRequest(http.MethodGet, "/echo?name=bob", nil))
	require.Equal(t, int64(errorx.BadRequest), resp.Code)
	require.Equal(t, "Only POST is allowed", resp.Error)

	resp = do(t, r, httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader("{")))
	require.Equal(t, int64(errorx.BadRequest), resp.Code)
	require.Equal(t, "Invalid request", resp.Error)
}

func TestRouter_Error(t *testing.T) {
	r := newRouter()
	router.GET(r, "/echo", echo)

	resp := do(t, r, httptest.NewRequest(http.MethodGet, "/echo", nil))
	require.Equal(t, int64(errorx.BadRequest), resp.Code)
	require.Equal(t, "Name is required", resp.Error)
	require.Nil(t, resp.Data)
}

func TestRouter_Middlewares(t *testing.T) {
	r := newRouter()

	var closed []any
	r.AddCloser(func(ctx context.Context) {
		closed = append(closed, router.Response(ctx))
	})

	authRouter := r.Branch()
	authRouter.Before(func(ctx context.Context) (context.Context, error) {
		userID := xcontext.HTTPRequest(ctx).Header.Get("X-User")
		if userID == "" {
			return nil, errorx.New(errorx.Unauthenticated, "You need to authenticate before")
		}
		return xcontext.WithRequestUserID(ctx, userID), nil
	})
	router.GET(authRouter, "/private", echo)
	router.GET(r, "/public", echo)

	req := httptest.NewRequest(http.MethodGet, "/private?name=alice", nil)
	req.Header.Set("X-User", "user2")
	resp := do(t, r, req)
	require.Equal(t, "user2", resp.Data.UserID)

	resp = do(t, r, httptest.NewRequest(http.MethodGet, "/private?name=alice", nil))
	require.Equal(t, int64(errorx.Unauthenticated), resp.Code)

	// The branch middleware does not leak into its parent.
	resp = do(t, r, httptest.NewRequest(http.MethodGet, "/public?name=alice", nil))
	require.Equal(t, int64(0), resp.Code)
	require.Empty(t, resp.Data.UserID)

	require.Len(t, closed, 3)
	require.Nil(t, closed[1])
	require.Equal(t, &echoResponse{Name: "alice"}, closed[2])
}
