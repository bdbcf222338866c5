package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/slotdraw/backend/pkg/errorx"
	"github.com/slotdraw/backend/pkg/logger"
	"github.com/slotdraw/backend/pkg/xcontext"
	"github.com/stretchr/testify/require"
)

type echoRequest struct {
	Name string `json:"name" form:"name"`
}

type echoResponse struct {
	Greeting string `json:"greeting"`
}

func echo(ctx context.Context, req *echoRequest) (*echoResponse, error) {
	if req.Name == "" {
		return nil, errorx.New(errorx.NotFound, "Nobody to greet")
	}

	if req.Name == "broken" {
		return nil, context.Canceled
	}

	return &echoResponse{Greeting: "hello " + req.Name}, nil
}

func newTestRouter() (*Router, *[]error) {
	root := xcontext.WithLogger(context.Background(), logger.NewLogger(logger.SILENCE))
	r := New(root)

	closed := &[]error{}
	r.Before(func(ctx context.Context) (context.Context, error) {
		if xcontext.HTTPRequest(ctx).Header.Get("X-Block") != "" {
			return nil, errorx.New(errorx.PermissionDenied, "Blocked")
		}

		return ctx, nil
	})
	r.After(func(ctx context.Context) {
		*closed = append(*closed, xcontext.Error(ctx))
	})

	GET(r, "/echo", echo)
	POST(r, "/echo", echo)

	return r, closed
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func Test_Router(t *testing.T) {
	r, closed := newTestRouter()

	tests := []struct {
		name       string
		req        *http.Request
		wantStatus int
		wantCode   float64
	}{
		{
			name:       "get",
			req:        httptest.NewRequest(http.MethodGet, "/echo?name=alice", nil),
			wantStatus: http.StatusOK,
			wantCode:   0,
		},
		{
			name:       "post",
			req:        httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(`{"name":"bob"}`)),
			wantStatus: http.StatusOK,
			wantCode:   0,
		},
		{
			name:       "domain error",
			req:        httptest.NewRequest(http.MethodGet, "/echo", nil),
			wantStatus: http.StatusNotFound,
			wantCode:   float64(errorx.NotFound),
		},
		{
			name:       "invalid body",
			req:        httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(`{"name":`)),
			wantStatus: http.StatusBadRequest,
			wantCode:   float64(errorx.BadRequest),
		},
		{
			name:       "unknown error",
			req:        httptest.NewRequest(http.MethodGet, "/echo?name=broken", nil),
			wantStatus: http.StatusInternalServerError,
			wantCode:   float64(errorx.Unknown.Code),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			r.Handler().ServeHTTP(rec, tt.req)

			require.Equal(t, tt.wantStatus, rec.Code)
			require.Equal(t, tt.wantCode, decode(t, rec)["code"])
		})
	}

	require.Len(t, *closed, len(tests))
	require.NoError(t, (*closed)[0])
	require.Error(t, (*closed)[2])
}

func Test_Router_Middleware(t *testing.T) {
	r, _ := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/echo?name=alice", nil)
	req.Header.Set("X-Block", "1")
	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
	body := decode(t, rec)
	require.Equal(t, "Blocked", body["error"])
	require.Nil(t, body["data"])
}

func Test_Router_Data(t *testing.T) {
	r, _ := newTestRouter()

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/echo?name=alice", nil))

	body := decode(t, rec)
	require.Equal(t, map[string]any{"greeting": "hello alice"}, body["data"])
}
