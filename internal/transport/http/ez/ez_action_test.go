package ez

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"flickhub/internal/core/apperr"
	mdw "flickhub/internal/transport/http/middleware"
)

type echoIn struct {
	Value string `json:"value"`
}

type echoOut struct {
	Success bool   `json:"success"`
	Value   string `json:"value"`
}

func newEngine(handler func(c *gin.Context, in *echoIn) (echoOut, error)) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	e := New(r.Group("/api"), zap.NewNop())
	RegisterAction(e, Action[echoIn, echoOut]{
		Method:  http.MethodPost,
		Path:    "/echo",
		Binder:  BindJSON,
		Status:  http.StatusCreated,
		Handler: handler,
	})
	RegisterAction(e, Action[struct{}, RawJSON]{
		Method: http.MethodGet,
		Path:   "/raw",
		Binder: BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (RawJSON, error) {
			return RawJSON(`{"b":2,  "a":1}`), nil
		},
	})
	return r
}

func do(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRegisterAction_Success(t *testing.T) {
	r := newEngine(func(c *gin.Context, in *echoIn) (echoOut, error) {
		return echoOut{Success: true, Value: in.Value}, nil
	})

	w := do(r, http.MethodPost, "/api/echo", `{"value":"hi"}`)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"success":true,"value":"hi"}`, w.Body.String())
}

func TestRegisterAction_RawJSON(t *testing.T) {
	r := newEngine(nil)

	w := do(r, http.MethodGet, "/api/raw", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `{"b":2,  "a":1}`, w.Body.String())
	assert.Contains(t, w.Header().Get("Content-Type"), "application/json")
}

func TestRegisterAction_BadBody(t *testing.T) {
	called := false
	r := newEngine(func(c *gin.Context, in *echoIn) (echoOut, error) {
		called = true
		return echoOut{}, nil
	})

	w := do(r, http.MethodPost, "/api/echo", `{"value":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"success":false,"message":"Invalid request body"}`, w.Body.String())
	assert.False(t, called)
}

func TestRegisterAction_ErrorMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
		msg    string
	}{
		{apperr.Validation("All fields are required"), http.StatusBadRequest, "All fields are required"},
		{apperr.Conflict("User ID or email already exists"), http.StatusConflict, "User ID or email already exists"},
		{apperr.Auth("Invalid credentials"), http.StatusUnauthorized, "Invalid credentials"},
		{apperr.NotFound("Unknown category"), http.StatusNotFound, "Unknown category"},
		{apperr.Upstream("Failed to fetch data from catalog", errors.New("api_key=abc")), http.StatusInternalServerError, "Failed to fetch data from catalog"},
		{apperr.Internal("", errors.New("pq: password authentication failed")), http.StatusInternalServerError, "Internal server error"},
		{errors.New("raw driver error"), http.StatusInternalServerError, "Internal server error"},
	}

	for _, tc := range cases {
		t.Run(tc.msg, func(t *testing.T) {
			r := newEngine(func(c *gin.Context, in *echoIn) (echoOut, error) {
				return echoOut{}, tc.err
			})
			w := do(r, http.MethodPost, "/api/echo", `{}`)
			assert.Equal(t, tc.status, w.Code)
			assert.JSONEq(t, `{"success":false,"message":"`+tc.msg+`"}`, w.Body.String())
			assert.NotContains(t, w.Body.String(), "api_key")
			assert.NotContains(t, w.Body.String(), "driver")
		})
	}
}

func TestWriteError_LogsRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zapcore.DebugLevel)
	r := gin.New()
	r.Use(mdw.RequestID())
	RegisterAction(New(r.Group("/api"), zap.New(core)), Action[struct{}, echoOut]{
		Method: http.MethodGet,
		Path:   "/fail",
		Binder: BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (echoOut, error) {
			return echoOut{}, apperr.Internal("", errors.New("pool exhausted"))
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/api/fail", nil)
	req.Header.Set(mdw.KeyRequestID, "rid-42")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	entries := logs.FilterMessage("request failed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "rid-42", entries[0].ContextMap()["rid"])
	assert.Equal(t, "rid-42", w.Header().Get(mdw.KeyRequestID))
}
