package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"flickhub/internal/core/apperr"
)

const testKey = "sekret-tmdb-key"

type upstream struct {
	srv   *httptest.Server
	hits  atomic.Int32
	paths chan string
}

func newUpstream(t *testing.T, h http.HandlerFunc) *upstream {
	t.Helper()
	u := &upstream{paths: make(chan string, 16)}
	u.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u.hits.Add(1)
		u.paths <- r.URL.Path
		h(w, r)
	}))
	t.Cleanup(u.srv.Close)
	return u
}

func newTestClient(t *testing.T, baseURL string, timeout time.Duration, log *zap.Logger) *Client {
	t.Helper()
	c, err := NewClient(Config{BaseURL: baseURL + "/3", APIKey: testKey, Timeout: timeout}, log)
	require.NoError(t, err)
	return c
}

func TestFetch_AllCategories(t *testing.T) {
	for _, cat := range Categories() {
		t.Run(string(cat), func(t *testing.T) {
			body := `{"page":1,"results":[{"id":550,"title":"Fight Club"}],"category":"` + string(cat) + `"}`
			up := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodGet, r.Method)
				assert.Equal(t, testKey, r.URL.Query().Get("api_key"))
				assert.Equal(t, "en-US", r.URL.Query().Get("language"))
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(body))
			})
			c := newTestClient(t, up.srv.URL, time.Second, zap.NewNop())

			before := testutil.ToFloat64(upstreamTotal.WithLabelValues(string(cat), outcomeOK))
			got, err := c.Fetch(context.Background(), cat)
			require.NoError(t, err)

			assert.Equal(t, body, string(got))
			assert.Equal(t, int32(1), up.hits.Load())
			want, _ := UpstreamPath(cat)
			assert.Equal(t, "/3"+want, <-up.paths)
			assert.Equal(t, before+1, testutil.ToFloat64(upstreamTotal.WithLabelValues(string(cat), outcomeOK)))
		})
	}
}

func TestFetch_CategoryPaths(t *testing.T) {
	assert.Len(t, Categories(), 5)
	cases := map[Category]string{
		Trending:   "/trending/movie/week",
		TopRated:   "/movie/top_rated",
		NowPlaying: "/movie/now_playing",
		TVPopular:  "/tv/popular",
		Upcoming:   "/movie/upcoming",
	}
	for c, want := range cases {
		got, ok := UpstreamPath(c)
		assert.True(t, ok)
		assert.Equal(t, want, got)
	}
}

func TestFetch_UnknownCategory(t *testing.T) {
	up := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {})
	c := newTestClient(t, up.srv.URL, time.Second, zap.NewNop())

	_, err := c.Fetch(context.Background(), Category("popular-people"))
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.Equal(t, int32(0), up.hits.Load())
}

func TestFetch_UpstreamFailures(t *testing.T) {
	cases := []struct {
		name    string
		handler http.HandlerFunc
		timeout time.Duration
	}{
		{
			name: "5xx",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte(`{"status_message":"api_key=` + testKey + ` overloaded"}`))
			},
			timeout: time.Second,
		},
		{
			name: "401 echoes key",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"status_message":"Invalid API key: ` + r.URL.RawQuery + `"}`))
			},
			timeout: time.Second,
		},
		{
			name: "non-JSON",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte("<html>maintenance</html>"))
			},
			timeout: time.Second,
		},
		{
			name: "timeout",
			handler: func(w http.ResponseWriter, r *http.Request) {
				select {
				case <-r.Context().Done():
				case <-time.After(2 * time.Second):
				}
			},
			timeout: 50 * time.Millisecond,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			up := newUpstream(t, tc.handler)
			core, logs := observer.New(zapcore.DebugLevel)
			c := newTestClient(t, up.srv.URL, tc.timeout, zap.New(core))

			body, err := c.Fetch(context.Background(), Trending)
			require.Error(t, err)
			assert.Nil(t, body)
			assert.ErrorIs(t, err, apperr.ErrUpstream)
			assert.Equal(t, MsgUpstreamFailed, err.Error())
			assert.NotContains(t, err.Error(), testKey)
			assert.Equal(t, int32(1), up.hits.Load(), "no retries")

			for _, e := range logs.All() {
				assert.NotContains(t, e.Message, testKey)
				for _, f := range e.Context {
					assert.NotContains(t, f.String, testKey)
					if fe, ok := f.Interface.(error); ok {
						assert.NotContains(t, fe.Error(), testKey)
					}
				}
			}
		})
	}
}

func TestFetch_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	core, logs := observer.New(zapcore.DebugLevel)
	c := newTestClient(t, base, time.Second, zap.New(core))

	_, err := c.Fetch(context.Background(), Upcoming)
	assert.ErrorIs(t, err, apperr.ErrUpstream)

	var cause error
	for _, e := range logs.All() {
		for _, f := range e.Context {
			if fe, ok := f.Interface.(error); ok {
				cause = fe
			}
		}
	}
	require.Error(t, cause)
	assert.NotContains(t, cause.Error(), testKey)
}

func TestNewClient_Validation(t *testing.T) {
	_, err := NewClient(Config{BaseURL: "not a url", APIKey: testKey}, zap.NewNop())
	assert.Error(t, err)

	_, err = NewClient(Config{BaseURL: "https://api.themoviedb.org/3"}, zap.NewNop())
	assert.Error(t, err)

	c, err := NewClient(Config{BaseURL: "https://api.themoviedb.org/3", APIKey: testKey, Language: "fr-FR"}, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, "https://api.themoviedb.org/3/movie/upcoming?api_key="+testKey+"&language=fr-FR", c.endpoint("/movie/upcoming"))
}
