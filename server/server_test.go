package server_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cache "github.com/krisalay/expiring-cache"
	"github.com/krisalay/expiring-cache/llm"
	"github.com/krisalay/expiring-cache/logger"
	"github.com/krisalay/expiring-cache/metrics"
	"github.com/krisalay/expiring-cache/server"
	"github.com/krisalay/expiring-cache/types"
)

type testEnv struct {
	cache   *cache.BoundedCache[llm.Prompt, llm.Response]
	handler http.Handler
	calls   *atomic.Int64
}

func newTestEnv(t *testing.T, gen llm.GeneratorFunc, timeout time.Duration) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	reg := prometheus.NewRegistry()
	collector := metrics.NewCollector(reg)

	c, err := cache.New(cache.Config[llm.Prompt, llm.Response]{
		MaxSize: 3,
		TTL:     15 * time.Second,
		Metrics: collector,
		Logger:  logger.Discard(),
	})
	require.NoError(t, err)
	t.Cleanup(c.Close)

	calls := &atomic.Int64{}
	counted := llm.GeneratorFunc(func(ctx context.Context, p llm.Prompt) (llm.Response, error) {
		calls.Add(1)
		return gen(ctx, p)
	})

	srv := server.New(server.Options{
		Cache:          c,
		Loader:         llm.NewLoader(counted),
		Gatherer:       reg,
		RequestTimeout: timeout,
		Logger:         logger.Discard(),
	})
	return &testEnv{cache: c, handler: srv.Handler(), calls: calls}
}

func answer(_ context.Context, p llm.Prompt) (llm.Response, error) {
	return llm.Response{ID: "id-" + string(p), Prompt: p, Answer: "Answer to: " + string(p), CreatedAt: time.UnixMilli(1000)}, nil
}

func (e *testEnv) get(t *testing.T, path string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	e.handler.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t, answer, 0)
	w := env.get(t, "/health")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
}

func TestManual_MissThenHit(t *testing.T) {
	env := newTestEnv(t, answer, time.Second)

	for i := 0; i < 2; i++ {
		w := env.get(t, "/api/manual/hello")
		require.Equal(t, http.StatusOK, w.Code)

		var resp llm.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "Answer to: hello", resp.Answer)
	}
	assert.Equal(t, int64(1), env.calls.Load())

	s := env.cache.Stats()
	assert.Equal(t, int64(1), s.HitCount)
	assert.Equal(t, int64(1), s.MissCount)
}

func TestScenarioOverHTTP(t *testing.T) {
	env := newTestEnv(t, answer, time.Second)

	for _, p := range []string{"a", "b", "c", "a", "d"} {
		require.Equal(t, http.StatusOK, env.get(t, "/api/manual/"+p).Code)
	}

	w := env.get(t, "/api/data")
	require.Equal(t, http.StatusOK, w.Code)
	var data []types.SnapshotEntry[llm.Prompt]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &data))

	var keys []llm.Prompt
	for _, e := range data {
		keys = append(keys, e.Key)
	}
	assert.Equal(t, []llm.Prompt{"d", "a", "c"}, keys)
	assert.Equal(t, `LLMResponse(answer="Answer to: d", createdAt=1000)`, data[0].Value)

	w = env.get(t, "/api/stats")
	require.Equal(t, http.StatusOK, w.Code)
	var stats map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.EqualValues(t, 1, stats["hitCount"])
	assert.EqualValues(t, 4, stats["missCount"])
	assert.EqualValues(t, 1, stats["evictionCount"])
	assert.EqualValues(t, 3, stats["size"])

	w = env.get(t, "/metrics")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `llmcache_requests_total{result="hit"} 1`)
	assert.Contains(t, w.Body.String(), "llmcache_evictions_total 1")
}

func TestInvalidateRoutes(t *testing.T) {
	env := newTestEnv(t, answer, time.Second)

	env.get(t, "/api/manual/a")
	env.get(t, "/api/manual/b")

	w := env.get(t, "/api/invalidate/a")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Invalidated prompt: a", w.Body.String())
	assert.Equal(t, 1, env.cache.Len())

	w = env.get(t, "/api/invalidateAll")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "All prompts invalidated!", w.Body.String())
	assert.Zero(t, env.cache.Len())

	env.get(t, "/api/manual/b")
	assert.Equal(t, int64(3), env.calls.Load())
}

func TestManual_ErrorMapping(t *testing.T) {
	cases := []struct {
		name   string
		gen    llm.GeneratorFunc
		status int
		code   string
	}{
		{
			name: "model failure",
			gen: func(context.Context, llm.Prompt) (llm.Response, error) {
				return llm.Response{}, llm.ErrGenerationFailed
			},
			status: http.StatusInternalServerError,
			code:   "load_failed",
		},
		{
			name: "breaker open",
			gen: func(context.Context, llm.Prompt) (llm.Response, error) {
				return llm.Response{}, gobreaker.ErrOpenState
			},
			status: http.StatusServiceUnavailable,
			code:   "unavailable",
		},
		{
			name: "too slow",
			gen: func(ctx context.Context, _ llm.Prompt) (llm.Response, error) {
				time.Sleep(200 * time.Millisecond)
				return llm.Response{}, errors.New("late")
			},
			status: http.StatusGatewayTimeout,
			code:   "timeout",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			env := newTestEnv(t, tc.gen, 20*time.Millisecond)

			w := env.get(t, "/api/manual/q")
			assert.Equal(t, tc.status, w.Code)

			var body server.ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tc.code, body.Error)
			assert.Zero(t, env.cache.Len())
		})
	}
}

func TestHealth_ReportsOpenBreaker(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, err := cache.New(cache.Config[llm.Prompt, llm.Response]{MaxSize: 1, TTL: time.Second, Logger: logger.Discard()})
	require.NoError(t, err)
	defer c.Close()

	srv := server.New(server.Options{
		Cache:   c,
		Loader:  llm.NewLoader(llm.GeneratorFunc(answer)),
		Healthy: func() bool { return false },
		Logger:  logger.Discard(),
	})

	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), `"status":"degraded"`))
}
