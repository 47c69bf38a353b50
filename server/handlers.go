package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	cache "github.com/krisalay/expiring-cache"
	"github.com/krisalay/expiring-cache/llm"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// getManual answers a prompt from the cache, generating it on a miss.
func (s *Server) getManual(c *gin.Context) {
	prompt := llm.Prompt(c.Param("text"))

	ctx := c.Request.Context()
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	resp, err := s.cache.GetOrLoad(ctx, prompt, s.loader)
	if err != nil {
		_ = c.Error(err)
		status, body := classify(err)
		c.JSON(status, body)
		return
	}

	c.JSON(http.StatusOK, resp)
}

/*
classify maps a GetOrLoad error to a response:

- the caller ran out of time before the answer arrived: 504
- the breaker refused to call the model: 503
- the model failed: 500
*/
func classify(err error) (int, ErrorResponse) {
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return http.StatusGatewayTimeout, ErrorResponse{Error: "timeout", Message: "Timed out waiting for the model"}
	case llm.IsRejected(err):
		return http.StatusServiceUnavailable, ErrorResponse{Error: "unavailable", Message: "Model temporarily unavailable"}
	case errors.Is(err, cache.ErrLoadFailed):
		return http.StatusInternalServerError, ErrorResponse{Error: "load_failed", Message: err.Error()}
	default:
		return http.StatusInternalServerError, ErrorResponse{Error: "internal_error", Message: err.Error()}
	}
}

func (s *Server) invalidatePrompt(c *gin.Context) {
	text := c.Param("text")
	s.cache.Invalidate(llm.Prompt(text))
	c.String(http.StatusOK, "Invalidated prompt: "+text)
}

func (s *Server) invalidateAll(c *gin.Context) {
	s.cache.InvalidateAll()
	c.String(http.StatusOK, "All prompts invalidated!")
}

func (s *Server) getStats(c *gin.Context) {
	st := s.cache.Stats()
	c.JSON(http.StatusOK, gin.H{
		"hitCount":           st.HitCount,
		"missCount":          st.MissCount,
		"loadSuccessCount":   st.LoadSuccessCount,
		"loadFailureCount":   st.LoadFailureCount,
		"totalLoadTimeNanos": st.TotalLoadTimeNanos,
		"evictionCount":      st.EvictionCount,
		"evictionWeight":     st.EvictionWeight,
		"expirationCount":    st.ExpirationCount,
		"hitRate":            st.HitRate,
		"averageLoadPenalty": st.AverageLoadPenalty().String(),
		"size":               s.cache.Len(),
	})
}

// getData lists live entries, most recently used first.
func (s *Server) getData(c *gin.Context) {
	c.JSON(http.StatusOK, s.cache.Snapshot())
}

func (s *Server) healthCheck(c *gin.Context) {
	health := gin.H{
		"status":    "ok",
		"timestamp": time.Now(),
		"llm":       "ok",
	}
	if !s.healthy() {
		health["status"] = "degraded"
		health["llm"] = "circuit open"
	}
	c.JSON(http.StatusOK, health)
}
