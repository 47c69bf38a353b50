// Package server exposes the prompt cache over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/krisalay/expiring-cache/api"
	"github.com/krisalay/expiring-cache/llm"
	"github.com/krisalay/expiring-cache/types"
)

type Options struct {
	Cache  api.Cache[llm.Prompt, llm.Response]
	Loader types.Loader[llm.Prompt, llm.Response]

	// Healthy reports whether the model backend accepts calls. Nil means always.
	Healthy func() bool

	// Gatherer backs /metrics. Nil serves the default registry.
	Gatherer prometheus.Gatherer

	// RequestTimeout bounds how long a caller waits for an answer.
	RequestTimeout time.Duration

	Port   string
	Logger *logrus.Entry
}

type Server struct {
	cache   api.Cache[llm.Prompt, llm.Response]
	loader  types.Loader[llm.Prompt, llm.Response]
	healthy func() bool
	timeout time.Duration
	log     *logrus.Entry

	router *gin.Engine
	http   *http.Server
}

func New(opts Options) *Server {
	s := &Server{
		cache:   opts.Cache,
		loader:  opts.Loader,
		healthy: opts.Healthy,
		timeout: opts.RequestTimeout,
		log:     opts.Logger,
	}
	if s.healthy == nil {
		s.healthy = func() bool { return true }
	}

	gatherer := opts.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	router := gin.New()

	// Middleware
	router.Use(s.requestLogger())
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())

	router.GET("/health", s.healthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	apiGroup := router.Group("/api")
	{
		apiGroup.GET("/manual/:text", s.getManual)
		apiGroup.GET("/invalidate/:text", s.invalidatePrompt)
		apiGroup.GET("/invalidateAll", s.invalidateAll)
		apiGroup.GET("/stats", s.getStats)
		apiGroup.GET("/data", s.getData)
	}

	s.router = router
	s.http = &http.Server{
		Addr:              ":" + opts.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Handler returns the router, for tests and embedding.
func (s *Server) Handler() http.Handler { return s.router }

// Start serves in the background. A listener failure is logged and reported on the channel.
func (s *Server) Start() <-chan error {
	errCh := make(chan error, 1)

	s.log.WithField("addr", s.http.Addr).Info("Starting HTTP server...")
	go func() {
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.WithError(err).Error("HTTP server failed")
			errCh <- err
		}
		close(errCh)
	}()
	return errCh
}

// Stop drains in-flight requests until ctx is done.
func (s *Server) Stop(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}
