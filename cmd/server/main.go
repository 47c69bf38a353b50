package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"

	cache "github.com/krisalay/expiring-cache"
	"github.com/krisalay/expiring-cache/config"
	"github.com/krisalay/expiring-cache/janitor"
	"github.com/krisalay/expiring-cache/llm"
	"github.com/krisalay/expiring-cache/logger"
	"github.com/krisalay/expiring-cache/metrics"
	"github.com/krisalay/expiring-cache/server"
	"github.com/krisalay/expiring-cache/types"
)

var configPath = flag.String("config", "", "path to a YAML config file")

func main() {
	flag.Parse()

	// Load .env file if present
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logrus.WithError(err).Warn("Could not read .env file")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}

	logger.Init(cfg.Log)
	log := logger.WithComponent("server")

	if err := cfg.Validate(); err != nil {
		log.WithError(err).Fatal("Invalid configuration")
	}

	gin.SetMode(cfg.Server.Mode)

	// ---------------- Metrics ----------------
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := metrics.NewCollector(reg)

	// ---------------- Cache ----------------
	removals := logger.WithComponent("removal")
	promptCache, err := cache.New(cache.Config[llm.Prompt, llm.Response]{
		MaxSize:        cfg.Cache.MaxSize,
		TTL:            cfg.Cache.TTL,
		Expiry:         cfg.Cache.Expiry,
		EvictionPolicy: cfg.Cache.EvictionPolicy,
		Metrics:        collector,
		Logger:         logger.WithComponent("cache"),
		RemovalListener: func(p llm.Prompt, r llm.Response, cause types.RemovalCause) {
			removals.WithFields(logrus.Fields{
				"prompt": p,
				"cause":  cause,
			}).Infof("Removed %s -> %s", p, r)
		},
	})
	if err != nil {
		log.WithError(err).Fatal("Failed to create cache")
	}
	defer promptCache.Close()
	collector.TrackSize(promptCache.Len)

	// ---------------- Model ----------------
	llmLog := logger.WithComponent("llm")
	breaker := llm.NewBreaker(llm.NewSimulator(cfg.LLM, llmLog), cfg.Breaker, llmLog)

	// ---------------- Maintenance ----------------
	jan := janitor.New(logger.WithComponent("janitor"))
	if cfg.Janitor.CleanupSpec != "" {
		if err := jan.AddCleanup(cfg.Janitor.CleanupSpec, promptCache); err != nil {
			log.WithError(err).Fatal("Failed to schedule cleanup")
		}
	}
	if cfg.Janitor.StatsSpec != "" {
		if err := jan.AddStatsReport(cfg.Janitor.StatsSpec, promptCache); err != nil {
			log.WithError(err).Fatal("Failed to schedule stats report")
		}
	}
	jan.Start()

	// ---------------- HTTP ----------------
	srv := server.New(server.Options{
		Cache:          promptCache,
		Loader:         llm.NewLoader(breaker),
		Healthy:        breaker.Healthy,
		Gatherer:       reg,
		RequestTimeout: cfg.Server.RequestTimeout,
		Port:           cfg.Server.Port,
		Logger:         log,
	})
	serveErr := srv.Start()

	log.WithFields(logrus.Fields{
		"max_size": cfg.Cache.MaxSize,
		"ttl":      cfg.Cache.TTL.String(),
		"policy":   cfg.Cache.EvictionPolicy,
		"expiry":   cfg.Cache.Expiry,
	}).Info("Prompt cache ready")

	// Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigChan:
	case err := <-serveErr:
		if err != nil {
			log.WithError(err).Error("Server stopped unexpectedly")
		}
	}

	log.Info("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Stop(ctx); err != nil {
		log.WithError(err).Error("Failed to gracefully shutdown server")
	}
	select {
	case <-jan.Stop().Done():
	case <-ctx.Done():
	}
}
