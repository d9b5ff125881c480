package main

import (
	"log"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"goal-engine/internal/compplan"
	"goal-engine/internal/config"
	"goal-engine/internal/engine"
	"goal-engine/internal/handler"
	"goal-engine/internal/logger"
	"goal-engine/internal/metrics"
	"goal-engine/internal/verticals"
)

func main() {
	cfg := config.Load()

	zlog, err := logger.New(cfg.LogLevel, cfg.Environment)
	if err != nil {
		log.Fatalf("Logger init failed: %v", err)
	}
	defer zlog.Sync() //nolint:errcheck

	plans, err := compplan.Default(cfg.PlansDir)
	if err != nil {
		zlog.Fatal("loading compensation plans", zap.String("plans_dir", cfg.PlansDir), zap.Error(err))
	}

	registry, err := verticals.NewRegistry(verticals.NewNetworkMarketing(plans))
	if err != nil {
		zlog.Fatal("registering verticals", zap.Error(err))
	}

	promReg := prometheus.NewRegistry()
	promReg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m, err := metrics.New(promReg)
	if err != nil {
		zlog.Fatal("registering metrics", zap.Error(err))
	}

	h, err := handler.New(handler.Deps{
		Engine:    engine.New(registry, zlog, m),
		Registry:  registry,
		Plans:     plans,
		Metrics:   m,
		Gatherer:  promReg,
		Log:       zlog,
		RateLimit: cfg.RateLimit,
	})
	if err != nil {
		zlog.Fatal("building handler", zap.Error(err))
	}

	zlog.Info("Goal engine starting",
		zap.String("port", cfg.Port),
		zap.Int("plans", plans.Len()),
		zap.Int("verticals", len(registry.Adapters())),
	)
	if err := fasthttp.ListenAndServe(":"+cfg.Port, h.Handle); err != nil {
		zlog.Fatal("Server failed", zap.Error(err))
	}
}
