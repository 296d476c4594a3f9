package cli

import (
	"fmt"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/ppiankov/telcoscope/internal/cache"
	"github.com/ppiankov/telcoscope/internal/llm"
	"github.com/ppiankov/telcoscope/internal/metrics"
	"github.com/ppiankov/telcoscope/internal/model"
	"github.com/ppiankov/telcoscope/internal/pipeline"
	"github.com/ppiankov/telcoscope/internal/worker"
)

// app holds the collaborators shared by lookup, batch and serve
type app struct {
	cfg      *model.Config
	pipeline *pipeline.Pipeline
	metrics  *metrics.Metrics
	cache    cache.Cache
}

// newApp wires backend, cache, rate limiter and metrics around the assembler
func newApp(cfg *model.Config) (*app, error) {
	if cfg.LLM.Provider == "" {
		return nil, fmt.Errorf("no search backend configured: set --llm-provider or llm.provider (%s)", strings.Join(llm.Providers(), ", "))
	}

	backend, err := llm.NewBackend(llm.ConfigFromModel(cfg.LLM, cfg.HTTP))
	if err != nil {
		return nil, fmt.Errorf("create backend: %w", err)
	}

	c, err := cache.New(cfg.Cache)
	if err != nil {
		// A broken cache should not block lookups
		logger().Warn("cache disabled: " + err.Error())
		c = nil
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	limiter := worker.NewLimiter(cfg.RateLimiting.RequestsPerSecond, cfg.RateLimiting.BurstSize)
	for provider, rps := range cfg.RateLimiting.Providers {
		limiter.SetRate(provider, rps, cfg.RateLimiting.BurstSize)
	}

	opts := []pipeline.PipelineOption{
		pipeline.WithRateLimiter(limiter),
		pipeline.WithRetry(cfg.LLM.Retries, cfg.LLM.RetryBackoff),
		pipeline.WithMetrics(m),
		pipeline.WithPipelineLogger(logger()),
	}
	if c != nil {
		opts = append(opts, pipeline.WithCache(c))
	}

	p := pipeline.NewPipeline(backend, pipeline.NewAssembler(cfg, pipeline.WithLogger(logger())), opts...)

	return &app{cfg: cfg, pipeline: p, metrics: m, cache: c}, nil
}

// Close releases the cache connection, if any
func (a *app) Close() {
	closeCache(a.cache)
}
