package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ppiankov/telcoscope/internal/cache"
	"github.com/ppiankov/telcoscope/internal/llm"
	"github.com/ppiankov/telcoscope/internal/logging"
	"github.com/ppiankov/telcoscope/internal/metrics"
	"github.com/ppiankov/telcoscope/internal/model"
)

// ErrEmptyQuery is returned when a lookup is requested without a query
var ErrEmptyQuery = errors.New("query is required")

// BackendError wraps a failure of the generative backend
type BackendError struct {
	Provider string
	Err      error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("backend %s: %v", e.Provider, e.Err)
}

func (e *BackendError) Unwrap() error {
	return e.Err
}

// RateLimiter throttles backend calls per key
type RateLimiter interface {
	Wait(ctx context.Context, key string) error
}

// Pipeline orchestrates one lookup: cache, backend, assembly and metrics
type Pipeline struct {
	backend   llm.Backend
	assembler *Assembler
	cache     cache.Cache
	limiter   RateLimiter
	metrics   *metrics.Metrics
	logger    *zap.Logger
	now       func() time.Time

	retries int
	backoff time.Duration
	sleep   func(ctx context.Context, d time.Duration) error
}

// maxBackoff caps the delay between two backend attempts
const maxBackoff = 30 * time.Second

// PipelineOption configures a Pipeline
type PipelineOption func(*Pipeline)

// WithCache stores backend responses in c
func WithCache(c cache.Cache) PipelineOption {
	return func(p *Pipeline) { p.cache = c }
}

// WithRateLimiter throttles backend calls, keyed by provider name
func WithRateLimiter(l RateLimiter) PipelineOption {
	return func(p *Pipeline) { p.limiter = l }
}

// WithMetrics records lookups on m
func WithMetrics(m *metrics.Metrics) PipelineOption {
	return func(p *Pipeline) { p.metrics = m }
}

// WithRetry repeats a backend call up to retries more times when it fails with a
// retryable error, waiting backoff before the first retry and doubling after each
func WithRetry(retries int, backoff time.Duration) PipelineOption {
	return func(p *Pipeline) {
		p.retries = max(retries, 0)
		p.backoff = backoff
	}
}

// WithPipelineLogger sets the logger used for backend and cache events
func WithPipelineLogger(l *zap.Logger) PipelineOption {
	return func(p *Pipeline) { p.logger = l }
}

// NewPipeline creates a pipeline around a backend and an assembler
func NewPipeline(backend llm.Backend, assembler *Assembler, opts ...PipelineOption) *Pipeline {
	p := &Pipeline{
		backend:   backend,
		assembler: assembler,
		now:       time.Now,
		sleep:     sleepCtx,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.assembler == nil {
		p.assembler = NewAssembler(nil)
	}
	if p.logger == nil {
		p.logger = logging.L()
	}
	return p
}

// LookupResult contains the complete lookup result
type LookupResult struct {
	Query    string
	Assembly *Assembly
	Response *llm.Response
	Cached   bool
	Duration time.Duration
}

// Profile returns the assembled profile
func (r *LookupResult) Profile() *model.OperatorProfile {
	if r == nil || r.Assembly == nil {
		return nil
	}
	return r.Assembly.Profile
}

// Backend returns the configured backend
func (p *Pipeline) Backend() llm.Backend {
	return p.backend
}

// Lookup asks the backend about query and assembles the answer into a profile.
// Backend failures are returned as *BackendError; unusable answers as
// *model.DataFormatError or *model.ValidationError.
func (p *Pipeline) Lookup(ctx context.Context, query string) (*LookupResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}
	if p.backend == nil {
		return nil, &BackendError{Provider: "none", Err: errors.New("no backend configured")}
	}

	start := p.now()
	result := &LookupResult{Query: query}

	resp, cached, err := p.fetch(ctx, query)
	if err != nil {
		p.metrics.ObserveLookup(metrics.StatusBackendErr, p.now().Sub(start))
		return nil, err
	}
	result.Response = resp
	result.Cached = cached

	assembly, err := p.assembler.Assemble([]byte(resp.Text), resp.Citations)
	if err != nil {
		p.metrics.ObserveLookup(metrics.StatusInvalidData, p.now().Sub(start))
		if cached {
			// Do not keep serving an answer that cannot be assembled
			p.evict(ctx, query)
		}
		return nil, fmt.Errorf("assemble profile: %w", err)
	}
	result.Assembly = assembly
	if !cached {
		p.store(ctx, query, resp)
	}
	result.Duration = p.now().Sub(start)

	status := metrics.StatusOK
	if cached {
		status = metrics.StatusCacheHit
	}
	p.metrics.ObserveLookup(status, result.Duration)
	p.metrics.ObserveProfile(
		assembly.Profile.DataReliability.Score,
		assembly.Profile.OperationalRisk.Score,
		assembly.DroppedCitations,
		len(assembly.Warnings),
	)

	p.logger.Debug("lookup complete",
		zap.String("query", query),
		zap.String("operator", assembly.Profile.Name),
		zap.Bool("cached", cached),
		zap.Int("reliability", assembly.Profile.DataReliability.Score),
		zap.Int("risk", assembly.Profile.OperationalRisk.Score),
		zap.Duration("duration", result.Duration),
	)

	return result, nil
}

// fetch returns the backend response for query, from the cache when possible
func (p *Pipeline) fetch(ctx context.Context, query string) (*llm.Response, bool, error) {
	key := p.cacheKey(query)

	if p.cache != nil {
		if data, ok := p.cache.Get(ctx, key); ok {
			var resp llm.Response
			if err := json.Unmarshal(data, &resp); err == nil {
				p.logger.Debug("cache hit", zap.String("query", query))
				return &resp, true, nil
			}
			p.logger.Warn("discarding unreadable cache entry", zap.String("key", key))
			_ = p.cache.Delete(ctx, key)
		}
	}

	resp, err := p.call(ctx, query)
	if err != nil {
		return nil, false, &BackendError{Provider: p.backend.Name(), Err: err}
	}
	p.metrics.ObserveTokens(p.backend.Name(), resp.TokensUsed)

	return resp, false, nil
}

// store caches a response once it has assembled into a profile
func (p *Pipeline) store(ctx context.Context, query string, resp *llm.Response) {
	if p.cache == nil {
		return
	}
	data, err := json.Marshal(resp)
	if err != nil {
		return
	}
	// Zero TTL keeps each cache layer's own default
	if err := p.cache.Set(ctx, p.cacheKey(query), data, 0); err != nil {
		p.logger.Warn("cache store failed", zap.Error(err))
	}
}

// call runs the backend through the rate limiter, retrying transient failures
func (p *Pipeline) call(ctx context.Context, query string) (*llm.Response, error) {
	provider := p.backend.Name()
	delay := p.backoff

	for attempt := 0; ; attempt++ {
		if p.limiter != nil {
			if err := p.limiter.Wait(ctx, provider); err != nil {
				return nil, fmt.Errorf("rate limit: %w", err)
			}
		}

		p.logger.Debug("calling backend", zap.String("provider", provider), zap.String("query", query), zap.Int("attempt", attempt+1))
		resp, err := p.backend.Lookup(ctx, query)
		if err == nil && resp == nil {
			err = errors.New("empty response")
		}
		if err == nil {
			return resp, nil
		}
		if attempt >= p.retries || !llm.Retryable(err) {
			return nil, err
		}

		p.logger.Warn("backend call failed, retrying",
			zap.String("provider", provider),
			zap.Int("attempt", attempt+1),
			zap.Duration("backoff", delay),
			zap.Error(err),
		)
		p.metrics.ObserveRetry(provider)
		if serr := p.sleep(ctx, delay); serr != nil {
			return nil, err
		}
		delay = min(delay*2, maxBackoff)
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (p *Pipeline) evict(ctx context.Context, query string) {
	if p.cache != nil {
		_ = p.cache.Delete(ctx, p.cacheKey(query))
	}
}

func (p *Pipeline) cacheKey(query string) string {
	return cache.QueryKey(p.backend.Name(), p.modelName(), query)
}

func (p *Pipeline) modelName() string {
	if named, ok := p.backend.(interface{ Model() string }); ok {
		return named.Model()
	}
	return ""
}
