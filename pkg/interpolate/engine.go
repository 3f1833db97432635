package interpolate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/text/language"

	"github.com/aescanero/dago-interpolate/internal/cache"
	"github.com/aescanero/dago-interpolate/internal/config"
	"github.com/aescanero/dago-interpolate/internal/format"
	"github.com/aescanero/dago-interpolate/internal/scanner"
	"github.com/aescanero/dago-interpolate/internal/security"
	"github.com/aescanero/dago-interpolate/internal/vars"
)

// ErrEngineClosed is returned by every call after Close.
var ErrEngineClosed = errors.New("engine is closed")

// DefaultTimeout bounds each full-evaluator invocation unless overridden.
const DefaultTimeout = 5 * time.Second

// Engine interpolates templates: it owns the compiled-unit cache, the
// security level, the logger and the process-wide global data. One engine
// is safe for concurrent use; per-call state never leaks across calls.
type Engine struct {
	logger  *zap.Logger
	cache   *cache.Cache
	global  map[string]any
	timeout time.Duration
	level   security.Level
	culture language.Tag
	dollar  bool
	closed  atomic.Bool
}

type engineConfig struct {
	logger   *zap.Logger
	global   map[string]any
	capacity int
	ttl      time.Duration
	sweep    time.Duration
	timeout  time.Duration
	level    security.Level
	culture  string
	dollar   bool
	loadErr  error
}

// EngineOption configures a new Engine.
type EngineOption func(*engineConfig)

// WithLogger sets the engine logger. The default is a no-op logger.
func WithLogger(logger *zap.Logger) EngineOption {
	return func(c *engineConfig) { c.logger = logger }
}

// WithGlobalData sets process-wide defaults merged under per-call
// variables; per-call entries shadow globals on name collision.
func WithGlobalData(data map[string]any) EngineOption {
	return func(c *engineConfig) { c.global = data }
}

// WithCacheCapacity bounds the compiled-unit cache.
func WithCacheCapacity(capacity int) EngineOption {
	return func(c *engineConfig) { c.capacity = capacity }
}

// WithCacheTTL sets the compiled-unit lifetime.
func WithCacheTTL(ttl time.Duration) EngineOption {
	return func(c *engineConfig) { c.ttl = ttl }
}

// WithCacheSweepInterval sets how often expired units are swept. Zero or
// negative disables the background sweep.
func WithCacheSweepInterval(interval time.Duration) EngineOption {
	return func(c *engineConfig) { c.sweep = interval }
}

// WithDefaultTimeout sets the per-evaluation time budget.
func WithDefaultTimeout(timeout time.Duration) EngineOption {
	return func(c *engineConfig) { c.timeout = timeout }
}

// WithSecurityLevel sets the default validator level.
func WithSecurityLevel(level SecurityLevel) EngineOption {
	return func(c *engineConfig) { c.level = level.internal(security.LevelModerate) }
}

// WithCulture sets the default formatting culture as a BCP-47 name.
func WithCulture(culture string) EngineOption {
	return func(c *engineConfig) { c.culture = culture }
}

// WithDollarSignSyntax makes ${expr} the default delimiter convention.
func WithDollarSignSyntax(enabled bool) EngineOption {
	return func(c *engineConfig) { c.dollar = enabled }
}

// FromEnv loads engine defaults from INTERP_* environment variables.
// Explicit options given after FromEnv win.
func FromEnv() EngineOption {
	return func(c *engineConfig) {
		cfg, err := config.Load()
		if err != nil {
			c.loadErr = err
			return
		}
		c.capacity = cfg.CacheCapacity
		c.ttl = cfg.CacheTTL
		c.sweep = cfg.CacheSweep
		c.timeout = cfg.EvalTimeout
		c.culture = cfg.Culture
		c.dollar = cfg.DollarSyntax
		if level, err := security.ParseLevel(cfg.SecurityLevel); err == nil {
			c.level = level
		}
	}
}

// New creates an engine. The zero configuration is usable: moderate
// security, a 1000-unit cache with 1h TTL, 5s evaluation timeout, English
// formatting culture.
func New(opts ...EngineOption) (*Engine, error) {
	cfg := &engineConfig{
		capacity: cache.DefaultCapacity,
		ttl:      cache.DefaultTTL,
		sweep:    cache.DefaultSweepInterval,
		timeout:  DefaultTimeout,
		level:    security.LevelModerate,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.loadErr != nil {
		return nil, fmt.Errorf("failed to load engine config: %w", cfg.loadErr)
	}

	culture, err := format.ParseCulture(cfg.culture)
	if err != nil {
		return nil, err
	}

	logger := cfg.logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Engine{
		logger:  logger,
		cache:   cache.New(cfg.capacity, cfg.ttl, cfg.sweep),
		global:  cfg.global,
		timeout: cfg.timeout,
		level:   cfg.level,
		culture: culture,
		dollar:  cfg.dollar,
	}, nil
}

// Eval interpolates a template against the given variables: every
// expression slot is evaluated, formatted and substituted in encounter
// order, then escaped double braces are restored.
func (e *Engine) Eval(ctx context.Context, template string, variables map[string]any, opts *Options) (string, error) {
	if e.closed.Load() {
		return "", ErrEngineClosed
	}
	o := normalizeOptions(opts)

	mode := scanner.ModeBrace
	if o.Syntax == SyntaxDollar || (o.Syntax == SyntaxDefault && e.dollar) {
		mode = scanner.ModeDollar
	}

	segments := scanner.Scan(template, mode)
	vctx := vars.Build(e.global, variables)

	evalID := ""
	if o.EnableDebugLogging {
		evalID = uuid.NewString()
		e.logger.Debug("template evaluation started",
			zap.String("eval_id", evalID),
			zap.Int("segments", len(segments)),
			zap.Int("variables", vctx.Len()),
		)
	}

	var b strings.Builder
	b.Grow(len(template))
	for _, seg := range segments {
		if seg.Kind == scanner.SegmentLiteral {
			b.WriteString(seg.Text)
			continue
		}
		out, err := e.evalSlot(ctx, seg.Descriptor, vctx, o, evalID)
		if err != nil {
			return "", err
		}
		b.WriteString(out)
	}

	return scanner.Unescape(b.String()), nil
}

// EvalExpression evaluates a single expression and returns the raw value,
// bypassing the template scanner and the format post-processor.
func (e *Engine) EvalExpression(ctx context.Context, expression string, variables map[string]any, opts *Options) (any, error) {
	if e.closed.Load() {
		return nil, ErrEngineClosed
	}
	o := normalizeOptions(opts)
	vctx := vars.Build(e.global, variables)

	value, _, err := e.resolveExpression(ctx, strings.TrimSpace(expression), vctx, o, "")
	if err != nil {
		return e.applyPosture(strings.TrimSpace(expression), err, o)
	}
	return value, nil
}

// ClearCache drops every compiled unit. The next evaluation of any
// expression is a forced miss.
func (e *Engine) ClearCache() {
	e.cache.Clear()
}

// CacheStats is a snapshot of compiled-unit cache counters.
type CacheStats struct {
	Hits      int64
	Lookups   int64
	Evictions int64
	Entries   int
}

// HitRate returns hits/lookups, or 0 before the first lookup.
func (s CacheStats) HitRate() float64 {
	if s.Lookups == 0 {
		return 0
	}
	return float64(s.Hits) / float64(s.Lookups)
}

// CacheStats returns the current cache counters.
func (e *Engine) CacheStats() CacheStats {
	s := e.cache.Stats()
	return CacheStats{
		Hits:      s.Hits,
		Lookups:   s.Lookups,
		Evictions: s.Evictions,
		Entries:   s.Entries,
	}
}

// Close disposes the engine: the cache sweeper stops and later calls fail
// fast with ErrEngineClosed. Close is idempotent.
func (e *Engine) Close() error {
	if !e.closed.CompareAndSwap(false, true) {
		return nil
	}
	return e.cache.Close()
}
