// Package app initializes and holds long-lived application services, acting as a dependency injection container.
package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/JakeFAU/site-swot/internal/analysis"
	"github.com/JakeFAU/site-swot/internal/auth"
	"github.com/JakeFAU/site-swot/internal/config"
	"github.com/JakeFAU/site-swot/internal/fetcher"
	"github.com/JakeFAU/site-swot/internal/logging"
	"github.com/JakeFAU/site-swot/internal/metrics"
	"github.com/JakeFAU/site-swot/internal/policy/hostblock"
	"github.com/JakeFAU/site-swot/internal/policy/ratelimit"
	"github.com/JakeFAU/site-swot/internal/service"
	"github.com/JakeFAU/site-swot/internal/telemetry"
)

// App holds the shared services built once at startup.
type App struct {
	cfg      config.Config
	logger   *zap.Logger
	analyzer *service.Analyzer
	tracing  telemetry.ShutdownFunc
}

// Config returns the loaded configuration.
func (a *App) Config() config.Config {
	return a.cfg
}

// Logger returns the root logger.
func (a *App) Logger() *zap.Logger {
	return a.logger
}

// Analyzer returns the configured analysis pipeline.
func (a *App) Analyzer() *service.Analyzer {
	return a.analyzer
}

// New loads configuration from cfgPath (empty for env/defaults only) and
// builds every service. It fails fast on invalid configuration.
func New(ctx context.Context, cfgPath string) (*App, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logger, err := logging.New(cfg.Logging.Development, cfg.Logging.Level)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return NewWithConfig(ctx, cfg, logger)
}

// NewWithConfig builds the services from an already loaded configuration.
func NewWithConfig(ctx context.Context, cfg config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	metrics.Init()

	shutdown, err := telemetry.Init(ctx, telemetry.Config{
		Enabled:     cfg.Telemetry.TracingEnabled,
		Exporter:    cfg.Telemetry.Exporter,
		ServiceName: cfg.Telemetry.ServiceName,
	})
	if err != nil {
		return nil, fmt.Errorf("init tracing: %w", err)
	}

	evaluator, err := NewEvaluator(cfg.Analysis)
	if err != nil {
		return nil, err
	}

	limiter := ratelimit.New(ratelimit.Config{
		DefaultRPS:   cfg.Fetch.RatePerHost,
		DefaultBurst: cfg.Fetch.BurstPerHost,
	})
	blocked := hostblock.New(cfg.Fetch.BlockedHosts)
	f := fetcher.New(fetcher.Config{
		UserAgent:    cfg.Fetch.UserAgent,
		Timeout:      cfg.Fetch.Timeout,
		MaxBodyBytes: cfg.Fetch.MaxBodyBytes,
		Blocked:      blocked,
	}, limiter, logger.Named("fetcher"))

	logger.Info("application services initialized",
		zap.String("catalog", evaluator.Catalog()),
		zap.Bool("parallel", cfg.Analysis.Parallel),
		zap.Duration("fetch_timeout", cfg.Fetch.Timeout),
		zap.Bool("tracing", cfg.Telemetry.TracingEnabled),
	)

	analyzer := service.New(f, evaluator, logger.Named("analyzer"),
		service.WithBlockedHosts(blocked),
	)

	return &App{
		cfg:      cfg,
		logger:   logger,
		analyzer: analyzer,
		tracing:  shutdown,
	}, nil
}

// NewEvaluator builds the rule evaluator selected by cfg.
func NewEvaluator(cfg config.AnalysisConfig) (*analysis.Evaluator, error) {
	catalog, err := analysis.Lookup(cfg.Catalog)
	if err != nil {
		return nil, fmt.Errorf("select catalog: %w", err)
	}
	return analysis.NewEvaluator(catalog,
		analysis.WithThresholds(cfg.Thresholds),
		analysis.WithParallel(cfg.Parallel),
	), nil
}

// NewVerifier builds the bearer token verifier for cfg. It returns nil when
// authentication is disabled.
func NewVerifier(cfg config.AuthConfig) (auth.Verifier, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	switch cfg.Mode {
	case config.AuthModeJWT:
		return auth.NewJWTVerifier(cfg.JWTSecret, cfg.Issuer, cfg.Audience), nil
	case config.AuthModeRemote:
		return auth.NewRemoteVerifier(cfg.UserinfoURL, cfg.APIKey, cfg.Timeout), nil
	default:
		return nil, nil
	}
}

// Close flushes spans and logs. It is called after the command finishes.
func (a *App) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if a.tracing != nil {
		if err := a.tracing(ctx); err != nil {
			a.logger.Warn("error flushing traces on shutdown", zap.Error(err))
		}
	}
	// Sync fails on some terminals (EINVAL on stdout); nothing useful to do about it.
	_ = a.logger.Sync() //nolint:errcheck // best-effort flush
}
