// Package service runs a single analysis: validate, fetch, parse, evaluate.
package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/JakeFAU/site-swot/internal/analysis"
	"github.com/JakeFAU/site-swot/internal/document"
	"github.com/JakeFAU/site-swot/internal/fetcher"
	"github.com/JakeFAU/site-swot/internal/metrics"
	"github.com/JakeFAU/site-swot/internal/policy/hostblock"
	"github.com/JakeFAU/site-swot/internal/telemetry"
)

var (
	ErrMissingURL = errors.New("url is required")
	ErrInvalidURL = errors.New("invalid url format")
	ErrParse      = errors.New("document could not be parsed")
)

// Fetcher retrieves the raw document for a URL.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (fetcher.Page, error)
}

// Analyzer turns a URL into a SWOT report.
type Analyzer struct {
	fetcher   Fetcher
	evaluator *analysis.Evaluator
	blocked   *hostblock.List
	logger    *zap.Logger
}

// Option customizes an Analyzer.
type Option func(*Analyzer)

// WithBlockedHosts rejects URLs whose host is on list before any fetch.
func WithBlockedHosts(list *hostblock.List) Option {
	return func(a *Analyzer) {
		a.blocked = list
	}
}

// New builds an Analyzer. A nil evaluator uses the standard catalog.
func New(f Fetcher, evaluator *analysis.Evaluator, logger *zap.Logger, opts ...Option) *Analyzer {
	if evaluator == nil {
		evaluator = analysis.NewEvaluator(analysis.Standard())
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	a := &Analyzer{fetcher: f, evaluator: evaluator, logger: logger}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// ValidateURL returns the trimmed URL when it is an absolute http or https URL.
func ValidateURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ErrMissingURL
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("%w: scheme must be http or https", ErrInvalidURL)
	}
	if u.Hostname() == "" {
		return "", fmt.Errorf("%w: missing host", ErrInvalidURL)
	}
	return raw, nil
}

// Analyze validates rawURL, fetches it and evaluates the parsed document.
// Fetch failures are returned unchanged so callers can match fetcher.ErrNotFound
// and fetcher.ErrTimeout.
func (a *Analyzer) Analyze(ctx context.Context, rawURL string) (analysis.Report, error) {
	catalog := a.evaluator.Catalog()
	target, err := ValidateURL(rawURL)
	if err != nil {
		metrics.ObserveAnalysis(catalog, "invalid_url")
		return analysis.Report{}, err
	}
	if a.blocked.BlockedURL(target) {
		metrics.ObserveAnalysis(catalog, "blocked")
		return analysis.Report{}, fmt.Errorf("%w: host is not allowed", ErrInvalidURL)
	}

	ctx, span := telemetry.StartSpan(ctx, "swot.analyze")
	defer span.End()
	span.SetAttributes(
		attribute.String("swot.url", target),
		attribute.String("swot.catalog", catalog),
	)

	start := time.Now()
	page, err := a.fetcher.Fetch(ctx, target)
	if err != nil {
		telemetry.RecordError(ctx, err)
		metrics.ObserveAnalysis(catalog, fetchOutcome(err))
		if errors.Is(err, fetcher.ErrBlockedHost) {
			return analysis.Report{}, fmt.Errorf("%w: %w", ErrInvalidURL, err)
		}
		return analysis.Report{}, fmt.Errorf("fetch %s: %w", target, err)
	}
	if err := ctx.Err(); err != nil {
		metrics.ObserveAnalysis(catalog, "canceled")
		return analysis.Report{}, fmt.Errorf("analyze %s: %w", target, err)
	}

	doc, err := document.ParseBytes(page.Body)
	if err != nil {
		telemetry.RecordError(ctx, err)
		metrics.ObserveAnalysis(catalog, "parse_error")
		return analysis.Report{}, fmt.Errorf("%w: %v", ErrParse, err)
	}

	report := a.evaluator.Evaluate(doc)
	metrics.ObserveAnalysis(catalog, "success")
	for _, cat := range analysis.Categories {
		n := len(report.Findings(cat))
		metrics.ObserveFindings(string(cat), n)
		span.SetAttributes(attribute.Int("swot.findings."+string(cat), n))
	}

	a.logger.Info("analysis complete",
		zap.String("url", target),
		zap.String("catalog", catalog),
		zap.Int("status", page.StatusCode),
		zap.Int("bytes", len(page.Body)),
		zap.Int("strengths", len(report.Strengths)),
		zap.Int("weaknesses", len(report.Weaknesses)),
		zap.Duration("duration", time.Since(start)),
	)
	return report, nil
}

func fetchOutcome(err error) string {
	switch {
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.Is(err, fetcher.ErrBlockedHost):
		return "blocked"
	case errors.Is(err, fetcher.ErrNotFound):
		return "not_found"
	case errors.Is(err, fetcher.ErrTimeout):
		return "timeout"
	default:
		return "fetch_error"
	}
}
