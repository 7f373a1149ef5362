// Package fetcher retrieves a single HTML document over HTTP using gocolly.
package fetcher

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"

	"github.com/JakeFAU/site-swot/internal/metrics"
	"github.com/JakeFAU/site-swot/internal/policy/hostblock"
)

// DefaultUserAgent mimics a desktop browser; many sites reject obvious bots.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 " +
	"(KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

const (
	defaultTimeout      = 10 * time.Second
	defaultMaxBodyBytes = 5 * 1024 * 1024
	maxRedirects        = 10
)

// Config controls collector behavior.
type Config struct {
	UserAgent    string
	Timeout      time.Duration
	MaxBodyBytes int
	// Blocked hosts are refused as redirect targets. The initial URL is
	// checked by the caller.
	Blocked *hostblock.List
}

// Waiter throttles outbound requests per URL.
type Waiter interface {
	Wait(ctx context.Context, rawURL string) error
}

// Page is a fetched document.
type Page struct {
	URL        string
	FinalURL   string
	StatusCode int
	Headers    http.Header
	Body       []byte
	Duration   time.Duration
}

// Fetcher performs one GET per call. It is safe for concurrent use.
type Fetcher struct {
	cfg           Config
	limiter       Waiter
	logger        *zap.Logger
	baseCollector *colly.Collector
}

type collectorHooks interface {
	OnRequest(colly.RequestCallback)
	OnResponse(colly.ResponseCallback)
	OnError(colly.ErrorCallback)
}

// New builds a Fetcher. limiter may be nil.
func New(cfg Config, limiter Waiter, logger *zap.Logger) *Fetcher {
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = defaultMaxBodyBytes
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	c := colly.NewCollector(
		colly.Async(false),
		colly.AllowURLRevisit(),
		colly.UserAgent(cfg.UserAgent),
		colly.MaxBodySize(cfg.MaxBodyBytes),
	)
	c.WithTransport(newHTTPTransport())
	c.SetRequestTimeout(cfg.Timeout)
	c.SetRedirectHandler(redirectPolicy(cfg.Blocked))

	return &Fetcher{
		cfg:           cfg,
		limiter:       limiter,
		logger:        logger,
		baseCollector: c,
	}
}

// Fetch downloads rawURL. Failures are *Error values classified as not
// found, timeout or other, except caller cancellation which wraps
// context.Canceled.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (Page, error) {
	ctx, cancel := context.WithTimeout(ctx, f.cfg.Timeout)
	defer cancel()
	start := time.Now()

	if f.limiter != nil {
		if err := f.limiter.Wait(ctx, rawURL); err != nil {
			if ctx.Err() == nil {
				// the limiter refuses up front when the wait would outlast the deadline
				err = fmt.Errorf("%w: %w", context.DeadlineExceeded, err)
			}
			return Page{}, f.fail(ctx, rawURL, 0, err, start)
		}
	}

	var (
		result Page
		status int
		failed error
		mu     sync.Mutex
	)
	collector := f.baseCollector.Clone()
	collector.Context = ctx
	f.configureCollectorHooks(collector, rawURL, start, &mu, &result, &status, &failed)

	done := make(chan error, 1)
	go func() {
		done <- collector.Visit(rawURL)
	}()

	select {
	case <-ctx.Done():
		return Page{}, f.fail(ctx, rawURL, 0, ctx.Err(), start)
	case err := <-done:
		mu.Lock()
		defer mu.Unlock()
		if err == nil {
			err = failed
		}
		if err != nil {
			return Page{}, f.fail(ctx, rawURL, status, err, start)
		}
		if result.FinalURL == "" {
			return Page{}, f.fail(ctx, rawURL, 0, errors.New("no response received"), start)
		}
		metrics.ObserveFetch(rawURL, "success", len(result.Body), result.Duration)
		f.logger.Debug("document fetched",
			zap.String("url", rawURL),
			zap.String("final_url", result.FinalURL),
			zap.Int("status", result.StatusCode),
			zap.Int("bytes", len(result.Body)),
			zap.Duration("duration", result.Duration),
		)
		return result, nil
	}
}

func (f *Fetcher) configureCollectorHooks(
	hooks collectorHooks,
	rawURL string,
	start time.Time,
	mu *sync.Mutex,
	result *Page,
	status *int,
	failed *error,
) {
	hooks.OnRequest(func(r *colly.Request) {
		r.Headers.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
		r.Headers.Set("Accept-Language", "en-US,en;q=0.9")
	})

	hooks.OnResponse(func(r *colly.Response) {
		mu.Lock()
		defer mu.Unlock()
		page := Page{
			URL:        rawURL,
			StatusCode: r.StatusCode,
			Body:       append([]byte(nil), r.Body...),
			Duration:   time.Since(start),
		}
		if r.Request != nil && r.Request.URL != nil {
			page.FinalURL = r.Request.URL.String()
		}
		if r.Headers != nil {
			page.Headers = r.Headers.Clone()
		}
		*result = page
	})

	hooks.OnError(func(r *colly.Response, err error) {
		mu.Lock()
		defer mu.Unlock()
		if r != nil {
			*status = r.StatusCode
		}
		*failed = err
	})
}

func (f *Fetcher) fail(ctx context.Context, rawURL string, status int, err error, start time.Time) error {
	if errors.Is(ctx.Err(), context.Canceled) {
		metrics.ObserveFetch(rawURL, "canceled", 0, time.Since(start))
		return fmt.Errorf("fetch %s canceled: %w", rawURL, ctx.Err())
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) && status == 0 {
		err = fmt.Errorf("%w: %w", context.DeadlineExceeded, err)
	}
	fe := classify(rawURL, status, err)
	metrics.ObserveFetch(rawURL, string(fe.Kind), 0, time.Since(start))
	f.logger.Info("document fetch failed",
		zap.String("url", rawURL),
		zap.String("kind", string(fe.Kind)),
		zap.Int("status", status),
		zap.Error(err),
	)
	return fe
}

// redirectPolicy refuses redirects to blocked hosts and stops after
// maxRedirects hops, returning the last response as colly does by default.
func redirectPolicy(blocked *hostblock.List) func(*http.Request, []*http.Request) error {
	return func(req *http.Request, via []*http.Request) error {
		if blocked.Blocked(req.URL.Hostname()) {
			return fmt.Errorf("%w: redirect to %s", ErrBlockedHost, req.URL.Hostname())
		}
		if len(via) >= maxRedirects {
			return http.ErrUseLastResponse
		}
		return nil
	}
}

func newHTTPTransport() *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		ForceAttemptHTTP2:     true,
	}
}
