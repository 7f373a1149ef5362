package api

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/JakeFAU/site-swot/internal/analysis"
	"github.com/JakeFAU/site-swot/internal/auth"
	"github.com/JakeFAU/site-swot/internal/config"
	"github.com/JakeFAU/site-swot/internal/fetcher"
	"github.com/JakeFAU/site-swot/internal/service"
)

var sampleReport = analysis.Report{
	Strengths:     []string{"Page has a proper heading hierarchy"},
	Weaknesses:    []string{},
	Opportunities: []string{"a", "b", "c", "d"},
	Threats:       []string{"1", "2", "3", "4", "5"},
}

func TestServer_Analyze_Succeeds(t *testing.T) {
	t.Parallel()

	analyzer := &fakeAnalyzer{report: sampleReport}
	server := NewServer(analyzer, &fakeVerifier{}, config.Config{}, zap.NewNop())

	rec := postAnalyze(t, server, "/analyze", `{"url":"https://example.com"}`, "Bearer good")

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	require.Equal(t, []string{"https://example.com"}, analyzer.urls())

	var body map[string][]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body, 4)
	require.Equal(t, sampleReport.Strengths, body["strengths"])
	require.NotNil(t, body["weaknesses"])
	require.Len(t, body["opportunities"], 4)
	require.Len(t, body["threats"], 5)
}

func TestServer_Analyze_VersionedRoute(t *testing.T) {
	t.Parallel()

	server := NewServer(&fakeAnalyzer{report: sampleReport}, nil, config.Config{}, zap.NewNop())
	rec := postAnalyze(t, server, "/v1/analyze", `{"url":"https://example.com"}`, "")
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestServer_Analyze_ErrorMapping(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantMsg    string
	}{
		{
			name:       "missing url",
			err:        service.ErrMissingURL,
			wantStatus: http.StatusBadRequest,
			wantCode:   codeMissingURL,
		},
		{
			name:       "invalid url",
			err:        fmt.Errorf("%w: scheme", service.ErrInvalidURL),
			wantStatus: http.StatusBadRequest,
			wantCode:   codeInvalidURL,
		},
		{
			name:       "redirect to blocked host",
			err:        fmt.Errorf("%w: %w", service.ErrInvalidURL, fetcher.ErrBlockedHost),
			wantStatus: http.StatusBadRequest,
			wantCode:   codeInvalidURL,
		},
		{
			name:       "not found",
			err:        fmt.Errorf("fetch: %w", &fetcher.Error{Kind: fetcher.KindNotFound, URL: "u", Err: errors.New("dns")}),
			wantStatus: http.StatusNotFound,
			wantCode:   codeSiteNotFound,
		},
		{
			name:       "timeout",
			err:        &fetcher.Error{Kind: fetcher.KindTimeout, URL: "u", Err: context.DeadlineExceeded},
			wantStatus: http.StatusGatewayTimeout,
			wantCode:   codeTimeout,
		},
		{
			name:       "other fetch failure",
			err:        &fetcher.Error{Kind: fetcher.KindOther, URL: "u", Err: errors.New("refused")},
			wantStatus: http.StatusInternalServerError,
			wantCode:   codeAnalysisFailed,
			wantMsg:    "An error occurred during analysis",
		},
		{
			name:       "parse failure",
			err:        service.ErrParse,
			wantStatus: http.StatusInternalServerError,
			wantCode:   codeAnalysisFailed,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			server := NewServer(&fakeAnalyzer{err: tt.err}, nil, config.Config{}, zap.NewNop())
			rec := postAnalyze(t, server, "/analyze", `{"url":"https://example.com"}`, "")

			require.Equal(t, tt.wantStatus, rec.Code)
			resp := decodeError(t, rec)
			require.Equal(t, tt.wantCode, resp.Code)
			require.NotEmpty(t, resp.Error)
			if tt.wantMsg != "" {
				require.Equal(t, tt.wantMsg, resp.Error)
			}
		})
	}
}

func TestServer_Analyze_InvalidJSON(t *testing.T) {
	t.Parallel()

	analyzer := &fakeAnalyzer{report: sampleReport}
	server := NewServer(analyzer, nil, config.Config{}, zap.NewNop())
	rec := postAnalyze(t, server, "/analyze", "{invalid", "")

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, codeInvalidJSON, decodeError(t, rec).Code)
	require.Empty(t, analyzer.urls())
}

func TestServer_Analyze_EmptyBodyIsMissingURL(t *testing.T) {
	t.Parallel()

	analyzer := &fakeAnalyzer{err: service.ErrMissingURL}
	server := NewServer(analyzer, nil, config.Config{}, zap.NewNop())
	rec := postAnalyze(t, server, "/analyze", "", "")

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, codeMissingURL, decodeError(t, rec).Code)
	require.Equal(t, []string{""}, analyzer.urls())
}

func TestServer_AuthMiddleware(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		header     string
		verifyErr  error
		wantStatus int
		wantCode   string
	}{
		{name: "missing token", header: "", wantStatus: http.StatusUnauthorized, wantCode: codeUnauthorized},
		{name: "wrong scheme", header: "Basic abc", wantStatus: http.StatusUnauthorized, wantCode: codeUnauthorized},
		{name: "invalid token", header: "Bearer bad", verifyErr: auth.ErrInvalidToken, wantStatus: http.StatusUnauthorized, wantCode: codeUnauthorized},
		{name: "expired token", header: "Bearer old", verifyErr: auth.ErrExpiredToken, wantStatus: http.StatusUnauthorized, wantCode: codeUnauthorized},
		{name: "provider down", header: "Bearer x", verifyErr: auth.ErrUnavailable, wantStatus: http.StatusServiceUnavailable, wantCode: codeAuthUnavailable},
		{name: "valid token", header: "Bearer good", wantStatus: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			analyzer := &fakeAnalyzer{report: sampleReport}
			verifier := &fakeVerifier{err: tt.verifyErr}
			server := NewServer(analyzer, verifier, config.Config{}, zap.NewNop())

			rec := postAnalyze(t, server, "/analyze", `{"url":"https://example.com"}`, tt.header)
			require.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantCode != "" {
				require.Equal(t, tt.wantCode, decodeError(t, rec).Code)
				require.Empty(t, analyzer.urls())
				return
			}
			require.Equal(t, "user-1", analyzer.principal().Subject)
		})
	}
}

func TestServer_HealthRoutesSkipAuth(t *testing.T) {
	t.Parallel()

	server := NewServer(&fakeAnalyzer{}, &fakeVerifier{err: auth.ErrInvalidToken}, config.Config{}, zap.NewNop())
	for _, path := range []string{"/healthz", "/readyz", "/metrics"} {
		rec := httptest.NewRecorder()
		server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		require.Equal(t, http.StatusOK, rec.Code, path)
	}
}

func TestServer_RequestTimeout(t *testing.T) {
	t.Parallel()

	analyzer := &fakeAnalyzer{delay: 200 * time.Millisecond, report: sampleReport}
	cfg := config.Config{Server: config.ServerConfig{RequestTimeout: 20 * time.Millisecond}}
	server := NewServer(analyzer, nil, cfg, zap.NewNop())

	rec := postAnalyze(t, server, "/analyze", `{"url":"https://example.com"}`, "")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	require.Equal(t, codeTimeout, decodeError(t, rec).Code)
}

func TestServer_CORS(t *testing.T) {
	t.Parallel()

	cfg := config.Config{CORS: config.CORSConfig{AllowedOrigins: []string{"https://app.example.com"}}}
	server := NewServer(&fakeAnalyzer{report: sampleReport}, nil, cfg, zap.NewNop())

	req := httptest.NewRequest(http.MethodOptions, "/analyze", nil)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "Authorization, Content-Type")
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)
	require.Equal(t, "https://app.example.com", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodPost, "/analyze", bytes.NewBufferString(`{"url":"https://example.com"}`))
	req.Header.Set("Origin", "https://evil.example.com")
	rec = httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)
	require.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))

	// no Origin header: same-origin or non-browser client
	rec = postAnalyze(t, server, "/analyze", `{"url":"https://example.com"}`, "")
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestServer_StaticDir(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<h1>SWOT</h1>"), 0o600))
	cfg := config.Config{Server: config.ServerConfig{StaticDir: dir}}
	server := NewServer(&fakeAnalyzer{}, nil, cfg, zap.NewNop())

	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "<h1>SWOT</h1>")
}

func TestServer_RecoversPanics(t *testing.T) {
	t.Parallel()

	server := NewServer(&fakeAnalyzer{panicMsg: "boom"}, nil, config.Config{}, zap.NewNop())
	rec := postAnalyze(t, server, "/analyze", `{"url":"https://example.com"}`, "")
	require.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestRequestIDMiddlewareSetsHeader(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	NewServer(&fakeAnalyzer{}, nil, config.Config{}, nil).Handler().ServeHTTP(rec, req)

	require.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestResponseWriterHijackBehavior(t *testing.T) {
	t.Parallel()

	rw := &responseWriter{ResponseWriter: httptest.NewRecorder()}
	if _, _, err := rw.Hijack(); err == nil || err.Error() != "hijacker not supported" {
		t.Fatalf("expected unsupported hijacker error, got %v", err)
	}

	h := &hijackableRecorder{ResponseRecorder: httptest.NewRecorder()}
	rw = &responseWriter{ResponseWriter: h}
	conn, buf, err := rw.Hijack()
	if err != nil {
		t.Fatalf("expected successful hijack, got %v", err)
	}
	if err := conn.Close(); err != nil {
		t.Fatalf("close hijacked conn: %v", err)
	}
	if err := h.CloseClient(); err != nil {
		t.Fatalf("close hijacked client: %v", err)
	}
	if buf == nil {
		t.Fatal("expected buf to be non-nil")
	}
}

// --- helpers/fakes ---

func postAnalyze(t *testing.T, server *Server, path, body, authHeader string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorResponse {
	t.Helper()
	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

type fakeAnalyzer struct {
	mu       sync.Mutex
	report   analysis.Report
	err      error
	delay    time.Duration
	panicMsg string
	calls    []string
	caller   auth.Principal
}

func (f *fakeAnalyzer) Analyze(ctx context.Context, rawURL string) (analysis.Report, error) {
	f.mu.Lock()
	f.calls = append(f.calls, rawURL)
	f.caller, _ = auth.PrincipalFromContext(ctx)
	f.mu.Unlock()
	if f.panicMsg != "" {
		panic(f.panicMsg)
	}
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return analysis.Report{}, ctx.Err()
		}
	}
	if f.err != nil {
		return analysis.Report{}, f.err
	}
	return f.report, nil
}

func (f *fakeAnalyzer) urls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeAnalyzer) principal() auth.Principal {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.caller
}

type fakeVerifier struct {
	err error
}

func (f *fakeVerifier) Verify(_ context.Context, token string) (auth.Principal, error) {
	if f.err != nil {
		return auth.Principal{}, f.err
	}
	if token == "" {
		return auth.Principal{}, auth.ErrNoToken
	}
	return auth.Principal{Subject: "user-1"}, nil
}

type hijackableRecorder struct {
	*httptest.ResponseRecorder
	client net.Conn
}

func (h *hijackableRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	server, client := net.Pipe()
	h.client = client
	return server, bufio.NewReadWriter(bufio.NewReader(client), bufio.NewWriter(client)), nil
}

func (h *hijackableRecorder) CloseClient() error {
	if h.client != nil {
		if err := h.client.Close(); err != nil {
			return fmt.Errorf("close hijacker client: %w", err)
		}
	}
	return nil
}
