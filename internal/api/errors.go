package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/JakeFAU/site-swot/internal/auth"
	"github.com/JakeFAU/site-swot/internal/fetcher"
	"github.com/JakeFAU/site-swot/internal/service"
)

// Machine-readable error codes returned in the "code" field.
const (
	codeMissingURL      = "MISSING_URL"
	codeInvalidURL      = "INVALID_URL"
	codeSiteNotFound    = "SITE_NOT_FOUND"
	codeTimeout         = "TIMEOUT"
	codeAnalysisFailed  = "ANALYSIS_FAILED"
	codeUnauthorized    = "UNAUTHORIZED"
	codeAuthUnavailable = "AUTH_UNAVAILABLE"
	codeInvalidJSON     = "INVALID_JSON"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// classifyError maps analyzer failures to status, code and user-facing message.
func classifyError(err error) (int, string, string) {
	switch {
	case errors.Is(err, service.ErrMissingURL):
		return http.StatusBadRequest, codeMissingURL, "URL is required"
	case errors.Is(err, service.ErrInvalidURL):
		return http.StatusBadRequest, codeInvalidURL, "Invalid URL format"
	case errors.Is(err, fetcher.ErrNotFound):
		return http.StatusNotFound, codeSiteNotFound, "Website not found"
	case errors.Is(err, fetcher.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, codeTimeout, "Request timed out while fetching the website"
	default:
		return http.StatusInternalServerError, codeAnalysisFailed, "An error occurred during analysis"
	}
}

func classifyAuthError(err error) (int, string, string) {
	switch {
	case errors.Is(err, auth.ErrUnavailable):
		return http.StatusServiceUnavailable, codeAuthUnavailable, "Authentication service unavailable"
	case errors.Is(err, auth.ErrNoToken):
		return http.StatusUnauthorized, codeUnauthorized, "Missing bearer token"
	case errors.Is(err, auth.ErrExpiredToken):
		return http.StatusUnauthorized, codeUnauthorized, "Token has expired"
	default:
		return http.StatusUnauthorized, codeUnauthorized, "Invalid token"
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		zap.L().Error("write JSON failed", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, errorResponse{Error: msg, Code: code})
}
