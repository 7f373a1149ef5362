package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// RemoteVerifier asks a Supabase-style user-info endpoint (GET /auth/v1/user
// with an apikey header) whether a token is valid. Used when tokens are opaque
// or signed with keys this service does not hold.
type RemoteVerifier struct {
	endpoint string
	apiKey   string
	client   *http.Client
}

// NewRemoteVerifier builds a verifier against endpoint. apiKey, when set, is
// sent as the "apikey" header some providers require alongside the token.
func NewRemoteVerifier(endpoint, apiKey string, timeout time.Duration) *RemoteVerifier {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &RemoteVerifier{
		endpoint: endpoint,
		apiKey:   apiKey,
		client:   &http.Client{Timeout: timeout},
	}
}

type userInfo struct {
	ID    string `json:"id"`
	Sub   string `json:"sub"`
	Email string `json:"email"`
}

// Verify forwards token to the provider. 401 and 403 mean the token is bad;
// any other failure is reported as ErrUnavailable.
func (v *RemoteVerifier) Verify(ctx context.Context, token string) (Principal, error) {
	if token == "" {
		return Principal{}, ErrNoToken
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.endpoint, nil)
	if err != nil {
		return Principal{}, fmt.Errorf("build userinfo request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	if v.apiKey != "" {
		req.Header.Set("apikey", v.apiKey)
	}

	resp, err := v.client.Do(req)
	if err != nil {
		return Principal{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close() //nolint:errcheck // read-only body

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return Principal{}, ErrInvalidToken
	case resp.StatusCode != http.StatusOK:
		return Principal{}, fmt.Errorf("%w: userinfo status %d", ErrUnavailable, resp.StatusCode)
	}

	var info userInfo
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&info); err != nil {
		return Principal{}, fmt.Errorf("%w: decode userinfo: %v", ErrUnavailable, err)
	}
	subject := info.Sub
	if subject == "" {
		subject = info.ID
	}
	if subject == "" {
		return Principal{}, ErrInvalidToken
	}
	return Principal{Subject: subject, Email: info.Email}, nil
}
