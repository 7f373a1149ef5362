package fetcher

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// Kind classifies why a fetch failed.
type Kind string

// Failure kinds surfaced to callers.
const (
	KindNotFound Kind = "not_found"
	KindTimeout  Kind = "timeout"
	KindOther    Kind = "other"
)

// Sentinels matched by *Error through errors.Is.
var (
	ErrNotFound = errors.New("site not found")
	ErrTimeout  = errors.New("fetch timed out")
	ErrFetch    = errors.New("fetch failed")
)

// ErrBlockedHost is wrapped when a redirect points at a blocked host.
var ErrBlockedHost = errors.New("redirect to blocked host")

// Error describes a failed fetch. StatusCode is zero when no response arrived.
type Error struct {
	Kind       Kind
	URL        string
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: %s (status %d): %v", e.URL, e.Kind, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch %s: %s: %v", e.URL, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is lets errors.Is(err, ErrNotFound) and friends match on Kind.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.Kind == KindNotFound
	case ErrTimeout:
		return e.Kind == KindTimeout
	case ErrFetch:
		return true
	default:
		return false
	}
}

// classify maps a transport error and optional HTTP status to an *Error.
func classify(rawURL string, status int, err error) *Error {
	kind := KindOther
	var (
		dnsErr *net.DNSError
		netErr net.Error
	)
	switch {
	case status == http.StatusNotFound || status == http.StatusGone:
		kind = KindNotFound
	case errors.As(err, &dnsErr) && dnsErr.IsNotFound:
		kind = KindNotFound
	case errors.Is(err, context.DeadlineExceeded):
		kind = KindTimeout
	case errors.As(err, &netErr) && netErr.Timeout():
		kind = KindTimeout
	}
	if err == nil {
		err = errors.New(http.StatusText(status))
	}
	return &Error{Kind: kind, URL: rawURL, StatusCode: status, Err: err}
}
