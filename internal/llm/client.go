// Package llm wraps the external language model behind a small client
// interface so services never depend on a concrete provider.
package llm

import (
	"context"
	"errors"
)

// Error kinds surfaced by clients. Callers classify with errors.Is.
var (
	ErrRateLimited    = errors.New("llm: rate limited")
	ErrTimeout        = errors.New("llm: request timed out")
	ErrInvalidRequest = errors.New("llm: invalid request")
	ErrUnavailable    = errors.New("llm: service unavailable")
)

// Client generates text from a prompt. Implementations must honor ctx
// cancellation and deadlines; the call is the dominant latency source of
// every chat and interview request.
type Client interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Name() string
}

// Retryable reports whether an error is transient enough to retry.
// Only rate limiting and provider outages qualify; invalid requests and
// timeouts are surfaced immediately.
func Retryable(err error) bool {
	return errors.Is(err, ErrRateLimited) || errors.Is(err, ErrUnavailable)
}
