package llm

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/stackmentor/backend/pkg/logger"
)

// DefaultBackoff is the base delay before the first retry; later
// retries double it.
const DefaultBackoff = 500 * time.Millisecond

// RetryClient decorates a Client with a bounded retry policy: at most
// maxRetries re-attempts, exponential backoff, and only for transient
// errors (see Retryable). It never retries indefinitely.
type RetryClient struct {
	inner      Client
	maxRetries int
	backoff    time.Duration
}

func NewRetryClient(inner Client, maxRetries int, backoff time.Duration) *RetryClient {
	if maxRetries < 0 {
		maxRetries = 0
	}
	if backoff <= 0 {
		backoff = DefaultBackoff
	}
	return &RetryClient{
		inner:      inner,
		maxRetries: maxRetries,
		backoff:    backoff,
	}
}

func (r *RetryClient) Generate(ctx context.Context, prompt string) (string, error) {
	var lastErr error

	for attempt := 0; attempt <= r.maxRetries; attempt++ {
		if attempt > 0 {
			logger.Log.Warn("Retrying model call",
				zap.String("provider", r.inner.Name()),
				zap.Int("attempt", attempt),
				zap.Error(lastErr),
			)

			select {
			case <-ctx.Done():
				return "", fmt.Errorf("%w: %v", ErrTimeout, ctx.Err())
			case <-time.After(r.backoff << (attempt - 1)):
			}
		}

		text, err := r.inner.Generate(ctx, prompt)
		if err == nil {
			return text, nil
		}
		lastErr = err

		if !Retryable(err) {
			return "", err
		}
	}

	return "", lastErr
}

func (r *RetryClient) Name() string {
	return r.inner.Name()
}
