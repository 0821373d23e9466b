// Package retry centralizes the backoff/retry policy described in
// SPEC_FULL §5: transient failures get up to MAX_RETRIES attempts with
// exponential backoff, context cancellation always aborts immediately.
package retry

import (
	"context"
	"errors"
	"time"

	"github.com/failsafe-go/failsafe-go"
	"github.com/failsafe-go/failsafe-go/retrypolicy"

	"github.com/adaudit/compliance/internal/pipelineerr"
)

const (
	defaultMaxAttempts = 3
	baseDelay          = 800 * time.Millisecond
	maxDelay           = 6400 * time.Millisecond
	backoffFactor      = 2.0
)

// Do runs fn under the standard retry policy: non-retriable pipelineerr
// kinds and context cancellation abort immediately, everything else is
// retried up to maxAttempts with exponential backoff.
func Do[R any](ctx context.Context, maxAttempts int, fn func() (R, error)) (R, error) {
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}

	policy := retrypolicy.Builder[R]().
		HandleIf(func(_ R, err error) bool {
			return err != nil && !errors.Is(err, context.Canceled) && isRetriable(err)
		}).
		AbortOnErrors(context.Canceled).
		WithMaxAttempts(maxAttempts).
		ReturnLastFailure().
		WithBackoffFactor(baseDelay, maxDelay, backoffFactor).
		Build()

	return failsafe.With(policy).GetWithExecution(func(exec failsafe.Execution[R]) (R, error) {
		return fn()
	})
}

// isRetriable reports whether err is a transient condition (HTTP 5xx, 429,
// connection reset) per SPEC_FULL §5's backpressure rule. 4xx other than
// 429 and pipeline validation errors are not retried.
func isRetriable(err error) bool {
	var pe *pipelineerr.Error
	if e, ok := err.(*pipelineerr.Error); ok {
		pe = e
	}
	if pe == nil {
		return true
	}
	switch pe.Kind {
	case pipelineerr.KindFetchHTTP:
		return pe.Status >= 500 || pe.Status == 429
	case pipelineerr.KindInputInvalid, pipelineerr.KindUnauthenticated,
		pipelineerr.KindPayloadTooLarge, pipelineerr.KindTextTooLong:
		return false
	default:
		return true
	}
}
