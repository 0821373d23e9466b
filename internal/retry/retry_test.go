package retry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adaudit/compliance/internal/pipelineerr"
)

func TestDo_SucceedsWithoutRetryOnFirstAttempt(t *testing.T) {
	calls := 0
	result, err := Do(context.Background(), 3, func() (string, error) {
		calls++
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", result)
	assert.Equal(t, 1, calls)
}

func TestDo_RetriesTransientErrorUntilSuccess(t *testing.T) {
	calls := 0
	result, err := Do(context.Background(), 3, func() (string, error) {
		calls++
		if calls < 3 {
			return "", pipelineerr.WithStatus(pipelineerr.KindFetchHTTP, 503, "upstream unavailable")
		}
		return "recovered", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "recovered", result)
	assert.Equal(t, 3, calls)
}

func TestDo_AbortsImmediatelyOnNonRetriableError(t *testing.T) {
	calls := 0
	_, err := Do(context.Background(), 3, func() (string, error) {
		calls++
		return "", pipelineerr.New(pipelineerr.KindInputInvalid, "bad input")
	})
	assert.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestDo_ExhaustsAttemptsAndReturnsLastFailure(t *testing.T) {
	calls := 0
	sentinel := pipelineerr.WithStatus(pipelineerr.KindFetchHTTP, 503, "still down")
	_, err := Do(context.Background(), 2, func() (string, error) {
		calls++
		return "", sentinel
	})
	assert.Error(t, err)
	assert.Equal(t, 2, calls)
}

func TestDo_DefaultsMaxAttemptsWhenNonPositive(t *testing.T) {
	calls := 0
	_, err := Do(context.Background(), 0, func() (string, error) {
		calls++
		return "", errors.New("boom")
	})
	assert.Error(t, err)
	assert.Equal(t, defaultMaxAttempts, calls)
}
