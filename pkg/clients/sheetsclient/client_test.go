package sheetsclient

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithRetry_SecondAttemptAfterFailure(t *testing.T) {
	c := &Client{timeout: time.Second}
	attempts := 0
	err := c.withRetry(context.Background(), func(ctx context.Context) error {
		attempts++
		if attempts == 1 {
			return fmt.Errorf("transient")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, attempts)
}

func TestWithRetry_CancelledContextSkipsRetry(t *testing.T) {
	c := &Client{timeout: time.Second}
	ctx, cancel := context.WithCancel(context.Background())

	attempts := 0
	start := time.Now()
	err := c.withRetry(ctx, func(ctx context.Context) error {
		attempts++
		cancel()
		return fmt.Errorf("transient")
	})

	require.Error(t, err)
	assert.Equal(t, 1, attempts)
	// the retry pause must not be waited out once the context is gone
	assert.Less(t, time.Since(start), retryDelay)
}

func TestWithRetry_CancelDuringPause(t *testing.T) {
	c := &Client{timeout: time.Second}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	time.AfterFunc(20*time.Millisecond, cancel)

	attempts := 0
	start := time.Now()
	err := c.withRetry(ctx, func(ctx context.Context) error {
		attempts++
		return fmt.Errorf("transient")
	})

	require.Error(t, err)
	assert.Equal(t, 1, attempts)
	assert.Less(t, time.Since(start), retryDelay)
}
