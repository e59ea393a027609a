package ebay_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmfallon/beepbeep/internal/ebay"
)

func TestRateLimiter_DailyLimit(t *testing.T) {
	t.Parallel()

	r := ebay.NewRateLimiter(1000, 10, 3)

	ctx := context.Background()
	for range 3 {
		require.NoError(t, r.Wait(ctx))
	}

	err := r.Wait(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, ebay.ErrDailyLimitReached)
	assert.Equal(t, int64(3), r.DailyCount())
	assert.Equal(t, int64(0), r.Remaining())
}

func TestRateLimiter_DailyReset(t *testing.T) {
	t.Parallel()

	now := time.Now()
	currentTime := now
	var mu sync.Mutex

	r := ebay.NewRateLimiter(1000, 10, 2,
		ebay.WithRateLimiterNowFunc(func() time.Time {
			mu.Lock()
			defer mu.Unlock()
			return currentTime
		}),
	)

	ctx := context.Background()
	require.NoError(t, r.Wait(ctx))
	require.NoError(t, r.Wait(ctx))
	require.Error(t, r.Wait(ctx))

	// Jump past the 24-hour window; the counter resets.
	mu.Lock()
	currentTime = now.Add(25 * time.Hour)
	mu.Unlock()

	require.NoError(t, r.Wait(ctx))
	assert.Equal(t, int64(1), r.DailyCount())
}

func TestRateLimiter_ContextCancellation(t *testing.T) {
	t.Parallel()

	// Tiny rate so the second Wait must block, then get canceled.
	r := ebay.NewRateLimiter(0.1, 1, 100)

	ctx := context.Background()
	require.NoError(t, r.Wait(ctx))

	canceled, cancel := context.WithTimeout(ctx, 10*time.Millisecond)
	defer cancel()

	err := r.Wait(canceled)
	require.Error(t, err)
}

func TestRateLimiter_ResetAt(t *testing.T) {
	t.Parallel()

	now := time.Now()
	r := ebay.NewRateLimiter(10, 1, 10,
		ebay.WithRateLimiterNowFunc(func() time.Time { return now }),
	)

	assert.Equal(t, now.Add(24*time.Hour), r.ResetAt())
}
