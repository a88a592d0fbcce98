package ratelimiter

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name              string
		requestsPerSecond uint
		burst             uint
		wantBurst         int
		wantUnlimited     bool
	}{
		{name: "standard rate", requestsPerSecond: 100, burst: 200, wantBurst: 200},
		{name: "burst defaults to rate", requestsPerSecond: 50, burst: 0, wantBurst: 50},
		{name: "unlimited", requestsPerSecond: 0, burst: 0, wantBurst: 0, wantUnlimited: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			limiter := New(tt.requestsPerSecond, tt.burst)
			require.NotNil(t, limiter)
			assert.Equal(t, tt.wantUnlimited, limiter.Unlimited())
			assert.Equal(t, tt.wantBurst, limiter.Burst())
		})
	}
}

func TestAllow(t *testing.T) {
	limiter := New(10, 10)

	for i := 0; i < 10; i++ {
		assert.True(t, limiter.Allow(), "request %d should be allowed (within burst)", i)
	}
	assert.False(t, limiter.Allow(), "request beyond burst should be rejected")
}

func TestAllow_Unlimited(t *testing.T) {
	limiter := New(0, 0)
	for i := 0; i < 10_000; i++ {
		require.True(t, limiter.Allow())
	}
}

func TestWait(t *testing.T) {
	t.Run("WithinBurst", func(t *testing.T) {
		limiter := New(1, 3)
		ctx := context.Background()

		start := time.Now()
		for i := 0; i < 3; i++ {
			require.NoError(t, limiter.Wait(ctx))
		}
		assert.Less(t, time.Since(start), 100*time.Millisecond)
	})

	t.Run("CancelledContext", func(t *testing.T) {
		limiter := New(1, 1)
		require.True(t, limiter.Allow())

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		assert.Error(t, limiter.Wait(ctx))
	})

	t.Run("DeadlineTooShort", func(t *testing.T) {
		limiter := New(1, 1)
		require.True(t, limiter.Allow())

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()

		assert.Error(t, limiter.Wait(ctx))
	})
}

func TestNilLimiter(t *testing.T) {
	var limiter *RateLimiter

	assert.True(t, limiter.Unlimited())
	assert.True(t, limiter.Allow())
	assert.NoError(t, limiter.Wait(context.Background()))
	assert.Equal(t, float64(0), limiter.Limit())
}

func TestLimit(t *testing.T) {
	assert.Equal(t, float64(25), New(25, 0).Limit())
	assert.Equal(t, float64(0), New(0, 0).Limit())
}
