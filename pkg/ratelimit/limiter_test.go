package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"golang.org/x/time/rate"
)

func TestTokenBucketBurst(t *testing.T) {
	tb := NewTokenBucket(1, 3)

	for i := 0; i < 3; i++ {
		assert.True(t, tb.Allow(), "token %d", i+1)
	}
	assert.False(t, tb.Allow())
}

func TestTokenBucketRate(t *testing.T) {
	tb := NewTokenBucket(120, 1)
	assert.InDelta(t, 2.0, float64(tb.Limit()), 0.001)
}

func TestUnlimited(t *testing.T) {
	tb := Unlimited()
	assert.Equal(t, rate.Inf, tb.Limit())
	for i := 0; i < 100; i++ {
		assert.True(t, tb.Allow())
	}
	assert.NoError(t, tb.Wait(context.Background()))
}

func TestWaitHonorsContext(t *testing.T) {
	tb := NewTokenBucket(1, 1)
	assert.True(t, tb.Allow())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	assert.Error(t, tb.Wait(ctx))
}

func TestSleep(t *testing.T) {
	start := time.Now()
	assert.NoError(t, Sleep(context.Background(), 20*time.Millisecond))
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)

	assert.NoError(t, Sleep(context.Background(), 0))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, Sleep(ctx, time.Hour), context.Canceled)
}
