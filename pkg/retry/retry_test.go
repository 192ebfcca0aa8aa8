package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "kidplan-downloader/pkg/errors"
	"kidplan-downloader/pkg/logger"
)

func fastConfig(retries int) *Config {
	return &Config{
		MaxRetries:      retries,
		InitialInterval: time.Millisecond,
		MaxInterval:     2 * time.Millisecond,
		RetryIf:         DefaultRetryIf,
		Logger:          logger.NewNopLogger(),
	}
}

func TestDoSucceedsAfterTransientErrors(t *testing.T) {
	calls := 0
	err := Do(context.Background(), func() error {
		calls++
		if calls < 3 {
			return errs.New(errs.ErrorTypeNetwork, "connection reset")
		}
		return nil
	}, fastConfig(3))

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDoStopsOnPermanentError(t *testing.T) {
	calls := 0
	notFound := errs.FromStatus(404, "https://app.kidplan.com/x")

	err := Do(context.Background(), func() error {
		calls++
		return notFound
	}, fastConfig(5))

	assert.Equal(t, 1, calls)
	assert.ErrorIs(t, err, notFound)
	assert.Equal(t, 404, errs.StatusCode(err))
}

func TestDoGivesUpAfterMaxRetries(t *testing.T) {
	calls := 0
	var retried []time.Duration
	cfg := fastConfig(2)
	cfg.OnRetry = func(err error, d time.Duration) { retried = append(retried, d) }

	err := Do(context.Background(), func() error {
		calls++
		return errs.FromStatus(503, "u")
	}, cfg)

	assert.Error(t, err)
	assert.Equal(t, 3, calls)
	assert.Len(t, retried, 2)
	assert.Equal(t, errs.ErrorTypeServerError, errs.TypeOf(err))
}

func TestNoRetryMakesOneAttempt(t *testing.T) {
	calls := 0
	cfg := NoRetry()
	cfg.Logger = logger.NewNopLogger()

	err := Do(context.Background(), func() error {
		calls++
		return errors.New("boom")
	}, cfg)

	assert.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestDoHonorsCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := Do(ctx, func() error {
		calls++
		return errors.New("transient")
	}, fastConfig(10))

	assert.Error(t, err)
	assert.LessOrEqual(t, calls, 1)
}

func TestDoWithResult(t *testing.T) {
	calls := 0
	got, err := DoWithResult(context.Background(), func() (string, error) {
		calls++
		if calls == 1 {
			return "", errs.New(errs.ErrorTypeRateLimit, "slow down")
		}
		return "ok", nil
	}, fastConfig(2))

	require.NoError(t, err)
	assert.Equal(t, "ok", got)
}

func TestDefaultRetryIf(t *testing.T) {
	assert.False(t, DefaultRetryIf(nil))
	assert.False(t, DefaultRetryIf(context.Canceled))
	assert.False(t, DefaultRetryIf(errs.ErrNotLoggedIn))
	assert.False(t, DefaultRetryIf(errs.FromStatus(401, "u")))
	assert.True(t, DefaultRetryIf(errs.FromStatus(429, "u")))
	assert.True(t, DefaultRetryIf(errors.New("EOF")))
}
