package providers_test

import (
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	"github.com/courtmetrics/marginflow/internal/providers"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

func TestRetryPolicy_SuccessOnFirstAttempt(t *testing.T) {
	rp := providers.NewRetryPolicy(3, time.Millisecond, testLogger())

	calls := 0
	err := rp.Do("op", func() error {
		calls++
		return nil
	})

	assert.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestRetryPolicy_FailuresThenSuccess(t *testing.T) {
	rp := providers.NewRetryPolicy(4, time.Millisecond, testLogger())

	calls := 0
	err := rp.Do("op", func() error {
		calls++
		if calls < 3 {
			return errors.New("temporary failure")
		}
		return nil
	})

	assert.NoError(t, err)
	assert.Equal(t, 3, calls, "operation failing twice must be invoked exactly three times")
}

func TestRetryPolicy_ExhaustionReturnsOriginalError(t *testing.T) {
	rp := providers.NewRetryPolicy(3, time.Millisecond, testLogger())
	original := errors.New("persistent failure")

	calls := 0
	err := rp.Do("op", func() error {
		calls++
		return original
	})

	assert.Equal(t, 3, calls)
	assert.ErrorIs(t, err, original, "the final error must be returned unchanged")
	assert.EqualError(t, err, "persistent failure")
}

func TestRetryPolicy_BackoffIncreases(t *testing.T) {
	rp := providers.NewRetryPolicy(3, 20*time.Millisecond, testLogger())

	var timestamps []time.Time
	_ = rp.Do("op", func() error {
		timestamps = append(timestamps, time.Now())
		return errors.New("fail")
	})

	assert.Len(t, timestamps, 3)
	firstGap := timestamps[1].Sub(timestamps[0])
	secondGap := timestamps[2].Sub(timestamps[1])
	assert.GreaterOrEqual(t, firstGap, 20*time.Millisecond)
	assert.GreaterOrEqual(t, secondGap, 40*time.Millisecond, "backoff must grow between attempts")
}
