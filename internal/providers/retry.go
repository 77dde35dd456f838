package providers

import (
	"time"

	"github.com/sirupsen/logrus"
)

// RetryPolicy wraps fallible operations with bounded exponential backoff.
// All error kinds are retried identically; the final failure is returned
// unchanged so callers can inspect the original error.
type RetryPolicy struct {
	maxAttempts int
	baseDelay   time.Duration
	logger      *logrus.Logger

	sleep func(time.Duration)
}

// NewRetryPolicy creates a retry policy. maxAttempts is the total number of
// attempts, not the number of retries after the first failure.
func NewRetryPolicy(maxAttempts int, baseDelay time.Duration, logger *logrus.Logger) *RetryPolicy {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &RetryPolicy{
		maxAttempts: maxAttempts,
		baseDelay:   baseDelay,
		logger:      logger,
		sleep:       time.Sleep,
	}
}

// Do invokes fn until it succeeds or maxAttempts is exhausted. Before each
// retry it sleeps baseDelay * 2^(attempt-1). On exhaustion the last error is
// returned as-is.
func (rp *RetryPolicy) Do(operation string, fn func() error) error {
	var lastErr error
	for attempt := 1; attempt <= rp.maxAttempts; attempt++ {
		if attempt > 1 {
			backoff := rp.baseDelay << uint(attempt-2)
			rp.logger.WithFields(logrus.Fields{
				"component": "retry",
				"operation": operation,
				"attempt":   attempt,
				"backoff":   backoff.String(),
			}).Warn("Retrying after failure")
			rp.sleep(backoff)
		}

		if err := fn(); err != nil {
			lastErr = err
			continue
		}
		return nil
	}
	return lastErr
}
