package util

import (
	"time"

	backoff "gopkg.in/cenkalti/backoff.v2"
)

// Retry runs op up to attempts times with a constant delay between
// attempts. Intermediate failures are swallowed, the final attempt's
// failure propagates unchanged.
func Retry[T any](attempts int, delay time.Duration, op func() (T, error)) (T, error) {
	if attempts < 1 {
		attempts = 1
	}

	var result T
	policy := backoff.WithMaxRetries(backoff.NewConstantBackOff(delay), uint64(attempts-1))
	err := backoff.Retry(func() error {
		var opErr error
		result, opErr = op()
		return opErr
	}, policy)

	return result, err
}
