// Package retry provides a bounded retry wrapper for fallible operations.
package retry

import (
	"time"
)

// Do invokes op and, on failure, retries it up to maxRetries times with a
// fixed delay between attempts. maxRetries of 0 means exactly one attempt.
// When every attempt fails the error of the first attempt is returned, so
// callers see the original failure rather than a follow-up symptom.
func Do(op func() error, delay time.Duration, maxRetries int) error {
	firstErr := op()
	if firstErr == nil {
		return nil
	}

	for i := 0; i < maxRetries; i++ {
		time.Sleep(delay)

		if err := op(); err == nil {
			return nil
		}
	}

	return firstErr
}
