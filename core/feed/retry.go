package feed

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// StatusError is returned for a non-200 feed response.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("feed returned status %d", e.Code)
}

// Transient reports whether the status is worth retrying.
func (e *StatusError) Transient() bool {
	return e.Code == http.StatusTooManyRequests || e.Code >= http.StatusInternalServerError
}

// permanentError stops retry immediately.
type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

func permanent(err error) error {
	return &permanentError{err: err}
}

// retry calls fn up to attempts times, doubling the delay after every failure.
// It gives up early on a permanent error or when ctx is done. onRetry, if set, is
// called before each wait.
func retry(ctx context.Context, attempts int, backoff time.Duration, fn func() error, onRetry func(attempt int, err error)) error {
	if attempts <= 0 {
		attempts = 1
	}
	var err error
	for i := 0; i < attempts; i++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		err = fn()
		if err == nil {
			return nil
		}
		var perm *permanentError
		if errors.As(err, &perm) {
			return perm.err
		}
		if i == attempts-1 {
			break
		}
		if onRetry != nil {
			onRetry(i+1, err)
		}
		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		backoff *= 2
	}
	return err
}
