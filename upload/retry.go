package upload

import (
	"bytes"
	"context"
	"errors"
	"io"
	"time"
)

// RetryableError wraps an error to indicate the upload may succeed if
// attempted again. Implementations wrap transient transport failures.
type RetryableError struct{ Err error }

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// Retryable wraps err as a RetryableError.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err}
}

// IsRetryable reports whether err is wrapped with RetryableError.
func IsRetryable(err error) bool {
	return errors.As(err, new(*RetryableError))
}

type retrying struct {
	next     Uploader
	attempts int
	delay    time.Duration
}

// WithRetry returns an Uploader that retries retryable failures of next up
// to attempts times. The delay doubles after each failed attempt. The
// content is buffered so every attempt sends the same bytes.
func WithRetry(next Uploader, attempts int, delay time.Duration) Uploader {
	return &retrying{next: next, attempts: max(attempts, 1), delay: delay}
}

func (u *retrying) Upload(ctx context.Context, name, folder string, r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", &Error{Name: name, Err: err}
	}

	delay := u.delay
	var lastErr error
	for i := range u.attempts {
		id, err := u.next.Upload(ctx, name, folder, bytes.NewReader(data))
		if err == nil {
			return id, nil
		}
		if lastErr = err; !IsRetryable(err) {
			return "", err
		}
		if i < u.attempts-1 {
			select {
			case <-ctx.Done():
				return "", &Error{Name: name, Err: ctx.Err()}
			case <-time.After(delay):
				delay *= 2
			}
		}
	}
	return "", lastErr
}
