package dbx

import (
	"context"
	"math/rand"
	"strings"
	"time"
)

// RetryPolicy controls re-running of transactions that failed with a
// transient SQLite error. The zero value never retries, which is what the
// Postgres backend uses.
type RetryPolicy struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
}

// SQLiteRetryPolicy is used for the embedded SQLite backend, where WAL-mode
// writers can see SQLITE_BUSY/SQLITE_LOCKED under concurrent access even
// with busy_timeout set.
var SQLiteRetryPolicy = RetryPolicy{
	MaxRetries: 3,
	BaseDelay:  50 * time.Millisecond,
	MaxDelay:   500 * time.Millisecond,
}

// IsTransient reports whether err looks like a SQLite lock/busy condition
// that is resolved by retrying. modernc.org/sqlite embeds the result code in
// the error text.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	for _, pattern := range []string{
		"SQLITE_BUSY",
		"SQLITE_LOCKED",
		"IOERR_SHORT_READ",
		"database is locked",
		"database table is locked",
		"(5)",
		"(6)",
		"(522)",
	} {
		if strings.Contains(msg, pattern) {
			return true
		}
	}
	return false
}

// Do runs fn, retrying with exponential backoff plus jitter while it keeps
// failing with a transient error. Non-transient errors and context
// cancellation return immediately.
func (rp RetryPolicy) Do(ctx context.Context, fn func() error) error {
	var lastErr error
	for attempt := 0; attempt <= rp.MaxRetries; attempt++ {
		lastErr = fn()
		if lastErr == nil || !IsTransient(lastErr) {
			return lastErr
		}
		if attempt == rp.MaxRetries {
			break
		}
		select {
		case <-ctx.Done():
			return lastErr
		case <-time.After(rp.backoff(attempt)):
		}
	}
	return lastErr
}

// backoff computes baseDelay * 2^attempt (capped at maxDelay) + [0, baseDelay) jitter.
func (rp RetryPolicy) backoff(attempt int) time.Duration {
	if rp.BaseDelay <= 0 {
		return 0
	}
	delay := rp.BaseDelay << uint(attempt)
	if rp.MaxDelay > 0 && delay > rp.MaxDelay {
		delay = rp.MaxDelay
	}
	return delay + time.Duration(rand.Int63n(int64(rp.BaseDelay)))
}
