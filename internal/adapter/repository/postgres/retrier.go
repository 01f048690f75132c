package postgres

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5/pgconn"
)

// Retryable PostgreSQL error codes. Both mean the transaction lost a
// conflict and can simply be run again.
const (
	pgErrDeadlock             = "40P01"
	pgErrSerializationFailure = "40001"
)

// Retrier implements usecase.Retrier with exponential backoff around
// lock conflicts on the accounts being moved.
type Retrier struct {
	maxRetries      int
	initialInterval time.Duration
	maxInterval     time.Duration
	maxElapsedTime  time.Duration
	logger          *slog.Logger
}

// NewRetrier creates a new PostgreSQL retrier with default settings.
func NewRetrier() *Retrier {
	return &Retrier{
		maxRetries:      3,
		initialInterval: 50 * time.Millisecond,
		maxInterval:     time.Second,
		maxElapsedTime:  10 * time.Second,
		logger:          slog.Default(),
	}
}

// Retry runs operation, retrying on deadlock and serialization
// failures until maxRetries is exhausted. Any other error stops the
// loop immediately.
func (r *Retrier) Retry(ctx context.Context, operation func() error) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = r.initialInterval
	b.MaxInterval = r.maxInterval
	b.MaxElapsedTime = r.maxElapsedTime

	attempts := 0
	wrapped := func() error {
		err := operation()
		switch {
		case err == nil:
			return nil
		case !isRetryableError(err):
			return backoff.Permanent(err)
		}

		attempts++
		if attempts > r.maxRetries {
			return backoff.Permanent(err)
		}
		return err
	}

	notify := func(err error, next time.Duration) {
		r.logger.Warn("retrying transaction after lock conflict",
			"error", err,
			"attempt", attempts,
			"next_in", next,
		)
	}

	return backoff.RetryNotify(wrapped, backoff.WithContext(b, ctx), notify)
}

func isRetryableError(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == pgErrDeadlock || pgErr.Code == pgErrSerializationFailure
}
