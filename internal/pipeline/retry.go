package pipeline

import (
	"context"
	"errors"
	"math"
	"net"
	"net/http"
	"time"

	"go-sqa-metrics/internal/model"
	"go-sqa-metrics/internal/monitoring"
)

// StatusError is a non-200 answer from a report server.
type StatusError struct {
	Code   int
	Status string
}

func (e *StatusError) Error() string {
	return "unexpected status " + e.Status
}

// RetryingSource retries transient fetch failures of Source with exponential
// backoff. Decode errors, missing files and client errors fail immediately.
type RetryingSource struct {
	Source RowSource
	Config model.RetryConfig

	// sleep waits between attempts; tests replace it.
	sleep func(ctx context.Context, d time.Duration) error
}

func (s *RetryingSource) FetchRows(ctx context.Context, handle string) (model.Dataset, error) {
	sleep := s.sleep
	if sleep == nil {
		sleep = sleepContext
	}

	for attempt := 0; ; attempt++ {
		ds, err := s.Source.FetchRows(ctx, handle)
		if err == nil {
			return ds, nil
		}
		if attempt >= s.Config.MaxRetries || !isRetryableError(err) || ctx.Err() != nil {
			return model.Dataset{}, err
		}

		delay := retryDelay(s.Config, attempt+1)
		monitoring.Logf("🔄 Retrying %s in %v (attempt %d/%d): %v", handle, delay, attempt+1, s.Config.MaxRetries, err)
		if serr := sleep(ctx, delay); serr != nil {
			return model.Dataset{}, err
		}
	}
}

// retryDelay is InitialDelay * BackoffMultiplier^(attempt-1), capped at MaxDelay.
func retryDelay(cfg model.RetryConfig, attempt int) time.Duration {
	mult := cfg.BackoffMultiplier
	if mult < 1 {
		mult = 1
	}
	delay := time.Duration(float64(cfg.InitialDelay) * math.Pow(mult, float64(attempt-1)))
	if cfg.MaxDelay > 0 && delay > cfg.MaxDelay {
		delay = cfg.MaxDelay
	}
	return delay
}

// isRetryableError reports whether a fetch may succeed when repeated: network
// failures, 5xx and 429 answers.
func isRetryableError(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var serr *StatusError
	if errors.As(err, &serr) {
		return serr.Code >= 500 || serr.Code == http.StatusTooManyRequests
	}
	var nerr net.Error
	return errors.As(err, &nerr)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
