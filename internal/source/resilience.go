package source

import (
	"context"
	"errors"
	"math/rand"
	"net/http"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/actuallystonmai/group-dining-service/internal/domain"
	"github.com/actuallystonmai/group-dining-service/internal/logging"
	"github.com/actuallystonmai/group-dining-service/internal/metrics"
)

// RateLimit waits for a token before every call.
func RateLimit(name string, limit rate.Limit, burst int) Middleware {
	limiter := rate.NewLimiter(limit, burst)
	return func(next Source) Source {
		return Func(func(ctx context.Context, q domain.CandidateQuery) ([]domain.Venue, error) {
			if err := limiter.Wait(ctx); err != nil {
				return nil, &domain.CandidateSourceError{Source: name, Err: err}
			}
			return next.Fetch(ctx, q)
		})
	}
}

type BreakerSettings struct {
	// ConsecutiveFailures trips the breaker. Default 5.
	ConsecutiveFailures uint32
	// OpenTimeout is how long the breaker stays open. Default 30s.
	OpenTimeout time.Duration
	// HalfOpenRequests is how many calls may pass while half-open. Default 1.
	HalfOpenRequests uint32
}

// CircuitBreaker rejects calls while the upstream keeps failing.
// Rejections are reported as a CandidateSourceError wrapping
// gobreaker.ErrOpenState or gobreaker.ErrTooManyRequests.
func CircuitBreaker(name string, s BreakerSettings) Middleware {
	if s.ConsecutiveFailures == 0 {
		s.ConsecutiveFailures = 5
	}
	if s.OpenTimeout <= 0 {
		s.OpenTimeout = 30 * time.Second
	}
	if s.HalfOpenRequests == 0 {
		s.HalfOpenRequests = 1
	}

	metrics.CircuitBreakerState.WithLabelValues(name).Set(0)
	cb := gobreaker.NewCircuitBreaker[[]domain.Venue](gobreaker.Settings{
		Name:        name,
		MaxRequests: s.HalfOpenRequests,
		Timeout:     s.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= s.ConsecutiveFailures
		},
		// Client mistakes and cancelled requests say nothing about upstream health.
		IsSuccessful: func(err error) bool {
			if err == nil || errors.Is(err, context.Canceled) {
				return true
			}
			var cse *domain.CandidateSourceError
			if errors.As(err, &cse) && cse.StatusCode >= 400 && cse.StatusCode < 500 &&
				cse.StatusCode != http.StatusTooManyRequests {
				return true
			}
			return false
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).
				Msg("circuit breaker state change")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(breakerGauge(to))
		},
	})

	return func(next Source) Source {
		return Func(func(ctx context.Context, q domain.CandidateQuery) ([]domain.Venue, error) {
			venues, err := cb.Execute(func() ([]domain.Venue, error) {
				return next.Fetch(ctx, q)
			})
			if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
				return nil, &domain.CandidateSourceError{Source: name, StatusCode: http.StatusServiceUnavailable, Err: err}
			}
			return venues, err
		})
	}
}

func breakerGauge(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}

// Retry re-issues calls that failed with a transport error, 429 or 5xx,
// backing off exponentially with jitter. The last error is returned as is.
func Retry(name string, maxRetries int, baseDelay, maxDelay time.Duration) Middleware {
	return func(next Source) Source {
		return Func(func(ctx context.Context, q domain.CandidateQuery) ([]domain.Venue, error) {
			var lastErr error
			for attempt := 0; attempt <= maxRetries; attempt++ {
				venues, err := next.Fetch(ctx, q)
				if err == nil {
					return venues, nil
				}
				lastErr = err

				if attempt == maxRetries || !retryable(err) || ctx.Err() != nil {
					break
				}

				metrics.CandidateRetries.WithLabelValues(name).Inc()
				logging.Debug().Str("source", name).Int("attempt", attempt+1).Err(err).Msg("retrying candidate fetch")

				select {
				case <-ctx.Done():
					return nil, lastErr
				case <-time.After(backoff(attempt, baseDelay, maxDelay)):
				}
			}
			return nil, lastErr
		})
	}
}

func retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return false
	}
	var cse *domain.CandidateSourceError
	if !errors.As(err, &cse) {
		return false
	}
	return cse.StatusCode == 0 ||
		cse.StatusCode == http.StatusTooManyRequests ||
		cse.StatusCode >= http.StatusInternalServerError
}

func backoff(attempt int, base, maxDelay time.Duration) time.Duration {
	attempt = min(max(attempt, 0), 30)
	delay := base * time.Duration(1<<uint(attempt))

	// ±25% jitter
	jitter := time.Duration(rand.Float64() * float64(delay) * 0.5)
	delay = delay + jitter - delay/4

	if maxDelay > 0 && delay > maxDelay {
		delay = maxDelay
	}
	return delay
}

// Instrument records call counts and latency for the wrapped source.
func Instrument(name string) Middleware {
	return func(next Source) Source {
		return Func(func(ctx context.Context, q domain.CandidateQuery) ([]domain.Venue, error) {
			start := time.Now()
			venues, err := next.Fetch(ctx, q)
			metrics.CandidateFetchDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())

			status := "success"
			if err != nil {
				status = "error"
			}
			metrics.CandidateFetches.WithLabelValues(name, status).Inc()
			return venues, err
		})
	}
}
