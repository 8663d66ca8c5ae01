package middleware

import (
	"errors"
	"net/http"
	"time"

	"pokedex-backend/pkg/api"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// errServerFailure marks a 5xx response as a breaker failure.
var errServerFailure = errors.New("handler responded with 5xx")

// CircuitBreakerConfig holds configuration for circuit breaker
type CircuitBreakerConfig struct {
	Name        string
	MaxRequests uint32
	Interval    time.Duration
	Timeout     time.Duration
	// FailureThreshold and MinRequests decide when the breaker trips.
	FailureThreshold float64
	MinRequests      uint32
}

// DefaultCircuitBreakerConfig returns a default configuration for circuit breaker
func DefaultCircuitBreakerConfig(name string) CircuitBreakerConfig {
	return CircuitBreakerConfig{
		Name:             name,
		MaxRequests:      5,
		Interval:         30 * time.Second,
		Timeout:          60 * time.Second,
		FailureThreshold: 0.8,
		MinRequests:      5,
	}
}

// CircuitBreaker fails fast with 503 once too many requests end in 5xx,
// which in this service means the store is unreachable.
func CircuitBreaker(config CircuitBreakerConfig, logger *zap.Logger) func(http.Handler) http.Handler {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        config.Name,
		MaxRequests: config.MaxRequests,
		Interval:    config.Interval,
		Timeout:     config.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < config.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= config.FailureThreshold
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, err := cb.Execute(func() (any, error) {
				wrapper := &responseWrapper{ResponseWriter: w, statusCode: http.StatusOK}
				next.ServeHTTP(wrapper, r)
				if wrapper.statusCode >= http.StatusInternalServerError {
					return nil, errServerFailure
				}
				return nil, nil
			})

			// The handler already answered in every other case.
			if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
				logger.Warn("circuit breaker rejected request",
					zap.String("breaker", config.Name),
					zap.String("request_id", GetRequestIDFromRequest(r)),
					zap.String("path", r.URL.Path),
					zap.Error(err),
				)
				api.Error(w, http.StatusServiceUnavailable, "Service temporarily unavailable - too many failures")
			}
		})
	}
}

// responseWrapper wraps http.ResponseWriter to capture status code
type responseWrapper struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWrapper) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
