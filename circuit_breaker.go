package arcus

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/sony/gobreaker/v2"

	"github.com/pior/arcus/collection"
)

// CircuitBreaker guards one server. Operations run through Execute; the
// result type carries nothing since outcomes are delivered to callbacks.
type CircuitBreaker = gobreaker.CircuitBreaker[struct{}]

// NewCircuitBreakerConfig returns a factory creating one circuit breaker per
// server address, for Config.NewCircuitBreaker.
//
// The breaker trips when at least 3 requests were seen in the interval and
// 60% of them failed. Only transport failures and protocol violations count
// as failures; see IsBreakerFailure.
func NewCircuitBreakerConfig(maxRequests uint32, interval, timeout time.Duration) func(addr string) *CircuitBreaker {
	return func(addr string) *CircuitBreaker {
		return gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
			Name:        addr,
			MaxRequests: maxRequests,
			Interval:    interval,
			Timeout:     timeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
				return counts.Requests >= 3 && failureRatio >= 0.6
			},
			IsSuccessful: func(err error) bool {
				return !IsBreakerFailure(err)
			},
		})
	}
}

// IsBreakerFailure reports whether err says something about the health of
// the server. Rejected requests and caller cancellations do not.
func IsBreakerFailure(err error) bool {
	if err == nil {
		return false
	}

	var precondition *collection.PreconditionError
	if errors.As(err, &precondition) {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	return true
}
