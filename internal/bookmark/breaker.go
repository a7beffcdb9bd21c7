package bookmark

import (
	"context"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// BreakerStore guards a remote store with a circuit breaker, so a database
// outage costs one fast failure per navigation instead of a stalled session.
type BreakerStore struct {
	next Store
	cb   *gobreaker.CircuitBreaker
}

// NewBreakerStore wraps next. The breaker opens after five consecutive
// failures and probes again after timeout.
func NewBreakerStore(next Store, timeout time.Duration, logger *zap.Logger) *BreakerStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "bookmarks",
		MaxRequests: 1,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})
	return &BreakerStore{next: next, cb: cb}
}

type lookup struct {
	value string
	found bool
}

func (b *BreakerStore) Get(ctx context.Context, key string) (string, bool, error) {
	res, err := b.cb.Execute(func() (interface{}, error) {
		v, ok, err := b.next.Get(ctx, key)
		return lookup{v, ok}, err
	})
	if err != nil {
		return "", false, err
	}
	l := res.(lookup)
	return l.value, l.found, nil
}

func (b *BreakerStore) Set(ctx context.Context, key, value string) error {
	_, err := b.cb.Execute(func() (interface{}, error) {
		return nil, b.next.Set(ctx, key, value)
	})
	return err
}

// State reports the breaker state for diagnostics.
func (b *BreakerStore) State() gobreaker.State { return b.cb.State() }
