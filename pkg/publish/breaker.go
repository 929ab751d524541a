package publish

import (
	"context"

	"github.com/itohio/lpsense/pkg/config"
	"github.com/itohio/lpsense/pkg/sample"
	"github.com/sony/gobreaker"
)

type breaker struct {
	next Publisher
	cb   *gobreaker.CircuitBreaker
}

// WithBreaker stops calling p after cfg.Failures consecutive failures and
// retries it once cfg.Open has elapsed. While open, Publish returns
// gobreaker.ErrOpenState.
func WithBreaker(name string, p Publisher, cfg config.BreakerConfig) Publisher {
	fails := cfg.Failures
	if fails < 1 {
		fails = 1
	}
	return &breaker{
		next: p,
		cb: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    name,
			Timeout: cfg.Open,
			ReadyToTrip: func(c gobreaker.Counts) bool {
				return c.ConsecutiveFailures >= uint32(fails)
			},
		}),
	}
}

func (b *breaker) Publish(ctx context.Context, s sample.Sample) error {
	_, err := b.cb.Execute(func() (interface{}, error) {
		return nil, b.next.Publish(ctx, s)
	})
	return err
}

func (b *breaker) Close() error {
	return b.next.Close()
}

func (b *breaker) state() gobreaker.State {
	return b.cb.State()
}
