package gateway

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nikolayk812/foodie/internal/domain"
	"github.com/nikolayk812/foodie/internal/port"
	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
)

// ErrBreakerOpen is returned without calling the wrapped submitter.
var ErrBreakerOpen = errors.New("order gateway circuit open")

type BreakerSettings struct {
	Name        string
	MaxFailures uint32
	OpenTimeout time.Duration
}

type breaker struct {
	next port.OrderSubmitter
	cb   *gobreaker.CircuitBreaker[struct{}]
}

// NewBreaker opens after MaxFailures consecutive failures and lets a trial request through after OpenTimeout.
// Caller cancellation does not count as a failure.
func NewBreaker(next port.OrderSubmitter, settings BreakerSettings, logger *zap.Logger) port.OrderSubmitter {
	if settings.MaxFailures == 0 {
		settings.MaxFailures = 1
	}

	cb := gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:    settings.Name,
		Timeout: settings.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= settings.MaxFailures
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("name", name),
				zap.Stringer("from", from),
				zap.Stringer("to", to))
		},
	})

	return &breaker{next: next, cb: cb}
}

func (b *breaker) SubmitOrder(ctx context.Context, order domain.Order) error {
	_, err := b.cb.Execute(func() (struct{}, error) {
		return struct{}{}, b.next.SubmitOrder(ctx, order)
	})

	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return fmt.Errorf("%w: %w", ErrBreakerOpen, err)
	case err != nil:
		return err
	}

	return nil
}

// WithTimeout bounds every submission attempt by timeout.
func WithTimeout(next port.OrderSubmitter, timeout time.Duration) port.OrderSubmitter {
	return Func(func(ctx context.Context, order domain.Order) error {
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		return next.SubmitOrder(ctx, order)
	})
}
