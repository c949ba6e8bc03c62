// Package gateway holds the order submission backends.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/nikolayk812/foodie/internal/domain"
	"github.com/nikolayk812/foodie/internal/port"
	"go.uber.org/zap"
)

var ErrGatewayUnavailable = errors.New("order gateway unavailable")

// Simulated stands in for a remote order service: it waits latency and fails
// with probability failureRate.
type Simulated struct {
	latency     time.Duration
	failureRate float64
	logger      *zap.Logger

	mu  sync.Mutex
	rng *rand.Rand
}

func NewSimulated(latency time.Duration, failureRate float64, logger *zap.Logger) port.OrderSubmitter {
	return newSimulated(latency, failureRate, rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())), logger)
}

func newSimulated(latency time.Duration, failureRate float64, rng *rand.Rand, logger *zap.Logger) *Simulated {
	return &Simulated{
		latency:     latency,
		failureRate: failureRate,
		logger:      logger,
		rng:         rng,
	}
}

func (s *Simulated) SubmitOrder(ctx context.Context, order domain.Order) error {
	timer := time.NewTimer(s.latency)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return fmt.Errorf("s.SubmitOrder: %w", ctx.Err())
	case <-timer.C:
	}

	if s.fails() {
		s.logger.Debug("simulated gateway rejected order", zap.Stringer("order_id", order.ID))
		return ErrGatewayUnavailable
	}

	s.logger.Debug("simulated gateway accepted order", zap.Stringer("order_id", order.ID))
	return nil
}

func (s *Simulated) fails() bool {
	if s.failureRate <= 0 {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.rng.Float64() < s.failureRate
}

// Func adapts a plain function to port.OrderSubmitter.
type Func func(ctx context.Context, order domain.Order) error

func (f Func) SubmitOrder(ctx context.Context, order domain.Order) error {
	return f(ctx, order)
}
