package gateway

import (
	"context"
	"errors"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/nikolayk812/foodie/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestSimulated_SubmitOrder(t *testing.T) {
	tests := []struct {
		name        string
		failureRate float64
		wantError   error
	}{
		{
			name: "never fails: ok",
		},
		{
			name:        "always fails: error",
			failureRate: 1,
			wantError:   ErrGatewayUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newSimulated(time.Millisecond, tt.failureRate, rand.New(rand.NewPCG(1, 2)), zap.NewNop())

			err := s.SubmitOrder(t.Context(), domain.Order{ID: uuid.New()})
			if tt.wantError != nil {
				require.ErrorIs(t, err, tt.wantError)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestSimulated_SubmitOrder_Cancelled(t *testing.T) {
	s := NewSimulated(time.Hour, 0, zap.NewNop())

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	err := s.SubmitOrder(ctx, domain.Order{ID: uuid.New()})
	require.ErrorIs(t, err, context.Canceled)
}

func TestSimulated_FailureRateIsApproximate(t *testing.T) {
	s := newSimulated(0, 0.1, rand.New(rand.NewPCG(42, 42)), zap.NewNop())

	failures := 0
	for range 2000 {
		if s.fails() {
			failures++
		}
	}

	assert.InDelta(t, 200, failures, 60)
}

func TestBreaker_OpensAfterConsecutiveFailures(t *testing.T) {
	calls := 0
	failing := true
	next := Func(func(context.Context, domain.Order) error {
		calls++
		if failing {
			return ErrGatewayUnavailable
		}
		return nil
	})

	b := NewBreaker(next, BreakerSettings{Name: "orders", MaxFailures: 2, OpenTimeout: 50 * time.Millisecond}, zap.NewNop())
	order := domain.Order{ID: uuid.New()}

	for range 2 {
		require.ErrorIs(t, b.SubmitOrder(t.Context(), order), ErrGatewayUnavailable)
	}

	err := b.SubmitOrder(t.Context(), order)
	require.ErrorIs(t, err, ErrBreakerOpen)
	assert.Equal(t, 2, calls, "open breaker must not reach the gateway")

	failing = false
	require.Eventually(t, func() bool {
		return b.SubmitOrder(t.Context(), order) == nil
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, 3, calls)
}

func TestBreaker_IgnoresCancellation(t *testing.T) {
	next := Func(func(ctx context.Context, _ domain.Order) error {
		return ctx.Err()
	})

	b := NewBreaker(next, BreakerSettings{Name: "orders", MaxFailures: 1, OpenTimeout: time.Minute}, zap.NewNop())

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	for range 3 {
		err := b.SubmitOrder(ctx, domain.Order{})
		require.ErrorIs(t, err, context.Canceled)
		assert.False(t, errors.Is(err, ErrBreakerOpen))
	}
}

func TestWithTimeout(t *testing.T) {
	slow := NewSimulated(time.Hour, 0, zap.NewNop())

	err := WithTimeout(slow, 10*time.Millisecond).SubmitOrder(t.Context(), domain.Order{ID: uuid.New()})
	require.ErrorIs(t, err, context.DeadlineExceeded)
}
