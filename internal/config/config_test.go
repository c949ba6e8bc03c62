package config

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name      string
		env       map[string]string
		check     func(t *testing.T, cfg Config)
		wantError string
	}{
		{
			name: "defaults: ok",
			check: func(t *testing.T, cfg Config) {
				assert.Equal(t, "USD", cfg.Pricing.Currency.String())
				assert.True(t, decimal.RequireFromString("2.99").Equal(cfg.Pricing.DeliveryFee))
				assert.True(t, decimal.RequireFromString("0.08").Equal(cfg.Pricing.TaxRate))
				assert.Equal(t, BackendMemory, cfg.Store.Backend)
				assert.Equal(t, 3*time.Second, cfg.ToastTTL)
				assert.Equal(t, 5, cfg.Submit.BreakerMaxFailures)
				assert.Equal(t, 30*time.Second, cfg.HTTP.RequestTimeout)
				assert.Equal(t, 30*time.Minute, cfg.HTTP.SessionIdleTTL)
				assert.Equal(t, 10000, cfg.HTTP.MaxSessions)
			},
		},
		{
			name: "overrides: ok",
			env: map[string]string{
				"CURRENCY":       "EUR",
				"TAX_RATE":       "0.2",
				"STORE_BACKEND":  BackendRedis,
				"SUBMIT_LATENCY": "10ms",
			},
			check: func(t *testing.T, cfg Config) {
				assert.Equal(t, "EUR", cfg.Pricing.Currency.String())
				assert.True(t, decimal.RequireFromString("0.2").Equal(cfg.Pricing.TaxRate))
				assert.Equal(t, BackendRedis, cfg.Store.Backend)
				assert.Equal(t, 10*time.Millisecond, cfg.Submit.Latency)
			},
		},
		{
			name:      "unknown currency: error",
			env:       map[string]string{"CURRENCY": "XYZW"},
			wantError: "CURRENCY is not valid",
		},
		{
			name:      "malformed delivery fee: error",
			env:       map[string]string{"DELIVERY_FEE": "abc"},
			wantError: "DELIVERY_FEE is not a valid decimal",
		},
		{
			name:      "negative tax rate: error",
			env:       map[string]string{"TAX_RATE": "-0.1"},
			wantError: "TAX_RATE must be >= 0",
		},
		{
			name:      "failure rate out of range: error",
			env:       map[string]string{"SUBMIT_FAILURE_RATE": "1.5"},
			wantError: "SUBMIT_FAILURE_RATE must be within [0, 1]",
		},
		{
			name:      "negative breaker failures: error",
			env:       map[string]string{"BREAKER_MAX_FAILURES": "-1"},
			wantError: "BREAKER_MAX_FAILURES must be > 0",
		},
		{
			name:      "zero breaker failures: error",
			env:       map[string]string{"BREAKER_MAX_FAILURES": "0"},
			wantError: "BREAKER_MAX_FAILURES must be > 0",
		},
		{
			name:      "zero session cap: error",
			env:       map[string]string{"MAX_SESSIONS": "0"},
			wantError: "MAX_SESSIONS must be > 0",
		},
		{
			name:      "unknown backend: error",
			env:       map[string]string{"STORE_BACKEND": "mongo"},
			wantError: "STORE_BACKEND[mongo] is not valid",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			cfg, err := Load()
			if tt.wantError != "" {
				require.ErrorContains(t, err, tt.wantError)
				return
			}
			require.NoError(t, err)
			tt.check(t, cfg)
		})
	}
}
