// Package notify delivers user-facing messages.
package notify

import (
	"sync"
	"time"

	"github.com/nikolayk812/foodie/internal/domain"
	"github.com/nikolayk812/foodie/internal/port"
	"go.uber.org/zap"
)

const DefaultToastTTL = 3 * time.Second

type logNotifier struct {
	logger *zap.Logger
}

func NewLogNotifier(logger *zap.Logger) port.Notifier {
	return &logNotifier{logger: logger.Named("notify")}
}

func (n *logNotifier) Notify(message string, severity domain.Severity) {
	fields := []zap.Field{zap.String("message", message), zap.String("severity", string(severity))}

	if severity == domain.SeverityError {
		n.logger.Warn("notification", fields...)
		return
	}
	n.logger.Info("notification", fields...)
}

type Toast struct {
	Message   string          `json:"message"`
	Severity  domain.Severity `json:"severity"`
	ExpiresAt time.Time       `json:"expires_at"`
}

// Toasts keeps notifications until they expire so a polling client can pick them up.
type Toasts struct {
	ttl time.Duration
	now func() time.Time

	mu     sync.Mutex
	toasts []Toast
}

func NewToasts(ttl time.Duration) *Toasts {
	return newToasts(ttl, time.Now)
}

func newToasts(ttl time.Duration, now func() time.Time) *Toasts {
	if ttl <= 0 {
		ttl = DefaultToastTTL
	}
	return &Toasts{ttl: ttl, now: now}
}

func (t *Toasts) Notify(message string, severity domain.Severity) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.toasts = append(t.toasts, Toast{
		Message:   message,
		Severity:  severity,
		ExpiresAt: t.now().Add(t.ttl),
	})
}

// Active returns unexpired toasts, oldest first.
func (t *Toasts) Active() []Toast {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.pruneLocked()

	out := make([]Toast, len(t.toasts))
	copy(out, t.toasts)
	return out
}

// Drain returns unexpired toasts and forgets all of them.
func (t *Toasts) Drain() []Toast {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.pruneLocked()

	out := t.toasts
	t.toasts = nil
	return out
}

func (t *Toasts) pruneLocked() {
	now := t.now()

	kept := t.toasts[:0]
	for _, toast := range t.toasts {
		if now.Before(toast.ExpiresAt) {
			kept = append(kept, toast)
		}
	}
	t.toasts = kept
}

type multi []port.Notifier

// Multi fans a notification out to every notifier in order.
func Multi(notifiers ...port.Notifier) port.Notifier {
	return multi(notifiers)
}

func (m multi) Notify(message string, severity domain.Severity) {
	for _, n := range m {
		n.Notify(message, severity)
	}
}
