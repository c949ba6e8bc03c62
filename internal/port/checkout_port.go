package port

import (
	"context"

	"github.com/nikolayk812/foodie/internal/domain"
)

type OrderSubmitter interface {
	SubmitOrder(ctx context.Context, order domain.Order) error
}

type SessionProvider interface {
	CurrentUser(ctx context.Context) (domain.User, bool)
}

// Notifier is fire-and-forget; implementations must not block the caller.
type Notifier interface {
	Notify(message string, severity domain.Severity)
}
