// Package app wires one storefront session: catalog, cart, pricing, checkout, auth and notifications.
package app

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/nikolayk812/foodie/internal/auth"
	"github.com/nikolayk812/foodie/internal/cart"
	"github.com/nikolayk812/foodie/internal/catalog"
	"github.com/nikolayk812/foodie/internal/checkout"
	"github.com/nikolayk812/foodie/internal/domain"
	"github.com/nikolayk812/foodie/internal/notify"
	"github.com/nikolayk812/foodie/internal/port"
	"github.com/nikolayk812/foodie/internal/pricing"
	"go.uber.org/zap"
)

const (
	msgMenuLoaded     = "Menu loaded successfully!"
	msgMenuFailed     = "Failed to load menu items"
	msgItemAddedTmpl  = "%s added to cart!"
	msgItemRemoved    = "Item removed from cart"
	msgItemNotFound   = "This item is no longer available"
	msgOrderingOff    = "Ordering is unavailable until the menu loads"
	msgCartEmpty      = "Your cart is empty"
	msgLoginTmpl      = "Login successful! Welcome %s!"
	msgLoginFailed    = "Invalid email or password. Please try again."
	msgLoggedOut      = "Logged out successfully!"
	msgSubmitInFlight = "Your order is still being placed"
)

var ErrOrderingDisabled = errors.New("ordering is disabled: menu unavailable")

type Deps struct {
	Loader    *catalog.Loader
	Submitter port.OrderSubmitter
	Store     port.PersistentStore
	Pricing   pricing.Calculator
	// Notifier receives every notification in addition to the session's toasts. Optional.
	Notifier port.Notifier
	ToastTTL time.Duration
	Logger   *zap.Logger
}

// App is one storefront session. All methods are safe for concurrent use.
type App struct {
	id     string
	logger *zap.Logger
	loader *catalog.Loader

	mu       sync.RWMutex
	catalog  *catalog.Catalog
	ordering bool

	cart     *cart.Store
	pricing  pricing.Calculator
	pipeline *checkout.Pipeline
	auth     *auth.Service
	store    port.PersistentStore
	toasts   *notify.Toasts
	notifier port.Notifier
}

func New(id string, deps Deps) *App {
	logger := deps.Logger.With(zap.String("session_id", id))
	toasts := notify.NewToasts(deps.ToastTTL)

	var notifier port.Notifier = toasts
	if deps.Notifier != nil {
		notifier = notify.Multi(toasts, deps.Notifier)
	}

	empty := catalog.Empty()
	c := cart.NewStore(empty, logger.Named("cart"))
	authService := auth.NewService(deps.Store, logger.Named("auth"))

	pipeline := checkout.NewPipeline(c, deps.Pricing, deps.Submitter, deps.Store, notifier, logger.Named("checkout"),
		checkout.WithSession(authService))

	return &App{
		id:       id,
		logger:   logger,
		loader:   deps.Loader,
		catalog:  empty,
		cart:     c,
		pricing:  deps.Pricing,
		pipeline: pipeline,
		auth:     authService,
		store:    deps.Store,
		toasts:   toasts,
		notifier: notifier,
	}
}

func (a *App) ID() string {
	return a.id
}

// Start loads the menu. A failed first load leaves the session usable with ordering disabled.
func (a *App) Start(ctx context.Context) error {
	return a.reloadMenu(ctx)
}

func (a *App) reloadMenu(ctx context.Context) error {
	c, err := a.loader.Load(ctx)
	if err != nil {
		// the menu reads as empty until a reload succeeds; cart lines keep their last known prices
		a.mu.Lock()
		a.ordering = false
		a.mu.Unlock()

		a.notifier.Notify(msgMenuFailed, domain.SeverityError)
		return err
	}

	a.cart.ReplaceCatalog(c)

	a.mu.Lock()
	a.catalog = c
	a.ordering = c.Len() > 0
	a.mu.Unlock()

	a.notifier.Notify(msgMenuLoaded, domain.SeveritySuccess)
	return nil
}

// OrderingEnabled is false while the catalog is unavailable.
func (a *App) OrderingEnabled() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.ordering
}

// Menu returns the items matching category (CategoryAll for every item) and a free-text query.
// It is empty while the catalog is unavailable.
func (a *App) Menu(category domain.Category, query string) []domain.MenuItem {
	a.mu.RLock()
	c, ordering := a.catalog, a.ordering
	a.mu.RUnlock()

	if !ordering {
		return nil
	}

	return c.Filter(category, query)
}

type CartView struct {
	Snapshot domain.CartSnapshot
	Pricing  domain.PriceBreakdown
}

func (a *App) Cart() CartView {
	snapshot := a.cart.Snapshot()
	return CartView{
		Snapshot: snapshot,
		Pricing:  a.pricing.Calculate(snapshot),
	}
}

// SubscribeCart registers o for every cart change.
func (a *App) SubscribeCart(o cart.Observer) func() {
	return a.cart.Subscribe(o)
}

func (a *App) CheckoutState() checkout.State {
	return a.pipeline.State()
}

func (a *App) Confirmation() (checkout.Confirmation, bool) {
	return a.pipeline.Confirmation()
}

func (a *App) CurrentUser(ctx context.Context) (domain.User, bool) {
	return a.auth.CurrentUser(ctx)
}

func (a *App) IsAuthenticated(ctx context.Context) bool {
	return a.auth.IsAuthenticated(ctx)
}

func (a *App) LastOrder(ctx context.Context) (domain.Order, bool, error) {
	return a.store.LastOrder(ctx)
}

// Notifications drains pending toasts.
func (a *App) Notifications() []notify.Toast {
	return a.toasts.Drain()
}

// Reset returns the session to a fresh state: empty cart and idle checkout.
// It is refused while a submission is in flight.
func (a *App) Reset() error {
	if err := a.pipeline.Reset(); err != nil {
		return err
	}

	a.cart.Clear()
	return nil
}
