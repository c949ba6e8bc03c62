package app_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nikolayk812/foodie/internal/app"
	"github.com/nikolayk812/foodie/internal/catalog"
	"github.com/nikolayk812/foodie/internal/checkout"
	"github.com/nikolayk812/foodie/internal/domain"
	"github.com/nikolayk812/foodie/internal/gateway"
	"github.com/nikolayk812/foodie/internal/port"
	"github.com/nikolayk812/foodie/internal/pricing"
	"github.com/nikolayk812/foodie/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/text/currency"
)

func newTestApp(submitter port.OrderSubmitter) *app.App {
	return newTestAppWithProvider(submitter, catalog.NewStaticProvider(currency.USD, 0))
}

func newTestAppWithProvider(submitter port.OrderSubmitter, provider port.CatalogProvider) *app.App {
	return app.New("test-session", app.Deps{
		Loader:    catalog.NewLoader(provider, zap.NewNop()),
		Submitter: submitter,
		Store:     repository.NewPersistentStore(repository.NewMemoryStore(), "test-session"),
		Pricing:   pricing.Default(),
		ToastTTL:  time.Minute,
		Logger:    zap.NewNop(),
	})
}

func accepting() port.OrderSubmitter {
	return gateway.Func(func(context.Context, domain.Order) error { return nil })
}

type toggleProvider struct {
	fail  atomic.Bool
	inner port.CatalogProvider
}

func (p *toggleProvider) FetchMenu(ctx context.Context) ([]domain.MenuItem, error) {
	if p.fail.Load() {
		return nil, errors.New("menu service timeout")
	}
	return p.inner.FetchMenu(ctx)
}

func messages(a *app.App) []string {
	var out []string
	for _, t := range a.Notifications() {
		out = append(out, t.Message)
	}
	return out
}

func TestApp_Start(t *testing.T) {
	a := newTestApp(accepting())
	require.NoError(t, a.Start(t.Context()))

	assert.True(t, a.OrderingEnabled())
	assert.Len(t, a.Menu(domain.CategoryAll, ""), 22)
	assert.Equal(t, []string{"Menu loaded successfully!"}, messages(a))
}

func TestApp_Start_CatalogUnavailable(t *testing.T) {
	provider := &toggleProvider{inner: catalog.NewStaticProvider(currency.USD, 0)}
	provider.fail.Store(true)

	a := newTestAppWithProvider(accepting(), provider)

	err := a.Start(t.Context())
	require.ErrorIs(t, err, domain.ErrCatalogUnavailable)

	assert.False(t, a.OrderingEnabled())
	assert.Empty(t, a.Menu(domain.CategoryAll, ""))

	_, err = a.Dispatch(t.Context(), app.AddItem{ItemID: 1})
	require.ErrorIs(t, err, app.ErrOrderingDisabled)
	assert.True(t, a.Cart().Snapshot.IsEmpty())

	assert.Equal(t, []string{"Failed to load menu items", "Ordering is unavailable until the menu loads"}, messages(a))
}

func TestApp_ReloadMenu_FailureDisablesOrderingKeepsCart(t *testing.T) {
	provider := &toggleProvider{inner: catalog.NewStaticProvider(currency.USD, 0)}
	a := newTestAppWithProvider(accepting(), provider)
	require.NoError(t, a.Start(t.Context()))

	_, err := a.Dispatch(t.Context(), app.AddItem{ItemID: 3})
	require.NoError(t, err)

	provider.fail.Store(true)
	_, err = a.Dispatch(t.Context(), app.ReloadMenu{})
	require.ErrorIs(t, err, domain.ErrCatalogUnavailable)

	assert.False(t, a.OrderingEnabled())
	assert.Empty(t, a.Menu(domain.CategoryAll, ""))

	view := a.Cart()
	require.Len(t, view.Snapshot.Lines, 1)
	assert.Equal(t, int64(3), view.Snapshot.Lines[0].Item.ID)
	assert.True(t, view.Pricing.Subtotal.IsPositive())

	_, err = a.Dispatch(t.Context(), app.AddItem{ItemID: 3})
	require.ErrorIs(t, err, app.ErrOrderingDisabled)

	provider.fail.Store(false)
	_, err = a.Dispatch(t.Context(), app.ReloadMenu{})
	require.NoError(t, err)

	assert.True(t, a.OrderingEnabled())
	assert.Len(t, a.Menu(domain.CategoryAll, ""), 22)
	assert.Equal(t, 1, a.Cart().Snapshot.ItemCount())
}

func TestApp_Dispatch_Cart(t *testing.T) {
	a := newTestApp(accepting())
	require.NoError(t, a.Start(t.Context()))
	a.Notifications()

	res, err := a.Dispatch(t.Context(), app.AddItem{ItemID: 1})
	require.NoError(t, err)
	assert.Equal(t, "Crispy Calamari", res.Item.Name)
	assert.Equal(t, 1, res.Quantity)

	res, err = a.Dispatch(t.Context(), app.ChangeQuantity{ItemID: 1, Delta: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Quantity)

	_, err = a.Dispatch(t.Context(), app.AddItem{ItemID: 999})
	require.ErrorIs(t, err, domain.ErrUnknownItem)

	_, err = a.Dispatch(t.Context(), app.ChangeQuantity{ItemID: 2, Delta: 1})
	require.ErrorIs(t, err, domain.ErrUnknownItem)

	res, err = a.Dispatch(t.Context(), app.RemoveItem{ItemID: 1})
	require.NoError(t, err)
	assert.True(t, res.Removed)

	res, err = a.Dispatch(t.Context(), app.RemoveItem{ItemID: 1})
	require.NoError(t, err)
	assert.False(t, res.Removed)

	assert.Equal(t, []string{
		"Crispy Calamari added to cart!",
		"This item is no longer available",
		"This item is no longer available",
		"Item removed from cart",
	}, messages(a))
}

func TestApp_Dispatch_ChangeQuantityWithoutLine(t *testing.T) {
	a := newTestApp(accepting())
	require.NoError(t, a.Start(t.Context()))
	a.Notifications()

	_, err := a.Dispatch(t.Context(), app.ChangeQuantity{ItemID: 999, Delta: 1})
	require.ErrorIs(t, err, domain.ErrUnknownItem)

	assert.Equal(t, []string{"This item is no longer available"}, messages(a))
	assert.True(t, a.Cart().Snapshot.IsEmpty())
}

func TestApp_Dispatch_Checkout(t *testing.T) {
	a := newTestApp(accepting())
	require.NoError(t, a.Start(t.Context()))

	_, err := a.Dispatch(t.Context(), app.OpenCheckout{})
	require.ErrorIs(t, err, checkout.ErrEmptyCart)

	_, err = a.Dispatch(t.Context(), app.AddItem{ItemID: 1})
	require.NoError(t, err)

	_, err = a.Dispatch(t.Context(), app.OpenCheckout{})
	require.NoError(t, err)

	res, err := a.Dispatch(t.Context(), app.SubmitCheckout{Form: checkout.Form{
		Name: "Jane Roe", Phone: "555-0100", Email: "jane@example.com", Address: "1 Harbour Road", Payment: domain.PaymentCash,
	}})
	require.NoError(t, err)

	assert.Regexp(t, `^#\d{1,4}$`, res.Confirmation.Order.Reference)
	assert.Equal(t, checkout.StateConfirmed, a.CheckoutState())

	last, found, err := a.LastOrder(t.Context())
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, res.Confirmation.Order.ID, last.ID)

	_, err = a.Dispatch(t.Context(), app.DismissConfirmation{})
	require.NoError(t, err)
	assert.Equal(t, checkout.StateIdle, a.CheckoutState())
}

func TestApp_Dispatch_LogoutRefusedWhileSubmitting(t *testing.T) {
	gate := make(chan struct{})
	a := newTestApp(gateway.Func(func(ctx context.Context, _ domain.Order) error {
		<-gate
		return nil
	}))
	require.NoError(t, a.Start(t.Context()))

	_, err := a.Dispatch(t.Context(), app.Login{Email: "customer@foodie.com", Password: "customer123"})
	require.NoError(t, err)
	_, err = a.Dispatch(t.Context(), app.AddItem{ItemID: 1})
	require.NoError(t, err)
	_, err = a.Dispatch(t.Context(), app.OpenCheckout{})
	require.NoError(t, err)

	res, err := a.Dispatch(t.Context(), app.SubmitCheckout{
		Form:  checkout.Form{Name: "John Doe", Phone: "1", Email: "a@b.co", Address: "x", Payment: domain.PaymentCard},
		Async: true,
	})
	require.NoError(t, err)
	require.NotNil(t, res.Pending)

	_, err = a.Dispatch(t.Context(), app.Logout{})
	require.ErrorIs(t, err, checkout.ErrSubmissionInProgress)
	assert.True(t, a.IsAuthenticated(t.Context()))

	close(gate)
	_, err = res.Pending.Wait(t.Context())
	require.NoError(t, err)

	_, err = a.Dispatch(t.Context(), app.Logout{})
	require.NoError(t, err)
	assert.False(t, a.IsAuthenticated(t.Context()))
	assert.Equal(t, checkout.StateIdle, a.CheckoutState())
}

func TestApp_Dispatch_Login(t *testing.T) {
	a := newTestApp(accepting())

	_, err := a.Dispatch(t.Context(), app.Login{Email: "customer@foodie.com", Password: "wrong-password"})
	require.Error(t, err)

	res, err := a.Dispatch(t.Context(), app.Login{Email: "customer@foodie.com", Password: "customer123"})
	require.NoError(t, err)
	assert.Equal(t, "John Doe", res.User.Name)

	user, ok := a.CurrentUser(t.Context())
	require.True(t, ok)
	assert.Equal(t, domain.RoleCustomer, user.Role)

	assert.Equal(t, []string{
		"Invalid email or password. Please try again.",
		"Login successful! Welcome John Doe!",
	}, messages(a))
}

type unknownCommand struct{ app.Command }

func TestApp_Dispatch_UnknownCommand(t *testing.T) {
	a := newTestApp(accepting())

	_, err := a.Dispatch(t.Context(), unknownCommand{})
	require.ErrorContains(t, err, "is not supported")
}
