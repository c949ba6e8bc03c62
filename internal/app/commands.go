package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/nikolayk812/foodie/internal/auth"
	"github.com/nikolayk812/foodie/internal/checkout"
	"github.com/nikolayk812/foodie/internal/domain"
	"github.com/nikolayk812/foodie/internal/task"
	"go.uber.org/zap"
)

type Command interface {
	command()
}

type AddItem struct {
	ItemID int64
}

type RemoveItem struct {
	ItemID int64
}

type ChangeQuantity struct {
	ItemID int64
	Delta  int
}

type OpenCheckout struct{}

type CancelCheckout struct{}

// SubmitCheckout waits for the submission outcome unless Async is set.
type SubmitCheckout struct {
	Form  checkout.Form
	Async bool
}

type DismissConfirmation struct{}

type Login struct {
	Email    string
	Password string
}

type Logout struct{}

type ReloadMenu struct{}

func (AddItem) command()             {}
func (RemoveItem) command()          {}
func (ChangeQuantity) command()      {}
func (OpenCheckout) command()        {}
func (CancelCheckout) command()      {}
func (SubmitCheckout) command()      {}
func (DismissConfirmation) command() {}
func (Login) command()               {}
func (Logout) command()              {}
func (ReloadMenu) command()          {}

// Result carries the command-specific outcome; only the fields of the dispatched command are set.
type Result struct {
	Item         domain.MenuItem
	Quantity     int
	Removed      bool
	Form         checkout.Form
	Confirmation checkout.Confirmation
	Pending      *task.Task[checkout.Confirmation]
	User         domain.User
}

// Dispatch runs cmd against the session. Failures are reported to the notifier and returned.
func (a *App) Dispatch(ctx context.Context, cmd Command) (Result, error) {
	switch c := cmd.(type) {
	case AddItem:
		a.logger.Info("adding item", zap.Int64("item_id", c.ItemID))
		return a.addItem(c)

	case RemoveItem:
		a.logger.Info("removing item", zap.Int64("item_id", c.ItemID))
		removed := a.cart.RemoveItem(c.ItemID)
		if removed {
			a.notifier.Notify(msgItemRemoved, domain.SeverityInfo)
		}
		return Result{Removed: removed}, nil

	case ChangeQuantity:
		a.logger.Info("changing quantity", zap.Int64("item_id", c.ItemID), zap.Int("delta", c.Delta))
		return a.changeQuantity(c)

	case OpenCheckout:
		a.logger.Info("opening checkout")
		form, err := a.pipeline.Open(ctx)
		if errors.Is(err, checkout.ErrEmptyCart) {
			a.notifier.Notify(msgCartEmpty, domain.SeverityInfo)
		}
		return Result{Form: form}, err

	case CancelCheckout:
		a.logger.Info("cancelling checkout")
		return Result{}, a.pipeline.Cancel()

	case SubmitCheckout:
		a.logger.Info("submitting checkout", zap.Bool("async", c.Async))
		return a.submitCheckout(ctx, c)

	case DismissConfirmation:
		a.logger.Info("dismissing confirmation")
		return Result{}, a.pipeline.Dismiss()

	case Login:
		a.logger.Info("logging in")
		return a.login(ctx, c)

	case Logout:
		a.logger.Info("logging out")
		return Result{}, a.logout(ctx)

	case ReloadMenu:
		a.logger.Info("reloading menu")
		return Result{}, a.reloadMenu(ctx)

	default:
		return Result{}, fmt.Errorf("command[%T] is not supported", cmd)
	}
}

func (a *App) addItem(c AddItem) (Result, error) {
	if !a.OrderingEnabled() {
		a.notifier.Notify(msgOrderingOff, domain.SeverityError)
		return Result{}, ErrOrderingDisabled
	}

	item, err := a.cart.AddItem(c.ItemID)
	if err != nil {
		a.notifier.Notify(msgItemNotFound, domain.SeverityError)
		return Result{}, err
	}

	a.notifier.Notify(fmt.Sprintf(msgItemAddedTmpl, item.Name), domain.SeveritySuccess)
	return Result{Item: item, Quantity: a.cart.Snapshot().Quantity(item.ID)}, nil
}

func (a *App) changeQuantity(c ChangeQuantity) (Result, error) {
	quantity, err := a.cart.ChangeQuantity(c.ItemID, c.Delta)
	if err != nil {
		a.notifier.Notify(msgItemNotFound, domain.SeverityError)
		return Result{}, err
	}

	if quantity == 0 {
		a.notifier.Notify(msgItemRemoved, domain.SeverityInfo)
		return Result{Removed: true}, nil
	}

	return Result{Quantity: quantity}, nil
}

func (a *App) submitCheckout(ctx context.Context, c SubmitCheckout) (Result, error) {
	pending, err := a.pipeline.SubmitAsync(ctx, c.Form)
	if err != nil {
		switch {
		case errors.Is(err, checkout.ErrSubmissionInProgress):
			a.notifier.Notify(msgSubmitInFlight, domain.SeverityInfo)
		case errors.Is(err, checkout.ErrEmptyCart):
			a.notifier.Notify(msgCartEmpty, domain.SeverityInfo)
		}
		return Result{}, err
	}

	if c.Async {
		return Result{Pending: pending}, nil
	}

	confirmation, err := pending.Wait(ctx)
	if err != nil {
		return Result{}, err
	}

	return Result{Confirmation: confirmation}, nil
}

func (a *App) login(ctx context.Context, c Login) (Result, error) {
	user, err := a.auth.Login(ctx, c.Email, c.Password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		a.notifier.Notify(msgLoginFailed, domain.SeverityError)
	}
	if err != nil {
		return Result{}, err
	}

	a.notifier.Notify(fmt.Sprintf(msgLoginTmpl, user.Name), domain.SeveritySuccess)
	return Result{User: user}, nil
}

func (a *App) logout(ctx context.Context) error {
	if err := a.Reset(); err != nil {
		a.notifier.Notify(msgSubmitInFlight, domain.SeverityInfo)
		return err
	}

	if err := a.auth.Logout(ctx); err != nil {
		return fmt.Errorf("auth.Logout: %w", err)
	}

	a.notifier.Notify(msgLoggedOut, domain.SeverityInfo)
	return nil
}
