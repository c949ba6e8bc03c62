package checkout

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nikolayk812/foodie/internal/cart"
	"github.com/nikolayk812/foodie/internal/domain"
	"github.com/nikolayk812/foodie/internal/port"
	"github.com/nikolayk812/foodie/internal/pricing"
	"github.com/nikolayk812/foodie/internal/task"
	"go.uber.org/zap"
)

const (
	msgOrderFailed     = "Failed to place order. Please try again."
	msgFormIncomplete  = "Please fill in all required fields."
	msgOrderPlacedTmpl = "Order %s placed successfully!"
)

type Confirmation struct {
	Order domain.Order
}

// Pipeline drives one session's checkout:
// IDLE -> FORM_OPEN -> SUBMITTING -> CONFIRMED -> IDLE, with SUBMITTING -> FORM_OPEN on failure.
type Pipeline struct {
	mu           sync.Mutex
	state        State
	confirmation *Confirmation

	cart      *cart.Store
	pricing   pricing.Calculator
	submitter port.OrderSubmitter
	orders    port.OrderStore
	notifier  port.Notifier
	session   port.SessionProvider
	logger    *zap.Logger

	reference func() string
	now       func() time.Time
}

type Option func(*Pipeline)

// WithSession enables name pre-fill from the logged-in user.
func WithSession(session port.SessionProvider) Option {
	return func(p *Pipeline) {
		p.session = session
	}
}

func WithReferenceGenerator(fn func() string) Option {
	return func(p *Pipeline) {
		p.reference = fn
	}
}

func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) {
		p.now = now
	}
}

func NewPipeline(
	c *cart.Store,
	calc pricing.Calculator,
	submitter port.OrderSubmitter,
	orders port.OrderStore,
	notifier port.Notifier,
	logger *zap.Logger,
	opts ...Option,
) *Pipeline {
	p := &Pipeline{
		state:     StateIdle,
		cart:      c,
		pricing:   calc,
		submitter: submitter,
		orders:    orders,
		notifier:  notifier,
		logger:    logger,
		reference: randomReference,
		now:       time.Now,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// randomReference returns a display token; collisions are expected and harmless.
func randomReference() string {
	return fmt.Sprintf("#%d", rand.IntN(10000))
}

func (p *Pipeline) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Confirmation returns the last confirmed order while in CONFIRMED.
func (p *Pipeline) Confirmation() (Confirmation, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.confirmation == nil {
		return Confirmation{}, false
	}
	return *p.confirmation, true
}

// Open enters FORM_OPEN and returns a form pre-filled with the session user's name.
// An empty cart keeps the pipeline in IDLE.
func (p *Pipeline) Open(ctx context.Context) (Form, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !CanTransitionTo(p.state, StateFormOpen) {
		return Form{}, fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, p.state, StateFormOpen)
	}

	if p.cart.Len() == 0 {
		return Form{}, ErrEmptyCart
	}

	p.state = StateFormOpen
	p.logger.Info("checkout opened", zap.Int("lines", p.cart.Len()))

	return Form{Name: p.prefillName(ctx)}, nil
}

func (p *Pipeline) prefillName(ctx context.Context) string {
	if p.session == nil {
		return ""
	}

	user, ok := p.session.CurrentUser(ctx)
	if !ok {
		return ""
	}

	return user.Name
}

// Cancel closes the form without touching the cart.
func (p *Pipeline) Cancel() error {
	return p.transition(StateFormOpen, StateIdle)
}

// Dismiss acknowledges the confirmation.
func (p *Pipeline) Dismiss() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state != StateConfirmed {
		return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, p.state, StateIdle)
	}

	p.state = StateIdle
	p.confirmation = nil

	return nil
}

// Reset returns to IDLE from any state except SUBMITTING.
func (p *Pipeline) Reset() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state == StateSubmitting {
		return ErrSubmissionInProgress
	}

	p.state = StateIdle
	p.confirmation = nil

	return nil
}

// Submit validates the form and waits for the submission outcome.
func (p *Pipeline) Submit(ctx context.Context, form Form) (Confirmation, error) {
	t, err := p.SubmitAsync(ctx, form)
	if err != nil {
		return Confirmation{}, err
	}

	return t.Wait(ctx)
}

// SubmitAsync validates the form and starts the submission. Validation failures and a
// submission already in flight are reported synchronously; the returned task carries the
// submission outcome. The submission is not cancelled when ctx is.
func (p *Pipeline) SubmitAsync(ctx context.Context, form Form) (*task.Task[Confirmation], error) {
	p.mu.Lock()

	switch p.state {
	case StateSubmitting:
		p.mu.Unlock()
		p.logger.Warn("duplicate checkout submission rejected")
		return nil, ErrSubmissionInProgress
	case StateFormOpen:
	default:
		state := p.state
		p.mu.Unlock()
		return nil, fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, state, StateSubmitting)
	}

	if err := form.Validate(); err != nil {
		p.mu.Unlock()
		p.notifier.Notify(msgFormIncomplete, domain.SeverityError)
		return nil, err
	}

	snapshot := p.cart.Snapshot()
	if snapshot.IsEmpty() {
		p.state = StateIdle
		p.mu.Unlock()
		return nil, ErrEmptyCart
	}

	order := p.buildOrder(form.trimmed(), snapshot)
	p.state = StateSubmitting
	p.mu.Unlock()

	p.logger.Info("submitting order",
		zap.Stringer("order_id", order.ID),
		zap.Int("lines", len(order.Lines)),
		zap.String("total", order.Pricing.Total.StringFixed(2)))

	return task.Run(context.WithoutCancel(ctx), func(ctx context.Context) (Confirmation, error) {
		return p.complete(ctx, order)
	}), nil
}

func (p *Pipeline) complete(ctx context.Context, order domain.Order) (Confirmation, error) {
	// a panic anywhere below must not leave the pipeline in SUBMITTING
	defer p.leaveSubmitting()

	if err := p.submit(ctx, order); err != nil {
		p.mu.Lock()
		p.state = StateFormOpen
		p.mu.Unlock()

		p.logger.Warn("order submission failed", zap.Stringer("order_id", order.ID), zap.Error(err))
		p.notifier.Notify(msgOrderFailed, domain.SeverityError)

		return Confirmation{}, fmt.Errorf("%w: %w", domain.ErrSubmissionFailed, err)
	}

	order.Reference = p.reference()

	// the submission already succeeded; a local persistence failure must not undo it
	if err := p.orders.SaveOrder(ctx, order); err != nil {
		p.logger.Error("order save failed", zap.Stringer("order_id", order.ID), zap.Error(err))
	}

	p.cart.Subtract(orderedLines(order))

	confirmation := Confirmation{Order: order}

	p.mu.Lock()
	p.state = StateConfirmed
	p.confirmation = &confirmation
	p.mu.Unlock()

	p.logger.Info("order confirmed", zap.Stringer("order_id", order.ID), zap.String("reference", order.Reference))
	p.notifier.Notify(fmt.Sprintf(msgOrderPlacedTmpl, order.Reference), domain.SeveritySuccess)

	return confirmation, nil
}

// submit turns a submitter panic into an ordinary failure.
func (p *Pipeline) submit(ctx context.Context, order domain.Order) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("submitter panicked: %v", r)
		}
	}()

	return p.submitter.SubmitOrder(ctx, order)
}

func (p *Pipeline) leaveSubmitting() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state == StateSubmitting {
		p.logger.Error("submission ended without an outcome")
		p.state = StateFormOpen
	}
}

func orderedLines(order domain.Order) []domain.CartLine {
	lines := make([]domain.CartLine, 0, len(order.Lines))
	for _, l := range order.Lines {
		lines = append(lines, domain.CartLine{ItemID: l.ItemID, Quantity: l.Quantity})
	}
	return lines
}

func (p *Pipeline) buildOrder(form Form, snapshot domain.CartSnapshot) domain.Order {
	lines := make([]domain.OrderLine, 0, len(snapshot.Lines))
	for _, l := range snapshot.Lines {
		lines = append(lines, domain.OrderLine{
			ItemID:    l.Item.ID,
			Name:      l.Item.Name,
			UnitPrice: l.Item.Price,
			Quantity:  l.Quantity,
		})
	}

	return domain.Order{
		ID:        uuid.New(),
		Customer:  form.customer(),
		Payment:   form.Payment,
		Lines:     lines,
		Pricing:   p.pricing.Calculate(snapshot),
		CreatedAt: p.now(),
	}
}

func (p *Pipeline) transition(from, to State) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state != from || !CanTransitionTo(from, to) {
		return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, p.state, to)
	}

	p.state = to
	return nil
}
