// Package checkout drives a cart through manual mobile money payment: form,
// payment instructions, order submission and the messaging handoff.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/example/festisolde/internal/domain/cart"
	"github.com/example/festisolde/internal/domain/order"
	"github.com/example/festisolde/internal/infrastructure/store"
	"github.com/example/festisolde/internal/logging"
	"github.com/example/festisolde/internal/model"
	"github.com/example/festisolde/internal/pricing"
	"github.com/shopspring/decimal"
)

var (
	ErrEmptyCart = errors.New("cart is empty")
	ErrZeroTotal = errors.New("cart total must be positive")

	// ErrSubmitFailed matches every *SubmitError.
	ErrSubmitFailed = errors.New("order submission failed, please retry")
)

var logger = logging.New("checkout")

// Stage names the write that failed during submission.
type Stage string

const (
	StageHeader Stage = "header"
	StageLines  Stage = "lines"
)

// SubmitError is a retry-able submission failure. OrderID is set when the
// header was written before the lines failed, leaving an orphaned header.
type SubmitError struct {
	Stage   Stage
	OrderID string
	Err     error
}

func (e *SubmitError) Error() string {
	if e.OrderID != "" {
		return fmt.Sprintf("submit order %s: %s write failed: %v", e.OrderID, e.Stage, e.Err)
	}
	return fmt.Sprintf("submit order: %s write failed: %v", e.Stage, e.Err)
}

func (e *SubmitError) Unwrap() error { return e.Err }

func (e *SubmitError) Is(target error) bool { return target == ErrSubmitFailed }

// Cart is the part of the persistent cart checkout needs.
type Cart interface {
	Snapshot() cart.Cart
	Clear(ctx context.Context) cart.Cart
}

// Publisher announces submitted orders.
type Publisher interface {
	Publish(ctx context.Context, key string, event any) error
}

// Merchant is the payment target shown to the customer.
type Merchant struct {
	WhatsApp      string
	PaymentNumber string
}

// Confirmation is what the customer sees after a successful submission.
type Confirmation struct {
	OrderID       string          `json:"order_id"`
	Reference     string          `json:"reference"`
	Total         decimal.Decimal `json:"total"`
	PaymentMethod PaymentMethod   `json:"payment_method"`
	HandoffURL    string          `json:"handoff_url"`
}

// View is the current checkout step and the values it displays.
type View struct {
	State         State         `json:"state"`
	Form          Form          `json:"form"`
	Lines         []cart.Line   `json:"lines,omitempty"`
	Total         string        `json:"total"`
	ItemCount     int           `json:"item_count"`
	PaymentTarget string        `json:"payment_target,omitempty"`
	Confirmation  *Confirmation `json:"confirmation,omitempty"`
	Error         string        `json:"error,omitempty"`
}

// Orchestrator is the checkout flow of one client session.
type Orchestrator struct {
	mu        sync.Mutex
	cart      Cart
	orders    store.OrderStore
	publisher Publisher
	merchant  Merchant
	now       func() time.Time

	state        State
	form         Form
	snapshot     cart.Cart
	total        decimal.Decimal
	confirmation *Confirmation
	lastErr      error
}

// NewOrchestrator starts a flow in the Form state. publisher may be nil.
func NewOrchestrator(c Cart, orders store.OrderStore, publisher Publisher, merchant Merchant) *Orchestrator {
	return &Orchestrator{
		cart:      c,
		orders:    orders,
		publisher: publisher,
		merchant:  merchant,
		now:       time.Now,
		state:     StateForm,
		form:      Form{PaymentMethod: DefaultPaymentMethod},
	}
}

func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// View describes the current step. Outside the Form state the frozen total
// is shown; in Form the live cart total is.
func (o *Orchestrator) View() View {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.viewLocked()
}

func (o *Orchestrator) viewLocked() View {
	v := View{
		State:        o.state,
		Form:         o.form,
		Confirmation: o.confirmation,
	}
	switch o.state {
	case StateForm:
		live := o.cart.Snapshot()
		v.Lines = live.Lines
		v.Total = pricing.FormatAmount(pricing.CartTotal(live))
		v.ItemCount = pricing.ItemCount(live)
	case StateConfirmed:
		v.Total = pricing.FormatAmount(o.total)
	default:
		v.Lines = o.snapshot.Lines
		v.Total = pricing.FormatAmount(o.total)
		v.ItemCount = pricing.ItemCount(o.snapshot)
		v.PaymentTarget = o.merchant.PaymentNumber
	}
	if o.state == StateFailed && o.lastErr != nil {
		v.Error = ErrSubmitFailed.Error()
	}
	return v
}

// SubmitForm validates the form, freezes the cart snapshot and its total and
// moves to PaymentInstructions.
func (o *Orchestrator) SubmitForm(f Form) (View, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if !o.state.CanTransitionTo(StatePaymentInstructions) {
		return o.viewLocked(), transitionError(o.state, StatePaymentInstructions)
	}

	f = f.Normalize()
	o.form = f

	snapshot := o.cart.Snapshot()
	if snapshot.IsEmpty() {
		return o.viewLocked(), ErrEmptyCart
	}
	if err := f.Validate(); err != nil {
		return o.viewLocked(), err
	}
	total := pricing.CartTotal(snapshot)
	if !total.IsPositive() {
		return o.viewLocked(), ErrZeroTotal
	}

	o.snapshot = snapshot
	o.total = total
	o.lastErr = nil
	o.state = StatePaymentInstructions
	return o.viewLocked(), nil
}

// EditInformation returns to the form, keeping what was typed. Nothing has
// been written at this point.
func (o *Orchestrator) EditInformation() (View, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if !o.state.CanTransitionTo(StateForm) || o.state == StateConfirmed {
		return o.viewLocked(), transitionError(o.state, StateForm)
	}
	o.snapshot = cart.Cart{}
	o.total = decimal.Zero
	o.lastErr = nil
	o.state = StateForm
	return o.viewLocked(), nil
}

// Reset starts a new checkout after a confirmed one.
func (o *Orchestrator) Reset() View {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.state == StateConfirmed {
		o.state = StateForm
		o.form = Form{PaymentMethod: DefaultPaymentMethod}
		o.snapshot = cart.Cart{}
		o.total = decimal.Zero
		o.confirmation = nil
	}
	return o.viewLocked()
}

// ConfirmPayment writes the order header and then its lines from the frozen
// snapshot. The cart is cleared only when both writes succeed. The writes
// are detached from ctx cancellation so a caller going away does not cut
// a submission in half.
func (o *Orchestrator) ConfirmPayment(ctx context.Context) (*Confirmation, error) {
	o.mu.Lock()
	if !o.state.CanTransitionTo(StateSubmitting) {
		err := transitionError(o.state, StateSubmitting)
		o.mu.Unlock()
		return nil, err
	}
	o.state = StateSubmitting
	form, snapshot, total := o.form, o.snapshot.Clone(), o.total
	o.mu.Unlock()

	ctx = context.WithoutCancel(ctx)

	header := order.NewHeader(order.Details{
		CustomerName:    form.CustomerName,
		CustomerPhone:   form.CustomerPhone,
		CustomerAddress: form.CustomerAddress,
		PaymentMethod:   string(form.PaymentMethod),
	}, total)

	created, err := o.orders.InsertOrder(ctx, header)
	if err != nil {
		return nil, o.fail(&SubmitError{Stage: StageHeader, Err: err})
	}

	lines, err := order.BuildLines(created.ID, snapshot)
	if err == nil {
		err = o.orders.InsertOrderLines(ctx, lines)
	}
	if err != nil {
		return nil, o.fail(&SubmitError{Stage: StageLines, OrderID: created.ID, Err: err})
	}

	o.cart.Clear(ctx)

	confirmation := &Confirmation{
		OrderID:       created.ID,
		Reference:     OrderReference(created.ID),
		Total:         total,
		PaymentMethod: form.PaymentMethod,
		HandoffURL:    HandoffURL(o.merchant.WhatsApp, created.ID, total, form.PaymentMethod),
	}

	o.mu.Lock()
	o.state = StateConfirmed
	o.confirmation = confirmation
	o.lastErr = nil
	o.mu.Unlock()

	logger.Info().
		Str("order_id", created.ID).
		Str("total", total.String()).
		Str("payment_method", string(form.PaymentMethod)).
		Int("lines", len(lines)).
		Msg("order submitted")

	o.publish(ctx, created, form, snapshot)
	return confirmation, nil
}

func (o *Orchestrator) fail(err *SubmitError) error {
	o.mu.Lock()
	o.state = StateFailed
	o.lastErr = err
	o.mu.Unlock()

	event := logger.Error().Err(err.Err).Str("stage", string(err.Stage))
	if err.OrderID != "" {
		event = event.Str("orphaned_order_id", err.OrderID)
	}
	event.Msg("order submission failed")
	return err
}

func (o *Orchestrator) publish(ctx context.Context, created *model.Order, form Form, snapshot cart.Cart) {
	if o.publisher == nil {
		return
	}
	event := order.Submitted{
		Type:            order.EventOrderSubmitted,
		OrderID:         created.ID,
		CustomerName:    form.CustomerName,
		CustomerPhone:   form.CustomerPhone,
		CustomerAddress: form.CustomerAddress,
		PaymentMethod:   string(form.PaymentMethod),
		Total:           created.TotalPrice,
		SubmittedAt:     o.now(),
	}
	for _, l := range snapshot.Lines {
		event.Lines = append(event.Lines, order.SubmittedLine{
			ProductID: l.ProductID,
			Title:     l.Title,
			Quantity:  l.Quantity,
			UnitPrice: pricing.EffectiveUnitPrice(l),
		})
	}
	if err := o.publisher.Publish(ctx, created.ID, event); err != nil {
		logger.Warn().Err(err).Str("order_id", created.ID).Msg("failed to publish order submitted event")
	}
}
