// Package checkout drives the multi-step checkout flow over a gateway.
//
// The orchestrator is the client-side view of progress: which step is
// unlocked, which options the server returned, what the user has selected,
// and any error attached to a step. The server stays the authority on the
// cart itself; the orchestrator never computes totals.
package checkout

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"storefront-client/internal/gateway"
	"storefront-client/internal/model"
	"storefront-client/internal/session"
)

// State is the orchestrator's position in the step sequence.
type State string

const (
	StateCollectingAddress State = "collecting_address"
	StateAddressSaved      State = "address_saved"
	StateShippingSelected  State = "shipping_selected"
	StatePaymentSelected   State = "payment_selected"
	StateOrderPlaced       State = "order_placed"
)

// Step identifies an operation for in-flight guards and step-scoped errors.
type Step string

const (
	StepAddress  Step = "address"
	StepShipping Step = "shipping"
	StepPayment  Step = "payment"
	StepOrder    Step = "order"
	StepCoupon   Step = "coupon"
	StepSummary  Step = "summary"
)

// Guard errors returned before any network call is made.
var (
	// ErrStepInFlight rejects a re-trigger while the step's own previous
	// invocation is still pending.
	ErrStepInFlight = errors.New("step already in flight")

	// ErrStepLocked rejects a step whose upstream step has not completed
	// in the current run.
	ErrStepLocked = errors.New("previous checkout step not completed")
)

// PaymentSelection models the optimistic payment choice: Method is applied
// to the UI the moment the user clicks, Confirmed flips only when the
// server call for that same selection succeeds.
type PaymentSelection struct {
	Method    string
	Confirmed bool
}

// Orchestrator holds one checkout run. The gateway is resolved once at
// construction, which pins the run to a single authentication mode.
//
// Methods are safe for concurrent use; the lock is released around network
// calls so a read-only summary fetch can overlap an in-flight step.
type Orchestrator struct {
	gw     gateway.Gateway
	logger *slog.Logger

	mu sync.Mutex

	state State

	billing               model.Address
	shipping              model.Address
	useBillingForShipping bool
	billingAddressID      int64
	shippingAddressID     int64

	shippingOptions []model.ShippingOption
	shippingMethod  string
	paymentOptions  []model.PaymentOption
	payment         PaymentSelection

	// addressGen counts successful address submissions; paymentGen counts
	// payment selections and upstream invalidations. A shipping or payment
	// call completing with a stale generation belongs to a discarded run and
	// its result is dropped.
	addressGen uint64
	paymentGen uint64

	inFlight map[Step]bool
	stepErrs map[Step]error

	summary      *model.CartSession
	summaryStale bool
	summaryGen   uint64

	order *model.OrderConfirmation
}

// New starts a checkout run, resolving the gateway for the session's
// current mode.
func New(resolver *session.Resolver, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		gw:           resolver.Resolve(),
		logger:       logger,
		state:        StateCollectingAddress,
		inFlight:     make(map[Step]bool),
		stepErrs:     make(map[Step]error),
		summaryStale: true,
	}
}

// === Address collection ===

// SetBillingAddress records the billing form state. With useForShipping set,
// independent shipping entry is suppressed and billing is mirrored into the
// shipping record on every billing change (one-way, billing to shipping).
func (o *Orchestrator) SetBillingAddress(addr model.Address, useForShipping bool) {
	o.mu.Lock()
	defer o.mu.Unlock()

	addr.UseForShipping = useForShipping
	o.billing = addr
	o.useBillingForShipping = useForShipping
	o.billingAddressID = 0

	if useForShipping {
		mirrored := addr
		mirrored.UseForShipping = false
		o.shipping = mirrored
	}
}

// SetShippingAddress records the shipping form state. Ignored while billing
// is mirrored into shipping.
func (o *Orchestrator) SetShippingAddress(addr model.Address) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.useBillingForShipping {
		return
	}
	o.shipping = addr
	o.shippingAddressID = 0
}

// UseSavedAddresses selects persisted account addresses by ID instead of
// form entry. A zero shippingID falls back to the billing selection.
func (o *Orchestrator) UseSavedAddresses(billingID, shippingID int64) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.billingAddressID = billingID
	o.shippingAddressID = shippingID
	if shippingID == 0 {
		o.shippingAddressID = billingID
	}
}

// SubmitAddress runs the address step. Permitted from any state: re-entering
// the address panel after progressing further is how the user edits the
// address, and doing so discards any previously selected shipping or payment
// method since they may be invalid for the new address.
func (o *Orchestrator) SubmitAddress(ctx context.Context) ([]model.ShippingOption, error) {
	if err := o.begin(StepAddress); err != nil {
		return nil, err
	}

	req := o.addressRequest()
	options, err := o.gw.SaveAddress(ctx, req)
	o.finish(StepAddress, err)
	if err != nil {
		return nil, err
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	o.state = StateAddressSaved
	o.shippingOptions = options

	// Downstream selections are stale for the new address, including any
	// shipping or payment call still in flight.
	o.shippingMethod = ""
	o.paymentOptions = nil
	o.payment = PaymentSelection{}
	o.addressGen++
	o.paymentGen++

	o.invalidateSummary()

	o.logger.InfoContext(ctx, "address saved",
		slog.Int("shipping_options", len(options)),
		slog.Bool("mirrored_shipping", o.useBillingForShipping),
	)
	return options, nil
}

func (o *Orchestrator) addressRequest() *gateway.SaveAddressRequest {
	o.mu.Lock()
	defer o.mu.Unlock()

	req := &gateway.SaveAddressRequest{
		Billing:           o.billing,
		BillingAddressID:  o.billingAddressID,
		ShippingAddressID: o.shippingAddressID,
	}
	if !o.useBillingForShipping && !o.shipping.IsZero() {
		shipping := o.shipping
		req.Shipping = &shipping
	}
	return req
}

// === Shipping step ===

// SubmitShippingMethod validates the rate selection against the options the
// address step returned, then runs the shipping step. Success unlocks the
// payment panel with the returned options. An address resubmission while the
// call is in flight supersedes it: the result belongs to the discarded run
// and is dropped.
func (o *Orchestrator) SubmitShippingMethod(ctx context.Context, method string) ([]model.PaymentOption, error) {
	o.mu.Lock()
	if o.shippingOptions == nil {
		o.mu.Unlock()
		return nil, ErrStepLocked
	}
	if model.FindRate(o.shippingOptions, method) == nil {
		o.mu.Unlock()
		return nil, model.NewValidationError(0, "selected shipping method is not available")
	}
	gen := o.addressGen
	o.mu.Unlock()

	if err := o.begin(StepShipping); err != nil {
		return nil, err
	}

	options, err := o.gw.SaveShippingMethod(ctx, method)

	o.mu.Lock()
	defer o.mu.Unlock()
	o.inFlight[StepShipping] = false

	if gen != o.addressGen {
		// Superseded by an address resubmission; success or failure, the
		// result must not resurrect the discarded selections.
		return nil, nil
	}

	o.stepErrs[StepShipping] = err
	if err != nil {
		return nil, err
	}

	o.state = StateShippingSelected
	o.shippingMethod = method
	o.paymentOptions = options
	o.payment = PaymentSelection{}
	o.paymentGen++
	o.invalidateSummary()

	o.logger.InfoContext(ctx, "shipping method saved",
		slog.String("method", method),
		slog.Int("payment_options", len(options)),
	)
	return options, nil
}

// === Payment step (optimistic) ===

// SelectPaymentMethod applies the selection optimistically, then confirms it
// with the server. A newer selection made while this one is in flight
// supersedes it: the superseded call's result is discarded and the last
// selection wins. A late failure of the current selection attaches the error
// and leaves the selection unconfirmed rather than reverting it.
func (o *Orchestrator) SelectPaymentMethod(ctx context.Context, method string) error {
	o.mu.Lock()
	if o.paymentOptions == nil {
		o.mu.Unlock()
		return ErrStepLocked
	}
	if model.FindPaymentOption(o.paymentOptions, method) == nil {
		o.mu.Unlock()
		return model.NewValidationError(0, "selected payment method is not available")
	}

	// Optimistic update: the radio control reflects the click immediately.
	o.payment = PaymentSelection{Method: method}
	o.paymentGen++
	gen := o.paymentGen
	o.mu.Unlock()

	err := o.gw.SavePaymentMethod(ctx, method)

	o.mu.Lock()
	defer o.mu.Unlock()

	if gen != o.paymentGen {
		// Superseded by a later selection; only the last one is trusted.
		return nil
	}

	if err != nil {
		o.stepErrs[StepPayment] = err
		return err
	}

	o.stepErrs[StepPayment] = nil
	o.payment.Confirmed = true
	o.state = StatePaymentSelected
	o.invalidateSummary()

	o.logger.InfoContext(ctx, "payment method saved", slog.String("method", method))
	return nil
}

// === Order placement ===

// PlaceOrder runs the minimum-order pre-flight and then the order step.
// The network call is detached from the caller's cancellation: a place-order
// in flight must not be silently abandoned on navigation, or a retry risks a
// duplicate order. Success terminates the cart session.
func (o *Orchestrator) PlaceOrder(ctx context.Context) (*model.OrderConfirmation, error) {
	o.mu.Lock()
	if o.state != StatePaymentSelected || !o.payment.Confirmed {
		o.mu.Unlock()
		return nil, ErrStepLocked
	}
	o.mu.Unlock()

	if err := o.begin(StepOrder); err != nil {
		return nil, err
	}

	ctx = context.WithoutCancel(ctx)

	if err := o.gw.CheckMinimumOrder(ctx); err != nil {
		o.finish(StepOrder, err)
		if errors.Is(err, model.ErrMinimumOrder) {
			o.logger.InfoContext(ctx, "order blocked by minimum order check")
		}
		return nil, err
	}

	confirmation, err := o.gw.PlaceOrder(ctx)
	o.finish(StepOrder, err)
	if err != nil {
		// Cart assumed intact; the user stays on checkout and may retry.
		return nil, err
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	o.state = StateOrderPlaced
	o.order = confirmation
	o.summary = nil
	o.invalidateSummary()

	o.logger.InfoContext(ctx, "order placed", slog.Int64("order_id", confirmation.ID))
	return confirmation, nil
}

// === Summary & coupon ===

// Summary returns the cached cart snapshot, fetching a fresh one whenever a
// mutation has invalidated it. Read-only: it runs concurrently with steps
// and its failure never blocks them. A fetch that a mutation overtook while
// it was in flight is returned to its caller but never cached, so the next
// read reflects state no earlier than the last completed mutation.
func (o *Orchestrator) Summary(ctx context.Context) (*model.CartSession, error) {
	o.mu.Lock()
	if o.summary != nil && !o.summaryStale {
		cached := o.summary
		o.mu.Unlock()
		return cached, nil
	}
	gen := o.summaryGen
	o.mu.Unlock()

	cart, err := o.gw.Summary(ctx)

	o.mu.Lock()
	defer o.mu.Unlock()

	o.stepErrs[StepSummary] = err
	if err != nil {
		return nil, err
	}
	if gen == o.summaryGen {
		o.summary = cart
		o.summaryStale = false
	}
	return cart, nil
}

// ApplyCoupon applies a discount code. The returned cart is authoritative
// and replaces the summary cache.
func (o *Orchestrator) ApplyCoupon(ctx context.Context, code string) (*model.CartSession, error) {
	if err := o.begin(StepCoupon); err != nil {
		return nil, err
	}
	gen := o.currentSummaryGen()

	cart, err := o.gw.ApplyCoupon(ctx, code)
	o.finish(StepCoupon, err)
	if err != nil {
		return nil, err
	}

	o.storeSummary(cart, gen)
	o.logger.InfoContext(ctx, "coupon applied", slog.String("code", code))
	return cart, nil
}

// RemoveCoupon removes the applied code, symmetric to ApplyCoupon.
func (o *Orchestrator) RemoveCoupon(ctx context.Context) (*model.CartSession, error) {
	if err := o.begin(StepCoupon); err != nil {
		return nil, err
	}
	gen := o.currentSummaryGen()

	cart, err := o.gw.RemoveCoupon(ctx)
	o.finish(StepCoupon, err)
	if err != nil {
		return nil, err
	}

	o.storeSummary(cart, gen)
	return cart, nil
}

func (o *Orchestrator) currentSummaryGen() uint64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.summaryGen
}

// storeSummary caches a cart returned by a coupon mutation, unless a step
// invalidated the cache while that mutation was in flight.
func (o *Orchestrator) storeSummary(cart *model.CartSession, gen uint64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if gen != o.summaryGen {
		return
	}
	o.summary = cart
	o.summaryStale = false
}

// invalidateSummary marks the cache stale after a mutation. The generation
// bump makes any snapshot fetched before this point uncacheable. Caller
// holds mu.
func (o *Orchestrator) invalidateSummary() {
	o.summaryStale = true
	o.summaryGen++
}

// === Accessors ===

// State returns the current position in the step sequence.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// ShippingOptions returns the options from the last successful address step,
// nil while the shipping panel is locked.
func (o *Orchestrator) ShippingOptions() []model.ShippingOption {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.shippingOptions
}

// PaymentOptions returns the options from the last successful shipping step,
// nil while the payment panel is locked.
func (o *Orchestrator) PaymentOptions() []model.PaymentOption {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.paymentOptions
}

// ShippingMethod returns the confirmed rate selection.
func (o *Orchestrator) ShippingMethod() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.shippingMethod
}

// Payment returns the optimistic payment selection state.
func (o *Orchestrator) Payment() PaymentSelection {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.payment
}

// ShippingAddress returns the effective shipping record, reflecting any
// billing mirroring.
func (o *Orchestrator) ShippingAddress() model.Address {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.shipping
}

// Order returns the confirmation once the run reached OrderPlaced.
func (o *Orchestrator) Order() *model.OrderConfirmation {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.order
}

// StepError returns the error attached to a step by its last invocation,
// nil after a success.
func (o *Orchestrator) StepError(step Step) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.stepErrs[step]
}

// === In-flight guards ===

// begin marks a step in flight, rejecting a duplicate trigger while the
// previous invocation is pending. The payment step does not use this guard:
// rapid re-selection there is resolved by generation instead.
func (o *Orchestrator) begin(step Step) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.inFlight[step] {
		return ErrStepInFlight
	}
	o.inFlight[step] = true
	return nil
}

// finish clears the in-flight mark and attaches the step result.
func (o *Orchestrator) finish(step Step, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.inFlight[step] = false
	o.stepErrs[step] = err
}
