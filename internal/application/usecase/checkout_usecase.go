package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	cartdom "storefront/internal/domain/cart"
	orderdom "storefront/internal/domain/order"
)

var (
	ErrCheckoutInvalidArgument = errors.New("checkout_usecase: invalid argument")
	ErrEmptyCart               = errors.New("checkout_usecase: cart is empty")
)

// CheckoutUsecase turns a cart into an order.
//
// Hard path: order document creation (Firestore). Everything after that is
// best-effort: cart consumption, the Postgres reporting mirror and the
// confirmation mail are logged on failure, never unwound. The order is the
// record of truth once created.
type CheckoutUsecase struct {
	carts  cartdom.Repository
	orders orderdom.Repository
	mirror orderdom.Mirror // optional
	mailer Mailer          // optional
	from   string
	clock  Clock
}

func NewCheckoutUsecase(carts cartdom.Repository, orders orderdom.Repository) *CheckoutUsecase {
	return &CheckoutUsecase{carts: carts, orders: orders, clock: systemClock{}}
}

// WithMirror attaches the optional reporting mirror.
func (uc *CheckoutUsecase) WithMirror(m orderdom.Mirror) *CheckoutUsecase {
	uc.mirror = m
	return uc
}

// WithMailer attaches the optional confirmation mailer.
func (uc *CheckoutUsecase) WithMailer(m Mailer, fromAddr string) *CheckoutUsecase {
	uc.mailer = m
	uc.from = strings.TrimSpace(fromAddr)
	return uc
}

// WithClock is useful for tests.
func (uc *CheckoutUsecase) WithClock(clock Clock) *CheckoutUsecase {
	if clock != nil {
		uc.clock = clock
	}
	return uc
}

// CheckoutInput is the customer-entered part of an order. Payment is
// simulated: the method is recorded, the status starts as "pending".
type CheckoutInput struct {
	Customer      orderdom.CustomerSnapshot
	Shipping      orderdom.ShippingSnapshot
	PaymentMethod string
}

// Checkout creates the order from the user's current cart and consumes the
// cart. Totals are frozen from the cart engine's derivation at this moment.
func (uc *CheckoutUsecase) Checkout(ctx context.Context, userID string, in CheckoutInput) (*orderdom.Order, error) {
	uid := strings.TrimSpace(userID)
	if uid == "" {
		return nil, ErrCheckoutInvalidArgument
	}

	c, err := uc.carts.GetByUserID(ctx, uid)
	if err != nil {
		return nil, err
	}
	if c == nil || len(c.Lines) == 0 {
		return nil, ErrEmptyCart
	}

	now := uc.clock.Now()
	totals := c.Totals()

	items := make([]orderdom.ItemSnapshot, 0, len(c.Lines))
	for _, l := range c.Lines {
		items = append(items, orderdom.ItemSnapshot{
			ProductID: l.ProductID,
			Name:      l.Name,
			Image:     l.Image,
			UnitPrice: l.UnitPrice,
			Qty:       l.Qty,
			LineTotal: l.UnitPrice * float64(l.Qty),
		})
	}

	o := &orderdom.Order{
		ID:          uuid.NewString(),
		OrderNumber: newOrderNumber(now),
		UserID:      uid,
		Status:      orderdom.StatusPending,

		Subtotal:   totals.Subtotal,
		Shipping:   totals.Shipping,
		Tax:        totals.Tax,
		GrandTotal: totals.GrandTotal,

		Customer:         in.Customer,
		ShippingSnapshot: in.Shipping,

		PaymentMethod: strings.TrimSpace(in.PaymentMethod),
		PaymentStatus: orderdom.StatusPending,

		Items:     items,
		CreatedAt: now,
	}
	if err := o.Validate(); err != nil {
		return nil, err
	}

	if err := uc.orders.Create(ctx, o); err != nil {
		return nil, err
	}

	// Consume the cart in the same request; the order already exists, so a
	// failure here only leaves a stale cart behind.
	c.Consume(now)
	if err := uc.carts.Upsert(ctx, c); err != nil {
		log.Printf("[checkout] cart consume failed order=%s user=%s: %v", o.OrderNumber, uid, err)
	}

	if uc.mirror != nil {
		if err := uc.mirror.MirrorOrder(ctx, o); err != nil {
			log.Printf("[checkout] order mirror failed order=%s: %v", o.OrderNumber, err)
		}
	}

	if uc.mailer != nil && strings.TrimSpace(in.Customer.Email) != "" {
		subject := fmt.Sprintf("Order %s confirmed", o.OrderNumber)
		if err := uc.mailer.Send(ctx, uc.from, in.Customer.Email, subject, confirmationBody(o)); err != nil {
			log.Printf("[checkout] confirmation mail failed order=%s: %v", o.OrderNumber, err)
		}
	}

	return o, nil
}

// ListOrders returns the user's orders, newest first.
func (uc *CheckoutUsecase) ListOrders(ctx context.Context, userID string) ([]orderdom.Order, error) {
	uid := strings.TrimSpace(userID)
	if uid == "" {
		return nil, ErrCheckoutInvalidArgument
	}
	return uc.orders.ListByUserID(ctx, uid)
}

// newOrderNumber builds "ORD-<utc timestamp>-<suffix>".
func newOrderNumber(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
	return fmt.Sprintf("ORD-%s-%s", now.UTC().Format("20060102150405"), suffix)
}

func confirmationBody(o *orderdom.Order) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Thank you for your order %s.\n\n", o.OrderNumber)
	for _, it := range o.Items {
		fmt.Fprintf(&b, "  %d x %s  R%.2f\n", it.Qty, it.Name, it.LineTotal)
	}
	fmt.Fprintf(&b, "\nSubtotal: R%.2f\nShipping: R%.2f\nTax: R%.2f\nTotal: R%.2f\n",
		o.Subtotal, o.Shipping, o.Tax, o.GrandTotal)
	return b.String()
}
