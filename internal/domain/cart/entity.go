package cart

import (
	"errors"
	"strings"
	"time"
)

var ErrInvalidCart = errors.New("cart: invalid")

// DefaultCartTTL is the inactivity window after which the cart becomes eligible
// for auto deletion (Firestore TTL should be configured on expiresAt).
const DefaultCartTTL = 7 * 24 * time.Hour

// Pricing rules for the single regional currency (ZAR).
const (
	// FreeShippingThreshold is the subtotal at or above which shipping is free.
	FreeShippingThreshold = 500.0
	// FlatShippingFee applies below the free-shipping threshold.
	FlatShippingFee = 50.0
	// TaxRate is applied to the subtotal.
	TaxRate = 0.15
)

// Line represents one line item in a cart.
// ProductID is unique within a cart; Qty is always >= 1 for a stored line.
type Line struct {
	ProductID int64   `json:"productId" firestore:"productId"`
	Name      string  `json:"name" firestore:"name"`
	UnitPrice float64 `json:"unitPrice" firestore:"unitPrice"`
	Image     string  `json:"image" firestore:"image"`
	Qty       int     `json:"qty" firestore:"qty"`
}

// Totals are derived from the lines on every call, never stored, so they can
// not drift from the cart contents. Values are unrounded; presentation layers
// round to 2 decimal places.
type Totals struct {
	ItemCount  int     `json:"itemCount"`
	Subtotal   float64 `json:"subtotal"`
	Shipping   float64 `json:"shipping"`
	Tax        float64 `json:"tax"`
	GrandTotal float64 `json:"grandTotal"`
}

// Cart represents "a cart document".
//   - docId = userId (Firestore)
//   - Lines keep insertion order
//   - ExpiresAt: for Firestore TTL (auto deletion), refreshed on each mutation
//
// All mutating operations are total: an unknown productId is silently ignored
// rather than rejected, because idempotent UI actions (double-click remove,
// stale tabs) depend on that tolerance.
type Cart struct {
	// ID is Firestore docId (= userId).
	ID string `json:"id" firestore:"id"`

	Lines []Line `json:"lines" firestore:"lines"`

	CreatedAt time.Time `json:"createdAt" firestore:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" firestore:"updatedAt"`

	// ExpiresAt is used for Firestore TTL.
	ExpiresAt time.Time `json:"expiresAt" firestore:"expiresAt"`
}

// NewCart creates a new cart doc. id is the Firestore docId (userId).
// lines can be nil (treated as empty).
func NewCart(id string, lines []Line, now time.Time) (*Cart, error) {
	docID := strings.TrimSpace(id)
	if docID == "" {
		return nil, ErrInvalidCart
	}

	return &Cart{
		ID:        docID,
		Lines:     cloneLines(lines),
		CreatedAt: now,
		UpdatedAt: now,
		ExpiresAt: now.Add(DefaultCartTTL),
	}, nil
}

// AddItem increments the quantity for l.ProductID by one, or appends a new
// line with quantity 1. The Qty field of the argument is ignored.
func (c *Cart) AddItem(l Line, now time.Time) {
	if c == nil {
		return
	}
	if c.Lines == nil {
		c.Lines = []Line{}
	}

	idx := findLineIndex(c.Lines, l.ProductID)
	if idx >= 0 {
		c.Lines[idx].Qty++
	} else {
		l.Qty = 1
		c.Lines = append(c.Lines, l)
	}
	c.touch(now)
}

// SetQuantity sets the quantity for productID (absolute set, not delta).
// qty <= 0 removes the line. Unknown productID is a no-op.
func (c *Cart) SetQuantity(productID int64, qty int, now time.Time) {
	if c == nil {
		return
	}

	idx := findLineIndex(c.Lines, productID)
	if idx < 0 {
		return
	}

	if qty <= 0 {
		c.Lines = removeIndex(c.Lines, idx)
	} else {
		c.Lines[idx].Qty = qty
	}
	c.touch(now)
}

// RemoveItem removes the line for productID. Unknown productID is a no-op.
func (c *Cart) RemoveItem(productID int64, now time.Time) {
	if c == nil {
		return
	}
	idx := findLineIndex(c.Lines, productID)
	if idx < 0 {
		return
	}
	c.Lines = removeIndex(c.Lines, idx)
	c.touch(now)
}

// Clear empties all lines.
func (c *Cart) Clear(now time.Time) {
	if c == nil {
		return
	}
	c.Lines = []Line{}
	c.touch(now)
}

// Totals recomputes the derived values from the lines.
// shipping = 0 when subtotal >= FreeShippingThreshold, else FlatShippingFee;
// tax = subtotal * TaxRate; grandTotal = subtotal + shipping + tax.
func (c *Cart) Totals() Totals {
	var t Totals
	if c == nil {
		return t
	}
	for _, l := range c.Lines {
		t.ItemCount += l.Qty
		t.Subtotal += l.UnitPrice * float64(l.Qty)
	}
	if t.Subtotal < FreeShippingThreshold {
		t.Shipping = FlatShippingFee
	}
	t.Tax = t.Subtotal * TaxRate
	t.GrandTotal = t.Subtotal + t.Shipping + t.Tax
	return t
}

// Consume clears the lines for order creation and returns a snapshot.
//
// Expected flow:
//  1. build the order from cart.Lines
//  2. within the same request, call cart.Consume() to empty the cart
func (c *Cart) Consume(now time.Time) []Line {
	if c == nil {
		return nil
	}
	snap := cloneLines(c.Lines)
	c.Lines = []Line{}
	c.touch(now)
	return snap
}

func (c *Cart) touch(now time.Time) {
	c.UpdatedAt = now
	c.ExpiresAt = now.Add(DefaultCartTTL)
}

// ----------------------------
// Helpers
// ----------------------------

func findLineIndex(lines []Line, productID int64) int {
	for i := range lines {
		if lines[i].ProductID == productID {
			return i
		}
	}
	return -1
}

func removeIndex(lines []Line, idx int) []Line {
	if idx < 0 || idx >= len(lines) {
		return lines
	}
	// preserve order
	return append(lines[:idx], lines[idx+1:]...)
}

func cloneLines(src []Line) []Line {
	if len(src) == 0 {
		return []Line{}
	}
	cp := make([]Line, len(src))
	copy(cp, src)
	return cp
}
