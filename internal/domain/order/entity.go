package order

import (
	"errors"
	"strings"
	"time"
)

// ========================================
// Snapshot structs (stored in Order)
// ========================================

// CustomerSnapshot is the contact info captured at checkout.
type CustomerSnapshot struct {
	Name  string `json:"name" firestore:"name"`
	Email string `json:"email" firestore:"email"`
	Phone string `json:"phone" firestore:"phone"`
}

// ShippingSnapshot is the delivery address captured at checkout.
type ShippingSnapshot struct {
	Address    string `json:"address" firestore:"address"`
	City       string `json:"city" firestore:"city"`
	Province   string `json:"province" firestore:"province"`
	PostalCode string `json:"postalCode" firestore:"postalCode"`
	Country    string `json:"country" firestore:"country"`
}

// ItemSnapshot is stored inside Order.Items. Prices are frozen at checkout so
// later catalogue edits cannot rewrite history.
type ItemSnapshot struct {
	ProductID int64   `json:"productId" firestore:"productId"`
	Name      string  `json:"name" firestore:"name"`
	Image     string  `json:"image" firestore:"image"`
	UnitPrice float64 `json:"unitPrice" firestore:"unitPrice"`
	Qty       int     `json:"qty" firestore:"qty"`
	LineTotal float64 `json:"lineTotal" firestore:"lineTotal"`
}

// ========================================
// Entity
// ========================================

// Status values. Payment is simulated, so orders start pending and move to
// confirmed without a gateway round trip.
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusShipped   = "shipped"
	StatusDelivered = "delivered"
	StatusCancelled = "cancelled"
)

type Order struct {
	ID          string `json:"id" firestore:"id"`
	OrderNumber string `json:"orderNumber" firestore:"orderNumber"`
	UserID      string `json:"userId" firestore:"userId"`
	Status      string `json:"status" firestore:"status"`

	Subtotal   float64 `json:"subtotal" firestore:"subtotal"`
	Shipping   float64 `json:"shipping" firestore:"shipping"`
	Tax        float64 `json:"tax" firestore:"tax"`
	GrandTotal float64 `json:"grandTotal" firestore:"grandTotal"`

	Customer         CustomerSnapshot `json:"customer" firestore:"customer"`
	ShippingSnapshot ShippingSnapshot `json:"shippingAddress" firestore:"shippingAddress"`

	PaymentMethod string `json:"paymentMethod" firestore:"paymentMethod"`
	PaymentStatus string `json:"paymentStatus" firestore:"paymentStatus"`

	Items     []ItemSnapshot `json:"items" firestore:"items"`
	CreatedAt time.Time      `json:"createdAt" firestore:"createdAt"`
}

// ========================================
// Errors
// ========================================

var (
	ErrNotFound         = errors.New("order: not found")
	ErrInvalidID        = errors.New("order: invalid id")
	ErrInvalidNumber    = errors.New("order: invalid orderNumber")
	ErrInvalidUserID    = errors.New("order: invalid userId")
	ErrInvalidItems     = errors.New("order: invalid items")
	ErrInvalidCreatedAt = errors.New("order: invalid createdAt")
)

// Validate checks the persisted invariants.
func (o *Order) Validate() error {
	if o == nil {
		return ErrInvalidID
	}
	if strings.TrimSpace(o.ID) == "" {
		return ErrInvalidID
	}
	if strings.TrimSpace(o.OrderNumber) == "" {
		return ErrInvalidNumber
	}
	if strings.TrimSpace(o.UserID) == "" {
		return ErrInvalidUserID
	}
	if len(o.Items) == 0 {
		return ErrInvalidItems
	}
	for _, it := range o.Items {
		if it.ProductID <= 0 || it.Qty <= 0 || it.UnitPrice < 0 {
			return ErrInvalidItems
		}
	}
	if o.CreatedAt.IsZero() {
		return ErrInvalidCreatedAt
	}
	return nil
}
