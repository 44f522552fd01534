package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"

	orderdom "storefront/internal/domain/order"
)

// OrderMirrorPG implements order.Mirror against PostgreSQL. It is a
// write-only reporting copy; Firestore remains the record of truth.
//
// Expected schema:
//
//	CREATE TABLE IF NOT EXISTS orders (
//	  id            TEXT PRIMARY KEY,
//	  order_number  TEXT NOT NULL,
//	  user_id       TEXT NOT NULL,
//	  status        TEXT NOT NULL,
//	  subtotal      NUMERIC NOT NULL,
//	  shipping      NUMERIC NOT NULL,
//	  tax           NUMERIC NOT NULL,
//	  grand_total   NUMERIC NOT NULL,
//	  customer      JSONB NOT NULL,
//	  shipping_addr JSONB NOT NULL,
//	  items         JSONB NOT NULL,
//	  created_at    TIMESTAMPTZ NOT NULL
//	);
type OrderMirrorPG struct {
	DB *sql.DB
}

func NewOrderMirrorPG(db *sql.DB) *OrderMirrorPG {
	return &OrderMirrorPG{DB: db}
}

func (r *OrderMirrorPG) MirrorOrder(ctx context.Context, o *orderdom.Order) error {
	if r == nil || r.DB == nil {
		return errors.New("order_mirror_pg: db is nil")
	}
	if o == nil {
		return errors.New("order_mirror_pg: order is nil")
	}

	customer, err := json.Marshal(o.Customer)
	if err != nil {
		return err
	}
	shippingAddr, err := json.Marshal(o.ShippingSnapshot)
	if err != nil {
		return err
	}
	items, err := json.Marshal(o.Items)
	if err != nil {
		return err
	}

	const q = `
INSERT INTO orders
  (id, order_number, user_id, status, subtotal, shipping, tax, grand_total,
   customer, shipping_addr, items, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
ON CONFLICT (id) DO NOTHING`

	_, err = r.DB.ExecContext(ctx, q,
		strings.TrimSpace(o.ID),
		o.OrderNumber,
		o.UserID,
		o.Status,
		o.Subtotal,
		o.Shipping,
		o.Tax,
		o.GrandTotal,
		customer,
		shippingAddr,
		items,
		o.CreatedAt,
	)
	return err
}
