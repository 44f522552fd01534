package handlers

import (
	"errors"
	"net/http"
	"strings"

	"storefront/internal/application/usecase"
	orderdom "storefront/internal/domain/order"
)

// OrderHandler serves checkout and order history:
//
//	POST /store/checkout
//	GET  /store/me/orders
type OrderHandler struct {
	sessions *usecase.SessionManager
	checkout *usecase.CheckoutUsecase
}

func NewOrderHandler(sessions *usecase.SessionManager, checkout *usecase.CheckoutUsecase) http.Handler {
	return &OrderHandler{sessions: sessions, checkout: checkout}
}

func (h *OrderHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	uid, ok := currentUID(w, r, h.sessions)
	if !ok {
		return
	}

	switch {
	case r.Method == http.MethodPost && r.URL.Path == "/store/checkout":
		h.placeOrder(w, r, uid)
	case r.Method == http.MethodGet && r.URL.Path == "/store/me/orders":
		h.listOrders(w, r, uid)
	default:
		notFound(w)
	}
}

func (h *OrderHandler) placeOrder(w http.ResponseWriter, r *http.Request, uid string) {
	var in struct {
		Customer      orderdom.CustomerSnapshot `json:"customer"`
		Shipping      orderdom.ShippingSnapshot `json:"shippingAddress"`
		PaymentMethod string                    `json:"paymentMethod"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(in.Customer.Name) == "" || strings.TrimSpace(in.Customer.Email) == "" {
		writeError(w, http.StatusBadRequest, "customer name and email are required")
		return
	}
	if strings.TrimSpace(in.Shipping.Address) == "" {
		writeError(w, http.StatusBadRequest, "shipping address is required")
		return
	}

	o, err := h.checkout.Checkout(r.Context(), uid, usecase.CheckoutInput{
		Customer:      in.Customer,
		Shipping:      in.Shipping,
		PaymentMethod: in.PaymentMethod,
	})
	if err != nil {
		writeOrderErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, o)
}

func (h *OrderHandler) listOrders(w http.ResponseWriter, r *http.Request, uid string) {
	orders, err := h.checkout.ListOrders(r.Context(), uid)
	if err != nil {
		writeOrderErr(w, err)
		return
	}
	if orders == nil {
		orders = []orderdom.Order{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"orders": orders})
}

func writeOrderErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, usecase.ErrEmptyCart):
		writeError(w, http.StatusConflict, "cart is empty")
	case errors.Is(err, usecase.ErrCheckoutInvalidArgument):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "order unavailable")
	}
}
