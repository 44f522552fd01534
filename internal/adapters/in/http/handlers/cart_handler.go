package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"storefront/internal/adapters/in/http/middleware"
	"storefront/internal/application/usecase"
	cartdom "storefront/internal/domain/cart"
)

// CartHandler serves the signed-in user's cart:
//
//	GET    /store/me/cart
//	DELETE /store/me/cart
//	POST   /store/me/cart/items         {productId,name,unitPrice,image}
//	PUT    /store/me/cart/items         {productId,qty}
//	DELETE /store/me/cart/items?productId=<id>
type CartHandler struct {
	sessions *usecase.SessionManager
	carts    *usecase.CartUsecase
}

func NewCartHandler(sessions *usecase.SessionManager, carts *usecase.CartUsecase) http.Handler {
	return &CartHandler{sessions: sessions, carts: carts}
}

func (h *CartHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	uid, ok := currentUID(w, r, h.sessions)
	if !ok {
		return
	}

	switch {
	case r.URL.Path == "/store/me/cart" && r.Method == http.MethodGet:
		h.get(w, r, uid)
	case r.URL.Path == "/store/me/cart" && r.Method == http.MethodDelete:
		h.clear(w, r, uid)
	case r.URL.Path == "/store/me/cart/items" && r.Method == http.MethodPost:
		h.addItem(w, r, uid)
	case r.URL.Path == "/store/me/cart/items" && r.Method == http.MethodPut:
		h.setQuantity(w, r, uid)
	case r.URL.Path == "/store/me/cart/items" && r.Method == http.MethodDelete:
		h.removeItem(w, r, uid)
	case strings.HasPrefix(r.URL.Path, "/store/me/cart"):
		methodNotAllowed(w)
	default:
		notFound(w)
	}
}

// currentUID resolves the signed-in user through the session engine. Shared
// by the cart and order handlers.
func currentUID(w http.ResponseWriter, r *http.Request, sessions *usecase.SessionManager) (string, bool) {
	sid, ok := middleware.CurrentSessionID(r)
	if !ok {
		writeError(w, http.StatusInternalServerError, "session middleware missing")
		return "", false
	}
	eng, err := sessions.Get(r.Context(), sid)
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "session unavailable")
		return "", false
	}
	st := eng.State()
	if !st.IsAuthenticated() {
		writeError(w, http.StatusUnauthorized, "not signed in")
		return "", false
	}
	return st.Identity.ID, true
}

func (h *CartHandler) get(w http.ResponseWriter, r *http.Request, uid string) {
	c, err := h.carts.Get(r.Context(), uid)
	if err != nil {
		writeCartErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cartView(c))
}

func (h *CartHandler) clear(w http.ResponseWriter, r *http.Request, uid string) {
	c, err := h.carts.Clear(r.Context(), uid)
	if err != nil {
		writeCartErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cartView(c))
}

func (h *CartHandler) addItem(w http.ResponseWriter, r *http.Request, uid string) {
	var in struct {
		ProductID int64   `json:"productId"`
		Name      string  `json:"name"`
		UnitPrice float64 `json:"unitPrice"`
		Image     string  `json:"image"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	c, err := h.carts.AddItem(r.Context(), uid, cartdom.Line{
		ProductID: in.ProductID,
		Name:      in.Name,
		UnitPrice: in.UnitPrice,
		Image:     in.Image,
	})
	if err != nil {
		writeCartErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cartView(c))
}

func (h *CartHandler) setQuantity(w http.ResponseWriter, r *http.Request, uid string) {
	var in struct {
		ProductID int64 `json:"productId"`
		Qty       int   `json:"qty"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	c, err := h.carts.SetQuantity(r.Context(), uid, in.ProductID, in.Qty)
	if err != nil {
		writeCartErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cartView(c))
}

func (h *CartHandler) removeItem(w http.ResponseWriter, r *http.Request, uid string) {
	pid, err := strconv.ParseInt(r.URL.Query().Get("productId"), 10, 64)
	if err != nil || pid <= 0 {
		writeError(w, http.StatusBadRequest, "invalid productId")
		return
	}

	c, err := h.carts.RemoveItem(r.Context(), uid, pid)
	if err != nil {
		writeCartErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cartView(c))
}

func writeCartErr(w http.ResponseWriter, err error) {
	if errors.Is(err, usecase.ErrCartInvalidArgument) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeError(w, http.StatusInternalServerError, "cart unavailable")
}

// ----------------------------
// Presentation
// ----------------------------

type totalsPayload struct {
	ItemCount  int     `json:"itemCount"`
	Subtotal   float64 `json:"subtotal"`
	Shipping   float64 `json:"shipping"`
	Tax        float64 `json:"tax"`
	GrandTotal float64 `json:"grandTotal"`
}

type cartPayload struct {
	Items     []cartdom.Line `json:"items"`
	Totals    totalsPayload  `json:"totals"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

// cartView renders a cart with its derived totals, money rounded to 2dp for
// presentation only.
func cartView(c *cartdom.Cart) cartPayload {
	t := c.Totals()
	items := c.Lines
	if items == nil {
		items = []cartdom.Line{}
	}
	return cartPayload{
		Items: items,
		Totals: totalsPayload{
			ItemCount:  t.ItemCount,
			Subtotal:   round2(t.Subtotal),
			Shipping:   round2(t.Shipping),
			Tax:        round2(t.Tax),
			GrandTotal: round2(t.GrandTotal),
		},
		UpdatedAt: c.UpdatedAt,
	}
}
