package handlers

import (
	"errors"
	"net/http"
	"strings"

	"storefront/internal/application/query"
	categorydom "storefront/internal/domain/category"
	productdom "storefront/internal/domain/product"
)

// CatalogHandler serves the public catalogue endpoints:
//
//	GET /store/categories
//	GET /store/products?featured=1 | ?category=<slug> | ?q=<term>
//	GET /store/products/{slug}
type CatalogHandler struct {
	q *query.CatalogQuery
}

func NewCatalogHandler(q *query.CatalogQuery) http.Handler {
	return &CatalogHandler{q: q}
}

func (h *CatalogHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	switch {
	case r.URL.Path == "/store/categories":
		h.listCategories(w, r)
	case r.URL.Path == "/store/products":
		h.listProducts(w, r)
	case strings.HasPrefix(r.URL.Path, "/store/products/"):
		h.getProduct(w, r, strings.TrimPrefix(r.URL.Path, "/store/products/"))
	default:
		notFound(w)
	}
}

func (h *CatalogHandler) listCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := h.q.ListCategories(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "categories unavailable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"categories": cats})
}

func (h *CatalogHandler) listProducts(w http.ResponseWriter, r *http.Request) {
	var (
		items []productdom.Product
		err   error
	)

	qs := r.URL.Query()
	switch {
	case qs.Get("q") != "":
		items, err = h.q.Search(r.Context(), qs.Get("q"))
	case qs.Get("category") != "":
		items, err = h.q.ListByCategorySlug(r.Context(), qs.Get("category"))
	case qs.Get("featured") != "":
		limit := parseIntDefault(qs.Get("limit"), query.DefaultFeaturedLimit)
		items, err = h.q.ListFeatured(r.Context(), limit)
	default:
		// No filter defaults to the featured strip.
		items, err = h.q.ListFeatured(r.Context(), query.DefaultFeaturedLimit)
	}

	if err != nil {
		if errors.Is(err, categorydom.ErrNotFound) {
			writeError(w, http.StatusNotFound, "category not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "products unavailable")
		return
	}
	if items == nil {
		items = []productdom.Product{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"products": items})
}

func (h *CatalogHandler) getProduct(w http.ResponseWriter, r *http.Request, slug string) {
	slug = strings.TrimSpace(slug)
	if slug == "" || strings.Contains(slug, "/") {
		writeError(w, http.StatusBadRequest, "invalid slug")
		return
	}

	p, err := h.q.GetProductBySlug(r.Context(), slug)
	if err != nil {
		if errors.Is(err, productdom.ErrNotFound) {
			writeError(w, http.StatusNotFound, "product not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "product unavailable")
		return
	}
	writeJSON(w, http.StatusOK, p)
}
