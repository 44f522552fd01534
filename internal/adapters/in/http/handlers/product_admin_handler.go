package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"storefront/internal/application/usecase"
	productdom "storefront/internal/domain/product"
)

const maxProductFormBytes = 10 << 20 // image included

// ProductAdminHandler serves the admin catalogue write path:
//
//	POST /store/products  (multipart form, optional "image" file part)
//
// Routed behind the bearer-token and admin middlewares.
type ProductAdminHandler struct {
	admin *usecase.CatalogAdminUsecase
}

func NewProductAdminHandler(admin *usecase.CatalogAdminUsecase) http.Handler {
	return &ProductAdminHandler{admin: admin}
}

func (h *ProductAdminHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost || r.URL.Path != "/store/products" {
		methodNotAllowed(w)
		return
	}

	if err := r.ParseMultipartForm(maxProductFormBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	price, err := strconv.ParseFloat(strings.TrimSpace(r.FormValue("price")), 64)
	if err != nil || price < 0 {
		writeError(w, http.StatusBadRequest, "invalid price")
		return
	}

	in := usecase.CreateProductInput{
		CategorySlug: r.FormValue("category"),
		Name:         r.FormValue("name"),
		Slug:         r.FormValue("slug"),
		Description:  r.FormValue("description"),
		Price:        price,
		Stock:        parseIntDefault(r.FormValue("stock"), 0),
		SKU:          r.FormValue("sku"),
		IsFeatured:   r.FormValue("featured") == "true",
	}

	if cp := strings.TrimSpace(r.FormValue("comparePrice")); cp != "" {
		v, err := strconv.ParseFloat(cp, 64)
		if err != nil || v < 0 {
			writeError(w, http.StatusBadRequest, "invalid comparePrice")
			return
		}
		in.ComparePrice = &v
	}

	if file, header, err := r.FormFile("image"); err == nil {
		defer file.Close()
		in.Image = file
		in.ImageFileName = header.Filename
		in.ImageContentType = header.Header.Get("Content-Type")
	}

	p, err := h.admin.CreateProduct(r.Context(), in)
	if err != nil {
		writeProductErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func writeProductErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, usecase.ErrUnknownCategory):
		writeError(w, http.StatusBadRequest, "unknown category")
	case errors.Is(err, productdom.ErrInvalid):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "product write failed")
	}
}
