package store

import (
	"context"
	"errors"
	"log"
	"net/http"
	"path/filepath"

	"storefront/internal/adapters/in/http/handlers"
	"storefront/internal/adapters/in/http/middleware"
	outdb "storefront/internal/adapters/out/db"
	outfs "storefront/internal/adapters/out/firestore"
	outgcs "storefront/internal/adapters/out/gcs"
	"storefront/internal/adapters/out/identity"
	outmail "storefront/internal/adapters/out/mail"
	"storefront/internal/application/query"
	"storefront/internal/application/usecase"
	profiledom "storefront/internal/domain/profile"
	shared "storefront/internal/platform/di/shared"
)

// Container wires the storefront service: repositories, usecases, the
// per-session auth engines, and the HTTP handlers.
type Container struct {
	Sessions *usecase.SessionManager
	Profiles profiledom.Repository

	Catalog  *query.CatalogQuery
	CartUC   *usecase.CartUsecase
	Checkout *usecase.CheckoutUsecase
	AdminUC  *usecase.CatalogAdminUsecase

	FirebaseAuth *middleware.FirebaseAuthClient

	allowedOrigins string
}

func NewContainer(ctx context.Context, infra *shared.Infra) (*Container, error) {
	if infra == nil || infra.Firestore == nil {
		return nil, errors.New("store.di: infra is not initialized")
	}
	cfg := infra.Config

	// Repositories
	carts := outfs.NewCartRepositoryFS(infra.Firestore)
	products := outfs.NewProductRepositoryFS(infra.Firestore)
	categories := outfs.NewCategoryRepositoryFS(infra.Firestore)
	orders := outfs.NewOrderRepositoryFS(infra.Firestore)
	profiles := outfs.NewProfileRepositoryFS(infra.Firestore)

	// Usecases
	catalog := query.NewCatalogQuery(categories, products)
	cartUC := usecase.NewCartUsecase(carts)

	checkout := usecase.NewCheckoutUsecase(carts, orders)
	if infra.DB != nil {
		checkout = checkout.WithMirror(outdb.NewOrderMirrorPG(infra.DB))
		log.Printf("[store.di] order mirror enabled")
	}
	if infra.SendGridAPIKey != "" {
		mailer := outmail.NewSendGridClient(infra.SendGridAPIKey, "Storefront")
		checkout = checkout.WithMailer(mailer, cfg.MailFromAddress)
		log.Printf("[store.di] confirmation mail enabled from=%s", cfg.MailFromAddress)
	}

	adminUC := usecase.NewCatalogAdminUsecase(products, categories)
	if infra.GCS != nil && infra.ProductImageBucket != "" {
		adminUC = adminUC.WithImages(outgcs.NewProductImageStoreGCS(infra.GCS, infra.ProductImageBucket))
	}

	// Session engines, one per browser session. Each engine gets its own
	// identity client so provider events stay scoped to that session, and its
	// own blob file keyed by the session id.
	apiKey := infra.FirebaseAPIKey
	fbAuth := infra.FirebaseAuth
	sessionDir := cfg.SessionDir
	sessions := usecase.NewSessionManager(func(sessionID string) (*usecase.AuthUsecase, error) {
		idp := identity.NewFirebaseClient(apiKey, fbAuth)
		store := identity.NewSessionFileStore(filepath.Join(sessionDir, sessionID+".json"))
		return usecase.NewAuthUsecase(idp, profiles, store), nil
	})

	return &Container{
		Sessions:       sessions,
		Profiles:       profiles,
		Catalog:        catalog,
		CartUC:         cartUC,
		Checkout:       checkout,
		AdminUC:        adminUC,
		FirebaseAuth:   infra.FirebaseAuth,
		allowedOrigins: cfg.AllowedOrigins,
	}, nil
}

// Close tears down every live session engine.
func (c *Container) Close() error {
	if c == nil {
		return nil
	}
	c.Sessions.CloseAll()
	return nil
}

// Register mounts the storefront routes on mux.
func Register(mux *http.ServeMux, c *Container) {
	mux.Handle("/auth/", handlers.NewAuthHandler(c.Sessions))
	mux.Handle("/store/categories", handlers.NewCatalogHandler(c.Catalog))
	mux.Handle("/store/me/cart", handlers.NewCartHandler(c.Sessions, c.CartUC))
	mux.Handle("/store/me/cart/", handlers.NewCartHandler(c.Sessions, c.CartUC))
	mux.Handle("/store/checkout", handlers.NewOrderHandler(c.Sessions, c.Checkout))
	mux.Handle("/store/me/orders", handlers.NewOrderHandler(c.Sessions, c.Checkout))

	// /store/products: public reads, admin-gated writes.
	catalogReads := handlers.NewCatalogHandler(c.Catalog)
	adminWrites := adminChain(c, handlers.NewProductAdminHandler(c.AdminUC))
	productMux := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			adminWrites.ServeHTTP(w, r)
			return
		}
		catalogReads.ServeHTTP(w, r)
	})
	mux.Handle("/store/products", productMux)
	mux.Handle("/store/products/", productMux)
}

// Chain wraps the full route set with the ambient middleware.
func Chain(c *Container, next http.Handler) http.Handler {
	return middleware.CORS(c.allowedOrigins)(middleware.Recover(middleware.Session(next)))
}

func adminChain(c *Container, next http.Handler) http.Handler {
	userAuth := &middleware.UserAuthMiddleware{FirebaseAuth: c.FirebaseAuth}
	adminOnly := &middleware.AdminOnly{Profiles: c.Profiles}
	return userAuth.Handler(adminOnly.Handler(next))
}
