package api

import (
	"net/http"

	"github.com/example/festisolde/internal/api/middleware"
	"github.com/example/festisolde/internal/routing"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// RouterConfig wires the HTTP surface.
type RouterConfig struct {
	Server   *Server
	Sessions middleware.SessionResolver
	Logger   zerolog.Logger
	// WebDir, when set, is served at / for the storefront UI.
	WebDir string
}

func NewRouter(cfg RouterConfig) http.Handler {
	s := cfg.Server

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(cfg.Logger))
	r.Use(chimw.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.ClientID(s.secure))
		r.Use(middleware.Session(cfg.Sessions))

		r.Get("/products", s.ListProducts)
		r.Get("/products/{id}", s.GetProduct)

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", s.GetCart)
			r.Post("/items", s.AddCartItem)
			r.Patch("/items/{id}", s.UpdateCartItem)
			r.Delete("/items/{id}", s.RemoveCartItem)
			r.Post("/reload", s.ReloadCart)
		})

		r.Route("/checkout", func(r chi.Router) {
			r.Get("/", s.GetCheckout)
			r.Post("/form", s.SubmitCheckoutForm)
			r.Post("/edit", s.EditCheckout)
			r.Post("/confirm", s.ConfirmPayment)
			r.Post("/reset", s.ResetCheckout)
		})

		r.Route("/auth", func(r chi.Router) {
			r.Post("/signup", s.SignUp)
			r.Post("/login", s.Login)
			r.Post("/logout", s.Logout)
			r.Post("/refresh", s.Refresh)
			r.With(middleware.RequireAccess(routing.Authenticated)).Get("/me", s.Me)
			r.With(middleware.RequireAccess(routing.Authenticated)).Get("/landing", s.Landing)
		})

		r.Route("/vendor", func(r chi.Router) {
			// Onboarding: any signed-in user may open a shop.
			r.With(middleware.RequireAccess(routing.Authenticated)).Post("/shop", s.CreateShop)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAccess(routing.VendorOnly))
				r.Get("/shop", s.GetShop)
				r.Get("/products", s.ListShopProducts)
				r.Post("/products", s.CreateProduct)
				r.Put("/products/{id}", s.UpdateProduct)
				r.Delete("/products/{id}", s.DeleteShopProduct)
				r.Get("/orders", s.ListShopOrders)
			})
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.RequireAccess(routing.AdminOnly))
			r.Get("/products", s.ListAllProducts)
			r.Post("/products/{id}/featured", s.ToggleFeatured)
			r.Delete("/products/{id}", s.AdminDeleteProduct)
		})
	})

	if cfg.WebDir != "" {
		r.Handle("/*", http.FileServer(http.Dir(cfg.WebDir)))
	}

	return r
}
