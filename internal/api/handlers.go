package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/example/festisolde/internal/api/middleware"
	"github.com/example/festisolde/internal/auth"
	"github.com/example/festisolde/internal/checkout"
	"github.com/example/festisolde/internal/domain/cart"
	"github.com/example/festisolde/internal/domain/catalog"
	"github.com/example/festisolde/internal/domain/order"
	"github.com/example/festisolde/internal/domain/shop"
	"github.com/example/festisolde/internal/infrastructure/store"
	"github.com/example/festisolde/internal/logging"
	"github.com/example/festisolde/internal/pricing"
	"github.com/go-chi/chi/v5"
)

var logger = logging.New("api")

// Server holds the HTTP handlers of the storefront.
type Server struct {
	catalog *catalog.Manager
	shops   *shop.Service
	orders  *order.Service
	auth    *auth.Provider
	clients *Registry
	secure  bool
}

// Deps are the services the handlers call.
type Deps struct {
	Catalog *catalog.Manager
	Shops   *shop.Service
	Orders  *order.Service
	Auth    *auth.Provider
	Clients *Registry
	// SecureCookies marks cookies Secure even behind a TLS-terminating proxy.
	SecureCookies bool
}

func NewServer(d Deps) *Server {
	return &Server{
		catalog: d.Catalog,
		shops:   d.Shops,
		orders:  d.Orders,
		auth:    d.Auth,
		clients: d.Clients,
		secure:  d.SecureCookies,
	}
}

func (s *Server) client(r *http.Request) *ClientSession {
	return s.clients.Get(r.Context(), middleware.GetClientID(r.Context()))
}

// ==================== Catalog ====================

func (s *Server) ListProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	featured, _ := strconv.ParseBool(q.Get("featured"))

	products, err := s.catalog.ListProducts(r.Context(), catalog.Query{
		Category: q.Get("category"),
		Search:   q.Get("q"),
		Sort:     q.Get("sort"),
		Featured: featured,
	})
	if err != nil {
		logger.Error().Err(err).Msg("list products")
		respondError(w, "could not load products", http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, productListResponse(products))
}

func (s *Server) GetProduct(w http.ResponseWriter, r *http.Request) {
	p, err := s.catalog.GetProduct(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, store.ErrNotFound) {
		respondError(w, "product not found", http.StatusNotFound)
		return
	}
	if err != nil {
		logger.Error().Err(err).Msg("get product")
		respondError(w, "could not load product", http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, newProductResponse(p))
}

// ==================== Cart ====================

type cartResponse struct {
	Lines     []cart.Line `json:"lines"`
	Total     string      `json:"total"`
	ItemCount int         `json:"item_count"`
}

func newCartResponse(c cart.Cart) cartResponse {
	lines := c.Lines
	if lines == nil {
		lines = []cart.Line{}
	}
	return cartResponse{
		Lines:     lines,
		Total:     pricing.FormatAmount(pricing.CartTotal(c)),
		ItemCount: pricing.ItemCount(c),
	}
}

func (s *Server) GetCart(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, newCartResponse(s.client(r).Cart.Snapshot()))
}

type addItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

func (s *Server) AddCartItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	p, err := s.catalog.GetProduct(r.Context(), req.ProductID)
	if errors.Is(err, store.ErrNotFound) {
		respondError(w, "product not found", http.StatusNotFound)
		return
	}
	if err != nil {
		logger.Error().Err(err).Msg("load product for cart")
		respondError(w, "could not load product", http.StatusInternalServerError)
		return
	}

	c, err := s.client(r).Cart.AddItem(r.Context(), p, req.Quantity)
	if err != nil {
		respondError(w, err.Error(), http.StatusBadRequest)
		return
	}
	respondJSON(w, http.StatusOK, newCartResponse(c))
}

type updateItemRequest struct {
	Delta int `json:"delta"`
}

func (s *Server) UpdateCartItem(w http.ResponseWriter, r *http.Request) {
	var req updateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	c := s.client(r).Cart.UpdateQuantity(r.Context(), chi.URLParam(r, "id"), req.Delta)
	respondJSON(w, http.StatusOK, newCartResponse(c))
}

func (s *Server) RemoveCartItem(w http.ResponseWriter, r *http.Request) {
	c := s.client(r).Cart.RemoveItem(r.Context(), chi.URLParam(r, "id"))
	respondJSON(w, http.StatusOK, newCartResponse(c))
}

// ReloadCart picks up a cart written by another tab or device sharing the
// client id.
func (s *Server) ReloadCart(w http.ResponseWriter, r *http.Request) {
	c := s.client(r).Cart.Reload(r.Context())
	respondJSON(w, http.StatusOK, newCartResponse(c))
}

// ==================== Checkout ====================

func (s *Server) GetCheckout(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.client(r).Checkout.View())
}

func (s *Server) SubmitCheckoutForm(w http.ResponseWriter, r *http.Request) {
	var form checkout.Form
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		respondError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	view, err := s.client(r).Checkout.SubmitForm(form)
	if err != nil {
		respondCheckoutError(w, view, err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

func (s *Server) EditCheckout(w http.ResponseWriter, r *http.Request) {
	view, err := s.client(r).Checkout.EditInformation()
	if err != nil {
		respondCheckoutError(w, view, err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

func (s *Server) ResetCheckout(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.client(r).Checkout.Reset())
}

func (s *Server) ConfirmPayment(w http.ResponseWriter, r *http.Request) {
	flow := s.client(r).Checkout

	confirmation, err := flow.ConfirmPayment(r.Context())
	if err != nil {
		respondCheckoutError(w, flow.View(), err)
		return
	}
	respondJSON(w, http.StatusCreated, confirmation)
}

type checkoutErrorResponse struct {
	Error     string        `json:"error"`
	Retryable bool          `json:"retryable,omitempty"`
	View      checkout.View `json:"checkout"`
}

func respondCheckoutError(w http.ResponseWriter, view checkout.View, err error) {
	resp := checkoutErrorResponse{Error: err.Error(), View: view}
	status := http.StatusBadRequest

	switch {
	case errors.Is(err, checkout.ErrSubmitFailed):
		resp.Error = checkout.ErrSubmitFailed.Error()
		resp.Retryable = true
		status = http.StatusBadGateway
	case errors.Is(err, checkout.ErrSubmissionInFlight),
		errors.Is(err, checkout.ErrAlreadyConfirmed),
		errors.Is(err, checkout.ErrInvalidTransition):
		status = http.StatusConflict
	case errors.Is(err, checkout.ErrEmptyCart), errors.Is(err, checkout.ErrZeroTotal):
		status = http.StatusUnprocessableEntity
	}
	respondJSON(w, status, resp)
}

// ==================== Helpers ====================

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Warn().Err(err).Msg("encode response")
	}
}

func respondError(w http.ResponseWriter, message string, status int) {
	respondJSON(w, status, map[string]string{"error": message})
}
