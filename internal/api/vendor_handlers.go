package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/example/festisolde/internal/api/middleware"
	"github.com/example/festisolde/internal/domain/catalog"
	"github.com/example/festisolde/internal/domain/order"
	"github.com/example/festisolde/internal/domain/shop"
	"github.com/example/festisolde/internal/infrastructure/store"
	"github.com/example/festisolde/internal/model"
	"github.com/example/festisolde/internal/routing"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

const maxUploadMemory = 32 << 20

// ==================== Shop onboarding ====================

type createShopRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type createShopResponse struct {
	Shop     *model.Shop   `json:"shop"`
	Redirect routing.Route `json:"redirect"`
	Warning  string        `json:"warning,omitempty"`
}

// CreateShop opens the caller's shop and promotes them to vendor.
func (s *Server) CreateShop(w http.ResponseWriter, r *http.Request) {
	var req createShopRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	created, err := s.shops.Create(r.Context(), middleware.GetUserID(r.Context()), req.Name, req.Description)
	switch {
	case errors.Is(err, shop.ErrPromoteVendor):
		respondJSON(w, http.StatusCreated, createShopResponse{
			Shop:     created,
			Redirect: routing.RouteAccount,
			Warning:  shop.ErrPromoteVendor.Error(),
		})
		return
	case errors.Is(err, shop.ErrMissingName), errors.Is(err, shop.ErrMissingOwner):
		respondError(w, err.Error(), http.StatusBadRequest)
		return
	case errors.Is(err, shop.ErrAlreadyOwner):
		respondError(w, err.Error(), http.StatusConflict)
		return
	case errors.Is(err, shop.ErrCreateShop):
		respondError(w, shop.ErrCreateShop.Error(), http.StatusConflict)
		return
	case err != nil:
		logger.Error().Err(err).Msg("create shop")
		respondError(w, "could not create shop", http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusCreated, createShopResponse{Shop: created, Redirect: routing.RouteVendorDashboard})
}

// GetShop returns the vendor's shop.
func (s *Server) GetShop(w http.ResponseWriter, r *http.Request) {
	owned, ok := s.ownedShop(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, owned)
}

// ownedShop loads the caller's shop, answering the request itself when
// there is none.
func (s *Server) ownedShop(w http.ResponseWriter, r *http.Request) (*model.Shop, bool) {
	owned, err := s.shops.GetByOwner(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		logger.Error().Err(err).Msg("lookup shop")
		respondError(w, "could not load shop", http.StatusInternalServerError)
		return nil, false
	}
	if owned == nil {
		respondJSON(w, http.StatusNotFound, map[string]string{
			"error":    "no shop",
			"redirect": string(routing.RouteCreateShop),
		})
		return nil, false
	}
	return owned, true
}

// ==================== Vendor products ====================

func (s *Server) ListShopProducts(w http.ResponseWriter, r *http.Request) {
	owned, ok := s.ownedShop(w, r)
	if !ok {
		return
	}
	products, err := s.catalog.ListProducts(r.Context(), catalog.Query{ShopID: owned.ID})
	if err != nil {
		logger.Error().Err(err).Str("shop_id", owned.ID).Msg("list shop products")
		respondError(w, "could not load products", http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, productListResponse(products))
}

func (s *Server) CreateProduct(w http.ResponseWriter, r *http.Request) {
	owned, ok := s.ownedShop(w, r)
	if !ok {
		return
	}
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		respondError(w, "invalid multipart form", http.StatusBadRequest)
		return
	}

	fields, err := parseFields(r)
	if err != nil {
		respondError(w, err.Error(), http.StatusBadRequest)
		return
	}
	uploads, closeAll, err := openUploads(r.MultipartForm, "images")
	defer closeAll()
	if err != nil {
		respondError(w, err.Error(), http.StatusBadRequest)
		return
	}

	id, err := s.catalog.CreateProduct(r.Context(), owned.ID, fields, uploads)
	if err != nil {
		respondCatalogError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]string{"id": id})
}

func (s *Server) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	owned, ok := s.ownedShop(w, r)
	if !ok {
		return
	}
	id := chi.URLParam(r, "id")
	if err := s.catalog.CheckOwner(r.Context(), id, owned.ID); err != nil {
		respondCatalogError(w, err)
		return
	}
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		respondError(w, "invalid multipart form", http.StatusBadRequest)
		return
	}

	fields, err := parseFields(r)
	if err != nil {
		respondError(w, err.Error(), http.StatusBadRequest)
		return
	}
	added, closeAll, err := openUploads(r.MultipartForm, "images")
	defer closeAll()
	if err != nil {
		respondError(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := s.catalog.UpdateProduct(r.Context(), id, fields, added, r.MultipartForm.Value["removed_images"]); err != nil {
		respondCatalogError(w, err)
		return
	}

	updated, err := s.catalog.GetProduct(r.Context(), id)
	if err != nil {
		respondCatalogError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, newProductResponse(updated))
}

func (s *Server) DeleteShopProduct(w http.ResponseWriter, r *http.Request) {
	owned, ok := s.ownedShop(w, r)
	if !ok {
		return
	}
	id := chi.URLParam(r, "id")
	if err := s.catalog.CheckOwner(r.Context(), id, owned.ID); err != nil {
		respondCatalogError(w, err)
		return
	}
	s.deleteProduct(w, r, id)
}

func (s *Server) deleteProduct(w http.ResponseWriter, r *http.Request, id string) bool {
	confirmed, _ := strconv.ParseBool(r.URL.Query().Get("confirm"))
	if err := s.catalog.DeleteProduct(r.Context(), id, confirmed); err != nil {
		respondCatalogError(w, err)
		return false
	}
	w.WriteHeader(http.StatusNoContent)
	return true
}

func (s *Server) ListShopOrders(w http.ResponseWriter, r *http.Request) {
	lines, err := s.orders.ListForOwner(r.Context(), middleware.GetUserID(r.Context()))
	if errors.Is(err, order.ErrNoShop) {
		respondJSON(w, http.StatusNotFound, map[string]string{
			"error":    "no shop",
			"redirect": string(routing.RouteCreateShop),
		})
		return
	}
	if err != nil {
		logger.Error().Err(err).Msg("list shop orders")
		respondError(w, "could not load orders", http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, shopOrdersResponse(lines))
}

// ==================== Admin console ====================

func (s *Server) ListAllProducts(w http.ResponseWriter, r *http.Request) {
	products, err := s.catalog.ListProducts(r.Context(), catalog.Query{})
	if err != nil {
		logger.Error().Err(err).Msg("list all products")
		respondError(w, "could not load products", http.StatusInternalServerError)
		return
	}
	view := catalog.NewListView(products)
	s.client(r).SetAdminView(view)
	respondJSON(w, http.StatusOK, view.Products())
}

type toggleFeaturedRequest struct {
	Current bool `json:"current"`
}

// ToggleFeatured flips the featured flag. The admin's list shows the new
// value even when the store rejects it.
func (s *Server) ToggleFeatured(w http.ResponseWriter, r *http.Request) {
	var req toggleFeaturedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	view := s.client(r).AdminView(func() *catalog.ListView { return catalog.NewListView(nil) })
	if err := s.catalog.ToggleFeatured(r.Context(), view, chi.URLParam(r, "id"), req.Current); err != nil {
		respondJSON(w, http.StatusBadGateway, map[string]interface{}{
			"error":    "could not update featured flag",
			"products": view.Products(),
		})
		return
	}
	respondJSON(w, http.StatusOK, view.Products())
}

func (s *Server) AdminDeleteProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !s.deleteProduct(w, r, id) {
		return
	}
	if view := s.client(r).AdminView(func() *catalog.ListView { return nil }); view != nil {
		view.Remove(id)
	}
}

// ==================== Helpers ====================

func parseFields(r *http.Request) (catalog.Fields, error) {
	fields := catalog.Fields{
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		Category:    r.FormValue("category"),
	}

	price, err := decimal.NewFromString(strings.TrimSpace(r.FormValue("price")))
	if err != nil {
		return fields, fmt.Errorf("invalid price: %w", catalog.ErrInvalidPrice)
	}
	fields.Price = price

	if raw := strings.TrimSpace(r.FormValue("promo_price")); raw != "" {
		promo, err := decimal.NewFromString(raw)
		if err != nil {
			return fields, fmt.Errorf("invalid promo price: %w", catalog.ErrInvalidPromoPrice)
		}
		fields.PromoPrice = &promo
	}

	if raw := strings.TrimSpace(r.FormValue("stock")); raw != "" {
		stock, err := strconv.Atoi(raw)
		if err != nil {
			return fields, fmt.Errorf("invalid stock: %w", catalog.ErrInvalidStock)
		}
		fields.Stock = stock
	}
	return fields, nil
}

// openUploads opens every file under key. The returned func closes them.
func openUploads(form *multipart.Form, key string) ([]catalog.Upload, func(), error) {
	var files []multipart.File
	closeAll := func() {
		for _, f := range files {
			_ = f.Close()
		}
	}
	if form == nil {
		return nil, closeAll, nil
	}

	uploads := make([]catalog.Upload, 0, len(form.File[key]))
	for _, header := range form.File[key] {
		f, err := header.Open()
		if err != nil {
			return nil, closeAll, fmt.Errorf("open %s: %w", header.Filename, err)
		}
		files = append(files, f)
		uploads = append(uploads, catalog.Upload{Filename: header.Filename, Content: f})
	}
	return uploads, closeAll, nil
}

var catalogValidationErrors = []error{
	catalog.ErrMissingTitle,
	catalog.ErrMissingCategory,
	catalog.ErrInvalidPrice,
	catalog.ErrInvalidPromoPrice,
	catalog.ErrInvalidStock,
	catalog.ErrNoImages,
	catalog.ErrMissingShop,
	catalog.ErrDeleteNotConfirmed,
}

func respondCatalogError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		respondError(w, "product not found", http.StatusNotFound)
		return
	case errors.Is(err, catalog.ErrNotOwner):
		respondError(w, err.Error(), http.StatusForbidden)
		return
	}
	for _, target := range catalogValidationErrors {
		if errors.Is(err, target) {
			respondError(w, err.Error(), http.StatusBadRequest)
			return
		}
	}
	logger.Error().Err(err).Msg("catalog write failed")
	respondError(w, "could not save product", http.StatusInternalServerError)
}
