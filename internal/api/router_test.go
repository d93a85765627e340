package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"math"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/example/festisolde/internal/api/middleware"
	"github.com/example/festisolde/internal/auth"
	"github.com/example/festisolde/internal/checkout"
	"github.com/example/festisolde/internal/domain/cart"
	"github.com/example/festisolde/internal/domain/catalog"
	"github.com/example/festisolde/internal/domain/order"
	"github.com/example/festisolde/internal/domain/shop"
	"github.com/example/festisolde/internal/infrastructure/store/mocks"
	"github.com/example/festisolde/internal/model"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	handler  http.Handler
	jwt      *auth.JWTService
	products *mocks.MockCatalogStore
	images   *mocks.MockImageStore
	orders   *mocks.MockOrderStore
	shops    *mocks.MockShopStore
	profiles *mocks.MockProfileStore
	storage  *mocks.MockStorage
	clients  *Registry
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		jwt:      auth.NewJWTService("test-secret-key-that-is-long-enough", 15*time.Minute, time.Hour),
		products: mocks.NewMockCatalogStore(),
		images:   mocks.NewMockImageStore(),
		orders:   mocks.NewMockOrderStore(),
		shops:    mocks.NewMockShopStore(),
		profiles: mocks.NewMockProfileStore(),
		storage:  mocks.NewMockStorage(),
	}

	provider := auth.NewProvider(env.profiles, env.jwt)
	shops := shop.NewService(env.shops, env.profiles)
	env.clients = NewRegistry(RegistryConfig{
		Storage:       env.storage,
		Orders:        env.orders,
		Merchant:      checkout.Merchant{WhatsApp: "22670000000", PaymentNumber: "70000000"},
		Shops:         shops,
		LookupTimeout: time.Second,
	})
	server := NewServer(Deps{
		Catalog: catalog.NewManager(env.products, env.images),
		Shops:   shops,
		Orders:  order.NewService(env.orders, env.shops),
		Auth:    provider,
		Clients: env.clients,
	})
	env.handler = NewRouter(RouterConfig{Server: server, Sessions: provider, Logger: zerolog.Nop()})

	env.products.Seed(
		&model.Product{ID: "p-pagne", ShopID: "shop-1", Title: "Pagne Faso Dan Fani", Category: "Mode", Price: decimal.NewFromInt(5000), Images: []string{"https://img.test/pagne.jpg"}, CreatedAt: time.Now().Add(-time.Hour)},
		&model.Product{ID: "p-sac", ShopID: "shop-1", Title: "Sac en cuir", Category: "Accessoires", Price: decimal.NewFromInt(12000), PromoPrice: decimalPtr(9000), CreatedAt: time.Now()},
		&model.Product{ID: "p-free", ShopID: "shop-2", Title: "Echantillon", Category: "Mode", Price: decimal.NewFromInt(1000), PromoPrice: decimalPtr(0), CreatedAt: time.Now().Add(-2 * time.Hour)},
	)
	return env
}

func decimalPtr(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

// seedUser stores a profile and returns an access token for it.
func (e *testEnv) seedUser(t *testing.T, id string, role model.Role) string {
	t.Helper()
	e.profiles.Seed(&model.Profile{ID: id, Email: id + "@example.bf", FullName: id, Role: role})
	token, _, err := e.jwt.GenerateAccessToken(id, id+"@example.bf", role)
	require.NoError(t, err)
	return token
}

type call struct {
	method      string
	path        string
	body        io.Reader
	contentType string
	client      string
	token       string
	cookies     []*http.Cookie
}

func (e *testEnv) do(t *testing.T, c call) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(c.method, c.path, c.body)
	if c.contentType != "" {
		req.Header.Set("Content-Type", c.contentType)
	} else if c.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.client != "" {
		req.Header.Set(middleware.ClientIDHeader, c.client)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	for _, cookie := range c.cookies {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func jsonBody(t *testing.T, v interface{}) io.Reader {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewReader(data)
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v), rec.Body.String())
	return v
}

const device = "device-awa-0001"

// ==================== Catalog ====================

func TestListProducts_FilterSortSearch(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, call{method: http.MethodGet, path: "/api/products?category=Mode&sort=price-desc"})
	require.Equal(t, http.StatusOK, rec.Code)
	products := decode[[]productResponse](t, rec)
	require.Len(t, products, 2)
	assert.Equal(t, "p-pagne", products[0].ID)
	assert.Equal(t, "p-free", products[1].ID)

	rec = env.do(t, call{method: http.MethodGet, path: "/api/products?category=all&q=CUIR"})
	products = decode[[]productResponse](t, rec)
	require.Len(t, products, 1)
	assert.Equal(t, "p-sac", products[0].ID)
	assert.True(t, products[0].OnPromotion)
	assert.Equal(t, "9 000", products[0].PriceLabel)
}

func TestGetProduct_DisplayFields(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, call{method: http.MethodGet, path: "/api/products/p-free"})
	require.Equal(t, http.StatusOK, rec.Code)
	p := decode[productResponse](t, rec)
	assert.False(t, p.OnPromotion, "zero promo is no promotion")
	assert.Equal(t, "1 000", p.PriceLabel)
	assert.Equal(t, "https://via.placeholder.com/150", p.DisplayImage)

	rec = env.do(t, call{method: http.MethodGet, path: "/api/products/missing"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// ==================== Cart ====================

func TestCart_AddMergeUpdateRemove(t *testing.T) {
	env := newTestEnv(t)

	env.do(t, call{method: http.MethodPost, path: "/api/cart/items", client: device, body: jsonBody(t, addItemRequest{ProductID: "p-pagne", Quantity: 2})})
	rec := env.do(t, call{method: http.MethodPost, path: "/api/cart/items", client: device, body: jsonBody(t, addItemRequest{ProductID: "p-pagne"})})
	require.Equal(t, http.StatusOK, rec.Code)
	c := decode[cartResponse](t, rec)
	require.Len(t, c.Lines, 1)
	assert.Equal(t, 3, c.Lines[0].Quantity)
	assert.Equal(t, "15 000", c.Total)

	rec = env.do(t, call{method: http.MethodPatch, path: "/api/cart/items/p-pagne", client: device, body: jsonBody(t, updateItemRequest{Delta: -10})})
	c = decode[cartResponse](t, rec)
	assert.Equal(t, 1, c.Lines[0].Quantity)

	rec = env.do(t, call{method: http.MethodDelete, path: "/api/cart/items/p-pagne", client: device})
	c = decode[cartResponse](t, rec)
	assert.Empty(t, c.Lines)
	assert.Equal(t, 0, c.ItemCount)
}

func TestCart_PersistsUnderClientKey(t *testing.T) {
	env := newTestEnv(t)

	env.do(t, call{method: http.MethodPost, path: "/api/cart/items", client: device, body: jsonBody(t, addItemRequest{ProductID: "p-sac", Quantity: 1})})

	raw, ok := env.storage.Raw(cart.KeyFor(device))
	require.True(t, ok)
	stored, _, err := cart.Decode(raw)
	require.NoError(t, err)
	require.Len(t, stored.Lines, 1)
	assert.Equal(t, "p-sac", stored.Lines[0].ProductID)

	rec := env.do(t, call{method: http.MethodGet, path: "/api/cart", client: "device-other-01"})
	assert.Empty(t, decode[cartResponse](t, rec).Lines)
}

func TestCart_RehydratesFromStorage(t *testing.T) {
	env := newTestEnv(t)
	env.storage.Put(cart.KeyFor(device), `[{"id":"p-sac","title":"Sac en cuir","price":12000,"promo_price":9000,"quantity":2}]`)

	rec := env.do(t, call{method: http.MethodGet, path: "/api/cart", client: device})
	c := decode[cartResponse](t, rec)
	require.Len(t, c.Lines, 1)
	assert.Equal(t, "18 000", c.Total)
}

func TestCart_AddUnknownProduct(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, call{method: http.MethodPost, path: "/api/cart/items", client: device, body: jsonBody(t, addItemRequest{ProductID: "nope", Quantity: 1})})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCart_AddPastQuantityLimit(t *testing.T) {
	env := newTestEnv(t)
	env.do(t, call{method: http.MethodPost, path: "/api/cart/items", client: device, body: jsonBody(t, addItemRequest{ProductID: "p-pagne", Quantity: 2})})

	rec := env.do(t, call{method: http.MethodPost, path: "/api/cart/items", client: device, body: jsonBody(t, addItemRequest{ProductID: "p-pagne", Quantity: math.MaxInt})})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, call{method: http.MethodGet, path: "/api/cart", client: device})
	c := decode[cartResponse](t, rec)
	require.Len(t, c.Lines, 1)
	assert.Equal(t, 2, c.Lines[0].Quantity)
	assert.Equal(t, "10 000", c.Total)
}

// ==================== Checkout ====================

var validForm = checkout.Form{
	CustomerName:    "Awa Ouedraogo",
	CustomerPhone:   "70 11 22 33",
	CustomerAddress: "Ouaga 2000, secteur 15",
	PaymentMethod:   checkout.MoovMoney,
}

func TestCheckout_HappyPath(t *testing.T) {
	env := newTestEnv(t)
	env.do(t, call{method: http.MethodPost, path: "/api/cart/items", client: device, body: jsonBody(t, addItemRequest{ProductID: "p-sac", Quantity: 2})})

	rec := env.do(t, call{method: http.MethodPost, path: "/api/checkout/form", client: device, body: jsonBody(t, validForm)})
	require.Equal(t, http.StatusOK, rec.Code)
	view := decode[checkout.View](t, rec)
	assert.Equal(t, checkout.StatePaymentInstructions, view.State)
	assert.Equal(t, "18 000", view.Total)
	assert.Equal(t, "70000000", view.PaymentTarget)

	rec = env.do(t, call{method: http.MethodPost, path: "/api/checkout/confirm", client: device})
	require.Equal(t, http.StatusCreated, rec.Code)
	confirmation := decode[checkout.Confirmation](t, rec)
	assert.Contains(t, confirmation.HandoffURL, "https://wa.me/22670000000?text=")
	assert.True(t, confirmation.Total.Equal(decimal.NewFromInt(18000)))

	require.Len(t, env.orders.Orders, 1)
	require.Len(t, env.orders.Lines, 1)
	assert.True(t, env.orders.Lines[0].UnitPrice.Equal(decimal.NewFromInt(9000)))

	rec = env.do(t, call{method: http.MethodGet, path: "/api/cart", client: device})
	assert.Empty(t, decode[cartResponse](t, rec).Lines)

	rec = env.do(t, call{method: http.MethodPost, path: "/api/checkout/confirm", client: device})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = env.do(t, call{method: http.MethodPost, path: "/api/checkout/reset", client: device})
	assert.Equal(t, checkout.StateForm, decode[checkout.View](t, rec).State)
}

func TestCheckout_LinesFailureIsRetryable(t *testing.T) {
	env := newTestEnv(t)
	env.orders.InsertLinesErr = errors.New("connection reset")
	env.do(t, call{method: http.MethodPost, path: "/api/cart/items", client: device, body: jsonBody(t, addItemRequest{ProductID: "p-pagne", Quantity: 1})})
	env.do(t, call{method: http.MethodPost, path: "/api/checkout/form", client: device, body: jsonBody(t, validForm)})

	rec := env.do(t, call{method: http.MethodPost, path: "/api/checkout/confirm", client: device})
	require.Equal(t, http.StatusBadGateway, rec.Code)
	resp := decode[checkoutErrorResponse](t, rec)
	assert.True(t, resp.Retryable)
	assert.Equal(t, checkout.StateFailed, resp.View.State)

	rec = env.do(t, call{method: http.MethodGet, path: "/api/cart", client: device})
	assert.Len(t, decode[cartResponse](t, rec).Lines, 1, "cart kept after failure")

	env.orders.InsertLinesErr = nil
	rec = env.do(t, call{method: http.MethodPost, path: "/api/checkout/confirm", client: device})
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Len(t, env.orders.Orders, 2)
}

func TestCheckout_EmptyCartAndValidation(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, call{method: http.MethodPost, path: "/api/checkout/form", client: device, body: jsonBody(t, validForm)})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	env.do(t, call{method: http.MethodPost, path: "/api/cart/items", client: device, body: jsonBody(t, addItemRequest{ProductID: "p-pagne", Quantity: 1})})
	rec = env.do(t, call{method: http.MethodPost, path: "/api/checkout/form", client: device, body: jsonBody(t, checkout.Form{CustomerName: "Awa"})})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), checkout.ErrMissingPhone.Error())
}

// ==================== Access control ====================

func TestVendorRoutes_Guarded(t *testing.T) {
	env := newTestEnv(t)
	customer := env.seedUser(t, "cust-1", model.RoleCustomer)

	rec := env.do(t, call{method: http.MethodGet, path: "/api/vendor/shop"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(t, call{method: http.MethodGet, path: "/api/vendor/shop", token: customer})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "/account", decode[map[string]string](t, rec)["redirect"])

	rec = env.do(t, call{method: http.MethodGet, path: "/api/admin/products", token: customer})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestCreateShop_PromotesAndLands(t *testing.T) {
	env := newTestEnv(t)
	token := env.seedUser(t, "user-ibrahim", model.RoleCustomer)

	rec := env.do(t, call{method: http.MethodPost, path: "/api/vendor/shop", token: token, client: device, body: jsonBody(t, createShopRequest{Name: "Boutique Ibrahim"})})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "/vendor/dashboard", string(decode[createShopResponse](t, rec).Redirect))

	rec = env.do(t, call{method: http.MethodGet, path: "/api/vendor/shop", token: token})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Boutique Ibrahim", decode[model.Shop](t, rec).Name)

	rec = env.do(t, call{method: http.MethodGet, path: "/api/auth/landing", token: token, client: device})
	assert.Equal(t, "/vendor/dashboard", decode[map[string]string](t, rec)["redirect"])

	rec = env.do(t, call{method: http.MethodPost, path: "/api/vendor/shop", token: token, body: jsonBody(t, createShopRequest{Name: "Seconde"})})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestLanding_VendorWithoutShop(t *testing.T) {
	env := newTestEnv(t)
	token := env.seedUser(t, "vendor-new", model.RoleVendor)

	rec := env.do(t, call{method: http.MethodGet, path: "/api/auth/landing", token: token, client: device})
	assert.Equal(t, "/vendor/create-shop", decode[map[string]string](t, rec)["redirect"])

	rec = env.do(t, call{method: http.MethodGet, path: "/api/vendor/products", token: token})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// ==================== Vendor catalog ====================

func multipartProduct(t *testing.T, fields map[string]string, files ...string) (io.Reader, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	for _, name := range files {
		fw, err := mw.CreateFormFile("images", name)
		require.NoError(t, err)
		_, err = fw.Write([]byte("fake image bytes"))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestVendorCreateProduct(t *testing.T) {
	env := newTestEnv(t)
	token := env.seedUser(t, "vendor-1", model.RoleVendor)
	env.shops.Seed(&model.Shop{ID: "shop-1", OwnerID: "vendor-1", Name: "Faso Style"})

	body, ct := multipartProduct(t, map[string]string{
		"title":       "Chemise Koko Dunda",
		"category":    "Mode",
		"price":       "7500",
		"promo_price": "0",
		"stock":       "4",
	}, "Photo.JPG")

	rec := env.do(t, call{method: http.MethodPost, path: "/api/vendor/products", token: token, body: body, contentType: ct})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	require.Len(t, env.images.UploadCalls, 1)
	assert.Regexp(t, `^shop-1/\d+-[0-9a-f]{12}\.jpg$`, env.images.UploadCalls[0])
	require.Len(t, env.products.InsertCalls, 1)
	assert.Nil(t, env.products.InsertCalls[0].PromoPrice)
}

func TestVendorCreateProduct_RequiresImage(t *testing.T) {
	env := newTestEnv(t)
	token := env.seedUser(t, "vendor-1", model.RoleVendor)
	env.shops.Seed(&model.Shop{ID: "shop-1", OwnerID: "vendor-1", Name: "Faso Style"})

	body, ct := multipartProduct(t, map[string]string{"title": "Sans photo", "category": "Mode", "price": "1000"})
	rec := env.do(t, call{method: http.MethodPost, path: "/api/vendor/products", token: token, body: body, contentType: ct})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), catalog.ErrNoImages.Error())
	assert.Empty(t, env.images.UploadCalls)
}

func TestVendorDeleteProduct_OwnershipAndConfirmation(t *testing.T) {
	env := newTestEnv(t)
	token := env.seedUser(t, "vendor-2", model.RoleVendor)
	env.shops.Seed(&model.Shop{ID: "shop-2", OwnerID: "vendor-2", Name: "Kaya"})

	rec := env.do(t, call{method: http.MethodDelete, path: "/api/vendor/products/p-sac?confirm=true", token: token})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(t, call{method: http.MethodDelete, path: "/api/vendor/products/p-free", token: token})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, env.products.DeleteCalls)

	rec = env.do(t, call{method: http.MethodDelete, path: "/api/vendor/products/p-free?confirm=true", token: token})
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, []string{"p-free"}, env.products.DeleteCalls)
}

func TestVendorOrders(t *testing.T) {
	env := newTestEnv(t)
	token := env.seedUser(t, "vendor-1", model.RoleVendor)
	env.shops.Seed(&model.Shop{ID: "shop-1", OwnerID: "vendor-1", Name: "Faso Style"})
	env.orders.ShopLines["shop-1"] = []model.ShopOrderLine{
		{OrderID: "o-1", ProductID: "p-pagne", ProductTitle: "Pagne", Quantity: 3, UnitPrice: decimal.NewFromInt(5000), Status: "pending"},
	}

	rec := env.do(t, call{method: http.MethodGet, path: "/api/vendor/orders", token: token})
	require.Equal(t, http.StatusOK, rec.Code)
	lines := decode[[]shopOrderResponse](t, rec)
	require.Len(t, lines, 1)
	assert.Equal(t, "En attente", lines[0].StatusLabel)
	assert.Equal(t, "15 000", lines[0].LineTotal)
}

// ==================== Admin console ====================

func TestAdminToggleFeatured_OptimisticOnFailure(t *testing.T) {
	env := newTestEnv(t)
	token := env.seedUser(t, "admin-1", model.RoleAdmin)

	rec := env.do(t, call{method: http.MethodGet, path: "/api/admin/products", token: token, client: device})
	require.Equal(t, http.StatusOK, rec.Code)

	env.products.SetFeaturedErr = errors.New("permission denied")
	rec = env.do(t, call{method: http.MethodPost, path: "/api/admin/products/p-sac/featured", token: token, client: device, body: jsonBody(t, toggleFeaturedRequest{Current: false})})
	assert.Equal(t, http.StatusBadGateway, rec.Code)

	var resp struct {
		Products []model.Product `json:"products"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	for _, p := range resp.Products {
		if p.ID == "p-sac" {
			assert.True(t, p.IsFeatured, "optimistic value kept")
		}
	}
	require.Len(t, env.products.SetFeaturedCalls, 1)
	assert.True(t, env.products.SetFeaturedCalls[0].Featured)
}

func TestAdminDeleteProduct_RemovesFromView(t *testing.T) {
	env := newTestEnv(t)
	token := env.seedUser(t, "admin-1", model.RoleAdmin)
	env.do(t, call{method: http.MethodGet, path: "/api/admin/products", token: token, client: device})

	rec := env.do(t, call{method: http.MethodDelete, path: "/api/admin/products/p-pagne?confirm=true", token: token, client: device})
	require.Equal(t, http.StatusNoContent, rec.Code)

	view := env.clients.Get(httptest.NewRequest(http.MethodGet, "/", nil).Context(), device).AdminView(func() *catalog.ListView { return nil })
	require.NotNil(t, view)
	for _, p := range view.Products() {
		assert.NotEqual(t, "p-pagne", p.ID)
	}
}

// ==================== Auth ====================

func TestSignUpLogin_ResumePathForCustomer(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, call{method: http.MethodPost, path: "/api/auth/signup", client: device, body: jsonBody(t, SignUpRequest{Email: "Awa@Example.bf", Password: "motdepasse", FullName: "Awa"})})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "/", string(decode[AuthResponse](t, rec).Redirect))

	rec = env.do(t, call{method: http.MethodPost, path: "/api/auth/login", client: device, body: jsonBody(t, LoginRequest{Email: "awa@example.bf", Password: "motdepasse", Resume: "/checkout"})})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "/checkout", string(decode[AuthResponse](t, rec).Redirect))

	var names []string
	for _, c := range rec.Result().Cookies() {
		names = append(names, c.Name)
	}
	assert.ElementsMatch(t, []string{"access_token", "refresh_token"}, names)

	rec = env.do(t, call{method: http.MethodPost, path: "/api/auth/login", client: device, body: jsonBody(t, LoginRequest{Email: "awa@example.bf", Password: "wrong-pass"})})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogout_RevokesToken(t *testing.T) {
	env := newTestEnv(t)
	token := env.seedUser(t, "cust-2", model.RoleCustomer)

	rec := env.do(t, call{method: http.MethodGet, path: "/api/auth/me", token: token})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, call{method: http.MethodPost, path: "/api/auth/logout", token: token})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, call{method: http.MethodGet, path: "/api/auth/me", token: token})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogout_RevokesRefreshCookie(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, call{method: http.MethodPost, path: "/api/auth/signup", client: device, body: jsonBody(t, SignUpRequest{Email: "issa@example.bf", Password: "motdepasse"})})
	require.Equal(t, http.StatusCreated, rec.Code)
	cookies := rec.Result().Cookies()
	var refresh *http.Cookie
	for _, c := range cookies {
		if c.Name == refreshTokenCookie {
			refresh = c
		}
	}
	require.NotNil(t, refresh)
	assert.Equal(t, "/api/auth", refresh.Path)

	rec = env.do(t, call{method: http.MethodPost, path: "/api/auth/logout", client: device, cookies: cookies})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, call{method: http.MethodPost, path: "/api/auth/refresh", client: device, cookies: []*http.Cookie{refresh}})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRefresh_RotatesToken(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, call{method: http.MethodPost, path: "/api/auth/signup", client: device, body: jsonBody(t, SignUpRequest{Email: "issa@example.bf", Password: "motdepasse"})})
	require.Equal(t, http.StatusCreated, rec.Code)
	var refresh *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == refreshTokenCookie {
			refresh = c
		}
	}
	require.NotNil(t, refresh)

	rec = env.do(t, call{method: http.MethodPost, path: "/api/auth/refresh", client: device, cookies: []*http.Cookie{refresh}})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, call{method: http.MethodPost, path: "/api/auth/refresh", client: device, cookies: []*http.Cookie{refresh}})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func testProduct() *model.Product {
	return &model.Product{ID: "p-pagne", Title: "Pagne Faso Dan Fani", Price: decimal.NewFromInt(5000)}
}
