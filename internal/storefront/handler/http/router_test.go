package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a-bjn/sudexpert-storefront/internal/storefront/backend"
	paymentmock "github.com/a-bjn/sudexpert-storefront/internal/storefront/payment/mock"
	"github.com/a-bjn/sudexpert-storefront/internal/storefront/repository/memory"
	"github.com/a-bjn/sudexpert-storefront/internal/storefront/service"
	"github.com/a-bjn/sudexpert-storefront/pkg/health"
	"github.com/a-bjn/sudexpert-storefront/pkg/httpclient"
	"github.com/a-bjn/sudexpert-storefront/pkg/middleware"
)

// testSessionTTL is deliberately not the middleware default, so the cookie
// tests prove the lifetime comes from the router config.
const testSessionTTL = 2 * time.Hour

func newTestRouter(t *testing.T, backendHandler http.Handler) http.Handler {
	t.Helper()

	if backendHandler == nil {
		backendHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusNotFound)
			_ = json.NewEncoder(w).Encode(map[string]string{"message": "Not found"})
		})
	}
	srv := httptest.NewServer(backendHandler)
	t.Cleanup(srv.Close)

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	store := memory.NewStore()
	bc := backend.NewClient(srv.URL, httpclient.New(httpclient.DefaultConfig()), logger)

	cart := service.NewCartService(store, nil, logger)
	auth := service.NewAuthService(store, bc, logger)
	catalog := service.NewCatalogService(bc, store, logger)
	checkout := service.NewCheckoutService(store, cart, auth, bc, paymentmock.NewProvider(), nil, logger)
	orders := service.NewOrderService(bc, auth)

	return NewRouter(RouterConfig{
		Cart:       cart,
		Auth:       auth,
		Catalog:    catalog,
		Checkout:   checkout,
		Orders:     orders,
		Health:     health.NewHandler(),
		Logger:     logger,
		CORS:       middleware.DefaultCORSConfig(),
		SessionTTL: testSessionTTL,
		PprofCIDRs: []string{"127.0.0.1/32"},
	})
}

func doJSON(t *testing.T, router http.Handler, method, path, body string, cookies []*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestRouter_HealthLive(t *testing.T) {
	router := newTestRouter(t, nil)

	rec := doJSON(t, router, http.MethodGet, "/health/live", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_IssuesSessionCookie(t *testing.T) {
	router := newTestRouter(t, nil)

	rec := doJSON(t, router, http.MethodGet, "/api/v1/cart", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)
	var sid *http.Cookie
	for _, c := range cookies {
		if c.Name == SessionCookieName {
			sid = c
		}
	}
	require.NotNil(t, sid)
	assert.NotEmpty(t, sid.Value)
	assert.True(t, sid.HttpOnly)
	assert.Equal(t, int(testSessionTTL.Seconds()), sid.MaxAge)
}

func TestRouter_CartPersistsAcrossRequests(t *testing.T) {
	router := newTestRouter(t, nil)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/cart/items",
		`{"product_id": 7, "name": "Invertor sudura", "price": 64900}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	cookies := rec.Result().Cookies()

	// Same product again with the same cookie: one line, quantity two.
	rec = doJSON(t, router, http.MethodPost, "/api/v1/cart/items",
		`{"product_id": 7, "name": "Invertor sudura", "price": 64900}`, cookies)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data struct {
			Items      []map[string]any `json:"items"`
			TotalItems int              `json:"totalItems"`
			TotalPrice int64            `json:"totalPrice"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Len(t, body.Data.Items, 1)
	assert.Equal(t, 2, body.Data.TotalItems)
	assert.Equal(t, int64(2*64900), body.Data.TotalPrice)
}

func TestRouter_CartIsolatedWithoutCookie(t *testing.T) {
	router := newTestRouter(t, nil)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/cart/items",
		`{"product_id": 7, "name": "Invertor sudura", "price": 64900}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	// No cookie means a fresh session and an empty cart.
	rec = doJSON(t, router, http.MethodGet, "/api/v1/cart", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data struct {
			TotalItems int `json:"totalItems"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 0, body.Data.TotalItems)
}

func TestRouter_AddItemValidation(t *testing.T) {
	router := newTestRouter(t, nil)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/cart/items", `{"price": -1}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "VALIDATION_ERROR")
}

func TestRouter_RejectsNonJSONBody(t *testing.T) {
	router := newTestRouter(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", strings.NewReader("product_id=7"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}

func TestRouter_SessionEndpoint(t *testing.T) {
	router := newTestRouter(t, nil)

	rec := doJSON(t, router, http.MethodGet, "/api/v1/auth/session", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data struct {
			Authenticated bool `json:"authenticated"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.False(t, body.Data.Authenticated)
}

func TestRouter_DeliveryRedirectsToLoginOnBothChannels(t *testing.T) {
	router := newTestRouter(t, nil)

	// With no stored credentials the delivery step bounces to login: the
	// target rides the Location header and the body alike.
	rec := doJSON(t, router, http.MethodPost, "/api/v1/checkout/delivery", `{
		"deliveryName": "Ion Popescu",
		"deliveryEmail": "ion@example.ro",
		"deliveryPhone": "0722000000",
		"deliveryAddress": "Str. Sudorilor 5",
		"deliveryCity": "Timisoara",
		"deliveryCounty": "Timis",
		"deliveryPostalCode": "300001",
		"deliveryCountry": "Romania"
	}`, nil)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
	assert.Contains(t, rec.Body.String(), `"redirect_url":"/login"`)
}

func TestRouter_OrdersRequireLogin(t *testing.T) {
	router := newTestRouter(t, nil)

	rec := doJSON(t, router, http.MethodGet, "/api/v1/orders", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouter_ProductsProxied(t *testing.T) {
	router := newTestRouter(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/products":
			_, _ = w.Write([]byte(`[{"id":1,"name":"Electrozi","price":4500}]`))
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"message":"Not found"}`))
		}
	}))

	rec := doJSON(t, router, http.MethodGet, "/api/v1/products", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Electrozi")
}
