package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storefront-backend/api/middleware"
	"github.com/angelmondragon/storefront-backend/internal/cart"
	"github.com/angelmondragon/storefront-backend/internal/catalog"
	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/db/dbtest"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	dbtypes "github.com/angelmondragon/storefront-backend/pkg/db/types"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/metrics"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type testServer struct {
	handler http.Handler
	product *models.Product
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	cfg := &config.Config{
		App: config.AppConfig{Env: "test"},
		Cart: config.CartConfig{
			CookieName:  "sf_cart",
			TokenSecret: "router-secret",
			TokenIssuer: "storefront",
			TokenTTL:    time.Hour,
		},
		Storefront: config.StorefrontConfig{
			BaseURL:     "https://shop.example.com",
			CORSOrigins: []string{"http://localhost:3000"},
		},
	}
	logg := logger.Nop()
	reg := prometheus.NewRegistry()
	m := metrics.NewStorefrontMetrics(reg)

	catalogRepo := catalog.NewRepository(dbtest.Open(t))
	product := &models.Product{
		Name:     "Oak Chair",
		Slug:     "oak-chair",
		Category: "chairs",
		Price:    decimal.NewFromInt(20000),
		Stock:    2,
		Images:   dbtypes.StringList{},
		Colors:   dbtypes.StringList{},
	}
	if err := catalogRepo.Create(context.Background(), product); err != nil {
		t.Fatalf("seed product: %v", err)
	}
	catalogSvc, err := catalog.NewService(catalogRepo)
	if err != nil {
		t.Fatalf("catalog service: %v", err)
	}

	cartSvc, err := cart.NewService(cart.ServiceParams{
		Storage: cart.NewMemoryStorage(),
		Logger:  logg,
		Metrics: m,
	})
	if err != nil {
		t.Fatalf("cart service: %v", err)
	}

	handler := NewRouter(RouterParams{
		Config:   cfg,
		Logger:   logg,
		Metrics:  m,
		Gatherer: reg,
		DB:       stubPinger{},
		Catalog:  catalogSvc,
		Cart:     cartSvc,
	})
	return &testServer{handler: handler, product: product}
}

func (s *testServer) do(method, target, body string, headers map[string]string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func TestHealthRoutes(t *testing.T) {
	s := newTestServer(t)

	for _, target := range []string{"/health/live", "/health/ready"} {
		if rec := s.do(http.MethodGet, target, "", nil); rec.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d (%s)", target, rec.Code, rec.Body.String())
		}
	}
}

func TestCatalogRoutes(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodGet, "/api/v1/products?category=chairs", "", nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "oak-chair") {
		t.Fatalf("expected product listing, got %d %s", rec.Code, rec.Body.String())
	}

	rec = s.do(http.MethodGet, "/api/v1/products/oak-chair", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected product detail, got %d", rec.Code)
	}
}

func TestCartSessionCarriesAcrossRequests(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodPost, "/api/v1/cart/items", `{"product_id":"`+s.product.ID.String()+`","quantity":2}`, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected add to succeed, got %d (%s)", rec.Code, rec.Body.String())
	}
	token := rec.Header().Get(middleware.CartTokenHeader)
	if token == "" {
		t.Fatal("expected a cart token on the first request")
	}

	rec = s.do(http.MethodGet, "/api/v1/cart", "", map[string]string{middleware.CartTokenHeader: token})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected cart fetch, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"item_count":2`) {
		t.Fatalf("expected the same cart back, got %s", rec.Body.String())
	}

	rec = s.do(http.MethodGet, "/api/v1/cart", "", nil)
	if !strings.Contains(rec.Body.String(), `"item_count":0`) {
		t.Fatalf("expected a fresh cart without the token, got %s", rec.Body.String())
	}
}

func TestMetricsEndpointExportsCartMutations(t *testing.T) {
	s := newTestServer(t)

	s.do(http.MethodDelete, "/api/v1/cart", "", nil)

	rec := s.do(http.MethodGet, "/metrics", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected metrics, got %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{`cart_mutations_total{op="clear"} 1`, "http_request_duration_seconds"} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected %s in metrics output", want)
		}
	}
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodOptions, "/api/v1/cart/items", "", map[string]string{
		"Origin":                         "http://localhost:3000",
		"Access-Control-Request-Method":  http.MethodPost,
		"Access-Control-Request-Headers": middleware.CartTokenHeader,
	})
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Fatalf("expected allowed origin, got %q", got)
	}
}

func TestUnwiredServicesReportInternalError(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodPost, "/api/v1/checkout/preference", `{"items":[]}`, nil)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 without a checkout service, got %d", rec.Code)
	}

	rec = s.do(http.MethodPost, "/api/v1/webhooks/mercadopago", `{"type":"payment","data":{"id":"1"}}`, nil)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 without a webhook service, got %d", rec.Code)
	}

	rec = s.do(http.MethodPost, "/api/v1/webhooks/mercadopago", `{"type":"merchant_order","data":{"id":"1"}}`, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected ignored notification to be acknowledged, got %d", rec.Code)
	}
}

func TestUnknownRoute(t *testing.T) {
	s := newTestServer(t)

	if rec := s.do(http.MethodGet, "/api/v1/orders", "", nil); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
