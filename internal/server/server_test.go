package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"saas-billing/internal/auth"
	"saas-billing/internal/client"
	"saas-billing/internal/config"
	"saas-billing/internal/locale"
	"saas-billing/internal/repository"
	"saas-billing/internal/service"
	"strings"
	"testing"
	"time"

	"golang.org/x/oauth2"
)

// bearerSessions treats the bearer token as the user id.
type bearerSessions struct{}

func (bearerSessions) User(r *http.Request) (*auth.User, error) {
	token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	if token == "" {
		return nil, auth.ErrNoSession
	}
	return &auth.User{ID: token, Email: token + "@example.com"}, nil
}

func (bearerSessions) AuthCodeURL(state string) string {
	return "https://id.example/authorize?state=" + state
}

func (bearerSessions) SetSessionCookies(http.ResponseWriter, *oauth2.Token) {}

func (bearerSessions) ClearSessionCookies(http.ResponseWriter) {}

type stubExchanger struct{}

func (stubExchanger) Exchange(context.Context, string) (*oauth2.Token, *auth.User, error) {
	return &oauth2.Token{AccessToken: "token"}, &auth.User{ID: "alice"}, nil
}

type stubProvider struct{}

func (stubProvider) Name() string { return client.ProviderPaypal }

func (stubProvider) CreateOrder(_ context.Context, req *client.CreateOrderRequest) (*client.OrderHandle, error) {
	return &client.OrderHandle{Provider: client.ProviderPaypal, ID: "ref-" + req.Reference, Status: client.StatusCreated}, nil
}

func (stubProvider) GetOrder(_ context.Context, ref string) (*client.ProviderOrder, error) {
	return &client.ProviderOrder{ID: ref, Status: client.StatusCreated}, nil
}

func (stubProvider) CaptureOrder(_ context.Context, ref string, _ *client.CaptureOptions) (*client.ProviderOrder, error) {
	return &client.ProviderOrder{ID: ref, Status: client.StatusPaid, RawStatus: "COMPLETED"}, nil
}

type mapIdempotency map[string]*client.OrderHandle

func (m mapIdempotency) Get(_ context.Context, key string) (*client.OrderHandle, error) {
	return m[key], nil
}

func (m mapIdempotency) Claim(_ context.Context, key string, _ time.Duration) (bool, error) {
	if _, ok := m[key]; ok {
		return false, nil
	}
	m[key] = nil
	return true, nil
}

func (m mapIdempotency) Put(_ context.Context, key string, handle *client.OrderHandle, _ time.Duration) error {
	m[key] = handle
	return nil
}

func (m mapIdempotency) Release(_ context.Context, key string) error {
	delete(m, key)
	return nil
}

type discardNonces struct{}

func (discardNonces) Put(context.Context, string, time.Duration) error { return nil }

type freeLocker struct{}

func (freeLocker) Lock(context.Context, string) (func(context.Context) error, error) {
	return func(context.Context) error { return nil }, nil
}

func newTestServer(t *testing.T) (*Server, *Services) {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := client.InitDBClient(&config.Database{
		Driver: "sqlite",
		URL:    "file:" + name + "?mode=memory&cache=shared",
	})
	if err != nil {
		t.Fatalf("init db: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	catalogRepo := repository.NewCatalogRepository(db)
	if err := catalogRepo.Seed(context.Background()); err != nil {
		t.Fatalf("seed: %v", err)
	}
	orderRepo := repository.NewOrderRepository(db)
	subRepo := repository.NewSubscriptionRepository(db)
	creditRepo := repository.NewCreditRepository(db)
	providers := client.NewProviders(stubProvider{})

	catalog := service.NewCatalogService(catalogRepo)
	fulfillment := service.NewFulfillmentService(db, providers, catalogRepo, orderRepo, subRepo, creditRepo, repository.NewWebhookEventRepository(db))
	services := &Services{
		Auth:        service.NewAuthService(stubExchanger{}, repository.NewUserRepository(db), discardNonces{}, time.Minute),
		Catalog:     catalog,
		Fulfillment: fulfillment,
		Order: service.NewOrderService(providers, catalog, orderRepo, mapIdempotency{}, fulfillment, service.OrderOptions{
			BaseURL:        "https://app.example",
			PlanProvider:   client.ProviderPaypal,
			CreditProvider: client.ProviderPaypal,
			IdempotencyTTL: time.Hour,
		}),
		Subscription: service.NewSubscriptionService(freeLocker{}, catalog, subRepo),
		Credit:       service.NewCreditService(db, creditRepo, repository.NewUsageRepository(db)),
		Favorite:     service.NewFavoriteService(catalog, repository.NewFavoriteRepository(db)),
	}

	cfg := &config.Config{
		BaseURL: "https://app.example",
		Log:     config.Log{Level: "error", Format: "text"},
	}
	resolver := locale.NewResolver([]string{"en", "zh", "ja", "es"}, "en")
	return NewServer(cfg, bearerSessions{}, resolver, services), services
}

func do(s *Server, method, target, user, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if user != "" {
		req.Header.Set("Authorization", "Bearer "+user)
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestAPIRequiresSession(t *testing.T) {
	s, _ := newTestServer(t)

	rec := do(s, http.MethodGet, "/api/v1/payments/orders/abc123", "", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"success":false`) || !strings.Contains(rec.Body.String(), "authentication required") {
		t.Fatalf("unexpected body %s", rec.Body.String())
	}
}

func TestProtectedPageRedirectsToLogin(t *testing.T) {
	s, _ := newTestServer(t)

	rec := do(s, http.MethodGet, "/es/orders", "", "")
	if rec.Code != http.StatusFound {
		t.Fatalf("expected redirect, got %d", rec.Code)
	}
	if got := rec.Header().Get("Location"); got != "/es/login?next=%2Fes%2Forders" {
		t.Fatalf("unexpected location %q", got)
	}
}

func TestUnprefixedPageRedirectsToNegotiatedLocale(t *testing.T) {
	s, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/pricing?x=1", nil)
	req.Header.Set("Accept-Language", "zh-CN,zh;q=0.9")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusFound || rec.Header().Get("Location") != "/zh/pricing?x=1" {
		t.Fatalf("expected redirect to /zh/pricing?x=1, got %d %q", rec.Code, rec.Header().Get("Location"))
	}
}

func TestLocalizedPricingPage(t *testing.T) {
	s, _ := newTestServer(t)

	rec := do(s, http.MethodGet, "/zh/pricing", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "价格") || !strings.Contains(rec.Body.String(), "pro_monthly") {
		t.Fatalf("expected localized pricing page")
	}
	if !strings.Contains(rec.Header().Get("Set-Cookie"), locale.CookieName+"=zh") {
		t.Fatalf("expected locale cookie, got %q", rec.Header().Get("Set-Cookie"))
	}
}

func TestUnknownPageRendersNotFound(t *testing.T) {
	s, _ := newTestServer(t)

	rec := do(s, http.MethodGet, "/en/nowhere", "", "")
	if rec.Code != http.StatusNotFound || !strings.Contains(rec.Body.String(), "Page not found") {
		t.Fatalf("expected not found page, got %d", rec.Code)
	}
}

func TestPaypalCreateOrderFreePlan(t *testing.T) {
	s, _ := newTestServer(t)

	rec := do(s, http.MethodPost, "/api/v1/paypal/create-order", "alice", `{"planId":"free"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "does not require payment") {
		t.Fatalf("unexpected body %s", rec.Body.String())
	}

	rec = do(s, http.MethodPost, "/api/v1/paypal/create-order", "alice", `{"planId":"missing"}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown plan, got %d", rec.Code)
	}
}

func TestForeignOrderIsNotFound(t *testing.T) {
	s, services := newTestServer(t)

	handle, err := services.Order.CreateCreditOrder(context.Background(), &auth.User{ID: "bob"}, &service.IssueRequest{ItemID: "credits_100"})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	orders, err := services.Order.ListOrders(context.Background(), "bob")
	if err != nil || len(orders) != 1 || orders[0].ProviderRef != handle.ID {
		t.Fatalf("expected bob's order, got %v %v", orders, err)
	}

	if rec := do(s, http.MethodGet, "/api/v1/payments/orders/"+orders[0].ID, "alice", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for foreign order, got %d", rec.Code)
	}
	rec := do(s, http.MethodGet, "/api/v1/payments/orders/"+orders[0].ID, "bob", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"success":true`) {
		t.Fatalf("expected owner to read order, got %d %s", rec.Code, rec.Body.String())
	}
}

func TestSubscribeRequiresPlan(t *testing.T) {
	s, _ := newTestServer(t)

	rec := do(s, http.MethodPost, "/api/v1/subscription/subscribe", "alice", `{}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}

	rec = do(s, http.MethodPost, "/api/v1/subscription/subscribe", "alice", `{"planId":"free"}`)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"plan_id":"free"`) {
		t.Fatalf("expected subscription, got %d %s", rec.Code, rec.Body.String())
	}

	rec = do(s, http.MethodPost, "/api/v1/subscription/subscribe", "alice", `{"planId":"pro_monthly"}`)
	if rec.Code != http.StatusBadRequest || !strings.Contains(rec.Body.String(), "requires payment") {
		t.Fatalf("expected paid plan to be refused, got %d %s", rec.Code, rec.Body.String())
	}
}

func TestDemoRequiresCredits(t *testing.T) {
	s, _ := newTestServer(t)

	rec := do(s, http.MethodPost, "/api/v1/demo/run", "alice", `{"prompt":"hello"}`)
	if rec.Code != http.StatusPaymentRequired {
		t.Fatalf("expected 402, got %d", rec.Code)
	}
}

func TestDocsFormats(t *testing.T) {
	s, _ := newTestServer(t)

	rec := do(s, http.MethodGet, "/api/v1/docs", "", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"openapi"`) {
		t.Fatalf("expected JSON document, got %d", rec.Code)
	}

	rec = do(s, http.MethodGet, "/api/v1/docs?format=yaml", "", "")
	if rec.Code != http.StatusOK || !strings.HasPrefix(rec.Header().Get("Content-Type"), "application/yaml") {
		t.Fatalf("expected YAML document, got %d %q", rec.Code, rec.Header().Get("Content-Type"))
	}
}

func TestSwaggerUI(t *testing.T) {
	s, _ := newTestServer(t)

	rec := do(s, http.MethodGet, "/api/v1/docs/ui/index.html", "", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "swagger-ui") {
		t.Fatalf("expected swagger ui page, got %d", rec.Code)
	}

	rec = do(s, http.MethodGet, "/api/v1/docs/ui/doc.json", "", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "/api/v1/payments/orders/{id}") {
		t.Fatalf("expected the api document behind the ui, got %d %s", rec.Code, rec.Body.String())
	}
}
