package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"saas-billing/internal/config"
	"testing"

	"github.com/shopspring/decimal"
)

func newPaypalTestServer(t *testing.T, handler func(w http.ResponseWriter, r *http.Request)) PaymentProvider {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || user != "client" || pass != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"access_token": "token-123"})
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer token-123" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		handler(w, r)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	return NewPaypalClient(&config.Paypal{
		BaseApiURL:   server.URL,
		ClientID:     "client",
		ClientSecret: "secret",
		WebhookID:    "wh-1",
	})
}

func TestPaypalCreateOrder(t *testing.T) {
	var got map[string]any
	provider := newPaypalTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v2/checkout/orders" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &got)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"PP-1","status":"CREATED","links":[{"rel":"self","href":"https://x/self"},{"rel":"approve","href":"https://paypal.test/approve"}]}`))
	})

	handle, err := provider.CreateOrder(context.Background(), &CreateOrderRequest{
		Reference: "order-1",
		Amount:    decimal.NewFromInt(999).Shift(-2),
		Currency:  "USD",
		ReturnURL: "http://localhost/return",
		CancelURL: "http://localhost/cancel",
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	if handle.ID != "PP-1" || handle.ApproveURL != "https://paypal.test/approve" {
		t.Fatalf("unexpected handle %+v", handle)
	}
	if len(handle.Raw) == 0 {
		t.Fatal("expected raw provider body on handle")
	}

	units := got["purchase_units"].([]any)
	amount := units[0].(map[string]any)["amount"].(map[string]any)
	if amount["value"] != "9.99" || amount["currency_code"] != "USD" {
		t.Fatalf("unexpected amount payload %v", amount)
	}
}

func TestPaypalCreateOrderUpstreamError(t *testing.T) {
	provider := newPaypalTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"name":"UNPROCESSABLE_ENTITY"}`))
	})

	_, err := provider.CreateOrder(context.Background(), &CreateOrderRequest{
		Reference: "order-1",
		Amount:    decimal.NewFromInt(1),
		Currency:  "USD",
	})
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestPaypalCaptureOrderNormalizesStatus(t *testing.T) {
	provider := newPaypalTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v2/checkout/orders/PP-1/capture" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"id":"PP-1","status":"COMPLETED","payer":{"payer_id":"PAYER"},
			"purchase_units":[{"reference_id":"order-1","custom_id":"order-1",
			"payments":{"captures":[{"id":"CAP","status":"COMPLETED","amount":{"currency_code":"USD","value":"9.99"}}]}}]}`))
	})

	order, err := provider.CaptureOrder(context.Background(), "PP-1", nil)
	if err != nil {
		t.Fatalf("capture: %v", err)
	}
	if order.Status != StatusPaid || order.Reference != "order-1" || order.PayerID != "PAYER" {
		t.Fatalf("unexpected order %+v", order)
	}
	if !order.Amount.Equal(decimal.RequireFromString("9.99")) {
		t.Fatalf("unexpected amount %s", order.Amount)
	}
}

func TestPaypalParseWebhook(t *testing.T) {
	provider := newPaypalTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/notifications/verify-webhook-signature" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"verification_status":"SUCCESS"}`))
	})

	body := []byte(`{"id":"WH-1","event_type":"PAYMENT.CAPTURE.COMPLETED","resource":{"id":"CAP","custom_id":"order-1","supplementary_data":{"related_ids":{"order_id":"PP-1"}}}}`)
	event, err := provider.(WebhookVerifier).ParseWebhook(context.Background(), http.Header{}, body)
	if err != nil {
		t.Fatalf("parse webhook: %v", err)
	}
	if event.ID != "WH-1" || event.ProviderRef != "PP-1" || event.Status != StatusPaid || event.Reference != "order-1" {
		t.Fatalf("unexpected event %+v", event)
	}
}

func TestPaypalParseWebhookRejectsBadSignature(t *testing.T) {
	provider := newPaypalTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"verification_status":"FAILURE"}`))
	})

	_, err := provider.(WebhookVerifier).ParseWebhook(context.Background(), http.Header{}, []byte(`{"id":"WH-1"}`))
	if err == nil {
		t.Fatal("expected verification error")
	}
}
