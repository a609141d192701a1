package view

import (
	"bytes"
	"context"
	"saas-billing/internal/auth"
	"saas-billing/internal/locale"
	"saas-billing/internal/model"
	"strings"
	"testing"

	"github.com/a-h/templ"
)

func testPage(code string, user *auth.User) Page {
	return Page{
		Locale:  code,
		Locales: []string{"en", "zh", "ja", "es"},
		Path:    "/pricing",
		User:    user,
		Printer: locale.Printer(code),
	}
}

func render(t *testing.T, c templ.Component) string {
	t.Helper()
	var buf bytes.Buffer
	if err := c.Render(context.Background(), &buf); err != nil {
		t.Fatalf("render: %v", err)
	}
	return buf.String()
}

func TestLayoutLocalizesNavigation(t *testing.T) {
	out := render(t, Home(testPage("zh", nil)))

	if !strings.Contains(out, `<html lang="zh">`) {
		t.Fatalf("missing lang attribute: %s", out)
	}
	if !strings.Contains(out, `href="/zh/pricing"`) || !strings.Contains(out, "价格") {
		t.Fatalf("expected localized pricing link")
	}
	if !strings.Contains(out, `href="/ja/pricing"`) {
		t.Fatalf("expected locale switcher to keep the current path")
	}
	if strings.Contains(out, `href="/zh/orders"`) {
		t.Fatalf("anonymous visitors should not see account links")
	}
}

func TestLayoutShowsAccountLinksForUser(t *testing.T) {
	out := render(t, Home(testPage("en", &auth.User{ID: "user-1"})))
	if !strings.Contains(out, `href="/en/orders"`) || !strings.Contains(out, "Sign out") {
		t.Fatalf("expected account navigation: %s", out)
	}
}

func TestPricingEscapesAndFormats(t *testing.T) {
	plans := []*model.Plan{
		{ID: "free", Name: "Free", Currency: "usd", Interval: "month", CreditsPerPeriod: 10},
		{ID: "pro_monthly", Name: "<Pro>", PriceCents: 2900, Currency: "usd", Interval: "month", CreditsPerPeriod: 500},
	}
	out := render(t, Pricing(testPage("en", nil), plans, nil))

	if strings.Contains(out, "<Pro>") || !strings.Contains(out, "&lt;Pro&gt;") {
		t.Fatalf("plan name not escaped")
	}
	if !strings.Contains(out, "29.00 USD / month") {
		t.Fatalf("expected formatted price: %s", out)
	}
	if strings.Contains(out, "/en/checkout?plan=free") {
		t.Fatalf("free plan should not link to checkout")
	}
	if !strings.Contains(out, "/en/checkout?plan=pro_monthly") {
		t.Fatalf("expected checkout link")
	}
}

func TestCheckoutStates(t *testing.T) {
	p := testPage("en", &auth.User{ID: "user-1"})

	if out := render(t, Checkout(p, nil, nil)); !strings.Contains(out, "This item does not exist.") {
		t.Fatalf("expected not found message")
	}
	free := &CheckoutItem{Kind: "plan", ID: "free", Name: "Free", Currency: "usd"}
	if out := render(t, Checkout(p, free, nil)); !strings.Contains(out, "does not require payment") {
		t.Fatalf("expected no payment message")
	}

	item := &CheckoutItem{Kind: "product", ID: "credits_100", Name: "100 credits", PriceCents: 500, Currency: "usd"}
	currencies := []*model.PaymentCurrency{
		{Code: "usd", Name: "US Dollar"},
		{Code: "btc", Name: "Bitcoin", Crypto: true},
	}
	out := render(t, Checkout(p, item, currencies))
	if !strings.Contains(out, `data-endpoint="/api/v1/credits/create-order"`) {
		t.Fatalf("expected credit endpoint")
	}
	if !strings.Contains(out, `<option value="btc">`) || strings.Contains(out, `<option value="usd">`) {
		t.Fatalf("expected only crypto pay currencies")
	}
	if !strings.Contains(out, "Pay 5.00 USD") {
		t.Fatalf("expected pay button")
	}
}

func TestOrdersCaptureScript(t *testing.T) {
	p := testPage("en", &auth.User{ID: "user-1"})

	if out := render(t, Orders(p, nil, "")); !strings.Contains(out, "No orders yet.") || strings.Contains(out, "/capture") {
		t.Fatalf("unexpected empty orders page")
	}
	orders := []*model.Order{{ID: "order-1", Type: model.OrderTypeCredits, ItemID: "credits_100", AmountCents: 500, Currency: "usd", Status: model.OrderStatusPaid}}
	out := render(t, Orders(p, orders, "order-1"))
	if !strings.Contains(out, "/api/v1/payments/orders/order-1/capture") {
		t.Fatalf("expected capture call")
	}
	if !strings.Contains(out, "PAID") {
		t.Fatalf("expected order status")
	}
}

func TestLoginCarriesNext(t *testing.T) {
	out := render(t, Login(testPage("es", nil), "/es/credits", true))
	if !strings.Contains(out, "/api/v1/auth/login?next=%2Fes%2Fcredits") {
		t.Fatalf("expected next parameter: %s", out)
	}
	if !strings.Contains(out, "Sign-in failed") {
		t.Fatalf("expected error message")
	}
}
