package locale

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSplit(t *testing.T) {
	r := NewResolver([]string{"en", "zh", "ja", "es"}, "en")

	cases := []struct {
		path   string
		locale string
		rest   string
		ok     bool
	}{
		{"/zh/pricing", "zh", "/pricing", true},
		{"/ja", "ja", "/", true},
		{"/ES/orders/1", "es", "/orders/1", true},
		{"/pricing", "en", "/pricing", false},
		{"/fr/pricing", "en", "/fr/pricing", false},
		{"/", "en", "/", false},
	}
	for _, tc := range cases {
		locale, rest, ok := r.Split(tc.path)
		if locale != tc.locale || rest != tc.rest || ok != tc.ok {
			t.Errorf("Split(%q) = %q %q %v, want %q %q %v", tc.path, locale, rest, ok, tc.locale, tc.rest, tc.ok)
		}
	}
}

func TestNewResolverPutsDefaultFirst(t *testing.T) {
	r := NewResolver([]string{"zh", "en", "zh", ""}, "ja")
	got := r.Supported()
	want := []string{"ja", "zh", "en"}
	if len(got) != len(want) {
		t.Fatalf("Supported() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Supported() = %v, want %v", got, want)
		}
	}
	if r.Default() != "ja" {
		t.Fatalf("Default() = %q", r.Default())
	}
}

func TestNegotiate(t *testing.T) {
	r := NewResolver([]string{"en", "zh", "ja", "es"}, "en")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if got := r.Negotiate(req); got != "en" {
		t.Fatalf("expected default, got %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Language", "ja-JP,ja;q=0.9,en;q=0.8")
	if got := r.Negotiate(req); got != "ja" {
		t.Fatalf("expected ja from header, got %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Language", "ja")
	req.AddCookie(&http.Cookie{Name: CookieName, Value: "es"})
	if got := r.Negotiate(req); got != "es" {
		t.Fatalf("expected cookie to win, got %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: "xx"})
	if got := r.Negotiate(req); got != "en" {
		t.Fatalf("expected unsupported cookie to be ignored, got %q", got)
	}
}

func TestPath(t *testing.T) {
	r := NewResolver([]string{"en", "zh"}, "en")

	if got := r.Path("zh", "/pricing"); got != "/zh/pricing" {
		t.Fatalf("got %q", got)
	}
	if got := r.Path("zh", "/"); got != "/zh" {
		t.Fatalf("got %q", got)
	}
	if got := r.Path("fr", "login"); got != "/en/login" {
		t.Fatalf("got %q", got)
	}
}

func TestPrinterFallsBackToEnglish(t *testing.T) {
	if got := Printer("zh").Sprintf("nav.pricing"); got != "价格" {
		t.Fatalf("zh nav.pricing = %q", got)
	}
	if got := Printer("ja").Sprintf("demo.run"); got != "Run" {
		t.Fatalf("ja demo.run = %q", got)
	}
	if got := Printer("en").Sprintf("credits.balance", 7); got != "Balance: 7 credits" {
		t.Fatalf("en credits.balance = %q", got)
	}
}
