package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestKindOfWrapped(t *testing.T) {
	err := fmt.Errorf("lookup plan: %w", NotFound("plan not found"))
	if KindOf(err) != KindNotFound {
		t.Fatalf("expected not found, got %s", KindOf(err))
	}
	if !IsNotFound(err) {
		t.Fatal("expected IsNotFound")
	}
	if KindOf(errors.New("plain")) != KindUnknown {
		t.Fatal("plain errors should be unknown")
	}
}

func TestHTTPStatus(t *testing.T) {
	cases := map[Kind]int{
		KindUnauthorized:    http.StatusUnauthorized,
		KindNotFound:        http.StatusNotFound,
		KindValidation:      http.StatusBadRequest,
		KindPaymentRequired: http.StatusPaymentRequired,
		KindConflict:        http.StatusConflict,
		KindUpstream:        http.StatusInternalServerError,
		KindUnknown:         http.StatusInternalServerError,
	}
	for kind, want := range cases {
		if got := kind.HTTPStatus(); got != want {
			t.Fatalf("%s: got %d, want %d", kind, got, want)
		}
	}
}

func TestUpstreamMessageIncludesCause(t *testing.T) {
	err := Upstream("paypal create order", errors.New("INVALID_CURRENCY"))
	if err.Error() != "paypal create order: INVALID_CURRENCY" {
		t.Fatalf("unexpected message %q", err.Error())
	}
	if !errors.Is(err, &Error{Kind: KindUpstream}) {
		t.Fatal("expected errors.Is to match by kind")
	}
}
