package openapi

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/swaggo/swag"
	"gopkg.in/yaml.v3"
)

func TestBuildListsPublicRoutes(t *testing.T) {
	doc := Build("https://app.example", "1.0.0")

	for path, method := range map[string]string{
		"/api/v1/auth/callback":          "get",
		"/api/v1/auth/web3/nonce":        "get",
		"/api/v1/credits/create-order":   "post",
		"/api/v1/paypal/create-order":    "post",
		"/api/v1/payments/orders/{id}":   "get",
		"/api/v1/subscription/subscribe": "post",
		"/api/v1/docs":                   "get",
	} {
		item, ok := doc.Paths[path]
		if !ok || item[method] == nil {
			t.Errorf("missing %s %s", method, path)
		}
	}
	if doc.Servers[0].URL != "https://app.example" {
		t.Fatalf("unexpected servers %+v", doc.Servers)
	}
}

func TestDocumentRefsResolve(t *testing.T) {
	doc := Build("", "1.0.0")
	raw, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	const prefix = `"$ref":"#/components/schemas/`
	for _, part := range strings.Split(string(raw), prefix)[1:] {
		name := part[:strings.Index(part, `"`)]
		if _, ok := doc.Components.Schemas[name]; !ok {
			t.Errorf("dangling reference to %s", name)
		}
	}
}

func TestYAML(t *testing.T) {
	out, err := Build("", "1.0.0").YAML()
	if err != nil {
		t.Fatalf("yaml: %v", err)
	}

	var decoded map[string]any
	if err := yaml.Unmarshal(out, &decoded); err != nil {
		t.Fatalf("decode yaml: %v", err)
	}
	if decoded["openapi"] != "3.0.3" {
		t.Fatalf("unexpected openapi version %v", decoded["openapi"])
	}
	if !strings.Contains(string(out), "#/components/schemas/Order") {
		t.Fatalf("expected order schema reference in yaml output")
	}
}

func TestRegisterServesLatestDocument(t *testing.T) {
	Register(Build("https://one.example", "1.0.0"))
	Register(Build("https://two.example", "2.0.0"))

	raw, err := swag.ReadDoc()
	if err != nil {
		t.Fatalf("read doc: %v", err)
	}
	var decoded Document
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.Info.Version != "2.0.0" || len(decoded.Servers) != 1 || decoded.Servers[0].URL != "https://two.example" {
		t.Fatalf("expected the latest document, got %+v %+v", decoded.Info, decoded.Servers)
	}
}
