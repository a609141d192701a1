package openapi

import (
	"encoding/json"
	"sync"
	"sync/atomic"

	"github.com/swaggo/swag"
)

type swaggerRegistry struct {
	doc atomic.Pointer[Document]
}

func (r *swaggerRegistry) ReadDoc() string {
	doc := r.doc.Load()
	if doc == nil {
		return "{}"
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return "{}"
	}
	return string(raw)
}

var (
	registry     = &swaggerRegistry{}
	registerOnce sync.Once
)

// Register publishes doc under swag's default instance name, which the Swagger
// UI reads as doc.json. The latest call wins.
func Register(doc *Document) {
	registerOnce.Do(func() {
		swag.Register(swag.Name, registry)
	})
	registry.doc.Store(doc)
}
