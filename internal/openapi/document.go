package openapi

// Build returns the API description served at /api/v1/docs.
func Build(serverURL, version string) *Document {
	doc := &Document{
		OpenAPI: "3.0.3",
		Info:    Info{Title: "SaaS billing API", Version: version},
		Paths:   map[string]PathItem{},
		Components: Components{
			Schemas: schemas(),
			SecuritySchemes: map[string]SecurityScheme{
				"bearerAuth": {Type: "http", Scheme: "bearer", BearerFormat: "JWT"},
				"cookieAuth": {Type: "apiKey", In: "cookie", Name: "sb-access-token"},
			},
		},
	}
	if serverURL != "" {
		doc.Servers = []Server{{URL: serverURL}}
	}

	add := func(path, method string, op *Operation) {
		if doc.Paths[path] == nil {
			doc.Paths[path] = PathItem{}
		}
		doc.Paths[path][method] = op
	}

	add("/api/v1/auth/login", "get", &Operation{
		OperationID: "login",
		Summary:     "Start hosted sign-in",
		Tags:        []string{"auth"},
		Parameters:  []Parameter{{Name: "next", In: "query", Schema: str()}},
		Responses:   map[string]Response{"302": {Description: "Redirect to the identity provider"}},
	})
	add("/api/v1/auth/callback", "get", &Operation{
		OperationID: "authCallback",
		Summary:     "Complete sign-in and redirect",
		Tags:        []string{"auth"},
		Parameters: []Parameter{
			{Name: "code", In: "query", Required: true, Schema: str()},
			{Name: "next", In: "query", Schema: str()},
		},
		Responses: map[string]Response{"302": {Description: "Redirect to next or the login page"}},
	})
	add("/api/v1/auth/web3/nonce", "get", &Operation{
		OperationID: "web3Nonce",
		Summary:     "Issue a wallet sign-in nonce",
		Tags:        []string{"auth"},
		Responses:   ok(object([]string{"nonce"}, map[string]*Schema{"nonce": str()})),
	})
	add("/api/v1/auth/signout", "post", &Operation{
		OperationID: "signOut",
		Summary:     "Clear the session cookies",
		Tags:        []string{"auth"},
		Responses:   ok(envelope(nil)),
	})

	add("/api/v1/catalog/plans", "get", &Operation{
		OperationID: "listPlans",
		Summary:     "List subscription plans",
		Tags:        []string{"catalog"},
		Responses:   ok(envelope(arrayOf(ref("Plan")))),
	})
	add("/api/v1/catalog/products", "get", &Operation{
		OperationID: "listCreditProducts",
		Summary:     "List credit products",
		Tags:        []string{"catalog"},
		Responses:   ok(envelope(arrayOf(ref("CreditProduct")))),
	})
	add("/api/v1/catalog/currencies", "get", &Operation{
		OperationID: "listCurrencies",
		Summary:     "List payment currencies",
		Tags:        []string{"catalog"},
		Responses:   ok(envelope(arrayOf(ref("PaymentCurrency")))),
	})

	add("/api/v1/credits/create-order", "post", &Operation{
		OperationID: "createCreditOrder",
		Summary:     "Create a provider order for a credit product",
		Tags:        []string{"payments"},
		Security:    authenticated,
		Parameters:  []Parameter{{Name: "Idempotency-Key", In: "header", Schema: str()}},
		RequestBody: jsonBody(object([]string{"productId"}, map[string]*Schema{
			"productId":   str(),
			"provider":    {Type: "string", Enum: []string{"paypal", "stripe", "braintree", "crypto"}},
			"payCurrency": str(),
		})),
		Responses: ok(ref("OrderHandle")),
	})
	add("/api/v1/paypal/create-order", "post", &Operation{
		OperationID: "createPaypalOrder",
		Summary:     "Create a PayPal order for a subscription plan",
		Tags:        []string{"payments"},
		Security:    authenticated,
		Parameters:  []Parameter{{Name: "Idempotency-Key", In: "header", Schema: str()}},
		RequestBody: jsonBody(object([]string{"planId"}, map[string]*Schema{"planId": str()})),
		Responses:   ok(ref("OrderHandle")),
	})
	add("/api/v1/subscription/create-order", "post", &Operation{
		OperationID: "createPlanOrder",
		Summary:     "Create a provider order for a subscription plan",
		Tags:        []string{"payments"},
		Security:    authenticated,
		Parameters:  []Parameter{{Name: "Idempotency-Key", In: "header", Schema: str()}},
		RequestBody: jsonBody(object([]string{"planId"}, map[string]*Schema{
			"planId":      str(),
			"provider":    {Type: "string", Enum: []string{"paypal", "stripe", "braintree", "crypto"}},
			"payCurrency": str(),
		})),
		Responses: ok(ref("OrderHandle")),
	})
	add("/api/v1/payments/orders", "get", &Operation{
		OperationID: "listOrders",
		Summary:     "List the caller's orders, newest first",
		Tags:        []string{"payments"},
		Security:    authenticated,
		Responses:   ok(envelope(arrayOf(ref("Order")))),
	})
	add("/api/v1/payments/orders/{id}", "get", &Operation{
		OperationID: "getOrder",
		Summary:     "Get one of the caller's orders",
		Tags:        []string{"payments"},
		Security:    authenticated,
		Parameters:  []Parameter{pathParam("id")},
		Responses:   ok(envelope(ref("Order"))),
	})
	add("/api/v1/payments/orders/{id}/capture", "post", &Operation{
		OperationID: "captureOrder",
		Summary:     "Capture an approved order and apply it",
		Tags:        []string{"payments"},
		Security:    authenticated,
		Parameters:  []Parameter{pathParam("id")},
		RequestBody: &RequestBody{Content: jsonContent(object(nil, map[string]*Schema{"nonce": str()}))},
		Responses:   ok(envelope(ref("Order"))),
	})
	add("/api/v1/webhooks/{provider}", "post", &Operation{
		OperationID: "receiveWebhook",
		Summary:     "Receive a signed payment provider notification",
		Tags:        []string{"payments"},
		Parameters:  []Parameter{pathParam("provider")},
		Responses:   ok(object(nil, map[string]*Schema{"received": boolean()})),
	})

	subscriptionReply := object([]string{"success"}, map[string]*Schema{
		"success":      boolean(),
		"subscription": ref("Subscription"),
	})
	add("/api/v1/subscription", "get", &Operation{
		OperationID: "getSubscription",
		Summary:     "Get the caller's subscription",
		Tags:        []string{"subscription"},
		Security:    authenticated,
		Responses:   ok(subscriptionReply),
	})
	add("/api/v1/subscription/subscribe", "post", &Operation{
		OperationID: "subscribe",
		Summary:     "Switch the caller to a free plan",
		Description: "Paid plans return 400; they are granted when their order settles.",
		Tags:        []string{"subscription"},
		Security:    authenticated,
		RequestBody: jsonBody(object([]string{"planId"}, map[string]*Schema{"planId": str()})),
		Responses:   ok(subscriptionReply),
	})

	add("/api/v1/credits/balance", "get", &Operation{
		OperationID: "creditBalance",
		Summary:     "Get the caller's credit balance",
		Tags:        []string{"credits"},
		Security:    authenticated,
		Responses:   ok(envelope(object([]string{"balance"}, map[string]*Schema{"balance": integer()}))),
	})
	add("/api/v1/demo/run", "post", &Operation{
		OperationID: "runDemo",
		Summary:     "Run the demo workload for one credit",
		Tags:        []string{"credits"},
		Security:    authenticated,
		RequestBody: jsonBody(object([]string{"prompt"}, map[string]*Schema{"prompt": str()})),
		Responses:   ok(envelope(ref("DemoUsage"))),
	})

	add("/api/v1/favorites", "get", &Operation{
		OperationID: "listFavorites",
		Summary:     "List saved catalog items",
		Tags:        []string{"favorites"},
		Security:    authenticated,
		Responses:   ok(envelope(arrayOf(ref("Favorite")))),
	})
	add("/api/v1/favorites", "post", &Operation{
		OperationID: "addFavorite",
		Summary:     "Save a plan or product",
		Tags:        []string{"favorites"},
		Security:    authenticated,
		RequestBody: jsonBody(object([]string{"itemId", "itemType"}, map[string]*Schema{
			"itemId":   str(),
			"itemType": {Type: "string", Enum: []string{"plan", "product"}},
		})),
		Responses: ok(envelope(ref("Favorite"))),
	})
	add("/api/v1/favorites/{itemId}", "delete", &Operation{
		OperationID: "removeFavorite",
		Summary:     "Remove a saved item",
		Tags:        []string{"favorites"},
		Security:    authenticated,
		Parameters:  []Parameter{pathParam("itemId")},
		Responses:   ok(envelope(nil)),
	})

	add("/api/v1/docs", "get", &Operation{
		OperationID: "docs",
		Summary:     "This document",
		Tags:        []string{"meta"},
		Parameters:  []Parameter{{Name: "format", In: "query", Schema: &Schema{Type: "string", Enum: []string{"json", "yaml"}}}},
		Responses:   map[string]Response{"200": {Description: "OpenAPI document"}},
	})

	return doc
}

func schemas() map[string]*Schema {
	timestamp := &Schema{Type: "string", Format: "date-time"}
	nullableTime := &Schema{Type: "string", Format: "date-time", Nullable: true}

	return map[string]*Schema{
		"Error": object([]string{"success", "error"}, map[string]*Schema{
			"success": boolean(),
			"error":   str(),
		}),
		"Plan": object([]string{"id", "name", "tier", "price_cents", "currency", "interval"}, map[string]*Schema{
			"id":                 str(),
			"name":               str(),
			"tier":               {Type: "string", Enum: []string{"free", "basic", "pro", "enterprise"}},
			"price_cents":        integer(),
			"currency":           str(),
			"interval":           {Type: "string", Enum: []string{"month", "year"}},
			"credits_per_period": integer(),
			"active":             boolean(),
			"sort_order":         integer(),
		}),
		"CreditProduct": object([]string{"id", "name", "price_cents", "currency", "credits"}, map[string]*Schema{
			"id":          str(),
			"name":        str(),
			"price_cents": integer(),
			"currency":    str(),
			"credits":     integer(),
			"active":      boolean(),
			"sort_order":  integer(),
		}),
		"PaymentCurrency": object([]string{"code", "symbol", "name", "decimals", "crypto"}, map[string]*Schema{
			"code":     str(),
			"symbol":   str(),
			"network":  str(),
			"name":     str(),
			"decimals": integer(),
			"crypto":   boolean(),
			"enabled":  boolean(),
		}),
		"OrderHandle": object([]string{"provider", "id", "status"}, map[string]*Schema{
			"provider":      str(),
			"id":            str(),
			"status":        str(),
			"approve_url":   str(),
			"client_secret": str(),
			"client_token":  str(),
			"pay_address":   str(),
			"pay_amount":    str(),
			"pay_currency":  str(),
			"raw":           {Type: "object"},
		}),
		"Order": object([]string{"id", "user_id", "type", "item_id", "amount_cents", "currency", "provider", "status"}, map[string]*Schema{
			"id":              str(),
			"user_id":         str(),
			"type":            {Type: "string", Enum: []string{"subscription", "credits"}},
			"item_id":         str(),
			"amount_cents":    integer(),
			"currency":        str(),
			"provider":        str(),
			"provider_ref":    str(),
			"provider_status": str(),
			"status":          {Type: "string", Enum: []string{"CREATED", "APPROVED", "PAID", "FAILED", "CANCELLED"}},
			"paid_at":         nullableTime,
			"created_at":      timestamp,
			"updated_at":      timestamp,
		}),
		"Subscription": object([]string{"user_id", "plan_id", "tier", "status"}, map[string]*Schema{
			"user_id":              str(),
			"plan_id":              str(),
			"tier":                 str(),
			"status":               {Type: "string", Enum: []string{"active", "cancelled"}},
			"order_id":             str(),
			"current_period_start": timestamp,
			"current_period_end":   nullableTime,
			"updated_at":           timestamp,
		}),
		"DemoUsage": object(nil, map[string]*Schema{
			"id":            str(),
			"user_id":       str(),
			"prompt":        str(),
			"result":        str(),
			"credits_spent": integer(),
			"created_at":    timestamp,
		}),
		"Favorite": object(nil, map[string]*Schema{
			"user_id":    str(),
			"item_id":    str(),
			"item_type":  str(),
			"created_at": timestamp,
		}),
	}
}
