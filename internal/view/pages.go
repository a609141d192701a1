package view

import (
	"context"
	"net/url"
	"saas-billing/internal/model"
	"saas-billing/internal/openapi"
	"sort"
	"strings"

	"github.com/a-h/templ"
)

func Home(p Page) templ.Component {
	return Layout(p, p.T("nav.home"), component(func(_ context.Context, h *writer) {
		h.element("h1", "", p.T("home.title"))
		h.element("p", "lead", p.T("home.subtitle"))
		h.raw("<p>")
		h.link(p.Href("/pricing"), p.T("nav.pricing"))
		h.raw("</p>")
	}))
}

// Login renders the sign-in page. next is where the callback should land afterwards.
func Login(p Page, next string, failed bool) templ.Component {
	return Layout(p, p.T("login.title"), component(func(_ context.Context, h *writer) {
		h.element("h1", "", p.T("login.title"))
		if failed {
			h.element("p", "error", p.T("login.error"))
		}
		target := "/api/v1/auth/login"
		if next != "" {
			target += "?next=" + url.QueryEscape(next)
		}
		h.rawf(`<p><a class="button" href="%s">`, h.attr(target))
		h.text(p.T("login.button"))
		h.raw("</a></p>")
		h.raw(`<p><button type="button" id="wallet">`)
		h.text(p.T("login.wallet"))
		h.raw(`</button></p><script>document.getElementById("wallet").onclick=function(){fetch("/api/v1/auth/web3/nonce").then(function(r){return r.json()}).then(function(b){if(window.ethereum&&b.nonce){window.ethereum.request({method:"personal_sign",params:[b.nonce]})}})}</script>`)
	}))
}

func Pricing(p Page, plans []*model.Plan, products []*model.CreditProduct) templ.Component {
	return Layout(p, p.T("pricing.title"), component(func(_ context.Context, h *writer) {
		h.element("h1", "", p.T("pricing.title"))
		h.raw(`<section class="plans">`)
		for _, plan := range plans {
			h.rawf(`<article class="plan" data-plan-id="%s">`, h.attr(plan.ID))
			h.element("h2", "", plan.Name)
			if plan.PriceCents == 0 {
				h.element("p", "price", p.T("pricing.free"))
			} else {
				per := p.T("pricing.per_month")
				if plan.Interval == "year" {
					per = p.T("pricing.per_year")
				}
				h.element("p", "price", Price(plan.PriceCents, plan.Currency)+" "+per)
			}
			h.element("p", "", p.T("pricing.credits", plan.CreditsPerPeriod))
			if plan.PriceCents > 0 {
				h.link(p.Href("/checkout?plan="+url.QueryEscape(plan.ID)), p.T("pricing.subscribe"))
			}
			h.raw("</article>")
		}
		h.raw(`</section><section class="products">`)
		h.element("h2", "", p.T("credits.title"))
		productList(p, h, products)
		h.raw("</section>")
	}))
}

func productList(p Page, h *writer, products []*model.CreditProduct) {
	h.raw("<ul>")
	for _, product := range products {
		h.rawf(`<li data-product-id="%s">`, h.attr(product.ID))
		h.text(product.Name + " " + Price(product.PriceCents, product.Currency) + " ")
		h.link(p.Href("/checkout?product="+url.QueryEscape(product.ID)), p.T("credits.buy"))
		h.raw("</li>")
	}
	h.raw("</ul>")
}

// CheckoutItem is the thing being paid for on the checkout page.
type CheckoutItem struct {
	Kind       string // plan or product
	ID         string
	Name       string
	PriceCents int64
	Currency   string
}

// Checkout renders the payment buttons for item. A nil item renders the not-found message.
func Checkout(p Page, item *CheckoutItem, currencies []*model.PaymentCurrency) templ.Component {
	return Layout(p, p.T("checkout.title"), component(func(_ context.Context, h *writer) {
		h.element("h1", "", p.T("checkout.title"))
		if item == nil {
			h.element("p", "error", p.T("checkout.not_found"))
			return
		}
		h.element("h2", "", item.Name)
		if item.PriceCents == 0 {
			h.element("p", "", p.T("checkout.no_payment"))
			return
		}
		endpoint := "/api/v1/credits/create-order"
		field := "productId"
		if item.Kind == "plan" {
			endpoint = "/api/v1/subscription/create-order"
			field = "planId"
		}
		h.rawf(`<form id="checkout" data-endpoint="%s" data-field="%s" data-item="%s">`, h.attr(endpoint), h.attr(field), h.attr(item.ID))
		h.raw(`<select name="provider"><option value="paypal">PayPal</option><option value="stripe">Card</option><option value="braintree">Braintree</option><option value="crypto">Crypto</option></select>`)
		h.raw(`<select name="payCurrency">`)
		for _, currency := range currencies {
			if !currency.Crypto {
				continue
			}
			h.rawf(`<option value="%s">`, h.attr(currency.Code))
			h.text(currency.Name)
			h.raw("</option>")
		}
		h.raw(`</select><button type="submit">`)
		h.text(p.T("checkout.pay", Price(item.PriceCents, item.Currency)))
		h.raw(`</button></form>`)
		h.raw(`<script>document.getElementById("checkout").onsubmit=function(e){e.preventDefault();var f=e.target,b={provider:f.provider.value};b[f.dataset.field]=f.dataset.item;if(b.provider==="crypto"){b.payCurrency=f.payCurrency.value}fetch(f.dataset.endpoint,{method:"POST",headers:{"Content-Type":"application/json"},body:JSON.stringify(b)}).then(function(r){return r.json()}).then(function(r){if(r.approve_url){location.href=r.approve_url}else if(r.pay_address){alert(r.pay_amount+" "+r.pay_currency+" -> "+r.pay_address)}else{alert(r.message||r.error||r.status)}})}</script>`)
	}))
}

// Orders lists the user's orders. When captureID is set the page confirms that order on load.
func Orders(p Page, orders []*model.Order, captureID string) templ.Component {
	return Layout(p, p.T("orders.title"), component(func(_ context.Context, h *writer) {
		h.element("h1", "", p.T("orders.title"))
		if len(orders) == 0 {
			h.element("p", "", p.T("orders.empty"))
		} else {
			h.raw("<table><tbody>")
			for _, order := range orders {
				h.rawf(`<tr data-order-id="%s">`, h.attr(order.ID))
				h.element("td", "", order.CreatedAt.Format("2006-01-02 15:04"))
				h.element("td", "", string(order.Type)+" "+order.ItemID)
				h.element("td", "", Price(order.AmountCents, order.Currency))
				h.element("td", "", order.Provider)
				h.element("td", "status", order.Status)
				h.raw("</tr>")
			}
			h.raw("</tbody></table>")
		}
		if captureID != "" {
			h.rawf(`<script>fetch("/api/v1/payments/orders/%s/capture",{method:"POST",headers:{"Content-Type":"application/json"},body:"{}"}).then(function(){history.replaceState(null,"",location.pathname);location.reload()})</script>`, url.PathEscape(captureID))
		}
	}))
}

func Credits(p Page, balance int64, products []*model.CreditProduct) templ.Component {
	return Layout(p, p.T("credits.title"), component(func(_ context.Context, h *writer) {
		h.element("h1", "", p.T("credits.title"))
		h.element("p", "balance", p.T("credits.balance", balance))
		productList(p, h, products)
	}))
}

func Profile(p Page, user *model.User, sub *model.Subscription, balance int64) templ.Component {
	return Layout(p, p.T("profile.title"), component(func(_ context.Context, h *writer) {
		h.element("h1", "", p.T("profile.title"))
		if user != nil {
			h.element("p", "", user.Email)
		}
		if sub != nil && sub.Status == model.SubscriptionStatusActive {
			h.element("p", "", p.T("profile.plan", sub.PlanID))
			if sub.CurrentPeriodEnd != nil {
				h.element("p", "", p.T("profile.renews", sub.CurrentPeriodEnd.Format("2006-01-02")))
			}
		} else {
			h.element("p", "", p.T("profile.no_plan"))
		}
		h.element("p", "balance", p.T("credits.balance", balance))
	}))
}

func Favorites(p Page, favorites []*model.Favorite) templ.Component {
	return Layout(p, p.T("favorites.title"), component(func(_ context.Context, h *writer) {
		h.element("h1", "", p.T("favorites.title"))
		if len(favorites) == 0 {
			h.element("p", "", p.T("favorites.empty"))
			return
		}
		h.raw("<ul>")
		for _, fav := range favorites {
			h.rawf(`<li data-item-id="%s">`, h.attr(fav.ItemID))
			h.text(fav.ItemType + ": " + fav.ItemID + " ")
			h.rawf(`<button type="button" onclick="fetch('/api/v1/favorites/%s',{method:'DELETE'}).then(function(){location.reload()})">`, h.attr(url.PathEscape(fav.ItemID)))
			h.text(p.T("favorites.remove"))
			h.raw("</button></li>")
		}
		h.raw("</ul>")
	}))
}

func Demo(p Page, balance, cost int64, history []*model.DemoUsage) templ.Component {
	return Layout(p, p.T("demo.title"), component(func(_ context.Context, h *writer) {
		h.element("h1", "", p.T("demo.title"))
		h.element("p", "", p.T("demo.cost", cost))
		h.element("p", "balance", p.T("credits.balance", balance))
		h.raw(`<form id="demo"><textarea name="prompt" maxlength="1024"></textarea><button type="submit">`)
		h.text(p.T("demo.run"))
		h.raw(`</button></form><pre id="result"></pre>`)
		h.raw(`<script>document.getElementById("demo").onsubmit=function(e){e.preventDefault();fetch("/api/v1/demo/run",{method:"POST",headers:{"Content-Type":"application/json"},body:JSON.stringify({prompt:e.target.prompt.value})}).then(function(r){return r.json()}).then(function(r){document.getElementById("result").textContent=r.success?r.data.result:r.error})}</script>`)
		if len(history) > 0 {
			h.raw("<ol>")
			for _, usage := range history {
				h.element("li", "", usage.Prompt+" → "+usage.Result)
			}
			h.raw("</ol>")
		}
	}))
}

// Docs lists every documented operation with links to the raw document.
func Docs(p Page, doc *openapi.Document) templ.Component {
	return Layout(p, p.T("docs.title"), component(func(_ context.Context, h *writer) {
		h.element("h1", "", p.T("docs.title"))
		h.raw("<p>")
		h.link("/api/v1/docs", "openapi.json")
		h.raw(" ")
		h.link("/api/v1/docs?format=yaml", "openapi.yaml")
		h.raw("</p>")

		paths := make([]string, 0, len(doc.Paths))
		for path := range doc.Paths {
			paths = append(paths, path)
		}
		sort.Strings(paths)

		h.raw("<dl>")
		for _, path := range paths {
			item := doc.Paths[path]
			methods := make([]string, 0, len(item))
			for method := range item {
				methods = append(methods, method)
			}
			sort.Strings(methods)
			for _, method := range methods {
				op := item[method]
				h.element("dt", "", strings.ToUpper(method)+" "+path)
				h.element("dd", "", op.Summary)
			}
		}
		h.raw("</dl>")
	}))
}

func NotFound(p Page) templ.Component {
	return Layout(p, p.T("error.not_found"), component(func(_ context.Context, h *writer) {
		h.element("h1", "", p.T("error.not_found"))
		h.link(p.Href("/"), p.T("nav.home"))
	}))
}

// Error renders a generic failure page with message.
func Error(p Page, message string) templ.Component {
	return Layout(p, message, component(func(_ context.Context, h *writer) {
		h.element("h1", "", message)
		h.link(p.Href("/"), p.T("nav.home"))
	}))
}
