package locale

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

var messages = map[string]map[string]string{
	"en": {
		"nav.home":            "Home",
		"nav.pricing":         "Pricing",
		"nav.credits":         "Credits",
		"nav.orders":          "Orders",
		"nav.profile":         "Profile",
		"nav.favorites":       "Favorites",
		"nav.demo":            "Demo",
		"nav.docs":            "API Docs",
		"nav.login":           "Sign in",
		"nav.logout":          "Sign out",
		"home.title":          "Ship your SaaS faster",
		"home.subtitle":       "Subscriptions, credits and payments wired in.",
		"login.title":         "Sign in",
		"login.button":        "Continue with your account",
		"login.wallet":        "Sign in with wallet",
		"login.error":         "Sign-in failed. Please try again.",
		"pricing.title":       "Pricing",
		"pricing.free":        "Free",
		"pricing.subscribe":   "Subscribe",
		"pricing.per_month":   "/ month",
		"pricing.per_year":    "/ year",
		"checkout.title":      "Checkout",
		"checkout.pay":        "Pay %s",
		"credits.title":       "Credits",
		"credits.balance":     "Balance: %d credits",
		"credits.buy":         "Buy",
		"orders.title":        "Your orders",
		"orders.empty":        "No orders yet.",
		"profile.title":       "Profile",
		"profile.plan":        "Current plan: %s",
		"profile.no_plan":     "No active subscription.",
		"favorites.title":     "Favorites",
		"favorites.empty":     "Nothing saved yet.",
		"demo.title":          "Demo",
		"demo.cost":           "Each run costs %d credit(s).",
		"demo.run":            "Run",
		"docs.title":          "API documentation",
		"error.not_found":     "Page not found",
		"checkout.not_found":  "This item does not exist.",
		"checkout.no_payment": "This plan does not require payment.",
		"favorites.add":       "Save",
		"favorites.remove":    "Remove",
		"pricing.credits":     "%d credits included",
		"profile.renews":      "Renews on %s",
	},
	"zh": {
		"nav.home":            "首页",
		"nav.pricing":         "价格",
		"nav.credits":         "积分",
		"nav.orders":          "订单",
		"nav.profile":         "个人资料",
		"nav.favorites":       "收藏",
		"nav.demo":            "演示",
		"nav.docs":            "API 文档",
		"nav.login":           "登录",
		"nav.logout":          "退出",
		"home.title":          "更快上线你的 SaaS",
		"pricing.title":       "价格",
		"pricing.subscribe":   "订阅",
		"credits.title":       "积分",
		"credits.balance":     "余额：%d 积分",
		"orders.title":        "我的订单",
		"orders.empty":        "暂无订单。",
		"login.title":         "登录",
		"checkout.title":      "结算",
		"checkout.no_payment": "该套餐无需付款。",
	},
	"ja": {
		"nav.home":          "ホーム",
		"nav.pricing":       "料金",
		"nav.credits":       "クレジット",
		"nav.orders":        "注文",
		"nav.login":         "ログイン",
		"home.title":        "SaaS をもっと速く",
		"pricing.title":     "料金",
		"pricing.subscribe": "購読する",
		"orders.title":      "注文履歴",
		"login.title":       "ログイン",
	},
	"es": {
		"nav.home":          "Inicio",
		"nav.pricing":       "Precios",
		"nav.credits":       "Créditos",
		"nav.orders":        "Pedidos",
		"nav.login":         "Iniciar sesión",
		"home.title":        "Lanza tu SaaS más rápido",
		"pricing.title":     "Precios",
		"pricing.subscribe": "Suscribirse",
		"orders.title":      "Tus pedidos",
		"login.title":       "Iniciar sesión",
	},
}

var builder = buildCatalog()

// buildCatalog registers every locale, filling untranslated keys from English so a
// printer never falls back to the raw key.
func buildCatalog() *catalog.Builder {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	base := messages["en"]
	for code, msgs := range messages {
		tag := language.Make(code)
		for key, fallback := range base {
			msg, ok := msgs[key]
			if !ok {
				msg = fallback
			}
			_ = b.SetString(tag, key, msg)
		}
	}
	return b
}

// Printer returns a message printer for the locale code.
func Printer(code string) *message.Printer {
	return message.NewPrinter(language.Make(code), message.Catalog(builder))
}
