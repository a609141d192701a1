// Package view renders the localized HTML pages.
package view

import (
	"context"
	"fmt"
	"io"
	"saas-billing/internal/auth"
	"strings"

	"github.com/a-h/templ"
	"github.com/shopspring/decimal"
	"golang.org/x/text/message"
)

// Page is what every page needs to render its chrome.
type Page struct {
	Locale  string
	Locales []string
	Path    string // request path without the locale prefix
	Query   string
	User    *auth.User
	Printer *message.Printer
}

func (p Page) T(key string, args ...any) string {
	return p.Printer.Sprintf(key, args...)
}

func (p Page) Href(path string) string {
	if path == "" || path == "/" {
		return "/" + p.Locale
	}
	return "/" + p.Locale + path
}

// writer collects the first write error so templates can stay linear.
type writer struct {
	w   io.Writer
	err error
}

func (h *writer) raw(s string) {
	if h.err == nil {
		_, h.err = io.WriteString(h.w, s)
	}
}

func (h *writer) rawf(format string, args ...any) {
	h.raw(fmt.Sprintf(format, args...))
}

func (h *writer) text(s string) {
	h.raw(templ.EscapeString(s))
}

func (h *writer) attr(s string) string {
	return templ.EscapeString(s)
}

func (h *writer) element(tag, class, text string) {
	if class != "" {
		h.rawf(`<%s class="%s">`, tag, h.attr(class))
	} else {
		h.rawf("<%s>", tag)
	}
	h.text(text)
	h.rawf("</%s>", tag)
}

func (h *writer) link(href, text string) {
	h.rawf(`<a href="%s">`, h.attr(href))
	h.text(text)
	h.raw("</a>")
}

func component(fn func(ctx context.Context, h *writer)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &writer{w: w}
		fn(ctx, h)
		return h.err
	})
}

// Layout wraps body with the document head, navigation and locale switcher.
func Layout(p Page, title string, body templ.Component) templ.Component {
	return component(func(ctx context.Context, h *writer) {
		h.rawf(`<!DOCTYPE html><html lang="%s"><head><meta charset="utf-8">`, h.attr(p.Locale))
		h.raw(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		h.raw("<title>")
		h.text(title + " | SaaS")
		h.raw("</title></head><body><header><nav>")

		h.link(p.Href("/"), p.T("nav.home"))
		h.link(p.Href("/pricing"), p.T("nav.pricing"))
		if p.User != nil {
			h.link(p.Href("/credits"), p.T("nav.credits"))
			h.link(p.Href("/orders"), p.T("nav.orders"))
			h.link(p.Href("/favorites"), p.T("nav.favorites"))
			h.link(p.Href("/demo"), p.T("nav.demo"))
			h.link(p.Href("/profile"), p.T("nav.profile"))
		}
		h.link(p.Href("/docs"), p.T("nav.docs"))
		if p.User != nil {
			h.raw(`<button type="button" id="signout">`)
			h.text(p.T("nav.logout"))
			h.raw(`</button><script>document.getElementById("signout").onclick=function(){fetch("/api/v1/auth/signout",{method:"POST"}).then(function(){location.href="/"})}</script>`)
		} else {
			h.link(p.Href("/login"), p.T("nav.login"))
		}

		h.raw(`<ul class="locales">`)
		for _, code := range p.Locales {
			current := ""
			if code == p.Locale {
				current = ` aria-current="true"`
			}
			target := "/" + code + p.Path
			if p.Path == "/" {
				target = "/" + code
			}
			if p.Query != "" {
				target += "?" + p.Query
			}
			h.rawf(`<li><a href="%s" hreflang="%s"%s>%s</a></li>`, h.attr(target), h.attr(code), current, h.attr(strings.ToUpper(code)))
		}
		h.raw("</ul></nav></header><main>")
		if h.err == nil {
			h.err = body.Render(ctx, h.w)
		}
		h.raw("</main></body></html>")
	})
}

// Price formats minor units the way the catalog stores them.
func Price(cents int64, currency string) string {
	return decimal.New(cents, -2).StringFixed(2) + " " + strings.ToUpper(currency)
}
