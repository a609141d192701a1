package middleware

import (
	"net/http"
	"saas-billing/internal/locale"
	"strings"

	"github.com/labstack/echo/v4"
)

const localeKey = "locale"

// LocalePrefix strips a supported locale prefix from page paths before routing.
// Page requests without one are redirected to the negotiated locale. Paths under
// any of skip are left alone.
func LocalePrefix(resolver *locale.Resolver, skip ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			for _, prefix := range skip {
				if req.URL.Path == prefix || strings.HasPrefix(req.URL.Path, prefix+"/") {
					return next(c)
				}
			}

			code, rest, ok := resolver.Split(req.URL.Path)
			if !ok {
				if req.Method != http.MethodGet && req.Method != http.MethodHead {
					c.Set(localeKey, resolver.Default())
					return next(c)
				}
				target := resolver.Path(resolver.Negotiate(req), req.URL.Path)
				if req.URL.RawQuery != "" {
					target += "?" + req.URL.RawQuery
				}
				return c.Redirect(http.StatusFound, target)
			}

			c.Set(localeKey, code)
			req.URL.Path = rest
			req.URL.RawPath = ""
			if cookie, err := req.Cookie(locale.CookieName); err != nil || cookie.Value != code {
				resolver.SetCookie(c.Response(), code)
			}
			return next(c)
		}
	}
}

// LocaleFrom returns the request locale, negotiating one for routes that were
// not locale prefixed.
func LocaleFrom(c echo.Context, resolver *locale.Resolver) string {
	if code, ok := c.Get(localeKey).(string); ok && code != "" {
		return code
	}
	return resolver.Negotiate(c.Request())
}
