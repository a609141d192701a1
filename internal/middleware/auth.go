package middleware

import (
	"net/http"
	"net/url"
	"saas-billing/internal/apperr"
	"saas-billing/internal/auth"
	"saas-billing/internal/locale"

	"github.com/labstack/echo/v4"
)

const userKey = "user"

// SessionReader resolves the signed-in user of a request.
type SessionReader interface {
	User(r *http.Request) (*auth.User, error)
}

// OptionalUser attaches the session user when there is one.
func OptionalUser(sessions SessionReader) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if user, err := sessions.User(c.Request()); err == nil {
				setUser(c, user)
			}
			return next(c)
		}
	}
}

// RequireUser rejects API requests without a valid session.
func RequireUser(sessions SessionReader) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, err := sessions.User(c.Request())
			if err != nil {
				return apperr.Wrap(apperr.KindUnauthorized, "authentication required", err)
			}
			setUser(c, user)
			return next(c)
		}
	}
}

// RequirePageUser sends anonymous visitors of protected pages to the localized
// login page, remembering where they were going.
func RequirePageUser(sessions SessionReader, resolver *locale.Resolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, err := sessions.User(c.Request())
			if err != nil {
				code := LocaleFrom(c, resolver)
				target := resolver.Path(code, c.Request().URL.Path)
				login := resolver.Path(code, "/login") + "?next=" + url.QueryEscape(target)
				return c.Redirect(http.StatusFound, login)
			}
			setUser(c, user)
			return next(c)
		}
	}
}

func setUser(c echo.Context, user *auth.User) {
	c.Set(userKey, user)
	c.SetRequest(c.Request().WithContext(auth.WithUser(c.Request().Context(), user)))
}

// UserFrom returns the user placed on the context by the session middlewares.
func UserFrom(c echo.Context) *auth.User {
	user, _ := c.Get(userKey).(*auth.User)
	return user
}
