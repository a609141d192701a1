package handler

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"net/http"
	"net/url"
	"saas-billing/internal/dto"
	"saas-billing/internal/locale"
	"saas-billing/internal/middleware"
	"saas-billing/internal/service"
	"strings"

	"github.com/labstack/echo/v4"
	"golang.org/x/oauth2"
)

const stateCookie = "sb-auth-state"

// SessionManager issues and clears the browser session.
type SessionManager interface {
	AuthCodeURL(state string) string
	SetSessionCookies(w http.ResponseWriter, token *oauth2.Token)
	ClearSessionCookies(w http.ResponseWriter)
}

type AuthHandler struct {
	authService  service.AuthService
	sessions     SessionManager
	resolver     *locale.Resolver
	cookieSecure bool
}

func NewAuthHandler(authService service.AuthService, sessions SessionManager, resolver *locale.Resolver, cookieSecure bool) *AuthHandler {
	return &AuthHandler{
		authService:  authService,
		sessions:     sessions,
		resolver:     resolver,
		cookieSecure: cookieSecure,
	}
}

// Login starts the hosted sign-in flow.
//
// @Summary Start hosted sign-in
// @Tags auth
// @Param next query string false "relative path to return to"
// @Success 302
// @Router /api/v1/auth/login [get]
func (h *AuthHandler) Login(c echo.Context) error {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return err
	}
	state := hex.EncodeToString(buf)

	next, _ := safeRedirect(c.QueryParam("next"))
	c.SetCookie(&http.Cookie{
		Name:     stateCookie,
		Value:    state + "|" + url.QueryEscape(next),
		Path:     "/api/v1/auth",
		MaxAge:   600,
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})

	return c.Redirect(http.StatusFound, h.sessions.AuthCodeURL(state))
}

// Callback completes sign-in and sends the browser on to next. The state query
// parameter must match the cookie set by Login. Any failure lands on the login
// page with error=auth.
//
// @Summary Complete hosted sign-in
// @Tags auth
// @Param code query string true "authorization code"
// @Param state query string true "state from login"
// @Success 302
// @Router /api/v1/auth/callback [get]
func (h *AuthHandler) Callback(c echo.Context) error {
	ctx := c.Request().Context()
	code := middleware.LocaleFrom(c, h.resolver)
	failure := h.resolver.Path(code, "/login") + "?error=auth"

	cookie, err := c.Cookie(stateCookie)
	if err != nil {
		c.Logger().Warnf("auth callback without state cookie")
		return c.Redirect(http.StatusFound, failure)
	}
	c.SetCookie(&http.Cookie{Name: stateCookie, Path: "/api/v1/auth", MaxAge: -1})

	state, savedNext, _ := strings.Cut(cookie.Value, "|")
	got := c.QueryParam("state")
	if state == "" || subtle.ConstantTimeCompare([]byte(got), []byte(state)) != 1 {
		c.Logger().Warnf("auth callback state mismatch")
		return c.Redirect(http.StatusFound, failure)
	}
	next := c.QueryParam("next")
	if next == "" {
		next, _ = url.QueryUnescape(savedNext)
	}

	token, _, err := h.authService.CompleteSignIn(ctx, c.QueryParam("code"), code)
	if err != nil {
		c.Logger().Warnf("auth callback: %v", err)
		return c.Redirect(http.StatusFound, failure)
	}
	h.sessions.SetSessionCookies(c.Response(), token)

	target, ok := safeRedirect(next)
	if !ok {
		target = h.resolver.Path(code, "/")
	}
	return c.Redirect(http.StatusFound, target)
}

// @Summary Sign out
// @Tags auth
// @Success 200 {object} dto.Response
// @Router /api/v1/auth/signout [post]
func (h *AuthHandler) SignOut(c echo.Context) error {
	h.sessions.ClearSessionCookies(c.Response())
	return respondOK(c, nil)
}

// @Summary Issue a wallet sign-in nonce
// @Tags auth
// @Produce json
// @Success 200 {object} dto.NonceResponse
// @Router /api/v1/auth/web3/nonce [get]
func (h *AuthHandler) Web3Nonce(c echo.Context) error {
	nonce, err := h.authService.IssueNonce(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, &dto.NonceResponse{Nonce: nonce})
}

// safeRedirect accepts only same-site relative paths.
func safeRedirect(next string) (string, bool) {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.Contains(next, `\`) {
		return "", false
	}
	u, err := url.Parse(next)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return "", false
	}
	return next, true
}
