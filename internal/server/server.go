package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"saas-billing/internal/apperr"
	"saas-billing/internal/auth"
	"saas-billing/internal/config"
	"saas-billing/internal/dto"
	"saas-billing/internal/handler"
	"saas-billing/internal/locale"
	appmw "saas-billing/internal/middleware"
	"saas-billing/internal/openapi"
	"saas-billing/internal/service"
	"saas-billing/internal/view"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	echoSwagger "github.com/swaggo/echo-swagger"
)

// Sessions reads and writes the browser session.
type Sessions interface {
	appmw.SessionReader
	handler.SessionManager
}

// Services groups everything the handlers call into.
type Services struct {
	Auth         service.AuthService
	Catalog      service.CatalogService
	Order        service.OrderService
	Fulfillment  service.FulfillmentService
	Subscription service.SubscriptionService
	Credit       service.CreditService
	Favorite     service.FavoriteService
}

type Server struct {
	echo     *echo.Echo
	sessions Sessions
	resolver *locale.Resolver

	authHandler         *handler.AuthHandler
	catalogHandler      *handler.CatalogHandler
	paymentHandler      *handler.PaymentHandler
	webhookHandler      *handler.WebhookHandler
	subscriptionHandler *handler.SubscriptionHandler
	creditHandler       *handler.CreditHandler
	favoriteHandler     *handler.FavoriteHandler
	docsHandler         *handler.DocsHandler
	pageHandler         *handler.PageHandler
}

func NewServer(cfg *config.Config, sessions Sessions, resolver *locale.Resolver, services *Services) *Server {
	e := echo.New()
	e.HideBanner = true
	configureLogger(e, cfg.Log)

	doc := openapi.Build(cfg.BaseURL, "1.0.0")
	openapi.Register(doc)

	s := &Server{
		echo:                e,
		sessions:            sessions,
		resolver:            resolver,
		authHandler:         handler.NewAuthHandler(services.Auth, sessions, resolver, cfg.SecureCookies()),
		catalogHandler:      handler.NewCatalogHandler(services.Catalog),
		paymentHandler:      handler.NewPaymentHandler(services.Order, resolver),
		webhookHandler:      handler.NewWebhookHandler(services.Fulfillment),
		subscriptionHandler: handler.NewSubscriptionHandler(services.Subscription),
		creditHandler:       handler.NewCreditHandler(services.Credit),
		favoriteHandler:     handler.NewFavoriteHandler(services.Favorite),
		docsHandler:         handler.NewDocsHandler(doc),
		pageHandler: handler.NewPageHandler(
			resolver,
			services.Catalog,
			services.Order,
			services.Credit,
			services.Subscription,
			services.Favorite,
			services.Auth,
			doc,
		),
	}

	e.HTTPErrorHandler = s.handleError
	e.Pre(appmw.LocalePrefix(resolver, "/api", "/favicon.ico"))
	e.Use(middleware.RequestLogger())
	e.Use(middleware.Recover())
	if cfg.Telemetry.Enabled {
		e.Use(appmw.Tracing(cfg.Telemetry.Service))
	}

	s.setupRoutes()
	return s
}

func configureLogger(e *echo.Echo, cfg config.Log) {
	switch strings.ToLower(cfg.Level) {
	case "debug":
		e.Logger.SetLevel(log.DEBUG)
	case "warn":
		e.Logger.SetLevel(log.WARN)
	case "error":
		e.Logger.SetLevel(log.ERROR)
	default:
		e.Logger.SetLevel(log.INFO)
	}
	if cfg.Format == "text" {
		e.Logger.SetHeader("${time_rfc3339} ${level} ${short_file}:${line}")
	}
}

func (s *Server) setupRoutes() {
	s.echo.GET("/api/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	api := s.echo.Group("/api/v1")

	// -------- public --------
	authGroup := api.Group("/auth")
	authGroup.GET("/login", s.authHandler.Login)
	authGroup.GET("/callback", s.authHandler.Callback)
	authGroup.GET("/web3/nonce", s.authHandler.Web3Nonce)
	authGroup.POST("/signout", s.authHandler.SignOut)

	catalog := api.Group("/catalog")
	catalog.GET("/plans", s.catalogHandler.Plans)
	catalog.GET("/products", s.catalogHandler.Products)
	catalog.GET("/currencies", s.catalogHandler.Currencies)

	api.POST("/webhooks/:provider", s.webhookHandler.Receive)
	api.GET("/docs", s.docsHandler.Get)
	api.GET("/docs/ui/*", echoSwagger.EchoWrapHandler(echoSwagger.DocExpansion("none")))

	// -------- signed in --------
	requireUser := appmw.RequireUser(s.sessions)
	api.POST("/credits/create-order", s.paymentHandler.CreateCreditOrder, requireUser)
	api.GET("/credits/balance", s.creditHandler.Balance, requireUser)
	api.POST("/paypal/create-order", s.paymentHandler.CreatePaypalOrder, requireUser)
	api.POST("/subscription/create-order", s.paymentHandler.CreatePlanOrder, requireUser)
	api.GET("/subscription", s.subscriptionHandler.Current, requireUser)
	api.POST("/subscription/subscribe", s.subscriptionHandler.Subscribe, requireUser)
	api.GET("/payments/orders", s.paymentHandler.ListOrders, requireUser)
	api.GET("/payments/orders/:id", s.paymentHandler.GetOrder, requireUser)
	api.POST("/payments/orders/:id/capture", s.paymentHandler.CaptureOrder, requireUser)
	api.POST("/demo/run", s.creditHandler.RunDemo, requireUser)
	api.GET("/favorites", s.favoriteHandler.List, requireUser)
	api.POST("/favorites", s.favoriteHandler.Add, requireUser)
	api.DELETE("/favorites/:itemId", s.favoriteHandler.Remove, requireUser)

	// -------- pages --------
	// Route level middleware only: group middleware would also catch unmatched paths.
	optionalUser := appmw.OptionalUser(s.sessions)
	s.echo.GET("/", s.pageHandler.Home, optionalUser)
	s.echo.GET("/login", s.pageHandler.Login, optionalUser)
	s.echo.GET("/pricing", s.pageHandler.Pricing, optionalUser)
	s.echo.GET("/docs", s.pageHandler.Docs, optionalUser)

	requirePage := appmw.RequirePageUser(s.sessions, s.resolver)
	s.echo.GET("/checkout", s.pageHandler.Checkout, requirePage)
	s.echo.GET("/credits", s.pageHandler.Credits, requirePage)
	s.echo.GET("/orders", s.pageHandler.Orders, requirePage)
	s.echo.GET("/profile", s.pageHandler.Profile, requirePage)
	s.echo.GET("/favorites", s.pageHandler.Favorites, requirePage)
	s.echo.GET("/demo", s.pageHandler.Demo, requirePage)
}

// handleError writes the JSON envelope for API routes and an HTML page for the site.
func (s *Server) handleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status, message := statusOf(err)
	req := c.Request()
	if status >= http.StatusInternalServerError {
		c.Logger().Errorf("%s %s: %v", req.Method, req.URL.Path, err)
	} else {
		c.Logger().Debugf("%s %s: %v", req.Method, req.URL.Path, err)
	}

	if strings.HasPrefix(req.URL.Path, "/api/") {
		if req.Method == http.MethodHead {
			err = c.NoContent(status)
		} else {
			err = c.JSON(status, &dto.Response{Error: message})
		}
	} else {
		p := handler.PageFor(c, s.resolver)
		page := view.Error(p, message)
		if status == http.StatusNotFound {
			page = view.NotFound(p)
		}
		c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
		c.Response().WriteHeader(status)
		err = page.Render(req.Context(), c.Response())
	}
	if err != nil {
		c.Logger().Error(err)
	}
}

func statusOf(err error) (int, string) {
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return appErr.Kind.HTTPStatus(), appErr.Error()
	}
	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Code, fmt.Sprint(httpErr.Message)
	}
	if errors.Is(err, auth.ErrNoSession) {
		return http.StatusUnauthorized, "authentication required"
	}
	return http.StatusInternalServerError, err.Error()
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

func (s *Server) Start(address string) error {
	return s.echo.Start(address)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
