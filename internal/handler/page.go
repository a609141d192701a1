package handler

import (
	"net/http"
	"saas-billing/internal/locale"
	"saas-billing/internal/middleware"
	"saas-billing/internal/openapi"
	"saas-billing/internal/service"
	"saas-billing/internal/view"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
)

// PageHandler renders the localized site. Every route here is reached with the
// locale prefix already stripped by middleware.LocalePrefix.
type PageHandler struct {
	resolver            *locale.Resolver
	catalogService      service.CatalogService
	orderService        service.OrderService
	creditService       service.CreditService
	subscriptionService service.SubscriptionService
	favoriteService     service.FavoriteService
	authService         service.AuthService
	doc                 *openapi.Document
}

func NewPageHandler(
	resolver *locale.Resolver,
	catalogService service.CatalogService,
	orderService service.OrderService,
	creditService service.CreditService,
	subscriptionService service.SubscriptionService,
	favoriteService service.FavoriteService,
	authService service.AuthService,
	doc *openapi.Document,
) *PageHandler {
	return &PageHandler{
		resolver:            resolver,
		catalogService:      catalogService,
		orderService:        orderService,
		creditService:       creditService,
		subscriptionService: subscriptionService,
		favoriteService:     favoriteService,
		authService:         authService,
		doc:                 doc,
	}
}

// PageFor builds the page chrome for the current request.
func PageFor(c echo.Context, resolver *locale.Resolver) view.Page {
	code := middleware.LocaleFrom(c, resolver)
	return view.Page{
		Locale:  code,
		Locales: resolver.Supported(),
		Path:    c.Request().URL.Path,
		Query:   c.Request().URL.RawQuery,
		User:    middleware.UserFrom(c),
		Printer: locale.Printer(code),
	}
}

func render(c echo.Context, status int, component templ.Component) error {
	templ.Handler(component, templ.WithStatus(status)).ServeHTTP(c.Response(), c.Request())
	return nil
}

func (h *PageHandler) Home(c echo.Context) error {
	return render(c, http.StatusOK, view.Home(PageFor(c, h.resolver)))
}

func (h *PageHandler) Login(c echo.Context) error {
	p := PageFor(c, h.resolver)
	if p.User != nil {
		return c.Redirect(http.StatusFound, p.Href("/"))
	}
	next, _ := safeRedirect(c.QueryParam("next"))
	return render(c, http.StatusOK, view.Login(p, next, c.QueryParam("error") != ""))
}

func (h *PageHandler) Pricing(c echo.Context) error {
	ctx := c.Request().Context()

	plans, err := h.catalogService.Plans(ctx)
	if err != nil {
		return err
	}
	products, err := h.catalogService.Products(ctx)
	if err != nil {
		return err
	}

	return render(c, http.StatusOK, view.Pricing(PageFor(c, h.resolver), plans, products))
}

func (h *PageHandler) Checkout(c echo.Context) error {
	ctx := c.Request().Context()
	p := PageFor(c, h.resolver)

	var item *view.CheckoutItem
	if planID := c.QueryParam("plan"); planID != "" {
		if plan, err := h.catalogService.Plan(ctx, planID); err == nil {
			item = &view.CheckoutItem{Kind: "plan", ID: plan.ID, Name: plan.Name, PriceCents: plan.PriceCents, Currency: plan.Currency}
		}
	} else if productID := c.QueryParam("product"); productID != "" {
		if product, err := h.catalogService.Product(ctx, productID); err == nil {
			item = &view.CheckoutItem{Kind: "product", ID: product.ID, Name: product.Name, PriceCents: product.PriceCents, Currency: product.Currency}
		}
	}
	if item == nil {
		return render(c, http.StatusNotFound, view.Checkout(p, nil, nil))
	}

	currencies, err := h.catalogService.Currencies(ctx)
	if err != nil {
		return err
	}
	return render(c, http.StatusOK, view.Checkout(p, item, currencies))
}

func (h *PageHandler) Orders(c echo.Context) error {
	ctx := c.Request().Context()
	p := PageFor(c, h.resolver)

	orders, err := h.orderService.ListOrders(ctx, p.User.ID)
	if err != nil {
		return err
	}
	return render(c, http.StatusOK, view.Orders(p, orders, c.QueryParam("order")))
}

func (h *PageHandler) Credits(c echo.Context) error {
	ctx := c.Request().Context()
	p := PageFor(c, h.resolver)

	balance, err := h.creditService.Balance(ctx, p.User.ID)
	if err != nil {
		return err
	}
	products, err := h.catalogService.Products(ctx)
	if err != nil {
		return err
	}
	return render(c, http.StatusOK, view.Credits(p, balance, products))
}

func (h *PageHandler) Profile(c echo.Context) error {
	ctx := c.Request().Context()
	p := PageFor(c, h.resolver)

	user, err := h.authService.Profile(ctx, p.User.ID)
	if err != nil {
		c.Logger().Warnf("profile %s: %v", p.User.ID, err)
	}
	sub, err := h.subscriptionService.Current(ctx, p.User.ID)
	if err != nil {
		return err
	}
	balance, err := h.creditService.Balance(ctx, p.User.ID)
	if err != nil {
		return err
	}
	return render(c, http.StatusOK, view.Profile(p, user, sub, balance))
}

func (h *PageHandler) Favorites(c echo.Context) error {
	ctx := c.Request().Context()
	p := PageFor(c, h.resolver)

	favorites, err := h.favoriteService.List(ctx, p.User.ID)
	if err != nil {
		return err
	}
	return render(c, http.StatusOK, view.Favorites(p, favorites))
}

func (h *PageHandler) Demo(c echo.Context) error {
	ctx := c.Request().Context()
	p := PageFor(c, h.resolver)

	balance, err := h.creditService.Balance(ctx, p.User.ID)
	if err != nil {
		return err
	}
	history, err := h.creditService.History(ctx, p.User.ID)
	if err != nil {
		return err
	}
	return render(c, http.StatusOK, view.Demo(p, balance, service.DemoRunCost, history))
}

func (h *PageHandler) Docs(c echo.Context) error {
	return render(c, http.StatusOK, view.Docs(PageFor(c, h.resolver), h.doc))
}
