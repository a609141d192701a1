package handler

import (
	"saas-billing/internal/service"

	"github.com/labstack/echo/v4"
)

type CatalogHandler struct {
	catalogService service.CatalogService
}

func NewCatalogHandler(catalogService service.CatalogService) *CatalogHandler {
	return &CatalogHandler{
		catalogService: catalogService,
	}
}

// @Summary List subscription plans
// @Tags catalog
// @Produce json
// @Success 200 {object} dto.Response
// @Router /api/v1/catalog/plans [get]
func (h *CatalogHandler) Plans(c echo.Context) error {
	plans, err := h.catalogService.Plans(c.Request().Context())
	if err != nil {
		return err
	}
	return respondOK(c, plans)
}

// @Summary List credit products
// @Tags catalog
// @Produce json
// @Success 200 {object} dto.Response
// @Router /api/v1/catalog/products [get]
func (h *CatalogHandler) Products(c echo.Context) error {
	products, err := h.catalogService.Products(c.Request().Context())
	if err != nil {
		return err
	}
	return respondOK(c, products)
}

// @Summary List crypto pay currencies
// @Tags catalog
// @Produce json
// @Success 200 {object} dto.Response
// @Router /api/v1/catalog/currencies [get]
func (h *CatalogHandler) Currencies(c echo.Context) error {
	currencies, err := h.catalogService.Currencies(c.Request().Context())
	if err != nil {
		return err
	}
	return respondOK(c, currencies)
}
